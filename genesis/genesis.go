// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis defines the networks and the initial allocations of their ledgers.
package genesis

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/kv"
	"github.com/incensechain/bic/log"
	"github.com/incensechain/bic/state"
	"github.com/incensechain/bic/tx"
)

const idKey = "genesis-id"

// ErrMismatch is returned by Setup when the ledger was set up by another genesis.
var ErrMismatch = errors.New("genesis mismatch")

var logger = log.WithContext("pkg", "genesis")

// Allocation is the initial balances of an account.
type Allocation struct {
	Address      bic.Address
	Available    uint64
	Locked       uint64
	Incense      uint64
	IncensePiece uint64
}

// Genesis describes a network and the initial state of its ledger.
type Genesis struct {
	name            string
	network         bic.Network
	minTxFee        uint64
	minDelegateBurn uint64
	allocs          []Allocation
	id              bic.Bytes32
}

func newGenesis(name string, network bic.Network, minTxFee, minDelegateBurn uint64, allocs []Allocation) *Genesis {
	allocs = slices.Clone(allocs)
	slices.SortFunc(allocs, func(a, b Allocation) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	g := &Genesis{
		name:            name,
		network:         network,
		minTxFee:        minTxFee,
		minDelegateBurn: minDelegateBurn,
		allocs:          allocs,
	}
	g.id = g.computeID()
	return g
}

// computeID hashes the network id and the allocations sorted by address.
func (g *Genesis) computeID() bic.Bytes32 {
	return bic.Blake2bFn(func(w io.Writer) {
		var b [8]byte
		w.Write([]byte{g.network.ID()})
		for _, a := range g.allocs {
			w.Write(a.Address[:])
			for _, v := range []uint64{a.Available, a.Locked, a.Incense, a.IncensePiece} {
				binary.BigEndian.PutUint64(b[:], v)
				w.Write(b[:])
			}
		}
	})
}

// Name returns the network name.
func (g *Genesis) Name() string { return g.name }

// Network returns the network id.
func (g *Genesis) Network() bic.Network { return g.network }

// ID returns the genesis id.
func (g *Genesis) ID() bic.Bytes32 { return g.id }

// MinTxFee returns the minimum fee a transaction pays.
func (g *Genesis) MinTxFee() uint64 { return g.minTxFee }

// MinDelegateBurn returns the minimum value a delegate registration burns.
func (g *Genesis) MinDelegateBurn() uint64 { return g.minDelegateBurn }

// Allocations returns the initial allocations, sorted by address.
func (g *Genesis) Allocations() []Allocation { return slices.Clone(g.allocs) }

// MaxTxDataSize returns the max size of the data a transaction of type t carries.
func MaxTxDataSize(t tx.Type) int {
	switch t {
	case tx.TypeTransfer, tx.TypeBlessMe, tx.TypeBlessBoss:
		return 128
	case tx.TypeDelegate:
		return 16
	}
	return 0
}

// Setup writes the allocations into an empty ledger and records the genesis id in props.
// It's a no-op if the ledger was set up by the same genesis, and fails with
// ErrMismatch if by another one.
func (g *Genesis) Setup(stateStore, props kv.Store) error {
	stored, err := props.Get([]byte(idKey))
	if err == nil {
		if !bytes.Equal(stored, g.id[:]) {
			return errors.Wrapf(ErrMismatch, "want %v, stored %v", g.id, bic.BytesToBytes32(stored))
		}
		return nil
	}
	if !props.IsNotFound(err) {
		return errors.Wrap(err, "load genesis id")
	}

	st := state.New(stateStore)
	done, err := g.allocated(st)
	if err != nil {
		return err
	}
	if !done {
		for _, a := range g.allocs {
			if err := allocate(st, a); err != nil {
				return errors.Wrapf(err, "allocate %v", a.Address)
			}
		}
		if err := st.Commit(); err != nil {
			return errors.Wrap(err, "commit genesis state")
		}
	}
	if err := props.Put([]byte(idKey), g.id[:]); err != nil {
		return errors.Wrap(err, "save genesis id")
	}
	logger.Info("genesis set up", "name", g.name, "id", g.id, "allocations", len(g.allocs))
	return nil
}

// allocated reports whether the allocations are already in the state,
// left by an earlier Setup that failed to record the id.
// A state holding only some of them is an error.
func (g *Genesis) allocated(st *state.State) (bool, error) {
	matched := 0
	for _, a := range g.allocs {
		acc, err := st.GetAccount(a.Address)
		if err != nil {
			return false, errors.Wrap(err, "load genesis state")
		}
		switch {
		case acc.IsEmpty():
		case acc.Available() == a.Available &&
			acc.Locked() == a.Locked &&
			acc.IncenseAvailable() == a.Incense &&
			acc.IncensePieceAvailable() == a.IncensePiece &&
			acc.Nonce() == 0:
			matched++
		default:
			return false, errors.Wrapf(ErrMismatch, "unexpected account %v", a.Address)
		}
	}
	if matched > 0 && matched < len(g.allocs) {
		return false, errors.Wrap(ErrMismatch, "partial genesis state")
	}
	return matched > 0, nil
}

func allocate(st *state.State, a Allocation) error {
	for _, f := range []struct {
		adjust func(bic.Address, int64) error
		v      uint64
	}{
		{st.AdjustAvailable, a.Available},
		{st.AdjustLocked, a.Locked},
		{st.AdjustIncenseAvailable, a.Incense},
		{st.AdjustIncensePieceAvailable, a.IncensePiece},
	} {
		for v := f.v; v > 0; {
			delta := min(v, math.MaxInt64)
			if err := f.adjust(a.Address, int64(delta)); err != nil {
				return err
			}
			v -= delta
		}
	}
	return nil
}
