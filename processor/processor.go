// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package processor applies transactions to the ledger state.
package processor

import (
	"math"

	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/co"
	"github.com/incensechain/bic/genesis"
	"github.com/incensechain/bic/log"
	"github.com/incensechain/bic/metrics"
	"github.com/incensechain/bic/state"
	"github.com/incensechain/bic/tx"
)

var (
	ErrInvalidNonce      = errors.New("invalid nonce")
	ErrInsufficientFee   = errors.New("insufficient fee")
	ErrDataTooLarge      = errors.New("data too large")
	ErrCoinTypeMismatch  = errors.New("coin type mismatch")
	ErrValueTooLarge     = errors.New("value too large")
	ErrInsufficientBurn  = errors.New("insufficient delegate burn")
	ErrInvalidDelegate   = errors.New("invalid delegate name")
	ErrCoinbaseForbidden = errors.New("coinbase tx not signed by coinbase key")
)

var (
	logger             = log.WithContext("pkg", "processor")
	metricAppliedCount = metrics.LazyLoadCounterVec("processor_applied_count", []string{"type", "result"})
)

// Processor applies transactions under the policy of a network.
type Processor struct {
	genesis *genesis.Genesis
}

// New creates a processor for the network described by g.
func New(g *genesis.Genesis) *Processor {
	return &Processor{genesis: g}
}

// Apply validates trx and executes it against st.
// Either all effects of trx are written into st, or none is.
func (p *Processor) Apply(st *state.State, trx *tx.Transaction) error {
	if err := trx.Verify(p.genesis.Network()); err != nil {
		p.record(trx, err)
		return errors.Wrap(err, "verify")
	}
	return p.apply(st, trx)
}

// ApplyBlock applies txs in order on a child layer of parent.
// The transactions are verified concurrently beforehand. A failed transaction leaves
// no effect and its error is reported at its index, the rest are still applied.
// The caller commits or rolls back the returned layer.
func (p *Processor) ApplyBlock(parent *state.State, txs []*tx.Transaction) (*state.State, []error) {
	errs := make([]error, len(txs))
	<-co.Parallel(func(queue chan<- func()) {
		for i, trx := range txs {
			queue <- func() {
				if err := trx.Verify(p.genesis.Network()); err != nil {
					errs[i] = errors.Wrap(err, "verify")
				}
			}
		}
	})

	child := parent.Track()
	var failed int
	for i, trx := range txs {
		if errs[i] == nil {
			errs[i] = p.apply(child, trx)
		} else {
			p.record(trx, errs[i])
		}
		if errs[i] != nil {
			failed++
		}
	}
	logger.Debug("block applied", "txs", len(txs), "failed", failed, "depth", child.Depth())
	return child, errs
}

func (p *Processor) apply(st *state.State, trx *tx.Transaction) error {
	layer := st.Track()
	err := p.execute(layer, trx)
	if err != nil {
		layer.Rollback()
	} else {
		err = layer.Commit()
	}
	p.record(trx, err)
	if err != nil {
		logger.Trace("tx rejected", "tx", trx.Hash(), "type", trx.Type(), "err", err)
	}
	return err
}

func (p *Processor) record(trx *tx.Transaction, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metricAppliedCount().AddWithLabel(1, map[string]string{"type": trx.Type().String(), "result": result})
}

func (p *Processor) execute(st *state.State, trx *tx.Transaction) error {
	sender, err := trx.Signer()
	if err != nil {
		return err
	}
	acc, err := st.GetAccount(sender)
	if err != nil {
		return err
	}
	if trx.Nonce() != acc.Nonce() {
		return errors.Wrapf(ErrInvalidNonce, "want %d, got %d", acc.Nonce(), trx.Nonce())
	}
	if trx.CoinType() != trx.Type().CoinType() {
		return ErrCoinTypeMismatch
	}
	if len(trx.Data()) > genesis.MaxTxDataSize(trx.Type()) {
		return ErrDataTooLarge
	}

	if trx.Type() == tx.TypeCoinbase {
		if sender != bic.CoinbaseAddress() {
			return ErrCoinbaseForbidden
		}
		value, err := toDelta(trx.Value())
		if err != nil {
			return err
		}
		if err := st.AdjustAvailable(trx.To(), value); err != nil {
			return errors.Wrap(err, "credit reward")
		}
		return st.IncreaseNonce(sender)
	}

	if trx.Fee() < p.genesis.MinTxFee() {
		return ErrInsufficientFee
	}
	value, err := toDelta(trx.Value())
	if err != nil {
		return err
	}
	fee, err := toDelta(trx.Fee())
	if err != nil {
		return err
	}

	switch trx.Type() {
	case tx.TypeTransfer:
		err = transfer(st.AdjustAvailable, sender, trx.To(), value)
	case tx.TypeDelegate:
		err = p.delegate(st, sender, trx, value)
	case tx.TypeVote:
		if err = st.AdjustAvailable(sender, -value); err == nil {
			err = st.AdjustLocked(sender, value)
		}
	case tx.TypeUnvote:
		if err = st.AdjustLocked(sender, -value); err == nil {
			err = st.AdjustAvailable(sender, value)
		}
	case tx.TypeBlessMe:
		err = transfer(st.AdjustIncenseAvailable, sender, trx.To(), value)
	case tx.TypeBlessBoss:
		err = transfer(st.AdjustIncensePieceAvailable, sender, trx.To(), value)
	default:
		err = tx.ErrUnknownType
	}
	if err != nil {
		return err
	}
	// fees are paid in the primary coin and burnt
	if err := st.AdjustAvailable(sender, -fee); err != nil {
		return errors.Wrap(err, "pay fee")
	}
	return st.IncreaseNonce(sender)
}

func (p *Processor) delegate(st *state.State, sender bic.Address, trx *tx.Transaction, value int64) error {
	if !isDelegateName(trx.Data()) {
		return ErrInvalidDelegate
	}
	if trx.Value() < p.genesis.MinDelegateBurn() {
		return ErrInsufficientBurn
	}
	return errors.Wrap(st.AdjustAvailable(sender, -value), "burn")
}

func transfer(adjust func(bic.Address, int64) error, from, to bic.Address, value int64) error {
	if err := adjust(from, -value); err != nil {
		return errors.Wrap(err, "debit sender")
	}
	if err := adjust(to, value); err != nil {
		return errors.Wrap(err, "credit recipient")
	}
	return nil
}

// isDelegateName reports whether name is 3 to 16 chars of lowercase letters, digits and underscores.
func isDelegateName(name []byte) bool {
	if len(name) < 3 || len(name) > 16 {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_') {
			return false
		}
	}
	return true
}

func toDelta(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, ErrValueTooLarge
	}
	return int64(v), nil
}
