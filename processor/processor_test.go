// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"crypto/ecdsa"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/codec"
	"github.com/incensechain/bic/genesis"
	"github.com/incensechain/bic/muxdb"
	"github.com/incensechain/bic/state"
	"github.com/incensechain/bic/tx"
)

const initial = uint64(1_000_000_000_000_000)

var (
	alice = genesis.DevAccounts()[0]
	bob   = genesis.DevAccounts()[1]
)

func newState(t *testing.T, g *genesis.Genesis) *state.State {
	db := muxdb.NewMem()
	t.Cleanup(func() { db.Close() })
	require.Nil(t, g.Setup(db.StateStore(), db.NewStore("props")))
	return state.New(db.StateStore())
}

type txOpts struct {
	to    bic.Address
	value uint64
	fee   uint64
	nonce uint64
	data  []byte
}

func newTx(typ tx.Type, key *ecdsa.PrivateKey, o txOpts) *tx.Transaction {
	return tx.MustSign(tx.NewBuilder(typ).
		To(o.to).
		Value(o.value).
		Fee(o.fee).
		Nonce(o.nonce).
		Timestamp(1_700_000_000_000).
		Data(o.data).
		MustBuild(bic.DevNet), key)
}

func account(t *testing.T, st *state.State, addr bic.Address) *state.Account {
	acc, err := st.GetAccount(addr)
	require.Nil(t, err)
	return acc
}

func TestTransfer(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	require.Nil(t, p.Apply(st, newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 100, fee: 5, data: []byte("hi")})))

	a := account(t, st, alice.Address)
	assert.Equal(t, initial-105, a.Available())
	assert.Equal(t, uint64(1), a.Nonce())
	assert.Equal(t, initial+100, account(t, st, bob.Address).Available())

	// replay
	err := p.Apply(st, newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 100, fee: 5}))
	assert.True(t, errors.Is(err, ErrInvalidNonce))

	require.Nil(t, st.Commit())
	assert.Equal(t, 0, st.Pending())
}

func TestFailedTxLeavesNoEffect(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	// the value is debited but the fee is not affordable
	trx := newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: initial - 1, fee: 2})
	err := p.Apply(st, trx)
	assert.True(t, errors.Is(err, state.ErrUnderflow))

	a := account(t, st, alice.Address)
	assert.Equal(t, initial, a.Available())
	assert.Equal(t, uint64(0), a.Nonce())
	assert.Equal(t, initial, account(t, st, bob.Address).Available())
	assert.Equal(t, 0, st.Pending())
}

func TestVoteUnvote(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	require.Nil(t, p.Apply(st, newTx(tx.TypeVote, alice.PrivateKey, txOpts{to: bob.Address, value: 1000, fee: 1})))
	a := account(t, st, alice.Address)
	assert.Equal(t, initial-1001, a.Available())
	assert.Equal(t, uint64(1000), a.Locked())

	err := p.Apply(st, newTx(tx.TypeUnvote, alice.PrivateKey, txOpts{to: bob.Address, value: 1001, nonce: 1}))
	assert.True(t, errors.Is(err, state.ErrUnderflow))

	require.Nil(t, p.Apply(st, newTx(tx.TypeUnvote, alice.PrivateKey, txOpts{to: bob.Address, value: 400, fee: 1, nonce: 1})))
	a = account(t, st, alice.Address)
	assert.Equal(t, initial-1001+400-1, a.Available())
	assert.Equal(t, uint64(600), a.Locked())
	assert.Equal(t, uint64(2), a.Nonce())
}

func TestDelegate(t *testing.T) {
	g, err := (&genesis.CustomGenesis{
		Name:            "burnnet",
		Network:         "dev",
		MinDelegateBurn: 1000,
		Allocations:     []genesis.CustomAllocation{{Address: alice.Address.String(), Available: 5000}},
	}).Build()
	require.Nil(t, err)
	st := newState(t, g)
	p := New(g)

	tests := []struct {
		name  string
		value uint64
		data  string
		err   error
	}{
		{"short name", 1000, "ab", ErrInvalidDelegate},
		{"bad char", 1000, "Alice", ErrInvalidDelegate},
		{"too large", 1000, "a_very_long_delegate_name", ErrDataTooLarge},
		{"low burn", 999, "alice", ErrInsufficientBurn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Apply(st, newTx(tx.TypeDelegate, alice.PrivateKey, txOpts{value: tt.value, data: []byte(tt.data)}))
			assert.True(t, errors.Is(err, tt.err), "%v", err)
		})
	}

	require.Nil(t, p.Apply(st, newTx(tx.TypeDelegate, alice.PrivateKey, txOpts{value: 1000, data: []byte("alice_01")})))
	a := account(t, st, alice.Address)
	assert.Equal(t, uint64(4000), a.Available())
	assert.Equal(t, uint64(1), a.Nonce())
}

func TestBless(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	require.Nil(t, p.Apply(st, newTx(tx.TypeBlessMe, alice.PrivateKey, txOpts{to: bob.Address, value: 10, fee: 3})))
	require.Nil(t, p.Apply(st, newTx(tx.TypeBlessBoss, alice.PrivateKey, txOpts{to: bob.Address, value: 20, fee: 3, nonce: 1})))

	a, b := account(t, st, alice.Address), account(t, st, bob.Address)
	assert.Equal(t, uint64(990), a.IncenseAvailable())
	assert.Equal(t, uint64(1010), b.IncenseAvailable())
	assert.Equal(t, uint64(980), a.IncensePieceAvailable())
	assert.Equal(t, uint64(1020), b.IncensePieceAvailable())
	assert.Equal(t, initial-6, a.Available())
	assert.Equal(t, initial, b.Available())

	err := p.Apply(st, newTx(tx.TypeBlessMe, alice.PrivateKey, txOpts{to: bob.Address, value: 991, nonce: 2}))
	assert.True(t, errors.Is(err, state.ErrUnderflow))
}

func TestCoinbase(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	require.Nil(t, p.Apply(st, newTx(tx.TypeCoinbase, bic.CoinbaseKey(), txOpts{to: bob.Address, value: 50})))
	assert.Equal(t, initial+50, account(t, st, bob.Address).Available())
	assert.Equal(t, uint64(1), account(t, st, bic.CoinbaseAddress()).Nonce())

	err := p.Apply(st, newTx(tx.TypeCoinbase, alice.PrivateKey, txOpts{to: alice.Address, value: 50}))
	assert.True(t, errors.Is(err, ErrCoinbaseForbidden))

	err = p.Apply(st, newTx(tx.TypeTransfer, bic.CoinbaseKey(), txOpts{to: alice.Address, value: 1, nonce: 1}))
	assert.True(t, errors.Is(err, tx.ErrCoinbaseMisuse))
}

func TestPolicy(t *testing.T) {
	g, err := (&genesis.CustomGenesis{
		Name:        "feenet",
		Network:     "dev",
		MinTxFee:    10,
		Allocations: []genesis.CustomAllocation{{Address: alice.Address.String(), Available: 5000}},
	}).Build()
	require.Nil(t, err)
	st := newState(t, g)
	p := New(g)

	err = p.Apply(st, newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 1, fee: 9}))
	assert.True(t, errors.Is(err, ErrInsufficientFee))

	err = p.Apply(st, newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 1, fee: 10, data: make([]byte, 129)}))
	assert.True(t, errors.Is(err, ErrDataTooLarge))

	err = p.Apply(st, newTx(tx.TypeVote, alice.PrivateKey, txOpts{to: bob.Address, value: 1, fee: 10, data: []byte{1}}))
	assert.True(t, errors.Is(err, ErrDataTooLarge))

	err = p.Apply(st, newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 1 << 63, fee: 10}))
	assert.True(t, errors.Is(err, ErrValueTooLarge))

	// unsigned
	unsigned := tx.NewBuilder(tx.TypeTransfer).To(bob.Address).Fee(10).Timestamp(1).MustBuild(bic.DevNet)
	err = p.Apply(st, unsigned)
	assert.True(t, errors.Is(err, tx.ErrMissingSignature))

	// other network
	other := tx.MustSign(tx.NewBuilder(tx.TypeTransfer).To(bob.Address).Fee(10).Timestamp(1).MustBuild(bic.TestNet), alice.PrivateKey)
	err = p.Apply(st, other)
	assert.True(t, errors.Is(err, tx.ErrNetworkMismatch))

	assert.Equal(t, uint64(0), account(t, st, alice.Address).Nonce())
}

func TestCoinTypeMismatch(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	// a transfer claiming to move incense
	body := codec.NewEncoder(64)
	body.PutByte(bic.DevNet.ID())
	body.PutByte(byte(tx.TypeTransfer))
	body.PutBytes(bob.Address.Bytes())
	body.PutUint64(1)
	body.PutUint64(0)
	body.PutUint64(0)
	body.PutUint64(1_700_000_000_000)
	body.PutByte(byte(tx.CoinIncense))
	body.PutBytes([]byte{})
	encoded := body.Bytes()
	hash := bic.Blake2b(encoded)

	wire := codec.NewEncoder(128)
	wire.PutBytes(hash.Bytes())
	wire.PutBytes(encoded)
	wire.PutBytes(nil)

	trx, err := tx.Decode(wire.Bytes())
	require.Nil(t, err)
	trx = tx.MustSign(trx, alice.PrivateKey)
	require.True(t, trx.Validate(bic.DevNet))

	err = p.Apply(st, trx)
	assert.True(t, errors.Is(err, ErrCoinTypeMismatch))
}

func TestApplyBlock(t *testing.T) {
	st := newState(t, genesis.Devnet())
	p := New(genesis.Devnet())

	txs := []*tx.Transaction{
		newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 10}),
		// nonce gap
		newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 10, nonce: 5}),
		// unsigned
		tx.NewBuilder(tx.TypeTransfer).To(bob.Address).Timestamp(1).MustBuild(bic.DevNet),
		newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 20, nonce: 1}),
		newTx(tx.TypeTransfer, bob.PrivateKey, txOpts{to: alice.Address, value: 5}),
	}

	child, errs := p.ApplyBlock(st, txs)
	require.Len(t, errs, len(txs))
	assert.Nil(t, errs[0])
	assert.True(t, errors.Is(errs[1], ErrInvalidNonce))
	assert.True(t, errors.Is(errs[2], tx.ErrMissingSignature))
	assert.Nil(t, errs[3])
	assert.Nil(t, errs[4])
	assert.Equal(t, st.Depth()+1, child.Depth())

	// parent is untouched until the block layer commits
	assert.Equal(t, initial, account(t, st, alice.Address).Available())
	assert.Equal(t, initial-30+5, account(t, child, alice.Address).Available())
	assert.Equal(t, initial+30-5, account(t, child, bob.Address).Available())

	require.Nil(t, child.Commit())
	require.Nil(t, st.Commit())
	assert.Equal(t, uint64(2), account(t, st, alice.Address).Nonce())
	assert.Equal(t, uint64(1), account(t, st, bob.Address).Nonce())

	// a rolled back block leaves nothing
	child, errs = p.ApplyBlock(st, []*tx.Transaction{
		newTx(tx.TypeTransfer, alice.PrivateKey, txOpts{to: bob.Address, value: 10, nonce: 2}),
	})
	assert.Nil(t, errs[0])
	child.Rollback()
	assert.Equal(t, uint64(2), account(t, st, alice.Address).Nonce())
}

func TestIsDelegateName(t *testing.T) {
	for name, want := range map[string]bool{
		"abc":               true,
		"a_b_1":             true,
		"ab":                false,
		"abcdefghijklmnop":  true,
		"abcdefghijklmnopq": false,
		"ABC":               false,
		"a-b":               false,
	} {
		assert.Equal(t, want, isDelegateName([]byte(name)), name)
	}
}
