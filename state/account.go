// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"fmt"

	"github.com/incensechain/bic/bic"
)

// AccountSize is the length of the encoded account.
const AccountSize = 5 * 8

// Account is the balances and nonce of an address.
// Fields are only mutated by State.
type Account struct {
	address               bic.Address
	available             uint64
	locked                uint64
	nonce                 uint64
	incensePieceAvailable uint64
	incenseAvailable      uint64
}

func newAccount(addr bic.Address) *Account {
	return &Account{address: addr}
}

// AccountFromBytes decodes the account of addr.
func AccountFromBytes(addr bic.Address, b []byte) (*Account, error) {
	if len(b) != AccountSize {
		return nil, fmt.Errorf("account: invalid encoded length %d", len(b))
	}
	return &Account{
		address:               addr,
		available:             binary.BigEndian.Uint64(b),
		locked:                binary.BigEndian.Uint64(b[8:]),
		nonce:                 binary.BigEndian.Uint64(b[16:]),
		incensePieceAvailable: binary.BigEndian.Uint64(b[24:]),
		incenseAvailable:      binary.BigEndian.Uint64(b[32:]),
	}, nil
}

// Bytes encodes the account. The address is not included.
func (a *Account) Bytes() []byte {
	b := make([]byte, 0, AccountSize)
	b = binary.BigEndian.AppendUint64(b, a.available)
	b = binary.BigEndian.AppendUint64(b, a.locked)
	b = binary.BigEndian.AppendUint64(b, a.nonce)
	b = binary.BigEndian.AppendUint64(b, a.incensePieceAvailable)
	b = binary.BigEndian.AppendUint64(b, a.incenseAvailable)
	return b
}

// IsEmpty returns if the account is equivalent to an absent one.
func (a *Account) IsEmpty() bool {
	return a.available == 0 &&
		a.locked == 0 &&
		a.nonce == 0 &&
		a.incensePieceAvailable == 0 &&
		a.incenseAvailable == 0
}

func (a *Account) Address() bic.Address          { return a.address }
func (a *Account) Available() uint64             { return a.available }
func (a *Account) Locked() uint64                { return a.locked }
func (a *Account) Nonce() uint64                 { return a.nonce }
func (a *Account) IncensePieceAvailable() uint64 { return a.incensePieceAvailable }
func (a *Account) IncenseAvailable() uint64      { return a.incenseAvailable }

func (a *Account) String() string {
	return fmt.Sprintf("Account(%v available=%d locked=%d nonce=%d incense=%d incensePiece=%d)",
		a.address, a.available, a.locked, a.nonce, a.incenseAvailable, a.incensePieceAvailable)
}

// add returns v+delta, failing instead of wrapping around.
func add(v uint64, delta int64) (uint64, error) {
	if delta >= 0 {
		r := v + uint64(delta)
		if r < v {
			return 0, ErrOverflow
		}
		return r, nil
	}
	// magnitude of a negative int64, MinInt64 included
	d := uint64(-(delta + 1)) + 1
	if d > v {
		return 0, ErrUnderflow
	}
	return v - d, nil
}
