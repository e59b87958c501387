// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
)

// Builder to make it easy to build transaction.
type Builder struct {
	body body
}

// NewBuilder creates a builder of the given type.
func NewBuilder(t Type) *Builder {
	return &Builder{body: body{Type: t}}
}

// To set recipient.
func (b *Builder) To(to bic.Address) *Builder {
	b.body.To = to.Bytes()
	return b
}

// Value set amount.
func (b *Builder) Value(value uint64) *Builder {
	b.body.Value = value
	return b
}

// Fee set fee.
func (b *Builder) Fee(fee uint64) *Builder {
	b.body.Fee = fee
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Timestamp set creation time in milliseconds.
func (b *Builder) Timestamp(ms uint64) *Builder {
	b.body.Timestamp = ms
	return b
}

// Data set payload.
func (b *Builder) Data(data []byte) *Builder {
	b.body.Data = append([]byte{}, data...)
	return b
}

// Build builds the unsigned transaction for the network.
// The coin type is derived from the type.
func (b *Builder) Build(network bic.Network) (*Transaction, error) {
	if !b.body.Type.Valid() {
		return nil, errors.Wrap(ErrUnknownType, "build tx")
	}
	body := b.body
	body.Network = network
	body.CoinType = body.Type.CoinType()
	body.To = append([]byte(nil), body.To...)
	body.Data = append([]byte{}, body.Data...)

	encoded, err := body.encode()
	if err != nil {
		return nil, errors.Wrap(err, "build tx")
	}
	hash := bic.Blake2b(encoded)
	return &Transaction{
		body:    body,
		encoded: encoded,
		hash:    hash.Bytes(),
	}, nil
}

// MustBuild is Build that panics on error.
func (b *Builder) MustBuild(network bic.Network) *Transaction {
	trx, err := b.Build(network)
	if err != nil {
		panic(err)
	}
	return trx
}

// New builds an unsigned transaction.
func New(network bic.Network, t Type, to bic.Address, value, fee, nonce, timestamp uint64, data []byte) (*Transaction, error) {
	return NewBuilder(t).
		To(to).
		Value(value).
		Fee(fee).
		Nonce(nonce).
		Timestamp(timestamp).
		Data(data).
		Build(network)
}
