// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tx implements the canonical transaction format: encoding, hashing, signing and validation.
package tx

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/codec"
)

// Transaction is an immutable instruction mutating the ledger.
// The signature is the only part assigned after construction, by Sign.
type Transaction struct {
	body      body
	encoded   []byte
	hash      []byte
	signature []byte
}

type body struct {
	Network   bic.Network
	Type      Type
	To        []byte
	Value     uint64
	Fee       uint64
	Nonce     uint64
	Timestamp uint64
	CoinType  CoinType
	Data      []byte
}

func (b *body) encode() ([]byte, error) {
	enc := codec.NewEncoder(1 + 1 + 1 + len(b.To) + 4*8 + 1 + 4 + len(b.Data))
	enc.PutByte(b.Network.ID())
	enc.PutByte(byte(b.Type))
	enc.PutBytes(b.To)
	enc.PutUint64(b.Value)
	enc.PutUint64(b.Fee)
	enc.PutUint64(b.Nonce)
	enc.PutUint64(b.Timestamp)
	enc.PutByte(byte(b.CoinType))
	enc.PutBytes(b.Data)
	if err := enc.Err(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

func decodeBody(encoded []byte) (b body, err error) {
	dec := codec.NewDecoder(encoded)
	b.Network = bic.Network(dec.Byte())
	b.Type = Type(dec.Byte())
	b.To = dec.Bytes()
	b.Value = dec.Uint64()
	b.Fee = dec.Uint64()
	b.Nonce = dec.Uint64()
	b.Timestamp = dec.Uint64()
	b.CoinType = CoinType(dec.Byte())
	b.Data = dec.Bytes()
	err = dec.Finish()
	return
}

// Decode reconstructs a transaction from its wire bytes.
// The hash is taken as is, Verify checks it against the body.
func Decode(b []byte) (*Transaction, error) {
	dec := codec.NewDecoder(b)
	hash := dec.Bytes()
	encoded := dec.Bytes()
	sig := dec.Bytes()
	if err := dec.Finish(); err != nil {
		return nil, errors.Wrap(err, "decode tx")
	}

	body, err := decodeBody(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "decode tx body")
	}
	return &Transaction{
		body:      body,
		encoded:   encoded,
		hash:      hash,
		signature: sig,
	}, nil
}

// MustDecode is Decode that panics on error.
func MustDecode(b []byte) *Transaction {
	trx, err := Decode(b)
	if err != nil {
		panic(err)
	}
	return trx
}

// Bytes returns the wire bytes: hash, encoded body and signature, each size-prefixed.
func (t *Transaction) Bytes() []byte {
	enc := codec.NewEncoder(len(t.hash) + len(t.encoded) + len(t.signature) + 12)
	enc.PutBytes(t.hash)
	enc.PutBytes(t.encoded)
	enc.PutBytes(t.signature)
	// parts were size checked when built or decoded
	return enc.Bytes()
}

func (t *Transaction) Network() bic.Network { return t.body.Network }
func (t *Transaction) Type() Type            { return t.body.Type }
func (t *Transaction) Value() uint64         { return t.body.Value }
func (t *Transaction) Fee() uint64           { return t.body.Fee }
func (t *Transaction) Nonce() uint64         { return t.body.Nonce }

// Timestamp returns the creation time in milliseconds.
func (t *Transaction) Timestamp() uint64 { return t.body.Timestamp }

// CoinType returns the coin type carried by the body.
func (t *Transaction) CoinType() CoinType { return t.body.CoinType }

// To returns the recipient.
func (t *Transaction) To() bic.Address { return bic.BytesToAddress(t.body.To) }

// Data returns a copy of the payload.
func (t *Transaction) Data() []byte { return append([]byte{}, t.body.Data...) }

// Hash returns the Blake2b hash of the encoded body, as carried by the transaction.
func (t *Transaction) Hash() bic.Bytes32 { return bic.BytesToBytes32(t.hash) }

// Encoded returns a copy of the encoded body.
func (t *Transaction) Encoded() []byte { return append([]byte(nil), t.encoded...) }

// Signature returns a copy of the signature, empty if unsigned.
func (t *Transaction) Signature() []byte { return append([]byte(nil), t.signature...) }

// IsSigned returns whether the transaction carries a signature.
func (t *Transaction) IsSigned() bool { return len(t.signature) > 0 }

// withSignature returns a copy of t carrying sig.
func (t *Transaction) withSignature(sig []byte) *Transaction {
	cpy := *t
	cpy.signature = append([]byte(nil), sig...)
	return &cpy
}

func (t *Transaction) String() string {
	signer := "N/A"
	if addr, err := t.Signer(); err == nil {
		signer = addr.String()
	}
	return fmt.Sprintf(`
	Tx(%v)
	Network:        %v
	Type:           %v
	Signer:         %v
	To:             %x
	Value:          %v %v
	Fee:            %v
	Nonce:          %v
	Timestamp:      %v
	Data:           0x%x
	Signature:      0x%x
`, t.Hash(), t.body.Network, t.body.Type, signer, t.body.To,
		t.body.Value, t.body.CoinType, t.body.Fee, t.body.Nonce, t.body.Timestamp, t.body.Data, t.signature)
}
