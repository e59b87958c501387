// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"bytes"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/metrics"
)

var (
	ErrInvalidHash      = errors.New("invalid hash length")
	ErrNetworkMismatch  = errors.New("network mismatch")
	ErrUnknownType      = errors.New("unknown tx type")
	ErrInvalidTo        = errors.New("invalid recipient length")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrMissingData      = errors.New("missing data or encoded body")
	ErrMissingSignature = errors.New("missing signature")
	ErrHashMismatch     = errors.New("hash mismatch")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrCoinbaseMisuse   = errors.New("coinbase key used for non-coinbase tx")
	ErrAlreadySigned    = errors.New("tx already signed")
)

var metricValidationCount = metrics.LazyLoadCounterVec("tx_validation_count", []string{"result"})

// Validate returns whether the transaction is structurally and cryptographically sound on network.
func (t *Transaction) Validate(network bic.Network) bool {
	return t.Verify(network) == nil
}

// Verify checks the transaction without touching any state.
// It returns the first failed rule.
func (t *Transaction) Verify(network bic.Network) error {
	err := t.verify(network)
	result := "ok"
	if err != nil {
		result = "invalid"
	}
	metricValidationCount().AddWithLabel(1, map[string]string{"result": result})
	return err
}

func (t *Transaction) verify(network bic.Network) error {
	if len(t.hash) != bic.HashLength {
		return ErrInvalidHash
	}
	if t.body.Network != network {
		return ErrNetworkMismatch
	}
	if !t.body.Type.Valid() {
		return ErrUnknownType
	}
	if len(t.body.To) != bic.AddressLength {
		return ErrInvalidTo
	}
	// value, fee and nonce are unsigned
	if t.body.Timestamp == 0 {
		return ErrInvalidTimestamp
	}
	if t.body.Data == nil || len(t.encoded) == 0 {
		return ErrMissingData
	}
	if !t.IsSigned() {
		return ErrMissingSignature
	}
	if h := bic.Blake2b(t.encoded); !bytes.Equal(h[:], t.hash) {
		return ErrHashMismatch
	}

	if len(t.signature) != crypto.SignatureLength {
		return ErrInvalidSignature
	}
	pub, err := crypto.Ecrecover(t.hash, t.signature)
	if err != nil {
		return ErrInvalidSignature
	}
	// rejects malleable high-S signatures
	if !crypto.VerifySignature(pub, t.hash, t.signature[:crypto.SignatureLength-1]) {
		return ErrInvalidSignature
	}
	signer, err := t.Signer()
	if err != nil {
		return err
	}
	if t.body.Type != TypeCoinbase && signer == bic.CoinbaseAddress() {
		return ErrCoinbaseMisuse
	}
	return nil
}
