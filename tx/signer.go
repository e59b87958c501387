// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/cache"
)

// signerCache caches recovered signers by hash and signature.
var signerCache = cache.MustNewLRU(8192)

// MustSign signs a transaction using the provided private key.
// It panics if the signing process fails, returning a signed transaction upon success.
func MustSign(tx *Transaction, pk *ecdsa.PrivateKey) *Transaction {
	trx, err := Sign(tx, pk)
	if err != nil {
		panic(err)
	}
	return trx
}

// Sign signs the hash of a transaction using the provided private key.
// It returns the signed copy of the transaction. Signing a signed transaction fails.
func Sign(tx *Transaction, pk *ecdsa.PrivateKey) (*Transaction, error) {
	if tx.IsSigned() {
		return nil, ErrAlreadySigned
	}
	sig, err := crypto.Sign(tx.hash, pk)
	if err != nil {
		return nil, fmt.Errorf("unable to sign transaction: %w", err)
	}
	return tx.withSignature(sig), nil
}

// Signer returns the address recovered from the signature.
func (t *Transaction) Signer() (bic.Address, error) {
	if !t.IsSigned() {
		return bic.Address{}, ErrMissingSignature
	}
	v, err := signerCache.GetOrLoad(string(t.hash)+string(t.signature), func(any) (any, error) {
		pub, err := crypto.SigToPub(t.hash, t.signature)
		if err != nil {
			return nil, err
		}
		return bic.PubkeyToAddress(pub), nil
	})
	if err != nil {
		return bic.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return v.(bic.Address), nil
}
