// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bic

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
)

// coinbaseKeyHex is the publicly known key which signs block rewards.
// Since anyone can sign with it, only coinbase transactions may use it.
const coinbaseKeyHex = "8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692be63"

var coinbase = sync.OnceValues(func() (*ecdsa.PrivateKey, Address) {
	key, err := crypto.HexToECDSA(coinbaseKeyHex)
	if err != nil {
		panic(err)
	}
	return key, PubkeyToAddress(&key.PublicKey)
})

// CoinbaseKey returns the coinbase private key.
func CoinbaseKey() *ecdsa.PrivateKey {
	key, _ := coinbase()
	return key
}

// CoinbaseAddress returns the address of the coinbase key.
func CoinbaseAddress() Address {
	_, addr := coinbase()
	return addr
}
