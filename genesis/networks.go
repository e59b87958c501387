// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
)

const (
	nano = uint64(1)
	bic1 = 1_000_000_000 * nano

	mainnetMinTxFee        = 5_000_000 * nano
	mainnetMinDelegateBurn = 1000 * bic1
)

// DevAccount account for development.
type DevAccount struct {
	Address    bic.Address
	PrivateKey *ecdsa.PrivateKey
}

// DevAccounts returns pre-alloced accounts of the devnet.
var DevAccounts = sync.OnceValue(func() []DevAccount {
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
		"fbb9e7ba5fe9969a71c6599052237b91adeb1e5fc0c96727b66e56ff5d02f9d0",
		"547fb081e73dc2e22b4aae5c60e2970b008ac4fc3073aebc27d41ace9c4f53e9",
		"c8c53657e41a8d669349fc287f57457bd746cb1fcfc38cf94d235deb2cfca81b",
		"87e0eba9c86c494d98353800571089f316740b0cb84c9a7cdf2fe5c9997c7966",
	}
	accs := make([]DevAccount, 0, len(privKeys))
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{bic.PubkeyToAddress(&pk.PublicKey), pk})
	}
	return accs
})

// Mainnet returns the genesis of the main network. Coins enter the ledger only by coinbase.
var Mainnet = sync.OnceValue(func() *Genesis {
	return newGenesis("mainnet", bic.MainNet, mainnetMinTxFee, mainnetMinDelegateBurn, nil)
})

// Testnet returns the genesis of the test network.
var Testnet = sync.OnceValue(func() *Genesis {
	faucet := bic.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	return newGenesis("testnet", bic.TestNet, 0, 0, []Allocation{
		{Address: faucet, Available: 1_000_000_000 * bic1},
	})
})

// Devnet returns the genesis of the development network.
var Devnet = sync.OnceValue(func() *Genesis {
	var allocs []Allocation
	for _, a := range DevAccounts() {
		allocs = append(allocs, Allocation{
			Address:      a.Address,
			Available:    1_000_000 * bic1,
			Incense:      1000,
			IncensePiece: 1000,
		})
	}
	return newGenesis("devnet", bic.DevNet, 0, 0, allocs)
})

// ForNetwork returns the genesis of a known network.
func ForNetwork(n bic.Network) (*Genesis, error) {
	switch n {
	case bic.MainNet:
		return Mainnet(), nil
	case bic.TestNet:
		return Testnet(), nil
	case bic.DevNet:
		return Devnet(), nil
	}
	return nil, errors.Errorf("no genesis for %v", n)
}
