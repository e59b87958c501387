// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bic

import (
	"fmt"
	"strings"
)

// Network identifies the network a transaction is valid on.
type Network byte

// Known networks.
const (
	MainNet Network = 0
	TestNet Network = 1
	DevNet  Network = 2
)

// ID returns the network id byte.
func (n Network) ID() byte {
	return byte(n)
}

func (n Network) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case DevNet:
		return "devnet"
	}
	return fmt.Sprintf("network(%d)", byte(n))
}

// ParseNetwork parses network name, e.g. "main" or "mainnet".
func ParseNetwork(name string) (Network, error) {
	switch strings.TrimSuffix(strings.ToLower(name), "net") {
	case "main":
		return MainNet, nil
	case "test":
		return TestNet, nil
	case "dev":
		return DevNet, nil
	}
	return 0, fmt.Errorf("unknown network %q", name)
}
