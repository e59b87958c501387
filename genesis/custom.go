// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/incensechain/bic/bic"
)

// CustomGenesis is user customized genesis.
type CustomGenesis struct {
	Name            string             `yaml:"name"`
	Network         string             `yaml:"network"`
	MinTxFee        uint64             `yaml:"minTxFee"`
	MinDelegateBurn uint64             `yaml:"minDelegateBurn"`
	Allocations     []CustomAllocation `yaml:"allocations"`
}

// CustomAllocation is the account will be allocated in the genesis.
type CustomAllocation struct {
	Address      string `yaml:"address"`
	Available    uint64 `yaml:"available"`
	Locked       uint64 `yaml:"locked"`
	Incense      uint64 `yaml:"incense"`
	IncensePiece uint64 `yaml:"incensePiece"`
}

// LoadCustom loads the genesis from a yaml file.
func LoadCustom(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cg CustomGenesis
	if err := yaml.Unmarshal(data, &cg); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return cg.Build()
}

// Build validates the custom genesis and builds it.
func (cg *CustomGenesis) Build() (*Genesis, error) {
	if cg.Name == "" {
		return nil, errors.New("genesis name required")
	}
	network, err := parseNetwork(cg.Network)
	if err != nil {
		return nil, err
	}

	seen := make(map[bic.Address]bool, len(cg.Allocations))
	allocs := make([]Allocation, 0, len(cg.Allocations))
	for i, ca := range cg.Allocations {
		addr, err := bic.ParseAddress(ca.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "allocation #%d", i)
		}
		if seen[addr] {
			return nil, errors.Errorf("allocation #%d: duplicated address %v", i, addr)
		}
		seen[addr] = true
		allocs = append(allocs, Allocation{
			Address:      addr,
			Available:    ca.Available,
			Locked:       ca.Locked,
			Incense:      ca.Incense,
			IncensePiece: ca.IncensePiece,
		})
	}
	return newGenesis(cg.Name, network, cg.MinTxFee, cg.MinDelegateBurn, allocs), nil
}

// parseNetwork accepts a network name or a numeric id.
func parseNetwork(s string) (bic.Network, error) {
	if n, err := bic.ParseNetwork(s); err == nil {
		return n, nil
	}
	id, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, errors.Errorf("invalid network %q", s)
	}
	return bic.Network(id), nil
}
