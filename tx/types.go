// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"strings"
)

// Type is the kind of instruction a transaction carries.
type Type byte

const (
	TypeCoinbase Type = iota
	TypeTransfer
	TypeDelegate
	TypeVote
	TypeUnvote
	TypeBlessMe
	TypeBlessBoss
)

var typeNames = [...]string{
	TypeCoinbase:  "COINBASE",
	TypeTransfer:  "TRANSFER",
	TypeDelegate:  "DELEGATE",
	TypeVote:      "VOTE",
	TypeUnvote:    "UNVOTE",
	TypeBlessMe:   "BLESSME",
	TypeBlessBoss: "BLESSBOSS",
}

// Valid returns whether t is a recognized type.
func (t Type) Valid() bool {
	return int(t) < len(typeNames)
}

func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", byte(t))
}

// CoinType returns the asset a transaction of type t moves.
func (t Type) CoinType() CoinType {
	switch t {
	case TypeBlessMe:
		return CoinIncense
	case TypeBlessBoss:
		return CoinIncensePiece
	default:
		return CoinIncenseCoin
	}
}

// ParseType parses the type name, case-insensitively.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tx type %q", s)
}

// CoinType is the asset class.
type CoinType byte

const (
	CoinIncenseCoin CoinType = iota
	CoinIncense
	CoinIncensePiece
)

var coinTypeSymbols = [...]string{
	CoinIncenseCoin:  "BIC",
	CoinIncense:      "BICI",
	CoinIncensePiece: "BICIP",
}

// Valid returns whether c is a recognized coin type.
func (c CoinType) Valid() bool {
	return int(c) < len(coinTypeSymbols)
}

func (c CoinType) String() string {
	if c.Valid() {
		return coinTypeSymbols[c]
	}
	return fmt.Sprintf("CoinType(%d)", byte(c))
}
