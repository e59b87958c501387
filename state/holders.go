// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/kv"
)

// IterateHolders visits the committed holders of a secondary asset in address order.
// tag is TagIncense or TagIncensePiece. Iteration stops if fn returns false.
func IterateHolders(store kv.Store, tag byte, fn func(addr bic.Address, balance uint64) bool) error {
	if tag != TagIncense && tag != TagIncensePiece {
		return errors.Errorf("not a holders tag: %d", tag)
	}

	it := store.Iterate(kv.PrefixRange([]byte{tag}))
	defer it.Release()

	for it.Next() {
		key, val := it.Key(), it.Value()
		if len(key) != 1+bic.AddressLength || len(val) != 8 {
			return &Error{fmt.Errorf("malformed holder entry %x", key)}
		}
		if !fn(bic.BytesToAddress(key[1:]), binary.BigEndian.Uint64(val)) {
			break
		}
	}
	if err := it.Error(); err != nil {
		return &Error{err}
	}
	return nil
}
