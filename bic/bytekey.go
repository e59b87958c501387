// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bic

import (
	"encoding/hex"
	"strings"
)

// ByteKey is an immutable wrapper around a raw byte sequence.
// It is comparable, so it can be used as map key, and ordered by
// lexicographic byte order.
type ByteKey struct {
	s string
}

// NewByteKey copies b into a ByteKey.
func NewByteKey(b []byte) ByteKey {
	return ByteKey{string(b)}
}

// JoinByteKey builds a key by concatenating parts without delimiter.
func JoinByteKey(parts ...[]byte) ByteKey {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, p := range parts {
		sb.Write(p)
	}
	return ByteKey{sb.String()}
}

// Bytes returns a copy of the underlying bytes.
func (k ByteKey) Bytes() []byte {
	return []byte(k.s)
}

// Len returns the length in bytes.
func (k ByteKey) Len() int {
	return len(k.s)
}

// HasPrefix reports whether the key begins with prefix.
func (k ByteKey) HasPrefix(prefix []byte) bool {
	return strings.HasPrefix(k.s, string(prefix))
}

// Compare returns -1, 0 or 1 by lexicographic byte order.
func (k ByteKey) Compare(other ByteKey) int {
	return strings.Compare(k.s, other.s)
}

// Equal returns whether both keys hold the same bytes.
func (k ByteKey) Equal(other ByteKey) bool {
	return k.s == other.s
}

// String implements the stringer interface.
func (k ByteKey) String() string {
	return "0x" + hex.EncodeToString([]byte(k.s))
}
