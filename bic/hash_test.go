// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bic

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

func BenchmarkBlake2b(b *testing.B) {
	data := make([]byte, 100)

	rng := rand.New(rand.NewPCG(1, 0)) //#nosec G404
	for i := range data {
		data[i] = byte(rng.Uint64())
	}
	b.Run("Blake2b", func(b *testing.B) {
		for b.Loop() {
			Blake2b(data).Bytes()
		}
	})

	b.Run("BlakeFn", func(b *testing.B) {
		for b.Loop() {
			Blake2bFn(func(w io.Writer) {
				w.Write(data)
			})
		}
	})
}

func TestBlake2b(t *testing.T) {
	data := []byte("incense")
	assert.Equal(t, Bytes32(blake2b.Sum256(data)), Blake2b(data))

	// multi-part input hashes the concatenation
	assert.Equal(t, Blake2b(data), Blake2b([]byte("inc"), []byte("ense")))
	assert.Equal(t, Blake2b(nil), Blake2b())
}

func TestKeccak256(t *testing.T) {
	data := []byte("incense")

	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	assert.Equal(t, BytesToBytes32(h.Sum(nil)), Keccak256(data))

	// pooled state must be reset between calls
	assert.Equal(t, Keccak256(data), Keccak256(data))
}
