// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package muxdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/kv"
)

func TestMuxdb(t *testing.T) {
	db := NewMem()
	db.Close()

	path := filepath.Join(t.TempDir(), "main.db")
	opts := Options{
		Network:                bic.TestNet,
		OpenFilesCacheCapacity: 64,
		ReadCacheMB:            16,
		WriteBufferMB:          16,
	}
	db, err := Open(path, &opts)
	require.Nil(t, err)

	store := db.StateStore()
	assert.Nil(t, store.Put([]byte("k"), []byte("v")))
	assert.Nil(t, db.Close())

	// reopen
	db, err = Open(path, &opts)
	require.Nil(t, err)
	val, err := db.StateStore().Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), val)
	assert.Nil(t, db.Close())

	// another network
	_, err = Open(path, &Options{Network: bic.MainNet})
	assert.Error(t, err)
}

func TestConfigLoadSave(t *testing.T) {
	db := NewMem()
	defer db.Close()

	store := db.NewStore(propStoreName)

	cfg := config{Network: bic.DevNet}
	err := cfg.LoadOrSave(store)
	assert.Nil(t, err)

	cfg2 := config{}
	err = cfg2.LoadOrSave(store)
	assert.Nil(t, err)
	assert.Equal(t, cfg.Network, cfg2.Network)
}

func TestStoresAreIsolated(t *testing.T) {
	db := NewMem()
	defer db.Close()

	state := db.StateStore()
	named := db.NewStore("named")

	assert.Nil(t, state.Put([]byte("k"), []byte("state")))
	assert.Nil(t, named.Put([]byte("k"), []byte("named")))

	val, err := state.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("state"), val)

	_, err = db.NewStore("other").Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))
}

func TestBulkAndIterate(t *testing.T) {
	db := NewMem()
	defer db.Close()

	store := db.StateStore()
	bulk := store.Bulk()
	for _, k := range []string{"a1", "a2", "b1"} {
		assert.Nil(t, bulk.Put([]byte(k), []byte(k)))
	}
	_, err := store.Get([]byte("a1"))
	assert.True(t, store.IsNotFound(err), "bulk is not written")
	assert.Nil(t, bulk.Write())

	var keys []string
	it := store.Iterate(kv.PrefixRange([]byte("a")))
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.Nil(t, it.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)

	bulk = store.Bulk()
	assert.Nil(t, bulk.Delete([]byte("a1")))
	assert.Nil(t, bulk.Write())
	_, err = store.Get([]byte("a1"))
	assert.True(t, store.IsNotFound(err))
}
