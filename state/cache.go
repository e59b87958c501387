// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	"github.com/qianbin/directcache"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/cache"
	"github.com/incensechain/bic/stackedmap"
)

// storeCache caches values read from the durable store.
// An empty value stands for absence.
type storeCache struct {
	c     *directcache.Cache
	stats cache.Stats

	lock sync.Mutex
	gen  uint64 // bumped on each flush
}

func newStoreCache(sizeMB int) *storeCache {
	return &storeCache{c: directcache.New(sizeMB * 1024 * 1024)}
}

func (sc *storeCache) get(key bic.ByteKey) (val []byte, ok bool) {
	if sc.c.AdvGet(key.Bytes(), func(v []byte) {
		if len(v) > 0 {
			val = append([]byte(nil), v...)
		}
	}, false) {
		sc.stats.Hit()
		return val, true
	}
	sc.stats.Miss()
	return nil, false
}

func (sc *storeCache) generation() uint64 {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	return sc.gen
}

// fill caches the value read from the store, unless a flush happened since gen.
func (sc *storeCache) fill(gen uint64, key bic.ByteKey, val []byte) {
	sc.lock.Lock()
	defer sc.lock.Unlock()
	if gen == sc.gen {
		sc.c.Set(key.Bytes(), val)
	}
}

// flushed updates the cache with entries just written to the store.
func (sc *storeCache) flushed(entries []stackedmap.Entry) {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	sc.gen++
	for _, e := range entries {
		// tombstone is cached as empty
		sc.c.Set(e.Key.Bytes(), e.Value)
	}
	metricCacheHitRate().Set(int64(sc.stats.HitRate() * 1000))
}
