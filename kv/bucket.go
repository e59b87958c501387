// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket is a key prefix that carves a logical store out of a shared one.
type Bucket string

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

// key returns a fresh slice, since the source may retain it.
func (b Bucket) key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

type bucketStore struct {
	b   Bucket
	src Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) { return s.src.Get(s.b.key(key)) }
func (s *bucketStore) IsNotFound(err error) bool      { return s.src.IsNotFound(err) }
func (s *bucketStore) Put(key, val []byte) error      { return s.src.Put(s.b.key(key), val) }
func (s *bucketStore) Delete(key []byte) error        { return s.src.Delete(s.b.key(key)) }

func (s *bucketStore) Bulk() Bulk {
	return &bucketBulk{s.b, s.src.Bulk()}
}

func (s *bucketStore) Iterate(r Range) Iterator {
	r.Start = s.b.key(r.Start)
	if len(r.Limit) == 0 {
		// all keys of the bucket
		r.Limit = util.BytesPrefix([]byte(s.b)).Limit
	} else {
		r.Limit = s.b.key(r.Limit)
	}
	return &bucketIterator{len(s.b), s.src.Iterate(r)}
}

type bucketBulk struct {
	b   Bucket
	src Bulk
}

func (bk *bucketBulk) Put(key, val []byte) error { return bk.src.Put(bk.b.key(key), val) }
func (bk *bucketBulk) Delete(key []byte) error   { return bk.src.Delete(bk.b.key(key)) }
func (bk *bucketBulk) Write() error              { return bk.src.Write() }

type bucketIterator struct {
	n int
	Iterator
}

// Key returns the key with the bucket stripped.
func (it *bucketIterator) Key() []byte {
	return it.Iterator.Key()[it.n:]
}
