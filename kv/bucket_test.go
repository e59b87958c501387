// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return err == errNotFound
}

func (m mem) Bulk() Bulk {
	return &memBulk{m: m, pending: mem{}}
}

type memBulk struct {
	m       mem
	pending mem
	deleted []string
}

func (b *memBulk) Put(k, v []byte) error { return b.pending.Put(k, v) }

func (b *memBulk) Delete(k []byte) error {
	delete(b.pending, string(k))
	b.deleted = append(b.deleted, string(k))
	return nil
}

func (b *memBulk) Write() error {
	for _, k := range b.deleted {
		delete(b.m, k)
	}
	for k, v := range b.pending {
		b.m[k] = v
	}
	return nil
}

func (m mem) Iterate(r Range) Iterator {
	var keys []string
	for k := range m {
		kb := []byte(k)
		if bytes.Compare(kb, r.Start) >= 0 && (len(r.Limit) == 0 || bytes.Compare(kb, r.Limit) < 0) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &memIterator{m: m, keys: keys, i: -1}
}

type memIterator struct {
	m    mem
	keys []string
	i    int
}

func (it *memIterator) Next() bool    { it.i++; return it.i < len(it.keys) }
func (it *memIterator) Key() []byte   { return []byte(it.keys[it.i]) }
func (it *memIterator) Value() []byte { return []byte(it.m[it.keys[it.i]]) }
func (it *memIterator) Release()      {}
func (it *memIterator) Error() error  { return nil }

func TestBucket_Get(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b     Bucket
		key   string
		want  string
		found bool
	}{
		{Bucket(""), "k1", "v1", true},
		{Bucket(""), "k2", "v2", true},
		{Bucket("k"), "k1", "", false},
		{Bucket("k"), "1", "v1", true},
		{Bucket("k"), "2", "v2", true},
		{Bucket("k1"), "", "v1", true},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			s := tt.b.NewStore(m)
			got, err := s.Get([]byte(tt.key))
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, !tt.found, s.IsNotFound(err))
		})
	}
}

func TestBucket_IsNotFound(t *testing.T) {
	m := mem{}
	g := Bucket("x").NewStore(m)
	_, err := g.Get([]byte("missing"))
	assert.True(t, g.IsNotFound(err))
	assert.False(t, g.IsNotFound(errors.New("disk failure")))
}

func TestBucket_PutDelete(t *testing.T) {
	m := mem{}
	p := Bucket("b/").NewStore(m)

	assert.Nil(t, p.Put([]byte("k"), []byte("v")))
	assert.Equal(t, mem{"b/k": "v"}, m)

	assert.Nil(t, p.Delete([]byte("k")))
	assert.Empty(t, m)
}

func TestBucket_StoreBulk(t *testing.T) {
	m := mem{"b/old": "x"}
	s := Bucket("b/").NewStore(m)

	bulk := s.Bulk()
	assert.Nil(t, bulk.Put([]byte("k1"), []byte("v1")))
	assert.Nil(t, bulk.Delete([]byte("old")))
	assert.Equal(t, mem{"b/old": "x"}, m, "nothing visible before write")

	assert.Nil(t, bulk.Write())
	assert.Equal(t, mem{"b/k1": "v1"}, m)
}

func TestBucket_StoreIterate(t *testing.T) {
	m := mem{
		"a/1":  "outside",
		"b/1":  "v1",
		"b/2":  "v2",
		"b/31": "v31",
		"c/1":  "outside",
	}
	s := Bucket("b/").NewStore(m)

	collect := func(r Range) (keys []string) {
		it := s.Iterate(r)
		defer it.Release()
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.Nil(t, it.Error())
		return
	}

	assert.Equal(t, []string{"1", "2", "31"}, collect(Range{}))
	assert.Equal(t, []string{"2", "31"}, collect(Range{Start: []byte("2")}))
	assert.Equal(t, []string{"1", "2"}, collect(Range{Limit: []byte("3")}))
	assert.Equal(t, []string{"31"}, collect(PrefixRange([]byte("3"))))
}

func TestPrefixRange(t *testing.T) {
	r := PrefixRange([]byte{1, 0xff})
	assert.Equal(t, []byte{1, 0xff}, r.Start)
	assert.Equal(t, []byte{2}, r.Limit)

	r = PrefixRange(nil)
	assert.Empty(t, r.Start)
	assert.Nil(t, r.Limit)
}
