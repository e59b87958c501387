// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/stackedmap"
)

func K(s string) bic.ByteKey { return bic.NewByteKey([]byte(s)) }

func M(a ...any) []any {
	return a
}

func TestMap(t *testing.T) {
	assert := assert.New(t)
	m := stackedmap.New()

	tests := []struct {
		f         func()
		getKey    string
		getReturn []any
		length    int
	}{
		{func() {}, "foo", M([]byte(nil), false), 0},
		{func() { m.Put(K("foo"), []byte("bar")) }, "foo", M([]byte("bar"), true), 1},
		{func() { m.Put(K("foo"), []byte("baz")) }, "foo", M([]byte("baz"), true), 1},
		{func() { m.Delete(K("foo")) }, "foo", M([]byte(nil), true), 1},
		{func() { m.Put(K("qux"), nil) }, "qux", M([]byte{}, true), 2},
		{func() { m.Reset() }, "foo", M([]byte(nil), false), 0},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.getReturn, M(m.Get(K(test.getKey))))
		assert.Equal(test.length, m.Len())
	}
}

func TestMapJournalOrder(t *testing.T) {
	assert := assert.New(t)
	m := stackedmap.New()

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a", "c"},
		{"a3", "b3"},
	}
	for _, kv := range kvs {
		m.Put(K(kv.k), []byte(kv.v))
	}
	m.Delete(K("a1"))

	journal := m.Journal()
	assert.Equal([]stackedmap.Entry{
		{K("a"), []byte("c")},
		{K("a1"), nil},
		{K("a2"), []byte("b2")},
		{K("a3"), []byte("b3")},
	}, journal)
	assert.True(journal[1].IsTombstone())

	// journal is a copy
	journal[0].Value = []byte("x")
	v, _ := m.Get(K("a"))
	assert.Equal([]byte("c"), v)
}

func TestMapUpdate(t *testing.T) {
	assert := assert.New(t)
	m := stackedmap.New()

	appendX := func(cur []byte) ([]byte, []stackedmap.Entry, error) {
		return append(append([]byte{}, cur...), 'x'), nil, nil
	}

	// fallback used when absent
	assert.Nil(m.Update(K("k"), []byte("fb"), appendX))
	v, _ := m.Get(K("k"))
	assert.Equal([]byte("fbx"), v)

	// local value shadows fallback
	assert.Nil(m.Update(K("k"), []byte("ignored"), appendX))
	v, _ = m.Get(K("k"))
	assert.Equal([]byte("fbxx"), v)

	// failing update leaves map untouched
	errFail := errors.New("fail")
	assert.Equal(errFail, m.Update(K("k"), nil, func([]byte) ([]byte, []stackedmap.Entry, error) { return nil, nil, errFail }))
	v, _ = m.Get(K("k"))
	assert.Equal([]byte("fbxx"), v)

	// returning nil deletes, side entries written together
	assert.Nil(m.Update(K("k"), nil, func([]byte) ([]byte, []stackedmap.Entry, error) {
		return nil, []stackedmap.Entry{{K("side"), []byte("s")}}, nil
	}))
	v, found := m.Get(K("k"))
	assert.True(found)
	assert.Nil(v)
	v, _ = m.Get(K("side"))
	assert.Equal([]byte("s"), v)
}

func TestMapConcurrentUpdate(t *testing.T) {
	m := stackedmap.New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_ = m.Update(K("counter"), []byte("0"), func(cur []byte) ([]byte, []stackedmap.Entry, error) {
					n, err := strconv.Atoi(string(cur))
					if err != nil {
						return nil, nil, err
					}
					return []byte(strconv.Itoa(n + 1)), nil, nil
				})
			}
		}()
	}
	wg.Wait()

	v, _ := m.Get(K("counter"))
	assert.Equal(t, "1000", string(v))
}

func TestMapMergeInto(t *testing.T) {
	assert := assert.New(t)
	parent := stackedmap.New()
	child := stackedmap.New()

	parent.Put(K("p"), []byte("1"))
	parent.Put(K("shared"), []byte("old"))
	child.Put(K("shared"), []byte("new"))
	child.Delete(K("gone"))

	assert.Equal(2, child.MergeInto(parent))
	assert.Equal(0, child.Len())
	assert.Equal(0, child.MergeInto(parent), "idempotent once empty")

	assert.Equal([]stackedmap.Entry{
		{K("p"), []byte("1")},
		{K("shared"), []byte("new")},
		{K("gone"), nil},
	}, parent.Journal())
}

func TestMapDetachRestore(t *testing.T) {
	assert := assert.New(t)
	m := stackedmap.New()

	m.Put(K("a"), []byte("1"))
	m.Put(K("b"), []byte("2"))

	detached := m.Detach()
	assert.Len(detached, 2)
	assert.Equal(0, m.Len())

	// newer write
	m.Put(K("b"), []byte("3"))
	m.Put(K("c"), []byte("4"))

	m.Restore(detached)
	assert.Equal([]stackedmap.Entry{
		{K("a"), []byte("1")},
		{K("b"), []byte("3")},
		{K("c"), []byte("4")},
	}, m.Journal())
}
