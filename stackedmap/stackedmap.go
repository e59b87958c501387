// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements the overlay map of a state layer.
// A map keeps pending writes in first-insertion order, so that merging or
// flushing a map replays the writes deterministically.
package stackedmap

import (
	"sync"

	"github.com/incensechain/bic/bic"
)

// Entry is a journal entry. A nil Value marks the key as deleted.
type Entry struct {
	Key   bic.ByteKey
	Value []byte
}

// IsTombstone returns whether the entry deletes the key.
func (e Entry) IsTombstone() bool {
	return e.Value == nil
}

// UpdateFunc computes the new value from the current one.
// cur is nil if the key is absent or deleted. Returning nil deletes the key.
// Entries in side are written in the same atomic step.
type UpdateFunc func(cur []byte) (val []byte, side []Entry, err error)

// Map is a mutex guarded, ordered key to value/tombstone journal.
type Map struct {
	lock    sync.RWMutex
	index   map[bic.ByteKey]int
	journal []Entry
}

// New creates an empty map.
func New() *Map {
	return &Map{index: make(map[bic.ByteKey]int)}
}

// Get returns the value of key. found is true if the key is present in the map,
// including when it's deleted, in which case value is nil.
func (m *Map) Get(key bic.ByteKey) (value []byte, found bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if i, ok := m.index[key]; ok {
		return m.journal[i].Value, true
	}
	return nil, false
}

// Put sets the value of key. A nil value is stored as empty, use Delete to delete.
func (m *Map) Put(key bic.ByteKey, value []byte) {
	if value == nil {
		value = []byte{}
	}
	m.lock.Lock()
	defer m.lock.Unlock()

	m.set(key, value)
}

// Delete marks the key as deleted.
func (m *Map) Delete(key bic.ByteKey) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.set(key, nil)
}

// Update does read-modify-write of key atomically.
// fallback is the current value used if the key is not present in the map.
// If fn fails, the map is untouched.
func (m *Map) Update(key bic.ByteKey, fallback []byte, fn UpdateFunc) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	cur := fallback
	if i, ok := m.index[key]; ok {
		cur = m.journal[i].Value
	}
	val, side, err := fn(cur)
	if err != nil {
		return err
	}
	m.set(key, val)
	for _, e := range side {
		m.set(e.Key, e.Value)
	}
	return nil
}

// Len returns the count of keys.
func (m *Map) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return len(m.journal)
}

// Journal returns a copy of entries in insertion order.
func (m *Map) Journal() []Entry {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return append([]Entry(nil), m.journal...)
}

// MergeInto moves all entries into dst and clears m, as one atomic step
// for readers of both maps. It returns the count of merged entries.
func (m *Map) MergeInto(dst *Map) int {
	// child then parent
	m.lock.Lock()
	defer m.lock.Unlock()
	dst.lock.Lock()
	defer dst.lock.Unlock()

	for _, e := range m.journal {
		dst.set(e.Key, e.Value)
	}
	n := len(m.journal)
	m.reset()
	return n
}

// Detach takes all entries away and clears the map.
func (m *Map) Detach() []Entry {
	m.lock.Lock()
	defer m.lock.Unlock()

	journal := m.journal
	m.reset()
	return journal
}

// Restore puts back entries taken by Detach. Entries whose keys were written
// since then are dropped. Restored entries go before the existing ones.
func (m *Map) Restore(entries []Entry) {
	m.lock.Lock()
	defer m.lock.Unlock()

	journal := make([]Entry, 0, len(entries)+len(m.journal))
	for _, e := range entries {
		if _, shadowed := m.index[e.Key]; !shadowed {
			journal = append(journal, e)
		}
	}
	journal = append(journal, m.journal...)

	m.reset()
	for _, e := range journal {
		m.set(e.Key, e.Value)
	}
}

// Reset drops all entries.
func (m *Map) Reset() {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.reset()
}

func (m *Map) set(key bic.ByteKey, value []byte) {
	if i, ok := m.index[key]; ok {
		m.journal[i].Value = value
		return
	}
	m.index[key] = len(m.journal)
	m.journal = append(m.journal, Entry{key, value})
}

func (m *Map) reset() {
	m.index = make(map[bic.ByteKey]int)
	m.journal = nil
}
