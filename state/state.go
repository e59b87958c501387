// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/incensechain/bic/bic"
	"github.com/incensechain/bic/kv"
	"github.com/incensechain/bic/log"
	"github.com/incensechain/bic/stackedmap"
)

// Key tags. A key is the tag followed by the address and an optional sub key.
const (
	TagAccount      = byte(0)
	TagCode         = byte(1)
	TagStorage      = byte(2)
	TagIncense      = byte(3)
	TagIncensePiece = byte(4)
)

var (
	// ErrUnsupported is returned by the contract code and storage operations.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrOverflow is returned when an adjustment exceeds the max value of a field.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when an adjustment makes a field negative.
	ErrUnderflow = errors.New("arithmetic underflow")
)

var logger = log.WithContext("pkg", "state")

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.cause }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.cause }

// Option configures the root state.
type Option func(*State)

// WithCacheSize enables the read cache of the durable store, sized in MB.
func WithCacheSize(sizeMB int) Option {
	return func(s *State) {
		if sizeMB > 0 {
			s.cache = newStoreCache(sizeMB)
		}
	}
}

// State is a layer of account state.
// The root layer is backed by the durable store, other layers by their parents.
type State struct {
	parent *State
	depth  int
	local  *stackedmap.Map

	// held shared by writers and exclusively by commit
	mu sync.RWMutex

	// root only
	store      kv.Store
	cache      *storeCache
	flushing   atomic.Pointer[stackedmap.Map]
	flushGen   atomic.Uint64
	reads      singleflight.Group
	commitLock sync.Mutex
}

// New creates the root state over the durable store.
func New(store kv.Store, opts ...Option) *State {
	s := &State{
		local: stackedmap.New(),
		store: store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Track creates a child layer. Pending writes of s are visible through it.
func (s *State) Track() *State {
	return &State{
		parent: s,
		depth:  s.depth + 1,
		local:  stackedmap.New(),
	}
}

// Depth returns the count of ancestors.
func (s *State) Depth() int { return s.depth }

// Pending returns the count of keys written in this layer but not committed.
func (s *State) Pending() int { return s.local.Len() }

// GetAccount returns the account of addr.
// The zero account is returned if the account is absent.
func (s *State) GetAccount(addr bic.Address) (*Account, error) {
	val, err := s.get(accountKey(addr))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return newAccount(addr), nil
	}
	acc, err := AccountFromBytes(addr, val)
	if err != nil {
		return nil, &Error{err}
	}
	return acc, nil
}

// IncreaseNonce increases the nonce of addr by one.
func (s *State) IncreaseNonce(addr bic.Address) error {
	return s.updateAccount(addr, func(a *Account) (sub []stackedmap.Entry, err error) {
		a.nonce, err = add(a.nonce, 1)
		return
	})
}

// AdjustAvailable adds delta to the available balance of addr.
func (s *State) AdjustAvailable(addr bic.Address, delta int64) error {
	return s.updateAccount(addr, func(a *Account) (sub []stackedmap.Entry, err error) {
		a.available, err = add(a.available, delta)
		return
	})
}

// AdjustLocked adds delta to the locked balance of addr.
func (s *State) AdjustLocked(addr bic.Address, delta int64) error {
	return s.updateAccount(addr, func(a *Account) (sub []stackedmap.Entry, err error) {
		a.locked, err = add(a.locked, delta)
		return
	})
}

// AdjustIncenseAvailable adds delta to the incense balance of addr.
// The incense holders index is updated along.
func (s *State) AdjustIncenseAvailable(addr bic.Address, delta int64) error {
	return s.updateAccount(addr, func(a *Account) ([]stackedmap.Entry, error) {
		v, err := add(a.incenseAvailable, delta)
		if err != nil {
			return nil, err
		}
		a.incenseAvailable = v
		return []stackedmap.Entry{holderEntry(TagIncense, addr, v)}, nil
	})
}

// AdjustIncensePieceAvailable adds delta to the incense piece balance of addr.
// The incense piece holders index is updated along.
func (s *State) AdjustIncensePieceAvailable(addr bic.Address, delta int64) error {
	return s.updateAccount(addr, func(a *Account) ([]stackedmap.Entry, error) {
		v, err := add(a.incensePieceAvailable, delta)
		if err != nil {
			return nil, err
		}
		a.incensePieceAvailable = v
		return []stackedmap.Entry{holderEntry(TagIncensePiece, addr, v)}, nil
	})
}

// GetCode is unsupported.
func (s *State) GetCode(addr bic.Address) ([]byte, error) {
	return nil, errors.Wrap(ErrUnsupported, "get code")
}

// SetCode is unsupported.
func (s *State) SetCode(addr bic.Address, code []byte) error {
	return errors.Wrap(ErrUnsupported, "set code")
}

// GetStorage is unsupported.
func (s *State) GetStorage(addr bic.Address, key []byte) ([]byte, error) {
	return nil, errors.Wrap(ErrUnsupported, "get storage")
}

// PutStorage is unsupported.
func (s *State) PutStorage(addr bic.Address, key, value []byte) error {
	return errors.Wrap(ErrUnsupported, "put storage")
}

// RemoveStorage is unsupported.
func (s *State) RemoveStorage(addr bic.Address, key []byte) error {
	return errors.Wrap(ErrUnsupported, "remove storage")
}

// Commit moves the pending writes of this layer into its parent,
// or into the durable store if it's the root layer.
// If writing the store fails, the pending writes are kept.
func (s *State) Commit() error {
	if s.parent != nil {
		s.mu.Lock()
		s.parent.mu.Lock()
		n := s.local.MergeInto(s.parent.local)
		s.parent.mu.Unlock()
		s.mu.Unlock()
		metricCommitCount().AddWithLabel(1, map[string]string{"layer": "child", "result": "ok"})
		logger.Trace("layer committed", "depth", s.depth, "entries", n)
		return nil
	}
	return s.flush()
}

// Rollback discards the pending writes of this layer.
func (s *State) Rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local.Reset()
}

func (s *State) flush() error {
	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	if s.local.Len() == 0 {
		return nil
	}
	startTime := time.Now()

	// keep detached entries readable while writing
	flushing := stackedmap.New()
	s.flushing.Store(flushing)
	defer s.flushing.Store(nil)

	s.mu.Lock()
	s.local.MergeInto(flushing)
	s.mu.Unlock()
	entries := flushing.Journal()

	if err := s.write(entries); err != nil {
		s.local.Restore(flushing.Detach())
		metricCommitCount().AddWithLabel(1, map[string]string{"layer": "root", "result": "failed"})
		logger.Warn("failed to commit state", "entries", len(entries), "err", err)
		return &Error{err}
	}
	// bumped before the flushing map is dropped
	s.flushGen.Add(1)
	if s.cache != nil {
		s.cache.flushed(entries)
	}

	metricCommitCount().AddWithLabel(1, map[string]string{"layer": "root", "result": "ok"})
	metricCommitEntries().Add(int64(len(entries)))
	metricCommitDurationMS().Observe(time.Since(startTime).Milliseconds())
	logger.Debug("state committed", "entries", len(entries), "elapsed", time.Since(startTime))
	return nil
}

func (s *State) write(entries []stackedmap.Entry) error {
	bulk := s.store.Bulk()
	for _, e := range entries {
		var err error
		if e.IsTombstone() {
			err = bulk.Delete(e.Key.Bytes())
		} else {
			err = bulk.Put(e.Key.Bytes(), e.Value)
		}
		if err != nil {
			return err
		}
	}
	return bulk.Write()
}

// get returns the value of key, nil if absent.
func (s *State) get(key bic.ByteKey) ([]byte, error) {
	if val, found := s.local.Get(key); found {
		return val, nil
	}
	return s.getBelow(key)
}

// getBelow returns the value of key, skipping the local map.
func (s *State) getBelow(key bic.ByteKey) ([]byte, error) {
	if s.parent != nil {
		return s.parent.get(key)
	}
	if flushing := s.flushing.Load(); flushing != nil {
		if val, found := flushing.Get(key); found {
			return val, nil
		}
	}
	return s.getStored(key)
}

func (s *State) getStored(key bic.ByteKey) ([]byte, error) {
	var gen uint64
	if s.cache != nil {
		if val, ok := s.cache.get(key); ok {
			return val, nil
		}
		gen = s.cache.generation()
	}

	// concurrent misses of a key share one store read, unless a flush happened in between
	sfKey := strconv.FormatUint(s.flushGen.Load(), 10) + ":" + key.String()
	v, err, _ := s.reads.Do(sfKey, func() (any, error) {
		val, err := s.store.Get(key.Bytes())
		if err != nil {
			if !s.store.IsNotFound(err) {
				return nil, &Error{err}
			}
			val = nil
		}
		if s.cache != nil {
			s.cache.fill(gen, key, val)
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	if val := v.([]byte); val != nil {
		return append([]byte(nil), val...), nil
	}
	return nil, nil
}

// updateAccount does read-modify-write of the account atomically in the local map.
// fn may return entries written along with the account.
func (s *State) updateAccount(addr bic.Address, fn func(a *Account) ([]stackedmap.Entry, error)) error {
	key := accountKey(addr)

	unlock := s.lockChain()
	defer unlock()

	var fallback []byte
	if _, found := s.local.Get(key); !found {
		val, err := s.getBelow(key)
		if err != nil {
			return err
		}
		fallback = val
	}

	return s.local.Update(key, fallback, func(cur []byte) ([]byte, []stackedmap.Entry, error) {
		acc := newAccount(addr)
		if cur != nil {
			var err error
			if acc, err = AccountFromBytes(addr, cur); err != nil {
				return nil, nil, &Error{err}
			}
		}
		side, err := fn(acc)
		if err != nil {
			return nil, nil, errors.WithMessage(err, addr.String())
		}
		if acc.IsEmpty() {
			return nil, side, nil
		}
		return acc.Bytes(), side, nil
	})
}

// lockChain read-locks this layer and its ancestors, child first.
func (s *State) lockChain() func() {
	var held []*State
	for l := s; l != nil; l = l.parent {
		l.mu.RLock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.RUnlock()
		}
	}
}

func accountKey(addr bic.Address) bic.ByteKey {
	return bic.JoinByteKey([]byte{TagAccount}, addr[:])
}

// holderEntry is the sub-ledger index entry of a secondary balance.
func holderEntry(tag byte, addr bic.Address, balance uint64) stackedmap.Entry {
	e := stackedmap.Entry{Key: bic.JoinByteKey([]byte{tag}, addr[:])}
	if balance > 0 {
		e.Value = binary.BigEndian.AppendUint64(nil, balance)
	}
	return e
}
