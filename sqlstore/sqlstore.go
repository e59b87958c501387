// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sqlstore implements kv.Store on sqlite.
// Every SQL failure is returned to the caller.
package sqlstore

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/incensechain/bic/kv"
	"github.com/incensechain/bic/log"
)

const kvTableSchema = `CREATE TABLE IF NOT EXISTS kv (
	k BLOB NOT NULL PRIMARY KEY,
	v BLOB NOT NULL
) WITHOUT ROWID;`

var logger = log.WithContext("pkg", "sqlstore")

// ErrNotFound is returned by Get if the key is absent.
var ErrNotFound = errors.New("sqlstore: not found")

// SQLStore is a kv.Store backed by a sqlite database.
type SQLStore struct {
	path string
	db   *sql.DB
}

var _ kv.Store = (*SQLStore)(nil)

// New create or open the store at given path.
func New(path string) (store *SQLStore, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	defer func() {
		if store == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// each connection owns a distinct memory database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(kvTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("sqlite store opened", "path", path, "sqlite", driverVer)
	return &SQLStore{path, db}, nil
}

// NewMem create a store in ram.
func NewMem() (*SQLStore, error) {
	return New(":memory:")
}

// Close closes the store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Path returns the path of the database.
func (s *SQLStore) Path() string {
	return s.path
}

func (s *SQLStore) Get(key []byte) ([]byte, error) {
	var val []byte
	if err := s.db.QueryRow("SELECT v FROM kv WHERE k = ?", key).Scan(&val); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get")
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func (s *SQLStore) IsNotFound(err error) bool {
	return err == ErrNotFound
}

func (s *SQLStore) Put(key, val []byte) error {
	return put(s.db, key, val)
}

func (s *SQLStore) Delete(key []byte) error {
	return del(s.db, key)
}

// Bulk returns a bulk whose writes are committed in one sql transaction.
func (s *SQLStore) Bulk() kv.Bulk {
	return &bulk{db: s.db}
}

// Iterate iterates over the range in key order.
// The iterator holds a database connection until released.
func (s *SQLStore) Iterate(r kv.Range) kv.Iterator {
	stmt := "SELECT k, v FROM kv WHERE 1"
	var args []any
	if len(r.Start) > 0 {
		stmt += " AND k >= ?"
		args = append(args, r.Start)
	}
	if len(r.Limit) > 0 {
		stmt += " AND k < ?"
		args = append(args, r.Limit)
	}
	stmt += " ORDER BY k ASC"

	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return &iterator{err: errors.Wrap(err, "iterate")}
	}
	return &iterator{rows: rows}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func put(e execer, key, val []byte) error {
	if val == nil {
		val = []byte{}
	}
	if _, err := e.Exec("INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)", key, val); err != nil {
		return errors.Wrap(err, "put")
	}
	return nil
}

func del(e execer, key []byte) error {
	if _, err := e.Exec("DELETE FROM kv WHERE k = ?", key); err != nil {
		return errors.Wrap(err, "delete")
	}
	return nil
}

type op struct {
	key, val []byte
	del      bool
}

type bulk struct {
	db  *sql.DB
	ops []op
}

func (b *bulk) Put(key, val []byte) error {
	b.ops = append(b.ops, op{key: append([]byte(nil), key...), val: append([]byte{}, val...)})
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: append([]byte(nil), key...), del: true})
	return nil
}

func (b *bulk) Write() (err error) {
	if len(b.ops) == 0 {
		return nil
	}
	tx, err := b.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, op := range b.ops {
		if op.del {
			err = del(tx, op.key)
		} else {
			err = put(tx, op.key, op.val)
		}
		if err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	b.ops = b.ops[:0]
	return nil
}

type iterator struct {
	rows     *sql.Rows
	key, val []byte
	err      error
}

func (it *iterator) Next() bool {
	if it.err != nil || it.rows == nil {
		return false
	}
	if !it.rows.Next() {
		return false
	}
	if err := it.rows.Scan(&it.key, &it.val); err != nil {
		it.err = errors.Wrap(err, "scan")
		return false
	}
	return true
}

func (it *iterator) Key() []byte   { return it.key }
func (it *iterator) Value() []byte { return it.val }

func (it *iterator) Release() {
	if it.rows != nil {
		it.rows.Close()
	}
}

func (it *iterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.rows != nil {
		if err := it.rows.Err(); err != nil {
			return errors.Wrap(err, "iterate")
		}
	}
	return nil
}
