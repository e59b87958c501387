// Copyright (c) 2025 The IncenseChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package codec implements the canonical binary encoding used by accounts and transactions.
//
// Integers are written as fixed width big-endian values. Byte strings are
// prefixed with their size, encoded in 7-bit groups from the most significant
// group down, where every group except the last carries the 0x80 continuation bit.
// A size occupies at most 4 bytes and never starts with an empty group.
package codec

import (
	"encoding/binary"
	"errors"
)

// MaxSize is the largest byte string size that fits in a size prefix.
const MaxSize = 1<<28 - 1

var (
	// ErrTruncated is returned when the input ends before a value is complete.
	ErrTruncated = errors.New("codec: truncated input")
	// ErrTrailingBytes is returned by Decoder.Finish when input is left over.
	ErrTrailingBytes = errors.New("codec: trailing bytes")
	// ErrSizeTooLarge is returned when a byte string exceeds MaxSize.
	ErrSizeTooLarge = errors.New("codec: size too large")
	// ErrMalformedSize is returned when a size prefix is longer than 4 bytes,
	// or not in its shortest form.
	ErrMalformedSize = errors.New("codec: malformed size prefix")
)

// Encoder appends values to an internal buffer.
// The first error is sticky and reported by Err.
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder creates an encoder with the given capacity hint.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// PutByte writes a single byte.
func (e *Encoder) PutByte(b byte) {
	e.buf = append(e.buf, b)
}

// PutUint64 writes v as 8 bytes big-endian.
func (e *Encoder) PutUint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// PutBytes writes the size of b followed by b.
func (e *Encoder) PutBytes(b []byte) {
	if len(b) > MaxSize {
		if e.err == nil {
			e.err = ErrSizeTooLarge
		}
		return
	}
	e.buf = appendSize(e.buf, len(b))
	e.buf = append(e.buf, b...)
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Err returns the first error occurred.
func (e *Encoder) Err() error {
	return e.err
}

func appendSize(buf []byte, size int) []byte {
	var groups [4]byte
	i := len(groups)
	for {
		i--
		groups[i] = byte(size & 0x7f)
		size >>= 7
		if size == 0 {
			break
		}
	}
	for ; i < len(groups)-1; i++ {
		buf = append(buf, groups[i]|0x80)
	}
	return append(buf, groups[len(groups)-1])
}

// Decoder reads values written by Encoder.
// After the first failure every read returns a zero value, and Err reports the failure.
type Decoder struct {
	buf []byte
	pos int
	err error
}

// NewDecoder creates a decoder over b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Byte reads a single byte.
func (d *Decoder) Byte() byte {
	if !d.ensure(1) {
		return 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}

// Uint64 reads 8 bytes big-endian.
func (d *Decoder) Uint64() uint64 {
	if !d.ensure(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v
}

// Bytes reads a size prefixed byte string.
// The returned slice is a copy and is never nil on success.
func (d *Decoder) Bytes() []byte {
	size := d.size()
	if d.err != nil || !d.ensure(size) {
		return nil
	}
	b := make([]byte, size)
	copy(b, d.buf[d.pos:])
	d.pos += size
	return b
}

func (d *Decoder) size() int {
	size := 0
	for i := 0; i < 4; i++ {
		if !d.ensure(1) {
			return 0
		}
		b := d.buf[d.pos]
		d.pos++
		if i == 0 && b == 0x80 {
			d.fail(ErrMalformedSize)
			return 0
		}
		size = size<<7 | int(b&0x7f)
		if b&0x80 == 0 {
			return size
		}
	}
	d.fail(ErrMalformedSize)
	return 0
}

func (d *Decoder) ensure(n int) bool {
	if d.err != nil {
		return false
	}
	if len(d.buf)-d.pos < n {
		d.fail(ErrTruncated)
		return false
	}
	return true
}

func (d *Decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// Remaining returns the count of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Err returns the first error occurred.
func (d *Decoder) Err() error {
	return d.err
}

// Finish returns the first error occurred, or ErrTrailingBytes if input is left unread.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != len(d.buf) {
		return ErrTrailingBytes
	}
	return nil
}
