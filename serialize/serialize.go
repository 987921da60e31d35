// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package serialize provides the typed byte-stream reader/writer used by
// every save-state payload in the core: a Writer appends primitives to an
// in-memory buffer, a Reader consumes them back in the same order. There is
// no exceptional control flow — a short or malformed stream causes Reader
// methods to return the zero value and set a sticky error, checked once via
// Err() after a device has read everything it expects.
package serialize

import (
	"encoding/binary"
	"math"

	"github.com/atari-rl/vcscore/curated"
)

// ErrTruncated is the curated pattern used when a Reader runs out of bytes
// partway through a primitive.
const ErrTruncated = "serialize: truncated stream reading %s"

// Writer accumulates a save-state payload. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// PutString appends a length-prefixed string: a 32-bit little-endian byte
// count followed by the raw bytes.
func (w *Writer) PutString(s string) {
	w.PutInt(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// PutInt appends a signed 32-bit little-endian integer.
func (w *Writer) PutInt(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// PutUint32 appends an unsigned 32-bit little-endian integer. Used for RNG
// state words and other values with no natural sign.
func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutFloat64 appends an IEEE-754 double as its 8 raw little-endian bytes.
func (w *Writer) PutFloat64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// PutBool appends a single byte: 1 for true, 0 for false.
func (w *Writer) PutBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// PutByte appends a single raw byte.
func (w *Writer) PutByte(v byte) {
	w.buf = append(w.buf, v)
}

// PutByteArray appends a length-prefixed byte frame.
func (w *Writer) PutByteArray(v []byte) {
	w.PutInt(int32(len(v)))
	w.buf = append(w.buf, v...)
}

// Reader consumes a payload produced by Writer, in the same field order it
// was written. Once a read fails every subsequent read is a no-op returning
// the zero value; callers check Err() after the full sequence of reads.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps buf for sequential reading.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, or nil if every read so far has
// succeeded.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = curated.Errorf(ErrTruncated, what)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

// GetString reads a length-prefixed string.
func (r *Reader) GetString() string {
	n := r.GetInt()
	if r.err != nil || n < 0 {
		return ""
	}
	b := r.take(int(n), "string")
	if b == nil {
		return ""
	}
	return string(b)
}

// GetInt reads a signed 32-bit little-endian integer.
func (r *Reader) GetInt() int32 {
	b := r.take(4, "int")
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// GetUint32 reads an unsigned 32-bit little-endian integer.
func (r *Reader) GetUint32() uint32 {
	b := r.take(4, "uint32")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// GetFloat64 reads an IEEE-754 double from its 8 raw little-endian bytes.
func (r *Reader) GetFloat64() float64 {
	b := r.take(8, "float64")
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// GetBool reads a single byte as a boolean.
func (r *Reader) GetBool() bool {
	b := r.take(1, "bool")
	if b == nil {
		return false
	}
	return b[0] != 0
}

// GetByte reads a single raw byte.
func (r *Reader) GetByte() byte {
	b := r.take(1, "byte")
	if b == nil {
		return 0
	}
	return b[0]
}

// GetByteArray reads a length-prefixed byte frame.
func (r *Reader) GetByteArray() []byte {
	n := r.GetInt()
	if r.err != nil || n < 0 {
		return nil
	}
	b := r.take(int(n), "byte array")
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
