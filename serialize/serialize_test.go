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

package serialize_test

import (
	"testing"

	"github.com/atari-rl/vcscore/serialize"
)

func TestRoundTrip(t *testing.T) {
	w := serialize.NewWriter()
	w.PutString("State")
	w.PutInt(-42)
	w.PutUint32(0xdeadbeef)
	w.PutBool(true)
	w.PutBool(false)
	w.PutFloat64(3.5)
	w.PutByteArray([]byte{1, 2, 3})

	r := serialize.NewReader(w.Bytes())
	if got := r.GetString(); got != "State" {
		t.Fatalf("GetString() = %q, want State", got)
	}
	if got := r.GetInt(); got != -42 {
		t.Fatalf("GetInt() = %d, want -42", got)
	}
	if got := r.GetUint32(); got != 0xdeadbeef {
		t.Fatalf("GetUint32() = %x, want deadbeef", got)
	}
	if got := r.GetBool(); got != true {
		t.Fatalf("GetBool() = %v, want true", got)
	}
	if got := r.GetBool(); got != false {
		t.Fatalf("GetBool() = %v, want false", got)
	}
	if got := r.GetFloat64(); got != 3.5 {
		t.Fatalf("GetFloat64() = %v, want 3.5", got)
	}
	if got := r.GetByteArray(); string(got) != "\x01\x02\x03" {
		t.Fatalf("GetByteArray() = %v, want [1 2 3]", got)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTruncatedStreamIsSticky(t *testing.T) {
	w := serialize.NewWriter()
	w.PutString("ab")
	buf := w.Bytes()[:len(w.Bytes())-1] // chop the last byte of the payload

	r := serialize.NewReader(buf)
	_ = r.GetString()
	if r.Err() == nil {
		t.Fatalf("expected truncation error")
	}

	// further reads after an error stay zero-valued rather than panicking
	if got := r.GetInt(); got != 0 {
		t.Fatalf("GetInt() after error = %d, want 0", got)
	}
}

func TestNameTagMismatch(t *testing.T) {
	w := serialize.NewWriter()
	w.PutString("atari4k")
	r := serialize.NewReader(w.Bytes())
	if tag := r.GetString(); tag == "atari2k" {
		t.Fatalf("tag unexpectedly matched")
	}
}
