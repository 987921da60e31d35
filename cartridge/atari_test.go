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

package cartridge_test

import (
	"testing"

	"github.com/atari-rl/vcscore/cartridge"
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

func romOfSize(n int, fill func(i int) byte) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = fill(i)
	}
	return data
}

func TestNewAtari4KRejectsWrongSize(t *testing.T) {
	_, err := cartridge.NewAtari4K(make([]byte, 100))
	if err == nil {
		t.Fatalf("expected an error for a short image")
	}
}

func TestAtari2KMirrorsAcrossWindow(t *testing.T) {
	data := romOfSize(2048, func(i int) byte { return byte(i) })
	cart, err := cartridge.NewAtari2K(data)
	if err != nil {
		t.Fatalf("NewAtari2K: %v", err)
	}
	cart.Reset()

	sys := system.New()
	if err := cart.Install(sys); err != nil {
		t.Fatalf("install: %v", err)
	}

	low, _ := sys.Peek(0x1000)
	high, _ := sys.Peek(0x1800)
	if low != high {
		t.Fatalf("expected mirrored reads, got %#02x and %#02x", low, high)
	}
}

func TestAtariF8BankswitchesOnHotspot(t *testing.T) {
	data := romOfSize(4096*2, func(i int) byte {
		if i < 4096 {
			return 0x11
		}
		return 0x22
	})
	cart, err := cartridge.NewAtariF8(data, false)
	if err != nil {
		t.Fatalf("NewAtariF8: %v", err)
	}
	cart.Reset() // powers up on bank 1

	sys := system.New()
	cart.Install(sys)

	v, _ := sys.Peek(0x1000)
	if v != 0x22 {
		t.Fatalf("expected power-up bank 1, got %#02x", v)
	}

	sys.Peek(0x1ff8) // select bank 0
	v, _ = sys.Peek(0x1000)
	if v != 0x11 {
		t.Fatalf("expected bank 0 after hotspot read, got %#02x", v)
	}

	sys.Poke(0x1ff9, 0) // select bank 1 via a write, too
	v, _ = sys.Peek(0x1000)
	if v != 0x22 {
		t.Fatalf("expected bank 1 after hotspot write, got %#02x", v)
	}
}

func TestAtariF8SCRAMOverlay(t *testing.T) {
	data := romOfSize(4096*2, func(i int) byte { return 0xff })
	cart, err := cartridge.NewAtariF8(data, true)
	if err != nil {
		t.Fatalf("NewAtariF8: %v", err)
	}
	cart.Reset()

	sys := system.New()
	cart.Install(sys)

	if err := sys.Poke(0x1000, 0x42); err != nil {
		t.Fatalf("poke: %v", err)
	}
	v, err := sys.Peek(0x1080)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if v != 0x42 {
		t.Fatalf("expected RAM read port to reflect the write port, got %#02x", v)
	}

	// the write port itself is write-only; reading it still sees the ROM.
	v, _ = sys.Peek(0x1000)
	if v != 0xff {
		t.Fatalf("expected the write port to read through to ROM, got %#02x", v)
	}
}

func TestAtariSaveLoadRoundTrip(t *testing.T) {
	data := romOfSize(4096*4, func(i int) byte { return byte(i) })
	cart, err := cartridge.NewAtariF6(data, true)
	if err != nil {
		t.Fatalf("NewAtariF6: %v", err)
	}
	cart.Reset()

	sys := system.New()
	cart.Install(sys)
	sys.Poke(0x1ff7, 0) // bank 1
	sys.Poke(0x1000, 0x55)

	w := serialize.NewWriter()
	cart.Save(w)

	restored, _ := cartridge.NewAtariF6(data, true)
	if err := restored.Load(serialize.NewReader(w.Bytes())); err != nil {
		t.Fatalf("load: %v", err)
	}

	rsys := system.New()
	restored.Install(rsys)
	restored.LockBank(false)

	v, _ := rsys.Peek(0x1080)
	if v != 0x55 {
		t.Fatalf("expected restored RAM content 0x55, got %#02x", v)
	}
}

func TestAtariPatch(t *testing.T) {
	data := romOfSize(4096, func(i int) byte { return 0 })
	cart, err := cartridge.NewAtari4K(data)
	if err != nil {
		t.Fatalf("NewAtari4K: %v", err)
	}
	if err := cart.Patch(10, 0x99); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := cart.Patch(-1, 0); err == nil {
		t.Fatalf("expected an error for a negative offset")
	}
	if err := cart.Patch(4096, 0); err == nil {
		t.Fatalf("expected an error for an out-of-range offset")
	}

	cart.Reset()
	sys := system.New()
	cart.Install(sys)
	v, _ := sys.Peek(0x100a)
	if v != 0x99 {
		t.Fatalf("expected patched byte 0x99, got %#02x", v)
	}
}
