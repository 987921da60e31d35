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
	"github.com/atari-rl/vcscore/system"
)

func TestThreeESwapsROMAndRAMSegments(t *testing.T) {
	data := make([]byte, 2048*4)
	for b := 0; b < 4; b++ {
		for i := 0; i < 2048; i++ {
			data[b*2048+i] = byte(b)
		}
	}
	cart, err := cartridge.NewThreeE(data)
	if err != nil {
		t.Fatalf("NewThreeE: %v", err)
	}
	cart.Reset()

	sys := system.New()
	sys.Attach(cart)

	sys.Poke(0x3f, 2) // select ROM bank 2 for first segment
	v, _ := sys.Peek(0x1000)
	if v != 2 {
		t.Fatalf("expected ROM bank 2, got %d", v)
	}

	sys.Poke(0x3e, 5) // select RAM bank 5 for first segment
	sys.Poke(0x1000, 0x77)
	v, _ = sys.Peek(0x1400)
	if v != 0x77 {
		t.Fatalf("expected RAM readback 0x77, got %#02x", v)
	}
}

func TestParkerBrosFourSegments(t *testing.T) {
	data := make([]byte, 1024*8)
	for b := 0; b < 8; b++ {
		for i := 0; i < 1024; i++ {
			data[b*1024+i] = byte(b)
		}
	}
	cart, err := cartridge.NewParkerBros(data)
	if err != nil {
		t.Fatalf("NewParkerBros: %v", err)
	}
	cart.Reset()

	sys := system.New()
	cart.Install(sys)

	v, _ := sys.Peek(0x1c00)
	if v != 7 {
		t.Fatalf("expected fixed last segment bank 7, got %d", v)
	}

	sys.Peek(0x1fe3) // select bank 3 for segment 0
	v, _ = sys.Peek(0x1000)
	if v != 3 {
		t.Fatalf("expected segment 0 bank 3, got %d", v)
	}
}

func TestMNetworkBankSevenSwapsInRAM(t *testing.T) {
	data := make([]byte, 2048*8)
	for b := 0; b < 8; b++ {
		for i := 0; i < 2048; i++ {
			data[b*2048+i] = byte(b)
		}
	}
	cart, err := cartridge.NewMNetwork(data)
	if err != nil {
		t.Fatalf("NewMNetwork: %v", err)
	}
	cart.Reset()

	sys := system.New()
	cart.Install(sys)

	sys.Peek(0x1fe7) // select bank 7 (RAM)
	sys.Poke(0x1000, 0x42)
	v, _ := sys.Peek(0x1400)
	if v != 0x42 {
		t.Fatalf("expected 1K RAM readback 0x42, got %#02x", v)
	}

	sys.Poke(0x1ff9, 0) // select 256-byte RAM bank 1
	sys.Poke(0x1800, 0x99)
	v, _ = sys.Peek(0x1900)
	if v != 0x99 {
		t.Fatalf("expected 256-byte RAM readback 0x99, got %#02x", v)
	}
}

func TestCBSThreeBanksPlusRAM(t *testing.T) {
	data := make([]byte, 4096*3)
	for b := 0; b < 3; b++ {
		for i := 0; i < 4096; i++ {
			data[b*4096+i] = byte(b)
		}
	}
	cart, err := cartridge.NewCBS(data)
	if err != nil {
		t.Fatalf("NewCBS: %v", err)
	}
	cart.Reset()

	sys := system.New()
	cart.Install(sys)

	v, _ := sys.Peek(0x1000)
	if v != 2 {
		t.Fatalf("expected power-up bank 2, got %d", v)
	}

	sys.Peek(0x1ff8) // select bank 0
	v, _ = sys.Peek(0x1000)
	if v != 0 {
		t.Fatalf("expected bank 0, got %d", v)
	}

	sys.Poke(0x1000, 0x33)
	v, _ = sys.Peek(0x1100)
	if v != 0x33 {
		t.Fatalf("expected RAM readback 0x33, got %#02x", v)
	}
}
