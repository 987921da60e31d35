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

package cpu_test

import (
	"testing"

	"github.com/atari-rl/vcscore/cpu"
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

// flatMemory maps the entire 13-bit address space as plain RAM, giving the
// CPU a place to fetch code and a reset vector from without needing a real
// cartridge.
type flatMemory struct {
	mem [system.NumberOfPages * system.PageSize]byte
}

func (f *flatMemory) Install(sys *system.System) error {
	for p := uint16(0); p < system.NumberOfPages; p++ {
		start := int(p) * system.PageSize
		sys.SetPageAccess(p, system.PageAccess{
			DirectPeek: f.mem[start : start+system.PageSize],
			DirectPoke: f.mem[start : start+system.PageSize],
		})
	}
	return nil
}
func (f *flatMemory) Reset()             {}
func (f *flatMemory) SystemCyclesReset() {}
func (f *flatMemory) Name() string       { return "flat" }
func (f *flatMemory) Peek(addr uint16) (uint8, error) { return f.mem[addr&system.PageMask], nil }
func (f *flatMemory) Poke(addr uint16, value uint8) error {
	f.mem[addr&system.PageMask] = value
	return nil
}
func (f *flatMemory) Save(*serialize.Writer)       {}
func (f *flatMemory) Load(*serialize.Reader) error { return nil }

func newTestCPU(t *testing.T, program []byte, loadAt uint16) (*cpu.CPU, *system.System) {
	t.Helper()
	sys := system.New()
	mem := &flatMemory{}
	if err := sys.Attach(mem); err != nil {
		t.Fatalf("attach: %v", err)
	}
	for i, b := range program {
		if err := sys.Poke(loadAt+uint16(i), b); err != nil {
			t.Fatalf("poke: %v", err)
		}
	}
	// reset vector points at loadAt
	sys.Poke(0x1ffc, uint8(loadAt))
	sys.Poke(0x1ffd, uint8(loadAt>>8))

	c := cpu.New(sys, nil, false)
	sys.AttachCPU(c)
	if err := sys.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return c, sys
}

func TestADCOverflowSetsFlags(t *testing.T) {
	// LDA #$7F; CLC; ADC #$01; PHP
	c, sys := newTestCPU(t, []byte{0xA9, 0x7F, 0x18, 0x69, 0x01, 0x08}, 0x1000)

	ok, err := c.Execute(4, nil)
	if err != nil || !ok {
		t.Fatalf("execute: ok=%v err=%v", ok, err)
	}
	if c.A != 0x80 {
		t.Fatalf("A = %#02x, want 0x80", c.A)
	}
	// pushed status: N, V, unused, B and I set; Z and C clear.
	if ps, _ := sys.Peek(0x01ff); ps != 0xf4 {
		t.Fatalf("status = %#02x, want 0xf4", ps)
	}
}

func TestLDAZeroPageAndSTA(t *testing.T) {
	// LDA #$42; STA $10; LDA #$00; LDA $10
	c, sys := newTestCPU(t, []byte{0xA9, 0x42, 0x85, 0x10, 0xA9, 0x00, 0xA5, 0x10}, 0x1000)

	ok, err := c.Execute(4, nil)
	if err != nil || !ok {
		t.Fatalf("execute: ok=%v err=%v", ok, err)
	}
	if c.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42", c.A)
	}
	v, _ := sys.Peek(0x0010)
	if v != 0x42 {
		t.Fatalf("mem[0x10] = %#02x, want 0x42", v)
	}
}

func TestBranchTaken(t *testing.T) {
	// LDA #$00; BEQ +2 (skip the LDA #$FF); LDA #$FF; LDA #$01
	c, _ := newTestCPU(t, []byte{0xA9, 0x00, 0xF0, 0x02, 0xA9, 0xFF, 0xA9, 0x01}, 0x1000)

	ok, err := c.Execute(3, nil)
	if err != nil || !ok {
		t.Fatalf("execute: ok=%v err=%v", ok, err)
	}
	if c.A != 0x01 {
		t.Fatalf("A = %#02x, want 0x01 (branch should have skipped the LDA #$FF)", c.A)
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	// JSR $1010; BRK(never reached before subroutine RTS returns here)
	// at $1010: LDX #$07; RTS
	program := []byte{0x20, 0x10, 0x10}
	c, sys := newTestCPU(t, program, 0x1000)
	sys.Poke(0x1010, 0xA2) // LDX #$07
	sys.Poke(0x1011, 0x07)
	sys.Poke(0x1012, 0x60) // RTS

	ok, err := c.Execute(3, nil)
	if err != nil || !ok {
		t.Fatalf("execute: ok=%v err=%v", ok, err)
	}
	if c.X != 0x07 {
		t.Fatalf("X = %#02x, want 0x07", c.X)
	}
	if c.PC != 0x1003 {
		t.Fatalf("PC = %#04x, want 0x1003 (return address after the 3-byte JSR)", c.PC)
	}
}

func TestUnrecognizedOpcodeRaisesFatalError(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x02}, 0x1000) // KIL/illegal opcode, not in the documented table

	ok, err := c.Execute(1, nil)
	if err == nil {
		t.Fatalf("expected an error for an unrecognized opcode")
	}
	if ok {
		t.Fatalf("expected Execute to report failure")
	}
	if c.ExecutionStatus()&cpu.FatalError == 0 {
		t.Fatalf("expected FatalError bit set")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0xA9, 0x55, 0xA2, 0x99}, 0x1000)
	c.Execute(2, nil)

	w := serialize.NewWriter()
	c.Save(w)

	restored := cpu.New(system.New(), nil, false)
	if err := restored.Load(serialize.NewReader(w.Bytes())); err != nil {
		t.Fatalf("load: %v", err)
	}
	if restored.A != c.A || restored.X != c.X || restored.PC != c.PC {
		t.Fatalf("restored state diverged: A=%#02x X=%#02x PC=%#04x, want A=%#02x X=%#02x PC=%#04x",
			restored.A, restored.X, restored.PC, c.A, c.X, c.PC)
	}
}
