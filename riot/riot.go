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

// Package riot implements the minimal slice of the 6532 RIOT chip this core
// emulates: its 128 bytes of general-purpose RAM and its four-interval
// countdown timer. The I/O port pins (joystick, console switches) are out
// of scope; see SPEC_FULL.md.
package riot

import (
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

// RAMOrigin and RAMSize describe the RIOT's 128-byte RAM window, mirrored
// at $0080-$00FF in the processor's zero page.
const RAMOrigin = 0x0080
const RAMSize = 128

// StackMirrorOrigin is the 6507 stack page, $0180-$01FF. Real hardware
// only decodes enough address lines to place RIOT RAM, so the same 128
// bytes answer both here and at RAMOrigin — this is the window every
// JSR/PHA/BRK push and RTS/PLA/RTI pop actually lands in. Grounded on
// memorymap.go's OriginRAM/MemtopRAM masking, which folds both windows
// onto the same backing array.
const StackMirrorOrigin = 0x0180

// ioOrigin and ioWindow describe the timer's address window. Only the
// six addresses the timer actually decodes matter; every other address in
// the window reads as 0 and ignores writes.
const ioOrigin = 0x0280
const ioWindow = 0x0020

// RIOT is the combined device: RAM occupies its own pages via the fast
// DirectPeek/DirectPoke path (every address in range is plain storage, so
// there is nothing to dispatch on a page miss); the timer is a
// Device because each of its six addresses carries distinct meaning.
type RIOT struct {
	ram   [RAMSize]byte
	timer Timer
}

// New creates a RIOT with its RAM zeroed and its timer in the power-on
// T1024T state.
func New() *RIOT {
	r := &RIOT{}
	r.timer = newTimer()
	return r
}

// Install maps the RAM pages directly (DirectPeek/DirectPoke into the
// backing array), mirrors the same backing array across the $0180-$01FF
// stack page, and routes the timer's I/O window through Device dispatch.
func (r *RIOT) Install(sys *system.System) error {
	r.installRAMWindow(sys, RAMOrigin)
	r.installRAMWindow(sys, StackMirrorOrigin)

	firstIOPage := uint16(ioOrigin >> system.PageSizeBits)
	lastIOPage := uint16((ioOrigin+ioWindow-1) >> system.PageSizeBits)
	for p := firstIOPage; p <= lastIOPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: r})
	}

	return nil
}

// installRAMWindow routes every page covered by [origin, origin+RAMSize)
// through DirectPeek/DirectPoke into r.ram, folding the offset back into
// [0, RAMSize) regardless of which window (zero page or stack mirror)
// origin names.
func (r *RIOT) installRAMWindow(sys *system.System, origin int) {
	firstPage := uint16(origin >> system.PageSizeBits)
	lastPage := uint16((origin+RAMSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		pageStart := int(p)<<system.PageSizeBits - origin
		pageEnd := pageStart + system.PageSize
		if pageStart < 0 {
			pageStart = 0
		}
		if pageEnd > RAMSize {
			pageEnd = RAMSize
		}
		sys.SetPageAccess(p, system.PageAccess{
			DirectPeek: r.ram[pageStart:pageEnd],
			DirectPoke: r.ram[pageStart:pageEnd],
		})
	}
}

// Reset zeros RAM and restores the timer's power-on state.
func (r *RIOT) Reset() {
	for i := range r.ram {
		r.ram[i] = 0
	}
	r.timer = newTimer()
}

// Peek dispatches to the timer; RAM addresses never reach here because
// they're wired via DirectPeek.
func (r *RIOT) Peek(addr uint16) (uint8, error) {
	return r.timer.peek(addr)
}

// Poke dispatches to the timer; RAM addresses never reach here because
// they're wired via DirectPoke.
func (r *RIOT) Poke(addr uint16, value uint8) error {
	r.timer.poke(addr, value)
	return nil
}

// SystemCyclesReset resets the cycle-relative bookkeeping the timer keeps
// (none beyond what Reset already clears).
func (r *RIOT) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (r *RIOT) Name() string {
	return "RIOT"
}

// Step advances the timer one CPU cycle. Called once per cycle from the
// top-level VCS step loop.
func (r *RIOT) Step() {
	r.timer.step()
}

// Save appends RAM contents and the timer's state.
func (r *RIOT) Save(w *serialize.Writer) {
	w.PutByteArray(r.ram[:])
	r.timer.save(w)
}

// Load restores RAM contents and the timer's state.
func (r *RIOT) Load(rd *serialize.Reader) error {
	copy(r.ram[:], rd.GetByteArray())
	return r.timer.load(rd)
}
