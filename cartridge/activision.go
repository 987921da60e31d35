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

package cartridge

import (
	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

// FE implements Activision's FE scheme (Robot Tank, Decathlon): two 4K
// banks, with no hotspot register at all. The real hardware
// snoops the stack for the return address a JSR pushes. This module
// observes that push directly, via Listen on the stack addresses
// $01FE/$01FF: bit 5 of each byte written there selects the bank the
// *next* fetch comes from, so the last byte written decides. It does not
// decode the data bus during the CPU's internal JSR/RTS cycles the way
// real silicon does, and reads of $01FE/$01FF do not switch banks.
type FE struct {
	banks [][]byte
	bank  int
}

// NewFE builds an FE cartridge. data must be exactly 2*4096 bytes (8K).
func NewFE(data []byte) (*FE, error) {
	const bankSize = 4096
	const bankCount = 2
	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr("FE", len(data), bankSize*bankCount)
	}

	f := &FE{banks: make([][]byte, bankCount)}
	for b := 0; b < bankCount; b++ {
		f.banks[b] = make([]byte, bankSize)
		copy(f.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	return f, nil
}

// Install maps the cartridge window to this device.
func (f *FE) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: f})
	}
	return nil
}

// Reset selects bank 0.
func (f *FE) Reset() {
	f.bank = 0
}

// Peek reads the currently selected bank.
func (f *FE) Peek(addr uint16) (uint8, error) {
	return f.banks[f.bank][addr&0x0fff], nil
}

// Poke is a no-op: the cartridge window is pure ROM.
func (f *FE) Poke(addr uint16, value uint8) error {
	return nil
}

// Listen implements system.Listener: a write to $01FE or $01FF is the
// CPU pushing a return address onto the stack during JSR. Bit 5 of the
// written byte selects the bank subsequent fetches come from; a JSR with
// SP at $FF writes the high byte to $01FF and then the low byte to $01FE,
// so the low byte decides.
func (f *FE) Listen(addr uint16, value uint8, write bool) {
	if !write {
		return
	}
	if addr == 0x01fe || addr == 0x01ff {
		if value&0x20 == 0 {
			f.bank = 0
		} else {
			f.bank = 1
		}
	}
}

// SystemCyclesReset is a no-op.
func (f *FE) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (f *FE) Name() string {
	return "FE"
}

// Patch overwrites a byte in the canonical ROM image.
func (f *FE) Patch(offset int, data uint8) error {
	bankSize := len(f.banks[0])
	if offset < 0 || offset >= bankSize*len(f.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	f.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends bank selection.
func (f *FE) Save(w *serialize.Writer) {
	w.PutInt(int32(f.bank))
}

// Load restores bank selection.
func (f *FE) Load(r *serialize.Reader) error {
	f.bank = int(r.GetInt())
	return r.Err()
}
