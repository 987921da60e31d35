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

// UA implements CBS' UA bankswitching scheme (Funky Flash, Uncle Sam): two
// 4K banks selected not by a hotspot inside the cartridge window, but by
// any access (peek or poke) to TIA/RIOT address space at $220-$23F
// (selects bank 0) or $240-$25F (selects bank 1). Grounded on the same
// address-space-spanning Listen mechanism as Tigervision, since these
// addresses fall outside the cartridge's own $1000-$1FFF page range.
type UA struct {
	banks [][]byte
	bank  int
}

// NewUA builds a UA cartridge. data must be exactly 2*4096 bytes (8K).
func NewUA(data []byte) (*UA, error) {
	const bankSize = 4096
	const bankCount = 2
	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr("UA", len(data), bankSize*bankCount)
	}

	u := &UA{banks: make([][]byte, bankCount)}
	for b := 0; b < bankCount; b++ {
		u.banks[b] = make([]byte, bankSize)
		copy(u.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	return u, nil
}

// Install maps the cartridge window to this device.
func (u *UA) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: u})
	}
	return nil
}

// Reset selects bank 0.
func (u *UA) Reset() {
	u.bank = 0
}

// Peek reads the currently selected bank. The hotspot lives outside this
// window and is handled by Listen.
func (u *UA) Peek(addr uint16) (uint8, error) {
	return u.banks[u.bank][addr&0x0fff], nil
}

// Poke is a no-op: the cartridge window is pure ROM.
func (u *UA) Poke(addr uint16, value uint8) error {
	return nil
}

// Listen implements system.Listener. Unlike Tigervision's hotspot, UA's
// triggers on either a read or a write, since the real hardware decodes
// only the address lines.
func (u *UA) Listen(addr uint16, value uint8, write bool) {
	switch {
	case addr >= 0x220 && addr <= 0x23f:
		u.bank = 0
	case addr >= 0x240 && addr <= 0x25f:
		u.bank = 1
	}
}

// SystemCyclesReset is a no-op.
func (u *UA) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (u *UA) Name() string {
	return "UA"
}

// Patch overwrites a byte in the canonical ROM image.
func (u *UA) Patch(offset int, data uint8) error {
	bankSize := len(u.banks[0])
	if offset < 0 || offset >= bankSize*len(u.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	u.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends bank selection.
func (u *UA) Save(w *serialize.Writer) {
	w.PutInt(int32(u.bank))
}

// Load restores bank selection.
func (u *UA) Load(r *serialize.Reader) error {
	u.bank = int(r.GetInt())
	return r.Err()
}
