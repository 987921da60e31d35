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

// ram3ESize is the size of each individually-selectable 3E RAM bank: half
// of a 2K ROM segment, since the segment's address range splits evenly
// into a write port and a read port.
const ram3ESize = 1024

// ThreeE implements the 3E bankswitching scheme (Sokoboo): a derivative of
// Tigervision's 3F with a second hotspot that swaps RAM, rather than ROM,
// into the first segment. Grounded on mapper_3e.go.
type ThreeE struct {
	banks [][]byte
	ram   [][]byte

	segment      [2]int
	segmentIsRAM [2]bool
}

// NewThreeE builds a 3E cartridge with up to 32 selectable RAM banks.
func NewThreeE(data []byte) (*ThreeE, error) {
	const bankSize = 2048
	if len(data) == 0 || len(data)%bankSize != 0 {
		return nil, wrongSizeErr("3E", len(data), 0)
	}

	numBanks := len(data) / bankSize
	t := &ThreeE{banks: make([][]byte, numBanks), ram: make([][]byte, 32)}
	for b := 0; b < numBanks; b++ {
		t.banks[b] = make([]byte, bankSize)
		copy(t.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	for b := range t.ram {
		t.ram[b] = make([]byte, ram3ESize)
	}
	return t, nil
}

// Install maps the cartridge window to this device.
func (t *ThreeE) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: t})
	}
	return nil
}

// Reset selects the last two ROM banks, as Tigervision does.
func (t *ThreeE) Reset() {
	t.segment[0] = wrapBank(len(t.banks)-2, len(t.banks))
	t.segment[1] = len(t.banks) - 1
	t.segmentIsRAM[0] = false
	t.segmentIsRAM[1] = false
}

// Peek reads the first segment (ROM or RAM, split into write/read halves
// when RAM is selected) or the fixed-ROM second segment.
func (t *ThreeE) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff
	if offset <= 0x07ff {
		if t.segmentIsRAM[0] {
			if offset <= 0x03ff {
				return 0, nil // write-only half reads as 0
			}
			return t.ram[t.segment[0]][offset&0x03ff], nil
		}
		return t.banks[t.segment[0]][offset&0x07ff], nil
	}
	return t.banks[t.segment[1]][offset&0x07ff], nil
}

// Poke writes to the first segment's RAM write port (when RAM is
// selected) or silently ignores writes to ROM.
func (t *ThreeE) Poke(addr uint16, value uint8) error {
	offset := addr & 0x0fff
	if offset <= 0x07ff && t.segmentIsRAM[0] && offset <= 0x03ff {
		t.ram[t.segment[0]][offset&0x03ff] = value
	}
	return nil
}

// Listen implements system.Listener: $3F selects a ROM bank for the first
// segment, $3E selects a RAM bank instead, both reduced modulo the
// available bank count.
func (t *ThreeE) Listen(addr uint16, value uint8, write bool) {
	if !write {
		return
	}
	switch addr {
	case 0x3f:
		t.segment[0] = wrapBank(int(value), len(t.banks))
		t.segmentIsRAM[0] = false
	case 0x3e:
		t.segment[0] = wrapBank(int(value), len(t.ram))
		t.segmentIsRAM[0] = true
	}
}

// SystemCyclesReset is a no-op.
func (t *ThreeE) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (t *ThreeE) Name() string {
	return "3E"
}

// Patch overwrites a byte in the canonical ROM image.
func (t *ThreeE) Patch(offset int, data uint8) error {
	bankSize := len(t.banks[0])
	if offset < 0 || offset >= bankSize*len(t.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	t.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends segment selection and the full RAM bank set.
func (t *ThreeE) Save(w *serialize.Writer) {
	w.PutInt(int32(t.segment[0]))
	w.PutInt(int32(t.segment[1]))
	w.PutBool(t.segmentIsRAM[0])
	w.PutBool(t.segmentIsRAM[1])
	for _, bank := range t.ram {
		w.PutByteArray(bank)
	}
}

// Load restores segment selection and the full RAM bank set.
func (t *ThreeE) Load(r *serialize.Reader) error {
	t.segment[0] = int(r.GetInt())
	t.segment[1] = int(r.GetInt())
	t.segmentIsRAM[0] = r.GetBool()
	t.segmentIsRAM[1] = r.GetBool()
	for i := range t.ram {
		t.ram[i] = r.GetByteArray()
	}
	return r.Err()
}
