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

const commaVidRAMSize = 1024

// CommaVid implements CommaVid's CV scheme (Magicard, Video Life): a fixed
// layout with no bankswitching at all. 2K of ROM occupies the upper half
// of the cartridge window ($1800-$1FFF); the lower half is 1K of RAM with
// a separate write port ($1000-$13FF) and read port ($1400-$17FF) that
// mirrors it, the same write/read-port split SuperChip RAM uses.
type CommaVid struct {
	rom [2048]byte
	ram [commaVidRAMSize]byte
}

// NewCommaVid builds a CV cartridge. data must be exactly 2048 bytes.
func NewCommaVid(data []byte) (*CommaVid, error) {
	if len(data) != 2048 {
		return nil, wrongSizeErr("CV", len(data), 2048)
	}
	c := &CommaVid{}
	copy(c.rom[:], data)
	return c, nil
}

// Install maps the cartridge window to this device.
func (c *CommaVid) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: c})
	}
	return nil
}

// Reset is a no-op: there is no bank state to restore.
func (c *CommaVid) Reset() {}

// Peek returns the RAM read port, or else the fixed ROM.
func (c *CommaVid) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff
	if offset >= 0x0400 && offset <= 0x07ff {
		return c.ram[offset-0x0400], nil
	}
	if offset < 0x0800 {
		// write-port addresses read back as open bus on real hardware;
		// there is no ROM underneath this half of the window.
		return 0, nil
	}
	return c.rom[offset-0x0800], nil
}

// Poke writes the RAM write port; writes elsewhere are ignored.
func (c *CommaVid) Poke(addr uint16, value uint8) error {
	offset := addr & 0x0fff
	if offset < 0x0400 {
		c.ram[offset] = value
	}
	return nil
}

// SystemCyclesReset is a no-op.
func (c *CommaVid) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (c *CommaVid) Name() string {
	return "CV"
}

// Patch overwrites a byte in the canonical ROM image.
func (c *CommaVid) Patch(offset int, data uint8) error {
	if offset < 0 || offset >= len(c.rom) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	c.rom[offset] = data
	return nil
}

// Save appends RAM contents.
func (c *CommaVid) Save(w *serialize.Writer) {
	w.PutByteArray(c.ram[:])
}

// Load restores RAM contents.
func (c *CommaVid) Load(r *serialize.Reader) error {
	copy(c.ram[:], r.GetByteArray())
	return r.Err()
}
