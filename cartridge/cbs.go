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

// CBS implements the FA bankswitching scheme (Omega Race, Gorf): three 4K
// banks selected at $1FF8-$1FFA, plus 256 bytes of RAM mapped at
// $1000-$11FF (write port $1000-$10FF, read port $1100-$11FF). Grounded on
// mapper_cbs.go.
type CBS struct {
	banks [][]byte
	bank  int
	ram   [256]byte
}

// NewCBS builds an FA cartridge. data must be exactly 3*4096 bytes (12K).
func NewCBS(data []byte) (*CBS, error) {
	const bankSize = 4096
	const bankCount = 3
	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr("FA", len(data), bankSize*bankCount)
	}

	c := &CBS{banks: make([][]byte, bankCount)}
	for b := 0; b < bankCount; b++ {
		c.banks[b] = make([]byte, bankSize)
		copy(c.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	return c, nil
}

// Install maps the cartridge window to this device.
func (c *CBS) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: c})
	}
	return nil
}

// Reset selects the last bank.
func (c *CBS) Reset() {
	c.bank = len(c.banks) - 1
}

// Peek reads the RAM read port, or else the currently selected bank, then
// checks for a hotspot.
func (c *CBS) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff
	if offset >= 0x0100 && offset <= 0x01ff {
		return c.ram[offset&0x00ff], nil
	}
	data := c.banks[c.bank][offset]
	c.checkHotspot(addr)
	return data, nil
}

// Poke writes the RAM write port, or else checks for a hotspot.
func (c *CBS) Poke(addr uint16, value uint8) error {
	offset := addr & 0x0fff
	if offset <= 0x00ff {
		c.ram[offset] = value
		return nil
	}
	c.checkHotspot(addr)
	return nil
}

func (c *CBS) checkHotspot(addr uint16) {
	switch addr {
	case 0x1ff8:
		c.bank = 0
	case 0x1ff9:
		c.bank = 1
	case 0x1ffa:
		c.bank = 2
	}
}

// SystemCyclesReset is a no-op.
func (c *CBS) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (c *CBS) Name() string {
	return "FA"
}

// Patch overwrites a byte in the canonical ROM image.
func (c *CBS) Patch(offset int, data uint8) error {
	bankSize := len(c.banks[0])
	if offset < 0 || offset >= bankSize*len(c.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	c.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends bank selection and RAM contents.
func (c *CBS) Save(w *serialize.Writer) {
	w.PutInt(int32(c.bank))
	w.PutByteArray(c.ram[:])
}

// Load restores bank selection and RAM contents.
func (c *CBS) Load(r *serialize.Reader) error {
	c.bank = int(r.GetInt())
	copy(c.ram[:], r.GetByteArray())
	return r.Err()
}
