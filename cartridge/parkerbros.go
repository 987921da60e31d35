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

// parkerBrosHotspots maps each of $1FE0-$1FF7 to the segment it selects a
// bank for and the bank index it selects.
var parkerBrosHotspots = buildParkerBrosHotspots()

func buildParkerBrosHotspots() map[uint16][2]int {
	m := make(map[uint16][2]int)
	for seg := 0; seg < 3; seg++ {
		for bank := 0; bank < 8; bank++ {
			addr := uint16(0x1fe0+seg*8+bank)
			m[addr] = [2]int{seg, bank}
		}
	}
	return m
}

// ParkerBros implements the E0 bankswitching scheme: four 1K segments, the
// last permanently fixed to the ROM's last 1K. Grounded on
// mapper_parkerbros.go / cartridge_parkerbros.go.
type ParkerBros struct {
	banks   [][]byte
	segment [4]int
}

// NewParkerBros builds an E0 cartridge. data must be exactly 8*1024 bytes
// (8 banks of 1K).
func NewParkerBros(data []byte) (*ParkerBros, error) {
	const bankSize = 1024
	const bankCount = 8
	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr("E0", len(data), bankSize*bankCount)
	}

	p := &ParkerBros{banks: make([][]byte, bankCount)}
	for b := 0; b < bankCount; b++ {
		p.banks[b] = make([]byte, bankSize)
		copy(p.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	return p, nil
}

// Install maps the cartridge window to this device.
func (p *ParkerBros) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for pg := firstPage; pg <= lastPage; pg++ {
		sys.SetPageAccess(pg, system.PageAccess{Device: p})
	}
	return nil
}

// Reset selects the last four banks, one per segment, so the cartridge
// always starts up the same way.
func (p *ParkerBros) Reset() {
	p.segment[0] = len(p.banks) - 4
	p.segment[1] = len(p.banks) - 3
	p.segment[2] = len(p.banks) - 2
	p.segment[3] = len(p.banks) - 1
}

func segmentOf(offset uint16) int {
	return int(offset >> 10)
}

// Peek reads from whichever of the four 1K segments addr falls in, then
// checks for a hotspot at the same address.
func (p *ParkerBros) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff
	seg := segmentOf(offset)
	data := p.banks[p.segment[seg]][offset&0x03ff]
	p.checkHotspot(addr)
	return data, nil
}

// Poke writes only have meaning as hotspot triggers; the segment ROM
// itself is read-only.
func (p *ParkerBros) Poke(addr uint16, value uint8) error {
	p.checkHotspot(addr)
	return nil
}

func (p *ParkerBros) checkHotspot(addr uint16) {
	if sel, ok := parkerBrosHotspots[addr]; ok {
		p.segment[sel[0]] = sel[1]
	}
}

// SystemCyclesReset is a no-op.
func (p *ParkerBros) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (p *ParkerBros) Name() string {
	return "E0"
}

// Patch overwrites a byte in the canonical ROM image.
func (p *ParkerBros) Patch(offset int, data uint8) error {
	bankSize := len(p.banks[0])
	if offset < 0 || offset >= bankSize*len(p.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	p.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends the four segment indices.
func (p *ParkerBros) Save(w *serialize.Writer) {
	for _, s := range p.segment {
		w.PutInt(int32(s))
	}
}

// Load restores the four segment indices.
func (p *ParkerBros) Load(r *serialize.Reader) error {
	for i := range p.segment {
		p.segment[i] = int(r.GetInt())
	}
	return r.Err()
}
