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

// Tigervision implements the 3F bankswitching scheme: two 2K segments, the
// second of which is permanently fixed to the last bank in the image. A
// write to any address in $00-$3F of TIA/RIOT space selects the bank for
// the first segment; the written value, reduced modulo the bank count (not
// clamped), chooses the bank. Grounded on
// mapper_tigervision.go and cross-checked against Cart3F.cxx for the exact
// masking rule, which forwards the full, unmasked data byte to the bank
// selector rather than just the bottom 2 or 3 bits.
type Tigervision struct {
	banks   [][]byte
	segment [2]int
}

// NewTigervision builds a Tigervision cartridge. data's length must be a
// multiple of 2048.
func NewTigervision(data []byte) (*Tigervision, error) {
	const bankSize = 2048
	if len(data) == 0 || len(data)%bankSize != 0 {
		return nil, wrongSizeErr("3F", len(data), 0)
	}

	numBanks := len(data) / bankSize
	t := &Tigervision{banks: make([][]byte, numBanks)}
	for b := 0; b < numBanks; b++ {
		t.banks[b] = make([]byte, bankSize)
		copy(t.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	return t, nil
}

// Install maps the cartridge window to this device.
func (t *Tigervision) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: t})
	}
	return nil
}

// Reset selects the last two banks: the final bank into the fixed second
// segment and the second-to-last into the selectable first segment.
func (t *Tigervision) Reset() {
	t.segment[0] = wrapBank(len(t.banks)-2, len(t.banks))
	t.segment[1] = len(t.banks) - 1
}

// Peek reads from the currently selected bank of whichever 2K segment addr
// falls in.
func (t *Tigervision) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff
	if offset <= 0x07ff {
		return t.banks[t.segment[0]][offset&0x07ff], nil
	}
	return t.banks[t.segment[1]][offset&0x07ff], nil
}

// Poke is a no-op: the cartridge window is pure ROM and carries no hotspot
// of its own. The bankswitch hotspot lives in TIA/RIOT space and is
// observed through Listen instead.
func (t *Tigervision) Poke(addr uint16, value uint8) error {
	return nil
}

// Listen implements system.Listener. A write to $00-$3F of TIA/RIOT space
// (mirrored at $40-$7F so games can still reach real TIA registers without
// tripping a bankswitch) selects a new bank for the first segment. The
// entire written byte, not just its low bits, is what a real 74LS173
// latches; it is only reduced modulo the bank count when indexing.
func (t *Tigervision) Listen(addr uint16, value uint8, write bool) {
	if write && addr&0xfc0 == 0 {
		t.segment[0] = wrapBank(int(value), len(t.banks))
	}
}

// SystemCyclesReset is a no-op.
func (t *Tigervision) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (t *Tigervision) Name() string {
	return "3F"
}

// Patch overwrites a byte in the canonical ROM image.
func (t *Tigervision) Patch(offset int, data uint8) error {
	bankSize := len(t.banks[0])
	if offset < 0 || offset >= bankSize*len(t.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	t.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends the two segment indices.
func (t *Tigervision) Save(w *serialize.Writer) {
	w.PutInt(int32(t.segment[0]))
	w.PutInt(int32(t.segment[1]))
}

// Load restores the two segment indices.
func (t *Tigervision) Load(r *serialize.Reader) error {
	t.segment[0] = int(r.GetInt())
	t.segment[1] = int(r.GetInt())
	return r.Err()
}
