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

// superchipRAMSize is the size, in bytes, of the Atari "SuperChip" RAM
// overlay used by the F8SC/F6SC/F4SC variants: 128 bytes mapped twice, once
// as a write port at $1000-$107F and once as a read port at $1080-$10FF.
const superchipRAMSize = 128

// Atari implements the 2K, 4K, F8, F6, and F4 Atari-format cartridges,
// optionally with the SuperChip RAM overlay (F8SC/F6SC/F4SC). All of these
// share one bankswitch shape: a fixed set of hotspot addresses in the
// cartridge's top page that each select one whole 4K (or, for 2K, a mirrored
// 2K) bank. Grounded on the teacher's shared `atari` struct in
// mapper_atari.go.
type Atari struct {
	name string

	bankSize int
	banks    [][]byte

	// hotspots maps a hotspot address to the bank it selects. Empty for
	// 2K and 4K, which have exactly one bank and no hotspots.
	hotspots map[uint16]int

	// mirrorMask, if non-zero, is applied to the in-window offset before
	// indexing the bank (the 2K format mirrors its image across the 4K
	// window).
	mirrorMask uint16

	ram []byte // SuperChip overlay, nil if this variant has none

	bank       int
	bankLocked bool

	sys *system.System
}

func newAtari(name string, bankSize int, bankCount int, hotspots map[uint16]int, mirrorMask uint16, superchip bool, data []byte) (*Atari, error) {
	a := &Atari{
		name:       name,
		bankSize:   bankSize,
		hotspots:   hotspots,
		mirrorMask: mirrorMask,
	}

	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr(name, len(data), bankSize*bankCount)
	}

	a.banks = make([][]byte, bankCount)
	for b := 0; b < bankCount; b++ {
		a.banks[b] = make([]byte, bankSize)
		copy(a.banks[b], data[b*bankSize:(b+1)*bankSize])
	}

	if superchip {
		a.ram = make([]byte, superchipRAMSize)
	}

	return a, nil
}

// NewAtari2K builds a 2048-byte cartridge. The image mirrors into the
// upper half of the 4K window.
func NewAtari2K(data []byte) (*Atari, error) {
	return newAtari("2K", 2048, 1, nil, 0x07ff, false, data)
}

// NewAtari4K builds a standard 4096-byte, unbanked cartridge.
func NewAtari4K(data []byte) (*Atari, error) {
	return newAtari("4K", 4096, 1, nil, 0, false, data)
}

// NewAtariF8 builds an 8K cartridge bankswitched at $1FF8/$1FF9.
func NewAtariF8(data []byte, superchip bool) (*Atari, error) {
	name := "F8"
	if superchip {
		name = "F8SC"
	}
	return newAtari(name, 4096, 2, map[uint16]int{0x1ff8: 0, 0x1ff9: 1}, 0, superchip, data)
}

// NewAtariF6 builds a 16K cartridge bankswitched at $1FF6-$1FF9.
func NewAtariF6(data []byte, superchip bool) (*Atari, error) {
	name := "F6"
	if superchip {
		name = "F6SC"
	}
	return newAtari(name, 4096, 4, map[uint16]int{0x1ff6: 0, 0x1ff7: 1, 0x1ff8: 2, 0x1ff9: 3}, 0, superchip, data)
}

// NewAtariF4 builds a 32K cartridge bankswitched at $1FF4-$1FFB.
func NewAtariF4(data []byte, superchip bool) (*Atari, error) {
	name := "F4"
	if superchip {
		name = "F4SC"
	}
	return newAtari(name, 4096, 8, map[uint16]int{
		0x1ff4: 0, 0x1ff5: 1, 0x1ff6: 2, 0x1ff7: 3,
		0x1ff8: 4, 0x1ff9: 5, 0x1ffa: 6, 0x1ffb: 7,
	}, 0, superchip, data)
}

// Install maps the entire cartridge window to this device. Every access,
// hotspot or not, must be inspected, so no DirectPeek/DirectPoke slice is
// installed.
func (a *Atari) Install(sys *system.System) error {
	a.sys = sys
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: a})
	}
	return nil
}

// Reset selects the cartridge's power-up bank. Multi-bank cartridges start
// on the second bank (bank index 1) rather than bank 0, matching the
// teacher's convention — some ROMs rely on it to boot correctly.
func (a *Atari) Reset() {
	if len(a.banks) > 1 {
		a.bank = 1
	} else {
		a.bank = 0
	}
}

func (a *Atari) checkHotspot(addr uint16) {
	if a.bankLocked {
		return
	}
	if b, ok := a.hotspots[addr]; ok {
		a.bank = b
	}
}

// Peek reads addr, which must fall within Origin..Origin+WindowSize-1.
// Hotspot addresses trigger a bank switch on read as well as write, since
// the CPU typically probes them via BIT/LDA.
func (a *Atari) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff

	if a.ram != nil && offset >= 0x80 && offset <= 0xff {
		return a.ram[offset-0x80], nil
	}

	a.checkHotspot(addr)

	if a.mirrorMask != 0 {
		offset &= a.mirrorMask
	}
	return a.banks[a.bank][offset], nil
}

// Poke writes addr. SuperChip RAM's write port ($1000-$107F) is the only
// writable region; everything else either triggers a hotspot or is
// silently ignored (spurious writes to ROM are tolerated, as on real
// hardware, rather than treated as an error).
func (a *Atari) Poke(addr uint16, value uint8) error {
	offset := addr & 0x0fff

	if a.ram != nil && offset <= 0x7f {
		a.ram[offset] = value
		return nil
	}

	a.checkHotspot(addr)
	return nil
}

// SystemCyclesReset is a no-op; Atari-format cartridges track no
// cycle-relative state.
func (a *Atari) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (a *Atari) Name() string {
	return a.name
}

// Patch overwrites a byte in the canonical ROM image, addressed by a flat
// offset into the whole image (bank*bankSize + offset-within-bank).
func (a *Atari) Patch(offset int, data uint8) error {
	if offset < 0 || offset >= a.bankSize*len(a.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	bank := offset / a.bankSize
	a.banks[bank][offset%a.bankSize] = data
	return nil
}

// GetImage returns the canonical ROM image bytes, bank by bank.
func (a *Atari) GetImage() [][]byte {
	return a.banks
}

// LockBank suppresses further bank switches; Peek still returns whatever
// mapping is currently active.
func (a *Atari) LockBank(locked bool) {
	a.bankLocked = locked
}

// Save appends current_bank and, if present, the SuperChip RAM contents.
func (a *Atari) Save(w *serialize.Writer) {
	w.PutInt(int32(a.bank))
	w.PutBool(a.ram != nil)
	if a.ram != nil {
		w.PutByteArray(a.ram)
	}
}

// Load restores current_bank and SuperChip RAM contents.
func (a *Atari) Load(r *serialize.Reader) error {
	a.bank = int(r.GetInt())
	hasRAM := r.GetBool()
	if hasRAM {
		a.ram = r.GetByteArray()
	}
	return r.Err()
}
