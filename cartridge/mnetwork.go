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

// num256ByteRAMBanks is the count of independently-selectable 256-byte RAM
// banks mapped at $1800-$19FF.
const num256ByteRAMBanks = 4

// MNetwork implements the E7 bankswitching scheme (Burgertime): eight 2K
// ROM banks in the lower segment, the last 2K of ROM fixed in the upper
// segment except when the ROM bank select equals 7, in which case a 1K RAM
// bank takes the lower segment's place, plus four selectable 256-byte RAM
// banks visible at the start of the upper segment ($1800-$19FF). Grounded on
// mapper_mnetwork.go.
type MNetwork struct {
	banks [][]byte
	bank  int

	ram1k      []byte
	ram256     [num256ByteRAMBanks][]byte
	ram256Sel  int
}

// NewMNetwork builds an E7 cartridge. data must be exactly 8 banks of 2048
// bytes (16K).
func NewMNetwork(data []byte) (*MNetwork, error) {
	const bankSize = 2048
	const bankCount = 8
	if len(data) != bankSize*bankCount {
		return nil, wrongSizeErr("E7", len(data), bankSize*bankCount)
	}

	m := &MNetwork{banks: make([][]byte, bankCount), ram1k: make([]byte, 1024)}
	for b := 0; b < bankCount; b++ {
		m.banks[b] = make([]byte, bankSize)
		copy(m.banks[b], data[b*bankSize:(b+1)*bankSize])
	}
	for b := range m.ram256 {
		m.ram256[b] = make([]byte, 256)
	}
	return m, nil
}

// Install maps the cartridge window to this device.
func (m *MNetwork) Install(sys *system.System) error {
	firstPage := uint16(Origin >> system.PageSizeBits)
	lastPage := uint16((Origin+WindowSize-1) >> system.PageSizeBits)
	for p := firstPage; p <= lastPage; p++ {
		sys.SetPageAccess(p, system.PageAccess{Device: m})
	}
	return nil
}

// Reset selects ROM bank 0 and 256-byte RAM bank 0.
func (m *MNetwork) Reset() {
	m.bank = 0
	m.ram256Sel = 0
}

// Peek reads the lower 2K segment (ROM bank, or the 1K RAM's read half
// when bank 7 is selected) or the upper 2K segment (fixed last ROM bank,
// except for the 256-byte RAM's read window at $1900-$19FF).
func (m *MNetwork) Peek(addr uint16) (uint8, error) {
	offset := addr & 0x0fff

	if offset <= 0x07ff {
		if m.bank == 7 && offset >= 0x0400 {
			return m.ram1k[offset&0x03ff], nil
		}
		return m.banks[m.bank][offset&0x07ff], nil
	}

	if offset >= 0x0900 && offset <= 0x09ff {
		return m.ram256[m.ram256Sel][offset&0x00ff], nil
	}

	data := m.banks[len(m.banks)-1][offset&0x07ff]
	m.checkHotspot(addr)
	return data, nil
}

// Poke writes the 1K RAM's write half (bank 7 only), the 256-byte RAM's
// write window, or triggers a hotspot; the fixed upper ROM bank otherwise
// ignores the write.
func (m *MNetwork) Poke(addr uint16, value uint8) error {
	offset := addr & 0x0fff

	if offset <= 0x03ff && m.bank == 7 {
		m.ram1k[offset&0x03ff] = value
		return nil
	}
	if offset >= 0x0800 && offset <= 0x08ff {
		m.ram256[m.ram256Sel][offset&0x00ff] = value
		return nil
	}
	m.checkHotspot(addr)
	return nil
}

func (m *MNetwork) checkHotspot(addr uint16) {
	switch {
	case addr >= 0x1fe0 && addr <= 0x1fe6:
		m.bank = int(addr - 0x1fe0)
	case addr == 0x1fe7:
		m.bank = 7
	case addr >= 0x1ff8 && addr <= 0x1ffb:
		m.ram256Sel = int(addr - 0x1ff8)
	}
}

// SystemCyclesReset is a no-op.
func (m *MNetwork) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (m *MNetwork) Name() string {
	return "E7"
}

// Patch overwrites a byte in the canonical ROM image.
func (m *MNetwork) Patch(offset int, data uint8) error {
	bankSize := len(m.banks[0])
	if offset < 0 || offset >= bankSize*len(m.banks) {
		return curated.Errorf(ErrPatchOutOfRange, offset)
	}
	m.banks[offset/bankSize][offset%bankSize] = data
	return nil
}

// Save appends bank selection and all RAM contents.
func (m *MNetwork) Save(w *serialize.Writer) {
	w.PutInt(int32(m.bank))
	w.PutInt(int32(m.ram256Sel))
	w.PutByteArray(m.ram1k)
	for _, bank := range m.ram256 {
		w.PutByteArray(bank)
	}
}

// Load restores bank selection and all RAM contents.
func (m *MNetwork) Load(r *serialize.Reader) error {
	m.bank = int(r.GetInt())
	m.ram256Sel = int(r.GetInt())
	m.ram1k = r.GetByteArray()
	for i := range m.ram256 {
		m.ram256[i] = r.GetByteArray()
	}
	return r.Err()
}
