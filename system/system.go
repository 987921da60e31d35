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

package system

import (
	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/logger"
	"github.com/atari-rl/vcscore/serialize"
)

// ErrSaveMismatch is the curated pattern used when a save-state name tag
// does not match the attached device at that slot, or the stream is
// otherwise structurally wrong. Callers must discard the partial state.
const ErrSaveMismatch = "system: save mismatch: %v"

// Resettable is the subset of the CPU's contract System needs in order to
// drive reset and save/restore ordering without importing the cpu package
// (which itself imports system, to avoid a cycle).
type Resettable interface {
	Reset() error
	SystemCyclesReset()
	Name() string
	Save(w *serialize.Writer)
	Load(r *serialize.Reader) error
}

// Listener is implemented by devices that must observe every bus access,
// not just those landing in a page they were installed on — the
// Tigervision-family hotspots live in TIA/RIOT address space, outside the
// cartridge's own window, so the cartridge can only learn of a bankswitch
// by snooping every access. write is true for Poke, false for Peek, so a
// Listener that only cares about one direction (3F's hotspot is
// poke-only; UA's fires on either) can tell them apart.
type Listener interface {
	Listen(addr uint16, value uint8, write bool)
}

// System is the paged memory bus: the page-access table, the attached
// device list in attachment order, the CPU, a null device, and the cycle
// counter / data-bus latch. It owns every device for its lifetime.
type System struct {
	pageAccessTable [NumberOfPages]PageAccess

	devices   []Device
	listeners []Listener
	cpu       Resettable

	null NullDevice

	cycles        uint32
	dataBusState  uint8
	dataBusLocked bool
}

// New creates a System with every page initially routed to a fresh
// NullDevice.
func New() *System {
	sys := &System{}
	_ = sys.null.Install(sys)
	for p := range sys.pageAccessTable {
		sys.pageAccessTable[p] = PageAccess{Device: &sys.null}
	}
	return sys
}

// NullDevice returns the system's null device, used by pages that are not
// mapped to a real device.
func (sys *System) NullDevice() *NullDevice {
	return &sys.null
}

// Attach installs device, giving it the opportunity to rewrite the page
// table entries it owns, and adds it to the attachment-ordered device list
// used by Reset, SaveState, and LoadState.
func (sys *System) Attach(device Device) error {
	if err := device.Install(sys); err != nil {
		return curated.Errorf("system: attaching %s: %v", device.Name(), err)
	}
	sys.devices = append(sys.devices, device)
	if l, ok := device.(Listener); ok {
		sys.listeners = append(sys.listeners, l)
	}
	return nil
}

// AttachCPU records the CPU for reset/save ordering. Unlike Attach, the CPU
// does not own any bus pages — it is System's sole client.
func (sys *System) AttachCPU(cpu Resettable) {
	sys.cpu = cpu
}

// SetPageAccess installs access for the given page index (not a raw
// address). Trusted path used by devices from Install and from their own
// bankswitch logic.
func (sys *System) SetPageAccess(page uint16, access PageAccess) {
	sys.pageAccessTable[page] = access
}

// GetPageAccess returns the current access descriptor for page.
func (sys *System) GetPageAccess(page uint16) PageAccess {
	return sys.pageAccessTable[page]
}

// Peek reads the byte at addr, masking addr to the addressing space exactly
// once. Updates the data-bus latch unless the bus is locked.
func (sys *System) Peek(addr uint16) (uint8, error) {
	page := (addr & AddressMask) >> PageSizeBits
	access := &sys.pageAccessTable[page]

	var result uint8
	var err error
	if access.DirectPeek != nil {
		result = access.DirectPeek[addr&PageMask]
	} else {
		result, err = access.Device.Peek(addr)
		if err != nil {
			return 0, err
		}
	}

	if !sys.dataBusLocked {
		sys.dataBusState = result
	}

	for _, l := range sys.listeners {
		l.Listen(addr, result, false)
	}

	return result, nil
}

// Poke writes value at addr, masking addr to the addressing space exactly
// once. Always updates the data-bus latch: writes are the canonical source
// of the last value seen on the bus.
func (sys *System) Poke(addr uint16, value uint8) error {
	page := (addr & AddressMask) >> PageSizeBits
	access := &sys.pageAccessTable[page]

	if access.DirectPoke != nil {
		access.DirectPoke[addr&PageMask] = value
	} else if err := access.Device.Poke(addr, value); err != nil {
		return err
	}

	for _, l := range sys.listeners {
		l.Listen(addr, value, true)
	}

	sys.dataBusState = value
	return nil
}

// DataBusState returns the last value read or written on the bus.
func (sys *System) DataBusState() uint8 {
	return sys.dataBusState
}

// LockDataBus prevents Peek from updating the data-bus latch. Used by
// debug tooling that wants to inspect memory without disturbing open-bus
// state; emulation always runs unlocked.
func (sys *System) LockDataBus() {
	sys.dataBusLocked = true
}

// UnlockDataBus resumes normal data-bus latch updates on Peek.
func (sys *System) UnlockDataBus() {
	sys.dataBusLocked = false
}

// Cycles returns the number of system cycles since the last reset.
func (sys *System) Cycles() uint32 {
	return sys.cycles
}

// IncrementCycles advances the cycle counter by amount.
func (sys *System) IncrementCycles(amount uint32) {
	sys.cycles += amount
}

// ResetCycles notifies every attached device and the CPU via
// SystemCyclesReset, then zeros the cycle counter.
func (sys *System) ResetCycles() {
	for _, d := range sys.devices {
		d.SystemCyclesReset()
	}
	if sys.cpu != nil {
		sys.cpu.SystemCyclesReset()
	}
	sys.cycles = 0
}

// Reset invokes Reset on every attached device and the CPU, in attachment
// order, then zeros the cycle counter.
func (sys *System) Reset() error {
	for _, d := range sys.devices {
		d.Reset()
	}
	if sys.cpu != nil {
		if err := sys.cpu.Reset(); err != nil {
			return err
		}
	}
	sys.cycles = 0
	return nil
}

// saveTag is the leading string of a whole-system save blob.
const saveTag = "State"

// SaveState serializes the entire attached device set plus the CPU and the
// cycle counter into a single ordered byte stream, prefixed with saveTag
// and the caller-supplied ROM hash.
func (sys *System) SaveState(romHash string) []byte {
	w := serialize.NewWriter()
	w.PutString(saveTag)
	w.PutString(romHash)
	w.PutInt(int32(len(sys.devices)))
	for _, d := range sys.devices {
		w.PutString(d.Name())
		d.Save(w)
	}
	if sys.cpu != nil {
		w.PutString(sys.cpu.Name())
		sys.cpu.Save(w)
	}
	w.PutInt(int32(sys.cycles))
	return w.Bytes()
}

// LoadState restores state previously produced by SaveState. romHash must
// match the hash recorded at save time. Devices must already be attached in
// the same order they were when SaveState ran; a name mismatch at any slot
// aborts the load with ErrSaveMismatch and the caller must discard the
// System rather than continue with partially-applied state.
func (sys *System) LoadState(romHash string, data []byte) error {
	r := serialize.NewReader(data)

	if tag := r.GetString(); tag != saveTag {
		return curated.Errorf(ErrSaveMismatch, "bad tag "+tag)
	}
	if hash := r.GetString(); hash != romHash {
		return curated.Errorf(ErrSaveMismatch, "rom hash does not match")
	}
	count := int(r.GetInt())
	if count != len(sys.devices) {
		return curated.Errorf(ErrSaveMismatch, "device count does not match")
	}

	for _, d := range sys.devices {
		name := r.GetString()
		if name != d.Name() {
			logger.Logf(logger.Allow, "system", "save mismatch: expected %s, got %s", d.Name(), name)
			return curated.Errorf(ErrSaveMismatch, "expected device "+d.Name()+", got "+name)
		}
		if err := d.Load(r); err != nil {
			return curated.Errorf(ErrSaveMismatch, "%v", err)
		}
	}

	if sys.cpu != nil {
		name := r.GetString()
		if name != sys.cpu.Name() {
			return curated.Errorf(ErrSaveMismatch, "expected cpu device, got "+name)
		}
		if err := sys.cpu.Load(r); err != nil {
			return curated.Errorf(ErrSaveMismatch, "%v", err)
		}
	}

	sys.cycles = uint32(r.GetInt())

	if err := r.Err(); err != nil {
		return curated.Errorf(ErrSaveMismatch, "%v", err)
	}
	return nil
}
