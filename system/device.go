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

// Package system implements the paged memory bus: a fixed 128-page table
// covering the 6507's 13-bit address space, the Device contract every
// memory-mapped component implements, and the System type that owns the
// page table, the attached devices, the CPU, and the cycle counter.
//
// Modeled on Stella's System/PageAccess pair (see original_source
// emucore/System.hxx): the direct-access fast path is kept, but a raw
// pointer into another object's memory has no safe Go equivalent, so
// PageAccess instead holds page-sized byte slices. A slice header is three
// words, same as a pointer+bound pair would be, and re-slicing on a bank
// switch is exactly as cheap as repointing was in the original.
package system

import (
	"github.com/atari-rl/vcscore/serialize"
)

// AddressingSpace is the number of address bits the bus accepts (the 6507's
// truncated bus).
const AddressingSpace = 13

// PageSizeBits is log2 of the page size.
const PageSizeBits = 6

// AddressMask masks an address down to AddressingSpace bits.
const AddressMask = 1<<AddressingSpace - 1

// PageMask masks an address down to its offset within a page.
const PageMask = 1<<PageSizeBits - 1

// PageSize is the number of bytes per page.
const PageSize = 1 << PageSizeBits

// NumberOfPages is the total number of pages covering AddressingSpace bits.
const NumberOfPages = 1 << (AddressingSpace - PageSizeBits)

// Device is the capability trait every memory-mapped component implements:
// cartridges, RIOT, NullDevice, and (indirectly, via TIA's registers) the
// audio pipeline. There is no base class — any type satisfying this
// interface may be attached.
type Device interface {
	// Install is called once, when the device is attached to sys. The
	// device rewrites the page table entries it owns via
	// sys.SetPageAccess.
	Install(sys *System) error

	// Reset restores the device to its power-up state.
	Reset()

	// Peek reads the unmasked address. Only called when no DirectPeek
	// slice is installed for the page; a device with side-effectful reads
	// (e.g. a hotspot that also happens to be peekable) leaves DirectPeek
	// nil for that page.
	Peek(addr uint16) (uint8, error)

	// Poke writes value at the unmasked address.
	Poke(addr uint16, value uint8) error

	// SystemCyclesReset notifies the device that System.cycles is about
	// to be rebased to zero, so devices tracking absolute cycle counts
	// can rebase their own bookkeeping.
	SystemCyclesReset()

	// Name identifies the device in save-state payloads. Load fails if
	// the name read from the stream does not match.
	Name() string

	// Save appends the device's state to w.
	Save(w *serialize.Writer)

	// Load restores the device's state from r, whose leading name tag
	// has already been matched against Name() by the caller.
	Load(r *serialize.Reader) error
}

// PageAccess describes how a single page is accessed. Invariant: on any
// valid page, either DirectPeek is non-nil or Device is non-nil (NullDevice
// for an uninstalled page).
type PageAccess struct {
	// DirectPeek, if non-nil, must have length PageSize. Reads index it
	// directly at addr&PageMask instead of calling Device.Peek.
	DirectPeek []byte

	// DirectPoke, if non-nil, must have length PageSize. Writes index it
	// directly instead of calling Device.Poke. A write still reaches the
	// device only when DirectPoke is nil.
	DirectPoke []byte

	// Device owns this page; used whenever the matching Direct* slice is
	// absent, and always receives poke notifications when DirectPoke is
	// nil even if DirectPeek is set (read-only ROM pages).
	Device Device
}
