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

// Package cartridge implements the Atari 2600 cartridge bankswitching
// family: 2K, 4K, the F8/F6/F4 hotspot-switched Atari formats (with the
// SuperChip RAM overlay), Tigervision's 3F, 3E, Parker Bros' E0, M-Network's
// E7, CBS' UA-style switch, CommaVid's CV, and Activision's FE.
//
// Every variant implements system.Device directly rather than sharing a
// deeper base-class hierarchy: cartridges occupy $1000-$1FFF exclusively
// through the Device dispatch path (no DirectPeek/DirectPoke fast path),
// because every variant must inspect every access in its window for a
// hotspot trigger. The fast path this module demonstrates lives in riot's
// RAM page instead, which has no such requirement.
package cartridge

import (
	"github.com/atari-rl/vcscore/curated"
)

// Origin is the address at which the cartridge window starts.
const Origin = 0x1000

// WindowSize is the size of the cartridge's address window.
const WindowSize = 0x1000

// ErrWrongSize is the curated pattern used when a ROM image's length does
// not match what a variant's constructor expects.
const ErrWrongSize = "cartridge: wrong number of bytes for %s (got %d, want %d)"

// ErrPatchOutOfRange is the curated pattern used when Patch is given an
// offset outside the ROM image.
const ErrPatchOutOfRange = "cartridge: patch offset %d out of range"

// ErrBadWrite is a curated pattern for a poke that lands on a read-only ROM
// region with no hotspot or RAM meaning. The variants in this package
// ignore such writes and do not return it.
const ErrBadWrite = "cartridge: %s: write to read-only address %#04x"

// wrapBank brings an out-of-range requested bank index back into
// [0, bankCount) by modulo wrap, matching Cart3F.cxx's bank(value) and the
// distilled spec's BankOutOfRange recovery policy.
func wrapBank(requested, bankCount int) int {
	if bankCount <= 0 {
		return 0
	}
	b := requested % bankCount
	if b < 0 {
		b += bankCount
	}
	return b
}

func wrongSizeErr(name string, got, want int) error {
	return curated.Errorf(ErrWrongSize, name, got, want)
}
