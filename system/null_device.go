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

import "github.com/atari-rl/vcscore/serialize"

// NullDevice fills every page that has not been claimed by a real device.
// Reads return the current data-bus latch (open-bus behavior); writes are
// no-ops. Save and load are no-ops that always succeed.
type NullDevice struct {
	sys *System
}

// Install wires the device's back-reference to sys. NullDevice does not
// claim any pages itself — System pre-fills the page table with entries
// pointing at it before any real device attaches.
func (n *NullDevice) Install(sys *System) error {
	n.sys = sys
	return nil
}

// Reset is a no-op; NullDevice has no state.
func (n *NullDevice) Reset() {}

// Peek returns the current data-bus latch.
func (n *NullDevice) Peek(addr uint16) (uint8, error) {
	if n.sys == nil {
		return 0, nil
	}
	return n.sys.DataBusState(), nil
}

// Poke is a no-op.
func (n *NullDevice) Poke(addr uint16, value uint8) error {
	return nil
}

// SystemCyclesReset is a no-op; NullDevice tracks no cycle-relative state.
func (n *NullDevice) SystemCyclesReset() {}

// Name identifies the device in save-state payloads.
func (n *NullDevice) Name() string {
	return "NullDevice"
}

// Save is a no-op.
func (n *NullDevice) Save(w *serialize.Writer) {}

// Load is a no-op that always succeeds.
func (n *NullDevice) Load(r *serialize.Reader) error {
	return nil
}
