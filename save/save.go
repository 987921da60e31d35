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

// Package save writes and reads whole-system save states to a filesystem,
// adapted from virtualxt's platform layer: state persistence goes through
// an afero.Fs rather than the os package directly, so callers can swap in
// afero.NewMemMapFs() for tests or an embedding host that has no real disk
// (a browser sandbox, a fuzzing harness) without this package changing.
package save

import (
	"github.com/spf13/afero"

	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/system"
)

// ErrIO is raised when the backing afero.Fs refuses the read or write.
const ErrIO = "save: %v"

// Orchestrator persists system.System save states under a chosen
// filesystem, keyed by the ROM hash System.SaveState/LoadState already
// require.
type Orchestrator struct {
	fs afero.Fs
}

// New wraps fs. Pass afero.NewOsFs() for real files or afero.NewMemMapFs()
// for an in-memory filesystem.
func New(fs afero.Fs) *Orchestrator {
	return &Orchestrator{fs: fs}
}

// WriteTo serializes sys's full state (keyed by romHash) and writes it to
// path on the orchestrator's filesystem, replacing any existing file.
func (o *Orchestrator) WriteTo(path string, romHash string, sys *system.System) error {
	data := sys.SaveState(romHash)
	if err := afero.WriteFile(o.fs, path, data, 0o644); err != nil {
		return curated.Errorf(ErrIO, err)
	}
	return nil
}

// ReadFrom reads path from the orchestrator's filesystem and restores it
// into sys, which must already have every device attached in the same
// order it was in when the state was written.
func (o *Orchestrator) ReadFrom(path string, romHash string, sys *system.System) error {
	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return curated.Errorf(ErrIO, err)
	}
	return sys.LoadState(romHash, data)
}

// Exists reports whether path is present on the orchestrator's filesystem.
func (o *Orchestrator) Exists(path string) (bool, error) {
	ok, err := afero.Exists(o.fs, path)
	if err != nil {
		return false, curated.Errorf(ErrIO, err)
	}
	return ok, nil
}
