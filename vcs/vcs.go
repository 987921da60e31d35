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

// Package vcs is the top-level composition: it wires System, CPU, RIOT,
// TIA audio, and an attached cartridge into the single object a host
// embeds, grounded on hardware/vcs.go's VCS struct. Unlike the teacher it
// has no television/video component to drive — this module's scope stops
// at the cycle-coupled CPU/RIOT/audio/cartridge core, so VCS.Step only
// ever advances the CPU and lets normal bus dispatch reach RIOT,
// cartridge hotspots, and TIA audio; it does not reproduce TIA's own
// scanline/color-clock stepping.
package vcs

import (
	"math"

	"github.com/atari-rl/vcscore/audio"
	"github.com/atari-rl/vcscore/cartridge"
	"github.com/atari-rl/vcscore/cpu"
	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/random"
	"github.com/atari-rl/vcscore/riot"
	"github.com/atari-rl/vcscore/soundexport"
	"github.com/atari-rl/vcscore/system"
)

// ErrUnknownFormat is raised by Create when the requested cartridge format
// code does not match one of the supported variants.
const ErrUnknownFormat = "vcs: unrecognised cartridge format %q"

// VCS is the assembled machine: the bus, the CPU, RIOT, TIA audio, and
// whichever cartridge variant was loaded.
type VCS struct {
	System *system.System
	CPU    *cpu.CPU
	RIOT   *riot.RIOT
	TIA    *audio.TIA

	RandomState bool

	// recorder is non-nil when audioConfig.RecordSoundFilename was set at
	// Create time. Close flushes it to disk.
	recorder *soundexport.WAVWriter
}

// Create builds a VCS around a ROM image and a cartridge format code
// ("2K", "4K", "F8", "F6", "F4", "F8SC", "F6SC", "F4SC", "3F", "3E", "E0",
// "E7", "UA", "CV", "FE" — the distilled variant table's own names).
// audioConfig configures the TIA audio device; randomState controls
// whether the CPU's power-on register state is zeroed or RNG-seeded. RIOT
// is not given the RNG.
func Create(format string, data []byte, audioConfig audio.Config, randomState bool) (*VCS, error) {
	sys := system.New()

	cart, err := newCartridge(format, data)
	if err != nil {
		return nil, err
	}
	if err := sys.Attach(cart); err != nil {
		return nil, err
	}

	r := riot.New()
	if err := sys.Attach(r); err != nil {
		return nil, err
	}

	tia, audioErr := audio.New(audioConfig)
	if err := sys.Attach(tia); err != nil {
		return nil, err
	}

	var rng *random.Random
	if randomState {
		rng = random.New(uint32(len(data)))
	}
	c := cpu.New(sys, rng, randomState)
	sys.AttachCPU(c)

	if err := sys.Reset(); err != nil {
		return nil, err
	}

	vcs := &VCS{System: sys, CPU: c, RIOT: r, TIA: tia, RandomState: randomState}

	if audioConfig.RecordSoundFilename != "" {
		sampleRate := audioConfig.Freq
		if sampleRate <= 0 {
			sampleRate = audioConfig.TIAFreq
		}
		vcs.recorder = soundexport.New(audioConfig.RecordSoundFilename, sampleRate)
		tia.AttachRecorder(vcs.recorder, math.MaxInt32)
	}

	// AudioInitFailure is non-fatal: sound is already disabled on
	// audioConfig by audio.New, so the machine is otherwise fully usable.
	return vcs, audioErr
}

func newCartridge(format string, data []byte) (system.Device, error) {
	switch format {
	case "2K":
		return cartridge.NewAtari2K(data)
	case "4K":
		return cartridge.NewAtari4K(data)
	case "F8":
		return cartridge.NewAtariF8(data, false)
	case "F8SC":
		return cartridge.NewAtariF8(data, true)
	case "F6":
		return cartridge.NewAtariF6(data, false)
	case "F6SC":
		return cartridge.NewAtariF6(data, true)
	case "F4":
		return cartridge.NewAtariF4(data, false)
	case "F4SC":
		return cartridge.NewAtariF4(data, true)
	case "3F":
		return cartridge.NewTigervision(data)
	case "3E":
		return cartridge.NewThreeE(data)
	case "E0":
		return cartridge.NewParkerBros(data)
	case "E7":
		return cartridge.NewMNetwork(data)
	case "CBS", "FA":
		return cartridge.NewCBS(data)
	case "UA":
		return cartridge.NewUA(data)
	case "CV":
		return cartridge.NewCommaVid(data)
	case "FE":
		return cartridge.NewFE(data)
	default:
		return nil, curated.Errorf(ErrUnknownFormat, format)
	}
}

// Step executes exactly one CPU instruction, driving RIOT's divider and
// any device Listener hooks (bankswitch hotspots, the audio write queue)
// through the normal bus dispatch that instruction's bus accesses cause.
// Each elapsed CPU cycle also steps RIOT's timer once, matching real
// hardware where RIOT is clocked directly off the system clock rather
// than off bus activity.
func (v *VCS) Step() (bool, error) {
	return v.CPU.Execute(1, v.onCycle)
}

// Run executes n CPU instructions, stopping early if the CPU halts or
// faults.
func (v *VCS) Run(n int) (bool, error) {
	return v.CPU.Execute(n, v.onCycle)
}

func (v *VCS) onCycle() error {
	v.RIOT.Step()
	return nil
}

// Close flushes any attached sound recorder to disk. It is a no-op if
// audioConfig.RecordSoundFilename was empty at Create time. Callers that
// configure recording should defer Close once the VCS is no longer needed.
//
// Save states are keyed by a caller-supplied ROM hash (e.g. a content hash
// of the loaded image); pass the same value to both Create's caller and
// any save.Orchestrator call against this VCS's System.
func (v *VCS) Close() error {
	if v.recorder == nil {
		return nil
	}
	return v.recorder.Close()
}
