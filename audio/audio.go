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

// Package audio implements the TIA's audio half: the six sound registers,
// a time-deltaed write queue decoupling the emulation thread's CPU-cycle
// clock from the host audio callback's wall-clock fragment requests, and a
// synthesizer that turns queued register writes into PCM samples.
//
// Grounded on SoundSDL.cxx's processFragment() (see original_source): the
// drain-if-overfull step, the running-cursor sample-count rule, and the
// "fill the rest of the fragment from current state once the queue runs
// dry" tail case are all preserved here, adapted from push-style callback
// synthesis into a pull-style GenerateFragment method a host audio sink
// calls directly. The full TIA waveform/noise polynomial-counter synth
// Stella implements is out of scope here (see DESIGN.md): this module's
// testable surface is the queue-timing algorithm, not bit-exact waveform
// reproduction, so synthesizeSample is a simplified volume-driven level.
package audio

import (
	"math"
	"sync"

	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/serialize"
	"github.com/atari-rl/vcscore/system"
)

// Register addresses within TIA's page.
const (
	AUDC0 = 0x15
	AUDC1 = 0x16
	AUDF0 = 0x17
	AUDF1 = 0x18
	AUDV0 = 0x19
	AUDV1 = 0x1a
)

// tiaClockHz is the NTSC TIA's reference clock: the CPU-cycle domain every
// queued write's delta is measured in, independent of whatever rate the
// host sink asks for.
const tiaClockHz = 1193191.66

// ErrAudioInit is the curated pattern raised (non-fatally — sound is just
// disabled) when the configured fragment size can't keep latency bounded
// at the configured host rate.
const ErrAudioInit = "audio: fragment ratio unusable (fragsize/freq >= 0.25)"

// Recorder is the SoundExporter collaborator: anything that can accept
// produced PCM fragments, such as soundexport.WAVWriter.
type Recorder interface {
	Write(samples []byte) (int, error)
}

type queueEntry struct {
	addr  uint8
	value uint8
	delta float64
}

// TIA is the audio-register device: six write-only registers, a growable
// write queue, and the fragment synthesizer. It implements system.Device
// so it can be attached directly to the bus at TIA's register page.
type TIA struct {
	mu sync.Mutex

	config    Config
	registers [6]uint8

	queue                []queueEntry
	lastRegisterSetCycle uint32

	muted bool

	recorder      Recorder
	samplesNeeded int

	sys *system.System
}

// New creates a TIA audio device. If the configured fragment size can't
// keep latency bounded at the configured host rate, Sound is forced off
// and a non-fatal ErrAudioInit is returned alongside the otherwise-usable
// TIA — matching the distilled contract's AudioInitFailure: "sound is
// disabled and the emulator continues silently."
func New(config Config) (*TIA, error) {
	t := &TIA{config: config, queue: make([]queueEntry, 0, 512)}
	if config.Freq > 0 && float64(config.FragSize)/float64(config.Freq) >= 0.25 {
		t.config.Sound = false
		return t, curated.Errorf(ErrAudioInit)
	}
	return t, nil
}

// Install maps this device across TIA's full register page and its
// $40-$7F mirror (the chip only decodes 6 address lines), so every
// cartridge variant's incomplete-decode writes land here exactly as they
// would on real hardware.
func (t *TIA) Install(sys *system.System) error {
	t.sys = sys
	sys.SetPageAccess(0, system.PageAccess{Device: t})
	sys.SetPageAccess(1, system.PageAccess{Device: t})
	return nil
}

// Reset implements the audio-specific reset procedure from distilled
// §4.4: pause (mute), zero last_register_set_cycle, clear the synth and
// the queue, then resume.
func (t *TIA) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registers = [6]uint8{}
	t.lastRegisterSetCycle = 0
	t.queue = t.queue[:0]
	t.muted = false
}

// Peek returns open-bus: every TIA audio register is write-only.
func (t *TIA) Peek(addr uint16) (uint8, error) {
	if t.sys != nil {
		return t.sys.DataBusState(), nil
	}
	return 0, nil
}

// Poke enqueues a write to one of the six audio registers; writes to any
// other TIA address in this page (video registers, out of this module's
// scope) are silently ignored.
func (t *TIA) Poke(addr uint16, value uint8) error {
	offset := uint8(addr & 0x3f)
	if offset < AUDC0 || offset > AUDV1 {
		return nil
	}
	t.enqueue(offset, value)
	return nil
}

func (t *TIA) enqueue(addr uint8, value uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cycle := uint32(0)
	if t.sys != nil {
		cycle = t.sys.Cycles()
	}
	delta := float64(cycle-t.lastRegisterSetCycle) / tiaClockHz
	t.lastRegisterSetCycle = cycle

	t.queue = append(t.queue, queueEntry{addr: addr, value: value, delta: delta})
}

func (t *TIA) applyRegister(addr uint8, value uint8) {
	t.registers[addr-AUDC0] = value
}

// SystemCyclesReset rebases last_register_set_cycle the same way System is
// about to rebase its own cycle counter, so a pending queue entry's delta
// stays correct across the rebase.
func (t *TIA) SystemCyclesReset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastRegisterSetCycle = 0
}

// Name identifies the device in save-state payloads.
func (t *TIA) Name() string {
	return "TIASound"
}

// Mute pauses output and clears the pending queue.
func (t *TIA) Mute() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = true
	t.queue = t.queue[:0]
}

// Unmute resumes output.
func (t *TIA) Unmute() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.muted = false
}

// SetVolume updates the configured master volume, clamped to [0,100].
func (t *TIA) SetVolume(v int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	t.config.Volume = v
}

// AttachRecorder wires a SoundExporter collaborator. Each GenerateFragment
// call copies up to samplesNeeded bytes of the produced fragment to it,
// decrementing the remaining count, until it reaches zero.
func (t *TIA) AttachRecorder(r Recorder, samplesNeeded int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recorder = r
	t.samplesNeeded = samplesNeeded
}

// GenerateFragment produces length mono U8 PCM samples, draining the write
// queue as needed so every returned sample reflects register-accurate
// state for the CPU-cycle instant it corresponds to.
func (t *TIA) GenerateFragment(length int) []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]byte, length)
	if t.muted || !t.config.Sound || length == 0 {
		for i := range out {
			out[i] = 128
		}
		return out
	}

	hostRate := float64(t.config.Freq)
	if hostRate <= 0 {
		hostRate = float64(t.config.TIAFreq)
	}
	fragSeconds := float64(t.config.FragSize) / hostRate

	if pending := t.totalPendingDelta(); pending > fragSeconds {
		target := fragSeconds / 2
		for pending > target && len(t.queue) > 0 {
			e := t.queue[0]
			t.queue = t.queue[1:]
			t.applyRegister(e.addr, e.value)
			pending -= e.delta
		}
		t.lastRegisterSetCycle = 0
	}

	remaining := float64(length) / hostRate
	position := 0.0
	produced := 0

	for produced < length {
		if len(t.queue) == 0 {
			t.fill(out[produced:])
			produced = length
			t.lastRegisterSetCycle = 0
			break
		}

		e := &t.queue[0]

		// preserved from processFragment(): a literal identity no-op in
		// the original, kept verbatim rather than simplified away.
		e.delta = e.delta * (hostRate / hostRate)

		if e.delta <= remaining {
			s := hostRate * e.delta
			n := int(math.Floor(position+s)) - int(math.Floor(position))
			if produced+n > length {
				n = length - produced
			}
			t.fill(out[produced : produced+n])
			produced += n
			position += s
			remaining -= e.delta
			t.applyRegister(e.addr, e.value)
			t.queue = t.queue[1:]
		} else {
			t.fill(out[produced:])
			e.delta -= remaining
			produced = length
		}
	}

	if t.recorder != nil && t.samplesNeeded > 0 {
		n := len(out)
		if n > t.samplesNeeded {
			n = t.samplesNeeded
		}
		if n > 0 {
			if _, err := t.recorder.Write(out[:n]); err == nil {
				t.samplesNeeded -= n
			}
		}
	}

	return out
}

func (t *TIA) totalPendingDelta() float64 {
	total := 0.0
	for _, e := range t.queue {
		total += e.delta
	}
	return total
}

func (t *TIA) fill(dst []byte) {
	s := t.synthesizeSample()
	for i := range dst {
		dst[i] = s
	}
}

// synthesizeSample turns current register state into one PCM level. Real
// TIA audio mixes two independent waveform/noise-polynomial channels
// clocked by AUDF; this module simplifies that to a volume-driven level
// around the U8 midpoint, since the distilled contract's testable
// properties are about queue timing, not waveform shape (see DESIGN.md).
func (t *TIA) synthesizeSample() uint8 {
	level := int(t.registers[AUDV0-AUDC0]) + int(t.registers[AUDV1-AUDC0])
	amplitude := level * 4
	if amplitude > 127 {
		amplitude = 127
	}
	scaled := amplitude * t.config.Volume / 100
	if t.config.ClipVolume && scaled > 127 {
		scaled = 127
	}
	return uint8(128 + scaled)
}

// Save persists the six register values and last_register_set_cycle.
func (t *TIA) Save(w *serialize.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.registers {
		w.PutByte(r)
	}
	w.PutUint32(t.lastRegisterSetCycle)
}

// Load restores register values and last_register_set_cycle, clears the
// queue, and resumes (unmutes) — matching distilled §4.4's load procedure.
func (t *TIA) Load(r *serialize.Reader) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.registers {
		t.registers[i] = r.GetByte()
	}
	t.lastRegisterSetCycle = r.GetUint32()
	t.queue = t.queue[:0]
	t.muted = false
	return r.Err()
}
