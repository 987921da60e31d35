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

package vcs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atari-rl/vcscore/audio"
	"github.com/atari-rl/vcscore/vcs"
)

// nopROM builds a 4096-byte 4K cartridge image: NOPs everywhere, with the
// reset vector (at the top of the window, $1FFC-$1FFD) pointing at the
// start of the window ($1000).
func nopROM() []byte {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = 0xEA // NOP
	}
	data[0x0ffc] = 0x00 // low byte of $1000
	data[0x0ffd] = 0x10 // high byte
	return data
}

func TestCreateAndRunAdvancesCPU(t *testing.T) {
	v, err := vcs.Create("4K", nopROM(), audio.DefaultConfig(), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.CPU.PC != 0x1000 {
		t.Fatalf("PC after reset = %#04x, want 0x1000", v.CPU.PC)
	}

	ok, err := v.Run(10)
	if err != nil || !ok {
		t.Fatalf("run: ok=%v err=%v", ok, err)
	}
	if v.CPU.PC != 0x100a {
		t.Fatalf("PC after 10 NOPs = %#04x, want 0x100a", v.CPU.PC)
	}
}

// jsrRTSROM builds a 4K image whose reset vector starts a JSR to a
// subroutine that loads a marker register and returns, then loads a
// second marker register after the call. This only produces the expected
// end state if pushes from JSR and pops from RTS actually reach the same
// backing RAM — i.e. if the 6507 stack page ($0100-$01FF) is wired to
// real storage in the composed machine, not NullDevice.
func jsrRTSROM() []byte {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = 0xEA // NOP
	}

	// $1000: JSR $1010
	data[0x000] = 0x20
	data[0x001] = 0x10
	data[0x002] = 0x10
	// $1003: LDX #$42 (marker: only reached if RTS returns here)
	data[0x003] = 0xA2
	data[0x004] = 0x42

	// $1010: LDY #$07; RTS
	data[0x010] = 0xA0
	data[0x011] = 0x07
	data[0x012] = 0x60

	data[0x0ffc] = 0x00 // reset vector low byte ($1000)
	data[0x0ffd] = 0x10 // reset vector high byte
	return data
}

func TestStackSurvivesJSRAndRTSThroughTheComposedMachine(t *testing.T) {
	v, err := vcs.Create("4K", jsrRTSROM(), audio.DefaultConfig(), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// JSR, LDY #$07, RTS, LDX #$42
	ok, err := v.Run(4)
	if err != nil || !ok {
		t.Fatalf("run: ok=%v err=%v", ok, err)
	}

	if v.CPU.PC != 0x1005 {
		t.Fatalf("PC = %#04x, want 0x1005 (RTS must return to the byte after JSR)", v.CPU.PC)
	}
	if v.CPU.Y != 0x07 {
		t.Fatalf("Y = %#02x, want 0x07 (subroutine body must have run)", v.CPU.Y)
	}
	if v.CPU.X != 0x42 {
		t.Fatalf("X = %#02x, want 0x42 (code after the call must have run, proving RTS returned correctly)", v.CPU.X)
	}
}

// TestRecordSoundFilenameProducesAWAVFile exercises the non-test path that
// wires audio.Config.RecordSoundFilename through to a soundexport.WAVWriter:
// with a filename configured, running the machine and calling Close must
// leave a playable WAV file behind.
func TestRecordSoundFilenameProducesAWAVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.wav")

	cfg := audio.DefaultConfig()
	cfg.RecordSoundFilename = path

	v, err := vcs.Create("4K", nopROM(), cfg, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := v.Run(10); err != nil {
		t.Fatalf("run: %v", err)
	}
	v.TIA.GenerateFragment(256)

	if err := v.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected a non-empty wav file")
	}
}

// TestCloseWithNoRecorderConfiguredIsANoOp makes sure Close is always safe
// to call, even when RecordSoundFilename was left empty.
func TestCloseWithNoRecorderConfiguredIsANoOp(t *testing.T) {
	v, err := vcs.Create("4K", nopROM(), audio.DefaultConfig(), false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCreateRejectsUnknownFormat(t *testing.T) {
	_, err := vcs.Create("ZZ", nopROM(), audio.DefaultConfig(), false)
	if err == nil {
		t.Fatalf("expected an error for an unrecognised cartridge format")
	}
}

func TestAudioInitFailureIsNonFatal(t *testing.T) {
	cfg := audio.Config{Sound: true, Freq: 100, TIAFreq: 100, FragSize: 1024, Volume: 100, ClipVolume: true}
	v, err := vcs.Create("4K", nopROM(), cfg, false)
	if err == nil {
		t.Fatalf("expected a non-fatal audio init error")
	}
	if v == nil {
		t.Fatalf("expected a usable VCS even when audio init failed")
	}
	if _, runErr := v.Run(1); runErr != nil {
		t.Fatalf("run after audio init failure: %v", runErr)
	}
}
