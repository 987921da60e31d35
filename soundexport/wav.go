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

// Package soundexport writes captured TIA audio fragments to a WAV file on
// disk. It is adapted from wavwriter's buffer-then-flush shape: samples
// accumulate in memory as they arrive and are only actually encoded when
// Close is called, since nothing upstream promises fragments arrive in a
// single contiguous run ahead of time.
package soundexport

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/atari-rl/vcscore/curated"
	"github.com/atari-rl/vcscore/logger"
)

// ErrCreate is raised when the output file cannot be created or the
// completed recording cannot be encoded.
const ErrCreate = "soundexport: %v"

// WAVWriter accumulates U8 PCM samples and implements audio.Recorder, so an
// audio.TIA can be wired to it directly via AttachRecorder.
type WAVWriter struct {
	filename   string
	sampleRate int
	samples    []int
}

// New prepares a writer for filename. sampleRate should match the
// audio.Config.Freq the producing audio.TIA was configured with.
func New(filename string, sampleRate int) *WAVWriter {
	return &WAVWriter{
		filename:   filename,
		sampleRate: sampleRate,
		samples:    make([]int, 0, 4096),
	}
}

// Write implements audio.Recorder. TIA audio fragments are unsigned 8-bit
// mono samples centred on 128; go-audio's IntBuffer wants signed samples,
// so each byte is rebased around zero on the way in.
func (w *WAVWriter) Write(samples []byte) (int, error) {
	for _, s := range samples {
		w.samples = append(w.samples, int(s)-128)
	}
	return len(samples), nil
}

// Close encodes the accumulated samples and writes them to disk. Calling
// Close with no samples produces an empty but well-formed WAV file.
func (w *WAVWriter) Close() (rerr error) {
	f, err := os.Create(w.filename)
	if err != nil {
		return curated.Errorf(ErrCreate, err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf(ErrCreate, err)
		}
	}()

	enc := wav.NewEncoder(f, w.sampleRate, 8, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  w.sampleRate,
		},
		Data:           w.samples,
		SourceBitDepth: 8,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf(ErrCreate, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(ErrCreate, err)
	}

	logger.Logf(logger.Allow, "soundexport", "wrote %d samples to %s", len(w.samples), w.filename)
	return nil
}
