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

package audio

// Config carries the seven recognized TIA-audio options. There is no
// persistence layer for it — settings storage is out of scope — so it is
// just a flat struct callers construct directly or via DefaultConfig.
type Config struct {
	Sound                bool
	Freq                 int
	TIAFreq              int
	FragSize             int
	Volume               int
	ClipVolume           bool
	RecordSoundFilename  string
}

// DefaultConfig returns the documented defaults: sound on, a 31440 Hz host
// and TIA rate (so the common case needs no resampling), a 1024-sample
// fragment, full volume, clipping rather than wrapping on overflow.
func DefaultConfig() Config {
	return Config{
		Sound:               true,
		Freq:                31440,
		TIAFreq:             31440,
		FragSize:            1024,
		Volume:              100,
		ClipVolume:          true,
		RecordSoundFilename: "",
	}
}
