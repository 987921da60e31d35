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

package random

import (
	"github.com/atari-rl/vcscore/serialize"
)

const (
	n          = 624
	m          = 397
	matrixA    = 0x9908b0df
	upperMask  = 0x80000000
	lowerMask  = 0x7fffffff
	defaultSeed = 5489
)

// Random is a Mersenne Twister (MT19937) pseudo-random number generator.
// The zero value is not ready to use; call New or Seed first.
type Random struct {
	state [n]uint32
	index int
}

// New creates a Random seeded with value.
func New(value uint32) *Random {
	r := &Random{}
	r.Seed(value)
	return r
}

// Seed reinitializes the generator's full state vector from value.
func (r *Random) Seed(value uint32) {
	r.state[0] = value
	for i := 1; i < n; i++ {
		prev := r.state[i-1]
		r.state[i] = uint32(1812433253)*(prev^(prev>>30)) + uint32(i)
	}
	r.index = n
}

// Next returns the next 32-bit pseudo-random value.
func (r *Random) Next() uint32 {
	if r.index >= n {
		r.generate()
	}

	y := r.state[r.index]
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18

	r.index++
	return y
}

// NextDouble returns the next pseudo-random value as a float64 in [0, 1).
func (r *Random) NextDouble() float64 {
	return float64(r.Next()) / 4294967296.0 // 2^32
}

// generate refills the entire state vector, the standard MT19937 twist
// step, run once every n calls to Next.
func (r *Random) generate() {
	for i := 0; i < n; i++ {
		y := (r.state[i] & upperMask) | (r.state[(i+1)%n] & lowerMask)
		next := r.state[(i+m)%n] ^ (y >> 1)
		if y&1 != 0 {
			next ^= matrixA
		}
		r.state[i] = next
	}
	r.index = 0
}

// Name identifies the device in save-state payloads.
func (r *Random) Name() string {
	return "Random"
}

// Save appends the full state vector and the current index to w.
func (r *Random) Save(w *serialize.Writer) {
	w.PutInt(int32(r.index))
	for _, word := range r.state {
		w.PutUint32(word)
	}
}

// Load restores the full state vector and index from r.
func (r *Random) Load(rd *serialize.Reader) error {
	r.index = int(rd.GetInt())
	for i := range r.state {
		r.state[i] = rd.GetUint32()
	}
	return rd.Err()
}
