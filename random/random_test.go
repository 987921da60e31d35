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

package random_test

import (
	"testing"

	"github.com/atari-rl/vcscore/random"
	"github.com/atari-rl/vcscore/serialize"
)

// the canonical MT19937 reference sequence for the default seed 5489 begins
// (after the standard init_genrand seeding, not init_by_array) with these
// first three 32-bit outputs; two generators given the same seed must also
// agree on a long run.
func TestSeededSequenceIsDeterministic(t *testing.T) {
	ref := random.New(5489)
	for i, want := range []uint32{3499211612, 581869302, 3890346734} {
		if got := ref.Next(); got != want {
			t.Fatalf("output %d for seed 5489 = %d, want %d", i, got, want)
		}
	}

	r1 := random.New(19650218)
	r2 := random.New(19650218)

	for i := 0; i < 1000; i++ {
		a := r1.Next()
		b := r2.Next()
		if a != b {
			t.Fatalf("sequence diverged at index %d: %d != %d", i, a, b)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	r1 := random.New(1)
	r2 := random.New(2)

	same := true
	for i := 0; i < 8; i++ {
		if r1.Next() != r2.Next() {
			same = false
		}
	}
	if same {
		t.Fatalf("expected differently-seeded generators to diverge")
	}
}

func TestNextDoubleInUnitRange(t *testing.T) {
	r := random.New(42)
	for i := 0; i < 10000; i++ {
		v := r.NextDouble()
		if v < 0 || v >= 1 {
			t.Fatalf("NextDouble() = %v, want [0,1)", v)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := random.New(7)
	for i := 0; i < 700; i++ {
		r.Next() // advance past one internal regeneration boundary
	}

	w := serialize.NewWriter()
	r.Save(w)

	restored := &random.Random{}
	if err := restored.Load(serialize.NewReader(w.Bytes())); err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 0; i < 2000; i++ {
		if r.Next() != restored.Next() {
			t.Fatalf("restored generator diverged at index %d", i)
		}
	}
}
