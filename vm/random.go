package vm

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// Random is the run's pseudo-random stream. The same seed always yields the
// same sequence of draws.
type Random struct {
	source *rand.PCG
	rng    *rand.Rand
}

// newRandom seeds from seed, or from the wall clock when seed is nil.
func newRandom(seed Value) *Random {
	r := &Random{source: rand.NewPCG(0, 0)}
	r.rng = rand.New(r.source)
	if seed == nil {
		r.reseed(uint64(time.Now().UnixNano()))
	} else if err := r.Seed(seed); err != nil {
		r.reseed(0)
	}
	return r
}

// Seed restarts the stream from an integer, real or string seed.
func (r *Random) Seed(seed Value) error {
	switch s := seed.(type) {
	case Integer:
		r.reseed(uint64(s))
	case Real:
		r.reseed(math.Float64bits(float64(s)))
	case *String:
		h := fnv.New64a()
		h.Write([]byte(s.Text))
		r.reseed(h.Sum64())
	default:
		return fmt.Errorf("I expected the seed to be an integer, real or string, but it was %s.", describe(seed))
	}
	return nil
}

func (r *Random) reseed(seed uint64) {
	r.source.Seed(seed, seed^0x9e3779b97f4a7c15)
}

// Float64 draws from [0, 1).
func (r *Random) Float64() float64 {
	return r.rng.Float64()
}

// Between draws from [min, max). Two integer bounds give an integer.
func (r *Random) Between(lo, hi Value) (Value, error) {
	a, ok := number(lo)
	if !ok {
		return nil, fmt.Errorf("I expected min to be a number, but it was %s.", describe(lo))
	}
	b, ok := number(hi)
	if !ok {
		return nil, fmt.Errorf("I expected max to be a number, but it was %s.", describe(hi))
	}
	x := r.Float64()*(b-a) + a
	_, intLo := lo.(Integer)
	_, intHi := hi.(Integer)
	if intLo && intHi {
		return Integer(math.Floor(x)), nil
	}
	return Real(x), nil
}
