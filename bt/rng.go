package bt

import "math/rand/v2"

// Rng is the sampling collaborator a Random composite draws from. The core
// never reaches for a global random source; every Random node is
// constructed with one of these, so callers can substitute a seeded,
// replayable, or domain-specific sampler without this package importing it.
type Rng interface {
	// NextUniform returns a value in [0, 1).
	NextUniform() float32
}

// defaultRng is a thin wrapper over math/rand/v2, returned by
// NewDefaultRng. Nothing in this package falls back to it when a Random node
// or a Builder is given a nil Rng.
type defaultRng struct {
	r *rand.Rand
}

// NewDefaultRng returns an Rng backed by math/rand/v2, seeded from seed.
// Two defaultRng values built from the same seed draw identical sequences,
// which is what makes the reset-idempotence property (P5/scenario 6)
// testable.
func NewDefaultRng(seed uint64) Rng {
	return &defaultRng{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (d *defaultRng) NextUniform() float32 {
	return d.r.Float32()
}
