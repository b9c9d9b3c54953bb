// Package input generates the raw samples shared by every backend of a
// benchmark run.
package input

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"
)

const (
	// Count is the number of samples generated per run.
	Count = 100
	// Bound is the exclusive upper bound of a sample.
	Bound = 1000
	// DefaultSeed seeds the source when nothing else is configured.
	DefaultSeed uint64 = 0
)

// Samples is an immutable ordered sequence of raw samples.
type Samples struct {
	values []int
}

// NewSource returns a deterministic ChaCha8 source keyed by seed.
func NewSource(seed uint64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	return rand.New(rand.NewChaCha8(key))
}

// Generate draws Count values uniformly in [0, Bound) from r.
func Generate(r *rand.Rand) Samples {
	values := make([]int, Count)
	for i := range values {
		values[i] = r.IntN(Bound)
	}
	return Samples{values: values}
}

// GenerateSeeded is Generate over a fresh source keyed by seed.
func GenerateSeeded(seed uint64) Samples {
	return Generate(NewSource(seed))
}

// FromValues wraps a copy of values.
func FromValues(values []int) Samples {
	return Samples{values: slices.Clone(values)}
}

func (s Samples) Len() int { return len(s.values) }

func (s Samples) At(i int) int { return s.values[i] }

// Values returns a copy of the samples.
func (s Samples) Values() []int {
	return slices.Clone(s.values)
}
