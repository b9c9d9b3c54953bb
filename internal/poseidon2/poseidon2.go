// Package poseidon2 configures the gnark-crypto Poseidon2 backends over the
// BN254 scalar field: a bare permutation of width t, and a full hash that
// absorbs rate elements through the Merkle-Damgard construction and squeezes
// a single element.
package poseidon2

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gnarkposeidon2 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/heliaxdev/poseidon-bench/internal/backend"
)

// Params selects a Poseidon2 permutation instance. Round keys are derived
// deterministically by gnark-crypto from these values.
type Params struct {
	Width         int `yaml:"width"`
	FullRounds    int `yaml:"full_rounds"`
	PartialRounds int `yaml:"partial_rounds"`
}

// DefaultParams is the BN254 instance used for permutation benchmarks:
// t=3, d=5, rF=8, rP=56.
func DefaultParams() Params {
	return Params{Width: 3, FullRounds: 8, PartialRounds: 56}
}

// Validate rejects instances gnark-crypto cannot run. The BN254 linear
// layers are only defined for t=2 and t=3.
func (p Params) Validate() error {
	if p.Width < 2 || p.Width > 3 {
		return fmt.Errorf("%w: width %d, only t=2,3 is supported", backend.ErrInvalidParameters, p.Width)
	}
	if p.FullRounds <= 0 || p.FullRounds%2 != 0 {
		return fmt.Errorf("%w: full rounds %d must be even and positive", backend.ErrInvalidParameters, p.FullRounds)
	}
	if p.PartialRounds <= 0 {
		return fmt.Errorf("%w: partial rounds %d must be positive", backend.ErrInvalidParameters, p.PartialRounds)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("Poseidon2-BN254[t=%d,rF=%d,rP=%d]", p.Width, p.FullRounds, p.PartialRounds)
}

// Permutation is the permutation-only backend. It operates on exactly T()
// elements regardless of the benchmark rate.
type Permutation struct {
	params Params
	perm   *gnarkposeidon2.Permutation
}

// NewPermutation builds the permutation for params, or for DefaultParams when
// params is nil.
func NewPermutation(params *Params) (*Permutation, error) {
	p := DefaultParams()
	if params != nil {
		p = *params
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Permutation{
		params: p,
		perm:   gnarkposeidon2.NewPermutation(p.Width, p.FullRounds, p.PartialRounds),
	}, nil
}

// T returns the state width.
func (p *Permutation) T() int { return p.params.Width }

func (p *Permutation) Params() Params { return p.params }

// Permute copies the t input elements into a fresh state, permutes it and
// returns the state. The input is left untouched.
func (p *Permutation) Permute(in []fr.Element) ([]fr.Element, error) {
	if len(in) != p.params.Width {
		return nil, fmt.Errorf("%w: got %d elements, want t=%d", backend.ErrInputLength, len(in), p.params.Width)
	}
	state := make([]fr.Element, p.params.Width)
	copy(state, in)
	if err := p.perm.Permutation(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Compress is the 2-to-1 compression of a width-2 permutation: the state
// [left, right] is permuted and right is fed forward into the second lane.
func (p *Permutation) Compress(left, right fr.Element) (fr.Element, error) {
	var out fr.Element
	if p.params.Width != 2 {
		return out, fmt.Errorf("%w: compression needs t=2, have t=%d", backend.ErrInvalidParameters, p.params.Width)
	}
	state, err := p.Permute([]fr.Element{left, right})
	if err != nil {
		return out, err
	}
	out.Add(&state[1], &right)
	return out, nil
}

// CompressParams is the width-2 instance used by Compress.
func CompressParams() Params {
	return Params{Width: 2, FullRounds: 6, PartialRounds: 50}
}
