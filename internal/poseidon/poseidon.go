// Package poseidon configures the go-iden3-crypto Poseidon backends over the
// BN254 scalar field (circomlib round constants and MDS matrices).
//
// Permutation is the reference backend: it permutes a full state of width
// t = rate+1 and returns every state element. Sponge absorbs rate elements
// into a zero capacity lane, chaining frames, and squeezes one element.
package poseidon

import (
	"fmt"
	"math/big"

	iden3 "github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/heliaxdev/poseidon-bench/internal/backend"
)

var (
	// PermutationRates are the rates covered by the circomlib round table
	// (t = 2..17).
	PermutationRates = backend.Range(1, 16)
	// SpongeRates are the frame sizes SpongeHashX accepts.
	SpongeRates = backend.Range(2, 16)
)

type Permutation struct {
	rate int
}

func NewPermutation(rate int) (*Permutation, error) {
	if err := PermutationRates.Check(rate); err != nil {
		return nil, err
	}
	return &Permutation{rate: rate}, nil
}

func (p *Permutation) Rate() int { return p.rate }

// T returns the state width, rate plus one capacity element.
func (p *Permutation) T() int { return p.rate + 1 }

// Permute loads in as the whole state (in[0] in the capacity lane), permutes
// it and returns all t state elements. The input is left untouched.
func (p *Permutation) Permute(in []*big.Int) ([]*big.Int, error) {
	t := p.T()
	if len(in) != t {
		return nil, fmt.Errorf("%w: got %d elements, want t=%d", backend.ErrInputLength, len(in), t)
	}
	return iden3.HashWithStateEx(in[1:], in[0], t)
}

type Sponge struct {
	rate int
}

func NewSponge(rate int) (*Sponge, error) {
	if err := SpongeRates.Check(rate); err != nil {
		return nil, err
	}
	return &Sponge{rate: rate}, nil
}

func (s *Sponge) Rate() int { return s.rate }

// Hash absorbs cfg.Batch consecutive blocks of Rate() elements from in and
// writes one digest per block into out.
func (s *Sponge) Hash(in []*big.Int, cfg backend.HashConfig, out []*big.Int) error {
	if err := backend.CheckHashShape(s.rate, cfg, len(in), len(out)); err != nil {
		return err
	}
	for b := range cfg.Batch {
		digest, err := iden3.SpongeHashX(in[b*s.rate:(b+1)*s.rate], s.rate)
		if err != nil {
			return err
		}
		out[b] = digest
	}
	return nil
}
