package poseidon2

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	gnarkposeidon2 "github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
	gnarkhash "github.com/consensys/gnark-crypto/hash"

	"github.com/heliaxdev/poseidon-bench/internal/backend"
)

// SpongeRates are the rates the full-hash backend accepts.
var SpongeRates = backend.RateSet{2, 3, 4, 8, 12, 16, 20, 24}

// Sponge is the full-hash backend: every call absorbs rate elements and
// produces one output element. It is not safe for concurrent use.
type Sponge struct {
	rate int
	h    gnarkhash.StateStorer
}

// NewSponge builds a full hasher for rate using the gnark-crypto default
// compression parameters.
func NewSponge(rate int) (*Sponge, error) {
	if err := SpongeRates.Check(rate); err != nil {
		return nil, err
	}
	return &Sponge{rate: rate, h: gnarkposeidon2.NewMerkleDamgardHasher()}, nil
}

func (s *Sponge) Rate() int { return s.rate }

// Params describes the compression permutation the hasher is built on.
func (s *Sponge) Params() string {
	return gnarkposeidon2.GetDefaultParameters().String()
}

// Hash absorbs cfg.Batch consecutive blocks of Rate() elements from in and
// writes one digest per block into out.
func (s *Sponge) Hash(in []fr.Element, cfg backend.HashConfig, out []fr.Element) error {
	if err := backend.CheckHashShape(s.rate, cfg, len(in), len(out)); err != nil {
		return err
	}
	for b := range cfg.Batch {
		s.h.Reset()
		for i := b * s.rate; i < (b+1)*s.rate; i++ {
			block := in[i].Bytes()
			if _, err := s.h.Write(block[:]); err != nil {
				return fmt.Errorf("absorb element %d: %w", i, err)
			}
		}
		if err := out[b].SetBytesCanonical(s.h.Sum(nil)); err != nil {
			return fmt.Errorf("squeeze: %w", err)
		}
	}
	return nil
}
