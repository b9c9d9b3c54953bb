// Package field converts raw samples into the native field-element encodings
// of the hash backends. Every conversion widens through an unsigned 32-bit
// magnitude and preserves the numeric value exactly.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"
	"github.com/iden3/go-iden3-crypto/ff"
	"github.com/iden3/go-iden3-crypto/utils"

	"github.com/heliaxdev/poseidon-bench/internal/input"
)

var (
	ErrNegativeSample = errors.New("negative sample")
	ErrSampleTooLarge = errors.New("sample exceeds 32 bits")
	ErrNotInField     = errors.New("value not in field")
	ErrNotSmall       = errors.New("element does not fit in 32 bits")
)

func magnitude(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeSample, v)
	}
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", ErrSampleTooLarge, v)
	}
	return uint32(v), nil
}

// GnarkElement converts a single sample into a canonical BN254 fr.Element.
func GnarkElement(v int) (fr.Element, error) {
	var e fr.Element
	m, err := magnitude(v)
	if err != nil {
		return e, err
	}
	b := uint256.NewInt(uint64(m)).Bytes32()
	if err := e.SetBytesCanonical(b[:]); err != nil {
		return e, fmt.Errorf("%w: %d: %v", ErrNotInField, v, err)
	}
	return e, nil
}

// ToGnark converts every sample, in order.
func ToGnark(s input.Samples) ([]fr.Element, error) {
	out := make([]fr.Element, s.Len())
	for i := range out {
		e, err := GnarkElement(s.At(i))
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// FromGnark is the inverse of GnarkElement for elements below 2^32.
func FromGnark(e fr.Element) (uint32, error) {
	if !e.IsUint64() || e.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s", ErrNotSmall, e.String())
	}
	return uint32(e.Uint64()), nil
}

// Iden3Element converts a single sample into the canonical big.Int form
// expected by go-iden3-crypto, normalised through its Montgomery field.
func Iden3Element(v int) (*big.Int, error) {
	m, err := magnitude(v)
	if err != nil {
		return nil, err
	}
	x := ff.NewElement().SetUint64(uint64(m)).ToBigIntRegular(new(big.Int))
	if !utils.CheckBigIntInField(x) {
		return nil, fmt.Errorf("%w: %d", ErrNotInField, v)
	}
	return x, nil
}

// ToIden3 converts every sample, in order.
func ToIden3(s input.Samples) ([]*big.Int, error) {
	out := make([]*big.Int, s.Len())
	for i := range out {
		x, err := Iden3Element(s.At(i))
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// FromIden3 is the inverse of Iden3Element for values below 2^32.
func FromIden3(x *big.Int) (uint32, error) {
	if x == nil || x.Sign() < 0 || !x.IsUint64() || x.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %v", ErrNotSmall, x)
	}
	return uint32(x.Uint64()), nil
}
