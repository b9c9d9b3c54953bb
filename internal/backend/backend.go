// Package backend holds the contracts shared by the hash backends: the rate
// sets they accept, the hash configuration of the full-hash entry points and
// the sentinel errors returned at configuration and invocation time.
package backend

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedRate is returned when a handle is built for a rate outside
	// the set its backend (or benchmark family) supports.
	ErrUnsupportedRate = errors.New("unsupported rate")

	// ErrInvalidParameters is returned when an explicit parameter set cannot
	// describe a valid permutation instance.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrInputLength is returned when an invocation receives an input slice of
	// the wrong length for the handle.
	ErrInputLength = errors.New("invalid input length")

	// ErrOutputLength is returned when the output slice of a full-hash call
	// cannot hold one digest per batch entry.
	ErrOutputLength = errors.New("invalid output length")
)

// RateSet is an ordered set of rates.
type RateSet []int

// Range returns the rates lo..hi inclusive.
func Range(lo, hi int) RateSet {
	rs := make(RateSet, 0, hi-lo+1)
	for r := lo; r <= hi; r++ {
		rs = append(rs, r)
	}
	return rs
}

// Contains reports whether rate is a member of the set.
func (rs RateSet) Contains(rate int) bool {
	return slices.Contains(rs, rate)
}

// Max returns the largest rate of the set, or 0 for an empty set.
func (rs RateSet) Max() int {
	if len(rs) == 0 {
		return 0
	}
	return slices.Max(rs)
}

func (rs RateSet) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = strconv.Itoa(r)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Check returns a wrapped ErrUnsupportedRate if rate is not in the set.
func (rs RateSet) Check(rate int) error {
	if !rs.Contains(rate) {
		return fmt.Errorf("%w: %d not in %s", ErrUnsupportedRate, rate, rs)
	}
	return nil
}

// HashConfig configures a full-hash invocation.
type HashConfig struct {
	// Batch is the number of independent rate-sized inputs hashed in one call.
	// Each produces one output element.
	Batch int
}

// DefaultHashConfig hashes a single input per call.
func DefaultHashConfig() HashConfig {
	return HashConfig{Batch: 1}
}

// CheckHashShape validates the slice lengths of a full-hash call.
func CheckHashShape(rate int, cfg HashConfig, in, out int) error {
	if cfg.Batch < 1 {
		return fmt.Errorf("%w: batch %d", ErrInvalidParameters, cfg.Batch)
	}
	if in != rate*cfg.Batch {
		return fmt.Errorf("%w: got %d elements, want %d", ErrInputLength, in, rate*cfg.Batch)
	}
	if out != cfg.Batch {
		return fmt.Errorf("%w: got %d slots, want %d", ErrOutputLength, out, cfg.Batch)
	}
	return nil
}
