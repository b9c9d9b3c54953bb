// Package comparison builds the benchmark groups that put two hash backends
// side by side for one permutation family and rate.
//
// A group owns two trials, registered in a fixed order. Each trial is a
// closure over its backend handle and its pre-converted input: it slices the
// input to the backend's window, invokes the backend and stores the result in
// a package-level sink. Whoever times the trials never needs to know which
// backend is behind a label.
//
// The two backends of a family do not compute the same function (a bare
// permutation against a full hash), so their outputs are never compared.
package comparison

import (
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/heliaxdev/poseidon-bench/internal/backend"
	"github.com/heliaxdev/poseidon-bench/internal/field"
	"github.com/heliaxdev/poseidon-bench/internal/input"
	"github.com/heliaxdev/poseidon-bench/internal/log"
	"github.com/heliaxdev/poseidon-bench/internal/measure"
	"github.com/heliaxdev/poseidon-bench/internal/poseidon"
	"github.com/heliaxdev/poseidon-bench/internal/poseidon2"
)

const (
	LabelGnarkPermutation = "gnark_permutation"
	LabelGnarkSponge      = "gnark_sponge"
	LabelIden3Permutation = "iden3_permutation"
	LabelIden3Sponge      = "iden3_sponge"
)

// Group-level sampling settings shared by every group.
const (
	DefaultGroupSampleSize      = 10
	DefaultGroupMeasurementTime = 5 * time.Second
)

// Results land here so the compiler cannot drop the backend calls.
var (
	gnarkSink []fr.Element
	iden3Sink []*big.Int
	batchSink []*big.Int
)

// Trial is one timed entry of a group.
type Trial struct {
	Label string
	// Window is how many input elements one invocation consumes.
	Window int
	run    func() error
}

// Run performs a single invocation.
func (t Trial) Run() error { return t.run() }

// Group is the set of trials compared at one family and rate.
type Group struct {
	Name            string
	Family          string
	Rate            int
	SampleSize      int
	MeasurementTime time.Duration
	Trials          []Trial
}

func (g *Group) add(label string, window int, run func() error) {
	name := g.Name
	g.Trials = append(g.Trials, Trial{
		Label:  label,
		Window: window,
		run: func() error {
			if err := run(); err != nil {
				return &InvocationError{Group: name, Trial: label, Err: err}
			}
			return nil
		},
	})
}

// Spec hands the group to the measurement engine with its own sampling
// settings.
func (g *Group) Spec() measure.Spec {
	benches := make([]measure.Bench, len(g.Trials))
	for i, t := range g.Trials {
		benches[i] = measure.Bench{Label: t.Label, Run: t.run}
	}
	return measure.Spec{
		Name: g.Name,
		Settings: measure.GroupSettings{
			SampleSize:      g.SampleSize,
			MeasurementTime: g.MeasurementTime,
		},
		Benches: benches,
	}
}

// Specs converts groups for measure.Engine.RunAll.
func Specs(groups []*Group) []measure.Spec {
	specs := make([]measure.Spec, len(groups))
	for i, g := range groups {
		specs[i] = g.Spec()
	}
	return specs
}

// Family is a permutation family with the fixed rates it is benchmarked at.
type Family struct {
	Name  string
	Rates backend.RateSet
	build func(g *Group, s input.Samples) error
}

// Poseidon2 compares the gnark-crypto permutation with the gnark-crypto full
// hash at rates {2,3,4,8}.
func Poseidon2() Family {
	return Poseidon2With(nil)
}

// Poseidon2With is Poseidon2 with an explicit permutation parameter set.
// A nil params selects poseidon2.DefaultParams.
func Poseidon2With(params *poseidon2.Params) Family {
	f := Family{Name: "Poseidon_2", Rates: backend.RateSet{2, 3, 4, 8}}
	f.build = func(g *Group, s input.Samples) error {
		data, err := field.ToGnark(s)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelGnarkPermutation, Rate: g.Rate, Err: err}
		}
		perm, err := poseidon2.NewPermutation(params)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelGnarkPermutation, Rate: g.Rate, Err: err}
		}
		sponge, err := poseidon2.NewSponge(g.Rate)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelGnarkSponge, Rate: g.Rate, Err: err}
		}
		if err := checkWindow(f.Name, g.Rate, len(data), perm.T(), sponge.Rate()); err != nil {
			return err
		}
		log.Debug(log.Backend, "configured poseidon2 backends", "group", g.Name,
			"permutation", perm.Params(), "sponge", sponge.Params())

		t := perm.T()
		g.add(LabelGnarkPermutation, t, func() error {
			out, err := perm.Permute(data[:t])
			if err != nil {
				return err
			}
			gnarkSink = out
			return nil
		})
		rate := sponge.Rate()
		cfg := backend.DefaultHashConfig()
		g.add(LabelGnarkSponge, rate, func() error {
			out := make([]fr.Element, 1)
			if err := sponge.Hash(data[:rate], cfg, out); err != nil {
				return err
			}
			gnarkSink = out
			return nil
		})
		return nil
	}
	return f
}

// Poseidon compares the go-iden3-crypto width-(rate+1) permutation with its
// sponge at rates {3,5}.
func Poseidon() Family {
	f := Family{Name: "poseidon", Rates: backend.RateSet{3, 5}}
	f.build = func(g *Group, s input.Samples) error {
		data, err := field.ToIden3(s)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelIden3Permutation, Rate: g.Rate, Err: err}
		}
		perm, err := poseidon.NewPermutation(g.Rate)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelIden3Permutation, Rate: g.Rate, Err: err}
		}
		sponge, err := poseidon.NewSponge(g.Rate)
		if err != nil {
			return &ConfigError{Family: f.Name, Backend: LabelIden3Sponge, Rate: g.Rate, Err: err}
		}
		if err := checkWindow(f.Name, g.Rate, len(data), perm.T(), sponge.Rate()); err != nil {
			return err
		}
		log.Debug(log.Backend, "configured poseidon backends", "group", g.Name, "t", perm.T())

		t := perm.T()
		g.add(LabelIden3Permutation, t, func() error {
			out, err := perm.Permute(data[:t])
			if err != nil {
				return err
			}
			iden3Sink = out
			return nil
		})
		rate := sponge.Rate()
		cfg := backend.DefaultHashConfig()
		g.add(LabelIden3Sponge, rate, func() error {
			out := make([]*big.Int, 1)
			if err := sponge.Hash(data[:rate], cfg, out); err != nil {
				return err
			}
			batchSink = out
			return nil
		})
		return nil
	}
	return f
}

// Families returns every family in reporting order.
func Families() []Family {
	return []Family{Poseidon(), Poseidon2()}
}

func checkWindow(family string, rate, have int, windows ...int) error {
	for _, w := range windows {
		if w > have {
			return &ConfigError{Family: family, Rate: rate,
				Err: fmt.Errorf("%w: window %d exceeds %d samples", backend.ErrInputLength, w, have)}
		}
	}
	return nil
}

// GroupName is "<family>_comparison_rate_<rate>".
func (f Family) GroupName(rate int) string {
	return fmt.Sprintf("%s_comparison_rate_%d", f.Name, rate)
}

// NewGroup configures both backends for rate over the shared samples. A rate
// outside the family set is rejected before any backend is built.
func (f Family) NewGroup(rate int, s input.Samples) (*Group, error) {
	if err := f.Rates.Check(rate); err != nil {
		return nil, &ConfigError{Family: f.Name, Rate: rate, Err: err}
	}
	g := &Group{
		Name:            f.GroupName(rate),
		Family:          f.Name,
		Rate:            rate,
		SampleSize:      DefaultGroupSampleSize,
		MeasurementTime: DefaultGroupMeasurementTime,
	}
	if err := f.build(g, s); err != nil {
		return nil, err
	}
	return g, nil
}

// Plan configures every group of every family. Samples are generated once per
// group from the same seed, so all groups see identical input. The first
// configuration error aborts the plan.
func Plan(families []Family, seed uint64) ([]*Group, error) {
	var groups []*Group
	for _, f := range families {
		for _, rate := range f.Rates {
			samples := input.GenerateSeeded(seed)
			log.Trace(log.Input, "generated samples", "group", f.GroupName(rate), "count", samples.Len())
			g, err := f.NewGroup(rate, samples)
			if err != nil {
				return nil, err
			}
			groups = append(groups, g)
		}
	}
	return groups, nil
}
