package comparison

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliaxdev/poseidon-bench/internal/backend"
	"github.com/heliaxdev/poseidon-bench/internal/input"
	"github.com/heliaxdev/poseidon-bench/internal/measure"
	"github.com/heliaxdev/poseidon-bench/internal/poseidon2"
)

func TestEveryFamilyRateConstructs(t *testing.T) {
	samples := input.GenerateSeeded(input.DefaultSeed)
	for _, f := range Families() {
		for _, rate := range f.Rates {
			g, err := f.NewGroup(rate, samples)
			require.NoError(t, err, "%s rate %d", f.Name, rate)
			require.Len(t, g.Trials, 2)
			assert.Equal(t, f.GroupName(rate), g.Name)
			assert.Equal(t, rate, g.Rate)
			assert.Equal(t, DefaultGroupSampleSize, g.SampleSize)
			assert.Equal(t, DefaultGroupMeasurementTime, g.MeasurementTime)
			for _, trial := range g.Trials {
				require.NoError(t, trial.Run(), "%s/%s", g.Name, trial.Label)
			}
		}
	}
}

func TestGroupNamesAndLabels(t *testing.T) {
	assert.Equal(t, "Poseidon_2_comparison_rate_8", Poseidon2().GroupName(8))
	assert.Equal(t, "poseidon_comparison_rate_3", Poseidon().GroupName(3))

	samples := input.GenerateSeeded(input.DefaultSeed)
	g, err := Poseidon2().NewGroup(2, samples)
	require.NoError(t, err)
	assert.Equal(t, LabelGnarkPermutation, g.Trials[0].Label)
	assert.Equal(t, 3, g.Trials[0].Window, "permutation consumes t elements")
	assert.Equal(t, LabelGnarkSponge, g.Trials[1].Label)
	assert.Equal(t, 2, g.Trials[1].Window, "full hash consumes rate elements")

	g, err = Poseidon().NewGroup(5, samples)
	require.NoError(t, err)
	assert.Equal(t, LabelIden3Permutation, g.Trials[0].Label)
	assert.Equal(t, 6, g.Trials[0].Window, "permutation consumes t = rate+1 elements")
	assert.Equal(t, LabelIden3Sponge, g.Trials[1].Label)
	assert.Equal(t, 5, g.Trials[1].Window)
}

func TestRejectsRateOutsideFamily(t *testing.T) {
	samples := input.GenerateSeeded(input.DefaultSeed)
	cases := []struct {
		family Family
		rate   int
	}{
		{Poseidon2(), 5},
		{Poseidon2(), 12},
		{Poseidon2(), 0},
		{Poseidon(), 2},
		{Poseidon(), 4},
		{Poseidon(), 9},
	}
	for _, c := range cases {
		_, err := c.family.NewGroup(c.rate, samples)
		require.ErrorIs(t, err, backend.ErrUnsupportedRate, "%s rate %d", c.family.Name, c.rate)
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, c.rate, cfgErr.Rate)
		assert.Empty(t, cfgErr.Backend)
	}
}

func TestMaxFamilyRate(t *testing.T) {
	samples := input.GenerateSeeded(input.DefaultSeed)
	for _, f := range Families() {
		g, err := f.NewGroup(f.Rates.Max(), samples)
		require.NoError(t, err)
		for _, trial := range g.Trials {
			require.NoError(t, trial.Run())
		}
	}
}

func TestExplicitParameters(t *testing.T) {
	samples := input.GenerateSeeded(input.DefaultSeed)

	g, err := Poseidon2With(&poseidon2.Params{Width: 2, FullRounds: 6, PartialRounds: 50}).NewGroup(4, samples)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Trials[0].Window)
	require.NoError(t, g.Trials[0].Run())

	_, err = Poseidon2With(&poseidon2.Params{Width: 5, FullRounds: 8, PartialRounds: 56}).NewGroup(4, samples)
	require.ErrorIs(t, err, backend.ErrInvalidParameters)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, LabelGnarkPermutation, cfgErr.Backend)
	assert.Contains(t, err.Error(), "Poseidon_2 rate 4 backend gnark_permutation")
}

func TestAdapterRejectionIsConfigError(t *testing.T) {
	bad := input.FromValues([]int{1, 2, -3, 4, 5, 6, 7, 8})
	for _, f := range Families() {
		_, err := f.NewGroup(f.Rates[0], bad)
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), f.Name)
	}
}

func TestShortInputIsConfigError(t *testing.T) {
	short := input.FromValues([]int{1, 2})
	_, err := Poseidon().NewGroup(3, short)
	require.ErrorIs(t, err, backend.ErrInputLength)
}

// rate=3 for the Poseidon family: the permutation returns a t=4 state, the
// sponge a single element, the two differ, and repeated calls are stable.
func TestPoseidonRateThreeScenario(t *testing.T) {
	g, err := Poseidon().NewGroup(3, input.GenerateSeeded(input.DefaultSeed))
	require.NoError(t, err)

	iden3Sink = nil
	require.NoError(t, g.Trials[0].Run())
	require.Len(t, iden3Sink, 4)
	first := append([]*big.Int(nil), iden3Sink...)
	require.NoError(t, g.Trials[0].Run())
	for i := range first {
		assert.Equal(t, 0, first[i].Cmp(iden3Sink[i]))
	}

	batchSink = nil
	require.NoError(t, g.Trials[1].Run())
	require.Len(t, batchSink, 1)
	sponge := batchSink[0]
	require.NoError(t, g.Trials[1].Run())
	assert.Equal(t, 0, sponge.Cmp(batchSink[0]))

	assert.NotEqual(t, 0, first[0].Cmp(sponge), "trials must not time the same computation")
}

func TestPoseidon2TrialsIdempotent(t *testing.T) {
	g, err := Poseidon2().NewGroup(3, input.GenerateSeeded(input.DefaultSeed))
	require.NoError(t, err)

	require.NoError(t, g.Trials[0].Run())
	require.Len(t, gnarkSink, 3)
	perm := append([]fr.Element(nil), gnarkSink...)
	require.NoError(t, g.Trials[0].Run())
	assert.Equal(t, perm, gnarkSink)

	require.NoError(t, g.Trials[1].Run())
	require.Len(t, gnarkSink, 1)
	digest := gnarkSink[0]
	require.NoError(t, g.Trials[1].Run())
	assert.Equal(t, digest, gnarkSink[0])
}

func TestInvocationErrorWraps(t *testing.T) {
	boom := errors.New("boom")
	g := &Group{Name: "poseidon_comparison_rate_3"}
	g.add("broken", 3, func() error { return boom })

	err := g.Trials[0].Run()
	require.ErrorIs(t, err, boom)
	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "broken", invErr.Trial)
	assert.Equal(t, "poseidon_comparison_rate_3/broken: boom", err.Error())
}

func TestPlan(t *testing.T) {
	groups, err := Plan(Families(), input.DefaultSeed)
	require.NoError(t, err)

	var names []string
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{
		"poseidon_comparison_rate_3",
		"poseidon_comparison_rate_5",
		"Poseidon_2_comparison_rate_2",
		"Poseidon_2_comparison_rate_3",
		"Poseidon_2_comparison_rate_4",
		"Poseidon_2_comparison_rate_8",
	}, names)

	_, err = Plan([]Family{Poseidon2With(&poseidon2.Params{Width: 9, FullRounds: 8, PartialRounds: 56})}, input.DefaultSeed)
	require.ErrorIs(t, err, backend.ErrInvalidParameters)
}

func TestSpecsCarryGroupSettings(t *testing.T) {
	groups, err := Plan([]Family{Poseidon()}, input.DefaultSeed)
	require.NoError(t, err)
	groups[0].MeasurementTime = time.Millisecond
	groups[1].MeasurementTime = time.Millisecond

	specs := Specs(groups)
	require.Len(t, specs, 2)
	assert.Equal(t, "poseidon_comparison_rate_3", specs[0].Name)
	assert.Equal(t, DefaultGroupSampleSize, specs[0].Settings.SampleSize)
	require.Len(t, specs[0].Benches, 2)
	assert.Equal(t, LabelIden3Permutation, specs[0].Benches[0].Label)

	engine, err := measure.NewEngine(measure.Config{SampleSize: 10, MeasurementTime: time.Second, WarmUpTime: 0})
	require.NoError(t, err)
	report, err := engine.RunAll(specs)
	require.NoError(t, err)
	require.Len(t, report.Groups, 2)
	for _, g := range report.Groups {
		require.Len(t, g.Estimates, 2)
		for _, est := range g.Estimates {
			assert.Equal(t, DefaultGroupSampleSize, est.Samples)
			assert.Greater(t, est.Mean, 0.0)
		}
	}
}
