// Package measure times benchmark closures and summarises the samples.
//
// Sampling follows the linear scheme used by criterion: a warm-up phase
// estimates the cost of one iteration, then sample i runs i*d iterations
// where d is chosen so that all samples together fill the measurement time.
package measure

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/heliaxdev/poseidon-bench/internal/log"
)

var ErrInvalidConfig = errors.New("invalid sampling config")

// Config holds the engine-wide sampling settings. Group settings override
// SampleSize and MeasurementTime.
type Config struct {
	SampleSize      int           `yaml:"sample_size"`
	MeasurementTime time.Duration `yaml:"measurement_time"`
	WarmUpTime      time.Duration `yaml:"warm_up_time"`
}

// DefaultConfig: 10 samples, a 50s measurement ceiling and 1s of warm-up.
func DefaultConfig() Config {
	return Config{
		SampleSize:      10,
		MeasurementTime: 50 * time.Second,
		WarmUpTime:      time.Second,
	}
}

func (c Config) Validate() error {
	if c.SampleSize < 2 {
		return fmt.Errorf("%w: sample_size must be >= 2, got %d", ErrInvalidConfig, c.SampleSize)
	}
	if c.MeasurementTime <= 0 {
		return fmt.Errorf("%w: measurement_time must be > 0", ErrInvalidConfig)
	}
	if c.WarmUpTime < 0 {
		return fmt.Errorf("%w: warm_up_time must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// GroupSettings overrides the engine config for one group. Zero values
// inherit.
type GroupSettings struct {
	SampleSize      int
	MeasurementTime time.Duration
}

// Bench is one labelled closure to time.
type Bench struct {
	Label string
	Run   func() error
}

// Spec describes a group to measure.
type Spec struct {
	Name     string
	Settings GroupSettings
	Benches  []Bench
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) resolve(s GroupSettings) (int, time.Duration, error) {
	n, budget := e.cfg.SampleSize, e.cfg.MeasurementTime
	if s.SampleSize != 0 {
		n = s.SampleSize
	}
	if s.MeasurementTime != 0 {
		budget = s.MeasurementTime
	}
	if n < 2 || budget <= 0 {
		return 0, 0, fmt.Errorf("%w: group sample_size %d, measurement_time %s", ErrInvalidConfig, n, budget)
	}
	return n, budget, nil
}

// Measure times every bench of the group in registration order. The first
// failing invocation aborts the group.
func (e *Engine) Measure(spec Spec) (GroupReport, error) {
	n, budget, err := e.resolve(spec.Settings)
	if err != nil {
		return GroupReport{}, fmt.Errorf("%s: %w", spec.Name, err)
	}
	log.Info(log.Bench, "Benchmarking group", "group", spec.Name, "samples", n, "measurement", budget, "warmup", e.cfg.WarmUpTime)

	report := GroupReport{Name: spec.Name}
	for _, b := range spec.Benches {
		ns, iters, err := e.sample(spec.Name, b, n, budget)
		if err != nil {
			return GroupReport{}, err
		}
		est := newEstimate(b.Label, ns, iters)
		log.Debug(log.Bench, "Measured", "group", spec.Name, "bench", b.Label,
			"mean", est.MeanDuration(), "stddev", time.Duration(est.StdDev), "iterations", iters)
		report.Estimates = append(report.Estimates, est)
	}
	return report, nil
}

// RunAll measures the groups in order. No partial report is returned on error.
func (e *Engine) RunAll(specs []Spec) (Report, error) {
	var r Report
	for _, spec := range specs {
		g, err := e.Measure(spec)
		if err != nil {
			return Report{}, err
		}
		r.Groups = append(r.Groups, g)
	}
	return r, nil
}

func runN(b Bench, k uint64) (time.Duration, error) {
	start := time.Now()
	for i := uint64(0); i < k; i++ {
		if err := b.Run(); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}

// sample returns the per-iteration time of each sample in nanoseconds and the
// total number of timed iterations.
func (e *Engine) sample(group string, b Bench, n int, budget time.Duration) ([]float64, uint64, error) {
	var (
		warmIters uint64
		warmTime  time.Duration
	)
	for per := uint64(1); ; per *= 2 {
		d, err := runN(b, per)
		if err != nil {
			return nil, 0, err
		}
		warmIters += per
		warmTime += d
		if warmTime >= e.cfg.WarmUpTime {
			break
		}
	}
	perIter := float64(warmTime.Nanoseconds()) / float64(warmIters)
	if perIter <= 0 {
		perIter = 1
	}

	steps := float64(n*(n+1)) / 2
	d := uint64(math.Ceil(float64(budget.Nanoseconds()) / (perIter * steps)))
	if d < 1 {
		d = 1
	}
	if expected := time.Duration(perIter * steps * float64(d)); expected > budget {
		log.Warn(log.Bench, "Unable to complete samples in the measurement time",
			"group", group, "bench", b.Label, "samples", n, "budget", budget, "expected", expected)
	}

	ns := make([]float64, n)
	var total uint64
	for i := range ns {
		k := d * uint64(i+1)
		elapsed, err := runN(b, k)
		if err != nil {
			return nil, 0, err
		}
		ns[i] = float64(elapsed.Nanoseconds()) / float64(k)
		total += k
	}
	return ns, total, nil
}
