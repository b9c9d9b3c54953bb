// Package config loads the harness configuration: defaults, then an optional
// YAML file, then environment overrides, then validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/heliaxdev/poseidon-bench/internal/comparison"
	"github.com/heliaxdev/poseidon-bench/internal/input"
	"github.com/heliaxdev/poseidon-bench/internal/log"
	"github.com/heliaxdev/poseidon-bench/internal/measure"
	"github.com/heliaxdev/poseidon-bench/internal/poseidon2"
)

const (
	EnvSeed            = "POSEIDON_BENCH_SEED"
	EnvLogLevel        = "POSEIDON_BENCH_LOG_LEVEL"
	EnvSampleSize      = "POSEIDON_BENCH_SAMPLE_SIZE"
	EnvMeasurementTime = "POSEIDON_BENCH_MEASUREMENT_TIME"
	EnvWarmUpTime      = "POSEIDON_BENCH_WARM_UP_TIME"
)

type Config struct {
	Seed     uint64 `yaml:"seed"`
	LogLevel string `yaml:"log_level"`

	// Sampling is the engine-wide setting; Group overrides it per group.
	Sampling measure.Config `yaml:"sampling"`
	Group    GroupConfig    `yaml:"group"`

	// Poseidon2 optionally replaces the default permutation instance.
	Poseidon2 *poseidon2.Params `yaml:"poseidon2,omitempty"`
}

type GroupConfig struct {
	SampleSize      int           `yaml:"sample_size"`
	MeasurementTime time.Duration `yaml:"measurement_time"`
}

func Default() Config {
	return Config{
		Seed:     input.DefaultSeed,
		LogLevel: "info",
		Sampling: measure.DefaultConfig(),
		Group: GroupConfig{
			SampleSize:      comparison.DefaultGroupSampleSize,
			MeasurementTime: comparison.DefaultGroupMeasurementTime,
		},
	}
}

// Load merges path (if set and present) and the environment over Default.
// The result is not validated, so callers can layer further overrides first.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn(log.Config, "Config file not found, using defaults", "path", path)
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvSampleSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSampleSize, err)
		}
		cfg.Group.SampleSize = n
	}
	if v := os.Getenv(EnvMeasurementTime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMeasurementTime, err)
		}
		cfg.Group.MeasurementTime = d
	}
	if v := os.Getenv(EnvWarmUpTime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWarmUpTime, err)
		}
		cfg.Sampling.WarmUpTime = d
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	if c.Group.SampleSize < 2 {
		return fmt.Errorf("group.sample_size must be >= 2, got %d", c.Group.SampleSize)
	}
	if c.Group.MeasurementTime <= 0 {
		return fmt.Errorf("group.measurement_time must be > 0")
	}
	if c.Poseidon2 != nil {
		if err := c.Poseidon2.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Families returns the benchmark families with the configured parameters.
func (c Config) Families() []comparison.Family {
	return []comparison.Family{comparison.Poseidon(), comparison.Poseidon2With(c.Poseidon2)}
}

// Apply stamps the group-level sampling settings onto planned groups.
func (c Config) Apply(groups []*comparison.Group) {
	for _, g := range groups {
		g.SampleSize = c.Group.SampleSize
		g.MeasurementTime = c.Group.MeasurementTime
	}
}
