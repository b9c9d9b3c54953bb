package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/heliaxdev/poseidon-bench/internal/comparison"
	"github.com/heliaxdev/poseidon-bench/internal/config"
	"github.com/heliaxdev/poseidon-bench/internal/field"
	"github.com/heliaxdev/poseidon-bench/internal/input"
	"github.com/heliaxdev/poseidon-bench/internal/log"
	"github.com/heliaxdev/poseidon-bench/internal/measure"
)

type runFlags struct {
	configPath      string
	seed            uint64
	logLevel        string
	logModules      string
	sampleSize      int
	measurementTime time.Duration
	warmUpTime      time.Duration
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every comparison group and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			report, err := runComparison(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	cmd.Flags().Uint64Var(&f.seed, "seed", input.DefaultSeed, "input generator seed")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "trace, debug, info, warn, error or crit")
	cmd.Flags().StringVar(&f.logModules, "log-modules", "", "comma-separated modules allowed to emit debug and trace output")
	cmd.Flags().IntVar(&f.sampleSize, "sample-size", comparison.DefaultGroupSampleSize, "samples per bench")
	cmd.Flags().DurationVar(&f.measurementTime, "measurement-time", comparison.DefaultGroupMeasurementTime, "measurement time per bench")
	cmd.Flags().DurationVar(&f.warmUpTime, "warm-up-time", measure.DefaultConfig().WarmUpTime, "warm-up time per bench")
	return cmd
}

// loadConfig layers explicitly set flags over config.Load and installs the
// logger at the resulting level.
func loadConfig(cmd *cobra.Command, f runFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("sample-size") {
		cfg.Group.SampleSize = f.sampleSize
	}
	if flags.Changed("measurement-time") {
		cfg.Group.MeasurementTime = f.measurementTime
	}
	if flags.Changed("warm-up-time") {
		cfg.Sampling.WarmUpTime = f.warmUpTime
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	if err := log.InitLogger(cfg.LogLevel); err != nil {
		return cfg, err
	}
	if f.logModules != "" {
		log.OnlyModules(f.logModules)
	}
	log.Debug(log.Config, "Loaded config", "seed", cfg.Seed, "samples", cfg.Group.SampleSize,
		"measurement", cfg.Group.MeasurementTime, "warmup", cfg.Sampling.WarmUpTime)
	return cfg, nil
}

func runComparison(cfg config.Config) (measure.Report, error) {
	groups, err := comparison.Plan(cfg.Families(), cfg.Seed)
	if err != nil {
		return measure.Report{}, err
	}
	cfg.Apply(groups)

	engine, err := measure.NewEngine(cfg.Sampling)
	if err != nil {
		return measure.Report{}, err
	}
	report, err := engine.RunAll(comparison.Specs(groups))
	if err != nil {
		return measure.Report{}, err
	}
	log.Info(log.Report, "Benchmarks complete", "groups", len(report.Groups))
	return report, nil
}

func newInputsCmd() *cobra.Command {
	var (
		seed  uint64
		count int
	)
	cmd := &cobra.Command{
		Use:   "inputs",
		Short: "Print the generated samples and their field encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 || count > input.Count {
				return fmt.Errorf("count must be in [0, %d], got %d", input.Count, count)
			}
			samples := input.GenerateSeeded(seed)
			gnark, err := field.ToGnark(samples)
			if err != nil {
				return err
			}
			iden3, err := field.ToIden3(samples)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				b := gnark[i].Bytes()
				fmt.Fprintf(out, "%3d %4d gnark=%s iden3=%s\n",
					i, samples.At(i), hexutil.Encode(b[:]), hexutil.EncodeBig(iden3[i]))
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", input.DefaultSeed, "input generator seed")
	cmd.Flags().IntVar(&count, "count", input.Count, "number of samples to print")
	return cmd
}
