package main

import (
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/heliaxdev/poseidon-bench/internal/log"
	"github.com/heliaxdev/poseidon-bench/internal/poseidon2"
)

func main() {
	// Config errors surface before run installs the configured level.
	if err := log.InitLogger("info"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(execute(newRootCmd(), os.Args[1:]))
}

// execute runs cmd with args and returns the process exit status, logging any
// failure.
func execute(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		log.Error(log.Bench, "poseidon-bench failed", "err", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "poseidon-bench",
		Short:         "Compare Poseidon and Poseidon2 hash backends over BN254",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newInputsCmd(), newCompressCmd())
	return root
}

func newCompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <left> <right>",
		Short: "Compress two field elements with the width-2 Poseidon2 permutation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := poseidon2.CompressParams()
			hasher, err := poseidon2.NewPermutation(&params)
			if err != nil {
				return err
			}

			var left, right fr.Element
			if _, err := left.SetString(args[0]); err != nil {
				return fmt.Errorf("left: %w", err)
			}
			if _, err := right.SetString(args[1]); err != nil {
				return fmt.Errorf("right: %w", err)
			}

			result, err := hasher.Compress(left, right)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compress Result: %s\n", result.String())
			return nil
		},
	}
}
