package commands

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"primeforge/internal/z5d"
)

func estimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Query the prime-location estimator",
	}
	cmd.AddCommand(estimateNthCmd(), estimateCountCmd())
	return cmd
}

func estimateNthCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "nth <k>",
		Short: "Estimate the value of the k-th prime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseBig(args[0])
			if err != nil {
				return err
			}
			fmt.Println(estimatorFor(k, auto).NthPrime(k).String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto-calibrate", false, "pick the calibration band from the input magnitude")
	return cmd
}

func estimateCountCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "count <x>",
		Short: "Estimate the number of primes below x",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseBig(args[0])
			if err != nil {
				return err
			}
			fmt.Println(estimatorFor(x, auto).PrimeCount(x).String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto-calibrate", false, "pick the calibration band from the input magnitude")
	return cmd
}

// estimatorFor builds the estimator for one query. Auto-calibration
// selects the band by the input's magnitude instead of the configured
// constants; inputs beyond float range land in the top band.
func estimatorFor(n *big.Int, auto bool) *z5d.Estimator {
	if !auto {
		return z5d.New(cfg.EstimatorParams())
	}
	scale, _ := new(big.Float).SetInt(n).Float64()
	return z5d.New(z5d.ParamsForScale(scale))
}

// parseBig accepts decimal or 0x-prefixed hex.
func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("must be non-negative: %q", s)
	}
	return n, nil
}
