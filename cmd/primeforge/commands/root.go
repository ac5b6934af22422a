package commands

import (
	"fmt"
	"os"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"

	"primeforge/internal/app"
)

var (
	cfgPath string
	outDir  string
	debug   bool
	quiet   bool

	cfg app.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:           "primeforge",
		Short:         "Estimator-guided RSA key generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelError
			if debug {
				level = logging.LevelDebug
			}
			logging.SetAllLoggers(level)

			if cfgPath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				cfgPath = filepath.Join(dir, ".primeforge", "config.yaml")
			}
			var err error
			cfg, err = app.Load(cfgPath)
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.primeforge/config.yaml)")
	root.PersistentFlags().StringVar(&outDir, "out-dir", "", "output directory for key files (default \"generated\")")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")

	root.AddCommand(keygenCmd(), estimateCmd(), seedCmd())
	return root.Execute()
}

// say prints status output unless --quiet is set.
func say(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Printf(format, args...)
}
