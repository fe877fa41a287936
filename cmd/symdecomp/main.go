// Command symdecomp exposes the symdecomp decomposition tools over HTTP and
// on the command line.
//
// Usage:
//
//	symdecomp serve --addr :8080      # POST /tool, GET /schema, GET /health
//	symdecomp run request.yaml        # one tool call, JSON response on stdout
//	symdecomp tools                   # tool schema
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/symdecomp"
	"github.com/njchilds90/symdecomp/internal/config"
)

var (
	verbose    bool
	configPath string
	psdTol     float64
	coeffTol   float64

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "symdecomp",
	Short: "Decompose symbolic polynomial expressions into normal forms",
	Long: `symdecomp reads symbolic expressions in the JSON expression format and
decomposes them into affine coefficient matrices, quadratic forms,
Euclidean norms, or lumped-parameter factorizations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("psd-tol") {
			cfg.Decompose.PSDTolerance = psdTol
		}
		if cmd.Flags().Changed("coefficient-tol") {
			cfg.Decompose.CoefficientTolerance = coeffTol
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "symdecomp.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().Float64Var(&psdTol, "psd-tol", 1e-8, "Default PSD tolerance of decompose_l2_norm")
	rootCmd.PersistentFlags().Float64Var(&coeffTol, "coefficient-tol", 1e-8, "Default coefficient tolerance of decompose_l2_norm")

	rootCmd.AddCommand(serveCmd, runCmd, toolsCmd)
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	return zc.Build()
}

// newToolbox builds the toolbox from the loaded configuration.
func newToolbox() *symdecomp.Toolbox {
	return symdecomp.NewToolbox(
		symdecomp.WithLogger(logger),
		symdecomp.WithTolerances(cfg.Decompose.PSDTolerance, cfg.Decompose.CoefficientTolerance),
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
