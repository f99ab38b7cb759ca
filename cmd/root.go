package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "especia RANDOM_SEED PARENT_NUMBER POPULATION_SIZE GLOBAL_STEP_SIZE ACCURACY_GOAL STOP_GENERATION TRACE_MODULUS",
	Short: "Evolutionary spectrum inversion and analysis",
	Long: `Especia fits parametric models of quasar absorption line spectra to
observed flux data by a global nonlinear least-squares fit, using the
covariance matrix adaption evolution strategy (CMA-ES).

The model definition is read from standard input, the HTML report is
written to standard output. Invoked without arguments, a usage message
is printed.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logger; the report owns standard output, so logs go
		// to standard error.
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)
	},
	RunE: runOptimization,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
