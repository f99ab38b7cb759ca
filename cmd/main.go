package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/especia/especia/internal/fit"
	"github.com/especia/especia/internal/model"
	"github.com/especia/especia/internal/opt"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// Exit codes: 0 converged, 1 not converged, 10 invalid argument,
// 20 runtime error, 30 other.
func exitCode(err error) int {
	var notConverged *notConvergedError
	if errors.As(err, &notConverged) {
		return 1
	}

	var invalidArgument *invalidArgumentError
	var invalidConfig *opt.InvalidConfigError
	if errors.As(err, &invalidArgument) || errors.As(err, &invalidConfig) {
		return 10
	}

	var parseError *model.ParseError
	var ioError *model.IoError
	var numericError *opt.NumericError
	var invalidModel *fit.InvalidModelError
	if errors.As(err, &parseError) || errors.As(err, &ioError) ||
		errors.As(err, &numericError) || errors.As(err, &invalidModel) {
		return 20
	}

	return 30
}

// notConvergedError reports that the generation limit was reached
// without convergence. The best state found is still reported.
type notConvergedError struct {
	generation uint64
}

func (e *notConvergedError) Error() string {
	return fmt.Sprintf("optimization did not converge within %d generations", e.generation)
}

// invalidArgumentError reports a malformed invocation.
type invalidArgumentError struct {
	reason string
}

func (e *invalidArgumentError) Error() string {
	return e.reason
}
