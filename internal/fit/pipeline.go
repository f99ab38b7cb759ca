// Package fit orchestrates a single optimization run: it configures
// the evolution strategy for a parsed model and drives the cost
// function to its minimum.
package fit

import (
	"log/slog"

	"github.com/especia/especia/internal/model"
	"github.com/especia/especia/internal/opt"
)

// Params is the run configuration taken from the invocation.
type Params struct {
	RandomSeed     uint32
	ParentNumber   int
	PopulationSize int
	GlobalStepSize float64
	AccuracyGoal   float64
	StopGeneration uint64
}

// InvalidModelError reports a model that cannot be optimized.
type InvalidModelError struct {
	Reason string
}

func (e *InvalidModelError) Error() string {
	return "fit: invalid model: " + e.Reason
}

// Run minimizes the model cost function and applies the terminal
// parameter values and uncertainties to the model. The result is
// returned even when the run did not converge, so the best state found
// can still be reported.
func Run(m *model.Model, p Params, tracer opt.Tracer) (*opt.Result, error) {
	n := m.ParameterCount()
	if n == 0 {
		return nil, &InvalidModelError{Reason: "no free parameters"}
	}

	slog.Info("Starting optimization",
		"dimension", n,
		"parents", p.ParentNumber,
		"population", p.PopulationSize,
		"seed", p.RandomSeed,
	)

	optimizer, err := opt.New(opt.Config{
		Dimension:      n,
		ParentNumber:   p.ParentNumber,
		PopulationSize: p.PopulationSize,
		UpdateModulus:  1,
		AccuracyGoal:   p.AccuracyGoal,
		StopGeneration: p.StopGeneration,
		RandomSeed:     p.RandomSeed,
	})
	if err != nil {
		return nil, err
	}

	result, err := optimizer.Minimize(m.Cost, m.InitialValues(), m.InitialStepSizes(),
		p.GlobalStepSize, m.Constraint(), tracer)
	if result != nil {
		m.Apply(result.X, result.Z)

		slog.Info("Optimization finished",
			"generation", result.Generation,
			"fitness", result.Fitness,
			"optimized", result.Optimized,
			"underflow", result.Underflow,
		)
	}

	return result, err
}
