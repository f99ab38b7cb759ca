// Package store persists optimization run state: a JSON-lines trace of
// the generation history and a checkpoint of the best state found.
package store

import (
	"time"

	"github.com/google/uuid"
)

// RunConfig holds the configuration of an optimization run, kept with
// the checkpoint for validation.
type RunConfig struct {
	Profile        string  `json:"profile"`
	RandomSeed     uint32  `json:"randomSeed"`
	ParentNumber   int     `json:"parentNumber"`
	PopulationSize int     `json:"populationSize"`
	GlobalStepSize float64 `json:"globalStepSize"`
	AccuracyGoal   float64 `json:"accuracyGoal"`
	StopGeneration uint64  `json:"stopGeneration"`
	TraceModulus   uint64  `json:"traceModulus"`
}

// Checkpoint is the persisted terminal state of an optimization run.
// The optimizer internals (covariance, paths) are not saved; the
// checkpoint records the fitted parameters and their uncertainties.
type Checkpoint struct {
	// RunID is the unique identifier of the run.
	RunID string `json:"runId"`

	// Parameters are the fitted reduced parameter values.
	Parameters []float64 `json:"parameters"`

	// Uncertainties are the 1-sigma parameter uncertainties.
	Uncertainties []float64 `json:"uncertainties,omitempty"`

	// Fitness is the terminal cost value.
	Fitness float64 `json:"fitness"`

	// Generation is the terminal generation number.
	Generation uint64 `json:"generation"`

	// Optimized reports whether the accuracy goal was reached.
	Optimized bool `json:"optimized"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration.
	Config RunConfig `json:"config"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewCheckpoint creates a checkpoint from run state.
func NewCheckpoint(runID string, parameters, uncertainties []float64, fitness float64,
	generation uint64, optimized bool, config RunConfig) *Checkpoint {
	return &Checkpoint{
		RunID:         runID,
		Parameters:    parameters,
		Uncertainties: uncertainties,
		Fitness:       fitness,
		Generation:    generation,
		Optimized:     optimized,
		Timestamp:     time.Now(),
		Config:        config,
	}
}

// Validate checks that the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(c.Parameters) == 0 {
		return &ValidationError{Field: "Parameters", Reason: "cannot be empty"}
	}
	if c.Uncertainties != nil && len(c.Uncertainties) != len(c.Parameters) {
		return &ValidationError{Field: "Uncertainties", Reason: "length must match parameters"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.PopulationSize <= 0 {
		return &ValidationError{Field: "Config.PopulationSize", Reason: "must be positive"}
	}
	if c.Config.ParentNumber <= 0 {
		return &ValidationError{Field: "Config.ParentNumber", Reason: "must be positive"}
	}
	return nil
}

// ValidationError reports an invalid checkpoint field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
