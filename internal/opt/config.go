package opt

import (
	"fmt"
	"math"
)

// Config is the build configuration of an optimizer.
type Config struct {
	// Dimension is the problem dimension.
	Dimension int
	// ParentNumber is the number of recombined parents.
	ParentNumber int
	// PopulationSize is the number of candidates per generation.
	PopulationSize int
	// UpdateModulus is the covariance matrix update modulus: the
	// mutation basis is refreshed by an eigendecomposition every
	// UpdateModulus generations.
	UpdateModulus int
	// AccuracyGoal is the accuracy goal of the fitness spread
	// termination criterion.
	AccuracyGoal float64
	// StopGeneration is the generation limit.
	StopGeneration uint64
	// RandomSeed seeds the deviate stream.
	RandomSeed uint32
}

// DefaultConfig returns the conventional configuration for problem
// dimension n: a population of 4 + floor(3 ln n) with half of it
// recombined.
func DefaultConfig(n int) Config {
	lambda := 4 + int(3.0*math.Log(float64(n)))

	return Config{
		Dimension:      n,
		ParentNumber:   lambda / 2,
		PopulationSize: lambda,
		UpdateModulus:  1,
		AccuracyGoal:   1.0e-04,
		StopGeneration: 1000,
		RandomSeed:     27182,
	}
}

// InvalidConfigError reports an ill-formed build configuration.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("opt: invalid configuration: %s %s", e.Field, e.Reason)
}

func (c Config) validate() error {
	if c.Dimension < 1 {
		return &InvalidConfigError{Field: "Dimension", Reason: "must be positive"}
	}
	if c.ParentNumber < 1 {
		return &InvalidConfigError{Field: "ParentNumber", Reason: "must be positive"}
	}
	if c.PopulationSize < 2 {
		return &InvalidConfigError{Field: "PopulationSize", Reason: "must be at least 2"}
	}
	if c.ParentNumber > c.PopulationSize {
		return &InvalidConfigError{Field: "ParentNumber", Reason: "must not exceed the population size"}
	}
	if c.UpdateModulus < 1 {
		return &InvalidConfigError{Field: "UpdateModulus", Reason: "must be positive"}
	}
	if !(c.AccuracyGoal > 0.0) {
		return &InvalidConfigError{Field: "AccuracyGoal", Reason: "must be positive"}
	}
	if c.StopGeneration < 1 {
		return &InvalidConfigError{Field: "StopGeneration", Reason: "must be positive"}
	}
	return nil
}

// strategy holds the parameters derived once from the build
// configuration, after Hansen and Ostermeier (2001) and Hansen,
// Mueller and Koumoutsakos (2003).
type strategy struct {
	// The recombination weights, normalized to unit sum.
	weights []float64
	// The variance-effective number of parents 1 / sum w^2.
	mueff float64
	// The step size cumulation rate.
	cs float64
	// The distribution cumulation rate.
	cc float64
	// The covariance matrix adaption rate.
	ccov float64
	// The covariance matrix adaption mixing.
	acov float64
	// The step size damping.
	damp float64
	// The expected length of a standard-normal random vector.
	chiN float64
}

func (c Config) derive() strategy {
	n := float64(c.Dimension)
	mu := c.ParentNumber

	weights := make([]float64, mu)
	var sum float64
	for i := range weights {
		weights[i] = math.Log(float64(mu+1)) - math.Log(float64(i+1))
		sum += weights[i]
	}
	var sumSq float64
	for i := range weights {
		weights[i] /= sum
		sumSq += weights[i] * weights[i]
	}
	mueff := 1.0 / sumSq

	cs := (mueff + 2.0) / (n + mueff + 3.0)
	cc := 4.0 / (n + 4.0)
	ccov := 2.0/((n+math.Sqrt2)*(n+math.Sqrt2)*mueff) +
		(1.0-1.0/mueff)*math.Min(1.0, (2.0*mueff-1.0)/((n+2.0)*(n+2.0)+mueff))
	damp := 1.0 + 2.0*math.Max(0.0, math.Sqrt((mueff-1.0)/(n+1.0))-1.0) + cs

	return strategy{
		weights: weights,
		mueff:   mueff,
		cs:      cs,
		cc:      cc,
		ccov:    ccov,
		acov:    1.0 / mueff,
		damp:    damp,
		chiN:    math.Sqrt(n) * (1.0 - 1.0/(4.0*n) + 1.0/(21.0*n*n)),
	}
}
