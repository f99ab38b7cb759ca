// Package opt implements the covariance matrix adaption evolution
// strategy (CMA-ES) developed by Hansen and Ostermeier (2001).
//
// Further reading:
//
// N. Hansen, S. D. Mueller, P. Koumoutsakos (2003).
// Reducing the Time Complexity of the Derandomized Evolution Strategy
// with Covariance Matrix Adaption (CMA-ES).
// Evolutionary Computation, 11, 1.
//
// N. Hansen, A. Ostermeier (2001).
// Completely Derandomized Self-Adaption in Evolution Strategies.
// Evolutionary Computation, 9, 159.
package opt

import (
	"fmt"
	"math"
	"sort"

	"github.com/especia/especia/internal/eigen"
	"github.com/especia/especia/internal/rng"
)

// CostFunc is the objective evaluated by the strategy.
type CostFunc func(x []float64) float64

// NumericError reports a fatal numeric failure of the strategy.
type NumericError struct {
	Reason string
	Err    error
}

func (e *NumericError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("opt: numeric error: %s: %v", e.Reason, e.Err)
	}
	return "opt: numeric error: " + e.Reason
}

func (e *NumericError) Unwrap() error { return e.Err }

// The number of redraws of a constraint-violating candidate before the
// violation is accepted and left to the penalty.
const maxRedraws = 100

// Optimizer runs the evolution strategy. It owns the eigensolver for
// the covariance refresh and the deviate stream; both are sequential
// and must not be shared across concurrent runs.
type Optimizer struct {
	cfg     Config
	st      strategy
	solver  *eigen.Solver
	deviate *rng.Normal
}

// New creates an optimizer from the build configuration given.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	solver, err := eigen.NewSolver(cfg.Dimension)
	if err != nil {
		return nil, err
	}

	return &Optimizer{
		cfg:     cfg,
		st:      cfg.derive(),
		solver:  solver,
		deviate: rng.NewNormal(rng.NewMT19937(cfg.RandomSeed)),
	}, nil
}

// Minimize minimizes the objective function, starting from the initial
// parameter values x, local step sizes d, and global step size s.
// A nil constraint or tracer disables the respective collaborator.
func (o *Optimizer) Minimize(f CostFunc, x, d []float64, s float64, constraint Constraint, tracer Tracer) (*Result, error) {
	return o.optimize(f, x, d, s, constraint, tracer, func(a, b float64) bool { return a < b })
}

// Maximize maximizes the objective function.
func (o *Optimizer) Maximize(f CostFunc, x, d []float64, s float64, constraint Constraint, tracer Tracer) (*Result, error) {
	return o.optimize(f, x, d, s, constraint, tracer, func(a, b float64) bool { return a > b })
}

func (o *Optimizer) optimize(f CostFunc, x, d []float64, s float64,
	constraint Constraint, tracer Tracer, better func(a, b float64) bool) (*Result, error) {

	n := o.cfg.Dimension
	if len(x) != n || len(d) != n {
		return nil, &InvalidConfigError{Field: "Dimension", Reason: fmt.Sprintf("does not match the initial state (%d, %d)", len(x), len(d))}
	}
	if constraint == nil {
		constraint = NoConstraint{}
	}
	if tracer == nil {
		tracer = NoTracing{}
	}

	lambda := o.cfg.PopulationSize
	mu := o.cfg.ParentNumber
	st := o.st

	res := newResult(n, x, d, s)

	// Working state, aliasing the result arrays.
	xw := res.X
	dw := res.D
	B := res.B
	C := res.C
	ps := res.StepSizePath
	pc := res.DistributionPath
	sigma := s

	// Per-generation arrays.
	zs := make([]float64, lambda*n) // standard-normal samples
	us := make([]float64, lambda*n) // rotated and scaled samples
	xs := make([]float64, lambda*n) // candidates
	ys := make([]float64, lambda)   // fitness values
	index := make([]int, lambda)

	xn := make([]float64, n) // recombined mean
	zw := make([]float64, n) // recombined normal samples
	uw := make([]float64, n) // recombined mutation steps
	bz := make([]float64, n)
	w := make([]float64, n) // eigenvalues

	for g := uint64(0); g < o.cfg.StopGeneration && !res.Optimized && !res.Underflow; {
		// Sample and evaluate the population.
		for k := 0; k < lambda; k++ {
			zk := zs[k*n : (k+1)*n]
			uk := us[k*n : (k+1)*n]
			xk := xs[k*n : (k+1)*n]

			for redraw := 0; ; redraw++ {
				for i := range zk {
					zk[i] = o.deviate.Next()
				}
				for i := 0; i < n; i++ {
					var u float64
					for j := 0; j < n; j++ {
						u += B[i*n+j] * dw[j] * zk[j]
					}
					uk[i] = u
					xk[i] = xw[i] + sigma*u
				}
				if !constraint.IsViolated(xk) || redraw >= maxRedraws {
					break
				}
			}

			ys[k] = f(xk) + constraint.Cost(xk)
			index[k] = k
		}

		// Rank the candidates; the sort is stable on the sample index.
		sort.SliceStable(index, func(i, j int) bool { return better(ys[index[i]], ys[index[j]]) })

		g++
		res.Generation = g

		// Recombine the best parents.
		for i := 0; i < n; i++ {
			var xi, zi, ui float64
			for k := 0; k < mu; k++ {
				wk := st.weights[k]
				xi += wk * xs[index[k]*n+i]
				zi += wk * zs[index[k]*n+i]
				ui += wk * us[index[k]*n+i]
			}
			xn[i] = xi
			zw[i] = zi
			uw[i] = ui
		}

		// Cumulate the step size path: with the current rotation,
		// C^(-1/2) (xn - xw) / sigma equals B zw.
		var psNorm float64
		for i := 0; i < n; i++ {
			var v float64
			for j := 0; j < n; j++ {
				v += B[i*n+j] * zw[j]
			}
			bz[i] = v
		}
		for i := 0; i < n; i++ {
			ps[i] = (1.0-st.cs)*ps[i] + math.Sqrt(st.cs*(2.0-st.cs)*st.mueff)*bz[i]
			psNorm += ps[i] * ps[i]
		}
		psNorm = math.Sqrt(psNorm)

		// Cumulate the distribution path, gated by the Heaviside
		// function.
		var hs float64
		if psNorm < (1.4+2.0/float64(n+1))*st.chiN {
			hs = 1.0
		}
		for i := 0; i < n; i++ {
			pc[i] = (1.0-st.cc)*pc[i] + hs*math.Sqrt(st.cc*(2.0-st.cc)*st.mueff)*uw[i]
		}

		// Adapt the covariance matrix: rank-one plus rank-mu update.
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				var rankMu float64
				for k := 0; k < mu; k++ {
					rankMu += st.weights[k] * us[index[k]*n+i] * us[index[k]*n+j]
				}
				v := (1.0-st.ccov)*C[i*n+j] + st.ccov*(st.acov*pc[i]*pc[j]+(1.0-st.acov)*rankMu)
				C[i*n+j] = v
				C[j*n+i] = v
			}
		}

		// Adapt the global step size.
		sigma *= math.Exp((st.cs / st.damp) * (psNorm/st.chiN - 1.0))

		copy(xw, xn)

		best := ys[index[0]]
		res.Fitness = best

		// Terminate when the spread of the best parent fitnesses
		// drops below the accuracy goal relative to the best fitness,
		// or below the squared accuracy goal in absolute terms,
		// whichever is reached first.
		spread := math.Abs(ys[index[mu-1]] - best)
		goal := o.cfg.AccuracyGoal
		if spread < goal*math.Abs(best) || spread < goal*goal {
			res.Optimized = true
		}

		if tracer.Enabled(g) {
			minStep, maxStep := dw[0], dw[0]
			for _, v := range dw[1:] {
				minStep = math.Min(minStep, v)
				maxStep = math.Max(maxStep, v)
			}
			tracer.Trace(g, best, sigma*minStep, sigma*maxStep)
		}

		// Refresh the mutation basis.
		if g%uint64(o.cfg.UpdateModulus) == 0 {
			if err := o.solver.Decompose(C, B, w); err != nil {
				res.GlobalStepSize = sigma
				return res, &NumericError{Reason: "covariance matrix decomposition failed", Err: err}
			}
			if w[0] < math.SmallestNonzeroFloat64 {
				res.Underflow = true
			} else {
				for i := 0; i < n; i++ {
					dw[i] = math.Sqrt(w[i])
				}
			}
		}
	}

	res.GlobalStepSize = sigma

	if res.Optimized {
		for i := 0; i < n; i++ {
			res.Z[i] = sigma * math.Sqrt(C[i*n+i])
		}
	}
	if res.Underflow {
		return res, &NumericError{Reason: "mutation variance underflow"}
	}

	return res, nil
}
