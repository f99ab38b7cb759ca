// Package eigen solves the real symmetric eigenproblem needed to refresh
// the mutation basis of the evolution strategy.
package eigen

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// InvalidArgumentError reports an ill-formed input matrix.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "eigen: invalid argument: " + e.Reason
}

// NoConvergenceError reports that the numeric kernel did not converge.
type NoConvergenceError struct{}

func (e *NoConvergenceError) Error() string {
	return "eigen: internal error: the eigenvalue algorithm did not converge"
}

// Driver factors a symmetric matrix held in a, overwriting a with the
// eigenvectors and filling w with the eigenvalues in ascending order.
// The work slice is the solver-owned scratch space.
type Driver func(a blas64.Symmetric, w, work []float64) bool

// Solver computes eigenvalues and an orthonormal eigenvector basis of a
// real symmetric n-by-n matrix. The solver is constructed once per
// problem dimension and owns its workspace across calls.
//
// The boundary convention is row-major with the upper triangle read.
// On success the columns of Z hold the eigenvectors, so that
// A Z = Z diag(w) with w ascending.
type Solver struct {
	n      int
	driver Driver
	work   []float64
}

// NewSolver creates a solver for symmetric matrices of order n using
// the default driver.
func NewSolver(n int) (*Solver, error) {
	return NewSolverDriver(n, syev)
}

// NewSolverDriver creates a solver using the driver given, so another
// numeric kernel can be substituted without touching the callers.
func NewSolverDriver(n int, driver Driver) (*Solver, error) {
	if n < 1 {
		return nil, &InvalidArgumentError{Reason: fmt.Sprintf("matrix order %d is not positive", n)}
	}
	if driver == nil {
		return nil, &InvalidArgumentError{Reason: "driver must not be nil"}
	}

	s := &Solver{n: n, driver: driver}

	// Workspace query.
	var query [1]float64
	a := blas64.Symmetric{N: n, Stride: n, Uplo: blas.Upper, Data: make([]float64, n*n)}
	lapack64.Syev(lapack.EVCompute, a, make([]float64, n), query[:], -1)
	s.work = make([]float64, int(query[0]))

	return s, nil
}

func syev(a blas64.Symmetric, w, work []float64) bool {
	return lapack64.Syev(lapack.EVCompute, a, w, work, len(work))
}

// N returns the problem dimension the solver was built for.
func (s *Solver) N() int {
	return s.n
}

// Decompose factors the symmetric matrix a (row-major, order n, upper
// triangle read) into eigenvalues w (ascending) and the row-major
// eigenvector matrix z whose columns form an orthonormal basis.
// a is left untouched; z and w must have length n*n and n.
func (s *Solver) Decompose(a, z, w []float64) error {
	n := s.n
	if len(a) != n*n || len(z) != n*n {
		return &InvalidArgumentError{Reason: fmt.Sprintf("matrix length %d, want %d", len(a), n*n)}
	}
	if len(w) != n {
		return &InvalidArgumentError{Reason: fmt.Sprintf("eigenvalue length %d, want %d", len(w), n)}
	}

	copy(z, a)

	ok := s.driver(blas64.Symmetric{N: n, Stride: n, Uplo: blas.Upper, Data: z}, w, s.work)
	if !ok {
		return &NoConvergenceError{}
	}
	return nil
}
