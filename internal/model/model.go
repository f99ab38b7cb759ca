// Package model implements the parametric model of quasar absorption
// line spectra: spectral sections with instrumental convolution and a
// Legendre continuum, the structured parameter vector with boxes,
// freeze flags and aliases, and the global chi-square cost function
// minimized by the evolution strategy.
package model

import (
	"github.com/especia/especia/internal/opt"
	"github.com/especia/especia/internal/profiles"
)

// Model owns the spectral sections and the parameter vector with its
// metadata. The optimizer queries it through the cost function only;
// Apply stores the terminal state for the report.
type Model struct {
	factory profiles.Factory

	sections []*Section

	// Per-section bookkeeping: the index of the resolving power
	// parameter, the number of Legendre basis polynomials, and the
	// number of line profiles.
	isc []int
	nle []int
	nli []int

	// The full parameter vector with its metadata.
	val []float64
	err []float64
	lo  []float64
	up  []float64
	msk []bool
	ind []int

	sim map[string]int // section id to section index
	pim map[string]int // line id to first parameter index

	text string // raw model definition, embedded in the report

	scratch []float64
}

// ProfileName returns the name of the profile kind the model was read
// with.
func (m *Model) ProfileName() string { return m.factory.Name }

// SectionCount returns the number of spectral sections.
func (m *Model) SectionCount() int { return len(m.sections) }

// ParameterCount returns the dimension of the reduced parameter vector.
func (m *Model) ParameterCount() int {
	count := 0
	for i := range m.val {
		if m.msk[i] && m.ind[i] >= count {
			count = m.ind[i] + 1
		}
	}
	return count
}

// Cost evaluates the global cost for the reduced parameter vector x:
// the full vector is materialized by scatter, and the section costs
// are summed.
func (m *Model) Cost(x []float64) float64 {
	y := m.scratch
	copy(y, m.val)
	for i := range y {
		if m.msk[i] {
			y[i] = x[m.ind[i]]
		}
	}

	var d float64
	for s, sec := range m.sections {
		sup := profiles.NewSuperposition(m.nli[s], y[m.isc[s]+1:], m.factory)
		d += sec.Cost(sup, y[m.isc[s]], m.nle[s])
	}
	return d
}

// Apply stores the optimized parameter values x and uncertainties z
// and fits each section a final time, caching continuum and cost.
func (m *Model) Apply(x, z []float64) {
	for i := range m.val {
		if m.msk[i] {
			m.val[i] = x[m.ind[i]]
			m.err[i] = z[m.ind[i]]
		} else {
			m.err[i] = 0.0
		}
	}
	for s, sec := range m.sections {
		sup := profiles.NewSuperposition(m.nli[s], m.val[m.isc[s]+1:], m.factory)
		sec.Apply(sup, m.val[m.isc[s]], m.nle[s])
	}
}

// InitialValues returns the midpoints of the free parameter boxes as
// the initial reduced parameter vector.
func (m *Model) InitialValues() []float64 {
	x := make([]float64, m.ParameterCount())
	j := 0
	for i := range m.val {
		if m.msk[i] && m.ind[i] == j {
			x[j] = 0.5 * (m.lo[i] + m.up[i])
			j++
		}
	}
	return x
}

// InitialStepSizes returns the half widths of the free parameter boxes
// as the initial local step sizes.
func (m *Model) InitialStepSizes() []float64 {
	d := make([]float64, m.ParameterCount())
	j := 0
	for i := range m.val {
		if m.msk[i] && m.ind[i] == j {
			d[j] = 0.5 * (m.up[i] - m.lo[i])
			j++
		}
	}
	return d
}

// Constraint returns the box constraint of the free parameters.
func (m *Model) Constraint() *opt.BoxConstraint {
	n := m.ParameterCount()
	lower := make([]float64, n)
	upper := make([]float64, n)
	j := 0
	for i := range m.val {
		if m.msk[i] && m.ind[i] == j {
			lower[j] = m.lo[i]
			upper[j] = m.up[i]
			j++
		}
	}
	return opt.NewBoxConstraint(lower, upper)
}
