package model

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// The Gaussian width conversion from full width at half maximum to
// standard deviation.
var fwhmToSigma = 1.0 / (2.0 * math.Sqrt(2.0*math.Ln2))

// Evaluator evaluates a line profile superposition at a wavelength.
type Evaluator interface {
	Eval(x float64) float64
}

// Section is one contiguous spectral window: observed samples, a
// validity mask, and the continuum and cost cached by the last Apply.
//
// The section is immutable after loading, except for the fitted
// continuum coefficients and the cached model and cost, which only
// Apply mutates.
type Section struct {
	lo, hi float64

	wav []float64
	flx []float64
	unc []float64

	valid []bool

	// Fitted state, cached by Apply.
	continuum []float64
	modelFlux []float64
	cost      float64
}

// NewSection creates a section over [lo, hi] from the samples given.
// Samples outside the wavelength range are masked out.
func NewSection(d *fluxData, lo, hi float64) (*Section, error) {
	if len(d.wav) == 0 {
		return nil, &ParseError{Reason: "input failed: no data samples"}
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	s := &Section{
		lo:    lo,
		hi:    hi,
		wav:   d.wav,
		flx:   d.flx,
		unc:   d.unc,
		valid: make([]bool, len(d.wav)),
	}
	for i, w := range s.wav {
		s.valid[i] = w >= lo && w <= hi
	}
	return s, nil
}

// LowerBound returns the lower wavelength bound of the section.
func (s *Section) LowerBound() float64 { return s.lo }

// UpperBound returns the upper wavelength bound of the section.
func (s *Section) UpperBound() float64 { return s.hi }

// Mask adds [a, b] to the user exclusion mask.
func (s *Section) Mask(a, b float64) {
	if a > b {
		a, b = b, a
	}
	for i, w := range s.wav {
		if w >= a && w <= b {
			s.valid[i] = false
		}
	}
}

// ValidDataCount returns the number of masked-in samples.
func (s *Section) ValidDataCount() int {
	count := 0
	for _, v := range s.valid {
		if v {
			count++
		}
	}
	return count
}

// Cost evaluates the section cost for the superposition, resolving
// power (units of 1E+03), and number of Legendre basis polynomials
// given, without storing the fit.
func (s *Section) Cost(sup Evaluator, resolution float64, p int) float64 {
	cost, _, _ := s.compute(sup, resolution, p)
	return cost
}

// Apply evaluates the forward model like Cost and stores the fitted
// continuum coefficients, model flux and cost.
func (s *Section) Apply(sup Evaluator, resolution float64, p int) {
	s.cost, s.continuum, s.modelFlux = s.compute(sup, resolution, p)
}

// CachedCost returns the cost stored by the last Apply.
func (s *Section) CachedCost() float64 { return s.cost }

// compute runs the forward model: optical depth, apparent absorption,
// instrumental convolution, continuum fit, and chi-square cost.
func (s *Section) compute(sup Evaluator, resolution float64, p int) (float64, []float64, []float64) {
	m := len(s.wav)

	// Apparent absorption.
	absorption := make([]float64, m)
	for i, w := range s.wav {
		absorption[i] = math.Exp(-sup.Eval(w))
	}

	// Convolution with the instrument response, a Gaussian with a full
	// width at half maximum of lambda / R, truncated at four standard
	// deviations. The kernel is renormalized over the sample grid.
	convolved := s.convolve(absorption, resolution)

	// Continuum fit and chi-square.
	continuum, ok := s.fitContinuum(convolved, p)
	if !ok {
		return math.Inf(1), nil, nil
	}

	modelFlux := make([]float64, m)
	var cost float64
	for i := range s.wav {
		modelFlux[i] = s.continuumValue(continuum, s.wav[i]) * convolved[i]
		if s.valid[i] {
			r := (s.flx[i] - modelFlux[i]) / s.unc[i]
			cost += r * r
		}
	}

	return cost, continuum, modelFlux
}

// convolve smears the absorption with the instrumental line spread
// function over the sample grid. A resolving power of zero or less
// leaves the absorption unconvolved.
func (s *Section) convolve(a []float64, resolution float64) []float64 {
	if resolution <= 0.0 {
		return a
	}

	m := len(s.wav)
	c := make([]float64, m)
	for i := 0; i < m; i++ {
		sigma := s.wav[i] * fwhmToSigma / (1.0e+03 * resolution)
		span := 4.0 * sigma

		sum := a[i]
		norm := 1.0
		for j := i - 1; j >= 0 && s.wav[i]-s.wav[j] <= span; j-- {
			t := (s.wav[j] - s.wav[i]) / sigma
			w := math.Exp(-0.5 * t * t)
			sum += w * a[j]
			norm += w
		}
		for j := i + 1; j < m && s.wav[j]-s.wav[i] <= span; j++ {
			t := (s.wav[j] - s.wav[i]) / sigma
			w := math.Exp(-0.5 * t * t)
			sum += w * a[j]
			norm += w
		}
		c[i] = sum / norm
	}
	return c
}

// fitContinuum fits p Legendre basis polynomials to the ratio of
// observed flux to convolved absorption at the masked-in samples,
// weighted with the inverse flux variance.
func (s *Section) fitContinuum(convolved []float64, p int) ([]float64, bool) {
	if p <= 0 {
		return nil, true
	}

	count := s.ValidDataCount()
	if count < p {
		return nil, false
	}

	design := mat.NewDense(count, p, nil)
	rhs := mat.NewVecDense(count, nil)

	basis := make([]float64, p)
	row := 0
	for i := range s.wav {
		if !s.valid[i] {
			continue
		}
		if convolved[i] == 0.0 || s.unc[i] == 0.0 {
			return nil, false
		}

		weight := 1.0 / s.unc[i]
		s.legendreBasis(basis, s.wav[i])
		for k := 0; k < p; k++ {
			design.Set(row, k, basis[k]*weight)
		}
		rhs.SetVec(row, (s.flx[i]/convolved[i])*weight)
		row++
	}

	var qr mat.QR
	qr.Factorize(design)

	coeff := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(coeff, false, rhs); err != nil {
		return nil, false
	}

	out := make([]float64, p)
	copy(out, coeff.RawVector().Data)
	return out, true
}

// continuumValue evaluates the fitted continuum at a wavelength. An
// empty coefficient set means a unit continuum.
func (s *Section) continuumValue(continuum []float64, w float64) float64 {
	if len(continuum) == 0 {
		return 1.0
	}

	basis := make([]float64, len(continuum))
	s.legendreBasis(basis, w)

	var c float64
	for k, a := range continuum {
		c += a * basis[k]
	}
	return c
}

// legendreBasis fills out with the Legendre polynomials of degrees
// 0 to len(out)-1 at the normalized abscissa of the wavelength given.
func (s *Section) legendreBasis(out []float64, w float64) {
	xi := (2.0*w - (s.lo + s.hi)) / (s.hi - s.lo)

	out[0] = 1.0
	if len(out) > 1 {
		out[1] = xi
	}
	for k := 2; k < len(out); k++ {
		out[k] = (float64(2*k-1)*xi*out[k-1] - float64(k-1)*out[k-2]) / float64(k)
	}
}

// put writes the section samples and the fitted model flux to the data
// dump embedded in the report.
func (s *Section) put(w io.Writer) error {
	for i := range s.wav {
		valid := 0
		if s.valid[i] {
			valid = 1
		}
		modelFlux := math.NaN()
		if s.modelFlux != nil {
			modelFlux = s.modelFlux[i]
		}
		if _, err := fmt.Fprintf(w, "%12.4f %14.6e %14.6e %d %14.6e\n",
			s.wav[i], s.flx[i], s.unc[i], valid, modelFlux); err != nil {
			return err
		}
	}
	return nil
}
