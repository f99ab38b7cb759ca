package profiles

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/integrate/quad"
)

// gaussIntegral and the functions below compute the analytic integrals
// of the individual normalized shapes over [-x, x].
func gaussIntegral(x, gamma float64) float64 {
	return math.Erf(x / gamma)
}

func lorentzIntegral(x, gamma float64) float64 {
	return (2.0 / Pi) * math.Atan(x/gamma)
}

func irrationalIntegral(x, gamma float64) float64 {
	t := x / gamma
	return t / math.Sqrt(1.0+t*t)
}

func sechSquaredIntegral(x, gamma float64) float64 {
	return math.Tanh(x / gamma)
}

func TestPseudoVoigtQuadrature(t *testing.T) {
	cases := []struct{ b, d float64 }{
		{1.0, 1.0},
		{1.0, 0.1},
		{0.1, 1.0},
		{2.5, 0.5},
	}

	for _, c := range cases {
		v := NewPseudoVoigt(c.b, c.d)
		x := 20.0 * (c.b + c.d)

		got := quad.Fixed(v.Eval, -x, x, 2000, nil, 0)
		want := (1.0-v.eta)*gaussIntegral(x, v.gammaG) + v.eta*lorentzIntegral(x, v.gammaL)

		if math.Abs(got-want) > 1.0e-06 {
			t.Errorf("b=%g d=%g: quadrature %g, analytic %g", c.b, c.d, got, want)
		}
	}
}

func TestExtendedPseudoVoigtQuadrature(t *testing.T) {
	cases := []struct{ b, d float64 }{
		{1.0, 1.0},
		{1.0, 0.1},
		{0.1, 1.0},
		{2.5, 0.5},
	}

	for _, c := range cases {
		v := NewExtendedPseudoVoigt(c.b, c.d)
		x := 20.0 * (c.b + c.d)

		got := quad.Fixed(v.Eval, -x, x, 2000, nil, 0)
		want := (1.0-v.etaL-v.etaI-v.etaP)*gaussIntegral(x, v.gammaG) +
			v.etaL*lorentzIntegral(x, v.gammaL) +
			v.etaI*irrationalIntegral(x, v.gammaI) +
			v.etaP*sechSquaredIntegral(x, v.gammaP)

		if math.Abs(got-want) > 1.0e-06 {
			t.Errorf("b=%g d=%g: quadrature %g, analytic %g", c.b, c.d, got, want)
		}
	}
}

func TestPseudoVoigtGaussianLimit(t *testing.T) {
	const b = 1.0
	const d = 1.0e-08

	v := NewPseudoVoigt(b, d)

	// Ida, Ando and Toraya (2000) bound the peak error of the
	// approximation below one percent.
	for _, x := range []float64{0.0, 0.25 * b, 0.5 * b, b, 2.0 * b} {
		want := gauss(x, b)
		if got := v.Eval(x); math.Abs(got-want) > 0.01*gauss(0.0, b) {
			t.Errorf("x=%g: got %g, want Gaussian %g", x, got, want)
		}
	}
}

func TestPseudoVoigtLorentzianLimit(t *testing.T) {
	const b = 1.0e-08
	const d = 1.0

	v := NewPseudoVoigt(b, d)

	for _, x := range []float64{0.0, 0.25 * d, 0.5 * d, d, 2.0 * d} {
		want := lorentz(x, d)
		if got := v.Eval(x); math.Abs(got-want) > 0.01*lorentz(0.0, d) {
			t.Errorf("x=%g: got %g, want Lorentzian %g", x, got, want)
		}
	}
}

func TestExtendedPseudoVoigtLimits(t *testing.T) {
	gaussian := NewExtendedPseudoVoigt(1.0, 1.0e-08)
	for _, x := range []float64{0.0, 0.5, 1.0, 2.0} {
		want := gauss(x, 1.0)
		if got := gaussian.Eval(x); math.Abs(got-want) > 0.01*gauss(0.0, 1.0) {
			t.Errorf("gaussian limit at x=%g: got %g, want %g", x, got, want)
		}
	}

	lorentzian := NewExtendedPseudoVoigt(1.0e-08, 1.0)
	for _, x := range []float64{0.0, 0.5, 1.0, 2.0} {
		want := lorentz(x, 1.0)
		if got := lorentzian.Eval(x); math.Abs(got-want) > 0.01*lorentz(0.0, 1.0) {
			t.Errorf("lorentzian limit at x=%g: got %g, want %g", x, got, want)
		}
	}
}
