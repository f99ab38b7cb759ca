package profiles

import "math"

var (
	// The Gaussian and Lorentzian width conversion factors.
	cG = 2.0 * math.Sqrt(math.Ln2)
	cL = 2.0

	// The width conversion factors of the auxiliary shapes.
	cI = 2.0 * math.Sqrt(math.Pow(2.0, 2.0/3.0)-1.0)
	cP = 2.0 * math.Log(math.Sqrt2+1.0)
)

// poly evaluates the univariate polynomial of degree 6 with the
// coefficients given, ordered by ascending degree.
func poly(x, h0, h1, h2, h3, h4, h5, h6 float64) float64 {
	return h0 + x*(h1+x*(h2+x*(h3+x*(h4+x*(h5+x*h6)))))
}

// Mixing polynomials of Ida, Ando and Toraya (2000). The coefficients
// are part of the external contract of the approximation.

func polyWG(r float64) float64 {
	return 1.0 - r*poly(r, 0.66000, 0.15021, -1.24984, 4.74052, -9.48291, 8.48252, -2.95553)
}

func polyWL(r float64) float64 {
	return 1.0 - (1.0-r)*poly(r, -0.42179, -1.25693, 10.30003, -23.45651, 29.14158, -16.50453, 3.19974)
}

func polyWI(r float64) float64 {
	return poly(r, 1.19913, 1.43021, -15.36331, 47.06071, -73.61822, 57.92559, -17.80614)
}

func polyWP(r float64) float64 {
	return poly(r, 1.10186, -0.47745, -0.68688, 2.76622, -4.55466, 4.05475, -1.26571)
}

func polyEtaL(r float64) float64 {
	return r * (1.0 + (1.0-r)*poly(r, -0.30165, -1.38927, 9.31550, -24.10743, 34.96491, -21.18862, 3.70290))
}

func polyEtaI(r float64) float64 {
	return (r * (1.0 - r)) * poly(r, 0.25437, -0.14107, 3.23653, -11.09215, 22.10544, -24.12407, 9.76947)
}

func polyEtaP(r float64) float64 {
	return (r * (1.0 - r)) * poly(r, 1.01579, 1.50429, -9.21815, 23.59717, -39.71134, 32.83023, -10.02142)
}

// PseudoVoigt approximates the Voigt function, which is defined as the
// convolution of a Gaussian and a Lorentzian.
//
// Further reading:
//
// T. Ida, M. Ando, H. Toraya (2000).
// Extended pseudo-Voigt function for approximating the Voigt profile.
// J. Appl. Cryst., 33, 1311.
type PseudoVoigt struct {
	gammaG float64
	gammaL float64
	eta    float64
}

// NewPseudoVoigt creates the approximation for a Gaussian of width b and
// a Lorentzian of width d.
func NewPseudoVoigt(b, d float64) PseudoVoigt {
	u := (cG * b) / (cL * d)
	r := math.Pow(1.0+u*(0.07842+u*(4.47163+u*(2.42843+u*(u+2.69269)))), -0.2)

	return PseudoVoigt{
		gammaG: (cL * d) / (cG * r),
		gammaL: (cL * d) / (cL * r),
		eta:    r * (1.36603 - r*(0.47719-r*0.11116)),
	}
}

// Eval returns the value of the approximation at x.
func (v PseudoVoigt) Eval(x float64) float64 {
	return (1.0-v.eta)*gauss(x, v.gammaG) + v.eta*lorentz(x, v.gammaL)
}

// ExtendedPseudoVoigt is the extended pseudo-Voigt approximation of Ida,
// Ando and Toraya (2000), mixing four shapes with polynomial weights.
type ExtendedPseudoVoigt struct {
	gammaG float64
	gammaL float64
	gammaI float64
	gammaP float64
	etaL   float64
	etaI   float64
	etaP   float64
}

// NewExtendedPseudoVoigt creates the approximation for a Gaussian of
// width b and a Lorentzian of width d.
func NewExtendedPseudoVoigt(b, d float64) ExtendedPseudoVoigt {
	u := cG*b + cL*d
	r := cL * d / u

	return ExtendedPseudoVoigt{
		gammaG: u * polyWG(r) / cG,
		gammaL: u * polyWL(r) / cL,
		gammaI: u * polyWI(r) / cI,
		gammaP: u * polyWP(r) / cP,
		etaL:   polyEtaL(r),
		etaI:   polyEtaI(r),
		etaP:   polyEtaP(r),
	}
}

// Eval returns the value of the approximation at x.
func (v ExtendedPseudoVoigt) Eval(x float64) float64 {
	return (1.0-v.etaL-v.etaI-v.etaP)*gauss(x, v.gammaG) +
		v.etaL*lorentz(x, v.gammaL) +
		v.etaI*irrational(x, v.gammaI) +
		v.etaP*sechSquared(x, v.gammaP)
}
