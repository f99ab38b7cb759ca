// Package profiles evaluates the parametric line profiles superposed by
// the absorption model: Doppler profiles for intergalactic lines, a
// many-multiplet variant probing the fine-structure constant, and Voigt
// profiles approximated by the pseudo-Voigt family.
package profiles

import (
	"math"
)

// Profile evaluates a single line profile at a given wavelength.
type Profile interface {
	// Eval returns the value of the profile at the wavelength x (Angstrom).
	Eval(x float64) float64
}

// Factory creates profiles of a fixed kind from consecutive groups of
// ParameterCount parameter values.
type Factory struct {
	// Name identifies the profile kind.
	Name string
	// ParameterCount is the number of parameters per profile.
	ParameterCount int
	// New creates a profile from q[0:ParameterCount].
	New func(q []float64) Profile
}

// The profile factories, keyed by the names accepted on the command line.
var factories = map[string]Factory{
	"doppler": {
		Name:           "doppler",
		ParameterCount: DopplerParameterCount,
		New:            func(q []float64) Profile { return NewDoppler(q) },
	},
	"many-multiplet": {
		Name:           "many-multiplet",
		ParameterCount: ManyMultipletParameterCount,
		New:            func(q []float64) Profile { return NewManyMultiplet(q) },
	},
	"voigt": {
		Name:           "voigt",
		ParameterCount: VoigtParameterCount,
		New:            func(q []float64) Profile { return NewVoigt(q) },
	},
	"voigt-extended": {
		Name:           "voigt-extended",
		ParameterCount: VoigtParameterCount,
		New:            func(q []float64) Profile { return NewVoigtExtended(q) },
	},
}

// ForName returns the factory for the profile kind named.
func ForName(name string) (Factory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Doppler models an intergalactic absorption line.
//
// Parameters, in positional order:
//
//	q[0] rest wavelength (Angstrom)
//	q[1] oscillator strength
//	q[2] cosmological redshift
//	q[3] radial velocity (km s-1)
//	q[4] line broadening velocity (km s-1)
//	q[5] decadic logarithm of the particle column number density (cm-2)
type Doppler struct {
	c float64 // central wavelength (Angstrom)
	b float64 // Doppler width (Angstrom)
	a float64 // amplitude
}

// DopplerParameterCount is the number of parameters of a Doppler profile.
const DopplerParameterCount = 6

// NewDoppler creates a Doppler profile from the parameter values given.
func NewDoppler(q []float64) Doppler {
	c := q[0] * (1.0 + q[2]) * (1.0 + q[3]/c0)

	return Doppler{
		c: c,
		b: q[4] * c / c0,
		a: c1 * q[1] * math.Pow(10.0, q[5]) * (q[0] * c),
	}
}

// Eval returns the optical depth contributed by the profile at the
// wavelength x (Angstrom). The Gaussian support is truncated at four
// widths.
func (p Doppler) Eval(x float64) float64 {
	return p.a * truncate(gauss, x-p.c, p.b, 4.0)
}

// ManyMultiplet is the Doppler profile used to infer a variation of the
// fine-structure constant alpha by means of a many-multiplet analysis.
//
// Parameters q[0:6] are those of Doppler; in addition:
//
//	q[6] relativistic correction coefficient
//	q[7] variation of the fine-structure constant (1E-6)
type ManyMultiplet struct {
	c float64
	b float64
	a float64
}

// ManyMultipletParameterCount is the number of parameters of a
// many-multiplet profile.
const ManyMultipletParameterCount = 8

// NewManyMultiplet creates a many-multiplet Doppler profile from the
// parameter values given.
func NewManyMultiplet(q []float64) ManyMultiplet {
	// The rest wavelength modified by the relativistic correction.
	u := 1.0e+08 / (1.0e+08/q[0] + q[6]*(q[7]*micro)*(q[7]*micro+2.0))
	c := u * (1.0 + q[2]) * (1.0 + q[3]/c0)

	return ManyMultiplet{
		c: c,
		b: q[4] * c / c0,
		a: c1 * q[1] * math.Pow(10.0, q[5]) * (u * c),
	}
}

// Eval returns the optical depth contributed by the profile at the
// wavelength x (Angstrom).
func (p ManyMultiplet) Eval(x float64) float64 {
	return p.a * truncate(gauss, x-p.c, p.b, 4.0)
}

// Voigt models an intergalactic absorption line with damping.
//
// Parameters q[0:6] are those of Doppler; in addition:
//
//	q[6] damping constant (s-1)
type Voigt struct {
	c      float64
	a      float64
	approx Profile
}

// VoigtParameterCount is the number of parameters of a Voigt profile.
const VoigtParameterCount = 7

// NewVoigt creates a Voigt profile using the pseudo-Voigt approximation.
func NewVoigt(q []float64) Voigt {
	return newVoigt(q, func(b, d float64) Profile { return NewPseudoVoigt(b, d) })
}

// NewVoigtExtended creates a Voigt profile using the extended
// pseudo-Voigt approximation.
func NewVoigtExtended(q []float64) Voigt {
	return newVoigt(q, func(b, d float64) Profile { return NewExtendedPseudoVoigt(b, d) })
}

func newVoigt(q []float64, approximate func(b, d float64) Profile) Voigt {
	c := q[0] * (1.0 + q[2]) * (1.0 + q[3]/c0)

	return Voigt{
		c:      c,
		a:      c1 * q[1] * math.Pow(10.0, q[5]) * (q[0] * c),
		approx: approximate(q[4]*c/c0, c2*q[6]*(q[0]*c)),
	}
}

// Eval returns the optical depth contributed by the profile at the
// wavelength x (Angstrom).
func (p Voigt) Eval(x float64) float64 {
	return p.a * p.approx.Eval(x-p.c)
}

// Superposition sums many profiles of the same kind.
type Superposition struct {
	profiles []Profile
}

// NewSuperposition creates the superposition of n profiles built by the
// factory from consecutive parameter groups in q.
func NewSuperposition(n int, q []float64, f Factory) Superposition {
	s := Superposition{profiles: make([]Profile, 0, n)}
	for i := 0; i < n; i++ {
		s.profiles = append(s.profiles, f.New(q[i*f.ParameterCount:(i+1)*f.ParameterCount]))
	}
	return s
}

// Eval returns the value of the superposition at the wavelength x
// (Angstrom).
func (s Superposition) Eval(x float64) float64 {
	var d float64
	for _, p := range s.profiles {
		d += p.Eval(x)
	}
	return d
}
