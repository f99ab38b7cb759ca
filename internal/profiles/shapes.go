package profiles

import "math"

// gauss is the normalized Gaussian of width gamma.
func gauss(x, gamma float64) float64 {
	t := x / gamma
	return math.Exp(-t*t) / (SqrtOfPi * gamma)
}

// lorentz is the normalized Lorentzian of width gamma.
func lorentz(x, gamma float64) float64 {
	t := x / gamma
	return 1.0 / ((Pi * gamma) * (1.0 + t*t))
}

// irrational is the auxiliary shape of the extended pseudo-Voigt
// approximation.
func irrational(x, gamma float64) float64 {
	t := x / gamma
	return 1.0 / ((2.0 * gamma) * math.Pow(1.0+t*t, 1.5))
}

// sechSquared is the squared hyperbolic secant shape of the extended
// pseudo-Voigt approximation.
func sechSquared(x, gamma float64) float64 {
	c := math.Cosh(x / gamma)
	return 1.0 / (2.0 * gamma * c * c)
}

// truncate evaluates f at x when |x| is within c widths of the center,
// and vanishes outside.
func truncate(f func(x, b float64) float64, x, b, c float64) float64 {
	if math.Abs(x) < c*b {
		return f(x, b)
	}
	return 0.0
}
