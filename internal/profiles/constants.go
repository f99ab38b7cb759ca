package profiles

// Physical and mathematical constants (SI units, CODATA 2018).
const (
	// Pi.
	Pi = 3.1415926535897932384626433832795028841972
	// The square root of Pi.
	SqrtOfPi = 1.7724538509055160272981674833411451827975

	// The speed of light in vacuum (m s-1).
	SpeedOfLight = 299792458.0
	// The elementary charge (C).
	ElementaryCharge = 1.602176634e-19
	// The electric constant (F m-1).
	ElectricConstant = 8.8541878128e-12
	// The electron mass (kg).
	ElectronMass = 9.1093837015e-31

	// The SI prefix micro.
	micro = 1.0e-06
)

// The speed of light (km s-1), the unit of radial and broadening velocities.
const c0 = 1.0e-03 * SpeedOfLight

// The amplitude factor e^2 / (4 eps0 m_e c^2), scaled to Angstrom and
// logarithmic column density units.
const c1 = micro * ElementaryCharge * ElementaryCharge /
	(4.0 * ElectricConstant * ElectronMass * SpeedOfLight * SpeedOfLight)

// The Lorentzian width factor 1 / (4 pi c), scaled to Angstrom units.
const c2 = 1.0e-10 / (4.0 * Pi * SpeedOfLight)
