package z5d

// Calibration constants for the prime-location model. They are opaque
// tuned values carried as configuration defaults; keep them exact.
const (
	DefaultC         = -0.00247
	DefaultKappaStar = 0.04449
	DefaultKappaGeo  = 0.3
	DefaultPhi       = 1.61803398874989

	eSquared = 7.38905609893065
	eFourth  = 54.59815003314424
)

// Params is the estimator calibration surface. KappaGeo and Phi travel
// with the calibration (and end up in key-file headers) even though the
// two estimator formulas consume only C and KappaStar.
type Params struct {
	C         float64
	KappaStar float64
	KappaGeo  float64
	Phi       float64
}

// DefaultParams returns the base calibration band.
func DefaultParams() Params {
	return Params{
		C:         DefaultC,
		KappaStar: DefaultKappaStar,
		KappaGeo:  DefaultKappaGeo,
		Phi:       DefaultPhi,
	}
}

// ParamsForScale returns the calibration band for inputs of magnitude x.
func ParamsForScale(x float64) Params {
	p := DefaultParams()
	switch {
	case x <= 1e7:
		// base band
	case x <= 1e10:
		p.C, p.KappaStar, p.KappaGeo = -0.00037, -0.11446, DefaultKappaGeo*0.809
	case x <= 1e12:
		p.C, p.KappaStar, p.KappaGeo = -0.0001, -0.15, DefaultKappaGeo*0.5
	default:
		p.C, p.KappaStar, p.KappaGeo = -0.00002, -0.10, DefaultKappaGeo*0.333
	}
	return p
}
