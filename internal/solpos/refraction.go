package solpos

import "math"

// Refraction returns the atmospheric refraction correction in degrees for
// a true elevation (degrees), pressure (Pa) and temperature (C).
//
// The model is piecewise and empirical:
//
//	(5, 85]        58.1/tan(e) - 0.07/tan(e)^3 + 8.6e-5/tan(e)^5
//	(-0.575, 5]    e*(-518.2 + e*(103.4 + e*(-12.79 + e*0.711))) + 1735
//	(-1, -0.575]   -20.774/tan(e)
//	otherwise      0
//
// Each branch is scaled by (283/(273+T)) * (P/101325) / 3600. Nothing is
// modeled outside (-1, 85]; the value drops to zero there.
func Refraction(elevation, pressure, temperature float64) float64 {
	tanEl := math.Tan(degToRad(elevation))

	var raw float64
	switch {
	case elevation > 5 && elevation <= 85:
		raw = 58.1/tanEl - 0.07/math.Pow(tanEl, 3) + 8.6e-05/math.Pow(tanEl, 5)
	case elevation > -0.575 && elevation <= 5:
		raw = elevation*(-518.2+elevation*(103.4+elevation*(-12.79+elevation*0.711))) + 1735
	case elevation > -1 && elevation <= -0.575:
		raw = -20.774 / tanEl
	default:
		return 0
	}
	return raw * (283 / (273 + temperature)) * (pressure / 101325) / 3600
}

// Correct applies Refraction to a true elevation.
func Correct(elevation, pressure, temperature float64) AtmosphericCorrection {
	r := Refraction(elevation, pressure, temperature)
	app := elevation + r
	return AtmosphericCorrection{
		Refraction:        r,
		ApparentElevation: app,
		ApparentZenith:    90 - app,
	}
}
