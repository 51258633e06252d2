package solpos

import "math"

// siderealRate is sidereal days per solar day.
const siderealRate = 1.0027379093

// HourAngle is the sun's hour angle for one instant.
type HourAngle struct {
	GMST    float64 // Greenwich mean sidereal time, degrees [0, 360)
	LAST    float64 // local apparent sidereal time, degrees [0, 360)
	Degrees float64 // wrapped into (-180, 180]
	Radians float64
}

// greenwichSidereal0 returns GMST at 0h UT in degrees for the day whose
// epoch date at 0h is zero.
func greenwichSidereal0(zero float64) float64 {
	T := zero / 36525
	g := 6/24. + 38/1440. + (45.836+8640184.542*T+0.0929*T*T)/86400
	return 360 * (g - math.Floor(g))
}

// computeHourAngle derives sidereal time and the hour angle. westLongitude
// is positive west of Greenwich; the pipeline negates the caller's
// east-positive longitude before getting here.
func computeHourAngle(ep epoch, westLongitude, rightAscension float64) HourAngle {
	gmst := normalize360(greenwichSidereal0(ep.zero) + 360*(siderealRate*ep.hours/24))
	last := normalize360(360 + gmst - westLongitude)
	ha := wrap180(last - rightAscension)
	return HourAngle{
		GMST:    gmst,
		LAST:    last,
		Degrees: ha,
		Radians: degToRad(ha),
	}
}

// wrap180 reduces an angle to (-180, 180].
func wrap180(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
