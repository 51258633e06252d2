package astro

import (
	"math"
	"time"
)

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	s := sunAlmanac(t)
	return s.RAdeg, s.DecDeg
}

// Sun returns the Sun's apparent equatorial coordinates and distance.
func Sun(t time.Time) SkyCoord {
	return sunAlmanac(t)
}

// SunDistance returns the Earth-Sun distance in AU.
func SunDistance(t time.Time) float64 {
	return sunAlmanac(t).DistanceAU
}

func sunAlmanac(t time.Time) SkyCoord {
	// Julian centuries from J2000.0
	T := (JulianDate(t) - 2451545.0) / 36525.0

	// Mean longitude of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Eccentricity of Earth's orbit
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T

	// Sun's equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	// Sun's true longitude and true anomaly (degrees)
	sunLon := L0 + C
	v := M + C

	// Sun's radius vector (AU)
	R := (1.000001018 * (1 - e*e)) / (1 + e*math.Cos(degToRad(v)))

	// Apparent longitude (correcting for aberration and nutation)
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Mean obliquity of the ecliptic (degrees)
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T

	// Corrected obliquity
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	// Convert to equatorial coordinates
	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	dec := math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad))

	return SkyCoord{
		RAdeg:      normalizeAngle360(radToDeg(ra)),
		DecDeg:     radToDeg(dec),
		DistanceAU: R,
	}
}

// SunHorizontal returns the Sun's true (unrefracted) horizontal position
// for an observer.
func SunHorizontal(obs Observer, t time.Time) SkyCoord {
	return EquatorialToHorizontal(sunAlmanac(t), obs, t)
}
