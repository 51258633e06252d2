package solpos

import (
	"math"
	"time"
)

// MaxKeplerIterations bounds the fixed-point solve of Kepler's equation.
const MaxKeplerIterations = 100

// solveKepler is replaced in tests.
var solveKepler = SolveKepler

const (
	keplerTolerance = 1e-4       // degrees
	aberration      = 20 / 3600. // degrees
)

// epoch holds the continuous time measures the polynomials are written in.
type epoch struct {
	zero  float64 // days since the 1900 epoch at 0h UT of the day
	date  float64 // zero plus the UT fraction of the day
	hours float64 // decimal UT hours
}

func newEpoch(t time.Time) epoch {
	t = t.UTC()
	yr := float64(t.Year() - 1900)
	yrBegin := 365*yr + math.Floor((yr-1)/4) - 0.5
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600 +
		float64(t.Nanosecond())/3.6e12
	zero := yrBegin + float64(t.YearDay())
	return epoch{
		zero:  zero,
		date:  zero + hours/24,
		hours: hours,
	}
}

// EpochDate returns the number of days since the 1900 epoch used by the
// orbital polynomials, including the UT fraction of the day.
func EpochDate(t time.Time) float64 {
	return newEpoch(t).date
}

// OrbitalElements computes the sun's orbital state at epochDate.
func OrbitalElements(epochDate float64) (OrbitalState, error) {
	T := epochDate / 36525
	T2 := T * T
	T3 := T2 * T

	st := OrbitalState{
		EpochDate:    epochDate,
		T:            T,
		Obliquity:    23.452294 - 0.0130125*T - 1.64e-06*T2 + 5.03e-07*T3,
		MeanAnomaly:  normalize360(358.47583 + 0.985600267*epochDate - 0.00015*T2 - 3e-06*T3),
		Eccentricity: 0.01675104 - 4.18e-05*T - 1.26e-07*T2,
	}
	perigee := 281.22083 + 4.70684e-05*epochDate + 0.000453*T2 + 3e-06*T3

	ea, n, err := solveKepler(st.MeanAnomaly, st.Eccentricity, MaxKeplerIterations)
	if err != nil {
		return OrbitalState{}, err
	}
	st.EccentricAnomaly = ea
	st.Iterations = n

	e := st.Eccentricity
	half := radToDeg(math.Atan2(math.Sqrt((1+e)/(1-e))*math.Tan(degToRad(ea)/2), 1))
	st.TrueAnomaly = 2 * normalize360(half)
	st.EclipticLongitude = normalize360(perigee+st.TrueAnomaly) - aberration

	obl := degToRad(st.Obliquity)
	lon := degToRad(st.EclipticLongitude)
	st.Declination = radToDeg(math.Asin(math.Sin(obl) * math.Sin(lon)))
	st.RightAscension = radToDeg(math.Atan2(math.Cos(obl)*math.Sin(lon), math.Cos(lon)))
	return st, nil
}

// SolveKepler iterates E = M + e*sin(E) (angles in degrees, e converted to
// degrees) starting from E = M until successive estimates differ by no more
// than 1e-4 degrees. It returns a *ConvergenceError if that does not happen
// within maxIter updates.
func SolveKepler(meanAnomaly, eccentricity float64, maxIter int) (float64, int, error) {
	eDeg := radToDeg(eccentricity)
	ea, prev := meanAnomaly, 0.0
	n := 0
	for math.Abs(ea-prev) > keplerTolerance {
		if n >= maxIter {
			return 0, n, &ConvergenceError{Index: -1, Iterations: n, Residual: math.Abs(ea - prev)}
		}
		prev = ea
		ea = meanAnomaly + eDeg*math.Sin(degToRad(prev))
		n++
	}
	return ea, n, nil
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalize360 reduces an angle to [0, 360).
func normalize360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
