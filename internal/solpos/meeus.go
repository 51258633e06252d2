package solpos

import (
	"context"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/litescript/ls-solpos/internal/logging"
)

// Meeus computes positions with the apparent solar coordinates of Meeus,
// Astronomical Algorithms, chapter 25, and apparent sidereal time.
//
// Julian ephemeris days are approximated by UT Julian days; the difference
// (delta T, about a minute) is below the accuracy this tool reports.
type Meeus struct {
	log *logging.Logger
}

// NewMeeus returns the Meeus calculator. A nil logger discards output.
func NewMeeus(log *logging.Logger) *Meeus {
	if log == nil {
		log = logging.Discard()
	}
	return &Meeus{log: log.Named("meeus")}
}

// Method implements Calculator.
func (m *Meeus) Method() Method { return MethodMeeus }

// SolarPosition implements Calculator.
func (m *Meeus) SolarPosition(ctx context.Context, instants []time.Time, loc Location, atm Atmosphere) (*Result, error) {
	utc, zone, err := prepare(instants, loc, atm)
	if err != nil {
		return nil, err
	}
	m.log.Debug("location=%s, instants=%d", loc, len(utc))

	lat := unit.AngleFromDeg(loc.Latitude)
	lon := unit.AngleFromDeg(loc.Longitude)
	res := &Result{
		Method:    MethodMeeus,
		Location:  loc,
		Positions: make([]Position, len(utc)),
	}
	for i, t := range utc {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		jd := julian.TimeToJD(t)
		ra, dec := solar.ApparentEquatorial(jd)
		st := sidereal.Apparent(jd)

		ha := wrap180(radToDeg(st.Angle().Rad() + lon.Rad() - ra.Rad()))
		hz := Horizontal(lat.Rad(), dec.Rad(), degToRad(ha))
		p, temp := atm.At(i)
		corr := Correct(hz.Elevation, p, temp)
		res.Positions[i] = Position{
			Time:              t.In(zone),
			Elevation:         hz.Elevation,
			Azimuth:           hz.Azimuth,
			Zenith:            hz.Zenith,
			ApparentElevation: corr.ApparentElevation,
			ApparentZenith:    corr.ApparentZenith,
			SolarTime:         SolarTime(ha),
		}
	}
	return res, nil
}

// EarthSunDistance implements DistanceSource.
func (m *Meeus) EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error) {
	out := make([]float64, len(instants))
	for i, t := range instants {
		if t.IsZero() {
			return nil, &InputError{Index: i, Field: "time", Reason: "zero time"}
		}
		r := solar.Radius(base.J2000Century(julian.TimeToJD(t)))
		if math.IsNaN(r) {
			return nil, &InputError{Index: i, Field: "time", Reason: "outside ephemeris range"}
		}
		out[i] = r
	}
	return out, ctx.Err()
}
