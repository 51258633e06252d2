package solpos

import (
	"context"
	"time"

	"github.com/litescript/ls-solpos/internal/astro"
	"github.com/litescript/ls-solpos/internal/logging"
)

// Almanac computes positions from the simplified Astronomical Almanac sun
// in package astro. Refraction and solar time follow the native method.
type Almanac struct {
	log *logging.Logger
}

// NewAlmanac returns the almanac calculator. A nil logger discards output.
func NewAlmanac(log *logging.Logger) *Almanac {
	if log == nil {
		log = logging.Discard()
	}
	return &Almanac{log: log.Named("almanac")}
}

// Method implements Calculator.
func (a *Almanac) Method() Method { return MethodAlmanac }

// SolarPosition implements Calculator.
func (a *Almanac) SolarPosition(ctx context.Context, instants []time.Time, loc Location, atm Atmosphere) (*Result, error) {
	utc, zone, err := prepare(instants, loc, atm)
	if err != nil {
		return nil, err
	}
	a.log.Debug("location=%s, instants=%d", loc, len(utc))

	obs := astro.Observer{LatDeg: loc.Latitude, LonDeg: loc.Longitude, AltM: loc.Altitude}
	res := &Result{
		Method:    MethodAlmanac,
		Location:  loc,
		Positions: make([]Position, len(utc)),
	}
	for i, t := range utc {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sc := astro.SunHorizontal(obs, t)
		p, temp := atm.At(i)
		corr := Correct(sc.ElDeg, p, temp)
		res.Positions[i] = Position{
			Time:              t.In(zone),
			Elevation:         sc.ElDeg,
			Azimuth:           sc.AzDeg,
			Zenith:            90 - sc.ElDeg,
			ApparentElevation: corr.ApparentElevation,
			ApparentZenith:    corr.ApparentZenith,
			SolarTime:         SolarTime(sc.HADeg),
		}
	}
	return res, nil
}

// EarthSunDistance implements DistanceSource.
func (a *Almanac) EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error) {
	out := make([]float64, len(instants))
	for i, t := range instants {
		if t.IsZero() {
			return nil, &InputError{Index: i, Field: "time", Reason: "zero time"}
		}
		out[i] = astro.SunDistance(t)
	}
	return out, ctx.Err()
}
