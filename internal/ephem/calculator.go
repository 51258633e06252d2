package ephem

import (
	"context"
	"math"
	"time"

	"github.com/litescript/ls-solpos/internal/astro"
	"github.com/litescript/ls-solpos/internal/logging"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// Calculator computes solar positions from an Oracle. It issues a
// refracted query for the apparent position and an airless query for the
// true position.
//
// The oracle applies its own standard atmosphere; the pressure and
// temperature in Atmosphere are validated but not transmitted. Solar time
// is not available and is reported as NaN.
type Calculator struct {
	oracle Oracle
	log    *logging.Logger
}

// NewCalculator returns a Calculator backed by oracle. A nil logger
// discards output.
func NewCalculator(oracle Oracle, log *logging.Logger) *Calculator {
	if log == nil {
		log = logging.Discard()
	}
	return &Calculator{oracle: oracle, log: log.Named("oracle")}
}

// Method implements solpos.Calculator.
func (c *Calculator) Method() solpos.Method { return solpos.MethodHorizons }

// Oracle returns the underlying oracle.
func (c *Calculator) Oracle() Oracle { return c.oracle }

// SolarPosition implements solpos.Calculator.
func (c *Calculator) SolarPosition(ctx context.Context, instants []time.Time, loc solpos.Location, atm solpos.Atmosphere) (*solpos.Result, error) {
	utc, zone, err := solpos.Prepare(instants, loc, atm)
	if err != nil {
		return nil, err
	}
	if len(atm.Pressure)+len(atm.Temperature) > 0 {
		c.log.Debug("%s ignored; %s applies a standard atmosphere", atm, c.oracle.Name())
	}

	res := &solpos.Result{
		Method:    solpos.MethodHorizons,
		Location:  loc,
		Positions: make([]solpos.Position, len(utc)),
	}
	if len(utc) == 0 {
		return res, nil
	}

	obs := astro.Observer{LatDeg: loc.Latitude, LonDeg: loc.Longitude, AltM: loc.Altitude}
	apparent, err := c.oracle.ApparentAltAz(ctx, utc, obs, true)
	if err != nil {
		return nil, err
	}
	airless, err := c.oracle.ApparentAltAz(ctx, utc, obs, false)
	if err != nil {
		return nil, err
	}

	for i, t := range utc {
		res.Positions[i] = solpos.Position{
			Time:              t.In(zone),
			Elevation:         airless[i].ElDeg,
			Azimuth:           airless[i].AzDeg,
			Zenith:            90 - airless[i].ElDeg,
			ApparentElevation: apparent[i].ElDeg,
			ApparentZenith:    90 - apparent[i].ElDeg,
			SolarTime:         math.NaN(),
		}
	}
	return res, nil
}

// EarthSunDistance implements solpos.DistanceSource.
func (c *Calculator) EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error) {
	return c.oracle.EarthSunDistance(ctx, instants)
}
