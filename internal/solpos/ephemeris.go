package solpos

import (
	"context"
	"time"

	"github.com/litescript/ls-solpos/internal/logging"
)

// Stages exposes every intermediate of the native pipeline for one instant.
type Stages struct {
	UTC        time.Time
	Orbit      OrbitalState
	HourAngle  HourAngle
	Horizontal HorizontalPosition
	Correction AtmosphericCorrection
	SolarTime  float64
}

// Native is the native ephemeris calculator.
type Native struct {
	log *logging.Logger
}

// NewNative returns the native calculator. A nil logger discards output.
func NewNative(log *logging.Logger) *Native {
	if log == nil {
		log = logging.Discard()
	}
	return &Native{log: log.Named("ephemeris")}
}

// Method implements Calculator.
func (n *Native) Method() Method { return MethodEphemeris }

// SolarPosition implements Calculator.
func (n *Native) SolarPosition(ctx context.Context, instants []time.Time, loc Location, atm Atmosphere) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.compute(instants, loc, atm)
}

// Ephemeris runs the native algorithm without logging.
func Ephemeris(instants []time.Time, loc Location, atm Atmosphere) (*Result, error) {
	return NewNative(nil).compute(instants, loc, atm)
}

func (n *Native) compute(instants []time.Time, loc Location, atm Atmosphere) (*Result, error) {
	utc, zone, err := prepare(instants, loc, atm)
	if err != nil {
		return nil, err
	}
	n.log.Debug("location=%s, temperature=%s, pressure=%s",
		loc, summarize(atm.Temperature), summarize(atm.Pressure))

	res := &Result{
		Method:    MethodEphemeris,
		Location:  loc,
		Positions: make([]Position, len(utc)),
	}
	for i, t := range utc {
		p, t2 := atm.At(i)
		st, err := computeStages(t, loc, p, t2)
		if err != nil {
			if ce, ok := err.(*ConvergenceError); ok {
				ce.Index = i
			}
			return nil, err
		}
		res.Positions[i] = Position{
			Time:              t.In(zone),
			Elevation:         st.Horizontal.Elevation,
			Azimuth:           st.Horizontal.Azimuth,
			Zenith:            st.Horizontal.Zenith,
			ApparentElevation: st.Correction.ApparentElevation,
			ApparentZenith:    st.Correction.ApparentZenith,
			SolarTime:         st.SolarTime,
		}
	}
	return res, nil
}

// Trace runs the native pipeline for one instant and returns every stage.
func Trace(t time.Time, loc Location, pressure, temperature float64) (Stages, error) {
	if _, _, err := prepare([]time.Time{t}, loc, ScalarAtmosphere(pressure, temperature)); err != nil {
		return Stages{}, err
	}
	st, err := computeStages(t.UTC(), loc, pressure, temperature)
	if ce, ok := err.(*ConvergenceError); ok {
		ce.Index = 0
	}
	return st, err
}

func computeStages(t time.Time, loc Location, pressure, temperature float64) (Stages, error) {
	// Longitudes are taken east-positive but the formulation is west-positive.
	westLon := -1 * loc.Longitude

	ep := newEpoch(t)
	orbit, err := OrbitalElements(ep.date)
	if err != nil {
		return Stages{}, err
	}
	ha := computeHourAngle(ep, westLon, orbit.RightAscension)
	hz := Horizontal(degToRad(loc.Latitude), degToRad(orbit.Declination), ha.Radians)

	return Stages{
		UTC:        t,
		Orbit:      orbit,
		HourAngle:  ha,
		Horizontal: hz,
		Correction: Correct(hz.Elevation, pressure, temperature),
		SolarTime:  SolarTime(ha.Degrees),
	}, nil
}
