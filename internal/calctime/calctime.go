// Package calctime finds the instant at which a solar position attribute
// reaches a target value.
package calctime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-solpos/internal/rootfind"
	"github.com/litescript/ls-solpos/internal/solpos"
	"github.com/litescript/ls-solpos/internal/timeutil"
)

// DefaultXTol is the default absolute tolerance on the root, in days.
const DefaultXTol = 1e-12

// Query describes one solve.
type Query struct {
	Lower, Upper time.Time
	Location     solpos.Location
	Attribute    solpos.Attribute
	Value        float64 // degrees, or hours for solar time
	Atmosphere   solpos.Atmosphere
	XTol         float64 // days; zero means DefaultXTol
}

// CalcTime returns the time between lower and upper at which attr equals
// value according to calc. The result is expressed in the location's zone.
// The attribute minus the target must change sign over the interval,
// otherwise an *solpos.InputError is returned. Azimuth and solar time
// wrap at 360 and 24; the interval must not contain the wrap.
func CalcTime(ctx context.Context, calc solpos.Calculator, lower, upper time.Time, loc solpos.Location,
	attr solpos.Attribute, value float64, atm solpos.Atmosphere, xtol float64) (time.Time, error) {
	return Solve(ctx, calc, Query{
		Lower:      lower,
		Upper:      upper,
		Location:   loc,
		Attribute:  attr,
		Value:      value,
		Atmosphere: atm,
		XTol:       xtol,
	})
}

// Solve is CalcTime with its arguments in a Query.
func Solve(ctx context.Context, calc solpos.Calculator, q Query) (time.Time, error) {
	if q.Lower.IsZero() || q.Upper.IsZero() {
		return time.Time{}, &solpos.InputError{Index: -1, Field: "bounds", Reason: "zero time"}
	}
	if !isFinite(q.Value) {
		return time.Time{}, &solpos.InputError{Index: -1, Field: "value", Reason: "not finite"}
	}
	xtol := q.XTol
	if xtol == 0 {
		xtol = DefaultXTol
	}
	if !(xtol > 0) || !isFinite(xtol) {
		return time.Time{}, &solpos.InputError{Index: -1, Field: "xtol", Reason: fmt.Sprintf("%v is not a positive tolerance", xtol)}
	}
	if err := q.Location.Validate(); err != nil {
		return time.Time{}, err
	}
	zone, err := q.Location.Zone()
	if err != nil {
		return time.Time{}, err
	}
	// Probe the attribute name before solving.
	if _, err := (solpos.Position{}).Value(q.Attribute); err != nil {
		return time.Time{}, err
	}

	f := func(djd float64) (float64, error) {
		t := timeutil.DublinJulianTime(djd)
		res, err := calc.SolarPosition(ctx, []time.Time{t}, q.Location, q.Atmosphere)
		if err != nil {
			return 0, err
		}
		v, err := res.Positions[0].Value(q.Attribute)
		if err != nil {
			return 0, err
		}
		return v - q.Value, nil
	}

	lb := timeutil.DublinJulianDay(q.Lower)
	ub := timeutil.DublinJulianDay(q.Upper)
	root, err := rootfind.Brent(f, lb, ub, xtol, rootfind.DefaultMaxIter)
	switch {
	case errors.Is(err, rootfind.ErrNotBracketed):
		return time.Time{}, &solpos.InputError{Index: -1, Field: string(q.Attribute),
			Reason: fmt.Sprintf("%g not bracketed between %s and %s",
				q.Value, q.Lower.Format(time.RFC3339), q.Upper.Format(time.RFC3339))}
	case err != nil:
		return time.Time{}, err
	}
	return timeutil.FromDayFraction(root, zone), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
