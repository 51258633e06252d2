package solpos

import (
	"fmt"

	cerrors "cloudeng.io/errors"
)

// Atmosphere holds ambient pressure (Pa) and temperature (C). Each slice
// is either a single value applied to every instant or one value per
// instant. Empty slices fall back to the defaults.
type Atmosphere struct {
	Pressure    []float64
	Temperature []float64
}

// DefaultAtmosphere returns 101325 Pa and 12 C.
func DefaultAtmosphere() Atmosphere {
	return ScalarAtmosphere(DefaultPressure, DefaultTemperature)
}

// ScalarAtmosphere returns an Atmosphere with one value for all instants.
func ScalarAtmosphere(pressure, temperature float64) Atmosphere {
	return Atmosphere{
		Pressure:    []float64{pressure},
		Temperature: []float64{temperature},
	}
}

// At returns pressure and temperature for instant i.
func (a Atmosphere) At(i int) (pressure, temperature float64) {
	return pick(a.Pressure, i, DefaultPressure), pick(a.Temperature, i, DefaultTemperature)
}

// String implements fmt.Stringer.
func (a Atmosphere) String() string {
	return fmt.Sprintf("pressure=%s temperature=%s", summarize(a.Pressure), summarize(a.Temperature))
}

// Validate checks the atmosphere against a batch of n instants. All
// problems are reported together.
func (a Atmosphere) Validate(n int) error {
	errs := &cerrors.M{}
	errs.Append(validateSeries("pressure", a.Pressure, n, func(p float64) string {
		if p < 0 {
			return "negative"
		}
		return ""
	}))
	errs.Append(validateSeries("temperature", a.Temperature, n, func(t float64) string {
		// The refraction scale 283/(273+T) diverges at T = -273.
		if t <= -273 {
			return "at or below -273 C"
		}
		return ""
	}))
	return errs.Err()
}

func validateSeries(field string, vals []float64, n int, check func(float64) string) error {
	if len(vals) > 1 && len(vals) != n {
		return &InputError{Index: -1, Field: field,
			Reason: fmt.Sprintf("%d values for %d instants", len(vals), n)}
	}
	errs := &cerrors.M{}
	for i, v := range vals {
		if !isFinite(v) {
			errs.Append(&InputError{Index: i, Field: field, Reason: "not finite"})
			continue
		}
		if reason := check(v); reason != "" {
			errs.Append(&InputError{Index: i, Field: field, Reason: reason})
		}
	}
	return errs.Err()
}

func pick(vals []float64, i int, def float64) float64 {
	switch len(vals) {
	case 0:
		return def
	case 1:
		return vals[0]
	}
	return vals[i]
}

func summarize(vals []float64) string {
	switch len(vals) {
	case 0:
		return "default"
	case 1:
		return fmt.Sprintf("%g", vals[0])
	}
	return fmt.Sprintf("[%d values]", len(vals))
}
