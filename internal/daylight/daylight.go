// Package daylight reports the daily sun events for a location: sunrise,
// sunset, solar noon and the elevation at noon.
package daylight

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/litescript/ls-solpos/internal/calctime"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// noonWindow is half the bracket searched around the mean solar noon.
const noonWindow = 3 * time.Hour

// Day holds the sun events of one calendar date. Times are in the
// location's zone. Sunrise and Sunset are zero during polar day or polar
// night; DayLength is then 24h or 0.
type Day struct {
	Date          time.Time
	Sunrise       time.Time
	Sunset        time.Time
	SolarNoon     time.Time
	DayLength     time.Duration
	NoonElevation float64 // degrees, true (unrefracted)
}

// Polar reports whether the sun neither rises nor sets on the day.
func (d Day) Polar() bool {
	return d.Sunrise.IsZero() && d.Sunset.IsZero()
}

func (d Day) String() string {
	if d.Polar() {
		kind := "polar night"
		if d.DayLength > 0 {
			kind = "polar day"
		}
		return fmt.Sprintf("%s: %s, noon %s at %.2f°",
			d.Date.Format(time.DateOnly), kind, d.SolarNoon.Format(time.TimeOnly), d.NoonElevation)
	}
	return fmt.Sprintf("%s: rise %s, noon %s at %.2f°, set %s (%s)",
		d.Date.Format(time.DateOnly), d.Sunrise.Format(time.TimeOnly),
		d.SolarNoon.Format(time.TimeOnly), d.NoonElevation,
		d.Sunset.Format(time.TimeOnly), d.DayLength.Round(time.Second))
}

// ForDate computes the events of the calendar date of date, read in the
// location's zone. Solar noon is solved on calc; when calc has no solar
// time it falls back to the midpoint of sunrise and sunset.
func ForDate(ctx context.Context, calc solpos.Calculator, date time.Time, loc solpos.Location) (Day, error) {
	if err := loc.Validate(); err != nil {
		return Day{}, err
	}
	zone, err := loc.Zone()
	if err != nil {
		return Day{}, err
	}
	if date.IsZero() {
		return Day{}, &solpos.InputError{Index: -1, Field: "date", Reason: "zero time"}
	}
	local := date.In(zone)
	y, m, d := local.Date()
	day := Day{Date: time.Date(y, m, d, 0, 0, 0, 0, zone)}

	rise, set := sunrise.SunriseSunset(loc.Latitude, loc.Longitude, y, m, d)
	if !rise.IsZero() && !set.IsZero() {
		day.Sunrise = rise.In(zone)
		day.Sunset = set.In(zone)
		day.DayLength = set.Sub(rise)
	}

	noon, err := solarNoon(ctx, calc, loc, y, m, d, day)
	if err != nil {
		return Day{}, err
	}
	day.SolarNoon = noon.In(zone)

	res, err := calc.SolarPosition(ctx, []time.Time{noon}, loc, solpos.DefaultAtmosphere())
	if err != nil {
		return Day{}, err
	}
	day.NoonElevation = res.Positions[0].Elevation
	if day.Polar() && day.NoonElevation > 0 {
		day.DayLength = 24 * time.Hour
	}
	return day, nil
}

// meanNoon is 12:00 local mean solar time on the given UTC date.
func meanNoon(lon float64, y int, m time.Month, d int) time.Time {
	offset := time.Duration(-lon / 15 * float64(time.Hour))
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Add(offset)
}

func solarNoon(ctx context.Context, calc solpos.Calculator, loc solpos.Location, y int, m time.Month, d int, day Day) (time.Time, error) {
	mean := meanNoon(loc.Longitude, y, m, d)
	probe, err := calc.SolarPosition(ctx, []time.Time{mean}, loc, solpos.DefaultAtmosphere())
	if err != nil {
		return time.Time{}, err
	}
	if math.IsNaN(probe.Positions[0].SolarTime) {
		if day.Polar() {
			return mean, nil
		}
		return day.Sunrise.Add(day.Sunset.Sub(day.Sunrise) / 2), nil
	}
	return calctime.CalcTime(ctx, calc, mean.Add(-noonWindow), mean.Add(noonWindow), loc,
		solpos.AttrSolarTime, 12, solpos.DefaultAtmosphere(), calctime.DefaultXTol)
}
