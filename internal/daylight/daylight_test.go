package daylight

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-solpos/internal/solpos"
)

var denver = solpos.Location{Latitude: 39.75, Longitude: -105.0}

func within(t *testing.T, name string, got, want time.Time, tol time.Duration) {
	t.Helper()
	if d := got.Sub(want); d < -tol || d > tol {
		t.Errorf("%s = %v, want %v ± %v", name, got, want, tol)
	}
}

func TestForDate_Denver(t *testing.T) {
	day, err := ForDate(context.Background(), solpos.NewNative(nil), time.Date(2003, 10, 17, 0, 0, 0, 0, time.UTC), denver)
	if err != nil {
		t.Fatalf("ForDate() error: %v", err)
	}
	if day.Polar() {
		t.Fatal("Denver reported as polar")
	}

	within(t, "SolarNoon", day.SolarNoon, time.Date(2003, 10, 17, 18, 45, 22, 942397000, time.UTC), 10*time.Millisecond)
	within(t, "Sunrise", day.Sunrise, time.Date(2003, 10, 17, 13, 14, 0, 0, time.UTC), 5*time.Minute)
	within(t, "Sunset", day.Sunset, time.Date(2003, 10, 18, 0, 17, 0, 0, time.UTC), 5*time.Minute)

	if math.Abs(day.NoonElevation-40.9451) > 1e-3 {
		t.Errorf("NoonElevation = %v, want 40.9451", day.NoonElevation)
	}
	if day.DayLength < 10*time.Hour+50*time.Minute || day.DayLength > 11*time.Hour+15*time.Minute {
		t.Errorf("DayLength = %v, want about 11h", day.DayLength)
	}
	if !day.Sunrise.Before(day.SolarNoon) || !day.SolarNoon.Before(day.Sunset) {
		t.Errorf("events out of order: %v", day)
	}
}

func TestForDate_Zone(t *testing.T) {
	loc := denver
	loc.TZ = "America/Denver"
	zone, err := time.LoadLocation(loc.TZ)
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Late evening local time still selects the local date.
	day, err := ForDate(context.Background(), solpos.NewNative(nil), time.Date(2003, 10, 17, 23, 0, 0, 0, zone), loc)
	if err != nil {
		t.Fatal(err)
	}
	if got := day.Date.Format(time.DateOnly); got != "2003-10-17" {
		t.Errorf("Date = %s, want 2003-10-17", got)
	}
	if day.SolarNoon.Location().String() != loc.TZ || day.Sunrise.Location().String() != loc.TZ {
		t.Errorf("events not in %s: %v", loc.TZ, day)
	}
	if day.SolarNoon.Hour() != 12 || day.SolarNoon.Minute() != 45 {
		t.Errorf("SolarNoon = %v, want 12:45 MDT", day.SolarNoon)
	}
}

func TestForDate_Polar(t *testing.T) {
	arctic := solpos.Location{Latitude: 80, Longitude: 0}
	tests := []struct {
		name      string
		date      time.Time
		length    time.Duration
		elevation float64
	}{
		{"polar day", time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), 24 * time.Hour, 33.43},
		{"polar night", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), 0, -13.44},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := ForDate(context.Background(), solpos.NewNative(nil), tt.date, arctic)
			if err != nil {
				t.Fatal(err)
			}
			if !day.Polar() {
				t.Fatalf("got rise %v set %v, want none", day.Sunrise, day.Sunset)
			}
			if day.DayLength != tt.length {
				t.Errorf("DayLength = %v, want %v", day.DayLength, tt.length)
			}
			if math.Abs(day.NoonElevation-tt.elevation) > 0.05 {
				t.Errorf("NoonElevation = %v, want %v", day.NoonElevation, tt.elevation)
			}
			within(t, "SolarNoon", day.SolarNoon, tt.date.Add(12*time.Hour), 20*time.Minute)
			if !strings.Contains(day.String(), tt.name) {
				t.Errorf("String() = %q, want %q", day.String(), tt.name)
			}
		})
	}
}

// noSolarTime hides solar time the way oracle-backed calculators do.
type noSolarTime struct {
	solpos.Calculator
}

func (c noSolarTime) SolarPosition(ctx context.Context, instants []time.Time, loc solpos.Location, atm solpos.Atmosphere) (*solpos.Result, error) {
	res, err := c.Calculator.SolarPosition(ctx, instants, loc, atm)
	if err != nil {
		return nil, err
	}
	for i := range res.Positions {
		res.Positions[i].SolarTime = math.NaN()
	}
	return res, nil
}

func TestForDate_MidpointNoon(t *testing.T) {
	calc := noSolarTime{solpos.NewNative(nil)}
	day, err := ForDate(context.Background(), calc, time.Date(2003, 10, 17, 0, 0, 0, 0, time.UTC), denver)
	if err != nil {
		t.Fatal(err)
	}
	mid := day.Sunrise.Add(day.Sunset.Sub(day.Sunrise) / 2)
	if !day.SolarNoon.Equal(mid) {
		t.Errorf("SolarNoon = %v, want midpoint %v", day.SolarNoon, mid)
	}
	within(t, "SolarNoon", day.SolarNoon, time.Date(2003, 10, 17, 18, 45, 0, 0, time.UTC), 5*time.Minute)
}

func TestForDate_BadInput(t *testing.T) {
	ctx := context.Background()
	calc := solpos.NewNative(nil)
	if _, err := ForDate(ctx, calc, time.Time{}, denver); !solpos.IsInputError(err) {
		t.Errorf("zero date: error = %v, want input error", err)
	}
	if _, err := ForDate(ctx, calc, time.Now(), solpos.Location{Latitude: -91}); !solpos.IsInputError(err) {
		t.Errorf("bad latitude: error = %v, want input error", err)
	}
}
