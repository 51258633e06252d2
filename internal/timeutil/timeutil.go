// Package timeutil normalizes timestamps: naive or zoned values to UTC
// instants, and Dublin Julian days back to zoned calendar times.
package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrZeroTime is returned for unset (zero) timestamps.
var ErrZeroTime = errors.New("zero timestamp")

// djdEpoch is day 0.0 of the Dublin Julian day count (1899-12-31 12:00 UT).
var djdEpoch = time.Date(1899, time.December, 31, 12, 0, 0, 0, time.UTC)

const nanosPerDay = float64(24 * time.Hour)

// Layouts accepted by Parse. Layouts without an offset are naive and are
// interpreted in the caller's zone.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseError reports a timestamp that could not be parsed.
type ParseError struct {
	Index int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timestamp %d: cannot parse %q", e.Index, e.Value)
}

// Zone loads an IANA zone; "" and "UTC" map to time.UTC.
func Zone(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Parse parses a timestamp. Values without an explicit offset are naive
// and are read as wall-clock time in zone.
func Parse(value string, zone *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, zone)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Index: -1, Value: value}
}

// ParseAll parses every value, reporting the first failure with its index.
func ParseAll(values []string, zone *time.Location) ([]time.Time, error) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := Parse(v, zone)
		if err != nil {
			return nil, &ParseError{Index: i, Value: v}
		}
		out[i] = t
	}
	return out, nil
}

// Localize reinterprets the wall clock of t in zone, discarding t's own
// location. Use it for timestamps that were built naive (in UTC) but mean
// local time.
func Localize(t time.Time, zone *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// ToUTC converts every instant to UTC. Zero times are rejected with the
// index of the first offender.
func ToUTC(instants []time.Time) ([]time.Time, error) {
	out := make([]time.Time, len(instants))
	for i, t := range instants {
		if t.IsZero() {
			return nil, fmt.Errorf("instant %d: %w", i, ErrZeroTime)
		}
		out[i] = t.UTC()
	}
	return out, nil
}

// Range returns instants from start to end inclusive, step apart.
func Range(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %v", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %v before start %v", end, start)
	}
	var out []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out, nil
}

// DublinJulianDay returns the Dublin Julian day of t.
func DublinJulianDay(t time.Time) float64 {
	d := t.UTC().Sub(djdEpoch)
	days := math.Floor(d.Hours() / 24)
	rem := d - time.Duration(days)*24*time.Hour
	return days + float64(rem)/nanosPerDay
}

// DublinJulianTime converts a Dublin Julian day to a UTC time at full
// nanosecond resolution.
func DublinJulianTime(djd float64) time.Time {
	days := math.Floor(djd)
	return djdEpoch.AddDate(0, 0, int(days)).Add(time.Duration((djd - days) * nanosPerDay))
}

// FromDayFraction converts a Dublin Julian day into a time in zone,
// rounded to the microsecond.
func FromDayFraction(djd float64, zone *time.Location) time.Time {
	return DublinJulianTime(djd).Round(time.Microsecond).In(zone)
}
