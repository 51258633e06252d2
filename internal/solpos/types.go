// Package solpos computes the apparent position of the sun for a location
// and a batch of instants.
//
// The native algorithm (Method Ephemeris) is the 1985 Sandia "engineering
// astronomy" formulation: orbital elements from fixed polynomials, an
// iterative Kepler solve, sidereal time, a horizontal-coordinate rotation and
// an empirical refraction table. It is known to be less accurate than SPA
// (roughly within 1 degree). Other methods implement the same Calculator
// interface.
package solpos

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-solpos/internal/timeutil"
)

// Default atmosphere used when the caller does not supply one.
const (
	DefaultPressure    = 101325.0 // Pa
	DefaultTemperature = 12.0     // degrees C
)

// Location is an observer site.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`   // degrees, north positive
	Longitude float64 `json:"longitude" yaml:"longitude"` // degrees, east positive
	Altitude  float64 `json:"altitude" yaml:"altitude"`   // meters
	TZ        string  `json:"tz" yaml:"tz"`               // IANA zone name, empty means UTC
}

// String implements fmt.Stringer.
func (l Location) String() string {
	tz := l.TZ
	if tz == "" {
		tz = "UTC"
	}
	return fmt.Sprintf("Location(lat=%.4f, lon=%.4f, alt=%.0fm, tz=%s)",
		l.Latitude, l.Longitude, l.Altitude, tz)
}

// Zone returns the location's time zone.
func (l Location) Zone() (*time.Location, error) {
	zone, err := timeutil.Zone(l.TZ)
	if err != nil {
		return nil, &InputError{Index: -1, Field: "tz", Reason: err.Error()}
	}
	return zone, nil
}

// Validate checks that the location is usable.
func (l Location) Validate() error {
	switch {
	case !isFinite(l.Latitude) || math.Abs(l.Latitude) > 90:
		return &InputError{Index: -1, Field: "latitude", Reason: fmt.Sprintf("%v out of range [-90, 90]", l.Latitude)}
	case !isFinite(l.Longitude) || math.Abs(l.Longitude) > 180:
		return &InputError{Index: -1, Field: "longitude", Reason: fmt.Sprintf("%v out of range [-180, 180]", l.Longitude)}
	case !isFinite(l.Altitude):
		return &InputError{Index: -1, Field: "altitude", Reason: "not finite"}
	}
	_, err := l.Zone()
	return err
}

// OrbitalState holds the intermediate orbital quantities for one instant.
// All angles are in degrees.
type OrbitalState struct {
	EpochDate         float64 // days since the 1900 epoch
	T                 float64 // Julian centuries since the 1900 epoch
	MeanAnomaly       float64
	Eccentricity      float64 // dimensionless
	EccentricAnomaly  float64
	Iterations        int // Kepler iterations used
	TrueAnomaly       float64
	EclipticLongitude float64
	Obliquity         float64
	Declination       float64
	RightAscension    float64
}

// HorizontalPosition is the true (unrefracted) topocentric position.
type HorizontalPosition struct {
	Elevation float64 // degrees above the horizon
	Azimuth   float64 // degrees east of north, [0, 360)
	Zenith    float64 // 90 - Elevation
}

// AtmosphericCorrection is the refraction applied to a true elevation.
type AtmosphericCorrection struct {
	Refraction        float64 // degrees
	ApparentElevation float64
	ApparentZenith    float64
}

// Position is one row of a solar position result.
type Position struct {
	Time              time.Time `json:"time"`
	Elevation         float64   `json:"elevation"`
	Azimuth           float64   `json:"azimuth"`
	Zenith            float64   `json:"zenith"`
	ApparentElevation float64   `json:"apparent_elevation"`
	ApparentZenith    float64   `json:"apparent_zenith"`
	SolarTime         float64   `json:"solar_time"` // decimal hours, noon is 12.00; NaN when the method has none
}

// Attribute selects a scalar field of a Position.
type Attribute string

const (
	AttrElevation         Attribute = "elevation"
	AttrApparentElevation Attribute = "apparent_elevation"
	AttrAzimuth           Attribute = "azimuth"
	AttrZenith            Attribute = "zenith"
	AttrApparentZenith    Attribute = "apparent_zenith"
	AttrSolarTime         Attribute = "solar_time"
)

// Value returns the field selected by attr.
func (p Position) Value(attr Attribute) (float64, error) {
	switch attr {
	case AttrElevation:
		return p.Elevation, nil
	case AttrApparentElevation:
		return p.ApparentElevation, nil
	case AttrAzimuth:
		return p.Azimuth, nil
	case AttrZenith:
		return p.Zenith, nil
	case AttrApparentZenith:
		return p.ApparentZenith, nil
	case AttrSolarTime:
		return p.SolarTime, nil
	}
	return 0, &InputError{Index: -1, Field: "attribute", Reason: fmt.Sprintf("unknown attribute %q", attr)}
}

// Result is the output of a Calculator: one Position per input instant,
// in input order, with times expressed in the location's zone.
type Result struct {
	Method    Method     `json:"method"`
	Location  Location   `json:"location"`
	Positions []Position `json:"positions"`
}

// Len returns the number of positions.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Positions)
}

// Calculator computes solar positions for a batch of instants.
type Calculator interface {
	Method() Method
	SolarPosition(ctx context.Context, instants []time.Time, loc Location, atm Atmosphere) (*Result, error)
}

// DistanceSource reports the earth-sun distance in AU.
type DistanceSource interface {
	EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
