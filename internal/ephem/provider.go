// Package ephem provides solar ephemeris data from an external oracle.
package ephem

import (
	"context"
	"time"

	"github.com/litescript/ls-solpos/internal/astro"
)

// SunTarget is the NAIF SPICE ID of the Sun.
const SunTarget = 10

// AltAz is the Sun's horizontal position at one instant as reported by
// an oracle.
type AltAz struct {
	Time  time.Time
	AzDeg float64 // 0=N, 90=E
	ElDeg float64
}

// Oracle defines the interface for external solar ephemeris sources.
type Oracle interface {
	// Name returns the oracle name for display/logging.
	Name() string

	// ApparentAltAz returns one AltAz per instant, in order. With refracted
	// set the elevation includes the oracle's atmospheric refraction;
	// otherwise it is the airless (true) position.
	ApparentAltAz(ctx context.Context, instants []time.Time, obs astro.Observer, refracted bool) ([]AltAz, error)

	// EarthSunDistance returns the geocentric distance to the Sun in AU.
	EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error)

	// Available returns nil if the oracle can currently answer queries.
	Available(ctx context.Context) error
}
