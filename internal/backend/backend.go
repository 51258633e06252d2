// Package backend resolves a solar position method to a ready Calculator.
package backend

import (
	"context"
	"time"

	"github.com/litescript/ls-solpos/internal/ephem"
	"github.com/litescript/ls-solpos/internal/logging"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// ProbeTimeout bounds the oracle availability check.
const ProbeTimeout = 15 * time.Second

// Options configures Select.
type Options struct {
	Logger *logging.Logger

	// Oracle backs MethodHorizons. Nil selects a HorizonsOracle at
	// HorizonsURL.
	Oracle ephem.Oracle

	// HorizonsURL overrides the Horizons API endpoint.
	HorizonsURL string

	// SkipProbe disables the availability check.
	SkipProbe bool
}

// Select returns the Calculator for method. Capability checks happen here,
// once, so that a missing collaborator surfaces as a *solpos.DependencyError
// before any computation starts.
func Select(ctx context.Context, method solpos.Method, opts Options) (solpos.Calculator, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	switch method {
	case solpos.MethodEphemeris:
		return solpos.NewNative(log), nil
	case solpos.MethodAlmanac:
		return solpos.NewAlmanac(log), nil
	case solpos.MethodMeeus:
		return solpos.NewMeeus(log), nil
	case solpos.MethodHorizons:
		oracle := opts.Oracle
		if oracle == nil {
			hopts := []ephem.HorizonsOption{ephem.WithLogger(log)}
			if opts.HorizonsURL != "" {
				hopts = append(hopts, ephem.WithBaseURL(opts.HorizonsURL))
			}
			oracle = ephem.NewHorizonsOracle(hopts...)
		}
		if !opts.SkipProbe {
			pctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
			defer cancel()
			if err := oracle.Available(pctx); err != nil {
				log.Warn("%s unavailable: %v", oracle.Name(), err)
				return nil, &solpos.DependencyError{Method: method, Err: err}
			}
		}
		log.Debug("using %s oracle", oracle.Name())
		return ephem.NewCalculator(oracle, log), nil
	}
	return nil, &solpos.InputError{Index: -1, Field: "method", Reason: "unsupported method " + method.String()}
}

// Distance returns the DistanceSource for method, or nil when the method
// cannot report the earth-sun distance.
func Distance(calc solpos.Calculator) solpos.DistanceSource {
	switch c := calc.(type) {
	case *ephem.Calculator:
		return c.Oracle()
	case solpos.DistanceSource:
		return c
	}
	return nil
}
