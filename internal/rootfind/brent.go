// Package rootfind finds roots of scalar functions on a bracket.
package rootfind

import (
	"errors"
	"fmt"
	"math"
)

// DefaultMaxIter bounds the number of Brent iterations.
const DefaultMaxIter = 100

// rtol is the relative tolerance added to xtol, four machine epsilons.
const rtol = 4 * 2.220446049250313e-16

var (
	// ErrNotBracketed is returned when f(a) and f(b) have the same sign.
	ErrNotBracketed = errors.New("root not bracketed")

	// ErrMaxIter is returned when the tolerance is not met in time.
	ErrMaxIter = errors.New("root finder exceeded iteration limit")
)

// Func is a scalar function whose evaluation may fail.
type Func func(x float64) (float64, error)

// Brent finds x in [a, b] with f(x) = 0 using Brent's method. f(a) and
// f(b) must have opposite signs (or one of them be zero). The result is
// within xtol + 4*eps*|x| of a root. Errors from f are returned as is.
func Brent(f Func, a, b, xtol float64, maxIter int) (float64, error) {
	if !(xtol > 0) {
		return 0, fmt.Errorf("xtol must be positive, got %v", xtol)
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	fa, err := f(a)
	if err != nil {
		return 0, err
	}
	fb, err := f(b)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, fmt.Errorf("%w: f is NaN at an endpoint", ErrNotBracketed)
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if math.Signbit(fa) == math.Signbit(fb) {
		return 0, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNotBracketed, a, fa, b, fb)
	}

	// b is the best estimate, c the contrapoint, so that f(b) and f(c)
	// always straddle zero.
	c, fc := a, fa
	d := b - a
	e := d
	for i := 0; i < maxIter; i++ {
		if math.Signbit(fb) == math.Signbit(fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, fa = b, fb
			b, fb = c, fc
			c, fc = a, fa
		}

		tol := xtol/2 + rtol*math.Abs(b)/2
		m := (c - b) / 2
		if math.Abs(m) <= tol || fb == 0 {
			return b, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, or secant when a == c.
			var p, q float64
			s := fb / fa
			if a == c {
				p = 2 * m * s
				q = 1 - s
			} else {
				qa := fa / fc
				r := fb / fc
				p = s * (2*m*qa*(qa-r) - (b-a)*(r-1))
				q = (qa - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			} else {
				p = -p
			}
			if 2*p < math.Min(3*m*q-math.Abs(tol*q), math.Abs(e*q)) {
				e = d
				d = p / q
			} else {
				d = m
				e = m
			}
		} else {
			d = m
			e = m
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else if m > 0 {
			b += tol
		} else {
			b -= tol
		}
		if fb, err = f(b); err != nil {
			return 0, err
		}
		if math.IsNaN(fb) {
			return 0, fmt.Errorf("f is NaN at %g", b)
		}
	}
	return b, fmt.Errorf("%w (%d)", ErrMaxIter, maxIter)
}
