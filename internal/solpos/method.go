package solpos

import (
	"fmt"
	"strings"
)

// Method selects a solar position algorithm.
type Method int

const (
	MethodEphemeris Method = iota // native 1985 ephemeris (default)
	MethodAlmanac                 // simplified Astronomical Almanac sun
	MethodMeeus                   // Meeus, Astronomical Algorithms
	MethodHorizons                // JPL Horizons oracle
)

// Methods lists every method in display order.
var Methods = []Method{MethodEphemeris, MethodAlmanac, MethodMeeus, MethodHorizons}

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodEphemeris:
		return "ephemeris"
	case MethodAlmanac:
		return "almanac"
	case MethodMeeus:
		return "meeus"
	case MethodHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMethod parses a method name, case-insensitively. An empty string
// selects MethodEphemeris.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ephemeris":
		return MethodEphemeris, nil
	case "almanac":
		return MethodAlmanac, nil
	case "meeus":
		return MethodMeeus, nil
	case "horizons", "oracle":
		return MethodHorizons, nil
	}
	return MethodEphemeris, &InputError{Index: -1, Field: "method", Reason: fmt.Sprintf("invalid solar position method %q", s)}
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
