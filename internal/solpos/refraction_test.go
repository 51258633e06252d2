package solpos

import (
	"math"
	"testing"
)

func TestRefraction(t *testing.T) {
	tests := []struct {
		name      string
		elevation float64
		want      float64
	}{
		{"upper cutoff", 85, 0.0014020483298462557},
		{"above upper cutoff", 85.0001, 0},
		{"zenith", 90, 0},
		{"mid sky", 45, 0.016006349257309944},
		{"low sky", 10, 0.08750312278699986},
		{"tan branch just above 5", 5.0000001, 0.15896920535369513},
		{"polynomial branch at 5", 5.0, 0.15849792884990255},
		{"horizon", 0, 0.47856237816764136},
		{"just below horizon", -0.5, 0.5576129357334308},
		{"polynomial lower edge", -0.575, 0.570951751465461},
		{"inverse tan branch", -0.8, 0.4103586794011857},
		{"lower cutoff", -1.0, 0},
		{"below lower cutoff", -1.0000001, 0},
		{"night", -45, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Refraction(tt.elevation, DefaultPressure, DefaultTemperature)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Refraction(%v) = %.17g, want %.17g", tt.elevation, got, tt.want)
			}
		})
	}
}

func TestRefraction_Scaling(t *testing.T) {
	base := Refraction(10, DefaultPressure, DefaultTemperature)

	if got := Refraction(10, 0, DefaultTemperature); got != 0 {
		t.Errorf("zero pressure refraction = %v, want 0", got)
	}
	if got := Refraction(10, 2*DefaultPressure, DefaultTemperature); math.Abs(got-2*base) > 1e-15 {
		t.Errorf("doubled pressure refraction = %v, want %v", got, 2*base)
	}

	// Warmer air refracts less.
	if warm := Refraction(10, DefaultPressure, 35); warm >= base {
		t.Errorf("refraction at 35C = %v, want less than %v", warm, base)
	}
	if got, want := Refraction(10, DefaultPressure, 10), base*(285.0/283.0); math.Abs(got-want) > 1e-15 {
		t.Errorf("refraction at 10C = %v, want %v", got, want)
	}
}

func TestCorrect(t *testing.T) {
	c := Correct(10, DefaultPressure, DefaultTemperature)
	if c.ApparentElevation != 10+c.Refraction {
		t.Errorf("ApparentElevation = %v, want %v", c.ApparentElevation, 10+c.Refraction)
	}
	if c.ApparentZenith != 90-c.ApparentElevation {
		t.Errorf("ApparentZenith = %v, want %v", c.ApparentZenith, 90-c.ApparentElevation)
	}

	c = Correct(-30, DefaultPressure, DefaultTemperature)
	if c.Refraction != 0 || c.ApparentElevation != -30 {
		t.Errorf("Correct(-30) = %+v, want no refraction", c)
	}
}
