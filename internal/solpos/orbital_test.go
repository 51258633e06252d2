package solpos

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestEpochDate(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
		want float64
	}{
		{"1900 epoch", time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), -0.5},
		{"one day later", time.Date(1900, 1, 2, 0, 0, 0, 0, time.UTC), 0.5},
		{"noon on day one", time.Date(1900, 1, 1, 12, 0, 0, 0, time.UTC), 0},
		{"reference instant", time.Date(2003, 10, 17, 19, 30, 30, 0, time.UTC), 37910.3128472},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpochDate(tt.time); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("EpochDate() = %.7f, want %.7f", got, tt.want)
			}
		})
	}
}

func TestSolveKepler_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(1985))
	for i := 0; i < 2000; i++ {
		m := rng.Float64() * 360
		e := rng.Float64() * 0.02

		ea, n, err := SolveKepler(m, e, MaxKeplerIterations)
		if err != nil {
			t.Fatalf("SolveKepler(%v, %v) error: %v", m, e, err)
		}
		if n > MaxKeplerIterations {
			t.Fatalf("SolveKepler(%v, %v) used %d iterations", m, e, n)
		}
		residual := ea - m - radToDeg(e)*math.Sin(degToRad(ea))
		if math.Abs(residual) > 1e-4 {
			t.Fatalf("SolveKepler(%v, %v) = %v, residual %v", m, e, ea, residual)
		}
	}
}

func TestSolveKepler_Circular(t *testing.T) {
	ea, n, err := SolveKepler(123.4, 0, MaxKeplerIterations)
	if err != nil {
		t.Fatal(err)
	}
	if ea != 123.4 {
		t.Errorf("E = %v, want M for a circular orbit", ea)
	}
	if n != 1 {
		t.Errorf("iterations = %d, want 1", n)
	}
}

func TestSolveKepler_NotConverged(t *testing.T) {
	_, n, err := SolveKepler(90, 0.0167, 1)
	if err == nil {
		t.Fatal("expected convergence error with one iteration allowed")
	}
	if !errors.Is(err, ErrConvergence) {
		t.Errorf("error %v is not ErrConvergence", err)
	}
	var ce *ConvergenceError
	if !errors.As(err, &ce) {
		t.Fatalf("error %T is not *ConvergenceError", err)
	}
	if ce.Iterations != 1 || n != 1 {
		t.Errorf("Iterations = %d (returned %d), want 1", ce.Iterations, n)
	}
	if ce.Residual <= keplerTolerance {
		t.Errorf("Residual = %v, want > %v", ce.Residual, keplerTolerance)
	}
}

func TestOrbitalElements(t *testing.T) {
	st, err := OrbitalElements(37910.3128472)
	if err != nil {
		t.Fatal(err)
	}
	if st.MeanAnomaly < 0 || st.MeanAnomaly >= 360 {
		t.Errorf("MeanAnomaly %v out of [0, 360)", st.MeanAnomaly)
	}
	if st.TrueAnomaly < 0 || st.TrueAnomaly >= 720 {
		t.Errorf("TrueAnomaly %v out of [0, 720)", st.TrueAnomaly)
	}
	if st.Obliquity < 23.43 || st.Obliquity > 23.45 {
		t.Errorf("Obliquity = %v, want ~23.44 for 2003", st.Obliquity)
	}
	if math.Abs(st.Declination) > st.Obliquity+1e-9 {
		t.Errorf("|Declination| %v exceeds obliquity %v", st.Declination, st.Obliquity)
	}
	if st.RightAscension <= -180 || st.RightAscension > 180 {
		t.Errorf("RightAscension %v out of (-180, 180]", st.RightAscension)
	}
}

func TestWrap180(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{181, -179},
		{-181, 179},
		{359, -1},
		{540, 180},
		{-540, 180},
	}
	for _, tt := range tests {
		if got := wrap180(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("wrap180(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
