package rootfind

import (
	"errors"
	"math"
	"testing"
)

func plain(f func(float64) float64) Func {
	return func(x float64) (float64, error) { return f(x), nil }
}

func TestBrent(t *testing.T) {
	tests := []struct {
		name string
		f    func(float64) float64
		a, b float64
		want float64
	}{
		{"linear", func(x float64) float64 { return 2*x - 3 }, 0, 10, 1.5},
		{"sqrt2", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"reversed bracket", func(x float64) float64 { return x*x - 2 }, 2, 0, math.Sqrt2},
		{"cubic", func(x float64) float64 { return x*x*x - x - 2 }, 1, 2, 1.5213797068045676},
		{"cosine", math.Cos, 0, 3, math.Pi / 2},
		{"root at endpoint", func(x float64) float64 { return x - 4 }, 0, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Brent(plain(tt.f), tt.a, tt.b, 1e-12, 0)
			if err != nil {
				t.Fatalf("Brent() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Brent() = %.15g, want %.15g", got, tt.want)
			}
		})
	}
}

func TestBrent_NotBracketed(t *testing.T) {
	_, err := Brent(plain(func(x float64) float64 { return x*x + 1 }), -1, 1, 1e-12, 0)
	if !errors.Is(err, ErrNotBracketed) {
		t.Errorf("error = %v, want ErrNotBracketed", err)
	}
}

func TestBrent_FuncError(t *testing.T) {
	boom := errors.New("boom")
	f := func(x float64) (float64, error) {
		if x != 0 && x != 1 {
			return 0, boom
		}
		return x - 0.3, nil
	}
	if _, err := Brent(f, 0, 1, 1e-15, 0); !errors.Is(err, boom) {
		t.Errorf("error = %v, want function error", err)
	}
}

func TestBrent_MaxIter(t *testing.T) {
	_, err := Brent(plain(math.Sin), 3, 4, 1e-15, 2)
	if !errors.Is(err, ErrMaxIter) {
		t.Errorf("error = %v, want ErrMaxIter", err)
	}
}

func TestBrent_BadTolerance(t *testing.T) {
	if _, err := Brent(plain(math.Sin), 3, 4, 0, 0); err == nil {
		t.Error("expected error for zero xtol")
	}
}

func TestBrent_Evaluations(t *testing.T) {
	n := 0
	f := func(x float64) (float64, error) {
		n++
		return math.Exp(x) - 5, nil
	}
	got, err := Brent(f, 0, 5, 1e-12, 0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-math.Log(5)) > 1e-12 {
		t.Errorf("Brent() = %v, want ln 5", got)
	}
	if n > 30 {
		t.Errorf("used %d evaluations, want superlinear convergence", n)
	}
}
