package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/litescript/ls-solpos/internal/astro"
)

// fakeHorizons serves observer tables for every epoch in TLIST. Azimuth
// and elevation encode the request so tests can check what was asked.
type fakeHorizons struct {
	requests atomic.Int32
	last     atomic.Value
	status   int
	dropRows int
}

func (f *fakeHorizons) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	q := r.URL.Query()
	f.last.Store(q)

	if f.status != 0 {
		http.Error(w, "service unavailable", f.status)
		return
	}
	if q.Get("COMMAND") != "'10'" {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown target " + q.Get("COMMAND")})
		return
	}

	var b strings.Builder
	b.WriteString("header\n$$SOE\n")
	tlist := strings.Fields(q.Get("TLIST"))
	for i := 0; i < len(tlist)-f.dropRows; i++ {
		jd, err := strconv.ParseFloat(strings.Trim(tlist[i], "'"), 64)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t := time.Unix(0, 0).UTC().Add(time.Duration((jd - 2440587.5) * 86400 * float64(time.Second))).Round(time.Second)
		switch q.Get("QUANTITIES") {
		case "'20'":
			fmt.Fprintf(&b, " %s     %.14f  -0.1935613\n", t.Format("2006-Jan-02 15:04:05"), 0.99659326747803)
		default:
			el := 39.872046
			if q.Get("APPARENT") == "REFRACTED" {
				el += 0.019
			}
			fmt.Fprintf(&b, " %s *m  %.6f  %.6f\n", t.Format("2006-Jan-02 15:04:05"), 194.34024+float64(i), el)
		}
	}
	b.WriteString("$$EOE\nfooter\n")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"signature": map[string]string{"version": "1.2", "source": "test"},
		"result":    b.String(),
	})
}

func newTestOracle(t *testing.T, f *fakeHorizons) (*HorizonsOracle, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewHorizonsOracle(WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), srv
}

var golden = astro.Observer{LatDeg: 39.742476, LonDeg: -105.1786, AltM: 1830.14}

func TestHorizonsOracle_ApparentAltAz(t *testing.T) {
	f := &fakeHorizons{}
	o, _ := newTestOracle(t, f)

	instants := []time.Time{
		time.Date(2003, 10, 17, 19, 30, 30, 0, time.UTC),
		time.Date(2003, 10, 17, 20, 30, 30, 0, time.UTC),
	}
	got, err := o.ApparentAltAz(context.Background(), instants, golden, true)
	if err != nil {
		t.Fatalf("ApparentAltAz() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].AzDeg != 194.34024 || got[1].AzDeg != 195.34024 {
		t.Errorf("rows out of order: %+v", got)
	}
	if math.Abs(got[0].ElDeg-39.891046) > 1e-9 {
		t.Errorf("ElDeg = %v, want refracted 39.891046", got[0].ElDeg)
	}
	if !got[1].Time.Equal(instants[1]) {
		t.Errorf("Time = %v, want %v", got[1].Time, instants[1])
	}

	q := f.last.Load().(url.Values)
	checks := map[string]string{
		"CENTER":     "'coord@399'",
		"COORD_TYPE": "GEODETIC",
		"SITE_COORD": "'-105.178600,39.742476,1.8301'",
		"APPARENT":   "REFRACTED",
		"TLIST_TYPE": "JD",
		"EPHEM_TYPE": "OBSERVER",
	}
	for k, want := range checks {
		if v := q.Get(k); v != want {
			t.Errorf("param %s = %q, want %q", k, v, want)
		}
	}

	if _, err := o.ApparentAltAz(context.Background(), instants, golden, false); err != nil {
		t.Fatal(err)
	}
	if v := q.Get("APPARENT"); v != "REFRACTED" {
		t.Errorf("stored query mutated: %q", v)
	}
	if v := f.last.Load().(url.Values).Get("APPARENT"); v != "AIRLESS" {
		t.Errorf("airless query sent APPARENT=%q", v)
	}
}

func TestHorizonsOracle_Cache(t *testing.T) {
	f := &fakeHorizons{}
	o, _ := newTestOracle(t, f)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return clock }

	instants := []time.Time{time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}
	for i := 0; i < 3; i++ {
		if _, err := o.EarthSunDistance(context.Background(), instants); err != nil {
			t.Fatal(err)
		}
	}
	if n := f.requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 (cached)", n)
	}

	clock = clock.Add(CacheTTL)
	if _, err := o.EarthSunDistance(context.Background(), instants); err != nil {
		t.Fatal(err)
	}
	if n := f.requests.Load(); n != 2 {
		t.Errorf("requests = %d, want 2 after TTL", n)
	}

	o.InvalidateCache()
	if _, err := o.EarthSunDistance(context.Background(), instants); err != nil {
		t.Fatal(err)
	}
	if n := f.requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3 after invalidation", n)
	}
}

func TestHorizonsOracle_Batches(t *testing.T) {
	f := &fakeHorizons{}
	o, _ := newTestOracle(t, f)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	instants := make([]time.Time, 2*maxTList+7)
	for i := range instants {
		instants[i] = start.Add(time.Duration(i) * time.Hour)
	}
	got, err := o.EarthSunDistance(context.Background(), instants)
	if err != nil {
		t.Fatalf("EarthSunDistance() error: %v", err)
	}
	if len(got) != len(instants) {
		t.Fatalf("got %d distances, want %d", len(got), len(instants))
	}
	if n := f.requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
	if got[0] != 0.99659326747803 {
		t.Errorf("distance = %v", got[0])
	}
}

func TestHorizonsOracle_Errors(t *testing.T) {
	instants := []time.Time{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}

	t.Run("status", func(t *testing.T) {
		o, _ := newTestOracle(t, &fakeHorizons{status: http.StatusServiceUnavailable})
		_, err := o.EarthSunDistance(context.Background(), instants)
		if err == nil || !strings.Contains(err.Error(), "status 503") {
			t.Errorf("error = %v, want status 503", err)
		}
	})

	t.Run("missing rows", func(t *testing.T) {
		o, _ := newTestOracle(t, &fakeHorizons{dropRows: 1})
		_, err := o.EarthSunDistance(context.Background(), instants)
		if err == nil || !strings.Contains(err.Error(), "0 rows for 1 epochs") {
			t.Errorf("error = %v, want row count mismatch", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		o, srv := newTestOracle(t, &fakeHorizons{})
		srv.Close()
		if err := o.Available(context.Background()); err == nil {
			t.Error("Available() = nil for closed server")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		o, _ := newTestOracle(t, &fakeHorizons{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := o.EarthSunDistance(ctx, instants); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestParseHorizonsResponse_Error(t *testing.T) {
	_, err := parseHorizonsResponse([]byte(`{"error":"Cannot interpret date"}`))
	if err == nil || !strings.Contains(err.Error(), "Cannot interpret date") {
		t.Errorf("error = %v, want API error text", err)
	}

	_, err = parseHorizonsResponse([]byte(`{"result":"no markers"}`))
	if err == nil {
		t.Error("expected error for missing $$SOE/$$EOE")
	}
}

func TestParseEphemerisLine(t *testing.T) {
	tests := []struct {
		line    string
		want    []float64
		wantErr bool
	}{
		{
			line: "2025-Dec-05 00:00 *   261.032124  32.878027",
			want: []float64{261.032124, 32.878027},
		},
		{
			line: "2025-Dec-05 01:00 Cm  270.255103  20.668754",
			want: []float64{270.255103, 20.668754},
		},
		{
			line: "2025-Dec-05 02:50:30  m  285.908122  -1.510301",
			want: []float64{285.908122, -1.510301},
		},
		{
			line: "2003-Oct-17 19:30:30     0.99659326747803  -0.1935613",
			want: []float64{0.99659326747803, -0.1935613},
		},
		{
			line:    "invalid",
			wantErr: true,
		},
		{
			line:    "2025-Dec-05 00:00 * flags only",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		name := tc.line
		if len(name) > 20 {
			name = name[:20]
		}
		t.Run(name, func(t *testing.T) {
			r, err := parseEphemerisLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(r.Values) != len(tc.want) {
				t.Fatalf("Values = %v, want %v", r.Values, tc.want)
			}
			for i := range tc.want {
				if r.Values[i] != tc.want[i] {
					t.Errorf("Values[%d] = %v, want %v", i, r.Values[i], tc.want[i])
				}
			}
		})
	}
}

func TestParseEphemerisLine_NotAvailable(t *testing.T) {
	r, err := parseEphemerisLine("2025-Dec-05 00:00 *  n.a.  n.a.")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Values) != 2 || !math.IsNaN(r.Values[0]) {
		t.Errorf("Values = %v, want two NaN", r.Values)
	}
}
