package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-solpos/internal/astro"
	"github.com/litescript/ls-solpos/internal/logging"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// CacheTTL is how long query results are reused.
	CacheTTL = 5 * time.Minute

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second

	// maxTList bounds the number of epochs sent in one request.
	maxTList = 50
)

// HorizonsOracle queries JPL Horizons for the Sun as seen from a site.
type HorizonsOracle struct {
	client  *http.Client
	baseURL string
	log     *logging.Logger
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]*cachedRows
}

// cachedRows stores the parsed table of one query.
type cachedRows struct {
	rows      []row
	fetchedAt time.Time
}

// row is one line of a Horizons observer table: the epoch and its numeric
// columns in output order.
type row struct {
	Time   time.Time
	Values []float64
}

// HorizonsOption configures a HorizonsOracle.
type HorizonsOption func(*HorizonsOracle)

// WithBaseURL points the oracle at a different API endpoint.
func WithBaseURL(u string) HorizonsOption {
	return func(o *HorizonsOracle) { o.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) HorizonsOption {
	return func(o *HorizonsOracle) { o.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) HorizonsOption {
	return func(o *HorizonsOracle) { o.log = l.Named("horizons") }
}

// NewHorizonsOracle creates a new Horizons API client.
func NewHorizonsOracle(opts ...HorizonsOption) *HorizonsOracle {
	o := &HorizonsOracle{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: HorizonsAPIURL,
		log:     logging.Discard(),
		now:     time.Now,
		cache:   make(map[string]*cachedRows),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name implements Oracle.
func (o *HorizonsOracle) Name() string {
	return "Horizons"
}

// ApparentAltAz implements Oracle.
func (o *HorizonsOracle) ApparentAltAz(ctx context.Context, instants []time.Time, obs astro.Observer, refracted bool) ([]AltAz, error) {
	apparent := "AIRLESS"
	if refracted {
		apparent = "REFRACTED"
	}
	base := url.Values{}
	base.Set("CENTER", "'coord@399'")
	base.Set("COORD_TYPE", "GEODETIC")
	base.Set("SITE_COORD", fmt.Sprintf("'%.6f,%.6f,%.4f'", obs.LonDeg, obs.LatDeg, obs.AltM/1000))
	base.Set("QUANTITIES", "'4'") // 4=Apparent Az/El
	base.Set("APPARENT", apparent)

	rows, err := o.queryAll(ctx, base, instants)
	if err != nil {
		return nil, err
	}

	out := make([]AltAz, len(rows))
	for i, r := range rows {
		if len(r.Values) < 2 {
			return nil, fmt.Errorf("horizons row %d: expected azimuth and elevation, got %d values", i, len(r.Values))
		}
		out[i] = AltAz{Time: instants[i], AzDeg: r.Values[0], ElDeg: r.Values[1]}
	}
	return out, nil
}

// EarthSunDistance implements Oracle and solpos.DistanceSource.
func (o *HorizonsOracle) EarthSunDistance(ctx context.Context, instants []time.Time) ([]float64, error) {
	base := url.Values{}
	base.Set("CENTER", "'500@399'") // geocenter
	base.Set("QUANTITIES", "'20'")  // 20=Observer range and range-rate

	rows, err := o.queryAll(ctx, base, instants)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(rows))
	for i, r := range rows {
		if len(r.Values) < 1 {
			return nil, fmt.Errorf("horizons row %d: missing range", i)
		}
		out[i] = r.Values[0]
	}
	return out, nil
}

// Available implements Oracle with a one-epoch query.
func (o *HorizonsOracle) Available(ctx context.Context) error {
	_, err := o.EarthSunDistance(ctx, []time.Time{o.now().UTC().Truncate(time.Hour)})
	return err
}

// InvalidateCache clears all cached query results.
func (o *HorizonsOracle) InvalidateCache() {
	o.mu.Lock()
	o.cache = make(map[string]*cachedRows)
	o.mu.Unlock()
}

// queryAll splits instants into TLIST batches and returns one row per
// instant, in order.
func (o *HorizonsOracle) queryAll(ctx context.Context, base url.Values, instants []time.Time) ([]row, error) {
	out := make([]row, 0, len(instants))
	for start := 0; start < len(instants); start += maxTList {
		end := min(start+maxTList, len(instants))
		batch := instants[start:end]

		rows, err := o.query(ctx, horizonsParams(base, batch))
		if err != nil {
			return nil, err
		}
		if len(rows) != len(batch) {
			return nil, fmt.Errorf("horizons returned %d rows for %d epochs", len(rows), len(batch))
		}
		for i, r := range rows {
			if d := r.Time.Sub(batch[i].UTC()); d < -time.Second || d > time.Second {
				return nil, fmt.Errorf("horizons row %d at %s does not match requested %s",
					start+i, r.Time.Format(time.RFC3339), batch[i].UTC().Format(time.RFC3339))
			}
		}
		out = append(out, rows...)
	}
	return out, nil
}

// horizonsParams builds request parameters - values must be quoted with
// single quotes.
func horizonsParams(base url.Values, instants []time.Time) url.Values {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", SunTarget))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("TIME_TYPE", "UT")
	params.Set("TIME_DIGITS", "SECONDS")
	params.Set("ANG_FORMAT", "DEG")
	params.Set("CSV_FORMAT", "NO")
	params.Set("TLIST_TYPE", "JD")
	params.Set("TLIST", formatTList(instants))
	for k, v := range base {
		params[k] = v
	}
	return params
}

// formatTList formats instants as a Horizons discrete epoch list.
func formatTList(instants []time.Time) string {
	jds := make([]string, len(instants))
	for i, t := range instants {
		jds[i] = "'" + strconv.FormatFloat(astro.JulianDate(t), 'f', 9, 64) + "'"
	}
	return strings.Join(jds, " ")
}

// query returns cached rows for params if fresh, otherwise queries Horizons.
func (o *HorizonsOracle) query(ctx context.Context, params url.Values) ([]row, error) {
	key := params.Encode()

	// Check cache
	o.mu.RLock()
	cached, ok := o.cache[key]
	o.mu.RUnlock()

	if ok && o.now().Sub(cached.fetchedAt) < CacheTTL {
		o.log.Debug("cache hit: %d rows", len(cached.rows))
		return cached.rows, nil
	}

	rows, err := o.fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	// Cache result, dropping anything stale
	now := o.now()
	o.mu.Lock()
	for k, c := range o.cache {
		if now.Sub(c.fetchedAt) >= CacheTTL {
			delete(o.cache, k)
		}
	}
	o.cache[key] = &cachedRows{rows: rows, fetchedAt: now}
	o.mu.Unlock()

	return rows, nil
}

// fetch makes a request to the Horizons API.
func (o *HorizonsOracle) fetch(ctx context.Context, encoded string) ([]row, error) {
	reqURL := o.baseURL + "?" + encoded
	o.log.Debug("GET %s", o.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("horizons request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseHorizonsResponse(body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseHorizonsResponse parses the Horizons JSON response.
func parseHorizonsResponse(body []byte) ([]row, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}

	// The actual ephemeris data is in resp.Result as a text blob
	return parseEphemerisTable(resp.Result)
}

// parseEphemerisTable extracts rows from the Horizons text output.
func parseEphemerisTable(result string) ([]row, error) {
	// Find the data section between $$SOE and $$EOE markers
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers")
	}

	var rows []row
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r, err := parseEphemerisLine(line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// parseEphemerisLine parses a single ephemeris data line, e.g. for
// QUANTITIES='4':
//
//	2003-Oct-17 19:30:30 *m  194.340240  39.872046
//
// Flag fields (*, *m, Cm, Nm, Am, ...) are skipped; "n.a." becomes NaN.
func parseEphemerisLine(line string) (row, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return row{}, fmt.Errorf("insufficient fields: %d in %q", len(fields), line)
	}

	// Parse date/time (first two fields)
	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return row{}, err
	}

	var values []float64
	for _, f := range fields[2:] {
		if f == "n.a." {
			values = append(values, math.NaN())
			continue
		}
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return row{}, fmt.Errorf("no numeric values in %q", line)
	}
	return row{Time: t, Values: values}, nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-Jan-02 15:04",
		"2006-Jan-02 15:04:05",
		"2006-Jan-02 15:04:05.000",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}
