// Package report writes solar position results as a terminal table, CSV or
// JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/litescript/ls-solpos/internal/daylight"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// Report is everything one CLI run prints.
type Report struct {
	Result     *solpos.Result
	Atmosphere solpos.Atmosphere
	Distance   []float64 // AU, one per position; nil when unavailable
	Day        *daylight.Day
	ComputedAt time.Time
}

// distance returns the distance for row i, or NaN.
func (r *Report) distance(i int) float64 {
	if i < len(r.Distance) {
		return r.Distance[i]
	}
	return math.NaN()
}

// Export is the JSON-serializable form of a Report. NaN values become null.
type Export struct {
	Method     string           `json:"method"`
	Location   solpos.Location  `json:"location"`
	Atmosphere string           `json:"atmosphere"`
	ComputedAt time.Time        `json:"computed_at"`
	Positions  []PositionExport `json:"positions"`
	Day        *DayExport       `json:"day,omitempty"`
}

// PositionExport is a JSON-friendly position.
type PositionExport struct {
	Time              time.Time `json:"time"`
	Elevation         float64   `json:"elevation"`
	Azimuth           float64   `json:"azimuth"`
	Zenith            float64   `json:"zenith"`
	ApparentElevation float64   `json:"apparent_elevation"`
	ApparentZenith    float64   `json:"apparent_zenith"`
	SolarTime         *float64  `json:"solar_time"`
	DistanceAU        *float64  `json:"distance_au,omitempty"`
}

// DayExport is a JSON-friendly daylight.Day. Event times are omitted
// during polar day or night.
type DayExport struct {
	Date          string     `json:"date"`
	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
	SolarNoon     time.Time  `json:"solar_noon"`
	DayLengthSec  float64    `json:"day_length_seconds"`
	NoonElevation float64    `json:"noon_elevation"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// ToExport converts r for JSON output.
func (r *Report) ToExport() *Export {
	e := &Export{
		Atmosphere: r.Atmosphere.String(),
		ComputedAt: r.ComputedAt,
	}
	if r.Result != nil {
		e.Method = r.Result.Method.String()
		e.Location = r.Result.Location
		e.Positions = make([]PositionExport, len(r.Result.Positions))
		for i, p := range r.Result.Positions {
			e.Positions[i] = PositionExport{
				Time:              p.Time,
				Elevation:         p.Elevation,
				Azimuth:           p.Azimuth,
				Zenith:            p.Zenith,
				ApparentElevation: p.ApparentElevation,
				ApparentZenith:    p.ApparentZenith,
				SolarTime:         finite(p.SolarTime),
				DistanceAU:        finite(r.distance(i)),
			}
		}
	}
	if d := r.Day; d != nil {
		e.Day = &DayExport{
			Date:          d.Date.Format(time.DateOnly),
			Sunrise:       timePtr(d.Sunrise),
			Sunset:        timePtr(d.Sunset),
			SolarNoon:     d.SolarNoon,
			DayLengthSec:  d.DayLength.Seconds(),
			NoonElevation: d.NoonElevation,
		}
	}
	return e
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.ToExport())
}

// csvHeader names the CSV columns.
var csvHeader = []string{
	"time", "elevation", "azimuth", "zenith",
	"apparent_elevation", "apparent_zenith", "solar_time", "distance_au",
}

// WriteCSV writes one row per position. Missing values are empty cells.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if r.Result != nil {
		for i, p := range r.Result.Positions {
			rec := []string{
				p.Time.Format(time.RFC3339Nano),
				formatCSV(p.Elevation),
				formatCSV(p.Azimuth),
				formatCSV(p.Zenith),
				formatCSV(p.ApparentElevation),
				formatCSV(p.ApparentZenith),
				formatCSV(p.SolarTime),
				formatCSV(r.distance(i)),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCSV(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Table styles.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	nightStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

// WriteTable writes a styled table for the terminal. Rows with the sun
// below the apparent horizon are dimmed.
func (r *Report) WriteTable(w io.Writer) error {
	if r.Result == nil {
		_, err := fmt.Fprintln(w, "No positions")
		return err
	}
	res := r.Result

	title := titleStyle.Render(fmt.Sprintf("Sun @ %s", res.Location)) + " " +
		dimStyle.Render(fmt.Sprintf("method=%s %s", res.Method, r.Atmosphere))

	headers := []string{"Time", "Elev", "Azim", "Zenith", "App Elev", "App Zenith", "Solar"}
	if r.Distance != nil {
		headers = append(headers, "Dist AU")
	}
	rows := make([][]string, len(res.Positions))
	for i, p := range res.Positions {
		row := []string{
			p.Time.Format("2006-01-02 15:04:05 MST"),
			fmt.Sprintf("%7.3f", p.Elevation),
			fmt.Sprintf("%7.3f", p.Azimuth),
			fmt.Sprintf("%7.3f", p.Zenith),
			fmt.Sprintf("%7.3f", p.ApparentElevation),
			fmt.Sprintf("%7.3f", p.ApparentZenith),
			FormatSolarTime(p.SolarTime),
		}
		if r.Distance != nil {
			row = append(row, fmt.Sprintf("%.6f", r.distance(i)))
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(res.Positions) && res.Positions[row].ApparentElevation < 0:
				return nightStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if r.Day != nil {
		if _, err := fmt.Fprintln(w, dimStyle.Render(r.Day.String())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Total: %d positions\n", len(res.Positions))
	return err
}

// FormatSolarTime renders decimal hours as hh:mm:ss, or "-" for NaN.
func FormatSolarTime(h float64) string {
	if math.IsNaN(h) {
		return "-"
	}
	d := time.Duration(math.Round(h * float64(time.Hour) / float64(time.Second))) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// Write dispatches on format: "table", "csv" or "json".
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "csv":
		return r.WriteCSV(w)
	case "json":
		return r.WriteJSON(w)
	case "table", "":
		return r.WriteTable(w)
	}
	return fmt.Errorf("unknown output format %q", format)
}
