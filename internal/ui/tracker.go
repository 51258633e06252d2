package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-solpos/internal/report"
	"github.com/litescript/ls-solpos/internal/state"
)

// Styles for the tracker
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	nightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

// SparklineWidth is the number of cells in the elevation sparkline.
const SparklineWidth = 48

// sparklineBlocks maps elevation to block height, lowest first.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline gradient: night blue through horizon orange to noon yellow.
var (
	elevColorLow  = [3]uint8{0x1b, 0x2b, 0x4b}
	elevColorMid  = [3]uint8{0xe8, 0x7a, 0x2a}
	elevColorHigh = [3]uint8{0xfd, 0xe6, 0x8a}
)

// TrackerModel shows the current sun position, the day's events and the
// elevation profile.
type TrackerModel struct {
	width    int
	height   int
	snapshot state.Snapshot
	animTick int
}

// NewTrackerModel creates a new tracker model.
func NewTrackerModel() TrackerModel {
	return TrackerModel{}
}

// SetSize updates the viewport size.
func (m TrackerModel) SetSize(width, height int) TrackerModel {
	m.width = width
	m.height = height
	return m
}

// SetAnimTick updates the animation tick for shimmer effects.
func (m TrackerModel) SetAnimTick(tick int) TrackerModel {
	m.animTick = tick
	return m
}

// UpdateData updates with new data snapshot.
func (m TrackerModel) UpdateData(snapshot state.Snapshot) TrackerModel {
	m.snapshot = snapshot
	return m
}

// Update handles messages.
func (m TrackerModel) Update(msg tea.Msg) (TrackerModel, tea.Cmd) {
	return m, nil
}

// View renders the tracker.
func (m TrackerModel) View() string {
	cur := m.snapshot.Current
	if cur == nil {
		return "  " + shimmer("Waiting for first position...", m.animTick)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("  Sun @ " + m.snapshot.Location.String()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.renderPosition()),
		"  ",
		boxStyle.Render(m.renderDay()),
	))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("  Elevation today  "))
	b.WriteString(m.renderElevationSparkline())
	b.WriteString("\n\n")

	b.WriteString(m.renderEvents())
	return b.String()
}

func (m TrackerModel) renderPosition() string {
	cur := m.snapshot.Current
	status := dayStyle.Render("☀ above horizon")
	if cur.ApparentElevation < 0 {
		status = nightStyle.Render("☾ below horizon")
	}

	rows := []struct{ label, value string }{
		{"Time", cur.Time.Format("2006-01-02 15:04:05 MST")},
		{"Elevation", fmt.Sprintf("%8.3f°", cur.Elevation)},
		{"Apparent", fmt.Sprintf("%8.3f°", cur.ApparentElevation)},
		{"Azimuth", fmt.Sprintf("%8.3f° %s", cur.Azimuth, compassPoint(cur.Azimuth))},
		{"Zenith", fmt.Sprintf("%8.3f°", cur.Zenith)},
		{"Solar time", report.FormatSolarTime(cur.SolarTime)},
	}

	var b strings.Builder
	b.WriteString(status)
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", r.label)))
		b.WriteString(valueStyle.Render(r.value))
	}
	return b.String()
}

func (m TrackerModel) renderDay() string {
	day := m.snapshot.Day
	if day == nil {
		return labelStyle.Render("No daily events yet")
	}

	local := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.In(day.Date.Location()).Format("15:04:05")
	}

	rows := []struct{ label, value string }{
		{"Date", day.Date.Format(time.DateOnly)},
		{"Sunrise", local(day.Sunrise)},
		{"Solar noon", local(day.SolarNoon)},
		{"Sunset", local(day.Sunset)},
		{"Day length", formatDuration(day.DayLength)},
		{"Noon elev", fmt.Sprintf("%.2f°", day.NoonElevation)},
	}

	var b strings.Builder
	switch {
	case !day.Polar():
		b.WriteString(dayStyle.Render("Today"))
	case day.DayLength > 0:
		b.WriteString(dayStyle.Render("Polar day"))
	default:
		b.WriteString(nightStyle.Render("Polar night"))
	}
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", r.label)))
		b.WriteString(valueStyle.Render(r.value))
	}
	return b.String()
}

// renderElevationSparkline draws the day's track with the current
// apparent elevation appended.
func (m TrackerModel) renderElevationSparkline() string {
	track := m.snapshot.Track
	if len(track) == 0 {
		return labelStyle.Render("no track")
	}

	elevs := make([]float64, len(track))
	for i, p := range track {
		elevs[i] = p.ApparentElevation
	}
	samples := resampleElevation(elevs, SparklineWidth)

	var sb strings.Builder
	for _, elev := range samples {
		sb.WriteString(sparklineCell(elev))
	}

	if cur := m.snapshot.Current; cur != nil {
		sb.WriteString(valueStyle.Render(fmt.Sprintf(" now: %.1f°", cur.ApparentElevation)))
	}
	return sb.String()
}

// sparklineCell renders one block for elev, mapping -90..90 onto the
// block heights.
func sparklineCell(elev float64) string {
	t := (elev + 90) / 180
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	blockIdx := int(t * 7.0)
	if blockIdx > 7 {
		blockIdx = 7
	}

	r, g, b := interpolateElevColor(t)
	color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[blockIdx]))
}

// interpolateElevColor returns RGB color for elevation value t in [0, 1].
func interpolateElevColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	from, to, s := elevColorLow, elevColorMid, t*2
	if t >= 0.5 {
		from, to, s = elevColorMid, elevColorHigh, (t-0.5)*2
	}

	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-s) + float64(b)*s)
	}
	return mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2])
}

// resampleElevation averages samples into width buckets.
func resampleElevation(samples []float64, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	samplesPerBucket := float64(len(samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * samplesPerBucket)
		endIdx := int(float64(i+1) * samplesPerBucket)
		if endIdx <= startIdx {
			endIdx = startIdx + 1
		}
		if endIdx > len(samples) {
			endIdx = len(samples)
		}
		if startIdx >= endIdx {
			startIdx = endIdx - 1
		}
		if startIdx < 0 {
			startIdx = 0
		}

		sum := 0.0
		count := 0
		for j := startIdx; j < endIdx; j++ {
			sum += samples[j]
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}

func (m TrackerModel) renderEvents() string {
	events := m.snapshot.Events
	var b strings.Builder
	b.WriteString(labelStyle.Render("  Events"))
	if len(events) == 0 {
		b.WriteString(labelStyle.Render(": none yet"))
		return b.String()
	}

	limit := 5
	if m.height > 0 && m.height-16 > limit {
		limit = m.height - 16
	}
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		style := dayStyle
		if e.Type == state.EventSunset {
			style = nightStyle
		}
		b.WriteString("\n    ")
		b.WriteString(labelStyle.Render(e.Timestamp.Format("15:04:05 MST")))
		b.WriteString("  ")
		b.WriteString(style.Render(fmt.Sprintf("%-10s", e.Type)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" el %6.2f° az %6.2f°", e.Elevation, e.Azimuth)))
	}
	return b.String()
}

// compassPoint names the 16-wind direction of an azimuth.
func compassPoint(az float64) string {
	points := []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}
	idx := int((normalize360(az)+11.25)/22.5) % len(points)
	return points[idx]
}

func normalize360(a float64) float64 {
	for a < 0 {
		a += 360
	}
	for a >= 360 {
		a -= 360
	}
	return a
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
