package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-solpos/internal/solpos"
	"github.com/litescript/ls-solpos/internal/state"
)

const (
	// Field of view in degrees. The vertical FOV spans horizon to zenith.
	fovAz = 120.0
	fovEl = 90.0

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	// panStep is the azimuth change per arrow key press.
	panStep = 30.0

	glyphSun      = '☀'
	glyphSunBelow = '▽'
	glyphPath     = '·'
	glyphObserver = '▲'

	colorSun      = "220"
	colorSunBelow = "208"
	colorPathDay  = "178"
	colorPathLow  = "60"
	colorSky      = "236"
)

type skyAnimMsg time.Time

// SkyModel renders the sky dome with the sun and its path for the day.
type SkyModel struct {
	width  int
	height int

	// Camera azimuth at the center of the view
	camAz float64

	// Animation state
	animating   bool
	animStartAz float64
	animTargAz  float64
	animStart   time.Time

	// follow keeps the camera on the sun as it moves.
	follow   bool
	showPath bool

	sun   *solpos.Position
	track []solpos.Position
}

// NewSkyModel creates a new sky model facing south.
func NewSkyModel() SkyModel {
	return SkyModel{
		camAz:    180,
		follow:   true,
		showPath: true,
	}
}

// SetSize updates the viewport size.
func (m SkyModel) SetSize(width, height int) SkyModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates with new data snapshot.
func (m SkyModel) UpdateData(snapshot state.Snapshot) SkyModel {
	m.sun = snapshot.Current
	m.track = snapshot.Track

	if m.follow && !m.animating && m.sun != nil {
		m.camAz = m.sun.Azimuth
	}
	return m
}

func skyAnimTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return skyAnimMsg(t)
	})
}

// Update handles messages.
func (m SkyModel) Update(msg tea.Msg) (SkyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			m.follow = false
			return m.panTo(m.camAz - panStep)
		case "right", "l":
			m.follow = false
			return m.panTo(m.camAz + panStep)
		case "c":
			m.follow = true
			if m.sun != nil {
				return m.panTo(m.sun.Azimuth)
			}
		case "p":
			m.showPath = !m.showPath
		}

	case skyAnimMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyModel) panTo(az float64) (SkyModel, tea.Cmd) {
	m.animating = true
	m.animStartAz = m.camAz
	m.animTargAz = normalize360(az)
	m.animStart = time.Now()
	return m, skyAnimTick()
}

func (m SkyModel) updateAnimation() (SkyModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)
	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)

	return m, skyAnimTick()
}

// View renders the sky view.
func (m SkyModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSkyCanvas(m.width, m.height-4))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m SkyModel) renderHeader() string {
	mode := "manual"
	if m.follow {
		mode = "following sun"
	}
	return titleStyle.Render("  Sky") + labelStyle.Render(fmt.Sprintf("  facing %.0f° %s · %s", normalize360(m.camAz), compassPoint(m.camAz), mode))
}

func (m SkyModel) renderStatus() string {
	if m.sun == nil {
		return labelStyle.Render("  No position yet")
	}
	if m.sun.ApparentElevation < 0 {
		return nightStyle.Render(fmt.Sprintf("  Sun below horizon: el %.2f° az %.2f°", m.sun.ApparentElevation, m.sun.Azimuth))
	}
	return dayStyle.Render(fmt.Sprintf("  Sun: el %.2f° az %.2f° (%s)", m.sun.ApparentElevation, m.sun.Azimuth, compassPoint(m.sun.Azimuth)))
}

func (m SkyModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = colorSky
		}
	}

	horizonY := height - 2
	plot := func(az, el float64, glyph rune, color lipgloss.Color) {
		x, y, ok := m.projectToScreen(az, el, width, height)
		if !ok || x < 0 || x >= width || y < 0 || y > horizonY {
			return
		}
		canvas[y][x] = glyph
		colors[y][x] = color
	}

	if m.showPath {
		for _, p := range m.track {
			if p.ApparentElevation < 0 {
				continue
			}
			color := lipgloss.Color(colorPathDay)
			if p.ApparentElevation < 10 {
				color = colorPathLow
			}
			plot(p.Azimuth, p.ApparentElevation, glyphPath, color)
		}
	}

	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60"
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	if m.sun != nil {
		if m.sun.ApparentElevation >= 0 {
			plot(m.sun.Azimuth, m.sun.ApparentElevation, glyphSun, colorSun)
		} else {
			// Mark where the sun is under the horizon.
			plot(m.sun.Azimuth, 0, glyphSunBelow, colorSunBelow)
		}
	}

	stationX := width / 2
	stationY := height - 1
	if stationY >= 0 && stationX >= 0 && stationX < width {
		canvas[stationY][stationX] = glyphObserver
		colors[stationY][stationX] = "46"
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m SkyModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, 0, width, height)
	if !visible {
		return
	}
	y := height - 2

	if x >= 0 && x < width && y >= 0 && y < height {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/el to screen coordinates relative to the
// camera. Elevation 0 maps to the horizon row and 90 to the top row.
func (m SkyModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if el < 0 || el > fovEl {
		return 0, 0, false
	}

	horizonY := height - 2

	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl - el) / fovEl * float64(horizonY))

	return x, y, true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	diff := normalizeAngle(b - a)
	return a + diff*t
}
