// Package ui provides the live sun tracker terminal interface using Bubble
// Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-solpos/internal/state"
	"github.com/litescript/ls-solpos/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewTracker ViewMode = iota
	ViewSky
)

// viewCount is the number of views cycled by tab.
const viewCount = 2

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new solar position is available.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a computation error.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	state *state.Manager

	viewMode ViewMode
	width    int
	height   int
	ready    bool
	animTick int

	tracker TrackerModel
	sky     SkyModel

	snapshot state.Snapshot
	lastErr  error
}

// New creates a new root UI model.
func New(stateMgr *state.Manager) Model {
	return Model{
		state:    stateMgr,
		viewMode: ViewTracker,
		tracker:  NewTrackerModel(),
		sky:      NewSkyModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), animTickCmd())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1", "t":
			m.viewMode = ViewTracker
		case "2", "s":
			m.viewMode = ViewSky
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount
		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 10 lines, footer 2
		contentHeight := msg.Height - 12
		m.tracker = m.tracker.SetSize(msg.Width, contentHeight)
		m.sky = m.sky.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.state != nil {
			m.setSnapshot(m.state.Snapshot())
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.tracker = m.tracker.SetAnimTick(m.animTick)

	case skyAnimMsg:
		var cmd tea.Cmd
		m.sky, cmd = m.sky.Update(msg)
		cmds = append(cmds, cmd)

	case DataUpdateMsg:
		m.lastErr = nil
		m.setSnapshot(msg.Snapshot)

	case ErrorMsg:
		m.lastErr = msg.Error

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setSnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.tracker = m.tracker.UpdateData(snap)
	m.sky = m.sky.UpdateData(snap)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewTracker:
		m.tracker, cmd = m.tracker.Update(msg)
	case ViewSky:
		m.sky, cmd = m.sky.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewTracker:
		content = m.tracker.View()
	case ViewSky:
		content = m.sky.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗ ██████╗ ██╗     ██████╗  ██████╗ ███████╗`,
		`  ██║     ██╔════╝      ██╔════╝██╔═══██╗██║     ██╔══██╗██╔═══██╗██╔════╝`,
		`  ██║     ███████╗█████╗███████╗██║   ██║██║     ██████╔╝██║   ██║███████╗`,
		`  ██║     ╚════██║╚════╝╚════██║██║   ██║██║     ██╔═══╝ ██║   ██║╚════██║`,
		`  ███████╗███████║      ███████║╚██████╔╝███████╗██║     ╚██████╔╝███████║`,
		`  ╚══════╝╚══════╝      ╚══════╝ ╚═════╝ ╚══════╝╚═╝      ╚═════╝ ╚══════╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(fmt.Sprintf("  Solar Position Tracker · v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient:
// deep orange through amber to pale yellow, fading toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	if xRatio < 0.5 {
		t := xRatio / 0.5
		r = 234 + t*(245-234)
		g = 88 + t*(158-88)
		b = 12 + t*(11-12)
	} else {
		t := (xRatio - 0.5) / 0.5
		r = 245 + t*(253-245)
		g = 158 + t*(230-158)
		b = 11 + t*(138-11)
	}

	brightness := 1.0 - (yRatio * 0.5)
	return fmt.Sprintf("#%02X%02X%02X", clamp8(r*brightness), clamp8(g*brightness), clamp8(b*brightness))
}

func clamp8(v float64) int {
	switch {
	case v > 255:
		return 255
	case v < 0:
		return 0
	}
	return int(v)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Tracker", "[2] Sky"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.lastErr != nil:
		status = errorStyle.Render("ERROR: " + m.lastErr.Error())
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case !m.snapshot.LastUpdate.IsZero():
		countdown := time.Until(m.snapshot.NextRefresh).Round(time.Second)
		if countdown < 0 {
			countdown = 0
		}
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" %s · refresh in %ds", m.snapshot.Method, int(countdown.Seconds())))
		if m.snapshot.ComputeDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.ComputeDuration.Round(time.Microsecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing...")
	}

	var help string
	switch m.viewMode {
	case ViewSky:
		help = dimStyle.Render("←/→: pan | c: center on sun | p: path | q: quit")
	default:
		help = dimStyle.Render("tab: switch view | q: quit")
	}

	return "  " + status + "  " + dimStyle.Render("|") + "  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	return shimmer(text, m.animTick)
}

func shimmer(text string, tick int) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := tick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 250, 220, 150
		case dist <= 3:
			r8, g8, b8 = 210, 170, 100
		case dist <= 5:
			r8, g8, b8 = 170, 130, 80
		default:
			r8, g8, b8 = 120, 95, 70
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)))
		result.WriteString(style.Render(string(r)))
	}
	return result.String()
}
