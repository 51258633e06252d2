// Package state provides thread-safe state management for the live sun
// tracker.
package state

import (
	"sync"
	"time"

	"github.com/litescript/ls-solpos/internal/daylight"
	"github.com/litescript/ls-solpos/internal/solpos"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventSunrise   EventType = "SUNRISE"
	EventSunset    EventType = "SUNSET"
	EventSolarNoon EventType = "SOLAR_NOON"
)

// Event is a sun event observed between two updates.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Elevation float64   `json:"elevation"`
	Azimuth   float64   `json:"azimuth"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager handles all shared tracker state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Current state
	location        solpos.Location
	method          solpos.Method
	current         *solpos.Position
	lastUpdate      time.Time
	lastError       error
	computeDuration time.Duration

	// Daily context
	day   *daylight.Day
	track []solpos.Position

	// Elevation history
	history       []TimeSeries
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	// Configuration
	refreshInterval time.Duration
	now             func() time.Time
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   720, // 2 hours at one update per 10s
		MaxEvents:       50,
		RefreshInterval: 10 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		now:             time.Now,
	}
}

// Update records the newest computation. The last position of res becomes
// the current position. On error only the error and timing are recorded.
func (m *Manager) Update(res *solpos.Result, computeDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUpdate = m.now()
	m.lastError = err
	m.computeDuration = computeDuration

	if res.Len() == 0 {
		return
	}

	m.location = res.Location
	m.method = res.Method
	pos := res.Positions[len(res.Positions)-1]

	if m.current != nil {
		m.detectEvents(*m.current, pos)
	}
	m.current = &pos

	m.history = append(m.history, TimeSeries{Timestamp: pos.Time, Value: pos.ApparentElevation})
	if m.maxHistoryLen > 0 && len(m.history) > m.maxHistoryLen {
		m.history = m.history[1:]
	}
}

// SetDay stores the daily events and the sampled path of the sun for the
// current day.
func (m *Manager) SetDay(day *daylight.Day, track []solpos.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = day
	m.track = append([]solpos.Position(nil), track...)
}

// detectEvents compares consecutive positions and logs horizon and
// meridian crossings.
func (m *Manager) detectEvents(prev, cur solpos.Position) {
	switch {
	case prev.ApparentElevation < 0 && cur.ApparentElevation >= 0:
		m.addEvent(Event{Type: EventSunrise, Timestamp: cur.Time, Elevation: cur.ApparentElevation, Azimuth: cur.Azimuth})
	case prev.ApparentElevation >= 0 && cur.ApparentElevation < 0:
		m.addEvent(Event{Type: EventSunset, Timestamp: cur.Time, Elevation: cur.ApparentElevation, Azimuth: cur.Azimuth})
	}
	// Solar time wraps at 24; a crossing of 12 moves it forward by less
	// than 12 hours.
	if prev.SolarTime < 12 && cur.SolarTime >= 12 && cur.SolarTime-prev.SolarTime < 12 {
		m.addEvent(Event{Type: EventSolarNoon, Timestamp: cur.Time, Elevation: cur.Elevation, Azimuth: cur.Azimuth})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Location        solpos.Location
	Method          solpos.Method
	Current         *solpos.Position
	Day             *daylight.Day
	Track           []solpos.Position
	History         []TimeSeries
	Events          []Event
	LastUpdate      time.Time
	LastError       error
	ComputeDuration time.Duration
	NextRefresh     time.Time
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		Location:        m.location,
		Method:          m.method,
		Track:           append([]solpos.Position(nil), m.track...),
		History:         append([]TimeSeries(nil), m.history...),
		Events:          m.getEventsOrdered(),
		LastUpdate:      m.lastUpdate,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
	}
	if m.current != nil {
		cur := *m.current
		snap.Current = &cur
	}
	if m.day != nil {
		day := *m.day
		snap.Day = &day
	}
	if !m.lastUpdate.IsZero() {
		snap.NextRefresh = m.lastUpdate.Add(m.refreshInterval)
	}
	return snap
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a position has been recorded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
