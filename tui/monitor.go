package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pthm-cable/droplets/telemetry"
)

// Stepper is the headless simulation driven by the monitor.
type Stepper interface {
	UpdateHeadless()
	Tick() int32
	LatestStats() *telemetry.WindowStats
}

// historyLen is the number of mean-height samples kept for the sparkline.
const historyLen = 60

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Monitor is a bubbletea model that steps a simulation and shows its stats.
type Monitor struct {
	sim      Stepper
	maxTicks int32
	interval time.Duration

	paused  bool
	done    bool
	lastEnd int32
	history []float64
	windows []telemetry.WindowStats

	width int
}

// NewMonitor creates a monitor. maxTicks 0 runs until the user quits.
func NewMonitor(sim Stepper, maxTicks int32) *Monitor {
	return &Monitor{
		sim:      sim,
		maxTicks: maxTicks,
		interval: 16 * time.Millisecond,
		history:  make([]float64, 0, historyLen),
		width:    80,
	}
}

// Windows returns every stats window observed so far.
func (m *Monitor) Windows() []telemetry.WindowStats {
	return m.windows
}

// Init implements tea.Model.
func (m *Monitor) Init() tea.Cmd {
	return tick(m.interval)
}

// Update implements tea.Model.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			m.advance()
		}
		if m.maxTicks > 0 && m.sim.Tick() >= m.maxTicks {
			m.done = true
			return m, tea.Quit
		}
		return m, tick(m.interval)
	}
	return m, nil
}

// advance runs one update and records a new stats window if one appeared.
func (m *Monitor) advance() {
	m.sim.UpdateHeadless()

	stats := m.sim.LatestStats()
	if stats == nil || stats.WindowEndTick == m.lastEnd {
		return
	}
	m.lastEnd = stats.WindowEndTick
	m.windows = append(m.windows, *stats)

	if len(m.history) == historyLen {
		copy(m.history, m.history[1:])
		m.history = m.history[:historyLen-1]
	}
	m.history = append(m.history, stats.MeanY)
}

// View implements tea.Model.
func (m *Monitor) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("droplets · headless monitor"))
	b.WriteString("\n")

	status := green.Render("running")
	if m.paused {
		status = yellow.Render("paused")
	}
	fmt.Fprintf(&b, "%s %s  %s %d\n", dim.Render("status"), status, dim.Render("tick"), m.sim.Tick())

	stats := m.sim.LatestStats()
	if stats == nil {
		b.WriteString(dim.Render("waiting for first stats window..."))
		b.WriteString("\n")
	} else {
		b.WriteString(panelStyle.Render(statsTable(*stats)))
		b.WriteString("\n")
		if len(m.history) > 1 {
			fmt.Fprintf(&b, "%s %s\n", dim.Render("mean y"), cyan.Render(sparkline(m.history)))
		}
	}

	b.WriteString(dim.Render("space pause · q quit"))
	return b.String()
}

// statsTable formats one window as aligned label/value rows.
func statsTable(s telemetry.WindowStats) string {
	rows := []struct {
		label string
		value string
	}{
		{"backend", s.Backend},
		{"sim time", fmt.Sprintf("%.1fs", s.SimTimeSec)},
		{"particles", fmt.Sprintf("%d", s.Particles)},
		{"contained", fmt.Sprintf("%d", s.Contained)},
		{"falling", fmt.Sprintf("%d", s.Falling)},
		{"escaped", fmt.Sprintf("%d", s.Escaped)},
		{"mean y", fmt.Sprintf("%.3f m (σ %.3f)", s.MeanY, s.StdY)},
		{"p10/p50/p90", fmt.Sprintf("%.2f / %.2f / %.2f", s.P10Y, s.P50Y, s.P90Y)},
		{"speed", fmt.Sprintf("mean %.3f  max %.3f m/s", s.MeanSpeed, s.MaxSpeed)},
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s %s", dim.Render(fmt.Sprintf("%-12s", r.label)), white.Render(r.value))
	}
	return strings.Join(lines, "\n")
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline renders values as a one-line bar chart scaled to their range.
func sparkline(values []float64) string {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

// RunMonitor runs the monitor in the terminal until the user quits or
// maxTicks is reached, and returns the observed stats windows.
func RunMonitor(sim Stepper, maxTicks int32) ([]telemetry.WindowStats, error) {
	m := NewMonitor(sim, maxTicks)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return m.Windows(), fmt.Errorf("running monitor: %w", err)
	}
	return m.Windows(), nil
}
