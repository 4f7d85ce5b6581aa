package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pthm-cable/droplets/telemetry"
)

// fakeSim produces a stats window every 3 updates.
type fakeSim struct {
	tick  int32
	stats *telemetry.WindowStats
}

func (f *fakeSim) UpdateHeadless() {
	f.tick++
	if f.tick%3 == 0 {
		f.stats = &telemetry.WindowStats{
			WindowEndTick: f.tick,
			Particles:     10,
			MeanY:         float64(f.tick) / 10,
			Backend:       "box2d",
		}
	}
}

func (f *fakeSim) Tick() int32                         { return f.tick }
func (f *fakeSim) LatestStats() *telemetry.WindowStats { return f.stats }

func TestMonitorCollectsWindows(t *testing.T) {
	sim := &fakeSim{}
	m := NewMonitor(sim, 9)

	var cmd tea.Cmd
	for i := 0; i < 9; i++ {
		_, cmd = m.Update(tickMsg{})
	}

	if sim.Tick() != 9 {
		t.Errorf("expected 9 ticks, got %d", sim.Tick())
	}
	if len(m.Windows()) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(m.Windows()))
	}
	if !m.done {
		t.Error("expected monitor done at max ticks")
	}
	if cmd == nil {
		t.Error("expected quit command at max ticks")
	}

	// Further ticks after completion do nothing
	m.Update(tickMsg{})
	if sim.Tick() != 9 {
		t.Errorf("monitor stepped after completion: %d", sim.Tick())
	}
}

func TestMonitorPause(t *testing.T) {
	sim := &fakeSim{}
	m := NewMonitor(sim, 0)

	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m.Update(tickMsg{})
	if sim.Tick() != 0 {
		t.Errorf("expected no steps while paused, got %d", sim.Tick())
	}
	if !strings.Contains(m.View(), "paused") {
		t.Error("view does not show paused state")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m.Update(tickMsg{})
	if sim.Tick() != 1 {
		t.Errorf("expected 1 step after resume, got %d", sim.Tick())
	}
}

func TestMonitorView(t *testing.T) {
	sim := &fakeSim{}
	m := NewMonitor(sim, 0)

	if !strings.Contains(m.View(), "waiting") {
		t.Error("expected waiting message before first window")
	}

	for i := 0; i < 6; i++ {
		m.Update(tickMsg{})
	}
	view := m.View()
	for _, want := range []string{"particles", "box2d", "mean y"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"flat", []float64{2, 2, 2}, "▁▁▁"},
		{"ramp", []float64{0, 1}, "▁█"},
		{"single", []float64{5}, "▁"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sparkline(tc.values); got != tc.want {
				t.Errorf("sparkline(%v) = %q, want %q", tc.values, got, tc.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	if got := Report(nil); !strings.Contains(got, "no stats") {
		t.Errorf("unexpected empty report %q", got)
	}

	windows := []telemetry.WindowStats{
		{WindowEndTick: 60, SimTimeSec: 1, Particles: 10, MeanY: -2, DragStarts: 1},
		{WindowEndTick: 120, SimTimeSec: 2, Particles: 10, MeanY: 1, Resets: 1},
		{WindowEndTick: 180, SimTimeSec: 3, Particles: 10, MeanY: 3},
	}
	report := Report(windows)
	for _, want := range []string{"run report", "mean height", "windows"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
