package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/droplets/config"
	"github.com/pthm-cable/droplets/physics"
)

func TestComputeSpread(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Spread
	}{
		{"empty", nil, Spread{}},
		{"single", []float64{5}, Spread{Mean: 5, P10: 5, P50: 5, P90: 5}},
		{"one to ten", []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, Spread{
			Mean: 5.5,
			Std:  math.Sqrt(82.5 / 9),
			P10:  1,
			P50:  5,
			P90:  9,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSpread(tt.values)
			if math.Abs(got.Mean-tt.want.Mean) > 1e-9 ||
				math.Abs(got.Std-tt.want.Std) > 1e-9 ||
				got.P10 != tt.want.P10 || got.P50 != tt.want.P50 || got.P90 != tt.want.P90 {
				t.Errorf("ComputeSpread(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestComputeSpreadDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputeSpread(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input reordered: %v", values)
	}
}

func TestComputeSpeeds(t *testing.T) {
	mean, maxSpeed := ComputeSpeeds([]float64{1, 2, 6})
	if mean != 3 || maxSpeed != 6 {
		t.Errorf("expected mean 3 max 6, got mean %v max %v", mean, maxSpeed)
	}

	mean, maxSpeed = ComputeSpeeds(nil)
	if mean != 0 || maxSpeed != 0 {
		t.Errorf("expected zeros for empty input, got %v %v", mean, maxSpeed)
	}
}

// boxRegion escapes anything outside [0,10] horizontally or below y=5.
type boxRegion struct{}

func (boxRegion) Escaped(p physics.Vec2) bool {
	return p.Y > 5 || p.X < 0 || p.X > 10
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(60, 1.0/60.0, "box2d")

	if c.ShouldFlush(59) {
		t.Error("should not flush before window end")
	}
	if !c.ShouldFlush(60) {
		t.Error("should flush at window end")
	}

	c.RecordDragStart()
	c.RecordDragStart()
	c.RecordReset()

	positions := []physics.Vec2{
		{X: 5, Y: 4},  // contained
		{X: 5, Y: -1}, // falling
		{X: 5, Y: 6},  // escaped below
		{X: -1, Y: 2}, // escaped left
	}
	velocities := []physics.Vec2{{X: 3, Y: 4}, {}, {}, {}}

	stats := c.Flush(60, boxRegion{}, positions, velocities, true)

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 60 {
		t.Errorf("unexpected window [%d,%d]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-1) > 1e-9 {
		t.Errorf("expected sim time 1s, got %f", stats.SimTimeSec)
	}
	if stats.Particles != 4 || stats.Contained != 1 || stats.Falling != 1 || stats.Escaped != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.MaxSpeed != 5 || math.Abs(stats.MeanSpeed-1.25) > 1e-9 {
		t.Errorf("expected max speed 5 mean 1.25, got %f %f", stats.MaxSpeed, stats.MeanSpeed)
	}
	if math.Abs(stats.MeanY-2.75) > 1e-9 {
		t.Errorf("expected mean y 2.75, got %f", stats.MeanY)
	}
	if stats.DragStarts != 2 || stats.Resets != 1 || !stats.Dragging {
		t.Errorf("unexpected interaction counters: %+v", stats)
	}
	if stats.Backend != "box2d" {
		t.Errorf("expected backend box2d, got %q", stats.Backend)
	}

	// Counters reset, window advances
	next := c.Flush(120, boxRegion{}, nil, nil, false)
	if next.WindowStartTick != 60 || next.DragStarts != 0 || next.Resets != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.Particles != 0 || next.MeanY != 0 || next.MeanSpeed != 0 {
		t.Errorf("empty flush should report zeros: %+v", next)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without error, got %v %v", om, err)
	}
	// Nil manager accepts writes
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}
	var disabled *OutputManager
	if disabled.Dir() != "" {
		t.Error("disabled output manager reports a directory")
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 60, Particles: 10}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WritePerf(PerfStats{AvgTickDuration: 1000}, 60); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,backend,particles") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "avg_steps,avg_particles,physics_per_step_us,sync_per_particle_ns") {
		t.Errorf("perf.csv missing load columns:\n%s", perf)
	}
	if om.Dir() != dir {
		t.Errorf("expected dir %q, got %q", dir, om.Dir())
	}
	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot does not reload: %v", err)
	}
}
