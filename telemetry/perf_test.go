package telemetry

import (
	"math"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPerf(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

// runUpdate records one update shaped like Simulation.Update.
func runUpdate(pc *PerfCollector, clock *fakeClock, steps, particles int, perStep, sync time.Duration) {
	pc.StartTick()
	pc.StartPhase(PhaseInput)
	clock.advance(100 * time.Microsecond)
	for i := 0; i < steps; i++ {
		pc.StartPhase(PhasePhysics)
		clock.advance(perStep)
	}
	if steps > 0 {
		pc.StartPhase(PhaseSync)
		clock.advance(sync)
	}
	pc.StartPhase(PhaseTelemetry)
	pc.EndTick(steps, particles)
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseInput, "input"},
		{PhasePhysics, "physics"},
		{PhaseSync, "sync"},
		{PhaseTelemetry, "telemetry"},
		{Phase(42), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.phase.String(); got != tc.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.want)
		}
	}
}

func TestPerfCollector_PhasesAndWork(t *testing.T) {
	pc, clock := newTestPerf(10)

	// 4 steps of 1ms, sync of 500 particles in 250µs
	for i := 0; i < 5; i++ {
		runUpdate(pc, clock, 4, 500, time.Millisecond, 250*time.Microsecond)
	}
	s := pc.Stats()

	if s.AvgTickDuration != 4350*time.Microsecond {
		t.Errorf("expected 4.35ms per update, got %v", s.AvgTickDuration)
	}
	if s.PhaseAvg[PhasePhysics] != 4*time.Millisecond {
		t.Errorf("expected 4ms physics, got %v", s.PhaseAvg[PhasePhysics])
	}
	if s.PhysicsPerStep != time.Millisecond {
		t.Errorf("expected 1ms per step, got %v", s.PhysicsPerStep)
	}
	if s.SyncPerParticle != 500*time.Nanosecond {
		t.Errorf("expected 500ns per particle, got %v", s.SyncPerParticle)
	}
	if s.AvgSteps != 4 || s.AvgParticles != 500 {
		t.Errorf("expected 4 steps and 500 particles, got %v %v", s.AvgSteps, s.AvgParticles)
	}
	if s.PhasePct[PhasePhysics] <= s.PhasePct[PhaseSync] || s.PhasePct[PhaseSync] <= s.PhasePct[PhaseInput] {
		t.Errorf("unexpected phase shares: %v", s.PhasePct)
	}

	var sum float64
	for _, pct := range s.PhasePct {
		sum += pct
	}
	if math.Abs(sum-100) > 1e-6 {
		t.Errorf("phase shares should add to 100, got %f", sum)
	}

	wantSteps := 4 / 0.00435
	if math.Abs(s.StepsPerSecond-wantSteps) > 1e-6 {
		t.Errorf("expected %f steps/s, got %f", wantSteps, s.StepsPerSecond)
	}
}

func TestPerfCollector_PausedUpdatesSyncNothing(t *testing.T) {
	pc, clock := newTestPerf(10)

	runUpdate(pc, clock, 1, 100, time.Millisecond, 100*time.Microsecond)
	runUpdate(pc, clock, 0, 100, 0, 0)

	s := pc.Stats()
	if s.SyncPerParticle != time.Microsecond {
		t.Errorf("paused update diluted sync cost: %v", s.SyncPerParticle)
	}
	if s.AvgSteps != 0.5 {
		t.Errorf("expected 0.5 steps per update, got %v", s.AvgSteps)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc, clock := newTestPerf(3)

	for i := 0; i < 3; i++ {
		runUpdate(pc, clock, 1, 10, 10*time.Millisecond, 0)
	}
	for i := 0; i < 3; i++ {
		runUpdate(pc, clock, 1, 10, time.Millisecond, 0)
	}

	// Only the last 3 fast updates remain
	s := pc.Stats()
	if s.MaxTickDuration != 1100*time.Microsecond {
		t.Errorf("old samples still in window: max %v", s.MaxTickDuration)
	}
	if s.MinTickDuration != s.MaxTickDuration {
		t.Errorf("expected uniform window, min %v max %v", s.MinTickDuration, s.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc, _ := newTestPerf(10)
	s := pc.Stats()

	if s.AvgTickDuration != 0 || s.StepsPerSecond != 0 || s.PhysicsPerStep != 0 {
		t.Errorf("expected zero stats, got %+v", s)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clock := newTestPerf(10)

	pc.RecordFrame()
	if pc.Stats().FPS != 0 {
		t.Error("one frame cannot have a rate")
	}

	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.FrameDuration != 20*time.Millisecond || s.FPS != 50 {
		t.Errorf("expected 20ms frames at 50 FPS, got %v %v", s.FrameDuration, s.FPS)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	pc, clock := newTestPerf(10)
	runUpdate(pc, clock, 2, 64, 1500*time.Microsecond, 64*time.Microsecond)

	row := pc.Stats().ToCSV(120)
	if row.WindowEnd != 120 || row.AvgSteps != 2 || row.AvgParticles != 64 {
		t.Errorf("unexpected work columns: %+v", row)
	}
	if row.PhysicsPerStepUS != 1500 || row.SyncPerParticleNS != 1000 {
		t.Errorf("unexpected cost columns: %+v", row)
	}
	if row.AvgTickUS != 3164 || row.TelemetryPct != 0 || row.PhysicsPct <= row.SyncPct {
		t.Errorf("unexpected timing columns: %+v", row)
	}
}
