package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one timed section of an update.
type Phase uint8

// Update phases in execution order.
const (
	PhaseInput Phase = iota
	PhasePhysics
	PhaseSync
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"input", "physics", "sync", "telemetry"}

// String returns the phase name used in logs and CSV columns.
func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfSample is the timing of one update together with the work it did.
type PerfSample struct {
	TickDuration time.Duration
	Phases       [numPhases]time.Duration
	Steps        int // engine steps run
	Particles    int // particles synced
}

// PerfCollector keeps a ring of recent update samples.
type PerfCollector struct {
	samples     []PerfSample
	writeIndex  int
	sampleCount int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame     time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize updates.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]PerfSample, windowSize),
		now:     time.Now,
	}
}

// StartTick begins timing an update.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = PerfSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
// A phase may be entered several times per update; durations add up.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase < numPhases {
		p.current.Phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick records the update with the engine steps it ran and the
// number of particles it synced.
func (p *PerfCollector) EndTick(steps, particles int) {
	now := p.now()
	p.closePhase(now)

	p.current.TickDuration = now.Sub(p.tickStart)
	p.current.Steps = steps
	p.current.Particles = particles

	p.samples[p.writeIndex] = p.current
	p.writeIndex = (p.writeIndex + 1) % len(p.samples)
	if p.sampleCount < len(p.samples) {
		p.sampleCount++
	}
}

// RecordFrame marks a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the samples in the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // share of average update time

	AvgSteps     float64
	AvgParticles float64

	// Cost of the engine and of the sync normalized by the work done
	PhysicsPerStep  time.Duration
	SyncPerParticle time.Duration

	TicksPerSecond float64 // updates per wall second
	StepsPerSecond float64 // engine steps per wall second

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.sampleCount == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [numPhases]time.Duration
	var steps, particles int
	var syncedParticles int
	var syncTime time.Duration

	for i := 0; i < p.sampleCount; i++ {
		sample := p.samples[i]
		total += sample.TickDuration
		if i == 0 || sample.TickDuration < s.MinTickDuration {
			s.MinTickDuration = sample.TickDuration
		}
		s.MaxTickDuration = max(s.MaxTickDuration, sample.TickDuration)

		for ph, d := range sample.Phases {
			phaseSum[ph] += d
		}
		steps += sample.Steps
		particles += sample.Particles

		// Paused updates sync nothing
		if sample.Steps > 0 {
			syncedParticles += sample.Particles
			syncTime += sample.Phases[PhaseSync]
		}
	}

	n := time.Duration(p.sampleCount)
	s.AvgTickDuration = total / n
	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if total > 0 {
			s.PhasePct[ph] = float64(phaseSum[ph]) / float64(total) * 100
		}
	}

	s.AvgSteps = float64(steps) / float64(p.sampleCount)
	s.AvgParticles = float64(particles) / float64(p.sampleCount)
	if steps > 0 {
		s.PhysicsPerStep = phaseSum[PhasePhysics] / time.Duration(steps)
	}
	if syncedParticles > 0 {
		s.SyncPerParticle = syncTime / time.Duration(syncedParticles)
	}

	if total > 0 {
		s.TicksPerSecond = float64(p.sampleCount) / total.Seconds()
		s.StepsPerSecond = float64(steps) / total.Seconds()
	}
	return s
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"steps_per_sec", int(s.StepsPerSecond),
		"physics_per_step_us", s.PhysicsPerStep.Microseconds(),
		"sync_per_particle_ns", s.SyncPerParticle.Nanoseconds(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, Phase(ph).String()+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Float64("avg_steps", s.AvgSteps),
		slog.Float64("avg_particles", s.AvgParticles),
		slog.Int64("physics_per_step_us", s.PhysicsPerStep.Microseconds()),
		slog.Int64("sync_per_particle_ns", s.SyncPerParticle.Nanoseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd         int32   `csv:"window_end"`
	AvgTickUS         int64   `csv:"avg_tick_us"`
	MaxTickUS         int64   `csv:"max_tick_us"`
	AvgSteps          float64 `csv:"avg_steps"`
	AvgParticles      float64 `csv:"avg_particles"`
	PhysicsPerStepUS  float64 `csv:"physics_per_step_us"`
	SyncPerParticleNS int64   `csv:"sync_per_particle_ns"`
	StepsPerSec       float64 `csv:"steps_per_sec"`
	FPS               float64 `csv:"fps"`
	InputPct          float64 `csv:"input_pct"`
	PhysicsPct        float64 `csv:"physics_pct"`
	SyncPct           float64 `csv:"sync_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:         windowEnd,
		AvgTickUS:         s.AvgTickDuration.Microseconds(),
		MaxTickUS:         s.MaxTickDuration.Microseconds(),
		AvgSteps:          s.AvgSteps,
		AvgParticles:      s.AvgParticles,
		PhysicsPerStepUS:  float64(s.PhysicsPerStep) / float64(time.Microsecond),
		SyncPerParticleNS: s.SyncPerParticle.Nanoseconds(),
		StepsPerSec:       s.StepsPerSecond,
		FPS:               s.FPS,
		InputPct:          s.PhasePct[PhaseInput],
		PhysicsPct:        s.PhasePct[PhasePhysics],
		SyncPct:           s.PhasePct[PhaseSync],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
