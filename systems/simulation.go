// Package systems holds the per-tick simulation logic that runs without a
// window: engine stepping, the engine-to-ECS sync, mouse dragging and the
// telemetry flush.
package systems

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/droplets/components"
	"github.com/pthm-cable/droplets/config"
	"github.com/pthm-cable/droplets/physics"
	"github.com/pthm-cable/droplets/scene"
	"github.com/pthm-cable/droplets/telemetry"
)

// Steps-per-update bounds for interactive control.
const (
	MinStepsPerUpdate = 1
	MaxStepsPerUpdate = 10
)

// Options configures a simulation.
type Options struct {
	Backend        string // overrides physics.backend when non-empty
	LogStats       bool
	OutputDir      string
	StepsPerUpdate int // not clamped to MaxStepsPerUpdate, so headless runs can go faster
}

// Simulation owns the physics engine and the ECS world mirroring it.
type Simulation struct {
	cfg    *config.Config
	scale  physics.Scale
	engine physics.Engine
	layout *scene.Layout

	world          *ecs.World
	particleMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sprite,
	]
	particleFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sprite,
	]
	entities []ecs.Entity // indexed by physics.BodyID

	// Engine readback buffers, reused every sync
	positions  []physics.Vec2
	velocities []physics.Vec2

	drag *DragController

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	latestStats   *telemetry.WindowStats

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int
	gravityOn      bool
	gravity        physics.Vec2 // restored by ToggleGravity
}

// NewSimulation builds the scene described by cfg.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if opts.Backend != "" && opts.Backend != cfg.Physics.Backend {
		cfg.Physics.Backend = opts.Backend
		if err := cfg.Finalize(); err != nil {
			return nil, err
		}
	}

	steps := opts.StepsPerUpdate
	if steps < MinStepsPerUpdate {
		steps = MinStepsPerUpdate
	}

	s := &Simulation{
		cfg:            cfg,
		scale:          physics.Scale(cfg.World.Meter),
		stepsPerUpdate: steps,
		gravityOn:      true,
		gravity:        physics.Vec2{X: cfg.Physics.GravityX, Y: cfg.Physics.GravityY},
		logStats:       opts.LogStats,
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}

	if err := s.buildScene(); err != nil {
		return nil, err
	}

	s.collector = telemetry.NewCollector(cfg.Derived.StatsWindowTck, cfg.Physics.TimeStep, s.engine.Name())

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("initializing output: %w", err)
	}
	s.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("scene built",
		"backend", s.engine.Name(),
		"particles", len(s.entities),
		"performance", cfg.Derived.Performance,
	)
	return s, nil
}

// buildScene creates a fresh engine, walls, particles and ECS world.
func (s *Simulation) buildScene() error {
	cfg := s.cfg
	engine, err := physics.New(cfg.Physics.Backend, physics.Options{
		Gravity:            s.currentGravity(),
		VelocityIterations: cfg.Physics.VelocityIterations,
		PositionIterations: cfg.Physics.PositionIterations,
		CollisionSlop:      cfg.Physics.CollisionSlop,
		Joint: physics.JointParams{
			MaxForceScale: cfg.Drag.MaxForceScale,
			FrequencyHz:   cfg.Drag.FrequencyHz,
			DampingRatio:  cfg.Drag.DampingRatio,
		},
	})
	if err != nil {
		return fmt.Errorf("creating physics engine: %w", err)
	}
	s.engine = engine
	s.layout = scene.Build(engine, cfg, float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	s.drag = NewDragController(engine, cfg.Derived.PickRadiusM)

	s.world = ecs.NewWorld()
	s.particleMapper = ecs.NewMap4[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sprite,
	](s.world)
	s.particleFilter = ecs.NewFilter4[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Sprite,
	](s.world)

	s.entities = s.entities[:0]
	for _, id := range s.layout.Particles {
		s.entities = append(s.entities, s.spawnParticle(id))
	}

	// Sprites start where the engine placed the bodies
	s.syncSprites()
	return nil
}

// spawnParticle creates the entity mirroring body id.
func (s *Simulation) spawnParticle(id physics.BodyID) ecs.Entity {
	pos := components.Position{}
	vel := components.Velocity{}
	particle := components.Particle{Body: id}
	sprite := components.DefaultSprite()
	return s.particleMapper.NewEntity(&pos, &vel, &particle, &sprite)
}

// Update runs one timed update: stepsPerUpdate engine steps and a sync.
// Does nothing but record timing while paused.
func (s *Simulation) Update() {
	s.perfCollector.StartTick()
	steps := s.Advance()
	s.perfCollector.EndTick(steps, len(s.entities))
}

// Advance runs the engine steps and sync of one update inside a tick the
// caller is timing and returns the number of steps run. Does nothing
// while paused.
func (s *Simulation) Advance() int {
	if s.paused {
		return 0
	}
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.perfCollector.StartPhase(telemetry.PhasePhysics)
		s.engine.Step(s.cfg.Physics.TimeStep)
		s.tick++
	}

	s.perfCollector.StartPhase(telemetry.PhaseSync)
	s.syncSprites()

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	return s.stepsPerUpdate
}

// Step advances by exactly one engine step and syncs, even while paused.
func (s *Simulation) Step() {
	s.engine.Step(s.cfg.Physics.TimeStep)
	s.tick++
	s.syncSprites()
	s.flushTelemetry()
}

// Reset rebuilds the engine, scene and ECS world from config.
// An active drag is released first. The tick counter keeps running.
func (s *Simulation) Reset() error {
	s.drag.End()
	if err := s.buildScene(); err != nil {
		return err
	}
	s.collector.SetBackend(s.engine.Name())
	s.collector.RecordReset()
	slog.Info("scene reset", "tick", s.tick, "particles", len(s.entities))
	return nil
}

// BeginDrag grabs the particle under p (meters). Returns false on a miss.
func (s *Simulation) BeginDrag(p physics.Vec2) bool {
	wasActive := s.drag.Active()
	if !s.drag.Begin(p) {
		return false
	}
	if !wasActive {
		s.collector.RecordDragStart()
	}
	return true
}

// MoveDrag moves the drag target to p (meters).
func (s *Simulation) MoveDrag(p physics.Vec2) {
	s.drag.Move(p)
}

// EndDrag releases the held particle.
func (s *Simulation) EndDrag() {
	s.drag.End()
}

// ToggleGravity switches between the configured gravity and none.
func (s *Simulation) ToggleGravity() {
	s.gravityOn = !s.gravityOn
	s.engine.SetGravity(s.currentGravity())
}

// GravityOn reports whether gravity is enabled.
func (s *Simulation) GravityOn() bool {
	return s.gravityOn
}

// SetGravityY replaces the vertical gravity, keeping the toggle state.
func (s *Simulation) SetGravityY(y float64) {
	s.gravity.Y = y
	s.engine.SetGravity(s.currentGravity())
}

// GravityY returns the vertical gravity used while gravity is on.
func (s *Simulation) GravityY() float64 {
	return s.gravity.Y
}

func (s *Simulation) currentGravity() physics.Vec2 {
	if !s.gravityOn {
		return physics.Vec2{}
	}
	return s.gravity
}

// SetPaused pauses or resumes the simulation.
func (s *Simulation) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether the simulation is paused.
func (s *Simulation) Paused() bool {
	return s.paused
}

// SetStepsPerUpdate clamps n to [MinStepsPerUpdate, MaxStepsPerUpdate].
func (s *Simulation) SetStepsPerUpdate(n int) {
	if n < MinStepsPerUpdate {
		n = MinStepsPerUpdate
	}
	if n > MaxStepsPerUpdate {
		n = MaxStepsPerUpdate
	}
	s.stepsPerUpdate = n
}

// StepsPerUpdate returns the engine steps run per update.
func (s *Simulation) StepsPerUpdate() int {
	return s.stepsPerUpdate
}

// SetStatsCallback registers a function called after every stats window.
func (s *Simulation) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// LatestStats returns the last flushed window, or nil before the first flush.
func (s *Simulation) LatestStats() *telemetry.WindowStats {
	return s.latestStats
}

// Perf returns the performance collector.
func (s *Simulation) Perf() *telemetry.PerfCollector {
	return s.perfCollector
}

// Config returns the simulation config.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Engine returns the physics engine.
func (s *Simulation) Engine() physics.Engine {
	return s.engine
}

// Layout returns the scene built at the last reset.
func (s *Simulation) Layout() *scene.Layout {
	return s.layout
}

// Drag returns the drag controller.
func (s *Simulation) Drag() *DragController {
	return s.drag
}

// ParticleCount returns the number of particle entities.
func (s *Simulation) ParticleCount() int {
	return len(s.entities)
}

// ParticlePosition returns the synced pixel position of particle i.
func (s *Simulation) ParticlePosition(i int) components.Position {
	pos, _, _, _ := s.particleMapper.Get(s.entities[i])
	return *pos
}

// ForEachParticle calls fn with the synced state of every particle.
func (s *Simulation) ForEachParticle(fn func(pos *components.Position, vel *components.Velocity, sprite *components.Sprite)) {
	query := s.particleFilter.Query()
	for query.Next() {
		pos, vel, _, sprite := query.Get()
		fn(pos, vel, sprite)
	}
}

// Tick returns the number of engine steps taken.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Close releases the drag joint and closes output files.
func (s *Simulation) Close() error {
	s.drag.End()
	if dir := s.outputManager.Dir(); dir != "" {
		slog.Info("output written", "dir", dir, "tick", s.tick)
	}
	return s.outputManager.Close()
}
