// Package game is the windowed front end: raylib input, drawing and the
// control panel around a systems.Simulation.
package game

import (
	"github.com/pthm-cable/droplets/camera"
	"github.com/pthm-cable/droplets/config"
	"github.com/pthm-cable/droplets/physics"
	"github.com/pthm-cable/droplets/renderer"
	"github.com/pthm-cable/droplets/systems"
	"github.com/pthm-cable/droplets/telemetry"
)

// Options configures game behavior.
type Options struct {
	Backend        string // overrides physics.backend when non-empty
	LogStats       bool
	OutputDir      string
	Headless       bool
	StepsPerUpdate int
}

// Game holds the complete demo state.
type Game struct {
	cfg   *config.Config
	sim   *systems.Simulation
	scale physics.Scale

	camera *camera.Camera

	// Rendering (nil in headless mode)
	particleRenderer *renderer.ParticleRenderer
	controls         *controlPanel

	headless bool

	// Window dimensions
	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a new game from the global config.
// In graphical mode the raylib window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	steps := opts.StepsPerUpdate
	if !opts.Headless && steps > systems.MaxStepsPerUpdate {
		steps = systems.MaxStepsPerUpdate
	}

	sim, err := systems.NewSimulation(cfg, systems.Options{
		Backend:        opts.Backend,
		LogStats:       opts.LogStats,
		OutputDir:      opts.OutputDir,
		StepsPerUpdate: steps,
	})
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:          cfg,
		sim:          sim,
		scale:        physics.Scale(cfg.World.Meter),
		headless:     opts.Headless,
		screenWidth:  cfg.Derived.ScreenW32,
		screenHeight: cfg.Derived.ScreenH32,
	}
	g.camera = camera.New(g.screenWidth, g.screenHeight, cfg.Derived.ScreenW32, cfg.Derived.ScreenH32)

	if !g.headless {
		g.particleRenderer = renderer.NewParticleRenderer(float32(cfg.Particles.RadiusPx), float32(cfg.Particles.SpriteFill))
		g.controls = newControlPanel()
	}

	return g, nil
}

// Update handles input, then steps and syncs the simulation.
func (g *Game) Update() {
	perf := g.sim.Perf()
	perf.StartTick()

	perf.StartPhase(telemetry.PhaseInput)
	g.handleInput()

	steps := g.sim.Advance()
	perf.EndTick(steps, g.sim.ParticleCount())
}

// UpdateHeadless runs one update without input or rendering.
func (g *Game) UpdateHeadless() {
	g.sim.Update()
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *systems.Simulation {
	return g.sim
}

// LatestStats returns the last flushed stats window.
func (g *Game) LatestStats() *telemetry.WindowStats {
	return g.sim.LatestStats()
}

// Tick returns the current engine step count.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// screenToMeters maps a screen point through the camera into engine meters.
func (g *Game) screenToMeters(sx, sy float32) physics.Vec2 {
	wx, wy := g.camera.ScreenToWorld(sx, sy)
	return g.scale.PointToMeters(wx, wy)
}

// Unload releases rendering resources and closes output files.
func (g *Game) Unload() error {
	if g.particleRenderer != nil {
		g.particleRenderer.Unload()
	}
	return g.sim.Close()
}
