// Package config provides configuration loading and access for the demo.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("config: invalid value")

// Physics backends understood by the physics package.
const (
	BackendBox2D    = "box2d"
	BackendChipmunk = "chipmunk"
)

// Performance levels select the size of the initial particle group.
// PerformanceAuto, or an empty value, resolves by platform.
const (
	PerformanceAuto = "auto"
	PerformanceHigh = "high"
	PerformanceLow  = "low"
)

// PlatformPerformance returns the level used for auto on goos: the large
// group on Windows and macOS, the small one everywhere else.
func PlatformPerformance(goos string) string {
	switch goos {
	case "windows", "darwin":
		return PerformanceHigh
	}
	return PerformanceLow
}

// Config holds all demo configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Particles ParticlesConfig `yaml:"particles"`
	Walls     WallsConfig     `yaml:"walls"`
	Drag      DragConfig      `yaml:"drag"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
	Resizable bool   `yaml:"resizable"`
}

// WorldConfig holds the mapping between engine units and pixels.
type WorldConfig struct {
	Meter float64 `yaml:"meter"` // pixels per engine meter
}

// PhysicsConfig holds engine selection and stepping parameters.
type PhysicsConfig struct {
	Backend            string  `yaml:"backend"`
	TimeStep           float64 `yaml:"time_step"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	GravityX           float64 `yaml:"gravity_x"`
	GravityY           float64 `yaml:"gravity_y"` // positive is down the screen
	CollisionSlop      float64 `yaml:"collision_slop"`
}

// SpawnBox is a half-extent rectangle in pixels.
type SpawnBox struct {
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
}

// ParticlesConfig holds particle group parameters.
type ParticlesConfig struct {
	RadiusPx    float64  `yaml:"radius_px"`
	Performance string   `yaml:"performance"`
	SpawnHigh   SpawnBox `yaml:"spawn_high"`
	SpawnLow    SpawnBox `yaml:"spawn_low"`
	Stride      float64  `yaml:"stride"` // lattice spacing as a fraction of the diameter
	Density     float64  `yaml:"density"`
	Friction    float64  `yaml:"friction"`
	Restitution float64  `yaml:"restitution"`
	MaxCount    int      `yaml:"max_count"` // 0 = unlimited
	SpriteFill  float64  `yaml:"sprite_fill"` // drawn disc radius as a fraction of radius_px
}

// WallsConfig holds container geometry.
type WallsConfig struct {
	ThicknessPx float64 `yaml:"thickness_px"` // half thickness of each wall
	InsetM      float64 `yaml:"inset_m"`      // distance the wall centers sit outside the screen
}

// DragConfig holds mouse joint parameters.
type DragConfig struct {
	PickRadiusPx  float64 `yaml:"pick_radius_px"`
	MaxForceScale float64 `yaml:"max_force_scale"` // joint max force = scale * body mass
	FrequencyHz   float64 `yaml:"frequency_hz"`
	DampingRatio  float64 `yaml:"damping_ratio"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // seconds of sim time per stats row
	PerfWindow  int     `yaml:"perf_window"`  // ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Performance    string   // resolved level, never auto
	Spawn          SpawnBox // spawn box for the active performance level
	RadiusM        float64  // particle radius in meters
	PickRadiusM    float64
	ScreenW32      float32
	ScreenH32      float32
	StatsWindowTck int32 // stats window expressed in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it after changing fields in code.
func (c *Config) Finalize() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

func (c *Config) validate() error {
	switch c.Physics.Backend {
	case BackendBox2D, BackendChipmunk:
	default:
		return fmt.Errorf("%w: physics.backend %q", ErrInvalid, c.Physics.Backend)
	}
	switch c.Particles.Performance {
	case "", PerformanceAuto, PerformanceHigh, PerformanceLow:
	default:
		return fmt.Errorf("%w: particles.performance %q", ErrInvalid, c.Particles.Performance)
	}
	if c.World.Meter <= 0 {
		return fmt.Errorf("%w: world.meter must be positive", ErrInvalid)
	}
	if c.Physics.TimeStep <= 0 {
		return fmt.Errorf("%w: physics.time_step must be positive", ErrInvalid)
	}
	if c.Particles.RadiusPx <= 0 {
		return fmt.Errorf("%w: particles.radius_px must be positive", ErrInvalid)
	}
	if c.Particles.Stride <= 0 {
		return fmt.Errorf("%w: particles.stride must be positive", ErrInvalid)
	}
	if c.Particles.MaxCount < 0 {
		return fmt.Errorf("%w: particles.max_count must not be negative", ErrInvalid)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("%w: screen size %dx%d", ErrInvalid, c.Screen.Width, c.Screen.Height)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Performance = c.Particles.Performance
	if c.Derived.Performance == "" || c.Derived.Performance == PerformanceAuto {
		c.Derived.Performance = PlatformPerformance(runtime.GOOS)
	}
	if c.Derived.Performance == PerformanceHigh {
		c.Derived.Spawn = c.Particles.SpawnHigh
	} else {
		c.Derived.Spawn = c.Particles.SpawnLow
	}
	c.Derived.RadiusM = c.Particles.RadiusPx / c.World.Meter
	c.Derived.PickRadiusM = c.Drag.PickRadiusPx / c.World.Meter
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	ticks := int32(math.Round(c.Telemetry.StatsWindow / c.Physics.TimeStep))
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTck = ticks
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
