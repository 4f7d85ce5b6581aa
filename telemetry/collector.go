package telemetry

import (
	"math"

	"github.com/pthm-cable/droplets/physics"
)

// Region classifies particle positions against the container.
type Region interface {
	Escaped(p physics.Vec2) bool
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64
	backend             string

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	dragStarts int
	resets     int

	// Scratch buffers reused across flushes
	ys     []float64
	speeds []float64
}

// NewCollector creates a new stats collector.
// windowTicks: how many ticks each stats window lasts
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int32, dt float64, backend string) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		dt:                  dt,
		backend:             backend,
	}
}

// RecordDragStart records a successful mouse pick.
func (c *Collector) RecordDragStart() {
	c.dragStarts++
}

// RecordReset records a scene rebuild.
func (c *Collector) RecordReset() {
	c.resets++
}

// SetBackend changes the backend name reported in later windows.
func (c *Collector) SetBackend(name string) {
	c.backend = name
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the engine buffers and resets counters
// for the next window. positions and velocities are indexed by body ID.
func (c *Collector) Flush(
	currentTick int32,
	region Region,
	positions, velocities []physics.Vec2,
	dragging bool,
) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Backend:         c.backend,
		Particles:       len(positions),
		DragStarts:      c.dragStarts,
		Resets:          c.resets,
		Dragging:        dragging,
	}

	c.ys = c.ys[:0]
	for _, p := range positions {
		switch {
		case region.Escaped(p):
			stats.Escaped++
		case p.Y < 0:
			stats.Falling++
		default:
			stats.Contained++
		}
		c.ys = append(c.ys, p.Y)
	}

	c.speeds = c.speeds[:0]
	for _, v := range velocities {
		c.speeds = append(c.speeds, math.Sqrt(v.LengthSq()))
	}

	spread := ComputeSpread(c.ys)
	stats.MeanY = spread.Mean
	stats.StdY = spread.Std
	stats.P10Y = spread.P10
	stats.P50Y = spread.P50
	stats.P90Y = spread.P90
	stats.MeanSpeed, stats.MaxSpeed = ComputeSpeeds(c.speeds)

	// Reset for next window
	c.windowStartTick = currentTick
	c.dragStarts = 0
	c.resets = 0

	return stats
}
