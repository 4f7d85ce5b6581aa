// Package scene builds the initial physics world: the container walls and
// the particle group that falls into it.
package scene

import (
	"math"

	"github.com/pthm-cable/droplets/config"
	"github.com/pthm-cable/droplets/physics"
)

// Wall is a static box in meters.
type Wall struct {
	Name   string
	Center physics.Vec2
	HalfW  float64
	HalfH  float64
}

// Layout describes what Build created.
type Layout struct {
	Walls     []Wall
	Particles []physics.BodyID
	Spawn     Box
	Bounds    Box // interior of the container, meters
}

// Box is an axis-aligned rectangle given by center and half extents.
type Box struct {
	Center       physics.Vec2
	HalfW, HalfH float64
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p physics.Vec2) bool {
	return math.Abs(p.X-b.Center.X) <= b.HalfW && math.Abs(p.Y-b.Center.Y) <= b.HalfH
}

// Walls returns the ground, left and right walls for a screen of the given
// pixel size. Each wall sits just outside the visible area.
func Walls(cfg *config.Config, screenW, screenH float64) []Wall {
	s := physics.Scale(cfg.World.Meter)
	w := s.ToMeters(screenW)
	h := s.ToMeters(screenH)
	t := s.ToMeters(cfg.Walls.ThicknessPx)
	inset := cfg.Walls.InsetM

	return []Wall{
		{Name: "ground", Center: physics.Vec2{X: w / 2, Y: h + inset}, HalfW: w / 2, HalfH: t},
		{Name: "left", Center: physics.Vec2{X: -inset, Y: h / 2}, HalfW: t, HalfH: h / 2},
		{Name: "right", Center: physics.Vec2{X: w + inset, Y: h / 2}, HalfW: t, HalfH: h / 2},
	}
}

// SpawnBox returns the particle spawn region in meters: centered on the
// screen horizontally and one half screen above its top edge.
func SpawnBox(cfg *config.Config, screenW, screenH float64) Box {
	s := physics.Scale(cfg.World.Meter)
	return Box{
		Center: physics.Vec2{X: s.ToMeters(screenW / 2), Y: -s.ToMeters(screenH / 2)},
		HalfW:  s.ToMeters(cfg.Derived.Spawn.HalfWidth),
		HalfH:  s.ToMeters(cfg.Derived.Spawn.HalfHeight),
	}
}

// ParticleGrid fills box with a square lattice of particle centers spaced
// 2*radius*stride apart, row by row from the top-left corner.
// At most limit points are returned when limit > 0.
func ParticleGrid(box Box, radius, stride float64, limit int) []physics.Vec2 {
	spacing := 2 * radius * stride
	if spacing <= 0 || box.HalfW <= 0 || box.HalfH <= 0 {
		return nil
	}

	cols := int(math.Floor(2*box.HalfW/spacing + 1e-9))
	rows := int(math.Floor(2*box.HalfH/spacing + 1e-9))
	if cols <= 0 || rows <= 0 {
		return nil
	}

	n := cols * rows
	if limit > 0 && n > limit {
		n = limit
	}
	points := make([]physics.Vec2, 0, n)

	// Center the lattice inside the box
	x0 := box.Center.X - float64(cols-1)*spacing/2
	y0 := box.Center.Y - float64(rows-1)*spacing/2

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if len(points) == n {
				return points
			}
			points = append(points, physics.Vec2{
				X: x0 + float64(c)*spacing,
				Y: y0 + float64(r)*spacing,
			})
		}
	}
	return points
}

// Build adds walls and the particle group to engine.
func Build(e physics.Engine, cfg *config.Config, screenW, screenH float64) *Layout {
	layout := &Layout{
		Walls: Walls(cfg, screenW, screenH),
		Spawn: SpawnBox(cfg, screenW, screenH),
	}
	for _, w := range layout.Walls {
		e.AddStaticBox(w.Center, w.HalfW, w.HalfH, 0)
	}

	s := physics.Scale(cfg.World.Meter)
	width := s.ToMeters(screenW)
	height := s.ToMeters(screenH)
	layout.Bounds = Box{
		Center: physics.Vec2{X: width / 2, Y: height / 2},
		HalfW:  width / 2,
		HalfH:  height / 2,
	}

	mat := physics.Material{
		Radius:      cfg.Derived.RadiusM,
		Density:     cfg.Particles.Density,
		Friction:    cfg.Particles.Friction,
		Restitution: cfg.Particles.Restitution,
	}
	points := ParticleGrid(layout.Spawn, mat.Radius, cfg.Particles.Stride, cfg.Particles.MaxCount)
	layout.Particles = make([]physics.BodyID, 0, len(points))
	for _, p := range points {
		layout.Particles = append(layout.Particles, e.AddParticle(p, mat))
	}
	return layout
}

// Escaped reports whether p has left the container: below the ground or
// outside the side walls. Particles above the top edge are still falling in.
func (l *Layout) Escaped(p physics.Vec2) bool {
	b := l.Bounds
	return p.Y > b.Center.Y+b.HalfH || math.Abs(p.X-b.Center.X) > b.HalfW
}
