// Package components defines ECS components for the visual side of the demo.
// Physics state lives in the engine; these hold what the renderer reads.
package components

import "github.com/pthm-cable/droplets/physics"

// Position represents an entity's screen-space position in world pixels.
type Position struct {
	X, Y float32
}

// Velocity represents an entity's velocity in pixels per second.
type Velocity struct {
	X, Y float32
}

// Particle links an entity to its body in the physics engine.
type Particle struct {
	Body physics.BodyID // also the index into the engine position buffer
}

// Sprite holds per-particle draw parameters.
type Sprite struct {
	R, G, B, A uint8
	Highlight  bool // set while the particle is held by the mouse joint
}

// DefaultSprite returns the plain white particle sprite.
func DefaultSprite() Sprite {
	return Sprite{R: 255, G: 255, B: 255, A: 255}
}
