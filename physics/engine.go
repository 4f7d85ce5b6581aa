// Package physics adapts external 2D physics engines to the small surface the
// demo needs: static walls, circle particles, stepping, position readback and
// a single mouse joint.
//
// All coordinates are engine meters with +Y pointing down the screen.
package physics

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrUnknownBackend indicates a backend name with no adapter.
	ErrUnknownBackend = errors.New("physics: unknown backend")

	// ErrNoBody indicates a body ID that does not refer to a particle.
	ErrNoBody = errors.New("physics: no such body")

	// ErrJointActive indicates a mouse joint already exists.
	ErrJointActive = errors.New("physics: mouse joint already active")
)

// Vec2 is a 2D vector in engine meters.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// LengthSq returns the squared length of v.
func (v Vec2) LengthSq() float64 { return v.X*v.X + v.Y*v.Y }

// BodyID identifies a particle body. IDs are dense and follow creation order,
// so they double as indices into the Positions buffer.
type BodyID int32

// NoBody is returned by queries that hit nothing.
const NoBody BodyID = -1

// Material holds per-particle contact parameters.
type Material struct {
	Radius      float64
	Density     float64
	Friction    float64
	Restitution float64
}

// JointParams tunes the mouse joint.
type JointParams struct {
	MaxForceScale float64 // max force = scale * body mass
	FrequencyHz   float64
	DampingRatio  float64
}

// Options configures a new engine.
type Options struct {
	Gravity            Vec2
	VelocityIterations int
	PositionIterations int
	CollisionSlop      float64
	Joint              JointParams
}

// Engine is the subset of a physics engine the demo drives.
type Engine interface {
	// Name returns the backend name.
	Name() string

	// AddStaticBox adds a static rectangle centered at center with the given half extents.
	AddStaticBox(center Vec2, halfW, halfH, angle float64)

	// AddParticle adds a dynamic circle body and returns its ID.
	AddParticle(pos Vec2, mat Material) BodyID

	// Step advances the simulation by dt seconds.
	Step(dt float64)

	// ParticleCount returns the number of particles created so far.
	ParticleCount() int

	// Positions appends every particle position, indexed by BodyID, to dst[:0].
	Positions(dst []Vec2) []Vec2

	// Velocities appends every particle velocity, indexed by BodyID, to dst[:0].
	Velocities(dst []Vec2) []Vec2

	// QueryPoint returns the dynamic body closest to p within radius.
	QueryPoint(p Vec2, radius float64) (BodyID, bool)

	// CreateMouseJoint attaches the particle to a target point.
	CreateMouseJoint(id BodyID, target Vec2) error

	// SetMouseTarget moves the joint target. No-op without a joint.
	SetMouseTarget(target Vec2)

	// DestroyMouseJoint removes the joint. No-op without a joint.
	DestroyMouseJoint()

	// HasMouseJoint reports whether a joint is active.
	HasMouseJoint() bool

	// Gravity returns the world gravity.
	Gravity() Vec2

	// SetGravity replaces the world gravity.
	SetGravity(g Vec2)
}

// Backend names.
const (
	Box2D    = "box2d"
	Chipmunk = "chipmunk"
)

// New creates an engine for the named backend.
func New(backend string, opts Options) (Engine, error) {
	switch backend {
	case Box2D:
		return NewBox2D(opts), nil
	case Chipmunk:
		return NewChipmunk(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Backends lists the available backend names.
func Backends() []string {
	return []string{Box2D, Chipmunk}
}
