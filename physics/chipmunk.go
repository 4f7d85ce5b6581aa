package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// mouseLerp is the fraction of the remaining distance the kinematic mouse
// body covers each step.
const mouseLerp = 0.25

// grabbableMaskBit marks shapes the mouse may pick. Walls clear it so a
// nearer wall never hides a particle from PointQueryNearest.
const grabbableMaskBit uint = 1 << 31

var (
	grabFilter         = cp.NewShapeFilter(cp.NO_GROUP, grabbableMaskBit, grabbableMaskBit)
	notGrabbableFilter = cp.NewShapeFilter(cp.NO_GROUP, ^grabbableMaskBit, ^grabbableMaskBit)
)

// ChipmunkEngine runs particles as circle shapes in a Chipmunk space.
type ChipmunkEngine struct {
	space  *cp.Space
	bodies []*cp.Body

	mouseBody *cp.Body // kinematic, never added to the space
	target    Vec2
	joint     *cp.Constraint
	params    JointParams
}

// NewChipmunk creates a Chipmunk-backed engine.
func NewChipmunk(opts Options) *ChipmunkEngine {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: opts.Gravity.X, Y: opts.Gravity.Y})
	space.Iterations = uint(max(opts.VelocityIterations+opts.PositionIterations, 1))
	if opts.CollisionSlop > 0 {
		space.SetCollisionSlop(opts.CollisionSlop)
	}

	return &ChipmunkEngine{
		space:     space,
		mouseBody: cp.NewKinematicBody(),
		params:    opts.Joint,
	}
}

// Name implements Engine.
func (e *ChipmunkEngine) Name() string { return Chipmunk }

// AddStaticBox implements Engine.
func (e *ChipmunkEngine) AddStaticBox(center Vec2, halfW, halfH, angle float64) {
	verts := []cp.Vector{
		{X: -halfW, Y: -halfH},
		{X: -halfW, Y: halfH},
		{X: halfW, Y: halfH},
		{X: halfW, Y: -halfH},
	}
	xf := cp.NewTransformRigid(cp.Vector{X: center.X, Y: center.Y}, angle)
	shape := e.space.AddShape(cp.NewPolyShape(e.space.StaticBody, len(verts), verts, xf, 0))
	shape.SetFriction(1)
	shape.SetElasticity(0)
	shape.SetFilter(notGrabbableFilter)
}

// AddParticle implements Engine.
func (e *ChipmunkEngine) AddParticle(pos Vec2, mat Material) BodyID {
	id := BodyID(len(e.bodies))

	mass := mat.Density * math.Pi * mat.Radius * mat.Radius
	body := e.space.AddBody(cp.NewBody(mass, cp.INFINITY))
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})
	body.UserData = id

	shape := e.space.AddShape(cp.NewCircle(body, mat.Radius, cp.Vector{}))
	shape.SetFriction(mat.Friction)
	shape.SetElasticity(mat.Restitution)

	e.bodies = append(e.bodies, body)
	return id
}

// Step implements Engine.
func (e *ChipmunkEngine) Step(dt float64) {
	if e.joint != nil {
		cur := e.mouseBody.Position()
		next := cur.Lerp(cp.Vector{X: e.target.X, Y: e.target.Y}, mouseLerp)
		e.mouseBody.SetVelocityVector(next.Sub(cur).Mult(1 / dt))
		e.mouseBody.SetPosition(next)
	}
	e.space.Step(dt)
}

// ParticleCount implements Engine.
func (e *ChipmunkEngine) ParticleCount() int { return len(e.bodies) }

// Positions implements Engine.
func (e *ChipmunkEngine) Positions(dst []Vec2) []Vec2 {
	dst = dst[:0]
	for _, b := range e.bodies {
		p := b.Position()
		dst = append(dst, Vec2{p.X, p.Y})
	}
	return dst
}

// Velocities implements Engine.
func (e *ChipmunkEngine) Velocities(dst []Vec2) []Vec2 {
	dst = dst[:0]
	for _, b := range e.bodies {
		v := b.Velocity()
		dst = append(dst, Vec2{v.X, v.Y})
	}
	return dst
}

// QueryPoint implements Engine.
func (e *ChipmunkEngine) QueryPoint(p Vec2, radius float64) (BodyID, bool) {
	info := e.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Y}, radius, grabFilter)
	if info == nil || info.Shape == nil {
		return NoBody, false
	}
	body := info.Shape.Body()
	if body.GetType() != cp.BODY_DYNAMIC {
		return NoBody, false
	}
	id, ok := body.UserData.(BodyID)
	if !ok {
		return NoBody, false
	}
	return id, true
}

// CreateMouseJoint implements Engine.
func (e *ChipmunkEngine) CreateMouseJoint(id BodyID, target Vec2) error {
	if e.joint != nil {
		return ErrJointActive
	}
	if id < 0 || int(id) >= len(e.bodies) {
		return fmt.Errorf("%w: %d", ErrNoBody, id)
	}
	body := e.bodies[id]

	e.target = target
	e.mouseBody.SetPosition(cp.Vector{X: target.X, Y: target.Y})
	e.mouseBody.SetVelocityVector(cp.Vector{})

	joint := cp.NewPivotJoint2(e.mouseBody, body, cp.Vector{}, cp.Vector{})
	joint.SetMaxForce(e.params.MaxForceScale * body.Mass())
	joint.SetErrorBias(math.Pow(1.0-0.15, 60.0))
	e.joint = e.space.AddConstraint(joint)
	body.Activate()
	return nil
}

// SetMouseTarget implements Engine. The kinematic body eases toward the
// target during Step.
func (e *ChipmunkEngine) SetMouseTarget(target Vec2) {
	if e.joint == nil {
		return
	}
	e.target = target
}

// DestroyMouseJoint implements Engine.
func (e *ChipmunkEngine) DestroyMouseJoint() {
	if e.joint == nil {
		return
	}
	e.space.RemoveConstraint(e.joint)
	e.joint = nil
}

// HasMouseJoint implements Engine.
func (e *ChipmunkEngine) HasMouseJoint() bool { return e.joint != nil }

// Gravity implements Engine.
func (e *ChipmunkEngine) Gravity() Vec2 {
	g := e.space.Gravity()
	return Vec2{g.X, g.Y}
}

// SetGravity implements Engine.
func (e *ChipmunkEngine) SetGravity(g Vec2) {
	e.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}
