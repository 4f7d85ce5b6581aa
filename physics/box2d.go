package physics

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"
)

// Box2DEngine runs particles as small circle bodies in a Box2D world.
type Box2DEngine struct {
	world  *box2d.B2World
	ground *box2d.B2Body // static anchor for the mouse joint and walls
	bodies []*box2d.B2Body

	velIters int
	posIters int
	joint    *box2d.B2MouseJoint
	params   JointParams
}

// NewBox2D creates a Box2D-backed engine.
func NewBox2D(opts Options) *Box2DEngine {
	w := box2d.MakeB2World(box2d.MakeB2Vec2(opts.Gravity.X, opts.Gravity.Y))

	e := &Box2DEngine{
		world:    &w,
		velIters: max(opts.VelocityIterations, 1),
		posIters: max(opts.PositionIterations, 1),
		params:   opts.Joint,
	}

	bd := box2d.MakeB2BodyDef()
	e.ground = e.world.CreateBody(&bd)
	return e
}

// Name implements Engine.
func (e *Box2DEngine) Name() string { return Box2D }

// AddStaticBox implements Engine. Walls share the ground body.
func (e *Box2DEngine) AddStaticBox(center Vec2, halfW, halfH, angle float64) {
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBoxFromCenterAndAngle(halfW, halfH, toB2(center), angle)
	e.ground.CreateFixture(&shape, 0)
}

// AddParticle implements Engine.
func (e *Box2DEngine) AddParticle(pos Vec2, mat Material) BodyID {
	id := BodyID(len(e.bodies))

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	bd.Position = toB2(pos)
	bd.FixedRotation = true
	bd.UserData = id

	body := e.world.CreateBody(&bd)

	circle := box2d.MakeB2CircleShape()
	circle.M_radius = mat.Radius

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &circle
	fd.Density = mat.Density
	fd.Friction = mat.Friction
	fd.Restitution = mat.Restitution
	body.CreateFixtureFromDef(&fd)

	e.bodies = append(e.bodies, body)
	return id
}

// Step implements Engine.
func (e *Box2DEngine) Step(dt float64) {
	e.world.Step(dt, e.velIters, e.posIters)
}

// ParticleCount implements Engine.
func (e *Box2DEngine) ParticleCount() int { return len(e.bodies) }

// Positions implements Engine.
func (e *Box2DEngine) Positions(dst []Vec2) []Vec2 {
	dst = dst[:0]
	for _, b := range e.bodies {
		dst = append(dst, fromB2(b.GetPosition()))
	}
	return dst
}

// Velocities implements Engine.
func (e *Box2DEngine) Velocities(dst []Vec2) []Vec2 {
	dst = dst[:0]
	for _, b := range e.bodies {
		dst = append(dst, fromB2(b.GetLinearVelocity()))
	}
	return dst
}

// QueryPoint implements Engine.
// Candidates come from a broad-phase AABB query; a fixture containing p wins
// outright, otherwise the nearest surface within radius.
func (e *Box2DEngine) QueryPoint(p Vec2, radius float64) (BodyID, bool) {
	aabb := box2d.MakeB2AABB()
	aabb.LowerBound = box2d.MakeB2Vec2(p.X-radius, p.Y-radius)
	aabb.UpperBound = box2d.MakeB2Vec2(p.X+radius, p.Y+radius)

	point := toB2(p)
	best := NoBody
	bestDist := math.Inf(1)

	e.world.QueryAABB(func(fixture *box2d.B2Fixture) bool {
		body := fixture.GetBody()
		if body.GetType() != box2d.B2BodyType.B2_dynamicBody {
			return true
		}
		id, ok := body.GetUserData().(BodyID)
		if !ok {
			return true
		}
		if fixture.TestPoint(point) {
			best = id
			bestDist = 0
			return false
		}
		d := math.Sqrt(fromB2(body.GetPosition()).Sub(p).LengthSq()) - fixture.GetShape().GetRadius()
		if d <= radius && d < bestDist {
			best = id
			bestDist = d
		}
		return true
	}, aabb)

	return best, best != NoBody
}

// CreateMouseJoint implements Engine.
func (e *Box2DEngine) CreateMouseJoint(id BodyID, target Vec2) error {
	if e.joint != nil {
		return ErrJointActive
	}
	if id < 0 || int(id) >= len(e.bodies) {
		return fmt.Errorf("%w: %d", ErrNoBody, id)
	}
	body := e.bodies[id]

	md := box2d.MakeB2MouseJointDef()
	md.BodyA = e.ground
	md.BodyB = body
	md.Target = toB2(target)
	md.MaxForce = e.params.MaxForceScale * body.GetMass()
	md.FrequencyHz = e.params.FrequencyHz
	md.DampingRatio = e.params.DampingRatio

	joint, ok := e.world.CreateJoint(&md).(*box2d.B2MouseJoint)
	if !ok {
		return fmt.Errorf("physics: box2d returned unexpected joint type")
	}
	e.joint = joint
	body.SetAwake(true)
	return nil
}

// SetMouseTarget implements Engine.
func (e *Box2DEngine) SetMouseTarget(target Vec2) {
	if e.joint == nil {
		return
	}
	e.joint.SetTarget(toB2(target))
}

// DestroyMouseJoint implements Engine.
func (e *Box2DEngine) DestroyMouseJoint() {
	if e.joint == nil {
		return
	}
	e.world.DestroyJoint(e.joint)
	e.joint = nil
}

// HasMouseJoint implements Engine.
func (e *Box2DEngine) HasMouseJoint() bool { return e.joint != nil }

// Gravity implements Engine.
func (e *Box2DEngine) Gravity() Vec2 { return fromB2(e.world.GetGravity()) }

// SetGravity implements Engine.
func (e *Box2DEngine) SetGravity(g Vec2) {
	e.world.SetGravity(toB2(g))
	for _, b := range e.bodies {
		b.SetAwake(true)
	}
}

func toB2(v Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X, v.Y)
}

func fromB2(v box2d.B2Vec2) Vec2 {
	return Vec2{v.X, v.Y}
}
