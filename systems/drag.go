package systems

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/droplets/physics"
)

// DragController turns pointer press, move and release into the engine's
// mouse joint lifecycle. Coordinates are engine meters.
type DragController struct {
	engine     physics.Engine
	pickRadius float64

	body   physics.BodyID
	target physics.Vec2
}

// NewDragController creates a controller that picks bodies within pickRadius meters.
func NewDragController(engine physics.Engine, pickRadius float64) *DragController {
	return &DragController{
		engine:     engine,
		pickRadius: pickRadius,
		body:       physics.NoBody,
	}
}

// Begin picks the body under p and attaches the mouse joint to it.
// Returns false when nothing is under the pointer.
func (d *DragController) Begin(p physics.Vec2) bool {
	if d.Active() {
		d.Move(p)
		return true
	}

	id, ok := d.engine.QueryPoint(p, d.pickRadius)
	if !ok {
		return false
	}
	if err := d.engine.CreateMouseJoint(id, p); err != nil {
		if !errors.Is(err, physics.ErrJointActive) {
			slog.Error("failed to create mouse joint", "body", id, "error", err)
		}
		return false
	}

	d.body = id
	d.target = p
	return true
}

// Move updates the joint target. No-op while not dragging.
func (d *DragController) Move(p physics.Vec2) {
	if !d.Active() {
		return
	}
	d.target = p
	d.engine.SetMouseTarget(p)
}

// End releases the joint. No-op while not dragging.
func (d *DragController) End() {
	if !d.Active() {
		return
	}
	d.engine.DestroyMouseJoint()
	d.body = physics.NoBody
}

// Active reports whether a body is held.
func (d *DragController) Active() bool {
	return d.body != physics.NoBody && d.engine.HasMouseJoint()
}

// Body returns the held body, or physics.NoBody.
func (d *DragController) Body() physics.BodyID {
	return d.body
}

// Target returns the last joint target.
func (d *DragController) Target() physics.Vec2 {
	return d.target
}
