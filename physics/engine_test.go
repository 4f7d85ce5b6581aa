package physics

import (
	"errors"
	"math"
	"testing"
)

var testMaterial = Material{Radius: 0.04, Density: 1, Friction: 0.2}

func testOptions(gravity Vec2) Options {
	return Options{
		Gravity:            gravity,
		VelocityIterations: 8,
		PositionIterations: 3,
		CollisionSlop:      0.005,
		Joint: JointParams{
			MaxForceScale: 1000,
			FrequencyHz:   5,
			DampingRatio:  0.7,
		},
	}
}

// forEachBackend runs fn against a fresh engine for every backend.
func forEachBackend(t *testing.T, gravity Vec2, fn func(t *testing.T, e Engine)) {
	for _, name := range Backends() {
		t.Run(name, func(t *testing.T) {
			e, err := New(name, testOptions(gravity))
			if err != nil {
				t.Fatalf("creating %s: %v", name, err)
			}
			if e.Name() != name {
				t.Errorf("expected name %q, got %q", name, e.Name())
			}
			fn(t, e)
		})
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("havok", Options{})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestParticleRestsOnGround(t *testing.T) {
	forEachBackend(t, Vec2{0, 10}, func(t *testing.T, e Engine) {
		// Ground top surface at y=2
		e.AddStaticBox(Vec2{1, 2.05}, 2, 0.05, 0)
		e.AddParticle(Vec2{1, 1}, testMaterial)

		for i := 0; i < 240; i++ {
			e.Step(1.0 / 60.0)
		}

		pos := e.Positions(nil)
		if len(pos) != 1 {
			t.Fatalf("expected 1 position, got %d", len(pos))
		}
		want := 2 - testMaterial.Radius
		if math.Abs(pos[0].Y-want) > 0.05 {
			t.Errorf("expected particle resting near y=%.3f, got %.3f", want, pos[0].Y)
		}
		if math.Abs(pos[0].X-1) > 0.05 {
			t.Errorf("particle drifted sideways to x=%.3f", pos[0].X)
		}
	})
}

func TestPositionsFollowCreationOrder(t *testing.T) {
	forEachBackend(t, Vec2{}, func(t *testing.T, e Engine) {
		starts := []Vec2{{0.5, 0.5}, {1.5, 0.5}, {2.5, 0.5}}
		for i, p := range starts {
			id := e.AddParticle(p, testMaterial)
			if int(id) != i {
				t.Errorf("expected id %d, got %d", i, id)
			}
		}
		if e.ParticleCount() != len(starts) {
			t.Fatalf("expected %d particles, got %d", len(starts), e.ParticleCount())
		}

		buf := make([]Vec2, 0, 8)
		buf = e.Positions(buf)
		for i, p := range starts {
			if buf[i] != p {
				t.Errorf("particle %d: expected %v, got %v", i, p, buf[i])
			}
		}

		vel := e.Velocities(nil)
		for i, v := range vel {
			if v.LengthSq() != 0 {
				t.Errorf("particle %d: expected zero velocity without gravity, got %v", i, v)
			}
		}
	})
}

func TestQueryPoint(t *testing.T) {
	forEachBackend(t, Vec2{}, func(t *testing.T, e Engine) {
		e.AddStaticBox(Vec2{3, 3}, 0.5, 0.5, 0)
		e.AddParticle(Vec2{1, 1}, testMaterial)
		target := e.AddParticle(Vec2{1.2, 1}, testMaterial)

		id, ok := e.QueryPoint(Vec2{1.21, 1}, 0.1)
		if !ok || id != target {
			t.Errorf("expected hit on %d, got %d (ok=%v)", target, id, ok)
		}

		if _, ok := e.QueryPoint(Vec2{2, 2}, 0.1); ok {
			t.Error("expected miss in empty space")
		}

		if _, ok := e.QueryPoint(Vec2{3, 3}, 0.1); ok {
			t.Error("static walls must not be pickable")
		}
	})
}

func TestQueryPointNextToWall(t *testing.T) {
	forEachBackend(t, Vec2{}, func(t *testing.T, e Engine) {
		// Wall surface at x=0, particle surface at x=0.10
		e.AddStaticBox(Vec2{-0.05, 1}, 0.05, 1, 0)
		id := e.AddParticle(Vec2{0.14, 1}, testMaterial)

		// The wall is nearer than the particle but only the particle counts
		got, ok := e.QueryPoint(Vec2{0.04, 1}, 0.16)
		if !ok || got != id {
			t.Errorf("expected particle %d next to the wall, got %d (ok=%v)", id, got, ok)
		}
	})
}

func TestMouseJointLifecycle(t *testing.T) {
	forEachBackend(t, Vec2{}, func(t *testing.T, e Engine) {
		id := e.AddParticle(Vec2{1, 1}, testMaterial)

		if err := e.CreateMouseJoint(BodyID(7), Vec2{1, 1}); !errors.Is(err, ErrNoBody) {
			t.Errorf("expected ErrNoBody, got %v", err)
		}
		if e.HasMouseJoint() {
			t.Fatal("failed create must not leave a joint")
		}

		if err := e.CreateMouseJoint(id, Vec2{1, 1}); err != nil {
			t.Fatalf("creating joint: %v", err)
		}
		if err := e.CreateMouseJoint(id, Vec2{1, 1}); !errors.Is(err, ErrJointActive) {
			t.Errorf("expected ErrJointActive, got %v", err)
		}

		e.SetMouseTarget(Vec2{2, 1})
		for i := 0; i < 120; i++ {
			e.Step(1.0 / 60.0)
		}

		pos := e.Positions(nil)
		if pos[0].X < 1.5 {
			t.Errorf("expected particle dragged toward x=2, got x=%.3f", pos[0].X)
		}

		e.DestroyMouseJoint()
		if e.HasMouseJoint() {
			t.Error("expected joint removed")
		}
		// Second destroy is a no-op
		e.DestroyMouseJoint()
		e.SetMouseTarget(Vec2{0, 0})
	})
}

func TestSetGravity(t *testing.T) {
	forEachBackend(t, Vec2{0, 10}, func(t *testing.T, e Engine) {
		e.SetGravity(Vec2{0, -3})
		if g := e.Gravity(); g != (Vec2{0, -3}) {
			t.Errorf("expected gravity (0,-3), got %v", g)
		}

		e.AddParticle(Vec2{1, 1}, testMaterial)
		for i := 0; i < 30; i++ {
			e.Step(1.0 / 60.0)
		}
		if pos := e.Positions(nil); pos[0].Y >= 1 {
			t.Errorf("expected particle to rise under negative gravity, got y=%.3f", pos[0].Y)
		}
	})
}

func TestScale(t *testing.T) {
	s := Scale(100)
	if s.ToMeters(250) != 2.5 {
		t.Errorf("expected 2.5m, got %f", s.ToMeters(250))
	}
	if math.Abs(s.ToPixels(0.04)-4) > 1e-9 {
		t.Errorf("expected 4px, got %f", s.ToPixels(0.04))
	}
	x, y := s.PointToPixels(s.PointToMeters(640, 360))
	if x != 640 || y != 360 {
		t.Errorf("expected roundtrip (640,360), got (%f,%f)", x, y)
	}
}
