package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.SetPaused(!g.sim.Paused())
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.sim.SetStepsPerUpdate(g.sim.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}
	if rl.IsKeyPressed(rl.KeyG) {
		g.sim.ToggleGravity()
	}

	// Camera controls
	g.handleCameraInput()

	// Mouse drag, unless the pointer is over the control panel
	g.handleMouse()
}

// handleMouse drives the drag controller from the left mouse button.
func (g *Game) handleMouse() {
	mouse := rl.GetMousePosition()
	p := g.screenToMeters(mouse.X, mouse.Y)

	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		if g.controls != nil && g.controls.Contains(mouse.X, mouse.Y) {
			return
		}
		g.sim.BeginDrag(p)
	case rl.IsMouseButtonReleased(rl.MouseButtonLeft):
		g.sim.EndDrag()
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		g.sim.MoveDrag(p)
	}
}

// reset rebuilds the scene, logging failures instead of exiting.
func (g *Game) reset() {
	if err := g.sim.Reset(); err != nil {
		slog.Error("failed to reset scene", "error", err)
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if g.camera != nil {
		g.camera.Resize(w, h)
	}
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor with the mouse wheel
	wheelMove := rl.GetMouseWheelMove()
	if wheelMove != 0 {
		mouse := rl.GetMousePosition()
		g.camera.ZoomAt(mouse.X, mouse.Y, 1.0+wheelMove*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
