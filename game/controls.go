package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Gravity slider range in m/s².
const (
	minGravity = 0
	maxGravity = 30
)

// controlPanel is the raygui panel in the top-right corner.
type controlPanel struct {
	bounds rl.Rectangle
}

func newControlPanel() *controlPanel {
	return &controlPanel{}
}

// Contains reports whether the screen point is over the panel.
func (c *controlPanel) Contains(x, y float32) bool {
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, c.bounds)
}

// Draw renders the panel and applies any changes to the game.
func (c *controlPanel) Draw(g *Game) {
	panelW := float32(220)
	panelH := float32(130)
	panelX := g.screenWidth - panelW - 10
	panelY := float32(10)
	c.bounds = rl.Rectangle{X: panelX, Y: panelY, Width: panelW, Height: panelH}

	rl.DrawRectangleRec(c.bounds, rl.Color{R: 0, G: 0, B: 0, A: 180})
	rl.DrawRectangleLinesEx(c.bounds, 1, rl.Gray)

	x := panelX + 10
	y := panelY + 10

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 95, Height: 28}, toggleText(g.sim.Paused(), "Resume", "Pause")) {
		g.sim.SetPaused(!g.sim.Paused())
	}
	if gui.Button(rl.Rectangle{X: x + 105, Y: y, Width: 95, Height: 28}, "Reset") {
		g.reset()
	}
	y += 40

	rl.DrawText("Gravity", int32(x), int32(y), 14, rl.LightGray)
	y += 18
	current := float32(g.sim.GravityY())
	newGravity := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: 150, Height: 20},
		"", "",
		current, minGravity, maxGravity,
	)
	rl.DrawText(fmt.Sprintf("%.1f", newGravity), int32(x+160), int32(y+2), 16, rl.LightGray)
	if newGravity != current {
		g.sim.SetGravityY(float64(newGravity))
	}
	y += 30

	if !g.sim.GravityOn() {
		rl.DrawText("gravity off [G]", int32(x), int32(y), 14, rl.Yellow)
	}
}

func toggleText(on bool, ifOn, ifOff string) string {
	if on {
		return ifOn
	}
	return ifOff
}
