package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/droplets/components"
	"github.com/pthm-cable/droplets/renderer"
)

// highlightTint marks the particle held by the mouse.
var highlightTint = rl.Color{R: 255, G: 200, B: 60, A: 255}

// Draw renders the game.
func (g *Game) Draw() {
	g.sim.Perf().RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	zoom := g.camera.Zoom
	renderer.DrawWalls(g.sim.Layout().Walls, float32(g.cfg.World.Meter), zoom, g.camera.WorldToScreen)

	g.drawParticles()
	g.drawDragLine()
	g.drawHUD()
	g.controls.Draw(g)

	rl.EndDrawing()
}

// drawParticles draws one sprite per particle entity.
func (g *Game) drawParticles() {
	radius := g.particleRenderer.Radius()
	zoom := g.camera.Zoom

	minX, minY, maxX, maxY := g.camera.VisibleWorldBounds()
	minX, minY = minX-radius, minY-radius
	maxX, maxY = maxX+radius, maxY+radius

	g.sim.ForEachParticle(func(pos *components.Position, _ *components.Velocity, sprite *components.Sprite) {
		if pos.X < minX || pos.X > maxX || pos.Y < minY || pos.Y > maxY {
			return
		}
		tint := rl.Color{R: sprite.R, G: sprite.G, B: sprite.B, A: sprite.A}
		if sprite.Highlight {
			tint = highlightTint
		}
		sx, sy := g.camera.WorldToScreen(pos.X, pos.Y)
		g.particleRenderer.Draw(sx, sy, zoom, tint)
	})
}

// drawDragLine connects the held particle to the mouse joint target.
func (g *Game) drawDragLine() {
	drag := g.sim.Drag()
	if !drag.Active() {
		return
	}
	pos := g.sim.ParticlePosition(int(drag.Body()))
	tx, ty := g.scale.PointToPixels(drag.Target())

	x0, y0 := g.camera.WorldToScreen(pos.X, pos.Y)
	x1, y1 := g.camera.WorldToScreen(tx, ty)
	rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, highlightTint)
}

// drawHUD renders status text in the top-left corner.
func (g *Game) drawHUD() {
	sim := g.sim
	rl.DrawText(g.cfg.Screen.Title, 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Backend: %s  Particles: %d", sim.Engine().Name(), sim.ParticleCount()), 10, 35, 16, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Tick: %d | Speed: %dx [</>] | FPS: %d", sim.Tick(), sim.StepsPerUpdate(), rl.GetFPS()), 10, 55, 16, rl.LightGray)

	if stats := sim.LatestStats(); stats != nil {
		rl.DrawText(fmt.Sprintf("Contained: %d  Escaped: %d  Mean speed: %.2f m/s",
			stats.Contained, stats.Escaped, stats.MeanSpeed), 10, 75, 16, rl.LightGray)
	}

	if sim.Paused() {
		rl.DrawText("PAUSED", 10, 95, 20, rl.Yellow)
	}

	perf := sim.Perf().Stats()
	rl.DrawText(fmt.Sprintf("Update: %v  Step: %v  Sync: %v/particle",
		perf.AvgTickDuration, perf.PhysicsPerStep, perf.SyncPerParticle),
		10, int32(g.screenHeight)-24, 14, rl.Gray)
}
