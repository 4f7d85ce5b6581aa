package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/droplets/scene"
)

// WallColor is the outline color for container walls.
var WallColor = rl.Color{R: 90, G: 140, B: 200, A: 255}

// DrawWalls outlines each wall. toScreen maps world pixels to screen pixels.
func DrawWalls(walls []scene.Wall, meter, zoom float32, toScreen func(x, y float32) (float32, float32)) {
	for _, w := range walls {
		cx := float32(w.Center.X) * meter
		cy := float32(w.Center.Y) * meter
		hw := float32(w.HalfW) * meter
		hh := float32(w.HalfH) * meter

		sx, sy := toScreen(cx-hw, cy-hh)
		rl.DrawRectangleLinesEx(rl.Rectangle{
			X:      sx,
			Y:      sy,
			Width:  2 * hw * zoom,
			Height: 2 * hh * zoom,
		}, 1, WallColor)
	}
}
