// Package renderer draws the scene with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ParticleRenderer draws every particle with one pre-rendered disc texture.
type ParticleRenderer struct {
	sprite rl.RenderTexture2D

	radius float32 // particle radius in pixels
	fill   float32 // drawn disc radius as a fraction of radius
	dpi    float32
	size   float32 // texture edge in device pixels

	initialized bool
}

// NewParticleRenderer creates a renderer for particles of the given pixel radius.
func NewParticleRenderer(radius, fill float32) *ParticleRenderer {
	if fill <= 0 || fill > 1 {
		fill = 0.5
	}
	return &ParticleRenderer{radius: radius, fill: fill}
}

// Init renders the disc texture (must be called after the raylib window is created).
func (r *ParticleRenderer) Init() {
	if r.initialized {
		return
	}

	r.dpi = rl.GetWindowScaleDPI().X
	if r.dpi <= 0 {
		r.dpi = 1
	}

	// Texture is one particle diameter wide at device resolution
	r.size = 2 * r.radius * r.dpi
	r.sprite = rl.LoadRenderTexture(int32(r.size), int32(r.size))
	rl.SetTextureFilter(r.sprite.Texture, rl.FilterBilinear)

	rl.BeginTextureMode(r.sprite)
	rl.ClearBackground(rl.Blank)
	rl.DrawCircleV(rl.Vector2{X: r.size / 2, Y: r.size / 2}, r.radius*r.dpi*r.fill, rl.White)
	rl.EndTextureMode()

	r.initialized = true
}

// Draw draws one particle centered at screen position (x, y).
// zoom scales the sprite with the camera.
func (r *ParticleRenderer) Draw(x, y, zoom float32, tint rl.Color) {
	if !r.initialized {
		r.Init()
	}

	scale := zoom / r.dpi
	half := r.size * scale / 2
	rl.DrawTextureEx(r.sprite.Texture, rl.Vector2{X: x - half, Y: y - half}, 0, scale, tint)
}

// Radius returns the particle radius in pixels.
func (r *ParticleRenderer) Radius() float32 {
	return r.radius
}

// Unload frees the sprite texture.
func (r *ParticleRenderer) Unload() {
	if r.initialized {
		rl.UnloadRenderTexture(r.sprite)
		r.initialized = false
	}
}
