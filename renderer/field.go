// Package renderer draws the colony lattice with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
)

// FieldRenderer draws a scalar lattice field as a one-texel-per-cell
// texture stretched over the grid.
type FieldRenderer struct {
	palette Palette

	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA
	norm       []float64

	initialized bool
}

// NewFieldRenderer creates a renderer with the given palette.
func NewFieldRenderer(palette Palette) *FieldRenderer {
	return &FieldRenderer{palette: palette}
}

// Init creates the texture (must be called after raylib window is created).
func (r *FieldRenderer) Init(gridW, gridH int) {
	if r.initialized {
		return
	}

	r.texW = gridW
	r.texH = gridH
	r.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads a field normalized by ceiling (0 = field max).
func (r *FieldRenderer) Update(values []float64, w, h int, ceiling float64) {
	if !r.initialized {
		r.Init(w, h)
	}
	if len(values) != r.texW*r.texH {
		return
	}

	r.norm = Normalize(r.norm, values, ceiling)
	for i, v := range r.norm {
		r.pixels[i] = r.palette(v)
	}
	rl.UpdateTexture(r.tex, r.pixels)
}

// Draw renders the field under the camera.
func (r *FieldRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}

	x, y := cam.WorldToScreen(0, 0)
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.texW), Height: float32(r.texH)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: float32(r.texW) * cam.Zoom, Height: float32(r.texH) * cam.Zoom}
	rl.DrawTexturePro(r.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
