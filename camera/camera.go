// Package camera provides a 2D camera over the bounded colony lattice.
package camera

import "math"

// Camera controls the viewport into the lattice. World coordinates are in
// cells; Zoom is screen pixels per cell.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Lattice dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera that fits the whole lattice into the viewport.
func New(viewportW, viewportH float32, cellsW, cellsH int) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    float32(cellsW),
		WorldH:    float32(cellsH),
	}
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.Reset()
	return c
}

// fitZoom is the zoom at which the whole lattice is visible.
func (c *Camera) fitZoom() float32 {
	return min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellAt returns the lattice cell under a screen point.
func (c *Camera) CellAt(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 || wx >= c.WorldW || wy >= c.WorldH {
		return 0, 0, false
	}
	return int(wx), int(wy), true
}

// CellRect returns the screen rectangle of a cell.
func (c *Camera) CellRect(x, y int) (sx, sy, size float32) {
	sx, sy = c.WorldToScreen(float32(x), float32(y))
	return sx, sy, c.Zoom
}

// VisibleCells returns the inclusive cell range touched by the viewport,
// clipped to the lattice.
func (c *Camera) VisibleCells() (minX, minY, maxX, maxY int) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(c.ViewportW, c.ViewportH)

	minX = max(int(math.Floor(float64(wx0))), 0)
	minY = max(int(math.Floor(float64(wy0))), 0)
	maxX = min(int(math.Floor(float64(wx1))), int(c.WorldW)-1)
	maxY = min(int(math.Floor(float64(wy1))), int(c.WorldH)-1)
	return
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.MaxZoom = c.MinZoom * 8
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels. The center
// stays on the lattice.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.WorldW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the lattice and fits it to the viewport.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
