package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/colony"
	"github.com/pthm-cable/colony/components"
)

var (
	background    = rl.Color{R: 18, G: 16, B: 14, A: 255}
	obstacleColor = rl.Color{R: 90, G: 84, B: 76, A: 255}
	foodColor     = rl.Color{R: 80, G: 190, B: 70, A: 255}
	nestColor     = rl.Color{R: 160, G: 110, B: 60, A: 255}
	gridColor     = rl.Color{R: 40, G: 38, B: 34, A: 255}
	carryColor    = rl.Color{R: 240, G: 220, B: 80, A: 255}
)

// ColonyRenderer draws the discrete layers: obstacles, food, nest, ants.
type ColonyRenderer struct {
	// Food counts at or above this draw fully opaque
	FoodScale int
}

// NewColonyRenderer creates a renderer for food stacks up to foodScale.
func NewColonyRenderer(foodScale int) *ColonyRenderer {
	return &ColonyRenderer{FoodScale: max(foodScale, 1)}
}

// Clear fills the screen with the background color.
func (r *ColonyRenderer) Clear() {
	rl.ClearBackground(background)
}

// DrawObstacles fills every blocked cell.
func (r *ColonyRenderer) DrawObstacles(cam *camera.Camera, mask []bool, w int) {
	minX, minY, maxX, maxY := cam.VisibleCells()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if mask[y*w+x] {
				fillCell(cam, x, y, obstacleColor)
			}
		}
	}
}

// DrawFood shades food cells by their count.
func (r *ColonyRenderer) DrawFood(cam *camera.Camera, counts []int, w int) {
	minX, minY, maxX, maxY := cam.VisibleCells()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			n := counts[y*w+x]
			if n <= 0 {
				continue
			}
			c := foodColor
			c.A = uint8(80 + 175*min(n, r.FoodScale)/r.FoodScale)
			fillCell(cam, x, y, c)
		}
	}
}

// DrawNest outlines the nest cell.
func (r *ColonyRenderer) DrawNest(cam *camera.Camera, nest components.Position) {
	sx, sy, size := cam.CellRect(nest.X, nest.Y)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, max(size/8, 1), nestColor)
}

// DrawGrid draws cell boundaries when cells are large enough to see them.
func (r *ColonyRenderer) DrawGrid(cam *camera.Camera) {
	if cam.Zoom < 6 {
		return
	}
	minX, minY, maxX, maxY := cam.VisibleCells()
	for x := minX; x <= maxX+1; x++ {
		sx, sy0 := cam.WorldToScreen(float32(x), float32(minY))
		_, sy1 := cam.WorldToScreen(float32(x), float32(maxY+1))
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy0}, rl.Vector2{X: sx, Y: sy1}, gridColor)
	}
	for y := minY; y <= maxY+1; y++ {
		sx0, sy := cam.WorldToScreen(float32(minX), float32(y))
		sx1, _ := cam.WorldToScreen(float32(maxX+1), float32(y))
		rl.DrawLineV(rl.Vector2{X: sx0, Y: sy}, rl.Vector2{X: sx1, Y: sy}, gridColor)
	}
}

// DrawAnts draws each ant as a dot colored by activity. Ants sharing a
// cell are fanned out so the stack size stays visible; carriers get a
// yellow ring.
func (r *ColonyRenderer) DrawAnts(cam *camera.Camera, agents []colony.Agent) {
	stack := make(map[components.Position]int, len(agents))
	for _, a := range agents {
		stack[a.Pos]++
	}
	drawn := make(map[components.Position]int, len(stack))

	radius := max(cam.Zoom*0.22, 1.5)
	for _, a := range agents {
		sx, sy, size := cam.CellRect(a.Pos.X, a.Pos.Y)
		n, k := stack[a.Pos], drawn[a.Pos]
		drawn[a.Pos]++

		cx, cy := sx+size/2, sy+size/2
		if n > 1 {
			offset := size * 0.25
			cx += offset * float32(k%2*2-1)
			cy += offset * float32(k/2%2*2-1)
		}
		center := rl.Vector2{X: cx, Y: cy}
		rl.DrawCircleV(center, radius, rl.Color(LevelColor(a.Level)))
		if a.Carrying {
			rl.DrawCircleLines(int32(cx), int32(cy), radius+1, carryColor)
		}
	}

	for p, n := range stack {
		if n > 4 && cam.Zoom >= 12 {
			sx, sy, _ := cam.CellRect(p.X, p.Y)
			rl.DrawText(fmt.Sprintf("%d", n), int32(sx)+2, int32(sy)+1, 10, rl.White)
		}
	}
}

// DrawHighlight outlines a hovered cell.
func (r *ColonyRenderer) DrawHighlight(cam *camera.Camera, x, y int) {
	sx, sy, size := cam.CellRect(x, y)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, 1, rl.White)
}

func fillCell(cam *camera.Camera, x, y int, c rl.Color) {
	sx, sy, size := cam.CellRect(x, y)
	rl.DrawRectangleV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: size, Y: size}, c)
}
