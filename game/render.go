package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/ui"
)

const controlsLegend = "SPACE pause | N step | , . speed | arrows/wheel camera | HOME reset | TAB panel | T H F O G P overlays"

// Draw renders the frame.
func (g *Game) Draw() {
	g.sim.RecordFrame()

	rl.BeginDrawing()
	g.colonyRenderer.Clear()

	g.drawLattice()

	g.drawHUD()
	g.drawPanels()

	rl.EndDrawing()
}

// drawLattice draws the world layers bottom to top: pheromone field,
// obstacles, food, nest, ants.
func (g *Game) drawLattice() {
	cfg := g.sim.Config()
	w, h := cfg.Grid.Width, cfg.Grid.Height

	switch {
	case g.overlays.IsEnabled(ui.OverlayFoodTrail):
		g.trailRenderer.Update(g.sim.FoodTrail().Values, w, h, cfg.Pheromone.Ceiling)
		g.trailRenderer.Draw(g.camera)
	case g.overlays.IsEnabled(ui.OverlayHomeTrail):
		if home := g.hoveredHomeTrail(); home != nil {
			g.homeRenderer.Update(home.Values, w, h, 0)
			g.homeRenderer.Draw(g.camera)
		}
	}

	if g.overlays.IsEnabled(ui.OverlayObstacles) {
		g.colonyRenderer.DrawObstacles(g.camera, g.sim.Obstacles(), w)
	}
	if g.overlays.IsEnabled(ui.OverlayFood) {
		g.colonyRenderer.DrawFood(g.camera, g.sim.Food().Counts(), w)
	}
	if g.overlays.IsEnabled(ui.OverlayGrid) {
		g.colonyRenderer.DrawGrid(g.camera)
	}
	g.colonyRenderer.DrawNest(g.camera, g.sim.Nest())
	g.colonyRenderer.DrawAnts(g.camera, g.sim.Agents())

	if g.hovering {
		g.colonyRenderer.DrawHighlight(g.camera, g.hoverX, g.hoverY)
	}
}

// hoveredHomeTrail returns the home trail of the first ant in the hovered
// cell.
func (g *Game) hoveredHomeTrail() *components.HomeTrail {
	if !g.hovering {
		return nil
	}
	ants := g.sim.AntsAt(components.Position{X: g.hoverX, Y: g.hoverY})
	if len(ants) == 0 {
		return nil
	}
	return g.sim.HomeTrail(ants[0].ID)
}

func (g *Game) drawHUD() {
	m := g.sim.Metrics()
	g.hud.Draw(ui.HUDData{
		Title:         "Ant Colony",
		Tick:          m.Tick,
		Ants:          m.AntsAlive,
		Active:        m.ActiveAnts,
		ActivePercent: m.ActivePercent,
		Delivered:     m.FoodDelivered,
		Supplied:      m.FoodSupplied,
		FoodOnGrid:    m.FoodOnGrid,
		Births:        m.Births,
		Deaths:        m.Deaths,
		Speed:         g.controls.StepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        g.controls.Paused,
	})
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

// drawPanels stacks the side panels: controls, inspector, perf.
func (g *Game) drawPanels() {
	x := int32(g.screenWidth) - panelWidth
	var y int32

	g.controlsPanel.SetPosition(x, y)
	g.controlsPanel.Draw(&g.controls, g.overlays)
	y = g.controlsPanel.Bottom(g.overlays)

	if g.hovering {
		cell := g.cellInfo(g.hoverX, g.hoverY)
		g.inspector.SetPosition(x, y+6)
		y = g.inspector.Draw(cell) + 6
	}

	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.SetPosition(x, y+6)
		g.perfPanel.Draw(g.sim.PerfStats())
	}
}

// cellInfo gathers the inspector view of a cell.
func (g *Game) cellInfo(x, y int) *ui.CellInfo {
	cfg := g.sim.Config()
	p := components.Position{X: x, Y: y}

	obstacle, _ := g.sim.Grid().IsObstacle(p)
	cell := &ui.CellInfo{
		X:            x,
		Y:            y,
		Obstacle:     obstacle,
		Nest:         p == g.sim.Nest(),
		TrailCeiling: cfg.Pheromone.Ceiling,
	}
	cell.Trail, _ = g.sim.FoodTrail().At(p)
	cell.Food, _ = g.sim.Food().Count(p)

	threshold := cfg.Derived.HungerThreshold
	for _, a := range g.sim.AntsAt(p) {
		cell.Ants = append(cell.Ants, ui.AntInfo{
			ID:              uint32(a.ID),
			Level:           a.Level,
			Hunger:          a.Hunger,
			HungerThreshold: threshold,
			Carrying:        a.Carrying,
		})
	}
	if len(cell.Ants) > 0 {
		if home := g.sim.HomeTrail(components.AntID(cell.Ants[0].ID)); home != nil {
			cell.HomeTrail = home.At(p)
		}
	}
	return cell
}
