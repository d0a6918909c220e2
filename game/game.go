// Package game runs the colony simulation in a raylib window.
package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/colony"
	"github.com/pthm-cable/colony/renderer"
	"github.com/pthm-cable/colony/ui"
)

// Side panels are laid out from the right edge.
const panelWidth = 240

// Game couples a simulation with its viewer state.
type Game struct {
	sim *colony.Simulation

	camera   *camera.Camera
	controls ui.ControlState

	// Rendering
	colonyRenderer *renderer.ColonyRenderer
	trailRenderer  *renderer.FieldRenderer
	homeRenderer   *renderer.FieldRenderer

	// UI
	hud           *ui.HUD
	controlsPanel *ui.ControlsPanel
	perfPanel     *ui.PerfPanel
	inspector     *ui.Inspector
	overlays      *ui.OverlayRegistry

	// Hovered cell
	hoverX, hoverY int
	hovering       bool

	screenWidth, screenHeight float32
}

// NewGame creates the simulation and the viewer around it. The raylib
// window must already be open.
func NewGame(opts colony.Options) (*Game, error) {
	sim, err := colony.New(opts)
	if err != nil {
		return nil, err
	}
	cfg := sim.Config()

	sw := float32(rl.GetScreenWidth())
	sh := float32(rl.GetScreenHeight())

	g := &Game{
		sim:            sim,
		camera:         camera.New(sw-panelWidth, sh, cfg.Grid.Width, cfg.Grid.Height),
		controls:       ui.ControlState{StepsPerUpdate: max(opts.StepsPerUpdate, 1)},
		colonyRenderer: renderer.NewColonyRenderer(cfg.Food.PerPatch),
		trailRenderer:  renderer.NewFieldRenderer(renderer.TrailPalette),
		homeRenderer:   renderer.NewFieldRenderer(renderer.HomePalette),
		hud:            ui.NewHUD(),
		controlsPanel:  ui.NewControlsPanel(int32(sw)-panelWidth, 0, panelWidth),
		perfPanel:      ui.NewPerfPanel(int32(sw)-panelWidth, 0),
		inspector:      ui.NewInspector(int32(sw)-panelWidth, 0, panelWidth),
		overlays:       ui.NewOverlayRegistry(),
		screenWidth:    sw,
		screenHeight:   sh,
	}
	g.trailRenderer.Init(cfg.Grid.Width, cfg.Grid.Height)
	g.homeRenderer.Init(cfg.Grid.Width, cfg.Grid.Height)

	return g, nil
}

// Update handles input and advances the simulation.
func (g *Game) Update() {
	g.handleInput()

	switch {
	case g.controls.StepOnce:
		g.sim.Step()
	case !g.controls.Paused:
		for i := 0; i < g.controls.StepsPerUpdate; i++ {
			g.sim.Step()
		}
	}
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *colony.Simulation {
	return g.sim
}

// Tick returns the simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}

// Unload frees GPU resources and closes the simulation's outputs.
func (g *Game) Unload() error {
	g.trailRenderer.Unload()
	g.homeRenderer.Unload()
	if err := g.sim.Close(); err != nil {
		return fmt.Errorf("closing simulation: %w", err)
	}
	return nil
}
