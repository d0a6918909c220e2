package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxStepsPerFrame bounds the speed slider.
const MaxStepsPerFrame = 50

// ControlState is the playback state edited by the controls panel.
type ControlState struct {
	Paused         bool
	StepOnce       bool // Set for one frame by the Step button
	StepsPerUpdate int
}

// ControlsPanel renders playback controls and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Bottom returns the Y just below the panel, or its top when hidden.
func (c *ControlsPanel) Bottom(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}
	return c.y + c.height(overlays)
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	th := c.renderer.Theme
	rows := int32(len(overlays.All()) + len(overlays.Categories()))
	return th.Padding*2 + th.LineHeight + 34 + 30 + rows*th.LineHeight + 8
}

// Draw renders the panel and applies edits to state and overlays.
func (c *ControlsPanel) Draw(state *ControlState, overlays *OverlayRegistry) {
	state.StepOnce = false
	if !c.visible {
		return
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := float32(c.width - padding*2)

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := float32(c.y + padding)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight) + 4

	// Playback
	half := (inner - 6) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + half + 6, Y: y, Width: half, Height: 24}, "Step") {
		state.Paused = true
		state.StepOnce = true
	}
	y += 30

	speed := gui.SliderBar(
		rl.Rectangle{X: x + 40, Y: y, Width: inner - 80, Height: 16},
		"Speed", fmt.Sprintf("%dx", state.StepsPerUpdate),
		float32(state.StepsPerUpdate), 1, MaxStepsPerFrame,
	)
	state.StepsPerUpdate = min(max(int(speed+0.5), 1), MaxStepsPerFrame)
	y += 30

	// Overlays by category
	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(lineHeight)

		for _, desc := range overlays.ByCategory(category) {
			label := desc.Name
			if desc.KeyLabel != "" {
				label = fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			}
			enabled := overlays.IsEnabled(desc.ID)
			if checked := gui.CheckBox(rl.Rectangle{X: x, Y: y + 2, Width: 10, Height: 10}, label, enabled); checked != enabled {
				overlays.SetEnabled(desc.ID, checked)
			}
			y += float32(lineHeight)
		}
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "field":
		return "Pheromones"
	case "layer":
		return "Layers"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func toggleText(on bool, whenOn, whenOff string) string {
	if on {
		return whenOn
	}
	return whenOff
}
