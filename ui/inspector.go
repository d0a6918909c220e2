package ui

import (
	"fmt"
	"math"
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// maxInspectedAnts caps the ants listed for a crowded cell.
const maxInspectedAnts = 5

// CellInfo is the inspector view of one lattice cell.
type CellInfo struct {
	X, Y         int
	Obstacle     bool
	Nest         bool
	Trail        float64
	TrailCeiling float64
	HomeTrail    float64 // Of the first ant listed, if any
	Food         int
	Ants         []AntInfo
}

// AntInfo is the inspector view of one ant.
type AntInfo struct {
	ID              uint32
	Level           float64
	Hunger          float64
	HungerThreshold float64 // +Inf when starvation is off
	Carrying        bool
}

var cellSection = SectionDescriptor{
	Fields: []FieldDescriptor{
		{Label: "Cell", Widget: WidgetText, TextGetter: func(d any) string {
			c := d.(*CellInfo)
			kind := ""
			switch {
			case c.Obstacle:
				kind = " obstacle"
			case c.Nest:
				kind = " nest"
			}
			return fmt.Sprintf("(%d, %d)%s", c.X, c.Y, kind)
		}},
		{Label: "Trail", Widget: WidgetBar, Getter: func(d any) float32 {
			return float32(d.(*CellInfo).Trail)
		}},
		{Label: "Home", Widget: WidgetText, Format: "%.3f",
			Visible: func(d any) bool { return len(d.(*CellInfo).Ants) > 0 },
			Getter:  func(d any) float32 { return float32(d.(*CellInfo).HomeTrail) }},
		{Label: "Food", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
			return float32(d.(*CellInfo).Food)
		}},
		{Label: "Ants", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
			return float32(len(d.(*CellInfo).Ants))
		}},
	},
}

var antSection = SectionDescriptor{
	Fields: []FieldDescriptor{
		{Label: "Level", Widget: WidgetCenteredBar, Range: CenteredRange(), Getter: func(d any) float32 {
			return float32(d.(*AntInfo).Level)
		}},
		{Label: "Hunger", Widget: WidgetText, TextGetter: func(d any) string {
			a := d.(*AntInfo)
			if math.IsInf(a.HungerThreshold, 1) {
				return fmt.Sprintf("%.0f", a.Hunger)
			}
			return fmt.Sprintf("%.0f / %.0f", a.Hunger, a.HungerThreshold)
		}},
		{Label: "Task", Widget: WidgetText, TextGetter: func(d any) string {
			if d.(*AntInfo).Carrying {
				return "carrying food"
			}
			return "foraging"
		}},
	},
}

// Inspector shows the hovered cell and the ants on it.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new cell inspector.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector for cell and returns the Y below the panel.
func (ins *Inspector) Draw(cell *CellInfo) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	inner := ins.width - padding*2

	section := cellSection
	section.Fields = slices.Clone(cellSection.Fields)
	section.Fields[1].Range = FieldRange{Min: 0, Max: float32(cell.TrailCeiling)}

	ants := cell.Ants[:min(len(cell.Ants), maxInspectedAnts)]
	height := padding*2 + r.SectionHeight(section, cell)
	for i := range ants {
		height += r.Theme.LineHeight + r.SectionHeight(antSection, &ants[i])
	}
	if len(cell.Ants) > len(ants) {
		height += r.Theme.LineHeight
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	x := ins.x + padding
	y := r.DrawSection(x, ins.y+padding, section, cell, inner)
	for i := range ants {
		y = r.DrawSectionHeader(x, y, fmt.Sprintf("Ant #%d", ants[i].ID))
		y = r.DrawSection(x, y, antSection, &ants[i], inner)
	}
	if more := len(cell.Ants) - len(ants); more > 0 {
		rl.DrawText(fmt.Sprintf("+%d more", more), x, y, r.Theme.FontSize, r.Theme.LabelColor)
	}
	return ins.y + height
}
