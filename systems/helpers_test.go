package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
)

// antWorld builds ant entities with the full component set.
type antWorld struct {
	world  *ecs.World
	grid   *Grid
	mapper *ecs.Map6[
		components.Ant,
		components.Position,
		components.Track,
		components.Activity,
		components.Forager,
		components.HomeTrail,
	]
	nextID components.AntID
}

func newAntWorld(t *testing.T, w, h int, obstacles []bool) *antWorld {
	t.Helper()
	grid, err := NewGrid(w, h, obstacles)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	world := ecs.NewWorld()
	return &antWorld{
		world: world,
		grid:  grid,
		mapper: ecs.NewMap6[
			components.Ant,
			components.Position,
			components.Track,
			components.Activity,
			components.Forager,
			components.HomeTrail,
		](world),
	}
}

func (aw *antWorld) spawn(t *testing.T, p components.Position, level float64) ecs.Entity {
	t.Helper()
	ant := components.Ant{ID: aw.nextID}
	aw.nextID++
	pos := p
	track := components.Track{}
	act := components.Activity{Level: level, Next: level}
	forager := components.Forager{}
	home := components.NewHomeTrail(aw.grid.W, aw.grid.H)
	e := aw.mapper.NewEntity(&ant, &pos, &track, &act, &forager, &home)
	if err := aw.grid.PlaceAnt(e, p); err != nil {
		t.Fatalf("PlaceAnt(%v): %v", p, err)
	}
	return e
}

// maskWith returns a w*h mask with the given cells blocked.
func maskWith(w, h int, blocked ...components.Position) []bool {
	mask := make([]bool, w*h)
	for _, p := range blocked {
		mask[p.Y*w+p.X] = true
	}
	return mask
}
