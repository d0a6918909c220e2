package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
)

// FoodLayer holds integer food counts per cell and the food patch entities
// that deplete and regrow them.
type FoodLayer struct {
	W, H   int
	counts []int

	grid       *Grid
	patchMap   *ecs.Map2[components.Position, components.FoodPatch]
	patches    *ecs.Map[components.FoodPatch]
	filter     *ecs.Filter2[components.Position, components.FoodPatch]
	infinite   bool
	regrowTick int

	scattered int // Units placed by scatter and AddPatch
	supplied  int // scattered plus regrowth
}

// NewFoodLayer creates an empty food layer over grid.
func NewFoodLayer(w *ecs.World, grid *Grid, infinite bool, regrowTicks int) *FoodLayer {
	return &FoodLayer{
		W: grid.W, H: grid.H,
		counts:     make([]int, grid.W*grid.H),
		grid:       grid,
		patchMap:   ecs.NewMap2[components.Position, components.FoodPatch](w),
		patches:    ecs.NewMap[components.FoodPatch](w),
		filter:     ecs.NewFilter2[components.Position, components.FoodPatch](w),
		infinite:   infinite,
		regrowTick: regrowTicks,
	}
}

// ScatterParams configures the initial food placement.
type ScatterParams struct {
	Patches    int
	PerPatch   int
	MinRadius  int
	MaxRadius  int
	Nest       components.Position
	NestRadius int
}

// Scatter places circular food patches at random centers. Cells outside the
// grid or on obstacles are skipped, and the nest zone is cleared. Every
// cell left with food becomes a patch entity. RNG order per patch: center
// x, center y, radius.
func (l *FoodLayer) Scatter(rng *rand.Rand, p ScatterParams) {
	for n := 0; n < p.Patches; n++ {
		cx := rng.Intn(l.W)
		cy := rng.Intn(l.H)
		r := p.MinRadius + rng.Intn(p.MaxRadius-p.MinRadius+1)

		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				q := components.Position{X: cx + dx, Y: cy + dy}
				if !l.grid.InBounds(q) || l.grid.blocked(q) {
					continue
				}
				l.counts[l.grid.index(q)] += p.PerPatch
			}
		}
	}

	// Nest zone stays empty
	nr := p.NestRadius
	for dy := -nr; dy <= nr; dy++ {
		for dx := -nr; dx <= nr; dx++ {
			q := components.Position{X: p.Nest.X + dx, Y: p.Nest.Y + dy}
			if dx*dx+dy*dy <= nr*nr && l.grid.InBounds(q) {
				l.counts[l.grid.index(q)] = 0
			}
		}
	}

	for y := 0; y < l.H; y++ {
		for x := 0; x < l.W; x++ {
			q := components.Position{X: x, Y: y}
			if amount := l.counts[l.grid.index(q)]; amount > 0 {
				l.counts[l.grid.index(q)] = 0
				// In-bounds and obstacle-free by construction
				_ = l.AddPatch(q, amount)
			}
		}
	}
}

// AddPatch places amount units of food at p. An existing patch grows by the
// same amount, including its max.
func (l *FoodLayer) AddPatch(p components.Position, amount int) error {
	cell, err := l.grid.Cell(p)
	if err != nil {
		return err
	}
	if cell.Obstacle {
		return ErrObstacle
	}
	if amount <= 0 {
		return fmt.Errorf("food amount must be positive, got %d", amount)
	}

	if cell.HasPatch {
		patch := l.patches.Get(cell.Patch)
		patch.Amount += amount
		patch.MaxAmount += amount
		patch.Depleted = false
		patch.RegrowTimer = 0
	} else {
		pos := p
		patch := components.FoodPatch{Amount: amount, MaxAmount: amount}
		e := l.patchMap.NewEntity(&pos, &patch)
		if err := l.grid.SetPatch(e, p); err != nil {
			return err
		}
	}
	l.counts[l.grid.index(p)] += amount
	l.scattered += amount
	l.supplied += amount
	return nil
}

// Count returns the food units at p.
func (l *FoodLayer) Count(p components.Position) (int, error) {
	if !l.grid.InBounds(p) {
		return 0, &BoundsError{X: p.X, Y: p.Y, W: l.W, H: l.H}
	}
	return l.counts[l.grid.index(p)], nil
}

// has reports whether an in-bounds cell has food.
func (l *FoodLayer) has(p components.Position) bool {
	return l.counts[l.grid.index(p)] > 0
}

// Take removes one unit at p and reports whether there was food. In
// infinite mode the cell is left untouched.
func (l *FoodLayer) Take(p components.Position) bool {
	if !l.grid.InBounds(p) || !l.has(p) {
		return false
	}
	if l.infinite {
		return true
	}
	i := l.grid.index(p)
	l.counts[i]--
	if cell := &l.grid.cells[i]; cell.HasPatch {
		patch := l.patches.Get(cell.Patch)
		patch.Amount = max(patch.Amount-1, 0)
	}
	return true
}

// Step advances depletion and regrowth by one tick and appends the cells of
// restored patches to dst. A patch becomes depleted on the tick its amount
// is first seen at zero and is restored to its max amount once its timer
// reaches the cooldown.
func (l *FoodLayer) Step(dst []components.Position) []components.Position {
	query := l.filter.Query()
	for query.Next() {
		pos, patch := query.Get()
		switch {
		case patch.Depleted:
			patch.RegrowTimer++
			if patch.RegrowTimer >= l.regrowTick {
				patch.Amount = patch.MaxAmount
				patch.Depleted = false
				patch.RegrowTimer = 0
				l.counts[l.grid.index(*pos)] = patch.MaxAmount
				l.supplied += patch.MaxAmount
				dst = append(dst, *pos)
			}
		case patch.Amount == 0:
			patch.Depleted = true
			patch.RegrowTimer = 0
		}
	}
	return dst
}

// Patch returns the patch at p, or nil if the cell has none.
func (l *FoodLayer) Patch(p components.Position) (*components.FoodPatch, error) {
	cell, err := l.grid.Cell(p)
	if err != nil {
		return nil, err
	}
	if !cell.HasPatch {
		return nil, nil
	}
	return l.patches.Get(cell.Patch), nil
}

// TotalFood returns the food units currently on the grid.
func (l *FoodLayer) TotalFood() int {
	total := 0
	for _, c := range l.counts {
		total += c
	}
	return total
}

// TotalScattered returns the units placed at setup, excluding regrowth.
func (l *FoodLayer) TotalScattered() int {
	return l.scattered
}

// TotalSupplied returns all units ever placed, scatter plus regrowth.
func (l *FoodLayer) TotalSupplied() int {
	return l.supplied
}

// Counts returns the per-cell food counts (row-major) for read-only use.
func (l *FoodLayer) Counts() []int {
	return l.counts
}
