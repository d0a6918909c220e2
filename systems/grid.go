// Package systems provides the simulation systems of the colony model.
package systems

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
)

// ErrObstacle is returned when placing an occupant on an obstacle cell.
var ErrObstacle = errors.New("cell is an obstacle")

// BoundsError reports a coordinate outside the lattice.
// Internal callers pre-clip, so seeing one is a caller bug.
type BoundsError struct {
	X, Y int
	W, H int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) outside %dx%d grid", e.X, e.Y, e.W, e.H)
}

// Cell is the occupancy registry of one lattice cell.
// Ants, a food patch and the nest marker may share a cell; an obstacle
// cell holds nothing else.
type Cell struct {
	Obstacle bool
	Nest     bool
	HasPatch bool
	Patch    ecs.Entity
	Ants     []ecs.Entity
}

// mooreOffsets is the fixed neighbor enumeration order: rows top to
// bottom, columns left to right, center skipped. Homing tie-breaks and
// RNG consumption depend on it.
var mooreOffsets = [8]components.Position{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

// Grid is a bounded, non-wrapping W x H lattice.
type Grid struct {
	W, H  int
	cells []Cell
}

// NewGrid creates a grid with the given obstacle mask (row-major, len w*h).
// A nil mask means no obstacles.
func NewGrid(w, h int, obstacles []bool) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("grid size %dx%d must be positive", w, h)
	}
	if obstacles != nil && len(obstacles) != w*h {
		return nil, fmt.Errorf("obstacle mask has %d cells, grid has %d", len(obstacles), w*h)
	}

	g := &Grid{W: w, H: h, cells: make([]Cell, w*h)}
	for i, blocked := range obstacles {
		g.cells[i].Obstacle = blocked
	}
	return g, nil
}

// InBounds reports whether p lies on the lattice.
func (g *Grid) InBounds(p components.Position) bool {
	return p.X >= 0 && p.X < g.W && p.Y >= 0 && p.Y < g.H
}

func (g *Grid) check(p components.Position) error {
	if !g.InBounds(p) {
		return &BoundsError{X: p.X, Y: p.Y, W: g.W, H: g.H}
	}
	return nil
}

// index returns the flat index of an in-bounds position.
func (g *Grid) index(p components.Position) int {
	return p.Y*g.W + p.X
}

// Cell returns the registry of the cell at p.
func (g *Grid) Cell(p components.Position) (*Cell, error) {
	if err := g.check(p); err != nil {
		return nil, err
	}
	return &g.cells[g.index(p)], nil
}

// IsObstacle reports whether the cell at p is blocked.
func (g *Grid) IsObstacle(p components.Position) (bool, error) {
	if err := g.check(p); err != nil {
		return false, err
	}
	return g.blocked(p), nil
}

// blocked is IsObstacle for positions the caller has already clipped.
func (g *Grid) blocked(p components.Position) bool {
	return g.cells[g.index(p)].Obstacle
}

// AntsAt returns the ants occupying p. The slice must not be modified.
func (g *Grid) AntsAt(p components.Position) ([]ecs.Entity, error) {
	if err := g.check(p); err != nil {
		return nil, err
	}
	return g.cells[g.index(p)].Ants, nil
}

// PlaceAnt adds an ant to the cell at p.
func (g *Grid) PlaceAnt(e ecs.Entity, p components.Position) error {
	c, err := g.Cell(p)
	if err != nil {
		return err
	}
	if c.Obstacle {
		return ErrObstacle
	}
	c.Ants = append(c.Ants, e)
	return nil
}

// RemoveAnt removes an ant from the cell at p.
func (g *Grid) RemoveAnt(e ecs.Entity, p components.Position) error {
	c, err := g.Cell(p)
	if err != nil {
		return err
	}
	if i := slices.Index(c.Ants, e); i >= 0 {
		c.Ants = slices.Delete(c.Ants, i, i+1)
	}
	return nil
}

// MoveAnt moves an ant between cells.
func (g *Grid) MoveAnt(e ecs.Entity, from, to components.Position) error {
	if err := g.check(to); err != nil {
		return err
	}
	if g.blocked(to) {
		return ErrObstacle
	}
	if err := g.RemoveAnt(e, from); err != nil {
		return err
	}
	return g.PlaceAnt(e, to)
}

// SetPatch registers a food patch entity at p.
func (g *Grid) SetPatch(e ecs.Entity, p components.Position) error {
	c, err := g.Cell(p)
	if err != nil {
		return err
	}
	if c.Obstacle {
		return ErrObstacle
	}
	c.Patch, c.HasPatch = e, true
	return nil
}

// SetNest marks p as the nest.
func (g *Grid) SetNest(p components.Position) error {
	c, err := g.Cell(p)
	if err != nil {
		return err
	}
	if c.Obstacle {
		return ErrObstacle
	}
	c.Nest = true
	return nil
}

// Neighbors appends the in-bounds Moore neighbors of p to dst in the fixed
// enumeration order and returns the extended slice. Obstacles are included;
// callers filter them.
func (g *Grid) Neighbors(dst []components.Position, p components.Position) []components.Position {
	for _, o := range mooreOffsets {
		q := components.Position{X: p.X + o.X, Y: p.Y + o.Y}
		if g.InBounds(q) {
			dst = append(dst, q)
		}
	}
	return dst
}
