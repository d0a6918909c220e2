package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func TestNewGridRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		mask []bool
	}{
		{"zero width", 0, 5, nil},
		{"negative height", 5, -1, nil},
		{"short mask", 3, 3, make([]bool, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGrid(tt.w, tt.h, tt.mask); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGridBoundsError(t *testing.T) {
	g, err := NewGrid(4, 3, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range []components.Position{{X: -1, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 3}, {X: 0, Y: -1}} {
		_, err := g.Cell(p)
		var be *BoundsError
		if !errors.As(err, &be) {
			t.Fatalf("Cell(%v) error = %v, want *BoundsError", p, err)
		}
		if be.X != p.X || be.Y != p.Y || be.W != 4 || be.H != 3 {
			t.Errorf("BoundsError = %+v", be)
		}
		if g.InBounds(p) {
			t.Errorf("InBounds(%v) = true", p)
		}
		if _, err := g.IsObstacle(p); !errors.As(err, &be) {
			t.Errorf("IsObstacle(%v) error = %v, want *BoundsError", p, err)
		}
	}
}

func TestIsObstacle(t *testing.T) {
	rock := components.Position{X: 2, Y: 1}
	g, err := NewGrid(4, 3, maskWith(4, 3, rock))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		p    components.Position
		want bool
	}{
		{rock, true},
		{components.Position{X: 0, Y: 0}, false},
		{components.Position{X: 3, Y: 2}, false},
	}
	for _, tt := range tests {
		got, err := g.IsObstacle(tt.p)
		if err != nil {
			t.Fatalf("IsObstacle(%v): %v", tt.p, err)
		}
		if got != tt.want {
			t.Errorf("IsObstacle(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestNeighborsOrder(t *testing.T) {
	g, _ := NewGrid(3, 3, nil)

	got := g.Neighbors(nil, components.Position{X: 1, Y: 1})
	want := []components.Position{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 2, Y: 1},
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d neighbors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbor %d = %v, want %v", i, got[i], want[i])
		}
	}

	corner := g.Neighbors(nil, components.Position{X: 0, Y: 0})
	wantCorner := []components.Position{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	if len(corner) != 3 {
		t.Fatalf("corner has %d neighbors, want 3", len(corner))
	}
	for i := range wantCorner {
		if corner[i] != wantCorner[i] {
			t.Errorf("corner neighbor %d = %v, want %v", i, corner[i], wantCorner[i])
		}
	}
}

func TestGridOccupancy(t *testing.T) {
	aw := newAntWorld(t, 5, 5, maskWith(5, 5, components.Position{X: 4, Y: 4}))
	g := aw.grid

	here := components.Position{X: 2, Y: 2}
	a := aw.spawn(t, here, 0)
	b := aw.spawn(t, here, 0)

	ants, err := g.AntsAt(here)
	if err != nil {
		t.Fatal(err)
	}
	if len(ants) != 2 {
		t.Fatalf("multi-occupancy: got %d ants, want 2", len(ants))
	}

	there := components.Position{X: 3, Y: 3}
	if err := g.MoveAnt(a, here, there); err != nil {
		t.Fatalf("MoveAnt: %v", err)
	}
	ants, _ = g.AntsAt(here)
	if len(ants) != 1 || ants[0] != b {
		t.Errorf("after move, origin holds %v", ants)
	}
	ants, _ = g.AntsAt(there)
	if len(ants) != 1 || ants[0] != a {
		t.Errorf("after move, destination holds %v", ants)
	}

	if err := g.MoveAnt(b, here, components.Position{X: 4, Y: 4}); !errors.Is(err, ErrObstacle) {
		t.Errorf("move onto obstacle: err = %v, want ErrObstacle", err)
	}
	if err := g.PlaceAnt(b, components.Position{X: 4, Y: 4}); !errors.Is(err, ErrObstacle) {
		t.Errorf("place onto obstacle: err = %v, want ErrObstacle", err)
	}
	if err := g.SetNest(components.Position{X: 4, Y: 4}); !errors.Is(err, ErrObstacle) {
		t.Errorf("nest on obstacle: err = %v, want ErrObstacle", err)
	}

	if err := g.RemoveAnt(b, here); err != nil {
		t.Fatal(err)
	}
	ants, _ = g.AntsAt(here)
	if len(ants) != 0 {
		t.Errorf("after remove, cell holds %v", ants)
	}
}
