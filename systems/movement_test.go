package systems

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func newTestMovement(aw *antWorld, nest components.Position) *MovementSystem {
	trail := NewFoodTrail(aw.grid.W, aw.grid.H, 0.1, 0.05, 0.1, 15)
	food := NewFoodLayer(aw.world, aw.grid, false, 120)
	return NewMovementSystem(aw.world, aw.grid, trail, food, MovementParams{
		Nest:            nest,
		TrailThreshold:  1e-3,
		TrailDeposit:    3,
		Sigma:           5,
		HomeDeposit:     1,
		HungerIncrement: 1,
	})
}

func TestLegalMoves(t *testing.T) {
	t.Run("excludes previous cell", func(t *testing.T) {
		aw := newAntWorld(t, 3, 3, nil)
		m := newTestMovement(aw, components.Position{X: 1, Y: 1})
		prev := components.Position{X: 0, Y: 0}

		got := m.LegalMoves(nil, components.Position{X: 1, Y: 1}, components.Track{Prev: prev, HasPrev: true})
		if len(got) != 7 || slices.Contains(got, prev) {
			t.Errorf("moves = %v, want 7 without %v", got, prev)
		}
	})

	t.Run("excludes obstacles", func(t *testing.T) {
		rock := components.Position{X: 2, Y: 2}
		aw := newAntWorld(t, 3, 3, maskWith(3, 3, rock))
		m := newTestMovement(aw, components.Position{X: 0, Y: 0})

		got := m.LegalMoves(nil, components.Position{X: 1, Y: 1}, components.Track{})
		if len(got) != 7 || slices.Contains(got, rock) {
			t.Errorf("moves = %v, want 7 without %v", got, rock)
		}
	})

	t.Run("previous cell allowed when boxed in", func(t *testing.T) {
		aw := newAntWorld(t, 2, 2, maskWith(2, 2, components.Position{X: 0, Y: 1}, components.Position{X: 1, Y: 1}))
		m := newTestMovement(aw, components.Position{X: 0, Y: 0})
		prev := components.Position{X: 1, Y: 0}

		got := m.LegalMoves(nil, components.Position{X: 0, Y: 0}, components.Track{Prev: prev, HasPrev: true})
		if len(got) != 1 || got[0] != prev {
			t.Errorf("moves = %v, want [%v]", got, prev)
		}
	})

	t.Run("no moves when fully enclosed", func(t *testing.T) {
		aw := newAntWorld(t, 2, 2, maskWith(2, 2,
			components.Position{X: 1, Y: 0}, components.Position{X: 0, Y: 1}, components.Position{X: 1, Y: 1}))
		m := newTestMovement(aw, components.Position{X: 0, Y: 0})

		if got := m.LegalMoves(nil, components.Position{X: 0, Y: 0}, components.Track{}); len(got) != 0 {
			t.Errorf("moves = %v, want none", got)
		}
	})
}

func TestForageWeights(t *testing.T) {
	aw := newAntWorld(t, 3, 3, nil)
	m := newTestMovement(aw, components.Position{X: 1, Y: 1})
	here := components.Position{X: 1, Y: 1}

	_ = m.trail.Deposit(here, 1)
	_ = m.trail.Deposit(components.Position{X: 0, Y: 0}, 3)
	_ = m.trail.Deposit(components.Position{X: 1, Y: 0}, 1)
	_ = m.trail.Deposit(components.Position{X: 2, Y: 0}, 0.5)
	_ = m.food.AddPatch(components.Position{X: 0, Y: 1}, 4)

	cands := []components.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}}
	got := m.ForageWeights(nil, here, cands)
	want := []float64{3, 1, NegativeTrailWeight, FoodWeight}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("weight %d (%v) = %v, want %v", i, cands[i], got[i], want[i])
		}
	}
}

func TestChooseForageStaysInCandidates(t *testing.T) {
	aw := newAntWorld(t, 5, 5, nil)
	m := newTestMovement(aw, components.Position{X: 2, Y: 2})
	rng := rand.New(rand.NewSource(5))
	here := components.Position{X: 2, Y: 2}
	cands := m.LegalMoves(nil, here, components.Track{})

	// Uniform branch
	for i := 0; i < 50; i++ {
		if got := m.ChooseForage(rng, here, cands); !slices.Contains(cands, got) {
			t.Fatalf("uniform pick %v not a candidate", got)
		}
	}

	// Roulette branch strongly favors food
	food := components.Position{X: 3, Y: 3}
	_ = m.food.AddPatch(food, 1)
	_ = m.trail.Deposit(here, 1)
	hits := 0
	for i := 0; i < 200; i++ {
		got := m.ChooseForage(rng, here, cands)
		if !slices.Contains(cands, got) {
			t.Fatalf("roulette pick %v not a candidate", got)
		}
		if got == food {
			hits++
		}
	}
	if hits < 100 {
		t.Errorf("food picked %d/200 times, want a strong bias", hits)
	}
}

func TestChooseHome(t *testing.T) {
	aw := newAntWorld(t, 3, 3, nil)
	nest := components.Position{X: 1, Y: 2}
	m := newTestMovement(aw, nest)
	here := components.Position{X: 1, Y: 0}
	cands := m.LegalMoves(nil, here, components.Track{})

	home := components.NewHomeTrail(3, 3)
	if got := m.ChooseHome(&home, here, cands); got != (components.Position{X: 1, Y: 1}) {
		t.Errorf("without home trail: got %v, want (1,1)", got)
	}

	// Equal home trail on both flanks: tie goes to the first candidate
	home.Deposit(components.Position{X: 0, Y: 1}, 10)
	home.Deposit(components.Position{X: 2, Y: 1}, 10)
	if got := m.ChooseHome(&home, here, cands); got != (components.Position{X: 0, Y: 1}) {
		t.Errorf("tie: got %v, want (0,1)", got)
	}
}

func TestMovePickupAndDelivery(t *testing.T) {
	aw := newAntWorld(t, 2, 1, nil)
	nest := components.Position{X: 0, Y: 0}
	source := components.Position{X: 1, Y: 0}
	m := newTestMovement(aw, nest)
	if err := m.food.AddPatch(source, 1); err != nil {
		t.Fatal(err)
	}

	e := aw.spawn(t, nest, 0.5)
	_, pos, track, _, forager, home := aw.mapper.Get(e)
	forager.Hunger = 5
	rng := rand.New(rand.NewSource(1))

	res := m.Move(e, rng)
	if !res.PickedUp || res.Delivered || res.To != source {
		t.Fatalf("first move = %+v, want pickup at %v", res, source)
	}
	if *pos != source || !forager.Carrying || forager.Source != source || forager.Hunger != 0 {
		t.Errorf("after pickup: pos %v forager %+v", *pos, *forager)
	}
	if track.HasPrev {
		t.Error("previous cell not reset on pickup")
	}
	if n, _ := m.food.Count(source); n != 0 {
		t.Errorf("food left at source = %d", n)
	}
	if v, _ := m.trail.At(source); v != 3 {
		t.Errorf("trail at source = %v, want full deposit 3", v)
	}
	if ants, _ := aw.grid.AntsAt(source); len(ants) != 1 {
		t.Error("grid not updated on move")
	}

	res = m.Move(e, rng)
	if !res.Delivered || res.To != nest {
		t.Fatalf("second move = %+v, want delivery at nest", res)
	}
	if forager.Carrying || forager.HasSource || track.HasPrev {
		t.Errorf("after delivery: forager %+v track %+v", *forager, *track)
	}
	if got := home.At(nest); got != 1 {
		t.Errorf("home trail at nest = %v, want 1", got)
	}
}

func TestMoveForagingIncrementsHunger(t *testing.T) {
	aw := newAntWorld(t, 3, 3, nil)
	m := newTestMovement(aw, components.Position{X: 1, Y: 1})
	e := aw.spawn(t, components.Position{X: 1, Y: 1}, 0.5)
	rng := rand.New(rand.NewSource(2))

	for i := 1; i <= 5; i++ {
		m.Move(e, rng)
		_, _, _, _, forager, _ := aw.mapper.Get(e)
		if forager.Hunger != float64(i) {
			t.Fatalf("after %d moves hunger = %v", i, forager.Hunger)
		}
	}
}
