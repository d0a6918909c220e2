// Package components defines ECS components for the colony simulation.
package components

import "gonum.org/v1/gonum/floats"

// AntID is a stable ant identifier. IDs are never reused within a run.
type AntID uint32

// Activeness is the derived on/off state of an ant's activity level.
type Activeness uint8

const (
	Inactive Activeness = iota
	Active
)

func (a Activeness) String() string {
	if a == Active {
		return "active"
	}
	return "inactive"
}

// ActivenessOf maps an activity level to its state. Active iff level > 0.
func ActivenessOf(level float64) Activeness {
	if level > 0 {
		return Active
	}
	return Inactive
}

// Task is what a moving ant is doing.
type Task uint8

const (
	Foraging Task = iota
	Carrying
)

func (t Task) String() string {
	if t == Carrying {
		return "carrying"
	}
	return "foraging"
}

// Position is a lattice cell coordinate.
type Position struct {
	X, Y int
}

// Ant tags an entity as an ant and carries its stable ID.
type Ant struct {
	ID AntID
}

// Track remembers the previous cell so an ant does not step straight back.
type Track struct {
	Prev    Position
	HasPrev bool
}

// Activity is the double-buffered MCA activity level.
// Level is the committed value peers read; Next is staged during the
// compute phase and only becomes visible on commit.
type Activity struct {
	Level float64
	Next  float64
}

// State returns the committed activeness.
func (a *Activity) State() Activeness {
	return ActivenessOf(a.Level)
}

// Forager holds foraging state.
type Forager struct {
	Carrying  bool
	Source    Position // Cell the carried food was taken from
	HasSource bool
	Hunger    float64
}

// Task returns the forager's current task.
func (f *Forager) Task() Task {
	if f.Carrying {
		return Carrying
	}
	return Foraging
}

// HomeTrail is an ant's private home pheromone field.
// It lives on the ant entity, so removing the ant removes the field.
type HomeTrail struct {
	W, H   int
	Values []float64
}

// NewHomeTrail returns a zeroed w x h field.
func NewHomeTrail(w, h int) HomeTrail {
	return HomeTrail{W: w, H: h, Values: make([]float64, w*h)}
}

// At returns the value at p. p must be in bounds.
func (t *HomeTrail) At(p Position) float64 {
	return t.Values[p.Y*t.W+p.X]
}

// Deposit adds v at p. p must be in bounds.
func (t *HomeTrail) Deposit(p Position, v float64) {
	t.Values[p.Y*t.W+p.X] += v
}

// Decay scales every value by factor.
func (t *HomeTrail) Decay(factor float64) {
	floats.Scale(factor, t.Values)
}

// FoodPatch is a single food-bearing cell with depletion/regrowth state.
type FoodPatch struct {
	Amount      int
	MaxAmount   int
	Depleted    bool
	RegrowTimer int // Ticks since depletion
}
