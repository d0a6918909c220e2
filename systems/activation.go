package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
)

// Coupling is the MCA interaction table indexed by (self, neighbor) state.
type Coupling struct {
	J11, J12, J21, J22 float64
}

// J returns the coupling of a neighbor in state nb acting on self.
func (c Coupling) J(self, nb components.Activeness) float64 {
	switch {
	case self == components.Active && nb == components.Active:
		return c.J11
	case self == components.Active:
		return c.J12
	case nb == components.Active:
		return c.J21
	default:
		return c.J22
	}
}

// ActivationParams holds the activation update parameters.
type ActivationParams struct {
	Gain             float64
	Coupling         Coupling
	SpontaneousProb  float64
	SpontaneousLevel float64
	HungerIncrement  float64

	// PaperFaithful drops the extra gain factor on the self term.
	PaperFaithful bool
}

// NextLevel applies the activity recurrence to a committed level and the
// raw coupling-weighted neighbor sum:
//
//	S = g*A, I = g*sum, A' = tanh(I + g*S)
//
// The self term carries the gain twice. PaperFaithful uses tanh(I + S).
func (p ActivationParams) NextLevel(level, neighborSum float64) float64 {
	s := p.Gain * level
	interaction := p.Gain * neighborSum
	if p.PaperFaithful {
		return math.Tanh(interaction + s)
	}
	return math.Tanh(interaction + p.Gain*s)
}

// ActivationSystem runs the two-phase activity update.
type ActivationSystem struct {
	params ActivationParams
	grid   *Grid

	ants *ecs.Map3[components.Position, components.Activity, components.Forager]
	acts *ecs.Map[components.Activity]

	nbuf []components.Position
}

// NewActivationSystem creates the system for the given world.
func NewActivationSystem(w *ecs.World, grid *Grid, params ActivationParams) *ActivationSystem {
	return &ActivationSystem{
		params: params,
		grid:   grid,
		ants:   ecs.NewMap3[components.Position, components.Activity, components.Forager](w),
		acts:   ecs.NewMap[components.Activity](w),
		nbuf:   make([]components.Position, 0, 8),
	}
}

// Interaction returns sum(J(self, nb) * A_nb) over the ants in the Moore
// cells around p, reading committed levels only. Ants sharing p itself are
// not neighbors.
func (s *ActivationSystem) Interaction(p components.Position, self components.Activeness) float64 {
	var sum float64
	s.nbuf = s.grid.Neighbors(s.nbuf[:0], p)
	for _, q := range s.nbuf {
		for _, nb := range s.grid.cells[s.grid.index(q)].Ants {
			level := s.acts.Get(nb).Level
			sum += s.params.Coupling.J(self, components.ActivenessOf(level)) * level
		}
	}
	return sum
}

// ComputePhase stages the next level of every ant in order. Each inactive ant
// consumes one RNG draw: below the spontaneous probability its staged level
// becomes the spontaneous level. An ant whose staged level stays inactive
// gets hungrier; one that wakes up is charged by its move instead.
func (s *ActivationSystem) ComputePhase(order []ecs.Entity, rng *rand.Rand) {
	for _, e := range order {
		pos, act, forager := s.ants.Get(e)
		self := act.State()
		next := s.params.NextLevel(act.Level, s.Interaction(*pos, self))

		if self == components.Inactive {
			if rng.Float64() < s.params.SpontaneousProb {
				next = s.params.SpontaneousLevel
			}
			if components.ActivenessOf(next) == components.Inactive {
				forager.Hunger += s.params.HungerIncrement
			}
		}
		act.Next = next
	}
}

// CommitPhase publishes every staged level and appends the ants that are active
// afterwards to dst, preserving order.
func (s *ActivationSystem) CommitPhase(dst, order []ecs.Entity) []ecs.Entity {
	for _, e := range order {
		act := s.acts.Get(e)
		act.Level = act.Next
		if act.State() == components.Active {
			dst = append(dst, e)
		}
	}
	return dst
}
