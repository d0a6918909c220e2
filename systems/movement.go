package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
)

// Foraging and homing weights.
const (
	FoodWeight          = 20.0
	NegativeTrailWeight = 1e-6
	NestPull            = 2.0
)

// MovementParams holds movement and deposit parameters.
type MovementParams struct {
	Nest            components.Position
	TrailThreshold  float64 // 3x3 trail mean above which foraging is trail-guided
	TrailDeposit    float64 // Peak food-trail drop of a carrying ant
	Sigma           float64
	HomeDeposit     float64
	HungerIncrement float64
}

// MoveResult describes a committed move.
type MoveResult struct {
	From, To  components.Position
	PickedUp  bool
	Delivered bool
}

// MovementSystem picks and applies moves for active ants.
type MovementSystem struct {
	params MovementParams
	grid   *Grid
	trail  *FoodTrail
	food   *FoodLayer

	ants *ecs.Map4[components.Position, components.Track, components.Forager, components.HomeTrail]

	nbuf    []components.Position
	cands   []components.Position
	weights []float64
}

// NewMovementSystem creates the system for the given world.
func NewMovementSystem(w *ecs.World, grid *Grid, trail *FoodTrail, food *FoodLayer, params MovementParams) *MovementSystem {
	return &MovementSystem{
		params:  params,
		grid:    grid,
		trail:   trail,
		food:    food,
		ants:    ecs.NewMap4[components.Position, components.Track, components.Forager, components.HomeTrail](w),
		nbuf:    make([]components.Position, 0, 8),
		cands:   make([]components.Position, 0, 8),
		weights: make([]float64, 0, 8),
	}
}

// LegalMoves appends the legal destinations from p to dst: Moore neighbors
// that are not obstacles and not the previous cell. The previous cell is
// allowed back in when nothing else is left.
func (s *MovementSystem) LegalMoves(dst []components.Position, p components.Position, track components.Track) []components.Position {
	s.nbuf = s.grid.Neighbors(s.nbuf[:0], p)
	start := len(dst)
	back := false
	for _, q := range s.nbuf {
		if s.grid.blocked(q) {
			continue
		}
		if track.HasPrev && q == track.Prev {
			back = true
			continue
		}
		dst = append(dst, q)
	}
	if len(dst) == start && back {
		dst = append(dst, track.Prev)
	}
	return dst
}

// ForageWeights appends one weight per candidate to dst.
func (s *MovementSystem) ForageWeights(dst []float64, here components.Position, cands []components.Position) []float64 {
	base := s.trail.at(here)
	for _, q := range cands {
		var w float64
		switch diff := s.trail.at(q) - base; {
		case s.food.has(q):
			w = FoodWeight
		case diff > 0:
			w = 1 + diff
		case diff == 0:
			w = 1
		default:
			w = NegativeTrailWeight
		}
		dst = append(dst, w)
	}
	return dst
}

// ChooseForage picks a foraging destination. With a trail signal around
// here the choice is a roulette over ForageWeights (one Float64 draw),
// otherwise uniform over cands (one Intn draw). cands must be non-empty.
func (s *MovementSystem) ChooseForage(rng *rand.Rand, here components.Position, cands []components.Position) components.Position {
	if s.trail.Mean3x3(here) <= s.params.TrailThreshold {
		return cands[rng.Intn(len(cands))]
	}

	s.weights = s.ForageWeights(s.weights[:0], here, cands)
	var total float64
	for _, w := range s.weights {
		total += w
	}
	r := rng.Float64() * total
	var acc float64
	for i, w := range s.weights {
		acc += w
		if r < acc {
			return cands[i]
		}
	}
	return cands[len(cands)-1]
}

// ChooseHome picks the homing destination greedily:
//
//	w = home(q) + NestPull*(dist(here, nest) - dist(q, nest))
//
// Ties go to the earliest candidate. cands must be non-empty.
func (s *MovementSystem) ChooseHome(home *components.HomeTrail, here components.Position, cands []components.Position) components.Position {
	d0 := distance(here, s.params.Nest)
	best := cands[0]
	bestW := math.Inf(-1)
	for _, q := range cands {
		w := home.At(q) + NestPull*(d0-distance(q, s.params.Nest))
		if w > bestW {
			best, bestW = q, w
		}
	}
	return best
}

// Move chooses and applies one step for ant e, then handles pickup,
// delivery and pheromone deposit at the destination.
func (s *MovementSystem) Move(e ecs.Entity, rng *rand.Rand) MoveResult {
	pos, track, forager, home := s.ants.Get(e)
	res := MoveResult{From: *pos, To: *pos}

	s.cands = s.LegalMoves(s.cands[:0], *pos, *track)
	if len(s.cands) == 0 {
		return res
	}

	var dest components.Position
	if forager.Carrying {
		dest = s.ChooseHome(home, *pos, s.cands)
	} else {
		forager.Hunger += s.params.HungerIncrement
		dest = s.ChooseForage(rng, *pos, s.cands)
	}

	// dest comes from LegalMoves: in bounds, no obstacle
	_ = s.grid.MoveAnt(e, *pos, dest)
	track.Prev, track.HasPrev = *pos, true
	*pos = dest
	res.To = dest

	switch {
	case !forager.Carrying && s.food.Take(dest):
		forager.Carrying = true
		forager.Source, forager.HasSource = dest, true
		forager.Hunger = 0
		track.HasPrev = false
		res.PickedUp = true
	case forager.Carrying && dest == s.params.Nest:
		forager.Carrying = false
		forager.HasSource = false
		track.HasPrev = false
		res.Delivered = true
	}

	if forager.Carrying {
		d2 := distanceSq(dest, forager.Source)
		drop := s.params.TrailDeposit * math.Exp(-d2/(s.params.Sigma*s.params.Sigma))
		_ = s.trail.Deposit(dest, drop)
	} else {
		home.Deposit(dest, s.params.HomeDeposit)
	}
	return res
}

func distanceSq(a, b components.Position) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx + dy*dy
}

func distance(a, b components.Position) float64 {
	return math.Sqrt(distanceSq(a, b))
}
