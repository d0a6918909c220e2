package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/colony/components"
)

// FoodTrail is the shared food pheromone field with explicit
// diffusion-decay. Values stay within [0, Ceiling].
type FoodTrail struct {
	W, H   int
	Values []float64

	// Parameters
	DiffusionRate float64
	DecayRate     float64
	DT            float64
	Ceiling       float64

	// Snapshot of Values taken at the start of Step
	tmp []float64
}

// NewFoodTrail creates an empty w x h trail field.
func NewFoodTrail(w, h int, diffusion, decay, dt, ceiling float64) *FoodTrail {
	return &FoodTrail{
		W: w, H: h,
		Values:        make([]float64, w*h),
		tmp:           make([]float64, w*h),
		DiffusionRate: diffusion,
		DecayRate:     decay,
		DT:            dt,
		Ceiling:       ceiling,
	}
}

func (f *FoodTrail) inBounds(p components.Position) bool {
	return p.X >= 0 && p.X < f.W && p.Y >= 0 && p.Y < f.H
}

// At returns the trail value at p.
func (f *FoodTrail) At(p components.Position) (float64, error) {
	if !f.inBounds(p) {
		return 0, &BoundsError{X: p.X, Y: p.Y, W: f.W, H: f.H}
	}
	return f.Values[p.Y*f.W+p.X], nil
}

// at is At without the bounds check.
func (f *FoodTrail) at(p components.Position) float64 {
	return f.Values[p.Y*f.W+p.X]
}

// Deposit adds v at p, capped at the ceiling.
func (f *FoodTrail) Deposit(p components.Position, v float64) error {
	if !f.inBounds(p) {
		return &BoundsError{X: p.X, Y: p.Y, W: f.W, H: f.H}
	}
	i := p.Y*f.W + p.X
	f.Values[i] = f.clamp(f.Values[i] + v)
	return nil
}

// Mean3x3 returns the mean trail value over the in-bounds 3x3 block
// centered on p.
func (f *FoodTrail) Mean3x3(p components.Position) float64 {
	var sum float64
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			q := components.Position{X: p.X + dx, Y: p.Y + dy}
			if !f.inBounds(q) {
				continue
			}
			sum += f.at(q)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Step advances the field by one tick:
//
//	new = c + dt*(D*lap - gamma*c)
//
// The Laplacian reads a snapshot taken before the update, and missing
// neighbors at the edges reuse the center value (zero flux).
func (f *FoodTrail) Step() {
	copy(f.tmp, f.Values)

	w, h := f.W, f.H
	src := f.tmp
	d := f.DiffusionRate * f.DT
	k := f.DecayRate * f.DT

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			c := src[i]

			n, s, e, wv := c, c, c, c
			if y > 0 {
				n = src[i-w]
			}
			if y < h-1 {
				s = src[i+w]
			}
			if x < w-1 {
				e = src[i+1]
			}
			if x > 0 {
				wv = src[i-1]
			}

			lap := n + s + e + wv - 4*c
			f.Values[i] = f.clamp(c + d*lap - k*c)
		}
	}
}

// Mass returns the sum of all trail values.
func (f *FoodTrail) Mass() float64 {
	return floats.Sum(f.Values)
}

// Max returns the largest trail value.
func (f *FoodTrail) Max() float64 {
	return floats.Max(f.Values)
}

func (f *FoodTrail) clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > f.Ceiling {
		return f.Ceiling
	}
	return v
}

// HomeTrailSystem decays every ant's private home trail once per tick.
// Home trails are never diffused.
type HomeTrailSystem struct {
	filter *ecs.Filter1[components.HomeTrail]
	factor float64
}

// NewHomeTrailSystem creates the system for the given world.
func NewHomeTrailSystem(w *ecs.World, factor float64) *HomeTrailSystem {
	return &HomeTrailSystem{
		filter: ecs.NewFilter1[components.HomeTrail](w),
		factor: factor,
	}
}

// Update applies one tick of multiplicative decay.
func (s *HomeTrailSystem) Update() {
	query := s.filter.Query()
	for query.Next() {
		trail := query.Get()
		trail.Decay(s.factor)
	}
}

// Count returns the number of live home trails.
func (s *HomeTrailSystem) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}
