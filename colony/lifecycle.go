package colony

import (
	"log/slog"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/telemetry"
)

// spawnAnt creates an ant at the nest with the given activity level and a
// zeroed home trail. IDs increase monotonically, so appending keeps order
// sorted by AntID.
func (s *Simulation) spawnAnt(level float64, founder bool) (ecs.Entity, error) {
	id := s.nextID
	s.nextID++

	ant := components.Ant{ID: id}
	pos := s.nest
	track := components.Track{}
	act := components.Activity{Level: level, Next: level}
	forager := components.Forager{}
	home := components.NewHomeTrail(s.grid.W, s.grid.H)

	entity := s.antMapper.NewEntity(&ant, &pos, &track, &act, &forager, &home)
	if err := s.grid.PlaceAnt(entity, pos); err != nil {
		s.world.RemoveEntity(entity)
		return ecs.Entity{}, err
	}

	s.order = append(s.order, entity)
	s.lifetimes.Register(uint32(id), s.tick, founder)
	return entity, nil
}

// activeFraction returns the share of live ants whose committed level is
// positive, or 0 for an empty colony.
func (s *Simulation) activeFraction() float64 {
	if len(s.order) == 0 {
		return 0
	}
	active := 0
	for _, e := range s.order {
		if s.actMap.Get(e).State() == components.Active {
			active++
		}
	}
	return float64(active) / float64(len(s.order))
}

// updateBirths draws once for a birth. A quiet colony (active fraction
// below the low-activity mark) breeds at the high rate. A newborn draws
// its level from U(-1,1) with a second draw.
func (s *Simulation) updateBirths() {
	lc := s.cfg.Lifecycle

	prob := lc.BirthProbLow
	if s.activeFraction() < lc.LowActivityFraction {
		prob = lc.BirthProbHigh
	}
	if s.rng.Float64() >= prob {
		return
	}
	if lc.MaxAnts > 0 && len(s.order) >= lc.MaxAnts {
		return
	}

	level := s.rng.Float64()*2 - 1
	entity, err := s.spawnAnt(level, false)
	if err != nil {
		slog.Error("failed to spawn ant", "tick", s.tick, "error", err)
		return
	}
	s.births++

	id := s.antMap.Get(entity).ID
	slog.Debug("ant_born", "tick", s.tick, "id", id, "level", level)
	s.emit(telemetry.NewBirthEvent(s.tick, uint32(id), s.nest.X, s.nest.Y))
}

// cleanupDead removes every ant whose hunger reached the threshold from the
// grid and the world in one pass. The home trail is a component of the ant
// and goes with it.
func (s *Simulation) cleanupDead() {
	threshold := s.cfg.Derived.HungerThreshold
	if math.IsInf(threshold, 1) {
		return
	}

	// First pass: collect starved ants in order
	var toRemove []ecs.Entity
	for _, e := range s.order {
		if s.forMap.Get(e).Hunger >= threshold {
			toRemove = append(toRemove, e)
		}
	}
	if len(toRemove) == 0 {
		return
	}

	// Second pass: remove them
	for _, e := range toRemove {
		id := s.antMap.Get(e).ID
		pos := *s.posMap.Get(e)
		hunger := s.forMap.Get(e).Hunger

		if err := s.grid.RemoveAnt(e, pos); err != nil {
			slog.Error("grid out of sync", "id", id, "x", pos.X, "y", pos.Y, "error", err)
		}
		s.world.RemoveEntity(e)
		s.deaths++

		attrs := []any{"tick", s.tick, "id", id, "hunger", hunger, "x", pos.X, "y", pos.Y}
		if ls := s.lifetimes.Remove(uint32(id)); ls != nil {
			attrs = append(attrs, "age", ls.Age(s.tick), "deliveries", ls.Deliveries)
		}
		slog.Info("ant_starved", attrs...)
		s.emit(telemetry.NewStarvationEvent(s.tick, uint32(id), pos.X, pos.Y))
	}

	s.order = slices.DeleteFunc(s.order, func(e ecs.Entity) bool {
		return !s.world.Alive(e)
	})
}
