package colony

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/telemetry"
)

// Metrics is a read-only summary of the colony at the current tick.
type Metrics struct {
	Tick int32

	AntsAlive     int
	ActiveAnts    int
	ActivePercent float64 // 0 for an empty colony

	FoodDelivered     int
	FoodScattered     int     // Units placed at setup
	FoodSupplied      int     // FoodScattered plus regrown units
	DeliveredFraction float64 // FoodDelivered / FoodScattered, 0 when nothing was scattered
	FoodOnGrid        int

	Births int
	Deaths int

	TrailMass float64
}

// Metrics returns the current colony metrics.
func (s *Simulation) Metrics() Metrics {
	m := Metrics{
		Tick:          s.tick,
		AntsAlive:     len(s.order),
		FoodDelivered: s.delivered,
		FoodScattered: s.food.TotalScattered(),
		FoodSupplied:  s.food.TotalSupplied(),
		FoodOnGrid:    s.food.TotalFood(),
		Births:        s.births,
		Deaths:        s.deaths,
		TrailMass:     s.trail.Mass(),
	}
	for _, e := range s.order {
		if s.actMap.Get(e).State() == components.Active {
			m.ActiveAnts++
		}
	}
	if m.AntsAlive > 0 {
		m.ActivePercent = 100 * float64(m.ActiveAnts) / float64(m.AntsAlive)
	}
	if m.FoodScattered > 0 {
		m.DeliveredFraction = float64(m.FoodDelivered) / float64(m.FoodScattered)
	}
	return m
}

// Agent is a read-only snapshot of one ant.
type Agent struct {
	ID       components.AntID
	Pos      components.Position
	Level    float64
	State    components.Activeness
	Task     components.Task
	Hunger   float64
	Carrying bool
}

// Agents returns a snapshot of every live ant in ascending ID order.
func (s *Simulation) Agents() []Agent {
	agents := make([]Agent, 0, len(s.order))
	for _, e := range s.order {
		agents = append(agents, s.agent(e))
	}
	return agents
}

func (s *Simulation) agent(e ecs.Entity) Agent {
	ant, pos, _, act, forager, _ := s.antMapper.Get(e)
	return Agent{
		ID:       ant.ID,
		Pos:      *pos,
		Level:    act.Level,
		State:    act.State(),
		Task:     forager.Task(),
		Hunger:   forager.Hunger,
		Carrying: forager.Carrying,
	}
}

// AntsAt returns the ants in cell p, in grid order.
func (s *Simulation) AntsAt(p components.Position) []Agent {
	entities, err := s.grid.AntsAt(p)
	if err != nil {
		return nil
	}
	agents := make([]Agent, 0, len(entities))
	for _, e := range entities {
		agents = append(agents, s.agent(e))
	}
	return agents
}

// HomeTrail returns the private home trail of ant id, or nil if no such
// ant is alive. Callers must not modify it.
func (s *Simulation) HomeTrail(id components.AntID) *components.HomeTrail {
	for _, e := range s.order {
		ant, _, _, _, _, home := s.antMapper.Get(e)
		if ant.ID == id {
			return home
		}
	}
	return nil
}

// PerfStats returns tick timing over the current perf window.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// RecordFrame marks a rendered frame for FPS tracking.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}
