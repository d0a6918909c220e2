// Package colony runs the foraging ant colony simulation: a mobile cellular
// automaton of ants whose activity levels couple through their Moore
// neighborhood and whose active members forage along shared pheromone
// trails.
package colony

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/scenario"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Options configures a Simulation.
type Options struct {
	Config *config.Config // nil uses config.Cfg()

	// Obstacles overrides the configured scenario template when non-nil.
	// Row-major, len W*H.
	Obstacles []bool

	LogStats       bool
	OutputDir      string // CSV output directory (empty = disabled)
	SnapshotDir    string // Snapshot directory on bookmarks (empty = disabled)
	StepsPerUpdate int    // Ticks per UpdateHeadless call

	StatsCallback func(telemetry.WindowStats)
}

// Simulation holds the complete colony state.
type Simulation struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	antMapper *ecs.Map6[
		components.Ant,
		components.Position,
		components.Track,
		components.Activity,
		components.Forager,
		components.HomeTrail,
	]
	antMap *ecs.Map[components.Ant]
	posMap *ecs.Map[components.Position]
	actMap *ecs.Map[components.Activity]
	forMap *ecs.Map[components.Forager]

	// Environment
	grid      *systems.Grid
	obstacles []bool
	trail     *systems.FoodTrail
	food      *systems.FoodLayer
	nest      components.Position

	// Systems
	homeTrails *systems.HomeTrailSystem
	activation *systems.ActivationSystem
	movement   *systems.MovementSystem

	// Live ants in ascending AntID order
	order []ecs.Entity

	// Per-tick scratch
	movers   []ecs.Entity
	regrown  []components.Position
	events   []telemetry.Event
	levelBuf []float64
	hungBuf  []float64

	// State
	tick      int32
	nextID    components.AntID
	delivered int
	births    int
	deaths    int

	// Telemetry
	collector      *telemetry.Collector
	perfCollector  *telemetry.PerfCollector
	lifetimes      *telemetry.LifetimeTracker
	bookmarks      *telemetry.BookmarkDetector
	outputManager  *telemetry.OutputManager
	snapshotDir    string
	logStats       bool
	statsCallback  func(telemetry.WindowStats)
	stepsPerUpdate int
}

// New builds a simulation: obstacle template, nest, food scatter, then the
// initial ants at the nest. Setup consumes the RNG in that order.
func New(opts Options) (*Simulation, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	w, h := cfg.Grid.Width, cfg.Grid.Height
	nest := components.Position{X: cfg.Derived.NestX, Y: cfg.Derived.NestY}

	seed := cfg.Derived.Seed
	if !cfg.Derived.Seeded {
		seed = time.Now().UnixNano()
	}

	mask := opts.Obstacles
	if mask == nil {
		var err error
		mask, err = scenario.Mask(cfg.Scenario.Obstacles, w, h, nest)
		if err != nil {
			return nil, fmt.Errorf("building obstacles: %w", err)
		}
	}

	grid, err := systems.NewGrid(w, h, mask)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}
	if err := grid.SetNest(nest); err != nil {
		return nil, fmt.Errorf("placing nest at %v: %w", nest, err)
	}

	world := ecs.NewWorld()
	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	s := &Simulation{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(seed)),
		seed:  seed,
		antMapper: ecs.NewMap6[
			components.Ant,
			components.Position,
			components.Track,
			components.Activity,
			components.Forager,
			components.HomeTrail,
		](world),
		antMap:    ecs.NewMap[components.Ant](world),
		posMap:    ecs.NewMap[components.Position](world),
		actMap:    ecs.NewMap[components.Activity](world),
		forMap:    ecs.NewMap[components.Forager](world),
		grid:      grid,
		obstacles: mask,
		nest:      nest,

		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.StatsWindow),
		lifetimes:      telemetry.NewLifetimeTracker(),
		bookmarks:      telemetry.NewBookmarkDetector(10),
		snapshotDir:    opts.SnapshotDir,
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
		stepsPerUpdate: stepsPerUpdate,
	}

	p := cfg.Pheromone
	s.trail = systems.NewFoodTrail(w, h, p.DiffusionRate, p.DecayRate, config.PheromoneDT, p.Ceiling)
	s.food = systems.NewFoodLayer(world, grid, cfg.Food.Infinite, cfg.Food.RegrowTicks)
	s.homeTrails = systems.NewHomeTrailSystem(world, p.HomeDecay)

	a := cfg.Activation
	s.activation = systems.NewActivationSystem(world, grid, systems.ActivationParams{
		Gain:             a.Gain,
		Coupling:         systems.Coupling{J11: a.J11, J12: a.J12, J21: a.J21, J22: a.J22},
		SpontaneousProb:  a.SpontaneousProb,
		SpontaneousLevel: a.SpontaneousLevel,
		HungerIncrement:  cfg.Lifecycle.HungerIncrement,
		PaperFaithful:    a.PaperFaithful,
	})
	s.movement = systems.NewMovementSystem(world, grid, s.trail, s.food, systems.MovementParams{
		Nest:            nest,
		TrailThreshold:  p.TrailThreshold,
		TrailDeposit:    p.Deposit,
		Sigma:           p.Sigma,
		HomeDeposit:     p.HomeDeposit,
		HungerIncrement: cfg.Lifecycle.HungerIncrement,
	})

	f := cfg.Food
	s.food.Scatter(s.rng, systems.ScatterParams{
		Patches:    f.Patches,
		PerPatch:   f.PerPatch,
		MinRadius:  f.MinRadius,
		MaxRadius:  f.MaxRadius,
		Nest:       nest,
		NestRadius: cfg.Grid.NestRadius,
	})

	for i := 0; i < cfg.Colony.InitialAnts; i++ {
		level := s.rng.Float64()*2 - 1
		if _, err := s.spawnAnt(level, true); err != nil {
			return nil, fmt.Errorf("spawning initial ant %d: %w", i, err)
		}
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}
	s.outputManager = om

	slog.Debug("colony created",
		"width", w,
		"height", h,
		"ants", len(s.order),
		"food", s.food.TotalFood(),
		"seed", seed,
		"seeded", cfg.Derived.Seeded,
	)

	return s, nil
}

// Step advances the simulation by one tick:
//
//  1. activation compute phase, then commit
//  2. movement of the ants active after commit, ascending AntID
//  3. food depletion and regrowth
//  4. food trail diffusion-decay and home trail decay
//  5. starvation, then births
//  6. telemetry
func (s *Simulation) Step() {
	s.events = s.events[:0]
	s.perfCollector.StartTick()

	s.perfCollector.StartPhase(telemetry.PhaseActivation)
	s.activation.ComputePhase(s.order, s.rng)
	s.movers = s.activation.CommitPhase(s.movers[:0], s.order)

	s.perfCollector.StartPhase(telemetry.PhaseMovement)
	s.updateMovement()

	s.perfCollector.StartPhase(telemetry.PhaseFood)
	s.regrown = s.food.Step(s.regrown[:0])
	for _, p := range s.regrown {
		slog.Debug("patch_regrown", "tick", s.tick, "x", p.X, "y", p.Y)
		s.emit(telemetry.NewRegrowthEvent(s.tick, p.X, p.Y))
	}

	s.perfCollector.StartPhase(telemetry.PhasePheromone)
	s.trail.Step()
	s.homeTrails.Update()

	s.perfCollector.StartPhase(telemetry.PhaseLifecycle)
	s.cleanupDead()
	s.updateBirths()

	s.tick++

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for _, ev := range s.events {
		s.collector.Record(ev)
	}
	s.flushTelemetry()

	s.perfCollector.EndTick()
}

// updateMovement moves every ant that is active after commit.
func (s *Simulation) updateMovement() {
	for _, e := range s.movers {
		res := s.movement.Move(e, s.rng)
		if !res.PickedUp && !res.Delivered {
			continue
		}
		id := uint32(s.antMap.Get(e).ID)
		if res.PickedUp {
			s.emit(telemetry.NewPickupEvent(s.tick, id, res.To.X, res.To.Y))
		}
		if res.Delivered {
			s.delivered++
			s.emit(telemetry.NewDeliveryEvent(s.tick, id, res.To.X, res.To.Y))
		}
	}
}

// emit queues ev for the window collector and applies it to the ant's
// lifetime stats right away, so an ant removed later in the tick keeps it.
func (s *Simulation) emit(ev telemetry.Event) {
	s.events = append(s.events, ev)
	s.lifetimes.Record(ev)
}

// UpdateHeadless runs StepsPerUpdate ticks.
func (s *Simulation) UpdateHeadless() {
	for i := 0; i < s.stepsPerUpdate; i++ {
		s.Step()
	}
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Seed returns the seed the RNG was created with.
func (s *Simulation) Seed() int64 {
	return s.seed
}

// Config returns the configuration the simulation runs with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Grid returns the spatial grid.
func (s *Simulation) Grid() *systems.Grid {
	return s.grid
}

// FoodTrail returns the shared food trail field. Callers must not modify it.
func (s *Simulation) FoodTrail() *systems.FoodTrail {
	return s.trail
}

// Food returns the food layer. Callers must not modify it.
func (s *Simulation) Food() *systems.FoodLayer {
	return s.food
}

// Obstacles returns the row-major obstacle mask.
func (s *Simulation) Obstacles() []bool {
	return s.obstacles
}

// Nest returns the nest cell.
func (s *Simulation) Nest() components.Position {
	return s.nest
}

// HomeTrailCount returns the number of live private home trails. It always
// equals the number of live ants.
func (s *Simulation) HomeTrailCount() int {
	return s.homeTrails.Count()
}

// Events returns the telemetry events of the last tick.
func (s *Simulation) Events() []telemetry.Event {
	return s.events
}

// Close flushes and closes telemetry output.
func (s *Simulation) Close() error {
	return s.outputManager.Close()
}
