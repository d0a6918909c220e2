package colony

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

func init() {
	config.MustInit("")
}

// testConfig returns the defaults with quiet lifecycle settings, edited by
// mutate and re-finalized.
func testConfig(t *testing.T, mutate func(c *config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = "42"
	cfg.Lifecycle.BirthProbHigh = 0
	cfg.Lifecycle.BirthProbLow = 0
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}
	return cfg
}

func newTestSim(t *testing.T, cfg *config.Config) *Simulation {
	t.Helper()
	s, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSilentAntNeverMoves(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.InitialAnts = 1
		c.Activation.Gain = 0
		c.Activation.SpontaneousProb = 0
		c.Food.Patches = 0
	})
	s := newTestSim(t, cfg)

	for i := 0; i < 200; i++ {
		s.Step()
		agents := s.Agents()
		if len(agents) != 1 {
			t.Fatalf("tick %d: %d ants alive", i, len(agents))
		}
		if agents[0].Pos != s.Nest() {
			t.Fatalf("tick %d: ant moved to %v", i, agents[0].Pos)
		}
		if agents[0].Level != 0 || agents[0].State != components.Inactive {
			t.Fatalf("tick %d: ant %+v, want level 0 inactive", i, agents[0])
		}
	}
	if m := s.Metrics(); m.ActivePercent != 0 || m.FoodDelivered != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestAdjacentFoodIsDelivered(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Grid.Width, c.Grid.Height = 5, 5
		c.Colony.InitialAnts = 1
		c.Activation.Gain = 1
		c.Activation.J11, c.Activation.J12, c.Activation.J21, c.Activation.J22 = 0, 0, 0, 0
		c.Activation.SpontaneousProb = 1
		c.Pheromone.HomeDeposit = 0.1
		c.Food.Patches = 0
	})
	s := newTestSim(t, cfg)

	food := components.Position{X: s.Nest().X + 1, Y: s.Nest().Y}
	if err := s.food.AddPatch(food, 5); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5000 && s.Metrics().FoodDelivered == 0; i++ {
		s.Step()
	}

	m := s.Metrics()
	if m.FoodDelivered != 1 {
		t.Fatalf("delivered = %d after %d ticks, want 1", m.FoodDelivered, s.Tick())
	}
	agent := s.Agents()[0]
	if agent.Carrying || agent.Task != components.Foraging {
		t.Errorf("ant still carrying after delivery: %+v", agent)
	}
	if agent.Pos != s.Nest() {
		t.Errorf("delivering ant at %v, want nest", agent.Pos)
	}
	if m.DeliveredFraction != 0.2 {
		t.Errorf("delivered fraction = %v, want 0.2", m.DeliveredFraction)
	}
	if n, _ := s.food.Count(food); n != 4 {
		t.Errorf("food left = %d, want 4", n)
	}
}

func TestDeliveredFractionIgnoresRegrowth(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.InitialAnts = 0
		c.Food.Patches = 0
		c.Food.RegrowTicks = 3
	})
	s := newTestSim(t, cfg)

	p := components.Position{X: 2, Y: 2}
	if err := s.food.AddPatch(p, 2); err != nil {
		t.Fatal(err)
	}
	s.food.Take(p)
	s.food.Take(p)
	for i := 0; i < 10 && s.Metrics().FoodSupplied == 2; i++ {
		s.Step()
	}
	s.delivered = 1

	m := s.Metrics()
	if m.FoodSupplied != 4 || m.FoodScattered != 2 {
		t.Fatalf("supplied %d scattered %d, want 4 and 2", m.FoodSupplied, m.FoodScattered)
	}
	if m.DeliveredFraction != 0.5 {
		t.Errorf("delivered fraction = %v, want 0.5 of the scattered food", m.DeliveredFraction)
	}
}

func TestLifetimeStatsCurrentBeforeLifecycle(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Grid.Width, c.Grid.Height = 5, 5
		c.Colony.InitialAnts = 1
		c.Activation.Gain = 1
		c.Activation.J11, c.Activation.J12, c.Activation.J21, c.Activation.J22 = 0, 0, 0, 0
		c.Activation.SpontaneousProb = 1
		c.Food.Patches = 0
	})
	// Only the east neighbor of the nest (2,2) is open
	mask := make([]bool, 25)
	for _, p := range []components.Position{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 1, Y: 2}, {X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3}} {
		mask[p.Y*5+p.X] = true
	}
	s, err := New(Options{Config: cfg, Obstacles: mask})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	food := components.Position{X: 3, Y: 2}
	if err := s.food.AddPatch(food, 3); err != nil {
		t.Fatal(err)
	}

	// Run the tick up to the lifecycle phase
	s.activation.ComputePhase(s.order, s.rng)
	s.movers = s.activation.CommitPhase(s.movers[:0], s.order)
	s.updateMovement()

	id := uint32(s.antMap.Get(s.order[0]).ID)
	ls := s.lifetimes.Get(id)
	if ls == nil || ls.Pickups != 1 {
		t.Fatalf("lifetime stats before lifecycle = %+v, want 1 pickup", ls)
	}
	if len(s.events) != 1 || s.events[0].Type != telemetry.EventPickup {
		t.Errorf("queued events = %+v, want one pickup", s.events)
	}
}

func TestStarvationRemovesAntAndHomeTrail(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.InitialAnts = 1
		c.Activation.Gain = 0
		c.Activation.SpontaneousProb = 0
		c.Lifecycle.Starvation = true
		c.Lifecycle.HungerThreshold = 3
		c.Lifecycle.HungerIncrement = 1
		c.Food.Patches = 0
	})
	s := newTestSim(t, cfg)

	act := s.actMap.Get(s.order[0])
	act.Level, act.Next = -0.5, -0.5

	for tick := 1; tick <= 2; tick++ {
		s.Step()
		if m := s.Metrics(); m.AntsAlive != 1 {
			t.Fatalf("tick %d: ants alive = %d, want 1", tick, m.AntsAlive)
		}
		if s.HomeTrailCount() != 1 {
			t.Fatalf("tick %d: home trails = %d, want 1", tick, s.HomeTrailCount())
		}
	}

	s.Step()
	m := s.Metrics()
	if m.AntsAlive != 0 || m.Deaths != 1 {
		t.Errorf("after tick 3: alive %d deaths %d, want 0 and 1", m.AntsAlive, m.Deaths)
	}
	if s.HomeTrailCount() != 0 {
		t.Errorf("home trails = %d, want 0", s.HomeTrailCount())
	}
	if ants, _ := s.Grid().AntsAt(s.Nest()); len(ants) != 0 {
		t.Errorf("grid still holds %d ants at the nest", len(ants))
	}
	if len(s.Agents()) != 0 {
		t.Error("Agents still reports the dead ant")
	}
}

func TestStarvationDisabledKeepsHungryAnts(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Colony.InitialAnts = 3
		c.Activation.Gain = 0
		c.Activation.SpontaneousProb = 0
		c.Lifecycle.Starvation = false
		c.Lifecycle.HungerThreshold = 1
	})
	s := newTestSim(t, cfg)

	for i := 0; i < 50; i++ {
		s.Step()
	}
	if m := s.Metrics(); m.AntsAlive != 3 || m.Deaths != 0 {
		t.Errorf("alive %d deaths %d, want 3 and 0", m.AntsAlive, m.Deaths)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	mutate := func(c *config.Config) {
		c.Scenario.Obstacles = "rock"
		c.Lifecycle.BirthProbHigh = 0.05
		c.Lifecycle.BirthProbLow = 0.01
		c.Lifecycle.Starvation = true
		c.Lifecycle.HungerThreshold = 80
		c.Activation.SpontaneousProb = 0.05
		c.Activation.Gain = 0.8
		c.Activation.J11 = 1
		c.Activation.J21 = 0.5
	}
	a := newTestSim(t, testConfig(t, mutate))
	b := newTestSim(t, testConfig(t, mutate))

	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
	}

	if a.Metrics() != b.Metrics() {
		t.Fatalf("metrics diverged:\n%+v\n%+v", a.Metrics(), b.Metrics())
	}
	aa, ba := a.Agents(), b.Agents()
	if len(aa) != len(ba) {
		t.Fatalf("agent counts diverged: %d vs %d", len(aa), len(ba))
	}
	for i := range aa {
		if aa[i] != ba[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, aa[i], ba[i])
		}
	}
	for i, v := range a.FoodTrail().Values {
		if b.FoodTrail().Values[i] != v {
			t.Fatalf("trail cell %d diverged", i)
		}
	}
}

func TestInvariantsHoldDuringRun(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Scenario.Obstacles = "tunnel"
		c.Colony.InitialAnts = 40
		c.Activation.Gain = 1.2
		c.Activation.J11 = 1
		c.Activation.J21 = 1
		c.Activation.SpontaneousProb = 0.05
		c.Food.Patches = 4
		c.Food.PerPatch = 5
		c.Lifecycle.BirthProbHigh = 0.2
		c.Lifecycle.BirthProbLow = 0.05
		c.Lifecycle.MaxAnts = 60
	})
	s := newTestSim(t, cfg)
	ceiling := cfg.Pheromone.Ceiling

	for tick := 0; tick < 600; tick++ {
		s.Step()

		m := s.Metrics()
		agents := s.Agents()
		carrying := 0
		for i, a := range agents {
			if a.Level < -1 || a.Level > 1 {
				t.Fatalf("tick %d: ant %d level %v", tick, a.ID, a.Level)
			}
			if blocked, err := s.Grid().IsObstacle(a.Pos); err != nil || blocked {
				t.Fatalf("tick %d: ant %d on obstacle %v (err %v)", tick, a.ID, a.Pos, err)
			}
			if i > 0 && agents[i-1].ID >= a.ID {
				t.Fatalf("tick %d: agents not in ascending ID order", tick)
			}
			if a.Carrying {
				carrying++
			}
		}
		for i, n := range s.Food().Counts() {
			if n < 0 {
				t.Fatalf("tick %d: cell %d has %d food", tick, i, n)
			}
		}
		if got := m.FoodOnGrid + carrying + m.FoodDelivered; got != m.FoodSupplied {
			t.Fatalf("tick %d: grid %d + carried %d + delivered %d != supplied %d",
				tick, m.FoodOnGrid, carrying, m.FoodDelivered, m.FoodSupplied)
		}
		if s.FoodTrail().Max() > ceiling {
			t.Fatalf("tick %d: trail above ceiling", tick)
		}
		if s.HomeTrailCount() != m.AntsAlive {
			t.Fatalf("tick %d: %d home trails for %d ants", tick, s.HomeTrailCount(), m.AntsAlive)
		}
		if m.AntsAlive > cfg.Lifecycle.MaxAnts {
			t.Fatalf("tick %d: %d ants above cap %d", tick, m.AntsAlive, cfg.Lifecycle.MaxAnts)
		}
	}
}

func TestNewRejectsBadSetup(t *testing.T) {
	t.Run("unknown scenario", func(t *testing.T) {
		cfg := testConfig(t, func(c *config.Config) { c.Scenario.Obstacles = "volcano" })
		if _, err := New(Options{Config: cfg}); err == nil {
			t.Error("expected error for unknown scenario")
		}
	})

	t.Run("nest on obstacle", func(t *testing.T) {
		cfg := testConfig(t, nil)
		mask := make([]bool, cfg.Grid.Width*cfg.Grid.Height)
		mask[cfg.Derived.NestY*cfg.Grid.Width+cfg.Derived.NestX] = true
		if _, err := New(Options{Config: cfg, Obstacles: mask}); err == nil {
			t.Error("expected error for nest on obstacle")
		}
	})
}

func TestUnseededRunStarts(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Seed = "not-a-number" })
	if cfg.Derived.Seeded {
		t.Fatal("non-numeric seed should leave the source unseeded")
	}
	s := newTestSim(t, cfg)
	s.Step()
	if s.Tick() != 1 {
		t.Errorf("tick = %d, want 1", s.Tick())
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, func(c *config.Config) {
		c.Telemetry.StatsWindow = 10
		c.Telemetry.AgentSnapshots = true
	})

	var windows []telemetry.WindowStats
	s, err := New(Options{
		Config:         cfg,
		OutputDir:      dir,
		StepsPerUpdate: 5,
		StatsCallback:  func(ws telemetry.WindowStats) { windows = append(windows, ws) },
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		s.UpdateHeadless()
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	if windows[2].WindowEndTick != 30 || windows[2].AntsAlive != cfg.Colony.InitialAnts {
		t.Errorf("last window = %+v", windows[2])
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 4 {
		t.Errorf("telemetry.csv has %d lines, want 4", len(lines))
	}
	data, err = os.ReadFile(filepath.Join(dir, "agents.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 1+3*cfg.Colony.InitialAnts {
		t.Errorf("agents.csv has %d lines, want %d", len(lines), 1+3*cfg.Colony.InitialAnts)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml missing: %v", err)
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	s := newTestSim(t, testConfig(t, nil))
	for i := 0; i < 20; i++ {
		s.Step()
	}

	snap := s.Snapshot(nil)
	if snap.Tick != 20 || len(snap.Ants) != len(s.Agents()) {
		t.Fatalf("snapshot tick %d ants %d", snap.Tick, len(snap.Ants))
	}
	if len(snap.FoodTrail) != s.Grid().W*s.Grid().H {
		t.Errorf("trail length %d", len(snap.FoodTrail))
	}
	snap.FoodTrail[0] = 99
	if s.FoodTrail().Values[0] == 99 {
		t.Error("snapshot aliases the live trail")
	}
	for _, a := range snap.Ants {
		if a.Lifetime == nil || !a.Lifetime.Founder {
			t.Errorf("ant %d lifetime = %+v, want founder", a.ID, a.Lifetime)
		}
	}
}

func BenchmarkStep(b *testing.B) {
	cfg := config.Default()
	cfg.Colony.InitialAnts = 100
	if err := cfg.Finalize(); err != nil {
		b.Fatal(err)
	}
	s, err := New(Options{Config: cfg})
	if err != nil {
		b.Fatal(err)
	}
	defer s.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}

func TestCellQueries(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Colony.InitialAnts = 4 })
	s := newTestSim(t, cfg)

	if got := len(s.AntsAt(s.Nest())); got != 4 {
		t.Errorf("ants at nest = %d, want 4", got)
	}
	if got := s.AntsAt(components.Position{X: -1, Y: 0}); got != nil {
		t.Errorf("out-of-bounds cell returned %v", got)
	}
	if s.HomeTrail(0) == nil {
		t.Error("home trail of ant 0 missing")
	}
	if s.HomeTrail(99) != nil {
		t.Error("home trail returned for unknown ant")
	}
}
