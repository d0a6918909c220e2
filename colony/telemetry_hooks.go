package colony

import (
	"log/slog"

	"github.com/pthm-cable/colony/telemetry"
)

// flushTelemetry flushes the stats window when due and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sampleColony())
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
		if s.cfg.Telemetry.AgentSnapshots {
			if err := s.outputManager.WriteAgents(s.antStates(false)); err != nil {
				slog.Error("failed to write agents", "error", err)
			}
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}
}

// sampleColony collects the window-end sample for the collector.
func (s *Simulation) sampleColony() telemetry.ColonySample {
	s.levelBuf = s.levelBuf[:0]
	s.hungBuf = s.hungBuf[:0]
	active := 0
	for _, e := range s.order {
		act := s.actMap.Get(e)
		s.levelBuf = append(s.levelBuf, act.Level)
		s.hungBuf = append(s.hungBuf, s.forMap.Get(e).Hunger)
		if act.Level > 0 {
			active++
		}
	}

	return telemetry.ColonySample{
		AntsAlive:     len(s.order),
		ActiveAnts:    active,
		Levels:        s.levelBuf,
		Hunger:        s.hungBuf,
		FoodOnGrid:    s.food.TotalFood(),
		FoodScattered: s.food.TotalScattered(),
		FoodSupplied:  s.food.TotalSupplied(),
		FoodDelivered: s.delivered,
		TrailMass:     s.trail.Mass(),
		TrailMax:      s.trail.Max(),
	}
}

// antStates converts the agent snapshot to telemetry rows.
func (s *Simulation) antStates(withLifetime bool) []telemetry.AntState {
	agents := s.Agents()
	states := make([]telemetry.AntState, 0, len(agents))
	for _, a := range agents {
		st := telemetry.AntState{
			Tick:     s.tick,
			ID:       uint32(a.ID),
			X:        a.Pos.X,
			Y:        a.Pos.Y,
			Level:    a.Level,
			State:    a.State.String(),
			Task:     a.Task.String(),
			Hunger:   a.Hunger,
			Carrying: a.Carrying,
		}
		if withLifetime {
			st.Lifetime = s.lifetimes.Get(uint32(a.ID)).ToJSON()
		}
		states = append(states, st)
	}
	return states
}

// Snapshot captures the observable colony state.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		Seed:          s.seed,
		Seeded:        s.cfg.Derived.Seeded,
		Width:         s.grid.W,
		Height:        s.grid.H,
		NestX:         s.nest.X,
		NestY:         s.nest.Y,
		Tick:          s.tick,
		FoodTrail:     make([]float64, len(s.trail.Values)),
		Food:          make([]int, len(s.food.Counts())),
		Obstacles:     make([]bool, len(s.obstacles)),
		FoodDelivered: s.delivered,
		FoodScattered: s.food.TotalScattered(),
		FoodSupplied:  s.food.TotalSupplied(),
		Ants:          s.antStates(true),
		Bookmark:      bookmark,
	}
	copy(snap.FoodTrail, s.trail.Values)
	copy(snap.Food, s.food.Counts())
	copy(snap.Obstacles, s.obstacles)
	return snap
}

// saveSnapshot writes a snapshot for a bookmark to the snapshot directory.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(bookmark), s.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", s.tick)
}
