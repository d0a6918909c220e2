package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/colony"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/persistence"
	"github.com/pthm-cable/colony/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.String("seed", "", "RNG seed override (non-integer = unseeded)")
	obstacles := flag.String("obstacles", "", "Obstacle template override (none, rock, tunnel)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	dbPath := flag.String("db", "", "SQLite run archive (empty = disabled)")
	debug := flag.Bool("debug", false, "Log per-event debug records")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != "" {
		cfg.Seed = *seed
	}
	if *obstacles != "" {
		cfg.Scenario.Obstacles = *obstacles
	}
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	opts := colony.Options{
		Config:         cfg,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	var archive *persistence.DB
	var run *persistence.Run
	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open run archive", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		archive = db
		opts.StatsCallback = func(ws telemetry.WindowStats) {
			if run == nil {
				return
			}
			if err := run.SaveWindow(ws); err != nil {
				slog.Error("failed to archive window", "error", err)
			}
		}
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		sim, err := colony.New(opts)
		if err != nil {
			slog.Error("failed to create simulation", "error", err)
			os.Exit(1)
		}
		run = startRun(archive, sim)

		slog.Info("starting headless simulation",
			"seed", sim.Seed(),
			"seeded", cfg.Derived.Seeded,
			"obstacles", cfg.Scenario.Obstacles,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for *maxTicks <= 0 || int(sim.Tick()) < *maxTicks {
			sim.UpdateHeadless()
		}
		slog.Info("max ticks reached", "tick", sim.Tick())

		finish(run, sim)
		if err := sim.Close(); err != nil {
			slog.Error("failed to close outputs", "error", err)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Ant Colony")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return
	}
	run = startRun(archive, g.Sim())

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}

	finish(run, g.Sim())
	if err := g.Unload(); err != nil {
		slog.Error("failed to close outputs", "error", err)
	}
}

// startRun registers the simulation in the archive, if one is open.
func startRun(db *persistence.DB, sim *colony.Simulation) *persistence.Run {
	if db == nil {
		return nil
	}
	run, err := db.StartRun(sim.Config(), sim.Seed())
	if err != nil {
		slog.Error("failed to archive run", "error", err)
		return nil
	}
	return run
}

func finish(run *persistence.Run, sim *colony.Simulation) {
	if run == nil {
		return
	}
	m := sim.Metrics()
	if err := run.Finish(m.Tick, m.FoodDelivered, m.FoodSupplied); err != nil {
		slog.Error("failed to finish run", "error", err)
		return
	}
	slog.Info("run finished", "id", run.ID(), "tick", m.Tick, "delivered", m.FoodDelivered)
}
