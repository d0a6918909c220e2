// Package persistence archives colony runs and their window statistics in
// SQLite.
package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

// ErrRunFinished is returned when writing to a run that was already finished.
var ErrRunFinished = errors.New("run already finished")

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		seed INTEGER NOT NULL,
		seeded INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		scenario TEXT NOT NULL,
		config_yaml TEXT NOT NULL,
		final_tick INTEGER NOT NULL DEFAULT 0,
		food_delivered INTEGER NOT NULL DEFAULT 0,
		food_supplied INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS window_stats (
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_end INTEGER NOT NULL,
		ants INTEGER NOT NULL,
		active INTEGER NOT NULL,
		active_pct REAL NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		pickups INTEGER NOT NULL,
		deliveries INTEGER NOT NULL,
		food_delivered INTEGER NOT NULL,
		food_supplied INTEGER NOT NULL,
		delivered_fraction REAL NOT NULL,
		trail_mass REAL NOT NULL,
		level_mean REAL NOT NULL,
		hunger_mean REAL NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRecord is one archived run.
type RunRecord struct {
	ID            string `db:"id"`
	StartedAt     int64  `db:"started_at"`
	FinishedAt    *int64 `db:"finished_at"`
	Seed          int64  `db:"seed"`
	Seeded        bool   `db:"seeded"`
	Width         int    `db:"width"`
	Height        int    `db:"height"`
	Scenario      string `db:"scenario"`
	ConfigYAML    string `db:"config_yaml"`
	FinalTick     int32  `db:"final_tick"`
	FoodDelivered int    `db:"food_delivered"`
	FoodSupplied  int    `db:"food_supplied"`
}

// WindowRecord is one archived stats window.
type WindowRecord struct {
	RunID             string  `db:"run_id"`
	WindowEnd         int32   `db:"window_end"`
	Ants              int     `db:"ants"`
	Active            int     `db:"active"`
	ActivePercent     float64 `db:"active_pct"`
	Births            int     `db:"births"`
	Deaths            int     `db:"deaths"`
	Pickups           int     `db:"pickups"`
	Deliveries        int     `db:"deliveries"`
	FoodDelivered     int     `db:"food_delivered"`
	FoodSupplied      int     `db:"food_supplied"`
	DeliveredFraction float64 `db:"delivered_fraction"`
	TrailMass         float64 `db:"trail_mass"`
	LevelMean         float64 `db:"level_mean"`
	HungerMean        float64 `db:"hunger_mean"`
}

// Run is an open archive entry that window stats are appended to.
type Run struct {
	db       *DB
	id       string
	finished bool
}

// StartRun registers a new run for cfg under a fresh UUID. seed is the seed
// the simulation actually used.
func (db *DB) StartRun(cfg *config.Config, seed int64) (*Run, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(`INSERT INTO runs
		(id, started_at, seed, seeded, width, height, scenario, config_yaml)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), seed, cfg.Derived.Seeded,
		cfg.Grid.Width, cfg.Grid.Height, cfg.Scenario.Obstacles, string(data),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	slog.Info("run archived", "id", id, "seed", seed)
	return &Run{db: db, id: id}, nil
}

// ID returns the run's UUID.
func (r *Run) ID() string {
	return r.id
}

// SaveWindow appends one stats window to the run.
func (r *Run) SaveWindow(ws telemetry.WindowStats) error {
	if r.finished {
		return ErrRunFinished
	}
	rec := WindowRecord{
		RunID:             r.id,
		WindowEnd:         ws.WindowEndTick,
		Ants:              ws.AntsAlive,
		Active:            ws.ActiveAnts,
		ActivePercent:     ws.ActivePercent,
		Births:            ws.Births,
		Deaths:            ws.Deaths,
		Pickups:           ws.Pickups,
		Deliveries:        ws.Deliveries,
		FoodDelivered:     ws.FoodDelivered,
		FoodSupplied:      ws.FoodSupplied,
		DeliveredFraction: ws.DeliveredFraction,
		TrailMass:         ws.TrailMass,
		LevelMean:         ws.LevelMean,
		HungerMean:        ws.HungerMean,
	}
	_, err := r.db.conn.NamedExec(`INSERT INTO window_stats
		(run_id, window_end, ants, active, active_pct, births, deaths, pickups,
		 deliveries, food_delivered, food_supplied, delivered_fraction,
		 trail_mass, level_mean, hunger_mean)
		VALUES (:run_id, :window_end, :ants, :active, :active_pct, :births, :deaths, :pickups,
		 :deliveries, :food_delivered, :food_supplied, :delivered_fraction,
		 :trail_mass, :level_mean, :hunger_mean)`, rec)
	if err != nil {
		return fmt.Errorf("insert window %d: %w", ws.WindowEndTick, err)
	}
	return nil
}

// Finish records the final tick and food totals. Later writes fail.
func (r *Run) Finish(tick int32, delivered, supplied int) error {
	if r.finished {
		return ErrRunFinished
	}
	_, err := r.db.conn.Exec(`UPDATE runs
		SET finished_at = ?, final_tick = ?, food_delivered = ?, food_supplied = ?
		WHERE id = ?`,
		time.Now().Unix(), tick, delivered, supplied, r.id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", r.id, err)
	}
	r.finished = true
	return nil
}

// GetRun returns the archived run with the given ID.
func (db *DB) GetRun(id string) (*RunRecord, error) {
	var rec RunRecord
	if err := db.conn.Get(&rec, "SELECT * FROM runs WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentRuns returns the most recently started runs, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// Windows returns the stats windows of a run in tick order.
func (db *DB) Windows(runID string) ([]WindowRecord, error) {
	var windows []WindowRecord
	err := db.conn.Select(&windows,
		"SELECT * FROM window_stats WHERE run_id = ? ORDER BY window_end",
		runID,
	)
	return windows, err
}
