package persistence

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()

	run, err := db.StartRun(cfg, 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(run.ID()); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID(), err)
	}

	windows := []telemetry.WindowStats{
		{WindowEndTick: 50, AntsAlive: 25, ActiveAnts: 5, Pickups: 2, FoodSupplied: 100},
		{WindowEndTick: 100, AntsAlive: 26, ActiveAnts: 7, Deliveries: 1, FoodDelivered: 1, FoodSupplied: 100, DeliveredFraction: 0.01},
	}
	for _, ws := range windows {
		if err := run.SaveWindow(ws); err != nil {
			t.Fatal(err)
		}
	}
	if err := run.Finish(100, 1, 100); err != nil {
		t.Fatal(err)
	}

	rec, err := db.GetRun(run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Seed != 42 || !rec.Seeded || rec.Width != cfg.Grid.Width || rec.Scenario != cfg.Scenario.Obstacles {
		t.Errorf("run record = %+v", rec)
	}
	if rec.FinishedAt == nil || rec.FinalTick != 100 || rec.FoodDelivered != 1 {
		t.Errorf("run not finished: %+v", rec)
	}
	if rec.ConfigYAML == "" {
		t.Error("config not archived")
	}

	got, err := db.Windows(run.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d windows, want 2", len(got))
	}
	if got[0].WindowEnd != 50 || got[0].Pickups != 2 || got[1].Ants != 26 || got[1].DeliveredFraction != 0.01 {
		t.Errorf("windows = %+v", got)
	}
}

func TestFinishedRunRejectsWrites(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun(config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Finish(0, 0, 0); err != nil {
		t.Fatal(err)
	}

	if err := run.SaveWindow(telemetry.WindowStats{WindowEndTick: 10}); !errors.Is(err, ErrRunFinished) {
		t.Errorf("SaveWindow after Finish: %v, want ErrRunFinished", err)
	}
	if err := run.Finish(10, 0, 0); !errors.Is(err, ErrRunFinished) {
		t.Errorf("second Finish: %v, want ErrRunFinished", err)
	}
}

func TestDuplicateWindowFails(t *testing.T) {
	db := openTestDB(t)
	run, err := db.StartRun(config.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ws := telemetry.WindowStats{WindowEndTick: 50}
	if err := run.SaveWindow(ws); err != nil {
		t.Fatal(err)
	}
	if err := run.SaveWindow(ws); err == nil {
		t.Error("expected primary key violation for a repeated window")
	}
}

func TestRecentRuns(t *testing.T) {
	db := openTestDB(t)
	var ids []string
	for seed := int64(1); seed <= 3; seed++ {
		run, err := db.StartRun(config.Default(), seed)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, run.ID())
	}

	runs, err := db.RecentRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("recent runs = [%s %s], want [%s %s]", runs[0].ID, runs[1].ID, ids[2], ids[1])
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	run, err := db.StartRun(config.Default(), 7)
	if err != nil {
		t.Fatal(err)
	}
	id := run.ID()
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.GetRun(id); err != nil {
		t.Errorf("run lost after reopen: %v", err)
	}
}
