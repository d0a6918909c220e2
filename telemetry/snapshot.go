package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable colony state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Seeded  bool  `json:"seeded"`

	Width  int `json:"width"`
	Height int `json:"height"`
	NestX  int `json:"nest_x"`
	NestY  int `json:"nest_y"`

	Tick int32 `json:"tick"`

	FoodTrail []float64 `json:"food_trail"` // Row-major W*H
	Food      []int     `json:"food"`
	Obstacles []bool    `json:"obstacles"`

	FoodDelivered int `json:"food_delivered"`
	FoodScattered int `json:"food_scattered"`
	FoodSupplied  int `json:"food_supplied"`

	Ants []AntState `json:"ants"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// AntState is one ant's observable state. It doubles as the agents.csv row.
type AntState struct {
	Tick     int32   `csv:"tick" json:"-"`
	ID       uint32  `csv:"id" json:"id"`
	X        int     `csv:"x" json:"x"`
	Y        int     `csv:"y" json:"y"`
	Level    float64 `csv:"level" json:"level"`
	State    string  `csv:"state" json:"state"`
	Task     string  `csv:"task" json:"task"`
	Hunger   float64 `csv:"hunger" json:"hunger"`
	Carrying bool    `csv:"carrying" json:"carrying"`

	Lifetime *LifetimeStatsJSON `csv:"-" json:"lifetime,omitempty"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	BirthTick  int32 `json:"birth_tick"`
	Founder    bool  `json:"founder"`
	Pickups    int   `json:"pickups"`
	Deliveries int   `json:"deliveries"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		BirthTick:  ls.BirthTick,
		Founder:    ls.Founder,
		Pickups:    ls.Pickups,
		Deliveries: ls.Deliveries,
	}
}

// SaveSnapshot writes a snapshot to dir and returns its path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}
	return &snapshot, nil
}
