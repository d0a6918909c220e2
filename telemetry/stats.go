package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Population at window end
	AntsAlive     int     `csv:"ants"`
	ActiveAnts    int     `csv:"active"`
	ActivePercent float64 `csv:"active_pct"`

	// Events during window
	Births     int `csv:"births"`
	Deaths     int `csv:"deaths"`
	Pickups    int `csv:"pickups"`
	Deliveries int `csv:"deliveries"`
	Regrowths  int `csv:"regrowths"`

	// Food accounting (cumulative)
	FoodDelivered     int     `csv:"food_delivered"`
	FoodScattered     int     `csv:"food_scattered"`
	FoodSupplied      int     `csv:"food_supplied"` // Scattered plus regrown
	FoodOnGrid        int     `csv:"food_on_grid"`
	DeliveredFraction float64 `csv:"delivered_fraction"` // Delivered / scattered

	// Shared trail
	TrailMass float64 `csv:"trail_mass"`
	TrailMax  float64 `csv:"trail_max"`

	// Activity distribution (sampled at window end)
	LevelMean float64 `csv:"level_mean"`
	LevelStd  float64 `csv:"level_std"`
	LevelP10  float64 `csv:"level_p10"`
	LevelP50  float64 `csv:"level_p50"`
	LevelP90  float64 `csv:"level_p90"`

	HungerMean float64 `csv:"hunger_mean"`
	HungerMax  float64 `csv:"hunger_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLevelStats returns the population mean and standard deviation plus
// the 10th, 50th and 90th percentiles of values.
func ComputeLevelStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("ants", s.AntsAlive),
		slog.Int("active", s.ActiveAnts),
		slog.Float64("active_pct", s.ActivePercent),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("pickups", s.Pickups),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("regrowths", s.Regrowths),
		slog.Int("food_delivered", s.FoodDelivered),
		slog.Int("food_scattered", s.FoodScattered),
		slog.Int("food_supplied", s.FoodSupplied),
		slog.Int("food_on_grid", s.FoodOnGrid),
		slog.Float64("delivered_fraction", s.DeliveredFraction),
		slog.Float64("trail_mass", s.TrailMass),
		slog.Float64("trail_max", s.TrailMax),
		slog.Float64("level_mean", s.LevelMean),
		slog.Float64("level_std", s.LevelStd),
		slog.Float64("level_p10", s.LevelP10),
		slog.Float64("level_p50", s.LevelP50),
		slog.Float64("level_p90", s.LevelP90),
		slog.Float64("hunger_mean", s.HungerMean),
		slog.Float64("hunger_max", s.HungerMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"ants", s.AntsAlive,
		"active", s.ActiveAnts,
		"active_pct", s.ActivePercent,
		"births", s.Births,
		"deaths", s.Deaths,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"regrowths", s.Regrowths,
		"food_delivered", s.FoodDelivered,
		"delivered_fraction", s.DeliveredFraction,
		"food_on_grid", s.FoodOnGrid,
		"trail_mass", s.TrailMass,
		"level_mean", s.LevelMean,
		"level_std", s.LevelStd,
		"level_p50", s.LevelP50,
		"hunger_mean", s.HungerMean,
		"hunger_max", s.HungerMax,
	)
}
