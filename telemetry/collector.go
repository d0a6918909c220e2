package telemetry

import "gonum.org/v1/gonum/floats"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	births     int
	deaths     int
	pickups    int
	deliveries int
	regrowths  int
}

// NewCollector creates a new stats collector with windows of the given
// number of ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int32(windowTicks)}
}

// Record counts an event in the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventPickup:
		c.pickups++
	case EventDelivery:
		c.deliveries++
	case EventBirth:
		c.births++
	case EventStarvation:
		c.deaths++
	case EventRegrowth:
		c.regrowths++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// ColonySample is the colony state sampled at the end of a window.
type ColonySample struct {
	AntsAlive  int
	ActiveAnts int

	Levels []float64 // Committed activity levels
	Hunger []float64

	FoodOnGrid    int
	FoodScattered int
	FoodSupplied  int
	FoodDelivered int

	TrailMass float64
	TrailMax  float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s ColonySample) WindowStats {
	var activePct, deliveredFrac float64
	if s.AntsAlive > 0 {
		activePct = 100 * float64(s.ActiveAnts) / float64(s.AntsAlive)
	}
	if s.FoodScattered > 0 {
		deliveredFrac = float64(s.FoodDelivered) / float64(s.FoodScattered)
	}

	levelMean, levelStd, p10, p50, p90 := ComputeLevelStats(s.Levels)

	var hungerMean, hungerMax float64
	if len(s.Hunger) > 0 {
		hungerMean = floats.Sum(s.Hunger) / float64(len(s.Hunger))
		hungerMax = floats.Max(s.Hunger)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		AntsAlive:     s.AntsAlive,
		ActiveAnts:    s.ActiveAnts,
		ActivePercent: activePct,

		Births:     c.births,
		Deaths:     c.deaths,
		Pickups:    c.pickups,
		Deliveries: c.deliveries,
		Regrowths:  c.regrowths,

		FoodDelivered:     s.FoodDelivered,
		FoodScattered:     s.FoodScattered,
		FoodSupplied:      s.FoodSupplied,
		FoodOnGrid:        s.FoodOnGrid,
		DeliveredFraction: deliveredFrac,

		TrailMass: s.TrailMass,
		TrailMax:  s.TrailMax,

		LevelMean: levelMean,
		LevelStd:  levelStd,
		LevelP10:  p10,
		LevelP50:  p50,
		LevelP90:  p90,

		HungerMean: hungerMean,
		HungerMax:  hungerMax,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0
	c.pickups = 0
	c.deliveries = 0
	c.regrowths = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
