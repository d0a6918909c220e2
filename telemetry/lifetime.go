package telemetry

// LifetimeStats tracks per-ant statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int32
	Founder   bool // Part of the initial colony

	Pickups    int
	Deliveries int
}

// Age returns the ant's age in ticks at currentTick.
func (ls *LifetimeStats) Age(currentTick int32) int32 {
	return currentTick - ls.BirthTick
}

// LifetimeTracker manages per-ant lifetime statistics keyed by ant ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new ant.
func (lt *LifetimeTracker) Register(antID uint32, birthTick int32, founder bool) {
	lt.stats[antID] = &LifetimeStats{BirthTick: birthTick, Founder: founder}
}

// Get returns the lifetime stats for an ant, or nil if not found.
func (lt *LifetimeTracker) Get(antID uint32) *LifetimeStats {
	return lt.stats[antID]
}

// Remove removes an ant's stats and returns them.
func (lt *LifetimeTracker) Remove(antID uint32) *LifetimeStats {
	stats := lt.stats[antID]
	delete(lt.stats, antID)
	return stats
}

// Record applies a pickup or delivery event to the ant's stats.
func (lt *LifetimeTracker) Record(ev Event) {
	s := lt.stats[ev.AntID]
	if s == nil {
		return
	}
	switch ev.Type {
	case EventPickup:
		s.Pickups++
	case EventDelivery:
		s.Deliveries++
	}
}

// Count returns the number of tracked ants.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
