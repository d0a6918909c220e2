package telemetry

import (
	"context"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for the simulation step.
const (
	PhaseActivation = "activation"
	PhaseMovement   = "movement"
	PhaseFood       = "food"
	PhasePheromone  = "pheromone"
	PhaseLifecycle  = "lifecycle"
	PhaseTelemetry  = "telemetry"
)

// phaseOrder lists the phases in tick order.
var phaseOrder = [...]string{
	PhaseActivation, PhaseMovement, PhaseFood,
	PhasePheromone, PhaseLifecycle, PhaseTelemetry,
}

const numPhases = len(phaseOrder)

// Phases returns the phase names in tick order.
func Phases() []string {
	return phaseOrder[:]
}

func phaseIndex(name string) int {
	for i, p := range phaseOrder {
		if p == name {
			return i
		}
	}
	return -1
}

// tickTiming is the wall time of one tick split by phase.
type tickTiming struct {
	total  time.Duration
	phases [numPhases]time.Duration
	ran    [numPhases]bool
}

// PerfCollector times the phases of each tick over a rolling window.
type PerfCollector struct {
	now func() time.Time

	ring   []tickTiming
	next   int
	filled int

	cur        tickTiming
	tickStart  time.Time
	phaseStart time.Time
	phase      int // -1 while no known phase is open

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		now:   time.Now,
		ring:  make([]tickTiming, windowSize),
		phase: -1,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = tickTiming{}
	p.phase = -1
}

func (p *PerfCollector) closePhase(at time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += at.Sub(p.phaseStart)
	}
}

// StartPhase closes the open phase and starts the named one. Names not in
// Phases count toward the tick total only.
func (p *PerfCollector) StartPhase(name string) {
	at := p.now()
	p.closePhase(at)
	p.phase = phaseIndex(name)
	if p.phase >= 0 {
		p.cur.ran[p.phase] = true
	}
	p.phaseStart = at
}

// EndTick closes the open phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	at := p.now()
	p.closePhase(at)
	p.phase = -1
	p.cur.total = at.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	at := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = at.Sub(p.lastFrame)
	}
	p.lastFrame = at
}

// PerfStats holds tick timing aggregated over the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Keyed by phase name; only phases that ran in the window appear
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average tick, 0-100

	TicksPerSecond float64

	// Graphics mode only
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ticks currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.filled == 0 {
		return s
	}

	totals := make([]float64, p.filled)
	var sums [numPhases]float64
	var ran [numPhases]bool
	for i, tt := range p.ring[:p.filled] {
		totals[i] = float64(tt.total)
		for j := range numPhases {
			sums[j] += float64(tt.phases[j])
			ran[j] = ran[j] || tt.ran[j]
		}
	}

	avg := stat.Mean(totals, nil)
	s.AvgTickDuration = time.Duration(avg)
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}

	n := float64(p.filled)
	for j, name := range phaseOrder {
		if !ran[j] {
			continue
		}
		mean := sums[j] / n
		s.PhaseAvg[name] = time.Duration(mean)
		if avg > 0 {
			s.PhasePct[name] = mean / avg * 100
		}
	}
	return s
}

// LogStats logs the stats as one flat "perf" record.
func (s PerfStats) LogStats() {
	slog.LogAttrs(context.Background(), slog.LevelInfo, "perf", s.LogValue().Group()...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	ActivationPct float64 `csv:"activation_pct"`
	MovementPct   float64 `csv:"movement_pct"`
	FoodPct       float64 `csv:"food_pct"`
	PheromonePct  float64 `csv:"pheromone_pct"`
	LifecyclePct  float64 `csv:"lifecycle_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		ActivationPct: s.PhasePct[PhaseActivation],
		MovementPct:   s.PhasePct[PhaseMovement],
		FoodPct:       s.PhasePct[PhaseFood],
		PheromonePct:  s.PhasePct[PhasePheromone],
		LifecyclePct:  s.PhasePct[PhaseLifecycle],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
