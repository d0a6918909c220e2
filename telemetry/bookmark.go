package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstDelivery  BookmarkType = "first_delivery"
	BookmarkActivityBurst  BookmarkType = "activity_burst"
	BookmarkColonyDecline  BookmarkType = "colony_decline"
	BookmarkFoodExhausted  BookmarkType = "food_exhausted"
	BookmarkSteadyForaging BookmarkType = "steady_foraging"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// steadyWindows is how many consecutive steady windows trigger
// BookmarkSteadyForaging.
const steadyWindows = 5

// BookmarkDetector detects notable moments in a colony run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	delivered    bool // A delivery has been bookmarked
	foodSeen     bool // Food has been on the grid at some window end
	exhausted    bool // Exhaustion bookmarked and not yet refilled
	populationPk int  // Peak ant count since the last decline
	steadyCount  int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkFirstDelivery,
		bd.checkActivityBurst,
		bd.checkColonyDecline,
		bd.checkFoodExhausted,
		bd.checkSteadyForaging,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.AntsAlive > bd.populationPk {
		bd.populationPk = stats.AntsAlive
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	history := bd.getHistory()
	if n > len(history) {
		n = len(history)
	}
	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

func (bd *BookmarkDetector) checkFirstDelivery(stats WindowStats) *Bookmark {
	if bd.delivered || stats.FoodDelivered == 0 {
		return nil
	}
	bd.delivered = true
	return &Bookmark{
		Type:        BookmarkFirstDelivery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First food delivered to the nest (%d units by window end)", stats.FoodDelivered),
	}
}

func (bd *BookmarkDetector) checkActivityBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.ActivePercent
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.ActivePercent > avg*2.0 && stats.ActivePercent >= 20 {
		return &Bookmark{
			Type:        BookmarkActivityBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Active ants %.1f%% is %.1fx average (%.1f%%)", stats.ActivePercent, stats.ActivePercent/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkColonyDecline(stats WindowStats) *Bookmark {
	if bd.populationPk == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.AntsAlive)/float64(bd.populationPk)
	if drop > 0.30 && stats.AntsAlive < bd.populationPk-5 {
		oldPeak := bd.populationPk
		bd.populationPk = stats.AntsAlive

		return &Bookmark{
			Type:        BookmarkColonyDecline,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Colony shrank %.0f%% from peak %d to %d", drop*100, oldPeak, stats.AntsAlive),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkFoodExhausted(stats WindowStats) *Bookmark {
	if stats.FoodOnGrid > 0 {
		bd.foodSeen = true
		bd.exhausted = false
		return nil
	}
	if !bd.foodSeen || bd.exhausted {
		return nil
	}
	bd.exhausted = true
	return &Bookmark{
		Type:        BookmarkFoodExhausted,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No food left on the grid after %d units supplied", stats.FoodSupplied),
	}
}

func (bd *BookmarkDetector) checkSteadyForaging(stats WindowStats) *Bookmark {
	if stats.Deliveries == 0 {
		bd.steadyCount = 0
		return nil
	}

	history := bd.recent(steadyWindows - 1)
	if len(history) < steadyWindows-1 {
		return nil
	}

	// Deliveries per window with a coefficient of variation below 20%
	counts := make([]float64, 0, steadyWindows)
	for _, h := range history {
		counts = append(counts, float64(h.Deliveries))
	}
	counts = append(counts, float64(stats.Deliveries))
	mean, std := stat.PopMeanStdDev(counts, nil)

	if mean > 0 && std/mean < 0.2 {
		bd.steadyCount++
	} else {
		bd.steadyCount = 0
	}

	if bd.steadyCount == steadyWindows {
		return &Bookmark{
			Type:        BookmarkSteadyForaging,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady foraging at %.1f deliveries per window", mean),
		}
	}
	return nil
}
