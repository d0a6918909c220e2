package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstDelivery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{WindowEndTick: 50}); hasBookmark(bms, BookmarkFirstDelivery) {
		t.Fatal("no delivery yet, got first_delivery")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 100, FoodDelivered: 2}); !hasBookmark(bms, BookmarkFirstDelivery) {
		t.Error("expected first_delivery bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 150, FoodDelivered: 5}); hasBookmark(bms, BookmarkFirstDelivery) {
		t.Error("first_delivery should trigger once")
	}
}

func TestBookmarkDetector_ActivityBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 50), AntsAlive: 40, ActivePercent: 5})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 300, AntsAlive: 40, ActivePercent: 30})
	if !hasBookmark(bms, BookmarkActivityBurst) {
		t.Error("expected activity_burst bookmark")
	}
}

func TestBookmarkDetector_ColonyDecline(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 50), AntsAlive: 100})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 300, AntsAlive: 60})
	if !hasBookmark(bms, BookmarkColonyDecline) {
		t.Error("expected colony_decline bookmark")
	}

	// Peak resets to the post-decline count
	bms = bd.Check(WindowStats{WindowEndTick: 350, AntsAlive: 58})
	if hasBookmark(bms, BookmarkColonyDecline) {
		t.Error("small drop after reset should not trigger")
	}
}

func TestBookmarkDetector_FoodExhausted(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{WindowEndTick: 50}); hasBookmark(bms, BookmarkFoodExhausted) {
		t.Error("food never seen, should not trigger")
	}
	bd.Check(WindowStats{WindowEndTick: 100, FoodOnGrid: 12})

	if bms := bd.Check(WindowStats{WindowEndTick: 150, FoodSupplied: 50}); !hasBookmark(bms, BookmarkFoodExhausted) {
		t.Error("expected food_exhausted bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 200}); hasBookmark(bms, BookmarkFoodExhausted) {
		t.Error("food_exhausted should not repeat while still empty")
	}

	bd.Check(WindowStats{WindowEndTick: 250, FoodOnGrid: 50})
	if bms := bd.Check(WindowStats{WindowEndTick: 300}); !hasBookmark(bms, BookmarkFoodExhausted) {
		t.Error("expected food_exhausted after regrowth was eaten")
	}
}

func TestBookmarkDetector_SteadyForaging(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := -1
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 50), Deliveries: 10})
		if hasBookmark(bms, BookmarkSteadyForaging) {
			if triggered >= 0 {
				t.Fatalf("steady_foraging triggered twice (windows %d and %d)", triggered, i)
			}
			triggered = i
		}
	}

	// Windows 4..8 are steady; the fifth steady window triggers
	if triggered != 8 {
		t.Errorf("steady_foraging triggered at window %d, want 8", triggered)
	}
}
