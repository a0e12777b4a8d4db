package zones

import (
	"testing"
	"time"

	"github.com/Alias1177/IndexSignal/models"
)

func TestRegistryGapLifecycle(t *testing.T) {
	r := NewRegistry()
	gap := models.FairValueGap{
		Timeframe: models.Timeframe1H,
		Timestamp: testBase,
		GapHigh:   103,
		GapLow:    100,
		GapType:   models.DirectionBullish,
	}
	r.ObserveGaps([]models.FairValueGap{gap})

	if n := r.UnfilledGapCount(models.Timeframe1H); n != 1 {
		t.Fatalf("unfilled gaps = %d, want 1", n)
	}

	// First entry into the zone counts one touch.
	r.Advance(101.5, 0.02)
	active := r.ActiveZones(models.Timeframe1H)
	if len(active) != 1 || active[0].Touches != 1 {
		t.Fatalf("after first entry: active=%d touches=%d, want 1/1", len(active), active[0].Touches)
	}

	// Staying inside is not a second touch; leaving and re-entering is.
	r.Advance(102, 0.02)
	r.Advance(105, 0.02)
	r.Advance(101, 0.02)
	active = r.ActiveZones(models.Timeframe1H)
	if active[0].Touches != 2 {
		t.Errorf("touches = %d, want 2", active[0].Touches)
	}

	// Full traversal below the gap fills it.
	r.Advance(99.5, 0.02)
	if n := r.UnfilledGapCount(models.Timeframe1H); n != 0 {
		t.Errorf("unfilled gaps after traversal = %d, want 0", n)
	}
	if active := r.ActiveZones(models.Timeframe1H); len(active) != 0 {
		t.Errorf("filled gap must leave the active set, got %d zones", len(active))
	}

	// The fill flag is sticky even when price trades back inside.
	r.Advance(101.5, 0.02)
	if n := r.UnfilledGapCount(models.Timeframe1H); n != 0 {
		t.Errorf("fill flag must stay sticky, got %d unfilled", n)
	}
}

func TestRegistryReobserveKeepsState(t *testing.T) {
	r := NewRegistry()
	gap := models.FairValueGap{
		Timeframe: models.Timeframe1H,
		Timestamp: testBase,
		GapHigh:   103,
		GapLow:    100,
		GapType:   models.DirectionBullish,
	}
	r.ObserveGaps([]models.FairValueGap{gap})
	r.Advance(101, 0.02)

	// A second detection pass reports the same gap; state must survive.
	r.ObserveGaps([]models.FairValueGap{gap})
	active := r.ActiveZones(models.Timeframe1H)
	if len(active) != 1 || active[0].Touches != 1 {
		t.Errorf("re-observation must not reset state: active=%d touches=%d", len(active), active[0].Touches)
	}
}

func TestRegistryOrderBlockStale(t *testing.T) {
	r := NewRegistry()
	r.ObserveBlocks([]models.OrderBlock{{
		Timeframe: models.Timeframe4H,
		StartTime: testBase,
		EndTime:   testBase.Add(4 * time.Hour),
		High:      102,
		Low:       100,
		BlockType: models.DirectionBullish,
		Strength:  0.7,
	}})

	r.Advance(101, 0.02)
	if len(r.ActiveZones(models.Timeframe4H)) != 1 {
		t.Fatal("block should be active near its range")
	}

	// Price far below a bullish block invalidates it.
	r.Advance(97, 0.02)
	if len(r.ActiveZones(models.Timeframe4H)) != 0 {
		t.Error("block traded far through must go stale")
	}
}

func TestRegistryExportRestore(t *testing.T) {
	r := NewRegistry()
	r.ObserveGaps([]models.FairValueGap{{
		Timeframe: models.Timeframe1H,
		Timestamp: testBase,
		GapHigh:   103,
		GapLow:    100,
		GapType:   models.DirectionBullish,
	}})
	r.Advance(101, 0.02)
	r.Advance(99, 0.02)

	saved := r.Export()
	if len(saved) != 1 || !saved[0].Filled || saved[0].Touches != 1 {
		t.Fatalf("export = %+v, want one filled zone with one touch", saved)
	}

	fresh := NewRegistry()
	fresh.Restore(saved)
	if n := fresh.UnfilledGapCount(models.Timeframe1H); n != 0 {
		t.Errorf("restored registry lost the fill flag: %d unfilled", n)
	}
	if len(fresh.ActiveZones(models.Timeframe1H)) != 0 {
		t.Error("restored filled zone must stay out of the active set")
	}
}

func TestRegistryLevelSweepSticky(t *testing.T) {
	r := NewRegistry()
	level := models.LiquidityLevel{
		Timeframe: models.TimeframeDaily,
		Timestamp: testBase,
		Price:     110,
		LevelType: models.BuySideLiquidity,
		Swept:     true,
	}
	r.ObserveLevels([]models.LiquidityLevel{level})

	// A later pass reports the same level unswept; the flag must not clear.
	level.Swept = false
	r.ObserveLevels([]models.LiquidityLevel{level})

	levels := r.Levels(models.TimeframeDaily)
	if len(levels) != 1 || !levels[0].Swept {
		t.Errorf("sweep flag must stay sticky, got %+v", levels)
	}
}
