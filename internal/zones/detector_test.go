package zones

import (
	"testing"
	"time"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/models"
)

var testBase = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func stamped(candles []models.Candle) []models.Candle {
	for i := range candles {
		candles[i].Timestamp = testBase.Add(time.Duration(i) * time.Minute)
	}
	return candles
}

func TestFairValueGapsBullish(t *testing.T) {
	candles := stamped([]models.Candle{
		{Open: 99, High: 100, Low: 98, Close: 99.5},
		{Open: 100.5, High: 102.5, Low: 100.2, Close: 102},
		{Open: 103.5, High: 105, Low: 103, Close: 104.5},
	})

	d := NewDetector(config.Default())
	gaps := d.FairValueGaps(models.Timeframe1H, candles)

	if len(gaps) != 1 {
		t.Fatalf("gaps = %d, want 1", len(gaps))
	}
	g := gaps[0]
	if g.GapType != models.DirectionBullish {
		t.Errorf("gap type = %s, want bullish", g.GapType)
	}
	// The imbalance spans from the first candle's high to the third candle's low.
	if g.GapLow != 100 || g.GapHigh != 103 {
		t.Errorf("gap bounds = %.2f-%.2f, want 100.00-103.00", g.GapLow, g.GapHigh)
	}
}

func TestFairValueGapsBearish(t *testing.T) {
	candles := stamped([]models.Candle{
		{Open: 111, High: 112, Low: 110, Close: 111.5},
		{Open: 108, High: 109, Low: 107, Close: 108},
		{Open: 104, High: 105, Low: 103, Close: 104.5},
	})

	d := NewDetector(config.Default())
	gaps := d.FairValueGaps(models.Timeframe1H, candles)

	if len(gaps) != 1 {
		t.Fatalf("gaps = %d, want 1", len(gaps))
	}
	g := gaps[0]
	if g.GapType != models.DirectionBearish {
		t.Errorf("gap type = %s, want bearish", g.GapType)
	}
	if g.GapLow != 105 || g.GapHigh != 110 {
		t.Errorf("gap bounds = %.2f-%.2f, want 105.00-110.00", g.GapLow, g.GapHigh)
	}
}

func TestFairValueGapsBelowThresholdDiscarded(t *testing.T) {
	// The gap is 0.05 while the floor at this price is ~0.10.
	candles := stamped([]models.Candle{
		{Open: 99.5, High: 100, Low: 99, Close: 99.8},
		{Open: 100, High: 100.3, Low: 99.9, Close: 100.1},
		{Open: 100.2, High: 100.6, Low: 100.05, Close: 100.1},
	})

	d := NewDetector(config.Default())
	if gaps := d.FairValueGaps(models.Timeframe1H, candles); len(gaps) != 0 {
		t.Errorf("sub-threshold gap must be discarded, got %d gaps", len(gaps))
	}
}

func TestFairValueGapsInsufficientBars(t *testing.T) {
	d := NewDetector(config.Default())
	candles := stamped([]models.Candle{
		{Open: 99, High: 100, Low: 98, Close: 99.5},
		{Open: 100, High: 101, Low: 99, Close: 100.5},
	})
	if gaps := d.FairValueGaps(models.Timeframe1H, candles); gaps != nil {
		t.Errorf("expected nil for 2 bars, got %v", gaps)
	}
}

func TestOrderBlocks(t *testing.T) {
	tests := []struct {
		name       string
		moveVolume int64
		wantType   models.Direction
		wantHigh   float64
		wantLow    float64
		wantStr    float64
		bearish    bool
	}{
		{name: "bullish block elevated volume", moveVolume: 200, wantType: models.DirectionBullish, wantHigh: 101.5, wantLow: 99.5, wantStr: 0.9},
		{name: "bullish block normal volume", moveVolume: 120, wantType: models.DirectionBullish, wantHigh: 101.5, wantLow: 99.5, wantStr: 0.7},
		{name: "bearish block", moveVolume: 200, wantType: models.DirectionBearish, wantHigh: 102, wantLow: 99.8, wantStr: 0.9, bearish: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var candles []models.Candle
			if tt.bearish {
				candles = stamped([]models.Candle{
					{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 100},
					{Open: 100, High: 102, Low: 99.8, Close: 101, Volume: 100}, // up candle before the drop
					{Open: 101, High: 101.2, Low: 97.5, Close: 98, Volume: tt.moveVolume},
				})
			} else {
				candles = stamped([]models.Candle{
					{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 100},
					{Open: 101, High: 101.5, Low: 99.5, Close: 100, Volume: 100}, // down candle before the surge
					{Open: 100, High: 103.5, Low: 99.8, Close: 103, Volume: tt.moveVolume},
				})
			}

			d := NewDetector(config.Default())
			blocks := d.OrderBlocks(models.Timeframe4H, candles)

			if len(blocks) != 1 {
				t.Fatalf("blocks = %d, want 1", len(blocks))
			}
			b := blocks[0]
			if b.BlockType != tt.wantType {
				t.Errorf("block type = %s, want %s", b.BlockType, tt.wantType)
			}
			if b.High != tt.wantHigh || b.Low != tt.wantLow {
				t.Errorf("block bounds = %.2f-%.2f, want %.2f-%.2f", b.Low, b.High, tt.wantLow, tt.wantHigh)
			}
			if b.Strength != tt.wantStr {
				t.Errorf("strength = %.2f, want %.2f", b.Strength, tt.wantStr)
			}
		})
	}
}

func TestOrderBlocksNoDisplacement(t *testing.T) {
	// The follow-through body is not even twice the opposing candle's body.
	candles := stamped([]models.Candle{
		{Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 100},
		{Open: 101, High: 101.5, Low: 99.5, Close: 100, Volume: 100},
		{Open: 100, High: 102, Low: 99.8, Close: 101.5, Volume: 100},
	})

	d := NewDetector(config.Default())
	if blocks := d.OrderBlocks(models.Timeframe4H, candles); len(blocks) != 0 {
		t.Errorf("no block expected without displacement, got %d", len(blocks))
	}
}

func TestLiquidityLevels(t *testing.T) {
	candles := make([]models.Candle, 50)
	for i := range candles {
		low := 90 - 0.3*float64(i)
		candles[i] = models.Candle{
			Timestamp: testBase.Add(time.Duration(i) * time.Minute),
			Open:      95,
			High:      100 + 0.1*float64(i%5),
			Low:       low,
			Close:     95,
			Volume:    1000,
		}
	}
	// Two equal highs form resting buy-side liquidity.
	candles[10].High = 110
	candles[30].High = 110

	d := NewDetector(config.Default())

	levels := d.LiquidityLevels(models.TimeframeDaily, candles, 105)
	if len(levels) != 1 {
		t.Fatalf("levels = %d, want 1", len(levels))
	}
	l := levels[0]
	if l.LevelType != models.BuySideLiquidity || l.Price != 110 {
		t.Errorf("level = %s @%.2f, want buy-side @110.00", l.LevelType, l.Price)
	}
	if l.Swept {
		t.Error("level must not be swept below it")
	}

	levels = d.LiquidityLevels(models.TimeframeDaily, candles, 111)
	if len(levels) != 1 || !levels[0].Swept {
		t.Error("level must be swept once price trades beyond it")
	}
}

func TestLiquidityLevelsInsufficientBars(t *testing.T) {
	candles := stamped([]models.Candle{
		{Open: 100, High: 101, Low: 99, Close: 100.5},
		{Open: 100, High: 101, Low: 99, Close: 100.5},
		{Open: 100, High: 101, Low: 99, Close: 100.5},
	})

	d := NewDetector(config.Default())
	if levels := d.LiquidityLevels(models.Timeframe5M, candles, 100); levels != nil {
		t.Errorf("3 bars against a 50-bar window must yield nil, got %v", levels)
	}
}
