package confidence

import (
	"math"
	"testing"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/models"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %.4f, want %.4f", name, got, want)
	}
}

func TestCalculateFullMarks(t *testing.T) {
	cfg := &config.Default().Confidence

	htf := models.HTFBias{
		OverallDirection: models.DirectionBullish,
		BiasStrength:     100,
		StructureQuality: models.QualityHigh,
		PremiumDiscount:  models.RegionDiscount,
	}
	entry := &models.LTFEntry{
		EntryType:         models.EntrySecondTest,
		Direction:         models.DirectionBullish,
		AlignmentScore:    100,
		MomentumConfirmed: true,
	}
	confluence := models.ConfluenceResult{Score: 100, HasData: true}
	model := &models.ModelSignal{Direction: models.DirectionBullish, Confidence: 1.0}
	basis := &models.FuturesBasis{BasisPct: 0.5, Sentiment: models.DirectionBullish}
	breadth := &models.MarketBreadth{ExpectedDirection: models.DirectionBullish, Confidence: 1.0}

	b := Calculate(cfg, htf, entry, confluence, model, basis, breadth)

	approx(t, "HTFStructure", b.HTFStructure, 40)
	approx(t, "LTFConfirmation", b.LTFConfirmation, 25)
	approx(t, "ModelAlignment", b.ModelAlignment, 15)
	approx(t, "Candlestick", b.Candlestick, 10)
	approx(t, "FuturesBasis", b.FuturesBasis, 5)
	approx(t, "Breadth", b.Breadth, 5)
	approx(t, "Total", b.Total, 100)
	if b.Level != LevelVeryHigh {
		t.Errorf("level = %s, want %s", b.Level, LevelVeryHigh)
	}
}

func TestCalculateCapsHold(t *testing.T) {
	cfg := &config.Default().Confidence
	// Inflate the raw inputs past every cap.
	htf := models.HTFBias{
		OverallDirection: models.DirectionBullish,
		BiasStrength:     1000,
		StructureQuality: models.QualityHigh,
		PremiumDiscount:  models.RegionDiscount,
	}
	entry := &models.LTFEntry{
		EntryType:         models.EntrySecondTest,
		Direction:         models.DirectionBullish,
		AlignmentScore:    1000,
		MomentumConfirmed: true,
	}
	confluence := models.ConfluenceResult{Score: 100, HasData: true}
	model := &models.ModelSignal{Direction: models.DirectionBullish, Confidence: 5.0}
	basis := &models.FuturesBasis{BasisPct: 50, Sentiment: models.DirectionBullish}
	breadth := &models.MarketBreadth{ExpectedDirection: models.DirectionBullish, Confidence: 5.0}

	b := Calculate(cfg, htf, entry, confluence, model, basis, breadth)

	if b.HTFStructure > cfg.HTFCap || b.LTFConfirmation > cfg.LTFCap ||
		b.ModelAlignment > cfg.ModelCap || b.Candlestick > cfg.CandlestickCap ||
		b.FuturesBasis > cfg.BasisCap || b.Breadth > cfg.BreadthCap {
		t.Errorf("a sub-score exceeded its cap: %+v", b)
	}
	if b.Total > 100 {
		t.Errorf("total = %.2f, must never exceed 100", b.Total)
	}
}

func TestCalculateMissingCollaborators(t *testing.T) {
	cfg := &config.Default().Confidence
	htf := models.HTFBias{
		OverallDirection: models.DirectionBullish,
		BiasStrength:     90,
		StructureQuality: models.QualityHigh,
		PremiumDiscount:  models.RegionDiscount,
	}
	entry := &models.LTFEntry{
		EntryType:         models.EntrySecondTest,
		Direction:         models.DirectionBullish,
		AlignmentScore:    100,
		MomentumConfirmed: true,
	}
	model := &models.ModelSignal{Direction: models.DirectionBullish, Confidence: 0.7}

	b := Calculate(cfg, htf, entry, models.ConfluenceResult{}, model, nil, nil)

	// 13.5 strength + 15 quality + 10 region alignment.
	approx(t, "HTFStructure", b.HTFStructure, 38.5)
	approx(t, "LTFConfirmation", b.LTFConfirmation, 25)
	approx(t, "ModelAlignment", b.ModelAlignment, 10.5)
	// No pattern data falls back to the neutral midpoint, same for basis and breadth.
	approx(t, "Candlestick", b.Candlestick, 4)
	approx(t, "FuturesBasis", b.FuturesBasis, 2.5)
	approx(t, "Breadth", b.Breadth, 2.5)
	approx(t, "Total", b.Total, 83)
	if b.Level != LevelVeryHigh {
		t.Errorf("level = %s, want %s", b.Level, LevelVeryHigh)
	}
}

func TestCalculateDegraded(t *testing.T) {
	cfg := &config.Default().Confidence
	htf := models.HTFBias{
		OverallDirection: models.DirectionBearish,
		BiasStrength:     20,
		StructureQuality: models.QualityLow,
		PremiumDiscount:  models.RegionDiscount, // misaligned for a bearish bias
	}

	b := Calculate(cfg, htf, nil, models.ConfluenceResult{},
		&models.ModelSignal{Direction: models.DirectionBullish, Confidence: 0.9}, nil, nil)

	// 3 strength + 5 quality + 2 misaligned region.
	approx(t, "HTFStructure", b.HTFStructure, 10)
	approx(t, "LTFConfirmation", b.LTFConfirmation, 0)
	// Conflicting model forecast scores the floor.
	approx(t, "ModelAlignment", b.ModelAlignment, 2)
	approx(t, "Total", b.Total, 21)
	if b.Level != LevelVeryLow {
		t.Errorf("level = %s, want %s", b.Level, LevelVeryLow)
	}
}

func TestCalculateScalesWithRecalibratedCaps(t *testing.T) {
	cfg := config.Default().Confidence
	cfg.ModelCap = 20
	cfg.CandlestickCap = 20
	cfg.BreadthCap = 10

	htf := models.HTFBias{OverallDirection: models.DirectionBullish}
	confluence := models.ConfluenceResult{Score: 50, HasData: true}
	model := &models.ModelSignal{Direction: models.DirectionBullish, Confidence: 0.5}
	breadth := &models.MarketBreadth{ExpectedDirection: models.DirectionBullish, Confidence: 0.5}

	b := Calculate(&cfg, htf, nil, confluence, model, nil, breadth)

	// Each multiplier follows its cap, not a compiled-in constant.
	approx(t, "ModelAlignment", b.ModelAlignment, 10)
	approx(t, "Candlestick", b.Candlestick, 10)
	approx(t, "Breadth", b.Breadth, 5)
}

func TestCalculateModelErrorIsNeutral(t *testing.T) {
	cfg := &config.Default().Confidence
	htf := models.HTFBias{OverallDirection: models.DirectionBullish}

	b := Calculate(cfg, htf, nil, models.ConfluenceResult{},
		&models.ModelSignal{Direction: models.DirectionBearish, Confidence: 0.9, Err: true}, nil, nil)

	approx(t, "ModelAlignment", b.ModelAlignment, 5)
}

func TestConfidenceLevelModerate(t *testing.T) {
	cfg := &config.Default().Confidence

	// Strong structure but no trigger and a conflicting model forecast:
	// 40 + 0 + 2 + 4 + 2.5 + 2.5 = 51.
	htf := models.HTFBias{
		OverallDirection: models.DirectionBullish,
		BiasStrength:     100,
		StructureQuality: models.QualityHigh,
		PremiumDiscount:  models.RegionDiscount,
	}
	b := Calculate(cfg, htf, nil, models.ConfluenceResult{},
		&models.ModelSignal{Direction: models.DirectionBearish, Confidence: 0.9}, nil, nil)

	approx(t, "Total", b.Total, 51)
	if b.Level != LevelModerate {
		t.Errorf("level = %s, want %s", b.Level, LevelModerate)
	}
}
