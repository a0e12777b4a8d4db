package candlestick

import (
	"math"
	"testing"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/models"
)

func pattern(tf models.Timeframe, dir models.Direction, strength models.PatternStrength) models.CandlestickPattern {
	return models.CandlestickPattern{
		Name:      "TEST",
		Timeframe: tf,
		Direction: dir,
		Strength:  strength,
		Timestamp: testBase,
		Price:     100,
	}
}

func TestScore(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name     string
		patterns map[models.Timeframe][]models.CandlestickPattern
		expected models.Direction
		wantData bool
		wantMax  float64
		wantAct  float64
	}{
		{
			// Daily strong bullish contributes 0.8*1.0*100 = 80,
			// 1H medium bearish contributes 0.4*0.75*100 = 30 and subtracts half.
			name: "opposing pattern subtracts half",
			patterns: map[models.Timeframe][]models.CandlestickPattern{
				models.TimeframeDaily: {pattern(models.TimeframeDaily, models.DirectionBullish, models.PatternStrong)},
				models.Timeframe1H:    {pattern(models.Timeframe1H, models.DirectionBearish, models.PatternMedium)},
			},
			expected: models.DirectionBullish,
			wantData: true,
			wantMax:  110,
			wantAct:  65,
		},
		{
			// A neutral doji widens the denominator without moving the numerator.
			name: "neutral pattern contributes zero",
			patterns: map[models.Timeframe][]models.CandlestickPattern{
				models.TimeframeDaily: {pattern(models.TimeframeDaily, models.DirectionBullish, models.PatternStrong)},
				models.Timeframe15M:   {pattern(models.Timeframe15M, models.DirectionNeutral, models.PatternWeak)},
			},
			expected: models.DirectionBullish,
			wantData: true,
			wantMax:  95,
			wantAct:  80,
		},
		{
			name: "full agreement",
			patterns: map[models.Timeframe][]models.CandlestickPattern{
				models.TimeframeDaily: {pattern(models.TimeframeDaily, models.DirectionBearish, models.PatternStrong)},
				models.Timeframe4H:    {pattern(models.Timeframe4H, models.DirectionBearish, models.PatternMedium)},
			},
			expected: models.DirectionBearish,
			wantData: true,
			wantMax:  125,
			wantAct:  125,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(cfg, tt.patterns, tt.expected)

			if got.HasData != tt.wantData {
				t.Fatalf("HasData = %v, want %v", got.HasData, tt.wantData)
			}
			if math.Abs(got.MaxPossible-tt.wantMax) > 1e-9 {
				t.Errorf("MaxPossible = %.4f, want %.4f", got.MaxPossible, tt.wantMax)
			}
			if math.Abs(got.ActualScore-tt.wantAct) > 1e-9 {
				t.Errorf("ActualScore = %.4f, want %.4f", got.ActualScore, tt.wantAct)
			}
			wantScore := tt.wantAct / tt.wantMax * 100
			if math.Abs(got.Score-wantScore) > 1e-9 {
				t.Errorf("Score = %.4f, want %.4f", got.Score, wantScore)
			}
		})
	}
}

func TestScoreNoSignal(t *testing.T) {
	cfg := config.Default()
	patterns := map[models.Timeframe][]models.CandlestickPattern{
		models.TimeframeDaily: {pattern(models.TimeframeDaily, models.DirectionBullish, models.PatternStrong)},
	}

	if got := Score(cfg, patterns, models.DirectionNeutral); got.HasData {
		t.Error("neutral expectation must report no data")
	}
	if got := Score(cfg, nil, models.DirectionBullish); got.HasData {
		t.Error("no patterns must report no data")
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	cfg := config.Default()
	// Every pattern opposes the expected direction.
	patterns := map[models.Timeframe][]models.CandlestickPattern{
		models.TimeframeDaily: {pattern(models.TimeframeDaily, models.DirectionBearish, models.PatternStrong)},
		models.Timeframe4H:    {pattern(models.Timeframe4H, models.DirectionBearish, models.PatternStrong)},
	}

	got := Score(cfg, patterns, models.DirectionBullish)
	if !got.HasData {
		t.Fatal("expected scored result")
	}
	if got.Score != 0 {
		t.Errorf("Score = %.2f, want 0 when everything opposes", got.Score)
	}
}
