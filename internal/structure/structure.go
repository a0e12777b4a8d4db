// Package structure detects swing points, structure breaks and trend per timeframe.
package structure

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/models"
)

const (
	TrendUp      = "uptrend"
	TrendDown    = "downtrend"
	TrendNeutral = "neutral"
)

// Analyzer finds swing structure in a single timeframe's candle series.
type Analyzer struct {
	strength int // bars required on each side to confirm a swing
	logger   zerolog.Logger
}

// NewAnalyzer creates an analyzer with the given swing strength (bars per side).
func NewAnalyzer(strength int) *Analyzer {
	if strength <= 0 {
		strength = 5
	}
	return &Analyzer{
		strength: strength,
		logger:   log.With().Str("component", "structure").Logger(),
	}
}

// Analyze produces the full structure report for one timeframe.
// With fewer than 2N+1 bars it returns no swings and a neutral trend, never an error.
func (a *Analyzer) Analyze(tf models.Timeframe, candles []models.Candle) *models.StructureReport {
	report := &models.StructureReport{Timeframe: tf, Trend: TrendNeutral}

	if len(candles) < 2*a.strength+1 {
		a.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Int("required", 2*a.strength+1).
			Msg("insufficient bars for swing detection")
		return report
	}

	report.Swings = a.findSwings(candles)
	report.Breaks = a.findBreaks(candles, report.Swings)
	report.Trend = a.labelTrend(report.Swings)
	return report
}

// findSwings confirms a swing high when the bar's high exceeds the highs of the
// N bars on both sides, mirrored for swing lows.
func (a *Analyzer) findSwings(candles []models.Candle) []models.SwingPoint {
	var swings []models.SwingPoint
	n := a.strength

	for i := n; i < len(candles)-n; i++ {
		isHigh := true
		isLow := true
		for j := 1; j <= n; j++ {
			if candles[i].High <= candles[i-j].High || candles[i].High <= candles[i+j].High {
				isHigh = false
			}
			if candles[i].Low >= candles[i-j].Low || candles[i].Low >= candles[i+j].Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		if isHigh {
			swings = append(swings, models.SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].High,
				Kind:      models.SwingHigh,
			})
		}
		if isLow {
			swings = append(swings, models.SwingPoint{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Price:     candles[i].Low,
				Kind:      models.SwingLow,
			})
		}
	}

	return swings
}

// findBreaks records a bullish break when a bar's high trades above the most
// recent confirmed swing high, and a bearish break below the most recent
// confirmed swing low. A swing counts as confirmed only once its N trailing
// bars exist, and each swing can be broken once.
func (a *Analyzer) findBreaks(candles []models.Candle, swings []models.SwingPoint) []models.StructureBreak {
	var breaks []models.StructureBreak

	var lastHigh, lastLow *models.SwingPoint
	next := 0

	for i := 0; i < len(candles); i++ {
		// Promote swings whose confirmation bar has arrived.
		for next < len(swings) && swings[next].Index+a.strength <= i {
			if swings[next].Kind == models.SwingHigh {
				lastHigh = &swings[next]
			} else {
				lastLow = &swings[next]
			}
			next++
		}

		if lastHigh != nil && candles[i].High > lastHigh.Price {
			breaks = append(breaks, models.StructureBreak{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Direction: models.DirectionBullish,
				Price:     candles[i].High,
			})
			lastHigh = nil
		}
		if lastLow != nil && candles[i].Low < lastLow.Price {
			breaks = append(breaks, models.StructureBreak{
				Index:     i,
				Timestamp: candles[i].Timestamp,
				Direction: models.DirectionBearish,
				Price:     candles[i].Low,
			})
			lastLow = nil
		}
	}

	return breaks
}

// labelTrend marks an uptrend when the two most recent swing highs and the two
// most recent swing lows are both rising, mirrored for a downtrend. The label
// covers all bars since the last structure event.
func (a *Analyzer) labelTrend(swings []models.SwingPoint) string {
	highs := filterSwings(swings, models.SwingHigh)
	lows := filterSwings(swings, models.SwingLow)

	if len(highs) < 2 || len(lows) < 2 {
		return TrendNeutral
	}

	h1, h2 := highs[len(highs)-2], highs[len(highs)-1]
	l1, l2 := lows[len(lows)-2], lows[len(lows)-1]

	if h2.Price > h1.Price && l2.Price > l1.Price {
		return TrendUp
	}
	if h2.Price < h1.Price && l2.Price < l1.Price {
		return TrendDown
	}
	return TrendNeutral
}

// LatestRange returns the most recent confirmed swing high and low, the range
// premium/discount is measured against. ok is false when either side is missing.
func LatestRange(report *models.StructureReport) (high, low float64, ok bool) {
	for i := len(report.Swings) - 1; i >= 0; i-- {
		s := report.Swings[i]
		if high == 0 && s.Kind == models.SwingHigh {
			high = s.Price
		}
		if low == 0 && s.Kind == models.SwingLow {
			low = s.Price
		}
		if high != 0 && low != 0 {
			break
		}
	}
	return high, low, high != 0 && low != 0 && high > low
}

func filterSwings(swings []models.SwingPoint, kind models.SwingKind) []models.SwingPoint {
	var out []models.SwingPoint
	for _, s := range swings {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
