package candlestick

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/models"
)

// StatisticalSource is the fallback detector: body-to-range and shadow ratios
// only, reproducing the hammer, shooting star, doji and engulfing families.
type StatisticalSource struct {
	logger zerolog.Logger
}

// NewStatisticalSource creates the fallback pattern source.
func NewStatisticalSource() *StatisticalSource {
	return &StatisticalSource{logger: log.With().Str("component", "candlestick_fallback").Logger()}
}

func (s *StatisticalSource) Name() string { return "statistical" }

// Detect evaluates the most recent bar with pure ratio arithmetic.
func (s *StatisticalSource) Detect(tf models.Timeframe, candles []models.Candle) []models.CandlestickPattern {
	if len(candles) < 2 {
		s.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Msg("insufficient bars for statistical pattern detection")
		return nil
	}

	prev := candles[len(candles)-2]
	cur := candles[len(candles)-1]

	rng := cur.High - cur.Low
	if rng <= 0 {
		return nil
	}

	body := cur.Body()
	bodyFrac := body / rng
	lowerFrac := (math.Min(cur.Open, cur.Close) - cur.Low) / rng
	upperFrac := (cur.High - math.Max(cur.Open, cur.Close)) / rng

	emit := func(name string, dir models.Direction, strength models.PatternStrength) models.CandlestickPattern {
		return models.CandlestickPattern{
			Name:      name,
			Timeframe: tf,
			Direction: dir,
			Strength:  strength,
			Timestamp: cur.Timestamp,
			Price:     cur.Close,
		}
	}

	var patterns []models.CandlestickPattern

	if bodyFrac < 0.1 {
		patterns = append(patterns, emit(PatternDoji, models.DirectionNeutral, models.PatternWeak))
	} else {
		if lowerFrac > 0.6 && bodyFrac < 0.3 && upperFrac < 0.1 {
			patterns = append(patterns, emit(PatternHammer, models.DirectionBullish, models.PatternMedium))
		}
		if upperFrac > 0.6 && bodyFrac < 0.3 && lowerFrac < 0.1 {
			patterns = append(patterns, emit(PatternShootingStar, models.DirectionBearish, models.PatternMedium))
		}
	}

	if body > prev.Body()*1.2 {
		if cur.Bullish() && prev.Bearish() {
			patterns = append(patterns, emit(PatternBullishEngulfing, models.DirectionBullish, models.PatternMedium))
		}
		if cur.Bearish() && prev.Bullish() {
			patterns = append(patterns, emit(PatternBearishEngulfing, models.DirectionBearish, models.PatternMedium))
		}
	}

	return patterns
}
