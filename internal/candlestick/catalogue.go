// Package candlestick detects single-bar reversal/continuation/indecision
// patterns and scores their agreement across timeframes.
package candlestick

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/models"
)

// Pattern names shared by both sources.
const (
	PatternHammer             = "HAMMER"
	PatternInvertedHammer     = "INVERTED_HAMMER"
	PatternShootingStar       = "SHOOTING_STAR"
	PatternMorningStar        = "MORNING_STAR"
	PatternEveningStar        = "EVENING_STAR"
	PatternBullishEngulfing   = "BULLISH_ENGULFING"
	PatternBearishEngulfing   = "BEARISH_ENGULFING"
	PatternThreeWhiteSoldiers = "THREE_WHITE_SOLDIERS"
	PatternThreeBlackCrows    = "THREE_BLACK_CROWS"
	PatternBullishMarubozu    = "BULLISH_MARUBOZU"
	PatternBearishMarubozu    = "BEARISH_MARUBOZU"
	PatternDoji               = "DOJI"
	PatternDragonflyDoji      = "DRAGONFLY_DOJI"
	PatternGravestoneDoji     = "GRAVESTONE_DOJI"
)

// CatalogueSource is the primary detector covering the full pattern catalogue.
type CatalogueSource struct {
	logger zerolog.Logger
}

// NewCatalogueSource creates the primary pattern source.
func NewCatalogueSource() *CatalogueSource {
	return &CatalogueSource{logger: log.With().Str("component", "candlestick").Logger()}
}

func (s *CatalogueSource) Name() string { return "catalogue" }

// Detect evaluates the most recent bar against the full catalogue.
func (s *CatalogueSource) Detect(tf models.Timeframe, candles []models.Candle) []models.CandlestickPattern {
	if len(candles) < 5 {
		s.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Msg("insufficient bars for pattern catalogue")
		return nil
	}

	c3 := candles[len(candles)-3]
	c4 := candles[len(candles)-2]
	c5 := candles[len(candles)-1]

	var avgBody float64
	for i := len(candles) - 5; i < len(candles); i++ {
		avgBody += candles[i].Body()
	}
	avgBody /= 5

	body := c5.Body()
	rng := c5.High - c5.Low
	upperWick := c5.High - math.Max(c5.Open, c5.Close)
	lowerWick := math.Min(c5.Open, c5.Close) - c5.Low

	emit := func(name string, dir models.Direction, strength models.PatternStrength) models.CandlestickPattern {
		return models.CandlestickPattern{
			Name:      name,
			Timeframe: tf,
			Direction: dir,
			Strength:  strength,
			Timestamp: c5.Timestamp,
			Price:     c5.Close,
		}
	}

	var patterns []models.CandlestickPattern

	// Indecision family first: a doji body disqualifies the wick patterns below.
	if rng > 0 && body < rng*0.1 {
		switch {
		case lowerWick > rng*0.6 && upperWick < rng*0.1:
			patterns = append(patterns, emit(PatternDragonflyDoji, models.DirectionNeutral, models.PatternWeak))
		case upperWick > rng*0.6 && lowerWick < rng*0.1:
			patterns = append(patterns, emit(PatternGravestoneDoji, models.DirectionNeutral, models.PatternWeak))
		default:
			patterns = append(patterns, emit(PatternDoji, models.DirectionNeutral, models.PatternWeak))
		}
		return patterns
	}

	// Single-bar reversals.
	if body > 0 && lowerWick > body*2 && upperWick < body*0.5 {
		strength := models.PatternMedium
		if lowerWick > body*3 {
			strength = models.PatternStrong
		}
		patterns = append(patterns, emit(PatternHammer, models.DirectionBullish, strength))
	}
	if body > 0 && upperWick > body*2 && lowerWick < body*0.5 {
		strength := models.PatternMedium
		if upperWick > body*3 {
			strength = models.PatternStrong
		}
		if c5.Bullish() {
			patterns = append(patterns, emit(PatternInvertedHammer, models.DirectionBullish, strength))
		} else {
			patterns = append(patterns, emit(PatternShootingStar, models.DirectionBearish, strength))
		}
	}

	// Engulfing.
	if c5.Bullish() && c4.Bearish() && c5.Open < c4.Close && c5.Close > c4.Open && body > c4.Body()*1.2 {
		strength := models.PatternMedium
		if body > c4.Body()*1.5 {
			strength = models.PatternStrong
		}
		patterns = append(patterns, emit(PatternBullishEngulfing, models.DirectionBullish, strength))
	}
	if c5.Bearish() && c4.Bullish() && c5.Open > c4.Close && c5.Close < c4.Open && body > c4.Body()*1.2 {
		strength := models.PatternMedium
		if body > c4.Body()*1.5 {
			strength = models.PatternStrong
		}
		patterns = append(patterns, emit(PatternBearishEngulfing, models.DirectionBearish, strength))
	}

	// Three-bar stars.
	if c3.Bearish() && c3.Body() > avgBody &&
		c4.Body() < avgBody*0.3 &&
		c5.Bullish() && body > avgBody &&
		c5.Close > c3.Open-(c3.Open-c3.Close)/2 {
		patterns = append(patterns, emit(PatternMorningStar, models.DirectionBullish, models.PatternStrong))
	}
	if c3.Bullish() && c3.Body() > avgBody &&
		c4.Body() < avgBody*0.3 &&
		c5.Bearish() && body > avgBody &&
		c5.Close < c3.Open+(c3.Close-c3.Open)/2 {
		patterns = append(patterns, emit(PatternEveningStar, models.DirectionBearish, models.PatternStrong))
	}

	// Continuation.
	if c3.Bullish() && c4.Bullish() && c5.Bullish() &&
		c4.Close > c3.Close && c5.Close > c4.Close {
		patterns = append(patterns, emit(PatternThreeWhiteSoldiers, models.DirectionBullish, models.PatternStrong))
	}
	if c3.Bearish() && c4.Bearish() && c5.Bearish() &&
		c4.Close < c3.Close && c5.Close < c4.Close {
		patterns = append(patterns, emit(PatternThreeBlackCrows, models.DirectionBearish, models.PatternStrong))
	}
	if rng > 0 && body > rng*0.9 && body > avgBody*1.2 {
		if c5.Bullish() {
			patterns = append(patterns, emit(PatternBullishMarubozu, models.DirectionBullish, models.PatternMedium))
		} else {
			patterns = append(patterns, emit(PatternBearishMarubozu, models.DirectionBearish, models.PatternMedium))
		}
	}

	return patterns
}
