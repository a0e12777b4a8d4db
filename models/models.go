package models

import (
	"fmt"
	"time"
)

// Direction is a directional read shared by every layer of the pipeline.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Opposite returns the mirrored direction. Neutral has no mirror.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionBullish:
		return DirectionBearish
	case DirectionBearish:
		return DirectionBullish
	default:
		return DirectionNeutral
	}
}

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// Body returns the absolute body size of the candle.
func (c Candle) Body() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish reports whether the candle closed below its open.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// ValidateSeries checks the ingestion contract: timestamps strictly increasing.
// Violations are feed errors and must fail before the analysis core runs.
func ValidateSeries(tf Timeframe, candles []Candle) error {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
			return fmt.Errorf("timeframe %s: non-increasing timestamp at bar %d (%s -> %s)",
				tf, i, candles[i-1].Timestamp.Format(time.RFC3339), candles[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// SeriesUsable reports whether every bar carries a coherent OHLC set.
// A malformed series is skipped for its timeframe only, other timeframes proceed.
func SeriesUsable(candles []Candle) bool {
	for _, c := range candles {
		if c.High == 0 || c.Low == 0 {
			return false
		}
		if c.High < c.Low || c.Open > c.High || c.Open < c.Low || c.Close > c.High || c.Close < c.Low {
			return false
		}
	}
	return true
}

// SwingKind distinguishes swing highs from swing lows.
type SwingKind string

const (
	SwingHigh SwingKind = "high"
	SwingLow  SwingKind = "low"
)

// SwingPoint is a local extreme confirmed by N bars on each side.
type SwingPoint struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Kind      SwingKind `json:"kind"`
}

// StructureBreak marks a bar whose extreme exceeds the prior opposite-type swing.
type StructureBreak struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
	Price     float64   `json:"price"`
}

// StructureReport is the Structure Analyzer output for one timeframe.
type StructureReport struct {
	Timeframe Timeframe        `json:"timeframe"`
	Swings    []SwingPoint     `json:"swings"`
	Breaks    []StructureBreak `json:"breaks"`
	Trend     string           `json:"trend"` // uptrend, downtrend, neutral
}

// OrderBlock is the last opposing candle before a disproportionate directional move.
type OrderBlock struct {
	Timeframe Timeframe `json:"timeframe"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	BlockType Direction `json:"block_type"`
	Strength  float64   `json:"strength"` // 0-1
}

// FairValueGap is a three-candle price discontinuity.
type FairValueGap struct {
	Timeframe Timeframe `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	GapHigh   float64   `json:"gap_high"`
	GapLow    float64   `json:"gap_low"`
	GapType   Direction `json:"gap_type"`
	Filled    bool      `json:"filled"`
}

// LevelType labels which side of the book a liquidity level sits on.
type LevelType string

const (
	BuySideLiquidity  LevelType = "buy-side"
	SellSideLiquidity LevelType = "sell-side"
)

// LiquidityLevel is a price touched repeatedly within tolerance.
type LiquidityLevel struct {
	Timeframe Timeframe `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	LevelType LevelType `json:"level_type"`
	Swept     bool      `json:"swept"`
}

// PatternStrength is the strength tier of a candlestick pattern.
type PatternStrength string

const (
	PatternWeak   PatternStrength = "weak"
	PatternMedium PatternStrength = "medium"
	PatternStrong PatternStrength = "strong"
)

// Multiplier maps the tier to its scoring multiplier.
func (s PatternStrength) Multiplier() float64 {
	switch s {
	case PatternStrong:
		return 1.0
	case PatternMedium:
		return 0.75
	default:
		return 0.5
	}
}

// CandlestickPattern is a single detected pattern on the most recent bar.
type CandlestickPattern struct {
	Name      string          `json:"pattern_name"`
	Timeframe Timeframe       `json:"timeframe"`
	Direction Direction       `json:"direction"`
	Strength  PatternStrength `json:"strength"`
	Timestamp time.Time       `json:"timestamp"`
	Price     float64         `json:"price"`
}

// StructureQuality grades the clarity of the higher-timeframe break sequence.
type StructureQuality string

const (
	QualityHigh   StructureQuality = "HIGH"
	QualityMedium StructureQuality = "MEDIUM"
	QualityLow    StructureQuality = "LOW"
)

// PriceRegion is the position of price within the latest confirmed swing range.
type PriceRegion string

const (
	RegionPremium     PriceRegion = "premium"
	RegionEquilibrium PriceRegion = "equilibrium"
	RegionDiscount    PriceRegion = "discount"
)

// PriceZone is a tradable zone collected into the HTF bias for entry matching.
type PriceZone struct {
	Timeframe Timeframe `json:"timeframe"`
	Kind      string    `json:"kind"` // order_block, fair_value_gap
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Direction Direction `json:"direction"`
}

// Contains reports whether price sits inside the zone.
func (z PriceZone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// HTFBias is the aggregated higher-timeframe directional read.
type HTFBias struct {
	OverallDirection Direction        `json:"overall_direction"`
	BiasStrength     float64          `json:"bias_strength"` // 0-100
	StructureQuality StructureQuality `json:"structure_quality"`
	PremiumDiscount  PriceRegion      `json:"premium_discount"`
	KeyZones         []PriceZone      `json:"key_zones"`
}

// Entry trigger types, ordered by priority.
const (
	EntrySecondTest     = "ZONE_SECOND_TEST"
	EntryFirstTest      = "ZONE_FIRST_TEST"
	EntryStructureBreak = "STRUCTURE_BREAK"
	EntryMomentum       = "MOMENTUM_OVERRIDE"
)

// LTFEntry is a concrete lower-timeframe trigger. Absence is a valid outcome.
type LTFEntry struct {
	EntryType         string    `json:"entry_type"`
	Timeframe         Timeframe `json:"timeframe"`
	Direction         Direction `json:"direction"`
	ZoneHigh          float64   `json:"zone_high"`
	ZoneLow           float64   `json:"zone_low"`
	TriggerPrice      float64   `json:"trigger_price"`
	MomentumConfirmed bool      `json:"momentum_confirmed"`
	AlignmentScore    float64   `json:"alignment_score"` // 0-100
	Confidence        float64   `json:"confidence"`      // 0-1
}

// ConfidenceBreakdown is the final weighted score, sub-scores capped before summing.
type ConfidenceBreakdown struct {
	HTFStructure    float64 `json:"htf_structure"`    // cap 40
	LTFConfirmation float64 `json:"ltf_confirmation"` // cap 25
	ModelAlignment  float64 `json:"model_alignment"`  // cap 15
	Candlestick     float64 `json:"candlestick"`      // cap 10
	FuturesBasis    float64 `json:"futures_basis"`    // cap 5
	Breadth         float64 `json:"breadth"`          // cap 5
	Total           float64 `json:"total"`            // 0-100
	Level           string  `json:"confidence_level"` // VERY HIGH .. VERY LOW
}

// ConfluenceResult is the multi-timeframe candlestick confluence score.
type ConfluenceResult struct {
	Score       float64              `json:"score"` // 0-100
	ActualScore float64              `json:"actual_score"`
	MaxPossible float64              `json:"max_possible_score"`
	Patterns    []CandlestickPattern `json:"patterns,omitempty"`
	HasData     bool                 `json:"has_data"`
}

// ModelSignal is the optional external ML direction forecast.
type ModelSignal struct {
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"` // 0-1
	Err        bool      `json:"error"`
}

// FuturesBasis is the optional futures basis confirmation signal.
type FuturesBasis struct {
	BasisPct  float64   `json:"basis_pct"`
	Sentiment Direction `json:"sentiment"`
}

// MarketBreadth is the optional constituent breadth confirmation signal.
type MarketBreadth struct {
	ExpectedDirection Direction `json:"expected_direction"`
	Confidence        float64   `json:"confidence"` // 0-1
}

// Trade actions.
const (
	ActionBuyCall = "BUY CALL"
	ActionBuyPut  = "BUY PUT"
	ActionWait    = "WAIT"
)

// SignalResult is the structured output of one full pipeline run.
type SignalResult struct {
	Action      string              `json:"action"`
	Direction   Direction           `json:"direction"`
	Confidence  ConfidenceBreakdown `json:"confidence"`
	HTFBias     HTFBias             `json:"htf_bias"`
	LTFEntry    *LTFEntry           `json:"ltf_entry"`
	Candlestick ConfluenceResult    `json:"candlestick_confluence"`
	Reasons     []string            `json:"reasons"`
	Price       float64             `json:"price"`
	GeneratedAt time.Time           `json:"generated_at"`
}
