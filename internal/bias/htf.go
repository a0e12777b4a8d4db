// Package bias fuses higher-timeframe structure into one directional read.
package bias

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/internal/structure"
	"github.com/Alias1177/IndexSignal/internal/zones"
	"github.com/Alias1177/IndexSignal/models"
)

// directionThreshold is the weighted-vote margin below which the read stays neutral.
const directionThreshold = 0.25

// Aggregator combines per-timeframe structure reports into an HTFBias.
type Aggregator struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewAggregator creates an HTF bias aggregator.
func NewAggregator(cfg *config.Config) *Aggregator {
	return &Aggregator{
		cfg:    cfg,
		logger: log.With().Str("component", "htf_bias").Logger(),
	}
}

// Aggregate computes the bias from the higher-timeframe reports and active zones.
// Missing timeframes simply carry no vote.
func (a *Aggregator) Aggregate(
	reports map[models.Timeframe]*models.StructureReport,
	active map[models.Timeframe][]zones.TrackedZone,
	price float64,
) models.HTFBias {
	out := models.HTFBias{
		OverallDirection: models.DirectionNeutral,
		StructureQuality: models.QualityLow,
		PremiumDiscount:  models.RegionEquilibrium,
	}

	var vote, totalWeight float64
	for _, tf := range models.HigherTimeframes() {
		report, ok := reports[tf]
		if !ok {
			continue
		}
		w := a.cfg.Weight(tf)
		totalWeight += w
		switch report.Trend {
		case structure.TrendUp:
			vote += w
		case structure.TrendDown:
			vote -= w
		}
	}

	if totalWeight == 0 {
		a.logger.Warn().Msg("no higher timeframe reports available")
		return out
	}

	net := vote / totalWeight
	if net > directionThreshold {
		out.OverallDirection = models.DirectionBullish
	} else if net < -directionThreshold {
		out.OverallDirection = models.DirectionBearish
	}

	agreement := net
	if agreement < 0 {
		agreement = -agreement
	}
	breakAlign, quality := a.gradeBreaks(reports, out.OverallDirection)
	out.StructureQuality = quality

	strength := (0.7*agreement + 0.3*breakAlign) * 100
	if strength > 100 {
		strength = 100
	}
	out.BiasStrength = strength

	out.PremiumDiscount = a.priceRegion(reports, price)
	out.KeyZones = a.collectKeyZones(active, price)
	return out
}

// gradeBreaks scores the clarity of the recent break sequence: the fraction of
// recent breaks agreeing with the dominant direction drives structure quality.
func (a *Aggregator) gradeBreaks(reports map[models.Timeframe]*models.StructureReport, dir models.Direction) (float64, models.StructureQuality) {
	var bull, bear int
	for _, tf := range models.HigherTimeframes() {
		report, ok := reports[tf]
		if !ok {
			continue
		}
		breaks := report.Breaks
		if len(breaks) > 3 {
			breaks = breaks[len(breaks)-3:]
		}
		for _, b := range breaks {
			if b.Direction == models.DirectionBullish {
				bull++
			} else {
				bear++
			}
		}
	}

	total := bull + bear
	if total == 0 {
		return 0, models.QualityLow
	}

	dominant := bull
	if bear > dominant {
		dominant = bear
	}
	// Breaks running against the final direction count for nothing.
	if dir == models.DirectionBullish {
		dominant = bull
	} else if dir == models.DirectionBearish {
		dominant = bear
	}

	frac := float64(dominant) / float64(total)
	switch {
	case frac >= 0.8 && total >= 2:
		return frac, models.QualityHigh
	case frac >= 0.5:
		return frac, models.QualityMedium
	default:
		return frac, models.QualityLow
	}
}

// priceRegion places price inside the latest confirmed swing range, taken from
// the highest-resolution higher timeframe that produced one. Never an
// unbounded lookback: only the most recent confirmed swing pair counts.
func (a *Aggregator) priceRegion(reports map[models.Timeframe]*models.StructureReport, price float64) models.PriceRegion {
	order := []models.Timeframe{models.Timeframe4H, models.TimeframeDaily, models.TimeframeWeekly, models.TimeframeMonthly}
	for _, tf := range order {
		report, ok := reports[tf]
		if !ok {
			continue
		}
		high, low, ok := structure.LatestRange(report)
		if !ok {
			continue
		}
		pos := (price - low) / (high - low)
		band := a.cfg.EquilibriumBand
		switch {
		case pos >= 0.5-band && pos <= 0.5+band:
			return models.RegionEquilibrium
		case pos < 0.5:
			return models.RegionDiscount
		default:
			return models.RegionPremium
		}
	}
	return models.RegionEquilibrium
}

// collectKeyZones keeps the active order blocks and gaps near current price for
// later entry matching.
func (a *Aggregator) collectKeyZones(active map[models.Timeframe][]zones.TrackedZone, price float64) []models.PriceZone {
	prox := a.cfg.KeyZoneProximity
	var out []models.PriceZone
	for _, tf := range models.HigherTimeframes() {
		for _, z := range active[tf] {
			if z.Low > price*(1+prox) || z.High < price*(1-prox) {
				continue
			}
			out = append(out, models.PriceZone{
				Timeframe: tf,
				Kind:      z.Kind,
				High:      z.High,
				Low:       z.Low,
				Direction: z.Direction,
			})
		}
	}
	return out
}
