// Package entry scans lower timeframes for a concrete trigger that agrees with
// the higher-timeframe bias, falling back to a momentum override when the
// higher timeframes are inconclusive.
package entry

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/internal/zones"
	"github.com/Alias1177/IndexSignal/models"
)

// Alignment scores per trigger class. Structure-backed triggers fully aligned
// with bias rank above momentum-only ones.
const (
	alignSecondTest     = 100.0
	alignFirstTest      = 85.0
	alignStructureBreak = 70.0
	alignMomentum       = 50.0
)

// recentBreakWindow bounds how old a structure break may be to still trigger.
const recentBreakWindow = 5

// Detector finds the best available lower-timeframe trigger.
type Detector struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewDetector creates an LTF entry detector.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: log.With().Str("component", "ltf_entry").Logger(),
	}
}

// Detect returns the highest-priority trigger, or nil when nothing qualifies.
// Priority: zone retest aligned with bias (second test over first), then an
// aligned structure break, then the momentum override for a neutral bias.
func (d *Detector) Detect(
	htf models.HTFBias,
	data map[models.Timeframe][]models.Candle,
	reports map[models.Timeframe]*models.StructureReport,
	active map[models.Timeframe][]zones.TrackedZone,
	price float64,
) *models.LTFEntry {
	if htf.OverallDirection != models.DirectionNeutral {
		if e := d.zoneRetest(htf, data, active, price); e != nil {
			return e
		}
		if e := d.structureBreak(htf, data, reports); e != nil {
			return e
		}
		return nil
	}

	return d.momentumOverride(data)
}

// zoneRetest looks for price sitting inside an active gap or order block whose
// direction matches the bias. A second retest of the same zone outranks a first.
// Higher-timeframe zones participate too: the key zones the bias collects are
// exactly what a lower-timeframe retest trades against, so a bias-aligned Daily
// or 4H block under price triggers even without an LTF twin. Lower timeframes
// are scanned first and win ties.
func (d *Detector) zoneRetest(
	htf models.HTFBias,
	data map[models.Timeframe][]models.Candle,
	active map[models.Timeframe][]zones.TrackedZone,
	price float64,
) *models.LTFEntry {
	var best *models.LTFEntry

	scan := append(models.LowerTimeframes(), models.HigherTimeframes()...)
	for _, tf := range scan {
		for _, z := range active[tf] {
			if z.Direction != htf.OverallDirection || !z.Contains(price) || z.Touches == 0 {
				continue
			}

			entry := &models.LTFEntry{
				Timeframe:    tf,
				Direction:    htf.OverallDirection,
				ZoneHigh:     z.High,
				ZoneLow:      z.Low,
				TriggerPrice: price,
			}
			if z.Touches >= 2 {
				entry.EntryType = models.EntrySecondTest
				entry.AlignmentScore = alignSecondTest
				entry.Confidence = 0.9
			} else {
				entry.EntryType = models.EntryFirstTest
				entry.AlignmentScore = alignFirstTest
				entry.Confidence = 0.75
			}
			entry.MomentumConfirmed = d.confirmMomentum(data[tf], entry.Direction)

			if best == nil || entry.AlignmentScore > best.AlignmentScore {
				best = entry
			}
		}
	}

	return best
}

// structureBreak takes a fresh change of character on a lower timeframe that
// agrees with the bias.
func (d *Detector) structureBreak(
	htf models.HTFBias,
	data map[models.Timeframe][]models.Candle,
	reports map[models.Timeframe]*models.StructureReport,
) *models.LTFEntry {
	for _, tf := range models.LowerTimeframes() {
		report, ok := reports[tf]
		if !ok || len(report.Breaks) == 0 {
			continue
		}
		candles := data[tf]
		if len(candles) == 0 {
			continue
		}

		last := report.Breaks[len(report.Breaks)-1]
		if last.Direction != htf.OverallDirection {
			continue
		}
		if last.Index < len(candles)-recentBreakWindow {
			continue
		}

		bar := candles[last.Index]
		entry := &models.LTFEntry{
			EntryType:      models.EntryStructureBreak,
			Timeframe:      tf,
			Direction:      last.Direction,
			ZoneHigh:       bar.High,
			ZoneLow:        bar.Low,
			TriggerPrice:   last.Price,
			AlignmentScore: alignStructureBreak,
			Confidence:     0.6,
		}
		entry.MomentumConfirmed = d.confirmMomentum(candles, entry.Direction)
		return entry
	}

	return nil
}

// momentumOverride synthesizes an entry from raw price velocity on the fastest
// lower timeframe. It exists so strong directional moves are not missed while
// the higher timeframes are still ambiguous.
func (d *Detector) momentumOverride(data map[models.Timeframe][]models.Candle) *models.LTFEntry {
	lower := make(map[models.Timeframe][]models.Candle, len(data))
	for _, tf := range models.LowerTimeframes() {
		if candles, ok := data[tf]; ok {
			lower[tf] = candles
		}
	}

	tf := models.FastestAvailable(lower)
	if tf == "" {
		return nil
	}
	candles := lower[tf]

	lookback := d.cfg.Momentum.Lookback
	if len(candles) < lookback+1 {
		d.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Int("required", lookback+1).
			Msg("insufficient bars for momentum override")
		return nil
	}

	base := candles[len(candles)-1-lookback].Close
	last := candles[len(candles)-1].Close
	if base == 0 {
		return nil
	}
	changePct := (last - base) / base * 100

	dir := models.DirectionBullish
	if changePct < 0 {
		dir = models.DirectionBearish
	}

	magnitude := changePct
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < d.cfg.Momentum.MinChangePct {
		return nil
	}
	if d.consistency(candles, lookback, dir) < d.cfg.Momentum.MinConsistency {
		return nil
	}

	lowest, highest := candles[len(candles)-1-lookback].Low, candles[len(candles)-1-lookback].High
	for i := len(candles) - lookback; i < len(candles); i++ {
		if candles[i].Low < lowest {
			lowest = candles[i].Low
		}
		if candles[i].High > highest {
			highest = candles[i].High
		}
	}

	entry := &models.LTFEntry{
		EntryType:      models.EntryMomentum,
		Timeframe:      tf,
		Direction:      dir,
		ZoneHigh:       highest,
		ZoneLow:        lowest,
		TriggerPrice:   last,
		AlignmentScore: alignMomentum,
		Confidence:     0.5,
	}
	entry.MomentumConfirmed = d.confirmMomentum(candles, dir)
	return entry
}

// consistency is the fraction of bar-to-bar moves over the lookback that agree
// with the candidate direction.
func (d *Detector) consistency(candles []models.Candle, lookback int, dir models.Direction) float64 {
	agree := 0
	for i := len(candles) - lookback; i < len(candles); i++ {
		delta := candles[i].Close - candles[i-1].Close
		if dir == models.DirectionBullish && delta > 0 {
			agree++
		}
		if dir == models.DirectionBearish && delta < 0 {
			agree++
		}
	}
	return float64(agree) / float64(lookback)
}

// confirmMomentum is the secondary check: the short three-bar drift must agree
// with the trigger direction.
func (d *Detector) confirmMomentum(candles []models.Candle, dir models.Direction) bool {
	if len(candles) < 4 {
		return false
	}
	drift := candles[len(candles)-1].Close - candles[len(candles)-4].Close
	if dir == models.DirectionBullish {
		return drift > 0
	}
	if dir == models.DirectionBearish {
		return drift < 0
	}
	return false
}
