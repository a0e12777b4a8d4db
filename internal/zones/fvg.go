package zones

import (
	"github.com/Alias1177/IndexSignal/models"
)

// FairValueGaps scans consecutive candle triplets for price discontinuities.
// A bullish gap exists when the first candle's high sits strictly below the
// third candle's low; gaps smaller than the configured fraction of the current
// close are discarded, not reported.
func (d *Detector) FairValueGaps(tf models.Timeframe, candles []models.Candle) []models.FairValueGap {
	if len(candles) < 3 {
		d.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Msg("insufficient bars for fair value gap detection")
		return nil
	}

	currentClose := candles[len(candles)-1].Close
	minGap := d.cfg.MinGapFraction * currentClose

	var gaps []models.FairValueGap

	for i := 2; i < len(candles); i++ {
		first := candles[i-2]
		third := candles[i]

		if third.Low > first.High && third.Low-first.High > minGap {
			gaps = append(gaps, models.FairValueGap{
				Timeframe: tf,
				Timestamp: third.Timestamp,
				GapHigh:   third.Low,
				GapLow:    first.High,
				GapType:   models.DirectionBullish,
			})
		}

		if first.Low > third.High && first.Low-third.High > minGap {
			gaps = append(gaps, models.FairValueGap{
				Timeframe: tf,
				Timestamp: third.Timestamp,
				GapHigh:   first.Low,
				GapLow:    third.High,
				GapType:   models.DirectionBearish,
			})
		}
	}

	return gaps
}
