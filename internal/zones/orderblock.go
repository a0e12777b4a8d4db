package zones

import (
	"github.com/Alias1177/IndexSignal/models"
)

// OrderBlocks marks each opposing candle that precedes a disproportionate move.
// A down candle followed by an up candle whose body is more than twice as large
// becomes a bullish block, mirrored for bearish blocks.
func (d *Detector) OrderBlocks(tf models.Timeframe, candles []models.Candle) []models.OrderBlock {
	if len(candles) < 3 {
		d.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Msg("insufficient bars for order block detection")
		return nil
	}

	var blocks []models.OrderBlock

	for i := 1; i < len(candles)-1; i++ {
		cur := candles[i]
		next := candles[i+1]

		if cur.Body() == 0 {
			continue
		}

		if cur.Bearish() && next.Bullish() && next.Body() > 2*cur.Body() {
			blocks = append(blocks, models.OrderBlock{
				Timeframe: tf,
				StartTime: cur.Timestamp,
				EndTime:   next.Timestamp,
				High:      cur.High,
				Low:       cur.Low,
				BlockType: models.DirectionBullish,
				Strength:  d.blockStrength(candles, i+1),
			})
		}

		if cur.Bullish() && next.Bearish() && next.Body() > 2*cur.Body() {
			blocks = append(blocks, models.OrderBlock{
				Timeframe: tf,
				StartTime: cur.Timestamp,
				EndTime:   next.Timestamp,
				High:      cur.High,
				Low:       cur.Low,
				BlockType: models.DirectionBearish,
				Strength:  d.blockStrength(candles, i+1),
			})
		}
	}

	return blocks
}

// blockStrength starts at 0.7 and rises to 0.9 when the displacement candle's
// volume exceeds 1.5x the trailing average.
func (d *Detector) blockStrength(candles []models.Candle, moveIdx int) float64 {
	const base, elevated = 0.7, 0.9

	lookback := d.cfg.VolumeLookback
	start := moveIdx - lookback
	if start < 0 {
		start = 0
	}
	if moveIdx <= start {
		return base
	}

	var total int64
	for i := start; i < moveIdx; i++ {
		total += candles[i].Volume
	}
	avg := float64(total) / float64(moveIdx-start)
	if avg > 0 && float64(candles[moveIdx].Volume) > 1.5*avg {
		return elevated
	}
	return base
}
