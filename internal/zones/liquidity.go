package zones

import (
	"github.com/Alias1177/IndexSignal/models"
)

// LiquidityLevels finds equal highs/lows inside the trailing lookback window.
// A price touched at least twice within tolerance becomes a resting level;
// sweeping is a plain price-vs-level comparison with a small tolerance.
func (d *Detector) LiquidityLevels(tf models.Timeframe, candles []models.Candle, currentPrice float64) []models.LiquidityLevel {
	lookback := d.cfg.LiquidityLookback
	if len(candles) < lookback {
		d.logger.Warn().
			Str("timeframe", string(tf)).
			Int("bars", len(candles)).
			Int("lookback", lookback).
			Msg("insufficient bars for liquidity level detection")
		return nil
	}

	window := candles[len(candles)-lookback:]

	var levels []models.LiquidityLevel

	maxHigh, maxIdx := window[0].High, 0
	minLow, minIdx := window[0].Low, 0
	for i, c := range window {
		if c.High > maxHigh {
			maxHigh, maxIdx = c.High, i
		}
		if c.Low < minLow {
			minLow, minIdx = c.Low, i
		}
	}

	tol := d.cfg.LiquidityTolerance
	sweep := d.cfg.SweepTolerance

	highTouches := 0
	for _, c := range window {
		if maxHigh-c.High <= tol*maxHigh {
			highTouches++
		}
	}
	if highTouches >= 2 {
		levels = append(levels, models.LiquidityLevel{
			Timeframe: tf,
			Timestamp: window[maxIdx].Timestamp,
			Price:     maxHigh,
			LevelType: models.BuySideLiquidity,
			Swept:     currentPrice > maxHigh*(1+sweep),
		})
	}

	lowTouches := 0
	for _, c := range window {
		if c.Low-minLow <= tol*minLow {
			lowTouches++
		}
	}
	if lowTouches >= 2 {
		levels = append(levels, models.LiquidityLevel{
			Timeframe: tf,
			Timestamp: window[minIdx].Timestamp,
			Price:     minLow,
			LevelType: models.SellSideLiquidity,
			Swept:     currentPrice < minLow*(1-sweep),
		})
	}

	return levels
}
