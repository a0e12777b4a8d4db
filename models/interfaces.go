package models

import "context"

// CandleClient fetches candle series per timeframe from the market data provider.
type CandleClient interface {
	GetCandles(ctx context.Context, tf Timeframe, count int) ([]Candle, error)
	GetQuote(ctx context.Context) (float64, error)
}

// PatternSource detects candlestick patterns on the most recent bar of a series.
// Implementations are selected once at startup, not branched per call.
type PatternSource interface {
	Name() string
	Detect(tf Timeframe, candles []Candle) []CandlestickPattern
}
