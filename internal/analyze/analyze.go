// Package analyze wires the full structure-to-decision pipeline: per-timeframe
// detection fans out in parallel, higher timeframes aggregate into a bias, the
// lower timeframes produce a trigger, and the confidence hierarchy scores it.
package analyze

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/internal/bias"
	"github.com/Alias1177/IndexSignal/internal/candlestick"
	"github.com/Alias1177/IndexSignal/internal/confidence"
	"github.com/Alias1177/IndexSignal/internal/entry"
	"github.com/Alias1177/IndexSignal/internal/structure"
	"github.com/Alias1177/IndexSignal/internal/zones"
	"github.com/Alias1177/IndexSignal/models"
)

// Snapshot is one immutable view of the market: candle series per timeframe
// plus the current traded price. The engine never mutates it.
type Snapshot struct {
	Candles map[models.Timeframe][]models.Candle
	Price   float64
}

// External carries the optional confirmation signals from outside collaborators.
type External struct {
	Model   *models.ModelSignal
	Basis   *models.FuturesBasis
	Breadth *models.MarketBreadth
}

// Engine runs the pipeline. It owns the zone registry, which is the only state
// carried across calls; everything else is recomputed per snapshot.
type Engine struct {
	cfg       *config.Config
	analyzer  *structure.Analyzer
	detector  *zones.Detector
	registry  *zones.Registry
	aggregate *bias.Aggregator
	entries   *entry.Detector
	source    models.PatternSource
	logger    zerolog.Logger
}

// New creates an engine. The pattern source is chosen once here, not per call.
func New(cfg *config.Config, source models.PatternSource) *Engine {
	return &Engine{
		cfg:       cfg,
		analyzer:  structure.NewAnalyzer(cfg.SwingStrength),
		detector:  zones.NewDetector(cfg),
		registry:  zones.NewRegistry(),
		aggregate: bias.NewAggregator(cfg),
		entries:   entry.NewDetector(cfg),
		source:    source,
		logger:    log.With().Str("component", "engine").Logger(),
	}
}

// Registry exposes the zone arena so callers can persist or reload zone state.
func (e *Engine) Registry() *zones.Registry { return e.registry }

type timeframeResult struct {
	report   *models.StructureReport
	patterns []models.CandlestickPattern
	blocks   []models.OrderBlock
	gaps     []models.FairValueGap
	levels   []models.LiquidityLevel
}

// Run executes one full analysis pass over the snapshot.
// Only the ingestion contract can fail; data-quality problems degrade per
// timeframe and the result is always a valid signal.
func (e *Engine) Run(snapshot Snapshot, ext External) (*models.SignalResult, error) {
	usable := make([]models.Timeframe, 0, len(snapshot.Candles))
	for _, tf := range models.AllTimeframes() {
		candles, ok := snapshot.Candles[tf]
		if !ok {
			continue
		}
		if err := models.ValidateSeries(tf, candles); err != nil {
			return nil, fmt.Errorf("ingestion: %w", err)
		}
		if !models.SeriesUsable(candles) {
			e.logger.Warn().Str("timeframe", string(tf)).Msg("malformed series, timeframe skipped")
			continue
		}
		usable = append(usable, tf)
	}

	// Per-timeframe detection is independent; fan out and join.
	results := make(map[models.Timeframe]*timeframeResult, len(usable))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, tf := range usable {
		wg.Add(1)
		go func(tf models.Timeframe, candles []models.Candle) {
			defer wg.Done()
			r := &timeframeResult{
				report:   e.analyzer.Analyze(tf, candles),
				patterns: e.source.Detect(tf, candles),
				blocks:   e.detector.OrderBlocks(tf, candles),
				gaps:     e.detector.FairValueGaps(tf, candles),
				levels:   e.detector.LiquidityLevels(tf, candles, snapshot.Price),
			}
			mu.Lock()
			results[tf] = r
			mu.Unlock()
		}(tf, snapshot.Candles[tf])
	}
	wg.Wait()

	// Feed the registry in ladder order, then advance state to the new tick.
	for _, tf := range models.AllTimeframes() {
		r, ok := results[tf]
		if !ok {
			continue
		}
		e.registry.ObserveBlocks(r.blocks)
		e.registry.ObserveGaps(r.gaps)
		e.registry.ObserveLevels(r.levels)
	}
	e.registry.Advance(snapshot.Price, e.cfg.StaleTolerance)

	reports := make(map[models.Timeframe]*models.StructureReport, len(results))
	patterns := make(map[models.Timeframe][]models.CandlestickPattern, len(results))
	active := make(map[models.Timeframe][]zones.TrackedZone, len(results))
	for tf, r := range results {
		reports[tf] = r.report
		patterns[tf] = r.patterns
		active[tf] = e.registry.ActiveZones(tf)
	}

	// Higher timeframes aggregate before the LTF scan consumes the bias.
	htf := e.aggregate.Aggregate(reports, active, snapshot.Price)
	trigger := e.entries.Detect(htf, snapshot.Candles, reports, active, snapshot.Price)

	expected := htf.OverallDirection
	if expected == models.DirectionNeutral && trigger != nil {
		expected = trigger.Direction
	}
	confluence := candlestick.Score(e.cfg, patterns, expected)

	breakdown := confidence.Calculate(&e.cfg.Confidence, htf, trigger, confluence, ext.Model, ext.Basis, ext.Breadth)

	result := resolve(htf, trigger, breakdown)
	result.Candlestick = confluence
	result.Price = snapshot.Price
	result.GeneratedAt = time.Now().UTC()

	e.logger.Info().
		Str("action", result.Action).
		Str("direction", string(result.Direction)).
		Float64("confidence", breakdown.Total).
		Str("level", breakdown.Level).
		Msg("signal generated")

	return result, nil
}
