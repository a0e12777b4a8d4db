package zones

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Alias1177/IndexSignal/models"
)

// Zone kinds tracked by the registry.
const (
	KindOrderBlock   = "order_block"
	KindFairValueGap = "fair_value_gap"
)

// TrackedZone is a detected zone with identity that survives across calls.
// The detectors are stateless per call; the registry re-identifies each zone by
// its stable key and carries the mutable filled/swept/touch state forward.
type TrackedZone struct {
	Key       string
	Kind      string
	Timeframe models.Timeframe
	Direction models.Direction
	High      float64
	Low       float64
	Strength  float64
	FirstSeen time.Time
	Filled    bool
	Stale     bool
	Touches   int

	wasInside bool
}

// Contains reports whether price sits inside the zone.
func (z *TrackedZone) Contains(price float64) bool {
	return price >= z.Low && price <= z.High
}

// Registry is the caller-maintained arena of known zones and liquidity levels.
type Registry struct {
	mu     sync.Mutex
	zones  map[string]*TrackedZone
	levels map[string]*models.LiquidityLevel
}

// NewRegistry creates an empty zone arena.
func NewRegistry() *Registry {
	return &Registry{
		zones:  make(map[string]*TrackedZone),
		levels: make(map[string]*models.LiquidityLevel),
	}
}

func zoneKey(tf models.Timeframe, kind string, dir models.Direction, low, high float64, firstSeen time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%.6f|%.6f|%d", tf, kind, dir, low, high, firstSeen.Unix())
}

// ObserveGaps registers newly detected gaps. Known gaps keep their state.
func (r *Registry) ObserveGaps(gaps []models.FairValueGap) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range gaps {
		key := zoneKey(g.Timeframe, KindFairValueGap, g.GapType, g.GapLow, g.GapHigh, g.Timestamp)
		if _, ok := r.zones[key]; ok {
			continue
		}
		r.zones[key] = &TrackedZone{
			Key:       key,
			Kind:      KindFairValueGap,
			Timeframe: g.Timeframe,
			Direction: g.GapType,
			High:      g.GapHigh,
			Low:       g.GapLow,
			FirstSeen: g.Timestamp,
		}
	}
}

// ObserveBlocks registers newly detected order blocks. Known blocks keep their state.
func (r *Registry) ObserveBlocks(blocks []models.OrderBlock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range blocks {
		key := zoneKey(b.Timeframe, KindOrderBlock, b.BlockType, b.Low, b.High, b.StartTime)
		if _, ok := r.zones[key]; ok {
			continue
		}
		r.zones[key] = &TrackedZone{
			Key:       key,
			Kind:      KindOrderBlock,
			Timeframe: b.Timeframe,
			Direction: b.BlockType,
			High:      b.High,
			Low:       b.Low,
			Strength:  b.Strength,
			FirstSeen: b.StartTime,
		}
	}
}

// ObserveLevels registers liquidity levels, keeping an already-swept flag sticky.
func (r *Registry) ObserveLevels(levels []models.LiquidityLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range levels {
		key := fmt.Sprintf("%s|level|%s|%.6f", l.Timeframe, l.LevelType, l.Price)
		if known, ok := r.levels[key]; ok {
			if l.Swept {
				known.Swept = true
			}
			continue
		}
		copied := l
		r.levels[key] = &copied
	}
}

// Advance re-evaluates every tracked zone against the new price tick. Fill and
// sweep flags are sticky, and a zone re-entry from outside counts as a touch.
func (r *Registry) Advance(price float64, staleTolerance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, z := range r.zones {
		if !z.Filled && z.Kind == KindFairValueGap {
			// A gap is filled once price fully retraces through it.
			if z.Direction == models.DirectionBullish && price <= z.Low {
				z.Filled = true
			}
			if z.Direction == models.DirectionBearish && price >= z.High {
				z.Filled = true
			}
		}

		if !z.Stale && z.Kind == KindOrderBlock {
			if z.Direction == models.DirectionBullish && price < z.Low*(1-staleTolerance) {
				z.Stale = true
			}
			if z.Direction == models.DirectionBearish && price > z.High*(1+staleTolerance) {
				z.Stale = true
			}
		}

		inside := z.Contains(price)
		if inside && !z.wasInside {
			z.Touches++
		}
		z.wasInside = inside
	}
}

// ActiveZones returns the live (unfilled, non-stale) zones for a timeframe,
// ordered oldest first for deterministic downstream scans.
func (r *Registry) ActiveZones(tf models.Timeframe) []TrackedZone {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []TrackedZone
	for _, z := range r.zones {
		if z.Timeframe != tf || z.Filled || z.Stale {
			continue
		}
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].Key < out[j].Key
		}
		return out[i].FirstSeen.Before(out[j].FirstSeen)
	})
	return out
}

// UnfilledGapCount counts gaps still open on a timeframe.
func (r *Registry) UnfilledGapCount(tf models.Timeframe) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, z := range r.zones {
		if z.Timeframe == tf && z.Kind == KindFairValueGap && !z.Filled {
			n++
		}
	}
	return n
}

// Export dumps every tracked zone, filled or not, for persistence.
func (r *Registry) Export() []TrackedZone {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TrackedZone, 0, len(r.zones))
	for _, z := range r.zones {
		out = append(out, *z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Restore reloads persisted zone state. Existing entries are overwritten, so a
// reload after restart continues exactly where the last run stopped.
func (r *Registry) Restore(saved []TrackedZone) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, z := range saved {
		copied := z
		r.zones[z.Key] = &copied
	}
}

// Levels returns the tracked liquidity levels for a timeframe, oldest first.
func (r *Registry) Levels(tf models.Timeframe) []models.LiquidityLevel {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.LiquidityLevel
	for _, l := range r.levels {
		if l.Timeframe == tf {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Price < out[j].Price
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
