// Package zones identifies order blocks, fair value gaps and liquidity levels,
// and tracks their filled/swept state across repeated analysis calls.
package zones

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/IndexSignal/config"
)

// Detector runs the stateless per-call zone scans for one candle series.
type Detector struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewDetector creates a zone detector using the tuned thresholds in cfg.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: log.With().Str("component", "zones").Logger(),
	}
}
