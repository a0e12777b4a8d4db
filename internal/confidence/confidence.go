// Package confidence turns the assembled evidence into the final weighted score.
package confidence

import (
	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/models"
)

// Confidence level labels.
const (
	LevelVeryHigh = "VERY HIGH"
	LevelHigh     = "HIGH"
	LevelModerate = "MODERATE"
	LevelLow      = "LOW"
	LevelVeryLow  = "VERY LOW"
)

// basisFullScaleAt is the absolute basis percentage treated as maximum conviction.
const basisFullScaleAt = 0.5

// Calculate applies the fixed-weight hierarchy. Every sub-score is clamped to
// its cap before the sum, so the total can never exceed 100.
func Calculate(
	cfg *config.ConfidenceConfig,
	htf models.HTFBias,
	entry *models.LTFEntry,
	confluence models.ConfluenceResult,
	model *models.ModelSignal,
	basis *models.FuturesBasis,
	breadth *models.MarketBreadth,
) models.ConfidenceBreakdown {
	b := models.ConfidenceBreakdown{
		HTFStructure:    clamp(htfScore(cfg, htf), cfg.HTFCap),
		LTFConfirmation: clamp(ltfScore(cfg, entry), cfg.LTFCap),
		ModelAlignment:  clamp(modelScore(cfg, htf, model), cfg.ModelCap),
		Candlestick:     clamp(candleScore(cfg, confluence), cfg.CandlestickCap),
		FuturesBasis:    clamp(basisScore(cfg, htf, basis), cfg.BasisCap),
		Breadth:         clamp(breadthScore(cfg, htf, breadth), cfg.BreadthCap),
	}

	b.Total = b.HTFStructure + b.LTFConfirmation + b.ModelAlignment + b.Candlestick + b.FuturesBasis + b.Breadth
	b.Level = level(cfg, b.Total)
	return b
}

func htfScore(cfg *config.ConfidenceConfig, htf models.HTFBias) float64 {
	// The strength portion is whatever the cap leaves after the best quality and
	// region awards, so recalibrating the cap rescales it.
	strengthPts := cfg.HTFCap - cfg.QualityHighPts - cfg.RegionAlignedPts
	score := htf.BiasStrength * strengthPts / 100

	switch htf.StructureQuality {
	case models.QualityHigh:
		score += cfg.QualityHighPts
	case models.QualityMedium:
		score += cfg.QualityMediumPts
	default:
		score += cfg.QualityLowPts
	}

	// Discount favors calls, premium favors puts.
	aligned := (htf.OverallDirection == models.DirectionBullish && htf.PremiumDiscount == models.RegionDiscount) ||
		(htf.OverallDirection == models.DirectionBearish && htf.PremiumDiscount == models.RegionPremium)
	switch {
	case aligned:
		score += cfg.RegionAlignedPts
	case htf.PremiumDiscount == models.RegionEquilibrium:
		score += cfg.RegionEquilibriumPts
	default:
		score += cfg.RegionMisalignedPts
	}

	return score
}

func ltfScore(cfg *config.ConfidenceConfig, entry *models.LTFEntry) float64 {
	if entry == nil {
		return 0
	}

	var tier float64
	switch entry.EntryType {
	case models.EntrySecondTest:
		tier = cfg.SecondTestPts
	case models.EntryFirstTest:
		tier = cfg.FirstTestPts
	case models.EntryStructureBreak:
		tier = cfg.StructureBreakPts
	default:
		tier = cfg.OtherEntryPts
	}

	alignPts := cfg.LTFCap - cfg.SecondTestPts - cfg.MomentumConfirmedPts
	score := tier + entry.AlignmentScore*alignPts/100
	if entry.MomentumConfirmed {
		score += cfg.MomentumConfirmedPts
	} else {
		score += cfg.MomentumUnconfirmedPts
	}
	return score
}

func modelScore(cfg *config.ConfidenceConfig, htf models.HTFBias, model *models.ModelSignal) float64 {
	if model == nil || model.Err {
		return cfg.ModelNeutralPts
	}
	switch {
	case model.Direction == models.DirectionNeutral:
		return cfg.ModelFlatPts
	case model.Direction == htf.OverallDirection:
		return model.Confidence * cfg.ModelCap
	default:
		return cfg.ModelConflictPts
	}
}

func candleScore(cfg *config.ConfidenceConfig, confluence models.ConfluenceResult) float64 {
	if !confluence.HasData {
		return cfg.CandleNeutralPts
	}
	return confluence.Score * cfg.CandlestickCap / 100
}

func basisScore(cfg *config.ConfidenceConfig, htf models.HTFBias, basis *models.FuturesBasis) float64 {
	if basis == nil {
		return cfg.BasisNeutralPts
	}
	switch basis.Sentiment {
	case models.DirectionNeutral:
		return cfg.BasisNeutralPts
	case htf.OverallDirection:
		magnitude := basis.BasisPct
		if magnitude < 0 {
			magnitude = -magnitude
		}
		scale := magnitude / basisFullScaleAt
		if scale > 1 {
			scale = 1
		}
		return cfg.BasisNeutralPts + cfg.BasisNeutralPts*scale
	default:
		return cfg.BasisConflictPts
	}
}

func breadthScore(cfg *config.ConfidenceConfig, htf models.HTFBias, breadth *models.MarketBreadth) float64 {
	if breadth == nil {
		return cfg.BreadthNeutralPts
	}
	switch breadth.ExpectedDirection {
	case models.DirectionNeutral:
		return cfg.BreadthNeutralPts
	case htf.OverallDirection:
		return breadth.Confidence * cfg.BreadthCap
	default:
		return cfg.BreadthConflictPts
	}
}

func level(cfg *config.ConfidenceConfig, total float64) string {
	switch {
	case total >= cfg.VeryHighBand:
		return LevelVeryHigh
	case total >= cfg.HighBand:
		return LevelHigh
	case total >= cfg.ModerateBand:
		return LevelModerate
	case total >= cfg.LowBand:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func clamp(v, cap float64) float64 {
	if v < 0 {
		return 0
	}
	if v > cap {
		return cap
	}
	return v
}
