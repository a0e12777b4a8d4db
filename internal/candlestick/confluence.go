package candlestick

import (
	"sort"

	"github.com/Alias1177/IndexSignal/config"
	"github.com/Alias1177/IndexSignal/models"
)

// SelectSource picks the pattern source once at startup. Anything other than
// "statistical" gets the full catalogue.
func SelectSource(name string) models.PatternSource {
	if name == "statistical" {
		return NewStatisticalSource()
	}
	return NewCatalogueSource()
}

// Score fuses patterns from every analyzed timeframe into one confluence
// percentage against the expected direction. Matching patterns add their full
// weighted contribution, neutral patterns add nothing, and opposite-direction
// patterns subtract half of theirs.
func Score(cfg *config.Config, patterns map[models.Timeframe][]models.CandlestickPattern, expected models.Direction) models.ConfluenceResult {
	var all []models.CandlestickPattern
	for _, tf := range models.AllTimeframes() {
		all = append(all, patterns[tf]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timeframe != all[j].Timeframe {
			return all[i].Timeframe.Higher(all[j].Timeframe)
		}
		return all[i].Name < all[j].Name
	})

	result := models.ConfluenceResult{Patterns: all}
	if expected == models.DirectionNeutral || len(all) == 0 {
		return result
	}

	var actual, maxPossible float64
	for _, p := range all {
		contribution := cfg.Weight(p.Timeframe) * p.Strength.Multiplier() * 100
		maxPossible += contribution

		switch p.Direction {
		case expected:
			actual += contribution
		case models.DirectionNeutral:
			// indecision contributes zero
		default:
			actual -= contribution / 2
		}
	}

	if maxPossible <= 0 {
		return result
	}

	score := actual / maxPossible * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	result.Score = score
	result.ActualScore = actual
	result.MaxPossible = maxPossible
	result.HasData = true
	return result
}
