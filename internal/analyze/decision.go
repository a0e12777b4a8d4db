package analyze

import (
	"fmt"

	"github.com/Alias1177/IndexSignal/models"
)

// resolve maps the assembled evidence to a final action. Direction follows the
// HTF bias unless it is neutral and a momentum override fired, in which case
// the override's direction wins.
func resolve(htf models.HTFBias, trigger *models.LTFEntry, breakdown models.ConfidenceBreakdown) *models.SignalResult {
	direction := htf.OverallDirection
	if direction == models.DirectionNeutral && trigger != nil && trigger.EntryType == models.EntryMomentum {
		direction = trigger.Direction
	}

	var action string
	switch direction {
	case models.DirectionBullish:
		action = models.ActionBuyCall
	case models.DirectionBearish:
		action = models.ActionBuyPut
	default:
		action = models.ActionWait
	}

	return &models.SignalResult{
		Action:     action,
		Direction:  direction,
		Confidence: breakdown,
		HTFBias:    htf,
		LTFEntry:   trigger,
		Reasons:    reasons(action, htf, trigger, breakdown),
	}
}

// reasons builds the human-readable explanation. A WAIT always says why.
func reasons(action string, htf models.HTFBias, trigger *models.LTFEntry, breakdown models.ConfidenceBreakdown) []string {
	var out []string

	if htf.OverallDirection != models.DirectionNeutral {
		out = append(out, fmt.Sprintf("HTF bias %s (strength %.0f, structure %s, %s zone)",
			htf.OverallDirection, htf.BiasStrength, htf.StructureQuality, htf.PremiumDiscount))
	}

	if trigger != nil {
		out = append(out, fmt.Sprintf("%s on %s: zone %.2f-%.2f, trigger %.2f",
			trigger.EntryType, trigger.Timeframe, trigger.ZoneLow, trigger.ZoneHigh, trigger.TriggerPrice))
		if trigger.MomentumConfirmed {
			out = append(out, "momentum confirmed")
		}
	}

	if action == models.ActionWait {
		if htf.OverallDirection == models.DirectionNeutral {
			out = append(out, "higher timeframe bias neutral, no momentum override")
		}
		if trigger == nil {
			out = append(out, "no LTF trigger found")
		}
		if htf.StructureQuality == models.QualityLow {
			out = append(out, "structure quality LOW")
		}
	}

	out = append(out, fmt.Sprintf("confidence %s (%.1f/100)", breakdown.Level, breakdown.Total))
	return out
}
