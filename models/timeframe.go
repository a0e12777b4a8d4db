package models

// Timeframe identifies one chart resolution, keyed the way the data feed keys them.
type Timeframe string

const (
	TimeframeMonthly Timeframe = "M"
	TimeframeWeekly  Timeframe = "W"
	TimeframeDaily   Timeframe = "D"
	Timeframe4H      Timeframe = "240"
	Timeframe1H      Timeframe = "60"
	Timeframe15M     Timeframe = "15"
	Timeframe5M      Timeframe = "5"
	Timeframe3M      Timeframe = "3"
)

// rank orders timeframes from highest (0) to lowest.
var rank = map[Timeframe]int{
	TimeframeMonthly: 0,
	TimeframeWeekly:  1,
	TimeframeDaily:   2,
	Timeframe4H:      3,
	Timeframe1H:      4,
	Timeframe15M:     5,
	Timeframe5M:      6,
	Timeframe3M:      7,
}

// HigherTimeframes lists the bias timeframes, highest first.
func HigherTimeframes() []Timeframe {
	return []Timeframe{TimeframeMonthly, TimeframeWeekly, TimeframeDaily, Timeframe4H}
}

// LowerTimeframes lists the entry timeframes, slowest first.
func LowerTimeframes() []Timeframe {
	return []Timeframe{Timeframe1H, Timeframe15M, Timeframe5M, Timeframe3M}
}

// AllTimeframes lists every analyzed timeframe, highest first.
func AllTimeframes() []Timeframe {
	return append(HigherTimeframes(), LowerTimeframes()...)
}

// Higher reports whether tf sits above other on the resolution ladder.
func (tf Timeframe) Higher(other Timeframe) bool {
	return rank[tf] < rank[other]
}

// Known reports whether tf is one of the analyzed timeframes.
func (tf Timeframe) Known() bool {
	_, ok := rank[tf]
	return ok
}

// FastestAvailable returns the lowest timeframe present in the snapshot, or "".
func FastestAvailable(data map[Timeframe][]Candle) Timeframe {
	best := Timeframe("")
	for tf, candles := range data {
		if len(candles) == 0 || !tf.Known() {
			continue
		}
		if best == "" || best.Higher(tf) {
			best = tf
		}
	}
	return best
}
