package patterns

import "trademind/internal/types"

// Shape thresholds, expressed as fractions of the candle's full range.
const (
	dojiBodyRatio    = 0.1
	longShadowRatio  = 0.6
	shortShadowRatio = 0.1
	engulfBodyFactor = 1.1
)

// Classify labels a single candle, optionally against its predecessor.
// Deliberately simple and transparent: doji variants, engulfing patterns,
// and a bullish/bearish/neutral fallback when nothing else matched.
func Classify(latest types.Candle, previous *types.Candle) []string {
	patterns := []string{}

	candleRange := latest.H - latest.L
	if candleRange <= 0 {
		candleRange = 0.0000001
	}
	body := abs(latest.C - latest.O)
	upperShadow := latest.H - max(latest.O, latest.C)
	lowerShadow := min(latest.O, latest.C) - latest.L

	bodyRatio := body / candleRange
	upperRatio := upperShadow / candleRange
	lowerRatio := lowerShadow / candleRange

	if bodyRatio < dojiBodyRatio {
		patterns = append(patterns, "doji")

		if upperRatio >= longShadowRatio && lowerRatio <= shortShadowRatio {
			patterns = append(patterns, "gravestone_doji")
		} else if lowerRatio >= longShadowRatio && upperRatio <= shortShadowRatio {
			patterns = append(patterns, "dragonfly_doji")
		}
	}

	if previous != nil {
		prevBody := abs(previous.C - previous.O)
		if prevBody > 0 && body > prevBody*engulfBodyFactor {
			// Bullish engulfing: previous red, current green, current body
			// fully covers previous body.
			if latest.C > latest.O && previous.C < previous.O &&
				latest.O < previous.C && latest.C > previous.O {
				patterns = append(patterns, "bullish_engulfing")
			}
			// Bearish engulfing: the mirror case.
			if latest.C < latest.O && previous.C > previous.O &&
				latest.O > previous.C && latest.C < previous.O {
				patterns = append(patterns, "bearish_engulfing")
			}
		}
	}

	if len(patterns) == 0 {
		switch {
		case latest.C > latest.O:
			patterns = append(patterns, "bullish")
		case latest.C < latest.O:
			patterns = append(patterns, "bearish")
		default:
			patterns = append(patterns, "neutral")
		}
	}

	return patterns
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
