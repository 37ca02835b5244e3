package fare

import "math"

// MaxFare caps every prediction.
const MaxFare = 1000.0

// Clamp bounds a raw model output to [0, MaxFare]. Negative outputs are
// reflected rather than rejected.
//
// TODO: negative outputs near -MaxFare become large positive fares; replace the
// reflection once product agrees on a rejection rule.
func Clamp(v float64) float64 {
	if v < 0 {
		v = -v
	}
	if v > MaxFare {
		v = MaxFare
	}
	return v
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
