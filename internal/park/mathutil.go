package park

import (
	"math"

	"golang.org/x/exp/constraints"
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp rounds .5 toward positive infinity, matching the money rounding
// the economy has always used.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
