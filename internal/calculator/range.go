package calculator

import "math"

const (
	// FallbackHalfWidth is the half-width of the axis range used when the
	// values do not span a usable interval.
	FallbackHalfWidth = 0.5
	// DefaultReference centers the fallback range when no finite value exists.
	DefaultReference = 5.00
)

// RangeFor returns the lowest and highest finite value. NaN and infinities
// are ignored. If no finite value remains the range is centered on
// DefaultReference; if all finite values are equal it is centered on that
// value. Either way the result is FallbackHalfWidth wide on each side.
func RangeFor(values []float64) (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if math.IsInf(min, 1) {
		return DefaultReference - FallbackHalfWidth, DefaultReference + FallbackHalfWidth
	}
	if min == max {
		return min - FallbackHalfWidth, max + FallbackHalfWidth
	}
	return min, max
}
