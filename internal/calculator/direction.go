package calculator

import "PriceBoard/internal/model"

// Compare classifies cur against prev: Up if higher, Down if lower, Flat otherwise.
func Compare(prev, cur float64) model.Direction {
	switch {
	case cur > prev:
		return model.Up
	case cur < prev:
		return model.Down
	default:
		return model.Flat
	}
}

// Rising reports whether a move from prev to cur belongs to the up line.
// Equal prices count as rising.
func Rising(prev, cur float64) bool {
	return cur >= prev
}
