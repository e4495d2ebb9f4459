// Package cache keeps a bounded local copy of each symbol's recent points,
// used when the price source cannot serve a series.
package cache

import "PriceBoard/internal/model"

// Cache persists per-symbol price points, at most a fixed number per symbol.
type Cache interface {
	// Load returns the cached points for symbol, oldest first.
	Load(symbol string) ([]model.PricePoint, error)
	// Append stores a point, evicting the oldest beyond capacity.
	Append(symbol string, p model.PricePoint) error
	// Reset drops every symbol's points.
	Reset() error
	Close() error
}
