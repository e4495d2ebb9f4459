package cache

import "PriceBoard/internal/model"

// NoopCache is a no-op implementation used when SQLite is not configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Load(_ string) ([]model.PricePoint, error) { return nil, nil }
func (n *NoopCache) Append(_ string, _ model.PricePoint) error { return nil }
func (n *NoopCache) Reset() error                              { return nil }
func (n *NoopCache) Close() error                              { return nil }
