package collector

import (
	"context"

	"PriceBoard/internal/model"
)

// Fetcher defines the interface for reading the price source. Implementations
// report failures as errors; Collector decides how to degrade.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)
	FetchSeries(ctx context.Context, symbol string) ([]model.PricePoint, error)
	FetchLedger(ctx context.Context) ([]model.TransactionRecord, error)
	Name() string
}
