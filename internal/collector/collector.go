package collector

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"PriceBoard/internal/logger"
	"PriceBoard/internal/model"
)

// Collector wraps a Fetcher and turns every failure into an empty result.
// There are no retries here; the next tick is the retry.
type Collector struct {
	Fetcher Fetcher
	log     *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, log: logger.OrNop(log).With(zap.String("source", fetcher.Name()))}
}

// Snapshot returns the current quotes, or an empty snapshot on failure. An
// empty snapshot means "no data this tick".
func (c *Collector) Snapshot(ctx context.Context) model.Snapshot {
	start := time.Now()
	snap, err := c.Fetcher.FetchSnapshot(ctx)
	if err != nil {
		c.log.Warn("fetch snapshot failed", zap.Error(err))
		return model.Snapshot{}
	}
	c.log.Debug("snapshot fetched", zap.Int("symbols", snap.Len()), zap.Duration("took", time.Since(start)))
	return c.finiteQuotes(snap)
}

// Series returns the stored series for symbol, or nil on failure.
func (c *Collector) Series(ctx context.Context, symbol string) []model.PricePoint {
	points, err := c.Fetcher.FetchSeries(ctx, symbol)
	if err != nil {
		c.log.Warn("fetch series failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	out := points[:0:0]
	for _, p := range points {
		if !finite(p.Price) {
			c.log.Warn("dropped non-finite series point", zap.String("symbol", symbol), zap.Time("time", p.Time))
			continue
		}
		out = append(out, p)
	}
	return out
}

// Ledger returns recent transactions newest first, or nil on failure.
func (c *Collector) Ledger(ctx context.Context) []model.TransactionRecord {
	records, err := c.Fetcher.FetchLedger(ctx)
	if err != nil {
		c.log.Warn("fetch ledger failed", zap.Error(err))
		return nil
	}
	out := records[:0:0]
	for _, r := range records {
		if !finite(r.Price) {
			c.log.Warn("dropped non-finite ledger record", zap.String("symbol", r.Symbol))
			continue
		}
		out = append(out, r)
	}
	return out
}

// finiteQuotes drops NaN and infinite prices, keeping source order.
func (c *Collector) finiteQuotes(snap model.Snapshot) model.Snapshot {
	var out model.Snapshot
	for _, q := range snap.Quotes() {
		if !finite(q.Price) {
			c.log.Warn("dropped non-finite quote", zap.String("symbol", q.Symbol))
			continue
		}
		out.Set(q.Symbol, q.Price)
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
