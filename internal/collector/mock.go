package collector

import (
	"context"
	"sync"

	"PriceBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Each FetchSnapshot call consumes the next entry of Snapshots; the last
// entry repeats. Err, when set, fails every call.
type MockFetcher struct {
	mu        sync.Mutex
	Snapshots []model.Snapshot
	Series    map[string][]model.PricePoint
	Ledger    []model.TransactionRecord
	Err       error

	SnapshotCalls int
	SeriesCalls   map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSnapshot(_ context.Context) (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotCalls++
	if m.Err != nil {
		return model.Snapshot{}, m.Err
	}
	if len(m.Snapshots) == 0 {
		return model.Snapshot{}, nil
	}
	snap := m.Snapshots[0]
	if len(m.Snapshots) > 1 {
		m.Snapshots = m.Snapshots[1:]
	}
	return snap, nil
}

func (m *MockFetcher) FetchSeries(_ context.Context, symbol string) ([]model.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeriesCalls == nil {
		m.SeriesCalls = make(map[string]int)
	}
	m.SeriesCalls[symbol]++
	if m.Err != nil {
		return nil, m.Err
	}
	points := m.Series[symbol]
	out := make([]model.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

func (m *MockFetcher) FetchLedger(_ context.Context) ([]model.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Ledger, nil
}

// SeriesCallCount returns how many times FetchSeries was called for symbol.
func (m *MockFetcher) SeriesCallCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SeriesCalls[symbol]
}
