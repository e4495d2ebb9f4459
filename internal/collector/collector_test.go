package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"PriceBoard/internal/model"
)

func TestCollector_DegradesToEmpty(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: errors.New("connection refused")}, nil)
	ctx := context.Background()

	if snap := c.Snapshot(ctx); !snap.Empty() {
		t.Errorf("snapshot = %v, want empty", snap.Symbols())
	}
	if series := c.Series(ctx, "Modelo"); len(series) != 0 {
		t.Errorf("series len = %d, want 0", len(series))
	}
	if ledger := c.Ledger(ctx); len(ledger) != 0 {
		t.Errorf("ledger len = %d, want 0", len(ledger))
	}
}

func TestCollector_TransportFailure(t *testing.T) {
	// Nothing listens on this port.
	f := NewSourceFetcher("http://127.0.0.1:1", "", "", time.Second)
	c := NewCollector(f, nil)
	if snap := c.Snapshot(context.Background()); !snap.Empty() {
		t.Error("expected empty snapshot on transport failure")
	}
}

func TestCollector_NonSuccessStatus(t *testing.T) {
	f := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewCollector(f, nil)
	if series := c.Series(context.Background(), "Modelo"); series != nil {
		t.Errorf("series = %v, want nil", series)
	}
}

func TestCollector_PassesThrough(t *testing.T) {
	m := &MockFetcher{
		Snapshots: []model.Snapshot{model.NewSnapshot(model.Quote{Symbol: "Modelo", Price: 5.25})},
		Ledger:    []model.TransactionRecord{{Symbol: "Modelo", Quantity: 1, Price: 5.25}},
	}
	c := NewCollector(m, nil)
	if snap := c.Snapshot(context.Background()); snap.Len() != 1 {
		t.Errorf("snapshot len = %d, want 1", snap.Len())
	}
	if ledger := c.Ledger(context.Background()); len(ledger) != 1 {
		t.Errorf("ledger len = %d, want 1", len(ledger))
	}
}

func TestCollector_DropsNonFinitePrices(t *testing.T) {
	m := &MockFetcher{
		Snapshots: []model.Snapshot{model.NewSnapshot(
			model.Quote{Symbol: "Modelo", Price: math.NaN()},
			model.Quote{Symbol: "Corona", Price: 4.75},
			model.Quote{Symbol: "Pacifico", Price: math.Inf(1)},
		)},
		Series: map[string][]model.PricePoint{"Corona": {
			{Price: 4.50},
			{Price: math.Inf(-1)},
			{Price: 4.75},
		}},
		Ledger: []model.TransactionRecord{
			{Symbol: "Corona", Quantity: 1, Price: math.NaN()},
			{Symbol: "Corona", Quantity: 1, Price: 4.75},
		},
	}
	c := NewCollector(m, nil)
	ctx := context.Background()

	snap := c.Snapshot(ctx)
	if syms := snap.Symbols(); len(syms) != 1 || syms[0] != "Corona" {
		t.Errorf("symbols = %v, want [Corona]", syms)
	}
	if series := c.Series(ctx, "Corona"); len(series) != 2 || series[1].Price != 4.75 {
		t.Errorf("series = %+v", series)
	}
	if ledger := c.Ledger(ctx); len(ledger) != 1 || ledger[0].Price != 4.75 {
		t.Errorf("ledger = %+v", ledger)
	}
}
