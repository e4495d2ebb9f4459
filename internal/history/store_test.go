package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/model"
)

// stubSource serves fixed series and counts calls.
type stubSource struct {
	series map[string][]model.PricePoint
	calls  int
}

func (s *stubSource) Series(_ context.Context, symbol string) []model.PricePoint {
	s.calls++
	return s.series[symbol]
}

var t0 = time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)

func tick(i int) time.Time { return t0.Add(time.Duration(i) * 10 * time.Second) }

func newSeededStore(t *testing.T, capacity int, symbol string, seed float64) *Store {
	t.Helper()
	s := NewStore(capacity, &stubSource{}, nil, nil)
	if origin := s.Initialize(context.Background(), symbol, seed, true, t0); origin != OriginSeed {
		t.Fatalf("origin = %v, want seed", origin)
	}
	return s
}

func TestStore_BoundedHistory(t *testing.T) {
	const capacity = 5
	s := newSeededStore(t, capacity, "Modelo", 0)

	for i := 1; i <= 12; i++ {
		if _, ok := s.Append("Modelo", float64(i), tick(i)); !ok {
			t.Fatalf("append %d rejected", i)
		}
	}
	points := s.Series("Modelo")
	if len(points) != capacity {
		t.Fatalf("len = %d, want %d", len(points), capacity)
	}
	for i, p := range points {
		want := float64(8 + i)
		if p.Price != want {
			t.Errorf("points[%d].Price = %v, want %v", i, p.Price, want)
		}
		if i > 0 && !points[i-1].Time.Before(p.Time) {
			t.Errorf("points not chronological at %d", i)
		}
	}
}

func TestStore_AppendReportsEviction(t *testing.T) {
	s := newSeededStore(t, 2, "Modelo", 4.00)
	if res, _ := s.Append("Modelo", 4.10, tick(1)); res.Evicted != 0 {
		t.Errorf("Evicted = %d before capacity, want 0", res.Evicted)
	}
	if res, _ := s.Append("Modelo", 4.20, tick(2)); res.Evicted != 1 {
		t.Errorf("Evicted = %d at capacity, want 1", res.Evicted)
	}
}

func TestStore_DirectionCorrectness(t *testing.T) {
	s := newSeededStore(t, 300, "Modelo", 4.00)
	prices := []float64{4.50, 4.50, 4.25, 4.30}
	want := []model.Direction{model.Up, model.Flat, model.Down, model.Up}
	for i, p := range prices {
		res, ok := s.Append("Modelo", p, tick(i+1))
		if !ok {
			t.Fatalf("append %d rejected", i)
		}
		if res.Point.Direction != want[i] {
			t.Errorf("append %.2f: direction = %v, want %v", p, res.Point.Direction, want[i])
		}
	}
	if first := s.Series("Modelo")[0]; first.Direction != model.Flat {
		t.Errorf("first point direction = %v, want flat", first.Direction)
	}
}

func TestStore_AppendRejectsInactiveSymbol(t *testing.T) {
	s := newSeededStore(t, 10, "Modelo", 5.25)
	if _, ok := s.Append("Guinness", 6.10, tick(1)); ok {
		t.Fatal("append to inactive symbol should be rejected")
	}
	if s.Len("Guinness") != 0 || s.Len("Modelo") != 1 {
		t.Errorf("series mutated: Guinness=%d Modelo=%d", s.Len("Guinness"), s.Len("Modelo"))
	}
}

func TestStore_InitializeFromSourceNormalizes(t *testing.T) {
	src := &stubSource{series: map[string][]model.PricePoint{
		"Modelo": {
			{Time: tick(0), Price: 5.00, Direction: model.Down},
			{Time: tick(1), Price: 5.10},
			{Time: tick(2), Price: 5.05},
			{Time: tick(3), Price: 5.05},
		},
	}}
	s := NewStore(3, src, nil, nil)

	if origin := s.Initialize(context.Background(), "Modelo", 9.99, true, t0); origin != OriginSource {
		t.Fatalf("origin = %v, want source", origin)
	}
	points := s.Series("Modelo")
	if len(points) != 3 {
		t.Fatalf("len = %d, want 3", len(points))
	}
	want := []model.Direction{model.Flat, model.Down, model.Flat}
	for i, d := range want {
		if points[i].Direction != d {
			t.Errorf("points[%d].Direction = %v, want %v", i, points[i].Direction, d)
		}
	}
	if s.Active() != "Modelo" {
		t.Errorf("Active = %q", s.Active())
	}
}

func TestStore_InitializeFallsBackToCache(t *testing.T) {
	c, err := cache.NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), 10, nil)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	defer c.Close()
	c.Append("Modelo", model.PricePoint{Time: tick(0), Price: 5.00})
	c.Append("Modelo", model.PricePoint{Time: tick(1), Price: 5.20, Direction: model.Up})

	s := NewStore(10, &stubSource{}, c, nil)
	if origin := s.Initialize(context.Background(), "Modelo", 5.30, true, t0); origin != OriginCache {
		t.Fatalf("origin = %v, want cache", origin)
	}
	if s.Len("Modelo") != 2 {
		t.Errorf("len = %d, want 2", s.Len("Modelo"))
	}

	s.Append("Modelo", 5.30, tick(2))
	cached, _ := c.Load("Modelo")
	if len(cached) != 3 {
		t.Errorf("cache len = %d after append, want 3", len(cached))
	}
}

func TestStore_InitializeWithoutSeed(t *testing.T) {
	s := NewStore(10, &stubSource{}, nil, nil)
	if origin := s.Initialize(context.Background(), "Modelo", 0, false, t0); origin != OriginNone {
		t.Errorf("origin = %v, want none", origin)
	}
	if s.Len("Modelo") != 0 {
		t.Errorf("len = %d, want 0", s.Len("Modelo"))
	}
}

func TestStore_InitializeReplacesStaleSeries(t *testing.T) {
	s := newSeededStore(t, 10, "Modelo", 5.00)
	s.Append("Modelo", 5.10, tick(1))
	s.Append("Modelo", 5.20, tick(2))

	s.Initialize(context.Background(), "Modelo", 4.80, true, t0)
	points := s.Series("Modelo")
	if len(points) != 1 || points[0].Price != 4.80 || points[0].Direction != model.Flat {
		t.Errorf("series after reinit = %+v", points)
	}
}

func TestStore_Release(t *testing.T) {
	s := newSeededStore(t, 10, "Modelo", 5.00)
	s.Release()
	if s.Active() != "" {
		t.Errorf("Active = %q after release", s.Active())
	}
	if _, ok := s.Append("Modelo", 5.10, tick(1)); ok {
		t.Error("append after release should be rejected")
	}
	if s.Len("Modelo") != 0 {
		t.Error("release should drop in-memory history")
	}
}

func TestStore_SeedUsesGivenTime(t *testing.T) {
	s := NewStore(10, &stubSource{}, nil, nil)
	s.Initialize(context.Background(), "Modelo", 4.80, true, tick(3))
	s.Append("Modelo", 4.90, tick(4))

	points := s.Series("Modelo")
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}
	if !points[0].Time.Equal(tick(3)) || !points[1].Time.Equal(tick(4)) {
		t.Errorf("times = %v, %v", points[0].Time, points[1].Time)
	}
}
