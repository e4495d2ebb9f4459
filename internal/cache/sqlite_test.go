package cache

import (
	"path/filepath"
	"testing"
	"time"

	"PriceBoard/internal/model"
)

func openTestCache(t *testing.T, capacity int) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), capacity, nil)
	if err != nil {
		t.Fatalf("NewSQLiteCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_AppendEvictsOldest(t *testing.T) {
	c := openTestCache(t, 3)
	base := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		p := model.PricePoint{Time: base.Add(time.Duration(i) * time.Minute), Price: 4 + float64(i), Direction: model.Up}
		if err := c.Append("Modelo", p); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	if err := c.Append("Guinness", model.PricePoint{Time: base, Price: 6.10}); err != nil {
		t.Fatalf("Append Guinness: %v", err)
	}

	points, err := c.Load("Modelo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len = %d, want 3", len(points))
	}
	for i, want := range []float64{6, 7, 8} {
		if points[i].Price != want {
			t.Errorf("points[%d].Price = %.2f, want %.2f", i, points[i].Price, want)
		}
	}
	if !points[0].Time.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("points[0].Time = %v", points[0].Time)
	}
	if points[0].Direction != model.Up {
		t.Errorf("direction not round-tripped: %v", points[0].Direction)
	}

	other, err := c.Load("Guinness")
	if err != nil || len(other) != 1 {
		t.Errorf("Guinness points = %d (err %v), want 1", len(other), err)
	}
}

func TestSQLiteCache_Reset(t *testing.T) {
	c := openTestCache(t, 10)
	if err := c.Append("Modelo", model.PricePoint{Time: time.Now(), Price: 5.25}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	points, err := c.Load("Modelo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len = %d after reset, want 0", len(points))
	}
}

func TestNoopCache(t *testing.T) {
	var c Cache = NewNoopCache()
	if err := c.Append("Modelo", model.PricePoint{}); err != nil {
		t.Errorf("Append: %v", err)
	}
	points, err := c.Load("Modelo")
	if err != nil || points != nil {
		t.Errorf("Load = %v, %v", points, err)
	}
}
