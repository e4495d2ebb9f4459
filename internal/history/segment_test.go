package history

import (
	"testing"

	"PriceBoard/internal/model"
)

func buildStore(t *testing.T, prices ...float64) *Store {
	t.Helper()
	s := newSeededStore(t, 300, "Modelo", prices[0])
	for i, p := range prices[1:] {
		s.Append("Modelo", p, tick(i+1))
	}
	return s
}

func TestSegments_Partition(t *testing.T) {
	prices := []float64{4.00, 4.50, 4.50, 4.25, 4.10, 4.40}
	s := buildStore(t, prices...)

	up, down := s.Segments("Modelo")
	if len(up)+len(down) != len(prices)-1 {
		t.Fatalf("segments = %d, want %d", len(up)+len(down), len(prices)-1)
	}

	seen := make(map[int]bool)
	for _, seg := range append(append([]Segment{}, up...), down...) {
		if seen[seg.Index] {
			t.Errorf("pair %d appears twice", seg.Index)
		}
		seen[seg.Index] = true
		if seg.From.Price != prices[seg.Index] || seg.To.Price != prices[seg.Index+1] {
			t.Errorf("segment %d = (%.2f, %.2f), want (%.2f, %.2f)",
				seg.Index, seg.From.Price, seg.To.Price, prices[seg.Index], prices[seg.Index+1])
		}
	}
	for _, seg := range down {
		if seg.To.Price >= seg.From.Price {
			t.Errorf("down segment %d is not falling", seg.Index)
		}
	}
}

func TestSegments_TieIsUp(t *testing.T) {
	s := buildStore(t, 4.50, 4.50)
	up, down := s.Segments("Modelo")
	if len(up) != 1 || len(down) != 0 {
		t.Errorf("up=%d down=%d, want 1/0", len(up), len(down))
	}
}

func TestSegments_SinglePoint(t *testing.T) {
	s := buildStore(t, 4.50)
	up, down := s.Segments("Modelo")
	if len(up) != 0 || len(down) != 0 {
		t.Errorf("single point should have no segments")
	}
}

func TestStitch_InsertsBreaks(t *testing.T) {
	// up, up, down, up
	s := buildStore(t, 1, 2, 3, 2, 4)
	up, down := s.Segments("Modelo")

	line := Stitch(up)
	// 1-2-3 contiguous, then break, then 2-4.
	wantPrices := []float64{1, 2, 3, 0, 2, 4}
	wantBreak := []bool{false, false, false, true, false, false}
	if len(line) != len(wantPrices) {
		t.Fatalf("up line len = %d, want %d: %+v", len(line), len(wantPrices), line)
	}
	for i := range line {
		if line[i].Break != wantBreak[i] || line[i].Price != wantPrices[i] {
			t.Errorf("up[%d] = %+v, want price %.0f break %v", i, line[i], wantPrices[i], wantBreak[i])
		}
	}

	downLine := Stitch(down)
	if len(downLine) != 2 || downLine[0].Price != 3 || downLine[1].Price != 2 {
		t.Errorf("down line = %+v", downLine)
	}
	if Stitch(nil) != nil {
		t.Error("Stitch(nil) should be nil")
	}
}

func TestAppend_ReportsSegmentClass(t *testing.T) {
	s := buildStore(t, 1, 2)

	res, _ := s.Append("Modelo", 3, tick(5))
	if res.Segment == nil || !res.Segment.Rising() || !res.Contiguous {
		t.Errorf("rising after rising should be contiguous up: %+v", res)
	}
	res, _ = s.Append("Modelo", 2, tick(6))
	if res.Segment.Rising() || res.Contiguous {
		t.Errorf("first fall should be a new down run: %+v", res)
	}
	res, _ = s.Append("Modelo", 2, tick(7))
	if !res.Segment.Rising() || res.Contiguous {
		t.Errorf("tie after fall should start a new up run: %+v", res)
	}
	if res.Point.Direction != model.Flat {
		t.Errorf("tie direction = %v, want flat", res.Point.Direction)
	}
}
