package history

import (
	"PriceBoard/internal/calculator"
	"PriceBoard/internal/model"
)

// Segment is one two-point run of a series. Index is the position of From in
// the series at the time the segment was taken.
type Segment struct {
	From  model.PricePoint
	To    model.PricePoint
	Index int
}

// Rising reports whether the segment belongs to the up line.
func (s Segment) Rising() bool {
	return calculator.Rising(s.From.Price, s.To.Price)
}

// Stitch joins segments of one class into a single polyline. Adjacent runs
// share their common point; a break token separates runs that are not
// adjacent in the series.
func Stitch(segs []Segment) []model.LinePoint {
	var out []model.LinePoint
	for i, seg := range segs {
		if i > 0 && segs[i-1].Index+1 == seg.Index {
			out = append(out, linePoint(seg.To))
			continue
		}
		if i > 0 {
			out = append(out, model.LinePoint{Break: true})
		}
		out = append(out, linePoint(seg.From), linePoint(seg.To))
	}
	return out
}

func linePoint(p model.PricePoint) model.LinePoint {
	return model.LinePoint{Time: p.Time, Price: p.Price}
}
