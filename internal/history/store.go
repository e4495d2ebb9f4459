// Package history owns one bounded price series per symbol and derives the
// up/down segments the chart draws.
package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/calculator"
	"PriceBoard/internal/logger"
	"PriceBoard/internal/model"
)

// SeriesSource returns a symbol's stored series, empty when unavailable.
type SeriesSource interface {
	Series(ctx context.Context, symbol string) []model.PricePoint
}

// Origin tells where an initialized series came from.
type Origin int

const (
	OriginNone Origin = iota
	OriginSource
	OriginCache
	OriginSeed
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginCache:
		return "cache"
	case OriginSeed:
		return "seed"
	default:
		return "none"
	}
}

// Appended describes the effect of one Append.
type Appended struct {
	Point model.PricePoint
	// Segment is the run ending at Point; nil for the first point of a series.
	Segment *Segment
	// Contiguous is true when Segment continues the previous run of the same class.
	Contiguous bool
	// Evicted counts points dropped from the front.
	Evicted int
}

// Store holds the series. It is not safe for concurrent use; the engine
// serializes access by never overlapping ticks.
type Store struct {
	capacity int
	source   SeriesSource
	cache    cache.Cache
	series   map[string][]model.PricePoint
	active   string
	log      *zap.Logger
}

// NewStore creates a store bounded to capacity points per symbol. c may be nil.
func NewStore(capacity int, source SeriesSource, c cache.Cache, log *zap.Logger) *Store {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &Store{
		capacity: capacity,
		source:   source,
		cache:    c,
		series:   make(map[string][]model.PricePoint),
		log:      logger.OrNop(log),
	}
}

// Initialize replaces symbol's series and makes it the active one. The
// source is tried first, then the local cache; if both are empty and a seed
// price is given, the series starts with a single Flat point at ts.
func (s *Store) Initialize(ctx context.Context, symbol string, seed float64, hasSeed bool, ts time.Time) Origin {
	origin := OriginNone
	points := s.source.Series(ctx, symbol)
	if len(points) > 0 {
		origin = OriginSource
	} else {
		cached, err := s.cache.Load(symbol)
		if err != nil {
			s.log.Warn("load cached series failed", zap.String("symbol", symbol), zap.Error(err))
		}
		if len(cached) > 0 {
			points, origin = cached, OriginCache
		}
	}

	points = normalize(points, s.capacity)
	if len(points) == 0 && hasSeed {
		p := model.PricePoint{Time: ts, Price: seed, Direction: model.Flat}
		points = []model.PricePoint{p}
		origin = OriginSeed
		if err := s.cache.Append(symbol, p); err != nil {
			s.log.Warn("cache seed point failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	s.series[symbol] = points
	s.active = symbol
	s.log.Debug("series initialized",
		zap.String("symbol", symbol),
		zap.Stringer("origin", origin),
		zap.Int("points", len(points)),
	)
	return origin
}

// Append adds a point to the active series. A symbol that is not active is
// rejected and ok is false.
func (s *Store) Append(symbol string, price float64, ts time.Time) (res Appended, ok bool) {
	if symbol == "" || symbol != s.active {
		s.log.Debug("append rejected for inactive series", zap.String("symbol", symbol), zap.String("active", s.active))
		return Appended{}, false
	}

	points := s.series[symbol]
	p := model.PricePoint{Time: ts, Price: price, Direction: model.Flat}
	if n := len(points); n > 0 {
		last := points[n-1]
		p.Direction = calculator.Compare(last.Price, price)
		seg := Segment{From: last, To: p, Index: n - 1}
		res.Segment = &seg
		if n > 1 {
			prev := points[n-2]
			res.Contiguous = calculator.Rising(prev.Price, last.Price) == seg.Rising()
		}
	}
	points = append(points, p)
	for len(points) > s.capacity {
		points = points[1:]
		res.Evicted++
	}
	s.series[symbol] = points
	res.Point = p

	if err := s.cache.Append(symbol, p); err != nil {
		s.log.Warn("cache point failed", zap.String("symbol", symbol), zap.Error(err))
	}
	return res, true
}

// Segments partitions every consecutive pair of symbol's series into up and
// down runs. Equal prices go to up.
func (s *Store) Segments(symbol string) (up, down []Segment) {
	points := s.series[symbol]
	for i := 1; i < len(points); i++ {
		seg := Segment{From: points[i-1], To: points[i], Index: i - 1}
		if seg.Rising() {
			up = append(up, seg)
		} else {
			down = append(down, seg)
		}
	}
	return up, down
}

// Series returns a copy of symbol's points, oldest first.
func (s *Store) Series(symbol string) []model.PricePoint {
	points := s.series[symbol]
	out := make([]model.PricePoint, len(points))
	copy(out, points)
	return out
}

// Prices returns symbol's prices, oldest first.
func (s *Store) Prices(symbol string) []float64 {
	points := s.series[symbol]
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

// Len returns the number of points held for symbol.
func (s *Store) Len(symbol string) int {
	return len(s.series[symbol])
}

// Active returns the symbol Append accepts, or "" when none is.
func (s *Store) Active() string {
	return s.active
}

// Release drops the active series and all in-memory history, so the next
// session starts from a full Initialize.
func (s *Store) Release() {
	s.active = ""
	s.series = make(map[string][]model.PricePoint)
}

// normalize keeps the newest capacity points and recomputes directions so
// the first point is Flat and each other point is relative to its
// predecessor.
func normalize(points []model.PricePoint, capacity int) []model.PricePoint {
	if len(points) > capacity {
		points = points[len(points)-capacity:]
	}
	out := make([]model.PricePoint, len(points))
	for i, p := range points {
		out[i] = p
		if i == 0 {
			out[i].Direction = model.Flat
		} else {
			out[i].Direction = calculator.Compare(points[i-1].Price, p.Price)
		}
	}
	return out
}
