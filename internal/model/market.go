package model

import (
	"time"

	"github.com/pkg/errors"
)

// Direction is the relation of a price to the one before it.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Arrow returns the ticker glyph for the direction.
func (d Direction) Arrow() string {
	switch d {
	case Up:
		return "▲"
	case Down:
		return "▼"
	default:
		return "–"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	case "flat", "":
		*d = Flat
	default:
		return errors.Errorf("unknown direction %q", b)
	}
	return nil
}

// Quote is one symbol's price at a poll.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Snapshot maps symbol to price. Symbols keep the order in which the source
// listed them; that order is the rotation order.
type Snapshot struct {
	symbols []string
	prices  map[string]float64
}

// NewSnapshot builds a snapshot from quotes. A repeated symbol keeps its
// first position and takes the last price.
func NewSnapshot(quotes ...Quote) Snapshot {
	var s Snapshot
	for _, q := range quotes {
		s.Set(q.Symbol, q.Price)
	}
	return s
}

// Set records a price, appending the symbol to the order if it is new.
func (s *Snapshot) Set(symbol string, price float64) {
	if s.prices == nil {
		s.prices = make(map[string]float64)
	}
	if _, ok := s.prices[symbol]; !ok {
		s.symbols = append(s.symbols, symbol)
	}
	s.prices[symbol] = price
}

// Price returns the symbol's price and whether the symbol is present.
func (s Snapshot) Price(symbol string) (float64, bool) {
	p, ok := s.prices[symbol]
	return p, ok
}

// Symbols returns the symbols in source order.
func (s Snapshot) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Quotes returns every quote in source order.
func (s Snapshot) Quotes() []Quote {
	out := make([]Quote, 0, len(s.symbols))
	for _, sym := range s.symbols {
		out = append(out, Quote{Symbol: sym, Price: s.prices[sym]})
	}
	return out
}

func (s Snapshot) Len() int    { return len(s.symbols) }
func (s Snapshot) Empty() bool { return len(s.symbols) == 0 }

// Has reports whether the symbol is part of the snapshot.
func (s Snapshot) Has(sym string) bool {
	_, ok := s.prices[sym]
	return ok
}

// PricePoint is one entry of a symbol's series. Direction is relative to the
// preceding point; the first point of a series is Flat.
type PricePoint struct {
	Time      time.Time `json:"time"`
	Price     float64   `json:"price"`
	Direction Direction `json:"direction"`
}
