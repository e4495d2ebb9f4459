package model

import (
	"time"

	"github.com/pkg/errors"
)

// Flash is the transient highlight of a grid cell.
type Flash int

const (
	FlashNone Flash = iota
	FlashUp
	FlashDown
)

func (f Flash) String() string {
	switch f {
	case FlashUp:
		return "up"
	case FlashDown:
		return "down"
	default:
		return "none"
	}
}

func (f Flash) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Flash) UnmarshalText(b []byte) error {
	switch string(b) {
	case "up":
		*f = FlashUp
	case "down":
		*f = FlashDown
	case "none", "":
		*f = FlashNone
	default:
		return errors.Errorf("unknown flash %q", b)
	}
	return nil
}

// TickerItem is one entry of the scrolling ticker.
type TickerItem struct {
	Symbol    string    `json:"symbol"`
	Price     string    `json:"price"`
	Direction Direction `json:"direction"`
	Arrow     string    `json:"arrow"`
}

// GridCell is one tile of the price grid.
type GridCell struct {
	Symbol    string    `json:"symbol"`
	Price     string    `json:"price"`
	Direction Direction `json:"direction"`
	Flash     Flash     `json:"flash"`
}

// ChartAction tells the chart whether to redraw from scratch or extend.
type ChartAction string

const (
	ChartInit   ChartAction = "init"
	ChartAppend ChartAction = "append"
)

// LinePoint is a vertex of an up or down polyline. Break marks a gap: the
// renderer must not connect the points on either side of it.
type LinePoint struct {
	Time  time.Time `json:"time,omitempty"`
	Label string    `json:"label,omitempty"`
	Price float64   `json:"price,omitempty"`
	Break bool      `json:"break,omitempty"`
}

// ChartCommand is what the chart view receives each open tick.
//
// For ChartInit, Up and Down hold the full stitched polylines. For
// ChartAppend they hold only the newest two-point run in its class, prefixed
// with a break when it does not continue that class's previous run; Evicted
// is the number of points dropped from the front of the series.
type ChartCommand struct {
	Action  ChartAction `json:"action"`
	Symbol  string      `json:"symbol"`
	Title   string      `json:"title"`
	Up      []LinePoint `json:"up"`
	Down    []LinePoint `json:"down"`
	Latest  *PricePoint `json:"latest,omitempty"`
	Evicted int         `json:"evicted,omitempty"`
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
}

// LedgerEntry is one formatted ledger row.
type LedgerEntry struct {
	Time     string `json:"time"`
	Symbol   string `json:"symbol"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
}

// LedgerView holds the two ledger columns. Empty means the placeholder is
// shown instead of the columns.
type LedgerView struct {
	Symbol  string        `json:"symbol,omitempty"`
	Empty   bool          `json:"empty"`
	ColumnA []LedgerEntry `json:"column_a"`
	ColumnB []LedgerEntry `json:"column_b"`
}
