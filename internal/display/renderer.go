// Package display defines the render surface the engine drives and the
// concrete surfaces it ships with.
package display

import (
	"time"

	"go.uber.org/multierr"

	"PriceBoard/internal/model"
)

// Frame identifies the tick a render call belongs to.
type Frame struct {
	TickID string    `json:"tick_id"`
	At     time.Time `json:"at"`
}

// Renderer receives render commands. A surface whose target is missing
// treats the call as a no-op rather than failing. Implementations must be
// safe for concurrent use: ClearFlash arrives from timer goroutines.
type Renderer interface {
	RenderTicker(f Frame, items []model.TickerItem) error
	RenderGrid(f Frame, cells []model.GridCell) error
	RenderChart(f Frame, cmd model.ChartCommand) error
	RenderLedger(f Frame, view model.LedgerView) error
	ClearFlash(symbol string) error
}

// Multi fans every call out to all renderers and combines their errors.
type Multi []Renderer

func (m Multi) RenderTicker(f Frame, items []model.TickerItem) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RenderTicker(f, items))
	}
	return err
}

func (m Multi) RenderGrid(f Frame, cells []model.GridCell) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RenderGrid(f, cells))
	}
	return err
}

func (m Multi) RenderChart(f Frame, cmd model.ChartCommand) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RenderChart(f, cmd))
	}
	return err
}

func (m Multi) RenderLedger(f Frame, view model.LedgerView) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.RenderLedger(f, view))
	}
	return err
}

func (m Multi) ClearFlash(symbol string) error {
	var err error
	for _, r := range m {
		err = multierr.Append(err, r.ClearFlash(symbol))
	}
	return err
}
