// Package feedback computes the ticker and grid views from the difference
// between two snapshots.
package feedback

import (
	"PriceBoard/internal/calculator"
	"PriceBoard/internal/model"
)

// Memory is the last non-equal move seen for each symbol. It survives ticks
// where the price did not change.
type Memory map[string]model.Direction

// Result is the outcome of one diff.
type Result struct {
	// Ticker holds every symbol twice, back to back, for seamless scrolling.
	Ticker []model.TickerItem
	Grid   []model.GridCell
	// Flashes lists only the symbols that moved this tick.
	Flashes map[string]model.Flash
	// Memory is the updated direction memory.
	Memory Memory
}

// Build diffs snap against prev. Symbols absent from prev are not compared
// and keep their remembered direction. mem is not modified.
func Build(snap, prev model.Snapshot, mem Memory) Result {
	res := Result{
		Flashes: make(map[string]model.Flash),
		Memory:  make(Memory, len(mem)),
	}
	for sym, d := range mem {
		res.Memory[sym] = d
	}

	quotes := snap.Quotes()
	base := make([]model.TickerItem, 0, len(quotes))
	res.Grid = make([]model.GridCell, 0, len(quotes))

	for _, q := range quotes {
		flash := model.FlashNone
		if before, ok := prev.Price(q.Symbol); ok {
			switch calculator.Compare(before, q.Price) {
			case model.Up:
				res.Memory[q.Symbol] = model.Up
				flash = model.FlashUp
			case model.Down:
				res.Memory[q.Symbol] = model.Down
				flash = model.FlashDown
			}
		}
		if flash != model.FlashNone {
			res.Flashes[q.Symbol] = flash
		}

		dir := res.Memory[q.Symbol]
		price := model.FormatPrice(q.Price)
		base = append(base, model.TickerItem{
			Symbol:    q.Symbol,
			Price:     price,
			Direction: dir,
			Arrow:     dir.Arrow(),
		})
		res.Grid = append(res.Grid, model.GridCell{
			Symbol:    q.Symbol,
			Price:     price,
			Direction: dir,
			Flash:     flash,
		})
	}

	res.Ticker = make([]model.TickerItem, 0, 2*len(base))
	res.Ticker = append(res.Ticker, base...)
	res.Ticker = append(res.Ticker, base...)
	return res
}
