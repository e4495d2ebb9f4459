// Package ledger lays out recent transactions in two columns.
package ledger

import (
	"time"

	"PriceBoard/internal/model"
)

// DefaultColumnSize is the number of rows per column.
const DefaultColumnSize = 20

// Build filters records to symbol (all records when symbol is empty) and
// splits the newest 2×columnSize of them into two columns. Records are
// expected newest first. Times are shown in loc.
func Build(records []model.TransactionRecord, symbol string, columnSize int, loc *time.Location) model.LedgerView {
	if columnSize <= 0 {
		columnSize = DefaultColumnSize
	}
	if loc == nil {
		loc = time.Local
	}

	view := model.LedgerView{Symbol: symbol}
	entries := make([]model.LedgerEntry, 0, 2*columnSize)
	for _, r := range records {
		if symbol != "" && r.Symbol != symbol {
			continue
		}
		entries = append(entries, model.LedgerEntry{
			Time:     r.Time.In(loc).Format("15:04:05"),
			Symbol:   r.Symbol,
			Quantity: r.Quantity,
			Price:    model.FormatPrice(r.Price),
			Amount:   r.Amount().StringFixed(2),
		})
		if len(entries) == 2*columnSize {
			break
		}
	}

	if len(entries) == 0 {
		view.Empty = true
		return view
	}
	split := columnSize
	if split > len(entries) {
		split = len(entries)
	}
	view.ColumnA = entries[:split]
	view.ColumnB = entries[split:]
	return view
}
