package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"PriceBoard/internal/model"
)

// Console renders each view as plain text to a writer. A nil writer makes
// every call a no-op.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console renderer writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return nil
	}
	_, err := io.WriteString(c.w, s)
	return err
}

// RenderTicker prints one pass of the ticker; the duplicate half only exists
// for scrolling surfaces.
func (c *Console) RenderTicker(f Frame, items []model.TickerItem) error {
	return c.write(FormatTicker(f, items))
}

func (c *Console) RenderGrid(f Frame, cells []model.GridCell) error {
	return c.write(FormatGrid(cells))
}

func (c *Console) RenderChart(f Frame, cmd model.ChartCommand) error {
	return c.write(FormatChart(cmd))
}

func (c *Console) RenderLedger(f Frame, view model.LedgerView) error {
	return c.write(FormatLedger(view))
}

func (c *Console) ClearFlash(symbol string) error {
	return nil
}

// FormatTicker formats the first half of a duplicated ticker on one line.
func FormatTicker(f Frame, items []model.TickerItem) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] ", f.At.Format("15:04:05")))
	for _, it := range items[:len(items)/2] {
		b.WriteString(fmt.Sprintf("%s %s %s  ", it.Symbol, it.Price, it.Arrow))
	}
	b.WriteString("\n")
	return b.String()
}

// FormatGrid formats one row per symbol, marking flashing cells.
func FormatGrid(cells []model.GridCell) string {
	var b strings.Builder
	for _, cell := range cells {
		mark := " "
		switch cell.Flash {
		case model.FlashUp:
			mark = "+"
		case model.FlashDown:
			mark = "-"
		}
		b.WriteString(fmt.Sprintf("%s %-20s %8s %s\n", mark, cell.Symbol, cell.Price, cell.Direction.Arrow()))
	}
	return b.String()
}

// FormatChart summarizes a chart command.
func FormatChart(cmd model.ChartCommand) string {
	switch cmd.Action {
	case model.ChartInit:
		return fmt.Sprintf("chart %s: %d up / %d down vertices, range %.2f-%.2f\n",
			cmd.Title, len(cmd.Up), len(cmd.Down), cmd.Min, cmd.Max)
	default:
		if cmd.Latest == nil {
			return ""
		}
		return fmt.Sprintf("chart %s: +%s %s\n",
			cmd.Title, model.FormatPrice(cmd.Latest.Price), cmd.Latest.Direction.Arrow())
	}
}

// FormatLedger formats the two ledger columns side by side.
func FormatLedger(view model.LedgerView) string {
	if view.Empty {
		return "ledger: no data\n"
	}
	var b strings.Builder
	for i := range view.ColumnA {
		b.WriteString(formatEntry(view.ColumnA[i]))
		if i < len(view.ColumnB) {
			b.WriteString("   ")
			b.WriteString(formatEntry(view.ColumnB[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatEntry(e model.LedgerEntry) string {
	return fmt.Sprintf("%s %-16s x%d @%s = %s", e.Time, e.Symbol, e.Quantity, e.Price, e.Amount)
}
