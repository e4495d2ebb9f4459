package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"PriceBoard/internal/model"
)

var testFrame = Frame{TickID: "t1", At: time.Date(2026, 3, 2, 16, 30, 5, 0, time.UTC)}

type failingRenderer struct {
	err   error
	calls int
}

func (r *failingRenderer) RenderTicker(Frame, []model.TickerItem) error { r.calls++; return r.err }
func (r *failingRenderer) RenderGrid(Frame, []model.GridCell) error     { r.calls++; return r.err }
func (r *failingRenderer) RenderChart(Frame, model.ChartCommand) error  { r.calls++; return r.err }
func (r *failingRenderer) RenderLedger(Frame, model.LedgerView) error   { r.calls++; return r.err }
func (r *failingRenderer) ClearFlash(string) error                      { r.calls++; return r.err }

func TestMultiCallsEveryRenderer(t *testing.T) {
	errA := errors.New("a broke")
	errB := errors.New("b broke")
	a := &failingRenderer{err: errA}
	ok := &failingRenderer{}
	b := &failingRenderer{err: errB}
	m := Multi{a, ok, b}

	err := m.RenderGrid(testFrame, nil)
	if err == nil {
		t.Fatal("expected combined error")
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 || errs[0] != errA || errs[1] != errB {
		t.Errorf("errors = %v", errs)
	}
	if a.calls != 1 || ok.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d %d %d, want 1 each", a.calls, ok.calls, b.calls)
	}

	if err := (Multi{ok}).ClearFlash("A"); err != nil {
		t.Errorf("ClearFlash: %v", err)
	}
}

func TestFormatTickerPrintsFirstHalf(t *testing.T) {
	items := []model.TickerItem{
		{Symbol: "A", Price: "4.50", Direction: model.Up, Arrow: "▲"},
		{Symbol: "B", Price: "3.00", Direction: model.Flat, Arrow: "–"},
		{Symbol: "A", Price: "4.50", Direction: model.Up, Arrow: "▲"},
		{Symbol: "B", Price: "3.00", Direction: model.Flat, Arrow: "–"},
	}
	got := FormatTicker(testFrame, items)
	if !strings.HasPrefix(got, "[16:30:05] ") {
		t.Errorf("missing timestamp: %q", got)
	}
	if strings.Count(got, "A 4.50 ▲") != 1 || strings.Count(got, "B 3.00 –") != 1 {
		t.Errorf("ticker = %q", got)
	}
	if got := FormatTicker(testFrame, nil); got != "[16:30:05] \n" {
		t.Errorf("empty ticker = %q", got)
	}
}

func TestFormatGridMarksFlashes(t *testing.T) {
	got := FormatGrid([]model.GridCell{
		{Symbol: "A", Price: "4.50", Direction: model.Up, Flash: model.FlashUp},
		{Symbol: "B", Price: "4.25", Direction: model.Down, Flash: model.FlashDown},
		{Symbol: "C", Price: "1.00", Direction: model.Flat},
	})
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "+ A") || !strings.HasSuffix(lines[0], "▲") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "- B") || !strings.HasSuffix(lines[1], "▼") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  C") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestFormatLedger(t *testing.T) {
	if got := FormatLedger(model.LedgerView{Empty: true}); got != "ledger: no data\n" {
		t.Errorf("empty = %q", got)
	}
	view := model.LedgerView{
		ColumnA: []model.LedgerEntry{
			{Time: "16:00:01", Symbol: "A", Quantity: 3, Price: "5.10", Amount: "15.30"},
			{Time: "16:00:02", Symbol: "A", Quantity: 1, Price: "5.00", Amount: "5.00"},
		},
		ColumnB: []model.LedgerEntry{
			{Time: "16:00:03", Symbol: "A", Quantity: 2, Price: "4.00", Amount: "8.00"},
		},
	}
	lines := strings.Split(strings.TrimSuffix(FormatLedger(view), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	if !strings.Contains(lines[0], "x3 @5.10 = 15.30") || !strings.Contains(lines[0], "x2 @4.00 = 8.00") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if strings.Contains(lines[1], "8.00") {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestFormatChart(t *testing.T) {
	initCmd := model.ChartCommand{
		Action: model.ChartInit,
		Title:  "A",
		Up:     []model.LinePoint{{Price: 1}, {Price: 2}},
		Min:    0.5,
		Max:    2.5,
	}
	if got := FormatChart(initCmd); got != "chart A: 2 up / 0 down vertices, range 0.50-2.50\n" {
		t.Errorf("init = %q", got)
	}
	app := model.ChartCommand{
		Action: model.ChartAppend,
		Title:  "A",
		Latest: &model.PricePoint{Price: 4.25, Direction: model.Down},
	}
	if got := FormatChart(app); got != "chart A: +4.25 ▼\n" {
		t.Errorf("append = %q", got)
	}
	if got := FormatChart(model.ChartCommand{Action: model.ChartAppend}); got != "" {
		t.Errorf("append without latest = %q", got)
	}
}

func TestConsoleNilWriterIsNoop(t *testing.T) {
	c := NewConsole(nil)
	if err := c.RenderLedger(testFrame, model.LedgerView{Empty: true}); err != nil {
		t.Errorf("RenderLedger: %v", err)
	}

	var buf bytes.Buffer
	c = NewConsole(&buf)
	if err := c.RenderLedger(testFrame, model.LedgerView{Empty: true}); err != nil {
		t.Fatalf("RenderLedger: %v", err)
	}
	if buf.String() != "ledger: no data\n" {
		t.Errorf("output = %q", buf.String())
	}
}
