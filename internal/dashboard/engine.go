// Package dashboard runs the tick loop that gates on the session window,
// rotates the chart across symbols and drives every view.
package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"PriceBoard/internal/cache"
	"PriceBoard/internal/calculator"
	"PriceBoard/internal/collector"
	"PriceBoard/internal/display"
	"PriceBoard/internal/feedback"
	"PriceBoard/internal/history"
	"PriceBoard/internal/ledger"
	"PriceBoard/internal/logger"
	"PriceBoard/internal/model"
	"PriceBoard/internal/rotation"
	"PriceBoard/internal/scheduler"
	"PriceBoard/internal/session"
)

// State is the session state the engine last evaluated.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	TickInterval     time.Duration
	FlashDuration    time.Duration
	MaxHistory       int
	LedgerColumnSize int
	// FilterLedger limits the ledger to the charted symbol.
	FilterLedger bool
}

func (o *Options) setDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = 10 * time.Second
	}
	if o.FlashDuration <= 0 {
		o.FlashDuration = 800 * time.Millisecond
	}
	if o.MaxHistory <= 0 {
		o.MaxHistory = 300
	}
	if o.LedgerColumnSize <= 0 {
		o.LedgerColumnSize = ledger.DefaultColumnSize
	}
}

// Status is a read-only view of the engine for health checks.
type Status struct {
	State         State     `json:"state"`
	Running       bool      `json:"running"`
	ActiveSymbol  string    `json:"active_symbol,omitempty"`
	RotationIndex int       `json:"rotation_index"`
	Symbols       int       `json:"symbols"`
	Ticks         uint64    `json:"ticks"`
	LastTick      time.Time `json:"last_tick,omitempty"`
	LastTickID    string    `json:"last_tick_id,omitempty"`
}

// Engine owns all cross-tick state. Tick must not be called concurrently
// with itself; Start arranges that.
type Engine struct {
	clock     *session.Clock
	collector *collector.Collector
	history   *history.Store
	rotation  *rotation.Controller
	flasher   *feedback.Flasher
	renderer  display.Renderer
	cache     cache.Cache
	opts      Options
	log       *zap.Logger
	now       func() time.Time

	prev      model.Snapshot
	memory    feedback.Memory
	state     State
	evaluated bool

	stopped atomic.Bool
	sched   *scheduler.Scheduler

	mu     sync.Mutex
	status Status
}

// NewEngine wires an engine. c may be nil, in which case nothing is cached
// locally.
func NewEngine(clock *session.Clock, col *collector.Collector, c cache.Cache, r display.Renderer, opts Options, log *zap.Logger) *Engine {
	opts.setDefaults()
	if c == nil {
		c = cache.NewNoopCache()
	}
	log = logger.OrNop(log)
	e := &Engine{
		clock:     clock,
		collector: col,
		history:   history.NewStore(opts.MaxHistory, col, c, log),
		rotation:  rotation.NewController(),
		renderer:  r,
		cache:     c,
		opts:      opts,
		log:       log,
		now:       time.Now,
		memory:    make(feedback.Memory),
	}
	e.flasher = feedback.NewFlasher(opts.FlashDuration, e.clearFlash)
	return e
}

// Start runs one tick immediately and then one per tick interval.
func (e *Engine) Start(ctx context.Context) error {
	if e.sched != nil {
		return errors.New("engine already started")
	}
	sched, err := scheduler.NewScheduler(e, e.opts.TickInterval, e.log)
	if err != nil {
		return errors.Wrap(err, "create scheduler")
	}
	e.sched = sched
	e.stopped.Store(false)
	e.setRunning(true)
	sched.Start(ctx)
	return nil
}

// Stop halts the scheduler. A tick in flight finishes its fetches but
// renders nothing; pending flash expiries are dropped too.
func (e *Engine) Stop() {
	e.stopped.Store(true)
	if e.sched != nil {
		e.sched.Stop()
		e.sched = nil
	}
	e.setRunning(false)
	e.log.Info("engine stopped")
}

// Status returns a snapshot of the engine's progress.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Tick performs one step of the session state machine.
func (e *Engine) Tick(ctx context.Context) {
	if e.stopped.Load() {
		return
	}
	now := e.now()
	frame := display.Frame{TickID: uuid.NewString(), At: now}
	log := e.log.With(zap.String("tick_id", frame.TickID))

	if e.clock.IsActive(now) {
		e.tickOpen(ctx, frame, log)
	} else {
		e.tickClosed(ctx, frame, log)
	}
	e.recordTick(frame)
}

func (e *Engine) tickClosed(ctx context.Context, frame display.Frame, log *zap.Logger) {
	if e.state == Open {
		e.rotation.Release()
		e.history.Release()
		log.Info("session closed, chart released")
	}
	e.state = Closed
	e.evaluated = true

	snap := e.collector.Snapshot(ctx)
	if snap.Empty() {
		log.Debug("closed tick without data")
		return
	}
	e.renderFeedback(frame, snap, log)
	e.renderLedger(ctx, frame, log)
	e.prev = snap
}

func (e *Engine) tickOpen(ctx context.Context, frame display.Frame, log *zap.Logger) {
	snap := e.collector.Snapshot(ctx)
	if snap.Empty() {
		log.Debug("open tick without data, skipped")
		return
	}

	reopened := false
	if e.state == Closed {
		// Only a closed state that was actually observed marks a new day;
		// starting up mid-session keeps the local cache.
		if e.evaluated {
			reopened = true
			if err := e.cache.Reset(); err != nil {
				log.Warn("reset history cache failed", zap.Error(err))
			}
		}
		log.Info("session open", zap.Bool("new_day", reopened))
	}
	e.state = Open
	e.evaluated = true

	step := e.rotation.Next(snap.Symbols(), reopened)
	if cmd, ok := e.updateHistory(ctx, step, snap, frame, log); ok {
		e.render(log, "chart", func() error { return e.renderer.RenderChart(frame, cmd) })
	}
	e.renderFeedback(frame, snap, log)
	e.renderLedger(ctx, frame, log)

	e.rotation.Advance(snap.Len())
	e.prev = snap
}

func (e *Engine) updateHistory(ctx context.Context, step rotation.Step, snap model.Snapshot, frame display.Frame, log *zap.Logger) (model.ChartCommand, bool) {
	price, _ := snap.Price(step.Symbol)
	switch step.Action {
	case rotation.Initialize:
		origin := e.history.Initialize(ctx, step.Symbol, price, true, frame.At)
		if origin == history.OriginCache {
			e.history.Append(step.Symbol, price, frame.At)
		}
		log.Debug("chart initialized",
			zap.String("symbol", step.Symbol),
			zap.String("reason", step.Reason),
			zap.Stringer("origin", origin),
			zap.Int("points", e.history.Len(step.Symbol)),
		)
		return e.initCommand(step.Symbol), true
	case rotation.Append:
		res, ok := e.history.Append(step.Symbol, price, frame.At)
		if !ok {
			return model.ChartCommand{}, false
		}
		return e.appendCommand(step.Symbol, res), true
	default:
		return model.ChartCommand{}, false
	}
}

func (e *Engine) initCommand(symbol string) model.ChartCommand {
	up, down := e.history.Segments(symbol)
	cmd := model.ChartCommand{
		Action: model.ChartInit,
		Symbol: symbol,
		Title:  symbol,
		Up:     e.label(history.Stitch(up)),
		Down:   e.label(history.Stitch(down)),
	}
	if series := e.history.Series(symbol); len(series) > 0 {
		last := series[len(series)-1]
		cmd.Latest = &last
	}
	cmd.Min, cmd.Max = calculator.RangeFor(e.history.Prices(symbol))
	return cmd
}

func (e *Engine) appendCommand(symbol string, res history.Appended) model.ChartCommand {
	cmd := model.ChartCommand{
		Action:  model.ChartAppend,
		Symbol:  symbol,
		Title:   symbol,
		Latest:  &res.Point,
		Evicted: res.Evicted,
	}
	if seg := res.Segment; seg != nil {
		run := e.label([]model.LinePoint{
			{Time: seg.From.Time, Price: seg.From.Price},
			{Time: seg.To.Time, Price: seg.To.Price},
		})
		if !res.Contiguous {
			run = append([]model.LinePoint{{Break: true}}, run...)
		}
		if seg.Rising() {
			cmd.Up = run
		} else {
			cmd.Down = run
		}
	}
	cmd.Min, cmd.Max = calculator.RangeFor(e.history.Prices(symbol))
	return cmd
}

// label stamps each vertex with its HH:MM time in the session zone.
func (e *Engine) label(points []model.LinePoint) []model.LinePoint {
	loc := e.clock.Location()
	for i := range points {
		if points[i].Break {
			continue
		}
		points[i].Label = points[i].Time.In(loc).Format("15:04")
	}
	return points
}

func (e *Engine) renderFeedback(frame display.Frame, snap model.Snapshot, log *zap.Logger) {
	res := feedback.Build(snap, e.prev, e.memory)
	e.memory = res.Memory
	if e.stopped.Load() {
		return
	}
	for sym, fl := range res.Flashes {
		e.flasher.Flash(sym, fl)
	}
	e.render(log, "ticker", func() error { return e.renderer.RenderTicker(frame, res.Ticker) })
	e.render(log, "grid", func() error { return e.renderer.RenderGrid(frame, res.Grid) })
}

func (e *Engine) renderLedger(ctx context.Context, frame display.Frame, log *zap.Logger) {
	records := e.collector.Ledger(ctx)
	symbol := ""
	if e.opts.FilterLedger {
		symbol = e.rotation.Active()
	}
	view := ledger.Build(records, symbol, e.opts.LedgerColumnSize, e.clock.Location())
	e.render(log, "ledger", func() error { return e.renderer.RenderLedger(frame, view) })
}

// render drops the call once the engine is stopped and logs renderer errors
// without interrupting the tick.
func (e *Engine) render(log *zap.Logger, view string, fn func() error) {
	if e.stopped.Load() {
		return
	}
	if err := fn(); err != nil {
		log.Warn("render failed", zap.String("view", view), zap.Error(err))
	}
}

func (e *Engine) clearFlash(symbol string) {
	if e.stopped.Load() {
		return
	}
	if err := e.renderer.ClearFlash(symbol); err != nil {
		e.log.Warn("clear flash failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

func (e *Engine) recordTick(frame display.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.State = e.state
	e.status.ActiveSymbol = e.rotation.Active()
	e.status.RotationIndex = e.rotation.Index()
	e.status.Symbols = e.prev.Len()
	e.status.Ticks++
	e.status.LastTick = frame.At
	e.status.LastTickID = frame.TickID
}

func (e *Engine) setRunning(running bool) {
	e.mu.Lock()
	e.status.Running = running
	e.mu.Unlock()
}
