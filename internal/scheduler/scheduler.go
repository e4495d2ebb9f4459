package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"PriceBoard/internal/logger"
)

// Job is the periodic work the scheduler drives.
type Job interface {
	Tick(ctx context.Context)
}

// Scheduler runs a Job once immediately and then on a fixed interval.
// A tick that is still running when the next one is due causes that next
// one to be skipped, so ticks never overlap.
type Scheduler struct {
	cron     *cron.Cron
	job      Job
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup

	// tickMu keeps the immediate first tick from overlapping a cron tick.
	tickMu sync.Mutex
}

// NewScheduler creates a scheduler for job.
func NewScheduler(job Job, interval time.Duration, log *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.Errorf("tick interval %s must be positive", interval)
	}
	log = logger.OrNop(log)
	s := &Scheduler{
		job:      job,
		interval: interval,
		log:      log,
	}
	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{log}),
		cron.SkipIfStillRunning(cronLogger{log}),
	))
	s.cron.Schedule(every(interval), cron.FuncJob(s.run))
	return s, nil
}

// Start runs the first tick in the background and starts the interval.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
	s.cron.Start()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
}

// Stop prevents new ticks and waits for the current one to return. The
// in-flight tick keeps its context until then, so its fetches complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
	cancel()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}
	if !s.tickMu.TryLock() {
		s.log.Debug("tick skipped, previous still running")
		return
	}
	defer s.tickMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()
	s.job.Tick(ctx)
}

// every fires at a fixed interval after the previous activation. Unlike
// cron.Every it keeps sub-second precision.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
