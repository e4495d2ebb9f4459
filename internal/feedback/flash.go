package feedback

import (
	"sync"
	"time"

	"PriceBoard/internal/model"
)

type flashEntry struct {
	state model.Flash
	gen   uint64
	timer *time.Timer
}

// Flasher holds transient flash states. Each flash reverts after a fixed
// duration; a newer flash on the same symbol replaces the older one and its
// timer. Safe for concurrent use: expiries run on timer goroutines.
type Flasher struct {
	mu       sync.Mutex
	duration time.Duration
	entries  map[string]*flashEntry
	gen      uint64
	onExpire func(symbol string)
}

// NewFlasher creates a Flasher. onExpire, if set, is called after a flash
// reverts, outside the lock.
func NewFlasher(duration time.Duration, onExpire func(symbol string)) *Flasher {
	return &Flasher{
		duration: duration,
		entries:  make(map[string]*flashEntry),
		onExpire: onExpire,
	}
}

// Flash sets symbol's state, superseding any pending flash.
func (f *Flasher) Flash(symbol string, state model.Flash) {
	if state == model.FlashNone {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if old, ok := f.entries[symbol]; ok {
		old.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.entries[symbol] = &flashEntry{
		state: state,
		gen:   gen,
		timer: time.AfterFunc(f.duration, func() { f.expire(symbol, gen) }),
	}
}

// State returns symbol's current flash, FlashNone if none is pending.
func (f *Flasher) State(symbol string) model.Flash {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[symbol]; ok {
		return e.state
	}
	return model.FlashNone
}

// Pending returns the number of flashes not yet reverted.
func (f *Flasher) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *Flasher) expire(symbol string, gen uint64) {
	f.mu.Lock()
	e, ok := f.entries[symbol]
	if !ok || e.gen != gen {
		// Superseded.
		f.mu.Unlock()
		return
	}
	delete(f.entries, symbol)
	f.mu.Unlock()

	if f.onExpire != nil {
		f.onExpire(symbol)
	}
}
