package guest

import (
	"context"
	"slices"
	"sync"
)

// Event is a one-shot flag that guest tasks may wait on. It starts unset, and
// once set, stays set.
//
// Set may be called from any goroutine, including host callbacks, and never
// blocks. The zero value is ready to use.
type Event struct {
	waiters []*task
	mu      sync.Mutex
	set     bool
}

// NewEvent returns a new, unset, Event.
func NewEvent() *Event {
	return new(Event)
}

// Set sets the event, waking every waiting task, in the order they started
// waiting. Subsequent calls are no-ops.
func (e *Event) Set() {
	e.mu.Lock()
	if e.set {
		e.mu.Unlock()
		return
	}
	e.set = true
	waiters := e.waiters
	e.waiters = nil
	e.mu.Unlock()

	for _, t := range waiters {
		t.run.wake(t)
	}
}

// IsSet reports whether Set has been called.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Wait suspends the calling guest task until the event is set, returning
// nil, or until ctx is done, returning ctx.Err(). If the event is already set,
// it returns immediately.
func (e *Event) Wait(ctx context.Context) error {
	t, err := currentTask(ctx)
	if err != nil {
		return err
	}
	for {
		e.mu.Lock()
		if e.set {
			e.mu.Unlock()
			return nil
		}
		if err := ctx.Err(); err != nil {
			if i := slices.Index(e.waiters, t); i >= 0 {
				e.waiters = slices.Delete(e.waiters, i, i+1)
			}
			e.mu.Unlock()
			return err
		}
		if !slices.Contains(e.waiters, t) {
			e.waiters = append(e.waiters, t)
		}
		e.mu.Unlock()

		t.suspend(ctx)
	}
}
