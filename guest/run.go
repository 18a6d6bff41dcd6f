package guest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-hostguest/outcome"
	"github.com/joeycumines/logiface"
)

type (
	// MainFunc is the entry point of a guest run, executed as its main task.
	MainFunc func(ctx context.Context) (any, error)

	// Run is a single guest run, see [Start].
	Run struct {
		// Prevent copying
		_ [0]func()

		ctx     context.Context
		cancel  context.CancelCauseFunc
		reenter func(func())
		done    func(outcome.Outcome)
		logger  *logiface.Logger[logiface.Event]
		main    *task
		current atomic.Pointer[task]
		// signalled instead of calling reenter, while draining
		wakeup chan struct{}

		// guarded by mu
		ready []*task
		// number of tasks in the current step's batch, not yet resumed
		pending   int
		live      int
		nextID    uint64
		scheduled bool
		mainDone  bool
		finished  bool
		draining  bool

		mu sync.Mutex
	}

	task struct {
		run    *Run
		ctx    context.Context
		fn     MainFunc
		onDone func(outcome.Outcome)
		result outcome.Outcome
		resume chan struct{}
		yield  chan struct{}
		id     uint64

		// guarded by run.mu
		queued bool
		done   bool
	}

	taskKey struct{}
)

// Start starts a guest run, with main as the main task.
//
// The reenter function must cause its argument to be called on the host
// thread, at the next opportunity, without blocking. It must be safe to call
// from any goroutine. The first step is requested (via reenter) before Start
// returns.
//
// The done callback will be called exactly once, on the host thread, after
// main and all other tasks have finished.
//
// Cancelling ctx cancels every task.
func Start(ctx context.Context, main MainFunc, reenter func(func()), done func(outcome.Outcome), opts ...Option) (*Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if main == nil {
		return nil, ErrNilMain
	}
	if reenter == nil {
		return nil, ErrNilReenter
	}
	if done == nil {
		return nil, ErrNilDone
	}

	cfg, err := resolveRunOptions(opts)
	if err != nil {
		return nil, err
	}

	r := &Run{
		reenter: reenter,
		done:    done,
		logger:  cfg.logger,
		wakeup:  make(chan struct{}, 1),
	}
	r.ctx, r.cancel = context.WithCancelCause(ctx)

	r.main = r.spawn(r.ctx, main, nil)

	return r, nil
}

// Cancel cancels every task in the run, with the given cause.
func (r *Run) Cancel(cause error) {
	r.cancel(cause)
}

// Finished returns true once the done callback has been invoked.
func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// spawn creates a new task, and marks it ready. The onDone callback, if
// any, will be called on the host thread, after the task finishes.
func (r *Run) spawn(ctx context.Context, fn MainFunc, onDone func(outcome.Outcome)) *task {
	t := &task{
		run:    r,
		fn:     fn,
		onDone: onDone,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	t.ctx = context.WithValue(ctx, taskKey{}, t)

	r.mu.Lock()
	r.nextID++
	t.id = r.nextID
	r.live++
	r.mu.Unlock()

	r.logger.Debug().
		Uint64(`task`, t.id).
		Log(`guest task spawned`)

	go t.main()

	r.wake(t)

	return t
}

// wake marks t as ready, requesting a step if one is not already pending.
// It may be called from any goroutine, and is a no-op if t is already
// ready, or finished.
func (r *Run) wake(t *task) {
	r.mu.Lock()
	if t.queued || t.done || r.finished {
		r.mu.Unlock()
		return
	}
	t.queued = true
	r.ready = append(r.ready, t)
	request := !r.scheduled
	r.scheduled = true
	draining := r.draining
	r.mu.Unlock()

	switch {
	case !request:
	case draining:
		select {
		case r.wakeup <- struct{}{}:
		default:
		}
	default:
		r.reenter(r.step)
	}
}

// Drain cancels the run, with the given cause, then runs its steps on the
// calling goroutine, until every task has finished, and the done callback
// has been called. It is for use once the host stops delivering re-entry
// callbacks, e.g. because its loop exited first, and must be called from the
// host thread, outside of any step. Any step requested but never delivered
// is run by Drain.
//
// Drain returns once the run is finished, which relies on its tasks
// returning, once cancelled.
func (r *Run) Drain(cause error) {
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	r.draining = true
	// a request may have been lost, with the host
	r.scheduled = len(r.ready) != 0
	r.mu.Unlock()

	r.logger.Debug().
		Err(cause).
		Log(`guest run draining`)

	r.cancel(cause)

	for {
		r.mu.Lock()
		finished, scheduled := r.finished, r.scheduled
		r.mu.Unlock()

		switch {
		case finished:
			return
		case scheduled:
			r.step()
		default:
			<-r.wakeup
		}
	}
}

// step is invoked on the host thread, via reenter. It resumes every task
// that was ready at the start of the step, in order.
func (r *Run) step() {
	r.mu.Lock()
	r.scheduled = false
	batch := r.ready
	r.ready = nil
	r.pending = len(batch)
	r.mu.Unlock()

	for _, t := range batch {
		r.mu.Lock()
		r.pending--
		t.queued = false
		skip := t.done
		r.mu.Unlock()
		if skip {
			continue
		}

		r.current.Store(t)
		t.resume <- struct{}{}
		<-t.yield
		r.current.Store(nil)

		r.mu.Lock()
		finished := t.done
		r.mu.Unlock()
		if finished {
			r.complete(t)
		}
	}

	r.maybeFinish()
}

// complete handles a finished task, on the host thread.
func (r *Run) complete(t *task) {
	r.mu.Lock()
	r.live--
	live := r.live
	isMain := t == r.main
	if isMain {
		r.mainDone = true
	}
	r.mu.Unlock()

	r.logger.Debug().
		Uint64(`task`, t.id).
		Bool(`error`, t.result.IsError()).
		Log(`guest task finished`)

	if t.onDone != nil {
		t.onDone(t.result)
	}

	if isMain && live != 0 {
		r.cancel(ErrMainReturned)
	}
}

func (r *Run) maybeFinish() {
	r.mu.Lock()
	if !r.mainDone || r.live != 0 || r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.ready = nil
	r.mu.Unlock()

	r.cancel(ErrMainReturned)

	r.done(r.main.result)
}

// main is the body of the task's goroutine.
func (t *task) main() {
	<-t.resume

	result := outcome.Capture(func() (any, error) { return t.fn(t.ctx) })

	t.run.mu.Lock()
	t.result = result
	t.done = true
	t.run.mu.Unlock()

	t.yield <- struct{}{}
}

// park hands the baton back to the step, blocking until resumed. The caller
// must have arranged for the task to be woken.
func (t *task) park() {
	t.yield <- struct{}{}
	<-t.resume
}

// suspend parks the task, also waking it if ctx is done.
func (t *task) suspend(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { t.run.wake(t) })
	t.park()
	stop()
}

// currentTask returns the task identified by ctx, provided it is the task
// that currently holds the baton.
func currentTask(ctx context.Context) (*task, error) {
	if ctx == nil {
		return nil, ErrNotInGuest
	}
	t, _ := ctx.Value(taskKey{}).(*task)
	if t == nil || t.run.current.Load() != t {
		return nil, ErrNotInGuest
	}
	return t, nil
}

// InGuest returns true if ctx belongs to the guest task that is currently
// running, i.e. the caller may use the suspension points of this package.
func InGuest(ctx context.Context) bool {
	_, err := currentTask(ctx)
	return err == nil
}
