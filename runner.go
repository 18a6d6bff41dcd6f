package hostguest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/joeycumines/go-hostguest/eventloophost"
	"github.com/joeycumines/go-hostguest/guest"
	"github.com/joeycumines/go-hostguest/host"
	"github.com/joeycumines/go-hostguest/outcome"
	"github.com/joeycumines/logiface"
)

// Runner runs an entry function as a guest, within a host loop. A Runner
// may only be started once.
type Runner struct {
	// Prevent copying
	_ [0]func()

	app           host.Host
	appFactory    func() (host.Host, error)
	guest         Guest
	doneCallback  func(outcomes Outcomes)
	cancelTrigger func(app host.Host) host.EventSource
	logger        *logiface.Logger[logiface.Event]
	// guest failures are always reported, even if logger is nil
	failureLogger *logiface.Logger[logiface.Event]
	done          chan struct{}
	reenter       Reenter
	state         runnerState
	id            uuid.UUID

	// guarded by mu
	outcomes      Outcomes
	run           GuestRun
	scope         *CancelScope
	cancelPending bool

	mu sync.Mutex

	quitApplication bool
	ownsApp         bool
}

// NewRunner creates a new Runner.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	cfg, err := resolveRunnerOptions(opts)
	if err != nil {
		return nil, err
	}

	id := uuid.New()

	r := &Runner{
		app:             cfg.app,
		appFactory:      cfg.appFactory,
		guest:           cfg.guest,
		doneCallback:    cfg.doneCallback,
		cancelTrigger:   cfg.cancelTrigger,
		quitApplication: cfg.quitApplication,
		done:            make(chan struct{}),
		id:              id,
		logger: cfg.logger.Clone().
			Str(`runner`, id.String()).
			Logger(),
	}

	r.failureLogger = r.logger
	if r.failureLogger == nil {
		r.failureLogger = DefaultLogger().Clone().
			Str(`runner`, id.String()).
			Logger()
	}

	if r.appFactory == nil {
		r.appFactory = r.defaultApplication
	}
	if r.guest == nil {
		r.guest = DefaultGuest(guest.WithLogger(r.logger))
	}

	return r, nil
}

func (r *Runner) defaultApplication() (host.Host, error) {
	return eventloophost.New(eventloophost.WithLogger(r.logger))
}

// ID returns the unique identifier of the runner, included in its logs.
func (r *Runner) ID() uuid.UUID {
	return r.id
}

// State returns the current lifecycle state.
func (r *Runner) State() RunnerState {
	return r.state.Load()
}

// Application returns the host, which is nil until the runner has started.
func (r *Runner) Application() host.Host {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.app
}

// Outcomes returns a snapshot of the outcomes recorded so far.
func (r *Runner) Outcomes() Outcomes {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcomes
}

// Done returns a channel that is closed after the guest has finished, and
// the done callback (if any) has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Start starts entry as a guest of the host, without executing the host
// loop. The guest runs only while the host loop runs, see [Runner.Exec].
//
// The ctx is the parent of the guest's context. Cancelling it cancels the
// guest, but (unlike [Runner.Cancel]) the cancellation is reported as a
// failure.
func (r *Runner) Start(ctx context.Context, entry EntryFunc, args ...any) error {
	if entry == nil {
		return ErrNilEntry
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if !r.state.TryTransition(StateIdle, StateStarting) {
		return ErrRunnerReused
	}

	r.logger.Debug().
		Log(`runner starting`)

	app, err := r.application()
	if err != nil {
		r.state.Store(StateDone)
		r.logger.Err().
			Err(err).
			Log(`runner failed to obtain application`)
		return err
	}

	// the guest may finish as soon as it's started, if the host is running
	r.state.Store(StateRunning)

	run, err := r.guest.StartGuest(ctx, r.guestMain(app, entry, args), r.scheduleCallback, r.guestDone)
	if err != nil {
		r.state.Store(StateDone)
		r.logger.Err().
			Err(err).
			Log(`runner failed to start guest`)
		return fmt.Errorf("hostguest: start guest: %w", err)
	}

	r.mu.Lock()
	r.run = run
	r.mu.Unlock()

	return nil
}

func (r *Runner) application() (host.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.app != nil {
		return r.app, nil
	}

	app, err := r.appFactory()
	if err != nil {
		return nil, fmt.Errorf("hostguest: create application: %w", err)
	}
	if app == nil {
		return nil, ErrNilApplication
	}

	// the application must outlive the entry function
	app.SetQuitOnLastWindowClosed(false)

	r.app = app
	r.ownsApp = true

	return app, nil
}

// Exec executes the host loop, after [Runner.Start], blocking until it
// exits. The outcome of the host loop is recorded, and a snapshot of the
// outcomes returned. The error is only non-nil if the runner was not
// started, or has already executed the host.
//
// If the host loop exits before the guest has finished, the guest is
// cancelled (as per [Runner.Cancel], with [ErrHostExited] as the cause for
// any other tasks), and run to completion on the calling goroutine, before
// Exec returns.
func (r *Runner) Exec() (Outcomes, error) {
	if !r.state.TryTransition(StateRunning, StateHostExecuting) {
		return r.Outcomes(), fmt.Errorf("%w: cannot exec from %s", ErrInvalidState, r.state.Load())
	}

	r.logger.Debug().
		Log(`runner executing host`)

	code := r.app.Exec()

	r.mu.Lock()
	r.outcomes.Host = OutcomeFromStatus(code)
	r.mu.Unlock()

	// the host thread is ours, until Exec returns
	if r.state.Load() == StateHostExecuting {
		r.logger.Warning().
			Int(`code`, code).
			Log(`host exited before the guest finished, draining guest`)
		r.drainGuest()
	} else {
		r.logger.Debug().
			Int(`code`, code).
			Log(`host exited`)
	}

	if from, _ := r.state.TransitionAny([]RunnerState{StateFinishing, StateHostExecuting}, StateDone); from == StateHostExecuting {
		r.logger.Warning().
			Log(`guest abandoned`)
	}

	outcomes := r.Outcomes()

	if r.ownsApp {
		if closer, ok := r.app.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				r.logger.Warning().
					Err(err).
					Log(`failed to close application`)
			}
		}
	}

	return outcomes, nil
}

func (r *Runner) drainGuest() {
	r.mu.Lock()
	run := r.run
	r.mu.Unlock()
	if run == nil {
		return
	}
	r.Cancel()
	run.Drain(ErrHostExited)
}

// Run starts entry as a guest, then executes the host loop, see
// [Runner.Start] and [Runner.Exec]. The error is reserved for failures to
// start or execute. Failures of the entry function, or the host loop, are
// reported via the returned [Outcomes].
func (r *Runner) Run(ctx context.Context, entry EntryFunc, args ...any) (Outcomes, error) {
	if err := r.Start(ctx, entry, args...); err != nil {
		return r.Outcomes(), err
	}
	return r.Exec()
}

// Cancel cancels the scope wrapping the entry function. If the guest has not
// yet entered the scope, it will be entered already cancelled. The entry
// function observes the cancellation at its next suspension point, and, if
// it returns the resulting context error, its outcome is a nil value. May be
// called from any goroutine.
func (r *Runner) Cancel() {
	r.mu.Lock()
	scope := r.scope
	if scope == nil {
		r.cancelPending = true
	}
	r.mu.Unlock()

	r.logger.Debug().
		Bool(`pending`, scope == nil).
		Log(`runner cancel requested`)

	if scope != nil {
		scope.Cancel()
	}
}

// scheduleCallback requests fn be run on the host thread, from any
// goroutine, without blocking.
func (r *Runner) scheduleCallback(fn func()) {
	if err := r.app.PostEvent(r.reenter, NewReenterEvent(fn)); err != nil {
		r.logger.Warning().
			Err(err).
			Log(`failed to post reenter event, callback dropped`)
	}
}

func (r *Runner) openScope(ctx context.Context) *CancelScope {
	scope := NewCancelScope(ctx)
	r.mu.Lock()
	r.scope = scope
	pending := r.cancelPending
	r.mu.Unlock()
	if pending {
		scope.Cancel()
	}
	return scope
}

func (r *Runner) guestMain(app host.Host, entry EntryFunc, args []any) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		scope := r.openScope(ctx)

		var conns host.Connections
		defer conns.Close()

		if r.cancelTrigger != nil && app.QuitOnLastWindowClosed() {
			if trigger := r.cancelTrigger(app); trigger != nil {
				if err := conns.Connect(trigger, func(...any) {
					r.logger.Debug().
						Log(`cancel trigger fired`)
					scope.Cancel()
				}); err != nil {
					return nil, fmt.Errorf("hostguest: connect cancel trigger: %w", err)
				}
				// the trigger replaces the host's own quit, until the entry returns
				app.SetQuitOnLastWindowClosed(false)
				conns.Defer(func() { app.SetQuitOnLastWindowClosed(true) })
			}
		}

		return scope.Run(func(ctx context.Context) (any, error) {
			return entry(ctx, args...)
		})
	}
}

// guestDone is called by the guest, on the host thread, once.
func (r *Runner) guestDone(o outcome.Outcome) {
	r.mu.Lock()
	r.outcomes.Guest = o
	outcomes := r.outcomes
	r.mu.Unlock()

	if !r.state.TryTransition(StateHostExecuting, StateFinishing) {
		r.state.TryTransition(StateRunning, StateDone)
	}

	if failure, ok := o.(*outcome.Error); ok {
		r.failureLogger.Err().
			Err(failure.Err).
			Str(`stack`, string(failure.Stack)).
			Log(`guest failed`)
	} else {
		r.logger.Debug().
			Str(`outcome`, fmt.Sprint(o)).
			Log(`guest finished`)
	}

	defer close(r.done)

	if r.doneCallback != nil {
		r.doneCallback(outcomes)
	}

	if r.quitApplication {
		r.app.Quit()
	}
}

// Run creates a new [Runner] with default options, and runs entry with it.
// See [Runner.Run], and [RunWithOptions], e.g. to provide a done callback.
func Run(ctx context.Context, entry EntryFunc, args ...any) (Outcomes, error) {
	return RunWithOptions(ctx, entry, nil, args...)
}

// RunWithOptions creates a new [Runner] with opts, and runs entry with it.
// See [Runner.Run].
func RunWithOptions(ctx context.Context, entry EntryFunc, opts []RunnerOption, args ...any) (Outcomes, error) {
	r, err := NewRunner(opts...)
	if err != nil {
		return Outcomes{}, err
	}
	return r.Run(ctx, entry, args...)
}
