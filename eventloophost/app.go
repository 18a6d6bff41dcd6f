package eventloophost

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-hostguest/host"
	"github.com/joeycumines/logiface"
)

// ExitAlreadyRunning is the status returned by [App.Exec] if the loop is
// already running (e.g. on another goroutine).
const ExitAlreadyRunning = -1

// App is an application object, implementing [host.Host].
type App struct {
	// Prevent copying
	_ [0]func()

	loop             *eventloop.Loop
	target           *eventloop.EventTarget
	logger           *logiface.Logger[logiface.Event]
	lastWindowClosed *Signal
	// cancelled to stop the loop, see Exit
	runCtx context.Context
	stop   context.CancelFunc

	// guarded by mu
	visible map[*Window]struct{}
	exited  bool

	exitCode     atomic.Int64
	nextSignalID atomic.Uint64
	quitOnLast   atomic.Bool
	quitting     atomic.Bool

	mu sync.Mutex
}

var _ host.Host = (*App)(nil)

// New creates a new App, and its underlying loop.
func New(opts ...Option) (*App, error) {
	cfg, err := resolveAppOptions(opts)
	if err != nil {
		return nil, err
	}

	loopOpts := cfg.loopOptions
	if cfg.logger != nil {
		loopOpts = append(append([]eventloop.LoopOption(nil), loopOpts...), eventloop.WithLogger(cfg.logger))
	}

	loop, err := eventloop.New(loopOpts...)
	if err != nil {
		return nil, fmt.Errorf("eventloophost: new loop: %w", err)
	}

	a := &App{
		loop:    loop,
		target:  eventloop.NewEventTarget(),
		logger:  cfg.logger,
		visible: make(map[*Window]struct{}),
	}
	a.runCtx, a.stop = context.WithCancel(context.Background())
	a.quitOnLast.Store(cfg.quitOnLastWindowClosed)
	a.lastWindowClosed = a.NewSignal(`lastWindowClosed`)

	return a, nil
}

// Loop returns the underlying loop.
func (a *App) Loop() *eventloop.Loop {
	return a.loop
}

// Exec runs the loop on the calling goroutine, until [App.Quit] or
// [App.Exit] is called, returning the exit code. The loop terminates on the
// calling goroutine, and once Exec returns, nothing further is run, with
// [App.PostEvent] and [App.Submit] failing with eventloop.ErrLoopTerminated.
func (a *App) Exec() int {
	a.logger.Debug().
		Log(`app exec started`)

	err := a.loop.Run(a.runCtx)
	switch {
	case err == nil, errors.Is(err, eventloop.ErrLoopTerminated), errors.Is(err, context.Canceled):
	case errors.Is(err, eventloop.ErrLoopAlreadyRunning):
		a.logger.Err().
			Err(err).
			Log(`app exec failed`)
		return ExitAlreadyRunning
	default:
		// still report the code, but make the failure visible
		a.logger.Err().
			Err(err).
			Log(`app loop exited with error`)
	}

	a.mu.Lock()
	a.exited = true
	a.mu.Unlock()

	code := int(a.exitCode.Load())

	a.logger.Debug().
		Int(`code`, code).
		Log(`app exec finished`)

	return code
}

// Quit is equivalent to Exit(0).
func (a *App) Quit() {
	a.Exit(0)
}

// Exit requests that the loop exit, with the given status. The loop stops
// on its own goroutine, see [App.Exec]. It never blocks, and may be called
// from any goroutine, including the loop. The code from the last call, made
// before [App.Exec] returns, is used.
func (a *App) Exit(code int) {
	a.exitCode.Store(int64(code))
	if !a.quitting.CompareAndSwap(false, true) {
		return
	}

	a.logger.Debug().
		Int(`code`, code).
		Log(`app exit requested`)

	a.stop()
}

// Close releases the resources of the loop. It should be called after
// [App.Exec] returns, or if it was never called.
func (a *App) Close() error {
	a.mu.Lock()
	a.exited = true
	a.mu.Unlock()
	a.stop()
	if err := a.loop.Close(); err != nil && !errors.Is(err, eventloop.ErrLoopTerminated) {
		return err
	}
	return nil
}

// Submit runs fn on the loop goroutine. It may be called from any goroutine.
func (a *App) Submit(fn func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.exited {
		return eventloop.ErrLoopTerminated
	}
	return a.loop.Submit(fn)
}

// PostEvent implements [host.Host.PostEvent], delivering event to receiver
// on the loop goroutine, preserving post order.
func (a *App) PostEvent(receiver host.EventReceiver, event *host.Event) error {
	if receiver == nil {
		return ErrNilReceiver
	}
	if event == nil {
		return ErrNilEvent
	}
	if err := a.Submit(func() { receiver.Event(event) }); err != nil {
		return fmt.Errorf("eventloophost: post event: %w", err)
	}
	return nil
}

// QuitOnLastWindowClosed implements [host.Host.QuitOnLastWindowClosed].
func (a *App) QuitOnLastWindowClosed() bool {
	return a.quitOnLast.Load()
}

// SetQuitOnLastWindowClosed implements [host.Host.SetQuitOnLastWindowClosed].
func (a *App) SetQuitOnLastWindowClosed(enabled bool) {
	a.quitOnLast.Store(enabled)
}

// LastWindowClosed implements [host.Host.LastWindowClosed], see also
// [App.LastWindowClosedSignal].
func (a *App) LastWindowClosed() host.EventSource {
	return a.lastWindowClosed
}

// LastWindowClosedSignal returns the signal emitted when the last visible
// window is closed. It is emitted without arguments.
func (a *App) LastWindowClosedSignal() *Signal {
	return a.lastWindowClosed
}

// VisibleWindows returns the number of shown, unclosed, windows.
func (a *App) VisibleWindows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.visible)
}

func (a *App) windowClosed(w *Window) {
	a.mu.Lock()
	if _, ok := a.visible[w]; !ok {
		a.mu.Unlock()
		return
	}
	delete(a.visible, w)
	last := len(a.visible) == 0
	a.mu.Unlock()

	w.closed.Emit()

	if !last {
		return
	}

	a.logger.Debug().
		Log(`last window closed`)

	a.lastWindowClosed.Emit()

	if a.quitOnLast.Load() {
		a.Quit()
	}
}
