package hostguest

import (
	"context"

	"github.com/joeycumines/go-hostguest/guest"
	"github.com/joeycumines/go-hostguest/outcome"
)

type (
	// EntryFunc is the application's main function, run as a guest.
	EntryFunc func(ctx context.Context, args ...any) (any, error)

	// Guest starts guest runs, i.e. it is the guest scheduler.
	//
	// StartGuest must arrange for main to be run, cooperatively, entirely
	// within callbacks passed to reenter, which must be safe to call from any
	// goroutine. The done callback must be called exactly once, via a
	// reenter callback (or [GuestRun.Drain]), with the outcome of main. An
	// error must only be returned if done will not be called.
	Guest interface {
		StartGuest(ctx context.Context, main func(ctx context.Context) (any, error), reenter func(fn func()), done func(o outcome.Outcome)) (GuestRun, error)
	}

	// GuestRun is a started guest run.
	GuestRun interface {
		// Drain is called on the host thread, after the host loop exited,
		// if the done callback has not been called. It must cancel the run,
		// with cause, then finish it on the calling goroutine, calling done,
		// without using reenter.
		Drain(cause error)
	}

	// GuestFunc adapts a function to a [Guest].
	GuestFunc func(ctx context.Context, main func(ctx context.Context) (any, error), reenter func(fn func()), done func(o outcome.Outcome)) (GuestRun, error)

	schedulerGuest struct {
		opts []guest.Option
	}
)

var _ GuestRun = (*guest.Run)(nil)

// StartGuest calls the function.
func (f GuestFunc) StartGuest(ctx context.Context, main func(ctx context.Context) (any, error), reenter func(fn func()), done func(o outcome.Outcome)) (GuestRun, error) {
	return f(ctx, main, reenter, done)
}

// DefaultGuest returns a [Guest] backed by the cooperative scheduler
// implemented by package guest.
func DefaultGuest(opts ...guest.Option) Guest {
	return &schedulerGuest{opts: opts}
}

func (x *schedulerGuest) StartGuest(ctx context.Context, main func(ctx context.Context) (any, error), reenter func(fn func()), done func(o outcome.Outcome)) (GuestRun, error) {
	run, err := guest.Start(ctx, main, reenter, done, x.opts...)
	if err != nil {
		return nil, err
	}
	return run, nil
}
