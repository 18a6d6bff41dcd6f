package guest

import (
	"errors"
)

// Standard errors.
var (
	// ErrNotInGuest is returned by operations that must be called from a
	// guest task (identified by its context), when called from elsewhere.
	ErrNotInGuest = errors.New("guest: not called from a running guest task")

	// ErrNilReenter is returned by Start if the re-entry function is nil.
	ErrNilReenter = errors.New("guest: nil reenter function")

	// ErrNilDone is returned by Start if the done callback is nil.
	ErrNilDone = errors.New("guest: nil done callback")

	// ErrNilMain is returned by Start if the main function is nil.
	ErrNilMain = errors.New("guest: nil main function")

	// ErrMainReturned is the cause used to cancel any tasks still running,
	// after the main task has returned.
	ErrMainReturned = errors.New("guest: main task returned")
)
