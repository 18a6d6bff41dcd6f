package hostguest

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrNoOutcomes is returned by [Outcomes.Unwrap] if neither the host nor
	// the guest outcome has been recorded.
	ErrNoOutcomes = errors.New("hostguest: neither host nor guest outcome available")

	// ErrRunnerReused is returned on any attempt to start a [Runner] more than
	// once.
	ErrRunnerReused = errors.New("hostguest: runner may only be started once")

	// ErrInvalidState is returned (wrapped) by [Runner.Exec], if the runner
	// is not in a state where the host may be executed.
	ErrInvalidState = errors.New("hostguest: invalid runner state")

	// ErrHostExited is the cause used to cancel the guest, if the host loop
	// exits before it has finished.
	ErrHostExited = errors.New("hostguest: host loop exited before the guest finished")

	// ErrNilEntry is returned if the entry function is nil.
	ErrNilEntry = errors.New("hostguest: nil entry function")

	// ErrNilApplication is returned if an application factory returns a nil
	// host, without an error.
	ErrNilApplication = errors.New("hostguest: application factory returned nil")

	// ErrClosed is returned when receiving from [Emissions] that have been
	// closed, once there are no more emissions to receive.
	ErrClosed = errors.New("hostguest: emissions closed")

	// ErrCancelled is the cause of the cancellation of a [CancelScope].
	ErrCancelled = errors.New("hostguest: cancel scope cancelled")

	// ErrAmbiguousSource is wrapped by [AmbiguousSourceError].
	ErrAmbiguousSource = errors.New("hostguest: ambiguous event source comparison")
)

type (
	// ReturnCodeError indicates the host loop exited with a non-zero status.
	ReturnCodeError struct {
		Code int
	}

	// AmbiguousSourceError is raised (via panic) by [Emission.IsFrom], if
	// the identity of two event sources cannot be compared. This is an
	// internal consistency failure, caused by an event source implementation
	// that is neither comparable, nor implements [host.Identifier].
	AmbiguousSourceError struct {
		Source any
		Other  any
	}
)

func (e *ReturnCodeError) Error() string {
	return fmt.Sprintf("hostguest: host loop exited with status %d", e.Code)
}

func (e *AmbiguousSourceError) Error() string {
	return fmt.Sprintf("%s: %T and %T", ErrAmbiguousSource.Error(), e.Source, e.Other)
}

func (e *AmbiguousSourceError) Unwrap() error {
	return ErrAmbiguousSource
}
