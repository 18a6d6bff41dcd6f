// Package outcome implements a small result union, holding either a success
// value or a failure, captured at the moment some operation concluded.
//
// Outcomes are immutable once created. The failure variant retains the stack
// of the goroutine that recorded it, so that a failure may be reported with
// its context long after (and far away from) the point where it occurred.
package outcome

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrNilError is substituted when NewError is given a nil error, as the
	// failure variant must always carry a failure.
	ErrNilError = errors.New("outcome: nil error")
)

type (
	// Outcome is either a [Value] or an [Error]. It is sealed, use the
	// constructors in this package, or the variant types directly.
	Outcome interface {
		// Unwrap returns the success value, or the failure as an error.
		Unwrap() (any, error)

		// IsError returns true if this is the failure variant.
		IsError() bool

		isOutcome()
	}

	// Value is the success variant.
	Value struct {
		Value any
	}

	// Error is the failure variant. Stack is optional, and if set, was
	// captured where the failure was recorded.
	Error struct {
		Err   error
		Stack []byte
	}

	// PanicError wraps a value recovered from a panic, converted to an
	// [Error] by [Capture].
	PanicError struct {
		Value any
	}
)

var (
	_ Outcome = Value{}
	_ Outcome = (*Error)(nil)
)

// NewValue returns a success Outcome.
func NewValue(v any) Outcome {
	return Value{Value: v}
}

// NewError returns a failure Outcome, capturing the current stack.
func NewError(err error) Outcome {
	if err == nil {
		err = ErrNilError
	}
	return &Error{Err: err, Stack: debug.Stack()}
}

// Capture calls fn, converting its result to an Outcome. A panic is recovered
// and converted to an Error wrapping a [PanicError], with the stack of the
// panicking goroutine. The panic is not propagated.
func Capture(fn func() (any, error)) (result Outcome) {
	defer func() {
		if r := recover(); r != nil {
			result = &Error{Err: PanicError{Value: r}, Stack: debug.Stack()}
		}
	}()
	v, err := fn()
	if err != nil {
		return NewError(err)
	}
	return NewValue(v)
}

// Unwrap returns the value and a nil error.
func (x Value) Unwrap() (any, error) { return x.Value, nil }

// IsError always returns false.
func (x Value) IsError() bool { return false }

func (x Value) isOutcome() {}

// String implements fmt.Stringer.
func (x Value) String() string { return fmt.Sprintf("Value(%v)", x.Value) }

// Unwrap returns a nil value and the failure.
func (x *Error) Unwrap() (any, error) { return nil, x.Err }

// IsError always returns true.
func (x *Error) IsError() bool { return true }

func (x *Error) isOutcome() {}

// String implements fmt.Stringer.
func (x *Error) String() string { return fmt.Sprintf("Error(%v)", x.Err) }

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("outcome: panic: %v", e.Value)
}

// Unwrap returns the panic value, if it was an error, enabling
// [errors.Is] and [errors.As] through the recovered value.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
