package host

import (
	"errors"
)

// Standard errors.
var (
	// ErrNilSource is returned by Connect if the source is nil.
	ErrNilSource = errors.New("host: nil event source")

	// ErrNilHandler is returned by Connect if the handler is nil.
	ErrNilHandler = errors.New("host: nil handler")

	// ErrRegisterEventType is matched by [RegisterEventTypeError], via
	// [errors.Is].
	ErrRegisterEventType = errors.New("host: failed to register event type")
)

// RegisterEventTypeError indicates that a custom event type could not be
// registered. It is a setup error, and is not retried.
type RegisterEventTypeError struct {
	Message string
}

// Error implements the error interface.
func (e *RegisterEventTypeError) Error() string {
	if e.Message == "" {
		return ErrRegisterEventType.Error()
	}
	return ErrRegisterEventType.Error() + ": " + e.Message
}

// Is allows matching against [ErrRegisterEventType].
func (e *RegisterEventTypeError) Is(target error) bool {
	return target == ErrRegisterEventType
}
