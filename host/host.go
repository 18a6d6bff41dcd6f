// Package host models the surface required of a foreign, single-threaded host
// runtime (e.g. a GUI toolkit's application object), in order to bridge a
// cooperative guest scheduler into it.
//
// The host owns its thread and dispatches events on its own schedule. This
// package does not implement a host, it only specifies what one must offer:
//
//   - [Host.Exec] runs the event loop, blocking, returning a status code
//   - [Host.Quit] requests the loop exit
//   - [Host.PostEvent] posts a custom [Event] to an [EventReceiver], and is
//     the only method that must be safe to call from any goroutine
//   - [Host.LastWindowClosed] is a distinguished [EventSource], paired with a
//     flag controlling whether the host quits automatically when it fires
//
// Event sources are abstracted as [EventSource], connected via [Connect] and
// released via [Connection.Disconnect], usually through a [Connections] stack.
package host

import (
	"sync/atomic"
)

const (
	// UserEventType is the first event type available for registration.
	UserEventType EventType = 1000

	// MaxUserEventType is the last event type available for registration.
	MaxUserEventType EventType = 65535
)

type (
	// Host is the host runtime, as required by the bridge.
	Host interface {
		// Exec runs the host event loop, blocking until it exits, and
		// returns its status code, where 0 indicates success.
		Exec() int

		// Quit requests that the host event loop exit, with status 0. It
		// must not block, and may be called from within a host callback.
		Quit()

		// PostEvent queues event for delivery to receiver, on the host
		// thread, at the next opportunity. It must be safe to call from any
		// goroutine, must not block, and must deliver events posted to the
		// same receiver in post order.
		PostEvent(receiver EventReceiver, event *Event) error

		// QuitOnLastWindowClosed reports whether the host quits automatically
		// when LastWindowClosed fires.
		QuitOnLastWindowClosed() bool

		// SetQuitOnLastWindowClosed configures QuitOnLastWindowClosed.
		SetQuitOnLastWindowClosed(enabled bool)

		// LastWindowClosed returns the source that fires when the last
		// visible window is closed.
		LastWindowClosed() EventSource
	}

	// EventReceiver is an object living on the host thread, that may be the
	// target of [Host.PostEvent].
	EventReceiver interface {
		// Event is called by the host, on the host thread, to deliver event.
		// It must not block. The return value indicates whether the event
		// was handled, which may influence host-specific propagation.
		Event(event *Event) bool
	}

	// EventType identifies the kind of an [Event]. Custom types must be
	// obtained via [RegisterEventType].
	EventType int

	// Event is a host-native event, carrying an arbitrary payload.
	Event struct {
		Payload any
		Type    EventType
	}
)

// nextEventType is the last allocated event type
var nextEventType atomic.Int64

func init() {
	nextEventType.Store(int64(UserEventType) - 1)
}

// RegisterEventType allocates a new, process-unique, custom event type. A
// [*RegisterEventTypeError] is returned if the available range is exhausted.
func RegisterEventType() (EventType, error) {
	for {
		last := nextEventType.Load()
		if last >= int64(MaxUserEventType) {
			return 0, &RegisterEventTypeError{Message: `no event types remain available for registration`}
		}
		if nextEventType.CompareAndSwap(last, last+1) {
			return EventType(last + 1), nil
		}
	}
}

// MustRegisterEventType is like [RegisterEventType], but panics on error.
// It is intended for package-level initialisation.
func MustRegisterEventType() EventType {
	t, err := RegisterEventType()
	if err != nil {
		panic(err)
	}
	return t
}
