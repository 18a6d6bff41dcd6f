package hostguest

import (
	"github.com/joeycumines/go-hostguest/host"
)

// ReenterEventType is the host event type used to carry re-entry callbacks.
// It is registered on initialisation of this package, which panics if no
// event types remain available.
var ReenterEventType = host.MustRegisterEventType()

// Reenter is the [host.EventReceiver] that runs re-entry callbacks, posted
// as events of type [ReenterEventType], on the host thread.
type Reenter struct{}

var _ host.EventReceiver = Reenter{}

// NewReenterEvent returns a host event carrying fn, for delivery to a
// [Reenter] receiver.
func NewReenterEvent(fn func()) *host.Event {
	return &host.Event{Type: ReenterEventType, Payload: fn}
}

// Event runs the callback carried by a re-entry event, at most once per
// event. Events of any other type are ignored. It always returns false,
// leaving the event unhandled, from the host's perspective.
func (Reenter) Event(event *host.Event) bool {
	if event == nil || event.Type != ReenterEventType {
		return false
	}
	fn, _ := event.Payload.(func())
	event.Payload = nil
	if fn != nil {
		fn()
	}
	return false
}
