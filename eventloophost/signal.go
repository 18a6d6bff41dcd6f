package eventloophost

import (
	"strconv"

	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-hostguest/host"
)

type (
	// Signal is a named event source, belonging to an [App]. Connected
	// handlers are called synchronously, in connection order, by
	// [Signal.Emit].
	Signal struct {
		app  *App
		name string
		key  signalKey
	}

	signalKey struct {
		app *App
		id  uint64
	}
)

var (
	_ host.EventSource = (*Signal)(nil)
	_ host.Identifier  = (*Signal)(nil)
)

// NewSignal returns a new signal, unique within the app. The name is only
// informational.
func (a *App) NewSignal(name string) *Signal {
	id := a.nextSignalID.Add(1)
	return &Signal{
		app:  a,
		name: name,
		key:  signalKey{app: a, id: id},
	}
}

// Name returns the name the signal was created with.
func (s *Signal) Name() string {
	return s.name
}

// SourceID implements [host.Identifier].
func (s *Signal) SourceID() any {
	return s.key
}

func (s *Signal) eventType() string {
	return s.name + `#` + strconv.FormatUint(s.key.id, 10)
}

// Connect implements [host.EventSource]. The returned connection removes the
// listener.
func (s *Signal) Connect(handler host.Handler) (host.Connection, error) {
	if handler == nil {
		return nil, host.ErrNilHandler
	}
	eventType := s.eventType()
	id := s.app.target.AddEventListener(eventType, func(event *eventloop.Event) {
		args, _ := event.Detail().([]any)
		handler(args...)
	})
	return host.ConnectionFunc(func() {
		s.app.target.RemoveEventListenerByID(eventType, id)
	}), nil
}

// Emit calls every connected handler, with args, on the calling goroutine.
func (s *Signal) Emit(args ...any) {
	s.app.target.DispatchEvent(eventloop.NewCustomEvent(s.eventType(), args).EventPtr())
}

// EmitSoon schedules [Signal.Emit] on the loop goroutine. It may be called
// from any goroutine.
func (s *Signal) EmitSoon(args ...any) error {
	return s.app.Submit(func() { s.Emit(args...) })
}

// Listeners returns the number of connected handlers.
func (s *Signal) Listeners() int {
	return s.app.target.ListenerCount(s.eventType())
}
