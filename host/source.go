package host

import (
	"sync"
)

type (
	// Handler receives the arguments of one firing of an [EventSource].
	// Handlers are called on the host thread, and must not block.
	Handler func(args ...any)

	// EventSource is a host-native thing that can be told to invoke a handler
	// when a condition fires (e.g. a toolkit signal).
	//
	// Implementations should also implement [Identifier], if the same logical
	// source may be represented by different values.
	EventSource interface {
		Connect(handler Handler) (Connection, error)
	}

	// Identifier may be implemented by an [EventSource] to supply a
	// canonical, comparable, identity key.
	Identifier interface {
		SourceID() any
	}

	// Connection is the link between an [EventSource] and a [Handler].
	// Disconnect severs it. Connections returned by [Connect] may be
	// disconnected any number of times.
	Connection interface {
		Disconnect()
	}

	// ConnectionFunc adapts a function to a [Connection].
	ConnectionFunc func()

	onceConnection struct {
		conn Connection
		once sync.Once
	}
)

// Disconnect calls the function.
func (f ConnectionFunc) Disconnect() { f() }

// Connect connects handler to source, returning a connection that may be
// safely disconnected more than once.
func Connect(source EventSource, handler Handler) (Connection, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	conn, err := source.Connect(handler)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		conn = ConnectionFunc(func() {})
	}
	return &onceConnection{conn: conn}, nil
}

func (x *onceConnection) Disconnect() {
	x.once.Do(x.conn.Disconnect)
}
