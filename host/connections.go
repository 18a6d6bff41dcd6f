package host

import (
	"sync"
)

// Connections is a stack of scoped resources, primarily [Connection] values,
// released in reverse order of acquisition by [Connections.Close].
//
// Intended usage:
//
//	var conns host.Connections
//	defer conns.Close()
//	if err := conns.Connect(source, handler); err != nil {
//	    return err
//	}
//
// The zero value is ready to use. Connections is safe for concurrent use.
type Connections struct {
	releases []func()
	mu       sync.Mutex
	closed   bool
}

// Connect connects handler to source, pushing the connection onto the stack.
// If the stack has already been closed, the connection is immediately
// disconnected, and no error is returned.
func (x *Connections) Connect(source EventSource, handler Handler) error {
	conn, err := Connect(source, handler)
	if err != nil {
		return err
	}
	x.Push(conn)
	return nil
}

// Push adds conn to the stack.
func (x *Connections) Push(conn Connection) {
	if conn == nil {
		return
	}
	x.Defer(conn.Disconnect)
}

// Defer adds an arbitrary release function to the stack. If the stack has
// already been closed, fn is called immediately.
func (x *Connections) Defer(fn func()) {
	if fn == nil {
		return
	}
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		fn()
		return
	}
	x.releases = append(x.releases, fn)
	x.mu.Unlock()
}

// Len returns the number of unreleased entries.
func (x *Connections) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.releases)
}

// Close releases every entry, last in first out. Every release is attempted,
// even if an earlier one panics, after which the first panic is re-raised.
// Subsequent calls are no-ops.
func (x *Connections) Close() {
	x.mu.Lock()
	releases := x.releases
	x.releases = nil
	x.closed = true
	x.mu.Unlock()

	var (
		recovered any
		panicked  bool
	)
	for i := len(releases) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil && !panicked {
					recovered, panicked = r, true
				}
			}()
			releases[i]()
		}()
	}
	if panicked {
		panic(recovered)
	}
}
