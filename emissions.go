package hostguest

import (
	"context"
	"sync"

	"github.com/joeycumines/go-hostguest/guest"
	"github.com/joeycumines/go-hostguest/host"
)

// Emissions is a stream of [Emission] values, collected from one or more
// event sources, in the order they fired. The buffer is unbounded, so the
// host is never blocked.
//
// Receiving, if it needs to wait, must be performed from a guest task.
type Emissions struct {
	conns host.Connections
	queue []Emission
	// signal is set, and replaced, whenever the state changes
	signal     *guest.Event
	mu         sync.Mutex
	sendClosed bool
	recvClosed bool
}

// OpenEmissions connects to every source, returning the stream of their
// emissions. If any connection fails, those already made are released, and
// the error is returned. The stream must be closed, see [Emissions.Close].
func OpenEmissions(sources ...host.EventSource) (*Emissions, error) {
	x := &Emissions{signal: guest.NewEvent()}
	for _, source := range sources {
		if err := x.conns.Connect(source, x.handler(source)); err != nil {
			x.conns.Close()
			return nil, err
		}
	}
	return x, nil
}

func (x *Emissions) handler(source host.EventSource) host.Handler {
	return func(args ...any) {
		x.mu.Lock()
		if x.sendClosed {
			x.mu.Unlock()
			return
		}
		x.queue = append(x.queue, Emission{Source: source, Args: args})
		signal := x.notifyLocked()
		x.mu.Unlock()
		signal.Set()
	}
}

// notifyLocked swaps out the signal, returning the old one, to be set
// outside the lock.
func (x *Emissions) notifyLocked() *guest.Event {
	signal := x.signal
	x.signal = guest.NewEvent()
	return signal
}

// Receive returns the next emission, waiting if necessary. ErrClosed is
// returned if the stream is closed, and (if only closed for sending) empty.
// If ctx is done, ctx.Err() is returned.
func (x *Emissions) Receive(ctx context.Context) (Emission, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Emission{}, err
		}

		x.mu.Lock()
		value, ok, closed := x.popLocked()
		signal := x.signal
		x.mu.Unlock()

		if ok {
			return value, nil
		}
		if closed {
			return Emission{}, ErrClosed
		}

		if err := signal.Wait(ctx); err != nil {
			return Emission{}, err
		}
	}
}

// TryReceive returns the next emission, if one is immediately available.
func (x *Emissions) TryReceive() (Emission, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	value, ok, _ := x.popLocked()
	return value, ok
}

// popLocked returns the next emission, if any, or whether the stream has
// been exhausted.
func (x *Emissions) popLocked() (value Emission, ok bool, closed bool) {
	if x.recvClosed {
		return Emission{}, false, true
	}
	if len(x.queue) == 0 {
		return Emission{}, false, x.sendClosed
	}
	value = x.queue[0]
	x.queue[0] = Emission{}
	x.queue = x.queue[1:]
	if len(x.queue) == 0 {
		x.queue = nil
	}
	return value, true, false
}

// Len returns the number of buffered emissions.
func (x *Emissions) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.queue)
}

// CloseSend disconnects from every source. Buffered emissions may still be
// received, after which ErrClosed is returned. Emissions firing concurrently
// with CloseSend may or may not be buffered.
func (x *Emissions) CloseSend() {
	x.close(false)
}

// Close disconnects from every source, and discards any buffered
// emissions. Pending and subsequent receives return ErrClosed.
func (x *Emissions) Close() {
	x.close(true)
}

func (x *Emissions) close(recv bool) {
	x.mu.Lock()
	x.sendClosed = true
	if recv {
		x.recvClosed = true
		x.queue = nil
	}
	signal := x.notifyLocked()
	x.mu.Unlock()

	x.conns.Close()
	signal.Set()
}

// EnterEmissions opens a stream of emissions from sources, calls fn with it,
// then closes it, regardless of how fn exits.
func EnterEmissions(ctx context.Context, sources []host.EventSource, fn func(ctx context.Context, emissions *Emissions) error) error {
	emissions, err := OpenEmissions(sources...)
	if err != nil {
		return err
	}
	defer emissions.Close()
	return fn(ctx, emissions)
}

// WaitForNextEmission waits for source to fire, returning the arguments.
// Emissions prior to the call are not observed, see [WaitFiredAround].
func WaitForNextEmission(ctx context.Context, source host.EventSource) ([]any, error) {
	emissions, err := OpenEmissions(source)
	if err != nil {
		return nil, err
	}
	defer emissions.Close()
	emission, err := emissions.Receive(ctx)
	if err != nil {
		return nil, err
	}
	return emission.Args, nil
}

// WaitUntilFired is like [WaitForNextEmission], discarding the arguments.
func WaitUntilFired(ctx context.Context, source host.EventSource) error {
	_, err := WaitForNextEmission(ctx, source)
	return err
}

// WaitFiredAround connects to source, calls fn, and, if fn succeeds, waits
// until source has fired, either during fn, or after it.
func WaitFiredAround(ctx context.Context, source host.EventSource, fn func(ctx context.Context) error) error {
	emissions, err := OpenEmissions(source)
	if err != nil {
		return err
	}
	defer emissions.Close()
	if err := fn(ctx); err != nil {
		return err
	}
	_, err = emissions.Receive(ctx)
	return err
}
