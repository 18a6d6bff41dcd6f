package hostguest

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-hostguest/host"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

type (
	// fakeHost is a host.Host, with a single-goroutine loop, run by Exec.
	fakeHost struct {
		lastWindowClosed *fakeSource
		postErr          error
		queue            []func()
		cond             *sync.Cond
		mu               sync.Mutex
		code             int
		quitCalls        int
		posted           int
		closed           bool
		quitting         bool
		exited           bool
		quitOnLast       atomic.Bool
	}

	// fakeSource is a host.EventSource, emitted synchronously.
	fakeSource struct {
		name     string
		handlers map[int]host.Handler
		mu       sync.Mutex
		nextID   int
	}

	syncBuffer struct {
		b  bytes.Buffer
		mu sync.Mutex
	}
)

var errFakeHostExited = errors.New("fake host exited")

var (
	_ host.Host        = (*fakeHost)(nil)
	_ host.EventSource = (*fakeSource)(nil)
)

func newFakeHost() *fakeHost {
	h := &fakeHost{lastWindowClosed: newFakeSource(`lastWindowClosed`)}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Exec runs posted callbacks until quit, discarding any still queued.
func (h *fakeHost) Exec() int {
	for {
		h.mu.Lock()
		for len(h.queue) == 0 && !h.quitting {
			h.cond.Wait()
		}
		if h.quitting {
			code := h.code
			h.exited = true
			h.queue = nil
			h.mu.Unlock()
			return code
		}
		fn := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()
		fn()
	}
}

// execWithTimeout runs Exec, forcing an exit if it takes too long.
func (h *fakeHost) execWithTimeout(t *testing.T) int {
	t.Helper()
	timer := time.AfterFunc(10*time.Second, func() {
		t.Error("timed out waiting for the host to exit")
		h.Exit(-2)
	})
	defer timer.Stop()
	return h.Exec()
}

func (h *fakeHost) Quit() {
	h.mu.Lock()
	h.quitCalls++
	h.mu.Unlock()
	h.Exit(0)
}

func (h *fakeHost) Exit(code int) {
	h.mu.Lock()
	h.code = code
	h.quitting = true
	h.cond.Broadcast()
	h.mu.Unlock()
}

func (h *fakeHost) post(fn func()) {
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.posted++
	h.cond.Broadcast()
	h.mu.Unlock()
}

func (h *fakeHost) PostEvent(receiver host.EventReceiver, event *host.Event) error {
	if h.postErr != nil {
		return h.postErr
	}
	h.mu.Lock()
	exited := h.exited
	h.mu.Unlock()
	if exited {
		return errFakeHostExited
	}
	h.post(func() { receiver.Event(event) })
	return nil
}

func (h *fakeHost) QuitOnLastWindowClosed() bool { return h.quitOnLast.Load() }

func (h *fakeHost) SetQuitOnLastWindowClosed(enabled bool) { h.quitOnLast.Store(enabled) }

func (h *fakeHost) LastWindowClosed() host.EventSource { return h.lastWindowClosed }

func (h *fakeHost) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) quits() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quitCalls
}

func (h *fakeHost) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func newFakeSource(name string) *fakeSource {
	return &fakeSource{name: name, handlers: make(map[int]host.Handler)}
}

func (s *fakeSource) Connect(handler host.Handler) (host.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.handlers[id] = handler
	return host.ConnectionFunc(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}), nil
}

func (s *fakeSource) Emit(args ...any) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	// connection order
	slices.Sort(ids)
	for _, id := range ids {
		s.mu.Lock()
		handler := s.handlers[id]
		s.mu.Unlock()
		if handler != nil {
			handler(args...)
		}
	}
}

func (s *fakeSource) connected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.b.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.b.String()
}

// newTestLogger returns a debug level stumpy logger, writing to the returned
// buffer.
func newTestLogger() (*logiface.Logger[logiface.Event], *syncBuffer) {
	buf := new(syncBuffer)
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf)),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger(), buf
}

// runEntry runs entry to completion, with a new Runner, on h, failing the
// test if it takes too long.
func runEntry(t *testing.T, h *fakeHost, entry EntryFunc, opts ...RunnerOption) (*Runner, Outcomes) {
	t.Helper()
	r, err := NewRunner(append([]RunnerOption{WithApplication(h), WithLogger(nil)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	timer := time.AfterFunc(10*time.Second, func() {
		t.Error("timed out waiting for the runner")
		h.Exit(-2)
	})
	defer timer.Stop()
	outcomes, err := r.Run(context.Background(), entry)
	if err != nil {
		t.Fatal(err)
	}
	return r, outcomes
}
