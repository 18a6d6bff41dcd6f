package guest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-hostguest/outcome"
)

// testLoop is a minimal single-goroutine host loop, with an unbounded,
// thread-safe, post queue.
type testLoop struct {
	cond    *sync.Cond
	queue   []func()
	posted  int
	mu      sync.Mutex
	stopped bool
}

func newTestLoop() *testLoop {
	l := &testLoop{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *testLoop) post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.posted++
	l.cond.Signal()
	l.mu.Unlock()
}

func (l *testLoop) postCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.posted
}

func (l *testLoop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Signal()
	l.mu.Unlock()
}

// run processes posted callbacks on the calling goroutine, until stopped.
func (l *testLoop) run() {
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

// runGuest starts main in guest mode on a new testLoop, driving the loop on
// the calling goroutine until the done callback fires, or the timeout
// elapses (which fails the test).
func runGuest(t *testing.T, ctx context.Context, main MainFunc) outcome.Outcome {
	t.Helper()

	loop := newTestLoop()

	var (
		result outcome.Outcome
		calls  int
	)
	_, err := Start(ctx, main, loop.post, func(o outcome.Outcome) {
		calls++
		result = o
		loop.stop()
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	timer := time.AfterFunc(10*time.Second, func() {
		t.Error("timed out waiting for the guest run to finish")
		loop.stop()
	})
	defer timer.Stop()

	loop.run()

	if result == nil {
		t.Fatal("done callback was not called")
	}
	if calls != 1 {
		t.Fatalf("expected done to be called exactly once, got %d", calls)
	}

	return result
}
