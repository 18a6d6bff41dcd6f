package hostguest

import (
	"context"
	"errors"
	"time"
)

// BatchConfig tunes how [Emissions.ReceiveBatch] groups emissions, e.g. so
// a guest task can coalesce bursts of host events into one redraw. The zero
// value uses the defaults.
type BatchConfig struct {
	// MaxSize caps the emissions handled per call. Negative means no cap.
	// Zero means 16.
	MaxSize int

	// MinSize is how many emissions the task waits for before the call may
	// return. Zero means 4.
	//
	// Once the first emission arrives, PartialTimeout bounds the wait for the
	// rest, after which any non-empty batch is accepted. If negative, the
	// timeout bounds the wait for the first emission instead, and the call
	// may return having handled none.
	MinSize int

	// PartialTimeout bounds the wait for a batch smaller than MinSize, see
	// MinSize. Zero means 50ms, and negative means wait for MinSize.
	PartialTimeout time.Duration
}

func (x *BatchConfig) resolve() (maxSize, minSize int, partialTimeout time.Duration) {
	maxSize, minSize, partialTimeout = 16, 4, 50*time.Millisecond
	if x == nil {
		return
	}
	if x.MaxSize != 0 {
		maxSize = x.MaxSize
	}
	if x.MinSize != 0 {
		minSize = x.MinSize
	}
	if x.PartialTimeout != 0 {
		partialTimeout = x.PartialTimeout
	}
	return
}

// ReceiveBatch suspends the calling guest task until a batch of emissions is
// ready, as per cfg (which may be nil), then passes each, in emission order,
// to handler. Everything already buffered is handled, up to MaxSize, without
// suspending again. A handler error stops the batch, and is returned.
//
// ErrClosed is returned once the stream has closed and its buffer is empty,
// possibly after handling a short batch.
//
// Waiting requires a guest task, as per [Emissions.Receive]. Panics if ctx
// or handler is nil.
func (x *Emissions) ReceiveBatch(ctx context.Context, cfg *BatchConfig, handler func(emission Emission) error) error {
	if ctx == nil {
		panic(`hostguest: nil context`)
	}
	if handler == nil {
		panic(`hostguest: nil handler`)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	maxSize, minSize, partialTimeout := cfg.resolve()

	// non-nil once the partial timeout has started
	var (
		partialCtx  context.Context
		stopPartial context.CancelFunc
	)
	defer func() {
		if stopPartial != nil {
			stopPartial()
		}
	}()
	startPartial := func() {
		partialCtx, stopPartial = context.WithTimeout(ctx, partialTimeout)
	}
	if partialTimeout > 0 && minSize < 0 {
		startPartial()
	}

	var size int

	// wait for MinSize, or a partial batch once the timeout expires
	for (maxSize < 0 || size < maxSize) && (size < minSize || (size == 0 && partialCtx != nil)) {
		waitCtx := ctx
		if partialCtx != nil {
			waitCtx = partialCtx
		}

		value, err := x.Receive(waitCtx)
		if err != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			if partialCtx != nil && errors.Is(err, context.DeadlineExceeded) && partialCtx.Err() != nil {
				break
			}
			return err
		}

		size++

		if size == 1 && partialTimeout > 0 && partialCtx == nil {
			startPartial()
		}

		if err := handler(value); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	// then take whatever is already buffered
	for maxSize < 0 || size < maxSize {
		x.mu.Lock()
		value, ok, closed := x.popLocked()
		x.mu.Unlock()

		if closed {
			return ErrClosed
		}
		if !ok {
			break
		}

		size++

		if err := handler(value); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
