package guest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_setFromForeignGoroutine(t *testing.T) {
	e := NewEvent()
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		time.AfterFunc(10*time.Millisecond, e.Set)
		if err := e.Wait(ctx); err != nil {
			return nil, err
		}
		if !e.IsSet() {
			return nil, errors.New("expected event to be set")
		}
		// already set
		return nil, e.Wait(ctx)
	}).Unwrap()
	require.NoError(t, err)
}

func TestEvent_Wait_cancelled(t *testing.T) {
	e := NewEvent()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := runGuest(t, ctx, func(ctx context.Context) (any, error) {
		return nil, e.Wait(ctx)
	}).Unwrap()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, e.IsSet())
	e.mu.Lock()
	assert.Empty(t, e.waiters)
	e.mu.Unlock()
	// setting after the waiter gave up must not wake a finished task
	e.Set()
	e.Set()
}

func TestEvent_wakesInOrder(t *testing.T) {
	var order []int
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		e := NewEvent()
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		for i := 0; i < 4; i++ {
			g.Go(func(ctx context.Context) error {
				if err := e.Wait(ctx); err != nil {
					return err
				}
				order = append(order, i)
				return nil
			})
		}
		if err := WaitAllTasksBlocked(ctx); err != nil {
			return nil, err
		}
		e.Set()
		return nil, g.Wait(ctx)
	}).Unwrap()
	require.NoError(t, err)
	if diff := cmp.Diff([]int{0, 1, 2, 3}, order); diff != "" {
		t.Errorf("unexpected wake order (-want +got):\n%s", diff)
	}
}

func TestGroup_firstErrorCancelsSiblings(t *testing.T) {
	failure := errors.New("child failed")
	var siblingCause error
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		g.Go(func(ctx context.Context) error {
			err := NewEvent().Wait(ctx)
			siblingCause = context.Cause(ctx)
			return err
		})
		g.Go(func(ctx context.Context) error {
			if err := Checkpoint(ctx); err != nil {
				return err
			}
			return failure
		})
		err = g.Wait(ctx)
		if g.Context().Err() == nil {
			return nil, errors.New("expected the group context to be cancelled")
		}
		return nil, err
	}).Unwrap()
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, siblingCause, failure)
}

func TestGroup_Wait_outerCancelled(t *testing.T) {
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		var childDone bool
		g.Go(func(ctx context.Context) error {
			defer func() { childDone = true }()
			return Sleep(ctx, time.Hour)
		})
		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		err = g.Wait(waitCtx)
		if !childDone {
			return nil, errors.New("expected the child to have been waited for")
		}
		return nil, err
	}).Unwrap()
	// the child's own error is the first error
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroup_reuseAfterIdle(t *testing.T) {
	var count int
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		for round := 0; round < 3; round++ {
			g.Go(func(ctx context.Context) error {
				count++
				return Checkpoint(ctx)
			})
			if err := g.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGroup_reuseAfterFailure(t *testing.T) {
	failure := errors.New("first round failed")
	var secondRound error
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		g.Go(func(ctx context.Context) error { return failure })
		if err := g.Wait(ctx); !errors.Is(err, failure) {
			return nil, fmt.Errorf("unexpected first round error: %v", err)
		}
		g.Go(func(ctx context.Context) error {
			secondRound = ctx.Err()
			return nil
		})
		return nil, g.Wait(ctx)
	}).Unwrap()
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, secondRound, context.Canceled)
}

func TestWaitAllTasksBlocked(t *testing.T) {
	var reached [3]bool
	_, err := runGuest(t, context.Background(), func(ctx context.Context) (any, error) {
		release := NewEvent()
		g, err := NewGroup(ctx)
		if err != nil {
			return nil, err
		}
		for i := range reached {
			g.Go(func(ctx context.Context) error {
				for j := 0; j <= i*2; j++ {
					if err := Checkpoint(ctx); err != nil {
						return err
					}
				}
				reached[i] = true
				return release.Wait(ctx)
			})
		}
		if err := WaitAllTasksBlocked(ctx); err != nil {
			return nil, err
		}
		for i, ok := range reached {
			if !ok {
				return nil, errors.New("task not blocked: " + string(rune('0'+i)))
			}
		}
		release.Set()
		return nil, g.Wait(ctx)
	}).Unwrap()
	require.NoError(t, err)
}
