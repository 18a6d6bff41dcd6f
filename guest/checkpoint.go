// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package guest

import (
	"context"
	"time"
)

// Checkpoint returns ctx.Err() if ctx is already done, otherwise it yields,
// allowing other ready tasks (and the host) to run, then returns ctx.Err().
func Checkpoint(ctx context.Context) error {
	t, err := currentTask(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.run.wake(t)
	t.park()
	return ctx.Err()
}

// Sleep suspends the calling task for at least d, or until ctx is done. The
// timer fires off the host thread, and wakes the task via the run's re-entry
// function. A non-positive d is equivalent to [Checkpoint].
func Sleep(ctx context.Context, d time.Duration) error {
	t, err := currentTask(ctx)
	if err != nil {
		return err
	}
	if d <= 0 {
		return Checkpoint(ctx)
	}

	deadline := time.Now().Add(d)
	timer := time.AfterFunc(d, func() { t.run.wake(t) })
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !time.Now().Before(deadline) {
			return nil
		}
		t.suspend(ctx)
	}
}

// WaitAllTasksBlocked yields until every other task in the run is suspended,
// waiting on something other than the scheduler itself. Intended for tests,
// e.g. to let handlers and consumers settle after triggering host events.
func WaitAllTasksBlocked(ctx context.Context) error {
	t, err := currentTask(ctx)
	if err != nil {
		return err
	}
	for {
		if err := Checkpoint(ctx); err != nil {
			return err
		}
		t.run.mu.Lock()
		busy := len(t.run.ready) + t.run.pending
		t.run.mu.Unlock()
		if busy == 0 {
			return nil
		}
	}
}
