// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package hostguest

import (
	"context"
	"errors"
	"sync/atomic"
)

// CancelScope is a region of guest execution that may be cancelled,
// externally, from any goroutine. Code running within the scope observes the
// cancellation at its next suspension point, as ctx.Err().
type CancelScope struct {
	ctx       context.Context
	cancel    context.CancelCauseFunc
	cancelled atomic.Bool
}

// errScopeExited is the cause used to release the scope's context.
var errScopeExited = errors.New("hostguest: cancel scope exited")

// NewCancelScope returns a new scope, within parent.
func NewCancelScope(parent context.Context) *CancelScope {
	s := &CancelScope{}
	s.ctx, s.cancel = context.WithCancelCause(parent)
	return s
}

// Context returns the context of the scope.
func (s *CancelScope) Context() context.Context {
	return s.ctx
}

// Cancel cancels the scope, with ErrCancelled as the cause. It may be called
// from any goroutine, any number of times.
func (s *CancelScope) Cancel() {
	s.cancelled.Store(true)
	s.cancel(ErrCancelled)
}

// Cancelled reports whether Cancel has been called.
func (s *CancelScope) Cancelled() bool {
	return s.cancelled.Load()
}

// Run calls fn with the scope's context, then releases the scope.
//
// If the scope was cancelled, and fn failed due to that cancellation, the
// failure is absorbed, and Run returns a nil value and error. Cancellation
// from the parent context is not absorbed.
func (s *CancelScope) Run(fn func(ctx context.Context) (any, error)) (any, error) {
	defer s.cancel(errScopeExited)
	value, err := fn(s.ctx)
	if err != nil && s.absorbs(err) {
		return nil, nil
	}
	return value, err
}

func (s *CancelScope) absorbs(err error) bool {
	if !s.Cancelled() || !errors.Is(context.Cause(s.ctx), ErrCancelled) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled)
}
