package guest

import (
	"context"
	"sync"

	"github.com/joeycumines/go-hostguest/outcome"
)

// Group runs child tasks, scoped to the lifetime of the group, in the manner
// of errgroup, but cooperatively. The first child to fail cancels the rest.
// A group must be waited on, see [Group.Wait].
//
// A group that has finished without failure may be reused, by calling
// [Group.Go] again. Once a child has failed, or the group was cancelled, its
// context stays cancelled, and later children start already cancelled.
type Group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	run    *Run
	idle   *Event
	err    error
	count  int
	mu     sync.Mutex
}

// NewGroup returns a new group, whose children run with a context derived
// from ctx. It must be called from a guest task.
func NewGroup(ctx context.Context) (*Group, error) {
	t, err := currentTask(ctx)
	if err != nil {
		return nil, err
	}
	g := &Group{run: t.run}
	g.ctx, g.cancel = context.WithCancelCause(ctx)
	return g, nil
}

// Context returns the context shared by the group's children, which is
// cancelled when the first child fails, or the group is cancelled.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Cancel cancels every child of the group.
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Go starts fn as a new task, in the group. It may be called from any guest
// task, or from the host thread.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.mu.Lock()
	g.count++
	if g.idle == nil || g.idle.IsSet() {
		g.idle = NewEvent()
	}
	g.mu.Unlock()

	g.run.spawn(g.ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	}, g.childDone)
}

func (g *Group) childDone(o outcome.Outcome) {
	if _, err := o.Unwrap(); err != nil {
		g.mu.Lock()
		if g.err == nil {
			g.err = err
		}
		g.mu.Unlock()
		g.cancel(err)
	}

	g.mu.Lock()
	g.count--
	idle := g.idle
	zero := g.count == 0
	g.mu.Unlock()

	if zero {
		idle.Set()
	}
}

// Wait suspends the calling task until every child has finished, returning
// the first error. If ctx is done first, the children are cancelled, and are
// still waited for, before returning. In that case, if no child failed,
// ctx.Err() is returned.
func (g *Group) Wait(ctx context.Context) error {
	if _, err := currentTask(ctx); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { g.cancel(context.Cause(ctx)) })
	defer stop()

	// children must always be waited for, so don't observe ctx, here
	waitCtx := context.WithoutCancel(ctx)
	for {
		g.mu.Lock()
		count, idle := g.count, g.idle
		g.mu.Unlock()
		if count == 0 {
			break
		}
		if err := idle.Wait(waitCtx); err != nil {
			return err
		}
	}

	g.mu.Lock()
	err := g.err
	g.mu.Unlock()

	if err == nil {
		err = ctx.Err()
	}

	return err
}
