// Package guest implements a cooperative task scheduler that runs in "guest
// mode", executing only when invited in by a foreign host event loop.
//
// # Execution Model
//
// A [Run] is started with a re-entry function, which must arrange for a
// callback to be invoked on the host thread "soon", and be safe to call from
// any goroutine. Every time the scheduler has work to do, it requests one
// step via that function. A step resumes each ready task, in FIFO order, and
// waits for it to suspend or finish, before returning control to the host.
//
// Each task is backed by a goroutine, but tasks only run while they hold the
// baton, handed over by the step. At any given moment, exactly one of the host
// callback or a single task is executing, making the interleaving equivalent
// to that of a single-threaded cooperative runtime.
//
// Tasks suspend only at explicit points:
//   - [Checkpoint], which checks for cancellation and yields
//   - [Sleep]
//   - [Event.Wait]
//   - [Group.Wait]
//   - [WaitAllTasksBlocked]
//
// Tasks MUST NOT block by other means (e.g. receiving from a channel fed by
// the host thread), as that would freeze the host.
//
// # Cancellation
//
// Cancellation is modelled with [context.Context]. Every suspension point
// observes the task's context, and returns its error once it is done. Wake-ups
// triggered off the host thread (timers, context cancellation) are routed
// through the re-entry function, which is the only cross-thread boundary.
//
// # Completion
//
// When the main task returns, any remaining tasks are cancelled and drained,
// then the done callback is invoked exactly once, on the host thread, with the
// main task's [outcome.Outcome].
package guest
