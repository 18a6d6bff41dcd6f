package hostguest

import (
	"sync/atomic"
)

// RunnerState represents the lifecycle stage of a [Runner].
//
// State Machine:
//
//	StateIdle → StateStarting            [Start()]
//	StateStarting → StateRunning         [guest start requested]
//	StateStarting → StateDone            [setup failure]
//	StateRunning → StateHostExecuting    [Exec()]
//	StateRunning → StateDone             [guest done, host not executed by the runner]
//	StateHostExecuting → StateFinishing  [guest done]
//	StateHostExecuting → StateDone       [host exited, guest abandoned]
//	StateFinishing → StateDone           [host exited]
//	StateDone → (terminal)
//
// A runner may never return to StateIdle.
type RunnerState uint32

const (
	// StateIdle indicates the runner has been created but not started.
	StateIdle RunnerState = iota
	// StateStarting indicates the host is being obtained, and the guest
	// started.
	StateStarting
	// StateRunning indicates the guest has been started.
	StateRunning
	// StateHostExecuting indicates the runner is blocked in the host loop.
	StateHostExecuting
	// StateFinishing indicates the guest has finished, but the host loop has
	// not yet exited.
	StateFinishing
	// StateDone indicates the runner has finished.
	StateDone
)

// String returns a human-readable representation of the state.
func (s RunnerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateHostExecuting:
		return "HostExecuting"
	case StateFinishing:
		return "Finishing"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// runnerState is a lock-free state machine.
type runnerState struct {
	v atomic.Uint32
}

func (s *runnerState) Load() RunnerState {
	return RunnerState(s.v.Load())
}

// Store must only be used for irreversible states.
func (s *runnerState) Store(state RunnerState) {
	s.v.Store(uint32(state))
}

func (s *runnerState) TryTransition(from, to RunnerState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// TransitionAny attempts each transition in order, returning the state
// transitioned from, and true, on the first success.
func (s *runnerState) TransitionAny(validFrom []RunnerState, to RunnerState) (RunnerState, bool) {
	for _, from := range validFrom {
		if s.v.CompareAndSwap(uint32(from), uint32(to)) {
			return from, true
		}
	}
	return 0, false
}
