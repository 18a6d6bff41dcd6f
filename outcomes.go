package hostguest

import (
	"fmt"

	"github.com/joeycumines/go-hostguest/outcome"
)

// Outcomes holds the outcome of the host loop, and of the guest run. Either
// may be nil, if not (yet) recorded.
type Outcomes struct {
	// Host is the outcome of the host loop, see [OutcomeFromStatus].
	Host outcome.Outcome
	// Guest is the outcome of the entry function.
	Guest outcome.Outcome
}

// Unwrap resolves the outcomes to a single result.
//
// A guest failure takes priority over everything. A guest success is returned
// unless the host failed, in which case the host failure is returned. If only
// the host outcome is available, it is returned. If neither is available,
// ErrNoOutcomes is returned.
func (x Outcomes) Unwrap() (any, error) {
	if x.Guest != nil {
		if x.Guest.IsError() || x.Host == nil || !x.Host.IsError() {
			return x.Guest.Unwrap()
		}
		return x.Host.Unwrap()
	}
	if x.Host != nil {
		return x.Host.Unwrap()
	}
	return nil, ErrNoOutcomes
}

func (x Outcomes) String() string {
	return fmt.Sprintf("Outcomes{Host: %v, Guest: %v}", x.Host, x.Guest)
}

// OutcomeFromStatus converts a host loop exit status to an outcome. Zero is
// a success, with the value 0, and any other value is a failure, with a
// [*ReturnCodeError].
func OutcomeFromStatus(code int) outcome.Outcome {
	if code == 0 {
		return outcome.NewValue(code)
	}
	return outcome.NewError(&ReturnCodeError{Code: code})
}
