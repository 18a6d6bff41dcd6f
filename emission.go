package hostguest

import (
	"reflect"

	"github.com/joeycumines/go-hostguest/host"
)

// Emission is one firing of an event source, with its arguments.
type Emission struct {
	Source host.EventSource
	Args   []any
}

// IsFrom reports whether the emission came from source.
//
// If both sources implement [host.Identifier], their SourceID values are
// compared. Otherwise, if both are of comparable types, they are compared
// directly. If neither is possible, IsFrom panics with an
// [*AmbiguousSourceError].
func (x Emission) IsFrom(source host.EventSource) bool {
	return sameSource(x.Source, source)
}

// Equal reports whether other is from the same source, with deeply equal
// arguments. Nil and empty arguments are considered equal.
func (x Emission) Equal(other Emission) bool {
	if !x.IsFrom(other.Source) {
		return false
	}
	if len(x.Args) == 0 && len(other.Args) == 0 {
		return true
	}
	return reflect.DeepEqual(x.Args, other.Args)
}

func sameSource(a, b host.EventSource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if ai, ok := a.(host.Identifier); ok {
		if bi, ok := b.(host.Identifier); ok {
			aid, bid := ai.SourceID(), bi.SourceID()
			if isComparable(aid) && isComparable(bid) {
				return aid == bid
			}
		}
	}

	if isComparable(a) && isComparable(b) {
		return a == b
	}

	panic(&AmbiguousSourceError{Source: a, Other: b})
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}
