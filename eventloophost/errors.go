package eventloophost

import (
	"errors"
)

var (
	// ErrNilReceiver is returned by [App.PostEvent] if the receiver is nil.
	ErrNilReceiver = errors.New("eventloophost: nil event receiver")

	// ErrNilEvent is returned by [App.PostEvent] if the event is nil.
	ErrNilEvent = errors.New("eventloophost: nil event")
)
