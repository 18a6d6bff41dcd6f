// Package eventloophost implements [host.Host] on top of go-eventloop, as a
// minimal stand-in for a GUI application object.
//
// An [App] owns an [eventloop.Loop], which is its host thread. Signals are
// named events dispatched through an [eventloop.EventTarget], and windows are
// just enough to model "the last window was closed".
//
// Unless documented otherwise, methods that dispatch signals synchronously
// (e.g. [Signal.Emit], [Window.Close]) must be called on the loop goroutine,
// typically from a function passed to [App.Submit].
package eventloophost
