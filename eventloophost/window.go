package eventloophost

// Window is a top-level window, which only tracks visibility.
type Window struct {
	app    *App
	closed *Signal
}

// NewWindow returns a new, hidden, window.
func (a *App) NewWindow() *Window {
	return &Window{
		app:    a,
		closed: a.NewSignal(`closed`),
	}
}

// Show makes the window visible. It is a no-op if it already is.
func (w *Window) Show() {
	w.app.mu.Lock()
	w.app.visible[w] = struct{}{}
	w.app.mu.Unlock()
}

// Visible reports whether the window is shown.
func (w *Window) Visible() bool {
	w.app.mu.Lock()
	defer w.app.mu.Unlock()
	_, ok := w.app.visible[w]
	return ok
}

// Close hides the window, emitting [Window.Closed]. If it was the last
// visible window, the app's last window closed signal is emitted, after
// which the app quits, if configured to do so. It is a no-op if the window
// is not visible. Must be called on the loop goroutine.
func (w *Window) Close() {
	w.app.windowClosed(w)
}

// Closed returns the signal emitted by [Window.Close].
func (w *Window) Closed() *Signal {
	return w.closed
}
