// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package hostguest

import (
	"github.com/joeycumines/go-hostguest/host"
	"github.com/joeycumines/logiface"
)

// runnerOptions holds configuration options for Runner creation.
type runnerOptions struct {
	app             host.Host
	appFactory      func() (host.Host, error)
	guest           Guest
	doneCallback    func(outcomes Outcomes)
	cancelTrigger   func(app host.Host) host.EventSource
	logger          *logiface.Logger[logiface.Event]
	loggerSet       bool
	quitApplication bool
}

// RunnerOption configures a Runner instance.
type RunnerOption interface {
	applyRunner(*runnerOptions) error
}

// runnerOptionImpl implements RunnerOption.
type runnerOptionImpl struct {
	applyRunnerFunc func(*runnerOptions) error
}

func (o *runnerOptionImpl) applyRunner(opts *runnerOptions) error {
	return o.applyRunnerFunc(opts)
}

// WithApplication configures the host the runner will use. If not set, the
// host will be created by the application factory, see
// [WithApplicationFactory].
func WithApplication(app host.Host) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.app = app
		return nil
	}}
}

// WithApplicationFactory configures how the host is created, if one wasn't
// provided via [WithApplication]. The factory is called at most once, on
// start. The runner disables quit-on-last-window-closed on hosts it creates,
// and closes them after executing them, if they implement
// interface{ Close() error }.
//
// Defaults to creating an [eventloophost.App].
func WithApplicationFactory(factory func() (host.Host, error)) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.appFactory = factory
		return nil
	}}
}

// WithQuitApplication configures whether the runner asks the host to quit,
// after the guest finishes. Defaults to true.
func WithQuitApplication(enabled bool) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.quitApplication = enabled
		return nil
	}}
}

// WithDoneCallback configures a callback, called on the host thread, once,
// after the guest finishes, before the host is asked to quit.
func WithDoneCallback(callback func(outcomes Outcomes)) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.doneCallback = callback
		return nil
	}}
}

// WithGuest configures the guest scheduler. Defaults to [DefaultGuest].
func WithGuest(guest Guest) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.guest = guest
		return nil
	}}
}

// WithCancelTrigger configures the event source that cancels the scope
// wrapping the entry function, while the host is configured to quit on
// last window closed. A nil trigger (or a nil source) disables it.
//
// Defaults to the host's LastWindowClosed.
func WithCancelTrigger(trigger func(app host.Host) host.EventSource) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.cancelTrigger = trigger
		return nil
	}}
}

// WithLogger configures the logger. Nil disables logging, except that guest
// failures are still reported, using [DefaultLogger]. Defaults to
// [DefaultLogger].
func WithLogger(logger *logiface.Logger[logiface.Event]) RunnerOption {
	return &runnerOptionImpl{func(opts *runnerOptions) error {
		opts.logger = logger
		opts.loggerSet = true
		return nil
	}}
}

// resolveRunnerOptions applies RunnerOption instances to runnerOptions.
func resolveRunnerOptions(opts []RunnerOption) (*runnerOptions, error) {
	cfg := &runnerOptions{
		quitApplication: true,
		cancelTrigger:   lastWindowClosed,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRunner(cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.loggerSet {
		cfg.logger = DefaultLogger()
	}
	return cfg, nil
}

func lastWindowClosed(app host.Host) host.EventSource {
	return app.LastWindowClosed()
}
