// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package eventloophost

import (
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
)

// appOptions holds configuration options for App creation.
type appOptions struct {
	logger                 *logiface.Logger[logiface.Event]
	loopOptions            []eventloop.LoopOption
	quitOnLastWindowClosed bool
}

// Option configures an App instance.
type Option interface {
	applyApp(*appOptions) error
}

// appOptionImpl implements Option.
type appOptionImpl struct {
	applyAppFunc func(*appOptions) error
}

func (o *appOptionImpl) applyApp(opts *appOptions) error {
	return o.applyAppFunc(opts)
}

// WithLogger configures the logger used by the App, which is also passed to
// the underlying loop. Nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &appOptionImpl{func(opts *appOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithQuitOnLastWindowClosed sets the initial value of
// [App.QuitOnLastWindowClosed]. Defaults to true.
func WithQuitOnLastWindowClosed(enabled bool) Option {
	return &appOptionImpl{func(opts *appOptions) error {
		opts.quitOnLastWindowClosed = enabled
		return nil
	}}
}

// WithLoopOptions appends options for the underlying [eventloop.Loop].
func WithLoopOptions(options ...eventloop.LoopOption) Option {
	return &appOptionImpl{func(opts *appOptions) error {
		opts.loopOptions = append(opts.loopOptions, options...)
		return nil
	}}
}

// resolveAppOptions applies Option instances to appOptions.
func resolveAppOptions(opts []Option) (*appOptions, error) {
	cfg := &appOptions{
		quitOnLastWindowClosed: true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyApp(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
