// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package guest

import (
	"github.com/joeycumines/logiface"
)

// runOptions holds configuration options for Run creation.
type runOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a Run instance.
type Option interface {
	applyRun(*runOptions) error
}

// runOptionImpl implements Option.
type runOptionImpl struct {
	applyRunFunc func(*runOptions) error
}

func (o *runOptionImpl) applyRun(opts *runOptions) error {
	return o.applyRunFunc(opts)
}

// WithLogger configures a logger, for task lifecycle events at debug level.
// Nil (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &runOptionImpl{func(opts *runOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveRunOptions applies Option instances to runOptions.
func resolveRunOptions(opts []Option) (*runOptions, error) {
	cfg := &runOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRun(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
