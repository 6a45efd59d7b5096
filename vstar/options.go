// SPDX-License-Identifier: MIT

package vstar

import (
	"log/slog"
	"runtime"
)

// Option configures Generate.
type Option func(*Options)

// Options holds vector-star settings.
type Options struct {
	// Workers bounds the goroutines used by GFExpansion.
	Workers int
	Logger  *slog.Logger
}

// DefaultOptions returns GOMAXPROCS workers and slog.Default().
func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0), Logger: slog.Default()}
}

// WithWorkers sets the worker count; values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithLogger sets the logger; nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
