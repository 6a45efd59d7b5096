// SPDX-License-Identifier: MIT

package shells

import (
	"log/slog"
	"math"

	"github.com/sohamch/Onsager/orbit"
)

// DefaultThreshold separates |dx|² shells during star partitioning.
const DefaultThreshold = orbit.DefaultThreshold

// Option configures Generate and Build.
type Option func(*Options)

// Options holds shell generation settings.
type Options struct {
	OriginStates bool
	Threshold    float64
	Logger       *slog.Logger
}

// DefaultOptions returns no origin states, DefaultThreshold, slog.Default().
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Logger: slog.Default()}
}

// WithOriginStates includes the pair states with the vacancy on the solute
// site in the thermodynamic shell.
func WithOriginStates(on bool) Option {
	return func(o *Options) { o.OriginStates = on }
}

// WithThreshold overrides DefaultThreshold; non-positive values are ignored.
func WithThreshold(t float64) Option {
	return func(o *Options) {
		if t > 0 && !math.IsInf(t, 0) {
			o.Threshold = t
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

func newOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
