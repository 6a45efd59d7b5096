// SPDX-License-Identifier: MIT

package transport

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/telemetry"
)

// DefaultRatioThreshold is the exchange-to-bulk rate ratio beyond which Lij
// switches to an asymptotic form: above it for fast exchange, below its
// inverse for slow exchange.
const DefaultRatioThreshold = 1e4

// Option configures New.
type Option func(*Options)

// Options holds calculator settings.
type Options struct {
	// RatioThreshold is the crossover for the asymptotic forms; values
	// <= 1 disable them.
	RatioThreshold float64
	// Mesh and KappaFactor are passed to the Green's function; zero keeps
	// its defaults.
	Mesh        int
	KappaFactor float64
	Workers     int
	Logger      *slog.Logger
	Recorder    *telemetry.Recorder
}

// DefaultOptions returns DefaultRatioThreshold, Green's function defaults,
// GOMAXPROCS workers and slog.Default().
func DefaultOptions() Options {
	return Options{
		RatioThreshold: DefaultRatioThreshold,
		Workers:        runtime.GOMAXPROCS(0),
		Logger:         slog.Default(),
	}
}

// WithRatioThreshold sets the asymptotic crossover; NaN and negative
// values are ignored.
func WithRatioThreshold(r float64) Option {
	return func(o *Options) {
		if r >= 0 && !math.IsNaN(r) {
			o.RatioThreshold = r
		}
	}
}

// WithMesh sets the Green's function mesh per axis.
func WithMesh(n int) Option {
	return func(o *Options) {
		if n > 1 {
			o.Mesh = n
		}
	}
}

// WithKappaFactor sets the Green's function pole width factor.
func WithKappaFactor(f float64) Option {
	return func(o *Options) {
		if f > 0 && !math.IsInf(f, 0) {
			o.KappaFactor = f
		}
	}
}

// WithWorkers bounds the goroutines of the Green's function and expansion
// steps; values below 1 are ignored.
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

// WithRecorder attaches a metrics recorder; nil disables metrics.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(o *Options) { o.Recorder = r }
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

func (o Options) greens() []greens.Option {
	out := []greens.Option{greens.WithWorkers(o.Workers), greens.WithLogger(o.Logger)}
	if o.Mesh > 1 {
		out = append(out, greens.WithMesh(o.Mesh))
	}
	if o.KappaFactor > 0 {
		out = append(out, greens.WithKappaFactor(o.KappaFactor))
	}

	return out
}
