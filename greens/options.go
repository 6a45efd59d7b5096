// SPDX-License-Identifier: MIT

package greens

import (
	"log/slog"
	"math"
	"runtime"
)

const (
	// DefaultMesh3D and DefaultMesh2D are the Brillouin-zone mesh sizes per
	// axis.
	DefaultMesh3D = 32
	DefaultMesh2D = 128
)

// DefaultKappaFactor scales κ = factor·qb·√Dmin.
var DefaultKappaFactor = 1 / math.Sqrt(12*math.Ln10)

// Option configures New.
type Option func(*Options)

// Options holds Green's function settings.
type Options struct {
	// Mesh is the number of points per reciprocal axis; 0 picks the
	// dimension default.
	Mesh        int
	KappaFactor float64
	Workers     int
	Logger      *slog.Logger
}

// DefaultOptions returns dimension-default mesh, DefaultKappaFactor,
// GOMAXPROCS workers and slog.Default().
func DefaultOptions() Options {
	return Options{KappaFactor: DefaultKappaFactor, Workers: runtime.GOMAXPROCS(0), Logger: slog.Default()}
}

// WithMesh sets the mesh size per axis; values below 2 are ignored.
func WithMesh(n int) Option {
	return func(o *Options) {
		if n > 1 {
			o.Mesh = n
		}
	}
}

// WithKappaFactor overrides DefaultKappaFactor; non-positive values are
// ignored.
func WithKappaFactor(f float64) Option {
	return func(o *Options) {
		if f > 0 && !math.IsInf(f, 0) {
			o.KappaFactor = f
		}
	}
}

// WithWorkers bounds the goroutines of the zone sum; values below 1 are
// ignored. The result does not depend on the worker count.
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
