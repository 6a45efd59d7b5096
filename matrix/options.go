// SPDX-License-Identifier: MIT

// Package matrix: functional configuration of the numeric policy.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each option changes a kernel's behavior.
//   - Safe by construction: invalid parameters panic (programmer error).

package matrix

import (
	"fmt"
	"math"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the tolerance used by structural checks (symmetry).
	DefaultEpsilon = 1e-9

	// DefaultPivotTolerance is the relative pivot threshold of Factorize:
	// a column whose largest remaining entry is below
	// DefaultPivotTolerance * max|A| is treated as singular.
	DefaultPivotTolerance = 1e-13

	// DefaultValidateNaNInf toggles strict finite-value validation on Set and ingestion.
	DefaultValidateNaNInf = true

	// DefaultEigenTolerance and DefaultEigenMaxIter are the Jacobi defaults
	// used by EigenSym.
	DefaultEigenTolerance = 1e-12
	DefaultEigenMaxIter   = 500
)

// Option configures Options.
type Option func(*Options)

// Options holds the numeric policy of a kernel call.
type Options struct {
	Epsilon        float64
	PivotTolerance float64
	ValidateNaNInf bool
}

// WithEpsilon sets the structural tolerance; panics on negative or NaN.
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) {
		panic(fmt.Sprintf("matrix: WithEpsilon(%v): must be finite and >= 0", eps))
	}

	return func(o *Options) { o.Epsilon = eps }
}

// WithPivotTolerance sets the relative singularity threshold of Factorize.
func WithPivotTolerance(tol float64) Option {
	if tol < 0 || math.IsNaN(tol) || math.IsInf(tol, 0) {
		panic(fmt.Sprintf("matrix: WithPivotTolerance(%v): must be finite and >= 0", tol))
	}

	return func(o *Options) { o.PivotTolerance = tol }
}

// WithNoValidateNaNInf disables finite-value validation.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.ValidateNaNInf = false }
}

// NewOptions returns the defaults with user options applied left to right.
func NewOptions(opts ...Option) Options {
	o := Options{
		Epsilon:        DefaultEpsilon,
		PivotTolerance: DefaultPivotTolerance,
		ValidateNaNInf: DefaultValidateNaNInf,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
