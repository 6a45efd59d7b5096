// SPDX-License-Identifier: MIT

package jumpnet

import (
	"log/slog"
	"math"
)

// DefaultHostRadius and DefaultPartnerRadius disable the collision filter.
const (
	DefaultHostRadius    = 0.0
	DefaultPartnerRadius = 0.0
)

// Option configures Build.
type Option func(*Options)

// Options holds Build settings.
type Options struct {
	HostRadius    float64
	PartnerRadius float64
	Logger        *slog.Logger
}

// DefaultOptions returns the zero-filter settings with slog.Default().
func DefaultOptions() Options {
	return Options{
		HostRadius:    DefaultHostRadius,
		PartnerRadius: DefaultPartnerRadius,
		Logger:        slog.Default(),
	}
}

// WithCollision sets the closest allowed approach of a moving atom to host
// atoms (host) and to its dumbbell partners (partner). Negative or NaN
// values are ignored.
func WithCollision(host, partner float64) Option {
	return func(o *Options) {
		if host >= 0 && !math.IsNaN(host) {
			o.HostRadius = host
		}
		if partner >= 0 && !math.IsNaN(partner) {
			o.PartnerRadius = partner
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
