// SPDX-License-Identifier: MIT

// Package telemetry records phase durations, set sizes and solve regimes of
// a transport calculation on a private Prometheus registry.
//
// A nil *Recorder is valid and records nothing, so library code can call it
// unconditionally. The CLI writes the registry to a node-exporter textfile
// at exit.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "onsager"

// Recorder holds the metrics. All methods are safe for concurrent use.
type Recorder struct {
	reg *prometheus.Registry

	// PhaseSeconds observes the duration of each build or solve phase.
	// Labels: phase (thermo, kinetic, omega, gfstars, vstars, expansions,
	// greens, lij).
	PhaseSeconds *prometheus.HistogramVec

	// SetSize is the size of the last generated set.
	// Labels: set (thermo_states, kinetic_states, kinetic_stars, vstars,
	// gf_stars, omega1, omega2).
	SetSize *prometheus.GaugeVec

	// SolvesTotal counts transport solves by regime and outcome.
	// Labels: regime, status (ok, error).
	SolvesTotal *prometheus.CounterVec

	// CacheTotal counts Green's function cache lookups.
	// Labels: result (hit, miss).
	CacheTotal *prometheus.CounterVec
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		PhaseSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of calculator build and solve phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 12),
			},
			[]string{"phase"},
		),
		SetSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "set_size",
				Help:      "Number of states, stars or classes in the last generated set",
			},
			[]string{"set"},
		),
		SolvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Transport solves by regime and status",
			},
			[]string{"regime", "status"},
		),
		CacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gf_cache_total",
				Help:      "Green's function cache lookups by result",
			},
			[]string{"result"},
		),
	}
	r.reg.MustRegister(r.PhaseSeconds, r.SetSize, r.SolvesTotal, r.CacheTotal)

	return r
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}

	return r.reg
}

// Phase observes the time elapsed since start.
func (r *Recorder) Phase(phase string, start time.Time) {
	if r == nil {
		return
	}
	r.PhaseSeconds.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// Size sets a set-size gauge.
func (r *Recorder) Size(set string, n int) {
	if r == nil {
		return
	}
	r.SetSize.WithLabelValues(set).Set(float64(n))
}

// Solve counts one transport solve.
func (r *Recorder) Solve(regime string, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.SolvesTotal.WithLabelValues(regime, status).Inc()
}

// Cache counts one cache lookup.
func (r *Recorder) Cache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheTotal.WithLabelValues(result).Inc()
}

// WriteTextfile writes every metric in the text exposition format to path,
// atomically. A nil Recorder writes nothing.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}

	return prometheus.WriteToTextfile(path, r.reg)
}
