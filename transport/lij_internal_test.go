// SPDX-License-Identifier: MIT

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStateSystem() *system {
	return &system{
		n:   2,
		g0:  [][]float64{{-1, 0.2}, {0.2, -0.8}},
		dOm: [][]float64{{0.3, -0.1}, {-0.1, 0.2}},
		m:   [][]float64{{1, -1}, {-1, 1}},
	}
}

func TestExchangeFactor_MatchesDirect(t *testing.T) {
	s := twoStateSystem()
	r := []float64{0.7, -0.4}
	for _, w := range []float64{0.5, 30, 1e3} {
		lu, err := s.factor(w)
		require.NoError(t, err)
		want, err := lu.Solve(r)
		require.NoError(t, err)
		f, err := s.exchangeFactor(w)
		require.NoError(t, err)
		got, err := f.solve(r)
		require.NoError(t, err)
		for a := range want {
			assert.InDelta(t, want[a], got[a], 1e-10, "w=%g component %d", w, a)
		}
	}
}

func TestExchangeFactor_Limit(t *testing.T) {
	s := twoStateSystem()
	r := []float64{0.7, -0.4}
	f, err := s.exchangeFactor(1e12)
	require.NoError(t, err)
	ref, err := f.solve(r)
	require.NoError(t, err)
	for _, w := range []float64{1e17, 1e26} {
		f, err = s.exchangeFactor(w)
		require.NoError(t, err, "w=%g", w)
		got, err := f.solve(r)
		require.NoError(t, err)
		for a := range ref {
			assert.InDelta(t, ref[a], got[a], 1e-9, "w=%g component %d", w, a)
		}
	}
}

func TestFactor_IllConditioned(t *testing.T) {
	// g0·δω = -I cancels the identity
	s := &system{
		n:   2,
		g0:  [][]float64{{1, 0}, {0, 1}},
		dOm: [][]float64{{-1, 0}, {0, -1}},
		m:   [][]float64{{0, 0}, {0, 0}},
	}
	_, err := s.factor(1)
	assert.ErrorIs(t, err, ErrIllConditioned)
	_, err = s.exchangeFactor(1e20)
	assert.ErrorIs(t, err, ErrIllConditioned)
}
