// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/matrix"
)

func nan() float64 { return math.NaN() }

func TestFactorize_SolveRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 12
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = rng.Float64() - 0.5
		}
		rows[i][i] += 3
	}
	a := mustRows(t, rows)
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i) - 4
	}
	b, err := matrix.MatVec(a, x)
	require.NoError(t, err)

	lu, err := matrix.Factorize(a)
	require.NoError(t, err)
	got, err := lu.Solve(b)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, got, 1e-10)
}

func TestFactorize_NeedsPivoting(t *testing.T) {
	a := mustRows(t, [][]float64{{0, 1}, {1, 0}})
	lu, err := matrix.Factorize(a)
	require.NoError(t, err)
	assert.InDelta(t, -1, lu.Det(), 1e-15)
	x, err := lu.Solve([]float64{2, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 2}, x, 1e-15)
}

func TestFactorize_Singular(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}, {2, 4}})
	_, err := matrix.Factorize(a)
	assert.ErrorIs(t, err, matrix.ErrSingular)
	_, err = matrix.Inverse(a)
	assert.ErrorIs(t, err, matrix.ErrSingular)

	d, err := matrix.Det(a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestInverse_TimesOriginalIsIdentity(t *testing.T) {
	a := mustRows(t, [][]float64{{4, 1, 0}, {1, 3, 1}, {0, 1, 2}})
	inv, err := matrix.Inverse(a)
	require.NoError(t, err)
	p, err := matrix.Mul(a, inv)
	require.NoError(t, err)
	for i, row := range p.ToRows() {
		for j, v := range row {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, v, 1e-14)
		}
	}
	d, err := matrix.Det(a)
	require.NoError(t, err)
	assert.InDelta(t, 18.0, d, 1e-12)
}

func TestFactorize_NonSquare(t *testing.T) {
	_, err := matrix.Factorize(mustRows(t, [][]float64{{1, 2, 3}}))
	assert.ErrorIs(t, err, matrix.ErrNonSquare)
}
