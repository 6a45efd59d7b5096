// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/matrix"
)

// hide wraps any Matrix to hide its concrete type and force fallback paths.
type hide struct{ matrix.Matrix }

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewFromRows(rows)
	require.NoError(t, err)

	return m
}

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(3, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_AtSetBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	require.NoError(t, m.Set(1, 2, 4.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 3, 1), matrix.ErrOutOfRange)
}

func TestDense_SetRejectsNaN(t *testing.T) {
	m, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Set(0, 0, nan()), matrix.ErrNaNInf)
}

func TestNewFromRows_Ragged(t *testing.T) {
	_, err := matrix.NewFromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrRaggedRows)
}

func TestDense_CloneIsDeep(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 9))
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v)
}

func TestAdd_FallbackMatchesFastPath(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := mustRows(t, [][]float64{{6, 5, 4}, {3, 2, 1}})
	s1, err := matrix.Add(a, b)
	require.NoError(t, err)
	s2, err := matrix.Add(hide{a}, hide{b})
	require.NoError(t, err)
	assert.Equal(t, s1.ToRows(), s2.ToRows())
	assert.Equal(t, [][]float64{{7, 7, 7}, {7, 7, 7}}, s1.ToRows())
}

func TestSub_DimensionMismatch(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}})
	b := mustRows(t, [][]float64{{1}, {2}})
	_, err := matrix.Sub(a, b)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMul_Transpose_MatVec(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	at, err := matrix.Transpose(a)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3, 5}, {2, 4, 6}}, at.ToRows())

	p, err := matrix.Mul(at, a)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{35, 44}, {44, 56}}, p.ToRows())

	y, err := matrix.MatVec(a, []float64{1, -1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1, -1}, y)

	z, err := matrix.VecMat([]float64{1, 0, 1}, a)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 8}, z)

	_, err = matrix.Mul(a, a)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestScale(t *testing.T) {
	a := mustRows(t, [][]float64{{1, -2}})
	s, err := matrix.Scale(a, -0.5)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-0.5, 1}}, s.ToRows())
}

func TestValidators_Nil(t *testing.T) {
	var d *matrix.Dense
	assert.ErrorIs(t, matrix.ValidateNotNil(d), matrix.ErrNilMatrix)
	assert.ErrorIs(t, matrix.ValidateNotNil(nil), matrix.ErrNilMatrix)
}
