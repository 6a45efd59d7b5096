// SPDX-License-Identifier: MIT

package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/matrix"
)

func TestEigenSym_Diagonalizes(t *testing.T) {
	a := mustRows(t, [][]float64{
		{2, -1, 0},
		{-1, 2, -1},
		{0, -1, 2},
	})
	vals, vecs, err := matrix.EigenSym(a)
	require.NoError(t, err)
	// eigenvalues of the 3-site chain Laplacian: 2-√2, 2, 2+√2
	assert.InDeltaSlice(t, []float64{0.5857864376269049, 2, 3.414213562373095}, vals, 1e-12)

	av, err := matrix.Mul(a, vecs)
	require.NoError(t, err)
	for k := 0; k < 3; k++ {
		for i := 0; i < 3; i++ {
			q, _ := vecs.At(i, k)
			got, _ := av.At(i, k)
			assert.InDelta(t, vals[k]*q, got, 1e-12)
		}
	}
}

func TestEigenSym_RejectsAsymmetric(t *testing.T) {
	_, _, err := matrix.EigenSym(mustRows(t, [][]float64{{1, 2}, {0, 1}}))
	assert.ErrorIs(t, err, matrix.ErrAsymmetry)
}
