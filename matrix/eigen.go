// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"sort"
)

// EigenSym computes all eigenpairs of a real symmetric matrix by classical
// Jacobi rotations.
//
// Implementation:
//   - Stage 1: Validate squareness and symmetry (Epsilon).
//   - Stage 2: Repeatedly annihilate the largest off-diagonal |a_pq|,
//     accumulating rotations into Q.
//   - Stage 3: Sort eigenvalues ascending and permute the columns of Q.
//
// Returns:
//   - vals: eigenvalues, ascending.
//   - vecs: Q with Q[:,k] the unit eigenvector of vals[k].
//
// Errors: ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed.
//
// Complexity: O(n²) per rotation, typically O(n³) overall; Space O(n²).
func EigenSym(m Matrix, opts ...Option) ([]float64, *Dense, error) {
	o := NewOptions(opts...)
	if err := ValidateSymmetric(m, o.Epsilon); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := d.r
	a := d.clone().data
	q, _ := NewIdentity(n)

	var (
		iter, i, j, p, r int
		maxOff, off      float64
		theta, t, c, s   float64
		app, arr, apr    float64
		aip, air         float64
		norm             float64
	)
	for _, v := range a {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	tol := DefaultEigenTolerance * math.Max(norm, 1)

	maxIter := DefaultEigenMaxIter * n * n
	for iter = 0; iter < maxIter; iter++ {
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				if off = math.Abs(a[i*n+j]); off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		if maxOff <= tol {
			break
		}
		app, arr, apr = a[p*n+p], a[r*n+r], a[p*n+r]
		theta = (arr - app) / (2 * apr)
		t = math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
		c = 1 / math.Sqrt(t*t+1)
		s = t * c

		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip, air = a[i*n+p], a[i*n+r]
			a[i*n+p] = c*aip - s*air
			a[p*n+i] = a[i*n+p]
			a[i*n+r] = s*aip + c*air
			a[r*n+i] = a[i*n+r]
		}
		a[p*n+p] = app - t*apr
		a[r*n+r] = arr + t*apr
		a[p*n+r], a[r*n+p] = 0, 0

		for i = 0; i < n; i++ {
			aip, air = q.data[i*n+p], q.data[i*n+r]
			q.data[i*n+p] = c*aip - s*air
			q.data[i*n+r] = s*aip + c*air
		}
	}
	if iter == maxIter {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	idx := make([]int, n)
	for i = range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool { return a[idx[x]*n+idx[x]] < a[idx[y]*n+idx[y]] })

	vals := make([]float64, n)
	vecs, _ := NewDense(n, n)
	for k, src := range idx {
		vals[k] = a[src*n+src]
		for i = 0; i < n; i++ {
			vecs.data[i*n+k] = q.data[i*n+src]
		}
	}

	return vals, vecs, nil
}
