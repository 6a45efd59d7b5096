// SPDX-License-Identifier: MIT

package matrix

import (
	"errors"
	"math"
)

// LU holds a row-pivoted factorization P·A = L·U packed into one buffer.
// The unit diagonal of L is implicit.
type LU struct {
	n    int
	lu   []float64
	perm []int
	sign float64
}

// Factorize computes the LU factorization of a square matrix with partial
// pivoting.
//
// Implementation:
//   - Stage 1: Validate squareness and finiteness.
//   - Stage 2: For each column pick the row with the largest |a_ik| (ties keep
//     the lowest index), swap, eliminate below.
//   - Stage 3: A pivot below PivotTolerance*max|A| yields ErrSingular.
//
// Complexity: Time O(n³), Space O(n²).
//
// AI-Hints:
//   - Reuse one *LU for many right-hand sides; Solve is O(n²).
func Factorize(m Matrix, opts ...Option) (*LU, error) {
	o := NewOptions(opts...)
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opFactorize, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opFactorize, err)
	}
	n := d.r
	a := make([]float64, len(d.data))
	copy(a, d.data)

	var scale float64
	for _, v := range a {
		if o.ValidateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return nil, matrixErrorf(opFactorize, ErrNaNInf)
		}
		if av := math.Abs(v); av > scale {
			scale = av
		}
	}
	if scale == 0 {
		return nil, matrixErrorf(opFactorize, ErrSingular)
	}
	tol := o.PivotTolerance * scale

	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sign := 1.0

	var (
		i, j, k, p int
		best, f    float64
	)
	for k = 0; k < n; k++ {
		p, best = k, math.Abs(a[k*n+k])
		for i = k + 1; i < n; i++ {
			if v := math.Abs(a[i*n+k]); v > best {
				p, best = i, v
			}
		}
		if best <= tol {
			return nil, matrixErrorf(opFactorize, ErrSingular)
		}
		if p != k {
			for j = 0; j < n; j++ {
				a[k*n+j], a[p*n+j] = a[p*n+j], a[k*n+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
			sign = -sign
		}
		for i = k + 1; i < n; i++ {
			f = a[i*n+k] / a[k*n+k]
			if f == 0 {
				continue
			}
			a[i*n+k] = f
			for j = k + 1; j < n; j++ {
				a[i*n+j] -= f * a[k*n+j]
			}
		}
	}

	return &LU{n: n, lu: a, perm: perm, sign: sign}, nil
}

// Size returns n.
func (f *LU) Size() int { return f.n }

// Det returns det(A).
func (f *LU) Det() float64 {
	d := f.sign
	for i := 0; i < f.n; i++ {
		d *= f.lu[i*f.n+i]
	}

	return d
}

// Solve returns x with A·x = b.
func (f *LU) Solve(b []float64) ([]float64, error) {
	if err := ValidateVecLen(b, f.n); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	n := f.n
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = b[f.perm[i]]
	}
	// forward: L·y = P·b
	for i := 1; i < n; i++ {
		s := x[i]
		for j := 0; j < i; j++ {
			s -= f.lu[i*n+j] * x[j]
		}
		x[i] = s
	}
	// backward: U·x = y
	for i := n - 1; i >= 0; i-- {
		s := x[i]
		for j := i + 1; j < n; j++ {
			s -= f.lu[i*n+j] * x[j]
		}
		x[i] = s / f.lu[i*n+i]
	}

	return x, nil
}

// SolveMatrix returns X with A·X = B, column by column.
func (f *LU) SolveMatrix(b Matrix) (*Dense, error) {
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	if b.Rows() != f.n {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	out, err := NewDense(db.r, db.c)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	col := make([]float64, f.n)
	for j := 0; j < db.c; j++ {
		for i := 0; i < f.n; i++ {
			col[i] = db.data[i*db.c+j]
		}
		x, err := f.Solve(col)
		if err != nil {
			return nil, err
		}
		for i := 0; i < f.n; i++ {
			out.data[i*out.c+j] = x[i]
		}
	}

	return out, nil
}

// Inverse returns A⁻¹ or ErrSingular.
func Inverse(m Matrix, opts ...Option) (*Dense, error) {
	f, err := Factorize(m, opts...)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	id, err := NewIdentity(f.n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	inv, err := f.SolveMatrix(id)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return inv, nil
}

// Solve is a one-shot A·x = b.
func Solve(m Matrix, b []float64, opts ...Option) ([]float64, error) {
	f, err := Factorize(m, opts...)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}

	return f.Solve(b)
}

// Det is a one-shot determinant; a singular matrix reports 0.
func Det(m Matrix) (float64, error) {
	f, err := Factorize(m, WithPivotTolerance(0))
	if err != nil {
		if isSingular(err) {
			return 0, nil
		}

		return 0, err
	}

	return f.Det(), nil
}

func isSingular(err error) bool { return errors.Is(err, ErrSingular) }
