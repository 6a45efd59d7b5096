// SPDX-License-Identifier: MIT

// Package matrix: central validators. Kernels call these first and wrap the
// returned sentinel with their op tag.

package matrix

import "math"

// ValidateNotNil returns ErrNilMatrix for a nil interface or nil *Dense.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return ErrNilMatrix
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSameShape checks both operands are non-nil with equal shape.
func ValidateSameShape(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateSquare checks m is non-nil and square.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return ErrNonSquare
	}

	return nil
}

// ValidateVecLen checks len(x) == n.
func ValidateVecLen(x []float64, n int) error {
	if x == nil || len(x) != n {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateMulCompatible checks a.Cols == b.Rows.
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Cols() != b.Rows() {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateSymmetric checks squareness and |A[i,j]-A[j,i]| <= tol.
func ValidateSymmetric(m Matrix, tol float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	n := m.Rows()
	var aij, aji float64
	var err error
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if aij, err = m.At(i, j); err != nil {
				return err
			}
			if aji, err = m.At(j, i); err != nil {
				return err
			}
			if math.Abs(aij-aji) > tol {
				return ErrAsymmetry
			}
		}
	}

	return nil
}

// ValidateFinite rejects NaN/Inf entries in a vector.
func ValidateFinite(x []float64) error {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNaNInf
		}
	}

	return nil
}
