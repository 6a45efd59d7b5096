// SPDX-License-Identifier: MIT

// Package matrix - elementwise and product kernels.
//
// Every kernel follows the same staging:
//   - Stage 1 (Validate): shape checks through the central validators.
//   - Stage 2 (Prepare): allocate the result, resolve a *Dense fast path.
//   - Stage 3 (Execute): fixed i→k→j loop orders for determinism.
//   - Stage 4 (Finalize): return, wrapping errors with the op tag.

package matrix

// addSub computes a + sign*b.
func addSub(a, b Matrix, sign float64, tag string) (*Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, matrixErrorf(tag, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(tag, err)
	}
	out := da.clone()
	for k := range out.data {
		out.data[k] += sign * db.data[k]
	}

	return out, nil
}

// Add returns a + b.
func Add(a, b Matrix) (*Dense, error) { return addSub(a, b, +1, opAdd) }

// Sub returns a - b.
func Sub(a, b Matrix) (*Dense, error) { return addSub(a, b, -1, opSub) }

// Scale returns alpha*m.
func Scale(m Matrix, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	out := d.clone()
	for k := range out.data {
		out.data[k] *= alpha
	}

	return out, nil
}

// Mul returns the product a·b.
//
// Implementation:
//   - i→k→j loop so the inner loop streams rows of b and of the result.
//   - Zero entries of a are skipped; vector-star systems are sparse.
//
// Complexity: Time O(r*k*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	out, err := NewDense(da.r, db.c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, k, j int
		aik     float64
		bRow    []float64
		oRow    []float64
	)
	for i = 0; i < da.r; i++ {
		oRow = out.data[i*out.c : (i+1)*out.c]
		for k = 0; k < da.c; k++ {
			aik = da.data[i*da.c+k]
			if aik == 0 {
				continue
			}
			bRow = db.data[k*db.c : (k+1)*db.c]
			for j = 0; j < db.c; j++ {
				oRow[j] += aik * bRow[j]
			}
		}
	}

	return out, nil
}

// Transpose returns mᵀ.
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out, err := NewDense(d.c, d.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	for i := 0; i < d.r; i++ {
		for j := 0; j < d.c; j++ {
			out.data[j*out.c+i] = d.data[i*d.c+j]
		}
	}

	return out, nil
}

// MatVec returns y = m·x.
func MatVec(m Matrix, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Cols()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.r)
	var s float64
	for i := 0; i < d.r; i++ {
		s = 0
		row := d.data[i*d.c : (i+1)*d.c]
		for j, v := range row {
			s += v * x[j]
		}
		y[i] = s
	}

	return y, nil
}

// VecMat returns y = xᵀ·m.
func VecMat(x []float64, m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.Rows()); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, d.c)
	for i := 0; i < d.r; i++ {
		if x[i] == 0 {
			continue
		}
		row := d.data[i*d.c : (i+1)*d.c]
		for j, v := range row {
			y[j] += x[i] * v
		}
	}

	return y, nil
}

// Dot returns Σ a_i b_i; lengths must match.
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s, nil
}
