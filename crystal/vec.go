// SPDX-License-Identifier: MIT

package crystal

import "math"

// Vec is a Cartesian vector.
type Vec [3]float64

// LVec is an integer lattice vector.
type LVec [3]int

// Mat3 is a 3×3 real matrix, row-major.
type Mat3 [3][3]float64

// Add returns v+w.
func (v Vec) Add(w Vec) Vec { return Vec{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v-w.
func (v Vec) Sub(w Vec) Vec { return Vec{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns s·v.
func (v Vec) Scale(s float64) Vec { return Vec{s * v[0], s * v[1], s * v[2]} }

// Neg returns -v.
func (v Vec) Neg() Vec { return Vec{-v[0], -v[1], -v[2]} }

// Dot returns v·w.
func (v Vec) Dot(w Vec) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Norm2 returns |v|².
func (v Vec) Norm2() float64 { return v.Dot(v) }

// Norm returns |v|.
func (v Vec) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Close reports |v-w|∞ <= tol.
func (v Vec) Close(w Vec, tol float64) bool {
	return math.Abs(v[0]-w[0]) <= tol && math.Abs(v[1]-w[1]) <= tol && math.Abs(v[2]-w[2]) <= tol
}

// Outer returns v⊗w.
func (v Vec) Outer(w Vec) Mat3 {
	var m Mat3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			m[a][b] = v[a] * w[b]
		}
	}

	return m
}

// Add returns r+s.
func (r LVec) Add(s LVec) LVec { return LVec{r[0] + s[0], r[1] + s[1], r[2] + s[2]} }

// Sub returns r-s.
func (r LVec) Sub(s LVec) LVec { return LVec{r[0] - s[0], r[1] - s[1], r[2] - s[2]} }

// Neg returns -r.
func (r LVec) Neg() LVec { return LVec{-r[0], -r[1], -r[2]} }

// IsZero reports r == 0.
func (r LVec) IsZero() bool { return r == LVec{} }

// Float returns r as a real vector (still in lattice coordinates).
func (r LVec) Float() Vec { return Vec{float64(r[0]), float64(r[1]), float64(r[2])} }

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec) Vec {
	var out Vec
	for a := 0; a < 3; a++ {
		out[a] = m[a][0]*v[0] + m[a][1]*v[1] + m[a][2]*v[2]
	}

	return out
}

// Mul returns m·n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var out Mat3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			out[a][b] = m[a][0]*n[0][b] + m[a][1]*n[1][b] + m[a][2]*n[2][b]
		}
	}

	return out
}

// T returns mᵀ.
func (m Mat3) T() Mat3 {
	var out Mat3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			out[a][b] = m[b][a]
		}
	}

	return out
}

// AddM returns m+n.
func (m Mat3) AddM(n Mat3) Mat3 {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			m[a][b] += n[a][b]
		}
	}

	return m
}

// ScaleM returns s·m.
func (m Mat3) ScaleM(s float64) Mat3 {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			m[a][b] *= s
		}
	}

	return m
}

// Identity3 returns the 3×3 identity.
func Identity3() Mat3 { return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }

// Rows returns m as [][]float64 restricted to the leading dim×dim block.
func (m Mat3) Rows(dim int) [][]float64 {
	out := make([][]float64, dim)
	for a := 0; a < dim; a++ {
		out[a] = append([]float64(nil), m[a][:dim]...)
	}

	return out
}
