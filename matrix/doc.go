// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear algebra used by the transport
// solver: a row-major Dense type with safe accessors, elementwise kernels,
// products, a partially pivoted LU factorization with triangular solves,
// inversion and determinants, and a Jacobi eigen-solver for small symmetric
// matrices.
//
// The systems solved in this module are small (tens to a few hundred rows:
// one row per vector star), so every kernel favours determinism and clear
// error reporting over blocking or SIMD tricks:
//
//   - fixed loop orders, no map iteration;
//   - sentinel errors ("matrix: ...") wrapped with the operation tag, matched
//     with errors.Is;
//   - no panics on user-triggered conditions.
//
// Quick example:
//
//	a, _ := matrix.NewFromRows([][]float64{{4, 1}, {1, 3}})
//	lu, _ := matrix.Factorize(a)
//	x, _ := lu.Solve([]float64{1, 2})
package matrix
