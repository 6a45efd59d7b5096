// SPDX-License-Identifier: MIT

// Package crystal is the in-memory Crystal service: lattice vectors, basis
// sites grouped by chemistry, and the space group found by brute force.
//
// Coordinates:
//   - Vec is a Cartesian vector; LVec an integer lattice vector. Both carry
//     three components; two-dimensional crystals leave the third at zero.
//   - Basis positions are fractional (lattice) coordinates in [0,1).
//
// Group operations are discovered once in New: every integer matrix with
// entries in {-1,0,1} that preserves the metric is paired with each
// fractional translation that maps the basis of every chemistry onto itself.
// This covers the conventional reduced cells of every stock lattice in this
// package (SC, BCC, FCC, HCP, square, triangular, honeycomb). The identity
// is always operation 0.
//
// A Crystal is immutable after construction and safe for concurrent reads.
package crystal
