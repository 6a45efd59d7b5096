// SPDX-License-Identifier: MIT

// Package vstar builds the vector-star basis over a pair-state star set and
// the expansions that reduce the transport problem to that basis.
//
// A vector star is a star together with one vector per member state, the
// images of an invariant vector of the representative under the operation
// that maps the representative onto the member. Vectors are scaled by
// 1/√|star| so that Σ|v|² = 1 over a vector star. A star contributes as many
// vector stars as its representative's stabilizer leaves invariant
// directions: the parallel vector first, then any perpendicular ones. Origin
// states (vacancy on the solute site) have no displacement and contribute
// only the invariant vectors of their site, often none.
//
// Expansions (all indexed by BasisIndex):
//
//	Outer         [i][j]    Σ_m v_i(m) ⊗ v_j(m) for vector stars on one star
//	GFExpansion   [i][j][k] coefficient of the k-th GF star in G_ij
//	RateExpansion           jump-network rate and escape terms, with the
//	                        bare reference terms per omega0 class
//	BiasExpansion           geometric bias per jump class
//	BareExpansion           ½ Σ dx ⊗ dx per jump class
package vstar
