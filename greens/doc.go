// SPDX-License-Identifier: MIT

// Package greens computes the lattice Green's function of a bare vacancy
// hopping on the sites of one chemistry.
//
// With site probabilities p_i, escape rates ω_ij and symmetric rates
// ν_ij = √(ω_ij ω_ji), the symmetrized rate matrix in Fourier space is
//
//	S_ij(q) = Σ_{jumps i→j} ν e^{iq·dx} - δ_ij Σ_k ω_ik
//
// and G(q) = S(q)⁻¹. Near q = 0, G(q) ≈ -φφᵀ/(q·D·q) with φ_i = √p_i and D
// the vacancy diffusivity. The Brillouin-zone sum is taken over a
// half-shifted mesh with the pole
//
//	P_ij(q) = -φ_iφ_j exp(-q·D·q/κ²)/(q·D·q)
//
// subtracted; its Fourier transform is added back in closed form:
//
//	3D: -φ_iφ_j V erf(κu/2)/(4π√det D u),   u² = xᵀD⁻¹x
//	2D:  φ_iφ_j V (γ + ln z + E1(z))/(4π√det D),   z = κ²u²/4
//
// The 2D Green's function diverges logarithmically; the closed form above
// fixes the additive constant so that the pole contributes nothing at x = 0.
// Differences of G, which are all the transport solver uses, do not depend
// on that choice.
//
// κ defaults to qb·√Dmin/√(12 ln 10), with qb half the shortest reciprocal
// vector, so the Gaussian has decayed to 1e-12 at the zone boundary.
package greens
