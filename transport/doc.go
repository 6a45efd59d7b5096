// SPDX-License-Identifier: MIT

// Package transport computes Onsager transport coefficients for solute
// diffusion mediated by vacancies, and the diffusivity of a bare
// interstitial defect.
//
// VacancyMediated owns the rate-independent topology of one vacancy network:
// the thermodynamic and kinetic shells, the omega1 and omega2 jump networks,
// the vector-star basis with its rate, bias and Green's function expansions,
// and a Green's function calculator. Lij takes dimensionless free energies
// (see PreEne2BetaFree) and returns
//
//	Lvv   bare vacancy term, to be scaled by cv/kT
//	Lss   solute-solute, by cv·cs/kT
//	Lsv   solute-vacancy, by cv·cs/kT
//	Lvv1  solute correction to vacancy-vacancy, by cv·cs/kT
//
// With δω the change of the rate matrix in the basis, G0 the bare Green's
// function and b the bias vectors, the correlated part is
//
//	L = bᵀ·O·(1 + G0·δω)⁻¹·G0·b / N
//
// where O holds the vector-star outer products and N the number of sites.
// When the solute-vacancy exchange rate dominates (or is negligible) by more
// than RatioThreshold relative to the bulk rates, this form cancels
// catastrophically; Lij then switches to an asymptotic rewrite of the same
// quantity that never subtracts large terms. The Regime of the result tells
// which form was used.
//
// Green's function values and the bare vacancy diffusivity depend only on
// the vacancy free energies; they are cached per input inside the
// calculator. A failed Lij leaves the cache unchanged.
package transport
