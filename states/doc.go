// SPDX-License-Identifier: MIT

// Package states enumerates defect configurations and groups them into
// stars: classes of configurations related by the space group.
//
// A State is one of two variants sharing the same indexing machinery:
//
//   - Pure: a single defect orientation (site plus orientation vector) in
//     lattice cell R. Vacancies carry a zero orientation, one per site, so
//     their orientation index equals the site index.
//   - Complex: a solute on a basis site paired with a Pure defect. Complexes
//     are kept in canonical form with the solute in the home cell, so the
//     defect offset is the relative displacement of the pair.
//
// A Container binds a crystal, a chemistry and an orientation list, and
// knows how to apply group operations to either variant. StarSet is generic
// over the variant: it indexes states (StateIndex), stars (StarIndex) and
// answers lookups in both directions. Index types are distinct so a state
// index cannot be passed where a star index is expected.
//
// Star sets are frozen after construction. Extend returns a larger set in
// which every existing state keeps its StateIndex and StarIndex; new states
// are appended.
package states
