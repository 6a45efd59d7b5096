// SPDX-License-Identifier: MIT

// Package shells grows solute-vacancy pair-state star sets by repeated
// application of a vacancy jump network, and derives the jump networks of
// the five-frequency picture on them.
//
// Shell n holds every pair state reachable from the solute by a sum of n
// vacancy jumps (never passing through the solute itself). Build returns
// three nested sets:
//
//   - Thermo: Nthermo shells; solute-vacancy interactions live here.
//   - NN: the first shell alone.
//   - Kinetic: Thermo + NN. Every Thermo state keeps its index and star,
//     and the states beyond MixedStartIndex form the outer shell, where the
//     pair is treated as non-interacting (bulk-like).
//
// On the kinetic set, omega1 jumps move the vacancy while the solute stays
// put, and omega2 jumps exchange solute and vacancy. Omega1 classes whose
// both endpoints are in outer stars are pruned: they are identical to the
// bare vacancy jump and enter only through the Green's function.
//
// The GF star set holds every endpoint difference of two kinetic states and
// indexes the Green's function values needed by the vector-star expansion.
//
// Generation logs per-shell progress at Debug and phase totals at Info;
// large shell counts on low-symmetry lattices are slow and the timing is
// the only progress signal.
package shells
