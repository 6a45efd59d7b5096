// SPDX-License-Identifier: MIT

package states

// StateIndex indexes a state inside a StarSet.
type StateIndex int

// StarIndex indexes a star inside a StarSet.
type StarIndex int

// BasisIndex indexes a vector-star basis function.
type BasisIndex int

// NoStar marks a state outside every star of a set.
const NoStar StarIndex = -1
