// SPDX-License-Identifier: MIT

// Package orbit is the group-orbit engine: given a finite group acting on
// some element type, it computes orbits, the operations relating two
// elements, stabilizers, and partitions of element lists into symmetry
// classes.
//
// The engine is generic over the element and its comparable key:
//
//	type Action[T any, K comparable] interface {
//		Order() int
//		Apply(g int, x T) T
//		Key(x T) K
//	}
//
// Equality is always decided through Key, never through operation counts,
// so an element fixed by a non-trivial subgroup yields an orbit smaller than
// the group order.
//
// Determinism: Orbit preserves first-seen order (operation 0 first), and
// Partition lists classes in order of their first member. Callers that feed
// the same input get the same indices back, which the state containers rely
// on for stable indexing.
//
// Two partitioners are provided:
//   - Partition groups elements shell by shell (a shell being a run of
//     elements with equal norm) and builds the key set of each new
//     representative's orbit once: O(n·|G|) applications.
//   - PartitionNaive compares every element against every class
//     representative through Equivalent: O(n·classes·|G|). It is kept as an
//     independent oracle for tests.
package orbit
