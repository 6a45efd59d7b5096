// SPDX-License-Identifier: MIT

// Package jumpnet builds jump networks: symmetry-grouped transitions between
// Pure defect states within a cutoff distance.
//
// A Jump carries its two states and two direction tags. For oriented
// defects (dumbbells) a tag of +1 or -1 names the end of the dumbbell
// holding the moving atom; vacancies carry 0. Every class holds a complete
// orbit of jumps together with the orbit of their reverses, so a class
// shares one rate in both directions.
//
// Collision filter: the moving atom travels in a straight line. A candidate
// is dropped when that path passes closer than the host radius to any
// occupied site other than the two it connects, or closer than the partner
// radius to the atoms it shares a dumbbell with. Dropped candidates shrink
// the network; an empty network is a valid result.
//
// Networks are immutable. Regenerate returns a new network restricted to a
// chosen subset of classes, with its indexed form rebuilt.
package jumpnet
