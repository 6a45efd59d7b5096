// SPDX-License-Identifier: MIT

// Package bfs provides breadth-first search over a core.Graph, returning
// hop distances, parent links and visit order, plus connected-component
// labelling.
//
// The shell builders use Components to check that every kinetic state is
// reachable from the thermodynamic shell through the jump network.
//
// Traversal is deterministic: neighbors are expanded in ascending index
// order, and Components labels components in order of their smallest vertex.
package bfs
