// SPDX-License-Identifier: MIT

// Package core defines the thread-safe transition Graph shared by the jump
// network builders: vertices are integer state indices, edges are directed
// transitions labelled with the jump type that produced them.
//
// Concurrency model:
//   - muVert guards the vertex set; muEdgeAdj guards edges and adjacency.
//   - Lock order is always muVert then muEdgeAdj.
//   - All read accessors return sorted copies, so callers can iterate
//     deterministically without holding locks.
//
// Errors:
//
//	ErrVertexNotFound      - an edge endpoint or query vertex is absent.
//	ErrNegativeVertex      - vertex indices are non-negative.
//	ErrLoopNotAllowed      - self-transition when loops are disabled.
//	ErrMultiEdgeNotAllowed - a second edge between the same ordered pair.
package core
