// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrNegativeVertex indicates a negative vertex index.
	ErrNegativeVertex = errors.New("core: vertex index is negative")

	// ErrLoopNotAllowed indicates a self-loop was attempted when loops are disabled.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted when multi-edges are disabled.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")
)

// Edge is a transition From→To carrying an integer Label (the jump type in
// the jump networks). ID is assigned in insertion order.
type Edge struct {
	ID       int
	From, To int
	Label    int
}

// GraphOption configures a Graph before creation.
type GraphOption func(g *Graph)

// WithDirected makes edges one-way. Undirected graphs record each edge in
// both adjacency lists.
func WithDirected(directed bool) GraphOption {
	return func(g *Graph) { g.directed = directed }
}

// WithMultiEdges permits parallel edges between the same ordered pair.
func WithMultiEdges() GraphOption {
	return func(g *Graph) { g.allowMulti = true }
}

// WithLoops permits self-loops.
func WithLoops() GraphOption {
	return func(g *Graph) { g.allowLoops = true }
}

// Graph is an in-memory graph over integer vertices.
type Graph struct {
	muVert    sync.RWMutex // guards vertices
	muEdgeAdj sync.RWMutex // guards edges and adj

	directed   bool
	allowMulti bool
	allowLoops bool

	vertices map[int]struct{}
	edges    []Edge
	// adj[from][to] lists edge IDs.
	adj map[int]map[int][]int
}

// NewGraph creates an empty Graph. Defaults: undirected, no loops, no
// multi-edges.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		vertices: make(map[int]struct{}),
		adj:      make(map[int]map[int][]int),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}
