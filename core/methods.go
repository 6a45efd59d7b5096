// SPDX-License-Identifier: MIT

package core

import "sort"

// Directed reports the construction-time directedness.
func (g *Graph) Directed() bool { return g.directed }

// AddVertex inserts v; adding an existing vertex is a no-op.
func (g *Graph) AddVertex(v int) error {
	if v < 0 {
		return ErrNegativeVertex
	}
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.vertices[v] = struct{}{}

	return nil
}

// HasVertex reports whether v is present.
func (g *Graph) HasVertex(v int) bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	_, ok := g.vertices[v]

	return ok
}

// AddEdge inserts from→to with the given label, creating missing endpoints.
//
// Errors: ErrNegativeVertex, ErrLoopNotAllowed, ErrMultiEdgeNotAllowed.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to, label int) (int, error) {
	if from < 0 || to < 0 {
		return -1, ErrNegativeVertex
	}
	if from == to && !g.allowLoops {
		return -1, ErrLoopNotAllowed
	}
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	if !g.allowMulti && len(g.adj[from][to]) > 0 {
		return -1, ErrMultiEdgeNotAllowed
	}
	g.vertices[from] = struct{}{}
	g.vertices[to] = struct{}{}
	id := len(g.edges)
	g.edges = append(g.edges, Edge{ID: id, From: from, To: to, Label: label})
	g.link(from, to, id)
	if !g.directed && from != to {
		g.link(to, from, id)
	}

	return id, nil
}

func (g *Graph) link(from, to, id int) {
	row, ok := g.adj[from]
	if !ok {
		row = make(map[int][]int)
		g.adj[from] = row
	}
	row[to] = append(row[to], id)
}

// HasEdge reports whether an edge from→to exists (either direction when
// undirected).
func (g *Graph) HasEdge(from, to int) bool {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.adj[from][to]) > 0
}

// Vertices returns all vertices in ascending order.
func (g *Graph) Vertices() []int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	out := make([]int, 0, len(g.vertices))
	for v := range g.vertices {
		out = append(out, v)
	}
	sort.Ints(out)

	return out
}

// NeighborIDs returns the distinct successors of v in ascending order.
func (g *Graph) NeighborIDs(v int) ([]int, error) {
	if !g.HasVertex(v) {
		return nil, ErrVertexNotFound
	}
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	row := g.adj[v]
	out := make([]int, 0, len(row))
	for w := range row {
		out = append(out, w)
	}
	sort.Ints(out)

	return out, nil
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)

	return out
}

// VertexCount returns |V|.
func (g *Graph) VertexCount() int {
	g.muVert.RLock()
	defer g.muVert.RUnlock()

	return len(g.vertices)
}

// EdgeCount returns |E|.
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.edges)
}

// Clone returns a deep copy with the same configuration.
func (g *Graph) Clone() *Graph {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	c := &Graph{
		directed:   g.directed,
		allowMulti: g.allowMulti,
		allowLoops: g.allowLoops,
		vertices:   make(map[int]struct{}, len(g.vertices)),
		edges:      make([]Edge, len(g.edges)),
		adj:        make(map[int]map[int][]int, len(g.adj)),
	}
	for v := range g.vertices {
		c.vertices[v] = struct{}{}
	}
	copy(c.edges, g.edges)
	for from, row := range g.adj {
		cr := make(map[int][]int, len(row))
		for to, ids := range row {
			cr[to] = append([]int(nil), ids...)
		}
		c.adj[from] = cr
	}

	return c
}
