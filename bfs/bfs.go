// SPDX-License-Identifier: MIT

package bfs

import (
	"fmt"

	"github.com/sohamch/Onsager/core"
)

type queueItem struct {
	v, depth int
}

// BFS runs breadth-first search on g from start.
//
// Errors: ErrGraphNil, ErrStartVertexNotFound, ErrOptionViolation, context
// errors, or a wrapped OnVisit error.
//
// Complexity: O(V + E).
func BFS(g *core.Graph, start int, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !g.HasVertex(start) {
		return nil, ErrStartVertexNotFound
	}

	n := g.VertexCount()
	res := &Result{
		Order:  make([]int, 0, n),
		Depth:  map[int]int{start: 0},
		Parent: make(map[int]int, n),
	}
	queue := make([]queueItem, 0, n)
	queue = append(queue, queueItem{v: start})
	for len(queue) > 0 {
		if err := o.Ctx.Err(); err != nil {
			return res, err
		}
		item := queue[0]
		queue = queue[1:]
		res.Order = append(res.Order, item.v)
		if err := o.OnVisit(item.v, item.depth); err != nil {
			return res, fmt.Errorf("bfs: OnVisit error at %d: %w", item.v, err)
		}
		if o.MaxDepth > 0 && item.depth+1 > o.MaxDepth {
			continue
		}
		nbrs, err := g.NeighborIDs(item.v)
		if err != nil {
			return res, err
		}
		for _, w := range nbrs {
			if _, seen := res.Depth[w]; seen || !o.FilterNeighbor(item.v, w) {
				continue
			}
			res.Depth[w] = item.depth + 1
			res.Parent[w] = item.v
			queue = append(queue, queueItem{v: w, depth: item.depth + 1})
		}
	}

	return res, nil
}

// Components labels the weakly connected components of g. The returned map
// sends each vertex to its component id; ids are assigned in ascending order
// of each component's smallest vertex.
func Components(g *core.Graph) (map[int]int, int, error) {
	if g == nil {
		return nil, 0, ErrGraphNil
	}
	und := g
	if g.Directed() {
		und = core.NewGraph(core.WithMultiEdges(), core.WithLoops())
		for _, v := range g.Vertices() {
			_ = und.AddVertex(v)
		}
		for _, e := range g.Edges() {
			if _, err := und.AddEdge(e.From, e.To, e.Label); err != nil {
				return nil, 0, err
			}
		}
	}
	label := make(map[int]int, und.VertexCount())
	count := 0
	for _, v := range und.Vertices() {
		if _, done := label[v]; done {
			continue
		}
		res, err := BFS(und, v)
		if err != nil {
			return nil, 0, err
		}
		for _, w := range res.Order {
			label[w] = count
		}
		count++
	}

	return label, count, nil
}
