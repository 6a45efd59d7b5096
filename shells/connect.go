// SPDX-License-Identifier: MIT

package shells

import (
	"fmt"

	"github.com/sohamch/Onsager/bfs"
	"github.com/sohamch/Onsager/core"
)

// CheckConnected reports ErrDisconnected unless vertices 0..n (n is the
// bulk) form a single component under edges. Vertices for which skip
// reports true take no part (origin states have no jumps); skip may be nil.
func CheckConnected(n int, edges [][2]int, skip func(v int) bool) error {
	g := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	for v := 0; v <= n; v++ {
		if skip != nil && skip(v) {
			continue
		}
		if err := g.AddVertex(v); err != nil {
			return shellsErrorf(opConnected, err)
		}
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e[0], e[1], 0); err != nil {
			return shellsErrorf(opConnected, err)
		}
	}
	labels, count, err := bfs.Components(g)
	if err != nil {
		return shellsErrorf(opConnected, err)
	}
	if count > 1 {
		sizes := make(map[int]int)
		for _, l := range labels {
			sizes[l]++
		}

		return shellsErrorf(opConnected, fmt.Errorf("%w: %d components %v", ErrDisconnected, count, sizes))
	}

	return nil
}
