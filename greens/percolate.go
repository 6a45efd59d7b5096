// SPDX-License-Identifier: MIT

package greens

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sohamch/Onsager/bfs"
	"github.com/sohamch/Onsager/core"
	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
)

// percolates reports ErrDisconnected unless the jumps join every site into
// one component and their closed loops span all dim directions. It depends
// only on the network, never on rates.
func percolates(nsite, dim int, classes [][]jumpnet.IndexedJump) error {
	if nsite == 0 {
		return fmt.Errorf("%w: no sites", ErrDisconnected)
	}
	g := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	for v := 0; v < nsite; v++ {
		if err := g.AddVertex(v); err != nil {
			return err
		}
	}
	step := make(map[[2]int]crystal.Vec)
	for _, class := range classes {
		for _, j := range class {
			if _, err := g.AddEdge(j.I, j.J, 0); err != nil {
				return err
			}
			if _, ok := step[[2]int{j.I, j.J}]; !ok {
				step[[2]int{j.I, j.J}] = j.Dx
				step[[2]int{j.J, j.I}] = j.Dx.Neg()
			}
		}
	}
	_, count, err := bfs.Components(g)
	if err != nil {
		return err
	}
	if count > 1 {
		return fmt.Errorf("%w: %d disconnected site sets", ErrDisconnected, count)
	}

	// tree positions; every jump then closes a loop pos_i + dx - pos_j
	tree, err := bfs.BFS(g, 0)
	if err != nil {
		return err
	}
	pos := make([]crystal.Vec, nsite)
	for _, v := range tree.Order[1:] {
		p := tree.Parent[v]
		pos[v] = pos[p].Add(step[[2]int{p, v}])
	}
	span := mat.NewSymDense(dim, nil)
	for _, class := range classes {
		for _, j := range class {
			l := pos[j.I].Add(j.Dx).Sub(pos[j.J])
			for a := 0; a < dim; a++ {
				for b := a; b < dim; b++ {
					span.SetSym(a, b, span.At(a, b)+l[a]*l[b])
				}
			}
		}
	}
	var es mat.EigenSym
	if !es.Factorize(span, false) {
		return fmt.Errorf("%w: loop eigendecomposition failed", ErrDisconnected)
	}
	vals := es.Values(nil)
	rank := 0
	for _, l := range vals {
		if l > 1e-8*math.Max(vals[dim-1], 1e-300) {
			rank++
		}
	}
	if rank < dim {
		return fmt.Errorf("%w: jumps span %d of %d directions", ErrDisconnected, rank, dim)
	}

	return nil
}
