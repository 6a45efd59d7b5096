// SPDX-License-Identifier: MIT

package bfs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/bfs"
	"github.com/sohamch/Onsager/core"
)

// chain builds 0→1→…→n-1.
func chain(n int, directed bool) *core.Graph {
	g := core.NewGraph(core.WithDirected(directed))
	for i := 0; i < n-1; i++ {
		_, _ = g.AddEdge(i, i+1, 0)
	}

	return g
}

func TestBFS_NilGraph(t *testing.T) {
	res, err := bfs.BFS(nil, 0)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, bfs.ErrGraphNil)
}

func TestBFS_StartNotFound(t *testing.T) {
	_, err := bfs.BFS(chain(3, false), 9)
	assert.ErrorIs(t, err, bfs.ErrStartVertexNotFound)
}

func TestBFS_ChainDepthsAndPath(t *testing.T) {
	res, err := bfs.BFS(chain(5, true), 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, res.Order)
	assert.Equal(t, 4, res.Depth[4])
	p, err := res.PathTo(3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, p)

	back, err := bfs.BFS(chain(5, true), 4)
	require.NoError(t, err)
	_, err = back.PathTo(0)
	assert.ErrorIs(t, err, bfs.ErrNoPath)
}

func TestBFS_MaxDepth(t *testing.T) {
	res, err := bfs.BFS(chain(6, false), 0, bfs.WithMaxDepth(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, res.Order)

	_, err = bfs.BFS(chain(2, false), 0, bfs.WithMaxDepth(-1))
	assert.ErrorIs(t, err, bfs.ErrOptionViolation)
}

func TestBFS_OnVisitAbort(t *testing.T) {
	stop := errors.New("stop")
	_, err := bfs.BFS(chain(4, false), 0, bfs.WithOnVisit(func(v, _ int) error {
		if v == 2 {
			return stop
		}

		return nil
	}))
	assert.ErrorIs(t, err, stop)
}

func TestBFS_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bfs.BFS(chain(4, false), 0, bfs.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComponents_DirectedIsWeak(t *testing.T) {
	g := core.NewGraph(core.WithDirected(true))
	_, _ = g.AddEdge(1, 0, 0)
	_, _ = g.AddEdge(2, 1, 0)
	_, _ = g.AddEdge(5, 4, 0)
	require.NoError(t, g.AddVertex(7))

	label, n, err := bfs.Components(g)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, map[int]int{0: 0, 1: 0, 2: 0, 4: 1, 5: 1, 7: 2}, label)
}
