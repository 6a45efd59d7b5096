// SPDX-License-Identifier: MIT

package jumpnet_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/states"
)

func sites(t *testing.T, name string, cutoff float64, opts ...jumpnet.Option) *jumpnet.Network {
	t.Helper()
	crys, ok := crystal.Stock(name)
	require.True(t, ok)
	n, err := jumpnet.Sites(crys, 0, cutoff, opts...)
	require.NoError(t, err)

	return n
}

func TestSites_Counts(t *testing.T) {
	for _, tc := range []struct {
		name    string
		cutoff  float64
		classes []int
		dx      float64
	}{
		{"fcc", 0.75, []int{12}, math.Sqrt(0.5)},
		{"bcc", 0.9, []int{8}, math.Sqrt(3) / 2},
		{"sc", 1.01, []int{6}, 1},
		{"square", 1.01, []int{4}, 1},
		{"triangular", 1.01, []int{6}, 1},
		{"honeycomb", 0.6, []int{6}, 1 / math.Sqrt(3)},
		{"hcp", 1.01, []int{12, 12}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n := sites(t, tc.name, tc.cutoff)
			require.Equal(t, len(tc.classes), n.NumClasses())
			for k, want := range tc.classes {
				assert.Len(t, n.Class(k), want)
				for _, ij := range n.Indexed()[k] {
					assert.InDelta(t, tc.dx, ij.Dx.Norm(), 1e-10)
				}
			}
		})
	}
}

func TestClasses_SymmetryAndReversal(t *testing.T) {
	for _, name := range []string{"fcc", "hcp", "honeycomb", "triangular"} {
		t.Run(name, func(t *testing.T) {
			n := sites(t, name, 1.01)
			c := n.Container()
			for k := 0; k < n.NumClasses(); k++ {
				class := n.Class(k)
				for _, j := range class {
					_, ok := n.Equivalent(class[0], j, false)
					require.True(t, ok, "%v not an image of %v", j, class[0])

					rk, _, ok := n.ClassOf(j.Reverse())
					require.True(t, ok)
					assert.Equal(t, k, rk)
					assert.True(t, jumpnet.SiteDx(c, j.Reverse()).Close(jumpnet.SiteDx(c, j).Neg(), 1e-12))
				}
			}
		})
	}
}

func TestCollisionFilter_SC(t *testing.T) {
	assert.Equal(t, 4, sites(t, "sc", 2.01).NumClasses())

	// the (200) jump passes straight through a neighbour
	n := sites(t, "sc", 2.01, jumpnet.WithCollision(0.5, 0))
	require.Equal(t, 3, n.NumClasses())
	for _, class := range n.Indexed() {
		assert.Less(t, class[0].Dx.Norm(), 1.8)
	}

	// (110) passes 1/√2 from two neighbours; (111) passes √(2/3)
	n = sites(t, "sc", 2.01, jumpnet.WithCollision(0.75, 0))
	require.Equal(t, 2, n.NumClasses())
	assert.InDelta(t, 1, n.Indexed()[0][0].Dx.Norm(), 1e-12)
	assert.InDelta(t, math.Sqrt(3), n.Indexed()[1][0].Dx.Norm(), 1e-12)

	// everything collides
	assert.Equal(t, 0, sites(t, "sc", 2.01, jumpnet.WithCollision(2, 0)).NumClasses()+
		sites(t, "sc", 0.5).NumClasses())
}

func TestRegenerate_RoundTrip(t *testing.T) {
	n := sites(t, "fcc", 1.01)
	require.Equal(t, 2, n.NumClasses())

	all, err := n.Regenerate([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, n.Classes(), all.Classes())
	assert.Equal(t, n.Indexed(), all.Indexed())

	second, err := n.Regenerate([]int{1})
	require.NoError(t, err)
	require.Equal(t, 1, second.NumClasses())
	assert.Equal(t, n.Class(1), second.Class(0))
	assert.Equal(t, 2, n.NumClasses(), "receiver unchanged")

	_, err = n.Regenerate([]int{0, 0})
	assert.ErrorIs(t, err, jumpnet.ErrSelection)
	_, err = n.Regenerate([]int{2})
	assert.ErrorIs(t, err, jumpnet.ErrSelection)
}

func TestBuild_Dumbbell(t *testing.T) {
	crys, _ := crystal.Stock("fcc")
	c, err := states.NewContainer(crys, 0, [][]crystal.Vec{{{0.25, 0, 0}}})
	require.NoError(t, err)
	n, err := jumpnet.Build(c, 0.75, jumpnet.WithCollision(0.2, 0.1))
	require.NoError(t, err)
	require.NotZero(t, n.NumClasses())

	for k := 0; k < n.NumClasses(); k++ {
		for _, j := range n.Class(k) {
			assert.NotZero(t, j.C1)
			assert.NotZero(t, j.C2)
			for g := 0; g < crys.Order(); g++ {
				gk, _, ok := n.ClassOf(j.Image(c, g))
				require.True(t, ok)
				require.Equal(t, k, gk)
			}
			assert.True(t, jumpnet.AtomDx(c, j.Reverse()).Close(jumpnet.AtomDx(c, j).Neg(), 1e-12))
			assert.LessOrEqual(t, jumpnet.AtomDx(c, j).Norm(), 0.75+1e-8)
		}
	}
}

func TestBuild_Errors(t *testing.T) {
	_, err := jumpnet.Build(nil, 1)
	assert.ErrorIs(t, err, jumpnet.ErrNilContainer)
	crys, _ := crystal.Stock("sc")
	c, err := states.NewVacancy(crys, 0)
	require.NoError(t, err)
	for _, cut := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = jumpnet.Build(c, cut)
		assert.ErrorIs(t, err, jumpnet.ErrCutoff)
	}
}
