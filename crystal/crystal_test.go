// SPDX-License-Identifier: MIT

package crystal_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/crystal"
)

func TestStock_GroupOrders(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order int
		dim   int
	}{
		{"sc", 48, 3},
		{"bcc", 48, 3},
		{"fcc", 48, 3},
		{"hcp", 24, 3},
		{"square", 8, 2},
		{"triangular", 12, 2},
		{"honeycomb", 12, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := crystal.Stock(tc.name)
			require.True(t, ok)
			assert.Equal(t, tc.order, c.Order())
			assert.Equal(t, tc.dim, c.Dim())
			assert.True(t, c.Op(0).IsIdentity())
		})
	}
}

func TestGPos_MatchesCartesianAction(t *testing.T) {
	c, ok := crystal.Stock("hcp")
	require.True(t, ok)
	R := crystal.LVec{1, -2, 1}
	for _, g := range c.Ops() {
		for i := 0; i < c.NumSites(0); i++ {
			x := c.Pos(0, i, R)
			want := c.GDirec(g, x).Add(c.ToCart(g.Trans))
			R2, j := c.GPos(g, R, 0, i)
			got := c.Pos(0, j, R2)
			assert.True(t, want.Close(got, 1e-9), "op %v site %d: %v vs %v", g.Rot, i, want, got)
		}
	}
}

func TestCartRot_IsOrthogonal(t *testing.T) {
	c, _ := crystal.Stock("triangular")
	for _, g := range c.Ops() {
		p := g.CartRot.Mul(g.CartRot.T())
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				want := 0.0
				if a == b {
					want = 1
				}
				assert.InDelta(t, want, p[a][b], 1e-12)
			}
		}
	}
}

func TestSiteList_And_VectorBasis(t *testing.T) {
	hcp, _ := crystal.Stock("hcp")
	sl, err := hcp.SiteList(0)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}}, sl)
	assert.Empty(t, hcp.VectorBasis(0, 0))

	fcc, _ := crystal.Stock("fcc")
	assert.Empty(t, fcc.VectorBasis(0, 0))
	assert.Len(t, fcc.Stabilizer(0, 0), 48)

	// a site on a polar axis keeps that axis
	polar, err := crystal.New(
		[][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1.5}},
		[][][]float64{{{0, 0, 0}}, {{0.5, 0.5, 0.3}}},
		[]string{"A", "B"})
	require.NoError(t, err)
	vb := polar.VectorBasis(1, 0)
	require.Len(t, vb, 1)
	assert.InDelta(t, 1, math.Abs(vb[0][2]), 1e-12)

	_, err = hcp.SiteList(3)
	assert.ErrorIs(t, err, crystal.ErrChemistry)
}

func TestNew_Errors(t *testing.T) {
	_, err := crystal.New([][]float64{{1}}, [][][]float64{{{0}}}, nil)
	assert.ErrorIs(t, err, crystal.ErrBadDimension)

	_, err = crystal.New([][]float64{{1, 0}, {2, 0}}, [][][]float64{{{0, 0}}}, nil)
	assert.ErrorIs(t, err, crystal.ErrBadLattice)

	_, err = crystal.New([][]float64{{1, 0}, {0, 1}}, [][][]float64{{{0, 0}, {1, 1}}}, nil)
	assert.ErrorIs(t, err, crystal.ErrBadBasis)

	_, err = crystal.New([][]float64{{1, 0}, {0, 1}}, [][][]float64{{}}, nil)
	assert.ErrorIs(t, err, crystal.ErrBadBasis)
}

func TestReciprocal_Duality(t *testing.T) {
	c, _ := crystal.Stock("bcc")
	a := c.LatticeVectors()
	b := c.Reciprocal()
	for i := range a {
		for j := range b {
			want := 0.0
			if i == j {
				want = 2 * math.Pi
			}
			assert.InDelta(t, want, a[i].Dot(b[j]), 1e-12)
		}
	}
	assert.InDelta(t, 0.5, c.Volume(), 1e-12)
}

func TestLatticeOf_RoundTrip(t *testing.T) {
	c, _ := crystal.Stock("honeycomb")
	R := crystal.LVec{2, -1, 0}
	dx := c.Pos(0, 1, R).Sub(c.Pos(0, 0, crystal.LVec{}))
	got, ok := c.LatticeOf(0, 0, 1, dx)
	require.True(t, ok)
	assert.Equal(t, R, got)
	_, ok = c.LatticeOf(0, 0, 0, dx)
	assert.False(t, ok)
}

func TestSymmetrizeTensor_Cubic(t *testing.T) {
	c, _ := crystal.Stock("sc")
	tens := crystal.Mat3{{3, 1, 0}, {1, 0, 0}, {0, 0, 0}}
	s := c.SymmetrizeTensor(c.Stabilizer(0, 0), tens)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			want := 0.0
			if a == b {
				want = 1
			}
			assert.InDelta(t, want, s[a][b], 1e-12)
		}
	}
}

func TestSpec_RoundTrip(t *testing.T) {
	for _, name := range []string{"fcc", "hcp", "honeycomb"} {
		t.Run(name, func(t *testing.T) {
			c, ok := crystal.Stock(name)
			require.True(t, ok)
			back, err := crystal.FromSpec(c.Spec())
			require.NoError(t, err)
			assert.Equal(t, c.Dim(), back.Dim())
			assert.Equal(t, c.Order(), back.Order())
			assert.Equal(t, c.Lattice(), back.Lattice())
			for i := 0; i < c.NumSites(0); i++ {
				assert.Equal(t, c.Basis(0, i), back.Basis(0, i))
			}
			assert.Equal(t, c.Chemistry(0), back.Chemistry(0))
		})
	}

	_, err := crystal.FromSpec(crystal.Spec{Lattice: [][]float64{{1}}})
	assert.ErrorIs(t, err, crystal.ErrBadDimension)
}
