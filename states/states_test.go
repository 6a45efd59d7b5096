// SPDX-License-Identifier: MIT

package states_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/states"
)

func stock(t *testing.T, name string) *crystal.Crystal {
	t.Helper()
	c, ok := crystal.Stock(name)
	require.True(t, ok, name)

	return c
}

func vacancy(t *testing.T, name string) *states.Container {
	t.Helper()
	c, err := states.NewVacancy(stock(t, name), 0)
	require.NoError(t, err)

	return c
}

// requirePartition checks that stars are disjoint, cover every state, and
// are closed under the group.
func requirePartition[S states.Member[S]](t *testing.T, ss *states.StarSet[S]) {
	t.Helper()
	c := ss.Container()
	covered := make([]int, ss.NumStates())
	for k := 0; k < ss.NumStars(); k++ {
		for _, i := range ss.Star(states.StarIndex(k)) {
			covered[i]++
			require.Equal(t, states.StarIndex(k), ss.StarOf(i))
			for g := 0; g < c.Order(); g++ {
				img := ss.State(i).Image(c, g)
				require.Equal(t, states.StarIndex(k), ss.StarOfState(img), "image of %v under %d", ss.State(i), g)
			}
		}
	}
	for i, n := range covered {
		require.Equal(t, 1, n, "state %d", i)
	}
}

func TestComplexStars_FCC(t *testing.T) {
	c := vacancy(t, "fcc")
	ss, err := states.NewStarSet(c, c.ComplexStates(1.0, false), 0)
	require.NoError(t, err)
	assert.Equal(t, 18, ss.NumStates())
	require.Equal(t, 2, ss.NumStars())
	assert.Len(t, ss.Star(0), 12)
	assert.Len(t, ss.Star(1), 6)
	assert.InDelta(t, 0.5, ss.Dx(ss.Star(0)[0]).Norm2(), 1e-12)
	requirePartition(t, ss)

	withOrigin, err := states.NewStarSet(c, c.ComplexStates(1.0, true), 0)
	require.NoError(t, err)
	assert.Equal(t, 19, withOrigin.NumStates())
	assert.Equal(t, 3, withOrigin.NumStars())
	assert.True(t, c.IsOrigin(withOrigin.Rep(0)))
}

func TestComplexStars_HCPSplitsEqualShell(t *testing.T) {
	c := vacancy(t, "hcp")
	ss, err := states.NewStarSet(c, c.ComplexStates(1.0, false), 0)
	require.NoError(t, err)
	assert.Equal(t, 24, ss.NumStates())
	require.Equal(t, 2, ss.NumStars())
	assert.Len(t, ss.Star(0), 12)
	assert.Len(t, ss.Star(1), 12)
	requirePartition(t, ss)
}

func TestPureStars_Dumbbell(t *testing.T) {
	crys := stock(t, "fcc")
	for _, tc := range []struct {
		name   string
		family crystal.Vec
		n      int
	}{
		{"100", crystal.Vec{0.3, 0, 0}, 3},
		{"110", crystal.Vec{0.2, 0.2, 0}, 6},
		{"111", crystal.Vec{0.1, 0.1, 0.1}, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, err := states.NewContainer(crys, 0, [][]crystal.Vec{{tc.family}})
			require.NoError(t, err)
			assert.False(t, c.IsVacancy())
			require.Equal(t, tc.n, c.NumOrientations())
			ss, err := states.NewStarSet(c, c.PureStates(), 0)
			require.NoError(t, err)
			assert.Equal(t, 1, ss.NumStars())
			requirePartition(t, ss)

			cs, err := states.NewStarSet(c, c.ComplexStates(0.71, false), 0)
			require.NoError(t, err)
			assert.Equal(t, 12*tc.n, cs.NumStates())
			requirePartition(t, cs)
		})
	}
}

func TestNewContainer_Errors(t *testing.T) {
	crys := stock(t, "square")
	_, err := states.NewContainer(crys, 0, [][]crystal.Vec{{{0, 0, 1}}})
	assert.ErrorIs(t, err, states.ErrOrientation)
	_, err = states.NewContainer(crys, 0, nil)
	assert.ErrorIs(t, err, states.ErrOrientation)
	_, err = states.NewVacancy(crys, 2)
	assert.ErrorIs(t, err, crystal.ErrChemistry)

	c, err := states.NewContainer(crys, 0, [][]crystal.Vec{{{}}})
	require.NoError(t, err)
	assert.True(t, c.IsVacancy())
}

func TestPairAlgebra(t *testing.T) {
	c := vacancy(t, "honeycomb")
	a := states.Complex{Solute: 0, Defect: states.Pure{I: 1, R: crystal.LVec{1, 0, 0}}}
	b := states.Complex{Solute: 0, Defect: states.Pure{I: 1, R: crystal.LVec{0, -1, 0}}}

	x, err := c.Xor(a, b)
	require.NoError(t, err)
	back, err := c.Add(b, x)
	require.NoError(t, err)
	assert.Equal(t, a.Key(), back.Key())
	assert.True(t, c.Dx(x).Close(c.Dx(a).Sub(c.Dx(b)), 1e-12))

	assert.Equal(t, a.Key(), c.Neg(c.Neg(a)).Key())
	assert.True(t, c.Dx(c.Neg(a)).Close(c.Dx(a).Neg(), 1e-12))

	z, err := c.Add(a, c.Neg(a))
	require.NoError(t, err)
	assert.True(t, c.IsOrigin(z))

	_, err = c.Add(a, a)
	assert.ErrorIs(t, err, states.ErrIncompatible)

	db, err := states.NewContainer(stock(t, "square"), 0, [][]crystal.Vec{{{0.3, 0, 0}}})
	require.NoError(t, err)
	_, err = db.Xor(a, b)
	assert.ErrorIs(t, err, states.ErrIncompatible)
}

func TestComplex_CanonicalKey(t *testing.T) {
	c := vacancy(t, "sc")
	shifted := states.Complex{Solute: 0, RS: crystal.LVec{2, 0, 0}, Defect: states.Pure{R: crystal.LVec{3, 0, 0}}}
	home := states.Complex{Solute: 0, Defect: states.Pure{R: crystal.LVec{1, 0, 0}}}
	assert.Equal(t, home.Key(), shifted.Key())
	assert.True(t, c.Dx(shifted).Close(c.Dx(home), 1e-12))
}

func TestExtend_PreservesIndices(t *testing.T) {
	c := vacancy(t, "bcc")
	nn, err := states.NewStarSet(c, c.ComplexStates(0.87, false), 0)
	require.NoError(t, err)
	require.Equal(t, 8, nn.NumStates())

	big, err := nn.Extend(c.ComplexStates(1.42, false))
	require.NoError(t, err)
	assert.Equal(t, 8, nn.NumStates(), "receiver untouched")
	assert.Equal(t, 8+6+12, big.NumStates())
	assert.Equal(t, 3, big.NumStars())
	for i := 0; i < nn.NumStates(); i++ {
		idx := states.StateIndex(i)
		assert.Equal(t, nn.State(idx), big.State(idx))
		assert.Equal(t, nn.StarOf(idx), big.StarOf(idx))
	}
	requirePartition(t, big)
}

func TestRestore(t *testing.T) {
	c := vacancy(t, "triangular")
	ss, err := states.NewStarSet(c, c.ComplexStates(2.0, true), 0)
	require.NoError(t, err)

	back, err := states.Restore(c, ss.States(), ss.StarIndices(), 0)
	require.NoError(t, err)
	assert.Equal(t, ss.NumStars(), back.NumStars())
	for i := 0; i < ss.NumStates(); i++ {
		j, ok := back.Index(ss.State(states.StateIndex(i)))
		require.True(t, ok)
		assert.Equal(t, states.StateIndex(i), j)
	}

	// drop a member from the last star
	_, err = states.Restore(c, ss.States()[:ss.NumStates()-1], ss.StarIndices()[:ss.NumStates()-1], 0)
	assert.ErrorIs(t, err, states.ErrNotClosed)
	_, err = states.Restore(c, ss.States(), ss.StarIndices()[1:], 0)
	assert.ErrorIs(t, err, states.ErrNotClosed)
}

func BenchmarkComplexStars(b *testing.B) {
	crys, _ := crystal.Stock("fcc")
	c, _ := states.NewVacancy(crys, 0)
	items := c.ComplexStates(2.5, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = states.NewStarSet(c, items, 0)
	}
}
