// SPDX-License-Identifier: MIT

package shells_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
)

func network(t *testing.T, name string, cutoff float64) *jumpnet.Network {
	t.Helper()
	crys, ok := crystal.Stock(name)
	require.True(t, ok)
	n, err := jumpnet.Sites(crys, 0, cutoff)
	require.NoError(t, err)

	return n
}

func TestGenerate_FCC(t *testing.T) {
	net := network(t, "fcc", 0.75)
	for _, tc := range []struct {
		shells, states, stars int
		origin                bool
	}{
		{0, 0, 0, false},
		{0, 1, 1, true},
		{1, 12, 1, false},
		{1, 13, 2, true},
		{2, 54, 4, false},
	} {
		ss, err := shells.Generate(net, tc.shells, shells.WithOriginStates(tc.origin))
		require.NoError(t, err)
		assert.Equal(t, tc.states, ss.NumStates(), "shells=%d origin=%v", tc.shells, tc.origin)
		assert.Equal(t, tc.stars, ss.NumStars())
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := shells.Generate(nil, 1)
	assert.ErrorIs(t, err, shells.ErrNilNetwork)
	_, err = shells.Generate(network(t, "sc", 1.01), -1)
	assert.ErrorIs(t, err, shells.ErrBadShells)

	crys, _ := crystal.Stock("fcc")
	c, err := states.NewContainer(crys, 0, [][]crystal.Vec{{{1, 0, 0}}})
	require.NoError(t, err)
	net, err := jumpnet.Build(c, 0.75)
	require.NoError(t, err)
	_, err = shells.Generate(net, 1)
	assert.ErrorIs(t, err, shells.ErrNotVacancy)
}

func TestBuild_FCC(t *testing.T) {
	sh, err := shells.Build(network(t, "fcc", 0.75), 1)
	require.NoError(t, err)

	assert.Equal(t, 12, sh.Thermo.NumStates())
	assert.Equal(t, 12, sh.NN.NumStates())
	assert.Equal(t, 54, sh.Kinetic.NumStates())
	assert.Equal(t, 4, sh.Kinetic.NumStars())
	assert.Equal(t, states.StateIndex(12), sh.MixedStartIndex)
	assert.Len(t, sh.OuterKin, 3)
	assert.Equal(t, []states.StarIndex{0}, sh.Thermo2Kin)

	// thermo states keep their index in the kinetic set
	for i, ps := range sh.Thermo.States() {
		k, ok := sh.Kinetic.Index(ps)
		require.True(t, ok)
		assert.Equal(t, states.StateIndex(i), k)
	}

	// ω1: 1-1, 1-2, 1-3, 1-4 neighbour shells; ω2: the exchange
	assert.Equal(t, 4, sh.Omega1.Len())
	require.Equal(t, 1, sh.Omega2.Len())
	assert.Len(t, sh.Omega2.Jumps[0], 12)
	assert.Len(t, sh.InteractList(), 1)

	assert.Len(t, sh.KineticSVWyckoff, 4)
	assert.Len(t, sh.Omega0VacancyWyckoff, 1)
	assert.Len(t, sh.Omega1SVSVWyckoff, 4)
	assert.Len(t, sh.Omega2SVSVWyckoff, 1)
	assert.Equal(t, [4]int{}, sh.Omega2SVSVWyckoff[0])
}

func TestBuild_JumpConsistency(t *testing.T) {
	for _, tc := range []struct {
		name   string
		cutoff float64
		thermo int
	}{
		{"fcc", 0.75, 1},
		{"hcp", 1.01, 1},
		{"honeycomb", 0.6, 2},
		{"triangular", 1.01, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sh, err := shells.Build(network(t, tc.name, tc.cutoff), tc.thermo)
			require.NoError(t, err)
			kin := sh.Kinetic
			c := kin.Container()
			for k, list := range sh.Omega1.Jumps {
				have := make(map[[2]states.StateIndex]crystal.Vec)
				for _, j := range list {
					assert.True(t, kin.Dx(j.F).Sub(kin.Dx(j.I)).Close(j.Dx, 1e-10), "ω1 class %d", k)
					have[[2]states.StateIndex{j.I, j.F}] = j.Dx
				}
				for _, j := range list {
					dx, ok := have[[2]states.StateIndex{j.F, j.I}]
					require.True(t, ok, "reverse of %v missing", j)
					assert.True(t, dx.Close(j.Dx.Neg(), 1e-10))
				}
				sp := sh.Omega1.StarPair[k]
				assert.Equal(t, sp[0], kin.StarOf(list[0].I))
				assert.Equal(t, sp[1], kin.StarOf(list[0].F))
			}
			for _, list := range sh.Omega2.Jumps {
				for _, j := range list {
					assert.True(t, kin.Dx(j.I).Neg().Close(j.Dx, 1e-10))
					assert.True(t, kin.Dx(j.F).Close(j.Dx, 1e-10))
					neg, ok := kin.Index(c.Neg(kin.State(j.I)))
					require.True(t, ok)
					assert.Equal(t, neg, j.F)
				}
			}
		})
	}
}

func TestBuild_GFCoverage(t *testing.T) {
	sh, err := shells.Build(network(t, "hcp", 1.01), 1)
	require.NoError(t, err)
	c := sh.Kinetic.Container()
	for _, a := range sh.Kinetic.States() {
		for _, b := range sh.Kinetic.States() {
			d, err := c.Xor(b, a)
			if err != nil {
				continue
			}
			_, ok := sh.GF.Index(d)
			require.True(t, ok, "%v ^ %v", b, a)
		}
	}
}

func TestBuild_NoThermo(t *testing.T) {
	sh, err := shells.Build(network(t, "square", 1.01), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, sh.Thermo.NumStates())
	assert.Equal(t, 4, sh.Kinetic.NumStates())
	assert.Equal(t, states.StateIndex(0), sh.MixedStartIndex)
	assert.Equal(t, 0, sh.Omega1.Len())
	assert.Equal(t, 1, sh.Omega2.Len())
}

func TestCheckConnected(t *testing.T) {
	assert.NoError(t, shells.CheckConnected(0, nil, nil))
	assert.NoError(t, shells.CheckConnected(3, [][2]int{{0, 1}, {1, 3}, {2, 3}}, nil))
	assert.ErrorIs(t, shells.CheckConnected(3, [][2]int{{0, 1}, {2, 3}}, nil), shells.ErrDisconnected)
	assert.ErrorIs(t, shells.CheckConnected(3, [][2]int{{0, 0}, {1, 2}}, nil), shells.ErrDisconnected)

	// a vertex in no edge is a component of its own unless skipped
	assert.ErrorIs(t, shells.CheckConnected(3, [][2]int{{0, 1}, {1, 3}}, nil), shells.ErrDisconnected)
	skip2 := func(v int) bool { return v == 2 }
	assert.NoError(t, shells.CheckConnected(3, [][2]int{{0, 1}, {1, 3}}, skip2))
}

func TestAddAndDiff(t *testing.T) {
	net := network(t, "bcc", 0.9)
	a, err := shells.Generate(net, 1)
	require.NoError(t, err)
	empty, err := shells.Generate(net, 0)
	require.NoError(t, err)

	sum, err := empty.Add(a)
	require.NoError(t, err)
	assert.Equal(t, a.NumStates(), sum.NumStates())

	sum, err = a.Add(a)
	require.NoError(t, err)
	two, err := shells.Generate(net, 2)
	require.NoError(t, err)
	assert.Equal(t, two.NumStates(), sum.NumStates())
	assert.Equal(t, two.NumStars(), sum.NumStars())

	gf, err := shells.Diff(a, a, 0)
	require.NoError(t, err)
	// zero plus the 26 sums of two jumps; a single jump is never a difference
	assert.Equal(t, 27, gf.NumStates())
	_, ok := gf.Index(net.Container().Zero(0))
	assert.True(t, ok)

	_, err = a.Add(nil)
	assert.ErrorIs(t, err, shells.ErrNotVacancy)
}
