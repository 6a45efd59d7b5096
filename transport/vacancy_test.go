// SPDX-License-Identifier: MIT

package transport_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/states"
	"github.com/sohamch/Onsager/transport"
)

func network(t *testing.T, name string, cutoff float64) *jumpnet.Network {
	t.Helper()
	crys, ok := crystal.Stock(name)
	require.True(t, ok)
	n, err := jumpnet.Sites(crys, 0, cutoff)
	require.NoError(t, err)

	return n
}

func tracerInput(t *testing.T, vm *transport.VacancyMediated) transport.BetaFree {
	t.Helper()
	n0 := vm.Topology().NumOmega0
	pre := make([]float64, n0)
	for i := range pre {
		pre[i] = 1
	}
	pe, err := vm.MakeTracerPreEne(pre, make([]float64, n0))
	require.NoError(t, err)
	bf, err := transport.PreEne2BetaFree(1, pe)
	require.NoError(t, err)

	return bf
}

func maxAbs(m crystal.Mat3) float64 {
	var x float64
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			x = math.Max(x, math.Abs(m[a][b]))
		}
	}

	return x
}

// assertClose compares two tensors relative to the larger of them.
func assertClose(t *testing.T, want, got crystal.Mat3, rel float64, msg string) {
	t.Helper()
	tol := rel * math.Max(1e-12, math.Max(maxAbs(want), maxAbs(got)))
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			assert.InDelta(t, want[a][b], got[a][b], tol, "%s [%d][%d]", msg, a, b)
		}
	}
}

func TestTracer(t *testing.T) {
	cases := []struct {
		name    string
		cutoff  float64
		nthermo int
		want    float64
	}{
		{"fcc", 0.75, 0, 0.78145142},
		{"fcc", 0.75, 1, 0.78145142},
		{"square", 1.01, 1, 0.46694221},
		{"triangular", 1.01, 1, 0.56005700},
		{"honeycomb", 0.6, 1, 1.0 / 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			vm, err := transport.New(ctx, network(t, tc.name, tc.cutoff), tc.nthermo)
			require.NoError(t, err)
			res, err := vm.Lij(ctx, tracerInput(t, vm))
			require.NoError(t, err)
			assert.Equal(t, transport.General, res.Regime)
			assert.InDelta(t, 1, res.Ratio, 1e-12)
			require.Greater(t, res.L0ss[0][0], 0.0)
			assert.InDelta(t, tc.want, res.Lss[0][0]/res.L0ss[0][0], 1e-4)
			assert.InDelta(t, res.Lss[1][1], res.Lss[0][0], 1e-8)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := transport.New(ctx, nil, 1)
	assert.ErrorIs(t, err, transport.ErrNilNetwork)

	crys, _ := crystal.Stock("fcc")
	c, err := states.NewContainer(crys, 0, [][]crystal.Vec{{{1, 0, 0}}})
	require.NoError(t, err)
	net, err := jumpnet.Build(c, 0.75)
	require.NoError(t, err)
	_, err = transport.New(ctx, net, 1)
	assert.ErrorIs(t, err, transport.ErrUnsupportedDefect)

	hcp := network(t, "hcp", 1.01)
	var fails int
	for k := 0; k < hcp.NumClasses(); k++ {
		one, err := hcp.Regenerate([]int{k})
		require.NoError(t, err)
		if _, err = transport.New(ctx, one, 1); err != nil {
			assert.ErrorIs(t, err, greens.ErrDisconnected)
			fails++
		}
	}
	// only the basal class leaves the layers apart
	assert.Equal(t, 1, fails)

	vm, err := transport.New(ctx, network(t, "square", 1.01), 0)
	require.NoError(t, err)
	_, err = vm.InteractList()
	assert.ErrorIs(t, err, transport.ErrNoThermo)
	_, _, err = vm.OmegaList(1)
	assert.ErrorIs(t, err, transport.ErrNoThermo)
}

func TestRegime_String(t *testing.T) {
	assert.Equal(t, "auto", transport.Auto.String())
	assert.Equal(t, "general", transport.General.String())
	assert.Equal(t, "large_exchange", transport.LargeExchange.String())
	assert.Equal(t, "small_exchange", transport.SmallExchange.String())
	assert.Equal(t, "Regime(9)", transport.Regime(9).String())
}

// FCCSuite shares one nearest-neighbour FCC calculator with one
// thermodynamic shell.
type FCCSuite struct {
	suite.Suite
	ctx context.Context
	vm  *transport.VacancyMediated
}

func TestFCCSuite(t *testing.T) {
	suite.Run(t, new(FCCSuite))
}

func (s *FCCSuite) SetupSuite() {
	s.ctx = context.Background()
	vm, err := transport.New(s.ctx, network(s.T(), "fcc", 0.75), 1)
	s.Require().NoError(err)
	s.vm = vm
}

// input is a bound solute with distinct omega1 barriers and an exchange
// barrier t2.
func (s *FCCSuite) input(t2 float64) transport.BetaFree {
	return transport.BetaFree{
		V:  []float64{0},
		S:  []float64{0},
		SV: []float64{-0.3},
		T0: []float64{0},
		T1: []float64{0.2, -0.1, 0.4, 0.1},
		T2: []float64{t2},
	}
}

func (s *FCCSuite) TestTopology() {
	topo := s.vm.Topology()
	s.Equal(1, topo.NumSites)
	s.Equal(3, topo.Dim)
	s.Equal(1, topo.NumWyckoff)
	s.Equal(1, topo.NumThermo)
	s.Equal(1, topo.NumOmega0)
	s.Equal(4, topo.NumKinetic())
	s.Equal(4, topo.Omega1.Len())
	s.Equal(1, topo.Omega2.Len())
	s.Equal(len(topo.GFPoints), len(topo.GFExpansion[0][0]))
	s.NotNil(s.vm.Shells())
	s.Equal(1, s.vm.NumThermo())
}

func (s *FCCSuite) TestInteractAndOmegaList() {
	reps, err := s.vm.InteractList()
	s.Require().NoError(err)
	s.Require().Len(reps, 1)
	c := s.vm.Network().Container()
	s.InDelta(0.5, c.Norm2(reps[0]), 1e-12)

	ends, types, err := s.vm.OmegaList(1)
	s.Require().NoError(err)
	s.Len(ends, 4)
	s.Equal([]int{0, 0, 0, 0}, types)
	for _, e := range ends {
		// one end is a nearest-neighbour complex
		s.True(math.Abs(c.Norm2(e[0])-0.5) < 1e-12 || math.Abs(c.Norm2(e[1])-0.5) < 1e-12)
	}

	ends, _, err = s.vm.OmegaList(2)
	s.Require().NoError(err)
	s.Require().Len(ends, 1)
	s.True(c.Dx(ends[0][0]).Close(c.Dx(ends[0][1]).Neg(), 1e-12))

	_, _, err = s.vm.OmegaList(3)
	s.ErrorIs(err, transport.ErrFiveFreq)
}

func (s *FCCSuite) TestLij_Physical() {
	res, err := s.vm.Lij(s.ctx, s.input(0))
	s.Require().NoError(err)
	assertClose(s.T(), crystal.Identity3(), res.Lvv, 1e-10, "Lvv")
	// cubic symmetry
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if a != b {
				s.InDelta(0, res.Lss[a][b], 1e-10)
			}
		}
		s.InDelta(res.Lss[0][0], res.Lss[a][a], 1e-10)
	}
	// correlation lowers the solute coefficient but keeps it positive
	s.Greater(res.Lss[0][0], 0.0)
	s.Less(res.Lss[0][0], res.L0ss[0][0])
	s.Len(res.Prob, 4)
	// bound states are more likely
	s.InDelta(math.Exp(0.3), res.Prob[s.vm.Topology().Thermo2Kin[0]], 1e-12)
}

func (s *FCCSuite) TestLij_RegimesAgree() {
	bf := s.input(-4.6)
	gen, err := s.vm.LijRegime(s.ctx, bf, transport.General)
	s.Require().NoError(err)
	s.Equal(transport.General, gen.Regime)
	s.InDelta(math.Exp(4.3), gen.Ratio, 1e-8)

	large, err := s.vm.LijRegime(s.ctx, bf, transport.LargeExchange)
	s.Require().NoError(err)
	s.Equal(transport.LargeExchange, large.Regime)
	small, err := s.vm.LijRegime(s.ctx, bf, transport.SmallExchange)
	s.Require().NoError(err)
	s.Equal(transport.SmallExchange, small.Regime)

	for _, other := range []transport.Coefficients{large, small} {
		assertClose(s.T(), gen.Lss, other.Lss, 1e-7, other.Regime.String()+" Lss")
		assertClose(s.T(), gen.Lsv, other.Lsv, 1e-7, other.Regime.String()+" Lsv")
		assertClose(s.T(), gen.Lvv1, other.Lvv1, 1e-7, other.Regime.String()+" Lvv1")
		s.Equal(gen.L0ss, other.L0ss)
	}
}

func (s *FCCSuite) TestLij_AutoRegime() {
	fast, err := s.vm.Lij(s.ctx, s.input(-12))
	s.Require().NoError(err)
	s.Greater(fast.Ratio, transport.DefaultRatioThreshold)
	s.Equal(transport.LargeExchange, fast.Regime)
	gen, err := s.vm.LijRegime(s.ctx, s.input(-12), transport.General)
	s.Require().NoError(err)
	assertClose(s.T(), gen.Lss, fast.Lss, 1e-5, "fast Lss")
	assertClose(s.T(), gen.Lsv, fast.Lsv, 1e-5, "fast Lsv")

	slow, err := s.vm.Lij(s.ctx, s.input(12))
	s.Require().NoError(err)
	s.Less(slow.Ratio, 1/transport.DefaultRatioThreshold)
	s.Equal(transport.SmallExchange, slow.Regime)
	gen, err = s.vm.LijRegime(s.ctx, s.input(12), transport.General)
	s.Require().NoError(err)
	assertClose(s.T(), gen.Lss, slow.Lss, 1e-6, "slow Lss")

	// a slow exchange immobilizes the solute
	s.Less(slow.Lss[0][0], 1e-2*fast.Lss[0][0])
}

func (s *FCCSuite) TestLij_FastExchangeLimit() {
	ref, err := s.vm.LijRegime(s.ctx, s.input(-25), transport.LargeExchange)
	s.Require().NoError(err)
	for _, t2 := range []float64{-40, -60} {
		res, err := s.vm.Lij(s.ctx, s.input(t2))
		s.Require().NoError(err, "t2 %g", t2)
		s.Equal(transport.LargeExchange, res.Regime)
		s.Greater(res.Ratio, 1e17)
		s.Greater(res.Lss[0][0], 0.0)
		assertClose(s.T(), ref.Lss, res.Lss, 1e-6, "Lss")
		assertClose(s.T(), ref.Lsv, res.Lsv, 1e-6, "Lsv")
	}
}

func (s *FCCSuite) TestLij_CrossoverContinuity() {
	const th = 100.0
	vm, err := transport.Restore(s.vm.Snapshot(), transport.WithRatioThreshold(th))
	s.Require().NoError(err)
	at0, err := vm.Lij(s.ctx, s.input(0))
	s.Require().NoError(err)
	// ratio = at0.Ratio·exp(-t2)
	t2For := func(ratio float64) float64 { return math.Log(at0.Ratio) - math.Log(ratio) }

	cases := []struct {
		name          string
		target        float64
		below, beyond transport.Regime
	}{
		{"fast", th, transport.General, transport.LargeExchange},
		{"slow", 1 / th, transport.SmallExchange, transport.General},
	}
	for _, tc := range cases {
		lo, err := vm.Lij(s.ctx, s.input(t2For(tc.target*(1-1e-9))))
		s.Require().NoError(err, tc.name)
		hi, err := vm.Lij(s.ctx, s.input(t2For(tc.target*(1+1e-9))))
		s.Require().NoError(err, tc.name)
		s.Equal(tc.below, lo.Regime, tc.name)
		s.Equal(tc.beyond, hi.Regime, tc.name)
		assertClose(s.T(), lo.Lss, hi.Lss, 1e-6, tc.name+" Lss")
		assertClose(s.T(), lo.Lsv, hi.Lsv, 1e-6, tc.name+" Lsv")
		assertClose(s.T(), lo.Lvv1, hi.Lvv1, 1e-6, tc.name+" Lvv1")
	}
}

func (s *FCCSuite) TestLij_InputErrors() {
	bf := s.input(0)
	bf.V = []float64{0, 0}
	_, err := s.vm.Lij(s.ctx, bf)
	s.ErrorIs(err, transport.ErrLength)

	bf = s.input(0)
	bf.T1 = bf.T1[:3]
	_, err = s.vm.Lij(s.ctx, bf)
	s.ErrorIs(err, transport.ErrLength)

	bf = s.input(0)
	bf.SV[0] = math.NaN()
	_, err = s.vm.Lij(s.ctx, bf)
	s.ErrorIs(err, transport.ErrNonFinite)

	bf = s.input(0)
	bf.T2[0] = math.Inf(1)
	_, err = s.vm.Lij(s.ctx, bf)
	s.ErrorIs(err, transport.ErrNonFinite)
}

func (s *FCCSuite) TestLij_FailureLeavesCache() {
	vm, err := transport.Restore(s.vm.Snapshot())
	s.Require().NoError(err)
	before := vm.CachedRates()

	// a fresh Green's function followed by an underflowing omega1 rate
	bf := s.input(0)
	bf.T0 = []float64{0.37}
	bf.T1[2] = 800
	_, err = vm.Lij(s.ctx, bf)
	s.ErrorIs(err, transport.ErrRateRatioOutOfRange)
	s.Equal(before, vm.CachedRates())

	bf.T1[2] = 0.4
	_, err = vm.Lij(s.ctx, bf)
	s.Require().NoError(err)
	s.Equal(before+1, vm.CachedRates())
}

func (s *FCCSuite) TestLij_Repeatable() {
	a, err := s.vm.Lij(s.ctx, s.input(-1))
	s.Require().NoError(err)
	n := s.vm.CachedRates()
	b, err := s.vm.Lij(s.ctx, s.input(-1))
	s.Require().NoError(err)
	s.Equal(a, b)
	s.Equal(n, s.vm.CachedRates())
}

func (s *FCCSuite) TestSnapshotRestore() {
	want, err := s.vm.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)

	snap := s.vm.Snapshot()
	s.NotEmpty(snap.Cache)
	vm, err := transport.Restore(snap)
	s.Require().NoError(err)
	s.Nil(vm.Shells())
	s.Equal(s.vm.CachedRates(), vm.CachedRates())
	got, err := vm.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)
	s.Equal(want, got)

	// a cache miss recomputes the same Green's function
	snap.Cache = nil
	vm, err = transport.Restore(snap)
	s.Require().NoError(err)
	got, err = vm.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)
	assertClose(s.T(), want.Lss, got.Lss, 1e-10, "Lss")

	bad := s.vm.Snapshot()
	bad.Topology.Kin2VStar = bad.Topology.Kin2VStar[:1]
	_, err = transport.Restore(bad)
	s.ErrorIs(err, transport.ErrSnapshot)

	bad = s.vm.Snapshot()
	bad.Topology.Omega1.Type = []int{0, 0, 0, 5}
	_, err = transport.Restore(bad)
	s.ErrorIs(err, transport.ErrSnapshot)
}

func (s *FCCSuite) TestRestore_MeshOverrideDropsCache() {
	coarse, err := transport.New(s.ctx, network(s.T(), "fcc", 0.75), 1, transport.WithMesh(4))
	s.Require().NoError(err)
	_, err = coarse.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)
	snap := coarse.Snapshot()
	s.Require().Len(snap.Cache, 1)

	vm, err := transport.Restore(snap, transport.WithMesh(16))
	s.Require().NoError(err)
	s.Equal(0, vm.CachedRates())
	s.Equal(16, vm.Snapshot().Mesh)
	got, err := vm.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)

	fresh, err := transport.New(s.ctx, network(s.T(), "fcc", 0.75), 1, transport.WithMesh(16))
	s.Require().NoError(err)
	want, err := fresh.Lij(s.ctx, s.input(-2))
	s.Require().NoError(err)
	assertClose(s.T(), want.Lss, got.Lss, 1e-10, "Lss")
	assertClose(s.T(), want.Lsv, got.Lsv, 1e-10, "Lsv")

	// an unchanged mesh keeps the cache
	vm, err = transport.Restore(snap, transport.WithMesh(4))
	s.Require().NoError(err)
	s.Equal(1, vm.CachedRates())
}

func (s *FCCSuite) TestRegenerate() {
	vm, err := s.vm.Regenerate(s.ctx, []int{0})
	s.Require().NoError(err)
	s.Equal(0, vm.CachedRates())
	want, err := s.vm.Lij(s.ctx, s.input(-0.5))
	s.Require().NoError(err)
	got, err := vm.Lij(s.ctx, s.input(-0.5))
	s.Require().NoError(err)
	assertClose(s.T(), want.Lss, got.Lss, 1e-10, "Lss")
	assertClose(s.T(), want.Lsv, got.Lsv, 1e-10, "Lsv")
	assertClose(s.T(), want.Lvv1, got.Lvv1, 1e-10, "Lvv1")

	_, err = s.vm.Regenerate(s.ctx, []int{3})
	s.Error(err)
}

func (s *FCCSuite) TestMakeLIMBPreEne() {
	topo := s.vm.Topology()
	pe := transport.PreEne{
		PreV: []float64{1}, EneV: []float64{0},
		PreS: []float64{2}, EneS: []float64{0.1},
		PreSV: []float64{3}, EneSV: []float64{-0.2},
		PreT0: []float64{4}, EneT0: []float64{0.8},
	}
	out, err := s.vm.MakeLIMBPreEne(pe)
	s.Require().NoError(err)
	s.Require().Len(out.EneT1, topo.Omega1.Len())
	s.Require().Len(out.EneT2, 1)

	bound := topo.Thermo2Kin[0]
	for j, sp := range topo.Omega1.StarPair {
		ene, pre := 0.8+0.1, 4.0*2
		for _, k := range sp {
			if k == bound {
				ene -= 0.1
				pre *= math.Sqrt(3)
			}
		}
		s.InDelta(ene, out.EneT1[j], 1e-12, "omega1 class %d", j)
		s.InDelta(pre, out.PreT1[j], 1e-12, "omega1 class %d", j)
	}
	s.InDelta(0.8+0.1-0.2, out.EneT2[0], 1e-12)
	s.Equal(pe.EneSV, out.EneSV)

	pe.EneSV = nil
	_, err = s.vm.MakeLIMBPreEne(pe)
	s.ErrorIs(err, transport.ErrLength)
}

func (s *FCCSuite) TestMakeTracerPreEne() {
	pe, err := s.vm.MakeTracerPreEne([]float64{2}, []float64{0.5})
	s.Require().NoError(err)
	s.Equal([]float64{2, 2, 2, 2}, pe.PreT1)
	s.Equal([]float64{0.5, 0.5, 0.5, 0.5}, pe.EneT1)
	s.Equal([]float64{0.5}, pe.EneT2)
	s.Equal([]float64{0}, pe.EneSV)

	_, err = s.vm.MakeTracerPreEne([]float64{2, 1}, []float64{0.5})
	s.ErrorIs(err, transport.ErrLength)
}
