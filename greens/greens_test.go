// SPDX-License-Identifier: MIT

package greens_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/jumpnet"
)

func network(t *testing.T, name string, cutoff float64) *jumpnet.Network {
	t.Helper()
	crys, ok := crystal.Stock(name)
	require.True(t, ok)
	net, err := jumpnet.Sites(crys, 0, cutoff)
	require.NoError(t, err)

	return net
}

// unitRates returns a calculator with every site and transition state at
// zero free energy.
func unitRates(t *testing.T, net *jumpnet.Network, opts ...greens.Option) *greens.Calculator {
	t.Helper()
	calc, err := greens.New(net, opts...)
	require.NoError(t, err)
	nw := 0
	inv, err := net.Container().Crystal().InvMap(0)
	require.NoError(t, err)
	for _, w := range inv {
		nw = max(nw, w+1)
	}
	ones := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = 1
		}

		return out
	}
	require.NoError(t, calc.SetRates(ones(nw), make([]float64, nw), ones(net.NumClasses()), make([]float64, net.NumClasses())))

	return calc
}

// tracer returns the single-jump tracer correlation factor
// f = 1 + 2νG0/(1 - νG0), with G0 the jump-vector weighted sum of G over
// the neighbours of site 0.
func tracer(t *testing.T, calc *greens.Calculator, net *jumpnet.Network) float64 {
	t.Helper()
	var nn []jumpnet.IndexedJump
	for _, class := range net.Indexed() {
		for _, j := range class {
			if j.I == 0 {
				nn = append(nn, j)
			}
		}
	}
	require.NotEmpty(t, nn)
	var pts []greens.Point
	for _, a := range nn {
		for _, b := range nn {
			pts = append(pts, greens.Point{I: b.J, J: a.J, Dx: a.Dx.Sub(b.Dx)})
		}
	}
	g, err := calc.EvalMany(context.Background(), pts)
	require.NoError(t, err)
	s2 := nn[0].Dx.Norm2()
	var g0 float64
	k := 0
	for _, a := range nn {
		for _, b := range nn {
			g0 += a.Dx.Dot(b.Dx) * g[k]
			k++
		}
	}
	g0 /= float64(len(nn)) * s2

	return 1 + 2*g0/(1-g0)
}

func TestEval_FCC(t *testing.T) {
	net := network(t, "fcc", 0.75)
	calc := unitRates(t, net)
	assert.Equal(t, 32*32*32, calc.MeshSize())

	d, err := calc.Diffusivity()
	require.NoError(t, err)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			want := 0.0
			if a == b {
				want = 1
			}
			assert.InDelta(t, want, d[a][b], 1e-10)
		}
	}

	ctx := context.Background()
	g0, err := calc.Eval(ctx, 0, 0, crystal.Vec{})
	require.NoError(t, err)
	assert.InDelta(t, -0.11205521, g0, 1e-5)
	g1, err := calc.Eval(ctx, 0, 0, crystal.Vec{0, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, -0.02872188, g1, 1e-5)

	// cubic symmetry
	g2, err := calc.Eval(ctx, 0, 0, crystal.Vec{-0.5, 0, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, g1, g2, 1e-10)

	assert.InDelta(t, 0.78145, tracer(t, calc, net), 1e-4)
}

func TestEval_CoarseMeshImagesAgree(t *testing.T) {
	net := network(t, "fcc", 0.75)
	calc := unitRates(t, net, greens.WithMesh(8))
	var pts []greens.Point
	for _, j := range net.Indexed()[0] {
		pts = append(pts, greens.Point{I: j.I, J: j.J, Dx: j.Dx})
	}
	require.Len(t, pts, 12)
	g, err := calc.EvalMany(context.Background(), pts)
	require.NoError(t, err)
	for k := range g {
		assert.InDelta(t, g[0], g[k], 1e-12, "neighbour %v", pts[k].Dx)
	}
}

func TestNew_Percolation(t *testing.T) {
	net := network(t, "hcp", 1.01)
	require.Equal(t, 2, net.NumClasses())
	basal := -1
	for k, class := range net.Indexed() {
		inPlane := true
		for _, j := range class {
			inPlane = inPlane && math.Abs(j.Dx[2]) < 1e-8
		}
		if inPlane {
			basal = k
		}
	}
	require.GreaterOrEqual(t, basal, 0)

	// basal jumps never leave their own layer
	flat, err := net.Regenerate([]int{basal})
	require.NoError(t, err)
	_, err = greens.New(flat)
	assert.ErrorIs(t, err, greens.ErrDisconnected)
	assert.ErrorContains(t, err, "2 disconnected site sets")

	pyr, err := net.Regenerate([]int{1 - basal})
	require.NoError(t, err)
	_, err = greens.New(pyr, greens.WithMesh(4))
	assert.NoError(t, err)

	// one site, but jumps only along the short axis
	rect, err := crystal.New([][]float64{{1, 0}, {0, 2}}, [][][]float64{{{0, 0}}}, nil)
	require.NoError(t, err)
	line, err := jumpnet.Sites(rect, 0, 1.01)
	require.NoError(t, err)
	_, err = greens.New(line)
	assert.ErrorIs(t, err, greens.ErrDisconnected)
	assert.ErrorContains(t, err, "span 1 of 2")
}

func TestTracer_2D(t *testing.T) {
	cases := []struct {
		name   string
		cutoff float64
		want   float64
	}{
		{"square", 1.01, 0.46694},
		{"triangular", 1.01, 0.56006},
		{"honeycomb", 0.6, 1.0 / 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			net := network(t, tc.name, tc.cutoff)
			calc := unitRates(t, net)
			assert.Equal(t, 128*128, calc.MeshSize())
			assert.InDelta(t, tc.want, tracer(t, calc, net), 1e-4)
		})
	}
}

func TestEval_HoneycombSymmetric(t *testing.T) {
	net := network(t, "honeycomb", 0.6)
	calc := unitRates(t, net, greens.WithMesh(32))
	assert.Equal(t, 2, calc.NumSites())
	dx := crystal.Vec{0.5, 0.5 / math.Sqrt(3), 0}
	g, err := calc.EvalMany(context.Background(), []greens.Point{
		{I: 0, J: 1, Dx: dx},
		{I: 1, J: 0, Dx: dx.Neg()},
	})
	require.NoError(t, err)
	assert.InDelta(t, g[0], g[1], 1e-10)
}

func TestEval_WorkerIndependent(t *testing.T) {
	net := network(t, "bcc", 0.9)
	pts := []greens.Point{
		{Dx: crystal.Vec{}},
		{Dx: crystal.Vec{0.5, 0.5, 0.5}},
		{Dx: crystal.Vec{1, 0, 0}},
		{Dx: crystal.Vec{1, 1, 0}},
	}
	var results [][]float64
	for _, w := range []int{1, 3, 8} {
		calc := unitRates(t, net, greens.WithMesh(16), greens.WithWorkers(w))
		g, err := calc.EvalMany(context.Background(), pts)
		require.NoError(t, err)
		results = append(results, g)
	}
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])

	// G decays away from the origin
	assert.Less(t, results[0][0], results[0][1])
	assert.Less(t, results[0][1], 0.0)
}

func TestKappaFactor(t *testing.T) {
	net := network(t, "fcc", 0.75)
	a := unitRates(t, net, greens.WithMesh(16))
	b := unitRates(t, net, greens.WithMesh(16), greens.WithKappaFactor(2*greens.DefaultKappaFactor))
	assert.InDelta(t, 2*a.Kappa(), b.Kappa(), 1e-12)

	// a wider pole changes the split, not the answer
	ga, err := a.Eval(context.Background(), 0, 0, crystal.Vec{0, 0.5, 0.5})
	require.NoError(t, err)
	gb, err := b.Eval(context.Background(), 0, 0, crystal.Vec{0, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, ga, gb, 1e-5)
}

func TestErrors(t *testing.T) {
	_, err := greens.New(nil)
	assert.ErrorIs(t, err, greens.ErrNilNetwork)

	net := network(t, "fcc", 0.75)
	calc, err := greens.New(net, greens.WithMesh(8))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = calc.Eval(ctx, 0, 0, crystal.Vec{})
	assert.ErrorIs(t, err, greens.ErrNoRates)
	_, err = calc.Diffusivity()
	assert.ErrorIs(t, err, greens.ErrNoRates)

	assert.ErrorIs(t, calc.SetRates([]float64{1, 1}, []float64{0}, []float64{1}, []float64{0}), greens.ErrLength)
	assert.ErrorIs(t, calc.SetRates([]float64{1}, []float64{math.NaN()}, []float64{1}, []float64{0}), greens.ErrNonFinite)

	require.NoError(t, calc.SetRates([]float64{1}, []float64{0}, []float64{1}, []float64{0}))
	_, err = calc.Eval(ctx, 1, 0, crystal.Vec{})
	assert.ErrorIs(t, err, greens.ErrSite)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = calc.Eval(cctx, 0, 0, crystal.Vec{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestE1(t *testing.T) {
	cases := map[float64]float64{
		0.01: 4.037929576538113,
		0.5:  0.5597735947761608,
		1:    0.21938393439552029,
		2:    0.04890051070806112,
		5:    0.001148295591275326,
		10:   4.156968929685324e-06,
	}
	for z, want := range cases {
		assert.InEpsilon(t, want, greens.E1(z), 1e-10, "z=%g", z)
	}
	assert.True(t, math.IsNaN(greens.E1(0)))
	assert.True(t, math.IsNaN(greens.E1(-1)))
}
