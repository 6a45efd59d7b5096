// SPDX-License-Identifier: MIT

package greens

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/matrix"
)

// Eval returns G for one point.
func (c *Calculator) Eval(ctx context.Context, i, j int, dx crystal.Vec) (float64, error) {
	out, err := c.EvalMany(ctx, []Point{{I: i, J: j, Dx: dx}})
	if err != nil {
		return 0, err
	}

	return out[0], nil
}

// EvalMany returns G for every point. Each point is averaged over its
// images under the point group, so G(g·p) = G(p) holds exactly even where
// the mesh itself is not closed under the group. The mesh is cut into
// slabs along the first reciprocal axis; slabs run in parallel and their
// partial sums are added in slab order, so the result does not depend on
// scheduling.
//
// Errors: ErrNoRates, ErrSite, ctx.Err(), matrix.ErrSingular.
func (c *Calculator) EvalMany(ctx context.Context, pts []Point) ([]float64, error) {
	if !c.rated {
		return nil, greensErrorf(opEval, ErrNoRates)
	}
	for _, p := range pts {
		if p.I < 0 || p.I >= c.nsite || p.J < 0 || p.J >= c.nsite {
			return nil, greensErrorf(opEval, ErrSite)
		}
	}
	start := time.Now()
	all, images := c.images(pts)
	nslab := c.opts.Mesh
	per := len(c.mesh) / nslab
	partial := make([][]float64, nslab)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for s := 0; s < nslab; s++ {
		s := s
		g.Go(func() error {
			acc, err := c.slab(gctx, s*per, (s+1)*per, all)
			partial[s] = acc

			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, greensErrorf(opEval, err)
	}
	sum := make([]float64, len(all))
	for _, acc := range partial {
		for k, v := range acc {
			sum[k] += v
		}
	}
	nq := float64(len(c.mesh))
	for k, p := range all {
		sum[k] = sum[k]/nq + c.pole(p)
	}
	out := make([]float64, len(pts))
	for k, idx := range images {
		for _, e := range idx {
			out[k] += sum[e]
		}
		out[k] /= float64(len(idx))
	}
	c.opts.Logger.Debug("Green's function evaluated",
		"points", len(pts), "images", len(all), "mesh", len(c.mesh), "elapsed", time.Since(start))

	return out, nil
}

type imageKey struct {
	i, j    int
	x, y, z int64
}

// images returns the distinct point-group images of pts and, for each
// point, the index of its image under every operation.
func (c *Calculator) images(pts []Point) ([]Point, [][]int) {
	ops := c.crys.Ops()
	scale := 1 / c.crys.Tolerance()
	seen := make(map[imageKey]int)
	var all []Point
	out := make([][]int, len(pts))
	for k, p := range pts {
		out[k] = make([]int, 0, len(ops))
		for _, g := range ops {
			q := Point{I: g.IndexMap[c.chem][p.I], J: g.IndexMap[c.chem][p.J], Dx: c.crys.GDirec(g, p.Dx)}
			key := imageKey{
				i: q.I, j: q.J,
				x: int64(math.Round(q.Dx[0] * scale)),
				y: int64(math.Round(q.Dx[1] * scale)),
				z: int64(math.Round(q.Dx[2] * scale)),
			}
			e, ok := seen[key]
			if !ok {
				e = len(all)
				seen[key] = e
				all = append(all, q)
			}
			out[k] = append(out[k], e)
		}
	}

	return all, out
}

// slab sums Re[(G_ij(q) - P_ij(q)) e^{-iq·x}] over mesh points [lo, hi).
func (c *Calculator) slab(ctx context.Context, lo, hi int, pts []Point) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := c.nsite
	acc := make([]float64, len(pts))
	sq := make([]complex128, n*n)
	gq := make([]complex128, n*n)
	for _, q := range c.mesh[lo:hi] {
		for k := range sq {
			sq[k] = 0
		}
		for i := 0; i < n; i++ {
			sq[i*n+i] = complex(-c.esc[i], 0)
		}
		for _, j := range c.jumps {
			ph := q.Dot(j.dx)
			sq[j.i*n+j.j] += complex(j.nu*math.Cos(ph), j.nu*math.Sin(ph))
		}
		if err := invertHermitian(sq, gq, n); err != nil {
			return nil, err
		}
		qdq := q.Dot(c.d.MulVec(q))
		damp := math.Exp(-qdq/(c.kappa*c.kappa)) / qdq
		for k, p := range pts {
			pole := -c.phi[p.I] * c.phi[p.J] * damp
			v := gq[p.I*n+p.J] - complex(pole, 0)
			ph := q.Dot(p.Dx)
			acc[k] += real(v)*math.Cos(ph) + imag(v)*math.Sin(ph)
		}
	}

	return acc, nil
}

// invertHermitian writes s⁻¹ into dst through the real embedding
// [[A, -B], [B, A]] of s = A + iB.
func invertHermitian(s, dst []complex128, n int) error {
	if n == 1 {
		dst[0] = 1 / s[0]

		return nil
	}
	rows := make([][]float64, 2*n)
	for i := range rows {
		rows[i] = make([]float64, 2*n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a, b := real(s[i*n+j]), imag(s[i*n+j])
			rows[i][j], rows[i+n][j+n] = a, a
			rows[i][j+n], rows[i+n][j] = -b, b
		}
	}
	m, err := matrix.NewFromRows(rows)
	if err != nil {
		return err
	}
	inv, err := matrix.Inverse(m)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, _ := inv.At(i, j)
			y, _ := inv.At(i+n, j)
			dst[i*n+j] = complex(x, y)
		}
	}

	return nil
}

// pole returns the closed-form transform of the subtracted pole at p.
func (c *Calculator) pole(p Point) float64 {
	w := c.phi[p.I] * c.phi[p.J]
	u := math.Sqrt(math.Max(0, p.Dx.Dot(c.dinv.MulVec(p.Dx))))
	v := c.crys.Volume()
	sq := math.Sqrt(c.detD)
	if c.dim == 3 {
		if u < 1e-12 {
			return -w * v * c.kappa / (4 * math.Pow(math.Pi, 1.5) * sq)
		}

		return -w * v * math.Erf(0.5*c.kappa*u) / (4 * math.Pi * sq * u)
	}
	if u < 1e-12 {
		return 0
	}
	z := 0.25 * c.kappa * c.kappa * u * u

	return w * v * (eulerGamma + math.Log(z) + E1(z)) / (4 * math.Pi * sq)
}
