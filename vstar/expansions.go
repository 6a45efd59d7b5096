// SPDX-License-Identifier: MIT

package vstar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
)

// GFExpansion returns e[i][j][k]: the basis Green's function is
// G_ij = Σ_k e[i][j][k]·g_k, with g_k the bulk Green's function of the
// representative of star k of gf. Rows are computed in parallel.
//
// Errors: shells.ErrGFRange when some endpoint difference lies outside gf.
func (vs *Set) GFExpansion(ctx context.Context, gf *shells.PairSet) ([][][]float64, error) {
	if gf == nil {
		return nil, vstarErrorf(opGF, ErrNilStarSet)
	}
	start := time.Now()
	n, nk := vs.Len(), gf.NumStars()
	c := vs.stars.Container()
	out := make([][][]float64, n)
	for i := range out {
		out[i] = make([][]float64, n)
		for j := range out[i] {
			out[i][j] = make([]float64, nk)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(vs.opts.Workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vi := vs.vstars[i]
			for j := i; j < n; j++ {
				vj := vs.vstars[j]
				for a, si := range vi.States {
					psi := vs.stars.State(si)
					for b, sj := range vj.States {
						ds, err := c.Xor(vs.stars.State(sj), psi)
						if err != nil {
							continue
						}
						k := gf.StarOfState(ds)
						if k == states.NoStar {
							return fmt.Errorf("%w: %v", shells.ErrGFRange, ds)
						}
						out[i][j][k] += vi.Vecs[a].Dot(vj.Vecs[b])
					}
				}
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, vstarErrorf(opGF, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			copy(out[i][j], out[j][i])
		}
	}
	vs.opts.Logger.Debug("GF expansion", "vstars", n, "gfstars", nk, "elapsed", time.Since(start))

	return out, nil
}

// RateExpansion is the expansion of one jump network over the basis.
type RateExpansion struct {
	// Omega0 [i][j][t] and Omega0Escape [i][t] are the bare reference terms,
	// indexed by omega0 class t.
	Omega0       [][][]float64
	Omega0Escape [][]float64
	// Rate [i][j][k] and Escape [i][k] are indexed by jump class k.
	Rate   [][][]float64
	Escape [][]float64
}

// RateExpansions expands js: for a jump IS → FS, the escape terms receive
// -v_i(IS)·v_i(IS) and the rate terms v_i(IS)·v_j(FS), in both the jump
// class and its omega0 class.
//
// Errors: ErrJumpType.
func (vs *Set) RateExpansions(js shells.JumpSet, nOmega0 int) (RateExpansion, error) {
	n, nj := vs.Len(), js.Len()
	out := RateExpansion{
		Omega0:       cube(n, n, nOmega0),
		Omega0Escape: square(n, nOmega0),
		Rate:         cube(n, n, nj),
		Escape:       square(n, nj),
	}
	for k, list := range js.Jumps {
		t := js.Type[k]
		if t < 0 || t >= nOmega0 {
			return RateExpansion{}, vstarErrorf(opRates, ErrJumpType)
		}
		for _, jmp := range list {
			for _, ei := range vs.byState[jmp.I] {
				d := ei.vec.Dot(ei.vec)
				out.Omega0Escape[ei.v][t] -= d
				out.Escape[ei.v][k] -= d
				for _, ej := range vs.byState[jmp.F] {
					d = ei.vec.Dot(ej.vec)
					out.Omega0[ei.v][ej.v][t] += d
					out.Rate[ei.v][ej.v][k] += d
				}
			}
		}
	}

	return out, nil
}

// BiasExpansion is the geometric bias of one jump network over the basis.
type BiasExpansion struct {
	Omega0 [][]float64 // [i][t]
	Bias   [][]float64 // [i][k]
}

// BiasExpansions returns, per vector star and jump class, Σ v(IS)·dx over
// the jumps leaving the star; by symmetry this is the contribution of the
// representative times the star size.
//
// Errors: ErrJumpType.
func (vs *Set) BiasExpansions(js shells.JumpSet, nOmega0 int) (BiasExpansion, error) {
	n := vs.Len()
	out := BiasExpansion{Omega0: square(n, nOmega0), Bias: square(n, js.Len())}
	for k, list := range js.Jumps {
		t := js.Type[k]
		if t < 0 || t >= nOmega0 {
			return BiasExpansion{}, vstarErrorf(opBias, ErrJumpType)
		}
		for _, jmp := range list {
			for i, v := range vs.vstars {
				if v.States[0] != jmp.I {
					continue
				}
				b := v.Vecs[0].Dot(jmp.Dx) * float64(len(v.States))
				out.Omega0[i][t] += b
				out.Bias[i][k] += b
			}
		}
	}

	return out, nil
}

// BareExpansions returns ½ Σ dx ⊗ dx per omega0 class and per jump class.
//
// Errors: ErrJumpType.
func BareExpansions(js shells.JumpSet, nOmega0 int) (d0, d1 []crystal.Mat3, err error) {
	d0 = make([]crystal.Mat3, nOmega0)
	d1 = make([]crystal.Mat3, js.Len())
	for k, list := range js.Jumps {
		t := js.Type[k]
		if t < 0 || t >= nOmega0 {
			return nil, nil, vstarErrorf(opBare, ErrJumpType)
		}
		var d crystal.Mat3
		for _, jmp := range list {
			d = d.AddM(jmp.Dx.Outer(jmp.Dx).ScaleM(0.5))
		}
		d0[t] = d0[t].AddM(d)
		d1[k] = d
	}

	return d0, d1, nil
}

func square(n, m int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, m)
	}

	return out
}

func cube(n, m, l int) [][][]float64 {
	out := make([][][]float64, n)
	for i := range out {
		out[i] = square(m, l)
	}

	return out
}
