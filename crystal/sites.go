// SPDX-License-Identifier: MIT

package crystal

import (
	"math"
	"sort"
)

// SiteList groups the sites of chem into Wyckoff sets: sites mapped onto
// each other by the group. Sets are ordered by their smallest site index.
func (c *Crystal) SiteList(chem int) ([][]int, error) {
	if chem < 0 || chem >= len(c.basis) {
		return nil, crystalErrorf(opSiteList, ErrChemistry)
	}
	n := len(c.basis[chem])
	seen := make([]bool, n)
	var out [][]int
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		var set []int
		for _, g := range c.ops {
			j := g.IndexMap[chem][i]
			if !seen[j] {
				seen[j] = true
				set = append(set, j)
			}
		}
		sort.Ints(set)
		out = append(out, set)
	}

	return out, nil
}

// InvMap returns, for every site of chem, the index of its Wyckoff set.
func (c *Crystal) InvMap(chem int) ([]int, error) {
	sl, err := c.SiteList(chem)
	if err != nil {
		return nil, err
	}
	inv := make([]int, len(c.basis[chem]))
	for w, set := range sl {
		for _, i := range set {
			inv[i] = w
		}
	}

	return inv, nil
}

// Stabilizer returns the indices of the operations mapping site i of chem
// onto itself (up to a lattice translation).
func (c *Crystal) Stabilizer(chem, i int) []int {
	var out []int
	for k, g := range c.ops {
		if g.IndexMap[chem][i] == i {
			out = append(out, k)
		}
	}

	return out
}

// VectorBasis returns an orthonormal basis of the Cartesian vectors left
// invariant by the site symmetry of site i of chem. Sites with inversion
// symmetry return an empty basis.
func (c *Crystal) VectorBasis(chem, i int) []Vec {
	return c.InvariantVectors(c.Stabilizer(chem, i), nil)
}

// InvariantVectors returns an orthonormal basis of the subspace fixed by
// every operation in ops (indices into Ops). Seeds, when given, are
// projected first so that they lead the basis; the Cartesian axes follow.
//
// Implementation:
//   - Stage 1: P = average of CartRot over ops (the invariant projector).
//   - Stage 2: Gram-Schmidt over P·seed, then P·e_k, dropping vectors whose
//     residual norm falls below the tolerance.
func (c *Crystal) InvariantVectors(ops []int, seeds []Vec) []Vec {
	var p Mat3
	for _, k := range ops {
		p = p.AddM(c.ops[k].CartRot)
	}
	if len(ops) > 0 {
		p = p.ScaleM(1 / float64(len(ops)))
	}
	cands := make([]Vec, 0, len(seeds)+c.dim)
	for _, s := range seeds {
		cands = append(cands, p.MulVec(s))
	}
	for k := 0; k < c.dim; k++ {
		var e Vec
		e[k] = 1
		cands = append(cands, p.MulVec(e))
	}

	return GramSchmidt(cands, math.Sqrt(c.tol))
}

// GramSchmidt orthonormalizes vs in order, dropping vectors whose residual
// norm is at most tol.
func GramSchmidt(vs []Vec, tol float64) []Vec {
	var out []Vec
	for _, v := range vs {
		for _, b := range out {
			v = v.Sub(b.Scale(v.Dot(b)))
		}
		// second pass for numerical orthogonality
		for _, b := range out {
			v = v.Sub(b.Scale(v.Dot(b)))
		}
		if n := v.Norm(); n > tol {
			out = append(out, v.Scale(1/n))
		}
	}

	return out
}

// SymmetrizeTensor projects a Cartesian tensor onto the subspace invariant
// under ops: (1/|ops|) Σ R·T·Rᵀ.
func (c *Crystal) SymmetrizeTensor(ops []int, t Mat3) Mat3 {
	if len(ops) == 0 {
		return t
	}
	var out Mat3
	for _, k := range ops {
		out = out.AddM(c.GTensor(c.ops[k], t))
	}

	return out.ScaleM(1 / float64(len(ops)))
}
