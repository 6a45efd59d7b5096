// SPDX-License-Identifier: MIT

package crystal

import (
	"fmt"
	"math"
)

// GroupOp is a space-group operation x → Rot·x + Trans in lattice
// coordinates, with its Cartesian rotation and the site permutation it
// induces on every chemistry.
type GroupOp struct {
	Rot      [3][3]int
	Trans    Vec
	CartRot  Mat3
	IndexMap [][]int
}

// IsIdentity reports Rot == I and Trans == 0.
func (g GroupOp) IsIdentity() bool {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			want := 0
			if a == b {
				want = 1
			}
			if g.Rot[a][b] != want {
				return false
			}
		}
	}

	return g.Trans == Vec{}
}

func (g GroupOp) rotFrac(u Vec) Vec {
	var out Vec
	for a := 0; a < 3; a++ {
		out[a] = float64(g.Rot[a][0])*u[0] + float64(g.Rot[a][1])*u[1] + float64(g.Rot[a][2])*u[2]
	}

	return out
}

func (g GroupOp) rotLatt(R LVec) LVec {
	var out LVec
	for a := 0; a < 3; a++ {
		out[a] = g.Rot[a][0]*R[0] + g.Rot[a][1]*R[1] + g.Rot[a][2]*R[2]
	}

	return out
}

// Ops returns the space group; the slice must not be modified.
func (c *Crystal) Ops() []GroupOp { return c.ops }

// Order returns the number of group operations.
func (c *Crystal) Order() int { return len(c.ops) }

// Op returns operation g.
func (c *Crystal) Op(g int) GroupOp { return c.ops[g] }

// GPos applies g to site i of chem in cell R, returning the image cell and
// site index.
func (c *Crystal) GPos(g GroupOp, R LVec, chem, i int) (LVec, int) {
	j := g.IndexMap[chem][i]
	y := g.rotFrac(R.Float().Add(c.basis[chem][i])).Add(g.Trans).Sub(c.basis[chem][j])
	var out LVec
	for k := 0; k < 3; k++ {
		out[k] = int(math.Round(y[k]))
	}

	return out, j
}

// GDirec rotates a Cartesian vector by g.
func (c *Crystal) GDirec(g GroupOp, v Vec) Vec { return g.CartRot.MulVec(v) }

// GTensor rotates a Cartesian rank-2 tensor by g: R·T·Rᵀ.
func (c *Crystal) GTensor(g GroupOp, t Mat3) Mat3 {
	return g.CartRot.Mul(t).Mul(g.CartRot.T())
}

// findGroup enumerates the space group modulo lattice translations.
//
// Implementation:
//   - Stage 1: every dim×dim integer matrix with entries in {-1,0,1}
//     preserving the metric (RᵀGR == G) is a candidate point operation.
//   - Stage 2: candidate translations map site 0 of the smallest chemistry
//     onto each of its sites; keep those that permute every chemistry.
//   - Stage 3: the identity is moved to position 0; the rest keep
//     enumeration order.
//
// Complexity: O(3^(dim²) · sites²); 19683 candidates in 3D.
func (c *Crystal) findGroup() ([]GroupOp, error) {
	d := c.dim
	n := d * d
	total := 1
	for k := 0; k < n; k++ {
		total *= 3
	}
	ref := 0
	for ci := range c.basis {
		if len(c.basis[ci]) < len(c.basis[ref]) {
			ref = ci
		}
	}

	var ops []GroupOp
	var rot [3][3]int
	for code := 0; code < total; code++ {
		x := code
		for k := 0; k < n; k++ {
			rot[k/d][k%d] = x%3 - 1
			x /= 3
		}
		if d == 2 {
			rot[0][2], rot[1][2], rot[2][0], rot[2][1], rot[2][2] = 0, 0, 0, 0, 1
		}
		if !c.preservesMetric(rot) {
			continue
		}
		g := GroupOp{Rot: rot}
		u0 := g.rotFrac(c.basis[ref][0])
		for _, target := range c.basis[ref] {
			var t Vec
			for k := 0; k < d; k++ {
				t[k] = wrap(target[k]-u0[k], c.tol)
			}
			g.Trans = t
			im, ok := c.indexMap(g)
			if !ok {
				continue
			}
			op := g
			op.IndexMap = im
			op.CartRot = c.cartRot(rot)
			ops = append(ops, op)
		}
	}
	for k, op := range ops {
		if op.IsIdentity() {
			sorted := make([]GroupOp, 0, len(ops))
			sorted = append(sorted, op)
			sorted = append(sorted, ops[:k]...)
			sorted = append(sorted, ops[k+1:]...)

			return sorted, nil
		}
	}

	return nil, fmt.Errorf("%w: identity not found", ErrBadLattice)
}

func (c *Crystal) preservesMetric(rot [3][3]int) bool {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			var s float64
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					s += float64(rot[i][a]) * c.metric[i][j] * float64(rot[j][b])
				}
			}
			if math.Abs(s-c.metric[a][b]) > c.tol*math.Max(1, math.Abs(c.metric[a][b])) {
				return false
			}
		}
	}

	return true
}

// indexMap returns the site permutation induced by g, or false when g does
// not map some chemistry onto itself.
func (c *Crystal) indexMap(g GroupOp) ([][]int, bool) {
	out := make([][]int, len(c.basis))
	for ci, sites := range c.basis {
		out[ci] = make([]int, len(sites))
		used := make([]bool, len(sites))
		for i, u := range sites {
			y := g.rotFrac(u).Add(g.Trans)
			found := -1
			for j, v := range sites {
				if !used[j] && c.sameFrac(y, v) {
					found = j

					break
				}
			}
			if found < 0 {
				return nil, false
			}
			used[found] = true
			out[ci][i] = found
		}
	}

	return out, true
}

// cartRot returns A·Rot·A⁻¹.
func (c *Crystal) cartRot(rot [3][3]int) Mat3 {
	var r Mat3
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			r[a][b] = float64(rot[a][b])
		}
	}
	out := c.lattice.Mul(r).Mul(c.invLatt)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			if math.Abs(out[a][b]) < 1e-12 {
				out[a][b] = 0
			}
		}
	}

	return out
}
