// SPDX-License-Identifier: MIT

package vstar

import (
	"math"
	"time"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/orbit"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
)

// VectorStar is one basis function: a star and one vector per member.
type VectorStar struct {
	Star   states.StarIndex
	States []states.StateIndex
	Vecs   []crystal.Vec
}

type entry struct {
	v   states.BasisIndex
	vec crystal.Vec
}

// Set is the vector-star basis of a pair-state star set.
type Set struct {
	stars   *shells.PairSet
	vstars  []VectorStar
	star2v  [][]states.BasisIndex
	byState [][]entry
	outer   [][]crystal.Mat3
	opts    Options
}

type pairAction struct{ c *states.Container }

func (a pairAction) Order() int { return a.c.Order() }
func (a pairAction) Apply(g int, x states.Complex) states.Complex {
	return x.Image(a.c, g)
}
func (a pairAction) Key(x states.Complex) states.Key { return x.Key() }

// Generate builds the vector stars of ss, star by star.
//
// Implementation:
//   - Stage 1: the stabilizer of the representative (orbit.Stabilizer).
//   - Stage 2: its invariant vectors, seeded with the representative's
//     displacement so that the parallel vector comes first.
//   - Stage 3: each vector is carried to every member by the first
//     operation mapping the representative onto it, then scaled.
//   - Stage 4: the outer-product tensors.
//
// Errors: ErrNilStarSet.
func Generate(ss *shells.PairSet, opts ...Option) (*Set, error) {
	if ss == nil {
		return nil, vstarErrorf(opGenerate, ErrNilStarSet)
	}
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	start := time.Now()
	c := ss.Container()
	crys := c.Crystal()
	act := pairAction{c: c}
	vs := &Set{
		stars:   ss,
		star2v:  make([][]states.BasisIndex, ss.NumStars()),
		byState: make([][]entry, ss.NumStates()),
		opts:    o,
	}
	for k := 0; k < ss.NumStars(); k++ {
		sk := states.StarIndex(k)
		members := ss.Star(sk)
		rep := ss.Rep(sk)
		ops := make([]crystal.GroupOp, len(members))
		for m, i := range members {
			g, _ := ss.FirstOp(rep, ss.State(i))
			ops[m] = crys.Op(g)
		}
		stab := orbit.Stabilizer[states.Complex, states.Key](act, rep)
		scale := 1 / math.Sqrt(float64(len(members)))
		for _, u := range crys.InvariantVectors(stab, []crystal.Vec{c.Dx(rep)}) {
			u = u.Scale(scale)
			v := VectorStar{Star: sk, States: append([]states.StateIndex(nil), members...)}
			for m := range members {
				v.Vecs = append(v.Vecs, crys.GDirec(ops[m], u))
			}
			vs.add(v)
		}
	}
	vs.outer = vs.buildOuter()
	o.Logger.Debug("vector stars generated",
		"stars", ss.NumStars(), "vstars", len(vs.vstars), "elapsed", time.Since(start))

	return vs, nil
}

func (vs *Set) add(v VectorStar) {
	b := states.BasisIndex(len(vs.vstars))
	vs.vstars = append(vs.vstars, v)
	vs.star2v[v.Star] = append(vs.star2v[v.Star], b)
	for m, i := range v.States {
		vs.byState[i] = append(vs.byState[i], entry{v: b, vec: v.Vecs[m]})
	}
}

func (vs *Set) buildOuter() [][]crystal.Mat3 {
	n := len(vs.vstars)
	out := make([][]crystal.Mat3, n)
	for i := range out {
		out[i] = make([]crystal.Mat3, n)
	}
	for _, list := range vs.star2v {
		for _, i := range list {
			for _, j := range list {
				var t crystal.Mat3
				for m := range vs.vstars[i].Vecs {
					t = t.AddM(vs.vstars[i].Vecs[m].Outer(vs.vstars[j].Vecs[m]))
				}
				out[i][j] = t
			}
		}
	}

	return out
}

// StarSet returns the underlying star set.
func (vs *Set) StarSet() *shells.PairSet { return vs.stars }

// Len returns the number of vector stars.
func (vs *Set) Len() int { return len(vs.vstars) }

// VectorStar returns vector star i; its slices must not be modified.
func (vs *Set) VectorStar(i states.BasisIndex) VectorStar { return vs.vstars[i] }

// StarOf returns the star carrying vector star i.
func (vs *Set) StarOf(i states.BasisIndex) states.StarIndex { return vs.vstars[i].Star }

// OfStar returns the vector stars on star k (possibly none).
func (vs *Set) OfStar(k states.StarIndex) []states.BasisIndex {
	return append([]states.BasisIndex(nil), vs.star2v[k]...)
}

// Outer returns Σ_m v_i(m) ⊗ v_j(m) for vector stars on the same star and
// zero otherwise.
func (vs *Set) Outer(i, j states.BasisIndex) crystal.Mat3 { return vs.outer[i][j] }

// Contract returns Σ_ij a_i Outer(i,j) b_j.
func (vs *Set) Contract(a, b []float64) crystal.Mat3 {
	var out crystal.Mat3
	for _, list := range vs.star2v {
		for _, i := range list {
			if a[i] == 0 {
				continue
			}
			for _, j := range list {
				out = out.AddM(vs.outer[i][j].ScaleM(a[i] * b[j]))
			}
		}
	}

	return out
}
