// SPDX-License-Identifier: MIT

package shells

import (
	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/states"
)

// Jump is a transition between two states of a star set, with the vacancy
// displacement.
type Jump struct {
	I, F states.StateIndex
	Dx   crystal.Vec
}

// JumpSet is a list of jump classes with, per class, the bare vacancy jump
// class it derives from and the stars of its representative endpoints.
type JumpSet struct {
	Jumps    [][]Jump
	Type     []int
	StarPair [][2]states.StarIndex
}

// Len returns the number of classes.
func (js JumpSet) Len() int { return len(js.Jumps) }

// Filter returns the classes for which keep returns true.
func (js JumpSet) Filter(keep func(k int) bool) JumpSet {
	var out JumpSet
	for k := range js.Jumps {
		if !keep(k) {
			continue
		}
		out.Jumps = append(out.Jumps, js.Jumps[k])
		out.Type = append(out.Type, js.Type[k])
		out.StarPair = append(out.StarPair, js.StarPair[k])
	}

	return out
}

type pairKey [2]states.StateIndex

// Omega1 returns the classes of vacancy jumps with the solute fixed, both
// endpoints inside the set and neither the zero state.
func (s *StarSet) Omega1() JumpSet {
	return s.omega(false)
}

// Omega2 returns the classes of solute-vacancy exchanges: the vacancy jumps
// onto the solute site, the final state is the negated pair state.
func (s *StarSet) Omega2() JumpSet {
	return s.omega(true)
}

func (s *StarSet) omega(exchange bool) JumpSet {
	var out JumpSet
	if s.shells < 1 {
		return out
	}
	c := s.Container()
	done := make(map[pairKey]bool)
	for jn, jump := range s.jumps {
		jt := s.jumpType[jn]
		for i := 0; i < s.NumStates(); i++ {
			psi := s.State(states.StateIndex(i))
			if c.IsOrigin(psi) {
				continue
			}
			psf, err := c.Add(psi, jump)
			if err != nil {
				continue
			}
			var (
				f  states.StateIndex
				ok bool
				dx crystal.Vec
			)
			if exchange {
				if !c.IsOrigin(psf) {
					continue
				}
				f, ok = s.Index(c.Neg(psi))
				dx = c.Dx(psi).Neg()
			} else {
				if c.IsOrigin(psf) {
					continue
				}
				f, ok = s.Index(psf)
				dx = c.Dx(psf).Sub(c.Dx(psi))
			}
			if !ok || done[pairKey{states.StateIndex(i), f}] {
				continue
			}
			list := s.equivalentJumps(states.StateIndex(i), f, dx)
			for _, j := range list {
				done[pairKey{j.I, j.F}] = true
			}
			out.Jumps = append(out.Jumps, list)
			out.Type = append(out.Type, jt)
			out.StarPair = append(out.StarPair, [2]states.StarIndex{s.StarOf(states.StateIndex(i)), s.StarOf(f)})
		}
	}

	return out
}

// equivalentJumps lists (i,f,dx), its reverse, and every symmetry image
// with its reverse, without repeats.
func (s *StarSet) equivalentJumps(i, f states.StateIndex, dx crystal.Vec) []Jump {
	c := s.Container()
	crys := c.Crystal()
	have := map[pairKey]bool{{i, f}: true}
	list := []Jump{{I: i, F: f, Dx: dx}}
	if i != f {
		have[pairKey{f, i}] = true
		list = append(list, Jump{I: f, F: i, Dx: dx.Neg()})
	}
	psi, psf := s.State(i), s.State(f)
	for g := 0; g < c.Order(); g++ {
		gi, ok1 := s.Index(psi.Image(c, g))
		gf, ok2 := s.Index(psf.Image(c, g))
		if !ok1 || !ok2 || have[pairKey{gi, gf}] {
			continue
		}
		gdx := crys.GDirec(crys.Op(g), dx)
		have[pairKey{gi, gf}] = true
		list = append(list, Jump{I: gi, F: gf, Dx: gdx})
		if gi != gf && !have[pairKey{gf, gi}] {
			have[pairKey{gf, gi}] = true
			list = append(list, Jump{I: gf, F: gi, Dx: gdx.Neg()})
		}
	}

	return list
}
