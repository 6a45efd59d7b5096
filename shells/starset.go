// SPDX-License-Identifier: MIT

package shells

import (
	"time"

	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/states"
)

// PairSet is the star set over solute-vacancy pair states, bundled with the
// vacancy jump list it was grown from.
type PairSet = states.StarSet[states.Complex]

// StarSet is a pair-state star set of Shells shells together with the
// jump list (every jump of the network as a pair state) and its class.
type StarSet struct {
	*PairSet
	net      *jumpnet.Network
	jumps    []states.Complex
	jumpType []int
	shells   int
	opts     Options
}

// Generate grows nshells shells from the jump network. Zero shells give an
// empty set, plus the origin states when WithOriginStates is set.
//
// Implementation:
//   - Stage 1: shell 1 is the jump list itself.
//   - Stage 2: shell k+1 = { s + j : s in shell k, j in jump list }, never
//     the zero state; states already present are skipped.
//   - Stage 3: symmetry closure and star partition (states.NewStarSet).
//
// Errors: ErrNilNetwork, ErrNotVacancy, ErrBadShells.
func Generate(net *jumpnet.Network, nshells int, opts ...Option) (*StarSet, error) {
	if net == nil {
		return nil, shellsErrorf(opGenerate, ErrNilNetwork)
	}
	if nshells < 0 {
		return nil, shellsErrorf(opGenerate, ErrBadShells)
	}
	c := net.Container()
	if !c.IsVacancy() {
		return nil, shellsErrorf(opGenerate, ErrNotVacancy)
	}
	o := newOptions(opts)
	start := time.Now()
	s := &StarSet{net: net, shells: nshells, opts: o}
	for k := 0; k < net.NumClasses(); k++ {
		for _, j := range net.Class(k) {
			ps, err := c.Connect(j.From, j.To)
			if err != nil {
				return nil, shellsErrorf(opGenerate, err)
			}
			s.jumps = append(s.jumps, ps)
			s.jumpType = append(s.jumpType, k)
		}
	}

	var items []states.Complex
	seen := make(map[states.Key]bool)
	add := func(ps states.Complex) bool {
		if seen[ps.Key()] {
			return false
		}
		seen[ps.Key()] = true
		items = append(items, ps)

		return true
	}
	if o.OriginStates {
		for i := 0; i < c.Crystal().NumSites(c.Chem()); i++ {
			add(c.Zero(i))
		}
	}
	if nshells > 0 {
		last := make([]states.Complex, 0, len(s.jumps))
		for _, j := range s.jumps {
			if add(j) {
				last = append(last, j)
			}
		}
		for n := 1; n < nshells; n++ {
			var next []states.Complex
			for _, a := range last {
				for _, j := range s.jumps {
					b, err := c.Add(a, j)
					if err != nil || c.IsOrigin(b) {
						continue
					}
					if add(b) {
						next = append(next, b)
					}
				}
			}
			o.Logger.Debug("shell grown", "shell", n+1, "new", len(next), "states", len(items))
			last = next
		}
	}
	ps, err := states.NewStarSet(c, items, o.Threshold)
	if err != nil {
		return nil, shellsErrorf(opGenerate, err)
	}
	s.PairSet = ps
	o.Logger.Debug("star set generated",
		"shells", nshells, "states", ps.NumStates(), "stars", ps.NumStars(), "elapsed", time.Since(start))

	return s, nil
}

// Shells returns the shell count.
func (s *StarSet) Shells() int { return s.shells }

// Network returns the vacancy jump network.
func (s *StarSet) Network() *jumpnet.Network { return s.net }

// JumpList returns the jump list as pair states and the class of each.
func (s *StarSet) JumpList() ([]states.Complex, []int) {
	return append([]states.Complex(nil), s.jumps...), append([]int(nil), s.jumpType...)
}

// Add returns the set of every non-zero sum of a state of s and a state of
// other, on top of s: states of s keep their indices and stars. An empty s
// yields a copy of other.
//
// Errors: ErrNotVacancy when the two sets use different containers.
func (s *StarSet) Add(other *StarSet) (*StarSet, error) {
	if other == nil || s.Container() != other.Container() {
		return nil, shellsErrorf(opAdd, ErrNotVacancy)
	}
	out := &StarSet{net: s.net, jumps: s.jumps, jumpType: s.jumpType, shells: s.shells + other.shells, opts: s.opts}
	if other.NumStates() == 0 {
		out.PairSet = s.PairSet
		out.shells = s.shells

		return out, nil
	}
	if s.NumStates() == 0 {
		out.PairSet = other.PairSet
		out.shells = other.shells

		return out, nil
	}
	c := s.Container()
	var items []states.Complex
	for _, a := range s.States() {
		for _, b := range other.States() {
			sum, err := c.Add(a, b)
			if err != nil || c.IsOrigin(sum) {
				continue
			}
			if _, ok := s.Index(sum); ok {
				continue
			}
			items = append(items, sum)
		}
	}
	ps, err := s.PairSet.Extend(items)
	if err != nil {
		return nil, shellsErrorf(opAdd, err)
	}
	out.PairSet = ps

	return out, nil
}

// Diff returns the star set of endpoint differences b ^ a for a in from and
// b in to (same solute); it includes the zero state.
func Diff(from, to *StarSet, threshold float64) (*PairSet, error) {
	if from == nil || to == nil || from.Container() != to.Container() {
		return nil, shellsErrorf(opDiff, ErrNotVacancy)
	}
	c := from.Container()
	seen := make(map[states.Key]bool)
	var items []states.Complex
	for _, a := range from.States() {
		for _, b := range to.States() {
			d, err := c.Xor(b, a)
			if err != nil || seen[d.Key()] {
				continue
			}
			seen[d.Key()] = true
			items = append(items, d)
		}
	}
	ps, err := states.NewStarSet(c, items, threshold)
	if err != nil {
		return nil, shellsErrorf(opDiff, err)
	}

	return ps, nil
}
