// SPDX-License-Identifier: MIT

package jumpnet

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/orbit"
	"github.com/sohamch/Onsager/states"
)

// Network is a list of jump classes over one container, with the indexed
// form kept parallel to it.
type Network struct {
	cont    *states.Container
	cutoff  float64
	opts    Options
	classes [][]Jump
	indexed [][]IndexedJump
	lookup  map[Key][2]int
}

// Build enumerates every jump from a home-cell state whose moving atom
// travels at most cutoff, applies the collision filter, and groups the
// survivors into classes closed under symmetry and reversal. Classes are
// ordered by the length of the atom displacement.
//
// Implementation:
//   - Stage 1: candidates From = (k1, 0), To = (k2, R) for every pair of
//     orientations and cell R in range, each direction-tag pair for
//     dumbbells; the null move is skipped.
//   - Stage 2: collision filter against host sites and dumbbell partners.
//   - Stage 3: orbit.Partition by |atom dx|², then orbits whose
//     representatives are reverses of each other are merged.
//
// Errors: ErrNilContainer, ErrCutoff.
func Build(c *states.Container, cutoff float64, opts ...Option) (*Network, error) {
	if c == nil {
		return nil, jumpnetErrorf(opBuild, ErrNilContainer)
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, jumpnetErrorf(opBuild, ErrCutoff)
	}
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	start := time.Now()
	crys := c.Crystal()
	tol := crys.Tolerance()
	tags := []int{0}
	if !c.IsVacancy() {
		tags = []int{1, -1}
	}
	var reach float64
	for k := 0; k < c.NumOrientations(); k++ {
		reach = math.Max(reach, c.Orientation(k).O.Norm())
	}
	cells := crys.CellRange(cutoff + reach)
	hosts := hostSites(crys, c.Chem(), cutoff+reach+o.HostRadius)

	var cands []Jump
	rejected := 0
	for k1 := 0; k1 < c.NumOrientations(); k1++ {
		for k2 := 0; k2 < c.NumOrientations(); k2++ {
			crys.ForCells(cells, func(R crystal.LVec) {
				from, to := states.Pure{I: k1}, states.Pure{I: k2, R: R}
				if from.Key() == to.Key() {
					return
				}
				for _, c1 := range tags {
					for _, c2 := range tags {
						j := Jump{From: from, To: to, C1: c1, C2: c2}
						d := AtomDx(c, j).Norm()
						if d < tol || d > cutoff+tol {
							continue
						}
						if collides(c, j, hosts, o) {
							rejected++

							continue
						}
						cands = append(cands, j)
					}
				}
			})
		}
	}
	n := &Network{cont: c, cutoff: cutoff, opts: o}
	classes, err := group(c, cands, tol)
	if err != nil {
		return nil, jumpnetErrorf(opBuild, err)
	}
	n.classes = classes
	n.reindex()
	o.Logger.Debug("jump network built",
		"classes", len(n.classes), "jumps", len(cands), "rejected", rejected,
		"cutoff", cutoff, "elapsed", time.Since(start))

	return n, nil
}

// group partitions candidates into orbits and merges reverse orbits.
func group(c *states.Container, cands []Jump, tol float64) ([][]Jump, error) {
	norm := func(j Jump) float64 { return AtomDx(c, j).Norm2() }
	sort.SliceStable(cands, func(a, b int) bool {
		na, nb := norm(cands[a]), norm(cands[b])
		if math.Abs(na-nb) > tol {
			return na < nb
		}

		return lessKey(cands[a].Key(), cands[b].Key())
	})
	orbits, err := orbit.Partition[Jump, Key](jumpAction{c: c}, cands, norm, tol)
	if err != nil {
		return nil, err
	}
	where := make(map[Key]int, len(cands))
	for o, members := range orbits {
		for _, i := range members {
			where[cands[i].Key()] = o
		}
	}
	merged := make([]bool, len(orbits))
	var out [][]Jump
	for o, members := range orbits {
		if merged[o] {
			continue
		}
		var class []Jump
		for _, i := range members {
			class = append(class, cands[i])
		}
		if r, ok := where[cands[members[0]].Reverse().Key()]; ok && r != o {
			merged[r] = true
			for _, i := range orbits[r] {
				class = append(class, cands[i])
			}
		}
		out = append(out, class)
	}

	return out, nil
}

func lessKey(a, b Key) bool {
	switch {
	case a.I1 != b.I1:
		return a.I1 < b.I1
	case a.I2 != b.I2:
		return a.I2 < b.I2
	case a.R != b.R:
		for k := 0; k < 3; k++ {
			if a.R[k] != b.R[k] {
				return a.R[k] < b.R[k]
			}
		}
	case a.C1 != b.C1:
		return a.C1 < b.C1
	}

	return a.C2 < b.C2
}

// hostSites returns the positions of every occupied (non-interstitial)
// site within radius r of the origin cell, plus the defect sites when the
// defect chemistry is itself a host lattice.
func hostSites(crys *crystal.Crystal, chem int, r float64) []crystal.Vec {
	var out []crystal.Vec
	cells := crys.CellRange(r)
	for ci := 0; ci < crys.NumChem(); ci++ {
		if crys.Interstitial(ci) {
			continue
		}
		for i := 0; i < crys.NumSites(ci); i++ {
			crys.ForCells(cells, func(R crystal.LVec) {
				out = append(out, crys.Pos(ci, i, R))
			})
		}
	}

	return out
}

// collides applies the host and partner radii to the path of j.
func collides(c *states.Container, j Jump, hosts []crystal.Vec, o Options) bool {
	a, b := atom(c, j.From, j.C1), atom(c, j.To, j.C2)
	tol := c.Crystal().Tolerance()
	if o.HostRadius > 0 {
		p0, p1 := c.Pos(j.From), c.Pos(j.To)
		for _, h := range hosts {
			if h.Close(p0, tol) || h.Close(p1, tol) {
				continue
			}
			if segmentDistance(a, b, h) < o.HostRadius-tol {
				return true
			}
		}
	}
	if o.PartnerRadius > 0 && j.C1 != 0 {
		left := atom(c, j.From, -j.C1)
		partner := atom(c, j.To, -j.C2)
		if segmentDistance(a, b, left) < o.PartnerRadius-tol ||
			segmentDistance(a, b, partner) < o.PartnerRadius-tol {
			return true
		}
	}

	return false
}

// segmentDistance returns the closest approach of segment [a,b] to p.
func segmentDistance(a, b, p crystal.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Norm2()
	if l2 == 0 {
		return p.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))

	return a.Add(ab.Scale(t)).Sub(p).Norm()
}

func (n *Network) reindex() {
	n.indexed = make([][]IndexedJump, len(n.classes))
	n.lookup = make(map[Key][2]int)
	for k, class := range n.classes {
		n.indexed[k] = make([]IndexedJump, len(class))
		for m, j := range class {
			n.indexed[k][m] = IndexedJump{I: j.From.I, J: j.To.I, Dx: SiteDx(n.cont, j)}
			n.lookup[j.Key()] = [2]int{k, m}
		}
	}
}

// Restore rebuilds a network from stored classes, for persisted
// calculators.
func Restore(c *states.Container, cutoff float64, classes [][]Jump) (*Network, error) {
	if c == nil {
		return nil, jumpnetErrorf(opRestore, ErrNilContainer)
	}
	n := &Network{cont: c, cutoff: cutoff, opts: DefaultOptions(), classes: make([][]Jump, len(classes))}
	for k, class := range classes {
		n.classes[k] = append([]Jump(nil), class...)
	}
	n.reindex()

	return n, nil
}

// Regenerate returns a network holding only the classes listed in
// selected, in that order. The indexed form is rebuilt; n is unchanged.
//
// Errors: ErrSelection.
func (n *Network) Regenerate(selected []int) (*Network, error) {
	seen := make(map[int]bool, len(selected))
	out := &Network{cont: n.cont, cutoff: n.cutoff, opts: n.opts, classes: make([][]Jump, 0, len(selected))}
	for _, k := range selected {
		if k < 0 || k >= len(n.classes) || seen[k] {
			return nil, jumpnetErrorf(opRegenerate, fmt.Errorf("%w: %d", ErrSelection, k))
		}
		seen[k] = true
		out.classes = append(out.classes, append([]Jump(nil), n.classes[k]...))
	}
	out.reindex()

	return out, nil
}

// Container returns the container the network lives on.
func (n *Network) Container() *states.Container { return n.cont }

// Cutoff returns the build cutoff.
func (n *Network) Cutoff() float64 { return n.cutoff }

// NumClasses returns the number of jump classes.
func (n *Network) NumClasses() int { return len(n.classes) }

// NumJumps returns the total number of jumps.
func (n *Network) NumJumps() int {
	total := 0
	for _, c := range n.classes {
		total += len(c)
	}

	return total
}

// Class returns class k; the slice must not be modified.
func (n *Network) Class(k int) []Jump { return n.classes[k] }

// Classes returns a deep copy of every class.
func (n *Network) Classes() [][]Jump {
	out := make([][]Jump, len(n.classes))
	for k, c := range n.classes {
		out[k] = append([]Jump(nil), c...)
	}

	return out
}

// Indexed returns the indexed network, parallel to Classes.
func (n *Network) Indexed() [][]IndexedJump {
	out := make([][]IndexedJump, len(n.indexed))
	for k, c := range n.indexed {
		out[k] = append([]IndexedJump(nil), c...)
	}

	return out
}

// ClassOf returns the class and position of j, after moving From to the
// home cell.
func (n *Network) ClassOf(j Jump) (class, pos int, ok bool) {
	v, ok := n.lookup[j.home().Key()]

	return v[0], v[1], ok
}

// Equivalent returns an operation g with g·a == b, or g·a == reverse(b)
// when reverse is set and no direct image exists.
func (n *Network) Equivalent(a, b Jump, reverse bool) (int, bool) {
	act := jumpAction{c: n.cont}
	if g, ok := orbit.First[Jump, Key](act, a.home(), b.home()); ok {
		return g, true
	}
	if reverse {
		return orbit.First[Jump, Key](act, a.home(), b.Reverse())
	}

	return -1, false
}

// Sites builds the vacancy network of chem: the bare-defect site jump
// network of a crystal.
func Sites(crys *crystal.Crystal, chem int, cutoff float64, opts ...Option) (*Network, error) {
	c, err := states.NewVacancy(crys, chem)
	if err != nil {
		return nil, jumpnetErrorf(opBuild, err)
	}

	return Build(c, cutoff, opts...)
}
