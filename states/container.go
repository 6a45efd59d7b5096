// SPDX-License-Identifier: MIT

package states

import (
	"fmt"
	"math"

	"github.com/sohamch/Onsager/crystal"
)

// orientTol is the Cartesian tolerance for matching rotated orientations.
const orientTol = 1e-6

// Orientation is a defect orientation vector attached to a basis site.
// Dumbbells are headless: O and -O name the same orientation. Vacancies
// carry the zero vector.
type Orientation struct {
	Site int
	O    crystal.Vec
}

// Container binds a crystal, the defect chemistry, and the orientation
// list, and applies group operations to states of either variant.
type Container struct {
	crys    *crystal.Crystal
	chem    int
	orient  []Orientation
	image   [][]int // [g][orientation]
	flip    [][]int // [g][orientation], ±1
	vacancy bool
}

// NewVacancy returns the container for vacancies on chem: one zero
// orientation per site, so orientation index equals site index.
func NewVacancy(crys *crystal.Crystal, chem int) (*Container, error) {
	if crys == nil || chem < 0 || chem >= crys.NumChem() {
		return nil, statesErrorf(opNewContainer, crystal.ErrChemistry)
	}
	c := &Container{crys: crys, chem: chem, vacancy: true}
	for i := 0; i < crys.NumSites(chem); i++ {
		c.orient = append(c.orient, Orientation{Site: i})
	}
	if err := c.buildImages(); err != nil {
		return nil, statesErrorf(opNewContainer, err)
	}

	return c, nil
}

// NewContainer returns a container for oriented defects. families[w] lists
// representative orientation vectors at the first site of Wyckoff set w
// (crystal.SiteList order); an empty family leaves that set unoccupied.
// Every symmetry image of every family vector is generated, deduplicated up
// to sign, and ordered by site.
//
// Errors: crystal.ErrChemistry, ErrOrientation.
func NewContainer(crys *crystal.Crystal, chem int, families [][]crystal.Vec) (*Container, error) {
	if crys == nil || chem < 0 || chem >= crys.NumChem() {
		return nil, statesErrorf(opNewContainer, crystal.ErrChemistry)
	}
	sets, err := crys.SiteList(chem)
	if err != nil {
		return nil, statesErrorf(opNewContainer, err)
	}
	if len(families) != len(sets) {
		return nil, statesErrorf(opNewContainer,
			fmt.Errorf("%w: %d families for %d Wyckoff sets", ErrOrientation, len(families), len(sets)))
	}
	perSite := make([][]crystal.Vec, crys.NumSites(chem))
	allZero := true
	for w, fam := range families {
		s0 := sets[w][0]
		for _, o := range fam {
			if crys.Dim() == 2 && math.Abs(o[2]) > orientTol {
				return nil, statesErrorf(opNewContainer, fmt.Errorf("%w: out-of-plane orientation %v", ErrOrientation, o))
			}
			if o.Norm() > orientTol {
				allZero = false
			}
			for _, g := range crys.Ops() {
				j := g.IndexMap[chem][s0]
				gO := crys.GDirec(g, o)
				if !containsHeadless(perSite[j], gO) {
					perSite[j] = append(perSite[j], gO)
				}
			}
		}
	}
	c := &Container{crys: crys, chem: chem}
	for i, os := range perSite {
		for _, o := range os {
			c.orient = append(c.orient, Orientation{Site: i, O: o})
		}
	}
	if len(c.orient) == 0 {
		return nil, statesErrorf(opNewContainer, fmt.Errorf("%w: no orientations", ErrOrientation))
	}
	c.vacancy = allZero && len(c.orient) == crys.NumSites(chem)
	if err = c.buildImages(); err != nil {
		return nil, statesErrorf(opNewContainer, err)
	}

	return c, nil
}

func containsHeadless(os []crystal.Vec, v crystal.Vec) bool {
	for _, o := range os {
		if o.Close(v, orientTol) || o.Close(v.Neg(), orientTol) {
			return true
		}
	}

	return false
}

// buildImages tabulates, for every operation, the orientation image and
// the sign flip relative to the stored headless vector.
func (c *Container) buildImages() error {
	ops := c.crys.Ops()
	c.image = make([][]int, len(ops))
	c.flip = make([][]int, len(ops))
	for gi, g := range ops {
		c.image[gi] = make([]int, len(c.orient))
		c.flip[gi] = make([]int, len(c.orient))
		for k, or := range c.orient {
			j := g.IndexMap[c.chem][or.Site]
			gO := c.crys.GDirec(g, or.O)
			found := false
			for kk, cand := range c.orient {
				if cand.Site != j {
					continue
				}
				switch {
				case cand.O.Close(gO, orientTol):
					c.image[gi][k], c.flip[gi][k] = kk, 1
					found = true
				case cand.O.Close(gO.Neg(), orientTol):
					c.image[gi][k], c.flip[gi][k] = kk, -1
					found = true
				}
				if found {
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: orientation %d has no image under op %d", ErrOrientation, k, gi)
			}
		}
	}

	return nil
}

// Crystal returns the underlying crystal.
func (c *Container) Crystal() *crystal.Crystal { return c.crys }

// Chem returns the defect chemistry.
func (c *Container) Chem() int { return c.chem }

// IsVacancy reports whether every orientation is the zero vector with one
// orientation per site.
func (c *Container) IsVacancy() bool { return c.vacancy }

// NumOrientations returns the length of the orientation list.
func (c *Container) NumOrientations() int { return len(c.orient) }

// Orientation returns orientation k.
func (c *Container) Orientation(k int) Orientation { return c.orient[k] }

// Orientations returns a copy of the orientation list.
func (c *Container) Orientations() []Orientation {
	out := make([]Orientation, len(c.orient))
	copy(out, c.orient)

	return out
}

// Order returns the group order.
func (c *Container) Order() int { return c.crys.Order() }

// ApplyPure returns g·p and the sign (±1) picked up by the headless
// orientation vector; the sign tracks which end of a dumbbell is which.
func (c *Container) ApplyPure(g int, p Pure) (Pure, int) {
	op := c.crys.Op(g)
	R, _ := c.crys.GPos(op, p.R, c.chem, c.orient[p.I].Site)

	return Pure{I: c.image[g][p.I], R: R}, c.flip[g][p.I]
}

// ApplyComplex returns g·s in canonical form (solute in the home cell).
func (c *Container) ApplyComplex(g int, s Complex) Complex {
	s = s.canonical()
	op := c.crys.Op(g)
	RS, site := c.crys.GPos(op, crystal.LVec{}, c.chem, s.Solute)
	d, _ := c.ApplyPure(g, s.Defect)

	return Complex{Solute: site, Defect: Pure{I: d.I, R: d.R.Sub(RS)}}
}

// Pos returns the Cartesian position of the site carrying p.
func (c *Container) Pos(p Pure) crystal.Vec {
	return c.crys.Pos(c.chem, c.orient[p.I].Site, p.R)
}

// Dx returns the displacement of a state: the site position for a Pure
// state, the solute-to-defect vector for a Complex.
func (c *Container) Dx(s State) crystal.Vec {
	switch v := s.(type) {
	case Pure:
		return c.Pos(v)
	case Complex:
		return c.Pos(v.Defect).Sub(c.crys.Pos(c.chem, v.Solute, v.RS))
	default:
		return crystal.Vec{}
	}
}

// Norm2 returns |Dx(s)|².
func (c *Container) Norm2(s State) float64 { return c.Dx(s).Norm2() }

// IsOrigin reports whether the defect of s sits on the solute site.
func (c *Container) IsOrigin(s Complex) bool {
	s = s.canonical()

	return c.orient[s.Defect.I].Site == s.Solute && s.Defect.R.IsZero()
}

// Zero returns the origin pair state at site i (vacancy containers).
func (c *Container) Zero(i int) Complex {
	return Complex{Solute: i, Defect: Pure{I: i}}
}

// Connect returns the pair state from a vacancy at from to one at to: the
// first member sits at from, the second at to, offset to.R - from.R.
func (c *Container) Connect(from, to Pure) (Complex, error) {
	if !c.vacancy {
		return Complex{}, statesErrorf(opAdd, ErrIncompatible)
	}

	return Complex{Solute: from.I, Defect: Pure{I: to.I, R: to.R.Sub(from.R)}}, nil
}

// Add composes pair states: (i,j)R + (j,k)R' = (i,k)R+R'.
//
// Errors: ErrIncompatible for oriented defects or unmatched endpoints.
func (c *Container) Add(a, b Complex) (Complex, error) {
	a, b = a.canonical(), b.canonical()
	if !c.vacancy || a.Defect.I != b.Solute {
		return Complex{}, statesErrorf(opAdd, ErrIncompatible)
	}

	return Complex{Solute: a.Solute, Defect: Pure{I: b.Defect.I, R: a.Defect.R.Add(b.Defect.R)}}, nil
}

// Neg swaps the members of a pair state: -(i,j)R = (j,i)-R.
func (c *Container) Neg(a Complex) Complex {
	a = a.canonical()

	return Complex{Solute: a.Defect.I, Defect: Pure{I: a.Solute, R: a.Defect.R.Neg()}}
}

// Xor subtracts endpoints: (i,j)R ^ (i,k)R' = (k,j)R-R'. The result is the
// separation between the two second members, so b + (a^b) == a.
//
// Errors: ErrIncompatible for oriented defects or different first members.
func (c *Container) Xor(a, b Complex) (Complex, error) {
	a, b = a.canonical(), b.canonical()
	if !c.vacancy || a.Solute != b.Solute {
		return Complex{}, statesErrorf(opXor, ErrIncompatible)
	}

	return Complex{Solute: b.Defect.I, Defect: Pure{I: a.Defect.I, R: a.Defect.R.Sub(b.Defect.R)}}, nil
}

// PureStates returns one home-cell state per orientation.
func (c *Container) PureStates() []Pure {
	out := make([]Pure, len(c.orient))
	for k := range c.orient {
		out[k] = Pure{I: k}
	}

	return out
}

// ComplexStates enumerates every solute-defect pair with |dx| <= cutoff,
// the solute on any site of the home cell. Pairs with the defect on the
// solute site are included only when origin is set.
func (c *Container) ComplexStates(cutoff float64, origin bool) []Complex {
	var out []Complex
	lim := cutoff*cutoff + c.crys.Tolerance()
	cells := c.crys.CellRange(cutoff)
	for s := 0; s < c.crys.NumSites(c.chem); s++ {
		for k := range c.orient {
			c.crys.ForCells(cells, func(R crystal.LVec) {
				st := Complex{Solute: s, Defect: Pure{I: k, R: R}}
				if c.IsOrigin(st) && !origin {
					return
				}
				if c.Norm2(st) <= lim {
					out = append(out, st)
				}
			})
		}
	}

	return out
}
