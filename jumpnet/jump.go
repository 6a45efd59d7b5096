// SPDX-License-Identifier: MIT

package jumpnet

import (
	"fmt"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/states"
)

// Jump is a transition From → To. C1 and C2 name the dumbbell end holding
// the moving atom before and after the jump (±1); vacancies use 0.
type Jump struct {
	From states.Pure
	To   states.Pure
	C1   int
	C2   int
}

// Key is the comparable identity of a jump, translation removed.
type Key struct {
	I1, I2 int
	R      crystal.LVec
	C1, C2 int
}

// Key returns the identity of j.
func (j Jump) Key() Key {
	return Key{I1: j.From.I, I2: j.To.I, R: j.To.R.Sub(j.From.R), C1: j.C1, C2: j.C2}
}

// Reverse returns the jump back from To to From.
func (j Jump) Reverse() Jump {
	return Jump{From: j.To, To: j.From, C1: j.C2, C2: j.C1}.home()
}

// home translates j so that From lies in the home cell.
func (j Jump) home() Jump {
	if j.From.R.IsZero() {
		return j
	}
	shift := j.From.R

	return Jump{
		From: states.Pure{I: j.From.I},
		To:   states.Pure{I: j.To.I, R: j.To.R.Sub(shift)},
		C1:   j.C1,
		C2:   j.C2,
	}
}

// Image returns g·j with From in the home cell; direction tags follow the
// orientation sign.
func (j Jump) Image(c *states.Container, g int) Jump {
	from, f1 := c.ApplyPure(g, j.From)
	to, f2 := c.ApplyPure(g, j.To)

	return Jump{From: from, To: to, C1: j.C1 * f1, C2: j.C2 * f2}.home()
}

func (j Jump) String() string {
	return fmt.Sprintf("%v(%+d) -> %v(%+d)", j.From, j.C1, j.To, j.C2)
}

// jumpAction is the group acting on jumps.
type jumpAction struct{ c *states.Container }

func (a jumpAction) Order() int               { return a.c.Order() }
func (a jumpAction) Apply(g int, j Jump) Jump { return j.Image(a.c, g) }
func (a jumpAction) Key(j Jump) Key           { return j.Key() }

// atom returns the position of dumbbell end c of p; the site itself for
// vacancies.
func atom(c *states.Container, p states.Pure, end int) crystal.Vec {
	pos := c.Pos(p)
	if end == 0 {
		return pos
	}

	return pos.Add(c.Orientation(p.I).O.Scale(0.5 * float64(end)))
}

// SiteDx returns the site-to-site displacement of j.
func SiteDx(c *states.Container, j Jump) crystal.Vec {
	return c.Pos(j.To).Sub(c.Pos(j.From))
}

// AtomDx returns the displacement of the moving atom.
func AtomDx(c *states.Container, j Jump) crystal.Vec {
	return atom(c, j.To, j.C2).Sub(atom(c, j.From, j.C1))
}

// IndexedJump is a jump expressed for numeric use: orientation indices of
// the end states and the site displacement.
type IndexedJump struct {
	I, J int
	Dx   crystal.Vec
}
