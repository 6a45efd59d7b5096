// SPDX-License-Identifier: MIT

package states

import (
	"fmt"

	"github.com/sohamch/Onsager/crystal"
)

// Kind tags the State variant.
type Kind int

const (
	// KindPure is a single defect.
	KindPure Kind = iota
	// KindComplex is a solute-defect pair.
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindPure:
		return "pure"
	case KindComplex:
		return "complex"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Key is the comparable identity of a state. Two states are equal iff
// their keys are equal.
type Key struct {
	Kind   Kind
	Solute int
	I      int
	R      crystal.LVec
}

// Less orders keys lexicographically.
func (k Key) Less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	if k.Solute != o.Solute {
		return k.Solute < o.Solute
	}
	if k.I != o.I {
		return k.I < o.I
	}
	for a := 0; a < 3; a++ {
		if k.R[a] != o.R[a] {
			return k.R[a] < o.R[a]
		}
	}

	return false
}

// State is the sum type over Pure and Complex.
type State interface {
	Key() Key
	Kind() Kind
}

// Pure is defect orientation I in lattice cell R.
type Pure struct {
	I int
	R crystal.LVec
}

// Key implements State.
func (p Pure) Key() Key { return Key{Kind: KindPure, Solute: -1, I: p.I, R: p.R} }

// Kind implements State.
func (Pure) Kind() Kind { return KindPure }

// Image returns g·p folded into the home cell; Pure stars are classes of
// orientations, independent of translation.
func (p Pure) Image(c *Container, g int) Pure {
	q, _ := c.ApplyPure(g, p)
	q.R = crystal.LVec{}

	return q
}

func (p Pure) String() string { return fmt.Sprintf("%d.%v", p.I, p.R) }

// Complex is a solute on basis site Solute of cell RS paired with Defect.
// Containers keep RS at zero.
type Complex struct {
	Solute int
	RS     crystal.LVec
	Defect Pure
}

// Key implements State.
func (s Complex) Key() Key {
	c := s.canonical()

	return Key{Kind: KindComplex, Solute: c.Solute, I: c.Defect.I, R: c.Defect.R}
}

// Kind implements State.
func (Complex) Kind() Kind { return KindComplex }

// Image returns g·s in canonical form.
func (s Complex) Image(c *Container, g int) Complex {
	return c.ApplyComplex(g, s)
}

func (s Complex) canonical() Complex {
	if s.RS.IsZero() {
		return s
	}

	return Complex{Solute: s.Solute, Defect: Pure{I: s.Defect.I, R: s.Defect.R.Sub(s.RS)}}
}

func (s Complex) String() string {
	c := s.canonical()

	return fmt.Sprintf("%d.[0 0 0]:%d.%v", c.Solute, c.Defect.I, c.Defect.R)
}
