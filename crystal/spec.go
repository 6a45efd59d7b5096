// SPDX-License-Identifier: MIT

package crystal

// Spec is the plain-data form of a crystal, for documents and persisted
// blobs. Lattice rows are the lattice vectors; Basis holds fractional
// positions per chemistry.
type Spec struct {
	Lattice      [][]float64   `yaml:"lattice" validate:"required,min=2,max=3,dive,min=2,max=3"`
	Basis        [][][]float64 `yaml:"basis" validate:"required,min=1,dive,min=1,dive,min=2,max=3"`
	Chemistry    []string      `yaml:"chemistry,omitempty"`
	Interstitial []int         `yaml:"interstitial,omitempty" validate:"dive,min=0"`
	Tolerance    float64       `yaml:"tolerance,omitempty" validate:"gte=0"`
}

// Spec returns the plain-data form of c. Basis positions are the reduced
// ones, so FromSpec(c.Spec()) has the same group and site order as c.
func (c *Crystal) Spec() Spec {
	s := Spec{Tolerance: c.tol}
	for _, a := range c.LatticeVectors() {
		s.Lattice = append(s.Lattice, append([]float64(nil), a[:c.dim]...))
	}
	s.Basis = make([][][]float64, len(c.basis))
	for ci, sites := range c.basis {
		for _, u := range sites {
			s.Basis[ci] = append(s.Basis[ci], append([]float64(nil), u[:c.dim]...))
		}
	}
	s.Chemistry = append([]string(nil), c.chemistry...)
	for ci := range c.basis {
		if c.interst[ci] {
			s.Interstitial = append(s.Interstitial, ci)
		}
	}

	return s
}

// FromSpec builds the crystal described by s.
//
// Errors: as New.
func FromSpec(s Spec) (*Crystal, error) {
	opts := []Option{WithInterstitial(s.Interstitial...)}
	if s.Tolerance > 0 {
		opts = append(opts, WithTolerance(s.Tolerance))
	}

	return New(s.Lattice, s.Basis, s.Chemistry, opts...)
}
