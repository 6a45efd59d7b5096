// SPDX-License-Identifier: MIT

package crystal

import "math"

// NewSC returns a simple cubic crystal with lattice constant a.
func NewSC(a float64, chem string) (*Crystal, error) {
	return New([][]float64{{a, 0, 0}, {0, a, 0}, {0, 0, a}}, [][][]float64{{{0, 0, 0}}}, []string{chem})
}

// NewBCC returns a body-centred cubic crystal (primitive cell).
func NewBCC(a float64, chem string) (*Crystal, error) {
	h := a / 2
	return New([][]float64{{-h, h, h}, {h, -h, h}, {h, h, -h}}, [][][]float64{{{0, 0, 0}}}, []string{chem})
}

// NewFCC returns a face-centred cubic crystal (primitive cell).
func NewFCC(a float64, chem string) (*Crystal, error) {
	h := a / 2
	return New([][]float64{{0, h, h}, {h, 0, h}, {h, h, 0}}, [][][]float64{{{0, 0, 0}}}, []string{chem})
}

// NewHCP returns a hexagonal close-packed crystal with two sites.
func NewHCP(a, c float64, chem string) (*Crystal, error) {
	return New(
		[][]float64{{a, 0, 0}, {-a / 2, a * math.Sqrt(3) / 2, 0}, {0, 0, c}},
		[][][]float64{{{1.0 / 3, 2.0 / 3, 0.25}, {2.0 / 3, 1.0 / 3, 0.75}}},
		[]string{chem})
}

// NewSquare returns a two-dimensional square lattice.
func NewSquare(a float64, chem string) (*Crystal, error) {
	return New([][]float64{{a, 0}, {0, a}}, [][][]float64{{{0, 0}}}, []string{chem})
}

// NewTriangular returns a two-dimensional triangular lattice.
func NewTriangular(a float64, chem string) (*Crystal, error) {
	return New([][]float64{{a, 0}, {a / 2, a * math.Sqrt(3) / 2}}, [][][]float64{{{0, 0}}}, []string{chem})
}

// NewHoneycomb returns the two-site honeycomb lattice with nearest-neighbour
// distance a/√3 for lattice constant a.
func NewHoneycomb(a float64, chem string) (*Crystal, error) {
	return New(
		[][]float64{{a, 0}, {a / 2, a * math.Sqrt(3) / 2}},
		[][][]float64{{{1.0 / 3, 1.0 / 3}, {2.0 / 3, 2.0 / 3}}},
		[]string{chem})
}

// Stock returns a named stock crystal with unit lattice constant (c/a
// ideal for HCP). Names: sc, bcc, fcc, hcp, square, triangular, honeycomb.
func Stock(name string) (*Crystal, bool) {
	var (
		c   *Crystal
		err error
	)
	switch name {
	case "sc":
		c, err = NewSC(1, "A")
	case "bcc":
		c, err = NewBCC(1, "A")
	case "fcc":
		c, err = NewFCC(1, "A")
	case "hcp":
		c, err = NewHCP(1, math.Sqrt(8.0/3), "A")
	case "square":
		c, err = NewSquare(1, "A")
	case "triangular":
		c, err = NewTriangular(1, "A")
	case "honeycomb":
		c, err = NewHoneycomb(1, "A")
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}

	return c, true
}
