// SPDX-License-Identifier: MIT

package crystal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sohamch/Onsager/matrix"
)

// DefaultTolerance is the absolute tolerance on fractional and Cartesian
// coordinates used for every equality test in this package.
const DefaultTolerance = 1e-8

// Option configures New.
type Option func(*options)

type options struct {
	tol          float64
	interstitial []int
}

// WithTolerance overrides DefaultTolerance; non-positive values are ignored.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 && !math.IsNaN(tol) {
			o.tol = tol
		}
	}
}

// WithInterstitial tags chemistries that sit on interstitial sites. The tag
// is carried for documents and diffusers; it does not change the symmetry.
func WithInterstitial(chems ...int) Option {
	return func(o *options) { o.interstitial = append(o.interstitial, chems...) }
}

// Crystal is an immutable crystal structure with its space group.
type Crystal struct {
	dim       int
	tol       float64
	lattice   Mat3 // columns are the lattice vectors
	invLatt   Mat3
	metric    Mat3
	volume    float64
	basis     [][]Vec // [chem][site], fractional
	chemistry []string
	interst   map[int]bool
	ops       []GroupOp
}

// New builds a crystal from lattice vectors (rows of latt are the vectors
// a_i, each of length dim), fractional basis positions per chemistry, and
// chemistry labels (may be nil).
//
// Implementation:
//   - Stage 1: Validate shapes; embed 2D into 3D with a unit third axis.
//   - Stage 2: Invert the lattice (gonum), check the metric is positive
//     definite (Jacobi eigenvalues).
//   - Stage 3: Reduce basis positions into [0,1), reject duplicates.
//   - Stage 4: Discover the space group.
//
// Errors: ErrBadDimension, ErrBadLattice, ErrBadBasis.
func New(latt [][]float64, basis [][][]float64, chemistry []string, opts ...Option) (*Crystal, error) {
	o := options{tol: DefaultTolerance}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	dim := len(latt)
	if dim != 2 && dim != 3 {
		return nil, crystalErrorf(opNew, ErrBadDimension)
	}
	c := &Crystal{dim: dim, tol: o.tol, interst: map[int]bool{}}
	c.lattice[2][2] = 1
	for i, a := range latt {
		if len(a) != dim {
			return nil, crystalErrorf(opNew, fmt.Errorf("%w: vector %d has %d components", ErrBadLattice, i, len(a)))
		}
		for k, x := range a {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, crystalErrorf(opNew, ErrBadLattice)
			}
			c.lattice[k][i] = x
		}
	}
	if err := c.invert(); err != nil {
		return nil, crystalErrorf(opNew, err)
	}

	if len(basis) == 0 {
		return nil, crystalErrorf(opNew, fmt.Errorf("%w: no chemistry", ErrBadBasis))
	}
	c.basis = make([][]Vec, len(basis))
	for ci, sites := range basis {
		if len(sites) == 0 {
			return nil, crystalErrorf(opNew, fmt.Errorf("%w: chemistry %d is empty", ErrBadBasis, ci))
		}
		for si, u := range sites {
			if len(u) != dim {
				return nil, crystalErrorf(opNew, fmt.Errorf("%w: site %d/%d has %d components", ErrBadBasis, ci, si, len(u)))
			}
			var v Vec
			for k, x := range u {
				v[k] = wrap(x, c.tol)
			}
			c.basis[ci] = append(c.basis[ci], v)
		}
	}
	if err := c.checkDuplicates(); err != nil {
		return nil, crystalErrorf(opNew, err)
	}
	c.chemistry = make([]string, len(basis))
	for ci := range basis {
		if ci < len(chemistry) {
			c.chemistry[ci] = chemistry[ci]
		} else {
			c.chemistry[ci] = fmt.Sprintf("X%d", ci)
		}
	}
	for _, ci := range o.interstitial {
		if ci >= 0 && ci < len(basis) {
			c.interst[ci] = true
		}
	}
	ops, err := c.findGroup()
	if err != nil {
		return nil, crystalErrorf(opGroup, err)
	}
	c.ops = ops

	return c, nil
}

// invert fills invLatt, metric and volume.
func (c *Crystal) invert() error {
	a := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, c.lattice[i][j])
		}
	}
	det := mat.Det(a)
	if math.Abs(det) < c.tol {
		return fmt.Errorf("%w: zero volume", ErrBadLattice)
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return fmt.Errorf("%w: %v", ErrBadLattice, err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c.invLatt[i][j] = inv.At(i, j)
		}
	}
	c.volume = math.Abs(det)
	c.metric = c.lattice.T().Mul(c.lattice)

	g, err := matrix.NewFromRows(c.metric.Rows(c.dim))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadLattice, err)
	}
	vals, _, err := matrix.EigenSym(g)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadLattice, err)
	}
	if vals[0] <= c.tol*vals[len(vals)-1] {
		return fmt.Errorf("%w: metric is not positive definite", ErrBadLattice)
	}

	return nil
}

func (c *Crystal) checkDuplicates() error {
	for ci, sites := range c.basis {
		for i := range sites {
			for j := i + 1; j < len(sites); j++ {
				if c.sameFrac(sites[i], sites[j]) {
					return fmt.Errorf("%w: duplicate site %d/%d and %d/%d", ErrBadBasis, ci, i, ci, j)
				}
			}
		}
	}

	return nil
}

// wrap reduces x into [0,1), snapping values within tol of 1 to 0.
func wrap(x, tol float64) float64 {
	x -= math.Floor(x)
	if x > 1-tol {
		x = 0
	}

	return x
}

// sameFrac reports whether two fractional positions differ by a lattice vector.
func (c *Crystal) sameFrac(u, v Vec) bool {
	for k := 0; k < 3; k++ {
		d := u[k] - v[k]
		if math.Abs(d-math.Round(d)) > c.tol {
			return false
		}
	}

	return true
}

// Dim returns the spatial dimension (2 or 3).
func (c *Crystal) Dim() int { return c.dim }

// Tolerance returns the equality tolerance.
func (c *Crystal) Tolerance() float64 { return c.tol }

// Lattice returns the lattice matrix; its columns are the lattice vectors.
func (c *Crystal) Lattice() Mat3 { return c.lattice }

// InvLattice returns the inverse lattice matrix.
func (c *Crystal) InvLattice() Mat3 { return c.invLatt }

// LatticeVectors returns the dim lattice vectors.
func (c *Crystal) LatticeVectors() []Vec {
	out := make([]Vec, c.dim)
	for i := 0; i < c.dim; i++ {
		out[i] = Vec{c.lattice[0][i], c.lattice[1][i], c.lattice[2][i]}
	}

	return out
}

// Reciprocal returns the reciprocal lattice vectors b_i with a_i·b_j = 2πδ_ij.
func (c *Crystal) Reciprocal() []Vec {
	out := make([]Vec, c.dim)
	for i := 0; i < c.dim; i++ {
		out[i] = Vec{c.invLatt[i][0], c.invLatt[i][1], c.invLatt[i][2]}.Scale(2 * math.Pi)
	}

	return out
}

// Volume returns the cell volume (area in 2D).
func (c *Crystal) Volume() float64 { return c.volume }

// NumChem returns the number of chemistries.
func (c *Crystal) NumChem() int { return len(c.basis) }

// Chemistry returns the label of chem.
func (c *Crystal) Chemistry(chem int) string { return c.chemistry[chem] }

// Interstitial reports whether chem was tagged as interstitial.
func (c *Crystal) Interstitial(chem int) bool { return c.interst[chem] }

// NumSites returns the number of basis sites of chem.
func (c *Crystal) NumSites(chem int) int { return len(c.basis[chem]) }

// Basis returns the fractional position of site i of chem.
func (c *Crystal) Basis(chem, i int) Vec { return c.basis[chem][i] }

// Pos returns the Cartesian position of site i of chem in cell R.
func (c *Crystal) Pos(chem, i int, R LVec) Vec {
	return c.lattice.MulVec(R.Float().Add(c.basis[chem][i]))
}

// ToFrac converts a Cartesian vector to lattice coordinates.
func (c *Crystal) ToFrac(v Vec) Vec { return c.invLatt.MulVec(v) }

// ToCart converts lattice coordinates to a Cartesian vector.
func (c *Crystal) ToCart(u Vec) Vec { return c.lattice.MulVec(u) }

// CellRange returns, per axis, the number of cells to scan so that every
// point within radius r of a point in the home cell is covered.
func (c *Crystal) CellRange(r float64) LVec {
	var n LVec
	for i := 0; i < c.dim; i++ {
		row := Vec{c.invLatt[i][0], c.invLatt[i][1], c.invLatt[i][2]}
		n[i] = int(math.Ceil(r*row.Norm())) + 1
	}

	return n
}

// ForCells calls fn for every cell R in the box ±n, in lexicographic order.
func (c *Crystal) ForCells(n LVec, fn func(R LVec)) {
	for x := -n[0]; x <= n[0]; x++ {
		for y := -n[1]; y <= n[1]; y++ {
			for z := -n[2]; z <= n[2]; z++ {
				fn(LVec{x, y, z})
			}
		}
	}
}

// LatticeOf returns the cell R with pos(chem, j, R) - pos(chem, i, 0) == dx,
// and false when dx does not connect the two sites.
func (c *Crystal) LatticeOf(chem, i, j int, dx Vec) (LVec, bool) {
	u := c.ToFrac(dx).Sub(c.basis[chem][j]).Add(c.basis[chem][i])
	var R LVec
	for k := 0; k < 3; k++ {
		R[k] = int(math.Round(u[k]))
		if math.Abs(u[k]-float64(R[k])) > 1e3*c.tol {
			return LVec{}, false
		}
	}

	return R, true
}

// String summarizes the crystal.
func (c *Crystal) String() string {
	return fmt.Sprintf("crystal(dim=%d, chem=%v, sites=%d, ops=%d, volume=%.6g)",
		c.dim, c.chemistry, c.totalSites(), len(c.ops), c.volume)
}

func (c *Crystal) totalSites() int {
	n := 0
	for _, s := range c.basis {
		n += len(s)
	}

	return n
}
