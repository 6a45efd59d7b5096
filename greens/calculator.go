// SPDX-License-Identifier: MIT

package greens

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/matrix"
)

// Point is one Green's function argument: from site I to site J, with the
// Cartesian displacement Dx between them.
type Point struct {
	I, J int
	Dx   crystal.Vec
}

type rateJump struct {
	i, j int
	dx   crystal.Vec
	nu   float64
}

// Calculator evaluates the vacancy Green's function for one network.
// SetRates must be called before any evaluation; a Calculator is not safe
// for concurrent SetRates.
type Calculator struct {
	crys    *crystal.Crystal
	chem    int
	dim     int
	nsite   int
	wyckoff []int
	nwyck   int
	classes [][]jumpnet.IndexedJump
	mesh    []crystal.Vec
	opts    Options

	rated bool
	jumps []rateJump
	esc   []float64
	phi   []float64
	d     crystal.Mat3
	dinv  crystal.Mat3
	detD  float64
	kappa float64
}

// New prepares the calculator for a vacancy network: site classes and the
// folded Brillouin-zone mesh. A network that does not percolate is rejected
// here, before any rates are set.
//
// Errors: ErrNilNetwork, ErrNotVacancy, ErrDisconnected.
func New(net *jumpnet.Network, opts ...Option) (*Calculator, error) {
	if net == nil {
		return nil, greensErrorf(opNew, ErrNilNetwork)
	}
	cont := net.Container()
	if !cont.IsVacancy() {
		return nil, greensErrorf(opNew, ErrNotVacancy)
	}
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	crys := cont.Crystal()
	inv, err := crys.InvMap(cont.Chem())
	if err != nil {
		return nil, greensErrorf(opNew, err)
	}
	c := &Calculator{
		crys:    crys,
		chem:    cont.Chem(),
		dim:     crys.Dim(),
		nsite:   crys.NumSites(cont.Chem()),
		wyckoff: inv,
		classes: net.Indexed(),
		opts:    o,
	}
	for _, w := range inv {
		c.nwyck = max(c.nwyck, w+1)
	}
	if err = percolates(c.nsite, c.dim, c.classes); err != nil {
		return nil, greensErrorf(opNew, err)
	}
	if c.opts.Mesh == 0 {
		c.opts.Mesh = DefaultMesh3D
		if c.dim == 2 {
			c.opts.Mesh = DefaultMesh2D
		}
	}
	c.mesh = foldedMesh(crys, c.opts.Mesh)

	return c, nil
}

// foldedMesh returns the half-shifted mesh q = Σ (n_k+½)/N b_k, each point
// moved to its shortest image modulo the reciprocal lattice.
func foldedMesh(crys *crystal.Crystal, n int) []crystal.Vec {
	b := crys.Reciprocal()
	dim := len(b)
	var images []crystal.Vec
	var walk func(k int, g crystal.Vec)
	walk = func(k int, g crystal.Vec) {
		if k == dim {
			images = append(images, g)

			return
		}
		for m := -2; m <= 2; m++ {
			walk(k+1, g.Add(b[k].Scale(float64(m))))
		}
	}
	walk(0, crystal.Vec{})

	total := 1
	for k := 0; k < dim; k++ {
		total *= n
	}
	out := make([]crystal.Vec, total)
	for idx := range out {
		var q crystal.Vec
		x := idx
		for k := dim - 1; k >= 0; k-- {
			q = q.Add(b[k].Scale((float64(x%n) + 0.5) / float64(n)))
			x /= n
		}
		best, bd := q, q.Norm2()
		for _, g := range images {
			if d := q.Sub(g); d.Norm2() < bd {
				best, bd = d, d.Norm2()
			}
		}
		out[idx] = best
	}

	return out
}

// SetRates sets site free energies (per Wyckoff set) and transition-state
// free energies (per jump class): p_i ∝ pre·e^{-betaene} and escape rate
// ω_ij = (preT/pre_i)·e^{-(betaeneT - betaene_i)}. It then derives the
// vacancy diffusivity and κ.
//
// Implementation:
//   - Stage 1: probabilities φ_i² (normalized to 1), rates, escapes.
//   - Stage 2: D = D0 + Σ_kl β_k S0⁺_kl β_l, with D0 = Σ p_i ω_ij ½dx⊗dx,
//     β_k = Σ ν dx φ_j the site bias and S0⁺ the pseudo-inverse of S(0).
//   - Stage 3: κ from the smallest eigenvalue of D.
//
// Errors: ErrLength, ErrNonFinite, ErrDisconnected.
func (c *Calculator) SetRates(pre, betaene, preT, betaeneT []float64) error {
	if len(pre) != c.nwyck || len(betaene) != c.nwyck ||
		len(preT) != len(c.classes) || len(betaeneT) != len(c.classes) {
		return greensErrorf(opSetRates, ErrLength)
	}
	for _, xs := range [][]float64{pre, betaene, preT, betaeneT} {
		for _, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return greensErrorf(opSetRates, ErrNonFinite)
			}
		}
	}
	c.rated = false
	start := time.Now()

	bmin := math.Inf(1)
	for _, b := range betaene {
		bmin = math.Min(bmin, b)
	}
	p := make([]float64, c.nsite)
	var sum float64
	for i := range p {
		w := c.wyckoff[i]
		p[i] = pre[w] * math.Exp(bmin-betaene[w])
		sum += p[i]
	}
	c.phi = make([]float64, c.nsite)
	for i := range p {
		p[i] /= sum
		c.phi[i] = math.Sqrt(p[i])
	}

	c.jumps = c.jumps[:0]
	c.esc = make([]float64, c.nsite)
	var d0 crystal.Mat3
	for k, class := range c.classes {
		for _, j := range class {
			wi, wj := c.wyckoff[j.I], c.wyckoff[j.J]
			om := preT[k] / pre[wi] * math.Exp(betaene[wi]-betaeneT[k])
			nu := preT[k] / math.Sqrt(pre[wi]*pre[wj]) * math.Exp(0.5*(betaene[wi]+betaene[wj])-betaeneT[k])
			c.jumps = append(c.jumps, rateJump{i: j.I, j: j.J, dx: j.Dx, nu: nu})
			c.esc[j.I] += om
			d0 = d0.AddM(j.Dx.Outer(j.Dx).ScaleM(0.5 * p[j.I] * om))
		}
	}

	d, err := c.biasCorrection(d0)
	if err != nil {
		return greensErrorf(opSetRates, err)
	}
	c.d = d
	if err = c.factorD(); err != nil {
		return greensErrorf(opSetRates, err)
	}
	c.rated = true
	c.opts.Logger.Debug("Green's function rates set",
		"sites", c.nsite, "jumps", len(c.jumps), "kappa", c.kappa, "elapsed", time.Since(start))

	return nil
}

// biasCorrection adds the second-order site-bias term to d0. A network
// whose S(0) has more than one null vector does not connect every site.
func (c *Calculator) biasCorrection(d0 crystal.Mat3) (crystal.Mat3, error) {
	n := c.nsite
	s0, err := matrix.NewDense(n, n)
	if err != nil {
		return d0, err
	}
	beta := make([]crystal.Vec, n)
	for _, j := range c.jumps {
		v, _ := s0.At(j.i, j.j)
		if err = s0.Set(j.i, j.j, v+j.nu); err != nil {
			return d0, err
		}
		beta[j.i] = beta[j.i].Add(j.dx.Scale(j.nu * c.phi[j.j]))
	}
	for i := 0; i < n; i++ {
		v, _ := s0.At(i, i)
		if err = s0.Set(i, i, v-c.esc[i]); err != nil {
			return d0, err
		}
	}
	scale := 0.0
	for _, e := range c.esc {
		scale = math.Max(scale, e)
	}
	vals, vecs, err := matrix.EigenSym(s0, matrix.WithEpsilon(1e-9*math.Max(1, scale)))
	if err != nil {
		return d0, err
	}
	for _, v := range vals {
		scale = math.Max(scale, math.Abs(v))
	}
	zeros := 0
	d := d0
	for k, lam := range vals {
		if math.Abs(lam) <= 1e-10*scale {
			zeros++

			continue
		}
		var u crystal.Vec
		for i := 0; i < n; i++ {
			e, _ := vecs.At(i, k)
			u = u.Add(beta[i].Scale(e))
		}
		d = d.AddM(u.Outer(u).ScaleM(1 / lam))
	}
	if zeros != 1 || scale == 0 {
		return d0, fmt.Errorf("%w: %d disconnected site sets", ErrDisconnected, zeros)
	}

	return d, nil
}

// factorD fills dinv, detD and kappa from the dim×dim block of d.
func (c *Calculator) factorD() error {
	n := c.dim
	sym := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			sym.SetSym(a, b, 0.5*(c.d[a][b]+c.d[b][a]))
		}
	}
	var es mat.EigenSym
	if !es.Factorize(sym, false) {
		return fmt.Errorf("%w: diffusivity eigendecomposition failed", ErrDisconnected)
	}
	vals := es.Values(nil)
	dmin := vals[0]
	if dmin <= 1e-12*vals[n-1] || dmin <= 0 {
		return fmt.Errorf("%w: diffusivity is not positive definite", ErrDisconnected)
	}
	var inv mat.Dense
	if err := inv.Inverse(sym); err != nil {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	c.dinv = crystal.Mat3{}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			c.dinv[a][b] = inv.At(a, b)
		}
	}
	c.detD = mat.Det(sym)

	qb := math.Inf(1)
	b := c.crys.Reciprocal()
	for code := 0; code < pow3(n); code++ {
		var g crystal.Vec
		x := code
		for k := 0; k < n; k++ {
			g = g.Add(b[k].Scale(float64(x%3 - 1)))
			x /= 3
		}
		if l := g.Norm(); l > 1e-12 {
			qb = math.Min(qb, l)
		}
	}
	c.kappa = c.opts.KappaFactor * 0.5 * qb * math.Sqrt(dmin)

	return nil
}

func pow3(n int) int {
	out := 1
	for k := 0; k < n; k++ {
		out *= 3
	}

	return out
}

// Diffusivity returns the bare vacancy diffusivity tensor.
//
// Errors: ErrNoRates.
func (c *Calculator) Diffusivity() (crystal.Mat3, error) {
	if !c.rated {
		return crystal.Mat3{}, greensErrorf(opEval, ErrNoRates)
	}

	return c.d, nil
}

// Kappa returns the pole width in use.
func (c *Calculator) Kappa() float64 { return c.kappa }

// MeshSize returns the number of mesh points.
func (c *Calculator) MeshSize() int { return len(c.mesh) }

// NumSites returns the number of sites of the chemistry.
func (c *Calculator) NumSites() int { return c.nsite }
