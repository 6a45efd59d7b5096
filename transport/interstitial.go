// SPDX-License-Identifier: MIT

package transport

import (
	"math"
	"time"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/matrix"
)

// Tensor4 is a Cartesian rank-4 tensor.
type Tensor4 [3][3][3][3]float64

// Interstitial computes the diffusivity of a single defect hopping on the
// sites of one chemistry, with the site bias removed through the vector
// basis of the sites.
type Interstitial struct {
	net    *jumpnet.Network
	crys   *crystal.Crystal
	chem   int
	n      int
	sites  [][]int
	invmap []int
	jumps  [][]jumpnet.IndexedJump

	// vb[a][i] is basis function a on site i; vv[a][b] = Σ_i vb[a][i]⊗vb[b][i].
	vb [][]crystal.Vec
	vv [][]crystal.Mat3

	siteStab [][]int // per Wyckoff set, of its first site
	siteOp   [][]int // per Wyckoff set and member, from the first site
	jumpStab [][]int // per class, of its first jump up to reversal
	jumpOp   [][]int // per class and jump, from the first jump

	opts Options
}

// NewInterstitial prepares the diffuser for a bare site network
// (jumpnet.Sites).
//
// Errors: ErrNilNetwork, ErrUnsupportedDefect.
func NewInterstitial(net *jumpnet.Network, opts ...Option) (*Interstitial, error) {
	if net == nil {
		return nil, transportErrorf(opInterstit, ErrNilNetwork)
	}
	c := net.Container()
	if !c.IsVacancy() {
		return nil, transportErrorf(opInterstit, ErrUnsupportedDefect)
	}
	start := time.Now()
	d := &Interstitial{net: net, crys: c.Crystal(), chem: c.Chem(), jumps: net.Indexed(), opts: newOptions(opts)}
	d.n = d.crys.NumSites(d.chem)
	var err error
	if d.sites, err = d.crys.SiteList(d.chem); err != nil {
		return nil, transportErrorf(opInterstit, err)
	}
	if d.invmap, err = d.crys.InvMap(d.chem); err != nil {
		return nil, transportErrorf(opInterstit, err)
	}
	d.vectorBasis()
	d.siteOps()
	d.jumpOps()
	d.opts.Logger.Debug("interstitial diffuser", "sites", d.n, "wyckoff", len(d.sites),
		"classes", len(d.jumps), "vectors", len(d.vb), "elapsed", time.Since(start))

	return d, nil
}

// vectorBasis carries each invariant vector of the first site of every
// Wyckoff set onto the whole set, normalized over the set.
func (d *Interstitial) vectorBasis() {
	ops := d.crys.Ops()
	for _, set := range d.sites {
		norm := 1 / math.Sqrt(float64(len(set)))
		for _, v := range d.crys.VectorBasis(d.chem, set[0]) {
			f := make([]crystal.Vec, d.n)
			for _, g := range ops {
				f[g.IndexMap[d.chem][set[0]]] = d.crys.GDirec(g, v.Scale(norm))
			}
			d.vb = append(d.vb, f)
		}
	}
	nv := len(d.vb)
	d.vv = make([][]crystal.Mat3, nv)
	for a := range d.vv {
		d.vv[a] = make([]crystal.Mat3, nv)
		for b := range d.vv[a] {
			for i := 0; i < d.n; i++ {
				d.vv[a][b] = d.vv[a][b].AddM(d.vb[a][i].Outer(d.vb[b][i]))
			}
		}
	}
}

func (d *Interstitial) siteOps() {
	for _, set := range d.sites {
		d.siteStab = append(d.siteStab, d.crys.Stabilizer(d.chem, set[0]))
		row := make([]int, len(set))
		for m, i := range set {
			for k, g := range d.crys.Ops() {
				if g.IndexMap[d.chem][set[0]] == i {
					row[m] = k

					break
				}
			}
		}
		d.siteOp = append(d.siteOp, row)
	}
}

// maps reports whether g takes jump (i0, j0, dx0) onto (i, j, dx) or onto
// its reverse.
func (d *Interstitial) maps(g crystal.GroupOp, j0, j jumpnet.IndexedJump) bool {
	tol := d.crys.Tolerance()
	im := g.IndexMap[d.chem]
	r := d.crys.GDirec(g, j0.Dx)

	return (im[j0.I] == j.I && im[j0.J] == j.J && r.Close(j.Dx, tol)) ||
		(im[j0.I] == j.J && im[j0.J] == j.I && r.Close(j.Dx.Neg(), tol))
}

func (d *Interstitial) jumpOps() {
	for _, class := range d.jumps {
		var stab []int
		for k, g := range d.crys.Ops() {
			if d.maps(g, class[0], class[0]) {
				stab = append(stab, k)
			}
		}
		d.jumpStab = append(d.jumpStab, stab)
		row := make([]int, len(class))
		for m, j := range class {
			for k, g := range d.crys.Ops() {
				if d.maps(g, class[0], j) {
					row[m] = k

					break
				}
			}
		}
		d.jumpOp = append(d.jumpOp, row)
	}
}

// NumWyckoff returns the number of Wyckoff sets, the length of site inputs.
func (d *Interstitial) NumWyckoff() int { return len(d.sites) }

// NumClasses returns the number of jump classes, the length of transition
// state inputs.
func (d *Interstitial) NumClasses() int { return len(d.jumps) }

// NumVectors returns the size of the site vector basis.
func (d *Interstitial) NumVectors() int { return len(d.vb) }

// Network returns the site network.
func (d *Interstitial) Network() *jumpnet.Network { return d.net }

func (d *Interstitial) check(pre, betaene, preT, betaeneT []float64) error {
	if len(pre) != len(d.sites) || len(betaene) != len(d.sites) ||
		len(preT) != len(d.jumps) || len(betaeneT) != len(d.jumps) {
		return ErrLength
	}
	for _, xs := range [][]float64{pre, preT} {
		for _, x := range xs {
			if !(x > 0) || math.IsInf(x, 0) {
				return ErrNonFinite
			}
		}
	}
	for _, xs := range [][]float64{betaene, betaeneT} {
		for _, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ErrNonFinite
			}
		}
	}

	return nil
}

// SiteProb returns the equilibrium probability of every site, summing to 1.
//
// Errors: ErrLength.
func (d *Interstitial) SiteProb(pre, betaene []float64) ([]float64, error) {
	if len(pre) != len(d.sites) || len(betaene) != len(d.sites) {
		return nil, transportErrorf(opDiffusivity, ErrLength)
	}

	return d.siteProb(pre, betaene), nil
}

func (d *Interstitial) siteProb(pre, betaene []float64) []float64 {
	bmin := minOf(betaene)
	rho := make([]float64, d.n)
	var sum float64
	for i, w := range d.invmap {
		rho[i] = pre[w] * math.Exp(bmin-betaene[w])
		sum += rho[i]
	}
	for i := range rho {
		rho[i] /= sum
	}

	return rho
}

// RateList returns the rate of every jump, parallel to the network:
// preT·exp(βE_i - βE_T)/pre_i.
//
// Errors: ErrLength, ErrNonFinite.
func (d *Interstitial) RateList(pre, betaene, preT, betaeneT []float64) ([][]float64, error) {
	if err := d.check(pre, betaene, preT, betaeneT); err != nil {
		return nil, transportErrorf(opDiffusivity, err)
	}
	rates, _ := d.rateLists(pre, betaene, preT, betaeneT)

	return rates, nil
}

// SymmRateList returns the symmetrized rate of every jump:
// preT·exp((βE_i + βE_j)/2 - βE_T)/√(pre_i·pre_j).
//
// Errors: ErrLength, ErrNonFinite.
func (d *Interstitial) SymmRateList(pre, betaene, preT, betaeneT []float64) ([][]float64, error) {
	if err := d.check(pre, betaene, preT, betaeneT); err != nil {
		return nil, transportErrorf(opDiffusivity, err)
	}
	_, symm := d.rateLists(pre, betaene, preT, betaeneT)

	return symm, nil
}

func (d *Interstitial) rateLists(pre, betaene, preT, betaeneT []float64) (rates, symm [][]float64) {
	rates = make([][]float64, len(d.jumps))
	symm = make([][]float64, len(d.jumps))
	for k, class := range d.jumps {
		rates[k] = make([]float64, len(class))
		symm[k] = make([]float64, len(class))
		for m, j := range class {
			wi, wj := d.invmap[j.I], d.invmap[j.J]
			rates[k][m] = preT[k] * math.Exp(betaene[wi]-betaeneT[k]) / pre[wi]
			symm[k][m] = preT[k] * math.Exp(0.5*(betaene[wi]+betaene[wj])-betaeneT[k]) / math.Sqrt(pre[wi]*pre[wj])
		}
	}

	return rates, symm
}

// Diffusivity returns the diffusivity tensor for site and transition state
// prefactors and energies (divided by kT).
//
// Errors: ErrLength, ErrNonFinite, ErrIllConditioned.
func (d *Interstitial) Diffusivity(pre, betaene, preT, betaeneT []float64) (crystal.Mat3, error) {
	d0, _, err := d.diffuse(pre, betaene, preT, betaeneT, false)

	return d0, err
}

// DiffusivityBarrier returns the diffusivity and its negative derivative
// with respect to β, the diffusivity times the activation barrier tensor.
//
// Errors: as Diffusivity.
func (d *Interstitial) DiffusivityBarrier(pre, betaene, preT, betaeneT []float64) (crystal.Mat3, crystal.Mat3, error) {
	return d.diffuse(pre, betaene, preT, betaeneT, true)
}

func (d *Interstitial) diffuse(pre, betaene, preT, betaeneT []float64, deriv bool) (crystal.Mat3, crystal.Mat3, error) {
	if err := d.check(pre, betaene, preT, betaeneT); err != nil {
		return crystal.Mat3{}, crystal.Mat3{}, transportErrorf(opDiffusivity, err)
	}
	rho := d.siteProb(pre, betaene)
	rates, symm := d.rateLists(pre, betaene, preT, betaeneT)
	siteE := make([]float64, d.n)
	var eave float64
	for i, w := range d.invmap {
		siteE[i] = betaene[w]
		eave += rho[i] * siteE[i]
	}
	omega, domega := zeros(d.n, d.n), zeros(d.n, d.n)
	bias := make([]crystal.Vec, d.n)
	dbias := make([]crystal.Vec, d.n)
	var d0, db crystal.Mat3
	for k, class := range d.jumps {
		bET := betaeneT[k]
		for m, j := range class {
			rate, sr := rates[k][m], symm[k][m]
			i, jj := j.I, j.J
			omega[i][jj] += sr
			omega[i][i] -= rate
			domega[i][jj] += sr * (bET - 0.5*(siteE[i]+siteE[jj]))
			domega[i][i] -= rate * (bET - siteE[i])
			b := j.Dx.Scale(math.Sqrt(rho[i]) * rate)
			bias[i] = bias[i].Add(b)
			dbias[i] = dbias[i].Add(b.Scale(bET - 0.5*(siteE[i]+eave)))
			dd := j.Dx.Outer(j.Dx).ScaleM(0.5 * rho[i] * rate)
			d0 = d0.AddM(dd)
			db = db.AddM(dd.ScaleM(bET - eave))
		}
	}
	nv := len(d.vb)
	if nv == 0 {
		return d0, db, nil
	}
	omegaV := d.project(omega)
	domegaV := d.project(domega)
	biasV, dbiasV := d.projectVec(bias), d.projectVec(dbias)
	gamma, err := pinvSolve(omegaV, biasV)
	if err != nil {
		return crystal.Mat3{}, crystal.Mat3{}, transportErrorf(opDiffusivity, err)
	}
	dgamma := matVec(domegaV, gamma)
	for a := 0; a < nv; a++ {
		for b := 0; b < nv; b++ {
			vv := d.vv[a][b]
			d0 = d0.AddM(vv.ScaleM(gamma[a] * biasV[b]))
			if deriv {
				db = db.AddM(vv.ScaleM(gamma[a]*dbiasV[b] + dbiasV[a]*gamma[b] - dgamma[a]*gamma[b]))
			}
		}
	}
	if !deriv {
		db = crystal.Mat3{}
	}

	return d0, db, nil
}

// project returns Σ_ij v_a(i)·v_b(j)·m_ij.
func (d *Interstitial) project(m [][]float64) [][]float64 {
	nv := len(d.vb)
	out := zeros(nv, nv)
	for a := 0; a < nv; a++ {
		for b := 0; b < nv; b++ {
			var s float64
			for i := 0; i < d.n; i++ {
				for j := 0; j < d.n; j++ {
					if m[i][j] != 0 {
						s += m[i][j] * d.vb[a][i].Dot(d.vb[b][j])
					}
				}
			}
			out[a][b] = s
		}
	}

	return out
}

func (d *Interstitial) projectVec(v []crystal.Vec) []float64 {
	out := make([]float64, len(d.vb))
	for a, f := range d.vb {
		for i := range v {
			out[a] += f[i].Dot(v[i])
		}
	}

	return out
}

// siteDipoles returns the dipole of every site: the Wyckoff dipole
// symmetrized over the site symmetry and rotated onto each member.
func (d *Interstitial) siteDipoles(dipole []crystal.Mat3) []crystal.Mat3 {
	out := make([]crystal.Mat3, d.n)
	for w, set := range d.sites {
		p := d.crys.SymmetrizeTensor(d.siteStab[w], dipole[w])
		for m, i := range set {
			out[i] = d.crys.GTensor(d.crys.Op(d.siteOp[w][m]), p)
		}
	}

	return out
}

func (d *Interstitial) jumpDipoles(dipoleT []crystal.Mat3) [][]crystal.Mat3 {
	out := make([][]crystal.Mat3, len(d.jumps))
	for k, class := range d.jumps {
		p := d.crys.SymmetrizeTensor(d.jumpStab[k], dipoleT[k])
		out[k] = make([]crystal.Mat3, len(class))
		for m := range class {
			out[k][m] = d.crys.GTensor(d.crys.Op(d.jumpOp[k][m]), p)
		}
	}

	return out
}

// ElastoDiffusion returns the diffusivity and its first derivative with
// respect to strain, from site and transition state elastic dipoles
// divided by kT. Dipoles are symmetrized over the site and jump symmetry
// before use.
//
// Errors: ErrLength, ErrNonFinite, ErrIllConditioned.
func (d *Interstitial) ElastoDiffusion(pre, betaene []float64, dipole []crystal.Mat3,
	preT, betaeneT []float64, dipoleT []crystal.Mat3) (crystal.Mat3, Tensor4, error) {
	if err := d.check(pre, betaene, preT, betaeneT); err != nil {
		return crystal.Mat3{}, Tensor4{}, transportErrorf(opElasto, err)
	}
	if len(dipole) != len(d.sites) || len(dipoleT) != len(d.jumps) {
		return crystal.Mat3{}, Tensor4{}, transportErrorf(opElasto, ErrLength)
	}
	rho := d.siteProb(pre, betaene)
	rates, symm := d.rateLists(pre, betaene, preT, betaeneT)
	sp := d.siteDipoles(dipole)
	jp := d.jumpDipoles(dipoleT)
	var pave crystal.Mat3
	for i := range sp {
		pave = pave.AddM(sp[i].ScaleM(rho[i]))
	}

	omega := zeros(d.n, d.n)
	domega := make([][]crystal.Mat3, d.n)
	for i := range domega {
		domega[i] = make([]crystal.Mat3, d.n)
	}
	bias := make([]crystal.Vec, d.n)
	biasP := make([][3]crystal.Mat3, d.n) // [site][x] → tensor
	var (
		d0 crystal.Mat3
		dp Tensor4
	)
	for k, class := range d.jumps {
		for m, j := range class {
			rate, sr := rates[k][m], symm[k][m]
			i, jj := j.I, j.J
			p := jp[k][m]
			omega[i][jj] += sr
			omega[i][i] -= rate
			domega[i][jj] = domega[i][jj].AddM(p.AddM(sp[i].AddM(sp[jj]).ScaleM(-0.5)).ScaleM(-sr))
			domega[i][i] = domega[i][i].AddM(p.AddM(sp[i].ScaleM(-1)).ScaleM(rate))
			b := j.Dx.Scale(math.Sqrt(rho[i]) * rate)
			bias[i] = bias[i].Add(b)
			dq := p.AddM(sp[i].AddM(pave).ScaleM(-0.5))
			for x := 0; x < 3; x++ {
				biasP[i][x] = biasP[i][x].AddM(dq.ScaleM(b[x]))
			}
			dd := j.Dx.Outer(j.Dx).ScaleM(0.5 * rho[i] * rate)
			d0 = d0.AddM(dd)
			addOuter(&dp, dd, p.AddM(pave.ScaleM(-1)))
		}
	}

	if nv := len(d.vb); nv > 0 {
		omegaV := d.project(omega)
		biasV := d.projectVec(bias)
		gamma, err := pinvSolve(omegaV, biasV)
		if err != nil {
			return crystal.Mat3{}, Tensor4{}, transportErrorf(opElasto, err)
		}
		// dg[a] = Σ_b domega_v[a][b]·γ_b
		dg := make([]crystal.Mat3, nv)
		for a := 0; a < nv; a++ {
			for b := 0; b < nv; b++ {
				var t crystal.Mat3
				for i := 0; i < d.n; i++ {
					for j := 0; j < d.n; j++ {
						if s := d.vb[a][i].Dot(d.vb[b][j]); s != 0 {
							t = t.AddM(domega[i][j].ScaleM(s))
						}
					}
				}
				dg[a] = dg[a].AddM(t.ScaleM(gamma[b]))
			}
		}
		gammaSite := make([]crystal.Vec, d.n)
		for a, f := range d.vb {
			for i := range f {
				gammaSite[i] = gammaSite[i].Add(f[i].Scale(gamma[a]))
			}
		}
		for a := 0; a < nv; a++ {
			var vg crystal.Mat3
			for b := 0; b < nv; b++ {
				d0 = d0.AddM(d.vv[a][b].ScaleM(gamma[a] * biasV[b]))
				vg = vg.AddM(d.vv[a][b].ScaleM(gamma[b]))
			}
			addOuter(&dp, vg, dg[a])
		}
		for i := 0; i < d.n; i++ {
			g := gammaSite[i]
			for x := 0; x < 3; x++ {
				for y := 0; y < 3; y++ {
					for c := 0; c < 3; c++ {
						for e := 0; e < 3; e++ {
							dp[x][y][c][e] += g[x]*biasP[i][y][c][e] + biasP[i][x][c][e]*g[y]
						}
					}
				}
			}
		}
	}

	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for c := 0; c < 3; c++ {
				for e := 0; e < 3; e++ {
					if a == c {
						dp[a][b][c][e] += 0.5 * d0[b][e]
					}
					if a == e {
						dp[a][b][c][e] += 0.5 * d0[b][c]
					}
					if b == c {
						dp[a][b][c][e] += 0.5 * d0[a][e]
					}
					if b == e {
						dp[a][b][c][e] += 0.5 * d0[a][c]
					}
				}
			}
		}
	}

	return d0, dp, nil
}

// addOuter adds a ⊗ b to t.
func addOuter(t *Tensor4, a, b crystal.Mat3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a[i][j] == 0 {
				continue
			}
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					t[i][j][k][l] += a[i][j] * b[k][l]
				}
			}
		}
	}
}

// pinvSolve returns M⁺·b for the symmetric part of M through its eigendecomposition,
// dropping eigenvalues below 1e-10 of the largest.
func pinvSolve(m [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	sym := zeros(n, n)
	for a := 0; a < n; a++ {
		for c := 0; c < n; c++ {
			sym[a][c] = 0.5 * (m[a][c] + m[c][a])
		}
	}
	mm, err := matrix.NewFromRows(sym)
	if err != nil {
		return nil, err
	}
	vals, vecs, err := matrix.EigenSym(mm)
	if err != nil {
		return nil, err
	}
	var lmax float64
	for _, l := range vals {
		lmax = math.Max(lmax, math.Abs(l))
	}
	x := make([]float64, n)
	if lmax == 0 {
		return x, nil
	}
	u := make([]float64, n)
	for k, l := range vals {
		if math.Abs(l) <= 1e-10*lmax {
			continue
		}
		var c float64
		for a := 0; a < n; a++ {
			u[a], _ = vecs.At(a, k)
			c += u[a] * b[a]
		}
		c /= l
		for a := 0; a < n; a++ {
			x[a] += c * u[a]
		}
	}

	return x, nil
}
