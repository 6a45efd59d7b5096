// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/matrix"
)

// Regime names the form used to evaluate the correlated terms.
type Regime int

const (
	// Auto picks a form from the exchange-to-bulk rate ratio.
	Auto Regime = iota
	// General is the direct form, valid for comparable rates.
	General
	// LargeExchange is the cancellation-free form for exchange rates far
	// above the bulk vacancy rates.
	LargeExchange
	// SmallExchange is the scaled form for exchange rates far below them.
	SmallExchange
)

func (r Regime) String() string {
	switch r {
	case Auto:
		return "auto"
	case General:
		return "general"
	case LargeExchange:
		return "large_exchange"
	case SmallExchange:
		return "small_exchange"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

// Coefficients are the transport coefficients of one rate input.
type Coefficients struct {
	Lvv, Lss, Lsv, Lvv1 crystal.Mat3
	// L0ss is the uncorrelated part of Lss.
	L0ss crystal.Mat3
	// Prob is the equilibrium weight of a state of each kinetic star.
	Prob []float64
	// Ratio is the fastest exchange escape rate over the fastest bare
	// vacancy rate; 1 when there is no exchange.
	Ratio  float64
	Regime Regime
}

// identityTol bounds the relative residuals of the fast-exchange identities.
const identityTol = 1e-7

// Lij returns the transport coefficients for scaled free energies bf,
// choosing the regime from the rate ratio.
func (vm *VacancyMediated) Lij(ctx context.Context, bf BetaFree) (Coefficients, error) {
	return vm.LijRegime(ctx, bf, Auto)
}

// LijRegime is Lij with the evaluation form forced; Auto behaves as Lij.
// A forced LargeExchange falls back to General when the exchange network
// does not fix the solute bias (logged at Warn).
//
// Implementation:
//   - Stage 1: Green's function and bare diffusivity for (bf.V, bf.T0),
//     cached.
//   - Stage 2: probabilities, symmetric and escape rates, the fastest
//     exchange rate ω̄; all in log space.
//   - Stage 3: rate change δω = δω' + ω̄·M, biases bS = ω̄·β and bV over the
//     vector-star basis.
//   - Stage 4: the correlated terms in the selected form.
//
// Errors: ErrLength, ErrNonFinite, ErrRateRatioOutOfRange,
// ErrIllConditioned (wrapping matrix.ErrSingular), and Green's function
// errors. The cache is unchanged on error.
func (vm *VacancyMediated) LijRegime(ctx context.Context, bf BetaFree, regime Regime) (Coefficients, error) {
	start := time.Now()
	res, err := vm.lij(ctx, bf, regime)
	label := regime.String()
	if err == nil {
		label = res.Regime.String()
	}
	vm.opts.Recorder.Solve(label, err)
	if err != nil {
		return Coefficients{}, transportErrorf(opLij, err)
	}
	vm.opts.Recorder.Phase("lij", start)
	vm.opts.Logger.Debug("transport coefficients", "phase", "lij", "regime", res.Regime.String(),
		"ratio", res.Ratio, "elapsed", time.Since(start))

	return res, nil
}

func (vm *VacancyMediated) checkInput(bf BetaFree) error {
	t := vm.topo
	if len(bf.V) != t.NumWyckoff || len(bf.S) != t.NumWyckoff || len(bf.SV) != t.NumThermo ||
		len(bf.T0) != t.NumOmega0 || len(bf.T1) != t.Omega1.Len() || len(bf.T2) != t.Omega2.Len() {
		return ErrLength
	}
	for _, xs := range [][]float64{bf.V, bf.S, bf.SV, bf.T0, bf.T1, bf.T2} {
		for _, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return ErrNonFinite
			}
		}
	}

	return nil
}

func (vm *VacancyMediated) lij(ctx context.Context, bf BetaFree, regime Regime) (Coefficients, error) {
	if err := vm.checkInput(bf); err != nil {
		return Coefficients{}, err
	}
	gf, key, fresh, err := vm.greenFunction(ctx, bf.V, bf.T0)
	if err != nil {
		return Coefficients{}, err
	}
	r, err := vm.rates(bf)
	if err != nil {
		return Coefficients{}, err
	}
	sys := vm.assemble(gf.GF, r)

	if regime == Auto {
		regime = General
		if th := vm.opts.RatioThreshold; th > 1 && vm.topo.Omega2.Len() > 0 {
			switch {
			case r.ratio > th:
				regime = LargeExchange
			case r.ratio < 1/th:
				regime = SmallExchange
			}
		}
	}
	out := Coefficients{Lvv: gf.L0vv, Prob: r.prob, Ratio: r.ratio, L0ss: sys.l0.ScaleM(r.wbar)}
	switch regime {
	case LargeExchange:
		err = sys.large(&out, r.wbar)
		if errors.Is(err, errIdentity) {
			vm.opts.Logger.Warn("fast-exchange form not applicable, using general form",
				"ratio", r.ratio, "error", err)
			err = sys.general(&out, r.wbar)
			regime = General
		}
	case SmallExchange:
		err = sys.small(&out, r.wbar)
	default:
		regime = General
		err = sys.general(&out, r.wbar)
	}
	if err != nil {
		return Coefficients{}, err
	}
	out.Regime = regime
	if fresh {
		vm.commit(key, gf)
	}

	return out, nil
}

// rateSet holds the rates of one input. Exchange rates (om2, esc2) are
// divided by wbar; everything else is absolute.
type rateSet struct {
	pV   []float64 // per Wyckoff set
	prob []float64 // per kinetic star
	sqp  []float64
	esc0 [][]float64 // [w][t]
	om0  []float64
	om1  []float64
	esc1 [][]float64 // [basis][class]
	ref1 [][]float64 // [basis][t]
	om2  []float64
	esc2 [][]float64
	ref2 [][]float64
	// star2 [class][kinetic star] is the scaled exchange escape rate.
	star2   [][]float64
	wbar    float64
	logWbar float64
	ratio   float64
}

func normal(x float64) bool { return x >= 0x1p-1022 && !math.IsInf(x, 0) }

func rateRange(what string, x float64) error {
	return fmt.Errorf("%w: %s rate %g", ErrRateRatioOutOfRange, what, x)
}

// sitePerWyckoff returns exp(min - bf) per Wyckoff set, normalized so that
// the sum over all sites is the number of sites.
func sitePerWyckoff(bf []float64, invmap []int) []float64 {
	bmin := minOf(bf)
	p := make([]float64, len(bf))
	for w := range bf {
		p[w] = math.Exp(bmin - bf[w])
	}
	var sum float64
	for _, w := range invmap {
		sum += p[w]
	}
	for w := range p {
		p[w] *= float64(len(invmap)) / sum
	}

	return p
}

func (vm *VacancyMediated) rates(bf BetaFree) (*rateSet, error) {
	t := vm.topo
	nk, nv := t.NumKinetic(), t.NumBasis()
	r := &rateSet{pV: sitePerWyckoff(bf.V, t.Invmap)}
	pS := sitePerWyckoff(bf.S, t.Invmap)

	// free energy of each kinetic star relative to the bulk reference
	bFkin := make([]float64, nk)
	r.prob = make([]float64, nk)
	r.sqp = make([]float64, nk)
	for k, sv := range t.KineticSVWyckoff {
		bFkin[k] = bf.S[sv[0]] + bf.V[sv[1]]
		r.prob[k] = pS[sv[0]] * r.pV[sv[1]]
	}
	for th, k := range t.Thermo2Kin {
		bFkin[k] += bf.SV[th]
		r.prob[k] *= math.Exp(-bf.SV[th])
	}
	for k, p := range r.prob {
		if !normal(p) {
			return nil, fmt.Errorf("%w: probability %g of kinetic star %d", ErrNonFinite, p, k)
		}
		r.sqp[k] = math.Sqrt(p)
	}

	r.esc0 = make([][]float64, t.NumWyckoff)
	for w := range r.esc0 {
		r.esc0[w] = make([]float64, t.NumOmega0)
	}
	r.om0 = make([]float64, t.NumOmega0)
	logMax0 := math.Inf(-1)
	for j, vv := range t.Omega0VacancyWyckoff {
		l1, l2 := -bf.T0[j]+bf.V[vv[0]], -bf.T0[j]+bf.V[vv[1]]
		r.esc0[vv[0]][j], r.esc0[vv[1]][j] = math.Exp(l1), math.Exp(l2)
		r.om0[j] = math.Exp(0.5 * (l1 + l2))
		for _, x := range []float64{r.esc0[vv[0]][j], r.esc0[vv[1]][j], r.om0[j]} {
			if !normal(x) {
				return nil, rateRange("bare", x)
			}
		}
		logMax0 = math.Max(logMax0, 0.5*(l1+l2))
	}

	f1 := t.Omega1
	r.om1 = make([]float64, f1.Len())
	r.esc1, r.ref1 = zeros(nv, f1.Len()), zeros(nv, t.NumOmega0)
	for j := range f1.Type {
		st, svsv, tt := f1.StarPair[j], f1.SVSVWyckoff[j], f1.Type[j]
		lF, lB := -bf.T1[j]+bFkin[st[0]], -bf.T1[j]+bFkin[st[1]]
		omF, omB := math.Exp(lF), math.Exp(lB)
		r.om1[j] = math.Exp(0.5 * (lF + lB))
		for _, x := range []float64{omF, omB, r.om1[j]} {
			if !normal(x) {
				return nil, rateRange("omega1", x)
			}
		}
		for _, a := range t.Kin2VStar[st[0]] {
			r.esc1[a][j], r.ref1[a][tt] = omF, r.esc0[svsv[1]][tt]
		}
		for _, a := range t.Kin2VStar[st[1]] {
			r.esc1[a][j], r.ref1[a][tt] = omB, r.esc0[svsv[3]][tt]
		}
	}

	f2 := t.Omega2
	r.ratio = 1
	if f2.Len() > 0 {
		r.logWbar = math.Inf(-1)
		for j := range f2.Type {
			for _, st := range f2.StarPair[j] {
				r.logWbar = math.Max(r.logWbar, -bf.T2[j]+bFkin[st])
			}
		}
		r.wbar = math.Exp(r.logWbar)
		if !normal(r.wbar) {
			return nil, rateRange("exchange", r.wbar)
		}
		r.ratio = math.Exp(r.logWbar - logMax0)
		if !normal(r.ratio) {
			return nil, rateRange("exchange-to-bulk", r.ratio)
		}
	}
	r.om2 = make([]float64, f2.Len())
	r.esc2, r.ref2 = zeros(nv, f2.Len()), zeros(nv, t.NumOmega0)
	r.star2 = zeros(f2.Len(), nk)
	for j := range f2.Type {
		st, svsv, tt := f2.StarPair[j], f2.SVSVWyckoff[j], f2.Type[j]
		lF, lB := -bf.T2[j]+bFkin[st[0]]-r.logWbar, -bf.T2[j]+bFkin[st[1]]-r.logWbar
		omF, omB := math.Exp(lF), math.Exp(lB)
		r.om2[j] = math.Exp(0.5 * (lF + lB))
		r.star2[j][st[0]], r.star2[j][st[1]] = omF, omB
		for _, a := range t.Kin2VStar[st[0]] {
			r.esc2[a][j], r.ref2[a][tt] = omF, r.esc0[svsv[1]][tt]
		}
		for _, a := range t.Kin2VStar[st[1]] {
			r.esc2[a][j], r.ref2[a][tt] = omB, r.esc0[svsv[3]][tt]
		}
	}

	return r, nil
}

func zeros(n, m int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, m)
	}

	return out
}

// system is the basis problem of one input.
//
//	g0     bare Green's function
//	dOm    rate change without the exchange network
//	m      exchange rate change divided by ω̄
//	beta   solute bias divided by ω̄
//	b1     vacancy plus solute bias (free of exchange rates)
//	l0     bare solute term divided by ω̄
type system struct {
	topo *Topology
	n    int
	g0   [][]float64
	dOm  [][]float64
	m    [][]float64
	beta []float64
	b1   []float64
	l0   crystal.Mat3
}

func (vm *VacancyMediated) assemble(gf []float64, r *rateSet) *system {
	t := vm.topo
	nv := t.NumBasis()
	s := &system{topo: t, n: nv, g0: zeros(nv, nv), dOm: zeros(nv, nv), m: zeros(nv, nv),
		beta: make([]float64, nv), b1: make([]float64, nv)}
	e1, e2 := t.Omega1.Rates, t.Omega2.Rates
	for a := 0; a < nv; a++ {
		for b := 0; b < nv; b++ {
			var g float64
			for k, x := range t.GFExpansion[a][b] {
				g += x * gf[k]
			}
			s.g0[a][b] = g
			s.dOm[a][b] = dot(e1.Rate[a][b], r.om1) - dot(e1.Omega0[a][b], r.om0)
			s.m[a][b] = dot(e2.Rate[a][b], r.om2)
		}
		s.dOm[a][a] += dot(e1.Escape[a], r.esc1[a]) - dot(e1.Omega0Escape[a], r.ref1[a]) -
			dot(e2.Omega0Escape[a], r.ref2[a])
		s.m[a][a] += dot(e2.Escape[a], r.esc2[a])
	}
	// symmetric up to rounding; the eigen solver wants it exact
	for a := 0; a < nv; a++ {
		for b := a + 1; b < nv; b++ {
			x := 0.5 * (s.m[a][b] + s.m[b][a])
			s.m[a][b], s.m[b][a] = x, x
		}
	}

	b1, b2 := t.Omega1.Bias, t.Omega2.Bias
	for a, k := range t.VStar2Kin {
		vw := t.KineticSVWyckoff[k][1]
		s.beta[a] = -dot(b2.Bias[a], r.esc2[a]) * r.sqp[k]
		ref := (dot(b1.Omega0[a], r.esc0[vw]) + dot(b2.Omega0[a], r.esc0[vw])) * math.Sqrt(r.pV[vw])
		s.b1[a] = dot(b1.Bias[a], r.esc1[a])*r.sqp[k] - ref
	}

	for j, list := range t.Omega2.Jumps {
		for _, bj := range list {
			w := 0.5 * r.star2[j][bj.Star] * r.prob[bj.Star]
			s.l0 = s.l0.AddM(bj.Dx.Outer(bj.Dx).ScaleM(w))
		}
	}
	s.l0 = s.l0.ScaleM(1 / float64(t.NumSites))

	return s
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}

func (s *system) contract(a, b []float64) crystal.Mat3 {
	return s.topo.contract(a, b).ScaleM(1 / float64(s.topo.NumSites))
}

// factor returns the LU factors of I + g0·(dOm + w·m).
func (s *system) factor(w float64) (*matrix.LU, error) {
	d := zeros(s.n, s.n)
	for a := range d {
		for b := range d[a] {
			d[a][b] = s.dOm[a][b] + w*s.m[a][b]
		}
	}
	g0, err := matrix.NewFromRows(s.g0)
	if err != nil {
		return nil, err
	}
	dm, err := matrix.NewFromRows(d)
	if err != nil {
		return nil, err
	}
	p, err := matrix.Mul(g0, dm)
	if err != nil {
		return nil, err
	}
	id, err := matrix.NewIdentity(s.n)
	if err != nil {
		return nil, err
	}
	h, err := matrix.Add(id, p)
	if err != nil {
		return nil, err
	}
	lu, err := matrix.Factorize(h)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return nil, fmt.Errorf("%w: %w", ErrIllConditioned, err)
		}

		return nil, err
	}

	return lu, nil
}

// solveG returns (I + g0·δω)⁻¹·g0·v.
func (s *system) solveG(lu *matrix.LU, v []float64) ([]float64, error) {
	return lu.Solve(matVec(s.g0, v))
}

func matVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = dot(row, v)
	}

	return out
}

// general evaluates the direct form with the exchange rates restored.
func (s *system) general(out *Coefficients, w float64) error {
	if s.n == 0 {
		out.Lss, out.Lsv = out.L0ss, out.L0ss.ScaleM(-1)

		return nil
	}
	lu, err := s.factor(w)
	if err != nil {
		return err
	}
	bS := make([]float64, s.n)
	bV := make([]float64, s.n)
	for a := range bS {
		bS[a] = w * s.beta[a]
		bV[a] = s.b1[a] - bS[a]
	}
	eS, err := s.solveG(lu, bS)
	if err != nil {
		return err
	}
	eV, err := s.solveG(lu, bV)
	if err != nil {
		return err
	}
	out.Lss = out.L0ss.AddM(s.contract(bS, eS))
	out.Lsv = out.L0ss.ScaleM(-1).AddM(s.contract(bV, eS))
	out.Lvv1 = s.contract(bV, eV)

	return nil
}

// small evaluates the direct form with ω̄ factored out of every exchange
// term.
func (s *system) small(out *Coefficients, w float64) error {
	if s.n == 0 {
		out.Lss, out.Lsv = out.L0ss, out.L0ss.ScaleM(-1)

		return nil
	}
	lu, err := s.factor(w)
	if err != nil {
		return err
	}
	gb, err := s.solveG(lu, s.beta)
	if err != nil {
		return err
	}
	g1, err := s.solveG(lu, s.b1)
	if err != nil {
		return err
	}
	bb := s.contract(s.beta, gb).ScaleM(w)
	out.Lss = s.l0.AddM(bb).ScaleM(w)
	out.Lsv = s.l0.ScaleM(-1).AddM(s.contract(s.b1, gb)).AddM(bb.ScaleM(-1)).ScaleM(w)
	out.Lvv1 = s.contract(s.b1, g1).
		AddM(s.contract(s.b1, gb).ScaleM(-w)).
		AddM(s.contract(s.beta, g1).ScaleM(-w)).
		AddM(bb.ScaleM(w))

	return nil
}

var errIdentity = errors.New("exchange network does not fix the solute bias")

// large evaluates the fast-exchange form. With x0 = M⁺β, K = I + g0·dOm and
// H = K + ω̄·g0·M, ω̄·G·β = x0 + d with d = -H⁻¹·K·x0, and the bare solute
// term cancels exactly against ω̄·βᵀ·O·x0, leaving Lss = ω̄·βᵀ·O·d. H is
// solved through exchangeFactor.
func (s *system) large(out *Coefficients, w float64) error {
	if s.n == 0 {
		return errIdentity
	}
	x0, err := pinvSolve(s.m, s.beta)
	if err != nil {
		return err
	}
	// Mx0 = β and l0 = -βᵀ·O·x0
	res := matVec(s.m, x0)
	var rn, bn float64
	for a := range res {
		rn = math.Max(rn, math.Abs(res[a]-s.beta[a]))
		bn = math.Max(bn, math.Abs(s.beta[a]))
	}
	if rn > identityTol*math.Max(bn, 1e-300) {
		return fmt.Errorf("%w: bias residual %g", errIdentity, rn)
	}
	c0 := s.l0.AddM(s.contract(s.beta, x0))
	if maxAbs(c0) > identityTol*math.Max(maxAbs(s.l0), 1e-300) {
		return fmt.Errorf("%w: bare term residual %g", errIdentity, maxAbs(c0))
	}

	f, err := s.exchangeFactor(w)
	if err != nil {
		return err
	}
	d, err := f.solve(s.applyK(x0))
	if err != nil {
		return err
	}
	y := make([]float64, s.n)
	for a := range d {
		d[a] = -d[a]
		y[a] = x0[a] + d[a]
	}
	g1, err := f.solve(matVec(s.g0, s.b1))
	if err != nil {
		return err
	}
	out.Lss = s.contract(s.beta, d).ScaleM(w)
	out.Lsv = s.contract(s.b1, y).AddM(out.Lss.ScaleM(-1))
	out.Lvv1 = s.contract(s.b1, g1).
		AddM(s.contract(s.b1, y).ScaleM(-1)).
		AddM(s.contract(s.beta, g1).ScaleM(-w)).
		AddM(out.Lss).
		AddM(out.L0ss.ScaleM(-1))

	return nil
}

// applyK returns (I + g0·dOm)·x.
// scaledLU solves (I + g0·(δω + ω̄·M))·x = r through the column-scaled
// matrix C = H·S, where S = U·diag(scale) in the eigenbasis U of M.
type scaledLU struct {
	lu    *matrix.LU
	u     [][]float64 // u[k] is eigenvector k of M
	scale []float64
}

// exchangeFactor factors H for large ω̄ without forming ω̄·M: a column of H
// along a range eigenvector u of M with eigenvalue λ is divided by ω̄·|λ|,
// so C tends to [K·U_N | sign(λ)·g0·U_R] and stays well conditioned.
func (s *system) exchangeFactor(w float64) (*scaledLU, error) {
	n := s.n
	sym := zeros(n, n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			sym[a][b] = 0.5 * (s.m[a][b] + s.m[b][a])
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
	f := &scaledLU{u: make([][]float64, n), scale: make([]float64, n)}
	c := zeros(n, n)
	for k, l := range vals {
		u := make([]float64, n)
		for a := 0; a < n; a++ {
			u[a], _ = vecs.At(a, k)
		}
		f.u[k] = u
		col := s.applyK(u)
		f.scale[k] = 1
		if math.Abs(l) > 1e-10*lmax {
			sc := 1 / (w * math.Abs(l))
			gu := matVec(s.g0, u)
			sign := math.Copysign(1, l)
			for a := range col {
				col[a] = sign*gu[a] + sc*col[a]
			}
			f.scale[k] = sc
		}
		for a := 0; a < n; a++ {
			c[a][k] = col[a]
		}
	}
	cm, err := matrix.NewFromRows(c)
	if err != nil {
		return nil, err
	}
	f.lu, err = matrix.Factorize(cm)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return nil, fmt.Errorf("%w: %w", ErrIllConditioned, err)
		}

		return nil, err
	}

	return f, nil
}

func (f *scaledLU) solve(r []float64) ([]float64, error) {
	y, err := f.lu.Solve(r)
	if err != nil {
		return nil, err
	}
	x := make([]float64, len(r))
	for k, u := range f.u {
		c := y[k] * f.scale[k]
		for a := range x {
			x[a] += c * u[a]
		}
	}

	return x, nil
}

func (s *system) applyK(x []float64) []float64 {
	out := matVec(s.g0, matVec(s.dOm, x))
	for a := range out {
		out[a] += x[a]
	}

	return out
}

func maxAbs(m crystal.Mat3) float64 {
	var x float64
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			x = math.Max(x, math.Abs(m[a][b]))
		}
	}

	return x
}
