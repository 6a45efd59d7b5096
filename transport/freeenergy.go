// SPDX-License-Identifier: MIT

package transport

import (
	"math"
)

// PreEne holds prefactors and energies for every symmetry class of a
// vacancy-mediated calculation.
//
//   - V, S: vacancy and solute formation, one per Wyckoff set.
//   - SV: solute-vacancy binding, one per thermodynamic star.
//   - T0: bare vacancy transition states, one per jump class, relative to V.
//   - T1, T2: omega1 and omega2 transition states, relative to V + S.
type PreEne struct {
	PreV  []float64 `yaml:"preV,omitempty"`
	EneV  []float64 `yaml:"eneV,omitempty"`
	PreS  []float64 `yaml:"preS,omitempty"`
	EneS  []float64 `yaml:"eneS,omitempty"`
	PreSV []float64 `yaml:"preSV,omitempty"`
	EneSV []float64 `yaml:"eneSV,omitempty"`
	PreT0 []float64 `yaml:"preT0,omitempty"`
	EneT0 []float64 `yaml:"eneT0,omitempty"`
	PreT1 []float64 `yaml:"preT1,omitempty"`
	EneT1 []float64 `yaml:"eneT1,omitempty"`
	PreT2 []float64 `yaml:"preT2,omitempty"`
	EneT2 []float64 `yaml:"eneT2,omitempty"`
}

// BetaFree holds β times free energies, βE - ln(pre), with V and S shifted
// so their minimum is zero and the transition states shifted to match.
type BetaFree struct {
	V, S, SV   []float64
	T0, T1, T2 []float64
}

// PreEne2BetaFree converts prefactors and energies at temperature kT into
// scaled free energies.
//
// Errors: ErrBadTemperature, ErrLength (a prefactor list and its energy
// list differ, or V or S is empty), ErrNonFinite (including non-positive
// prefactors).
func PreEne2BetaFree(kT float64, pe PreEne) (BetaFree, error) {
	if !(kT > 0) || math.IsInf(kT, 0) {
		return BetaFree{}, transportErrorf(opPreEne, ErrBadTemperature)
	}
	if len(pe.PreV) == 0 || len(pe.PreS) == 0 {
		return BetaFree{}, transportErrorf(opPreEne, ErrLength)
	}
	beta := 1 / kT
	conv := func(pre, ene []float64) ([]float64, error) {
		if len(pre) != len(ene) {
			return nil, ErrLength
		}
		out := make([]float64, len(pre))
		for i := range pre {
			if !(pre[i] > 0) {
				return nil, ErrNonFinite
			}
			out[i] = beta*ene[i] - math.Log(pre[i])
			if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
				return nil, ErrNonFinite
			}
		}

		return out, nil
	}
	var (
		bf  BetaFree
		err error
	)
	pairs := []struct {
		dst      *[]float64
		pre, ene []float64
	}{
		{&bf.V, pe.PreV, pe.EneV}, {&bf.S, pe.PreS, pe.EneS}, {&bf.SV, pe.PreSV, pe.EneSV},
		{&bf.T0, pe.PreT0, pe.EneT0}, {&bf.T1, pe.PreT1, pe.EneT1}, {&bf.T2, pe.PreT2, pe.EneT2},
	}
	for _, p := range pairs {
		if *p.dst, err = conv(p.pre, p.ene); err != nil {
			return BetaFree{}, transportErrorf(opPreEne, err)
		}
	}
	vmin, smin := minOf(bf.V), minOf(bf.S)
	shift(bf.V, vmin)
	shift(bf.S, smin)
	shift(bf.T0, vmin)
	shift(bf.T1, vmin+smin)
	shift(bf.T2, vmin+smin)

	return bf, nil
}

func minOf(xs []float64) float64 {
	m := math.Inf(1)
	for _, x := range xs {
		m = math.Min(m, x)
	}

	return m
}

func shift(xs []float64, by float64) {
	for i := range xs {
		xs[i] -= by
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}

	return out
}

// MakeTracerPreEne returns the input of an isotopic tracer: no solute
// formation or binding terms, and every omega1 and omega2 transition state
// equal to the bare jump it derives from. Formation entries are unit
// prefactors with zero energy.
//
// Errors: ErrLength.
func (vm *VacancyMediated) MakeTracerPreEne(preT0, eneT0 []float64) (PreEne, error) {
	t := vm.topo
	if len(preT0) != t.NumOmega0 || len(eneT0) != t.NumOmega0 {
		return PreEne{}, transportErrorf(opPreEne, ErrLength)
	}
	pe := PreEne{
		PreV: ones(t.NumWyckoff), EneV: make([]float64, t.NumWyckoff),
		PreS: ones(t.NumWyckoff), EneS: make([]float64, t.NumWyckoff),
		PreSV: ones(t.NumThermo), EneSV: make([]float64, t.NumThermo),
		PreT0: append([]float64(nil), preT0...), EneT0: append([]float64(nil), eneT0...),
	}
	pe.PreT1, pe.EneT1 = fromBare(t.Omega1.Type, preT0, eneT0)
	pe.PreT2, pe.EneT2 = fromBare(t.Omega2.Type, preT0, eneT0)

	return pe, nil
}

func fromBare(types []int, preT0, eneT0 []float64) (pre, ene []float64) {
	pre = make([]float64, len(types))
	ene = make([]float64, len(types))
	for j, t := range types {
		pre[j], ene[j] = preT0[t], eneT0[t]
	}

	return pre, ene
}

// MakeLIMBPreEne fills the omega1 and omega2 transition states of pe by
// linear interpolation of the migration barrier: each transition state is
// the bare one raised by the mean solute plus binding energy of its two
// endpoint stars (prefactors by the geometric mean). The vacancy entries
// and the remaining fields of pe are copied unchanged.
//
// Errors: ErrLength.
func (vm *VacancyMediated) MakeLIMBPreEne(pe PreEne) (PreEne, error) {
	t := vm.topo
	if len(pe.PreS) != t.NumWyckoff || len(pe.EneS) != t.NumWyckoff ||
		len(pe.PreSV) != t.NumThermo || len(pe.EneSV) != t.NumThermo ||
		len(pe.PreT0) != t.NumOmega0 || len(pe.EneT0) != t.NumOmega0 {
		return PreEne{}, transportErrorf(opLIMB, ErrLength)
	}
	nk := len(t.KineticSVWyckoff)
	eneKin := make([]float64, nk)
	preKin := make([]float64, nk)
	for k, sv := range t.KineticSVWyckoff {
		eneKin[k], preKin[k] = pe.EneS[sv[0]], pe.PreS[sv[0]]
	}
	for th, k := range t.Thermo2Kin {
		eneKin[k] += pe.EneSV[th]
		preKin[k] *= pe.PreSV[th]
	}
	limb := func(ff FiveFreq) (pre, ene []float64) {
		pre = make([]float64, len(ff.Type))
		ene = make([]float64, len(ff.Type))
		for j, tt := range ff.Type {
			a, b := ff.StarPair[j][0], ff.StarPair[j][1]
			pre[j] = pe.PreT0[tt] * math.Sqrt(preKin[a]*preKin[b])
			ene[j] = pe.EneT0[tt] + 0.5*(eneKin[a]+eneKin[b])
		}

		return pre, ene
	}
	out := pe
	out.PreT1, out.EneT1 = limb(t.Omega1)
	out.PreT2, out.EneT2 = limb(t.Omega2)

	return out, nil
}
