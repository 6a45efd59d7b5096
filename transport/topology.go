// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"fmt"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
	"github.com/sohamch/Onsager/vstar"
)

// BareJump is one omega jump reduced to what the bare solute diffusivity
// needs: the kinetic star of its initial state and the displacement.
type BareJump struct {
	Star states.StarIndex
	Dx   crystal.Vec
}

// FiveFreq is an omega1 or omega2 network reduced to indices and its
// expansions over the vector-star basis.
type FiveFreq struct {
	// Type is the bare jump class of each class.
	Type []int
	// StarPair holds the kinetic stars of the representative endpoints.
	StarPair [][2]states.StarIndex
	// SVSVWyckoff holds solute and vacancy Wyckoff sets, initial then final.
	SVSVWyckoff [][4]int
	// Ends holds the representative endpoint states.
	Ends  [][2]states.Complex
	Jumps [][]BareJump
	Rates vstar.RateExpansion
	Bias  vstar.BiasExpansion
}

// Len returns the number of classes.
func (f FiveFreq) Len() int { return len(f.Type) }

// Topology is the rate-independent part of a vacancy-mediated calculation.
// It is flat and exported so that it can be persisted; Lij needs nothing
// else besides the Green's function calculator.
type Topology struct {
	NumSites   int
	Dim        int
	NumWyckoff int
	NumThermo  int
	NumOmega0  int
	// Invmap is the Wyckoff set of every site.
	Invmap []int

	Thermo2Kin           []states.StarIndex
	KineticSVWyckoff     [][2]int
	Omega0VacancyWyckoff [][2]int
	Omega1               FiveFreq
	Omega2               FiveFreq

	VStar2Kin []states.StarIndex
	Kin2VStar [][]states.BasisIndex
	Outer     [][]crystal.Mat3

	// GFExpansion [i][j][k] multiplies the Green's function at GFPoints[k].
	GFExpansion [][][]float64
	GFPoints    []greens.Point

	ThermoReps []states.Complex
}

// NumBasis returns the size of the vector-star basis.
func (t *Topology) NumBasis() int { return len(t.VStar2Kin) }

// NumKinetic returns the number of kinetic stars.
func (t *Topology) NumKinetic() int { return len(t.KineticSVWyckoff) }

func newTopology(ctx context.Context, sh *shells.Shells, vs *vstar.Set) (*Topology, error) {
	kin := sh.Kinetic
	c := kin.Container()
	crys := c.Crystal()
	inv, err := crys.InvMap(c.Chem())
	if err != nil {
		return nil, err
	}
	nw := 0
	for _, w := range inv {
		nw = max(nw, w+1)
	}
	n0 := kin.Network().NumClasses()
	t := &Topology{
		NumSites:             crys.NumSites(c.Chem()),
		Dim:                  crys.Dim(),
		NumWyckoff:           nw,
		NumThermo:            sh.Thermo.NumStars(),
		NumOmega0:            n0,
		Invmap:               inv,
		Thermo2Kin:           append([]states.StarIndex(nil), sh.Thermo2Kin...),
		KineticSVWyckoff:     append([][2]int(nil), sh.KineticSVWyckoff...),
		Omega0VacancyWyckoff: append([][2]int(nil), sh.Omega0VacancyWyckoff...),
		ThermoReps:           sh.InteractList(),
	}

	nv := vs.Len()
	t.VStar2Kin = make([]states.StarIndex, nv)
	t.Outer = make([][]crystal.Mat3, nv)
	for i := 0; i < nv; i++ {
		t.VStar2Kin[i] = vs.StarOf(states.BasisIndex(i))
		t.Outer[i] = make([]crystal.Mat3, nv)
		for j := 0; j < nv; j++ {
			t.Outer[i][j] = vs.Outer(states.BasisIndex(i), states.BasisIndex(j))
		}
	}
	t.Kin2VStar = make([][]states.BasisIndex, kin.NumStars())
	for k := range t.Kin2VStar {
		t.Kin2VStar[k] = vs.OfStar(states.StarIndex(k))
	}

	if t.GFExpansion, err = vs.GFExpansion(ctx, sh.GF); err != nil {
		return nil, err
	}
	t.GFPoints = make([]greens.Point, sh.GF.NumStars())
	for k := range t.GFPoints {
		rep := sh.GF.Rep(states.StarIndex(k))
		t.GFPoints[k] = greens.Point{I: rep.Solute, J: c.Orientation(rep.Defect.I).Site, Dx: c.Dx(rep)}
	}

	if t.Omega1, err = fiveFreq(kin, vs, sh.Omega1, sh.Omega1SVSVWyckoff, n0); err != nil {
		return nil, err
	}
	if t.Omega2, err = fiveFreq(kin, vs, sh.Omega2, sh.Omega2SVSVWyckoff, n0); err != nil {
		return nil, err
	}

	return t, nil
}

func fiveFreq(kin *shells.StarSet, vs *vstar.Set, js shells.JumpSet, svsv [][4]int, n0 int) (FiveFreq, error) {
	f := FiveFreq{
		Type:        append([]int(nil), js.Type...),
		StarPair:    append([][2]states.StarIndex(nil), js.StarPair...),
		SVSVWyckoff: append([][4]int(nil), svsv...),
		Ends:        make([][2]states.Complex, js.Len()),
		Jumps:       make([][]BareJump, js.Len()),
	}
	for k, list := range js.Jumps {
		f.Ends[k] = [2]states.Complex{kin.State(list[0].I), kin.State(list[0].F)}
		f.Jumps[k] = make([]BareJump, len(list))
		for m, j := range list {
			f.Jumps[k][m] = BareJump{Star: kin.StarOf(j.I), Dx: j.Dx}
		}
	}
	var err error
	if f.Rates, err = vs.RateExpansions(js, n0); err != nil {
		return FiveFreq{}, err
	}
	if f.Bias, err = vs.BiasExpansions(js, n0); err != nil {
		return FiveFreq{}, err
	}

	return f, nil
}

// contract returns Σ_ij a_i O_ij b_j over pairs on the same star.
func (t *Topology) contract(a, b []float64) crystal.Mat3 {
	var out crystal.Mat3
	for _, list := range t.Kin2VStar {
		for _, i := range list {
			if a[i] == 0 {
				continue
			}
			for _, j := range list {
				out = out.AddM(t.Outer[i][j].ScaleM(a[i] * b[j]))
			}
		}
	}

	return out
}

// validate checks the internal sizes of a topology restored from storage
// against the number of bare jump classes of its network.
func (t *Topology) validate(nOmega0, nsites int) error {
	bad := func(what string) error { return fmt.Errorf("%w: %s", ErrSnapshot, what) }
	switch {
	case t.NumOmega0 != nOmega0 || len(t.Omega0VacancyWyckoff) != nOmega0:
		return bad("bare jump classes")
	case t.NumSites != nsites || len(t.Invmap) != nsites:
		return bad("sites")
	case len(t.Thermo2Kin) != t.NumThermo || len(t.ThermoReps) != t.NumThermo:
		return bad("thermodynamic stars")
	case len(t.Kin2VStar) != t.NumKinetic():
		return bad("kinetic stars")
	case len(t.Outer) != t.NumBasis() || len(t.GFExpansion) != t.NumBasis():
		return bad("basis")
	}
	nk, nv := t.NumKinetic(), t.NumBasis()
	if !wyckoff(t.NumWyckoff, t.Invmap...) {
		return bad("Wyckoff sets")
	}
	for _, p := range t.KineticSVWyckoff {
		if !wyckoff(t.NumWyckoff, p[:]...) {
			return bad("kinetic Wyckoff sets")
		}
	}
	for _, p := range t.Omega0VacancyWyckoff {
		if !wyckoff(t.NumWyckoff, p[:]...) {
			return bad("bare jump Wyckoff sets")
		}
	}
	for _, k := range t.Thermo2Kin {
		if int(k) < 0 || int(k) >= nk {
			return bad("thermodynamic star index")
		}
	}
	for _, k := range t.VStar2Kin {
		if int(k) < 0 || int(k) >= nk {
			return bad("basis star index")
		}
	}
	for _, list := range t.Kin2VStar {
		for _, i := range list {
			if int(i) < 0 || int(i) >= nv {
				return bad("basis index")
			}
		}
	}
	for i := range t.GFExpansion {
		if len(t.Outer[i]) != nv || len(t.GFExpansion[i]) != nv {
			return bad("basis row")
		}
		for j := range t.GFExpansion[i] {
			if len(t.GFExpansion[i][j]) != len(t.GFPoints) {
				return bad("Green's function stars")
			}
		}
	}
	for _, f := range []FiveFreq{t.Omega1, t.Omega2} {
		n := f.Len()
		if len(f.StarPair) != n || len(f.SVSVWyckoff) != n || len(f.Ends) != n || len(f.Jumps) != n ||
			len(f.Rates.Rate) != nv || len(f.Rates.Escape) != nv || len(f.Bias.Bias) != nv ||
			len(f.Rates.Omega0) != nv || len(f.Rates.Omega0Escape) != nv || len(f.Bias.Omega0) != nv {
			return bad("omega network")
		}
		for i := 0; i < nv; i++ {
			if !rows(f.Rates.Rate[i], nv, n) || !rows(f.Rates.Omega0[i], nv, nOmega0) ||
				len(f.Rates.Escape[i]) != n || len(f.Rates.Omega0Escape[i]) != nOmega0 ||
				len(f.Bias.Bias[i]) != n || len(f.Bias.Omega0[i]) != nOmega0 {
				return bad("omega expansion")
			}
		}
		for j := 0; j < n; j++ {
			if !wyckoff(t.NumWyckoff, f.SVSVWyckoff[j][:]...) {
				return bad("omega Wyckoff sets")
			}
			if f.Type[j] < 0 || f.Type[j] >= nOmega0 {
				return bad("omega jump type")
			}
			for _, st := range f.StarPair[j] {
				if int(st) < 0 || int(st) >= nk {
					return bad("omega star pair")
				}
			}
			for _, bj := range f.Jumps[j] {
				if int(bj.Star) < 0 || int(bj.Star) >= nk {
					return bad("omega jump star")
				}
			}
		}
	}

	return nil
}

func wyckoff(n int, ws ...int) bool {
	for _, w := range ws {
		if w < 0 || w >= n {
			return false
		}
	}

	return true
}

func rows(m [][]float64, r, c int) bool {
	if len(m) != r {
		return false
	}
	for _, row := range m {
		if len(row) != c {
			return false
		}
	}

	return true
}
