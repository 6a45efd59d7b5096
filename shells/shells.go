// SPDX-License-Identifier: MIT

package shells

import (
	"time"

	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/states"
)

// Shells is the full pair-state topology of one vacancy network.
type Shells struct {
	Thermo  *StarSet
	NN      *StarSet
	Kinetic *StarSet
	GF      *PairSet

	// Omega1 is pruned of classes with both endpoint stars in OuterKin.
	Omega1 JumpSet
	Omega2 JumpSet

	// Thermo2Kin maps thermo stars to kinetic stars.
	Thermo2Kin []states.StarIndex
	// OuterKin lists kinetic stars outside the thermodynamic shell.
	OuterKin []states.StarIndex
	// MixedStartIndex is the first kinetic state beyond the thermodynamic
	// shell; states from here on carry no interaction energy.
	MixedStartIndex states.StateIndex

	// Wyckoff set indices: solute and vacancy per kinetic star; initial and
	// final vacancy per bare class; solute, vacancy (initial) then solute,
	// vacancy (final) per omega1 and omega2 class.
	KineticSVWyckoff     [][2]int
	Omega0VacancyWyckoff [][2]int
	Omega1SVSVWyckoff    [][4]int
	Omega2SVSVWyckoff    [][4]int
}

// Build generates the thermodynamic (nthermo shells), nearest-neighbour and
// kinetic star sets, the omega1/omega2 networks, the GF star set, and the
// index helpers; then checks that the kinetic shell is connected.
//
// Errors: ErrNilNetwork, ErrNotVacancy, ErrBadShells, ErrDisconnected.
func Build(net *jumpnet.Network, nthermo int, opts ...Option) (*Shells, error) {
	o := newOptions(opts)
	log := o.Logger
	start := time.Now()
	thermo, err := Generate(net, nthermo, opts...)
	if err != nil {
		return nil, shellsErrorf(opBuild, err)
	}
	nnOpts := append(append([]Option(nil), opts...), WithOriginStates(false))
	nn, err := Generate(net, 1, nnOpts...)
	if err != nil {
		return nil, shellsErrorf(opBuild, err)
	}
	log.Info("thermodynamic shell", "phase", "thermo", "shells", nthermo,
		"states", thermo.NumStates(), "stars", thermo.NumStars(), "elapsed", time.Since(start))

	t := time.Now()
	kin, err := thermo.Add(nn)
	if err != nil {
		return nil, shellsErrorf(opBuild, err)
	}
	sh := &Shells{Thermo: thermo, NN: nn, Kinetic: kin, MixedStartIndex: states.StateIndex(thermo.NumStates())}
	for k := 0; k < thermo.NumStars(); k++ {
		sh.Thermo2Kin = append(sh.Thermo2Kin, kin.StarOfState(thermo.Rep(states.StarIndex(k))))
	}
	outer := make(map[states.StarIndex]bool)
	for k := 0; k < kin.NumStars(); k++ {
		if _, ok := thermo.Index(kin.Rep(states.StarIndex(k))); !ok {
			sh.OuterKin = append(sh.OuterKin, states.StarIndex(k))
			outer[states.StarIndex(k)] = true
		}
	}
	log.Info("kinetic shell", "phase", "kinetic",
		"states", kin.NumStates(), "stars", kin.NumStars(), "outer", len(sh.OuterKin), "elapsed", time.Since(t))

	t = time.Now()
	om1 := kin.Omega1()
	sh.Omega2 = kin.Omega2()
	origin := func(v int) bool {
		return v < kin.NumStates() && kin.Container().IsOrigin(kin.State(states.StateIndex(v)))
	}
	if err = CheckConnected(kin.NumStates(), connections(kin, om1, sh.Omega2), origin); err != nil {
		return nil, shellsErrorf(opBuild, err)
	}
	sh.Omega1 = om1.Filter(func(k int) bool {
		sp := om1.StarPair[k]

		return !(outer[sp[0]] && outer[sp[1]])
	})
	log.Info("jump networks", "phase", "omega", "omega1", sh.Omega1.Len(), "pruned", om1.Len()-sh.Omega1.Len(),
		"omega2", sh.Omega2.Len(), "elapsed", time.Since(t))

	t = time.Now()
	if sh.GF, err = Diff(kin, kin, o.Threshold); err != nil {
		return nil, shellsErrorf(opBuild, err)
	}
	log.Info("GF star set", "phase", "gfstars", "states", sh.GF.NumStates(), "stars", sh.GF.NumStars(),
		"elapsed", time.Since(t))

	if err = sh.wyckoff(); err != nil {
		return nil, shellsErrorf(opBuild, err)
	}

	return sh, nil
}

func (sh *Shells) wyckoff() error {
	kin := sh.Kinetic
	c := kin.Container()
	inv, err := c.Crystal().InvMap(c.Chem())
	if err != nil {
		return err
	}
	site := func(i int) int { return c.Orientation(i).Site }
	for k := 0; k < kin.NumStars(); k++ {
		ps := kin.Rep(states.StarIndex(k))
		sh.KineticSVWyckoff = append(sh.KineticSVWyckoff, [2]int{inv[ps.Solute], inv[site(ps.Defect.I)]})
	}
	net := kin.Network()
	for k := 0; k < net.NumClasses(); k++ {
		j := net.Class(k)[0]
		sh.Omega0VacancyWyckoff = append(sh.Omega0VacancyWyckoff, [2]int{inv[site(j.From.I)], inv[site(j.To.I)]})
	}
	svsv := func(js JumpSet) [][4]int {
		out := make([][4]int, 0, js.Len())
		for _, list := range js.Jumps {
			a, b := kin.State(list[0].I), kin.State(list[0].F)
			out = append(out, [4]int{inv[a.Solute], inv[site(a.Defect.I)], inv[b.Solute], inv[site(b.Defect.I)]})
		}

		return out
	}
	sh.Omega1SVSVWyckoff = svsv(sh.Omega1)
	sh.Omega2SVSVWyckoff = svsv(sh.Omega2)

	return nil
}

// InteractList returns the representative of every thermodynamic star.
func (sh *Shells) InteractList() []states.Complex {
	out := make([]states.Complex, sh.Thermo.NumStars())
	for k := range out {
		out[k] = sh.Thermo.Rep(states.StarIndex(k))
	}

	return out
}

// connections lists the edges of the kinetic jump graph: every omega1 and
// omega2 jump, plus an edge to the bulk vertex (index n) from every state
// with a jump leaving the kinetic set.
func connections(kin *StarSet, om1, om2 JumpSet) [][2]int {
	n := kin.NumStates()
	var edges [][2]int
	for _, js := range []JumpSet{om1, om2} {
		for _, list := range js.Jumps {
			for _, j := range list {
				edges = append(edges, [2]int{int(j.I), int(j.F)})
			}
		}
	}
	c := kin.Container()
	for i := 0; i < n; i++ {
		ps := kin.State(states.StateIndex(i))
		if c.IsOrigin(ps) {
			continue
		}
		for _, j := range kin.jumps {
			f, err := c.Add(ps, j)
			if err != nil || c.IsOrigin(f) {
				continue
			}
			if _, ok := kin.Index(f); !ok {
				edges = append(edges, [2]int{i, n})

				break
			}
		}
	}

	return edges
}
