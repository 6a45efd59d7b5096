// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
	"github.com/sohamch/Onsager/vstar"
)

// VacancyMediated is the Onsager calculator for a solute diffusing by
// exchange with a vacancy. Its topology is built once; Lij may then be
// called concurrently for any number of rate inputs.
type VacancyMediated struct {
	net     *jumpnet.Network
	nthermo int
	opts    Options

	// sh is nil for calculators restored from a snapshot.
	sh   *shells.Shells
	topo *Topology

	mu    sync.Mutex
	gf    *greens.Calculator
	cache map[string]gfEntry
}

type gfEntry struct {
	GF   []float64
	L0vv crystal.Mat3
}

// New builds the calculator for a vacancy network with nthermo
// thermodynamic shells.
//
// Implementation:
//   - Stage 1: Green's function calculator for the bare network; a
//     network that does not percolate fails here (greens.ErrDisconnected).
//   - Stage 2: thermodynamic, kinetic and GF star sets, omega networks
//     (shells.Build).
//   - Stage 3: vector-star basis and its expansions (vstar).
//
// Errors: ErrNilNetwork, ErrUnsupportedDefect, and the errors of the
// greens, shells and vstar packages.
func New(ctx context.Context, net *jumpnet.Network, nthermo int, opts ...Option) (*VacancyMediated, error) {
	if net == nil {
		return nil, transportErrorf(opNew, ErrNilNetwork)
	}
	if !net.Container().IsVacancy() {
		return nil, transportErrorf(opNew, ErrUnsupportedDefect)
	}
	vm, err := build(ctx, net, nthermo, newOptions(opts))
	if err != nil {
		return nil, transportErrorf(opNew, err)
	}

	return vm, nil
}

func build(ctx context.Context, net *jumpnet.Network, nthermo int, o Options) (*VacancyMediated, error) {
	log, rec := o.Logger, o.Recorder
	start := time.Now()
	gf, err := greens.New(net, o.greens()...)
	if err != nil {
		return nil, err
	}
	sh, err := shells.Build(net, nthermo, shells.WithLogger(log))
	if err != nil {
		return nil, err
	}
	rec.Phase("shells", start)
	rec.Size("thermo_stars", sh.Thermo.NumStars())
	rec.Size("kinetic_states", sh.Kinetic.NumStates())
	rec.Size("kinetic_stars", sh.Kinetic.NumStars())
	rec.Size("gf_stars", sh.GF.NumStars())
	rec.Size("omega1", sh.Omega1.Len())
	rec.Size("omega2", sh.Omega2.Len())

	t := time.Now()
	vs, err := vstar.Generate(sh.Kinetic.PairSet, vstar.WithWorkers(o.Workers), vstar.WithLogger(log))
	if err != nil {
		return nil, err
	}
	topo, err := newTopology(ctx, sh, vs)
	if err != nil {
		return nil, err
	}
	rec.Phase("expansions", t)
	rec.Size("vstars", vs.Len())
	log.Info("vector-star expansions", "phase", "vstars", "vstars", vs.Len(),
		"gfstars", len(topo.GFPoints), "elapsed", time.Since(t))

	log.Info("vacancy-mediated calculator", "phase", "setup", "nthermo", nthermo,
		"omega0", net.NumClasses(), "omega1", topo.Omega1.Len(), "omega2", topo.Omega2.Len(),
		"elapsed", time.Since(start))

	return &VacancyMediated{
		net:     net,
		nthermo: nthermo,
		opts:    o,
		sh:      sh,
		topo:    topo,
		gf:      gf,
		cache:   make(map[string]gfEntry),
	}, nil
}

// Regenerate returns a calculator over the bare jump classes listed in
// selected (jumpnet.Network.Regenerate), with the same thermodynamic range
// and options and an empty cache. vm is unchanged.
func (vm *VacancyMediated) Regenerate(ctx context.Context, selected []int) (*VacancyMediated, error) {
	net, err := vm.net.Regenerate(selected)
	if err != nil {
		return nil, transportErrorf(opRegenerate, err)
	}
	out, err := build(ctx, net, vm.nthermo, vm.opts)
	if err != nil {
		return nil, transportErrorf(opRegenerate, err)
	}

	return out, nil
}

// Network returns the bare vacancy network.
func (vm *VacancyMediated) Network() *jumpnet.Network { return vm.net }

// Shells returns the star sets, or nil for a restored calculator.
func (vm *VacancyMediated) Shells() *shells.Shells { return vm.sh }

// Topology returns the rate-independent data; it must not be modified.
func (vm *VacancyMediated) Topology() *Topology { return vm.topo }

// NumThermo returns the number of thermodynamic shells.
func (vm *VacancyMediated) NumThermo() int { return vm.nthermo }

// CachedRates returns the number of cached vacancy rate inputs.
func (vm *VacancyMediated) CachedRates() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return len(vm.cache)
}

// InteractList returns the representative state of every thermodynamic
// star, in the order of BetaFree.SV.
//
// Errors: ErrNoThermo.
func (vm *VacancyMediated) InteractList() ([]states.Complex, error) {
	if vm.topo.NumThermo == 0 {
		return nil, transportErrorf(opInteract, ErrNoThermo)
	}

	return append([]states.Complex(nil), vm.topo.ThermoReps...), nil
}

// OmegaList returns, for omega1 (idx 1) or omega2 (idx 2), the endpoint
// states of each class representative and the bare jump class each one
// derives from, in the order of BetaFree.T1 or T2.
//
// Errors: ErrNoThermo, ErrFiveFreq.
func (vm *VacancyMediated) OmegaList(idx int) ([][2]states.Complex, []int, error) {
	if vm.topo.NumThermo == 0 {
		return nil, nil, transportErrorf(opOmega, ErrNoThermo)
	}
	var f FiveFreq
	switch idx {
	case 1:
		f = vm.topo.Omega1
	case 2:
		f = vm.topo.Omega2
	default:
		return nil, nil, transportErrorf(opOmega, ErrFiveFreq)
	}

	return append([][2]states.Complex(nil), f.Ends...), append([]int(nil), f.Type...), nil
}

func rateKey(v, t0 []float64) string {
	buf := make([]byte, 0, 17*(len(v)+len(t0))+1)
	for _, x := range v {
		buf = strconv.AppendUint(buf, math.Float64bits(x), 16)
		buf = append(buf, ',')
	}
	buf = append(buf, '|')
	for _, x := range t0 {
		buf = strconv.AppendUint(buf, math.Float64bits(x), 16)
		buf = append(buf, ',')
	}

	return string(buf)
}

// greenFunction returns the Green's function at the GF star
// representatives and the bare vacancy diffusivity for the vacancy free
// energies, from the cache when possible. A fresh evaluation is returned
// with its key and is not stored; the caller commits it once the whole
// solve has succeeded.
func (vm *VacancyMediated) greenFunction(ctx context.Context, bfV, bfT0 []float64) (gfEntry, string, bool, error) {
	key := rateKey(bfV, bfT0)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if e, ok := vm.cache[key]; ok {
		vm.opts.Recorder.Cache(true)

		return e, key, false, nil
	}
	vm.opts.Recorder.Cache(false)
	start := time.Now()
	if err := vm.gf.SetRates(ones(len(bfV)), bfV, ones(len(bfT0)), bfT0); err != nil {
		return gfEntry{}, "", false, err
	}
	d, err := vm.gf.Diffusivity()
	if err != nil {
		return gfEntry{}, "", false, err
	}
	vals, err := vm.gf.EvalMany(ctx, vm.topo.GFPoints)
	if err != nil {
		return gfEntry{}, "", false, err
	}
	vm.opts.Recorder.Phase("greens", start)
	vm.opts.Logger.Debug("Green's function evaluated", "phase", "greens",
		"points", len(vals), "elapsed", time.Since(start))

	return gfEntry{GF: vals, L0vv: d}, key, true, nil
}

func (vm *VacancyMediated) commit(key string, e gfEntry) {
	vm.mu.Lock()
	vm.cache[key] = e
	vm.mu.Unlock()
}
