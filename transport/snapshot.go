// SPDX-License-Identifier: MIT

package transport

import (
	"sort"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/greens"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/states"
)

// CacheEntry is one cached Green's function evaluation.
type CacheEntry struct {
	Key  string
	GF   []float64
	L0vv crystal.Mat3
}

// Snapshot is everything needed to rebuild a VacancyMediated without
// regenerating its star sets. All fields are exported plain data.
type Snapshot struct {
	Crystal crystal.Spec
	Chem    int
	Cutoff  float64
	Classes [][]jumpnet.Jump
	NThermo int

	Mesh           int
	KappaFactor    float64
	RatioThreshold float64

	Topology Topology
	Cache    []CacheEntry
}

// Snapshot returns the persistable state of vm, cache entries sorted by
// key.
func (vm *VacancyMediated) Snapshot() Snapshot {
	c := vm.net.Container()
	s := Snapshot{
		Crystal:        c.Crystal().Spec(),
		Chem:           c.Chem(),
		Cutoff:         vm.net.Cutoff(),
		Classes:        vm.net.Classes(),
		NThermo:        vm.nthermo,
		Mesh:           vm.opts.Mesh,
		KappaFactor:    vm.opts.KappaFactor,
		RatioThreshold: vm.opts.RatioThreshold,
		Topology:       *vm.topo,
	}
	vm.mu.Lock()
	for k, e := range vm.cache {
		s.Cache = append(s.Cache, CacheEntry{Key: k, GF: append([]float64(nil), e.GF...), L0vv: e.L0vv})
	}
	vm.mu.Unlock()
	sort.Slice(s.Cache, func(i, j int) bool { return s.Cache[i].Key < s.Cache[j].Key })

	return s
}

// Restore rebuilds a calculator from a snapshot. Mesh, kappa factor and
// ratio threshold come from the snapshot unless overridden by opts; a
// different mesh or kappa factor discards the cached Green's functions. The
// result has no Shells.
//
// Errors: ErrSnapshot, and the errors of crystal.FromSpec, the vacancy
// container, jumpnet.Restore and greens.New.
func Restore(s Snapshot, opts ...Option) (*VacancyMediated, error) {
	base := []Option{WithMesh(s.Mesh), WithKappaFactor(s.KappaFactor), WithRatioThreshold(s.RatioThreshold)}
	o := newOptions(append(base, opts...))
	crys, err := crystal.FromSpec(s.Crystal)
	if err != nil {
		return nil, transportErrorf(opRestore, err)
	}
	c, err := states.NewVacancy(crys, s.Chem)
	if err != nil {
		return nil, transportErrorf(opRestore, err)
	}
	net, err := jumpnet.Restore(c, s.Cutoff, s.Classes)
	if err != nil {
		return nil, transportErrorf(opRestore, err)
	}
	topo := s.Topology
	if err = topo.validate(net.NumClasses(), crys.NumSites(s.Chem)); err != nil {
		return nil, transportErrorf(opRestore, err)
	}
	gf, err := greens.New(net, o.greens()...)
	if err != nil {
		return nil, transportErrorf(opRestore, err)
	}
	vm := &VacancyMediated{
		net:     net,
		nthermo: s.NThermo,
		opts:    o,
		topo:    &topo,
		gf:      gf,
		cache:   make(map[string]gfEntry, len(s.Cache)),
	}
	cache := s.Cache
	if o.Mesh != s.Mesh || o.KappaFactor != s.KappaFactor {
		// entries were summed on another mesh
		o.Logger.Info("cache dropped", "phase", "restore", "entries", len(cache),
			"mesh", o.Mesh, "stored_mesh", s.Mesh)
		cache = nil
	}
	for _, e := range cache {
		if len(e.GF) != len(topo.GFPoints) {
			return nil, transportErrorf(opRestore, ErrSnapshot)
		}
		vm.cache[e.Key] = gfEntry{GF: append([]float64(nil), e.GF...), L0vv: e.L0vv}
	}
	o.Logger.Info("calculator restored", "phase", "restore", "vstars", topo.NumBasis(),
		"gfstars", len(topo.GFPoints), "cached", len(vm.cache))

	return vm, nil
}
