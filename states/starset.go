// SPDX-License-Identifier: MIT

package states

import (
	"fmt"
	"math"
	"sort"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/orbit"
)

// Member is a State variant that the group can act on.
type Member[S any] interface {
	State
	Image(c *Container, g int) S
}

// action adapts a Container to orbit.Action for variant S.
type action[S Member[S]] struct{ c *Container }

func (a action[S]) Order() int         { return a.c.Order() }
func (a action[S]) Apply(g int, x S) S { return x.Image(a.c, g) }
func (a action[S]) Key(x S) Key        { return x.Key() }

// StarSet is an indexed, frozen partition of states into stars. States are
// stored star by star, each star in ascending (|dx|², key) order, with the
// representative first.
type StarSet[S Member[S]] struct {
	cont      *Container
	threshold float64
	states    []S
	starOf    []StarIndex
	stars     [][]StateIndex
	index     map[Key]StateIndex
}

// NewStarSet closes items under the group, drops duplicates, and partitions
// the result into stars. A non-positive threshold selects
// orbit.DefaultThreshold; it separates shells of different |dx|².
//
// Implementation:
//   - Stage 1: add every missing symmetry image (stars are always complete).
//   - Stage 2: sort by (|dx|², key).
//   - Stage 3: orbit.Partition; states are then laid out star by star.
//
// Complexity: O(n·|G|) state images.
func NewStarSet[S Member[S]](c *Container, items []S, threshold float64) (*StarSet[S], error) {
	if c == nil {
		return nil, statesErrorf(opStarSet, orbit.ErrNilAction)
	}
	if threshold <= 0 {
		threshold = orbit.DefaultThreshold
	}
	ss := &StarSet[S]{cont: c, threshold: threshold, index: make(map[Key]StateIndex)}
	if err := ss.append(items); err != nil {
		return nil, statesErrorf(opStarSet, err)
	}

	return ss, nil
}

// append closes, sorts and partitions the states of items not yet present,
// adding them as new stars after the existing ones.
func (ss *StarSet[S]) append(items []S) error {
	act := action[S]{c: ss.cont}
	seen := make(map[Key]struct{}, len(items))
	var fresh []S
	for _, x := range items {
		for _, y := range orbit.Orbit[S, Key](act, x) {
			k := y.Key()
			if _, ok := ss.index[k]; ok {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			fresh = append(fresh, y)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	norms := make(map[Key]float64, len(fresh))
	for _, x := range fresh {
		norms[x.Key()] = ss.cont.Norm2(x)
	}
	tol := ss.threshold
	sort.SliceStable(fresh, func(i, j int) bool {
		ni, nj := norms[fresh[i].Key()], norms[fresh[j].Key()]
		if math.Abs(ni-nj) > tol {
			return ni < nj
		}

		return fresh[i].Key().Less(fresh[j].Key())
	})
	classes, err := orbit.Partition[S, Key](act, fresh, func(x S) float64 { return norms[x.Key()] }, tol)
	if err != nil {
		return err
	}
	for _, class := range classes {
		star := StarIndex(len(ss.stars))
		members := make([]StateIndex, 0, len(class))
		for _, i := range class {
			idx := StateIndex(len(ss.states))
			ss.states = append(ss.states, fresh[i])
			ss.starOf = append(ss.starOf, star)
			ss.index[fresh[i].Key()] = idx
			members = append(members, idx)
		}
		ss.stars = append(ss.stars, members)
	}

	return nil
}

// Extend returns a new star set holding every state of ss followed by the
// symmetry closure of items. Existing states keep their StateIndex and
// StarIndex; ss itself is not modified.
func (ss *StarSet[S]) Extend(items []S) (*StarSet[S], error) {
	out := ss.clone()
	if err := out.append(items); err != nil {
		return nil, statesErrorf(opExtend, err)
	}

	return out, nil
}

func (ss *StarSet[S]) clone() *StarSet[S] {
	out := &StarSet[S]{
		cont:      ss.cont,
		threshold: ss.threshold,
		states:    append([]S(nil), ss.states...),
		starOf:    append([]StarIndex(nil), ss.starOf...),
		stars:     make([][]StateIndex, len(ss.stars)),
		index:     make(map[Key]StateIndex, len(ss.index)),
	}
	for i, st := range ss.stars {
		out.stars[i] = append([]StateIndex(nil), st...)
	}
	for k, v := range ss.index {
		out.index[k] = v
	}

	return out
}

// Restore rebuilds a star set from stored states and their star indices,
// checking that every star is one complete orbit.
//
// Errors: ErrNotClosed.
func Restore[S Member[S]](c *Container, states []S, starOf []StarIndex, threshold float64) (*StarSet[S], error) {
	if c == nil {
		return nil, statesErrorf(opRestore, orbit.ErrNilAction)
	}
	if len(states) != len(starOf) {
		return nil, statesErrorf(opRestore, fmt.Errorf("%w: %d states, %d star indices", ErrNotClosed, len(states), len(starOf)))
	}
	if threshold <= 0 {
		threshold = orbit.DefaultThreshold
	}
	ss := &StarSet[S]{
		cont:      c,
		threshold: threshold,
		states:    append([]S(nil), states...),
		starOf:    append([]StarIndex(nil), starOf...),
		index:     make(map[Key]StateIndex, len(states)),
	}
	for i, st := range states {
		k := starOf[i]
		if k < 0 || int(k) > len(ss.stars) {
			return nil, statesErrorf(opRestore, fmt.Errorf("%w: star %d out of order", ErrNotClosed, k))
		}
		if int(k) == len(ss.stars) {
			ss.stars = append(ss.stars, nil)
		}
		ss.stars[k] = append(ss.stars[k], StateIndex(i))
		if _, dup := ss.index[st.Key()]; dup {
			return nil, statesErrorf(opRestore, fmt.Errorf("%w: duplicate state %v", ErrNotClosed, st))
		}
		ss.index[st.Key()] = StateIndex(i)
	}
	act := action[S]{c: c}
	for k, members := range ss.stars {
		keys := orbit.OrbitKeys[S, Key](act, ss.states[members[0]])
		if len(keys) != len(members) {
			return nil, statesErrorf(opRestore, fmt.Errorf("%w: star %d has %d of %d states", ErrNotClosed, k, len(members), len(keys)))
		}
		for _, i := range members {
			if _, ok := keys[ss.states[i].Key()]; !ok {
				return nil, statesErrorf(opRestore, fmt.Errorf("%w: state %d is not in star %d", ErrNotClosed, i, k))
			}
		}
	}

	return ss, nil
}

// Container returns the container the set was built on.
func (ss *StarSet[S]) Container() *Container { return ss.cont }

// NumStates returns the number of states.
func (ss *StarSet[S]) NumStates() int { return len(ss.states) }

// NumStars returns the number of stars.
func (ss *StarSet[S]) NumStars() int { return len(ss.stars) }

// State returns state i.
func (ss *StarSet[S]) State(i StateIndex) S { return ss.states[i] }

// States returns a copy of every state in index order.
func (ss *StarSet[S]) States() []S { return append([]S(nil), ss.states...) }

// StarIndices returns a copy of the star index of every state.
func (ss *StarSet[S]) StarIndices() []StarIndex { return append([]StarIndex(nil), ss.starOf...) }

// Index looks up a state.
func (ss *StarSet[S]) Index(s S) (StateIndex, bool) {
	i, ok := ss.index[s.Key()]

	return i, ok
}

// StarOf returns the star containing state i.
func (ss *StarSet[S]) StarOf(i StateIndex) StarIndex { return ss.starOf[i] }

// StarOfState returns the star containing s, or NoStar.
func (ss *StarSet[S]) StarOfState(s S) StarIndex {
	i, ok := ss.index[s.Key()]
	if !ok {
		return NoStar
	}

	return ss.starOf[i]
}

// Star returns the member indices of star k; the slice must not be
// modified.
func (ss *StarSet[S]) Star(k StarIndex) []StateIndex { return ss.stars[k] }

// Rep returns the representative (first) state of star k.
func (ss *StarSet[S]) Rep(k StarIndex) S { return ss.states[ss.stars[k][0]] }

// Dx returns the displacement of state i.
func (ss *StarSet[S]) Dx(i StateIndex) crystal.Vec { return ss.cont.Dx(ss.states[i]) }

// Symmetric reports whether some group operation maps a onto b.
func (ss *StarSet[S]) Symmetric(a, b S) bool {
	_, ok := orbit.First[S, Key](action[S]{c: ss.cont}, a, b)

	return ok
}

// FirstOp returns the first operation mapping a onto b.
func (ss *StarSet[S]) FirstOp(a, b S) (int, bool) {
	return orbit.First[S, Key](action[S]{c: ss.cont}, a, b)
}
