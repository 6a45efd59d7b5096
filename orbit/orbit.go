// SPDX-License-Identifier: MIT

package orbit

import (
	"errors"
	"fmt"
)

// ErrUnsorted is returned by Partition when the norms are not ascending.
var ErrUnsorted = errors.New("orbit: elements not sorted by norm")

// ErrNilAction is returned when a nil action is supplied.
var ErrNilAction = errors.New("orbit: nil action")

// DefaultThreshold separates two shells in Partition.
const DefaultThreshold = 1e-8

const opPartition = "Partition"

func orbitErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// Action is a finite group acting on elements of type T, with K the
// comparable identity of an element.
type Action[T any, K comparable] interface {
	// Order is the number of group operations; indices run 0..Order()-1.
	Order() int
	// Apply returns the image of x under operation g.
	Apply(g int, x T) T
	// Key identifies x; two elements are equal iff their keys are.
	Key(x T) K
}

// Orbit returns the distinct images of x, in order of first appearance.
//
// Complexity: O(|G|) applications, O(|orbit|) extra space.
func Orbit[T any, K comparable](a Action[T, K], x T) []T {
	seen := make(map[K]struct{}, a.Order())
	out := make([]T, 0, a.Order())
	for g := 0; g < a.Order(); g++ {
		y := a.Apply(g, x)
		k := a.Key(y)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, y)
	}

	return out
}

// OrbitKeys returns the key set of the orbit of x.
func OrbitKeys[T any, K comparable](a Action[T, K], x T) map[K]struct{} {
	seen := make(map[K]struct{}, a.Order())
	for g := 0; g < a.Order(); g++ {
		seen[a.Key(a.Apply(g, x))] = struct{}{}
	}

	return seen
}

// Equivalent returns every operation g with g·x == y, ascending; nil when x
// and y are not symmetry related.
func Equivalent[T any, K comparable](a Action[T, K], x, y T) []int {
	ky := a.Key(y)
	var out []int
	for g := 0; g < a.Order(); g++ {
		if a.Key(a.Apply(g, x)) == ky {
			out = append(out, g)
		}
	}

	return out
}

// First returns the smallest g with g·x == y.
func First[T any, K comparable](a Action[T, K], x, y T) (int, bool) {
	ky := a.Key(y)
	for g := 0; g < a.Order(); g++ {
		if a.Key(a.Apply(g, x)) == ky {
			return g, true
		}
	}

	return -1, false
}

// Stabilizer returns the operations fixing x.
func Stabilizer[T any, K comparable](a Action[T, K], x T) []int {
	return Equivalent(a, x, x)
}

// Partition splits items into symmetry classes. items must be sorted by
// ascending norm; elements whose norms differ by more than threshold are
// never compared. Each class lists indices into items in ascending order,
// and classes appear in order of their first member.
//
// Implementation:
//   - Stage 1: cut items into shells at norm jumps larger than threshold.
//   - Stage 2: within a shell, an element whose key is already claimed joins
//     that class; otherwise it opens a class and its orbit keys are claimed.
//
// Errors: ErrNilAction, ErrUnsorted.
//
// Complexity: O(n·|G|) applications, O(n) map space per shell.
func Partition[T any, K comparable](a Action[T, K], items []T, norm func(T) float64, threshold float64) ([][]int, error) {
	if a == nil {
		return nil, orbitErrorf(opPartition, ErrNilAction)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var (
		classes [][]int
		owner   map[K]int
		start   = 0
	)
	for start < len(items) {
		base := norm(items[start])
		end := start + 1
		for end < len(items) {
			n := norm(items[end])
			if n < norm(items[end-1])-threshold {
				return nil, orbitErrorf(opPartition, ErrUnsorted)
			}
			if n > base+threshold {
				break
			}
			end++
		}
		owner = make(map[K]int, end-start)
		for i := start; i < end; i++ {
			k := a.Key(items[i])
			if c, ok := owner[k]; ok {
				classes[c] = append(classes[c], i)

				continue
			}
			c := len(classes)
			classes = append(classes, []int{i})
			for key := range OrbitKeys(a, items[i]) {
				if _, taken := owner[key]; !taken {
					owner[key] = c
				}
			}
		}
		start = end
	}

	return classes, nil
}

// PartitionNaive splits items into symmetry classes by testing each element
// against the representative of every existing class. Ordering matches
// Partition for sorted input.
//
// Complexity: O(n·classes·|G|).
func PartitionNaive[T any, K comparable](a Action[T, K], items []T) [][]int {
	var (
		classes [][]int
		reps    []T
	)
	for i, x := range items {
		found := -1
		for c, r := range reps {
			if _, ok := First(a, r, x); ok {
				found = c

				break
			}
		}
		if found < 0 {
			reps = append(reps, x)
			classes = append(classes, []int{i})

			continue
		}
		classes[found] = append(classes[found], i)
	}

	return classes
}
