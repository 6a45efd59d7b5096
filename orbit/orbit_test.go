// SPDX-License-Identifier: MIT

package orbit_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohamch/Onsager/orbit"
)

type pt [2]int

// d4 is the symmetry group of the square acting on integer points.
type d4 struct{}

var d4ops = [8][2][2]int{
	{{1, 0}, {0, 1}}, {{0, -1}, {1, 0}}, {{-1, 0}, {0, -1}}, {{0, 1}, {-1, 0}},
	{{1, 0}, {0, -1}}, {{-1, 0}, {0, 1}}, {{0, 1}, {1, 0}}, {{0, -1}, {-1, 0}},
}

func (d4) Order() int { return len(d4ops) }

func (d4) Apply(g int, x pt) pt {
	m := d4ops[g]
	return pt{m[0][0]*x[0] + m[0][1]*x[1], m[1][0]*x[0] + m[1][1]*x[1]}
}

func (d4) Key(x pt) pt { return x }

func norm(x pt) float64 { return float64(x[0]*x[0] + x[1]*x[1]) }

func disc(r int) []pt {
	var out []pt
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			if x*x+y*y <= r*r {
				out = append(out, pt{x, y})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return norm(out[i]) < norm(out[j]) })

	return out
}

func TestOrbit_SizesFollowStabilizer(t *testing.T) {
	var a d4
	for _, tc := range []struct {
		x    pt
		size int
	}{
		{pt{0, 0}, 1},
		{pt{1, 0}, 4},
		{pt{1, 1}, 4},
		{pt{2, 1}, 8},
	} {
		o := orbit.Orbit[pt, pt](a, tc.x)
		assert.Len(t, o, tc.size, "orbit of %v", tc.x)
		assert.Equal(t, tc.x, o[0], "identity image first")
		assert.Len(t, orbit.Stabilizer[pt, pt](a, tc.x), a.Order()/tc.size)
	}
}

func TestEquivalent(t *testing.T) {
	var a d4
	ops := orbit.Equivalent[pt, pt](a, pt{1, 0}, pt{0, 1})
	require.NotEmpty(t, ops)
	for _, g := range ops {
		assert.Equal(t, pt{0, 1}, a.Apply(g, pt{1, 0}))
	}
	assert.Empty(t, orbit.Equivalent[pt, pt](a, pt{1, 0}, pt{1, 1}))

	g, ok := orbit.First[pt, pt](a, pt{2, 1}, pt{-1, -2})
	require.True(t, ok)
	assert.Equal(t, pt{-1, -2}, a.Apply(g, pt{2, 1}))
}

func TestPartition_MatchesNaive(t *testing.T) {
	var a d4
	items := disc(5)
	fast, err := orbit.Partition[pt, pt](a, items, norm, 0)
	require.NoError(t, err)
	assert.Equal(t, orbit.PartitionNaive[pt, pt](a, items), fast)

	seen := make(map[int]int)
	for c, class := range fast {
		for _, i := range class {
			_, dup := seen[i]
			require.False(t, dup, "element %d in two classes", i)
			seen[i] = c
		}
		// closed: every image of the representative is in the class
		members := make(map[pt]bool)
		for _, i := range class {
			members[items[i]] = true
		}
		for _, y := range orbit.Orbit[pt, pt](a, items[class[0]]) {
			assert.True(t, members[y], "class %d misses %v", c, y)
		}
	}
	assert.Len(t, seen, len(items))
}

func TestPartition_Errors(t *testing.T) {
	_, err := orbit.Partition[pt, pt](nil, []pt{{1, 0}}, norm, 0)
	assert.ErrorIs(t, err, orbit.ErrNilAction)

	_, err = orbit.Partition[pt, pt](d4{}, []pt{{2, 0}, {1, 0}}, norm, 0)
	assert.ErrorIs(t, err, orbit.ErrUnsorted)
}

func BenchmarkPartition(b *testing.B) {
	var a d4
	items := disc(30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = orbit.Partition[pt, pt](a, items, norm, 0)
	}
}

func BenchmarkPartitionNaive(b *testing.B) {
	var a d4
	items := disc(30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = orbit.PartitionNaive[pt, pt](a, items)
	}
}
