// SPDX-License-Identifier: MIT

package matrix_test

import (
	"fmt"

	"github.com/sohamch/Onsager/matrix"
)

func ExampleFactorize() {
	a, _ := matrix.NewFromRows([][]float64{{4, 1}, {1, 3}})
	lu, _ := matrix.Factorize(a)
	x, _ := lu.Solve([]float64{1, 2})
	fmt.Printf("%.4f %.4f det=%.1f\n", x[0], x[1], lu.Det())
	// Output: 0.0909 0.6364 det=11.0
}
