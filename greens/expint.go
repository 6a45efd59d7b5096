// SPDX-License-Identifier: MIT

package greens

import "math"

const eulerGamma = 0.57721566490153286061

// E1 returns the exponential integral ∫_z^∞ e^{-t}/t dt for z > 0: power
// series below 1, Lentz continued fraction above.
func E1(z float64) float64 {
	switch {
	case z <= 0 || math.IsNaN(z):
		return math.NaN()
	case z < 1:
		sum, term := 0.0, 1.0
		for k := 1; k < 100; k++ {
			term *= -z / float64(k)
			d := term / float64(k)
			sum += d
			if math.Abs(d) < 1e-17*math.Abs(sum) {
				break
			}
		}

		return -eulerGamma - math.Log(z) - sum
	default:
		const tiny = 1e-300
		b := z + 1
		c := 1 / tiny
		d := 1 / b
		h := d
		for i := 1; i < 300; i++ {
			an := -float64(i * i)
			b += 2
			d = 1 / (an*d + b)
			c = b + an/c
			del := c * d
			h *= del
			if math.Abs(del-1) < 1e-16 {
				break
			}
		}

		return h * math.Exp(-z)
	}
}
