/*
* Numerical entropy integration module
* Copyright (C) 2025  Artem Stefankiv
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU General Public License as published by
* the Free Software Foundation, either version 3 of the License, or
* (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package entropy

import (
	"math"
	"math/rand/v2"

	"github.com/Gilah-EnE/infoleak/internal/density"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// minIntervalPoints keeps narrow support intervals resolved.
const minIntervalPoints = 33

// gridEntropy integrates -p log2 p with the trapezoid rule over the support
// of u. The estimate must agree with the one on every other grid point, and
// the integrated mass must be one, both within tol.
func gridEntropy(u density.Univariate, resolution int, tol float64) (float64, error) {
	support := u.Support()
	total := 0.0
	for _, iv := range support {
		total += iv.Len()
	}
	if len(support) == 0 || !(total > 0) {
		return 0, leakerr.Divergencef("density has empty support")
	}

	var hFull, hHalf, mass float64
	points := 0
	for _, iv := range support {
		n := max(minIntervalPoints, int(float64(resolution)*iv.Len()/total))
		if n%2 == 0 {
			n++
		}
		points += n
		step := iv.Len() / float64(n-1)

		var full, half, m float64
		for i := 0; i < n; i++ {
			p := u.PDF(iv.Lo + float64(i)*step)
			f := 0.0
			if p > 0 {
				f = -p * math.Log2(p)
			}
			w := 1.0
			if i == 0 || i == n-1 {
				w = 0.5
			}
			full += w * f
			m += w * p
			if i%2 == 0 {
				half += w * f
			}
		}
		hFull += full * step
		hHalf += half * 2 * step
		mass += m * step
	}

	if math.Abs(hFull-hHalf) > tol {
		return 0, leakerr.Divergencef("grid entropy moved %.3g bits between %d and %d points (tolerance %g)",
			math.Abs(hFull-hHalf), points/2, points, tol)
	}
	if math.Abs(mass-1) > tol {
		return 0, leakerr.Divergencef("grid integrates density mass to %.6f", mass)
	}
	return hFull, nil
}

// mcEntropy averages -log2 p over n draws from d.
func mcEntropy(d density.Density, rng *rand.Rand, n int) (float64, error) {
	if rng == nil {
		return 0, leakerr.Configurationf("monte-carlo integration needs a random source")
	}
	sum := 0.0
	for _, x := range d.Sample(rng, n) {
		sum += d.LogDensity(x)
	}
	h := -sum / float64(n) / math.Ln2
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, leakerr.Divergencef("monte-carlo log density is not finite")
	}
	return h, nil
}
