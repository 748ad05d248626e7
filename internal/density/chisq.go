/*
* Pearson chi-squared homogeneity module
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

package density

import (
	"math"
	"sort"
)

// ChiSquareHomogeneity computes Pearson's chi-squared statistic for the
// class x value contingency table formed by the per-class frequencies, and
// its degrees of freedom. A large statistic means the classes differ.
func ChiSquareHomogeneity(perClass []*Frequency) (float64, int) {
	colTotals := map[string]int{}
	grand := 0
	for _, f := range perClass {
		for k, v := range f.counts {
			colTotals[k] += v
		}
		grand += f.total
	}
	if grand == 0 {
		return 0, 0
	}

	keys := make([]string, 0, len(colTotals))
	for k := range colTotals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var chiSquare, observed, expected float64
	for _, f := range perClass {
		for _, k := range keys {
			col := colTotals[k]
			observed = float64(f.counts[k])
			expected = float64(f.total) * float64(col) / float64(grand)
			if expected > 0 {
				chiSquare += math.Pow(observed-expected, 2) / expected
			}
		}
	}
	dof := (len(perClass) - 1) * (len(colTotals) - 1)
	return chiSquare, dof
}
