/*
* Kolmogorov goodness-of-fit module
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

// KSResult is the Kolmogorov-Smirnov distance between a fitted KDE and the
// empirical distribution of the samples it was fitted to.
type KSResult struct {
	Statistic       float64
	MaxDiffPosition int
	N               int
	Critical01      float64
	Critical05      float64
}

// Rejected reports whether the fit is rejected at the 5% level.
func (r KSResult) Rejected() bool { return r.Statistic > r.Critical05 }

// KolmogorovSmirnov compares the CDF of a one-dimensional KDE with the
// empirical CDF of samples.
func KolmogorovSmirnov(k *KDE, samples []float64) KSResult {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	n := len(sorted)

	var ksStatistic float64
	maxDiffPosition := 0
	for idx, x := range sorted {
		theoretical := k.CDF(x)
		below := math.Abs(theoretical - float64(idx)/float64(n))
		above := math.Abs(theoretical - float64(idx+1)/float64(n))
		if d := math.Max(below, above); d > ksStatistic {
			ksStatistic = d
			maxDiffPosition = idx
		}
	}
	return KSResult{
		Statistic:       ksStatistic,
		MaxDiffPosition: maxDiffPosition,
		N:               n,
		Critical01:      1.63 / math.Sqrt(float64(n)),
		Critical05:      1.36 / math.Sqrt(float64(n)),
	}
}
