/*
* Entropy estimation module
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

// Package entropy turns fitted densities into Shannon entropies and mutual
// information, all in bits.
package entropy

import (
	"math"
	"sort"

	"github.com/Gilah-EnE/infoleak/internal/density"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Shannon returns the entropy of a counter holding total observations.
// Keys are visited in sorted order so the sum is reproducible.
func Shannon(counter map[string]int, total int) float64 {
	var p, entropy float64

	for _, k := range sortedKeys(counter) {
		p = float64(counter[k]) / float64(total)
		if p > 0 {
			entropy += p * math.Log2(p)
		}
	}
	return -entropy
}

// DiscreteMutualInformation computes H(F) - H(F|C) for per-class empirical
// frequencies, where the overall pmf is the prior-weighted mixture of the
// class pmfs.
func (e Estimator) DiscreteMutualInformation(perClass []*density.Frequency, priors []float64) (Result, error) {
	if len(perClass) == 0 || len(perClass) != len(priors) {
		return Result{}, leakerr.Configurationf("%d class frequencies for %d priors", len(perClass), len(priors))
	}

	union := map[string]int{}
	var hCond float64
	for c, f := range perClass {
		counts := f.Counts()
		for k, v := range counts {
			union[k] += v
		}
		hCond += priors[c] * Shannon(counts, f.Total())
	}

	var hMix float64
	for _, k := range sortedKeys(union) {
		p := 0.0
		for c, f := range perClass {
			p += priors[c] * f.Prob(k)
		}
		if p > 0 {
			hMix -= p * math.Log2(p)
		}
	}
	return e.finish(hMix - hCond), nil
}

func sortedKeys(counter map[string]int) []string {
	keys := make([]string, 0, len(counter))
	for k := range counter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
