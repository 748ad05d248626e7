/*
* Stratified sample view module
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

package dataset

import (
	"math/rand/v2"
)

// Stratified holds the points of each class for a fixed set of features.
// Points are shared between views and must not be modified.
type Stratified struct {
	Classes []string
	Groups  [][]Point
	Dim     int
}

// Resample draws, independently per class, as many points as the class holds,
// with replacement.
func (s Stratified) Resample(rng *rand.Rand) Stratified {
	groups := make([][]Point, len(s.Groups))
	for c, g := range s.Groups {
		out := make([]Point, len(g))
		for i := range out {
			out[i] = g[rng.IntN(len(g))]
		}
		groups[c] = out
	}
	return Stratified{Classes: s.Classes, Groups: groups, Dim: s.Dim}
}

// Counts returns the number of points per class.
func (s Stratified) Counts() []int {
	counts := make([]int, len(s.Groups))
	for c, g := range s.Groups {
		counts[c] = len(g)
	}
	return counts
}

func (s Stratified) Total() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g)
	}
	return n
}

// Column returns dimension dim of the points of class c.
func (s Stratified) Column(c, dim int) []float64 {
	col := make([]float64, len(s.Groups[c]))
	for i, p := range s.Groups[c] {
		col[i] = p[dim]
	}
	return col
}

// Priors returns class probabilities: uniform, or proportional to class size
// when empirical is set.
func (s Stratified) Priors(empirical bool) []float64 {
	priors := make([]float64, len(s.Groups))
	if !empirical {
		for c := range priors {
			priors[c] = 1 / float64(len(priors))
		}
		return priors
	}
	total := float64(s.Total())
	for c, g := range s.Groups {
		priors[c] = float64(len(g)) / total
	}
	return priors
}

// Constant reports whether every point of class c is identical.
func (s Stratified) Constant(c int) bool {
	g := s.Groups[c]
	for _, p := range g[min(1, len(g)):] {
		for j := range p {
			if p[j] != g[0][j] {
				return false
			}
		}
	}
	return true
}

// Distinct returns the number of distinct values of dimension dim in class c.
func (s Stratified) Distinct(c, dim int) int {
	seen := map[float64]struct{}{}
	for _, p := range s.Groups[c] {
		seen[p[dim]] = struct{}{}
	}
	return len(seen)
}
