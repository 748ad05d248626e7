/*
* Empirical frequency estimation module
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
	"sort"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Frequency is the empirical probability mass function of discrete points.
type Frequency struct {
	counts map[string]int
	total  int
}

// FitFrequency counts the distinct points.
func FitFrequency(points []dataset.Point) (*Frequency, error) {
	if len(points) == 0 {
		return nil, leakerr.InsufficientDataf("frequency estimate needs at least 1 sample")
	}
	return &Frequency{counts: dataset.CountPoints(points), total: len(points)}, nil
}

func (f *Frequency) Total() int { return f.total }

// Prob returns the estimated probability of key.
func (f *Frequency) Prob(key string) float64 {
	return float64(f.counts[key]) / float64(f.total)
}

// Counts returns a copy of the counter.
func (f *Frequency) Counts() map[string]int {
	return dataset.MergeCounts(f.counts, nil)
}

// Keys returns the observed values in sorted order.
func (f *Frequency) Keys() []string {
	keys := make([]string, 0, len(f.counts))
	for k := range f.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
