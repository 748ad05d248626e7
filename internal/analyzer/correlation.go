/*
* Feature correlation module
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

package analyzer

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
)

// Correlation is the Pearson correlation of two features over the samples
// where both are present. ok is false when either feature has no variance
// there.
func Correlation(ds *dataset.Dataset, f1, f2 int) (r float64, ok bool) {
	var xs, ys []float64
	for i := 0; i < ds.Len(); i++ {
		values := ds.Sample(i).Values
		if math.IsNaN(values[f1]) || math.IsNaN(values[f2]) {
			continue
		}
		xs = append(xs, values[f1])
		ys = append(ys, values[f2])
	}

	for _, col := range [][]float64{xs, ys} {
		std, err := stats.StandardDeviation(col)
		if err != nil || std == 0 {
			return 0, false
		}
	}
	correlation, err := stats.Correlation(xs, ys)
	if err != nil {
		return 0, false
	}
	return correlation, true
}
