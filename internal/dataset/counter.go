/*
* Value counting functions library
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
	"strconv"
	"strings"
)

// Key renders a point as a map key. Negative zero is folded into zero.
func Key(p Point) string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		if v == 0 {
			v = 0
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// CountPoints counts occurrences of each distinct point.
func CountPoints(points []Point) map[string]int {
	counter := make(map[string]int)
	for _, p := range points {
		counter[Key(p)]++
	}
	return counter
}

// MergeCounts returns the key-wise sum of two counters.
func MergeCounts(counter1, counter2 map[string]int) map[string]int {
	result := make(map[string]int, len(counter1))
	for k, v := range counter1 {
		result[k] += v
	}
	for k, v := range counter2 {
		result[k] += v
	}
	return result
}
