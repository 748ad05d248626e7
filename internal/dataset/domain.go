/*
* Feature domain module
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
	"fmt"
	"math"
	"strings"
)

// Domain selects the estimator variant for a feature.
type Domain int

const (
	Continuous Domain = iota
	Discrete
)

// DefaultMaxDiscreteLevels bounds the number of integer levels InferDomains
// still treats as discrete.
const DefaultMaxDiscreteLevels = 16

func (d Domain) String() string {
	switch d {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// ParseDomain accepts the names produced by String.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "c":
		return Continuous, nil
	case "discrete", "d":
		return Discrete, nil
	default:
		return 0, fmt.Errorf("unknown feature domain %q", s)
	}
}

// InferDomains marks a column discrete when every present value is an integer
// and it takes at most maxLevels distinct values. Missing values are ignored.
func InferDomains(x [][]float64, maxLevels int) []Domain {
	if len(x) == 0 {
		return nil
	}
	dim := len(x[0])
	domains := make([]Domain, dim)
	for j := 0; j < dim; j++ {
		levels := map[float64]struct{}{}
		discrete := true
		for _, row := range x {
			if j >= len(row) {
				continue
			}
			v := row[j]
			if math.IsNaN(v) {
				continue
			}
			if v != math.Trunc(v) {
				discrete = false
				break
			}
			levels[v] = struct{}{}
			if len(levels) > maxLevels {
				discrete = false
				break
			}
		}
		if discrete && len(levels) > 0 {
			domains[j] = Discrete
		}
	}
	return domains
}
