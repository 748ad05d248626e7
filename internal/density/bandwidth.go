/*
* Bandwidth selection module
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
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Bandwidth rules.
const (
	Silverman = "silverman"
	Scott     = "scott"
	ROT       = "rot"
)

// Options control how a KDE picks its bandwidths.
type Options struct {
	Rule string
	// Bandwidth overrides the rule per dimension; zero entries use the rule.
	Bandwidth []float64
	// MinBandwidth replaces a zero bandwidth.
	MinBandwidth float64
}

func (o Options) bandwidths(cols [][]float64) ([]float64, error) {
	dim := len(cols)
	bw := make([]float64, dim)
	for j, col := range cols {
		if j < len(o.Bandwidth) && o.Bandwidth[j] > 0 {
			bw[j] = o.Bandwidth[j]
			continue
		}
		h, err := ruleBandwidth(o.Rule, col, dim)
		if err != nil {
			return nil, err
		}
		if !(h > 0) {
			h = o.MinBandwidth
		}
		if !(h > 0) {
			return nil, leakerr.InsufficientDataf("dimension %d has zero spread and no minimum bandwidth", j)
		}
		bw[j] = h
	}
	return bw, nil
}

// ruleBandwidth applies a reference rule to one column of a dim-dimensional sample.
func ruleBandwidth(rule string, col []float64, dim int) (float64, error) {
	n := float64(len(col))
	sigma, err := stats.StandardDeviationSample(col)
	if err != nil {
		return 0, leakerr.InsufficientDataf("bandwidth: %v", err)
	}
	iqr, err := stats.InterQuartileRange(col)
	if err != nil || math.IsNaN(iqr) {
		iqr = 0
	}
	spread := sigma
	if iqr > 0 {
		spread = math.Min(sigma, iqr/1.349)
	}

	d := float64(dim)
	switch strings.ToLower(rule) {
	case Scott:
		return sigma * math.Pow(n, -1/(d+4)), nil
	case ROT:
		return spread * math.Pow(n, -1/(d+4)), nil
	case Silverman, "":
		if dim == 1 {
			return 0.9 * spread * math.Pow(n, -0.2), nil
		}
		return math.Pow(4/(d+2), 1/(d+4)) * spread * math.Pow(n, -1/(d+4)), nil
	default:
		return 0, leakerr.Configurationf("unknown bandwidth rule %q", rule)
	}
}
