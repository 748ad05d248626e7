/*
* Mutual information estimation module
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
	"strings"

	"github.com/Gilah-EnE/infoleak/internal/density"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Integration methods.
const (
	Auto       = "auto"
	Grid       = "grid"
	MonteCarlo = "montecarlo"
)

// Estimator holds the numerical settings for entropy integration.
type Estimator struct {
	// Method is Auto (grid for one dimension, Monte-Carlo otherwise), Grid or
	// MonteCarlo. Grid integration only applies to one-dimensional densities.
	Method            string
	GridResolution    int
	Tolerance         float64
	MonteCarloSamples int
	// ClampNegative reports negative MI estimates as zero with Result.Clamped set.
	ClampNegative bool
}

// Result is one mutual information estimate. Raw keeps the unclamped value.
type Result struct {
	Bits    float64
	Raw     float64
	Clamped bool
}

func (e Estimator) finish(raw float64) Result {
	if raw < 0 && e.ClampNegative {
		return Result{Bits: 0, Raw: raw, Clamped: true}
	}
	return Result{Bits: raw, Raw: raw}
}

func (e Estimator) useGrid(d density.Density) bool {
	if d.Dim() != 1 {
		return false
	}
	if _, ok := d.(density.Univariate); !ok {
		return false
	}
	return strings.ToLower(e.Method) != MonteCarlo
}

// DifferentialEntropy estimates -∫ p log2 p. rng is only used by Monte-Carlo
// integration.
func (e Estimator) DifferentialEntropy(d density.Density, rng *rand.Rand) (float64, error) {
	if e.useGrid(d) {
		return gridEntropy(d.(density.Univariate), e.GridResolution, e.Tolerance)
	}
	return mcEntropy(d, rng, e.MonteCarloSamples)
}

// ConditionalEntropy is the prior-weighted sum of the class entropies.
func (e Estimator) ConditionalEntropy(perClass []density.Density, priors []float64, rng *rand.Rand) (float64, error) {
	if len(perClass) == 0 || len(perClass) != len(priors) {
		return 0, leakerr.Configurationf("%d class densities for %d priors", len(perClass), len(priors))
	}
	var h float64
	for c, d := range perClass {
		hc, err := e.DifferentialEntropy(d, rng)
		if err != nil {
			return 0, err
		}
		h += priors[c] * hc
	}
	return h, nil
}

// MutualInformation estimates H(overall) - H(F|C) where the overall density
// is the prior-weighted mixture of the class densities. With Monte-Carlo
// integration the same class draws serve both terms.
func (e Estimator) MutualInformation(perClass []density.Density, priors []float64, rng *rand.Rand) (Result, error) {
	overall, err := density.NewMixture(perClass, priors)
	if err != nil {
		return Result{}, err
	}

	if e.useGrid(overall) {
		for _, d := range perClass {
			if _, ok := d.(density.Univariate); !ok {
				return Result{}, leakerr.Configurationf("grid integration needs univariate class densities")
			}
		}
		hAll, err := e.DifferentialEntropy(overall, rng)
		if err != nil {
			return Result{}, err
		}
		hCond, err := e.ConditionalEntropy(perClass, priors, rng)
		if err != nil {
			return Result{}, err
		}
		return e.finish(hAll - hCond), nil
	}

	var hAll, hCond float64
	for c, d := range perClass {
		w := overall.Weights[c]
		if w == 0 {
			continue
		}
		m := max(1, int(math.Round(float64(e.MonteCarloSamples)*w)))
		var sumClass, sumAll float64
		for _, x := range d.Sample(rng, m) {
			sumClass += d.LogDensity(x)
			sumAll += overall.LogDensity(x)
		}
		hc := -sumClass / float64(m) / math.Ln2
		ha := -sumAll / float64(m) / math.Ln2
		if math.IsNaN(hc) || math.IsInf(hc, 0) || math.IsNaN(ha) || math.IsInf(ha, 0) {
			return Result{}, leakerr.Divergencef("monte-carlo log density is not finite for class %d", c)
		}
		hCond += w * hc
		hAll += w * ha
	}
	return e.finish(hAll - hCond), nil
}
