/*
* Density estimation module
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

// Package density fits class-conditional probability densities: Gaussian
// kernel density estimates for continuous features and empirical frequencies
// for discrete ones.
package density

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Density is a continuous probability density over Dim() dimensions.
type Density interface {
	Dim() int
	Evaluate(points []dataset.Point) []float64
	LogDensity(x dataset.Point) float64
	Sample(rng *rand.Rand, n int) []dataset.Point
}

// Univariate is a one-dimensional density whose mass lies within Support.
type Univariate interface {
	Density
	PDF(x float64) float64
	Support() []Interval
}

// Interval is a closed range [Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

func (iv Interval) Len() float64 { return iv.Hi - iv.Lo }

// mergeIntervals sorts and joins overlapping intervals.
func mergeIntervals(ivs []Interval) []Interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := append([]Interval(nil), ivs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Lo <= last.Hi {
			last.Hi = math.Max(last.Hi, iv.Hi)
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Mixture is a weighted sum of densities of equal dimension.
type Mixture struct {
	Components []Density
	Weights    []float64
	logWeights []float64
	cumWeights []float64
}

// NewMixture normalizes weights to sum to one.
func NewMixture(components []Density, weights []float64) (*Mixture, error) {
	if len(components) == 0 || len(components) != len(weights) {
		return nil, leakerr.Configurationf("mixture needs one weight per component, got %d components and %d weights", len(components), len(weights))
	}
	dim := components[0].Dim()
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, leakerr.Configurationf("mixture weight %d is %v", i, w)
		}
		if components[i].Dim() != dim {
			return nil, leakerr.Configurationf("mixture component %d has dimension %d, want %d", i, components[i].Dim(), dim)
		}
		total += w
	}
	if total == 0 {
		return nil, leakerr.Configurationf("mixture weights sum to zero")
	}

	m := &Mixture{
		Components: components,
		Weights:    make([]float64, len(weights)),
		logWeights: make([]float64, len(weights)),
		cumWeights: make([]float64, len(weights)),
	}
	acc := 0.0
	for i, w := range weights {
		m.Weights[i] = w / total
		m.logWeights[i] = math.Log(m.Weights[i])
		acc += m.Weights[i]
		m.cumWeights[i] = acc
	}
	m.cumWeights[len(m.cumWeights)-1] = 1
	return m, nil
}

func (m *Mixture) Dim() int { return m.Components[0].Dim() }

func (m *Mixture) LogDensity(x dataset.Point) float64 {
	terms := make([]float64, len(m.Components))
	for i, c := range m.Components {
		terms[i] = m.logWeights[i] + c.LogDensity(x)
	}
	return floats.LogSumExp(terms)
}

func (m *Mixture) Evaluate(points []dataset.Point) []float64 {
	out := make([]float64, len(points))
	for i, c := range m.Components {
		vals := c.Evaluate(points)
		for j, v := range vals {
			out[j] += m.Weights[i] * v
		}
	}
	return out
}

// Sample draws each point from a component chosen by weight.
func (m *Mixture) Sample(rng *rand.Rand, n int) []dataset.Point {
	out := make([]dataset.Point, 0, n)
	for range n {
		u := rng.Float64()
		i := sort.SearchFloat64s(m.cumWeights, u)
		if i >= len(m.Components) {
			i = len(m.Components) - 1
		}
		out = append(out, m.Components[i].Sample(rng, 1)...)
	}
	return out
}

// PDF requires every component to be Univariate.
func (m *Mixture) PDF(x float64) float64 {
	p := 0.0
	for i, c := range m.Components {
		p += m.Weights[i] * c.(Univariate).PDF(x)
	}
	return p
}

// Support is the union of the component supports.
func (m *Mixture) Support() []Interval {
	var ivs []Interval
	for _, c := range m.Components {
		ivs = append(ivs, c.(Univariate).Support()...)
	}
	return mergeIntervals(ivs)
}
