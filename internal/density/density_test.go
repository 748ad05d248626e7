/*
* Density estimation tests
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
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

var defaultOpts = Options{Rule: Silverman, MinBandwidth: 0.001}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func TestFitUnivariateRejectsDegenerateInput(t *testing.T) {
	_, err := FitUnivariate([]float64{1}, defaultOpts)
	assert.True(t, errors.Is(err, leakerr.ErrInsufficientData))

	_, err = FitUnivariate([]float64{3, 3, 3, 3}, defaultOpts)
	assert.True(t, errors.Is(err, leakerr.ErrInsufficientData))

	// A given bandwidth makes a constant sample usable.
	k, err := FitUnivariate([]float64{3, 3, 3, 3}, Options{Bandwidth: []float64{0.5}})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{Lo: 0, Hi: 6}}, k.Support())
}

func TestSilvermanBandwidth(t *testing.T) {
	k, err := FitUnivariate(linspace(1, 10, 10), defaultOpts)
	require.NoError(t, err)
	// sigma = 3.0277, IQR/1.349 = 3.7065, 0.9 * 3.0277 * 10^-0.2
	assert.InDelta(t, 1.7193, k.Bandwidth()[0], 1e-3)
	assert.Equal(t, 10, k.N())
}

func TestBandwidthRules(t *testing.T) {
	xs := linspace(0, 1, 50)
	scott, err := FitUnivariate(xs, Options{Rule: Scott})
	require.NoError(t, err)
	rot, err := FitUnivariate(xs, Options{Rule: ROT})
	require.NoError(t, err)
	silverman, err := FitUnivariate(xs, Options{Rule: Silverman})
	require.NoError(t, err)
	assert.Greater(t, scott.Bandwidth()[0], silverman.Bandwidth()[0])
	assert.InDelta(t, silverman.Bandwidth()[0]/0.9, rot.Bandwidth()[0], 1e-12)

	_, err = FitUnivariate(xs, Options{Rule: "hall"})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
}

func TestBandwidthOverride(t *testing.T) {
	k, err := FitUnivariate(linspace(0, 1, 20), Options{Rule: Silverman, Bandwidth: []float64{0.25}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25}, k.Bandwidth())
}

func TestPDFIntegratesToOne(t *testing.T) {
	k, err := FitUnivariate([]float64{-3, -2.5, 0, 0.1, 4, 9}, defaultOpts)
	require.NoError(t, err)

	mass := 0.0
	for _, iv := range k.Support() {
		const steps = 4000
		dx := iv.Len() / steps
		for i := 0; i <= steps; i++ {
			w := 1.0
			if i == 0 || i == steps {
				w = 0.5
			}
			mass += w * k.PDF(iv.Lo+float64(i)*dx) * dx
		}
	}
	assert.InDelta(t, 1, mass, 1e-6)
}

func TestPDFMatchesLogDensity(t *testing.T) {
	k, err := FitUnivariate(linspace(-1, 1, 30), defaultOpts)
	require.NoError(t, err)
	for _, x := range []float64{-1.2, -0.3, 0, 0.77} {
		assert.InDelta(t, k.PDF(x), math.Exp(k.LogDensity(dataset.Point{x})), 1e-7)
	}
	vals := k.Evaluate([]dataset.Point{{0}, {100}})
	assert.Greater(t, vals[0], 0.0)
	assert.Equal(t, 0.0, vals[1])
}

func TestMultivariateLogDensity(t *testing.T) {
	points := []dataset.Point{{0, 0}, {1, 2}}
	k, err := Fit(points, Options{Bandwidth: []float64{0.5, 2}})
	require.NoError(t, err)

	x := dataset.Point{0.5, 1}
	want := 0.0
	for _, p := range points {
		z0 := (x[0] - p[0]) / 0.5
		z1 := (x[1] - p[1]) / 2
		want += math.Exp(-0.5*(z0*z0+z1*z1)) / (2 * math.Pi * 0.5 * 2)
	}
	want /= 2
	assert.InDelta(t, math.Log(want), k.LogDensity(x), 1e-12)
	assert.InDelta(t, want, k.Evaluate([]dataset.Point{x})[0], 1e-12)
}

func TestMultivariateZeroSpreadUsesMinimum(t *testing.T) {
	k, err := Fit([]dataset.Point{{1, 5}, {2, 5}, {3, 5}}, Options{Rule: Silverman, MinBandwidth: 0.01})
	require.NoError(t, err)
	assert.Equal(t, 0.01, k.Bandwidth()[1])

	_, err = Fit([]dataset.Point{{1, 5}}, defaultOpts)
	assert.True(t, errors.Is(err, leakerr.ErrInsufficientData))
}

func TestSampleIsDeterministic(t *testing.T) {
	k, err := FitUnivariate([]float64{0, 1, 2}, defaultOpts)
	require.NoError(t, err)
	a := k.Sample(rand.New(rand.NewPCG(7, 7)), 20)
	b := k.Sample(rand.New(rand.NewPCG(7, 7)), 20)
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)
}

func TestSupportMergesWindows(t *testing.T) {
	k, err := FitUnivariate([]float64{0, 0.1, 100, 100.1}, Options{Bandwidth: []float64{1}})
	require.NoError(t, err)
	support := k.Support()
	require.Len(t, support, 2)
	assert.InDelta(t, -6, support[0].Lo, 1e-9)
	assert.InDelta(t, 6.1, support[0].Hi, 1e-9)
	assert.InDelta(t, 94, support[1].Lo, 1e-9)
	assert.InDelta(t, 106.1, support[1].Hi, 1e-9)
}

func TestMixture(t *testing.T) {
	a, err := FitUnivariate([]float64{-1, 0, 1}, defaultOpts)
	require.NoError(t, err)
	b, err := FitUnivariate([]float64{9, 10, 11}, defaultOpts)
	require.NoError(t, err)

	m, err := NewMixture([]Density{a, b}, []float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, m.Weights)
	assert.Equal(t, 1, m.Dim())

	for _, x := range []float64{0, 5, 10} {
		want := 0.25*a.PDF(x) + 0.75*b.PDF(x)
		assert.InDelta(t, want, m.PDF(x), 1e-15)
		assert.InDelta(t, want, m.Evaluate([]dataset.Point{{x}})[0], 1e-15)
		if x != 5 {
			assert.InDelta(t, math.Log(want), m.LogDensity(dataset.Point{x}), 1e-9)
		}
	}
	assert.Len(t, m.Support(), 2)

	draws := m.Sample(rand.New(rand.NewPCG(1, 1)), 400)
	high := 0
	for _, p := range draws {
		if p[0] > 5 {
			high++
		}
	}
	assert.InDelta(t, 300, high, 40)
}

func TestMixtureValidation(t *testing.T) {
	a, err := FitUnivariate([]float64{0, 1}, defaultOpts)
	require.NoError(t, err)
	_, err = NewMixture([]Density{a}, []float64{1, 2})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
	_, err = NewMixture([]Density{a}, []float64{0})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
}

func TestFrequency(t *testing.T) {
	f, err := FitFrequency([]dataset.Point{{1}, {1}, {2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, 4, f.Total())
	assert.Equal(t, 0.5, f.Prob("1"))
	assert.Equal(t, 0.0, f.Prob("7"))
	assert.Equal(t, []string{"1", "2", "3"}, f.Keys())
	assert.Equal(t, map[string]int{"1": 2, "2": 1, "3": 1}, f.Counts())

	_, err = FitFrequency(nil)
	assert.True(t, errors.Is(err, leakerr.ErrInsufficientData))
}

func TestChiSquareHomogeneity(t *testing.T) {
	same1, _ := FitFrequency([]dataset.Point{{0}, {1}, {0}, {1}})
	same2, _ := FitFrequency([]dataset.Point{{1}, {0}, {1}, {0}})
	stat, dof := ChiSquareHomogeneity([]*Frequency{same1, same2})
	assert.InDelta(t, 0, stat, 1e-12)
	assert.Equal(t, 1, dof)

	pts := func(v float64) []dataset.Point {
		out := make([]dataset.Point, 10)
		for i := range out {
			out[i] = dataset.Point{v}
		}
		return out
	}
	a, _ := FitFrequency(pts(0))
	b, _ := FitFrequency(pts(1))
	stat, dof = ChiSquareHomogeneity([]*Frequency{a, b})
	assert.InDelta(t, 20, stat, 1e-12)
	assert.Equal(t, 1, dof)
}

func TestKolmogorovSmirnov(t *testing.T) {
	xs := linspace(-1, 1, 200)
	k, err := FitUnivariate(xs, defaultOpts)
	require.NoError(t, err)

	good := KolmogorovSmirnov(k, xs)
	assert.Equal(t, 200, good.N)
	assert.InDelta(t, 1.36/math.Sqrt(200), good.Critical05, 1e-12)
	assert.False(t, good.Rejected())

	shifted := linspace(2, 4, 200)
	bad := KolmogorovSmirnov(k, shifted)
	assert.True(t, bad.Rejected())
	assert.Greater(t, bad.Statistic, 0.9)
}
