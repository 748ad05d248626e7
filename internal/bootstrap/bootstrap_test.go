/*
* Bootstrap estimation tests
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

package bootstrap

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/entropy"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

func sampleData() dataset.Stratified {
	var a, b []dataset.Point
	for i := range 20 {
		a = append(a, dataset.Point{float64(i)})
		b = append(b, dataset.Point{float64(100 + i)})
	}
	return dataset.Stratified{Classes: []string{"a", "b"}, Groups: [][]dataset.Point{a, b}, Dim: 1}
}

// meanOfFirstClass is a cheap statistic that still depends on the resample.
func meanOfFirstClass(data dataset.Stratified, _ *rand.Rand) (entropy.Result, error) {
	m, err := stats.Mean(data.Column(0, 0))
	return entropy.Result{Bits: m, Raw: m}, err
}

func TestRunIsIndependentOfWorkers(t *testing.T) {
	cfg := Config{Iterations: 200, ConfidenceLevel: 0.95, Workers: 1, Seed: 42}
	serial, err := Run(context.Background(), sampleData(), meanOfFirstClass, cfg)
	require.NoError(t, err)

	cfg.Workers = 4
	pooled, err := Run(context.Background(), sampleData(), meanOfFirstClass, cfg)
	require.NoError(t, err)
	assert.Equal(t, serial, pooled)

	cfg.Seed = 43
	other, err := Run(context.Background(), sampleData(), meanOfFirstClass, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, serial.Point, other.Point)
}

func TestRunInterval(t *testing.T) {
	res, err := Run(context.Background(), sampleData(), meanOfFirstClass, Config{Iterations: 500, ConfidenceLevel: 0.9, Workers: 2, Seed: 1})
	require.NoError(t, err)
	assert.True(t, res.IntervalValid)
	assert.Equal(t, 500, res.Iterations)
	assert.LessOrEqual(t, res.Lo, res.Point)
	assert.GreaterOrEqual(t, res.Hi, res.Point)
	assert.Less(t, res.Lo, res.Hi)
	assert.InDelta(t, 9.5, res.Point, 0.5)
}

func TestRunFewIterationsHasNoInterval(t *testing.T) {
	res, err := Run(context.Background(), sampleData(), meanOfFirstClass, Config{Iterations: 10, ConfidenceLevel: 0.95, Seed: 1})
	require.NoError(t, err)
	assert.False(t, res.IntervalValid)
	assert.Equal(t, res.Point, res.Lo)
	assert.Equal(t, res.Point, res.Hi)
}

func TestRunFailingRoundFailsRun(t *testing.T) {
	calls := 0
	stat := func(data dataset.Stratified, rng *rand.Rand) (entropy.Result, error) {
		calls++
		if calls == 5 {
			return entropy.Result{}, leakerr.Divergencef("grid did not converge")
		}
		return meanOfFirstClass(data, rng)
	}
	_, err := Run(context.Background(), sampleData(), stat, Config{Iterations: 40, ConfidenceLevel: 0.95, Workers: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, leakerr.ErrEstimationDivergence))
	assert.Contains(t, err.Error(), "bootstrap round 4")
}

func TestRunCountsClampedRounds(t *testing.T) {
	stat := func(dataset.Stratified, *rand.Rand) (entropy.Result, error) {
		return entropy.Result{Bits: 0, Raw: -0.01, Clamped: true}, nil
	}
	res, err := Run(context.Background(), sampleData(), stat, Config{Iterations: 50, ConfidenceLevel: 0.95, Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 50, res.ClampedRounds)
	assert.Equal(t, 0.0, res.Point)
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := Run(context.Background(), sampleData(), meanOfFirstClass, Config{Iterations: 0, ConfidenceLevel: 0.95})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
	_, err = Run(context.Background(), sampleData(), meanOfFirstClass, Config{Iterations: 10, ConfidenceLevel: 1})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sampleData(), meanOfFirstClass, Config{Iterations: 10, ConfidenceLevel: 0.95, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixed(t *testing.T) {
	assert.Equal(t, Result{Point: 0.5, Lo: 0.5, Hi: 0.5, Iterations: 100}, Fixed(0.5, 100))
}

func TestSeeds(t *testing.T) {
	assert.Equal(t, FeatureSeed(7, 3), SubsetSeed(7, []int{3}))
	assert.NotEqual(t, FeatureSeed(7, 3), FeatureSeed(7, 4))
	assert.NotEqual(t, FeatureSeed(7, 3), FeatureSeed(8, 3))
	assert.NotEqual(t, SubsetSeed(7, []int{1, 2}), SubsetSeed(7, []int{1, 3}))
	assert.Equal(t, SubsetSeed(7, []int{1, 2}), SubsetSeed(7, []int{1, 2}))
}
