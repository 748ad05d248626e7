/*
* Bootstrap estimation module
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

// Package bootstrap wraps an MI statistic in a stratified percentile
// bootstrap.
package bootstrap

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/entropy"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/parallel"
)

// MinIntervalIterations is the fewest rounds for which a percentile interval
// is reported.
const MinIntervalIterations = 30

// Config controls one bootstrap run.
type Config struct {
	Iterations      int
	ConfidenceLevel float64
	Workers         int
	Seed            uint64
}

// Statistic computes the estimate on one resampled view. rng is the round's
// generator, already advanced past the resampling draws.
type Statistic func(data dataset.Stratified, rng *rand.Rand) (entropy.Result, error)

// Result summarizes the bootstrap distribution.
type Result struct {
	Point         float64
	Lo, Hi        float64
	IntervalValid bool
	Iterations    int
	ClampedRounds int
}

type round struct {
	res entropy.Result
	err error
}

// Run evaluates statistic on cfg.Iterations stratified resamples of data. Round r
// draws from PCG(cfg.Seed, r), so the result does not depend on cfg.Workers.
// Any failing round fails the run.
func Run(ctx context.Context, data dataset.Stratified, statistic Statistic, cfg Config) (Result, error) {
	if cfg.Iterations < 1 {
		return Result{}, leakerr.Configurationf("bootstrap needs at least 1 iteration, got %d", cfg.Iterations)
	}
	if !(cfg.ConfidenceLevel > 0 && cfg.ConfidenceLevel < 1) {
		return Result{}, leakerr.Configurationf("confidence level %v outside (0, 1)", cfg.ConfidenceLevel)
	}

	rounds, _, err := parallel.Map(ctx, cfg.Iterations, cfg.Workers, func(r int) round {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(r)))
		res, err := statistic(data.Resample(rng), rng)
		return round{res: res, err: err}
	}, nil)
	if err != nil {
		return Result{}, err
	}

	values := make([]float64, len(rounds))
	clamped := 0
	for r, rd := range rounds {
		if rd.err != nil {
			return Result{}, fmt.Errorf("bootstrap round %d: %w", r, rd.err)
		}
		values[r] = rd.res.Bits
		if rd.res.Clamped {
			clamped++
		}
	}
	return summarize(values, cfg.ConfidenceLevel, clamped)
}

func summarize(values []float64, level float64, clamped int) (Result, error) {
	point, err := stats.Mean(values)
	if err != nil {
		return Result{}, leakerr.InsufficientDataf("bootstrap mean: %v", err)
	}
	res := Result{Point: point, Lo: point, Hi: point, Iterations: len(values), ClampedRounds: clamped}
	if len(values) < MinIntervalIterations {
		return res, nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	alpha := (1 - level) / 2
	res.Lo = stat.Quantile(alpha, stat.Empirical, sorted, nil)
	res.Hi = stat.Quantile(1-alpha, stat.Empirical, sorted, nil)
	res.IntervalValid = true
	return res, nil
}

// Fixed returns a zero-width result for an estimate that needs no resampling.
func Fixed(point float64, iterations int) Result {
	return Result{Point: point, Lo: point, Hi: point, Iterations: iterations}
}
