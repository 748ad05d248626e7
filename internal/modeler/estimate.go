/*
* Leakage statistic module
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

package modeler

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Gilah-EnE/infoleak/internal/bootstrap"
	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/density"
	"github.com/Gilah-EnE/infoleak/internal/entropy"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// EstimateSubset estimates the joint leakage of features, in the given
// order, with bootstrap rounds spread over workers. A single feature gives a
// per-feature estimate. Failures are returned on the estimate.
//
// ctx is only checked before the estimate starts: a cancelled ctx gives a
// cancelled estimate, and an estimate that has started runs all its rounds.
func (m *Modeler) EstimateSubset(ctx context.Context, ds *dataset.Dataset, features []int, workers int) leakage.Estimate {
	if err := ctx.Err(); err != nil {
		e := leakage.Cancelled(leakage.NewSubject(ds, features), err)
		m.observe(e, 0)
		return e
	}
	start := time.Now()
	e := m.estimateSubset(context.WithoutCancel(ctx), ds, features, workers)
	m.observe(e, time.Since(start))
	return e
}

func (m *Modeler) estimateSubset(ctx context.Context, ds *dataset.Dataset, features []int, workers int) leakage.Estimate {
	subject := leakage.NewSubject(ds, features)
	view, err := ds.Stratify(features)
	if err != nil {
		return leakage.Failed(subject, "", err)
	}
	if len(view.Classes) < 2 {
		return leakage.Failed(subject, "", leakerr.InsufficientDataf("need at least 2 classes, got %d", len(view.Classes)))
	}
	for c, g := range view.Groups {
		if len(g) < m.cfg.MinSamplesPerClass {
			return leakage.Failed(subject, "", leakerr.InsufficientDataf("class %q has %d usable samples, need %d",
				view.Classes[c], len(g), m.cfg.MinSamplesPerClass))
		}
	}
	priors := view.Priors(strings.EqualFold(m.cfg.ClassPriors, config.PriorsEmpirical))

	if degenerate(view) {
		return m.degenerateEstimate(subject, view, priors)
	}
	if allDiscrete(ds, features) {
		return m.bootstrapEstimate(ctx, subject, view, features, workers, leakage.MethodFrequency, m.frequencyStatistic(priors))
	}

	opts := m.kdeOptions(ds, features)
	if view.Dim == 1 {
		for c := range view.Groups {
			if view.Distinct(c, 0) < 2 {
				return leakage.Failed(subject, leakage.MethodKDE, leakerr.InsufficientDataf(
					"class %q has a single distinct value of continuous feature %q", view.Classes[c], subject.Names[0]))
			}
		}
	}
	full, err := fitClasses(view, opts, nil)
	if err != nil {
		return leakage.Failed(subject, leakage.MethodKDE, err)
	}
	e := m.bootstrapEstimate(ctx, subject, view, features, workers, leakage.MethodKDE, m.kdeStatistic(opts, full, priors))
	if e.OK() {
		e.Diagnostics = kdeDiagnostics(view, full)
	}
	return e
}

func (m *Modeler) bootstrapEstimate(ctx context.Context, subject leakage.Subject, view dataset.Stratified, features []int,
	workers int, method string, stat bootstrap.Statistic) leakage.Estimate {
	global := uint64(m.cfg.RandomSeed)
	seed := bootstrap.SubsetSeed(global, features)
	res, err := bootstrap.Run(ctx, view, stat, bootstrap.Config{
		Iterations:      m.cfg.BootstrapIterations,
		ConfidenceLevel: m.cfg.ConfidenceLevel,
		Workers:         workers,
		Seed:            seed,
	})
	if err != nil {
		return leakage.Failed(subject, method, err)
	}

	e := fromResult(subject, method, res)
	if method == leakage.MethodFrequency && view.Dim == 1 {
		e.Diagnostics.ChiSquare, e.Diagnostics.ChiSquareDF = chiSquare(view)
	}
	return e
}

func fromResult(subject leakage.Subject, method string, res bootstrap.Result) leakage.Estimate {
	return leakage.Estimate{
		Subject:       subject,
		Bits:          res.Point,
		Lo:            res.Lo,
		Hi:            res.Hi,
		IntervalValid: res.IntervalValid,
		Iterations:    res.Iterations,
		ClampedRounds: res.ClampedRounds,
		Method:        method,
		Status:        leakage.StatusOK,
	}
}

// degenerateEstimate handles subjects that are constant within every class.
// Resampling cannot change such data, so the plug-in estimate is exact and
// the interval has zero width.
func (m *Modeler) degenerateEstimate(subject leakage.Subject, view dataset.Stratified, priors []float64) leakage.Estimate {
	freqs, err := fitFrequencies(view)
	if err != nil {
		return leakage.Failed(subject, leakage.MethodFrequency, err)
	}
	res, err := m.estimator.DiscreteMutualInformation(freqs, priors)
	if err != nil {
		return leakage.Failed(subject, leakage.MethodFrequency, err)
	}
	e := fromResult(subject, leakage.MethodFrequency, bootstrap.Fixed(res.Bits, 0))
	e.IntervalValid = true
	e.Degenerate = true
	if res.Clamped {
		e.ClampedRounds = 1
	}
	return e
}

func (m *Modeler) frequencyStatistic(priors []float64) bootstrap.Statistic {
	return func(data dataset.Stratified, _ *rand.Rand) (entropy.Result, error) {
		freqs, err := fitFrequencies(data)
		if err != nil {
			return entropy.Result{}, err
		}
		return m.estimator.DiscreteMutualInformation(freqs, priors)
	}
}

// kdeStatistic refits the class KDEs on each resample. A one-dimensional
// class that collapses to a single value keeps its full-sample bandwidth.
func (m *Modeler) kdeStatistic(opts density.Options, full []*density.KDE, priors []float64) bootstrap.Statistic {
	return func(data dataset.Stratified, rng *rand.Rand) (entropy.Result, error) {
		kdes, err := fitClasses(data, opts, full)
		if err != nil {
			return entropy.Result{}, err
		}
		perClass := make([]density.Density, len(kdes))
		for c, k := range kdes {
			perClass[c] = k
		}
		return m.estimator.MutualInformation(perClass, priors, rng)
	}
}

func (m *Modeler) kdeOptions(ds *dataset.Dataset, features []int) density.Options {
	opts := density.Options{Rule: m.cfg.BandwidthRule, MinBandwidth: m.cfg.MinBandwidth}
	for _, f := range features {
		opts.Bandwidth = append(opts.Bandwidth, m.cfg.BandwidthOverride[ds.Feature(f).Name])
	}
	return opts
}

func fitClasses(view dataset.Stratified, opts density.Options, fallback []*density.KDE) ([]*density.KDE, error) {
	kdes := make([]*density.KDE, len(view.Groups))
	for c, g := range view.Groups {
		o := opts
		if fallback != nil && view.Dim == 1 && view.Constant(c) {
			o.Bandwidth = fallback[c].Bandwidth()
		}
		k, err := density.Fit(g, o)
		if err != nil {
			return nil, err
		}
		kdes[c] = k
	}
	return kdes, nil
}

func fitFrequencies(view dataset.Stratified) ([]*density.Frequency, error) {
	freqs := make([]*density.Frequency, len(view.Groups))
	for c, g := range view.Groups {
		f, err := density.FitFrequency(g)
		if err != nil {
			return nil, err
		}
		freqs[c] = f
	}
	return freqs, nil
}

func degenerate(view dataset.Stratified) bool {
	for c := range view.Groups {
		if !view.Constant(c) {
			return false
		}
	}
	return true
}

func allDiscrete(ds *dataset.Dataset, features []int) bool {
	for _, f := range features {
		if ds.Feature(f).Domain != dataset.Discrete {
			return false
		}
	}
	return true
}

func kdeDiagnostics(view dataset.Stratified, kdes []*density.KDE) leakage.Diagnostics {
	var d leakage.Diagnostics
	for c, k := range kdes {
		d.Bandwidths = append(d.Bandwidths, k.Bandwidth())
		if view.Dim == 1 {
			d.KS = append(d.KS, density.KolmogorovSmirnov(k, view.Column(c, 0)))
		}
	}
	return d
}

func chiSquare(view dataset.Stratified) (float64, int) {
	freqs, err := fitFrequencies(view)
	if err != nil {
		return 0, 0
	}
	return density.ChiSquareHomogeneity(freqs)
}
