/*
* Fingerprint modeler module
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

// Package modeler estimates how many bits of the class label each feature,
// or feature subset, leaks.
package modeler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/entropy"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/logging"
	"github.com/Gilah-EnE/infoleak/internal/metrics"
	"github.com/Gilah-EnE/infoleak/internal/parallel"
)

// Modeler turns dataset features into leakage estimates.
type Modeler struct {
	cfg       *config.Config
	estimator entropy.Estimator
	logger    *logrus.Logger
	metrics   *metrics.Recorder
}

type Option func(*Modeler)

// WithLogger sets the logger; the default is logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(m *Modeler) { m.logger = l }
}

// WithMetrics records estimate counts and durations on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Modeler) { m.metrics = r }
}

// New validates cfg and builds a Modeler.
func New(cfg *config.Config, opts ...Option) (*Modeler, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	m := &Modeler{
		cfg: cfg,
		estimator: entropy.Estimator{
			Method:            cfg.IntegrationMethod,
			GridResolution:    cfg.GridResolution,
			Tolerance:         cfg.IntegrationTolerance,
			MonteCarloSamples: cfg.MonteCarloSamples,
			ClampNegative:     !cfg.ReportRawMI,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.OrDefault(m.logger)
	return m, nil
}

// Config returns the validated configuration.
func (m *Modeler) Config() *config.Config { return m.cfg }

// Logger returns the logger estimates are reported on.
func (m *Modeler) Logger() *logrus.Logger { return m.logger }

// Metrics returns the recorder, which may be nil.
func (m *Modeler) Metrics() *metrics.Recorder { return m.metrics }

// EstimateLeakage estimates every listed feature on its own. Failures are
// recorded on the feature's estimate and the run goes on. Work is spread
// over features when there are more features than bootstrap rounds, and over
// rounds otherwise.
//
// When ctx is cancelled no further feature starts; features already running
// finish all their rounds, and those left out come back with status
// cancelled together with ctx.Err().
func (m *Modeler) EstimateLeakage(ctx context.Context, ds *dataset.Dataset, features []int) ([]leakage.Estimate, error) {
	for _, f := range features {
		if f < 0 || f >= ds.Dim() {
			return nil, leakerr.Configurationf("feature index %d out of range [0, %d)", f, ds.Dim())
		}
	}

	n := len(features)
	featureWorkers, roundWorkers := m.Split(n)

	log := m.logger.WithFields(logrus.Fields{
		"features":        n,
		"iterations":      m.cfg.BootstrapIterations,
		"feature_workers": featureWorkers,
		"round_workers":   roundWorkers,
	})
	log.Info("per-feature estimation started")
	start := time.Now()

	step := max(1, n/20)
	completed, failed := 0, 0
	dispatched := context.WithoutCancel(ctx)
	estimates, done, err := parallel.Map(ctx, n, featureWorkers, func(i int) leakage.Estimate {
		return m.EstimateSubset(dispatched, ds, []int{features[i]}, roundWorkers)
	}, func(i int, e leakage.Estimate) {
		completed++
		if !e.OK() {
			failed++
			m.logger.WithFields(logrus.Fields{
				"feature": e.Subject.String(),
				"kind":    e.FailureKind,
			}).Warn(e.FailureDetail)
		}
		if completed%step == 0 || completed == n {
			log.WithFields(logrus.Fields{
				"done":     completed,
				"failed":   failed,
				"progress": float64(completed) / float64(n),
			}).Info("per-feature estimation progress")
		}
	})

	for i, ok := range done {
		if !ok {
			estimates[i] = leakage.Cancelled(leakage.NewSubject(ds, []int{features[i]}), err)
		}
	}
	if err != nil {
		log.WithError(err).Warn("per-feature estimation cancelled")
		return estimates, err
	}
	log.WithField("took", time.Since(start).String()).Info("per-feature estimation finished")
	return estimates, nil
}

// Split divides the workers between n independent estimates and the
// bootstrap rounds of each. Only one of the two levels runs in parallel:
// the estimates when there are more of them than rounds.
func (m *Modeler) Split(n int) (items, rounds int) {
	if n > m.cfg.BootstrapIterations {
		return m.cfg.Workers(), 1
	}
	return 1, m.cfg.Workers()
}

func (m *Modeler) observe(e leakage.Estimate, took time.Duration) {
	scope := "feature"
	if len(e.Subject.Features) > 1 {
		scope = "subset"
	}
	m.metrics.ObserveEstimate(scope, string(e.Status), e.Iterations, took)
}

