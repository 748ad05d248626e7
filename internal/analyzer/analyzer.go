/*
* Mutual information analyzer module
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

// Package analyzer drives a full leakage analysis: per-feature estimates,
// pairwise redundancy and greedy combined leakage.
package analyzer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/modeler"
	"github.com/Gilah-EnE/infoleak/internal/selector"
)

// Analyzer runs analyses with one Modeler. Runs must not overlap.
type Analyzer struct {
	modeler *modeler.Modeler
	cfg     *config.Config
	logger  *logrus.Logger
	state   State
}

func New(m *modeler.Modeler) *Analyzer {
	return &Analyzer{modeler: m, cfg: m.Config(), logger: m.Logger(), state: Initialized}
}

// State returns the state of the current or last run.
func (a *Analyzer) State() State { return a.state }

func (a *Analyzer) transition(to State) error {
	if err := Transition(a.state, to); err != nil {
		return err
	}
	a.modeler.Metrics().SetState(string(a.state), string(to))
	a.logger.WithFields(logrus.Fields{"from": a.state, "to": to}).Debug("run state changed")
	a.state = to
	return nil
}

// SelectFeatures returns the indices of the features matching the
// configured feature_patterns, or all of them when there are none.
func (a *Analyzer) SelectFeatures(ds *dataset.Dataset) ([]int, error) {
	sel, err := selector.New(a.cfg.FeaturePatterns)
	if err != nil {
		return nil, err
	}
	features := sel.Select(ds.Features())
	if len(features) == 0 {
		return nil, leakerr.Configurationf("no feature matches %v", a.cfg.FeaturePatterns)
	}
	return features, nil
}

// Run performs a complete analysis of ds. The report is returned even when
// the run ends Failed or Cancelled, holding whatever was estimated.
func (a *Analyzer) Run(ctx context.Context, ds *dataset.Dataset) (*leakage.Report, error) {
	a.state = Initialized
	a.modeler.Metrics().SetState("", string(Initialized))
	report := &leakage.Report{}
	defer func() { report.State = string(a.state) }()

	if err := a.transition(PerFeatureEstimationInProgress); err != nil {
		return report, err
	}
	features, err := a.SelectFeatures(ds)
	if err != nil {
		return report, a.stop(err)
	}
	report.Features, err = a.modeler.EstimateLeakage(ctx, ds, features)
	if err != nil {
		return report, a.stop(err)
	}
	if err := a.transition(PerFeatureEstimationComplete); err != nil {
		return report, err
	}

	if err := a.transition(RedundancyAnalysisInProgress); err != nil {
		return report, err
	}
	report.Redundancy, err = a.AnalyzeRedundancy(ctx, ds, report.Features)
	if err != nil {
		return report, a.stop(err)
	}

	if err := a.transition(CombinedAnalysisInProgress); err != nil {
		return report, err
	}
	report.Greedy, err = a.GreedyCombined(ctx, ds, report.Features, report.Redundancy)
	if err != nil {
		return report, a.stop(err)
	}

	if err := a.transition(Complete); err != nil {
		return report, err
	}
	a.logger.WithFields(logrus.Fields{
		"features": len(report.Features),
		"pairs":    len(report.Redundancy),
		"greedy":   len(report.Greedy.Steps),
		"stop":     report.Greedy.StopReason,
	}).Info("leakage analysis complete")
	return report, nil
}

// stop moves the run to Cancelled or Failed after err ended a stage.
func (a *Analyzer) stop(err error) error {
	to := Failed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		to = Cancelled
	}
	if terr := a.transition(to); terr != nil {
		return errors.Join(err, terr)
	}
	a.logger.WithError(err).WithField("state", to).Warn("leakage analysis stopped")
	return err
}
