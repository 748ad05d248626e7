/*
* Information leakage estimation library
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

// Package infoleak measures how many bits of a visited site's identity each
// website fingerprinting feature leaks, alone and in combination.
//
// Leakage is the mutual information between the site label and a feature,
// estimated from class-conditional kernel density estimates and wrapped in a
// stratified bootstrap for confidence intervals.
package infoleak

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Gilah-EnE/infoleak/internal/analyzer"
	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/metrics"
	"github.com/Gilah-EnE/infoleak/internal/modeler"
)

type (
	Config          = config.Config
	Dataset         = dataset.Dataset
	Sample          = dataset.Sample
	Feature         = dataset.Feature
	Domain          = dataset.Domain
	Estimate        = leakage.Estimate
	Subject         = leakage.Subject
	RedundancyEntry = leakage.RedundancyEntry
	Greedy          = leakage.Greedy
	Report          = leakage.Report
	State           = analyzer.State
)

const (
	Continuous = dataset.Continuous
	Discrete   = dataset.Discrete
)

// Error kinds, matched with errors.Is.
var (
	ErrInsufficientData     = leakerr.ErrInsufficientData
	ErrConfiguration        = leakerr.ErrConfiguration
	ErrEstimationDivergence = leakerr.ErrEstimationDivergence
)

var (
	NewDataset    = dataset.New
	FromMatrix    = dataset.FromMatrix
	LoadConfig    = config.Load
	ParseConfig   = config.Parse
	DefaultConfig = config.Default
)

// Options are the collaborators of an Engine. Both fields are optional.
type Options struct {
	Logger *logrus.Logger
	// Registerer receives the estimation metrics when set.
	Registerer prometheus.Registerer
}

// Engine estimates leakage with one configuration.
type Engine struct {
	modeler  *modeler.Modeler
	analyzer *analyzer.Analyzer
}

// NewEngine validates cfg; a nil cfg means DefaultConfig().
func NewEngine(cfg *Config, opts Options) (*Engine, error) {
	mopts := []modeler.Option{modeler.WithLogger(opts.Logger)}
	if opts.Registerer != nil {
		rec, err := metrics.NewRecorder(opts.Registerer)
		if err != nil {
			return nil, err
		}
		mopts = append(mopts, modeler.WithMetrics(rec))
	}
	m, err := modeler.New(cfg, mopts...)
	if err != nil {
		return nil, err
	}
	return &Engine{modeler: m, analyzer: analyzer.New(m)}, nil
}

// EstimateLeakage estimates each listed feature on its own.
func (e *Engine) EstimateLeakage(ctx context.Context, ds *Dataset, features []int) ([]Estimate, error) {
	return e.modeler.EstimateLeakage(ctx, ds, features)
}

// CombinedLeakage estimates the joint leakage of a feature subset.
func (e *Engine) CombinedLeakage(ctx context.Context, ds *Dataset, subset []int) Estimate {
	return e.analyzer.CombinedLeakage(ctx, ds, subset)
}

// Analyze runs the full analysis. Engine runs must not overlap.
func (e *Engine) Analyze(ctx context.Context, ds *Dataset) (*Report, error) {
	return e.analyzer.Run(ctx, ds)
}

// State is the state of the current or last Analyze run.
func (e *Engine) State() State { return e.analyzer.State() }

// Analyze is a one-shot NewEngine(cfg, Options{}).Analyze(ctx, ds).
func Analyze(ctx context.Context, cfg *Config, ds *Dataset) (*Report, error) {
	e, err := NewEngine(cfg, Options{})
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, ds)
}
