/*
* Configuration validation module
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

package config

import (
	"math"
	"strings"

	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Validate checks the loaded config for values the estimators can work with.
// Every failure is a leakerr.ErrConfiguration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return leakerr.Configurationf("config is nil")
	}
	if cfg.BootstrapIterations < 1 {
		return leakerr.Configurationf("bootstrap_iterations must be positive, got %d", cfg.BootstrapIterations)
	}
	if !(cfg.ConfidenceLevel > 0 && cfg.ConfidenceLevel < 1) {
		return leakerr.Configurationf("confidence_level must be in (0, 1), got %v", cfg.ConfidenceLevel)
	}
	for name, bw := range cfg.BandwidthOverride {
		if !(bw > 0) || math.IsInf(bw, 0) {
			return leakerr.Configurationf("bandwidth_override for %q must be positive, got %v", name, bw)
		}
	}
	switch strings.ToLower(cfg.BandwidthRule) {
	case RuleSilverman, RuleScott, RuleROT:
	default:
		return leakerr.Configurationf("bandwidth_rule must be silverman, scott or rot, got %q", cfg.BandwidthRule)
	}
	if !(cfg.MinBandwidth > 0) {
		return leakerr.Configurationf("min_bandwidth must be positive, got %v", cfg.MinBandwidth)
	}
	if cfg.MaxSubsetSize < 2 {
		return leakerr.Configurationf("max_subset_size must be at least 2, got %d", cfg.MaxSubsetSize)
	}
	if cfg.MarginalGainThreshold < 0 || math.IsNaN(cfg.MarginalGainThreshold) {
		return leakerr.Configurationf("marginal_gain_threshold must be non-negative, got %v", cfg.MarginalGainThreshold)
	}
	if cfg.ParallelismDegree < 0 {
		return leakerr.Configurationf("parallelism_degree must be non-negative, got %d", cfg.ParallelismDegree)
	}
	if cfg.MinSamplesPerClass < 2 {
		return leakerr.Configurationf("min_samples_per_class must be at least 2, got %d", cfg.MinSamplesPerClass)
	}
	switch strings.ToLower(cfg.IntegrationMethod) {
	case IntegrationAuto, IntegrationGrid, IntegrationMonteCarlo:
	default:
		return leakerr.Configurationf("integration_method must be auto, grid or montecarlo, got %q", cfg.IntegrationMethod)
	}
	if cfg.GridResolution < 64 {
		return leakerr.Configurationf("grid_resolution must be at least 64, got %d", cfg.GridResolution)
	}
	if !(cfg.IntegrationTolerance > 0) {
		return leakerr.Configurationf("integration_tolerance must be positive, got %v", cfg.IntegrationTolerance)
	}
	if cfg.MonteCarloSamples < 100 {
		return leakerr.Configurationf("monte_carlo_samples must be at least 100, got %d", cfg.MonteCarloSamples)
	}
	switch strings.ToLower(cfg.ClassPriors) {
	case PriorsUniform, PriorsEmpirical:
	default:
		return leakerr.Configurationf("class_priors must be uniform or empirical, got %q", cfg.ClassPriors)
	}
	if cfg.RedundancyTopN < 0 {
		return leakerr.Configurationf("redundancy_top_n must be non-negative, got %d", cfg.RedundancyTopN)
	}
	if !(cfg.RedundancyThreshold > 0 && cfg.RedundancyThreshold <= 1) {
		return leakerr.Configurationf("redundancy_threshold must be in (0, 1], got %v", cfg.RedundancyThreshold)
	}
	if cfg.GreedyCandidates < 1 {
		return leakerr.Configurationf("greedy_candidates must be positive, got %d", cfg.GreedyCandidates)
	}
	for i, p := range cfg.FeaturePatterns {
		if strings.TrimSpace(p) == "" {
			return leakerr.Configurationf("feature_patterns[%d] is empty", i)
		}
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return leakerr.Configurationf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	return nil
}
