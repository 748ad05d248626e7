/*
* Configuration module
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
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the recognized estimation options.
type Config struct {
	BootstrapIterations   int                `yaml:"bootstrap_iterations"`
	ConfidenceLevel       float64            `yaml:"confidence_level"`
	BandwidthOverride     map[string]float64 `yaml:"bandwidth_override"` // feature name -> bandwidth
	BandwidthRule         string             `yaml:"bandwidth_rule"`     // silverman | scott | rot
	MinBandwidth          float64            `yaml:"min_bandwidth"`
	MaxSubsetSize         int                `yaml:"max_subset_size"`
	MarginalGainThreshold float64            `yaml:"marginal_gain_threshold"`
	ParallelismDegree     int                `yaml:"parallelism_degree"` // 0 = all CPUs
	RandomSeed            int64              `yaml:"random_seed"`
	MinSamplesPerClass    int                `yaml:"min_samples_per_class"`
	IntegrationMethod     string             `yaml:"integration_method"` // auto | grid | montecarlo
	GridResolution        int                `yaml:"grid_resolution"`
	IntegrationTolerance  float64            `yaml:"integration_tolerance"`
	MonteCarloSamples     int                `yaml:"monte_carlo_samples"`
	ClassPriors           string             `yaml:"class_priors"` // uniform | empirical
	ReportRawMI           bool               `yaml:"report_raw_mi"`
	RedundancyTopN        int                `yaml:"redundancy_top_n"`
	RedundancyThreshold   float64            `yaml:"redundancy_threshold"` // normalized redundancy marking a pair redundant
	GreedyCandidates      int                `yaml:"greedy_candidates"`
	FeaturePatterns       []string           `yaml:"feature_patterns"`
	Logging               LoggingConfig      `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // text | json
}

const (
	RuleSilverman = "silverman"
	RuleScott     = "scott"
	RuleROT       = "rot"

	IntegrationAuto       = "auto"
	IntegrationGrid       = "grid"
	IntegrationMonteCarlo = "montecarlo"

	PriorsUniform   = "uniform"
	PriorsEmpirical = "empirical"
)

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns the default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills unset options with defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.BootstrapIterations == 0 {
		cfg.BootstrapIterations = 1000
	}
	if cfg.ConfidenceLevel == 0 {
		cfg.ConfidenceLevel = 0.95
	}
	if cfg.BandwidthOverride == nil {
		cfg.BandwidthOverride = map[string]float64{}
	}
	if cfg.BandwidthRule == "" {
		cfg.BandwidthRule = RuleSilverman
	}
	if cfg.MinBandwidth == 0 {
		cfg.MinBandwidth = 0.001
	}
	if cfg.MaxSubsetSize == 0 {
		cfg.MaxSubsetSize = 5
	}
	if cfg.MarginalGainThreshold == 0 {
		cfg.MarginalGainThreshold = 0.01
	}
	if cfg.MinSamplesPerClass == 0 {
		cfg.MinSamplesPerClass = 10
	}
	if cfg.IntegrationMethod == "" {
		cfg.IntegrationMethod = IntegrationAuto
	}
	if cfg.GridResolution == 0 {
		cfg.GridResolution = 2048
	}
	if cfg.IntegrationTolerance == 0 {
		cfg.IntegrationTolerance = 0.001
	}
	if cfg.MonteCarloSamples == 0 {
		cfg.MonteCarloSamples = 5000
	}
	if cfg.ClassPriors == "" {
		cfg.ClassPriors = PriorsUniform
	}
	if cfg.RedundancyTopN == 0 {
		cfg.RedundancyTopN = 100
	}
	if cfg.RedundancyThreshold == 0 {
		cfg.RedundancyThreshold = 0.9
	}
	if cfg.GreedyCandidates == 0 {
		cfg.GreedyCandidates = 20
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Workers resolves parallelism_degree to a positive worker count.
func (c *Config) Workers() int {
	if c.ParallelismDegree > 0 {
		return c.ParallelismDegree
	}
	return runtime.NumCPU()
}
