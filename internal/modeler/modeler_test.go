/*
* Fingerprint modeler tests
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
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilah-EnE/infoleak/internal/config"
	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/metrics"
)

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// column is one feature given per class.
type column struct {
	name   string
	domain dataset.Domain
	a, b   []float64
}

// twoClassDataset builds classes "a" and "b" from columns of equal length
// per class.
func twoClassDataset(t *testing.T, cols ...column) *dataset.Dataset {
	t.Helper()
	features := make([]dataset.Feature, len(cols))
	for j, c := range cols {
		features[j] = dataset.Feature{Name: c.name, Domain: c.domain}
	}
	var samples []dataset.Sample
	for i := range cols[0].a {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.a[i]
		}
		samples = append(samples, dataset.Sample{Values: row, Label: "a"})
	}
	for i := range cols[0].b {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.b[i]
		}
		samples = append(samples, dataset.Sample{Values: row, Label: "b"})
	}
	ds, err := dataset.New(features, samples)
	require.NoError(t, err)
	return ds
}

func testConfig(iterations, workers int) *config.Config {
	cfg := config.Default()
	cfg.BootstrapIterations = iterations
	cfg.ParallelismDegree = workers
	cfg.RandomSeed = 11
	return cfg
}

func newModeler(t *testing.T, cfg *config.Config) *Modeler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	m, err := New(cfg, WithLogger(logger))
	require.NoError(t, err)
	return m
}

func separated() column {
	return column{name: "size", a: linspace(-6, -2, 20), b: linspace(2, 6, 20)}
}

func TestPerfectSeparationLeaksOneBit(t *testing.T) {
	ds := twoClassDataset(t, separated())
	est, err := newModeler(t, testConfig(40, 2)).EstimateLeakage(context.Background(), ds, []int{0})
	require.NoError(t, err)
	require.Len(t, est, 1)

	e := est[0]
	require.True(t, e.OK(), e.FailureDetail)
	assert.InDelta(t, 1, e.Bits, 0.01)
	assert.True(t, e.IntervalValid)
	assert.LessOrEqual(t, e.Lo, e.Bits)
	assert.GreaterOrEqual(t, e.Hi, e.Bits)
	assert.Equal(t, leakage.MethodKDE, e.Method)
	assert.Equal(t, 40, e.Iterations)
	require.Len(t, e.Diagnostics.KS, 2)
	assert.False(t, e.Diagnostics.KS[0].Rejected())
	assert.Equal(t, []string{"size"}, e.Subject.Names)
}

func TestIdenticalClassesLeakNearlyNothing(t *testing.T) {
	xs := linspace(0, 3, 25)
	ds := twoClassDataset(t, column{name: "size", a: xs, b: xs})
	est, err := newModeler(t, testConfig(50, 1)).EstimateLeakage(context.Background(), ds, []int{0})
	require.NoError(t, err)
	require.True(t, est[0].OK(), est[0].FailureDetail)
	assert.Less(t, est[0].Bits, 0.1)
	assert.GreaterOrEqual(t, est[0].Lo, 0.0)
}

func TestDegenerateFeatures(t *testing.T) {
	ds := twoClassDataset(t,
		column{name: "flag", a: repeat(1, 12), b: repeat(2, 12)},
		column{name: "zero", a: repeat(0, 12), b: repeat(0, 12)},
	)
	est, err := newModeler(t, testConfig(100, 2)).EstimateLeakage(context.Background(), ds, []int{0, 1})
	require.NoError(t, err)

	flag := est[0]
	require.True(t, flag.OK(), flag.FailureDetail)
	assert.True(t, flag.Degenerate)
	assert.Equal(t, leakage.MethodFrequency, flag.Method)
	assert.InDelta(t, 1, flag.Bits, 1e-12)
	assert.Equal(t, flag.Bits, flag.Lo)
	assert.Equal(t, flag.Bits, flag.Hi)

	zero := est[1]
	require.True(t, zero.OK(), zero.FailureDetail)
	assert.True(t, zero.Degenerate)
	assert.Equal(t, 0.0, zero.Bits)
	assert.Equal(t, 0.0, zero.Hi)
}

func TestInsufficientDataIsRecordedPerFeature(t *testing.T) {
	short := linspace(0, 1, 20)
	for i := 5; i < 20; i++ {
		short[i] = math.NaN()
	}
	single := append(repeat(4, 19), 5)
	ds := twoClassDataset(t,
		column{name: "short", a: short, b: linspace(0, 1, 20)},
		separated(),
		column{name: "single", a: repeat(3, 20), b: single},
	)
	est, err := newModeler(t, testConfig(30, 2)).EstimateLeakage(context.Background(), ds, []int{0, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, leakage.StatusFailed, est[0].Status)
	assert.Equal(t, "insufficient_data", est[0].FailureKind)
	assert.True(t, errors.Is(est[0].Err, leakerr.ErrInsufficientData))
	assert.Contains(t, est[0].FailureDetail, `class "a" has 5 usable samples`)

	assert.True(t, est[1].OK())

	assert.Equal(t, leakage.StatusFailed, est[2].Status)
	assert.Equal(t, "insufficient_data", est[2].FailureKind)
}

func TestDiscreteFeatureUsesFrequencies(t *testing.T) {
	b := append(repeat(0, 10), repeat(1, 10)...)
	ds := twoClassDataset(t, column{name: "proto", domain: dataset.Discrete, a: repeat(0, 20), b: b})
	est, err := newModeler(t, testConfig(60, 2)).EstimateLeakage(context.Background(), ds, []int{0})
	require.NoError(t, err)

	e := est[0]
	require.True(t, e.OK(), e.FailureDetail)
	assert.Equal(t, leakage.MethodFrequency, e.Method)
	assert.False(t, e.Degenerate)
	// H(0.75, 0.25) - 0.5 * H(0.5, 0.5)
	assert.InDelta(t, 0.311, e.Bits, 0.1)
	assert.Equal(t, 1, e.Diagnostics.ChiSquareDF)
	assert.Greater(t, e.Diagnostics.ChiSquare, 0.0)
}

func TestEstimatesDoNotDependOnWorkers(t *testing.T) {
	ds := twoClassDataset(t,
		separated(),
		column{name: "overlap", a: linspace(0, 3, 20), b: linspace(1, 4, 20)},
		column{name: "proto", domain: dataset.Discrete, a: append(repeat(0, 15), repeat(1, 5)...), b: append(repeat(0, 5), repeat(1, 15)...)},
	)

	// Three features over 40 rounds spread work across rounds, over 2 rounds
	// across features.
	for _, iterations := range []int{40, 2} {
		serial, err := newModeler(t, testConfig(iterations, 1)).EstimateLeakage(context.Background(), ds, []int{0, 1, 2})
		require.NoError(t, err)
		pooled, err := newModeler(t, testConfig(iterations, 4)).EstimateLeakage(context.Background(), ds, []int{0, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, serial, pooled, "iterations %d", iterations)
	}
}

func TestMonteCarloIntegration(t *testing.T) {
	cfg := testConfig(10, 2)
	cfg.IntegrationMethod = config.IntegrationMonteCarlo
	cfg.MonteCarloSamples = 500
	ds := twoClassDataset(t, separated())
	est, err := newModeler(t, cfg).EstimateLeakage(context.Background(), ds, []int{0})
	require.NoError(t, err)
	require.True(t, est[0].OK(), est[0].FailureDetail)
	assert.InDelta(t, 1, est[0].Bits, 0.01)
	assert.False(t, est[0].IntervalValid)
}

func TestBandwidthOverride(t *testing.T) {
	cfg := testConfig(5, 1)
	cfg.BandwidthOverride = map[string]float64{"size": 0.3}
	ds := twoClassDataset(t, separated())
	est, err := newModeler(t, cfg).EstimateLeakage(context.Background(), ds, []int{0})
	require.NoError(t, err)
	require.True(t, est[0].OK(), est[0].FailureDetail)
	assert.Equal(t, [][]float64{{0.3}, {0.3}}, est[0].Diagnostics.Bandwidths)
}

func TestEstimateSubsetJoint(t *testing.T) {
	ds := twoClassDataset(t,
		separated(),
		column{name: "noise", a: linspace(0, 1, 20), b: linspace(0, 1, 20)},
	)
	cfg := testConfig(5, 2)
	cfg.MonteCarloSamples = 500
	e := newModeler(t, cfg).EstimateSubset(context.Background(), ds, []int{0, 1}, 2)
	require.True(t, e.OK(), e.FailureDetail)
	assert.Equal(t, "0+1", e.Subject.Key())
	assert.InDelta(t, 1, e.Bits, 0.05)
}

func TestCancelledBeforeStart(t *testing.T) {
	ds := twoClassDataset(t, separated(), column{name: "other", a: linspace(0, 1, 20), b: linspace(1, 2, 20)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	est, err := newModeler(t, testConfig(10, 2)).EstimateLeakage(ctx, ds, []int{0, 1})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, est, 2)
	for _, e := range est {
		assert.Equal(t, leakage.StatusCancelled, e.Status)
	}
}

func TestCancelLetsRunningFeatureFinish(t *testing.T) {
	var cols []column
	for j := 0; j < 4; j++ {
		cols = append(cols, column{name: fmt.Sprintf("f%d", j), a: linspace(0, 3, 200), b: linspace(1, 4, 200)})
	}
	ds := twoClassDataset(t, cols...)

	// One worker runs the features in turn, four spread each feature's rounds.
	for _, workers := range []int{1, 4} {
		ctx, cancel := context.WithCancel(context.Background())
		timer := time.AfterFunc(20*time.Millisecond, cancel)

		est, err := newModeler(t, testConfig(400, workers)).EstimateLeakage(ctx, ds, []int{0, 1, 2, 3})
		timer.Stop()
		cancel()
		require.ErrorIs(t, err, context.Canceled, "workers %d", workers)
		require.Len(t, est, 4)

		require.True(t, est[0].OK(), est[0].FailureDetail)
		assert.Equal(t, 400, est[0].Iterations)
		assert.True(t, est[0].IntervalValid)
		assert.Equal(t, leakage.StatusCancelled, est[3].Status)

		stopped := false
		for _, e := range est {
			if e.Status == leakage.StatusCancelled {
				stopped = true
				assert.Zero(t, e.Iterations)
				continue
			}
			assert.False(t, stopped, "feature %s ran after a cancelled one", e.Subject)
			require.True(t, e.OK(), e.FailureDetail)
			assert.Equal(t, 400, e.Iterations)
		}
	}
}

func TestEstimateSubsetRunsToCompletionOnceStarted(t *testing.T) {
	ds := twoClassDataset(t, separated())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newModeler(t, testConfig(40, 2)).EstimateSubset(context.WithoutCancel(ctx), ds, []int{0}, 2)
	require.True(t, e.OK(), e.FailureDetail)
	assert.Equal(t, 40, e.Iterations)

	e = newModeler(t, testConfig(40, 2)).EstimateSubset(ctx, ds, []int{0}, 2)
	assert.Equal(t, leakage.StatusCancelled, e.Status)
}

func TestEstimateLeakageRejectsUnknownFeature(t *testing.T) {
	ds := twoClassDataset(t, separated())
	_, err := newModeler(t, testConfig(10, 1)).EstimateLeakage(context.Background(), ds, []int{3})
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ConfidenceLevel = 1.5
	_, err := New(cfg)
	assert.True(t, errors.Is(err, leakerr.ErrConfiguration))
}

func TestMetricsAndProgressLogging(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	logger, hook := test.NewNullLogger()

	m, err := New(testConfig(5, 1), WithLogger(logger), WithMetrics(rec))
	require.NoError(t, err)
	ds := twoClassDataset(t, separated(), column{name: "single", a: repeat(3, 20), b: append(repeat(4, 19), 5)})
	_, err = m.EstimateLeakage(context.Background(), ds, []int{0, 1})
	require.NoError(t, err)

	expected := `
# HELP infoleak_estimates_total Leakage estimates produced, by scope and status.
# TYPE infoleak_estimates_total counter
infoleak_estimates_total{scope="feature",status="failed"} 1
infoleak_estimates_total{scope="feature",status="ok"} 1
# HELP infoleak_bootstrap_rounds_total Bootstrap rounds evaluated, by scope.
# TYPE infoleak_bootstrap_rounds_total counter
infoleak_bootstrap_rounds_total{scope="feature"} 5
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"infoleak_estimates_total", "infoleak_bootstrap_rounds_total"))

	var progress int
	for _, entry := range hook.AllEntries() {
		if entry.Message == "per-feature estimation progress" {
			progress++
		}
	}
	assert.Equal(t, 2, progress)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}
