/*
* Estimation metrics module
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

// Package metrics exposes Prometheus instruments for estimation progress.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "infoleak"

type Recorder struct {
	estimates *prometheus.CounterVec
	rounds    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	state     *prometheus.GaugeVec
}

// NewRecorder creates the instruments and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimates_total",
			Help:      "Leakage estimates produced, by scope and status.",
		}, []string{"scope", "status"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bootstrap_rounds_total",
			Help:      "Bootstrap rounds evaluated, by scope.",
		}, []string{"scope"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimate_duration_seconds",
			Help:      "Wall time spent producing one leakage estimate.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"scope"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_state",
			Help:      "1 for the current analysis run state, 0 otherwise.",
		}, []string{"state"}),
	}
	for _, c := range []prometheus.Collector{r.estimates, r.rounds, r.duration, r.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveEstimate records one finished estimate.
func (r *Recorder) ObserveEstimate(scope, status string, rounds int, took time.Duration) {
	if r == nil {
		return
	}
	r.estimates.WithLabelValues(scope, status).Inc()
	if rounds > 0 {
		r.rounds.WithLabelValues(scope).Add(float64(rounds))
	}
	r.duration.WithLabelValues(scope).Observe(took.Seconds())
}

// SetState marks state as current and clears prev.
func (r *Recorder) SetState(prev, state string) {
	if r == nil {
		return
	}
	if prev != "" {
		r.state.WithLabelValues(prev).Set(0)
	}
	r.state.WithLabelValues(state).Set(1)
}
