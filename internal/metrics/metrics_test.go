/*
* Estimation metrics tests
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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.ObserveEstimate("feature", "ok", 100, 20*time.Millisecond)
	r.ObserveEstimate("feature", "failed", 0, time.Millisecond)
	r.ObserveEstimate("subset", "ok", 50, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.estimates.WithLabelValues("feature", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.estimates.WithLabelValues("feature", "failed")))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.rounds.WithLabelValues("feature")))
	assert.Equal(t, 50.0, testutil.ToFloat64(r.rounds.WithLabelValues("subset")))

	r.SetState("", "Initialized")
	r.SetState("Initialized", "Complete")
	assert.Equal(t, 0.0, testutil.ToFloat64(r.state.WithLabelValues("Initialized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.state.WithLabelValues("Complete")))
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)
	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveEstimate("feature", "ok", 1, time.Second)
	r.SetState("a", "b")
}
