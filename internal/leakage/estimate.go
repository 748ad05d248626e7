/*
* Leakage estimate module
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

// Package leakage holds the value types produced by an analysis run.
package leakage

import (
	"strconv"
	"strings"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/density"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Status of an estimate.
type Status string

const (
	StatusOK        Status = "ok"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Estimation methods.
const (
	MethodKDE       = "kde"
	MethodFrequency = "frequency"
)

// Subject is the feature or feature subset an estimate is about.
type Subject struct {
	Features []int    `json:"features"`
	Names    []string `json:"names"`
}

// NewSubject resolves feature names from ds. Indices keep the given order.
func NewSubject(ds *dataset.Dataset, features []int) Subject {
	s := Subject{Features: append([]int(nil), features...), Names: make([]string, len(features))}
	for i, f := range features {
		if f >= 0 && f < ds.Dim() {
			s.Names[i] = ds.Feature(f).Name
		}
	}
	return s
}

// Key identifies the subject in a report, e.g. "3" or "3+7".
func (s Subject) Key() string {
	parts := make([]string, len(s.Features))
	for i, f := range s.Features {
		parts[i] = strconv.Itoa(f)
	}
	return strings.Join(parts, "+")
}

func (s Subject) String() string { return strings.Join(s.Names, "+") }

// Diagnostics are goodness-of-fit checks recorded alongside an estimate.
type Diagnostics struct {
	// KS holds one Kolmogorov-Smirnov check of the KDE per class.
	KS []density.KSResult `json:"ks,omitempty"`
	// ChiSquare is the class x value homogeneity statistic of a discrete
	// feature with ChiSquareDF degrees of freedom.
	ChiSquare   float64     `json:"chi_square,omitempty"`
	ChiSquareDF int         `json:"chi_square_df,omitempty"`
	Bandwidths  [][]float64 `json:"bandwidths,omitempty"`
}

// Estimate is the leakage of one subject in bits.
type Estimate struct {
	Subject       Subject     `json:"subject"`
	Bits          float64     `json:"bits"`
	Lo            float64     `json:"lo"`
	Hi            float64     `json:"hi"`
	IntervalValid bool        `json:"interval_valid"`
	Iterations    int         `json:"iterations"`
	ClampedRounds int         `json:"clamped_rounds"`
	Degenerate    bool        `json:"degenerate,omitempty"`
	Method        string      `json:"method,omitempty"`
	Status        Status      `json:"status"`
	FailureKind   string      `json:"failure_kind,omitempty"`
	FailureDetail string      `json:"failure_detail,omitempty"`
	Err           error       `json:"-"`
	Diagnostics   Diagnostics `json:"diagnostics"`
}

// OK reports whether the estimate carries a value.
func (e Estimate) OK() bool { return e.Status == StatusOK }

// Failed builds the estimate of a subject that could not be estimated.
func Failed(subject Subject, method string, err error) Estimate {
	e := Estimate{Subject: subject, Method: method, Status: StatusFailed, Err: err}
	e.FailureKind = leakerr.KindName(err)
	if err != nil {
		e.FailureDetail = err.Error()
	}
	return e
}

// Cancelled builds the estimate of a subject that was never dispatched.
func Cancelled(subject Subject, err error) Estimate {
	e := Failed(subject, "", err)
	e.Status = StatusCancelled
	return e
}
