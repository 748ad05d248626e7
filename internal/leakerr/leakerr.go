/*
* Estimation error kinds module
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

// Package leakerr defines the error kinds shared by the leakage estimation
// packages. Errors local to one feature or subset are attached to that entry's
// estimate; only configuration errors abort a run.
package leakerr

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInsufficientData     = errors.New("insufficient data")
	ErrConfiguration        = errors.New("invalid configuration")
	ErrEstimationDivergence = errors.New("estimation diverged")
)

// Error wraps one of the sentinel kinds with detail.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func InsufficientDataf(format string, args ...any) error {
	return &Error{Kind: ErrInsufficientData, Msg: fmt.Sprintf(format, args...)}
}

func Configurationf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func Divergencef(format string, args ...any) error {
	return &Error{Kind: ErrEstimationDivergence, Msg: fmt.Sprintf(format, args...)}
}

// KindName returns a stable short name for the kind of err, suitable for
// reports and metric labels. Unknown errors map to "internal".
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrEstimationDivergence):
		return "estimation_divergence"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
