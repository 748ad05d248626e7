/*
* Analysis run state module
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

package analyzer

import (
	"fmt"
)

// State is the stage of an analysis run.
type State string

const (
	Initialized                    State = "Initialized"
	PerFeatureEstimationInProgress State = "PerFeatureEstimationInProgress"
	PerFeatureEstimationComplete   State = "PerFeatureEstimationComplete"
	RedundancyAnalysisInProgress   State = "RedundancyAnalysisInProgress"
	CombinedAnalysisInProgress     State = "CombinedAnalysisInProgress"
	Complete                       State = "Complete"
	Failed                         State = "Failed"
	Cancelled                      State = "Cancelled"
)

// IsTerminal reports whether a run in state s is over.
func IsTerminal(s State) bool {
	switch s {
	case Complete, Failed, Cancelled:
		return true
	default:
		return false
	}
}

// Transition validates a state change.
func Transition(from, to State) error {
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed run state transition: %s -> %s", from, to)
	}
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Initialized:
		return to == PerFeatureEstimationInProgress
	case PerFeatureEstimationInProgress:
		return to == PerFeatureEstimationComplete || to == Failed || to == Cancelled
	case PerFeatureEstimationComplete:
		return to == RedundancyAnalysisInProgress
	case RedundancyAnalysisInProgress:
		return to == CombinedAnalysisInProgress || to == Failed || to == Cancelled
	case CombinedAnalysisInProgress:
		return to == Complete || to == Failed || to == Cancelled
	default:
		return false
	}
}
