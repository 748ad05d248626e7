/*
* Leakage report module
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

package leakage

import (
	"sort"
)

// ApproximationNote qualifies every greedy combined-leakage result.
const ApproximationNote = "greedy forward selection is a heuristic; the subset found is not guaranteed to be the most leaking one"

// Greedy stop reasons.
const (
	StopMaxSubsetSize = "max_subset_size"
	StopBelowGain     = "marginal_gain_below_threshold"
	StopExhausted     = "candidates_exhausted"
	StopCancelled     = "cancelled"
)

// RedundancyEntry compares a pair of features with their joint leakage.
// Redundancy is MI(first) + MI(second) - MI(pair); Normalized divides it by
// the smaller of the two individual leakages.
type RedundancyEntry struct {
	Pair        Subject  `json:"pair"`
	First       Estimate `json:"first"`
	Second      Estimate `json:"second"`
	Combined    Estimate `json:"combined"`
	Redundancy  float64  `json:"redundancy"`
	Normalized  float64  `json:"normalized_redundancy"`
	Redundant   bool     `json:"redundant"`
	Correlation float64  `json:"correlation"`
	// CorrelationValid is false when either feature has zero variance.
	CorrelationValid bool   `json:"correlation_valid"`
	Status           Status `json:"status"`
	FailureKind      string `json:"failure_kind,omitempty"`
	FailureDetail    string `json:"failure_detail,omitempty"`
}

// GreedyStep is one feature added by forward selection.
type GreedyStep struct {
	Added    int      `json:"added"`
	Name     string   `json:"name"`
	Estimate Estimate `json:"estimate"`
	Gain     float64  `json:"gain"`
}

// Greedy is the forward-selection path.
type Greedy struct {
	Steps         []GreedyStep `json:"steps"`
	StopReason    string       `json:"stop_reason"`
	Approximation string       `json:"approximation"`
}

// Final returns the last estimate on the path.
func (g Greedy) Final() (Estimate, bool) {
	if len(g.Steps) == 0 {
		return Estimate{}, false
	}
	return g.Steps[len(g.Steps)-1].Estimate, true
}

// Report is the outcome of one analysis run. It is owned by the caller.
type Report struct {
	Features   []Estimate        `json:"features"`
	Redundancy []RedundancyEntry `json:"redundancy"`
	Greedy     Greedy            `json:"greedy"`
	State      string            `json:"state"`

	index map[string]Estimate
}

// Lookup finds the estimate of a feature or subset by Subject.Key. Subsets
// are found among the redundancy pairs and the greedy path. The index is
// built on first use.
func (r *Report) Lookup(key string) (Estimate, bool) {
	if r.index == nil {
		r.index = map[string]Estimate{}
		for _, e := range r.Features {
			r.index[e.Subject.Key()] = e
		}
		for _, re := range r.Redundancy {
			r.index[re.Combined.Subject.Key()] = re.Combined
		}
		for _, s := range r.Greedy.Steps {
			r.index[s.Estimate.Subject.Key()] = s.Estimate
		}
	}
	e, ok := r.index[key]
	return e, ok
}

// Rank returns the successful single-feature estimates, most leaking first.
// Ties are broken by feature index.
func Rank(estimates []Estimate) []Estimate {
	var ranked []Estimate
	for _, e := range estimates {
		if e.OK() && len(e.Subject.Features) == 1 {
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Bits != ranked[j].Bits {
			return ranked[i].Bits > ranked[j].Bits
		}
		return ranked[i].Subject.Features[0] < ranked[j].Subject.Features[0]
	})
	return ranked
}
