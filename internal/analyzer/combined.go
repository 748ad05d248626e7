/*
* Combined leakage module
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
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
	"github.com/Gilah-EnE/infoleak/internal/parallel"
)

// CombinedLeakage estimates the joint leakage of subset. Indices are sorted
// first, so the estimate does not depend on their order. Subsets larger than
// max_subset_size fail with a configuration error on the estimate.
func (a *Analyzer) CombinedLeakage(ctx context.Context, ds *dataset.Dataset, subset []int) leakage.Estimate {
	return a.combined(ctx, ds, subset, a.cfg.Workers())
}

func (a *Analyzer) combined(ctx context.Context, ds *dataset.Dataset, subset []int, workers int) leakage.Estimate {
	sorted := slices.Clone(subset)
	slices.Sort(sorted)
	subject := leakage.NewSubject(ds, sorted)

	switch {
	case len(sorted) == 0:
		return leakage.Failed(subject, "", leakerr.Configurationf("empty feature subset"))
	case len(sorted) > a.cfg.MaxSubsetSize:
		return leakage.Failed(subject, "", leakerr.Configurationf("subset of %d features exceeds max_subset_size %d",
			len(sorted), a.cfg.MaxSubsetSize))
	case len(slices.Compact(slices.Clone(sorted))) != len(sorted):
		return leakage.Failed(subject, "", leakerr.Configurationf("subset %s repeats a feature", subject.Key()))
	}
	return a.modeler.EstimateSubset(ctx, ds, sorted, workers)
}

// GreedyCombined grows a feature subset from the empty set, adding at each
// step the candidate with the largest joint leakage. Candidates are the
// greedy_candidates most leaking features; ties go to the lower index. It
// stops at max_subset_size or when the best gain falls below
// marginal_gain_threshold. The first step reuses the per-feature estimates.
// A candidate marked redundant with a selected feature in redundancy is not
// tried again.
func (a *Analyzer) GreedyCombined(ctx context.Context, ds *dataset.Dataset, perFeature []leakage.Estimate,
	redundancy []leakage.RedundancyEntry) (leakage.Greedy, error) {
	g := leakage.Greedy{Approximation: leakage.ApproximationNote}
	redundant := redundantPairs(redundancy)

	ranked := leakage.Rank(perFeature)
	if len(ranked) > a.cfg.GreedyCandidates {
		ranked = ranked[:a.cfg.GreedyCandidates]
	}
	candidates := make([]int, len(ranked))
	single := make(map[int]leakage.Estimate, len(ranked))
	for i, e := range ranked {
		candidates[i] = e.Subject.Features[0]
		single[candidates[i]] = e
	}
	slices.Sort(candidates)

	var selected []int
	current := 0.0
	for {
		if len(selected) >= a.cfg.MaxSubsetSize {
			g.StopReason = leakage.StopMaxSubsetSize
			break
		}
		var remaining []int
	next:
		for _, c := range candidates {
			if slices.Contains(selected, c) {
				continue
			}
			for _, s := range selected {
				if redundant[[2]int{s, c}] {
					continue next
				}
			}
			remaining = append(remaining, c)
		}
		if len(remaining) == 0 {
			g.StopReason = leakage.StopExhausted
			break
		}

		var trials []leakage.Estimate
		if len(selected) == 0 {
			for _, c := range remaining {
				trials = append(trials, single[c])
			}
		} else {
			var err error
			trials, err = a.trySubsets(ctx, ds, selected, remaining)
			if err != nil {
				g.StopReason = leakage.StopCancelled
				return g, err
			}
		}

		best := -1
		for i, e := range trials {
			if e.OK() && (best < 0 || e.Bits > trials[best].Bits) {
				best = i
			}
		}
		if best < 0 {
			g.StopReason = leakage.StopExhausted
			break
		}
		gain := trials[best].Bits - current
		if gain < a.cfg.MarginalGainThreshold {
			g.StopReason = leakage.StopBelowGain
			break
		}

		added := remaining[best]
		selected = append(selected, added)
		current = trials[best].Bits
		g.Steps = append(g.Steps, leakage.GreedyStep{
			Added:    added,
			Name:     ds.Feature(added).Name,
			Estimate: trials[best],
			Gain:     gain,
		})
		a.logger.WithFields(logrus.Fields{
			"added": ds.Feature(added).Name,
			"size":  len(selected),
			"bits":  current,
			"gain":  gain,
		}).Info("greedy step")
	}
	return g, nil
}

// trySubsets estimates selected plus each remaining candidate.
func (a *Analyzer) trySubsets(ctx context.Context, ds *dataset.Dataset, selected, remaining []int) ([]leakage.Estimate, error) {
	trialWorkers, roundWorkers := a.modeler.Split(len(remaining))
	dispatched := context.WithoutCancel(ctx)
	trials, _, err := parallel.Map(ctx, len(remaining), trialWorkers, func(i int) leakage.Estimate {
		subset := append(slices.Clone(selected), remaining[i])
		return a.combined(dispatched, ds, subset, roundWorkers)
	}, nil)
	if err != nil {
		return nil, err
	}
	return trials, nil
}
