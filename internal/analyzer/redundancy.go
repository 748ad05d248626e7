/*
* Pairwise redundancy module
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

	"github.com/sirupsen/logrus"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakage"
	"github.com/Gilah-EnE/infoleak/internal/parallel"
)

// AnalyzeRedundancy estimates every pair among the redundancy_top_n most
// leaking features (all of them when it is 0). Pairs are ordered by the
// rank of their members. A pair whose normalized redundancy reaches
// redundancy_threshold is marked redundant.
func (a *Analyzer) AnalyzeRedundancy(ctx context.Context, ds *dataset.Dataset, perFeature []leakage.Estimate) ([]leakage.RedundancyEntry, error) {
	ranked := leakage.Rank(perFeature)
	if n := a.cfg.RedundancyTopN; n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}

	type pair struct{ first, second leakage.Estimate }
	var pairs []pair
	for i := range ranked {
		for j := i + 1; j < len(ranked); j++ {
			p := pair{ranked[i], ranked[j]}
			if p.first.Subject.Features[0] > p.second.Subject.Features[0] {
				p.first, p.second = p.second, p.first
			}
			pairs = append(pairs, p)
		}
	}
	a.logger.WithFields(logrus.Fields{"features": len(ranked), "pairs": len(pairs)}).Info("redundancy analysis started")

	pairWorkers, roundWorkers := a.modeler.Split(len(pairs))
	dispatched := context.WithoutCancel(ctx)
	entries, done, err := parallel.Map(ctx, len(pairs), pairWorkers, func(i int) leakage.RedundancyEntry {
		p := pairs[i]
		f1, f2 := p.first.Subject.Features[0], p.second.Subject.Features[0]
		combined := a.modeler.EstimateSubset(dispatched, ds, []int{f1, f2}, roundWorkers)
		return redundancyEntry(ds, p.first, p.second, combined, a.cfg.RedundancyThreshold)
	}, nil)

	for i, ok := range done {
		if !ok {
			p := pairs[i]
			subject := leakage.NewSubject(ds, []int{p.first.Subject.Features[0], p.second.Subject.Features[0]})
			entries[i] = redundancyEntry(ds, p.first, p.second, leakage.Cancelled(subject, err), a.cfg.RedundancyThreshold)
		}
	}
	return entries, err
}

// redundancyEntry derives the redundancy of a pair from the stored estimates,
// so Redundancy always equals First.Bits + Second.Bits - Combined.Bits.
func redundancyEntry(ds *dataset.Dataset, first, second, combined leakage.Estimate, threshold float64) leakage.RedundancyEntry {
	e := leakage.RedundancyEntry{
		Pair:     combined.Subject,
		First:    first,
		Second:   second,
		Combined: combined,
		Status:   combined.Status,
	}
	e.Correlation, e.CorrelationValid = Correlation(ds, first.Subject.Features[0], second.Subject.Features[0])
	if !combined.OK() {
		e.FailureKind = combined.FailureKind
		e.FailureDetail = combined.FailureDetail
		return e
	}
	e.Redundancy = first.Bits + second.Bits - combined.Bits
	if least := min(first.Bits, second.Bits); least > 0 {
		e.Normalized = e.Redundancy / least
		e.Redundant = e.Normalized >= threshold
	}
	return e
}

// redundantPairs indexes the pairs marked redundant by their feature indices.
func redundantPairs(entries []leakage.RedundancyEntry) map[[2]int]bool {
	pairs := map[[2]int]bool{}
	for _, e := range entries {
		if e.Redundant && len(e.Pair.Features) == 2 {
			f1, f2 := e.Pair.Features[0], e.Pair.Features[1]
			pairs[[2]int{f1, f2}] = true
			pairs[[2]int{f2, f1}] = true
		}
	}
	return pairs
}
