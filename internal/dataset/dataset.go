/*
* Fingerprint dataset module
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

package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Point is one observation restricted to a set of features.
type Point []float64

// Sample is one fingerprint: a feature vector labeled with its site. NaN marks
// a missing value.
type Sample struct {
	Values []float64
	Label  string
}

// Feature is an index into the feature vector with its declared domain.
type Feature struct {
	Index  int
	Name   string
	Domain Domain
}

// Dataset is a class-partitioned, read-only collection of samples.
type Dataset struct {
	features []Feature
	samples  []Sample
	classes  []string
	byClass  [][]int
	byName   map[string]int
}

// New validates samples against features and partitions them by label.
// Classes are ordered lexicographically.
func New(features []Feature, samples []Sample) (*Dataset, error) {
	if len(features) == 0 {
		return nil, leakerr.Configurationf("dataset has no features")
	}
	if len(samples) == 0 {
		return nil, leakerr.Configurationf("dataset has no samples")
	}

	fs := make([]Feature, len(features))
	byName := make(map[string]int, len(features))
	for i, f := range features {
		f.Index = i
		if f.Name == "" {
			f.Name = fmt.Sprintf("feature_%d", i)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, leakerr.Configurationf("duplicate feature name %q", f.Name)
		}
		byName[f.Name] = i
		fs[i] = f
	}

	classIndex := map[string]int{}
	for i, s := range samples {
		if len(s.Values) != len(fs) {
			return nil, leakerr.Configurationf("sample %d has %d values, want %d", i, len(s.Values), len(fs))
		}
		if s.Label == "" {
			return nil, leakerr.Configurationf("sample %d has an empty label", i)
		}
		for j, v := range s.Values {
			if math.IsInf(v, 0) {
				return nil, leakerr.Configurationf("sample %d feature %q is infinite", i, fs[j].Name)
			}
		}
		classIndex[s.Label] = 0
	}

	classes := make([]string, 0, len(classIndex))
	for c := range classIndex {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for i, c := range classes {
		classIndex[c] = i
	}

	byClass := make([][]int, len(classes))
	for i, s := range samples {
		c := classIndex[s.Label]
		byClass[c] = append(byClass[c], i)
	}

	return &Dataset{
		features: fs,
		samples:  samples,
		classes:  classes,
		byClass:  byClass,
		byName:   byName,
	}, nil
}

// FromMatrix builds a dataset from a row-major matrix. When domains is nil the
// domains are inferred once with InferDomains.
func FromMatrix(names []string, domains []Domain, x [][]float64, labels []string) (*Dataset, error) {
	if len(x) != len(labels) {
		return nil, leakerr.Configurationf("%d rows but %d labels", len(x), len(labels))
	}
	if len(x) == 0 {
		return nil, leakerr.Configurationf("dataset has no samples")
	}
	dim := len(x[0])
	for i, row := range x {
		if len(row) != dim {
			return nil, leakerr.Configurationf("row %d has %d values, want %d", i, len(row), dim)
		}
	}
	if names != nil && len(names) != dim {
		return nil, leakerr.Configurationf("%d feature names for dimensionality %d", len(names), dim)
	}
	if domains == nil {
		domains = InferDomains(x, DefaultMaxDiscreteLevels)
	}
	if len(domains) != dim {
		return nil, leakerr.Configurationf("%d domains for dimensionality %d", len(domains), dim)
	}

	features := make([]Feature, dim)
	for i := range features {
		features[i] = Feature{Index: i, Domain: domains[i]}
		if names != nil {
			features[i].Name = names[i]
		}
	}
	samples := make([]Sample, len(x))
	for i := range x {
		samples[i] = Sample{Values: x[i], Label: labels[i]}
	}
	return New(features, samples)
}

func (d *Dataset) Dim() int          { return len(d.features) }
func (d *Dataset) Len() int          { return len(d.samples) }
func (d *Dataset) Classes() []string { return append([]string(nil), d.classes...) }
func (d *Dataset) Sample(i int) Sample {
	return d.samples[i]
}

// Features returns a copy of the feature declarations.
func (d *Dataset) Features() []Feature { return append([]Feature(nil), d.features...) }

func (d *Dataset) Feature(i int) Feature { return d.features[i] }

// FeatureByName looks a feature up by its name.
func (d *Dataset) FeatureByName(name string) (Feature, bool) {
	i, ok := d.byName[name]
	if !ok {
		return Feature{}, false
	}
	return d.features[i], true
}

// Stratify builds the per-class view of the given features. Samples with a
// missing value in any of them are left out.
func (d *Dataset) Stratify(features []int) (Stratified, error) {
	if len(features) == 0 {
		return Stratified{}, leakerr.Configurationf("no features selected")
	}
	for _, f := range features {
		if f < 0 || f >= len(d.features) {
			return Stratified{}, leakerr.Configurationf("feature index %d out of range [0, %d)", f, len(d.features))
		}
	}

	groups := make([][]Point, len(d.classes))
	for c, idx := range d.byClass {
		group := make([]Point, 0, len(idx))
	rows:
		for _, i := range idx {
			p := make(Point, len(features))
			for j, f := range features {
				v := d.samples[i].Values[f]
				if math.IsNaN(v) {
					continue rows
				}
				p[j] = v
			}
			group = append(group, p)
		}
		groups[c] = group
	}
	return Stratified{Classes: d.classes, Groups: groups, Dim: len(features)}, nil
}
