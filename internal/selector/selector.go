/*
* Feature name pattern selection module
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

package selector

import (
	"github.com/BurntSushi/rure-go"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// Selector matches feature names against a set of regular expressions.
type Selector struct {
	regexes []*rure.Regex
}

// New compiles patterns. An empty set selects every feature.
func New(patterns []string) (*Selector, error) {
	s := &Selector{}
	for _, p := range patterns {
		regex, err := rure.Compile(p)
		if err != nil {
			return nil, leakerr.Configurationf("feature pattern %q: %v", p, err)
		}
		s.regexes = append(s.regexes, regex)
	}
	return s, nil
}

// Matches reports whether name matches any pattern.
func (s *Selector) Matches(name string) bool {
	if len(s.regexes) == 0 {
		return true
	}
	for _, regex := range s.regexes {
		if regex.IsMatch(name) {
			return true
		}
	}
	return false
}

// Select returns the indices of the matching features in dataset order.
func (s *Selector) Select(features []dataset.Feature) []int {
	var selected []int
	for _, f := range features {
		if s.Matches(f.Name) {
			selected = append(selected, f.Index)
		}
	}
	return selected
}
