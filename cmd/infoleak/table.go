/*
* Fingerprint table reader module
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

package main

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// readTable reads a fingerprint table: a header row naming the columns, then one
// sample per row. labelColumn holds the site label; every other column is a
// numeric feature, where an empty cell, "NA", "NaN" or "?" is missing.
// Domains named in domains are taken as given, the rest are inferred.
func readTable(r io.Reader, labelColumn string, domains map[string]dataset.Domain) (*dataset.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, leakerr.Configurationf("empty fingerprint table")
		}
		return nil, err
	}

	labelIdx := -1
	var names []string
	for i, h := range header {
		if h == labelColumn {
			labelIdx = i
			continue
		}
		names = append(names, h)
	}
	if labelIdx < 0 {
		return nil, leakerr.Configurationf("label column %q not found", labelColumn)
	}

	var x [][]float64
	var labels []string
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		row := make([]float64, 0, len(names))
		for i, cell := range record {
			if i == labelIdx {
				labels = append(labels, strings.TrimSpace(cell))
				continue
			}
			v, err := parseCell(cell)
			if err != nil {
				return nil, leakerr.Configurationf("line %d column %q: %v", line, header[i], err)
			}
			row = append(row, v)
		}
		x = append(x, row)
	}
	if len(x) == 0 {
		return nil, leakerr.Configurationf("fingerprint table has no samples")
	}

	inferred := dataset.InferDomains(x, dataset.DefaultMaxDiscreteLevels)
	for j, name := range names {
		if d, ok := domains[name]; ok {
			inferred[j] = d
		}
	}
	return dataset.FromMatrix(names, inferred, x, labels)
}

func parseCell(cell string) (float64, error) {
	switch strings.TrimSpace(cell) {
	case "", "NA", "NaN", "nan", "?":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(cell), 64)
}
