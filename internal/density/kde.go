/*
* Kernel density estimation module
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

package density

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/Gilah-EnE/infoleak/internal/dataset"
	"github.com/Gilah-EnE/infoleak/internal/leakerr"
)

// KernelCutoff is the number of bandwidths beyond which a kernel's
// contribution is treated as zero by PDF and Support.
const KernelCutoff = 6.0

var log2Pi = math.Log(2 * math.Pi)

// KDE is a Gaussian product-kernel density estimate with one bandwidth per
// dimension.
type KDE struct {
	dim       int
	n         int
	data      []float64 // row-major, n*dim; sorted ascending when dim == 1
	bandwidth []float64
	logNorm   float64
}

// FitUnivariate fits a one-dimensional KDE.
func FitUnivariate(samples []float64, opts Options) (*KDE, error) {
	points := make([]dataset.Point, len(samples))
	for i, v := range samples {
		points[i] = dataset.Point{v}
	}
	return Fit(points, opts)
}

// Fit fits a KDE to points. One-dimensional input needs at least two distinct
// values unless its bandwidth is given; in more dimensions a zero-spread
// dimension gets opts.MinBandwidth.
func Fit(points []dataset.Point, opts Options) (*KDE, error) {
	n := len(points)
	if n < 2 {
		return nil, leakerr.InsufficientDataf("kernel density needs at least 2 samples, got %d", n)
	}
	dim := len(points[0])
	if dim == 0 {
		return nil, leakerr.Configurationf("kernel density over zero dimensions")
	}

	cols := make([][]float64, dim)
	for j := range cols {
		cols[j] = make([]float64, n)
		for i, p := range points {
			cols[j][i] = p[j]
		}
	}
	if dim == 1 && distinct(cols[0]) < 2 && !(len(opts.Bandwidth) > 0 && opts.Bandwidth[0] > 0) {
		return nil, leakerr.InsufficientDataf("kernel density needs at least 2 distinct values, got 1 (%v)", cols[0][0])
	}

	bw, err := opts.bandwidths(cols)
	if err != nil {
		return nil, err
	}

	k := &KDE{dim: dim, n: n, bandwidth: bw}
	if dim == 1 {
		k.data = append([]float64(nil), cols[0]...)
		sort.Float64s(k.data)
	} else {
		k.data = make([]float64, 0, n*dim)
		for _, p := range points {
			k.data = append(k.data, p...)
		}
	}
	k.logNorm = -math.Log(float64(n)) - float64(dim)/2*log2Pi
	for _, h := range bw {
		k.logNorm -= math.Log(h)
	}
	return k, nil
}

func distinct(xs []float64) int {
	seen := map[float64]struct{}{}
	for _, x := range xs {
		seen[x] = struct{}{}
		if len(seen) > 1 {
			break
		}
	}
	return len(seen)
}

func (k *KDE) Dim() int { return k.dim }

// N returns the number of kernels.
func (k *KDE) N() int { return k.n }

// Bandwidth returns a copy of the per-dimension bandwidths.
func (k *KDE) Bandwidth() []float64 { return append([]float64(nil), k.bandwidth...) }

// PDF evaluates a one-dimensional KDE, summing only kernels within
// KernelCutoff bandwidths of x.
func (k *KDE) PDF(x float64) float64 {
	h := k.bandwidth[0]
	reach := KernelCutoff * h
	sum := 0.0
	for i := sort.SearchFloat64s(k.data, x-reach); i < k.n && k.data[i] <= x+reach; i++ {
		z := (x - k.data[i]) / h
		sum += math.Exp(-0.5 * z * z)
	}
	return sum * math.Exp(k.logNorm)
}

// CDF of a one-dimensional KDE.
func (k *KDE) CDF(x float64) float64 {
	h := k.bandwidth[0]
	sum := 0.0
	for _, xi := range k.data {
		sum += 0.5 * math.Erfc(-(x-xi)/(h*math.Sqrt2))
	}
	return sum / float64(k.n)
}

// LogDensity is exact: every kernel contributes.
func (k *KDE) LogDensity(x dataset.Point) float64 {
	terms := make([]float64, k.n)
	for i := range k.n {
		row := k.data[i*k.dim : (i+1)*k.dim]
		q := 0.0
		for j, v := range row {
			z := (x[j] - v) / k.bandwidth[j]
			q += z * z
		}
		terms[i] = -0.5 * q
	}
	return floats.LogSumExp(terms) + k.logNorm
}

func (k *KDE) Evaluate(points []dataset.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		if k.dim == 1 {
			out[i] = k.PDF(p[0])
			continue
		}
		out[i] = math.Exp(k.LogDensity(p))
	}
	return out
}

// Sample draws n points: a kernel chosen uniformly plus Gaussian noise scaled
// by the bandwidth.
func (k *KDE) Sample(rng *rand.Rand, n int) []dataset.Point {
	out := make([]dataset.Point, n)
	for s := range out {
		i := rng.IntN(k.n)
		p := make(dataset.Point, k.dim)
		for j := range p {
			p[j] = k.data[i*k.dim+j] + k.bandwidth[j]*rng.NormFloat64()
		}
		out[s] = p
	}
	return out
}

// Support merges the KernelCutoff windows of all kernels of a one-dimensional KDE.
func (k *KDE) Support() []Interval {
	reach := KernelCutoff * k.bandwidth[0]
	var ivs []Interval
	for _, x := range k.data {
		if len(ivs) > 0 && x-reach <= ivs[len(ivs)-1].Hi {
			ivs[len(ivs)-1].Hi = x + reach
			continue
		}
		ivs = append(ivs, Interval{Lo: x - reach, Hi: x + reach})
	}
	return ivs
}
