/*
* Seed derivation module
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

package bootstrap

// splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// FeatureSeed derives the bootstrap seed of a single feature.
func FeatureSeed(global uint64, index int) uint64 {
	return mix(global ^ mix(uint64(index)))
}

// SubsetSeed derives the bootstrap seed of a feature subset. The seed depends
// on the order of indices; a one-element subset gets its feature's seed.
func SubsetSeed(global uint64, indices []int) uint64 {
	if len(indices) == 1 {
		return FeatureSeed(global, indices[0])
	}
	h := mix(uint64(len(indices)))
	for _, i := range indices {
		h = mix(h ^ uint64(i))
	}
	return mix(global ^ h)
}
