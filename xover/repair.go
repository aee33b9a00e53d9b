/*
 * repair.go, part of gocluster.
 *
 * Copyright 2024 The gocluster authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package xover

import (
	"math/rand"
	"sort"

	cluster "github.com/rmera/gocluster"
)

// ExchangeCounts returns how many fragments of each species are on the exchange side,
// where exchange[i] tells whether fragment i of s is.
func ExchangeCounts(s *cluster.Structure, exchange []bool) map[string]int {
	ret := make(map[string]int)
	for i, f := range s.Fragments {
		if exchange[i] {
			ret[f.Species]++
		}
	}
	return ret
}

// RepairStoichiometry swaps the poses of fragments of s until, for each species,
// the number of its fragments on the exchange side equals target. Each swap puts one
// fragment of a species lacking on the exchange side there, taking the pose of a
// fragment of a species in excess, both picked at random. Only poses move, the species
// of each position is kept. exchange[i] tells whether fragment i is on the exchange side,
// and is updated. It returns the number of swaps, at most the number of fragments, and false
// if the target can't be reached, in which case s is not modified.
func RepairStoichiometry(rng *rand.Rand, s *cluster.Structure, exchange []bool, target map[string]int) (int, bool) {
	below := make(map[string][]int)
	above := make(map[string][]int)
	for i, f := range s.Fragments {
		if exchange[i] {
			above[f.Species] = append(above[f.Species], i)
		} else {
			below[f.Species] = append(below[f.Species], i)
		}
	}
	names := make(map[string]bool)
	for _, f := range s.Fragments {
		names[f.Species] = true
	}
	for k := range target {
		names[k] = true
	}
	species := make([]string, 0, len(names))
	for k := range names {
		species = append(species, k)
	}
	sort.Strings(species)

	disc := make(map[string]int, len(species))
	var pos, neg []string
	total := 0
	for _, sp := range species {
		d := target[sp] - len(above[sp])
		disc[sp] = d
		total += d
		switch {
		case d > 0:
			if len(below[sp]) < d {
				return 0, false
			}
			pos = append(pos, sp)
		case d < 0:
			neg = append(neg, sp)
		}
	}
	if total != 0 {
		return 0, false
	}
	swaps := 0
	for len(pos) > 0 {
		sp := pos[0]
		ia := rng.Intn(len(below[sp]))
		a := below[sp][ia]
		in := rng.Intn(len(neg))
		t := neg[in]
		ib := rng.Intn(len(above[t]))
		b := above[t][ib]

		cluster.SwapPose(s.Fragments[a], s.Fragments[b])
		exchange[a], exchange[b] = true, false
		below[sp] = removeAt(below[sp], ia)
		above[sp] = append(above[sp], a)
		above[t] = removeAt(above[t], ib)
		below[t] = append(below[t], b)
		swaps++

		disc[sp]--
		if disc[sp] == 0 {
			pos = pos[1:]
		}
		disc[t]++
		if disc[t] == 0 {
			neg = append(neg[:in], neg[in+1:]...)
		}
	}
	return swaps, true
}

// removeAt removes the i-th element of l by moving the last one to its place.
func removeAt(l []int, i int) []int {
	last := len(l) - 1
	l[i] = l[last]
	return l[:last]
}
