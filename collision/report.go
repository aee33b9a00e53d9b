/*
 * report.go, part of gocluster.
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

package collision

import (
	"fmt"
	"sort"
	"strings"
)

// FarAway is the distance reported for pairs of atoms that were not compared.
const FarAway = 1e6

// DefaultStrength is the strength given to every clash by the default scorer.
const DefaultStrength = 42.0

// Clash is a pair of non-bonded atoms closer than the sum of their blown radii. I < J.
type Clash struct {
	I, J     int
	Strength float64
}

// Report contains the result of a collision detection: the clashes found and,
// optionally, the symmetric matrix of pairwise distances.
type Report struct {
	n        int
	dist     []float64
	clashes  []Clash
	complete bool
}

// NewReport returns an empty report for n atoms, with a distance matrix
// filled with FarAway if distances is true.
func NewReport(n int, distances bool) *Report {
	R := &Report{n: n}
	if distances {
		R.dist = make([]float64, n*n)
		for i := range R.dist {
			R.dist[i] = FarAway
		}
		for i := 0; i < n; i++ {
			R.dist[i*n+i] = 0
		}
	}
	return R
}

// Len returns the number of atoms the report covers.
func (R *Report) Len() int {
	return R.n
}

// HasDistances returns whether the report carries a distance matrix.
func (R *Report) HasDistances() bool {
	return R.dist != nil
}

// Dist returns the distance between atoms i and j, or FarAway if it was
// not computed. It panics if the report carries no distances.
func (R *Report) Dist(i, j int) float64 {
	if R.dist == nil {
		panic("collision: report without distance matrix")
	}
	return R.dist[i*R.n+j]
}

func (R *Report) setDist(i, j int, d float64) {
	if R.dist == nil {
		return
	}
	R.dist[i*R.n+j] = d
	R.dist[j*R.n+i] = d
}

func (R *Report) add(i, j int, strength float64) {
	if i > j {
		i, j = j, i
	}
	R.clashes = append(R.clashes, Clash{I: i, J: j, Strength: strength})
}

// Complete returns true if every pairwise distance in the report was computed.
func (R *Report) Complete() bool {
	return R.complete
}

// HasClash returns true if at least one clash was found.
func (R *Report) HasClash() bool {
	return len(R.clashes) > 0
}

// NClashes returns the number of clashes found.
func (R *Report) NClashes() int {
	return len(R.clashes)
}

// Clashes returns the clashes found, sorted by I and then J.
func (R *Report) Clashes() []Clash {
	ret := append([]Clash(nil), R.clashes...)
	sort.Slice(ret, func(a, b int) bool {
		if ret[a].I != ret[b].I {
			return ret[a].I < ret[b].I
		}
		return ret[a].J < ret[b].J
	})
	return ret
}

// Pairs returns the atom pairs of the sorted clashes.
func (R *Report) Pairs() [][2]int {
	c := R.Clashes()
	ret := make([][2]int, len(c))
	for i, v := range c {
		ret[i] = [2]int{v.I, v.J}
	}
	return ret
}

// TotalStrength returns the sum of the strengths of all clashes.
func (R *Report) TotalStrength() float64 {
	var s float64
	for _, v := range R.clashes {
		s += v.Strength
	}
	return s
}

func (R *Report) String() string {
	if !R.HasClash() {
		return fmt.Sprintf("%d atoms, no clashes", R.n)
	}
	lines := []string{fmt.Sprintf("%d atoms, %d clashes", R.n, len(R.clashes))}
	for _, v := range R.Clashes() {
		lines = append(lines, fmt.Sprintf("  %d-%d strength %.3f", v.I, v.J, v.Strength))
	}
	return strings.Join(lines, "\n")
}
