/*
 * dissociation.go, part of gocluster.
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
	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Dissociated returns true if the atoms do not form one connected cluster, where two
// atoms are connected if distance(i,j) <= blowDiss*(radius(i)+radius(j)).
// If report is not nil and carries a complete distance matrix, its distances are used.
func Dissociated(coords *v3.Matrix, radii []float64, blowDiss float64, report *Report) bool {
	n := len(radii)
	if n < 2 {
		return false
	}
	useReport := report != nil && report.Complete() && report.Len() == n
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d float64
			if useReport {
				d = report.Dist(i, j)
			} else {
				d = coords.Distance(i, j)
			}
			if d <= blowDiss*(radii[i]+radii[j]) {
				g.SetEdge(g.NewEdge(g.Node(int64(i)), g.Node(int64(j))))
			}
		}
	}
	return len(topo.ConnectedComponents(g)) > 1
}
