/*
 * grid.go, part of gocluster.
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
	"math"
	"sort"

	cluster "github.com/rmera/gocluster"
	v3 "github.com/rmera/gocluster/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

type cell [3]int

// halfShell holds the 13 lexicographically positive neighbor offsets. Together
// with the same-cell case, they visit each pair of neighboring cells exactly once.
var halfShell = func() []cell {
	ret := make([]cell, 0, 13)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if dx > 0 || (dx == 0 && dy > 0) || (dx == 0 && dy == 0 && dz > 0) {
					ret = append(ret, cell{dx, dy, dz})
				}
			}
		}
	}
	return ret
}()

// Grid partitions the bounding box of the atoms in cubic cells and compares
// only atoms in the same or in neighboring cells. It is O(N) for clusters of
// roughly uniform density. The cell edge is the largest of the Cutoff option
// and the largest possible blown radius sum, so atoms in non-neighboring cells
// can't clash.
type Grid struct {
	o *Options
}

// NewGrid returns a grid engine with a copy of the given options.
func NewGrid(O *Options) *Grid {
	if O == nil {
		O = DefaultOptions()
	}
	return &Grid{o: O.copy()}
}

func (G *Grid) Name() string { return "grid" }

func (G *Grid) Detect(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) *Report {
	return G.detect(coords, radii, blow, bonds, G.o.firstOnly, G.o.distances)
}

func (G *Grid) HasClash(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) bool {
	return G.detect(coords, radii, blow, bonds, true, false).HasClash()
}

// Edge returns the cell edge used for the given radii and blow factor.
func (G *Grid) Edge(radii []float64, blow float64) float64 {
	edge := G.o.cutoff
	if len(radii) > 0 {
		if m := 2 * blow * floats.Max(radii); m > edge {
			edge = m
		}
	}
	return edge
}

// cells assigns each atom to the cell containing it. It returns the
// occupied cells in lexicographic order.
func (G *Grid) cells(coords *v3.Matrix, edge float64) (map[cell][]int, []cell) {
	min, _ := coords.Bounds()
	grid := make(map[cell][]int)
	for i := 0; i < coords.NVecs(); i++ {
		r := coords.RawRowView(i)
		var c cell
		for k := 0; k < 3; k++ {
			c[k] = int(math.Floor((r[k] - min[k]) / edge))
		}
		grid[c] = append(grid[c], i)
	}
	keys := make([]cell, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		for k := 0; k < 3; k++ {
			if keys[a][k] != keys[b][k] {
				return keys[a][k] < keys[b][k]
			}
		}
		return false
	})
	return grid, keys
}

func (G *Grid) detect(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable, first, distances bool) *Report {
	n := len(radii)
	R := NewReport(n, distances)
	if n < 2 {
		R.complete = distances
		return R
	}
	edge := G.Edge(radii, blow)
	grid, keys := G.cells(coords, edge)
	for _, k := range keys {
		atoms := grid[k]
		//every unordered pair within the cell
		for a := 0; a < len(atoms); a++ {
			for b := a + 1; b < len(atoms); b++ {
				if pairCheck(R, coords, radii, blow, bonds, G.o.scorer, atoms[a], atoms[b]) && first {
					G.o.logger.Debug("clash", zap.String("engine", "grid"), zap.Int("i", atoms[a]), zap.Int("j", atoms[b]))
					return R
				}
			}
		}
		//every atom of the cell against every atom of each forward neighbor
		for _, off := range halfShell {
			other, ok := grid[cell{k[0] + off[0], k[1] + off[1], k[2] + off[2]}]
			if !ok {
				continue
			}
			for _, i := range atoms {
				for _, j := range other {
					if pairCheck(R, coords, radii, blow, bonds, G.o.scorer, i, j) && first {
						G.o.logger.Debug("clash", zap.String("engine", "grid"), zap.Int("i", i), zap.Int("j", j))
						return R
					}
				}
			}
		}
	}
	R.complete = distances && len(keys) == 1
	return R
}
