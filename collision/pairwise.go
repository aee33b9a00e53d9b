/*
 * pairwise.go, part of gocluster.
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
	cluster "github.com/rmera/gocluster"
	v3 "github.com/rmera/gocluster/v3"
	"go.uber.org/zap"
)

// Pairwise compares every pair of atoms. It is O(N^2), and the reference
// for the other engines.
type Pairwise struct {
	o *Options
}

// NewPairwise returns a pairwise engine with a copy of the given options.
func NewPairwise(O *Options) *Pairwise {
	if O == nil {
		O = DefaultOptions()
	}
	return &Pairwise{o: O.copy()}
}

func (P *Pairwise) Name() string { return "pairwise" }

func (P *Pairwise) Detect(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) *Report {
	return P.detect(coords, radii, blow, bonds, P.o.firstOnly, P.o.distances)
}

func (P *Pairwise) HasClash(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) bool {
	return P.detect(coords, radii, blow, bonds, true, false).HasClash()
}

func (P *Pairwise) detect(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable, first, distances bool) *Report {
	n := len(radii)
	R := NewReport(n, distances)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if pairCheck(R, coords, radii, blow, bonds, P.o.scorer, i, j) && first {
				P.o.logger.Debug("clash", zap.String("engine", "pairwise"), zap.Int("i", i), zap.Int("j", j))
				return R
			}
		}
	}
	R.complete = distances
	return R
}
