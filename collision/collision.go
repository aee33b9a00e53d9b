/*
 * collision.go, part of gocluster.
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

// Package collision detects steric clashes: pairs of non-bonded atoms i,j with
// distance(i,j) <= blow*(radius(i)+radius(j)).
package collision

import (
	"fmt"
	"strings"

	cluster "github.com/rmera/gocluster"
	v3 "github.com/rmera/gocluster/v3"
)

// Scorer gives the strength of a clash between the atoms i and j, given the sum
// of their blown radii and their distance.
type Scorer interface {
	Score(i, j int, blownRadii, dist float64) float64
}

// ConstantScorer gives every clash the same strength.
type ConstantScorer float64

func (C ConstantScorer) Score(i, j int, blownRadii, dist float64) float64 {
	return float64(C)
}

// OverlapScorer gives each clash the overlap between both blown radii.
type OverlapScorer struct{}

func (O OverlapScorer) Score(i, j int, blownRadii, dist float64) float64 {
	return blownRadii - dist
}

// Engine is a collision detector. Engines keep no state between calls and
// are safe for concurrent use.
type Engine interface {
	//Detect returns the clashes in coords. radii are the (unblown) radii
	//of the atoms, and bonded pairs never clash.
	Detect(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) *Report
	//HasClash is the cheap path for Detect, it stops at the first clash
	//and computes no distance matrix.
	HasClash(coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable) bool
	Name() string
}

// New returns the engine with the given name ("pairwise" or "grid").
func New(name string, O *Options) (Engine, error) {
	if O == nil {
		O = DefaultOptions()
	}
	switch strings.ToLower(name) {
	case "pairwise", "naive", "simple":
		return NewPairwise(O), nil
	case "grid", "advanced":
		return NewGrid(O), nil
	}
	return nil, cluster.NewError(fmt.Sprintf("Unknown collision engine %q", name), "collision.New", true)
}

// Check runs the engine on the whole structure.
func Check(E Engine, S *cluster.Structure, props *cluster.Properties, blow float64) (*Report, error) {
	C := S.Cartesian()
	radii, err := C.Radii(props)
	if err != nil {
		return nil, err
	}
	return E.Detect(C.Coords, radii, blow, S.Bonds), nil
}

// StructureHasClash returns whether the structure has at least one clash.
func StructureHasClash(E Engine, S *cluster.Structure, props *cluster.Properties, blow float64) (bool, error) {
	C := S.Cartesian()
	radii, err := C.Radii(props)
	if err != nil {
		return false, err
	}
	return E.HasClash(C.Coords, radii, blow, S.Bonds), nil
}

// pairCheck tests one pair of atoms, recording the distance and any clash in R.
// It returns true if the pair clashes.
func pairCheck(R *Report, coords *v3.Matrix, radii []float64, blow float64, bonds *cluster.BondTable, scorer Scorer, i, j int) bool {
	d := coords.Distance(i, j)
	R.setDist(i, j, d)
	if bonds != nil && bonds.HasBond(i, j) {
		return false
	}
	blown := blow * (radii[i] + radii[j])
	if d > blown {
		return false
	}
	R.add(i, j, scorer.Score(i, j, blown, d))
	return true
}
