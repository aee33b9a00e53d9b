/*
 * testclusters.go, part of gocluster.
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

// Package testclusters builds small clusters for the tests of the other packages.
package testclusters

import (
	"math/rand"

	cluster "github.com/rmera/gocluster"
	v3 "github.com/rmera/gocluster/v3"
)

// Spacing is the distance between neighboring fragments in the lattice clusters.
const Spacing = 3.5

var waterRef = []float64{
	0, 0, 0.1173,
	0, 0.7572, -0.4692,
	0, -0.7572, -0.4692,
}

// Water returns a water molecule with species "water" at com, and its local bond table.
func Water(props *cluster.Properties, id int, com [3]float64) (*cluster.Fragment, *cluster.BondTable) {
	ref, _ := v3.NewMatrix(append([]float64(nil), waterRef...))
	f, err := cluster.NewFragmentFromCartesian(id, "water", ref, []string{"O", "H", "H"}, props)
	if err != nil {
		panic(err)
	}
	f.SetCOM(com)
	b := cluster.NewBondTable(3)
	b.SetBond(0, 1)
	b.SetBond(0, 2)
	return f, b
}

// Lattice returns n points of a simple cubic lattice with the given spacing, filled
// shell by shell around the origin, each displaced by up to jitter in every direction.
func Lattice(rng *rand.Rand, n int, spacing, jitter float64) [][3]float64 {
	ret := make([][3]float64, 0, n)
	side := 1
	for side*side*side < n {
		side++
	}
	half := float64(side-1) / 2
	for i := 0; i < side && len(ret) < n; i++ {
		for j := 0; j < side && len(ret) < n; j++ {
			for k := 0; k < side && len(ret) < n; k++ {
				p := [3]float64{(float64(i) - half) * spacing, (float64(j) - half) * spacing, (float64(k) - half) * spacing}
				for l := range p {
					p[l] += (rng.Float64()*2 - 1) * jitter
				}
				ret = append(ret, p)
			}
		}
	}
	return ret
}

// Mixed returns a cluster with nWater water molecules and nAr argon atoms, in random
// lattice positions with random orientations. Fragments are ordered waters first.
func Mixed(rng *rand.Rand, props *cluster.Properties, nWater, nAr int) *cluster.Structure {
	pos := Lattice(rng, nWater+nAr, Spacing, 0.2)
	rng.Shuffle(len(pos), func(i, j int) { pos[i], pos[j] = pos[j], pos[i] })
	frags := make([]*cluster.Fragment, 0, nWater+nAr)
	local := make([]*cluster.BondTable, 0, nWater+nAr)
	for i := 0; i < nWater; i++ {
		f, b := Water(props, i, pos[i])
		f.SetOrientation(cluster.RandomEulers(rng))
		frags = append(frags, f)
		local = append(local, b)
	}
	for i := nWater; i < nWater+nAr; i++ {
		f, err := cluster.NewAtom(i, "Ar", pos[i], props)
		if err != nil {
			panic(err)
		}
		frags = append(frags, f)
		local = append(local, nil)
	}
	return cluster.StructureFromFragments(frags, local)
}

// Argon returns an argon cluster of n atoms.
func Argon(rng *rand.Rand, props *cluster.Properties, n int) *cluster.Structure {
	return Mixed(rng, props, 0, n)
}

// Waters returns a water cluster of n molecules.
func Waters(rng *rand.Rand, props *cluster.Properties, n int) *cluster.Structure {
	return Mixed(rng, props, n, 0)
}

// Column returns a cluster of argon atoms stacked along z, Spacing apart, where
// atom i has species species[i].
func Column(props *cluster.Properties, species []string) *cluster.Structure {
	frags := make([]*cluster.Fragment, 0, len(species))
	for i, sp := range species {
		f, err := cluster.NewAtom(i, "Ar", [3]float64{0, 0, float64(i) * Spacing}, props)
		if err != nil {
			panic(err)
		}
		f.Species = sp
		frags = append(frags, f)
	}
	return cluster.NewStructure(frags, nil)
}
