/*
 * cartesian.go, part of gocluster.
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

package cluster

import v3 "github.com/rmera/gocluster/v3"

// Cartesian is the flat, per-atom view of a structure. Atoms are
// ordered fragment by fragment, so the atoms of fragment i start at
// the sum of FragmentSizes[:i].
type Cartesian struct {
	Coords        *v3.Matrix
	Symbols       []string
	AtomicNumbers []int16
	Charges       []float32
	Spins         []int16
	FragmentSizes []int
}

// NAtoms returns the number of atoms.
func (C *Cartesian) NAtoms() int {
	return len(C.Symbols)
}

// Flat puts the coordinates in buf, all x first, then all y, then all z,
// and returns it. buf is allocated if it is too short.
func (C *Cartesian) Flat(buf []float64) []float64 {
	n := C.NAtoms()
	if len(buf) < 3*n {
		buf = make([]float64, 3*n)
	}
	for k := 0; k < 3; k++ {
		C.Coords.Col(buf[k*n:(k+1)*n], k)
	}
	return buf[:3*n]
}

// Radii returns the covalent radii of the atoms.
func (C *Cartesian) Radii(props *Properties) ([]float64, error) {
	r, err := props.Radii(C.Symbols)
	return r, errDecorate(err, "Cartesian.Radii")
}

// FragmentOf returns, for each atom, the index of the fragment it belongs to.
func (C *Cartesian) FragmentOf() []int {
	ret := make([]int, 0, C.NAtoms())
	for i, v := range C.FragmentSizes {
		for j := 0; j < v; j++ {
			ret = append(ret, i)
		}
	}
	return ret
}
