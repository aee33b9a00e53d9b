/*
 * interfaces.go, part of gocluster.
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

import "math/rand"

// EnergyBackend is a black-box potential. xyz is a flattened coordinate
// buffer laid out as all-x, then all-y, then all-z (see Cartesian.Flat).
// energyParts, if not nil, receives one energy per fragment.
type EnergyBackend interface {
	Energy(id int64, iter int, xyz []float64, symbols []string, atomicNumbers []int16,
		fragmentSizes []int, energyParts []float64, natoms int, charges []float32,
		spins []int16, bonds *BondTable) float64
}

// Environment is a rigid or flexible medium surrounding a structure (a surface, a
// cavity, a solvent shell). The library only copies it, crosses it over and checks it.
type Environment interface {
	Copy() Environment
	//CreateOffspring returns the environments for the two children of
	//a crossover between the receiver and other.
	CreateOffspring(other Environment, rng *rand.Rand) (Environment, Environment)
	//FitsAround returns false if the structure overlaps with the environment.
	FitsAround(s *Structure) bool
}
