/*
 * doc.go, part of gocluster.
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

/*
Package cluster is the main package of the gocluster library. It provides the
candidate-structure model used by an evolutionary global optimization of
atomic and molecular clusters: fragments (rigid or flexible molecules, or
single atoms) placed in space by a center of mass and three Euler angles,
the structures made of them, and the bond table that tells which atoms are
bonded to each other.

	**gocluster Capabilities**

	Fragments with body-frame reference coordinates, an external pose
	(center of mass and yaw-pitch-roll Euler angles, always kept in their
	canonical ranges) and, for flexible fragments, a Z-matrix.

	Structures made of fragments, with lineage, fitness and a bond table
	backed by a gonum graph. Structures can be built from a plain set of
	cartesian coordinates, decomposing it into fragments by connectivity.

	A compact binary codec for fragments, and XYZ reading and writing.

	Collision detection, exact O(N^2) and grid-based O(N), in the
	subpackage collision.

	Spatial crossover (plane and sphere cuts) with stoichiometry repair, in
	the subpackage xover, and collision-aware rigid-body refinement of the
	offspring, in the subpackage refine.

	Compressed checkpoints of whole structures, in the subpackage checkpoint.

gocluster uses the v3.Matrix type for coordinates, based in gonum's mat.Dense.
Each row of a v3.Matrix represents one point in space.

Atomic properties (radii, masses, atomic numbers) are not looked up in global
tables. A *Properties table is passed to every function that needs them.
*/
package cluster
