/*
 * bonds.go, part of gocluster.
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

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// BondTable is the symmetric bonded/non-bonded relation between the atoms
// of a structure, indexed by global atom index. An atom is never bonded to itself.
// The table is a gonum undirected graph with one node per atom.
type BondTable struct {
	n int
	g *simple.UndirectedGraph
}

// NewBondTable returns a table for n atoms without bonds.
func NewBondTable(n int) *BondTable {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	return &BondTable{n: n, g: g}
}

// Len returns the number of atoms the table covers.
func (B *BondTable) Len() int {
	return B.n
}

// SizeCompatible returns true if the table covers exactly natoms atoms.
func (B *BondTable) SizeCompatible(natoms int) bool {
	return B != nil && B.n == natoms
}

func (B *BondTable) check(i, j int) {
	if i < 0 || j < 0 || i >= B.n || j >= B.n {
		panic(PanicMsg(fmt.Sprintf("gocluster: bond %d-%d out of range for a table of %d atoms", i, j, B.n)))
	}
}

// SetBond marks atoms i and j as bonded. Setting i==i is a no-op.
func (B *BondTable) SetBond(i, j int) {
	B.check(i, j)
	if i == j {
		return
	}
	B.g.SetEdge(B.g.NewEdge(B.g.Node(int64(i)), B.g.Node(int64(j))))
}

// RemoveBond marks atoms i and j as not bonded.
func (B *BondTable) RemoveBond(i, j int) {
	B.check(i, j)
	B.g.RemoveEdge(int64(i), int64(j))
}

// HasBond returns whether i and j are bonded.
func (B *BondTable) HasBond(i, j int) bool {
	if i == j {
		return false
	}
	return B.g.HasEdgeBetween(int64(i), int64(j))
}

// NBonds returns the number of bonded pairs.
func (B *BondTable) NBonds() int {
	return B.g.Edges().Len()
}

// Bonds returns the bonded pairs, lower index first, sorted.
func (B *BondTable) Bonds() [][2]int {
	it := B.g.Edges()
	ret := make([][2]int, 0, it.Len())
	for it.Next() {
		e := it.Edge()
		a, b := int(e.From().ID()), int(e.To().ID())
		if a > b {
			a, b = b, a
		}
		ret = append(ret, [2]int{a, b})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i][0] != ret[j][0] {
			return ret[i][0] < ret[j][0]
		}
		return ret[i][1] < ret[j][1]
	})
	return ret
}

// Copy returns a deep copy of the table.
func (B *BondTable) Copy() *BondTable {
	g := simple.NewUndirectedGraph()
	graph.Copy(g, B.g)
	return &BondTable{n: B.n, g: g}
}

// Equal returns true if both tables cover the same atoms and bonds.
func (B *BondTable) Equal(o *BondTable) bool {
	if B.n != o.n || B.NBonds() != o.NBonds() {
		return false
	}
	for _, v := range B.Bonds() {
		if !o.HasBond(v[0], v[1]) {
			return false
		}
	}
	return true
}

// Embed copies the bonds of the table o into the receiver, adding offset
// to every index. It is used to build the table of a structure from those
// of its fragments.
func (B *BondTable) Embed(o *BondTable, offset int) {
	for _, v := range o.Bonds() {
		B.SetBond(v[0]+offset, v[1]+offset)
	}
}

// Components returns the connected components of the table, each sorted,
// ordered by their lowest index.
func (B *BondTable) Components() [][]int {
	cc := topo.ConnectedComponents(B.g)
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		comp := make([]int, 0, len(c))
		for _, n := range c {
			comp = append(comp, int(n.ID()))
		}
		sort.Ints(comp)
		ret = append(ret, comp)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

// Graph returns the underlying graph. It should not be modified.
func (B *BondTable) Graph() graph.Undirected {
	return B.g
}

// AssignBonds returns a bond table for the given coordinates, based on a simple distance
// criterion, similar to that described in DOI:10.1186/1758-2946-3-33
// Atoms with more bonds than allowed for their element lose their longest bonds.
func AssignBonds(coord *v3.Matrix, symbols []string, props *Properties) (*BondTable, error) {
	tot := coord.NVecs()
	if tot != len(symbols) {
		return nil, NewError(fmt.Sprintf("%d coordinates but %d symbols", tot, len(symbols)), "AssignBonds", true)
	}
	radii, err := props.Radii(symbols)
	if err != nil {
		return nil, errDecorate(err, "AssignBonds")
	}
	B := NewBondTable(tot)
	dists := make(map[[2]int]float64)
	for i := 0; i < tot; i++ {
		for j := i + 1; j < tot; j++ {
			d := coord.Distance(i, j)
			if d < radii[i]+radii[j]+bondtol && d > tooclose {
				B.SetBond(i, j)
				dists[[2]int{i, j}] = d
			}
		}
	}
	//Now we check that no atom has too many bonds.
	for i := 0; i < tot; i++ {
		e, _ := props.Element(symbols[i])
		if e.MaxBonds == 0 {
			continue
		}
		nb := B.g.From(int64(i))
		if nb.Len() <= e.MaxBonds {
			continue
		}
		partners := make([]int, 0, nb.Len())
		for nb.Next() {
			partners = append(partners, int(nb.Node().ID()))
		}
		sort.Slice(partners, func(a, b int) bool { return bondDist(dists, i, partners[a]) < bondDist(dists, i, partners[b]) })
		for _, p := range partners[e.MaxBonds:] {
			B.RemoveBond(i, p) //we remove the longest bonds
		}
	}
	return B, nil
}

func bondDist(dists map[[2]int]float64, i, j int) float64 {
	if i > j {
		i, j = j, i
	}
	return dists[[2]int{i, j}]
}
