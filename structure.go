/*
 * structure.go, part of gocluster.
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
	"math"
	"sort"

	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/mat"
)

// NotEvaluated is the fitness of a structure whose energy has not been computed.
const NotEvaluated = math.MaxFloat64

// Structure is a candidate solution: an ordered set of fragments, where the
// index of a fragment in Fragments is its identity, plus an optional environment,
// the bond table over all the atoms, the fitness and the lineage.
type Structure struct {
	Fragments []*Fragment
	Env       Environment
	Bonds     *BondTable
	Fitness   float64
	ID        int64
	FatherID  int64
	MotherID  int64
}

// NewStructure returns a structure with the given fragments, whose IDs are
// set to their positions. If bonds is nil, an empty table is created. It panics if
// bonds does not cover the atoms of the fragments.
func NewStructure(frags []*Fragment, bonds *BondTable) *Structure {
	S := &Structure{Fragments: frags, Fitness: NotEvaluated, FatherID: -1, MotherID: -1}
	if bonds == nil {
		bonds = NewBondTable(S.NAtoms())
	}
	S.Bonds = bonds
	S.ResetIDs()
	S.MustBeSizeCompatible()
	return S
}

// StructureFromFragments builds a structure from fragments that carry their own,
// fragment-local, bond tables, embedding them in one table for the whole structure.
func StructureFromFragments(frags []*Fragment, local []*BondTable) *Structure {
	S := &Structure{Fragments: frags}
	B := NewBondTable(S.NAtoms())
	offset := 0
	for i, f := range frags {
		if i < len(local) && local[i] != nil {
			B.Embed(local[i], offset)
		}
		offset += f.NAtoms()
	}
	return NewStructure(frags, B)
}

// NFragments returns the number of fragments.
func (S *Structure) NFragments() int {
	return len(S.Fragments)
}

// NAtoms returns the total number of atoms.
func (S *Structure) NAtoms() int {
	n := 0
	for _, v := range S.Fragments {
		if v == nil {
			panic(ErrNilFragment)
		}
		n += v.NAtoms()
	}
	return n
}

// FragmentSizes returns the number of atoms of each fragment.
func (S *Structure) FragmentSizes() []int {
	ret := make([]int, len(S.Fragments))
	for i, v := range S.Fragments {
		ret[i] = v.NAtoms()
	}
	return ret
}

// FragmentOffsets returns the global index of the first atom of each fragment.
func (S *Structure) FragmentOffsets() []int {
	ret := make([]int, len(S.Fragments))
	off := 0
	for i, v := range S.Fragments {
		ret[i] = off
		off += v.NAtoms()
	}
	return ret
}

// Species returns the species of each fragment, by position.
func (S *Structure) Species() []string {
	ret := make([]string, len(S.Fragments))
	for i, v := range S.Fragments {
		ret[i] = v.Species
	}
	return ret
}

// SortedSpecies returns the multiset of species of the structure, sorted.
func (S *Structure) SortedSpecies() []string {
	ret := S.Species()
	sort.Strings(ret)
	return ret
}

// SpeciesCount returns how many fragments of each species the structure has.
func (S *Structure) SpeciesCount() map[string]int {
	ret := make(map[string]int)
	for _, v := range S.Fragments {
		ret[v.Species]++
	}
	return ret
}

// ResetIDs sets the ID of each fragment to its position.
func (S *Structure) ResetIDs() {
	for i, v := range S.Fragments {
		v.ID = i
	}
}

// Copy returns a deep copy of the structure, including its environment.
func (S *Structure) Copy() *Structure {
	r := &Structure{
		Fragments: make([]*Fragment, len(S.Fragments)),
		Bonds:     S.Bonds.Copy(),
		Fitness:   S.Fitness,
		ID:        S.ID,
		FatherID:  S.FatherID,
		MotherID:  S.MotherID,
	}
	for i, v := range S.Fragments {
		r.Fragments[i] = v.Copy()
	}
	if S.Env != nil {
		r.Env = S.Env.Copy()
	}
	return r
}

// MustBeSizeCompatible panics if the bond table does not cover exactly the atoms
// of the structure.
func (S *Structure) MustBeSizeCompatible() {
	if !S.Bonds.SizeCompatible(S.NAtoms()) {
		panic(ErrBondTableMismatch)
	}
}

// COMs returns the external centers of mass of the fragments.
func (S *Structure) COMs() *v3.Matrix {
	ret := v3.Zeros(len(S.Fragments))
	for i, v := range S.Fragments {
		ret.SetVec(i, v.COM())
	}
	return ret
}

// COM returns the center of mass of the whole structure.
func (S *Structure) COM(props *Properties) ([3]float64, error) {
	coms := S.COMs()
	masses := make([]float64, len(S.Fragments))
	for i, v := range S.Fragments {
		m, err := v.Mass(props)
		if err != nil {
			return [3]float64{}, errDecorate(err, "Structure.COM")
		}
		masses[i] = m
	}
	return centerOfMass(coms, masses), nil
}

// Translate adds v to the COM of every fragment.
func (S *Structure) Translate(v [3]float64) {
	for _, f := range S.Fragments {
		f.SetCOM(add3(f.COM(), v))
	}
}

// MoveToCOM translates the structure so its center of mass is the origin.
func (S *Structure) MoveToCOM(props *Properties) error {
	com, err := S.COM(props)
	if err != nil {
		return errDecorate(err, "MoveToCOM")
	}
	S.Translate(scale3(-1, com))
	return nil
}

// Rotate rotates the whole structure about the origin by the rotation matrix R.
// Fragment COMs are rotated and R is composed into each fragment orientation.
func (S *Structure) Rotate(R mat.Matrix) {
	var comp mat.Dense
	for _, f := range S.Fragments {
		c := f.COM()
		nc := [3]float64{}
		for i := 0; i < 3; i++ {
			nc[i] = R.At(i, 0)*c[0] + R.At(i, 1)*c[1] + R.At(i, 2)*c[2]
		}
		f.SetCOM(nc)
		if f.NAtoms() == 1 {
			continue
		}
		comp.Mul(R, RotationMatrix(f.Orientation()))
		f.SetOrientation(EulersFromMatrix(&comp))
	}
}

// Cartesian returns the flat atom view of the structure.
func (S *Structure) Cartesian() *Cartesian {
	n := S.NAtoms()
	C := &Cartesian{
		Coords:        v3.Zeros(n),
		Symbols:       make([]string, 0, n),
		AtomicNumbers: make([]int16, 0, n),
		Charges:       make([]float32, 0, n),
		Spins:         make([]int16, 0, n),
		FragmentSizes: S.FragmentSizes(),
	}
	off := 0
	for _, f := range S.Fragments {
		na := f.NAtoms()
		f.CartesiansTo(C.Coords.View(off, na))
		C.Symbols = append(C.Symbols, f.Symbols...)
		C.AtomicNumbers = append(C.AtomicNumbers, f.AtomicNumbers...)
		C.Charges = append(C.Charges, f.Charges...)
		C.Spins = append(C.Spins, f.Spins...)
		off += na
	}
	return C
}

// CheckConsistency verifies that the structure has the same number of fragments as
// reference, and that every position holds a fragment of the same species, with the same
// atoms. It also checks that the bond table covers the structure.
func (S *Structure) CheckConsistency(reference *Structure) error {
	if len(S.Fragments) != len(reference.Fragments) {
		return NewError(fmt.Sprintf("%d fragments, %d expected", len(S.Fragments), len(reference.Fragments)), "CheckConsistency", false)
	}
	if !S.Bonds.SizeCompatible(S.NAtoms()) {
		return NewError("bond table does not match the structure", "CheckConsistency", false)
	}
	for i, f := range S.Fragments {
		r := reference.Fragments[i]
		if f.Species != r.Species {
			return NewError(fmt.Sprintf("fragment %d is %s, %s expected", i, f.Species, r.Species), "CheckConsistency", false)
		}
		if f.NAtoms() != r.NAtoms() {
			return NewError(fmt.Sprintf("fragment %d has %d atoms, %d expected", i, f.NAtoms(), r.NAtoms()), "CheckConsistency", false)
		}
		for j, s := range f.Symbols {
			if s != r.Symbols[j] {
				return NewError(fmt.Sprintf("atom %d of fragment %d is %s, %s expected", j, i, s, r.Symbols[j]), "CheckConsistency", false)
			}
		}
	}
	return nil
}

// SpeciesFunc returns a species identifier for the atoms of a fragment.
type SpeciesFunc func(symbols []string) string

// StructureFromCartesian decomposes a full set of cartesian coordinates into fragments,
// one per connected component of bonds. Atoms are reordered so those of each fragment
// are contiguous, fragments being ordered by their lowest original index. If speciesOf
// is nil, the chemical formula is used as species.
func StructureFromCartesian(coords *v3.Matrix, symbols []string, bonds *BondTable, props *Properties, speciesOf SpeciesFunc) (*Structure, error) {
	if coords.NVecs() != len(symbols) || !bonds.SizeCompatible(len(symbols)) {
		return nil, NewError("coordinates, symbols and bonds have different sizes", "StructureFromCartesian", true)
	}
	if speciesOf == nil {
		speciesOf = Formula
	}
	comps := bonds.Components()
	newIndex := make([]int, len(symbols))
	frags := make([]*Fragment, 0, len(comps))
	next := 0
	for i, c := range comps {
		fc := v3.Zeros(len(c))
		fc.SomeVecs(coords, c)
		fs := make([]string, len(c))
		for j, v := range c {
			fs[j] = symbols[v]
			newIndex[v] = next
			next++
		}
		f, err := NewFragmentFromCartesian(i, speciesOf(fs), fc, fs, props)
		if err != nil {
			return nil, errDecorate(err, "StructureFromCartesian")
		}
		frags = append(frags, f)
	}
	B := NewBondTable(len(symbols))
	for _, v := range bonds.Bonds() {
		B.SetBond(newIndex[v[0]], newIndex[v[1]])
	}
	return NewStructure(frags, B), nil
}
