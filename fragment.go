/*
 * fragment.go, part of gocluster.
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
	"strconv"
	"strings"

	v3 "github.com/rmera/gocluster/v3"
)

// Fragment is a rigid (or Z-matrix flexible) molecule, or a single atom,
// placed in space by the external center of mass (COM) and three Euler angles.
// The reference coordinates are given in the body frame, centered on the COM.
type Fragment struct {
	ID      int
	Species string //fragments with equal Species are interchangeable

	Symbols       []string
	AtomicNumbers []int16
	Charges       []float32
	Spins         []int16
	Energy        float64

	Flexible bool
	DoF      [3][]bool //bond, angle and dihedral degrees of freedom of each atom
	ZMat     *ZMatrix

	Constrained bool
	Constraints [][3]bool //per atom, x, y and z

	com    [3]float64
	eulers [3]float64
	ref    *v3.Matrix
}

// NewFragment returns a rigid fragment with the given body-frame coordinates,
// which are copied. The atomic numbers are taken from props, charges and spins are zero.
func NewFragment(id int, species string, symbols []string, ref *v3.Matrix, props *Properties) (*Fragment, error) {
	if ref.NVecs() != len(symbols) {
		return nil, NewError(fmt.Sprintf("%d coordinates for %d atoms", ref.NVecs(), len(symbols)), "NewFragment", true)
	}
	n := len(symbols)
	F := &Fragment{
		ID:            id,
		Species:       species,
		Symbols:       append([]string(nil), symbols...),
		AtomicNumbers: make([]int16, n),
		Charges:       make([]float32, n),
		Spins:         make([]int16, n),
		ref:           ref.Clone(),
	}
	for i, v := range symbols {
		z, ok := props.AtomicNumber(v)
		if !ok {
			return nil, NewError("Unknown element "+v, "NewFragment", true)
		}
		F.AtomicNumbers[i] = z
	}
	return F, nil
}

// NewFragmentFromCartesian builds a fragment from its cartesian coordinates.
// The reference coordinates are the given ones, moved to the center of mass,
// which becomes the external COM of the fragment. The orientation is zero.
func NewFragmentFromCartesian(id int, species string, coords *v3.Matrix, symbols []string, props *Properties) (*Fragment, error) {
	F, err := NewFragment(id, species, symbols, coords, props)
	if err != nil {
		return nil, errDecorate(err, "NewFragmentFromCartesian")
	}
	com, err := F.MoveReferenceToCOM(props)
	if err != nil {
		return nil, errDecorate(err, "NewFragmentFromCartesian")
	}
	F.com = com
	return F, nil
}

// NewAtom returns a single-atom fragment at com, whose species is the element symbol.
func NewAtom(id int, symbol string, com [3]float64, props *Properties) (*Fragment, error) {
	F, err := NewFragment(id, symbol, []string{symbol}, v3.Zeros(1), props)
	if err != nil {
		return nil, errDecorate(err, "NewAtom")
	}
	F.com = com
	return F, nil
}

// NAtoms returns the number of atoms in the fragment.
func (F *Fragment) NAtoms() int {
	return len(F.Symbols)
}

// COM returns the external center of mass.
func (F *Fragment) COM() [3]float64 {
	return F.com
}

// SetCOM sets the external center of mass.
func (F *Fragment) SetCOM(com [3]float64) {
	F.com = com
}

// Orientation returns the Euler angles (phi, omega, psi) of the fragment.
func (F *Fragment) Orientation() [3]float64 {
	return F.eulers
}

// SetOrientation sets the Euler angles, sanitized to their canonical ranges.
func (F *Fragment) SetOrientation(e [3]float64) {
	F.eulers = SanitizeEulers(e)
}

// Reference returns the body-frame coordinates. Changes to the returned matrix
// are reflected in the fragment.
func (F *Fragment) Reference() *v3.Matrix {
	return F.ref
}

// SetReference replaces the body-frame coordinates with a copy of ref. It panics
// if the number of atoms does not match.
func (F *Fragment) SetReference(ref *v3.Matrix) {
	if ref.NVecs() != F.NAtoms() {
		panic(ErrAtomDataMismatch)
	}
	F.ref = ref.Clone()
}

// Copy returns a deep copy of the fragment.
func (F *Fragment) Copy() *Fragment {
	r := &Fragment{
		ID:            F.ID,
		Species:       F.Species,
		Symbols:       append([]string(nil), F.Symbols...),
		AtomicNumbers: append([]int16(nil), F.AtomicNumbers...),
		Charges:       append([]float32(nil), F.Charges...),
		Spins:         append([]int16(nil), F.Spins...),
		Energy:        F.Energy,
		Flexible:      F.Flexible,
		Constrained:   F.Constrained,
		com:           F.com,
		eulers:        F.eulers,
		ref:           F.ref.Clone(),
	}
	for i := range F.DoF {
		if F.DoF[i] != nil {
			r.DoF[i] = append([]bool(nil), F.DoF[i]...)
		}
	}
	if F.ZMat != nil {
		r.ZMat = F.ZMat.Copy()
	}
	if F.Constraints != nil {
		r.Constraints = append([][3]bool(nil), F.Constraints...)
	}
	return r
}

// Cartesians returns the cartesian coordinates of the fragment: the reference
// rotated by the Euler angles and translated to the COM.
func (F *Fragment) Cartesians() *v3.Matrix {
	return F.CartesiansTo(nil)
}

// CartesiansTo puts the cartesian coordinates of the fragment in res, which is
// allocated if nil, and returns it.
func (F *Fragment) CartesiansTo(res *v3.Matrix) *v3.Matrix {
	if res == nil {
		res = v3.Zeros(F.NAtoms())
	}
	if F.NAtoms() == 1 {
		res.SetVec(0, F.com)
		return res
	}
	RotateXYZ(res, F.ref, F.eulers)
	res.AddVec(res, F.com)
	return res
}

// MoveReferenceToCOM translates the reference coordinates so their center of mass
// is the origin. It returns the center of mass before the move.
func (F *Fragment) MoveReferenceToCOM(props *Properties) ([3]float64, error) {
	masses, err := props.Masses(F.Symbols)
	if err != nil {
		return [3]float64{}, errDecorate(err, "MoveReferenceToCOM")
	}
	com := centerOfMass(F.ref, masses)
	F.ref.SubVec(F.ref, com)
	return com, nil
}

// Mass returns the total mass of the fragment.
func (F *Fragment) Mass(props *Properties) (float64, error) {
	masses, err := props.Masses(F.Symbols)
	if err != nil {
		return 0, errDecorate(err, "Mass")
	}
	var m float64
	for _, v := range masses {
		m += v
	}
	return m, nil
}

// UpdateReferenceFromZMatrix rebuilds the reference coordinates of a flexible fragment
// from its Z-matrix, centered on the center of mass.
func (F *Fragment) UpdateReferenceFromZMatrix(props *Properties) error {
	if !F.Flexible || F.ZMat == nil {
		return NewError("Fragment is not flexible", "UpdateReferenceFromZMatrix", false)
	}
	c, err := F.ZMat.Cartesians()
	if err != nil {
		return errDecorate(err, "UpdateReferenceFromZMatrix")
	}
	if c.NVecs() != F.NAtoms() {
		return NewError("Z-matrix and fragment have different number of atoms", "UpdateReferenceFromZMatrix", true)
	}
	F.ref = c
	_, err = F.MoveReferenceToCOM(props)
	return errDecorate(err, "UpdateReferenceFromZMatrix")
}

// MakeFlexible builds a chain Z-matrix from the reference coordinates and marks
// all the internal coordinates as free.
func (F *Fragment) MakeFlexible() {
	F.Flexible = true
	F.ZMat = ZMatrixFromCartesian(F.ref)
	for i := range F.DoF {
		F.DoF[i] = make([]bool, F.NAtoms())
		for j := range F.DoF[i] {
			F.DoF[i][j] = true
		}
	}
}

// Formula returns the chemical formula of the fragment in Hill order.
func (F *Fragment) Formula() string {
	return Formula(F.Symbols)
}

// Formula returns the chemical formula for the given symbols in Hill order: C and H first
// (if C is present), then the rest alphabetically.
func Formula(symbols []string) string {
	counts := make(map[string]int)
	for _, v := range symbols {
		counts[v]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	_, carbon := counts["C"]
	sort.Slice(keys, func(i, j int) bool {
		if carbon {
			for _, first := range []string{"C", "H"} {
				if keys[i] == first {
					return keys[j] != first
				}
				if keys[j] == first {
					return false
				}
			}
		}
		return keys[i] < keys[j]
	})
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		if counts[k] > 1 {
			b.WriteString(strconv.Itoa(counts[k]))
		}
	}
	return b.String()
}

// SwapPose exchanges the COMs and orientations of a and b. Nothing else is exchanged.
func SwapPose(a, b *Fragment) {
	a.com, b.com = b.com, a.com
	a.eulers, b.eulers = b.eulers, a.eulers
}

// checkAtomData panics if the per-atom data of the fragment have different lengths.
func (F *Fragment) checkAtomData() {
	n := len(F.Symbols)
	if len(F.AtomicNumbers) != n || len(F.Charges) != n || len(F.Spins) != n || F.ref == nil || F.ref.NVecs() != n {
		panic(ErrAtomDataMismatch)
	}
	if F.Constrained && len(F.Constraints) != n {
		panic(ErrAtomDataMismatch)
	}
	if F.Flexible && (len(F.DoF[0]) != n || len(F.DoF[1]) != n || len(F.DoF[2]) != n) {
		panic(ErrAtomDataMismatch)
	}
}

// centerOfMass returns the mass-weighted center of the vectors in coords.
func centerOfMass(coords *v3.Matrix, masses []float64) [3]float64 {
	var com [3]float64
	var total float64
	for i, m := range masses {
		r := coords.RawRowView(i)
		for k := 0; k < 3; k++ {
			com[k] += m * r[k]
		}
		total += m
	}
	if total == 0 {
		return com
	}
	return scale3(1/total, com)
}
