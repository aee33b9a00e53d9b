/*
 * cluster_test.go, part of gocluster.
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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/mat"
)

var props = DefaultProperties()

const waterXYZ = `3
water
O    0.000000    0.000000    0.117300
H    0.000000    0.757200   -0.469200
H    0.000000   -0.757200   -0.469200
`

func water(Te *testing.T, id int, com [3]float64) *Fragment {
	c, s, _, err := XYZRead(strings.NewReader(waterXYZ))
	if err != nil {
		Te.Fatal(err)
	}
	f, err := NewFragmentFromCartesian(id, "water", c, s, props)
	if err != nil {
		Te.Fatal(err)
	}
	f.SetCOM(com)
	return f
}

func waterDimer(Te *testing.T) *Structure {
	f1 := water(Te, 0, [3]float64{0, 0, 0})
	f2 := water(Te, 1, [3]float64{3, 0, 0})
	wb := NewBondTable(3)
	wb.SetBond(0, 1)
	wb.SetBond(0, 2)
	return StructureFromFragments([]*Fragment{f1, f2}, []*BondTable{wb, wb})
}

func TestBondTable(Te *testing.T) {
	B := NewBondTable(5)
	B.SetBond(0, 1)
	B.SetBond(3, 1)
	B.SetBond(2, 2)
	if !B.HasBond(1, 0) || !B.HasBond(1, 3) {
		Te.Error("Bonds should be symmetric")
	}
	if B.HasBond(2, 2) || B.NBonds() != 2 {
		Te.Errorf("An atom can't be bonded to itself. Bonds: %v", B.Bonds())
	}
	C := B.Copy()
	C.RemoveBond(0, 1)
	if !B.HasBond(0, 1) || C.HasBond(0, 1) {
		Te.Error("Copies of a bond table should be independent")
	}
	comps := B.Components()
	if len(comps) != 3 || fmt.Sprint(comps[0]) != "[0 1 3]" {
		Te.Errorf("Wrong components: %v", comps)
	}
	if !B.SizeCompatible(5) || B.SizeCompatible(4) {
		Te.Error("Wrong size compatibility")
	}
	D := NewBondTable(10)
	D.Embed(B, 5)
	if !D.HasBond(5, 6) || !D.HasBond(8, 6) || D.NBonds() != 2 {
		Te.Errorf("Wrong embedding: %v", D.Bonds())
	}
}

func TestAssignBonds(Te *testing.T) {
	S := waterDimer(Te)
	C := S.Cartesian()
	B, err := AssignBonds(C.Coords, C.Symbols, props)
	if err != nil {
		Te.Fatal(err)
	}
	if !B.Equal(S.Bonds) {
		Te.Errorf("Assigned bonds %v differ from the expected %v", B.Bonds(), S.Bonds.Bonds())
	}
}

func TestSanitize(Te *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		e := [3]float64{(rng.Float64() - 0.5) * 40, (rng.Float64() - 0.5) * 40, (rng.Float64() - 0.5) * 40}
		s := SanitizeEulers(e)
		if s != SanitizeEulers(s) {
			Te.Fatalf("Sanitization not idempotent for %v: %v %v", e, s, SanitizeEulers(s))
		}
		if s[0] <= -math.Pi || s[0] > math.Pi || s[1] <= -math.Pi/2 || s[1] > math.Pi/2 || s[2] <= -math.Pi || s[2] > math.Pi {
			Te.Fatalf("Angles %v out of range", s)
		}
		if !mat.EqualApprox(RotationMatrix(e), RotationMatrix(s), 1e-9) {
			Te.Fatalf("Sanitization changed the rotation for %v", e)
		}
		for _, f := range []func(float64) float64{SanitizePhi, SanitizePsi, SanitizeOmega} {
			if a := f(e[0]); a != f(a) {
				Te.Fatalf("Single angle sanitization not idempotent for %f", e[0])
			}
		}
	}
	for _, v := range []float64{math.Pi, -math.Pi, 3 * math.Pi, -math.Pi / 2, math.Pi / 2} {
		if p := SanitizePhi(v); p <= -math.Pi || p > math.Pi {
			Te.Errorf("SanitizePhi(%f)=%f", v, p)
		}
		if o := SanitizeOmega(v); o <= -math.Pi/2 || o > math.Pi/2 {
			Te.Errorf("SanitizeOmega(%f)=%f", v, o)
		}
	}
}

func TestEulersFromMatrix(Te *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		R := RandomRotation(rng)
		if d := v3.Det(R); math.Abs(d-1) > 1e-9 {
			Te.Fatalf("Random rotation with determinant %f", d)
		}
		e := EulersFromMatrix(R)
		if !mat.EqualApprox(R, RotationMatrix(e), 1e-9) {
			Te.Fatalf("Euler angles %v do not reproduce the rotation", e)
		}
	}
}

func TestFragmentCartesians(Te *testing.T) {
	f := water(Te, 0, [3]float64{1, 2, 3})
	c := f.Cartesians()
	if d := c.Distance(0, 1); math.Abs(d-0.9572) > 1e-3 {
		Te.Errorf("Wrong O-H distance %f", d)
	}
	f.SetOrientation([3]float64{0.3, 4, -7})
	o := f.Orientation()
	if o[1] > math.Pi/2 || o[1] <= -math.Pi/2 {
		Te.Errorf("Orientation setter did not sanitize: %v", o)
	}
	c2 := f.Cartesians()
	if math.Abs(c.Distance(0, 2)-c2.Distance(0, 2)) > 1e-9 {
		Te.Error("Rotation changed an internal distance")
	}
	g := f.Copy()
	g.Reference().Set(0, 0, 10)
	g.Symbols[0] = "S"
	if f.Reference().At(0, 0) == 10 || f.Symbols[0] != "O" {
		Te.Error("Fragment copies should be deep")
	}
	h := water(Te, 1, [3]float64{-5, 0, 0})
	SwapPose(f, h)
	if f.COM() != [3]float64{-5, 0, 0} || h.Orientation() != o {
		Te.Errorf("SwapPose failed: %v %v", f.COM(), h.Orientation())
	}
}

func TestFormula(Te *testing.T) {
	for in, out := range map[string]string{"O H H": "H2O", "C H H H H": "CH4", "H C O O": "CHO2", "Ar": "Ar", "Na Cl": "ClNa"} {
		if f := Formula(strings.Fields(in)); f != out {
			Te.Errorf("Formula for %s: %s, expected %s", in, f, out)
		}
	}
}

func TestFragmentCodec(Te *testing.T) {
	f := water(Te, 7, [3]float64{1.5, -2, 0.25})
	f.Species = "wäter-Ω\x00𝄞"
	f.SetOrientation([3]float64{0.1, -0.2, 0.3})
	f.Charges = []float32{-0.834, 0.417, 0.417}
	f.Spins = []int16{0, 1, -1}
	f.Energy = -76.4
	f.Constrained = true
	f.Constraints = [][3]bool{{true, false, false}, {false, false, true}, {false, true, false}}
	f.MakeFlexible()
	f.DoF[2][1] = false
	atom, err := NewAtom(3, "Ar", [3]float64{4, 5, 6}, props)
	if err != nil {
		Te.Fatal(err)
	}
	atom.Energy = 1.25
	atom.Charges[0] = 0.5
	atom.Constrained = true
	atom.Constraints = [][3]bool{{false, true, true}}
	for _, in := range []*Fragment{f, atom} {
		var buf bytes.Buffer
		if err := WriteFragment(&buf, in); err != nil {
			Te.Fatal(err)
		}
		written := buf.Len()
		out, err := ReadFragment(&buf)
		if err != nil {
			Te.Fatal(err)
		}
		if buf.Len() != 0 {
			Te.Errorf("%d bytes left unread of %d", buf.Len(), written)
		}
		compareFragments(Te, in, out)
		var again bytes.Buffer
		WriteFragment(&again, out)
		if again.Len() != written {
			Te.Errorf("Rewriting gives %d bytes, %d expected", again.Len(), written)
		}
	}
}

func compareFragments(Te *testing.T, a, b *Fragment) {
	Te.Helper()
	if a.ID != b.ID || a.Species != b.Species || a.Energy != b.Energy || a.COM() != b.COM() || a.Orientation() != b.Orientation() {
		Te.Errorf("Scalars differ: %+v %+v", a, b)
	}
	if fmt.Sprint(a.Symbols, a.AtomicNumbers, a.Charges, a.Spins) != fmt.Sprint(b.Symbols, b.AtomicNumbers, b.Charges, b.Spins) {
		Te.Errorf("Per-atom data differ")
	}
	if a.Flexible != b.Flexible || fmt.Sprint(a.DoF) != fmt.Sprint(b.DoF) {
		Te.Errorf("Degrees of freedom differ: %v %v", a.DoF, b.DoF)
	}
	if a.Constrained != b.Constrained || fmt.Sprint(a.Constraints) != fmt.Sprint(b.Constraints) {
		Te.Errorf("Constraints differ: %v %v", a.Constraints, b.Constraints)
	}
	if a.NAtoms() > 1 && !mat.Equal(a.Reference(), b.Reference()) {
		Te.Errorf("Reference coordinates differ")
	}
	if (a.ZMat == nil) != (b.ZMat == nil) || (a.ZMat != nil && fmt.Sprint(a.ZMat.Rows) != fmt.Sprint(b.ZMat.Rows)) {
		Te.Errorf("Z-matrices differ")
	}
}

func TestFragmentCodecErrors(Te *testing.T) {
	f := water(Te, 0, [3]float64{})
	var buf bytes.Buffer
	if err := WriteFragment(&buf, f); err != nil {
		Te.Fatal(err)
	}
	data := buf.Bytes()
	if _, err := ReadFragment(bytes.NewReader(data[:len(data)-3])); err == nil || !strings.Contains(err.Error(), ErrShortRead.Error()) {
		Te.Errorf("Truncated data should give a short read error, got %v", err)
	}
	bad := append([]byte{}, data...)
	copy(bad[4+2+len("water"):], []byte{0xff, 0xff, 0xff, 0xfe})
	if _, err := ReadFragment(bytes.NewReader(bad)); err == nil {
		Te.Error("A negative atom count should fail")
	}
	//a bare header claiming far too many constrained atoms
	var hdr bytes.Buffer
	binary.Write(&hdr, binary.BigEndian, int32(0))
	binary.Write(&hdr, binary.BigEndian, uint16(0))
	binary.Write(&hdr, binary.BigEndian, int32(100000000))
	hdr.Write([]byte{0, 1, 0})
	if _, err := ReadFragment(&hdr); !errors.Is(err, ErrBadAtomCount) {
		Te.Errorf("A huge atom count should give a bad atom count error, got %v", err)
	}
	if _, err := ReadFragment(bytes.NewReader(data[:6])); !errors.Is(err, ErrShortRead) {
		Te.Errorf("A truncated header should give a short read error, got %v", err)
	}
}

func TestZMatrix(Te *testing.T) {
	c, _ := v3.NewMatrix([]float64{0.1, 0.3, -0.2, 1.0, 0.2, 0.1, 1.5, 1.1, 0.4, 2.5, 1.0, 1.2, 3.1, 2.0, 0.7})
	Z := ZMatrixFromCartesian(c)
	back, err := Z.Cartesians()
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < c.NVecs(); i++ {
		for j := i + 1; j < c.NVecs(); j++ {
			if math.Abs(c.Distance(i, j)-back.Distance(i, j)) > 1e-9 {
				Te.Errorf("Distance %d-%d changed from %f to %f", i, j, c.Distance(i, j), back.Distance(i, j))
			}
		}
	}
	blob, _ := Z.MarshalBinary()
	Z2 := new(ZMatrix)
	if err := Z2.UnmarshalBinary(blob); err != nil || fmt.Sprint(Z2.Rows) != fmt.Sprint(Z.Rows) {
		Te.Errorf("Z-matrix blob does not round trip: %v", err)
	}
}

func TestStructure(Te *testing.T) {
	S := waterDimer(Te)
	if S.NAtoms() != 6 || S.NFragments() != 2 || S.Fitness != NotEvaluated {
		Te.Errorf("Wrong structure %d %d %f", S.NAtoms(), S.NFragments(), S.Fitness)
	}
	if err := S.MoveToCOM(props); err != nil {
		Te.Fatal(err)
	}
	com, _ := S.COM(props)
	if v3.Norm(com) > 1e-9 {
		Te.Errorf("COM not at the origin: %v", com)
	}
	before := S.Cartesian()
	S.Rotate(RandomRotation(rand.New(rand.NewSource(3))))
	after := S.Cartesian()
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			if math.Abs(before.Coords.Distance(i, j)-after.Coords.Distance(i, j)) > 1e-9 {
				Te.Fatalf("Rotation changed the distance %d-%d", i, j)
			}
		}
	}
	flat := after.Flat(nil)
	if flat[6] != after.Coords.At(0, 1) || flat[17] != after.Coords.At(5, 2) {
		Te.Error("Flat buffer not laid out as all x, all y, all z")
	}
	C := S.Copy()
	C.Fragments[0].SetCOM([3]float64{100, 0, 0})
	C.Bonds.RemoveBond(0, 1)
	if S.Fragments[0].COM()[0] == 100 || !S.Bonds.HasBond(0, 1) {
		Te.Error("Structure copies should be deep")
	}
	if err := C.CheckConsistency(S); err != nil {
		Te.Error(err)
	}
	C.Fragments[1].Species = "ice"
	if err := C.CheckConsistency(S); err == nil {
		Te.Error("A species change should fail the consistency check")
	}
}

func TestSizeMismatchPanics(Te *testing.T) {
	defer func() {
		if r := recover(); r != ErrBondTableMismatch {
			Te.Errorf("Expected a bond table mismatch panic, got %v", r)
		}
	}()
	f := water(Te, 0, [3]float64{})
	NewStructure([]*Fragment{f}, NewBondTable(4))
}

func TestStructureFromCartesian(Te *testing.T) {
	S := waterDimer(Te)
	C := S.Cartesian()
	//interleave the atoms of both waters
	order := []int{0, 3, 1, 4, 2, 5}
	coords := v3.Zeros(6)
	coords.SomeVecs(C.Coords, order)
	symbols := make([]string, 6)
	for i, v := range order {
		symbols[i] = C.Symbols[v]
	}
	B, err := AssignBonds(coords, symbols, props)
	if err != nil {
		Te.Fatal(err)
	}
	S2, err := StructureFromCartesian(coords, symbols, B, props, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if S2.NFragments() != 2 || S2.Fragments[1].Species != "H2O" || S2.Fragments[1].ID != 1 {
		Te.Fatalf("Wrong decomposition: %v", S2.Species())
	}
	if !S2.Bonds.HasBond(3, 4) || S2.Bonds.HasBond(2, 3) || S2.Bonds.NBonds() != 4 {
		Te.Errorf("Wrong bonds after decomposition: %v", S2.Bonds.Bonds())
	}
	C2 := S2.Cartesian()
	if math.Abs(C2.Coords.Distance(0, 3)-C.Coords.Distance(0, 3)) > 1e-9 {
		Te.Error("Decomposition changed the geometry")
	}
}

func TestXYZ(Te *testing.T) {
	c, s, comment, err := XYZRead(strings.NewReader(waterXYZ))
	if err != nil {
		Te.Fatal(err)
	}
	var buf bytes.Buffer
	if err := XYZWrite(&buf, c, s, comment); err != nil {
		Te.Fatal(err)
	}
	c2, s2, comment2, err := XYZRead(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if comment2 != "water" || strings.Join(s2, "") != "OHH" || !mat.EqualApprox(c, c2, 1e-6) {
		Te.Errorf("XYZ does not round trip: %s %v %v", comment2, s2, c2)
	}
	if _, _, _, err := XYZRead(strings.NewReader("3\n\nO 0 0 0\n")); err == nil {
		Te.Error("A truncated file should fail")
	}
}
