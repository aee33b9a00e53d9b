/*
 * zmat.go, part of gocluster.
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
	"fmt"
	"math"

	v3 "github.com/rmera/gocluster/v3"
)

// ZRow is one line of a Z-matrix. Atom i is placed at Bond from BondTo,
// making the angle Angle (radians) with AngleTo and the dihedral Dihedral
// with DihedralTo. The first atom uses none of the references, the second
// only BondTo and the third BondTo and AngleTo.
type ZRow struct {
	BondTo, AngleTo, DihedralTo int
	Bond, Angle, Dihedral       float64
}

// ZMatrix holds the internal coordinates of a flexible fragment.
type ZMatrix struct {
	Rows []ZRow
}

// Len returns the number of atoms in the Z-matrix.
func (Z *ZMatrix) Len() int {
	return len(Z.Rows)
}

// Copy returns a deep copy of the Z-matrix.
func (Z *ZMatrix) Copy() *ZMatrix {
	r := make([]ZRow, len(Z.Rows))
	copy(r, Z.Rows)
	return &ZMatrix{Rows: r}
}

// Cartesians builds cartesian coordinates from the Z-matrix, using the
// natural extension reference frame method. The first atom lies at the
// origin, the second along x and the third in the xy plane.
func (Z *ZMatrix) Cartesians() (*v3.Matrix, error) {
	n := len(Z.Rows)
	if n == 0 {
		return nil, NewError("Empty Z-matrix", "ZMatrix.Cartesians", true)
	}
	pos := make([][3]float64, n)
	for i, r := range Z.Rows {
		if err := Z.checkRow(i); err != nil {
			return nil, errDecorate(err, "ZMatrix.Cartesians")
		}
		switch i {
		case 0:
			pos[0] = [3]float64{}
		case 1:
			pos[1] = add3(pos[r.BondTo], [3]float64{r.Bond, 0, 0})
		case 2:
			u := v3.Unit(sub3(pos[r.AngleTo], pos[r.BondTo]))
			perp := v3.Unit([3]float64{-u[1], u[0], 0})
			if v3.Norm(perp) < 0.5 {
				perp = [3]float64{1, 0, 0}
			}
			c, s := math.Cos(r.Angle), math.Sin(r.Angle)
			pos[2] = add3(pos[r.BondTo], scale3(r.Bond, add3(scale3(c, u), scale3(s, perp))))
		default:
			pos[i] = place(pos[r.DihedralTo], pos[r.AngleTo], pos[r.BondTo], r.Bond, r.Angle, r.Dihedral)
		}
	}
	ret := v3.Zeros(n)
	for i, v := range pos {
		ret.SetVec(i, v)
	}
	return ret, nil
}

func (Z *ZMatrix) checkRow(i int) error {
	r := Z.Rows[i]
	refs := []int{r.BondTo, r.AngleTo, r.DihedralTo}
	needed := i
	if needed > 3 {
		needed = 3
	}
	for k := 0; k < needed; k++ {
		if refs[k] < 0 || refs[k] >= i {
			return NewError(fmt.Sprintf("Row %d references atom %d, which is not yet placed", i, refs[k]), "checkRow", true)
		}
	}
	return nil
}

// place returns the position of the atom d such that |cd|=bond, the angle
// bcd is angle and the dihedral abcd is dihedral.
func place(a, b, c [3]float64, bond, angle, dihedral float64) [3]float64 {
	bc := v3.Unit(sub3(c, b))
	n := v3.Unit(v3.Cross(sub3(b, a), bc))
	m := v3.Cross(n, bc)
	sa, ca := math.Sincos(angle)
	sd, cd := math.Sincos(dihedral)
	d2 := [3]float64{-bond * ca, bond * sa * cd, bond * sa * sd}
	return add3(c, add3(scale3(d2[0], bc), add3(scale3(d2[1], m), scale3(d2[2], n))))
}

// ZMatrixFromCartesian builds a chain Z-matrix for the coordinates, where
// every atom refers to the three atoms preceding it.
func ZMatrixFromCartesian(coords *v3.Matrix) *ZMatrix {
	n := coords.NVecs()
	Z := &ZMatrix{Rows: make([]ZRow, n)}
	for i := 0; i < n; i++ {
		r := ZRow{BondTo: i - 1, AngleTo: i - 2, DihedralTo: i - 3}
		d := coords.Vec(i)
		if i >= 1 {
			r.Bond = v3.Norm(sub3(d, coords.Vec(i-1)))
		} else {
			r.BondTo = 0
		}
		if i >= 2 {
			r.Angle = angle3(d, coords.Vec(i-1), coords.Vec(i-2))
		} else {
			r.AngleTo = 0
		}
		if i >= 3 {
			r.Dihedral = dihedral3(coords.Vec(i-3), coords.Vec(i-2), coords.Vec(i-1), d)
		} else {
			r.DihedralTo = 0
		}
		Z.Rows[i] = r
	}
	return Z
}

// angle3 returns the angle abc.
func angle3(a, b, c [3]float64) float64 {
	u := v3.Unit(sub3(a, b))
	v := v3.Unit(sub3(c, b))
	cos := v3.Dot(u, v)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// dihedral3 returns the dihedral abcd, in (-pi,pi].
func dihedral3(a, b, c, d [3]float64) float64 {
	b1 := sub3(b, a)
	b2 := sub3(c, b)
	b3 := sub3(d, c)
	y := v3.Norm(b2) * v3.Dot(b1, v3.Cross(b2, b3))
	x := v3.Dot(v3.Cross(b1, b2), v3.Cross(b2, b3))
	return math.Atan2(y, x)
}

// size of one encoded Z-matrix row
const zrowSize = 3*4 + 3*8

// MarshalBinary encodes the Z-matrix as a big-endian blob.
func (Z *ZMatrix) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, int32(len(Z.Rows))); err != nil {
		return nil, err
	}
	for _, r := range Z.Rows {
		rec := struct {
			B, A, D       int32
			Bo, An, Dihed float64
		}{int32(r.BondTo), int32(r.AngleTo), int32(r.DihedralTo), r.Bond, r.Angle, r.Dihedral}
		if err := binary.Write(&buf, binary.BigEndian, rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a blob produced by MarshalBinary into the receiver.
func (Z *ZMatrix) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return fmt.Errorf("ZMatrix.UnmarshalBinary: %w", ErrShortRead)
	}
	if n < 0 || int(n)*zrowSize != r.Len() {
		return fmt.Errorf("ZMatrix.UnmarshalBinary: %d rows in a blob of %d bytes: %w", n, len(data), ErrBadAtomCount)
	}
	Z.Rows = make([]ZRow, n)
	for i := range Z.Rows {
		var rec struct {
			B, A, D       int32
			Bo, An, Dihed float64
		}
		if err := binary.Read(r, binary.BigEndian, &rec); err != nil {
			return fmt.Errorf("ZMatrix.UnmarshalBinary: %w", ErrShortRead)
		}
		Z.Rows[i] = ZRow{int(rec.B), int(rec.A), int(rec.D), rec.Bo, rec.An, rec.Dihed}
	}
	return nil
}

func add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale3(s float64, a [3]float64) [3]float64 {
	return [3]float64{s * a[0], s * a[1], s * a[2]}
}
