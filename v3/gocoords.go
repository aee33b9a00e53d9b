/*
 * gocoords.go, part of gocluster.
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

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//METHODS

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	r := Zeros(F.NVecs())
	r.Copy(F)
	return r
}

// Vec returns a copy of the ith vector as an array.
func (F *Matrix) Vec(i int) [3]float64 {
	r := F.RawRowView(i)
	return [3]float64{r[0], r[1], r[2]}
}

// SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v [3]float64) {
	copy(F.RawRowView(i), v[:])
}

// AddVec adds a vector to each vector of A putting the result on the receiver.
func (F *Matrix) AddVec(A *Matrix, vec [3]float64) {
	ar := A.NVecs()
	if ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		f := F.RawRowView(i)
		for k := 0; k < 3; k++ {
			f[k] = a[k] + vec[k]
		}
	}
}

// SubVec subtracts the vector to each vector of the matrix A, putting
// the result on the receiver. Panics if matrices are mismatched.
func (F *Matrix) SubVec(A *Matrix, vec [3]float64) {
	F.AddVec(A, [3]float64{-vec[0], -vec[1], -vec[2]})
}

// ScaleAxes scales the x, y and z coordinates of every vector of A
// by the corresponding element of factors.
func (F *Matrix) ScaleAxes(A *Matrix, factors [3]float64) {
	ar := A.NVecs()
	if ar != F.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		a := A.RawRowView(i)
		f := F.RawRowView(i)
		for k := 0; k < 3; k++ {
			f[k] = a[k] * factors[k]
		}
	}
}

// SomeVecs puts in the receiver all the ith vectors of matrix A,
// where i are the numbers in clist, in the same order as the clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		copy(F.RawRowView(key), A.RawRowView(val))
	}
}

// SetVecs sets the vectors with index n = each value on clist, in the receiver, to the
// n vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		copy(F.RawRowView(val), A.RawRowView(key))
	}
}

// Col puts the ith column of F in dst, which is allocated if nil,
// and returns it.
func (F *Matrix) Col(dst []float64, i int) []float64 {
	return mat.Col(dst, i, F.Dense)
}

// Bounds returns the minimum and maximum of each coordinate over
// all the vectors in F.
func (F *Matrix) Bounds() (min, max [3]float64) {
	col := make([]float64, F.NVecs())
	for k := 0; k < 3; k++ {
		F.Col(col, k)
		min[k] = floats.Min(col)
		max[k] = floats.Max(col)
	}
	return
}

// Distance returns the euclidean distance between the vectors i and j of F.
func (F *Matrix) Distance(i, j int) float64 {
	return floats.Distance(F.RawRowView(i), F.RawRowView(j), 2)
}

// Cross returns the cross product of a and b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Dot returns the dot product of a and b.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Norm returns the euclidean norm of a.
func Norm(a [3]float64) float64 {
	return math.Sqrt(Dot(a, a))
}

// Unit returns a normalized copy of a. The zero vector is returned unchanged.
func Unit(a [3]float64) [3]float64 {
	n := Norm(a)
	if n <= appzero {
		return a
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}

// String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r+2)
	v = append(v, "\n[")
	for i := 0; i < r; i++ {
		row := F.RawRowView(i)
		line := fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2])
		if i == 0 {
			line = line[1:]
		}
		if i < r-1 {
			line += "\n"
		}
		v = append(v, line)
	}
	v = append(v, " ]")
	return strings.Join(v, "")
}

// Det returns the determinant of a 3x3 matrix. Panics if the matrix is not 3x3.
func Det(A mat.Matrix) float64 {
	r, c := A.Dims()
	if r != 3 || c != 3 {
		panic(ErrDeterminant)
	}
	return (A.At(0, 0)*(A.At(1, 1)*A.At(2, 2)-A.At(2, 1)*A.At(1, 2)) - A.At(1, 0)*(A.At(0, 1)*A.At(2, 2)-A.At(2, 1)*A.At(0, 2)) + A.At(2, 0)*(A.At(0, 1)*A.At(1, 2)-A.At(1, 1)*A.At(0, 2)))
}
