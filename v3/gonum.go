/*
 * gonum.go, part of gocluster.
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

//gonum.go contains what is needed to wrap the gonum mat.Dense type.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space, stored as the rows of an Nx3
// gonum Dense. Within the package, a "vector" is a row, i.e. the
// cartesian coordinates of one point.
type Matrix struct {
	*mat.Dense
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is used as backing storage, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}, true}
	}
	rows := l / cols
	if rows == 0 {
		return nil, Error{"Input slice is empty", []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

// VecView returns a view of the ith vector of the matrix.
// Changes in the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from the ith vector and spanning r vectors.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is a Matrix, possibly the receiver itself, so gonum can
// see through the wrapper.
func (F *Matrix) Mul(A, B mat.Matrix) {
	F.Dense.Mul(unwrap(A), unwrap(B))
}

// Copy copies A into the receiver.
func (F *Matrix) Copy(A mat.Matrix) {
	F.Dense.Copy(unwrap(A))
}

// Scale puts f*A in the receiver.
func (F *Matrix) Scale(f float64, A mat.Matrix) {
	F.Dense.Scale(f, unwrap(A))
}

func unwrap(A mat.Matrix) mat.Matrix {
	if M, ok := A.(*Matrix); ok {
		return M.Dense
	}
	return A
}

//Errors

// Error is the error type returned by the v3 package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix = PanicMsg("gocluster/v3: A Matrix should have 3 columns")
	ErrDeterminant  = PanicMsg("gocluster/v3: Determinants are only available for 3x3 matrices")
	ErrShape        = PanicMsg("gocluster/v3: Dimension mismatch")
)
