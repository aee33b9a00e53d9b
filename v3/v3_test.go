/*
 * v3_test.go, part of gocluster.
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
	"testing"

	"gonum.org/v1/gonum/mat"
)

// Returns an identity matrix spanning span cols and rows
func gnEye(span int) *mat.Dense {
	A := mat.NewDense(span, span, nil)
	for i := 0; i < span; i++ {
		A.Set(i, i, 1.0)
	}
	return A
}

func TestGeo(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	T := Zeros(A.NVecs())
	T.Mul(A, gnEye(3))
	if !mat.Equal(T, A) {
		Te.Errorf("Multiplication by identity changed the matrix: %v", T)
	}
	View := A.VecView(1)
	View.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Errorf("Changes in a view are not reflected in the original matrix")
	}
	fmt.Println("View\n", A, "\n", View)
}

func TestBadMatrix(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("A slice with 4 elements should not make a Matrix")
	}
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	B.SomeVecs(A, cind)
	if B.At(2, 2) != 18 || B.At(0, 0) != 4 {
		Te.Errorf("Wrong vectors selected: %v", B)
	}
	B.Scale(0, B)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 0 || A.At(2, 0) != 7 {
		Te.Errorf("Wrong vectors set: %v", A)
	}
}

func TestAxesAndBounds(Te *testing.T) {
	A, _ := NewMatrix([]float64{-1, 2, 3, 4, -5, 6, 0, 0, -9})
	A.ScaleAxes(A, [3]float64{2, 1, 0.5})
	min, max := A.Bounds()
	if min != [3]float64{-2, -5, -4.5} || max != [3]float64{8, 2, 3} {
		Te.Errorf("Wrong bounds %v %v", min, max)
	}
	A.SubVec(A, [3]float64{1, 1, 1})
	if A.At(0, 0) != -3 {
		Te.Errorf("SubVec failed: %v", A)
	}
	if d := A.Distance(0, 0); d != 0 {
		Te.Errorf("Distance of a vector to itself is %f", d)
	}
}

func TestCross(Te *testing.T) {
	c := Cross([3]float64{1, 0, 0}, [3]float64{0, 1, 0})
	if c != [3]float64{0, 0, 1} {
		Te.Errorf("x cross y should be z, got %v", c)
	}
	if math.Abs(Norm(Unit([3]float64{3, 4, 12}))-1) > 1e-12 {
		Te.Errorf("Unit vector not normalized")
	}
	if Det(gnEye(3)) != 1 {
		Te.Errorf("Determinant of the identity is not one")
	}
}
