/*
 * euler.go, part of gocluster.
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
	"math"
	"math/rand"

	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/mat"
)

//The orientation of a fragment is given by three yaw-pitch-roll Euler
//angles (phi, omega, psi). The canonical ranges are
//phi in (-pi,pi], omega in (-pi/2,pi/2] and psi in (-pi,pi].

// wrapPi wraps x into (-pi,pi]. Values already in range are returned unchanged.
func wrapPi(x float64) float64 {
	if x > -math.Pi && x <= math.Pi {
		return x
	}
	y := math.Mod(x+math.Pi, 2*math.Pi)
	if y <= 0 {
		y += 2 * math.Pi
	}
	r := y - math.Pi
	if r <= -math.Pi {
		r = math.Pi
	}
	return r
}

// SanitizePhi returns phi wrapped into (-pi,pi].
func SanitizePhi(phi float64) float64 {
	return wrapPi(phi)
}

// SanitizePsi returns psi wrapped into (-pi,pi].
func SanitizePsi(psi float64) float64 {
	return wrapPi(psi)
}

// SanitizeOmega returns omega wrapped, with period pi, into (-pi/2,pi/2].
// Unlike SanitizeEulers, it does not preserve the rotation.
func SanitizeOmega(omega float64) float64 {
	if omega > -math.Pi/2 && omega <= math.Pi/2 {
		return omega
	}
	y := math.Mod(omega+math.Pi/2, math.Pi)
	if y <= 0 {
		y += math.Pi
	}
	r := y - math.Pi/2
	if r <= -math.Pi/2 {
		r = math.Pi / 2
	}
	return r
}

// SanitizeEulers returns the angles in their canonical ranges. When
// omega falls outside (-pi/2,pi/2], it is folded back to the equivalent
// triplet (phi+pi, pi-omega, psi+pi), so the rotation is unchanged
// except for the gimbal-lock point omega=-pi/2. The function is idempotent.
func SanitizeEulers(e [3]float64) [3]float64 {
	phi, omega, psi := e[0], wrapPi(e[1]), e[2]
	if omega > math.Pi/2 {
		omega = math.Pi - omega
		phi += math.Pi
		psi += math.Pi
	} else if omega <= -math.Pi/2 {
		omega = -math.Pi - omega
		phi += math.Pi
		psi += math.Pi
	}
	return [3]float64{wrapPi(phi), SanitizeOmega(omega), wrapPi(psi)}
}

// RotationMatrix returns the 3x3 yaw-pitch-roll rotation matrix for the
// given Euler angles. A column vector v is rotated as R*v.
func RotationMatrix(e [3]float64) *mat.Dense {
	ps, pc := math.Sincos(e[0])
	os, oc := math.Sincos(e[1])
	ss, sc := math.Sincos(e[2])
	return mat.NewDense(3, 3, []float64{
		oc * sc, oc * ss, -os,
		ps*os*sc - pc*ss, ps*os*ss + pc*sc, ps * oc,
		pc*os*sc + ps*ss, pc*os*ss - ps*sc, pc * oc,
	})
}

// EulersFromMatrix returns sanitized Euler angles for the rotation matrix R,
// such that RotationMatrix(EulersFromMatrix(R)) reproduces R.
func EulersFromMatrix(R mat.Matrix) [3]float64 {
	s := -R.At(0, 2)
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	omega := math.Asin(s)
	oc := math.Cos(omega)
	var phi, psi float64
	if oc > 1e-10 {
		psi = math.Atan2(R.At(0, 1), R.At(0, 0))
		phi = math.Atan2(R.At(1, 2), R.At(2, 2))
	} else {
		//gimbal lock, only phi-psi (or phi+psi) is defined. We set psi to 0.
		psi = 0
		phi = math.Atan2(R.At(1, 0)*s, R.At(1, 1))
	}
	return SanitizeEulers([3]float64{phi, omega, psi})
}

// RotateXYZ puts in the receiver the coordinates in A rotated by the
// Euler angles. res may be A, and is allocated if nil.
func RotateXYZ(res, A *v3.Matrix, e [3]float64) *v3.Matrix {
	return RotateByMatrix(res, A, RotationMatrix(e))
}

// RotateByMatrix rotates the vectors of A by R, putting the result
// in res, which is allocated if nil and may be A.
func RotateByMatrix(res, A *v3.Matrix, R mat.Matrix) *v3.Matrix {
	if res == nil {
		res = v3.Zeros(A.NVecs())
	}
	//A holds row vectors, so we apply R as A*R^T
	res.Mul(A, R.T())
	return res
}

// RandomRotation returns a uniformly distributed random rotation matrix.
// It uses the normalized random quaternion method of Shoemake.
func RandomRotation(rng *rand.Rand) *mat.Dense {
	u1, u2, u3 := rng.Float64(), rng.Float64(), rng.Float64()
	a, b := math.Sqrt(1-u1), math.Sqrt(u1)
	s2, c2 := math.Sincos(2 * math.Pi * u2)
	s3, c3 := math.Sincos(2 * math.Pi * u3)
	w, x, y, z := a*s2, a*c2, b*s3, b*c3
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

// RandomEulers returns uniformly distributed random Euler angles.
func RandomEulers(rng *rand.Rand) [3]float64 {
	return EulersFromMatrix(RandomRotation(rng))
}
