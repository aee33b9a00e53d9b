/*
 * cut.go, part of gocluster.
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

package xover

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	cluster "github.com/rmera/gocluster"
	v3 "github.com/rmera/gocluster/v3"
	"gonum.org/v1/gonum/floats"
)

// Degeneracy is the smallest gap between two order statistics that a cut can be placed in.
const Degeneracy = 1e-8

// Mode is a way of sampling the father's cut.
type Mode int

const (
	Uniform Mode = iota
	Gauss
	InvertedGauss
	Zero   //plane through the center of mass
	Median //half of the fragments on each side
)

func (m Mode) String() string {
	switch m {
	case Uniform:
		return "uniform"
	case Gauss:
		return "gauss"
	case InvertedGauss:
		return "invertedgauss"
	case Zero:
		return "zero"
	case Median:
		return "median"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	for m := Uniform; m <= Median; m++ {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return Uniform, cluster.NewError(fmt.Sprintf("Unknown cut mode %q", s), "xover.ParseMode", true)
}

// random returns true if sampling the cut with mode m can give different values each time.
func (m Mode) random() bool {
	return m != Zero && m != Median
}

// CutPrimitive is a geometric cut through a structure, centered at the origin.
// The fragments "below" a cut (side A) stay in place, the others (side B) are exchanged.
type CutPrimitive interface {
	Name() string
	//Values returns the coordinate of each fragment along the cut.
	Values(s *cluster.Structure) []float64
	//Random samples a cut for the given values, that need not be sorted.
	Random(values []float64, rng *rand.Rand, mode Mode, width float64) float64
	//Below returns true if a fragment with value v is on side A of the cut at cut.
	Below(v, cut float64) bool
	//Transfer returns the COM of a fragment on side B moved from a structure
	//cut at from into one cut at to.
	Transfer(com [3]float64, from, to float64) [3]float64
}

// Plane is a cut perpendicular to one of the cartesian axes.
type Plane struct {
	Axis int //0, 1 or 2 for x, y, z
}

func (P Plane) Name() string {
	return "plane-" + "xyz"[P.Axis:P.Axis+1]
}

func (P Plane) Values(s *cluster.Structure) []float64 {
	ret := make([]float64, s.NFragments())
	for i, f := range s.Fragments {
		ret[i] = f.COM()[P.Axis]
	}
	return ret
}

// Random samples a height for the plane. The gaussian modes sample g from a
// normal distribution of the given width, truncated to [-1,1], and put the plane
// at g times the largest (if g>=0) or the smallest (if g<0) value. The inverted
// gaussian mode favors cuts near the extremes.
func (P Plane) Random(values []float64, rng *rand.Rand, mode Mode, width float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min, max := floats.Min(values), floats.Max(values)
	switch mode {
	case Zero:
		return 0
	case Median:
		return median(values)
	case Gauss, InvertedGauss:
		g := truncatedGauss(rng, width)
		if mode == InvertedGauss {
			g = math.Copysign(1-math.Abs(g), g)
		}
		if g >= 0 {
			return g * max
		}
		return -g * min
	}
	return min + rng.Float64()*(max-min)
}

func (P Plane) Below(v, cut float64) bool {
	return v <= cut
}

func (P Plane) Transfer(com [3]float64, from, to float64) [3]float64 {
	com[P.Axis] += to - from
	return com
}

// Sphere is a cut by a sphere centered at the origin. Side A is its inside.
type Sphere struct {
	//If true, exchanged fragments are scaled radially by the ratio of the radii.
	AdjustRadius bool
}

func (S Sphere) Name() string {
	return "sphere"
}

func (S Sphere) Values(s *cluster.Structure) []float64 {
	ret := make([]float64, s.NFragments())
	for i, f := range s.Fragments {
		ret[i] = v3.Norm(f.COM())
	}
	return ret
}

// Random samples a radius for the sphere, as a fraction of the largest value.
func (S Sphere) Random(values []float64, rng *rand.Rand, mode Mode, width float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := floats.Max(values)
	switch mode {
	case Zero:
		return 0
	case Median:
		return median(values)
	case Gauss:
		return max * math.Abs(truncatedGauss(rng, width))
	case InvertedGauss:
		return max * (1 - math.Abs(truncatedGauss(rng, width)))
	}
	return max * rng.Float64()
}

func (S Sphere) Below(v, cut float64) bool {
	return v < cut
}

func (S Sphere) Transfer(com [3]float64, from, to float64) [3]float64 {
	if !S.AdjustRadius || from == 0 {
		return com
	}
	f := to / from
	return [3]float64{com[0] * f, com[1] * f, com[2] * f}
}

// ParseCut returns the cut primitive with the given name: plane-x, plane-y,
// plane-z, sphere, or sphere-fixed for a sphere without radial adjustment.
func ParseCut(name string) (CutPrimitive, error) {
	switch strings.ToLower(name) {
	case "plane-x", "x":
		return Plane{Axis: 0}, nil
	case "plane-y", "y":
		return Plane{Axis: 1}, nil
	case "plane-z", "z", "plane":
		return Plane{Axis: 2}, nil
	case "sphere":
		return Sphere{AdjustRadius: true}, nil
	case "sphere-fixed":
		return Sphere{}, nil
	}
	return nil, cluster.NewError(fmt.Sprintf("Unknown cut %q", name), "xover.ParseCut", true)
}

// FindCut returns a cut strictly between the k-th and the (k+1)-th smallest of the sorted values,
// so exactly k values fall below it. It returns false if k is out of range, or if both
// order statistics are closer than Degeneracy.
func FindCut(sorted []float64, k int) (float64, bool) {
	if k < 1 || k >= len(sorted) {
		return 0, false
	}
	lo, hi := sorted[k-1], sorted[k]
	if hi-lo < Degeneracy {
		return 0, false
	}
	return (lo + hi) / 2, true
}

// count returns how many of the values are below cut.
func count(C CutPrimitive, values []float64, cut float64) int {
	n := 0
	for _, v := range values {
		if C.Below(v, cut) {
			n++
		}
	}
	return n
}

func sortedCopy(values []float64) []float64 {
	ret := append([]float64(nil), values...)
	sort.Float64s(ret)
	return ret
}

// median returns a cut leaving half of the values (rounded down) below it.
func median(values []float64) float64 {
	s := sortedCopy(values)
	k := len(s) / 2
	if k == 0 {
		return s[0]
	}
	return (s[k-1] + s[k]) / 2
}

func truncatedGauss(rng *rand.Rand, width float64) float64 {
	for i := 0; i < 100; i++ {
		g := rng.NormFloat64() * width
		if g >= -1 && g <= 1 {
			return g
		}
	}
	return rng.Float64()*2 - 1
}
