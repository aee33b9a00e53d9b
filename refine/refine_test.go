/*
 * refine_test.go, part of gocluster.
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

package refine

import (
	"math"
	"testing"

	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// argonPair returns two argon atoms, one at the origin and one at (x,0,0).
func argonPair(Te *testing.T, x float64) *cluster.Structure {
	props := cluster.DefaultProperties()
	a, err := cluster.NewAtom(0, "Ar", [3]float64{}, props)
	require.NoError(Te, err)
	b, err := cluster.NewAtom(1, "Ar", [3]float64{x, 0, 0}, props)
	require.NoError(Te, err)
	return cluster.NewStructure([]*cluster.Fragment{a, b}, nil)
}

// radial is a backend whose energy is (|r|-target)^2 for the atom with index atom.
type radial struct {
	atom   int
	target float64
	calls  int
}

func (r *radial) Energy(id int64, iter int, xyz []float64, symbols []string, atomicNumbers []int16,
	fragmentSizes []int, energyParts []float64, natoms int, charges []float32, spins []int16, bonds *cluster.BondTable) float64 {
	r.calls++
	x, y, z := xyz[r.atom], xyz[natoms+r.atom], xyz[2*natoms+r.atom]
	d := math.Sqrt(x*x+y*y+z*z) - r.target
	return d * d
}

// fixed always "finds" the same point.
type fixed struct {
	value float64
	point []float64
}

func (f fixed) Minimize(x0 []float64, fn func([]float64) float64, lower, upper []float64) (float64, []float64) {
	return f.value, append([]float64(nil), f.point...)
}

func inflateOnly() Config {
	c := DefaultConfig()
	c.Optimize = false
	c.BlowCD = 1
	return c
}

func TestInflate(Te *testing.T) {
	s := argonPair(Te, 2.0)
	R := New(inflateOnly(), collision.NewPairwise(nil), nil)
	r, res := R.Refine(s, []int{1})
	require.NoError(Te, res.Err)
	assert.Equal(Te, Done, res.State)
	//2.12 A is the sum of radii, so 2.0 and 2.1 clash, 2.2 doesn't.
	assert.InDelta(Te, 1.1, res.Inflation, 1e-9)
	assert.InDelta(Te, 2.2, r.Fragments[1].COM()[0], 1e-9)
	assert.Equal(Te, [3]float64{}, r.Fragments[0].COM())
	assert.Equal(Te, [3]float64{2, 0, 0}, s.Fragments[1].COM())
}

func TestInflationFailed(Te *testing.T) {
	s := argonPair(Te, 1.0)
	R := New(inflateOnly(), nil, nil)
	r, res := R.Refine(s, []int{1})
	assert.Equal(Te, InflationFailed, res.State)
	assert.Equal(Te, "inflation failed", res.State.String())
	assert.Equal(Te, [3]float64{1, 0, 0}, r.Fragments[1].COM())
}

func TestNothingToDo(Te *testing.T) {
	s := argonPair(Te, 1.0)
	R := New(DefaultConfig(), nil, nil)
	r, res := R.Refine(s, nil)
	assert.Equal(Te, Done, res.State)
	assert.Nil(Te, res.Point)
	assert.NotSame(Te, s, r)
}

func TestApplyBestPoint(Te *testing.T) {
	s := argonPair(Te, 3.0)
	cfg := DefaultConfig()
	cfg.Inflate = false
	R := New(cfg, nil, nil)
	p := []float64{0, 0, math.Pi / 2, 1, 1, 1}
	R.Optimizer(fixed{value: -1, point: normalize(p, R.lower(), R.upper())})
	r, res := R.Refine(s, []int{1})
	assert.Equal(Te, Done, res.State)
	assert.Equal(Te, 0.0, res.Initial)
	assert.Equal(Te, -1.0, res.Best)
	require.Len(Te, res.Point, 6)
	assert.InDelta(Te, math.Pi/2, res.Point[2], 1e-12)
	c := r.Fragments[1].COM()
	assert.InDelta(Te, 0, c[0], 1e-9)
	assert.InDelta(Te, -3, c[1], 1e-9)
	assert.InDelta(Te, 0, c[2], 1e-9)
}

func TestRejectWorsePoint(Te *testing.T) {
	s := argonPair(Te, 3.0)
	cfg := DefaultConfig()
	cfg.Inflate = false
	R := New(cfg, nil, nil)
	R.Optimizer(fixed{value: 1, point: []float64{1, 1, 1, 1, 1, 1}})
	r, res := R.Refine(s, []int{1})
	assert.Equal(Te, 0.0, res.Best)
	assert.Equal(Te, identity, res.Point)
	assert.Equal(Te, [3]float64{3, 0, 0}, r.Fragments[1].COM())
}

func TestNelderMead(Te *testing.T) {
	s := argonPair(Te, 3.0)
	cfg := DefaultConfig()
	cfg.Inflate = false
	backend := &radial{atom: 1, target: 3.6}
	R := New(cfg, collision.NewGrid(nil), backend)
	r, res := R.Refine(s, []int{1})
	assert.Equal(Te, Done, res.State)
	assert.InDelta(Te, 0.36, res.Initial, 1e-9)
	assert.Less(Te, res.Best, 0.02)
	assert.LessOrEqual(Te, backend.calls, cfg.Iterations+10)
	d := math.Sqrt(v3norm2(r.Fragments[1].COM()))
	assert.InDelta(Te, 3.6, d, 0.15)
}

func TestPenalties(Te *testing.T) {
	cfg := DefaultConfig()
	R := New(cfg, nil, nil)
	x0 := normalize(identity, R.lower(), R.upper())
	for _, v := range []struct {
		x    float64
		want float64
	}{
		{1.0, cfg.Penalty},
		{30.0, cfg.Penalty / 2},
		{3.0, 0},
	} {
		s := argonPair(Te, v.x)
		radii, err := s.Cartesian().Radii(R.Properties())
		require.NoError(Te, err)
		obj := R.objective(newShell(s, []int{1}), radii)
		assert.Equal(Te, v.want, obj.eval(x0), "distance %f", v.x)
	}
}

func TestNormalize(Te *testing.T) {
	R := New(DefaultConfig(), nil, nil)
	p := []float64{0.3, -1.2, 2.9, 0.9, 1.2, 1.4}
	n := normalize(p, R.lower(), R.upper())
	for _, v := range n {
		assert.True(Te, v >= 0 && v <= 1)
	}
	assert.InDeltaSlice(Te, p, denormalize(n, R.lower(), R.upper()), 1e-12)
	assert.Equal(Te, 6, DefaultConfig().inflationSteps())
}

func v3norm2(v [3]float64) float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}
