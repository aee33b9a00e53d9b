/*
 * xover_test.go, part of gocluster.
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
	"math/rand"
	"testing"

	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"github.com/rmera/gocluster/internal/testclusters"
	"github.com/rmera/gocluster/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func medianOptions() *Options {
	O := DefaultOptions()
	O.Mode(Median)
	return O
}

func centered(Te *testing.T, s *cluster.Structure) *cluster.Structure {
	c := s.Copy()
	require.NoError(Te, c.MoveToCOM(cluster.DefaultProperties()))
	return c
}

func assertCOMs(Te *testing.T, want, got *cluster.Structure, delta float64) {
	require.Equal(Te, want.NFragments(), got.NFragments())
	for i := range want.Fragments {
		w, g := want.Fragments[i].COM(), got.Fragments[i].COM()
		for k := 0; k < 3; k++ {
			assert.InDelta(Te, w[k], g[k], delta, "fragment %d axis %d", i, k)
		}
	}
}

func TestFindCut(Te *testing.T) {
	s := []float64{1, 2, 3, 4}
	c, ok := FindCut(s, 2)
	assert.True(Te, ok)
	assert.Equal(Te, 2.5, c)
	for _, k := range []int{0, 4, -1, 7} {
		_, ok = FindCut(s, k)
		assert.False(Te, ok, "k=%d", k)
	}
	_, ok = FindCut([]float64{1, 2, 2 + 1e-10, 3}, 2)
	assert.False(Te, ok)
	_, ok = FindCut([]float64{1, 2, 2 + 1e-10, 3}, 3)
	assert.True(Te, ok)
}

func TestPrimitives(Te *testing.T) {
	p := Plane{Axis: 1}
	assert.Equal(Te, "plane-y", p.Name())
	assert.True(Te, p.Below(1, 1))
	assert.False(Te, p.Below(1.1, 1))
	assert.Equal(Te, [3]float64{1, 4, 3}, p.Transfer([3]float64{1, 2, 3}, 0.5, 2.5))
	s := Sphere{AdjustRadius: true}
	assert.False(Te, s.Below(1, 1))
	assert.True(Te, s.Below(0.9, 1))
	assert.Equal(Te, [3]float64{2, 4, 6}, s.Transfer([3]float64{1, 2, 3}, 1, 2))
	assert.Equal(Te, [3]float64{1, 2, 3}, Sphere{}.Transfer([3]float64{1, 2, 3}, 1, 2))
	for _, name := range []string{"plane-x", "y", "plane-z", "sphere", "sphere-fixed"} {
		c, err := ParseCut(name)
		require.NoError(Te, err)
		assert.NotNil(Te, c)
	}
	_, err := ParseCut("cylinder")
	assert.Error(Te, err)
	for m := Uniform; m <= Median; m++ {
		p, err := ParseMode(m.String())
		require.NoError(Te, err)
		assert.Equal(Te, m, p)
	}
	_, err = ParseMode("cauchy")
	assert.Error(Te, err)
}

func TestRandomCuts(Te *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := []float64{-3, -1, 0.5, 2, 4}
	for _, m := range []Mode{Uniform, Gauss, InvertedGauss} {
		for i := 0; i < 200; i++ {
			c := Plane{}.Random(values, rng, m, 0.5)
			assert.True(Te, c >= -3 && c <= 4, "plane %s %f", m, c)
			r := Sphere{}.Random([]float64{1, 2, 5}, rng, m, 0.5)
			assert.True(Te, r >= 0 && r <= 5, "sphere %s %f", m, r)
		}
	}
	assert.Equal(Te, 0.0, Plane{}.Random(values, rng, Zero, 1))
	assert.Equal(Te, 0.5*(-1+0.5), Plane{}.Random(values, rng, Median, 1))
}

// Two identical argon clusters, cut at the median height, give back two copies of the parent.
func TestIdenticalParents(Te *testing.T) {
	props := cluster.DefaultProperties()
	father := testclusters.Argon(rand.New(rand.NewSource(13)), props, 13)
	father.ID = 4
	mother := father.Copy()
	mother.ID = 5
	X := New(Plane{Axis: 2}, rand.New(rand.NewSource(2)), medianOptions())
	R := X.Run(mother, father, 9)
	require.True(Te, R.OK(), R.Failure.String())
	assert.Equal(Te, R.FatherCut, R.MotherCut)
	assert.Equal(Te, 0, R.Swaps)
	assert.Equal(Te, R.Exchanged1, R.Exchanged2)
	assert.Len(Te, R.Exchanged1, 13-6)
	want := centered(Te, father)
	assertCOMs(Te, want, R.Child1, 1e-12)
	assertCOMs(Te, want, R.Child2, 1e-12)
	for _, c := range []*cluster.Structure{R.Child1, R.Child2} {
		assert.Equal(Te, int64(9), c.ID)
		assert.Equal(Te, int64(4), c.FatherID)
		assert.Equal(Te, int64(5), c.MotherID)
		assert.Equal(Te, cluster.NotEvaluated, c.Fitness)
	}
}

// Father has 3 A and 2 B above the median plane, the mother 1 A and 4 B.
func TestTwoSpeciesRepair(Te *testing.T) {
	props := cluster.DefaultProperties()
	father := testclusters.Column(props, []string{"A", "A", "A", "B", "B", "A", "A", "A", "B", "B"})
	mother := testclusters.Column(props, []string{"A", "A", "A", "A", "A", "A", "B", "B", "B", "B"})

	m := centered(Te, mother)
	values := Plane{Axis: 2}.Values(m)
	cut := median(values)
	exchange := make([]bool, len(values))
	for i, v := range values {
		exchange[i] = v > cut
	}
	assert.Equal(Te, map[string]int{"A": 1, "B": 4}, ExchangeCounts(m, exchange))
	target := map[string]int{"A": 3, "B": 2}
	swaps, ok := RepairStoichiometry(rand.New(rand.NewSource(3)), m, exchange, target)
	require.True(Te, ok)
	assert.Equal(Te, 2, swaps)
	assert.Equal(Te, target, ExchangeCounts(m, exchange))
	//the flags follow the poses
	for i, v := range (Plane{Axis: 2}).Values(m) {
		assert.Equal(Te, v > cut, exchange[i], "fragment %d", i)
	}

	X := New(Plane{Axis: 2}, rand.New(rand.NewSource(4)), medianOptions())
	R := X.Run(mother, father, 1)
	require.True(Te, R.OK(), R.Failure.String())
	assert.Equal(Te, 2, R.Swaps)
	assert.Equal(Te, []int{5, 6, 7, 8, 9}, R.Exchanged1)
	assert.Equal(Te, father.Species(), R.Child1.Species())
	assert.Equal(Te, mother.Species(), R.Child2.Species())
	mex := make([]bool, 10)
	for _, j := range R.Exchanged2 {
		mex[j] = true
	}
	assert.Equal(Te, target, ExchangeCounts(R.Child2, mex))
}

// With different cut radii, the exchanged fragments are scaled by their ratio.
func TestSphereScaling(Te *testing.T) {
	props := cluster.DefaultProperties()
	father := testclusters.Argon(rand.New(rand.NewSource(21)), props, 13)
	mother := father.Copy()
	for _, f := range mother.Fragments {
		c := f.COM()
		f.SetCOM([3]float64{1.4 * c[0], 1.4 * c[1], 1.4 * c[2]})
	}
	X := New(Sphere{AdjustRadius: true}, rand.New(rand.NewSource(5)), medianOptions())
	R := X.Run(mother, father, 2)
	require.True(Te, R.OK(), R.Failure.String())
	ratio := R.MotherCut / R.FatherCut
	assert.InDelta(Te, 1.4, ratio, 1e-9)
	require.NotEmpty(Te, R.Exchanged1)
	require.Equal(Te, len(R.Exchanged1), len(R.Exchanged2))
	cf, cm := centered(Te, father), centered(Te, mother)
	for k, i := range R.Exchanged1 {
		j := R.Exchanged2[k]
		fromMother := cm.Fragments[j].COM()
		fromFather := cf.Fragments[i].COM()
		got1, got2 := R.Child1.Fragments[i].COM(), R.Child2.Fragments[j].COM()
		for a := 0; a < 3; a++ {
			assert.InDelta(Te, fromMother[a]/ratio, got1[a], 1e-9)
			assert.InDelta(Te, fromFather[a]*ratio, got2[a], 1e-9)
		}
	}
	assert.NoError(Te, R.Child1.CheckConsistency(father))
	assert.NoError(Te, R.Child2.CheckConsistency(mother))
}

func TestStoichiometryAndCounts(Te *testing.T) {
	props := cluster.DefaultProperties()
	rng := rand.New(rand.NewSource(17))
	cuts := []CutPrimitive{Plane{0}, Plane{1}, Plane{2}, Sphere{AdjustRadius: true}, Sphere{}}
	modes := []Mode{Uniform, Gauss, InvertedGauss, Median}
	successes := 0
	for t := 0; t < 60; t++ {
		father := testclusters.Mixed(rng, props, 5, 7)
		mother := testclusters.Mixed(rng, props, 5, 7)
		father.ID, mother.ID = 1, 2
		before := father.Copy()
		O := DefaultOptions()
		O.Mode(modes[t%len(modes)])
		O.Rotate(t%2 == 0)
		X := New(cuts[t%len(cuts)], rand.New(rand.NewSource(int64(t))), O)
		c1, c2, ok := X.Crossover(mother, father, int64(100+t))
		assertCOMs(Te, before, father, 0)
		if !ok {
			assert.Nil(Te, c1)
			assert.Nil(Te, c2)
			continue
		}
		successes++
		assert.Equal(Te, father.SortedSpecies(), c1.SortedSpecies())
		assert.Equal(Te, mother.SortedSpecies(), c2.SortedSpecies())
		assert.Equal(Te, father.NFragments(), c1.NFragments())
		assert.Equal(Te, mother.NFragments(), c2.NFragments())
		assert.Equal(Te, father.NAtoms(), c1.NAtoms())
		assert.NoError(Te, c1.CheckConsistency(father))
		assert.NoError(Te, c2.CheckConsistency(mother))
		for i, f := range c1.Fragments {
			assert.Equal(Te, i, f.ID)
		}
	}
	assert.Greater(Te, successes, 40)
}

func TestRepairConvergence(Te *testing.T) {
	props := cluster.DefaultProperties()
	rng := rand.New(rand.NewSource(8))
	names := []string{"A", "B", "C"}
	for t := 0; t < 100; t++ {
		n := 2 + rng.Intn(40)
		species := make([]string, n)
		for i := range species {
			species[i] = names[rng.Intn(len(names))]
		}
		s := testclusters.Column(props, species)
		m := 1 + rng.Intn(n-1)
		exchange := make([]bool, n)
		for _, i := range rng.Perm(n)[:m] {
			exchange[i] = true
		}
		//the father is a permutation of the same species.
		fex := make([]bool, n)
		for _, i := range rng.Perm(n)[:m] {
			fex[i] = true
		}
		perm := rng.Perm(n)
		fspecies := make([]string, n)
		for i, p := range perm {
			fspecies[i] = species[p]
		}
		target := ExchangeCounts(testclusters.Column(props, fspecies), fex)
		want := 0
		current := ExchangeCounts(s, exchange)
		for k, v := range target {
			if d := v - current[k]; d > 0 {
				want += d
			}
		}
		var sum [3]float64
		for _, f := range s.Fragments {
			sum = add(sum, f.COM())
		}
		swaps, ok := RepairStoichiometry(rng, s, exchange, target)
		require.True(Te, ok)
		assert.Equal(Te, want, swaps)
		assert.LessOrEqual(Te, swaps, n)
		assert.Equal(Te, target, ExchangeCounts(s, exchange))
		assert.Equal(Te, m, trues(exchange))
		assert.Equal(Te, species, s.Species())
		var after [3]float64
		for _, f := range s.Fragments {
			after = add(after, f.COM())
		}
		assert.InDeltaSlice(Te, sum[:], after[:], 1e-9)
	}
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func TestRepairImpossible(Te *testing.T) {
	props := cluster.DefaultProperties()
	s := testclusters.Column(props, []string{"A", "A", "B"})
	exchange := []bool{false, true, true}
	before := s.Copy()
	_, ok := RepairStoichiometry(rand.New(rand.NewSource(1)), s, exchange, map[string]int{"C": 2})
	assert.False(Te, ok)
	_, ok = RepairStoichiometry(rand.New(rand.NewSource(1)), s, exchange, map[string]int{"A": 3})
	assert.False(Te, ok)
	assertCOMs(Te, before, s, 0)
	assert.Equal(Te, []bool{false, true, true}, exchange)
}

// shifted moves the boundary of the plane, so the sides found don't match the order statistics.
type shifted struct {
	Plane
}

func (s shifted) Below(v, cut float64) bool {
	return v < cut-2
}

func TestFailures(Te *testing.T) {
	props := cluster.DefaultProperties()
	col := func(n int) *cluster.Structure {
		sp := make([]string, n)
		for i := range sp {
			sp[i] = "Ar"
		}
		return testclusters.Column(props, sp)
	}
	rng := rand.New(rand.NewSource(6))

	_, _, f := New(shifted{Plane{Axis: 2}}, rng, nil).CrossoverReason(col(10), col(10), 1)
	assert.Equal(Te, SideMismatch, f)

	//two fragments of the mother at the same height
	mother := col(4)
	mother.Fragments[2].SetCOM([3]float64{4, 0, testclusters.Spacing})
	_, _, f = New(Plane{Axis: 2}, rng, medianOptions()).CrossoverReason(mother, col(4), 1)
	assert.Equal(Te, Degenerate, f)

	O := DefaultOptions()
	O.Mode(Zero)
	R := New(Sphere{}, rng, O).Run(col(5), col(5), 1)
	assert.Equal(Te, NoCut, R.Failure)
	assert.Equal(Te, 1, R.Attempts)
	assert.Equal(Te, "no cut", R.Failure.String())

	other := testclusters.Column(props, []string{"Ar", "Ar", "Ar", "B"})
	_, _, f = New(Plane{Axis: 2}, rng, medianOptions()).CrossoverReason(other, col(4), 1)
	assert.Equal(Te, RepairMismatch, f)

	_, _, f = New(Plane{Axis: 2}, rng, nil).CrossoverReason(col(5), col(4), 1)
	assert.Equal(Te, Inconsistent, f)

	O = medianOptions()
	O.PostCheck(collision.NewGrid(nil))
	O.Blow(10)
	_, _, f = New(Plane{Axis: 2}, rng, O).CrossoverReason(col(6), col(6), 1)
	assert.Equal(Te, Clash, f)
}

func TestSingleFragment(Te *testing.T) {
	props := cluster.DefaultProperties()
	a := testclusters.Column(props, []string{"Ar"})
	b := testclusters.Column(props, []string{"Ar"})
	b.Fragments[0].SetCOM([3]float64{1, 2, 3})
	c1, c2, ok := New(Sphere{}, rand.New(rand.NewSource(1)), nil).Crossover(b, a, 3)
	require.True(Te, ok)
	assert.Equal(Te, a.Fragments[0].COM(), c1.Fragments[0].COM())
	assert.Equal(Te, [3]float64{1, 2, 3}, c2.Fragments[0].COM())
	assert.Equal(Te, int64(3), c1.ID)
	assert.NotSame(Te, a.Fragments[0], c1.Fragments[0])
}

func TestBondTableMismatchPanics(Te *testing.T) {
	props := cluster.DefaultProperties()
	a := testclusters.Column(props, []string{"Ar", "Ar"})
	b := testclusters.Column(props, []string{"Ar", "Ar"})
	b.Bonds = cluster.NewBondTable(5)
	assert.Panics(Te, func() { New(Plane{}, rand.New(rand.NewSource(1)), nil).Run(a, b, 1) })
}

type box struct {
	gen   int
	fits  bool
	dirty bool //CreateOffspring scribbles on both environments
}

func (b *box) Copy() cluster.Environment {
	c := *b
	return &c
}

func (b *box) CreateOffspring(other cluster.Environment, rng *rand.Rand) (cluster.Environment, cluster.Environment) {
	o := other.(*box)
	if b.dirty {
		b.gen, o.gen = -1, -1
		return &box{gen: 1, fits: true}, &box{gen: 10, fits: true}
	}
	return &box{gen: b.gen + 1, fits: b.fits}, &box{gen: o.gen + 10, fits: o.fits}
}

func (b *box) FitsAround(s *cluster.Structure) bool {
	return b.fits
}

func TestEnvironment(Te *testing.T) {
	props := cluster.DefaultProperties()
	father := testclusters.Argon(rand.New(rand.NewSource(1)), props, 8)
	mother := testclusters.Argon(rand.New(rand.NewSource(2)), props, 8)
	father.Env = &box{fits: true}
	mother.Env = &box{fits: true}
	c1, c2, ok := New(Plane{Axis: 0}, rand.New(rand.NewSource(1)), medianOptions()).Crossover(mother, father, 1)
	require.True(Te, ok)
	assert.Equal(Te, 1, c1.Env.(*box).gen)
	assert.Equal(Te, 10, c2.Env.(*box).gen)
	assert.Equal(Te, 0, father.Env.(*box).gen)

	mother.Env = &box{fits: false}
	_, _, f := New(Plane{Axis: 0}, rand.New(rand.NewSource(1)), medianOptions()).CrossoverReason(mother, father, 1)
	assert.Equal(Te, Clash, f)

	//the parents keep their environments even if breeding modifies its inputs
	father.Env = &box{fits: true, dirty: true}
	mother.Env = &box{fits: true, dirty: true}
	c1, c2, ok = New(Plane{Axis: 0}, rand.New(rand.NewSource(1)), medianOptions()).Crossover(mother, father, 1)
	require.True(Te, ok)
	assert.Equal(Te, 1, c1.Env.(*box).gen)
	assert.Equal(Te, 10, c2.Env.(*box).gen)
	assert.Equal(Te, 0, father.Env.(*box).gen)
	assert.Equal(Te, 0, mother.Env.(*box).gen)
}

func TestRefinement(Te *testing.T) {
	props := cluster.DefaultProperties()
	father := testclusters.Mixed(rand.New(rand.NewSource(31)), props, 4, 4)
	mother := testclusters.Mixed(rand.New(rand.NewSource(32)), props, 4, 4)
	cfg := refine.DefaultConfig()
	cfg.Optimize = false
	O := DefaultOptions()
	O.Refiner(refine.New(cfg, nil, nil))
	X := New(Sphere{AdjustRadius: true}, rand.New(rand.NewSource(9)), O)
	R := X.Run(mother, father, 1)
	require.True(Te, R.OK(), R.Failure.String())
	for _, r := range R.Refinement {
		assert.Contains(Te, []refine.State{refine.Done, refine.InflationFailed}, r.State)
	}
	assert.NoError(Te, R.Child1.CheckConsistency(father))
}
