/*
 * xover.go, part of gocluster.
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

// Package xover implements spatial crossover between two cluster structures.
// Both parents are cut by the same kind of geometric cut (a plane or a sphere)
// such that the same number of fragments lies on each side in both of them.
// The fragments on the exchange side (above the plane, outside the sphere) are then
// swapped between the children, one by one and species by species, after the
// mother's fragments have been rearranged so both exchange sides have the
// same composition.
//
// A failed crossover is an expected outcome of a stochastic search, not an error.
package xover

import (
	"fmt"
	"math/rand"

	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"github.com/rmera/gocluster/refine"
	"go.uber.org/zap"
)

// Failure is the reason a crossover gave no children.
type Failure int

const (
	None             Failure = iota
	NoCut                    //no father cut with fragments on both sides was found
	Degenerate               //the mother's order statistics around the cut are too close
	SideMismatch             //the sides of mother and father have different sizes
	RepairMismatch           //the mother's exchange side could not be given the father's composition
	ExchangeMismatch         //some fragment found no partner of its species
	Inconsistent             //a child does not match its parent
	Clash                    //a child failed the post-crossover check
)

var failureNames = []string{"none", "no cut", "degenerate", "side mismatch", "repair mismatch", "exchange mismatch", "inconsistent", "clash"}

func (f Failure) String() string {
	if int(f) < 0 || int(f) >= len(failureNames) {
		return fmt.Sprintf("Failure(%d)", int(f))
	}
	return failureNames[f]
}

// ErrSpeciesDrift is the panic message used when a child does not have
// the species of its parent.
const ErrSpeciesDrift = cluster.PanicMsg("gocluster/xover: species of a child differ from those of its parent")

// Result contains the outcome of a crossover.
type Result struct {
	Child1, Child2       *cluster.Structure //built on the father and on the mother, respectively
	Failure              Failure
	FatherCut, MotherCut float64
	//Positions, in each child, that hold a fragment coming from the other parent.
	//Exchanged1[i] and Exchanged2[i] were swapped with each other.
	Exchanged1, Exchanged2 []int
	Swaps                  int //pose swaps done by the repair
	Attempts               int //father cuts sampled
	Refinement             [2]refine.Result
}

// OK returns true if the crossover produced children.
func (R *Result) OK() bool {
	return R.Failure == None
}

// Operator performs crossovers with one cut primitive. It uses its own random
// source, so an operator must not be shared between goroutines. See Batch.
type Operator struct {
	cut CutPrimitive
	rng *rand.Rand
	o   *Options
}

// New returns an operator with the cut C, the random source rng and a copy of the options O.
func New(C CutPrimitive, rng *rand.Rand, O *Options) *Operator {
	if O == nil {
		O = DefaultOptions()
	}
	return &Operator{cut: C, rng: rng, o: O.copy()}
}

// Cut returns the cut primitive of the operator.
func (X *Operator) Cut() CutPrimitive {
	return X.cut
}

// Options returns a copy of the options of the operator.
func (X *Operator) Options() *Options {
	return X.o.copy()
}

// WithRand returns an operator with the same cut and options as X, and the random source rng.
func (X *Operator) WithRand(rng *rand.Rand) *Operator {
	return &Operator{cut: X.cut, rng: rng, o: X.o}
}

// Crossover returns two children of mother and father, whose ID is childID, or false if
// no children could be produced. The parents are not modified.
func (X *Operator) Crossover(mother, father *cluster.Structure, childID int64) (c1, c2 *cluster.Structure, ok bool) {
	R := X.Run(mother, father, childID)
	return R.Child1, R.Child2, R.OK()
}

// CrossoverReason is like Crossover, but returns the reason for a failure.
func (X *Operator) CrossoverReason(mother, father *cluster.Structure, childID int64) (c1, c2 *cluster.Structure, f Failure) {
	R := X.Run(mother, father, childID)
	return R.Child1, R.Child2, R.Failure
}

// Run performs a crossover between mother and father. Child1 takes the father's
// fragments below the cut and the mother's above it, and Child2 the opposite.
// It panics if a parent's bond table does not match its atoms.
func (X *Operator) Run(mother, father *cluster.Structure, childID int64) *Result {
	R := X.run(mother, father, childID)
	X.o.metrics.observe(X.cut.Name(), R)
	return R
}

func (X *Operator) run(mother, father *cluster.Structure, childID int64) *Result {
	father.MustBeSizeCompatible()
	mother.MustBeSizeCompatible()
	R := &Result{}
	n := father.NFragments()
	if n != mother.NFragments() {
		return X.fail(R, Inconsistent, zap.Int("father", n), zap.Int("mother", mother.NFragments()))
	}
	c1, c2 := father.Copy(), mother.Copy()
	if n <= 1 {
		return X.finish(R, mother, father, c1, c2, childID)
	}
	props := X.o.props
	if err := c1.MoveToCOM(props); err != nil {
		return X.fail(R, Inconsistent, zap.Error(err))
	}
	if err := c2.MoveToCOM(props); err != nil {
		return X.fail(R, Inconsistent, zap.Error(err))
	}
	if X.o.rotate {
		c1.Rotate(cluster.RandomRotation(X.rng))
		c2.Rotate(cluster.RandomRotation(X.rng))
	}

	fv := X.cut.Values(c1)
	fcut, k, ok := X.fatherCut(R, fv)
	R.FatherCut = fcut
	if !ok {
		return X.fail(R, NoCut, zap.Int("attempts", R.Attempts))
	}
	mv := X.cut.Values(c2)
	mcut, ok := FindCut(sortedCopy(mv), k)
	if !ok {
		return X.fail(R, Degenerate, zap.Int("k", k))
	}
	R.MotherCut = mcut
	fex := X.exchangeSide(fv, fcut)
	mex := X.exchangeSide(mv, mcut)
	if n-trues(fex) != k || n-trues(mex) != k {
		return X.fail(R, SideMismatch, zap.Int("k", k), zap.Int("father", n-trues(fex)), zap.Int("mother", n-trues(mex)))
	}

	target := ExchangeCounts(c1, fex)
	if !sameStrings(c1.SortedSpecies(), c2.SortedSpecies()) {
		return X.fail(R, RepairMismatch, zap.String("detail", "parents have different species"))
	}
	swaps, ok := RepairStoichiometry(X.rng, c2, mex, target)
	R.Swaps = swaps
	if !ok {
		return X.fail(R, RepairMismatch, zap.Int("k", k))
	}
	//the repair only moved poses around, so the mother's cut still applies.
	mex = X.exchangeSide(X.cut.Values(c2), mcut)
	if !sameCounts(ExchangeCounts(c2, mex), target) {
		return X.fail(R, RepairMismatch, zap.Int("swaps", swaps))
	}

	if f := X.exchange(R, c1, c2, fex, mex, fcut, mcut); f != None {
		return X.fail(R, f, zap.Int("k", k))
	}
	return X.finish(R, mother, father, c1, c2, childID)
}

// fatherCut samples cuts for the father values until one leaves at least one fragment on each side.
func (X *Operator) fatherCut(R *Result, values []float64) (float64, int, bool) {
	n := len(values)
	var cut float64
	for a := 1; a <= X.o.maxAttempts; a++ {
		R.Attempts = a
		cut = X.cut.Random(values, X.rng, X.o.mode, X.o.gaussWidth)
		k := count(X.cut, values, cut)
		if k >= 1 && k < n {
			return cut, k, true
		}
		if !X.o.mode.random() {
			break
		}
	}
	return cut, 0, false
}

// exchangeSide returns, for each value, whether it is on the exchange side of cut.
func (X *Operator) exchangeSide(values []float64, cut float64) []bool {
	ret := make([]bool, len(values))
	for i, v := range values {
		ret[i] = !X.cut.Below(v, cut)
	}
	return ret
}

// exchange pairs each fragment on the father's exchange side with the first unpaired fragment
// of the same species on the mother's, and swaps each pair between the children.
func (X *Operator) exchange(R *Result, c1, c2 *cluster.Structure, fex, mex []bool, fcut, mcut float64) Failure {
	queue := make(map[string][]int)
	for j, e := range mex {
		if e {
			sp := c2.Fragments[j].Species
			queue[sp] = append(queue[sp], j)
		}
	}
	for i, e := range fex {
		if !e {
			continue
		}
		sp := c1.Fragments[i].Species
		q := queue[sp]
		if len(q) == 0 {
			return ExchangeMismatch
		}
		j := q[0]
		queue[sp] = q[1:]
		c1.Fragments[i], c2.Fragments[j] = c2.Fragments[j], c1.Fragments[i]
		c1.Fragments[i].SetCOM(X.cut.Transfer(c1.Fragments[i].COM(), mcut, fcut))
		c2.Fragments[j].SetCOM(X.cut.Transfer(c2.Fragments[j].COM(), fcut, mcut))
		R.Exchanged1 = append(R.Exchanged1, i)
		R.Exchanged2 = append(R.Exchanged2, j)
	}
	for _, q := range queue {
		if len(q) != 0 {
			return ExchangeMismatch
		}
	}
	return None
}

// finish sets the identity of the children, checks them against their parents, and
// runs the environment, refinement and post-crossover checks.
func (X *Operator) finish(R *Result, mother, father, c1, c2 *cluster.Structure, childID int64) *Result {
	for _, c := range []*cluster.Structure{c1, c2} {
		c.ResetIDs()
		c.ID = childID
		c.FatherID = father.ID
		c.MotherID = mother.ID
		c.Fitness = cluster.NotEvaluated
	}
	if err := c1.CheckConsistency(father); err != nil {
		return X.fail(R, Inconsistent, zap.Error(err))
	}
	if err := c2.CheckConsistency(mother); err != nil {
		return X.fail(R, Inconsistent, zap.Error(err))
	}
	if !sameStrings(c1.SortedSpecies(), father.SortedSpecies()) || !sameStrings(c2.SortedSpecies(), mother.SortedSpecies()) {
		X.o.logger.Error("species drift in crossover", zap.Int64("child", childID))
		panic(ErrSpeciesDrift)
	}
	if c1.Env != nil && c2.Env != nil {
		c1.Env, c2.Env = c1.Env.CreateOffspring(c2.Env, X.rng)
	}
	if r := X.o.refiner; r != nil && len(R.Exchanged1) > 0 {
		c1, R.Refinement[0] = r.Refine(c1, R.Exchanged1)
		c2, R.Refinement[1] = r.Refine(c2, R.Exchanged2)
	}
	for _, c := range []*cluster.Structure{c1, c2} {
		if c.Env != nil && !c.Env.FitsAround(c) {
			return X.fail(R, Clash, zap.String("detail", "environment"))
		}
		if X.o.postCheck == nil {
			continue
		}
		clash, err := collision.StructureHasClash(X.o.postCheck, c, X.o.props, X.o.blow)
		if err != nil {
			return X.fail(R, Inconsistent, zap.Error(err))
		}
		if clash {
			return X.fail(R, Clash, zap.String("engine", X.o.postCheck.Name()))
		}
	}
	R.Child1, R.Child2 = c1, c2
	return R
}

func (X *Operator) fail(R *Result, f Failure, fields ...zap.Field) *Result {
	R.Failure = f
	R.Child1, R.Child2 = nil, nil
	fields = append(fields, zap.Stringer("reason", f), zap.String("cut", X.cut.Name()))
	X.o.logger.Debug("crossover failed", fields...)
	return R
}

func trues(b []bool) int {
	n := 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func sameCounts(a, b map[string]int) bool {
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	for k, v := range b {
		if a[k] != v {
			return false
		}
	}
	return true
}
