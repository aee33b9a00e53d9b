/*
 * optimizer.go, part of gocluster.
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
	"gonum.org/v1/gonum/optimize"
)

// Optimizer is a derivative-free, bound-constrained minimizer. It returns the best value
// found and the point where it was found, which must lie within the bounds.
type Optimizer interface {
	Minimize(x0 []float64, f func([]float64) float64, lower, upper []float64) (float64, []float64)
}

// NelderMead minimizes with gonum's Nelder-Mead simplex. Points outside the bounds
// are clamped before evaluation.
type NelderMead struct {
	Evaluations int     //maximum number of function evaluations. 0 means no limit.
	SimplexSize float64 //initial size of the simplex
	Tolerance   float64 //absolute change in the best value under which the search stops
}

// NewNelderMead returns a Nelder-Mead optimizer with the budget and
// tolerances in C.
func NewNelderMead(C Config) NelderMead {
	return NelderMead{Evaluations: C.Iterations, SimplexSize: C.InitialTrust, Tolerance: C.StoppingTrust}
}

func (N NelderMead) Minimize(x0 []float64, f func([]float64) float64, lower, upper []float64) (float64, []float64) {
	buf := make([]float64, len(x0))
	clamped := func(x []float64) []float64 {
		clamp(buf, x, lower, upper)
		return buf
	}
	p := optimize.Problem{
		Func: func(x []float64) float64 {
			return f(clamped(x))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: N.Evaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   N.Tolerance,
			Iterations: 20,
		},
	}
	start := make([]float64, len(x0))
	clamp(start, x0, lower, upper)
	//Reaching the evaluation limit can come with an error, but the
	//best location found is still in the result.
	res, _ := optimize.Minimize(p, start, settings, &optimize.NelderMead{SimplexSize: N.SimplexSize})
	if res == nil || len(res.X) != len(x0) {
		return f(start), start
	}
	best := make([]float64, len(x0))
	clamp(best, res.X, lower, upper)
	return res.F, best
}

// clamp puts x, limited to the box [lower, upper], in dst.
func clamp(dst, x, lower, upper []float64) {
	for i, v := range x {
		if v < lower[i] {
			v = lower[i]
		} else if v > upper[i] {
			v = upper[i]
		}
		dst[i] = v
	}
}
