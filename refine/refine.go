/*
 * refine.go, part of gocluster.
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

// Package refine polishes the exchanged shell of a crossover child by rigid-body
// moves: a radial inflation until no clash is left, and a local search over one
// rotation and three per-axis scalings of the shell's centers of mass.
package refine

import (
	"errors"
	"fmt"
	"math"

	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"go.uber.org/zap"
)

// State is a stage of a refinement.
type State int

const (
	Init State = iota
	Inflating
	Optimizing
	Done
	//InflationFailed is terminal but not an error: the structure is returned as it was.
	InflationFailed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Inflating:
		return "inflating"
	case Optimizing:
		return "optimizing"
	case Done:
		return "done"
	case InflationFailed:
		return "inflation failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result describes what a refinement did.
type Result struct {
	State     State
	Inflation float64   //radial scaling applied while inflating, 1 if none
	Initial   float64   //objective at the start of the optimization
	Best      float64   //best objective found
	Point     []float64 //phi, omega, psi, sx, sy, sz of the best point, nil if no optimization was done
	Err       error
}

// Refiner performs rigid refinements. It keeps no state between calls,
// and can be used concurrently if its engine and backend can.
type Refiner struct {
	cfg     Config
	engine  collision.Engine
	backend cluster.EnergyBackend
	props   *cluster.Properties
	opt     Optimizer
	logger  *zap.Logger
}

// New returns a refiner. A nil engine means the grid engine, and a nil
// backend gives every clash-free, bound structure a zero energy.
func New(cfg Config, E collision.Engine, backend cluster.EnergyBackend) *Refiner {
	if E == nil {
		E = collision.NewGrid(nil)
	}
	return &Refiner{
		cfg:     cfg,
		engine:  E,
		backend: backend,
		props:   cluster.DefaultProperties(),
		opt:     NewNelderMead(cfg),
		logger:  zap.NewNop(),
	}
}

// Config returns the configuration of the refiner.
func (R *Refiner) Config() Config {
	return R.cfg
}

// Properties returns the atomic property table used, and sets it to a new value, if given.
func (R *Refiner) Properties(p ...*cluster.Properties) *cluster.Properties {
	if len(p) > 0 && p[0] != nil {
		R.props = p[0]
	}
	return R.props
}

// Optimizer returns the local optimizer, and sets it to a new value, if given.
func (R *Refiner) Optimizer(o ...Optimizer) Optimizer {
	if len(o) > 0 && o[0] != nil {
		R.opt = o[0]
	}
	return R.opt
}

// Logger returns the logger, and sets it to a new value, if given.
func (R *Refiner) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		R.logger = l[0]
	}
	return R.logger
}

// Refine returns a refined copy of s, where only the centers of mass of the
// fragments in exchanged are moved. s is not modified.
func (R *Refiner) Refine(s *cluster.Structure, exchanged []int) (*cluster.Structure, Result) {
	res := Result{State: Init, Inflation: 1}
	work := s.Copy()
	if len(exchanged) == 0 || (!R.cfg.Inflate && !R.cfg.Optimize) {
		res.State = Done
		return work, res
	}
	radii, err := work.Cartesian().Radii(R.props)
	if err != nil {
		res.State = Done
		res.Err = errDecorate(err, "Refine")
		return work, res
	}
	sh := newShell(work, exchanged)
	if R.cfg.Inflate {
		res.State = Inflating
		f, ok := R.inflate(work, sh, radii)
		if !ok {
			sh.restore()
			res.State = InflationFailed
			R.logger.Debug("inflation failed", zap.Int64("id", s.ID), zap.Float64("max", R.cfg.MaxInflate))
			return work, res
		}
		res.Inflation = f
		sh.rebase()
	}
	if R.cfg.Optimize {
		res.State = Optimizing
		obj := R.objective(sh, radii)
		x0 := normalize(identity, R.lower(), R.upper())
		res.Initial = obj.eval(x0)
		lo, hi := unitBox()
		best, x := R.opt.Minimize(x0, obj.eval, lo, hi)
		if best < res.Initial {
			p := denormalize(x, R.lower(), R.upper())
			sh.apply(p)
			res.Best = best
			res.Point = p
		} else {
			sh.restore()
			res.Best = res.Initial
			res.Point = append([]float64(nil), identity...)
		}
		R.logger.Debug("rigid optimization", zap.Int64("id", s.ID), zap.Float64("initial", res.Initial), zap.Float64("best", res.Best))
	}
	res.State = Done
	return work, res
}

// inflate scales the shell radially by 1, 1+incr, 1+2*incr... up to MaxInflate, and returns
// the first factor that leaves no clash.
func (R *Refiner) inflate(work *cluster.Structure, sh *shell, radii []float64) (float64, bool) {
	for k := 0; k <= R.cfg.inflationSteps(); k++ {
		f := 1 + float64(k)*R.cfg.IncrInflate
		sh.apply([]float64{0, 0, 0, f, f, f})
		if !R.cfg.DoCD {
			return f, true
		}
		if !R.engine.HasClash(work.Cartesian().Coords, radii, R.cfg.BlowCD, work.Bonds) {
			return f, true
		}
	}
	return 0, false
}

// lower and upper are the bounds of the search: the three Euler angles,
// and the scaling along x, y and z.
func (R *Refiner) lower() []float64 {
	f := R.cfg.FracMinCut
	return []float64{-math.Pi, -math.Pi / 2, -math.Pi, f, f, f}
}

func (R *Refiner) upper() []float64 {
	f := R.cfg.FracMaxCut
	return []float64{math.Pi, math.Pi / 2, math.Pi, f, f, f}
}

// no rotation, no scaling
var identity = []float64{0, 0, 0, 1, 1, 1}

func unitBox() ([]float64, []float64) {
	return make([]float64, 6), []float64{1, 1, 1, 1, 1, 1}
}

func normalize(x, lower, upper []float64) []float64 {
	ret := make([]float64, len(x))
	for i, v := range x {
		if upper[i] == lower[i] {
			continue
		}
		ret[i] = (v - lower[i]) / (upper[i] - lower[i])
	}
	return ret
}

func denormalize(x, lower, upper []float64) []float64 {
	ret := make([]float64, len(x))
	for i, v := range x {
		ret[i] = lower[i] + v*(upper[i]-lower[i])
	}
	return ret
}

func errDecorate(err error, caller string) error {
	var err2 cluster.Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}
