/*
 * options.go, part of gocluster.
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
	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
	"github.com/rmera/gocluster/refine"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is the default number of random father cuts tried before giving up.
const DefaultMaxAttempts = 1000

// Options contains the options for a crossover operator.
type Options struct {
	maxAttempts int
	mode        Mode
	gaussWidth  float64
	rotate      bool
	props       *cluster.Properties
	postCheck   collision.Engine
	blow        float64
	refiner     *refine.Refiner
	metrics     *Metrics
	logger      *zap.Logger
}

// DefaultOptions returns options for uniform cuts, without random rotations,
// post-crossover checks or refinement.
func DefaultOptions() *Options {
	return &Options{
		maxAttempts: DefaultMaxAttempts,
		mode:        Uniform,
		gaussWidth:  1,
		props:       cluster.DefaultProperties(),
		blow:        collision.DefaultBlow,
		logger:      zap.NewNop(),
	}
}

// MaxAttempts returns the number of father cuts tried before a crossover fails,
// and sets it to a new value, if given.
func (O *Options) MaxAttempts(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxAttempts = n[0]
	}
	return O.maxAttempts
}

// Mode returns the way the father cut is sampled, and sets it to a new value, if given.
func (O *Options) Mode(m ...Mode) Mode {
	if len(m) > 0 {
		O.mode = m[0]
	}
	return O.mode
}

// GaussWidth returns the standard deviation of the gaussian sampling modes,
// and sets it to a new value, if given.
func (O *Options) GaussWidth(w ...float64) float64 {
	if len(w) > 0 && w[0] > 0 {
		O.gaussWidth = w[0]
	}
	return O.gaussWidth
}

// Rotate returns whether each parent gets a random rotation before the cut,
// and sets it to a new value, if given.
func (O *Options) Rotate(r ...bool) bool {
	if len(r) > 0 {
		O.rotate = r[0]
	}
	return O.rotate
}

// Properties returns the atomic property table, and sets it to a new value, if given.
func (O *Options) Properties(p ...*cluster.Properties) *cluster.Properties {
	if len(p) > 0 && p[0] != nil {
		O.props = p[0]
	}
	return O.props
}

// PostCheck returns the engine the children are checked with, and sets it to a new value,
// if given. A nil engine (the default) means no check.
func (O *Options) PostCheck(e ...collision.Engine) collision.Engine {
	if len(e) > 0 {
		O.postCheck = e[0]
	}
	return O.postCheck
}

// Blow returns the blow factor for the post-crossover check, and sets it to a new value, if given.
func (O *Options) Blow(b ...float64) float64 {
	if len(b) > 0 && b[0] > 0 {
		O.blow = b[0]
	}
	return O.blow
}

// Refiner returns the refiner applied to the exchanged fragments of each child, and sets it to
// a new value, if given. A nil refiner (the default) means no refinement.
func (O *Options) Refiner(r ...*refine.Refiner) *refine.Refiner {
	if len(r) > 0 {
		O.refiner = r[0]
	}
	return O.refiner
}

// Metrics returns the collectors the crossovers are recorded in, and sets them
// to a new value, if given. Nil (the default) records nothing.
func (O *Options) Metrics(m ...*Metrics) *Metrics {
	if len(m) > 0 {
		O.metrics = m[0]
	}
	return O.metrics
}

// Logger returns the logger, and sets it to a new value, if given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	return O.logger
}

func (O *Options) copy() *Options {
	r := *O
	return &r
}
