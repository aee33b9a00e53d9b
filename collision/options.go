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

package collision

import "go.uber.org/zap"

// Default values for the options.
const (
	DefaultCutoff   = 3.7 //A, about 7 bohr.
	DefaultBlow     = 1.2
	DefaultBlowDiss = 3.0
)

// Options contains the options for the collision engines.
type Options struct {
	firstOnly bool
	cutoff    float64
	distances bool
	scorer    Scorer
	logger    *zap.Logger
}

// DefaultOptions returns exhaustive detection with distance matrix, the
// default cell edge for the grid engine, a constant clash strength and no logging.
func DefaultOptions() *Options {
	r := new(Options)
	r.cutoff = DefaultCutoff
	r.distances = true
	r.scorer = ConstantScorer(DefaultStrength)
	r.logger = zap.NewNop()
	return r
}

// FirstOnly returns whether detection stops at the first clash,
// and sets it to a new value, if given.
func (O *Options) FirstOnly(f ...bool) bool {
	if len(f) > 0 {
		O.firstOnly = f[0]
	}
	return O.firstOnly
}

// Cutoff returns the minimum edge of the grid cells,
// and sets it to a new value, if given. The grid engine enlarges
// the cells if the largest blown radius sum is larger than this value.
func (O *Options) Cutoff(c ...float64) float64 {
	if len(c) > 0 && c[0] > 0 {
		O.cutoff = c[0]
	}
	return O.cutoff
}

// Distances returns whether the distance matrix is filled,
// and sets it to a new value, if given.
func (O *Options) Distances(d ...bool) bool {
	if len(d) > 0 {
		O.distances = d[0]
	}
	return O.distances
}

// Scorer returns the function that gives the strength of a clash,
// and sets it to a new value, if given.
func (O *Options) Scorer(s ...Scorer) Scorer {
	if len(s) > 0 && s[0] != nil {
		O.scorer = s[0]
	}
	return O.scorer
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
