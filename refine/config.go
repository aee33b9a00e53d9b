/*
 * config.go, part of gocluster.
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

import "github.com/rmera/gocluster/collision"

// Config contains the parameters of a rigid refinement.
type Config struct {
	Inflate     bool    `mapstructure:"inflate" yaml:"inflate"`
	MaxInflate  float64 `mapstructure:"max_inflate" yaml:"max_inflate"`   //largest radial scaling tried while inflating
	IncrInflate float64 `mapstructure:"incr_inflate" yaml:"incr_inflate"` //step of the radial scaling

	Optimize   bool    `mapstructure:"optimize" yaml:"optimize"`
	FracMinCut float64 `mapstructure:"frac_min_cut" yaml:"frac_min_cut"` //bounds of the per-axis scaling
	FracMaxCut float64 `mapstructure:"frac_max_cut" yaml:"frac_max_cut"`
	Iterations int     `mapstructure:"iterations" yaml:"iterations"` //objective evaluations
	//Initial and final size of the search region, in the normalized [0,1] box.
	InitialTrust  float64 `mapstructure:"initial_trust" yaml:"initial_trust"`
	StoppingTrust float64 `mapstructure:"stopping_trust" yaml:"stopping_trust"`
	Penalty       float64 `mapstructure:"penalty" yaml:"penalty"`

	DoCD   bool    `mapstructure:"do_cd" yaml:"do_cd"` //collision detection
	BlowCD float64 `mapstructure:"blow_cd" yaml:"blow_cd"`
	DoDD   bool    `mapstructure:"do_dd" yaml:"do_dd"` //dissociation detection
	BlowDD float64 `mapstructure:"blow_dd" yaml:"blow_dd"`
}

// DefaultConfig returns a configuration that inflates and then optimizes,
// with collision and dissociation detection.
func DefaultConfig() Config {
	return Config{
		Inflate:       true,
		MaxInflate:    1.3,
		IncrInflate:   0.05,
		Optimize:      true,
		FracMinCut:    0.8,
		FracMaxCut:    1.5,
		Iterations:    250,
		InitialTrust:  0.1,
		StoppingTrust: 1e-5,
		Penalty:       1e10,
		DoCD:          true,
		BlowCD:        collision.DefaultBlow,
		DoDD:          true,
		BlowDD:        collision.DefaultBlowDiss,
	}
}

// inflationSteps returns how many scalings, past the identity, the inflation tries.
func (C Config) inflationSteps() int {
	if C.IncrInflate <= 0 || C.MaxInflate <= 1 {
		return 0
	}
	return int((C.MaxInflate-1)/C.IncrInflate + 1e-9)
}
