/*
 * objective.go, part of gocluster.
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

	cluster "github.com/rmera/gocluster"
	"github.com/rmera/gocluster/collision"
)

// shell is the set of exchanged fragments of a structure, and the centers
// of mass they had when the shell was built (or last rebased).
type shell struct {
	s    *cluster.Structure
	idx  []int
	base [][3]float64
}

func newShell(s *cluster.Structure, idx []int) *shell {
	sh := &shell{s: s, idx: append([]int(nil), idx...)}
	sh.rebase()
	return sh
}

// rebase takes the current centers of mass as the new base.
func (sh *shell) rebase() {
	sh.base = sh.base[:0]
	for _, i := range sh.idx {
		sh.base = append(sh.base, sh.s.Fragments[i].COM())
	}
}

func (sh *shell) restore() {
	for k, i := range sh.idx {
		sh.s.Fragments[i].SetCOM(sh.base[k])
	}
}

// apply sets the center of mass of each fragment of the shell to its base
// one, scaled by p[3:6] along each axis and then rotated by the Euler angles p[0:3].
func (sh *shell) apply(p []float64) {
	R := cluster.RotationMatrix([3]float64{p[0], p[1], p[2]})
	for k, i := range sh.idx {
		b := sh.base[k]
		v := [3]float64{b[0] * p[3], b[1] * p[4], b[2] * p[5]}
		var c [3]float64
		for j := 0; j < 3; j++ {
			c[j] = R.At(j, 0)*v[0] + R.At(j, 1)*v[1] + R.At(j, 2)*v[2]
		}
		sh.s.Fragments[i].SetCOM(c)
	}
}

// objective evaluates the normalized 6-vectors of a refinement.
type objective struct {
	r     *Refiner
	sh    *shell
	radii []float64
	lower []float64
	upper []float64
	iter  int
	buf   []float64
}

func (R *Refiner) objective(sh *shell, radii []float64) *objective {
	return &objective{r: R, sh: sh, radii: radii, lower: R.lower(), upper: R.upper()}
}

// eval moves the shell to the point x of the unit box and returns the penalty
// if the result clashes (or half of it if it dissociates), and otherwise its energy.
func (o *objective) eval(x []float64) float64 {
	cfg := o.r.cfg
	o.sh.apply(denormalize(x, o.lower, o.upper))
	s := o.sh.s
	C := s.Cartesian()
	if cfg.DoCD && o.r.engine.HasClash(C.Coords, o.radii, cfg.BlowCD, s.Bonds) {
		return cfg.Penalty
	}
	if cfg.DoDD && collision.Dissociated(C.Coords, o.radii, cfg.BlowDD, nil) {
		return cfg.Penalty / 2
	}
	if o.r.backend == nil {
		return 0
	}
	o.buf = C.Flat(o.buf)
	e := o.r.backend.Energy(s.ID, o.iter, o.buf, C.Symbols, C.AtomicNumbers, C.FragmentSizes,
		nil, C.NAtoms(), C.Charges, C.Spins, s.Bonds)
	o.iter++
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return cfg.Penalty
	}
	return e
}
