/*
 * atomicdata.go, part of gocluster.
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

package cluster

import "sort"

// Element contains the data for one chemical element.
// Distances are in A, masses in atomic mass units.
type Element struct {
	Symbol   string
	Z        int16
	Mass     float64
	CovRad   float64
	VdWRad   float64
	MaxBonds int //0 means no check.
}

// Properties is a read-only table of atomic properties. It is safe
// for concurrent use, as it is never modified after creation.
type Properties struct {
	bySymbol map[string]Element
	byZ      map[int16]string
}

// NewProperties builds a table from the given elements. Later elements
// replace earlier ones with the same symbol.
func NewProperties(elements []Element) *Properties {
	P := &Properties{bySymbol: make(map[string]Element, len(elements)), byZ: make(map[int16]string, len(elements))}
	for _, v := range elements {
		P.bySymbol[v.Symbol] = v
		P.byZ[v.Z] = v.Symbol
	}
	return P
}

var defaultProperties = NewProperties(defaultElements)

// DefaultProperties returns the built-in table.
func DefaultProperties() *Properties {
	return defaultProperties
}

// Element returns the data for the given symbol, and whether it was found.
func (P *Properties) Element(symbol string) (Element, bool) {
	e, ok := P.bySymbol[symbol]
	return e, ok
}

// CovRad returns the covalent radius of the element, or 0 and false.
func (P *Properties) CovRad(symbol string) (float64, bool) {
	e, ok := P.bySymbol[symbol]
	return e.CovRad, ok
}

// VdWRad returns the van der Waals radius of the element, or 0 and false.
func (P *Properties) VdWRad(symbol string) (float64, bool) {
	e, ok := P.bySymbol[symbol]
	return e.VdWRad, ok
}

// Mass returns the mass of the element, or 0 and false.
func (P *Properties) Mass(symbol string) (float64, bool) {
	e, ok := P.bySymbol[symbol]
	return e.Mass, ok
}

// AtomicNumber returns the atomic number of the element, or 0 and false.
func (P *Properties) AtomicNumber(symbol string) (int16, bool) {
	e, ok := P.bySymbol[symbol]
	return e.Z, ok
}

// Symbol returns the symbol for the atomic number z, or "" and false.
func (P *Properties) Symbol(z int16) (string, bool) {
	s, ok := P.byZ[z]
	return s, ok
}

// Symbols returns the sorted list of symbols in the table.
func (P *Properties) Symbols() []string {
	ret := make([]string, 0, len(P.bySymbol))
	for k := range P.bySymbol {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Radii returns the covalent radii for the given symbols. It
// returns an error naming the first unknown symbol.
func (P *Properties) Radii(symbols []string) ([]float64, error) {
	ret := make([]float64, len(symbols))
	for i, v := range symbols {
		r, ok := P.CovRad(v)
		if !ok || r <= 0 {
			return nil, NewError("Couldn't find the covalent radius for "+v, "Radii", true)
		}
		ret[i] = r
	}
	return ret, nil
}

// Masses returns the masses for the given symbols, or an error.
func (P *Properties) Masses(symbols []string) ([]float64, error) {
	ret := make([]float64, len(symbols))
	for i, v := range symbols {
		m, ok := P.Mass(v)
		if !ok || m <= 0 {
			return nil, NewError("Couldn't find the mass for "+v, "Masses", true)
		}
		ret[i] = m
	}
	return ret, nil
}

// Covalent radii from Cordero et al., 2008 (DOI:10.1039/B801115J)
// van der Waals radii from 10.1021/j100785a001 and 10.1021/jp8111556
// metal radii from 10.1023/A:1011625728803
var defaultElements = []Element{
	{"H", 1, 1.008, 0.4, 1.10, 1}, //0.31 in the paper. H always has only one bond, so the extra bonds get eliminated.
	{"He", 2, 4.003, 0.28, 1.40, 0},
	{"Li", 3, 6.94, 1.28, 1.81, 0},
	{"Be", 4, 9.012, 0.96, 1.53, 0},
	{"B", 5, 10.81, 0.84, 1.92, 0},
	{"C", 6, 12.01, 0.76, 1.70, 4}, //the sp3 radius
	{"N", 7, 14.01, 0.71, 1.55, 0},
	{"O", 8, 16.00, 0.66, 1.52, 2},
	{"F", 9, 18.998, 0.57, 1.47, 1},
	{"Ne", 10, 20.18, 0.58, 1.54, 0},
	{"Na", 11, 22.99, 1.66, 2.27, 0},
	{"Mg", 12, 24.30, 1.41, 1.73, 0},
	{"Al", 13, 26.98, 1.21, 1.84, 0},
	{"Si", 14, 28.08, 1.11, 2.10, 0},
	{"P", 15, 30.97, 1.07, 1.80, 0},
	{"S", 16, 32.06, 1.05, 1.80, 0},
	{"Cl", 17, 35.45, 1.02, 1.75, 1},
	{"Ar", 18, 39.95, 1.06, 1.88, 0},
	{"K", 19, 39.1, 2.03, 2.75, 0},
	{"Ca", 20, 40.08, 1.76, 2.31, 0},
	{"Cr", 24, 51.996, 1.39, 1.97, 0},
	{"Mn", 25, 54.94, 1.61, 1.96, 0}, //hs
	{"Fe", 26, 55.84, 1.52, 1.96, 0}, //hs
	{"Co", 27, 58.93, 1.5, 1.95, 0},  //hs
	{"Cu", 29, 63.55, 1.32, 2.00, 0},
	{"Zn", 30, 65.38, 1.22, 2.02, 0},
	{"Se", 34, 78.96, 1.2, 1.90, 0},
	{"Br", 35, 79.904, 1.2, 1.83, 1},
	{"Kr", 36, 83.80, 1.16, 2.02, 0},
	{"Ag", 47, 107.87, 1.45, 1.72, 0},
	{"I", 53, 126.90, 1.39, 1.98, 1},
	{"Xe", 54, 131.29, 1.40, 2.16, 0},
	{"Pt", 78, 195.08, 1.36, 1.75, 0},
	{"Au", 79, 196.97, 1.36, 1.66, 0},
}
