/*
 * files.go, part of gocluster.
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

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gocluster/v3"
)

// XYZRead reads one frame in XYZ format from r. It returns the coordinates, the
// element symbols and the comment line.
func XYZRead(r io.Reader) (*v3.Matrix, []string, string, error) {
	xyz := bufio.NewReader(r)
	line, err := xyz.ReadString('\n')
	if err != nil && line == "" {
		return nil, nil, "", NewError("Ill formatted XYZ file: missing atom count", "XYZRead", true)
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms < 1 {
		return nil, nil, "", NewError("Ill formatted XYZ file: bad atom count "+strings.TrimSpace(line), "XYZRead", true)
	}
	comment, err := xyz.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, nil, "", WrapError(err, "Ill formatted XYZ file", "XYZRead")
	}
	symbols := make([]string, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = xyz.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return nil, nil, "", NewError(fmt.Sprintf("Only %d atoms of %d found", i, natoms), "XYZRead", true)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, "", NewError(fmt.Sprintf("Line number %d ill formed", i+3), "XYZRead", true)
		}
		symbols[i] = fields[0]
		for k := 0; k < 3; k++ {
			coords[i*3+k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, nil, "", WrapError(err, fmt.Sprintf("Line number %d ill formed", i+3), "XYZRead")
			}
		}
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, "", errDecorate(err, "XYZRead")
	}
	return m, symbols, strings.TrimSpace(comment), nil
}

// XYZFileRead reads an XYZ file.
func XYZFileRead(name string) (*v3.Matrix, []string, string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, "", WrapError(err, "Unable to open file", "XYZFileRead")
	}
	defer f.Close()
	c, s, comment, err := XYZRead(f)
	return c, s, comment, errDecorate(err, "XYZFileRead "+name)
}

// XYZWrite writes the coordinates and symbols in XYZ format to w.
func XYZWrite(w io.Writer, coords *v3.Matrix, symbols []string, comment string) error {
	if coords.NVecs() != len(symbols) {
		return NewError(fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), len(symbols)), "XYZWrite", true)
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "%-4d\n", len(symbols))
	fmt.Fprintf(out, "%s\n", strings.ReplaceAll(comment, "\n", " "))
	for i, s := range symbols {
		c := coords.RawRowView(i)
		fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", s, c[0], c[1], c[2])
	}
	if err := out.Flush(); err != nil {
		return WrapError(err, "Unable to write", "XYZWrite")
	}
	return nil
}

// XYZFileWrite writes a structure to an XYZ file, which will be overwritten if it exists.
func XYZFileWrite(name string, S *Structure, comment string) error {
	out, err := os.Create(name)
	if err != nil {
		return WrapError(err, "Unable to create file", "XYZFileWrite")
	}
	defer out.Close()
	C := S.Cartesian()
	return errDecorate(XYZWrite(out, C.Coords, C.Symbols, comment), "XYZFileWrite")
}
