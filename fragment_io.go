/*
 * fragment_io.go, part of gocluster.
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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"

	v3 "github.com/rmera/gocluster/v3"
)

//The fragment format is big-endian. Strings are written as an uint16 byte
//count followed by "modified UTF-8": UTF-16 code units, where U+0000 takes
//two bytes and each surrogate is encoded on its own.
//
//  int32 id, string species, int32 natoms
//  natoms==1: string symbol, int16 Z, 3 x float64 COM, int16 spin,
//             float32 charge, float64 energy, bool constrained [3 x bool]
//  natoms>1:  bool flexible, bool constrained,
//             [3 x natoms bool DoF, bond/angle/dihedral major],
//             [natoms x 3 bool constraints, atom major],
//             float64 energy, 3 x float64 COM, 3 x float64 Euler angles,
//             natoms x int16 spin, natoms x float32 charge,
//             natoms x string symbol, natoms x int16 Z,
//             3 x natoms float64 reference coordinates (all x, all y, all z),
//             [int32 length + Z-matrix blob]

const maxUTFLen = math.MaxUint16

// MaxFragmentAtoms is the largest atom count ReadFragment accepts.
const MaxFragmentAtoms = 1 << 16

type encoder struct {
	w   io.Writer
	buf [8]byte
	err error
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) int32(v int32) {
	binary.BigEndian.PutUint32(e.buf[:4], uint32(v))
	e.write(e.buf[:4])
}

func (e *encoder) int16(v int16) {
	binary.BigEndian.PutUint16(e.buf[:2], uint16(v))
	e.write(e.buf[:2])
}

func (e *encoder) float64(v float64) {
	binary.BigEndian.PutUint64(e.buf[:8], math.Float64bits(v))
	e.write(e.buf[:8])
}

func (e *encoder) float32(v float32) {
	binary.BigEndian.PutUint32(e.buf[:4], math.Float32bits(v))
	e.write(e.buf[:4])
}

func (e *encoder) bool(v bool) {
	e.buf[0] = 0
	if v {
		e.buf[0] = 1
	}
	e.write(e.buf[:1])
}

func (e *encoder) utf(s string) {
	if e.err != nil {
		return
	}
	b, err := encodeModifiedUTF8(s)
	if err != nil {
		e.err = err
		return
	}
	binary.BigEndian.PutUint16(e.buf[:2], uint16(len(b)))
	e.write(e.buf[:2])
	e.write(b)
}

func encodeModifiedUTF8(s string) ([]byte, error) {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, len(units))
	for _, c := range units {
		switch {
		case c >= 0x0001 && c <= 0x007f:
			out = append(out, byte(c))
		case c <= 0x07ff:
			out = append(out, byte(0xc0|(c>>6)&0x1f), byte(0x80|c&0x3f))
		default:
			out = append(out, byte(0xe0|(c>>12)&0x0f), byte(0x80|(c>>6)&0x3f), byte(0x80|c&0x3f))
		}
	}
	if len(out) > maxUTFLen {
		return nil, fmt.Errorf("%d bytes: %w", len(out), ErrStringTooLong)
	}
	return out, nil
}

func decodeModifiedUTF8(b []byte) (string, error) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xe0 == 0xc0:
			if i+1 >= len(b) {
				return "", ErrShortRead
			}
			units = append(units, uint16(c&0x1f)<<6|uint16(b[i+1]&0x3f))
			i += 2
		case c&0xf0 == 0xe0:
			if i+2 >= len(b) {
				return "", ErrShortRead
			}
			units = append(units, uint16(c&0x0f)<<12|uint16(b[i+1]&0x3f)<<6|uint16(b[i+2]&0x3f))
			i += 3
		default:
			return "", fmt.Errorf("invalid byte 0x%x in string", c)
		}
	}
	return string(utf16.Decode(units)), nil
}

// WriteFragment writes the fragment to w in the binary fragment format.
func WriteFragment(w io.Writer, F *Fragment) error {
	F.checkAtomData()
	e := &encoder{w: w}
	n := F.NAtoms()
	e.int32(int32(F.ID))
	e.utf(F.Species)
	e.int32(int32(n))
	if n == 1 {
		e.utf(F.Symbols[0])
		e.int16(F.AtomicNumbers[0])
		for _, v := range F.com {
			e.float64(v)
		}
		e.int16(F.Spins[0])
		e.float32(F.Charges[0])
		e.float64(F.Energy)
		e.bool(F.Constrained)
		if F.Constrained {
			for _, v := range F.Constraints[0] {
				e.bool(v)
			}
		}
		return wrapCodecErr(e.err, "WriteFragment")
	}
	e.bool(F.Flexible)
	e.bool(F.Constrained)
	if F.Flexible {
		for i := 0; i < 3; i++ {
			for j := 0; j < n; j++ {
				e.bool(F.DoF[i][j])
			}
		}
	}
	if F.Constrained {
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				e.bool(F.Constraints[i][j])
			}
		}
	}
	e.float64(F.Energy)
	for _, v := range F.com {
		e.float64(v)
	}
	for _, v := range F.eulers {
		e.float64(v)
	}
	for _, v := range F.Spins {
		e.int16(v)
	}
	for _, v := range F.Charges {
		e.float32(v)
	}
	for _, v := range F.Symbols {
		e.utf(v)
	}
	for _, v := range F.AtomicNumbers {
		e.int16(v)
	}
	for k := 0; k < 3; k++ {
		for i := 0; i < n; i++ {
			e.float64(F.ref.At(i, k))
		}
	}
	if F.Flexible {
		zm := F.ZMat
		if zm == nil {
			zm = &ZMatrix{}
		}
		blob, err := zm.MarshalBinary()
		if err != nil {
			return wrapCodecErr(err, "WriteFragment")
		}
		e.int32(int32(len(blob)))
		e.write(blob)
	}
	return wrapCodecErr(e.err, "WriteFragment")
}

type decoder struct {
	r   io.Reader
	buf [8]byte
	err error
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return d.buf[:n]
	}
	_, d.err = io.ReadFull(d.r, d.buf[:n])
	return d.buf[:n]
}

func (d *decoder) int32() int32 {
	return int32(binary.BigEndian.Uint32(d.read(4)))
}

func (d *decoder) int16() int16 {
	return int16(binary.BigEndian.Uint16(d.read(2)))
}

func (d *decoder) float64() float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(d.read(8)))
}

func (d *decoder) float32() float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(d.read(4)))
}

func (d *decoder) bool() bool {
	return d.read(1)[0] != 0
}

func (d *decoder) bytes(n int) []byte {
	b := make([]byte, n)
	if d.err != nil {
		return b
	}
	_, d.err = io.ReadFull(d.r, b)
	return b
}

func (d *decoder) utf() string {
	l := int(binary.BigEndian.Uint16(d.read(2)))
	b := d.bytes(l)
	if d.err != nil {
		return ""
	}
	s, err := decodeModifiedUTF8(b)
	if err != nil {
		d.err = err
	}
	return s
}

// ReadFragment reads one fragment in the binary fragment format from r.
// Single-atom fragments are read with zero orientation and zero reference coordinates.
func ReadFragment(r io.Reader) (*Fragment, error) {
	d := &decoder{r: r}
	F := new(Fragment)
	F.ID = int(d.int32())
	F.Species = d.utf()
	n := int(d.int32())
	if d.err != nil {
		return nil, wrapCodecErr(d.err, "ReadFragment")
	}
	if n < 1 || n > MaxFragmentAtoms {
		return nil, fmt.Errorf("ReadFragment: %d atoms: %w", n, ErrBadAtomCount)
	}
	if n == 1 {
		F.Symbols = []string{d.utf()}
		F.AtomicNumbers = []int16{d.int16()}
		for k := range F.com {
			F.com[k] = d.float64()
		}
		F.Spins = []int16{d.int16()}
		F.Charges = []float32{d.float32()}
		F.Energy = d.float64()
		F.Constrained = d.bool()
		if F.Constrained {
			F.Constraints = make([][3]bool, 1)
			for k := range F.Constraints[0] {
				F.Constraints[0][k] = d.bool()
			}
		}
		F.ref = v3.Zeros(1)
		return F, wrapCodecErr(d.err, "ReadFragment")
	}
	F.Flexible = d.bool()
	F.Constrained = d.bool()
	if F.Flexible {
		for i := 0; i < 3; i++ {
			F.DoF[i] = make([]bool, n)
			for j := 0; j < n; j++ {
				F.DoF[i][j] = d.bool()
			}
		}
	}
	if F.Constrained {
		F.Constraints = make([][3]bool, n)
		for i := 0; i < n; i++ {
			for j := 0; j < 3; j++ {
				F.Constraints[i][j] = d.bool()
			}
		}
	}
	F.Energy = d.float64()
	for k := range F.com {
		F.com[k] = d.float64()
	}
	for k := range F.eulers {
		F.eulers[k] = d.float64()
	}
	if d.err != nil {
		return nil, wrapCodecErr(d.err, "ReadFragment")
	}
	F.Spins = make([]int16, n)
	for i := range F.Spins {
		F.Spins[i] = d.int16()
	}
	F.Charges = make([]float32, n)
	for i := range F.Charges {
		F.Charges[i] = d.float32()
	}
	F.Symbols = make([]string, n)
	for i := range F.Symbols {
		F.Symbols[i] = d.utf()
	}
	F.AtomicNumbers = make([]int16, n)
	for i := range F.AtomicNumbers {
		F.AtomicNumbers[i] = d.int16()
	}
	F.ref = v3.Zeros(n)
	for k := 0; k < 3; k++ {
		for i := 0; i < n; i++ {
			F.ref.Set(i, k, d.float64())
		}
	}
	if F.Flexible {
		l := int(d.int32())
		if d.err == nil && (l < 0 || l > 4+n*zrowSize) {
			return nil, fmt.Errorf("ReadFragment: Z-matrix of %d bytes for %d atoms: %w", l, n, ErrBadAtomCount)
		}
		blob := d.bytes(l)
		if d.err != nil {
			return nil, wrapCodecErr(d.err, "ReadFragment")
		}
		F.ZMat = new(ZMatrix)
		if err := F.ZMat.UnmarshalBinary(blob); err != nil {
			return nil, fmt.Errorf("ReadFragment: %w", err)
		}
	}
	if d.err != nil {
		return nil, wrapCodecErr(d.err, "ReadFragment")
	}
	return F, nil
}

func wrapCodecErr(err error, caller string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%s: %w", caller, ErrShortRead)
	}
	return fmt.Errorf("%s: %w", caller, err)
}
