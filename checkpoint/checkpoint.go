/*
 * checkpoint.go, part of gocluster.
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

// Package checkpoint saves and restores sets of structures as zstd-compressed
// binary snapshots. Each fragment is stored with the fragment codec of the
// cluster package. Environments are not stored.
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	cluster "github.com/rmera/gocluster"
)

// Magic starts every snapshot.
const Magic = "GCLS"

// Version is the version of the snapshot format written.
const Version uint16 = 1

var ErrNotCheckpoint = errors.New("gocluster/checkpoint: not a checkpoint")

// Write writes a compressed snapshot with the given structures to w.
func Write(w io.Writer, structures ...*cluster.Structure) error {
	z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return cluster.WrapError(err, "Can't create compressor", "checkpoint.Write")
	}
	b := bufio.NewWriter(z)
	if err := writeAll(b, structures); err != nil {
		z.Close()
		return err
	}
	if err := b.Flush(); err != nil {
		z.Close()
		return cluster.WrapError(err, "Can't write checkpoint", "checkpoint.Write")
	}
	if err := z.Close(); err != nil {
		return cluster.WrapError(err, "Can't write checkpoint", "checkpoint.Write")
	}
	return nil
}

func writeAll(w io.Writer, structures []*cluster.Structure) error {
	be := binary.BigEndian
	if _, err := io.WriteString(w, Magic); err != nil {
		return cluster.WrapError(err, "Can't write header", "checkpoint.Write")
	}
	if err := binary.Write(w, be, Version); err != nil {
		return cluster.WrapError(err, "Can't write header", "checkpoint.Write")
	}
	if err := binary.Write(w, be, int32(len(structures))); err != nil {
		return cluster.WrapError(err, "Can't write header", "checkpoint.Write")
	}
	for i, s := range structures {
		if err := writeStructure(w, s); err != nil {
			return cluster.WrapError(err, fmt.Sprintf("Can't write structure %d", i), "checkpoint.Write")
		}
	}
	return nil
}

type header struct {
	ID, FatherID, MotherID int64
	Fitness                float64
	NFragments             int32
}

func writeStructure(w io.Writer, s *cluster.Structure) error {
	s.MustBeSizeCompatible()
	be := binary.BigEndian
	h := header{ID: s.ID, FatherID: s.FatherID, MotherID: s.MotherID, Fitness: s.Fitness, NFragments: int32(s.NFragments())}
	if err := binary.Write(w, be, h); err != nil {
		return err
	}
	for _, f := range s.Fragments {
		if err := cluster.WriteFragment(w, f); err != nil {
			return err
		}
	}
	bonds := s.Bonds.Bonds()
	if err := binary.Write(w, be, int32(len(bonds))); err != nil {
		return err
	}
	for _, b := range bonds {
		if err := binary.Write(w, be, [2]int32{int32(b[0]), int32(b[1])}); err != nil {
			return err
		}
	}
	return nil
}

// Read reads all the structures in a snapshot from r.
func Read(r io.Reader) ([]*cluster.Structure, error) {
	z, err := zstd.NewReader(r)
	if err != nil {
		return nil, cluster.WrapError(err, "Can't create decompressor", "checkpoint.Read")
	}
	defer z.Close()
	b := bufio.NewReader(z)
	be := binary.BigEndian
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(b, magic); err != nil || string(magic) != Magic {
		return nil, cluster.WrapError(ErrNotCheckpoint, "Bad header", "checkpoint.Read")
	}
	var version uint16
	var n int32
	if err := binary.Read(b, be, &version); err != nil {
		return nil, cluster.WrapError(err, "Can't read header", "checkpoint.Read")
	}
	if version > Version {
		return nil, cluster.NewError(fmt.Sprintf("Unsupported checkpoint version %d", version), "checkpoint.Read", true)
	}
	if err := binary.Read(b, be, &n); err != nil {
		return nil, cluster.WrapError(err, "Can't read header", "checkpoint.Read")
	}
	if n < 0 {
		return nil, cluster.WrapError(ErrNotCheckpoint, "Negative number of structures", "checkpoint.Read")
	}
	var ret []*cluster.Structure
	for i := 0; i < int(n); i++ {
		s, err := readStructure(b)
		if err != nil {
			return nil, cluster.WrapError(err, fmt.Sprintf("Can't read structure %d", i), "checkpoint.Read")
		}
		ret = append(ret, s)
	}
	return ret, nil
}

func readStructure(r io.Reader) (*cluster.Structure, error) {
	be := binary.BigEndian
	var h header
	if err := binary.Read(r, be, &h); err != nil {
		return nil, err
	}
	if h.NFragments < 0 {
		return nil, ErrNotCheckpoint
	}
	var frags []*cluster.Fragment
	for i := 0; i < int(h.NFragments); i++ {
		f, err := cluster.ReadFragment(r)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	var nb int32
	if err := binary.Read(r, be, &nb); err != nil {
		return nil, err
	}
	natoms := 0
	for _, f := range frags {
		natoms += f.NAtoms()
	}
	bonds := cluster.NewBondTable(natoms)
	for i := 0; i < int(nb); i++ {
		var b [2]int32
		if err := binary.Read(r, be, &b); err != nil {
			return nil, err
		}
		if b[0] < 0 || b[1] < 0 || int(b[0]) >= natoms || int(b[1]) >= natoms {
			return nil, fmt.Errorf("bond %d-%d out of range: %w", b[0], b[1], ErrNotCheckpoint)
		}
		bonds.SetBond(int(b[0]), int(b[1]))
	}
	//NewStructure renumbers the fragments, so their stored IDs are put back afterwards.
	ids := make([]int, len(frags))
	for i, f := range frags {
		ids[i] = f.ID
	}
	s := cluster.NewStructure(frags, bonds)
	for i, f := range frags {
		f.ID = ids[i]
	}
	s.ID, s.FatherID, s.MotherID, s.Fitness = h.ID, h.FatherID, h.MotherID, h.Fitness
	return s, nil
}

// Save writes a snapshot with the given structures to the file name.
func Save(name string, structures ...*cluster.Structure) error {
	f, err := os.Create(name)
	if err != nil {
		return cluster.WrapError(err, "Can't create checkpoint file", "checkpoint.Save")
	}
	if err := Write(f, structures...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return cluster.WrapError(err, "Can't close checkpoint file", "checkpoint.Save")
	}
	return nil
}

// Load reads all the structures in the snapshot file name.
func Load(name string) ([]*cluster.Structure, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, cluster.WrapError(err, "Can't open checkpoint file", "checkpoint.Load")
	}
	defer f.Close()
	return Read(f)
}
