/*
 * errors.go, part of gocluster.
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
	"errors"
	"fmt"
)

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
// If passed an empty string, Decorate just returns the current decoration.
type Error interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

// CError is the basic error type of the library. It
// implements Error.
type CError struct {
	msg      string
	deco     []string
	critical bool
	wrapped  error
}

// NewError returns a CError with the given message, decorated with caller.
func NewError(msg, caller string, critical bool) CError {
	return CError{msg: msg, deco: []string{caller}, critical: critical}
}

// WrapError returns a CError that wraps err, so errors.Is and
// errors.As can see through it.
func WrapError(err error, msg, caller string) CError {
	return CError{msg: fmt.Sprintf("%s: %s", msg, err.Error()), deco: []string{caller}, critical: true, wrapped: err}
}

// Error returns a string with an error message.
func (err CError) Error() string {
	return err.msg
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	//Even though this method does not use a pointer as a receiver,
	//it works, since err.deco is a slice.
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise
func (err CError) Critical() bool { return err.critical }

// Unwrap returns the wrapped error, if any.
func (err CError) Unwrap() error { return err.wrapped }

// errDecorate is a helper function that decorates err with the caller's name
// before returning it, if err implements Error. Other errors are wrapped with
// the caller's name.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var err2 Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrBondTableMismatch = PanicMsg("gocluster: bond table does not match the number of atoms in the structure")
	ErrNilFragment       = PanicMsg("gocluster: nil fragment in structure")
	ErrAtomDataMismatch  = PanicMsg("gocluster: per-atom data of a fragment have different lengths")
)

// Sentinel errors of the binary fragment codec.
var (
	ErrShortRead     = errors.New("gocluster: unexpected end of fragment data")
	ErrBadAtomCount  = errors.New("gocluster: invalid number of atoms in fragment data")
	ErrStringTooLong = errors.New("gocluster: string too long for the fragment codec")
)
