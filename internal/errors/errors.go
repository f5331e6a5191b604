// Copyright 2019, The PP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package errors implements functions to manipulate errors raised by the
// PP codec packages.
//
// Every failure the codec can report belongs to exactly one class from the
// taxonomy below. The tight coder loops raise errors by panicking with an
// Error value; Recover converts such a panic back into an ordinary return
// value at the API boundary.
package errors

import "runtime"

// The taxonomy of failure classes. The zero value is Unknown.
const (
	Unknown = iota
	InvalidInput
	BadMagic
	UnsupportedVersion
	TruncatedHeader
	InvalidSize
	MalformedTree
	BadToken
	Overrun
	ChecksumMismatch
	InternalLimit
)

// Error is the wrapper type for all errors raised by this library.
type Error struct {
	Code int    // The failure class
	Pkg  string // The package where the error originated
	Msg  string // Description of the error
}

func (e Error) Error() string {
	if e.Pkg != "" {
		return e.Pkg + ": " + e.Msg
	}
	return e.Msg
}

// Match reports whether err is an Error of the given failure class.
func Match(err error, code int) bool {
	e, ok := err.(Error)
	return ok && e.Code == code
}

// Recover recovers a panicked Error into err. Runtime errors and foreign
// panic values are re-raised since they indicate programming bugs rather
// than malformed input.
func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case Error:
		*err = ex
	default:
		panic(ex)
	}
}
