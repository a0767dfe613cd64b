// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package status defines the kernel's error values.  Errors are plain
// values: every kernel object method returns one of the errors below or
// nil, and the syscall dispatcher encodes them as negated codes in the
// signed 64-bit return value.
package status

// An Error is a kernel error.  The numeric value is the wire code.
type Error uint32

// The kernel error codes.  The numbering is stable; it crosses the
// syscall boundary.
const (
	Unknown           Error = 2
	InvalidArgument   Error = 3
	DeadlineExceeded  Error = 4
	NotFound          Error = 5
	ResourceExhausted Error = 8
	OutOfRange        Error = 11
	Unimplemented     Error = 12
	Internal          Error = 13
)

func (e Error) Error() string {
	switch e {
	case Unknown:
		return "unknown"
	case InvalidArgument:
		return "invalid argument"
	case DeadlineExceeded:
		return "deadline exceeded"
	case NotFound:
		return "not found"
	case ResourceExhausted:
		return "resource exhausted"
	case OutOfRange:
		return "out of range"
	case Unimplemented:
		return "unimplemented"
	case Internal:
		return "internal"
	}
	return "unknown"
}

// Code returns the wire code for err: 0 for nil, the Error's value for
// kernel errors, and the Unknown code for anything else.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	if e, ok := err.(Error); ok {
		return uint32(e)
	}
	return uint32(Unknown)
}

// FromCode returns the Error for a wire code, or Unknown if the code is
// not one the kernel produces.
func FromCode(code uint32) Error {
	e := Error(code)
	switch e {
	case Unknown, InvalidArgument, DeadlineExceeded, NotFound,
		ResourceExhausted, OutOfRange, Unimplemented, Internal:
		return e
	}
	return Unknown
}
