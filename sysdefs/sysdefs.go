// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sysdefs holds the definitions shared between the kernel and
// userspace: the signal bitmask, the wait return value, the syscall id
// space, and the packing of results into the signed 64-bit syscall
// return value.
package sysdefs

import "math"

import "v.io/x/kernel/status"

// Signals is a fixed-width bitmask of per-object readiness conditions.
type Signals uint32

const (
	// Readable indicates the object has data or a condition ready to be
	// consumed.
	Readable Signals = 1 << 0
)

// Intersects returns whether s and o share any bits.
func (s Signals) Intersects(o Signals) bool {
	return s&o != 0
}

// Contains returns whether every bit of o is set in s.
func (s Signals) Contains(o Signals) bool {
	return s&o == o
}

// A WaitReturn is the successful result of an object wait.  UserData is
// meaningful only for wakeups originating from wait-group members; it
// is zero otherwise.
type WaitReturn struct {
	UserData       uint64
	PendingSignals Signals
}

// Pack encodes a WaitReturn into the payload half of a syscall return
// value: the signals in the low 32 bits, the user data in the bits
// above.  User data wider than 31 bits does not survive the trip
// through the positive half of an int64.
func (w WaitReturn) Pack() uint64 {
	return w.UserData<<32 | uint64(uint32(w.PendingSignals))
}

// UnpackWaitReturn decodes a payload produced by WaitReturn.Pack.
func UnpackWaitReturn(v uint64) WaitReturn {
	return WaitReturn{
		UserData:       v >> 32,
		PendingSignals: Signals(uint32(v)),
	}
}

// An ID names a system call.
type ID uint16

const (
	IDObjectWait      ID = 0x0001
	IDWaitGroupAdd    ID = 0x0002
	IDWaitGroupRemove ID = 0x0003

	IDChannelTransact ID = 0x0010
	IDChannelRead     ID = 0x0011
	IDChannelRespond  ID = 0x0012

	IDInterruptAck ID = 0x0020

	IDDebugNoOp     ID = 0xf000
	IDDebugAdd      ID = 0xf001
	IDDebugPutc     ID = 0xf002
	IDDebugShutdown ID = 0xf003
)

// NoDeadlineWire is the wire encoding of "wait forever": all bits set
// in the 64-bit deadline assembled from the two syscall argument words.
const NoDeadlineWire = ^uint64(0)

// JoinDeadline assembles the 64-bit deadline (nanoseconds since boot)
// from the two machine words it is split across in the syscall ABI.
func JoinDeadline(lo, hi uint64) uint64 {
	return uint64(uint32(lo)) | uint64(uint32(hi))<<32
}

// A ReturnValue is the packed signed 64-bit result of a system call.
// Non-negative values are successful payloads; negative values are
// negated error codes.
type ReturnValue int64

// PackResult encodes a (payload, error) pair.  Payloads that do not fit
// in the positive half of an int64 are reported as Internal.
func PackResult(val uint64, err error) ReturnValue {
	if err != nil {
		return ReturnValue(-int64(status.Code(err)))
	}
	if val > math.MaxInt64 {
		return ReturnValue(-int64(status.Internal))
	}
	return ReturnValue(val)
}

// Unpack splits a ReturnValue back into a payload and an error.
func (r ReturnValue) Unpack() (uint64, error) {
	if r < 0 {
		return 0, status.FromCode(uint32(-r))
	}
	return uint64(r), nil
}
