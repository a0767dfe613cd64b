// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import "v.io/x/kernel/status"

// A SyscallBuffer is a span of user memory validated against the
// owning process's bounds at trap time.  It is not itself a kernel
// object; it exists so that object methods operate only on memory that
// has already been checked.
type SyscallBuffer struct {
	b []byte
}

// BufferOf wraps an already-validated byte span.
func BufferOf(b []byte) SyscallBuffer {
	return SyscallBuffer{b: b}
}

// Len returns the span's length in bytes.
func (s SyscallBuffer) Len() int {
	return len(s.b)
}

// Bytes returns the underlying span.
func (s SyscallBuffer) Bytes() []byte {
	return s.b
}

// An AddressSpace validates user pointers at trap time and converts
// them into SyscallBuffers.
type AddressSpace interface {
	// Slice returns the user-memory span [ptr, ptr+length), or
	// OutOfRange if any part of it falls outside the process's bounds.
	Slice(ptr, length uint64) (SyscallBuffer, error)
}

// A FlatAddressSpace is a single contiguous user-memory region mapped
// at a base address, as used by the emulated targets.
type FlatAddressSpace struct {
	Base uint64
	Mem  []byte
}

func (a *FlatAddressSpace) Slice(ptr, length uint64) (SyscallBuffer, error) {
	if ptr < a.Base {
		return SyscallBuffer{}, status.OutOfRange
	}
	off := ptr - a.Base
	if off > uint64(len(a.Mem)) || length > uint64(len(a.Mem))-off {
		return SyscallBuffer{}, status.OutOfRange
	}
	return SyscallBuffer{b: a.Mem[off : off+length]}, nil
}
