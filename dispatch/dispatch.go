// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dispatch maps a numeric syscall id and four machine-word
// arguments onto kernel object operations.  The dispatcher runs in the
// context of the trapping user thread: it resolves the handle through
// the thread's process table, invokes the object method, and packs the
// outcome into a signed 64-bit return value (non-negative payload, or
// a negated error code).
package dispatch

import "encoding/binary"
import "math"
import "time"
import "unicode/utf8"

import "v.io/x/lib/vlog"

import "v.io/x/kernel/console"
import "v.io/x/kernel/ksync"
import "v.io/x/kernel/object"
import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

// transactDescriptorSize is the size of the channel-transact descriptor
// in user memory: four little-endian 64-bit words
// {send_ptr, send_len, recv_ptr, recv_len}.
const transactDescriptorSize = 32

// A Process is the per-process state the dispatcher needs: the object
// table its handles index, and the address space its buffer arguments
// are validated against.
type Process struct {
	Table        object.Table
	AddressSpace object.AddressSpace
}

// A Kernel dispatches system calls.
type Kernel struct {
	boot time.Time
	// shutdown is invoked by debug_shutdown with the exit status.  It
	// need not return.
	shutdown func(code uint32)
}

// NewKernel creates a dispatcher.  shutdown, if non-nil, is invoked by
// the debug_shutdown syscall.
func NewKernel(shutdown func(code uint32)) *Kernel {
	return &Kernel{boot: time.Now(), shutdown: shutdown}
}

// deadline converts the wire deadline (nanoseconds since boot, split
// across two argument words, all-ones meaning forever) into a kernel
// deadline.
func (k *Kernel) deadline(lo, hi uint64) time.Time {
	ns := sysdefs.JoinDeadline(lo, hi)
	if ns == sysdefs.NoDeadlineWire {
		return ksync.NoDeadline
	}
	return k.boot.Add(time.Duration(ns))
}

// RawHandleSyscall is the trap-trampoline entry point: it runs
// HandleSyscall and packs the outcome.
func (k *Kernel) RawHandleSyscall(p *Process, id uint16, arg0, arg1, arg2, arg3 uint64) sysdefs.ReturnValue {
	return sysdefs.PackResult(k.HandleSyscall(p, id, arg0, arg1, arg2, arg3))
}

// HandleSyscall decodes id and invokes the corresponding operation.
// Unknown ids report InvalidArgument.
func (k *Kernel) HandleSyscall(p *Process, id uint16, arg0, arg1, arg2, arg3 uint64) (uint64, error) {
	vlog.VI(2).Infof("syscall: %#06x", id)

	switch sysdefs.ID(id) {
	case sysdefs.IDDebugNoOp:
		return 0, nil

	case sysdefs.IDDebugAdd:
		// debug_add and debug_putc sleep for a second before acting;
		// they exist only for scheduler bring-up.
		vlog.VI(2).Infof("syscall: DebugAdd(%#x, %#x) sleeping", arg0, arg1)
		time.Sleep(time.Second)
		vlog.VI(2).Infof("syscall: DebugAdd woken")
		if arg0 > math.MaxUint64-arg1 {
			return 0, status.OutOfRange
		}
		return arg0 + arg1, nil

	case sysdefs.IDDebugPutc:
		time.Sleep(time.Second)
		if arg0 > math.MaxUint32 || !utf8.ValidRune(rune(arg0)) {
			return 0, status.InvalidArgument
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], rune(arg0))
		if _, err := console.BackendWrite(buf[:n]); err != nil {
			return 0, status.Internal
		}
		return arg0, nil

	case sysdefs.IDDebugShutdown:
		if k.shutdown == nil {
			return 0, status.Unimplemented
		}
		k.shutdown(uint32(arg0))
		return 0, nil
	}

	// Everything else is an object-bearing call: arg0 is the handle.
	rc, ok := p.Table.GetObject(uint32(arg0))
	if !ok {
		return 0, status.InvalidArgument
	}
	defer rc.Release()
	obj := rc.Get()

	switch sysdefs.ID(id) {
	case sysdefs.IDObjectWait:
		ret, err := obj.ObjectWait(sysdefs.Signals(arg1), k.deadline(arg2, arg3))
		if err != nil {
			return 0, err
		}
		return ret.Pack(), nil

	case sysdefs.IDWaitGroupAdd:
		member, ok := p.Table.GetObject(uint32(arg1))
		if !ok {
			return 0, status.InvalidArgument
		}
		defer member.Release()
		return 0, obj.WaitGroupAdd(member.Get(), sysdefs.Signals(arg2), arg3)

	case sysdefs.IDWaitGroupRemove:
		member, ok := p.Table.GetObject(uint32(arg1))
		if !ok {
			return 0, status.InvalidArgument
		}
		defer member.Release()
		return 0, obj.WaitGroupRemove(member.Get())

	case sysdefs.IDChannelTransact:
		// The transaction arguments do not fit in the four argument
		// words; arg1 points at a descriptor in user memory.
		desc, err := p.AddressSpace.Slice(arg1, transactDescriptorSize)
		if err != nil {
			return 0, err
		}
		d := desc.Bytes()
		send, err := p.AddressSpace.Slice(binary.LittleEndian.Uint64(d[0:]), binary.LittleEndian.Uint64(d[8:]))
		if err != nil {
			return 0, err
		}
		recv, err := p.AddressSpace.Slice(binary.LittleEndian.Uint64(d[16:]), binary.LittleEndian.Uint64(d[24:]))
		if err != nil {
			return 0, err
		}
		n, err := obj.ChannelTransact(send, recv, k.deadline(arg2, arg3))
		if err != nil {
			return 0, err
		}
		return uint64(n), nil

	case sysdefs.IDChannelRead:
		buf, err := p.AddressSpace.Slice(arg2, arg3)
		if err != nil {
			return 0, err
		}
		n, err := obj.ChannelRead(arg1, buf)
		if err != nil {
			return 0, err
		}
		return uint64(n), nil

	case sysdefs.IDChannelRespond:
		buf, err := p.AddressSpace.Slice(arg1, arg2)
		if err != nil {
			return 0, err
		}
		return 0, obj.ChannelRespond(buf)

	case sysdefs.IDInterruptAck:
		return 0, obj.InterruptAck(sysdefs.Signals(arg1))
	}

	return 0, status.InvalidArgument
}
