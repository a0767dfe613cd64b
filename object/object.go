// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package object implements the kernel's waitable objects: the common
// object base with its signal mask and waiter list, the wait group that
// aggregates readiness across member objects, and the concrete object
// kinds (channel endpoints and interrupts) reachable from userspace
// through integer handles.
//
// All observable wakeups flow through Base.Signal so that local waiters
// and any enrolled wait group see a single consistent transition.
package object

import "time"

import "v.io/x/kernel/foreign"
import "v.io/x/kernel/sysdefs"
import "v.io/x/kernel/status"

// Object is the interface all kernel objects implement.  The methods
// map directly to the kernel's system calls.
//
// Concrete kinds embed Unimplemented so that adding a method here never
// forces updates across all object kinds; unimplemented methods report
// status.Unimplemented.
type Object interface {
	// Base returns the object's common waitable state, or nil for
	// objects (currently only wait groups) that have none.
	Base() *Base

	// ObjectWait blocks until any of the signals in signalMask are
	// active on the object or deadline has expired.
	ObjectWait(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error)

	// WaitGroupAdd enrolls member in this wait group.  ObjectWait on
	// the group will return userData when any of the signals in
	// signalMask are active on the member.
	WaitGroupAdd(member Object, signalMask sysdefs.Signals, userData uint64) error

	// WaitGroupRemove removes member from this wait group.
	WaitGroupRemove(member Object) error

	// ChannelTransact sends the contents of send to the paired channel
	// handler, blocks until the handler responds or deadline expires,
	// copies the response into recv, and returns the response length.
	ChannelTransact(send, recv SyscallBuffer, deadline time.Time) (int, error)

	// ChannelRead copies bytes of the pending request, starting at
	// offset, into buf and returns the number of bytes copied.
	ChannelRead(offset uint64, buf SyscallBuffer) (int, error)

	// ChannelRespond posts the contents of buf as the response to the
	// pending request, waking the initiator.
	ChannelRespond(buf SyscallBuffer) error

	// InterruptAck clears the given signal bits and re-arms the
	// interrupt.
	InterruptAck(signalMask sysdefs.Signals) error
}

// Unimplemented provides a default implementation of every Object
// method.  Concrete object kinds embed it and override the methods they
// support.
type Unimplemented struct{}

func (Unimplemented) Base() *Base { return nil }

func (Unimplemented) ObjectWait(sysdefs.Signals, time.Time) (sysdefs.WaitReturn, error) {
	return sysdefs.WaitReturn{}, status.Unimplemented
}

func (Unimplemented) WaitGroupAdd(Object, sysdefs.Signals, uint64) error {
	return status.Unimplemented
}

func (Unimplemented) WaitGroupRemove(Object) error {
	return status.Unimplemented
}

func (Unimplemented) ChannelTransact(SyscallBuffer, SyscallBuffer, time.Time) (int, error) {
	return 0, status.Unimplemented
}

func (Unimplemented) ChannelRead(uint64, SyscallBuffer) (int, error) {
	return 0, status.Unimplemented
}

func (Unimplemented) ChannelRespond(SyscallBuffer) error {
	return status.Unimplemented
}

func (Unimplemented) InterruptAck(sysdefs.Signals) error {
	return status.Unimplemented
}

// A Table translates handles to shared references to kernel objects.
// Table is an interface to allow static and dynamic tables to coexist.
type Table interface {
	// GetObject resolves handle to a counted object reference.  The
	// caller owns the returned reference and must release it.
	GetObject(handle uint32) (foreign.Rc[Object], bool)
}

// A NullTable is a table with no entries.
type NullTable struct{}

func (NullTable) GetObject(uint32) (foreign.Rc[Object], bool) {
	return foreign.Rc[Object]{}, false
}

// A StaticTable is a fixed-size table of object cells indexed by
// handle.  Handle 0 is conventionally left empty.
type StaticTable []*foreign.RcState[Object]

// NewStaticTable builds a table from a handle-indexed slice of objects;
// nil entries stay empty.
func NewStaticTable(objects []Object) StaticTable {
	t := make(StaticTable, len(objects))
	for i, o := range objects {
		if o == nil {
			continue
		}
		cell := &foreign.RcState[Object]{}
		cell.Init(o)
		t[i] = cell
	}
	return t
}

func (t StaticTable) GetObject(handle uint32) (foreign.Rc[Object], bool) {
	if handle >= uint32(len(t)) || t[handle] == nil {
		return foreign.Rc[Object]{}, false
	}
	return t[handle].NewRef(), true
}
