// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "encoding/binary"
import "fmt"
import "unicode/utf8"

import "v.io/x/lib/vlog"

import "v.io/x/kernel/dispatch"
import "v.io/x/kernel/object"
import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

// Staging offsets inside a user thread's address space.
const (
	descOff = 0x000
	sendOff = 0x100
	recvOff = 0x200
	readOff = 0x300
)

// The wire encoding of "wait forever", split across the two deadline
// argument words.
const (
	noDeadlineLo = uint64(0xffffffff)
	noDeadlineHi = uint64(0xffffffff)
)

// A userThread stands in for a userspace thread: it owns a process
// (object table plus address space) and traps into the kernel through
// the packed syscall ABI, so every call below exercises the same
// boundary real user code crosses.
type userThread struct {
	kernel *dispatch.Kernel
	proc   *dispatch.Process
	mem    *object.FlatAddressSpace
}

func (t *userThread) syscall(id sysdefs.ID, arg0, arg1, arg2, arg3 uint64) (uint64, error) {
	return t.kernel.RawHandleSyscall(t.proc, uint16(id), arg0, arg1, arg2, arg3).Unpack()
}

// stage copies b into the thread's memory at off and returns the user
// pointer to it.
func (t *userThread) stage(off uint64, b []byte) uint64 {
	copy(t.mem.Mem[off:], b)
	return t.mem.Base + off
}

func (t *userThread) objectWait(handle uint32, mask sysdefs.Signals) (sysdefs.WaitReturn, error) {
	v, err := t.syscall(sysdefs.IDObjectWait, uint64(handle), uint64(mask), noDeadlineLo, noDeadlineHi)
	if err != nil {
		return sysdefs.WaitReturn{}, err
	}
	return sysdefs.UnpackWaitReturn(v), nil
}

func (t *userThread) waitGroupAdd(group, member uint32, mask sysdefs.Signals, userData uint64) error {
	_, err := t.syscall(sysdefs.IDWaitGroupAdd, uint64(group), uint64(member), uint64(mask), userData)
	return err
}

func (t *userThread) waitGroupRemove(group, member uint32) error {
	_, err := t.syscall(sysdefs.IDWaitGroupRemove, uint64(group), uint64(member), 0, 0)
	return err
}

func (t *userThread) channelTransact(handle uint32, send []byte, recvLen int) ([]byte, error) {
	sendPtr := t.stage(sendOff, send)
	recvPtr := t.mem.Base + recvOff

	var desc [32]byte
	binary.LittleEndian.PutUint64(desc[0:], sendPtr)
	binary.LittleEndian.PutUint64(desc[8:], uint64(len(send)))
	binary.LittleEndian.PutUint64(desc[16:], recvPtr)
	binary.LittleEndian.PutUint64(desc[24:], uint64(recvLen))
	descPtr := t.stage(descOff, desc[:])

	n, err := t.syscall(sysdefs.IDChannelTransact, uint64(handle), descPtr, noDeadlineLo, noDeadlineHi)
	if err != nil {
		return nil, err
	}
	return t.mem.Mem[recvOff : recvOff+n], nil
}

func (t *userThread) channelRead(handle uint32, offset uint64, length int) ([]byte, error) {
	n, err := t.syscall(sysdefs.IDChannelRead, uint64(handle), offset, t.mem.Base+readOff, uint64(length))
	if err != nil {
		return nil, err
	}
	return t.mem.Mem[readOff : readOff+n], nil
}

func (t *userThread) channelRespond(handle uint32, b []byte) error {
	ptr := t.stage(sendOff, b)
	_, err := t.syscall(sysdefs.IDChannelRespond, uint64(handle), ptr, uint64(len(b)), 0)
	return err
}

func (t *userThread) debugShutdown(code uint32) error {
	_, err := t.syscall(sysdefs.IDDebugShutdown, uint64(code), 0, 0, 0)
	return err
}

// sendChar encodes c, transacts it over the channel, and checks that
// the response carries the expected iteration number.
func sendChar(t *userThread, ipcChannel uint32, c rune, iteration uint64) error {
	vlog.Infof("sending %c on channel %d", c, ipcChannel)

	var sendBuf [4]byte
	utf8.EncodeRune(sendBuf[:], c)

	recv, err := t.channelTransact(ipcChannel, sendBuf[:], 8)
	if err != nil {
		return err
	}
	if len(recv) != 8 {
		vlog.Errorf("received %d bytes, 8 expected", len(recv))
		return status.OutOfRange
	}
	if ret := binary.LittleEndian.Uint64(recv); ret != iteration {
		vlog.Errorf("received %d return value, %d expected", ret, iteration)
		return status.InvalidArgument
	}
	return nil
}

// initiatorProgram drives three transactions: 'a' on channel A, 'b' on
// channel B, and 'c' on channel A again.
func initiatorProgram(t *userThread) error {
	vlog.Infof("wait group test starting")
	if err := sendChar(t, handleIPCA, 'a', 0); err != nil {
		return err
	}
	if err := sendChar(t, handleIPCB, 'b', 1); err != nil {
		return err
	}
	return sendChar(t, handleIPCA, 'c', 2)
}

// handlerProgram services the three transactions through a wait group
// and then walks the wait-group error surface.
func handlerProgram(t *userThread) error {
	vlog.Infof("wait group service starting")

	if err := t.waitGroupAdd(handleWaitGroup1, handleIPCA, sysdefs.Readable, 11); err != nil {
		return err
	}
	if err := t.waitGroupAdd(handleWaitGroup1, handleIPCB, sysdefs.Readable, 22); err != nil {
		return err
	}

	expected := []struct {
		userData uint64
		handle   uint32
		char     rune
	}{
		{11, handleIPCA, 'a'},
		{22, handleIPCB, 'b'},
		{11, handleIPCA, 'c'},
	}
	for i, want := range expected {
		vlog.Infof("waiting for objects iteration %d", i)
		wr, err := t.objectWait(handleWaitGroup1, sysdefs.Readable)
		if err != nil {
			return err
		}
		if wr.UserData != want.userData || !wr.PendingSignals.Contains(sysdefs.Readable) {
			vlog.Errorf("iteration %d: got user data %d signals %#x", i, wr.UserData, wr.PendingSignals)
			return status.Internal
		}

		// Read the payload.
		buf, err := t.channelRead(want.handle, 0, 4)
		if err != nil {
			return err
		}
		if len(buf) != 4 {
			return status.OutOfRange
		}
		c := rune(binary.LittleEndian.Uint32(buf))
		if c != want.char {
			vlog.Errorf("received %c character, %c expected", c, want.char)
			return status.InvalidArgument
		}

		// Respond to the IPC with the iteration number.
		var response [8]byte
		binary.LittleEndian.PutUint64(response[:], uint64(i))
		if err := t.channelRespond(want.handle, response[:]); err != nil {
			return err
		}
	}

	vlog.Infof("objects can only be in one wait group")
	if err := t.waitGroupAdd(handleWaitGroup2, handleIPCA, sysdefs.Readable, 3); err != status.ResourceExhausted {
		return fmt.Errorf("duplicate enrollment: got %v, want %v", err, status.ResourceExhausted)
	}

	vlog.Infof("object removed from incorrect wait group")
	if err := t.waitGroupRemove(handleWaitGroup2, handleIPCA); err != status.NotFound {
		return fmt.Errorf("wrong-group removal: got %v, want %v", err, status.NotFound)
	}

	if err := t.waitGroupRemove(handleWaitGroup1, handleIPCB); err != nil {
		return err
	}
	if err := t.waitGroupRemove(handleWaitGroup1, handleIPCA); err != nil {
		return err
	}

	vlog.Infof("object removed when not in any wait group")
	if err := t.waitGroupRemove(handleWaitGroup1, handleIPCA); err != status.NotFound {
		return fmt.Errorf("unenrolled removal: got %v, want %v", err, status.NotFound)
	}

	vlog.Infof("waiting on empty wait group")
	if _, err := t.objectWait(handleWaitGroup1, sysdefs.Readable); err != status.InvalidArgument {
		return fmt.Errorf("empty group wait: got %v, want %v", err, status.InvalidArgument)
	}

	vlog.Infof("nested wait groups not supported")
	if err := t.waitGroupAdd(handleWaitGroup1, handleWaitGroup2, sysdefs.Readable, 3); err != status.InvalidArgument {
		return fmt.Errorf("nested group add: got %v, want %v", err, status.InvalidArgument)
	}

	return nil
}
