// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object_test

import "testing"
import "time"

import "v.io/x/kernel/ksync"
import "v.io/x/kernel/object"
import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

func TestInterruptFireAndAck(t *testing.T) {
	rearmed := 0
	irq := object.NewInterrupt(func() { rearmed++ })

	go func() {
		time.Sleep(5 * time.Millisecond)
		irq.Trigger(sysdefs.Readable)
	}()

	ret, err := irq.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
	if err != nil {
		t.Fatalf("ObjectWait: %v", err)
	}
	if !ret.PendingSignals.Contains(sysdefs.Readable) {
		t.Fatalf("pending signals %#x missing Readable", ret.PendingSignals)
	}

	if err := irq.InterruptAck(sysdefs.Readable); err != nil {
		t.Fatalf("InterruptAck: %v", err)
	}
	if rearmed != 1 {
		t.Fatalf("rearm count: got %d, want 1", rearmed)
	}

	// Acked: the line is no longer readable until it fires again.
	if _, err := irq.ObjectWait(sysdefs.Readable, time.Now().Add(20*time.Millisecond)); err != status.DeadlineExceeded {
		t.Fatalf("ObjectWait after ack: got %v, want DeadlineExceeded", err)
	}

	irq.Trigger(sysdefs.Readable)
	if _, err := irq.ObjectWait(sysdefs.Readable, ksync.NoDeadline); err != nil {
		t.Fatalf("ObjectWait after retrigger: %v", err)
	}
}

func TestInterruptInWaitGroup(t *testing.T) {
	irq := object.NewInterrupt(nil)
	wg := object.NewWaitGroup()
	if err := wg.WaitGroupAdd(irq, sysdefs.Readable, 17); err != nil {
		t.Fatalf("WaitGroupAdd: %v", err)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		irq.Trigger(sysdefs.Readable)
	}()

	ret, err := wg.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
	if err != nil {
		t.Fatalf("ObjectWait: %v", err)
	}
	if ret.UserData != 17 {
		t.Fatalf("user data: got %d, want 17", ret.UserData)
	}

	// Acking migrates the member back to the unsignaled partition.
	if err := irq.InterruptAck(sysdefs.Readable); err != nil {
		t.Fatalf("InterruptAck: %v", err)
	}
	if _, err := wg.ObjectWait(sysdefs.Readable, time.Now().Add(20*time.Millisecond)); err != status.DeadlineExceeded {
		t.Fatalf("ObjectWait after ack: got %v, want DeadlineExceeded", err)
	}
}

func TestFlatAddressSpaceBounds(t *testing.T) {
	as := &object.FlatAddressSpace{Base: 0x1000, Mem: make([]byte, 0x100)}

	buf, err := as.Slice(0x1000, 0x100)
	if err != nil || buf.Len() != 0x100 {
		t.Fatalf("full slice: got (%d, %v)", buf.Len(), err)
	}
	if _, err := as.Slice(0x0fff, 1); err != status.OutOfRange {
		t.Errorf("below base: got %v, want OutOfRange", err)
	}
	if _, err := as.Slice(0x1000, 0x101); err != status.OutOfRange {
		t.Errorf("past end: got %v, want OutOfRange", err)
	}
	if _, err := as.Slice(0x10ff, 2); err != status.OutOfRange {
		t.Errorf("straddling end: got %v, want OutOfRange", err)
	}
	if _, err := as.Slice(^uint64(0), 1); err != status.OutOfRange {
		t.Errorf("wrapping pointer: got %v, want OutOfRange", err)
	}
}
