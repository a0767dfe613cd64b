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

const writable = sysdefs.Signals(1 << 1)

// A testObject is a minimal waitable kernel object.
type testObject struct {
	object.Unimplemented
	base object.Base
}

func (o *testObject) Base() *object.Base { return &o.base }

func (o *testObject) ObjectWait(mask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	return o.base.WaitUntil(mask, deadline)
}

func setSignals(bits sysdefs.Signals) func(sysdefs.Signals) sysdefs.Signals {
	return func(s sysdefs.Signals) sysdefs.Signals { return s | bits }
}

func clearSignals(bits sysdefs.Signals) func(sysdefs.Signals) sysdefs.Signals {
	return func(s sysdefs.Signals) sysdefs.Signals { return s &^ bits }
}

func TestWaitImmediatePoll(t *testing.T) {
	o := &testObject{}
	o.Base().Signal(setSignals(sysdefs.Readable))

	ret, err := o.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
	if err != nil {
		t.Fatalf("ObjectWait: %v", err)
	}
	want := sysdefs.WaitReturn{UserData: 0, PendingSignals: sysdefs.Readable}
	if ret != want {
		t.Fatalf("ObjectWait: got %+v, want %+v", ret, want)
	}
}

func TestWaitWokenBySignal(t *testing.T) {
	o := &testObject{}

	type result struct {
		ret sysdefs.WaitReturn
		err error
	}
	done := make(chan result, 1)
	go func() {
		ret, err := o.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
		done <- result{ret, err}
	}()

	// Give the waiter a chance to park before signaling.
	time.Sleep(5 * time.Millisecond)
	o.Base().Signal(setSignals(sysdefs.Readable))

	r := <-done
	if r.err != nil {
		t.Fatalf("ObjectWait: %v", r.err)
	}
	want := sysdefs.WaitReturn{UserData: 0, PendingSignals: sysdefs.Readable}
	if r.ret != want {
		t.Fatalf("ObjectWait: got %+v, want %+v", r.ret, want)
	}
}

func TestWaitDeadline(t *testing.T) {
	o := &testObject{}
	start := time.Now()
	_, err := o.ObjectWait(sysdefs.Readable, start.Add(20*time.Millisecond))
	if err != status.DeadlineExceeded {
		t.Fatalf("ObjectWait: got %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("ObjectWait returned after %v, want >= 20ms", elapsed)
	}

	// A timed-out waiter has been removed; a later signal must not
	// disturb anything.
	o.Base().Signal(setSignals(sysdefs.Readable))
}

func TestSignalWakesOnlyMatchingWaiters(t *testing.T) {
	o := &testObject{}

	readable := make(chan error, 1)
	other := make(chan error, 1)
	go func() {
		_, err := o.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
		readable <- err
	}()
	go func() {
		_, err := o.ObjectWait(writable, time.Now().Add(100*time.Millisecond))
		other <- err
	}()
	time.Sleep(5 * time.Millisecond)

	o.Base().Signal(setSignals(sysdefs.Readable))

	if err := <-readable; err != nil {
		t.Errorf("matching waiter: %v", err)
	}
	if err := <-other; err != status.DeadlineExceeded {
		t.Errorf("non-matching waiter: got %v, want DeadlineExceeded", err)
	}
}

func TestSignalWakesAllMatchingWaiters(t *testing.T) {
	o := &testObject{}
	const waiters = 4

	done := make(chan sysdefs.WaitReturn, waiters)
	for i := 0; i != waiters; i++ {
		go func() {
			ret, err := o.ObjectWait(sysdefs.Readable, ksync.NoDeadline)
			if err != nil {
				t.Errorf("ObjectWait: %v", err)
			}
			done <- ret
		}()
	}
	time.Sleep(10 * time.Millisecond)

	o.Base().Signal(setSignals(sysdefs.Readable))

	for i := 0; i != waiters; i++ {
		ret := <-done
		if !ret.PendingSignals.Contains(sysdefs.Readable) {
			t.Errorf("waiter %d: pending signals %#x missing Readable", i, ret.PendingSignals)
		}
	}
}

func TestSignalClearDoesNotWake(t *testing.T) {
	o := &testObject{}
	o.Base().Signal(setSignals(sysdefs.Readable))
	o.Base().Signal(clearSignals(sysdefs.Readable))

	_, err := o.ObjectWait(sysdefs.Readable, time.Now().Add(20*time.Millisecond))
	if err != status.DeadlineExceeded {
		t.Fatalf("ObjectWait after clear: got %v, want DeadlineExceeded", err)
	}
}

func TestUnimplementedDefaults(t *testing.T) {
	o := &testObject{}
	if err := o.ChannelRespond(object.BufferOf(nil)); err != status.Unimplemented {
		t.Errorf("ChannelRespond: got %v, want Unimplemented", err)
	}
	if _, err := o.ChannelRead(0, object.BufferOf(nil)); err != status.Unimplemented {
		t.Errorf("ChannelRead: got %v, want Unimplemented", err)
	}
	if err := o.InterruptAck(sysdefs.Readable); err != status.Unimplemented {
		t.Errorf("InterruptAck: got %v, want Unimplemented", err)
	}
	if err := o.WaitGroupAdd(o, sysdefs.Readable, 0); err != status.Unimplemented {
		t.Errorf("WaitGroupAdd: got %v, want Unimplemented", err)
	}
}

func TestStaticTable(t *testing.T) {
	a := &testObject{}
	table := object.NewStaticTable([]object.Object{nil, a})

	rc, ok := table.GetObject(1)
	if !ok {
		t.Fatalf("GetObject(1): absent")
	}
	if rc.Get() != object.Object(a) {
		t.Fatalf("GetObject(1): wrong object")
	}
	rc.Release()

	if _, ok := table.GetObject(0); ok {
		t.Errorf("GetObject(0): got present, want absent")
	}
	if _, ok := table.GetObject(99); ok {
		t.Errorf("GetObject(out of range): got present, want absent")
	}

	var null object.NullTable
	if _, ok := null.GetObject(1); ok {
		t.Errorf("NullTable.GetObject: got present, want absent")
	}
}
