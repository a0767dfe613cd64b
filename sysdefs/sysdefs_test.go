// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sysdefs_test

import "testing"

import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

func TestSignals(t *testing.T) {
	s := sysdefs.Readable | sysdefs.Signals(1<<4)
	if !s.Intersects(sysdefs.Readable) {
		t.Errorf("Intersects(Readable): got false, want true")
	}
	if s.Intersects(sysdefs.Signals(1 << 8)) {
		t.Errorf("Intersects(unset bit): got true, want false")
	}
	if !s.Contains(sysdefs.Readable | sysdefs.Signals(1<<4)) {
		t.Errorf("Contains(full mask): got false, want true")
	}
	if s.Contains(sysdefs.Readable | sysdefs.Signals(1<<8)) {
		t.Errorf("Contains with extra bit: got true, want false")
	}
}

func TestPackResult(t *testing.T) {
	r := sysdefs.PackResult(42, nil)
	if v, err := r.Unpack(); err != nil || v != 42 {
		t.Errorf("Unpack: got (%d, %v), want (42, nil)", v, err)
	}

	r = sysdefs.PackResult(0, status.ResourceExhausted)
	if int64(r) != -8 {
		t.Errorf("packed error: got %d, want -8", int64(r))
	}
	if _, err := r.Unpack(); err != status.ResourceExhausted {
		t.Errorf("Unpack error: got %v, want ResourceExhausted", err)
	}

	// A payload that does not fit in the positive half is an internal
	// error, not a silently negative value.
	r = sysdefs.PackResult(^uint64(0), nil)
	if _, err := r.Unpack(); err != status.Internal {
		t.Errorf("oversized payload: got %v, want Internal", err)
	}
}

func TestWaitReturnPack(t *testing.T) {
	w := sysdefs.WaitReturn{UserData: 22, PendingSignals: sysdefs.Readable}
	got := sysdefs.UnpackWaitReturn(w.Pack())
	if got != w {
		t.Errorf("round trip: got %+v, want %+v", got, w)
	}
}

func TestJoinDeadline(t *testing.T) {
	if got := sysdefs.JoinDeadline(0xffffffff, 0xffffffff); got != sysdefs.NoDeadlineWire {
		t.Errorf("JoinDeadline(all ones): got %#x, want %#x", got, sysdefs.NoDeadlineWire)
	}
	if got := sysdefs.JoinDeadline(0x89abcdef, 0x01234567); got != 0x0123456789abcdef {
		t.Errorf("JoinDeadline: got %#x, want %#x", got, uint64(0x0123456789abcdef))
	}
}
