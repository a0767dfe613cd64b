// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package console_test

import "testing"

import "v.io/x/kernel/console"

// recorder captures each write so the test can observe the byte-by-byte
// behavior of the UART path.
type recorder struct {
	writes [][]byte
}

func (r *recorder) Write(p []byte) (int, error) {
	b := make([]byte, len(p))
	copy(b, p)
	r.writes = append(r.writes, b)
	return len(p), nil
}

func TestBackendWrite(t *testing.T) {
	rec := &recorder{}
	prev := console.SetBackend(rec)
	defer console.SetBackend(prev)

	n, err := console.BackendWrite([]byte("ok\n"))
	if err != nil {
		t.Fatalf("BackendWrite: %v", err)
	}
	if n != 3 {
		t.Fatalf("BackendWrite: got %d bytes, want 3", n)
	}

	// The device is written one byte at a time, like a transmit FIFO.
	if len(rec.writes) != 3 {
		t.Fatalf("writes: got %d, want 3", len(rec.writes))
	}
	var got []byte
	for _, w := range rec.writes {
		if len(w) != 1 {
			t.Fatalf("write size: got %d, want 1", len(w))
		}
		got = append(got, w...)
	}
	if string(got) != "ok\n" {
		t.Fatalf("output: got %q, want %q", got, "ok\n")
	}

	if err := console.BackendFlush(); err != nil {
		t.Fatalf("BackendFlush: %v", err)
	}
}
