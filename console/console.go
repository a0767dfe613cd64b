// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console implements the kernel console backend.  On hardware
// the backend is a memory-mapped UART written one byte at a time; the
// emulated kernel writes the same way to a pluggable io.Writer.  The
// console is not a waitable object.
package console

import "io"
import "os"

import "v.io/x/kernel/ksync"

// uart writes to the console device one byte at a time, mirroring a
// write to a memory-mapped transmit FIFO.  It assumes the FIFO never
// backs up, which is reasonable for bring-up.
type uart struct {
	w io.Writer
}

func (u *uart) write(buf []byte) (int, error) {
	for i := range buf {
		if _, err := u.w.Write(buf[i : i+1]); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

var (
	mu     ksync.SpinLock
	device = uart{w: os.Stdout}
)

// SetBackend redirects console output to w and returns the previous
// backend.  The emulator and tests use this; hardware targets leave
// the default in place.
func SetBackend(w io.Writer) io.Writer {
	mu.Lock()
	prev := device.w
	device.w = w
	mu.Unlock()
	return prev
}

// BackendWrite writes buf to the console device and returns the number
// of bytes written.
func BackendWrite(buf []byte) (int, error) {
	mu.Lock()
	n, err := device.write(buf)
	mu.Unlock()
	return n, err
}

// BackendFlush flushes the console device.
func BackendFlush() error {
	return nil
}
