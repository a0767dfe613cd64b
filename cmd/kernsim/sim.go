// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "time"

import "v.io/x/lib/vlog"

import "v.io/x/kernel/dispatch"
import "v.io/x/kernel/object"
import "v.io/x/kernel/status"

// The handle layout each user program was linked against.
const (
	handleIPCA       = 1
	handleIPCB       = 2
	handleWaitGroup1 = 3
	handleWaitGroup2 = 4
)

const userMemBase = 0x10000

// newUserThread builds a process around the given table with a flat
// 64KiB address space.
func newUserThread(k *dispatch.Kernel, table object.Table) *userThread {
	as := &object.FlatAddressSpace{Base: userMemBase, Mem: make([]byte, 1<<16)}
	return &userThread{
		kernel: k,
		proc:   &dispatch.Process{Table: table, AddressSpace: as},
		mem:    as,
	}
}

// runSimulation wires up the system and runs the two user programs to
// completion, returning the status the system shut down with.
func runSimulation(timeout time.Duration) uint32 {
	iniA, hA := object.NewChannelPair()
	iniB, hB := object.NewChannelPair()
	wg1 := object.NewWaitGroup()
	wg2 := object.NewWaitGroup()

	// Handle 0 is invalid by convention in both processes.
	initiatorTable := object.NewStaticTable([]object.Object{nil, iniA, iniB})
	handlerTable := object.NewStaticTable([]object.Object{nil, hA, hB, wg1, wg2})

	shutdownCh := make(chan uint32, 2)
	k := dispatch.NewKernel(func(code uint32) {
		select {
		case shutdownCh <- code:
		default:
		}
	})

	handler := newUserThread(k, handlerTable)
	initiator := newUserThread(k, initiatorTable)

	done := make(chan uint32, 2)
	run := func(t *userThread, program func(*userThread) error) {
		err := program(t)
		if err != nil {
			vlog.Errorf("user program failed: %v", err)
		}
		// The user programs shut the system down with their status.
		if serr := t.debugShutdown(status.Code(err)); serr != nil {
			vlog.Errorf("debug shutdown: %v", serr)
		}
		done <- status.Code(err)
	}
	go run(handler, handlerProgram)
	go run(initiator, initiatorProgram)

	deadline := time.After(timeout)
	var code uint32
	for i := 0; i < 2; i++ {
		select {
		case c := <-done:
			if code == 0 {
				code = c
			}
		case <-deadline:
			vlog.Errorf("user programs did not complete within %v", timeout)
			return uint32(status.DeadlineExceeded)
		}
	}
	return code
}
