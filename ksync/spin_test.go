// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ksync_test

import "sync"
import "testing"

import "v.io/x/kernel/ksync"

// TestSpinLockMutualExclusion has several threads increment a counter
// under a SpinLock and checks that no increments are lost.
func TestSpinLockMutualExclusion(t *testing.T) {
	const (
		threads    = 8
		iterations = 10000
	)
	var mu ksync.SpinLock
	var counter int

	var wg sync.WaitGroup
	for i := 0; i != threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j != iterations; j++ {
				mu.Lock()
				counter++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != threads*iterations {
		t.Errorf("counter: got %d, want %d", counter, threads*iterations)
	}
}
