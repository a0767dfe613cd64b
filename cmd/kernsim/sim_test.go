// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "testing"
import "time"

// TestRunSimulation runs the full wait-group scenario---three
// transactions fanned in through a wait group, then the error-surface
// checks---and expects a clean shutdown.
func TestRunSimulation(t *testing.T) {
	if code := runSimulation(30 * time.Second); code != 0 {
		t.Fatalf("runSimulation: got status %d, want 0", code)
	}
}
