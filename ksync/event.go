// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ksync

import "math"
import "sync/atomic"
import "time"

// NoDeadline represents a time in the far future---a deadline that will not expire.
var NoDeadline time.Time

// init() initializes the variable NoDeadline.
// If done inline, the godoc output is even more ugly.
func init() {
	NoDeadline = time.Now().Add(time.Duration(math.MaxInt64)).Add(time.Duration(math.MaxInt64))
}

// Values returned by Event.WaitUntil().
const (
	OK      = iota // The event was signaled.
	Expired        // deadline expired before the event was signaled.
)

// An EventConfig selects an Event's reset behavior.
type EventConfig int

const (
	// OneShot events consume the signaled state on a successful wait.
	OneShot EventConfig = iota
	// ManualReset events stay signaled until Reset is called.  A signal
	// delivered before the wait begins is not lost.
	ManualReset
)

// An Event is the primitive a kernel thread sleeps on while it waits
// for signals.  An Event is signaled through a detachable Signaler so
// that the signaling side never needs a reference to the waiting
// thread, only to the event the waiter registered.
//
// Events do not allocate after Init and are intended to live on the
// waiting thread's stack for the duration of a single wait.
type Event struct {
	config EventConfig
	word   uint32 // non-zero <=> signaled (read and written atomically)
	sem    binarySemaphore
}

// Init initializes the event in the unsignaled state.
func (e *Event) Init(config EventConfig) {
	e.config = config
	e.sem.Init()
}

// Signaler returns a handle that signals the event.  Signalers are
// plain values and may be copied and invoked from any thread or from
// interrupt context.
func (e *Event) Signaler() Signaler {
	return Signaler{event: e}
}

// consume observes the signaled state, consuming it for one-shot
// events.  Returns whether the event was signaled.
func (e *Event) consume() bool {
	if atomic.LoadUint32(&e.word) == 0 { // acquire load
		return false
	}
	if e.config == OneShot {
		atomic.StoreUint32(&e.word, 0)
	}
	return true
}

// Reset returns a manual-reset event to the unsignaled state.
func (e *Event) Reset() {
	atomic.StoreUint32(&e.word, 0)
}

// WaitUntil blocks the calling thread until the event is signaled or
// the time reaches deadline, returning OK or Expired.  Use
// deadline==NoDeadline for no deadline.  This is the kernel's only
// suspension point; callers must not hold a SpinLock.
func (e *Event) WaitUntil(deadline time.Time) int {
	var deadlineTimer *time.Timer
	if deadline != NoDeadline {
		deadlineTimer = time.NewTimer(time.Until(deadline))
		defer deadlineTimer.Stop()
	}
	for {
		if e.consume() {
			return OK
		}
		if e.sem.PWithDeadline(deadlineTimer) == Expired {
			// A signal racing the timeout wins.
			if e.consume() {
				return OK
			}
			return Expired
		}
	}
}

// A Signaler wakes the waiter parked on its Event.
type Signaler struct {
	event *Event
}

// Signal marks the event signaled and wakes the waiter, if any.
func (s Signaler) Signal() {
	atomic.StoreUint32(&s.event.word, 1) // release store
	s.event.sem.V()
}
