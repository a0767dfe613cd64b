// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import "time"

import "v.io/x/lib/vlog"

import "v.io/x/kernel/foreign"
import "v.io/x/kernel/ksync"
import "v.io/x/kernel/list"
import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

// A waitResult holds the outcome of a wait.  It is written at most once
// by a signaler, with the list's spinlock held, while the owning waiter
// is linked in a waiters list, and read exactly once by the waiter after
// it has removed itself from that list under the same spinlock.  List
// membership is the synchronization: the write happens before the
// waiter's removal, so no locking around the cell itself is needed.
type waitResult struct {
	ret sysdefs.WaitReturn
	err error
}

func (r *waitResult) set(ret sysdefs.WaitReturn) {
	r.ret = ret
	r.err = nil
}

func (r *waitResult) get() (sysdefs.WaitReturn, error) {
	return r.ret, r.err
}

// An objectWaiter is the per-invocation record a thread threads onto an
// object's waiters list while it sleeps.  It lives on the waiting
// thread's stack and is removed from the list before the owning frame
// unwinds.
type objectWaiter struct {
	link       list.Link[objectWaiter]
	signaler   ksync.Signaler
	signalMask sysdefs.Signals
	result     waitResult
}

// waitOn parks the calling thread on the supplied waiters list until a
// signaler wakes it or deadline expires.  The caller must hold mu; it
// is released while the thread sleeps and the function returns with it
// released.
func waitOn(mu *ksync.SpinLock, waiters *list.RandomAccessList[objectWaiter], signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	var event ksync.Event
	event.Init(ksync.ManualReset)

	w := objectWaiter{
		signaler:   event.Signaler(),
		signalMask: signalMask,
		result:     waitResult{err: status.Unknown},
	}
	w.link.SetElem(&w)

	// The box tracks the borrow of the stack-resident waiter: it is
	// consumed only after the waiter has left the list.
	waiterBox := foreign.NewBox(&w)

	key := waiters.PushBack(&w.link)

	// Drop the state lock while waiting.
	mu.Unlock()
	outcome := event.WaitUntil(deadline)
	mu.Lock()

	// Before processing the wait result, remove the waiter from the
	// queue.  Once it is out of the list no other thread can reach it.
	removed := waiters.RemoveElement(key)
	mu.Unlock()
	if removed != waiterBox.Get() {
		vlog.Panicf("object: waiter not found in waiters list")
	}

	var ret sysdefs.WaitReturn
	var err error
	if outcome != ksync.OK {
		err = status.DeadlineExceeded
	} else {
		ret, err = w.result.get()
	}

	// The waiter is no longer referenced and is safe to consume.
	waiterBox.Consume()

	return ret, err
}

// signalAllMatchingWaiters wakes every waiter in the list whose mask
// intersects activeSignals, writing {userData, activeSignals} into its
// result cell.  The caller holds the spinlock that guards the list.
// Iteration continues even if individual entries error.
func signalAllMatchingWaiters(waiters *list.RandomAccessList[objectWaiter], activeSignals sysdefs.Signals, userData uint64) {
	err := waiters.ForEach(func(w *objectWaiter) error {
		if w.signalMask.Intersects(activeSignals) {
			if w.result.err == nil {
				// Already woken and not yet removed from the list; its
				// result cell has been written.
				return nil
			}
			// While a waiter is in an object's waiters list, that
			// object has exclusive access to it; the object's spinlock
			// is held here.
			w.result.set(sysdefs.WaitReturn{
				UserData:       userData,
				PendingSignals: activeSignals,
			})
			w.signaler.Signal()
		}
		return nil
	})
	if err != nil {
		vlog.Errorf("object: waiter fan-out: %v", err)
	}
}

// baseState is the state shared by all waitable objects, guarded by the
// Base's spinlock.
type baseState struct {
	activeSignals sysdefs.Signals
	waitGroup     *WaitGroupMember
	waiters       list.RandomAccessList[objectWaiter]
}

// Base holds the common functionality used by many kernel objects: the
// active-signal bitmask, the list of waiters sleeping on the object,
// and the linkage used when the object is enrolled as a member of a
// wait group.  The waitGroupLink is owned by the enrolling group's
// lists, never by the object itself.
type Base struct {
	waitGroupLink list.Link[Base]
	mu            ksync.SpinLock
	state         baseState
}

// WaitUntil returns immediately if any bit in signalMask is active,
// and otherwise parks the calling thread until a signaler wakes it or
// deadline expires.
func (b *Base) WaitUntil(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	b.mu.Lock()

	// Skip waiting if signals are already pending.
	if b.state.activeSignals.Intersects(signalMask) {
		ret := sysdefs.WaitReturn{
			UserData:       0,
			PendingSignals: b.state.activeSignals,
		}
		b.mu.Unlock()
		return ret, nil
	}

	return waitOn(&b.mu, &b.state.waiters, signalMask, deadline)
}

// Signal atomically replaces the active-signal mask with
// updateFn(current) under the object's spinlock, then runs the wakeup
// fan-out: first the wait-group member record, if any (which may
// migrate this object between the group's lists and wake the group's
// waiters), then every local waiter whose mask intersects the new
// active signals.
func (b *Base) Signal(updateFn func(sysdefs.Signals) sysdefs.Signals) {
	b.mu.Lock()
	b.state.activeSignals = updateFn(b.state.activeSignals)
	b.signalLocked()
	b.mu.Unlock()
}

func (b *Base) signalLocked() {
	activeSignals := b.state.activeSignals
	if m := b.state.waitGroup; m != nil {
		m.signal(activeSignals, b)
	}

	// These waiters are never a wait group, so user data is always 0.
	signalAllMatchingWaiters(&b.state.waiters, activeSignals, 0)
}
