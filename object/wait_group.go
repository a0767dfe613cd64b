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

// waitGroupState is guarded by the WaitGroup's spinlock.
//
// Every member object appears in exactly one of the two membership
// lists, and its base's wait-group record points back at this group.
// The lists hold borrowed links into member bases; the counted handle
// runs the other way, from the member record to the group, so the
// ownership cycle is never closed with counted handles in both
// directions.
type waitGroupState struct {
	// Member object bases whose last observed active signals intersect
	// their member mask.
	signaledObjects list.UnsafeList[Base]
	// The complement: members with no active signals of interest.
	unsignaledObjects list.UnsafeList[Base]
	waiters           list.RandomAccessList[objectWaiter]
}

// A WaitGroupMember is the record installed on a member object's base
// while it is enrolled in a wait group.  Its fields are read and
// written only with the member's base lock held.
type WaitGroupMember struct {
	signalMask sysdefs.Signals
	userData   uint64
	waitGroup  foreign.Rc[*WaitGroup]
	// isSignaled is true iff the member's base is currently linked in
	// the owning group's signaledObjects list.
	isSignaled bool
}

// signal is invoked under the member's base lock whenever the member's
// active signal mask changes.  On a newly-signaled edge the member
// migrates to the signaled list and the group's waiters are woken with
// the member's user data; on a newly-unsignaled edge it migrates back
// with no wakeups.
//
// The member base lock is acquired before the group state lock; this
// order holds everywhere.
func (m *WaitGroupMember) signal(activeSignals sysdefs.Signals, base *Base) {
	signaled := activeSignals.Intersects(m.signalMask)
	if signaled == m.isSignaled {
		return
	}

	wg := m.waitGroup.Get()
	wg.mu.Lock()
	switch {
	case signaled && !m.isSignaled:
		moveMemberBetweenLists(&wg.state.unsignaledObjects, &wg.state.signaledObjects, base)
	case !signaled && m.isSignaled:
		moveMemberBetweenLists(&wg.state.signaledObjects, &wg.state.unsignaledObjects, base)
	}

	m.isSignaled = signaled
	if signaled {
		signalAllMatchingWaiters(&wg.state.waiters, sysdefs.Readable, m.userData)
	}
	wg.mu.Unlock()
}

func moveMemberBetweenLists(from, to *list.UnsafeList[Base], base *Base) {
	if !from.Contains(&base.waitGroupLink) {
		vlog.Panicf("object: wait group member not in a list")
	}
	// The member is in a single list at all times: it leaves the first
	// list before it enters the second.
	from.Unlink(&base.waitGroupLink)
	to.PushFront(&base.waitGroupLink)
}

// A WaitGroup aggregates readiness across heterogeneous member
// objects: waiting on the group returns as soon as any member has
// active signals intersecting its member mask, reporting the user data
// registered at enrollment.
//
// A WaitGroup has no object base of its own; wait groups may not be
// members of wait groups.
type WaitGroup struct {
	Unimplemented
	rc    foreign.RcState[*WaitGroup]
	mu    ksync.SpinLock
	state waitGroupState
}

// NewWaitGroup returns an empty wait group.
func NewWaitGroup() *WaitGroup {
	wg := &WaitGroup{}
	wg.rc.Init(wg)
	return wg
}

// ObjectWait waits until any member object has active signals
// intersecting its member mask.  Waiting on a group with no members
// reports InvalidArgument.
func (wg *WaitGroup) ObjectWait(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	for {
		wg.mu.Lock()
		if wg.state.signaledObjects.IsEmpty() && wg.state.unsignaledObjects.IsEmpty() {
			wg.mu.Unlock()
			return sysdefs.WaitReturn{}, status.InvalidArgument
		}

		head := wg.state.signaledObjects.PeekHead()
		if head == nil {
			// No member is ready; park on the group's own waiters
			// list.  waitOn releases the lock.
			return waitOn(&wg.mu, &wg.state.waiters, signalMask, deadline)
		}
		wg.mu.Unlock()

		// A member is ready.  Its user data and active signals live
		// behind its base lock, which is always acquired before the
		// group lock, so the group lock is dropped first and the
		// member re-validated: it may have been removed or gone
		// unsignaled in the window.
		head.mu.Lock()
		m := head.state.waitGroup
		if m != nil && m.waitGroup.Get() == wg && m.isSignaled {
			ret := sysdefs.WaitReturn{
				UserData:       m.userData,
				PendingSignals: head.state.activeSignals,
			}
			head.mu.Unlock()
			return ret, nil
		}
		head.mu.Unlock()
		// Raced with a removal or an unsignal edge; take another look.
	}
}

// WaitGroupAdd enrolls member in this group.  Wait groups themselves
// cannot be members, and an object can be in at most one group at a
// time.
func (wg *WaitGroup) WaitGroupAdd(member Object, signalMask sysdefs.Signals, userData uint64) error {
	base := member.Base()
	if base == nil {
		// The only object kind without a base is a wait group, so this
		// doubles as the nested-group check.
		return status.InvalidArgument
	}

	// Objects can only ever be in one wait group at a time.
	base.mu.Lock()
	if base.state.waitGroup != nil {
		base.mu.Unlock()
		return status.ResourceExhausted
	}

	isSignaled := base.state.activeSignals.Intersects(signalMask)

	wg.mu.Lock()
	base.state.waitGroup = &WaitGroupMember{
		signalMask: signalMask,
		userData:   userData,
		waitGroup:  wg.rc.NewRef(),
		isSignaled: isSignaled,
	}
	base.waitGroupLink.SetElem(base)
	if isSignaled {
		wg.state.signaledObjects.PushFront(&base.waitGroupLink)
	} else {
		wg.state.unsignaledObjects.PushFront(&base.waitGroupLink)
	}
	wg.mu.Unlock()
	base.mu.Unlock()

	return nil
}

// WaitGroupRemove removes member from this group.  Removing an object
// that is not enrolled here reports NotFound.
func (wg *WaitGroup) WaitGroupRemove(member Object) error {
	base := member.Base()
	if base == nil {
		return status.InvalidArgument
	}

	base.mu.Lock()
	m := base.state.waitGroup
	if m == nil {
		// Object is not in a wait group.
		base.mu.Unlock()
		return status.NotFound
	}

	// Check the object is in this wait group.
	if m.waitGroup.Get() != wg {
		base.mu.Unlock()
		return status.NotFound
	}

	wg.mu.Lock()
	// The member can be in either list, depending on its signaled
	// state.
	if m.isSignaled {
		wg.state.signaledObjects.Unlink(&base.waitGroupLink)
	} else {
		wg.state.unsignaledObjects.Unlink(&base.waitGroupLink)
	}
	wg.mu.Unlock()

	m.waitGroup.Release()
	base.state.waitGroup = nil
	base.mu.Unlock()

	return nil
}
