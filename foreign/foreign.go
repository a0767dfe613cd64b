// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package foreign provides non-allocating analogs of owned and
// reference-counted smart handles.  The values they manage are owned
// elsewhere---a caller's stack frame or a statically allocated cell---
// and the wrappers only track the borrowing discipline:
//
// A Box wraps a borrowed pointer whose referent must be logically
// removed from all shared data structures before the box is consumed.
// Consuming the box is the caller's assertion that no other thread can
// reach the value any more; accessing a consumed box panics.
//
// An Rc is a counted handle to a value held inside an RcState cell.
// The cell itself is never freed; the count exists so that misuse
// (more releases than handles minted, releasing the zero Rc) is caught
// rather than silently corrupting ownership.  A handle released twice
// while other handles to the same cell are outstanding is not detected.
package foreign

import "fmt"
import "sync/atomic"

// A Box wraps a borrowed pointer to a value owned by the caller.
type Box[T any] struct {
	ptr *T
}

// NewBox wraps p.  The caller promises that *p stays valid until the
// box is consumed, and that the box is consumed only after *p has been
// removed from every shared data structure it was inserted into.
func NewBox[T any](p *T) Box[T] {
	return Box[T]{ptr: p}
}

// Get returns the wrapped pointer.  Get panics if the box has been
// consumed.
func (b *Box[T]) Get() *T {
	if b.ptr == nil {
		panic("foreign: access of consumed Box")
	}
	return b.ptr
}

// Consume releases the borrow.  After Consume the value belongs
// exclusively to its owner again and the box must not be used.
func (b *Box[T]) Consume() {
	if b.ptr == nil {
		panic("foreign: Box consumed twice")
	}
	b.ptr = nil
}

// An RcState is a statically allocated cell holding a shared value of
// type T and the count of outstanding Rc handles to it.
type RcState[T any] struct {
	value T
	count int32 // read and written atomically
}

// Init stores the shared value.  Init must be called before NewRef and
// must not be called again.
func (s *RcState[T]) Init(v T) {
	s.value = v
}

// NewRef mints a counted handle to the cell's value.
func (s *RcState[T]) NewRef() Rc[T] {
	atomic.AddInt32(&s.count, 1)
	return Rc[T]{state: s}
}

// Refs returns the number of outstanding handles.
func (s *RcState[T]) Refs() int {
	return int(atomic.LoadInt32(&s.count))
}

// An Rc is a counted handle to a value inside an RcState.  The zero Rc
// is invalid.
type Rc[T any] struct {
	state *RcState[T]
}

// Valid returns whether the handle refers to a cell.
func (r Rc[T]) Valid() bool {
	return r.state != nil
}

// Get returns the shared value.
func (r Rc[T]) Get() T {
	if r.state == nil {
		panic("foreign: access of zero Rc")
	}
	return r.state.value
}

// Clone mints an additional handle to the same cell.
func (r Rc[T]) Clone() Rc[T] {
	if r.state == nil {
		panic("foreign: clone of zero Rc")
	}
	return r.state.NewRef()
}

// Release drops the handle.  The handle must not be used afterwards.
func (r Rc[T]) Release() {
	if r.state == nil {
		panic("foreign: release of zero Rc")
	}
	if n := atomic.AddInt32(&r.state.count, -1); n < 0 {
		panic(fmt.Sprintf("foreign: Rc over-released (count %d)", n))
	}
}
