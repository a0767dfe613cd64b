// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package list provides intrusive doubly-linked lists for objects whose
// storage is owned elsewhere, typically a caller's stack frame or a
// statically allocated kernel object.  Nothing in this package allocates.
//
// Two flavours are provided.  UnsafeList is a plain intrusive list whose
// safety conditions (element validity, single list membership, locking)
// are the caller's responsibility.  RandomAccessList additionally hands
// out an insertion Key for each element so that an element can later be
// removed by the party that inserted it without holding a pointer into
// the list.
package list

// A Link is a doubly-linked list element embedded in a larger value.
// Lists are circular with a sentinel: a Link is either a sentinel (elem
// is nil) or embedded in the value elem points at.
type Link[T any] struct {
	next *Link[T]
	prev *Link[T]
	elem *T // the value this link is embedded in, or nil for a sentinel
	key  Key
}

// SetElem records the value that l is embedded in.  It must be called
// before l is inserted into any list.
func (l *Link[T]) SetElem(e *T) {
	l.elem = e
}

// makeEmpty makes the list rooted at *l empty.
// Requires that *l is currently not part of a non-empty list.
func (l *Link[T]) makeEmpty() {
	l.next = l
	l.prev = l
}

// isEmpty returns whether the list rooted at *l is empty.
// Requires that *l is currently part of a list, or the zero Link.
func (l *Link[T]) isEmpty() bool {
	return l.next == l || l.next == nil
}

// insertAfter inserts element *e into the list after position *p.
// Requires that *e is currently not part of a list and that *p is part
// of a list.
func (e *Link[T]) insertAfter(p *Link[T]) {
	e.next = p.next
	e.prev = p
	e.next.prev = e
	e.prev.next = e
}

// remove removes *e from the list it is currently in.
// Requires that *e is currently part of a list.
func (e *Link[T]) remove() {
	e.next.prev = e.prev
	e.prev.next = e.next
	e.next = nil
	e.prev = nil
}

// isInList returns whether element e can be found by walking the list
// rooted at sentinel l.
func (e *Link[T]) isInList(l *Link[T]) bool {
	if l.next == nil {
		return false
	}
	for p := l.next; p != l; p = p.next {
		if p == e {
			return true
		}
	}
	return false
}

// An UnsafeList is an intrusive list of values of type T.  The caller is
// responsible for guarding the list with a lock, for inserting an
// element into at most one list at a time, and for only unlinking
// elements that are currently members.  The zero value is an empty list.
type UnsafeList[T any] struct {
	head Link[T]
}

func (l *UnsafeList[T]) lazyInit() {
	if l.head.next == nil {
		l.head.makeEmpty()
	}
}

// IsEmpty returns whether the list has no elements.
func (l *UnsafeList[T]) IsEmpty() bool {
	return l.head.isEmpty()
}

// PushFront inserts e at the front of the list.
// Requires that e is not currently in any list and that e's elem has
// been set with SetElem.
func (l *UnsafeList[T]) PushFront(e *Link[T]) {
	l.lazyInit()
	e.insertAfter(&l.head)
}

// Unlink removes e from the list.  Requires that e is currently a
// member of this list; Contains can be used to check.
func (l *UnsafeList[T]) Unlink(e *Link[T]) {
	e.remove()
}

// Contains reports whether e is currently a member of this list.  It
// walks the list, so it is intended for invariant checks, not fast
// paths.
func (l *UnsafeList[T]) Contains(e *Link[T]) bool {
	return e.isInList(&l.head)
}

// PeekHead returns the value at the front of the list, or nil if the
// list is empty.
func (l *UnsafeList[T]) PeekHead() *T {
	if l.head.isEmpty() {
		return nil
	}
	return l.head.next.elem
}

// A Key identifies an element inserted into a RandomAccessList.  Keys
// are unique for the lifetime of the list.
type Key uint64

// A RandomAccessList is an intrusive FIFO list whose elements are
// removable by the Key returned at insertion.  It is used for waiter
// queues: the waiting thread inserts its stack-resident record, saves
// the key, and removes the record by key before its frame unwinds.  The
// caller guards the list with the owning object's lock.  The zero value
// is an empty list.
type RandomAccessList[T any] struct {
	head    Link[T]
	nextKey Key
}

// PushBack appends e to the back of the list and returns its key.
// Requires that e is not currently in any list and that e's elem has
// been set with SetElem.
func (l *RandomAccessList[T]) PushBack(e *Link[T]) Key {
	if l.head.next == nil {
		l.head.makeEmpty()
	}
	l.nextKey++
	e.key = l.nextKey
	// The sentinel's prev is the back of the list.
	e.insertAfter(l.head.prev)
	return e.key
}

// RemoveElement removes the element with the given key and returns its
// value, or nil if no such element is in the list.
func (l *RandomAccessList[T]) RemoveElement(key Key) *T {
	if l.head.next == nil {
		return nil
	}
	for p := l.head.next; p != &l.head; p = p.next {
		if p.key == key {
			p.remove()
			return p.elem
		}
	}
	return nil
}

// ForEach calls f on each element in FIFO order.  Iteration continues
// even if f returns an error; the first error encountered is returned.
// f must not insert or remove elements.
func (l *RandomAccessList[T]) ForEach(f func(*T) error) error {
	if l.head.next == nil {
		return nil
	}
	var first error
	for p := l.head.next; p != &l.head; p = p.next {
		if err := f(p.elem); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// IsEmpty returns whether the list has no elements.
func (l *RandomAccessList[T]) IsEmpty() bool {
	return l.head.isEmpty()
}
