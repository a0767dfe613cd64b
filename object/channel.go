// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import "time"

import "v.io/x/kernel/ksync"
import "v.io/x/kernel/status"
import "v.io/x/kernel/sysdefs"

// MaxMessageSize is the capacity of a channel's request and response
// buffers.  Messages are copied through fixed kernel-resident storage;
// nothing is allocated per transaction.
const MaxMessageSize = 256

// channel is the state shared by a paired initiator and handler,
// guarded by its own spinlock.  The channel lock is always acquired
// before either endpoint's base lock.
type channel struct {
	mu ksync.SpinLock

	request    [MaxMessageSize]byte
	requestLen int
	hasRequest bool

	response    [MaxMessageSize]byte
	responseLen int
	hasResponse bool

	initiatorBase *Base
	handlerBase   *Base
}

// A ChannelInitiator is the endpoint that originates transactions: it
// sends a request, parks until the paired handler responds, and copies
// the response back to the caller.
type ChannelInitiator struct {
	Unimplemented
	base Base
	ch   *channel
}

// A ChannelHandler is the endpoint that services transactions.  Its
// base signals Readable while a request is pending.
type ChannelHandler struct {
	Unimplemented
	base Base
	ch   *channel
}

// NewChannelPair creates a connected initiator/handler endpoint pair.
func NewChannelPair() (*ChannelInitiator, *ChannelHandler) {
	ch := &channel{}
	ini := &ChannelInitiator{ch: ch}
	h := &ChannelHandler{ch: ch}
	ch.initiatorBase = &ini.base
	ch.handlerBase = &h.base
	return ini, h
}

func (c *ChannelInitiator) Base() *Base { return &c.base }

func (c *ChannelInitiator) ObjectWait(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	return c.base.WaitUntil(signalMask, deadline)
}

// ChannelTransact sends the contents of send, blocks until the paired
// handler responds or deadline expires, copies the response into recv,
// and returns the number of bytes received.
func (c *ChannelInitiator) ChannelTransact(send, recv SyscallBuffer, deadline time.Time) (int, error) {
	if send.Len() > MaxMessageSize {
		return 0, status.OutOfRange
	}

	ch := c.ch
	ch.mu.Lock()
	if ch.hasRequest {
		// A transaction is already in flight on this channel.
		ch.mu.Unlock()
		return 0, status.ResourceExhausted
	}
	ch.requestLen = copy(ch.request[:], send.Bytes())
	ch.hasRequest = true
	ch.hasResponse = false
	ch.mu.Unlock()

	// Discard any readiness left over from an abandoned transaction.
	c.base.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s &^ sysdefs.Readable
	})

	// The handler becomes readable; this wakes its waiters and any
	// wait group it is enrolled in.
	ch.handlerBase.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s | sysdefs.Readable
	})

	// Park until the handler posts a response.
	if _, err := c.base.WaitUntil(sysdefs.Readable, deadline); err != nil {
		// Withdraw the request if the handler has not consumed it, so
		// an abandoned transaction does not wedge the channel.
		ch.mu.Lock()
		withdrawn := ch.hasRequest
		ch.hasRequest = false
		ch.mu.Unlock()
		if withdrawn {
			ch.handlerBase.Signal(func(s sysdefs.Signals) sysdefs.Signals {
				return s &^ sysdefs.Readable
			})
		}
		return 0, err
	}

	ch.mu.Lock()
	if !ch.hasResponse {
		ch.mu.Unlock()
		return 0, status.Internal
	}
	n := ch.responseLen
	if n > recv.Len() {
		ch.mu.Unlock()
		return 0, status.OutOfRange
	}
	copy(recv.Bytes(), ch.response[:n])
	ch.hasResponse = false
	ch.mu.Unlock()

	// The response has been consumed; the initiator is no longer
	// readable.
	c.base.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s &^ sysdefs.Readable
	})

	return n, nil
}

func (c *ChannelHandler) Base() *Base { return &c.base }

func (c *ChannelHandler) ObjectWait(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	return c.base.WaitUntil(signalMask, deadline)
}

// ChannelRead copies bytes of the pending request, starting at offset,
// into buf.
func (c *ChannelHandler) ChannelRead(offset uint64, buf SyscallBuffer) (int, error) {
	ch := c.ch
	ch.mu.Lock()
	if !ch.hasRequest {
		ch.mu.Unlock()
		return 0, status.NotFound
	}
	if offset > uint64(ch.requestLen) {
		ch.mu.Unlock()
		return 0, status.OutOfRange
	}
	n := copy(buf.Bytes(), ch.request[offset:ch.requestLen])
	ch.mu.Unlock()
	return n, nil
}

// ChannelRespond posts the contents of buf as the response to the
// pending request, consuming the request and waking the initiator.
func (c *ChannelHandler) ChannelRespond(buf SyscallBuffer) error {
	if buf.Len() > MaxMessageSize {
		return status.OutOfRange
	}

	ch := c.ch
	ch.mu.Lock()
	if !ch.hasRequest {
		ch.mu.Unlock()
		return status.NotFound
	}
	ch.responseLen = copy(ch.response[:], buf.Bytes())
	ch.hasResponse = true
	ch.hasRequest = false
	ch.mu.Unlock()

	// The request is consumed; the handler goes unsignaled so the next
	// request produces a fresh readable edge.
	c.base.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s &^ sysdefs.Readable
	})

	// The response is ready; wake the initiator.
	ch.initiatorBase.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s | sysdefs.Readable
	})

	return nil
}
