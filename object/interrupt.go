// Copyright 2026 The Vanadium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package object

import "time"

import "v.io/x/kernel/sysdefs"

// An Interrupt is the waitable object backing an external interrupt
// line: it becomes Readable when the interrupt fires and stays so until
// userspace acknowledges it.
type Interrupt struct {
	Unimplemented
	base Base
	// rearm is invoked after an acknowledgement so the interrupt
	// controller can unmask the line again.  May be nil.
	rearm func()
}

// NewInterrupt creates an interrupt object.  rearm, if non-nil, is the
// controller's re-arm hook, called after each acknowledgement.
func NewInterrupt(rearm func()) *Interrupt {
	return &Interrupt{rearm: rearm}
}

func (i *Interrupt) Base() *Base { return &i.base }

func (i *Interrupt) ObjectWait(signalMask sysdefs.Signals, deadline time.Time) (sysdefs.WaitReturn, error) {
	return i.base.WaitUntil(signalMask, deadline)
}

// Trigger asserts the given signals on the object.  It is called by
// the interrupt handler when the external interrupt fires, and is safe
// to call from interrupt context.
func (i *Interrupt) Trigger(signals sysdefs.Signals) {
	i.base.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s | signals
	})
}

// InterruptAck clears the given signal bits and re-arms the interrupt.
func (i *Interrupt) InterruptAck(signalMask sysdefs.Signals) error {
	i.base.Signal(func(s sysdefs.Signals) sysdefs.Signals {
		return s &^ signalMask
	})
	if i.rearm != nil {
		i.rearm()
	}
	return nil
}
