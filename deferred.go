// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// DeferredSubscription arbitrates a subscription that arrives after demand
// for it. It accepts an incoming subscription at most once, accumulates any
// Request issued before arrival, and propagates cancellation.
//
// The subscription field is plain; the state word publishes it. An
// installer claims the slot by moving empty→installing, writes the field,
// then moves installing→set; readers acquire the state before touching the
// field.
type DeferredSubscription struct {
	s         Subscription
	state     atomix.Uint32
	requested atomix.Int64
}

const (
	deferredEmpty uint32 = iota
	deferredInstalling
	deferredSet
	deferredCancelled
)

// Request forwards n to the held subscription, or accumulates it
// (saturating) until one arrives. n is assumed validated by the caller.
func (d *DeferredSubscription) Request(n int64) {
	switch d.state.LoadAcquire() {
	case deferredSet:
		d.s.Request(n)
		return
	case deferredCancelled:
		return
	}
	AddCap(&d.requested, n)
	// The subscription may have been installed while we accumulated;
	// whoever empties the pending counter forwards it.
	if d.state.LoadAcquire() == deferredSet {
		if r := exchangeZero(&d.requested); r > 0 {
			d.s.Request(r)
		}
	}
}

// Set installs sub at most once. Demand accumulated before arrival is
// forwarded immediately. Returns false if the arbiter was cancelled (sub
// is cancelled and discarded) or already holds a subscription (the
// duplicate is cancelled and reported).
func (d *DeferredSubscription) Set(sub Subscription) bool {
	if sub == nil {
		dropError(ErrNilValue)
		return false
	}
	sw := spin.Wait{}
	for {
		switch d.state.LoadAcquire() {
		case deferredCancelled:
			sub.Cancel()
			return false
		case deferredInstalling, deferredSet:
			sub.Cancel()
			dropError(ErrDuplicateSubscription)
			return false
		}
		if d.state.CompareAndSwapAcqRel(deferredEmpty, deferredInstalling) {
			d.s = sub
			if !d.state.CompareAndSwapAcqRel(deferredInstalling, deferredSet) {
				// Cancelled while installing; the slot is ours to tear down.
				sub.Cancel()
				return false
			}
			if r := exchangeZero(&d.requested); r > 0 {
				sub.Request(r)
			}
			return true
		}
		sw.Once()
	}
}

// Cancel marks the arbiter cancelled and cancels the held subscription if
// one arrived. Idempotent. A subscription caught mid-install is cancelled
// by its installer, which observes the lost state transition.
func (d *DeferredSubscription) Cancel() {
	sw := spin.Wait{}
	for {
		st := d.state.LoadAcquire()
		if st == deferredCancelled {
			return
		}
		if d.state.CompareAndSwapAcqRel(st, deferredCancelled) {
			if st == deferredSet {
				d.s.Cancel()
			}
			return
		}
		sw.Once()
	}
}
