// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// MultiSubscriptionSubscriber is the scaffolding under re-subscribing
// operators: a subscription holder that can be replaced during the
// lifetime of a single downstream subscription while preserving
// outstanding demand.
//
// Downstream sees exactly one OnSubscribe (this value), regardless of how
// many upstream subscriptions come and go. On each swap the values
// produced under the previous upstream are folded into outstanding demand
// via [MultiSubscriptionSubscriber.Produced].
//
// The subscription, requested and unbounded fields are owned by the drain:
// they are touched only between a 0→1 transition of the wip counter and
// the matching return to 0. Concurrent callers deposit into the missed
// fields and trigger a drain.
//
// Embedders implement OnNext/OnError/OnComplete and route OnSubscribe to
// Set; Request and Cancel make the embedder a valid downstream
// Subscription.
type MultiSubscriptionSubscriber[T any] struct {
	actual Subscriber[T]

	subscription Subscription
	requested    int64
	unbounded    bool

	missedSub       atomic.Pointer[Subscription]
	missedRequested atomix.Int64
	missedProduced  atomix.Int64
	wip             atomix.Int32
	cancelled       atomix.Uint32
}

// Init binds the downstream subscriber. Must be called before any signal.
func (m *MultiSubscriptionSubscriber[T]) Init(actual Subscriber[T]) {
	m.actual = actual
}

// Downstream returns the bound downstream subscriber.
func (m *MultiSubscriptionSubscriber[T]) Downstream() Subscriber[T] {
	return m.actual
}

// OnSubscribe installs an upstream subscription, replacing the previous
// one. Route the embedder's OnSubscribe here.
func (m *MultiSubscriptionSubscriber[T]) OnSubscribe(s Subscription) {
	m.Set(s)
}

// Set installs s as the current upstream subscription and forwards the
// outstanding demand to it. The replaced subscription is not cancelled:
// a swap only happens after the previous upstream terminated.
func (m *MultiSubscriptionSubscriber[T]) Set(s Subscription) {
	if s == nil {
		dropError(ErrNilValue)
		return
	}
	if m.cancelled.LoadAcquire() != 0 {
		s.Cancel()
		return
	}
	if m.wip.CompareAndSwapAcqRel(0, 1) {
		m.subscription = s
		r := m.requested
		if m.wip.AddAcqRel(-1) != 0 {
			m.drainLoop()
		}
		if r != 0 {
			s.Request(r)
		}
		return
	}
	m.missedSub.Swap(&s)
	m.drain()
}

// Request adds n to outstanding demand and forwards it upstream.
func (m *MultiSubscriptionSubscriber[T]) Request(n int64) {
	if !validRequest(n) {
		if m.cancelled.CompareAndSwapAcqRel(0, 1) {
			m.drain()
			m.actual.OnError(badRequestError(n))
		}
		return
	}
	if m.wip.CompareAndSwapAcqRel(0, 1) {
		if !m.unbounded {
			r := saturatingAdd(m.requested, n)
			m.requested = r
			if r == Unbounded {
				m.unbounded = true
			}
		}
		a := m.subscription
		if m.wip.AddAcqRel(-1) != 0 {
			m.drainLoop()
		}
		if a != nil {
			a.Request(n)
		}
		return
	}
	AddCap(&m.missedRequested, n)
	m.drain()
}

// Produced folds n values emitted under the current upstream back out of
// outstanding demand, ahead of a subscription swap.
func (m *MultiSubscriptionSubscriber[T]) Produced(n int64) {
	if m.wip.CompareAndSwapAcqRel(0, 1) {
		if !m.unbounded {
			u := m.requested - n
			if u < 0 {
				dropError(ErrBadRequest)
				u = 0
			}
			m.requested = u
		}
		if m.wip.AddAcqRel(-1) == 0 {
			return
		}
		m.drainLoop()
		return
	}
	AddCap(&m.missedProduced, n)
	m.drain()
}

// Cancel cancels the current upstream and any subscription that arrives
// later. Idempotent.
func (m *MultiSubscriptionSubscriber[T]) Cancel() {
	if m.cancelled.CompareAndSwapAcqRel(0, 1) {
		m.drain()
	}
}

// IsCancelled reports whether Cancel has been observed.
func (m *MultiSubscriptionSubscriber[T]) IsCancelled() bool {
	return m.cancelled.LoadAcquire() != 0
}

func (m *MultiSubscriptionSubscriber[T]) drain() {
	if m.wip.AddAcqRel(1) != 1 {
		return
	}
	m.drainLoop()
}

func (m *MultiSubscriptionSubscriber[T]) drainLoop() {
	missed := int32(1)

	var requestAmount int64
	var requestTarget Subscription

	for {
		ms := m.missedSub.Swap(nil)

		var mr int64
		if m.missedRequested.LoadAcquire() != 0 {
			mr = exchangeZero(&m.missedRequested)
		}
		var mp int64
		if m.missedProduced.LoadAcquire() != 0 {
			mp = exchangeZero(&m.missedProduced)
		}

		a := m.subscription

		if m.cancelled.LoadAcquire() != 0 {
			if a != nil {
				a.Cancel()
				m.subscription = nil
			}
			if ms != nil {
				(*ms).Cancel()
			}
		} else {
			r := m.requested
			if r != Unbounded {
				u := saturatingAdd(r, mr)
				if u != Unbounded {
					v := u - mp
					if v < 0 {
						dropError(ErrBadRequest)
						v = 0
					}
					r = v
				} else {
					r = u
				}
				m.requested = r
				m.unbounded = r == Unbounded
			}

			if ms != nil {
				m.subscription = *ms
				if r != 0 {
					requestAmount = saturatingAdd(requestAmount, r)
					requestTarget = *ms
				}
			} else if mr != 0 && a != nil {
				requestAmount = saturatingAdd(requestAmount, mr)
				requestTarget = a
			}
		}

		missed = m.wip.AddAcqRel(-missed)
		if missed == 0 {
			if requestAmount != 0 && requestTarget != nil {
				requestTarget.Request(requestAmount)
			}
			return
		}
	}
}
