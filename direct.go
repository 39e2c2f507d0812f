// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// DirectProcessor is a minimal hot publisher: it forwards each live
// signal to all current subscribers with no buffering and no replay.
// Subscribers arriving after termination receive the terminal signal
// immediately. A subscriber with zero outstanding demand at delivery time
// is terminated with [ErrMissingBackpressure].
//
// The subscriber list is a copy-on-write array swapped by CAS; the
// terminal error is published by a release-store of the state word.
type DirectProcessor[T any] struct {
	subscribers atomic.Pointer[[]*directInner[T]]
	err         error
	state       atomix.Uint32
	once        atomix.Uint32
}

const (
	directActive uint32 = iota
	directCompleted
	directFailed
)

// NewDirectProcessor creates an empty, active processor.
func NewDirectProcessor[T any]() *DirectProcessor[T] {
	p := &DirectProcessor[T]{}
	empty := make([]*directInner[T], 0)
	p.subscribers.Store(&empty)
	return p
}

func (p *DirectProcessor[T]) Subscribe(s Subscriber[T]) {
	inner := &directInner[T]{actual: s, parent: p}
	s.OnSubscribe(inner)
	if p.add(inner) {
		if inner.isCancelled() {
			p.remove(inner)
		}
		return
	}
	if p.state.LoadAcquire() == directFailed {
		s.OnError(p.err)
		return
	}
	s.OnComplete()
}

// OnSubscribe requests everything from the upstream while active; the
// processor has no demand of its own to relay.
func (p *DirectProcessor[T]) OnSubscribe(sub Subscription) {
	if p.state.LoadAcquire() != directActive {
		sub.Cancel()
		return
	}
	sub.Request(Unbounded)
}

func (p *DirectProcessor[T]) OnNext(v T) {
	if p.state.LoadAcquire() != directActive {
		dropValue(v)
		return
	}
	for _, inner := range *p.subscribers.Load() {
		inner.next(v)
	}
}

func (p *DirectProcessor[T]) OnError(err error) {
	if !p.once.CompareAndSwapAcqRel(0, 1) {
		dropError(err)
		return
	}
	p.err = err
	p.state.StoreRelease(directFailed)
	for _, inner := range p.take() {
		if !inner.isCancelled() {
			inner.actual.OnError(err)
		}
	}
}

func (p *DirectProcessor[T]) OnComplete() {
	if !p.once.CompareAndSwapAcqRel(0, 1) {
		return
	}
	p.state.StoreRelease(directCompleted)
	for _, inner := range p.take() {
		if !inner.isCancelled() {
			inner.actual.OnComplete()
		}
	}
}

func (p *DirectProcessor[T]) add(inner *directInner[T]) bool {
	sw := spin.Wait{}
	for {
		if p.state.LoadAcquire() != directActive {
			return false
		}
		cur := p.subscribers.Load()
		next := make([]*directInner[T], len(*cur)+1)
		copy(next, *cur)
		next[len(*cur)] = inner
		if p.subscribers.CompareAndSwap(cur, &next) {
			return true
		}
		sw.Once()
	}
}

func (p *DirectProcessor[T]) remove(inner *directInner[T]) {
	sw := spin.Wait{}
	for {
		cur := p.subscribers.Load()
		idx := -1
		for i, candidate := range *cur {
			if candidate == inner {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		next := make([]*directInner[T], 0, len(*cur)-1)
		next = append(next, (*cur)[:idx]...)
		next = append(next, (*cur)[idx+1:]...)
		if p.subscribers.CompareAndSwap(cur, &next) {
			return
		}
		sw.Once()
	}
}

// take swaps the subscriber list for an empty one, so each inner receives
// the terminal signal exactly once.
func (p *DirectProcessor[T]) take() []*directInner[T] {
	empty := make([]*directInner[T], 0)
	return *p.subscribers.Swap(&empty)
}

type directInner[T any] struct {
	actual    Subscriber[T]
	parent    *DirectProcessor[T]
	requested atomix.Int64
	cancelled atomix.Uint32
}

func (inner *directInner[T]) Request(n int64) {
	if !validRequest(n) {
		if inner.cancelled.CompareAndSwapAcqRel(0, 1) {
			inner.parent.remove(inner)
			inner.actual.OnError(badRequestError(n))
		}
		return
	}
	AddCap(&inner.requested, n)
}

func (inner *directInner[T]) Cancel() {
	if inner.cancelled.CompareAndSwapAcqRel(0, 1) {
		inner.parent.remove(inner)
	}
}

func (inner *directInner[T]) isCancelled() bool {
	return inner.cancelled.LoadAcquire() != 0
}

func (inner *directInner[T]) next(v T) {
	if inner.isCancelled() {
		return
	}
	r := inner.requested.LoadAcquire()
	if r == 0 {
		if inner.cancelled.CompareAndSwapAcqRel(0, 1) {
			inner.parent.remove(inner)
			inner.actual.OnError(ErrMissingBackpressure)
		}
		return
	}
	inner.actual.OnNext(v)
	if r != Unbounded {
		inner.requested.AddAcqRel(-1)
	}
}
