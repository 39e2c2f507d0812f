// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"fmt"

	"code.hybscloud.com/atomix"
)

// RetryWhen resubscribes source each time a companion publisher signals a
// value in response to an error from source. whenFactory receives the
// stream of source errors and returns the companion; a terminal signal
// from the companion terminates downstream with the same signal.
//
// A companion signal that arrives while a resubscription is in progress
// does not re-enter the source; the resubscribe drain performs it as one
// more resubscription after the current one returns.
func RetryWhen[T any](source Publisher[T], whenFactory func(errs Publisher[error]) Publisher[any]) Publisher[T] {
	return retryWhenPublisher[T]{source: source, whenFactory: whenFactory}
}

type retryWhenPublisher[T any] struct {
	source      Publisher[T]
	whenFactory func(errs Publisher[error]) Publisher[any]
}

func (p retryWhenPublisher[T]) Subscribe(s Subscriber[T]) {
	other := &retryWhenOther[T]{completionSignal: NewDirectProcessor[error]()}
	signaller := NewSerializedSubscriber[error](other.completionSignal)
	signaller.OnSubscribe(EmptySubscription)

	serial := NewSerializedSubscriber[T](s)

	main := &retryWhenMain[T]{signaller: signaller, source: p.source}
	main.Init(serial)
	other.main = main

	serial.OnSubscribe(main)

	companion := p.whenFactory(other)
	if companion == nil {
		serial.OnError(fmt.Errorf("%w: when factory returned a nil publisher", ErrNilValue))
		return
	}

	companion.Subscribe(other)

	if !main.isStopped() {
		p.source.Subscribe(main)
	}
}

// retryWhenMain is the stable subscription the downstream holds across
// source resubscriptions. The embedded multi-subscription scaffolding
// swaps the upstream and folds the produced count back into demand.
type retryWhenMain[T any] struct {
	MultiSubscriptionSubscriber[T]

	otherArbiter DeferredSubscription
	signaller    Subscriber[error]
	source       Publisher[T]

	wip     atomix.Int32
	stopped atomix.Uint32

	// produced is touched only by the upstream's serialized On* calls.
	produced int64
}

func (m *retryWhenMain[T]) OnNext(v T) {
	m.Downstream().OnNext(v)
	m.produced++
}

// OnError folds the produced count into outstanding demand, asks the
// companion for one decision and feeds it the error. The companion's
// answer arrives as resubscribe, whenError or whenComplete.
func (m *retryWhenMain[T]) OnError(err error) {
	if p := m.produced; p != 0 {
		m.produced = 0
		m.Produced(p)
	}
	m.otherArbiter.Request(1)
	m.signaller.OnNext(err)
}

func (m *retryWhenMain[T]) OnComplete() {
	m.otherArbiter.Cancel()
	m.Downstream().OnComplete()
}

// Cancel tears down the companion side first, then the main upstream, so
// a late companion signal cannot race a half-cancelled main.
func (m *retryWhenMain[T]) Cancel() {
	if !m.stopped.CompareAndSwapAcqRel(0, 1) {
		return
	}
	m.otherArbiter.Cancel()
	m.MultiSubscriptionSubscriber.Cancel()
}

func (m *retryWhenMain[T]) isStopped() bool {
	return m.stopped.LoadAcquire() != 0
}

func (m *retryWhenMain[T]) setWhen(w Subscription) {
	m.otherArbiter.Set(w)
}

// resubscribe re-enters the source at most once per companion tick. The
// WIP drain collapses ticks arriving while a resubscription is already in
// progress into further iterations of the owning goroutine.
func (m *retryWhenMain[T]) resubscribe() {
	if m.wip.AddAcqRel(1) != 1 {
		return
	}
	for {
		if m.isStopped() {
			return
		}
		m.source.Subscribe(m)
		if m.wip.AddAcqRel(-1) == 0 {
			return
		}
	}
}

func (m *retryWhenMain[T]) whenError(err error) {
	m.stopped.StoreRelease(1)
	m.MultiSubscriptionSubscriber.Cancel()
	m.Downstream().OnError(err)
}

func (m *retryWhenMain[T]) whenComplete() {
	m.stopped.StoreRelease(1)
	m.MultiSubscriptionSubscriber.Cancel()
	m.Downstream().OnComplete()
}

// retryWhenOther is both the error-stream view handed to the when factory
// (a Publisher[error] over the companion processor) and the subscriber
// attached to the factory's result. It holds main by a non-owning
// back-reference; the subscribe scope owns both.
type retryWhenOther[T any] struct {
	main             *retryWhenMain[T]
	completionSignal *DirectProcessor[error]
}

func (o *retryWhenOther[T]) Subscribe(s Subscriber[error]) {
	o.completionSignal.Subscribe(s)
}

func (o *retryWhenOther[T]) OnSubscribe(w Subscription) {
	o.main.setWhen(w)
}

func (o *retryWhenOther[T]) OnNext(any) {
	o.main.resubscribe()
}

func (o *retryWhenOther[T]) OnError(err error) {
	o.main.whenError(err)
}

func (o *retryWhenOther[T]) OnComplete() {
	o.main.whenComplete()
}
