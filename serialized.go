// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"code.hybscloud.com/spin"
)

// serializedQueueCapacity bounds in-flight signals per serialized
// subscriber. Demand discipline keeps real occupancy at a handful; a
// producer that catches the queue momentarily full waits with backoff.
const serializedQueueCapacity = 256

type signalKind uint8

const (
	signalNext signalKind = iota
	signalError
	signalComplete
)

type signal[T any] struct {
	value T
	err   error
	kind  signalKind
}

// SerializedSubscriber guarantees signals are delivered to the wrapped
// subscriber in strict serial order even when multiple goroutines call
// into it concurrently.
//
// Signals enqueue into a bounded MPSC queue; the goroutine that moves the
// work-in-progress counter 0→1 owns the drain and forwards queued signals
// until the counter returns to 0. Terminal signals are sticky: later
// values go to the dropped-value sink, a later error to the dropped-error
// sink, a later completion is discarded.
type SerializedSubscriber[T any] struct {
	actual Subscriber[T]
	queue  *lfq.MPSC[signal[T]]
	wip    atomix.Int32
	once   atomix.Uint32
	// done is drain-owned: the authoritative terminal mark.
	done bool
	// terminated is the producers' cheap post-terminal gate.
	terminated atomix.Uint32
}

// NewSerializedSubscriber wraps actual for serial delivery.
func NewSerializedSubscriber[T any](actual Subscriber[T]) *SerializedSubscriber[T] {
	return &SerializedSubscriber[T]{
		actual: actual,
		queue:  lfq.NewMPSC[signal[T]](serializedQueueCapacity),
	}
}

// OnSubscribe forwards the subscription at most once; an extra
// subscription is cancelled and reported to the dropped-signal sink.
func (s *SerializedSubscriber[T]) OnSubscribe(sub Subscription) {
	if !s.once.CompareAndSwapAcqRel(0, 1) {
		sub.Cancel()
		dropError(ErrDuplicateSubscription)
		return
	}
	s.actual.OnSubscribe(sub)
}

func (s *SerializedSubscriber[T]) OnNext(v T) {
	if s.terminated.LoadAcquire() != 0 {
		dropValue(v)
		return
	}
	s.offer(signal[T]{kind: signalNext, value: v})
}

func (s *SerializedSubscriber[T]) OnError(err error) {
	if s.terminated.LoadAcquire() != 0 {
		dropError(err)
		return
	}
	s.offer(signal[T]{kind: signalError, err: err})
}

func (s *SerializedSubscriber[T]) OnComplete() {
	if s.terminated.LoadAcquire() != 0 {
		return
	}
	s.offer(signal[T]{kind: signalComplete})
}

// offer enqueues sig, then bumps the WIP counter. The enqueue-then-count
// order guarantees the drain owner finds at least as many queued signals
// as the counter promises.
func (s *SerializedSubscriber[T]) offer(sig signal[T]) {
	bo := iox.Backoff{}
	for s.queue.Enqueue(&sig) != nil {
		bo.Wait()
	}
	if s.wip.AddAcqRel(1) == 1 {
		s.drainLoop()
	}
}

func (s *SerializedSubscriber[T]) drainLoop() {
	for {
		sig, err := s.queue.Dequeue()
		if err != nil {
			// Counted but not yet visible: another producer sits in the
			// enqueue/increment window. It cannot be this goroutine's own
			// signal, so the wait is bounded.
			sw := spin.Wait{}
			for {
				sig, err = s.queue.Dequeue()
				if err == nil {
					break
				}
				sw.Once()
			}
		}
		s.deliver(sig)
		if s.wip.AddAcqRel(-1) == 0 {
			return
		}
	}
}

// deliver runs under drain ownership: done is read and written serially.
func (s *SerializedSubscriber[T]) deliver(sig signal[T]) {
	if s.done {
		switch sig.kind {
		case signalNext:
			dropValue(sig.value)
		case signalError:
			dropError(sig.err)
		}
		return
	}
	switch sig.kind {
	case signalNext:
		s.actual.OnNext(sig.value)
	case signalError:
		s.done = true
		s.terminated.StoreRelease(1)
		s.actual.OnError(sig.err)
	case signalComplete:
		s.done = true
		s.terminated.StoreRelease(1)
		s.actual.OnComplete()
	}
}
