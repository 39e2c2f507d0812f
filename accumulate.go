// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "fmt"

// Accumulate emits the intermediate results of folding accumulator over
// the source values. The first source value is the seed and is emitted
// as-is:
//
//	out[0] = source[0]
//	out[1] = accumulator(out[0], source[1])
//	out[2] = accumulator(out[1], source[2])
//	...
//
// An accumulator error cancels the upstream and terminates downstream
// with it; a nil interface result is a protocol violation.
func Accumulate[T any](source Publisher[T], accumulator func(acc, v T) (T, error)) Publisher[T] {
	return accumulatePublisher[T]{source: source, accumulator: accumulator}
}

type accumulatePublisher[T any] struct {
	source      Publisher[T]
	accumulator func(acc, v T) (T, error)
}

func (p accumulatePublisher[T]) Subscribe(s Subscriber[T]) {
	p.source.Subscribe(&accumulateSubscriber[T]{actual: s, accumulator: p.accumulator})
}

// accumulateSubscriber rides a single upstream subscription; On* calls are
// producer-serialized, so value/done need no synchronization.
type accumulateSubscriber[T any] struct {
	actual      Subscriber[T]
	accumulator func(acc, v T) (T, error)

	s        Subscription
	value    T
	hasValue bool
	done     bool
}

func (a *accumulateSubscriber[T]) OnSubscribe(s Subscription) {
	if !validateSubscription(a.s, s) {
		return
	}
	a.s = s
	a.actual.OnSubscribe(a)
}

func (a *accumulateSubscriber[T]) OnNext(v T) {
	if a.done {
		dropValue(v)
		return
	}
	if a.hasValue {
		next, err := a.accumulator(a.value, v)
		if err != nil {
			a.s.Cancel()
			a.OnError(err)
			return
		}
		if isNilValue(next) {
			a.s.Cancel()
			a.OnError(fmt.Errorf("%w: accumulator returned a nil value", ErrNilValue))
			return
		}
		v = next
	}
	a.value = v
	a.hasValue = true
	a.actual.OnNext(v)
}

func (a *accumulateSubscriber[T]) OnError(err error) {
	if a.done {
		dropError(err)
		return
	}
	a.done = true
	a.actual.OnError(err)
}

func (a *accumulateSubscriber[T]) OnComplete() {
	if a.done {
		return
	}
	a.done = true
	a.actual.OnComplete()
}

func (a *accumulateSubscriber[T]) Request(n int64) {
	a.s.Request(n)
}

func (a *accumulateSubscriber[T]) Cancel() {
	a.s.Cancel()
}
