// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "math"

// Unbounded is the absorbing demand sentinel. A subscription whose demand
// counter reaches Unbounded is never decremented again; Request(Unbounded)
// selects the unbounded fast path where a source has one.
const Unbounded = math.MaxInt64

// Publisher is a provider of a potentially unbounded number of sequenced
// values, publishing them according to the demand received from its
// Subscriber.
//
// Subscribe is a factory method: each call starts a new subscription and
// must deliver exactly one OnSubscribe before any other signal.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives one OnSubscribe after being passed to
// [Publisher.Subscribe], then zero or more OnNext within outstanding
// demand, then at most one of OnError or OnComplete.
//
// The producer serializes On* calls on a single subscription; a subscriber
// shared between subscriptions must serialize itself, see
// [SerializedSubscriber].
type Subscriber[T any] interface {
	OnSubscribe(sub Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscription is the one-to-one lifecycle link between a Subscriber and a
// Publisher.
//
// Request adds n to the outstanding demand; n <= 0 is a protocol violation
// answered by OnError([ErrBadRequest]). Cancel is idempotent and may race
// with in-flight signals: values already dispatched can still arrive, but
// no signal is produced after cancellation is witnessed at an emission
// edge.
type Subscription interface {
	Request(n int64)
	Cancel()
}

// ConditionalSubscriber can reject a value without consuming demand.
// Sources probe for this capability by type assertion and route emission
// through TryOnNext so that a filtering downstream does not lose part of
// its bounded budget.
type ConditionalSubscriber[T any] interface {
	Subscriber[T]

	// TryOnNext consumes v and reports whether it counted against demand.
	// False means "rejected without consuming demand".
	TryOnNext(v T) bool
}

// SynchronousSubscription is the fusion extension: downstream polls values
// from the upstream synchronously in lieu of push delivery.
//
// The calling discipline is IsEmpty first, then Poll. Poll returns io.EOF
// once the source is drained and any other error for an upstream failure;
// a non-nil value returned by Poll is owned by the caller. Termination
// semantics are those of the push protocol.
type SynchronousSubscription[T any] interface {
	Subscription

	// Poll fetches the next value. Requires a prior IsEmpty() == false.
	Poll() (T, error)
	// IsEmpty probes whether a value can be polled right now.
	IsEmpty() bool
	// Size reports a cheap estimate of remaining values. Iterator-backed
	// sources report 0 once they are known to be drained and 1 otherwise.
	Size() int
	// Clear releases any buffered value and parks the source at drained.
	Clear()
}

// Processor is both a Subscriber and a Publisher of the same value type.
type Processor[T any] interface {
	Subscriber[T]
	Publisher[T]
}

// isNilValue reports whether v is a nil interface value, the Go rendering
// of a null element. Only an interface-typed T can carry one.
func isNilValue[T any](v T) bool {
	return any(v) == nil
}
