// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rx provides a lock-free Reactive Streams publisher runtime:
// demand-driven consumers bridged to push-style producers under strict
// backpressure.
//
// # Architecture
//
//   - Signal protocol: [Publisher] delivers exactly one OnSubscribe, then
//     values within requested demand, then at most one terminal signal.
//   - Demand accounting: a saturating 63-bit counter per subscription with
//     [Unbounded] as absorbing sentinel, updated via [AddCap] and [Produced]
//     on [code.hybscloud.com/atomix] atomics.
//   - Drain loops: the engine's sole concurrency primitive beyond atomic
//     add/CAS. The thread observing the 0→1 transition of a WIP counter owns
//     execution until the counter returns to 0; everyone else increments and
//     leaves.
//   - Serialization: [SerializedSubscriber] funnels concurrent signallers
//     through a bounded [code.hybscloud.com/lfq] MPSC queue drained by the
//     WIP owner. Producers wait on a momentarily full queue with
//     [code.hybscloud.com/iox.Backoff].
//
// # Sources and Operators
//
//   - [FromIterable], [FromSlice], [FromSeq]: synchronous sources with a
//     bounded slow path, an unbounded fast path, a demand-preserving
//     [ConditionalSubscriber] variant, and synchronous fusion via
//     [SynchronousSubscription].
//   - [RetryWhen]: resubscribes the main source each time a companion
//     publisher signals in response to an error, built on
//     [MultiSubscriptionSubscriber] and [DeferredSubscription].
//   - [Accumulate]: running accumulator emitting intermediate results.
//   - [Just], [Empty], [Error]: scalar and terminal sources.
//   - [DirectProcessor]: minimal multicast hub forwarding live signals.
//
// # Fusion
//
// Sources that can produce values synchronously expose
// [SynchronousSubscription]: downstream operators poll values directly in
// lieu of push delivery. Poll returns [io.EOF] once drained; IsEmpty must
// be consulted first to distinguish an exhausted source from a pending one.
//
// # Error Handling
//
// Protocol violations terminate the stream with a sentinel error
// ([ErrBadRequest], [ErrNilValue], [ErrDuplicateSubscription],
// [ErrMissingBackpressure]) matched via errors.Is. Signals that arrive
// after termination are routed to the process-wide dropped-signal sink
// ([SetDroppedErrorHandler], [SetDroppedValueHandler]) instead of being
// re-signalled. Panics from user callbacks are never recovered.
package rx
