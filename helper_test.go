// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"code.hybscloud.com/rx"
)

// skipRace skips tests that exercise concurrent signalling. The engine
// publishes plain fields through cross-variable memory ordering (state
// word release, field read after acquire), which the race detector cannot
// track and reports as false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	if rx.RaceEnabled {
		tb.Skip("skip: engine uses cross-variable memory ordering")
	}
}

// testSubscriber records every observed signal. A non-zero autoRequest is
// issued as soon as the subscription arrives.
type testSubscriber[T any] struct {
	autoRequest int64

	sub         rx.Subscription
	values      []T
	errs        []error
	completions int
	subscribes  int
}

func (ts *testSubscriber[T]) OnSubscribe(sub rx.Subscription) {
	ts.subscribes++
	ts.sub = sub
	if ts.autoRequest != 0 {
		sub.Request(ts.autoRequest)
	}
}

func (ts *testSubscriber[T]) OnNext(v T) {
	ts.values = append(ts.values, v)
}

func (ts *testSubscriber[T]) OnError(err error) {
	ts.errs = append(ts.errs, err)
}

func (ts *testSubscriber[T]) OnComplete() {
	ts.completions++
}

func assertValues[T comparable](t *testing.T, ts *testSubscriber[T], want ...T) {
	t.Helper()
	if !slices.Equal(ts.values, want) {
		t.Fatalf("values %v, want %v", ts.values, want)
	}
}

func assertNoValues[T any](t *testing.T, ts *testSubscriber[T]) {
	t.Helper()
	if len(ts.values) != 0 {
		t.Fatalf("got %d values, want none", len(ts.values))
	}
}

func assertComplete[T any](t *testing.T, ts *testSubscriber[T]) {
	t.Helper()
	if ts.completions != 1 {
		t.Fatalf("completions = %d, want 1", ts.completions)
	}
}

func assertNotComplete[T any](t *testing.T, ts *testSubscriber[T]) {
	t.Helper()
	if ts.completions != 0 {
		t.Fatalf("completions = %d, want 0", ts.completions)
	}
}

func assertNoError[T any](t *testing.T, ts *testSubscriber[T]) {
	t.Helper()
	if len(ts.errs) != 0 {
		t.Fatalf("errors %v, want none", ts.errs)
	}
}

func assertErrorIs[T any](t *testing.T, ts *testSubscriber[T], want error) {
	t.Helper()
	if len(ts.errs) != 1 {
		t.Fatalf("got %d errors %v, want 1", len(ts.errs), ts.errs)
	}
	if !errors.Is(ts.errs[0], want) {
		t.Fatalf("error %v, want %v", ts.errs[0], want)
	}
}

// recordingSubscription records the demand and cancellations it receives.
type recordingSubscription struct {
	requests []int64
	cancels  int
}

func (r *recordingSubscription) Request(n int64) {
	r.requests = append(r.requests, n)
}

func (r *recordingSubscription) Cancel() {
	r.cancels++
}

// failAfterIterable yields its values, then fails the trailing HasNext
// probe with err. Each subscription gets a fresh iterator, which makes it
// the canonical retryable source: values then a terminal error, repeated.
type failAfterIterable[T any] struct {
	values []T
	err    error
}

func (f failAfterIterable[T]) Iterator() (rx.Iterator[T], error) {
	return &failAfterIterator[T]{values: f.values, err: f.err}, nil
}

type failAfterIterator[T any] struct {
	values []T
	err    error
	index  int
}

func (it *failAfterIterator[T]) HasNext() (bool, error) {
	if it.index < len(it.values) {
		return true, nil
	}
	return false, it.err
}

func (it *failAfterIterator[T]) Next() (T, error) {
	v := it.values[it.index]
	it.index++
	return v, nil
}

// countingDropHandlers installs counting dropped-signal handlers for the
// duration of a test and returns the counters. Handlers may fire from any
// goroutine, so the slices are guarded.
func countingDropHandlers(t *testing.T) (droppedErrs *[]error, droppedVals *[]any) {
	t.Helper()
	var mu sync.Mutex
	var errs []error
	var vals []any
	rx.SetDroppedErrorHandler(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	rx.SetDroppedValueHandler(func(v any) {
		mu.Lock()
		vals = append(vals, v)
		mu.Unlock()
	})
	t.Cleanup(func() {
		rx.SetDroppedErrorHandler(nil)
		rx.SetDroppedValueHandler(nil)
	})
	return &errs, &vals
}
