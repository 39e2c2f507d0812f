// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/rx"
)

// valuesThenError is a companion publisher: it emits one value per unit of
// demand until limit values have been emitted, then fails with err.
type valuesThenError struct {
	limit int
	err   error
}

func (p *valuesThenError) Subscribe(s rx.Subscriber[any]) {
	s.OnSubscribe(&valuesThenErrorSubscription{actual: s, limit: p.limit, err: p.err})
}

type valuesThenErrorSubscription struct {
	actual  rx.Subscriber[any]
	limit   int
	err     error
	emitted int
	done    bool
}

func (sub *valuesThenErrorSubscription) Request(n int64) {
	for ; n > 0 && !sub.done; n-- {
		if sub.emitted < sub.limit {
			sub.emitted++
			sub.actual.OnNext(sub.emitted)
			continue
		}
		sub.done = true
		sub.actual.OnError(sub.err)
	}
}

func (sub *valuesThenErrorSubscription) Cancel() {
	sub.done = true
}

func TestRetryWhenResubscribesUntilCompanionCompletes(t *testing.T) {
	err1 := errors.New("transient failure")
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A"}, err: err1})

	// The companion emits exactly two values then completes: two retries,
	// then normal completion.
	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return rx.FromSlice([]any{1, 2})
	})

	ts := &testSubscriber[string]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	assertValues(t, ts, "A", "A", "A")
	assertComplete(t, ts)
	assertNoError(t, ts)
	if ts.subscribes != 1 {
		t.Fatalf("downstream subscribes = %d, want 1", ts.subscribes)
	}
}

func TestRetryWhenPropagatesCompanionError(t *testing.T) {
	err2 := errors.New("transient failure")
	companionErr := errors.New("companion gave up")
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A"}, err: err2})

	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return &valuesThenError{limit: 1, err: companionErr}
	})

	ts := &testSubscriber[string]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	assertValues(t, ts, "A", "A")
	assertErrorIs(t, ts, companionErr)
	assertNotComplete(t, ts)
}

func TestRetryWhenCompanionSeesSourceErrors(t *testing.T) {
	err1 := errors.New("transient failure")
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A"}, err: err1})

	collected := &testSubscriber[error]{autoRequest: rx.Unbounded}
	retried := rx.RetryWhen(source, func(errs rx.Publisher[error]) rx.Publisher[any] {
		errs.Subscribe(collected)
		return rx.FromSlice([]any{1})
	})

	ts := &testSubscriber[string]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	// One retry: the source failed twice, and both errors flowed through
	// the companion view.
	assertValues(t, ts, "A", "A")
	if len(collected.values) != 2 {
		t.Fatalf("companion saw %d errors, want 2", len(collected.values))
	}
	for _, err := range collected.values {
		if !errors.Is(err, err1) {
			t.Fatalf("companion saw %v, want %v", err, err1)
		}
	}
}

func TestRetryWhenCompanionCompletesImmediately(t *testing.T) {
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A"}, err: errors.New("unused")})

	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return rx.Empty[any]()
	})

	ts := &testSubscriber[string]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	// The companion completed before the source was entered: downstream
	// completes without a single value.
	assertNoValues(t, ts)
	assertComplete(t, ts)
	assertNoError(t, ts)
}

func TestRetryWhenNilCompanion(t *testing.T) {
	source := rx.FromSlice([]string{"A"})

	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return nil
	})

	ts := &testSubscriber[string]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	assertNoValues(t, ts)
	assertErrorIs(t, ts, rx.ErrNilValue)
}

func TestRetryWhenCompletesWithSource(t *testing.T) {
	retried := rx.RetryWhen(rx.FromSlice([]int{1, 2, 3}), func(rx.Publisher[error]) rx.Publisher[any] {
		return &valuesThenError{limit: 100, err: errors.New("unused")}
	})

	ts := &testSubscriber[int]{autoRequest: rx.Unbounded}
	retried.Subscribe(ts)

	assertValues(t, ts, 1, 2, 3)
	assertComplete(t, ts)
}

func TestRetryWhenCancelStopsRetrying(t *testing.T) {
	err1 := errors.New("transient failure")
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A"}, err: err1})

	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return &valuesThenError{limit: 100, err: errors.New("unused")}
	})

	c := &cancelAfter[string]{limit: 1}
	c.autoRequest = rx.Unbounded
	retried.Subscribe(c)

	assertValues(t, &c.testSubscriber, "A")
	assertNoError(t, &c.testSubscriber)
	assertNotComplete(t, &c.testSubscriber)
}

func TestRetryWhenBoundedDemandSurvivesResubscribe(t *testing.T) {
	err1 := errors.New("transient failure")
	source := rx.FromIterable[string](failAfterIterable[string]{values: []string{"A", "B"}, err: err1})

	retried := rx.RetryWhen(source, func(rx.Publisher[error]) rx.Publisher[any] {
		return &valuesThenError{limit: 100, err: errors.New("unused")}
	})

	// Demand 3: the first attempt produces A, B and fails; the retry only
	// holds the remaining single unit of demand.
	ts := &testSubscriber[string]{autoRequest: 3}
	retried.Subscribe(ts)

	assertValues(t, ts, "A", "B", "A")
	assertNotComplete(t, ts)
	assertNoError(t, ts)
}
