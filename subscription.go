// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

// emptySubscription is the inert subscription: it accepts any Request and
// Cancel without effect. Handed to subscribers whose stream terminates at
// subscribe time, so the OnSubscribe-before-terminal ordering holds.
type emptySubscription struct{}

func (emptySubscription) Request(int64) {}
func (emptySubscription) Cancel()       {}

// EmptySubscription is the shared inert subscription instance.
var EmptySubscription Subscription = emptySubscription{}

// ErrorTo delivers the empty subscription followed by a terminal OnError.
// For publishers that fail before producing a real subscription.
func ErrorTo[T any](s Subscriber[T], err error) {
	s.OnSubscribe(EmptySubscription)
	s.OnError(err)
}

// CompleteTo delivers the empty subscription followed by OnComplete.
// For publishers known to be empty at subscribe time.
func CompleteTo[T any](s Subscriber[T]) {
	s.OnSubscribe(EmptySubscription)
	s.OnComplete()
}

// validateSubscription enforces the single-OnSubscribe rule: it reports
// whether next may be installed over current. A duplicate is cancelled and
// the violation goes to the dropped-signal sink, not downstream.
func validateSubscription(current, next Subscription) bool {
	if next == nil {
		dropError(ErrNilValue)
		return false
	}
	if current != nil {
		next.Cancel()
		dropError(ErrDuplicateSubscription)
		return false
	}
	return true
}
