// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"fmt"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Demand accounting on a shared 63-bit counter. A single atomic carries
// both the capacity bound and the wake-up signal: the 0→positive
// transition hands emission ownership to the caller that made it.

// AddCap atomically adds n to the demand counter r, saturating at
// [Unbounded], and returns the value before the update. Once r holds
// Unbounded it is absorbing: the counter is left untouched.
func AddCap(r *atomix.Int64, n int64) int64 {
	sw := spin.Wait{}
	for {
		cur := r.LoadAcquire()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur + n
		if next < 0 { // overflow past the sentinel
			next = Unbounded
		}
		if r.CompareAndSwapAcqRel(cur, next) {
			return cur
		}
		sw.Once()
	}
}

// Produced atomically subtracts n emitted values from the demand counter r
// and returns the updated value. No subtraction occurs at [Unbounded].
// Driving the counter below zero is a producer bug: the excess is reported
// to the dropped-signal sink and the counter clamps to zero.
func Produced(r *atomix.Int64, n int64) int64 {
	sw := spin.Wait{}
	for {
		cur := r.LoadAcquire()
		if cur == Unbounded {
			return Unbounded
		}
		next := cur - n
		excess := int64(0)
		if next < 0 {
			excess = -next
			next = 0
		}
		if r.CompareAndSwapAcqRel(cur, next) {
			if excess != 0 {
				dropError(fmt.Errorf("rx: produced %d more than requested", excess))
			}
			return next
		}
		sw.Once()
	}
}

// saturatingAdd is the non-atomic companion of AddCap for drain-owned
// counters.
func saturatingAdd(a, b int64) int64 {
	c := a + b
	if c < 0 {
		return Unbounded
	}
	return c
}

// exchangeZero empties the counter r, returning what it held. Concurrent
// callers race on the CAS so the amount is taken exactly once.
func exchangeZero(r *atomix.Int64) int64 {
	for {
		cur := r.LoadAcquire()
		if cur == 0 {
			return 0
		}
		if r.CompareAndSwapAcqRel(cur, 0) {
			return cur
		}
	}
}

// validRequest reports whether n is a legal demand increment.
// The caller is responsible for signalling [ErrBadRequest] on false.
func validRequest(n int64) bool {
	return n > 0
}

func badRequestError(n int64) error {
	return fmt.Errorf("%w: %d", ErrBadRequest, n)
}
