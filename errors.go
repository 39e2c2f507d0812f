// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "errors"

// ErrBadRequest indicates a Request with n <= 0. The subscription is
// cancelled and the subscriber receives exactly one OnError wrapping this
// sentinel.
var ErrBadRequest = errors.New("rx: non-positive request")

// ErrNilValue indicates a nil interface value produced where a value was
// required: an iterator element, an accumulator result, or a when-factory
// result.
var ErrNilValue = errors.New("rx: nil value")

// ErrDuplicateSubscription indicates a second OnSubscribe on a subscriber
// that already holds a subscription. The second subscription is cancelled
// and the violation is routed to the dropped-signal sink.
var ErrDuplicateSubscription = errors.New("rx: subscription already set")

// ErrMissingBackpressure indicates a value arrived at a subscriber with
// zero outstanding demand on a source that cannot buffer, such as
// [DirectProcessor].
var ErrMissingBackpressure = errors.New("rx: value delivered without request")
