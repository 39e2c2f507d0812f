// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"log/slog"
	"sync/atomic"
)

// The dropped-signal sink is the only process-wide state in the package.
// Errors that arise after a downstream has terminated cannot be
// re-signalled; they are routed here instead. Handlers are replaceable at
// runtime by an atomic swap.

var (
	droppedErrorHandler atomic.Pointer[func(err error)]
	droppedValueHandler atomic.Pointer[func(v any)]
)

// SetDroppedErrorHandler replaces the handler invoked for errors that can
// no longer be signalled downstream. A nil h restores the default, which
// logs through log/slog.
func SetDroppedErrorHandler(h func(err error)) {
	if h == nil {
		droppedErrorHandler.Store(nil)
		return
	}
	droppedErrorHandler.Store(&h)
}

// SetDroppedValueHandler replaces the handler invoked for values dropped
// after termination or cancellation. A nil h restores the default, which
// logs through log/slog.
func SetDroppedValueHandler(h func(v any)) {
	if h == nil {
		droppedValueHandler.Store(nil)
		return
	}
	droppedValueHandler.Store(&h)
}

func dropError(err error) {
	if h := droppedErrorHandler.Load(); h != nil {
		(*h)(err)
		return
	}
	slog.Warn("rx: dropped error", "err", err)
}

func dropValue(v any) {
	if h := droppedValueHandler.Load(); h != nil {
		(*h)(v)
		return
	}
	slog.Warn("rx: dropped value", "value", v)
}
