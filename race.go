// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package rx

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent scenarios: the engine publishes plain
// fields through cross-variable memory ordering (state word release,
// field read after acquire), which the race detector cannot track and
// reports as false positives.
const RaceEnabled = true
