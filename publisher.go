// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

// Just emits v and completes. Iterable-backed, so it participates in
// synchronous fusion like any other iterable source.
func Just[T any](v T) Publisher[T] {
	return FromSlice([]T{v})
}

// Empty completes immediately without values.
func Empty[T any]() Publisher[T] {
	return emptyPublisher[T]{}
}

type emptyPublisher[T any] struct{}

func (emptyPublisher[T]) Subscribe(s Subscriber[T]) {
	CompleteTo(s)
}

// Error terminates immediately with err.
func Error[T any](err error) Publisher[T] {
	return errorPublisher[T]{err: err}
}

type errorPublisher[T any] struct {
	err error
}

func (p errorPublisher[T]) Subscribe(s Subscriber[T]) {
	ErrorTo(s, p.err)
}
