// Package chflow holds channel helpers that give up when a context is done.
package chflow

import "context"

// Send delivers v on ch. It returns false if ctx ended first.
func Send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- v:
		return true
	}
}

// Receive takes the next value from ch. ok is false when ctx ended or ch was closed.
func Receive[T any](ctx context.Context, ch <-chan T) (v T, ok bool) {
	select {
	case <-ctx.Done():
		return v, false
	case v, ok = <-ch:
		return v, ok
	}
}

// Drain discards values until ch is closed and returns how many were dropped.
// Producers blocked on ch are released this way after the consumer stopped.
func Drain[T any](ch <-chan T) int {
	n := 0
	for range ch {
		n++
	}
	return n
}
