package frame

import (
	"context"
	"sync"
)

// Future is a memoized deferred computation. Frame transformations compose
// futures without running anything; the first Force materializes the value
// and caches it, so a frame is computed at most once no matter how many
// checkpoints force it. Force is the pipeline's explicit suspension point.
type Future[T any] struct {
	once sync.Once
	fn   func(ctx context.Context) (T, error)
	val  T
	err  error
}

// Defer wraps a computation into an unforced Future.
func Defer[T any](fn func(ctx context.Context) (T, error)) *Future[T] {
	return &Future[T]{fn: fn}
}

// Resolved creates an already-forced Future holding val.
func Resolved[T any](val T) *Future[T] {
	f := &Future[T]{}
	f.once.Do(func() { f.val = val })
	return f
}

// Force runs the computation if it has not run yet and returns the cached
// result thereafter. An error is cached the same way as a value.
func (f *Future[T]) Force(ctx context.Context) (T, error) {
	f.once.Do(func() {
		f.val, f.err = f.fn(ctx)
	})
	return f.val, f.err
}
