package modalsvc

import (
	"context"
	"sync"
)

// Awaitable is implemented by values that settle later. A locals resolver may
// return one instead of a plain value.
type Awaitable interface {
	AwaitValue(ctx context.Context) (any, error)
}

// Future is a settle-once result. The first Resolve or Reject wins; later
// calls report false and change nothing.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture returns a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already fulfilled with v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already failed with err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)
	return f
}

// Resolve fulfills the future with v.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject fails the future with err.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

// settle stores the outcome, runs callbacks in registration order and only
// then releases waiters, so Await observes every callback's side effects.
func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	close(f.done)
	return true
}

// OnSettle registers fn to run once the future settles. If it has already
// settled, fn runs immediately on the calling goroutine. Callbacks must not
// Await the same future.
func (f *Future[T]) OnSettle(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Then registers fn for the fulfilled case only.
func (f *Future[T]) Then(fn func(T)) {
	f.OnSettle(func(v T, err error) {
		if err == nil {
			fn(v)
		}
	})
}

// Catch registers fn for the failed case only.
func (f *Future[T]) Catch(fn func(error)) {
	f.OnSettle(func(_ T, err error) {
		if err != nil {
			fn(err)
		}
	})
}

// Done is closed after the future settles and its callbacks have run.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has an outcome.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the outcome without blocking. ok is false while pending.
func (f *Future[T]) Result() (v T, ok bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.settled, f.err
}

// Await blocks until the future settles or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AwaitValue implements Awaitable.
func (f *Future[T]) AwaitValue(ctx context.Context) (any, error) {
	v, err := f.Await(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}
