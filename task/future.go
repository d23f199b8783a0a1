package task

import (
	"context"
	"sync"
)

// Future is the pending result of a task.
type Future[T any] struct {
	done      chan struct{}
	callbacks []func(T, error)
	deliver   func(func())
	value     T
	err       error
	mu        sync.Mutex
	completed bool
}

func newFuture[T any](deliver func(func())) *Future[T] {
	return &Future[T]{done: make(chan struct{}), deliver: deliver}
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the future completes or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome if the future has completed.
func (f *Future[T]) Result() (T, error, bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// OnComplete registers fn to receive the outcome. It runs through the
// pool's delivery function; if the future already completed it is
// scheduled right away.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.deliver(func() { fn(f.value, f.err) })
}

func (f *Future[T]) complete(v T, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.value, f.err = v, err
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range callbacks {
		f.deliver(func() { fn(v, err) })
	}
}

// Completed returns a future that already holds v and err.
func Completed[T any](v T, err error) *Future[T] {
	f := newFuture[T](inline)
	f.complete(v, err)
	return f
}
