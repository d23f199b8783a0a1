package jvm

import "sync"

// Lazy memoizes one value fetched from an immutable foreign object. The
// first Get runs fetch; every later Get returns the stored result, even
// when fetch produced an absent value.
type Lazy[T any] struct {
	mu   sync.Mutex
	v    T
	done bool
}

// Get returns the cached value, fetching it on first use.
func (l *Lazy[T]) Get(fetch func() T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.v = fetch()
		l.done = true
	}
	return l.v
}

// Peek returns the cached value without fetching.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v, l.done
}

// Maybe is an optional value.
type Maybe[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Maybe[T] { return Maybe[T]{Value: v, Valid: true} }

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) { return m.Value, m.Valid }
