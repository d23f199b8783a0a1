package refs

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("reference table closed")

// Backend is an in-memory slot store with a free list.
type Backend struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	value any
	kind  Kind
	valid bool
}

// NewBackend creates a new in-memory backend.
func NewBackend() *Backend {
	return &Backend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores a value and returns a handle.
func (b *Backend) Create(kind Kind, value any) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{
		kind:  kind,
		value: value,
		valid: true,
	}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// Get retrieves a value and its kind by handle.
func (b *Backend) Get(handle Handle) (any, Kind, bool) {
	if handle == 0 {
		return nil, 0, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(b.entries) {
		return nil, 0, false
	}

	e := b.entries[idx]
	if !e.valid {
		return nil, 0, false
	}
	return e.value, e.kind, true
}

// Drop frees a slot and returns its value and kind.
func (b *Backend) Drop(handle Handle) (any, Kind, bool) {
	if handle == 0 {
		return nil, 0, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(b.entries) {
		return nil, 0, false
	}

	e := &b.entries[idx]
	if !e.valid {
		return nil, 0, false
	}

	value, kind := e.value, e.kind
	e.valid = false
	e.value = nil
	b.freeList = append(b.freeList, handle)

	return value, kind, true
}

// Close releases all slots.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				d.Drop()
			}
			b.entries[i].valid = false
			b.entries[i].value = nil
		}
	}

	b.entries = nil
	b.freeList = nil
	return nil
}

// Len returns the number of live slots.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each iterates over all live slots.
func (b *Backend) Each(fn func(Handle, Kind, any) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.kind, e.value) {
				break
			}
		}
	}
}
