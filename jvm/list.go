package jvm

import (
	"iter"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jni"
)

// Change describes a splice: Removed items at Position were replaced by
// Added items.
type Change struct {
	Position int
	Removed  int
	Added    int
}

type entry[T any] struct {
	v  T
	ok bool
}

// List projects a java.util.List. Items are wrapped on first access and
// cached; the cache holds one reference to each wrapper.
type List[T Wrapper] struct {
	*Object
	wrap   func(*Runtime, jni.Ref) T
	cache  []entry[T]
	subs   map[int]func(Change)
	length int
	nextID int
	mu     sync.Mutex
}

// NewList wraps a foreign list. wrap builds an element wrapper from a
// local reference. It returns nil for a null reference.
func NewList[T Wrapper](rt *Runtime, local jni.Ref, wrap func(*Runtime, jni.Ref) T) *List[T] {
	obj := Wrap(rt, local)
	if obj == nil {
		return nil
	}
	l := &List[T]{Object: obj, wrap: wrap, length: -1, subs: make(map[int]func(Change))}
	obj.OnDispose(l.dispose)
	return l
}

// Len returns the number of items. The size is fetched once.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lenLocked()
}

func (l *List[T]) lenLocked() int {
	if l.length < 0 {
		rt := l.rt
		l.length = Scoped(rt, 1, func(env jni.Env) int {
			return int(rt.Invoke(env, l.ref, "java/util/List", "size", "()I").Int())
		})
		l.cache = make([]entry[T], l.length)
	}
	return l.length
}

// Item returns the wrapper at i. It reports false when i is out of range
// or the element is null. The list keeps ownership of the wrapper; call
// Retain to keep it beyond the list.
func (l *List[T]) Item(i int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if i < 0 || i >= l.lenLocked() {
		return zero, false
	}
	if e := l.cache[i]; e.ok {
		return e.v, true
	}

	rt := l.rt
	var (
		v  T
		ok bool
	)
	func() {
		sc := rt.Enter(2)
		defer sc.Leave()
		local := rt.Invoke(sc.Env(), l.ref, "java/util/List", "get", "(I)Ljava/lang/Object;", jni.Int(int32(i))).Ref()
		if local != 0 {
			v, ok = l.wrap(rt, local), true
		}
	}()
	if !ok {
		return zero, false
	}
	l.cache[i] = entry[T]{v: v, ok: true}
	return v, true
}

// All iterates over the items in order. Null elements are skipped.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < l.Len(); i++ {
			v, ok := l.Item(i)
			if !ok {
				continue
			}
			if !yield(i, v) {
				return
			}
		}
	}
}

// Cached reports whether the item at i is already wrapped.
func (l *List[T]) Cached(i int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return i >= 0 && i < len(l.cache) && l.cache[i].ok
}

// Prepend inserts every item of the foreign collection at the front.
func (l *List[T]) Prepend(collection jni.Ref) error {
	return l.splice(collection, true)
}

// Append adds every item of the foreign collection at the end.
func (l *List[T]) Append(collection jni.Ref) error {
	return l.splice(collection, false)
}

func (l *List[T]) splice(collection jni.Ref, front bool) error {
	rt := l.rt
	l.mu.Lock()
	n := l.lenLocked()

	var m int
	func() {
		sc := rt.Enter(2)
		defer sc.Leave()
		env := sc.Env()
		m = int(rt.Invoke(env, collection, "java/util/Collection", "size", "()I").Int())
		if front {
			rt.Invoke(env, l.ref, "java/util/List", "addAll", "(ILjava/util/Collection;)Z", jni.Int(0), jni.Object(collection))
		} else {
			rt.Invoke(env, l.ref, "java/util/List", "addAll", "(Ljava/util/Collection;)Z", jni.Object(collection))
		}
	}()
	if err := rt.CheckException(); err != nil {
		l.mu.Unlock()
		return err
	}

	grown := make([]entry[T], n+m)
	pos := n
	if front {
		copy(grown[m:], l.cache)
		pos = 0
	} else {
		copy(grown, l.cache)
	}
	l.cache = grown
	l.length = n + m
	subs := make([]func(Change), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	rt.logger.Debug("list spliced", zap.Int("position", pos), zap.Int("added", m), zap.Int("length", n+m))
	if m == 0 {
		return nil
	}
	change := Change{Position: pos, Added: m}
	for _, fn := range subs {
		fn(change)
	}
	return nil
}

// Subscribe registers fn for change notifications. Notifications are
// delivered on the goroutine that spliced the list, after the list is
// consistent again.
func (l *List[T]) Subscribe(fn func(Change)) (cancel func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *List[T]) dispose() {
	l.mu.Lock()
	cache := l.cache
	l.cache = nil
	l.length = -1
	clear(l.subs)
	l.mu.Unlock()
	for _, e := range cache {
		if e.ok {
			e.v.JavaObject().Release()
		}
	}
}
