package task

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	bridgeerrors "github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jvm"
)

// Pool bounds the number of tasks running foreign calls at once.
type Pool struct {
	sem     *semaphore.Weighted
	deliver func(func())
	workers int64

	// tail is closed once the last submitted task has its slot or has
	// given up waiting. Each task waits for its predecessor's channel
	// before acquiring, so slots go out in submission order.
	mu   sync.Mutex
	tail chan struct{}
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithDelivery routes completion callbacks through fn, for example onto
// a UI event loop. By default callbacks run on the worker goroutine.
func WithDelivery(fn func(func())) PoolOption {
	return func(p *Pool) { p.deliver = fn }
}

// NewPool returns a pool running at most workers tasks at once.
func NewPool(workers int64, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{sem: semaphore.NewWeighted(workers), deliver: inline, workers: workers, tail: make(chan struct{})}
	close(p.tail)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the pool's bound.
func (p *Pool) Workers() int64 { return p.workers }

func inline(fn func()) { fn() }

// enqueue takes the next place in line. It returns the predecessor's
// channel and the channel to close once this task leaves the line.
func (p *Pool) enqueue() (prev <-chan struct{}, next chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next = make(chan struct{})
	prev, p.tail = p.tail, next
	return prev, next
}

// acquire waits for the tasks submitted earlier, then for a slot. A
// task cancelled while queued leaves the line without holding up the
// tasks behind it.
func (p *Pool) acquire(ctx context.Context, prev <-chan struct{}, next chan struct{}) error {
	select {
	case <-prev:
	case <-ctx.Done():
		go func() {
			<-prev
			close(next)
		}()
		return ctx.Err()
	}
	defer close(next)
	return p.sem.Acquire(ctx, 1)
}

type commitKey struct{}

// Commit marks the result of the running task as applied. A task that
// committed keeps its result even if its context is cancelled before
// it returns. Commit outside a task does nothing.
func Commit(ctx context.Context) {
	if c, ok := ctx.Value(commitKey{}).(*atomic.Bool); ok {
		c.Store(true)
	}
}

// releaser is implemented by results that own foreign references.
type releaser interface {
	Release()
}

// Run executes fn on a worker thread attached to rt as name plus a
// short unique suffix. Tasks get worker slots in the order they were
// submitted. If ctx is cancelled before fn returns and fn did not
// Commit, the result is discarded and released, and the future
// completes with context.Canceled.
func Run[T any](ctx context.Context, p *Pool, rt *jvm.Runtime, name string, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T](p.deliver)
	id := uuid.New()
	thread := name + "-" + id.String()[:8]
	log := Logger().With(zap.String("task", thread))
	prev, next := p.enqueue()

	go func() {
		v, err := run(ctx, p, prev, next, rt, thread, log, fn)
		f.complete(v, err)
	}()
	return f
}

// run does the work of one task. The worker is detached and its slot
// freed before the future completes.
func run[T any](ctx context.Context, p *Pool, prev <-chan struct{}, next chan struct{}, rt *jvm.Runtime, thread string, log *zap.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.acquire(ctx, prev, next); err != nil {
		return zero, err
	}
	defer p.sem.Release(1)

	g, err := rt.AttachThread(thread)
	if err != nil {
		log.Debug("attach failed", zap.Error(err))
		return zero, err
	}
	defer g.Unref()

	committed := new(atomic.Bool)
	v, err := fn(context.WithValue(ctx, commitKey{}, committed))
	if ctx.Err() != nil && !committed.Load() {
		log.Debug("result discarded")
		if err == nil {
			release(v)
		}
		return zero, context.Canceled
	}
	return v, err
}

func release(v any) {
	r, ok := v.(releaser)
	if !ok {
		return
	}
	if rv := reflect.ValueOf(r); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return
	}
	r.Release()
}

// IsDiscarded reports whether err marks a cancelled task whose result
// was dropped. Callers treat it as no error.
func IsDiscarded(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsThreading reports whether err is a thread attachment failure.
func IsThreading(err error) bool {
	k, ok := bridgeerrors.KindOf(err)
	return ok && k == bridgeerrors.KindJvmThreading
}
