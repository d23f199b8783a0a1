package pte

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/task"
)

// QueryDirection selects which end of a trip list to extend.
type QueryDirection int

const (
	Earlier QueryDirection = iota
	Later
)

func (d QueryDirection) String() string {
	if d == Earlier {
		return "earlier"
	}
	return "later"
}

// Trips is the pageable trip list of a query. Each end keeps its own
// paging context. Starting a page query supersedes any page query still
// running on the same list.
type Trips struct {
	*jvm.Object
	provider *Provider
	users    atomic.Int32
	from     jvm.Lazy[*Location]
	via      jvm.Lazy[*Location]
	to       jvm.Lazy[*Location]
	list     jvm.Lazy[*jvm.List[*Trip]]

	ctxMu   sync.Mutex
	earlier *jvm.Object
	later   *jvm.Object

	// mu guards the current page token and every splice.
	mu     sync.Mutex
	token  context.Context
	cancel context.CancelFunc
}

func newTrips(rt *jvm.Runtime, provider *Provider, local jni.Ref) *Trips {
	obj := jvm.Wrap(rt, local)
	if obj == nil {
		return nil
	}
	t := &Trips{Object: obj, provider: &Provider{Object: provider.Object.Retain(), id: provider.id}}
	t.users.Store(1)
	jvm.Scoped(rt, 1, func(env jni.Env) struct{} {
		c := rt.GetField(env, local, classTripsRs, "context", jni.ClassSig(classTripsContext)).Ref()
		t.earlier = jvm.Wrap(rt, c)
		t.later = jvm.Wrap(rt, c)
		return struct{}{}
	})
	obj.OnDispose(t.dispose)
	return t
}

func (t *Trips) From() *Location {
	return t.from.Get(func() *Location {
		v, _ := fieldChild(t.Object, classTripsRs, "from", classLocation, NewLocation).Get()
		return v
	})
}

// Via returns the via location, nil if the query had none.
func (t *Trips) Via() *Location {
	return t.via.Get(func() *Location {
		v, _ := fieldChild(t.Object, classTripsRs, "via", classLocation, NewLocation).Get()
		return v
	})
}

func (t *Trips) To() *Location {
	return t.to.Get(func() *Location {
		v, _ := fieldChild(t.Object, classTripsRs, "to", classLocation, NewLocation).Get()
		return v
	})
}

// List returns the trips. Page queries splice into this list.
func (t *Trips) List() *jvm.List[*Trip] {
	return t.list.Get(func() *jvm.List[*Trip] {
		return fieldList(t.Object, classTripsRs, "trips", newTrip)
	})
}

func (t *Trips) Len() int {
	if l := t.List(); l != nil {
		return l.Len()
	}
	return 0
}

func (t *Trips) Item(i int) (*Trip, bool) {
	if l := t.List(); l != nil {
		return l.Item(i)
	}
	return nil, false
}

// Subscribe registers fn for splices of the list. fn runs on the
// goroutine that applied the page while the list is locked for paging,
// so it must not start a page query itself.
func (t *Trips) Subscribe(fn func(jvm.Change)) (cancel func()) {
	if l := t.List(); l != nil {
		return l.Subscribe(fn)
	}
	return func() {}
}

// CanQuery reports whether the provider offers more trips in dir.
func (t *Trips) CanQuery(dir QueryDirection) bool {
	c := t.contextFor(dir)
	if c == nil {
		return false
	}
	defer c.Release()
	method := "canQueryLater"
	if dir == Earlier {
		method = "canQueryEarlier"
	}
	rt := t.Runtime()
	return jvm.Scoped(rt, 0, func(env jni.Env) bool {
		return rt.Invoke(env, c.Ref(), classTripsContext, method, "()Z").Bool()
	})
}

// QueryMore fetches the next page in dir and splices it into the list.
// It supersedes any running QueryMoreAsync.
func (t *Trips) QueryMore(dir QueryDirection) error {
	t.refresh()
	res, err := t.fetchMore(dir)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.push(dir, res)
}

// QueryMoreAsync runs QueryMore on pool. The future reports true once
// the page is spliced. A newer page query or the final Release discards
// the page, and the future then completes with context.Canceled. Once
// spliced, the page is reported even if ctx is cancelled afterwards.
func (t *Trips) QueryMoreAsync(ctx context.Context, pool *task.Pool, dir QueryDirection) *task.Future[bool] {
	token := t.refresh()
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(token, cancel)
	t.Object.Retain()

	f := task.Run(opCtx, pool, t.Runtime(), threadMore, func(ctx context.Context) (bool, error) {
		if token.Err() != nil {
			return false, context.Canceled
		}
		res, err := t.fetchMore(dir)
		if err != nil {
			return false, err
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		if token.Err() != nil {
			Logger().Debug("page superseded", zap.Stringer("direction", dir))
			res.Release()
			return false, context.Canceled
		}
		if err := t.push(dir, res); err != nil {
			return false, err
		}
		task.Commit(ctx)
		return true, nil
	})
	f.OnComplete(func(bool, error) {
		stop()
		cancel()
		t.Object.Release()
	})
	return f
}

// Retain adds a reference. Page queries keep running until every
// reference is released.
func (t *Trips) Retain() *Trips {
	t.users.Add(1)
	t.Object.Retain()
	return t
}

// Release drops a reference. The last one cancels the running page
// query; the paging contexts and the list go once that query is done.
func (t *Trips) Release() {
	if t == nil {
		return
	}
	if t.users.Add(-1) == 0 {
		t.mu.Lock()
		if t.cancel != nil {
			t.cancel()
		}
		t.mu.Unlock()
	}
	t.Object.Release()
}

// refresh cancels the current page token and issues a new one.
func (t *Trips) refresh() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.token, t.cancel = context.WithCancel(context.Background())
	return t.token
}

// contextFor returns a retained paging context for dir, nil if none.
func (t *Trips) contextFor(dir QueryDirection) *jvm.Object {
	t.ctxMu.Lock()
	defer t.ctxMu.Unlock()
	c := t.later
	if dir == Earlier {
		c = t.earlier
	}
	if c == nil {
		return nil
	}
	return c.Retain()
}

// fetchMore runs queryMoreTrips and returns the result as a global.
func (t *Trips) fetchMore(dir QueryDirection) (*jvm.Object, error) {
	c := t.contextFor(dir)
	if c == nil {
		return nil, errors.New(errors.DomainTrips, errors.KindNoTrips).
			Detail("no paging context for %s trips", dir).Build()
	}
	defer c.Release()

	rt := t.Runtime()
	sig := "(" + jni.ClassSig(classTripsContext) + "Z)" + jni.ClassSig(classTripsRs)
	return query(t.provider, moreTripsStatus, "queryMoreTrips", sig,
		[]func(jni.Env) jni.Value{
			valueArg(jni.Object(c.Ref())),
			valueArg(jni.Bool(dir == Later)),
		},
		func(_ jni.Env, result jni.Ref) *jvm.Object {
			return jvm.Wrap(rt, result)
		})
}

// push replaces the paging context of dir and splices the trips of res
// into the list. It takes ownership of res. Callers hold mu.
func (t *Trips) push(dir QueryDirection, res *jvm.Object) error {
	defer res.Release()
	rt := t.Runtime()
	sc := rt.Enter(3)
	defer sc.Leave()
	env := sc.Env()

	next := jvm.Wrap(rt, rt.GetField(env, res.Ref(), classTripsRs, "context", jni.ClassSig(classTripsContext)).Ref())
	t.ctxMu.Lock()
	old := t.later
	if dir == Earlier {
		old, t.earlier = t.earlier, next
	} else {
		t.later = next
	}
	t.ctxMu.Unlock()
	old.Release()

	page := rt.GetField(env, res.Ref(), classTripsRs, "trips", sigList).Ref()
	list := t.List()
	if page == 0 || list == nil {
		return nil
	}
	if dir == Earlier {
		return list.Prepend(page)
	}
	return list.Append(page)
}

func (t *Trips) dispose() {
	t.ctxMu.Lock()
	earlier, later := t.earlier, t.later
	t.earlier, t.later = nil, nil
	t.ctxMu.Unlock()
	earlier.Release()
	later.Release()
	t.provider.Object.Release()
}
