package jvm

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jni"
)

// Wrapper is implemented by every type backed by a foreign object.
type Wrapper interface {
	JavaObject() *Object
}

// Object holds a global reference to one foreign object and a reference
// on its runtime. The global reference is set once and released exactly
// once, when the last Release runs.
type Object struct {
	rt        *Runtime
	ref       jni.Ref
	refs      atomic.Int32
	mu        sync.Mutex
	disposers []func()
	hash      Lazy[uint32]
}

// Wrap promotes local to a global reference. It returns nil for a null
// reference, and logs and returns nil when rt is nil.
func Wrap(rt *Runtime, local jni.Ref) *Object {
	if rt == nil {
		Logger().Error("wrapping a foreign object without a runtime")
		return nil
	}
	if local == 0 {
		return nil
	}
	o := &Object{rt: rt.Ref(), ref: rt.mustEnv().NewGlobalRef(local)}
	o.refs.Store(1)
	return o
}

// JavaObject returns o.
func (o *Object) JavaObject() *Object { return o }

// Ref returns the global reference. It is valid on any attached thread
// until the final Release.
func (o *Object) Ref() jni.Ref { return o.ref }

// Runtime returns the owning runtime.
func (o *Object) Runtime() *Runtime { return o.rt }

// Retain takes a reference.
func (o *Object) Retain() *Object {
	o.refs.Add(1)
	return o
}

// OnDispose registers fn to run on the final Release, before the global
// reference is deleted. Disposers run in reverse registration order.
func (o *Object) OnDispose(fn func()) {
	o.mu.Lock()
	o.disposers = append(o.disposers, fn)
	o.mu.Unlock()
}

// Release drops a reference. The last one runs the disposers, deletes
// the global reference and then drops the runtime reference. Release on
// nil does nothing.
func (o *Object) Release() {
	if o == nil {
		return
	}
	n := o.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("jvm: object released too often")
	}

	o.mu.Lock()
	disposers := o.disposers
	o.disposers = nil
	o.mu.Unlock()
	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}

	rt := o.rt
	if env := rt.Env(); env != nil {
		env.DeleteGlobalRef(o.ref)
	} else {
		g, err := rt.AttachThread("pte-release")
		if err != nil {
			rt.logger.Error("leaking global reference", zap.Error(err))
		} else {
			g.Env().DeleteGlobalRef(o.ref)
			g.Unref()
		}
	}
	o.ref = 0
	rt.Unref()
}

// Hash returns the foreign hashCode reinterpreted as unsigned. It is
// computed once.
func (o *Object) Hash() uint32 {
	return o.hash.Get(func() uint32 {
		return Scoped(o.rt, 1, func(env jni.Env) uint32 {
			return uint32(o.rt.Invoke(env, o.ref, "java/lang/Object", "hashCode", "()I").Int())
		})
	})
}

// Same reports whether a and b wrap the identical foreign object of the
// same runtime.
func Same(a, b Wrapper) bool {
	oa, ob := object(a), object(b)
	if oa == nil || ob == nil {
		return oa == ob
	}
	if oa == ob {
		return true
	}
	if oa.rt != ob.rt {
		return false
	}
	return Scoped(oa.rt, 0, func(env jni.Env) bool {
		return env.IsSameObject(oa.ref, ob.ref)
	})
}

// Equal reports whether a and b are the same or the foreign equals
// method holds.
func Equal(a, b Wrapper) bool {
	if Same(a, b) {
		return true
	}
	oa, ob := object(a), object(b)
	if oa == nil || ob == nil || oa.rt != ob.rt {
		return false
	}
	return Scoped(oa.rt, 1, func(env jni.Env) bool {
		return oa.rt.Invoke(env, oa.ref, "java/lang/Object", "equals", "(Ljava/lang/Object;)Z", jni.Object(ob.ref)).Bool()
	})
}

func object(w Wrapper) *Object {
	if w == nil {
		return nil
	}
	return w.JavaObject()
}
