package pte

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
)

// wrapFunc builds a wrapper from a local reference.
type wrapFunc[T jvm.Wrapper] func(*jvm.Runtime, jni.Ref) T

// adopt ties the lifetime of child to parent: the child is released on
// the parent's final release.
func adopt[T jvm.Wrapper](parent *jvm.Object, child T) T {
	parent.OnDispose(child.JavaObject().Release)
	return child
}

func fieldString(o *jvm.Object, class, name string) jvm.Maybe[string] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[string] {
		s, ok := jvm.GoString(env, rt.GetField(env, o.Ref(), class, name, sigString).Ref())
		return jvm.Maybe[string]{Value: s, Valid: ok}
	})
}

func fieldDate(o *jvm.Object, class, name string) jvm.Maybe[time.Time] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[time.Time] {
		t, ok := jvm.TimeFromDate(rt, rt.GetField(env, o.Ref(), class, name, sigDate).Ref())
		return jvm.Maybe[time.Time]{Value: t, Valid: ok}
	})
}

func callDate(o *jvm.Object, class, method string) jvm.Maybe[time.Time] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[time.Time] {
		t, ok := jvm.TimeFromDate(rt, rt.Invoke(env, o.Ref(), class, method, "()"+sigDate).Ref())
		return jvm.Maybe[time.Time]{Value: t, Valid: ok}
	})
}

// fieldChild wraps an object-typed field. The parent keeps ownership of
// the wrapper.
func fieldChild[T jvm.Wrapper](o *jvm.Object, class, name, child string, wrap wrapFunc[T]) jvm.Maybe[T] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[T] {
		local := rt.GetField(env, o.Ref(), class, name, jni.ClassSig(child)).Ref()
		if local == 0 {
			return jvm.Maybe[T]{}
		}
		return jvm.Some(adopt(o, wrap(rt, local)))
	})
}

// callChild wraps the result of a no-argument method returning child.
func callChild[T jvm.Wrapper](o *jvm.Object, class, method, child string, wrap wrapFunc[T]) jvm.Maybe[T] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) jvm.Maybe[T] {
		local := rt.Invoke(env, o.Ref(), class, method, "()"+jni.ClassSig(child)).Ref()
		if local == 0 {
			return jvm.Maybe[T]{}
		}
		return jvm.Some(adopt(o, wrap(rt, local)))
	})
}

// fieldList projects a java.util.List field. It returns nil for null.
func fieldList[T jvm.Wrapper](o *jvm.Object, class, name string, wrap wrapFunc[T]) *jvm.List[T] {
	rt := o.Runtime()
	return jvm.Scoped(rt, 1, func(env jni.Env) *jvm.List[T] {
		l := jvm.NewList(rt, rt.GetField(env, o.Ref(), class, name, sigList).Ref(), wrap)
		if l == nil {
			return nil
		}
		return adopt(o, l)
	})
}

// elements calls fn for every element of a java.util.Collection.
func elements(rt *jvm.Runtime, env jni.Env, coll jni.Ref, fn func(elem jni.Ref)) {
	if coll == 0 {
		return
	}
	arr := rt.Invoke(env, coll, "java/util/Collection", "toArray", "()[Ljava/lang/Object;").Ref()
	arrayElements(env, arr, fn)
	env.DeleteLocalRef(arr)
}

// arrayElements calls fn for every element of an object array. Each
// element reference is freed after fn returns.
func arrayElements(env jni.Env, arr jni.Ref, fn func(elem jni.Ref)) {
	if arr == 0 {
		return
	}
	n := env.GetArrayLength(arr)
	for i := range n {
		e := env.GetObjectArrayElement(arr, i)
		fn(e)
		env.DeleteLocalRef(e)
	}
}

// enumFrom maps the constant behind ref through names. Unknown constants
// are logged and give fallback.
func enumFrom[E comparable](rt *jvm.Runtime, ref jni.Ref, enum string, names map[string]E, fallback E) E {
	name, ok := jvm.EnumName(rt, ref)
	if !ok {
		return fallback
	}
	if v, ok := names[name]; ok {
		return v
	}
	Logger().Warn("unknown enum constant", zap.String("enum", enum), zap.String("name", name))
	return fallback
}

// enumTo returns the constant called name of class as a local, or null
// for an empty name.
func enumTo(rt *jvm.Runtime, env jni.Env, class, name string) jni.Ref {
	if name == "" {
		return 0
	}
	return rt.EnumConstant(env, class, name)
}

// newHashSet creates an empty java.util.HashSet local.
func newHashSet(rt *jvm.Runtime, env jni.Env) jni.Ref {
	return rt.NewObject(env, "java/util/HashSet", "()V")
}

func addTo(rt *jvm.Runtime, env jni.Env, set, item jni.Ref) {
	rt.Invoke(env, set, "java/util/Collection", "add", "(Ljava/lang/Object;)Z", jni.Object(item))
}

// lowerName turns an enum constant such as CHECK_IN into check-in.
func lowerName(constant string) string {
	return strings.ReplaceAll(strings.ToLower(constant), "_", "-")
}
