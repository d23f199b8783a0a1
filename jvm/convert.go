package jvm

import (
	"time"

	"github.com/wippyai/pte-bridge/jni"
)

// GoString copies a java.lang.String. It reports false for null.
func GoString(env jni.Env, ref jni.Ref) (string, bool) {
	if ref == 0 {
		return "", false
	}
	return env.GetStringUTF(ref), true
}

// JavaString creates a java.lang.String local.
func JavaString(env jni.Env, s string) jni.Ref {
	return env.NewString(s)
}

// TimeFromDate reads a java.util.Date as UTC. It reports false for null.
func TimeFromDate(r *Runtime, ref jni.Ref) (time.Time, bool) {
	if ref == 0 {
		return time.Time{}, false
	}
	return Scoped(r, 1, func(env jni.Env) time.Time {
		ms := r.Invoke(env, ref, "java/util/Date", "getTime", "()J").Long()
		return time.UnixMilli(ms).UTC()
	}), true
}

// DateFromTime creates a java.util.Date local. The zero time maps to null.
func DateFromTime(r *Runtime, env jni.Env, t time.Time) jni.Ref {
	if t.IsZero() {
		return 0
	}
	return r.NewObject(env, "java/util/Date", "(J)V", jni.Long(t.UnixMilli()))
}

// BoxedInt unboxes a java.lang.Integer. It reports false for null.
func BoxedInt(r *Runtime, ref jni.Ref) (int32, bool) {
	if ref == 0 {
		return 0, false
	}
	return Scoped(r, 1, func(env jni.Env) int32 {
		return r.Invoke(env, ref, "java/lang/Integer", "intValue", "()I").Int()
	}), true
}

// BoxedLong unboxes a java.lang.Long. It reports false for null.
func BoxedLong(r *Runtime, ref jni.Ref) (int64, bool) {
	if ref == 0 {
		return 0, false
	}
	return Scoped(r, 1, func(env jni.Env) int64 {
		return r.Invoke(env, ref, "java/lang/Long", "longValue", "()J").Long()
	}), true
}

// EnumName returns the constant name of an enum value. It reports false
// for null.
func EnumName(r *Runtime, ref jni.Ref) (string, bool) {
	if ref == 0 {
		return "", false
	}
	return Scoped(r, 2, func(env jni.Env) string {
		s, _ := GoString(env, r.Invoke(env, ref, "java/lang/Enum", "name", "()Ljava/lang/String;").Ref())
		return s
	}), true
}
