// Package jvm embeds a Java virtual machine and bridges its objects into Go.
//
// A process owns at most one Runtime. The goroutine that calls New is
// locked to its OS thread, which becomes the primary thread. Any other
// goroutine that calls into the VM must hold a ThreadGuard from
// AttachThread for the duration of its calls.
//
// Foreign calls run inside a Scope, a pushed local reference frame that
// frees every local reference created within it:
//
//	name := jvm.Scoped(rt, 2, func(env jni.Env) string {
//		s, _ := jvm.GoString(env, rt.Invoke(env, ref, "java/lang/Object", "toString", "()Ljava/lang/String;").Ref())
//		return s
//	})
//
// Object wraps a global reference with reference counting. Domain types
// embed it and cache field reads with Lazy, since the wrapped objects
// are immutable. List projects a java.util.List with a per-index cache
// and splice notifications.
//
// Pending exceptions are turned into errors by CheckException.
package jvm
