//go:build jni && cgo

// Package native implements jni.Launcher, jni.VM and jni.Env on top of a
// real libjvm through cgo.
//
// Build with -tags jni. The default include and library paths point at
// /usr/lib/jvm/default-java; set CGO_CFLAGS and CGO_LDFLAGS for other
// JDK locations. libjvm.so must be resolvable at run time, usually via
// LD_LIBRARY_PATH or an rpath.
package native
