package jvm

import (
	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
)

// Scope is a pushed local reference frame. Every local reference created
// while it is open is freed by Leave.
//
//	sc := rt.Enter(4)
//	defer sc.Leave()
type Scope struct {
	env  jni.Env
	done bool
}

// Enter pushes a frame sized for capacity locals. It panics if the
// thread is not attached or the frame cannot be pushed.
func (r *Runtime) Enter(capacity int) *Scope {
	env := r.mustEnv()
	if err := env.PushLocalFrame(capacity); err != nil {
		r.logger.DPanic("out of stack memory", zap.Int("capacity", capacity), zap.Error(err))
		panic(errors.New(errors.DomainJava, errors.KindJvmThreading).
			Detail("out of stack memory").
			Cause(err).
			Build())
	}
	return &Scope{env: env}
}

// Env returns the interface the frame was pushed on.
func (s *Scope) Env() jni.Env { return s.env }

// Leave pops the frame. Later calls do nothing.
func (s *Scope) Leave() {
	if s.done {
		return
	}
	s.done = true
	s.env.PopLocalFrame(0)
}

// LeaveWith pops the frame and returns ref as a local of the enclosing
// frame.
func (s *Scope) LeaveWith(ref jni.Ref) jni.Ref {
	if s.done {
		panic("jvm: scope already left")
	}
	s.done = true
	return s.env.PopLocalFrame(ref)
}

// Scoped runs fn inside a frame of the given capacity.
func Scoped[T any](r *Runtime, capacity int, fn func(env jni.Env) T) T {
	sc := r.Enter(capacity)
	defer sc.Leave()
	return fn(sc.env)
}

// ScopedRef runs fn inside a frame and carries the reference it returns
// out of the frame.
func ScopedRef(r *Runtime, capacity int, fn func(env jni.Env) jni.Ref) jni.Ref {
	sc := r.Enter(capacity)
	defer sc.Leave()
	return sc.LeaveWith(fn(sc.env))
}
