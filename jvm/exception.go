package jvm

import (
	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
)

// CheckException converts a pending exception into an error and clears
// it. Instances of java.io.IOException become io-exception errors, every
// other throwable becomes unhandled-exception. It returns nil when
// nothing is pending.
func (r *Runtime) CheckException() error {
	sc := r.Enter(5)
	defer sc.Leave()
	env := sc.Env()

	exc := env.ExceptionOccurred()
	if exc == 0 {
		return nil
	}
	env.ExceptionClear()

	var msg, name string
	text := r.Invoke(env, exc, "java/lang/Throwable", "getMessage", "()Ljava/lang/String;").Ref()
	if !r.dropNested(env, "getMessage") {
		msg, _ = GoString(env, text)
	}
	cls := r.Invoke(env, exc, "java/lang/Object", "getClass", "()Ljava/lang/Class;").Ref()
	if !r.dropNested(env, "getClass") && cls != 0 {
		text = r.Invoke(env, cls, "java/lang/Class", "getName", "()Ljava/lang/String;").Ref()
		if !r.dropNested(env, "getName") {
			name, _ = GoString(env, text)
		}
	}

	if env.IsInstanceOf(exc, r.Class(env, "java/io/IOException")) {
		return errors.IOException(name, msg)
	}
	return errors.UnhandledException(name, msg)
}

// dropNested clears an exception thrown while describing another one.
func (r *Runtime) dropNested(env jni.Env, step string) bool {
	if env.ExceptionOccurred() == 0 {
		return false
	}
	env.ExceptionClear()
	r.logger.Warn("exception while reading exception", zap.String("call", step))
	return true
}
