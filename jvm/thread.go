package jvm

import (
	goruntime "runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
)

// ThreadGuard keeps the calling OS thread attached to the VM. The
// goroutine that created it stays locked to its thread until the last
// Unref, which must run on that same goroutine.
type ThreadGuard struct {
	rt   *Runtime
	env  jni.Env
	name string
	refs atomic.Int32
	owns bool
}

// AttachThread attaches the calling thread under name. A thread that is
// already attached gets a guard that never detaches it.
func (r *Runtime) AttachThread(name string) (*ThreadGuard, error) {
	goruntime.LockOSThread()
	g := &ThreadGuard{rt: r, name: name}
	if env, ok := r.vm.GetEnv(); ok {
		g.env = env
	} else {
		env, err := r.vm.AttachCurrentThread(name)
		if err != nil {
			goruntime.UnlockOSThread()
			return nil, errors.JvmThreading(err)
		}
		g.env = env
		g.owns = true
		r.logger.Debug("thread attached", zap.String("thread", name))
	}
	g.refs.Store(1)
	r.Ref()
	return g, nil
}

// Env returns the attached thread's interface.
func (g *ThreadGuard) Env() jni.Env { return g.env }

// Ref takes a reference.
func (g *ThreadGuard) Ref() *ThreadGuard {
	g.refs.Add(1)
	return g
}

// Unref drops a reference. The last one detaches the thread if the
// guard attached it. Detach failures are logged and otherwise ignored.
func (g *ThreadGuard) Unref() {
	if g.refs.Add(-1) != 0 {
		return
	}
	if g.owns {
		if err := g.rt.vm.DetachCurrentThread(); err != nil {
			g.rt.logger.Error("unable to detach thread", zap.String("thread", g.name), zap.Error(err))
		} else {
			g.rt.logger.Debug("thread detached", zap.String("thread", g.name))
		}
	}
	g.rt.Unref()
	goruntime.UnlockOSThread()
}

// Ping keeps the guard reachable up to this point.
func (g *ThreadGuard) Ping() {
	goruntime.KeepAlive(g)
}
