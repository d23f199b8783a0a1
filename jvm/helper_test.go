package jvm

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/sim"
)

// definePoint registers demo/Point, a value class comparing by x and y.
func definePoint(vm *sim.VM) {
	vm.DefineClass("demo/Point", "").
		Field("x", "I").
		Field("y", "I").
		Method("<init>", "(II)V", func(c *sim.Call) jni.Value {
			c.This.Set("x", c.Args[0].Int())
			c.This.Set("y", c.Args[1].Int())
			return jni.Void()
		}).
		Method("equals", "(Ljava/lang/Object;)Z", func(c *sim.Call) jni.Value {
			o := c.Object(0)
			return jni.Bool(o != nil && o.Class == c.This.Class &&
				o.Get("x") == c.This.Get("x") && o.Get("y") == c.This.Get("y"))
		}).
		Method("hashCode", "()I", func(c *sim.Call) jni.Value {
			return jni.Int(c.This.Get("x").(int32)*31 + c.This.Get("y").(int32))
		})
}

type fixture struct {
	rt   *Runtime
	vm   *sim.VM
	logs *observer.ObservedLogs
}

// boot creates a runtime over the simulated VM and destroys it when the
// test ends.
func boot(t *testing.T, setup func(*sim.VM), opts ...Option) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := sim.NewLauncher(func(vm *sim.VM) {
		definePoint(vm)
		if setup != nil {
			setup(vm)
		}
	})
	opts = append([]Option{WithClassPath("/dev/null"), WithDebug(""), WithLogger(zap.New(core))}, opts...)
	rt, err := New(context.Background(), l, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(rt.Unref)
	return &fixture{rt: rt, vm: l.VM(), logs: logs}
}

func (f *fixture) env() *sim.Env {
	return f.rt.Env().(*sim.Env)
}

func (f *fixture) point(x, y int32) jni.Ref {
	env := f.rt.Env()
	return f.rt.NewObject(env, "demo/Point", "(II)V", jni.Int(x), jni.Int(y))
}

// onThread runs fn on a fresh goroutine and waits for it.
func onThread(fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}
