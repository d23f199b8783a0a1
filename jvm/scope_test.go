package jvm

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/sim"
)

func TestScope_FrameHygiene(t *testing.T) {
	f := boot(t, nil)
	env := f.env()
	before := env.LiveLocals()

	// Nested frames with a survivor promoted out of the inner one.
	outer := f.rt.Enter(4)
	for i := 0; i < 3; i++ {
		f.point(int32(i), 0)
	}
	kept := ScopedRef(f.rt, 4, func(env jni.Env) jni.Ref {
		env.NewString("a")
		env.NewString("b")
		return env.NewString("kept")
	})
	if got := env.GetStringUTF(kept); got != "kept" {
		t.Errorf("survivor = %q", got)
	}
	outer.Leave()
	outer.Leave()

	if got := env.LiveLocals(); got != before {
		t.Errorf("live locals = %d, want %d", got, before)
	}
	if env.FrameDepth() != 0 {
		t.Errorf("frame depth = %d", env.FrameDepth())
	}
}

func TestScope_LeaveWithPromotesOne(t *testing.T) {
	f := boot(t, nil)
	env := f.env()
	before := env.LiveLocals()

	sc := f.rt.Enter(2)
	f.point(1, 1)
	p := sc.LeaveWith(f.point(2, 2))
	if p == 0 {
		t.Fatal("survivor lost")
	}
	if got := env.LiveLocals() - before; got != 1 {
		t.Errorf("live locals delta = %d, want 1", got)
	}
	env.DeleteLocalRef(p)
}

func TestScoped_PopsOnPanic(t *testing.T) {
	f := boot(t, nil)
	env := f.env()

	func() {
		defer func() { recover() }()
		Scoped(f.rt, 1, func(env jni.Env) int {
			env.NewString("x")
			panic("boom")
		})
	}()
	if env.FrameDepth() != 0 || env.LiveLocals() != 0 {
		t.Errorf("depth %d, live %d after panic", env.FrameDepth(), env.LiveLocals())
	}
}

func TestEnter_Unattached(t *testing.T) {
	f := boot(t, nil)

	var got any
	onThread(func() {
		defer func() { got = recover() }()
		f.rt.Enter(1)
	})
	err, ok := got.(error)
	if !ok || !stderrors.Is(err, errors.JvmThreading(nil)) {
		t.Errorf("panic = %v, want jvm-threading error", got)
	}
}

func TestEnter_FrameExhaustion(t *testing.T) {
	l := sim.NewLauncher(nil, sim.WithMaxFrames(1))
	rt, err := New(t.Context(), l, WithClassPath("/dev/null"))
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Unref()

	outer := rt.Enter(1)
	defer outer.Leave()
	defer func() {
		if recover() == nil {
			t.Error("expected panic when frames are exhausted")
		}
	}()
	rt.Enter(1)
}
