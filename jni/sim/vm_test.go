package sim

import (
	"runtime"
	"testing"

	"github.com/wippyai/pte-bridge/jni"
)

func attach(t *testing.T, vm *VM) *Env {
	t.Helper()
	runtime.LockOSThread()
	env, err := vm.AttachCurrentThread("test")
	if err != nil {
		runtime.UnlockOSThread()
		t.Fatalf("attach: %v", err)
	}
	t.Cleanup(func() {
		vm.DetachCurrentThread()
		runtime.UnlockOSThread()
	})
	return env.(*Env)
}

func TestEnv_StringRoundTrip(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	for _, s := range []string{"", "Berlin Hbf", "Zürich HB", "東京"} {
		ref := env.NewString(s)
		if got := env.GetStringUTF(ref); got != s {
			t.Errorf("GetStringUTF = %q, want %q", got, s)
		}
		env.DeleteLocalRef(ref)
	}
	if n := env.LiveLocals(); n != 0 {
		t.Errorf("LiveLocals = %d, want 0", n)
	}
}

func TestEnv_FindClassMissing(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	if ref := env.FindClass("does/not/Exist"); ref != 0 {
		t.Fatal("FindClass of unknown class returned a reference")
	}
	exc := env.ExceptionOccurred()
	if exc == 0 {
		t.Fatal("no pending exception")
	}
	if got := env.Resolve(exc).Class.Name; got != "java/lang/NoClassDefFoundError" {
		t.Errorf("exception class = %s", got)
	}
	env.ExceptionClear()
	if env.Pending() != nil {
		t.Error("exception still pending after clear")
	}
}

func TestEnv_VirtualDispatch(t *testing.T) {
	vm := New()
	vm.DefineClass("demo/Base", "").
		Method("name", "()Ljava/lang/String;", func(c *Call) jni.Value {
			return c.Return(c.VM().String("base"))
		}).
		Method("<init>", "()V", func(*Call) jni.Value { return jni.Void() })
	vm.DefineClass("demo/Derived", "demo/Base").
		Method("name", "()Ljava/lang/String;", func(c *Call) jni.Value {
			return c.Return(c.VM().String("derived"))
		})
	env := attach(t, vm)

	base := env.FindClass("demo/Base")
	mid := env.GetMethodID(base, "name", "()Ljava/lang/String;")
	ctor := env.GetMethodID(env.FindClass("demo/Derived"), "<init>", "()V")
	obj := env.NewObject(env.FindClass("demo/Derived"), ctor)

	got := env.GetStringUTF(env.CallMethod(obj, mid, jni.TypeObject).Ref())
	if got != "derived" {
		t.Errorf("name() = %q, want derived", got)
	}
	if !env.IsInstanceOf(obj, base) {
		t.Error("Derived should be an instance of Base")
	}
	if vm.Calls("Base.name") != 1 {
		t.Errorf("Calls(Base.name) = %d, want 1", vm.Calls("Base.name"))
	}
}

func TestEnv_CallOnNull(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	mid := env.GetMethodID(env.FindClass("java/lang/Object"), "hashCode", "()I")
	env.CallMethod(0, mid, jni.TypeInt)
	if got := env.Pending(); got == nil || got.Class.Name != "java/lang/NullPointerException" {
		t.Fatalf("pending = %v, want NullPointerException", got)
	}
	env.ExceptionClear()
}

func TestEnv_Frames(t *testing.T) {
	tests := []struct {
		name     string
		locals   int
		survivor bool
		want     int64
	}{
		{"empty", 0, false, 0},
		{"discard all", 5, false, 0},
		{"keep one", 5, true, 1},
		{"overflow", 40, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := New()
			env := attach(t, vm)
			before := env.LiveLocals()

			if err := env.PushLocalFrame(16); err != nil {
				t.Fatalf("PushLocalFrame: %v", err)
			}
			var last jni.Ref
			for i := 0; i < tt.locals; i++ {
				last = env.NewString("x")
			}
			if !tt.survivor {
				last = 0
			}
			kept := env.PopLocalFrame(last)

			if got := env.LiveLocals() - before; got != tt.want {
				t.Errorf("live locals delta = %d, want %d", got, tt.want)
			}
			if tt.survivor && env.GetStringUTF(kept) != "x" {
				t.Error("survivor not readable after pop")
			}
			if env.FrameDepth() != 0 {
				t.Errorf("FrameDepth = %d", env.FrameDepth())
			}
		})
	}
}

func TestEnv_FrameLimit(t *testing.T) {
	vm := New(WithMaxFrames(2))
	env := attach(t, vm)

	if err := env.PushLocalFrame(1); err != nil {
		t.Fatal(err)
	}
	if err := env.PushLocalFrame(1); err != nil {
		t.Fatal(err)
	}
	if err := env.PushLocalFrame(1); err == nil {
		t.Error("third push should fail")
	}
	env.PopLocalFrame(0)
	env.PopLocalFrame(0)
}

func TestEnv_StaleReferencePanics(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	if err := env.PushLocalFrame(4); err != nil {
		t.Fatal(err)
	}
	ref := env.NewString("gone")
	env.PopLocalFrame(0)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on stale reference")
		}
	}()
	env.GetStringUTF(ref)
}

func TestEnv_GlobalRefs(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	local := env.NewString("kept")
	global := env.NewGlobalRef(local)
	env.DeleteLocalRef(local)

	if vm.LiveGlobals() != 1 {
		t.Errorf("LiveGlobals = %d, want 1", vm.LiveGlobals())
	}
	if got := env.GetStringUTF(global); got != "kept" {
		t.Errorf("global = %q", got)
	}
	env.DeleteGlobalRef(global)
	if vm.LiveGlobals() != 0 {
		t.Errorf("LiveGlobals = %d after delete", vm.LiveGlobals())
	}
}

func TestEnv_StaticFieldsAndEnums(t *testing.T) {
	vm := New()
	vm.DefineEnum("demo/Color", "RED", "GREEN")
	env := attach(t, vm)

	cls := env.FindClass("demo/Color")
	fid := env.GetStaticFieldID(cls, "GREEN", "Ldemo/Color;")
	green := env.GetStaticField(cls, fid, jni.TypeObject).Ref()

	enum := env.FindClass("java/lang/Enum")
	name := env.GetMethodID(enum, "name", "()Ljava/lang/String;")
	ordinal := env.GetMethodID(enum, "ordinal", "()I")

	if got := env.GetStringUTF(env.CallMethod(green, name, jni.TypeObject).Ref()); got != "GREEN" {
		t.Errorf("name() = %q", got)
	}
	if got := env.CallMethod(green, ordinal, jni.TypeInt).Int(); got != 1 {
		t.Errorf("ordinal() = %d", got)
	}
	if vm.FieldReads("Color.GREEN") != 1 {
		t.Errorf("FieldReads = %d", vm.FieldReads("Color.GREEN"))
	}
}

func TestEnv_MissingMembers(t *testing.T) {
	vm := New()
	env := attach(t, vm)
	obj := env.FindClass("java/lang/Object")

	tests := []struct {
		name string
		call func()
		want string
	}{
		{"method", func() { env.GetMethodID(obj, "nope", "()V") }, "java/lang/NoSuchMethodError"},
		{"static", func() { env.GetStaticMethodID(obj, "nope", "()V") }, "java/lang/NoSuchMethodError"},
		{"field", func() { env.GetFieldID(obj, "nope", "I") }, "java/lang/NoSuchFieldError"},
	}

	for _, tt := range tests {
		tt.call()
		p := env.Pending()
		if p == nil || p.Class.Name != tt.want {
			t.Errorf("%s: pending = %v, want %s", tt.name, p, tt.want)
		}
		env.ExceptionClear()
	}
}

func TestVM_AttachDetach(t *testing.T) {
	vm := New()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if _, ok := vm.GetEnv(); ok {
		t.Fatal("GetEnv should fail before attach")
	}
	a, err := vm.AttachCurrentThread("one")
	if err != nil {
		t.Fatal(err)
	}
	b, err := vm.AttachCurrentThread("two")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("re-attach should reuse the env")
	}
	if err := vm.DetachCurrentThread(); err != nil {
		t.Fatal(err)
	}
	if err := vm.DetachCurrentThread(); err != ErrNotAttached {
		t.Errorf("second detach = %v, want ErrNotAttached", err)
	}

	vm.FailAttach(true)
	if _, err := vm.AttachCurrentThread("x"); err != ErrAttachDenied {
		t.Errorf("attach = %v, want ErrAttachDenied", err)
	}
}

func TestEnv_WrongThreadPanics(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	done := make(chan any)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer func() { done <- recover() }()
		env.NewString("x")
	}()
	if <-done == nil {
		t.Error("using an env from another thread should panic")
	}
}

func runtimeLock(t *testing.T) {
	t.Helper()
	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)
}
