package jvm

import (
	"testing"
	"time"

	"github.com/wippyai/pte-bridge/jni"
)

func TestObject_SameAndEqual(t *testing.T) {
	f := boot(t, nil)

	local := f.point(1, 2)
	a := Wrap(f.rt, local)
	b := Wrap(f.rt, local)
	c := Wrap(f.rt, f.point(1, 2))
	d := Wrap(f.rt, f.point(3, 4))
	defer func() {
		for _, o := range []*Object{a, b, c, d} {
			o.Release()
		}
	}()

	tests := []struct {
		name        string
		x, y        *Object
		same, equal bool
	}{
		{"same wrapper", a, a, true, true},
		{"same foreign object", a, b, true, true},
		{"equal distinct objects", a, c, false, true},
		{"different values", a, d, false, false},
	}
	for _, tt := range tests {
		if got := Same(tt.x, tt.y); got != tt.same {
			t.Errorf("%s: Same = %v, want %v", tt.name, got, tt.same)
		}
		if got := Equal(tt.x, tt.y); got != tt.equal {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.equal)
		}
	}
	if a.Hash() != c.Hash() {
		t.Error("equal objects must hash alike")
	}
}

func TestObject_HashIsUnsigned(t *testing.T) {
	f := boot(t, nil)
	o := Wrap(f.rt, f.point(-1, 0))
	defer o.Release()

	if got, want := o.Hash(), uint32(0xffffffe1); got != want {
		t.Errorf("Hash = %#x, want %#x", got, want)
	}
	o.Hash()
	if n := f.vm.Calls("Object.hashCode"); n != 1 {
		t.Errorf("hashCode called %d times, want 1", n)
	}
}

func TestObject_ReleaseOrder(t *testing.T) {
	f := boot(t, nil)
	f.point(0, 0)
	globals := f.vm.LiveGlobals()

	o := Wrap(f.rt, f.point(0, 0))
	child := Wrap(f.rt, f.point(1, 1))
	var order []string
	o.OnDispose(func() {
		order = append(order, "child")
		child.Release()
	})
	o.OnDispose(func() {
		if f.vm.LiveGlobals() != globals+2 {
			t.Error("global reference deleted before disposers ran")
		}
		order = append(order, "last")
	})

	o.Retain()
	o.Release()
	if len(order) != 0 {
		t.Fatal("disposed while retained")
	}
	o.Release()

	if len(order) != 2 || order[0] != "last" || order[1] != "child" {
		t.Errorf("disposer order = %v", order)
	}
	if got := f.vm.LiveGlobals(); got != globals {
		t.Errorf("live globals = %d, want %d", got, globals)
	}
}

func TestObject_ReleaseOnDetachedThread(t *testing.T) {
	f := boot(t, nil)
	local := f.point(5, 5)
	globals := f.vm.LiveGlobals()
	o := Wrap(f.rt, local)

	onThread(o.Release)
	if got := f.vm.LiveGlobals(); got != globals {
		t.Errorf("live globals = %d, want %d", got, globals)
	}
}

func TestWrap_NilCases(t *testing.T) {
	f := boot(t, nil)
	if Wrap(f.rt, 0) != nil {
		t.Error("null reference should wrap to nil")
	}
	if Wrap(nil, f.point(0, 0)) != nil {
		t.Error("nil runtime should wrap to nil")
	}
	var o *Object
	o.Release()
}

func TestLazy_FetchesOnce(t *testing.T) {
	var l Lazy[string]
	calls := 0
	fetch := func() string {
		calls++
		return ""
	}
	if _, ok := l.Peek(); ok {
		t.Error("Peek before Get should be empty")
	}
	l.Get(fetch)
	l.Get(fetch)
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
	if _, ok := l.Peek(); !ok {
		t.Error("absent value should still count as fetched")
	}
}

func TestLazy_Concurrent(t *testing.T) {
	var l Lazy[int]
	var calls int
	done := make(chan int)
	for i := 0; i < 8; i++ {
		go func() {
			done <- l.Get(func() int {
				calls++
				time.Sleep(time.Millisecond)
				return 42
			})
		}()
	}
	for i := 0; i < 8; i++ {
		if v := <-done; v != 42 {
			t.Errorf("Get = %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times", calls)
	}
}

func TestConversions(t *testing.T) {
	f := boot(t, nil)
	env := f.rt.Env()

	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got, ok := TimeFromDate(f.rt, DateFromTime(f.rt, env, when))
	if !ok || !got.Equal(when) {
		t.Errorf("date round trip = %v, %v", got, ok)
	}
	if DateFromTime(f.rt, env, time.Time{}) != 0 {
		t.Error("zero time should map to null")
	}
	if _, ok := TimeFromDate(f.rt, 0); ok {
		t.Error("null date should be absent")
	}

	boxed := f.rt.InvokeStatic(env, "java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;", jni.Int(-7)).Ref()
	if v, ok := BoxedInt(f.rt, boxed); !ok || v != -7 {
		t.Errorf("BoxedInt = %d, %v", v, ok)
	}
	long := f.rt.InvokeStatic(env, "java/lang/Long", "valueOf", "(J)Ljava/lang/Long;", jni.Long(90000)).Ref()
	if v, ok := BoxedLong(f.rt, long); !ok || v != 90000 {
		t.Errorf("BoxedLong = %d, %v", v, ok)
	}

	f.vm.DefineEnum("demo/Mode", "FAST", "SLOW")
	slow := f.rt.EnumConstant(env, "demo/Mode", "SLOW")
	if name, ok := EnumName(f.rt, slow); !ok || name != "SLOW" {
		t.Errorf("EnumName = %q, %v", name, ok)
	}

	if s, ok := GoString(env, JavaString(env, "Alexanderplatz")); !ok || s != "Alexanderplatz" {
		t.Errorf("GoString = %q, %v", s, ok)
	}
}
