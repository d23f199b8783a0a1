package sim

import (
	"testing"
	"time"

	"github.com/wippyai/pte-bridge/jni"
)

func TestArrayList_AddAll(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	a, b, c := vm.String("a"), vm.String("b"), vm.String("c")
	list := env.Local(vm.NewList(a))
	more := env.Local(vm.NewList(b, c))

	cls := env.FindClass("java/util/List")
	addAt := env.GetMethodID(cls, "addAll", "(ILjava/util/Collection;)Z")
	add := env.GetMethodID(cls, "addAll", "(Ljava/util/Collection;)Z")
	size := env.GetMethodID(cls, "size", "()I")
	get := env.GetMethodID(cls, "get", "(I)Ljava/lang/Object;")

	env.CallMethod(list, addAt, jni.TypeBoolean, jni.Int(0), jni.Object(more))
	env.CallMethod(list, add, jni.TypeBoolean, jni.Object(more))

	if n := env.CallMethod(list, size, jni.TypeInt).Int(); n != 5 {
		t.Fatalf("size = %d, want 5", n)
	}
	want := []*Object{b, c, a, b, c}
	for i, w := range want {
		got := env.Resolve(env.CallMethod(list, get, jni.TypeObject, jni.Int(int32(i))).Ref())
		if got != w {
			t.Errorf("get(%d) = %v, want %v", i, got, w)
		}
	}

	env.CallMethod(list, get, jni.TypeObject, jni.Int(9))
	if p := env.Pending(); p == nil || p.Class.Name != "java/lang/IndexOutOfBoundsException" {
		t.Errorf("pending = %v", p)
	}
	env.ExceptionClear()
}

func TestHashSet_Identity(t *testing.T) {
	vm := New()
	x := vm.String("x")
	set := vm.NewSet(x, x, vm.String("x"))
	if n := len(Items(set)); n != 2 {
		t.Errorf("set size = %d, want 2", n)
	}
}

func TestObject_EqualsHashCode(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	obj := env.FindClass("java/lang/Object")
	equals := env.GetMethodID(obj, "equals", "(Ljava/lang/Object;)Z")
	hash := env.GetMethodID(obj, "hashCode", "()I")

	tests := []struct {
		name  string
		a, b  *Object
		equal bool
	}{
		{"same string", vm.String("Berlin"), vm.String("Berlin"), true},
		{"different string", vm.String("Berlin"), vm.String("Bonn"), false},
		{"same date", vm.Date(time.UnixMilli(1000)), vm.Date(time.UnixMilli(1000)), true},
		{"distinct objects", vm.MustClass("java/lang/Object").New(nil), vm.MustClass("java/lang/Object").New(nil), false},
		{"boxed int", vm.Integer(7), vm.Integer(7), true},
	}

	// The env is bound to this goroutine's thread, so no subtests.
	for _, tt := range tests {
		a, b := env.Local(tt.a), env.Local(tt.b)
		if got := env.CallMethod(a, equals, jni.TypeBoolean, jni.Object(b)).Bool(); got != tt.equal {
			t.Errorf("%s: equals = %v, want %v", tt.name, got, tt.equal)
		}
		if tt.equal {
			ha := env.CallMethod(a, hash, jni.TypeInt).Int()
			hb := env.CallMethod(b, hash, jni.TypeInt).Int()
			if ha != hb {
				t.Errorf("%s: hashCode differs for equal objects: %d != %d", tt.name, ha, hb)
			}
		}
	}
}

func TestJavaHash(t *testing.T) {
	tests := []struct {
		in   string
		want int32
	}{
		{"", 0},
		{"a", 97},
		{"hello", 99162322},
		{"Berlin", 1986302914},
	}
	for _, tt := range tests {
		if got := javaHash(tt.in); got != tt.want {
			t.Errorf("javaHash(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestThrowable_Message(t *testing.T) {
	vm := New()
	env := attach(t, vm)

	env.Throw("java/net/SocketTimeoutException", "timed out")
	exc := env.ExceptionOccurred()
	env.ExceptionClear()

	msg := env.GetMethodID(env.FindClass("java/lang/Throwable"), "getMessage", "()Ljava/lang/String;")
	if got := env.GetStringUTF(env.CallMethod(exc, msg, jni.TypeObject).Ref()); got != "timed out" {
		t.Errorf("getMessage = %q", got)
	}
	if !env.IsInstanceOf(exc, env.FindClass("java/io/IOException")) {
		t.Error("SocketTimeoutException should be an IOException")
	}

	getClass := env.GetMethodID(env.FindClass("java/lang/Object"), "getClass", "()Ljava/lang/Class;")
	getName := env.GetMethodID(env.FindClass("java/lang/Class"), "getName", "()Ljava/lang/String;")
	cls := env.CallMethod(exc, getClass, jni.TypeObject).Ref()
	if got := env.GetStringUTF(env.CallMethod(cls, getName, jni.TypeObject).Ref()); got != "java.net.SocketTimeoutException" {
		t.Errorf("class name = %q", got)
	}
}

func TestLauncher(t *testing.T) {
	var ran bool
	l := NewLauncher(func(vm *VM) { ran = true })
	runtimeLock(t)

	vm, env, err := l.Launch(jni.InitArgs{Version: jni.Version21, Options: []string{"-Xint"}})
	if err != nil {
		t.Fatal(err)
	}
	defer vm.Destroy()
	if !ran {
		t.Error("setup not run")
	}
	if env.(*Env).Name() != "main" {
		t.Errorf("primary thread name = %q", env.(*Env).Name())
	}
	if got := l.Args().Options; len(got) != 1 || got[0] != "-Xint" {
		t.Errorf("Args = %v", got)
	}
}
