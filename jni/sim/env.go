package sim

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/refs"
)

// baseCapacity is the number of locals guaranteed without a pushed frame.
const baseCapacity = 16

var errFrameLimit = errors.New("sim: local frame stack exhausted")

type frame struct {
	handles  []refs.Handle
	capacity int
}

// Env is the call interface of one attached thread.
type Env struct {
	vm      *VM
	locals  *refs.Table
	pending *Object
	name    string
	frames  []frame
	count   refs.Counter
	tid     int
}

var _ jni.Env = (*Env)(nil)

func newEnv(vm *VM, tid int, name string) *Env {
	e := &Env{
		vm:     vm,
		locals: refs.NewTable(),
		name:   name,
		tid:    tid,
		frames: []frame{{capacity: baseCapacity}},
	}
	e.locals.Subscribe(&e.count)
	return e
}

// Name returns the name the thread was attached with.
func (e *Env) Name() string { return e.name }

// VM returns the owning VM.
func (e *Env) VM() *VM { return e.vm }

// LiveLocals returns the number of live local references.
func (e *Env) LiveLocals() int64 { return e.count.Live(kindLocal) }

// FrameDepth returns the number of pushed frames, not counting the base frame.
func (e *Env) FrameDepth() int { return len(e.frames) - 1 }

// Pending returns the pending exception without clearing it.
func (e *Env) Pending() *Object { return e.pending }

func (e *Env) check() {
	if tid := unix.Gettid(); tid != e.tid {
		panic(fmt.Sprintf("sim: env of thread %d (%s) used on thread %d", e.tid, e.name, tid))
	}
}

// Local creates a local reference to o in the current frame.
func (e *Env) Local(o *Object) jni.Ref {
	if o == nil {
		return 0
	}
	h := e.locals.Insert(kindLocal, o)
	top := &e.frames[len(e.frames)-1]
	top.handles = append(top.handles, h)
	if len(top.handles) > top.capacity {
		e.vm.overflows.Add(1)
	}
	return jni.Ref(uintptr(h)<<2 | tagLocal)
}

// Resolve returns the object a reference points at. Stale or foreign
// references panic.
func (e *Env) Resolve(r jni.Ref) *Object {
	if r == 0 {
		return nil
	}
	h := refs.Handle(r >> 2)
	var (
		v  any
		ok bool
	)
	switch r & 3 {
	case tagLocal:
		v, ok = e.locals.GetKind(h, kindLocal)
	case tagGlobal:
		v, ok = e.vm.globals.GetKind(h, kindGlobal)
	}
	if !ok {
		panic(fmt.Sprintf("sim: invalid reference %#x on thread %s", uintptr(r), e.name))
	}
	return v.(*Object)
}

func (e *Env) resolveClass(r jni.Ref) *Class {
	o := e.Resolve(r)
	if o == nil {
		panic("sim: null class reference")
	}
	c := e.vm.classOf(o)
	if c == nil {
		panic(fmt.Sprintf("sim: %s is not a class", o.Class.Name))
	}
	return c
}

// Throw makes a new exception of class pending with the given message.
func (e *Env) Throw(class, msg string) {
	e.pending = e.vm.NewThrowable(class, msg)
}

func (e *Env) FindClass(name string) jni.Ref {
	e.check()
	c, ok := e.vm.Class(name)
	if !ok {
		e.Throw("java/lang/NoClassDefFoundError", strings.ReplaceAll(name, "/", "."))
		return 0
	}
	return e.Local(c.classObject())
}

func (e *Env) GetObjectClass(obj jni.Ref) jni.Ref {
	e.check()
	return e.Local(e.Resolve(obj).Class.classObject())
}

func (e *Env) IsInstanceOf(obj, class jni.Ref) bool {
	e.check()
	o := e.Resolve(obj)
	if o == nil {
		return true
	}
	return o.Class.IsSubclassOf(e.resolveClass(class))
}

func (e *Env) IsSameObject(a, b jni.Ref) bool {
	e.check()
	return e.Resolve(a) == e.Resolve(b)
}

func (e *Env) GetMethodID(class jni.Ref, name, sig string) jni.MethodID {
	e.check()
	c := e.resolveClass(class)
	id, ok := e.vm.methodID(c, name, sig, false)
	if !ok {
		e.Throw("java/lang/NoSuchMethodError", name+sig)
	}
	return id
}

func (e *Env) GetStaticMethodID(class jni.Ref, name, sig string) jni.MethodID {
	e.check()
	c := e.resolveClass(class)
	id, ok := e.vm.methodID(c, name, sig, true)
	if !ok {
		e.Throw("java/lang/NoSuchMethodError", name+sig)
	}
	return id
}

func (e *Env) GetFieldID(class jni.Ref, name, sig string) jni.FieldID {
	e.check()
	c := e.resolveClass(class)
	id, ok := e.vm.fieldID(c, name, sig, false)
	if !ok {
		e.Throw("java/lang/NoSuchFieldError", name)
	}
	return id
}

func (e *Env) GetStaticFieldID(class jni.Ref, name, sig string) jni.FieldID {
	e.check()
	c := e.resolveClass(class)
	id, ok := e.vm.fieldID(c, name, sig, true)
	if !ok {
		e.Throw("java/lang/NoSuchFieldError", name)
	}
	return id
}

func (e *Env) NewObject(class jni.Ref, ctor jni.MethodID, args ...jni.Value) jni.Ref {
	e.check()
	c := e.resolveClass(class)
	m := e.vm.method(ctor)
	if m.name != "<init>" {
		panic("sim: NewObject with non-constructor " + m.name)
	}
	fn, _, ok := c.findMethod(memberKey{m.name, m.sig}, true)
	if !ok {
		panic(fmt.Sprintf("sim: %s has no constructor %s", c.Name, m.sig))
	}
	o := e.vm.alloc(c)
	e.vm.stats.inc(&e.vm.stats.calls, c.SimpleName()+".<init>")
	fn(&Call{Env: e, This: o, Class: c, Args: args, ret: jni.TypeVoid})
	if e.pending != nil {
		return 0
	}
	return e.Local(o)
}

func (e *Env) CallMethod(obj jni.Ref, id jni.MethodID, ret jni.Type, args ...jni.Value) jni.Value {
	e.check()
	m := e.vm.method(id)
	o := e.Resolve(obj)
	if o == nil {
		e.Throw("java/lang/NullPointerException", "invoke "+m.name+" on null")
		return zero(ret)
	}
	fn, _, ok := o.Class.findMethod(memberKey{m.name, m.sig}, true)
	if !ok {
		e.Throw("java/lang/AbstractMethodError", o.Class.Name+"."+m.name+m.sig)
		return zero(ret)
	}
	e.vm.stats.inc(&e.vm.stats.calls, m.class.SimpleName()+"."+m.name)
	return fn(&Call{Env: e, This: o, Class: o.Class, Args: args, ret: ret})
}

func (e *Env) CallStaticMethod(class jni.Ref, id jni.MethodID, ret jni.Type, args ...jni.Value) jni.Value {
	e.check()
	c := e.resolveClass(class)
	m := e.vm.method(id)
	fn, ok := c.findStatic(memberKey{m.name, m.sig})
	if !ok || fn == nil {
		e.Throw("java/lang/AbstractMethodError", c.Name+"."+m.name+m.sig)
		return zero(ret)
	}
	e.vm.stats.inc(&e.vm.stats.calls, m.class.SimpleName()+"."+m.name)
	return fn(&Call{Env: e, Class: c, Args: args, ret: ret})
}

func (e *Env) GetField(obj jni.Ref, id jni.FieldID, typ jni.Type) jni.Value {
	e.check()
	f := e.vm.field(id)
	o := e.Resolve(obj)
	if o == nil {
		e.Throw("java/lang/NullPointerException", "read "+f.name+" of null")
		return zero(typ)
	}
	e.vm.stats.inc(&e.vm.stats.reads, f.class.SimpleName()+"."+f.name)
	return e.toValue(o.Get(f.name), typ)
}

func (e *Env) GetStaticField(class jni.Ref, id jni.FieldID, typ jni.Type) jni.Value {
	e.check()
	c := e.resolveClass(class)
	f := e.vm.field(id)
	sf, ok := c.findStaticField(f.name)
	if !ok {
		e.Throw("java/lang/NoSuchFieldError", f.name)
		return zero(typ)
	}
	e.vm.stats.inc(&e.vm.stats.reads, f.class.SimpleName()+"."+f.name)
	return e.toValue(sf.value, typ)
}

func (e *Env) NewString(s string) jni.Ref {
	e.check()
	return e.Local(e.vm.String(s))
}

func (e *Env) GetStringUTF(str jni.Ref) string {
	e.check()
	o := e.Resolve(str)
	s, ok := o.Native.(string)
	if !ok {
		panic("sim: GetStringUTF on " + o.Class.Name)
	}
	return s
}

func (e *Env) NewByteArray(b []byte) jni.Ref {
	e.check()
	return e.Local(e.vm.NewBytes(b))
}

func (e *Env) NewObjectArray(length int, elem jni.Ref, init jni.Ref) jni.Ref {
	e.check()
	c := e.resolveClass(elem)
	fill := e.Resolve(init)
	items := make([]*Object, length)
	for i := range items {
		items[i] = fill
	}
	return e.Local(e.vm.NewArray(c, items...))
}

func (e *Env) GetArrayLength(arr jni.Ref) int {
	e.check()
	switch v := e.Resolve(arr).Native.(type) {
	case []*Object:
		return len(v)
	case []byte:
		return len(v)
	}
	panic("sim: GetArrayLength on non-array")
}

func (e *Env) GetObjectArrayElement(arr jni.Ref, i int) jni.Ref {
	e.check()
	items := e.Resolve(arr).Native.([]*Object)
	if i < 0 || i >= len(items) {
		e.Throw("java/lang/ArrayIndexOutOfBoundsException", fmt.Sprintf("Index %d out of bounds for length %d", i, len(items)))
		return 0
	}
	return e.Local(items[i])
}

func (e *Env) SetObjectArrayElement(arr jni.Ref, i int, v jni.Ref) {
	e.check()
	items := e.Resolve(arr).Native.([]*Object)
	if i < 0 || i >= len(items) {
		e.Throw("java/lang/ArrayIndexOutOfBoundsException", fmt.Sprintf("Index %d out of bounds for length %d", i, len(items)))
		return
	}
	items[i] = e.Resolve(v)
}

func (e *Env) NewGlobalRef(obj jni.Ref) jni.Ref {
	e.check()
	o := e.Resolve(obj)
	if o == nil {
		return 0
	}
	h := e.vm.globals.Insert(kindGlobal, o)
	return jni.Ref(uintptr(h)<<2 | tagGlobal)
}

func (e *Env) DeleteGlobalRef(obj jni.Ref) {
	e.check()
	if obj == 0 {
		return
	}
	if obj&3 != tagGlobal {
		panic(fmt.Sprintf("sim: DeleteGlobalRef of non-global %#x", uintptr(obj)))
	}
	if _, ok := e.vm.globals.Remove(refs.Handle(obj >> 2)); !ok {
		panic(fmt.Sprintf("sim: DeleteGlobalRef of stale reference %#x", uintptr(obj)))
	}
}

func (e *Env) DeleteLocalRef(obj jni.Ref) {
	e.check()
	if obj == 0 || obj&3 != tagLocal {
		return
	}
	h := refs.Handle(obj >> 2)
	if _, ok := e.locals.Remove(h); !ok {
		return
	}
	for i := len(e.frames) - 1; i >= 0; i-- {
		hs := e.frames[i].handles
		for j := len(hs) - 1; j >= 0; j-- {
			if hs[j] == h {
				e.frames[i].handles = append(hs[:j], hs[j+1:]...)
				return
			}
		}
	}
}

func (e *Env) PushLocalFrame(capacity int) error {
	e.check()
	if capacity < 0 {
		return fmt.Errorf("sim: negative frame capacity %d", capacity)
	}
	if e.vm.maxFrames > 0 && len(e.frames)-1 >= e.vm.maxFrames {
		return errFrameLimit
	}
	e.frames = append(e.frames, frame{capacity: capacity})
	return nil
}

func (e *Env) PopLocalFrame(survivor jni.Ref) jni.Ref {
	e.check()
	if len(e.frames) == 1 {
		panic("sim: PopLocalFrame without PushLocalFrame")
	}
	keep := e.Resolve(survivor)
	top := e.frames[len(e.frames)-1]
	e.frames = e.frames[:len(e.frames)-1]
	for _, h := range top.handles {
		e.locals.Remove(h)
	}
	return e.Local(keep)
}

func (e *Env) ExceptionOccurred() jni.Ref {
	e.check()
	return e.Local(e.pending)
}

func (e *Env) ExceptionClear() {
	e.check()
	e.pending = nil
}

// toValue converts a heap value to a call result of type t.
func (e *Env) toValue(v any, t jni.Type) jni.Value {
	switch t {
	case jni.TypeObject:
		o, _ := v.(*Object)
		return jni.Object(e.Local(o))
	case jni.TypeBoolean:
		b, _ := v.(bool)
		return jni.Bool(b)
	case jni.TypeFloat:
		switch x := v.(type) {
		case float32:
			return jni.Float(x)
		case float64:
			return jni.Float(float32(x))
		}
		return jni.Float(0)
	case jni.TypeDouble:
		switch x := v.(type) {
		case float64:
			return jni.Double(x)
		case float32:
			return jni.Double(float64(x))
		}
		return jni.Double(0)
	case jni.TypeVoid:
		return jni.Void()
	}
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint16:
		n = int64(x)
	}
	switch t {
	case jni.TypeByte:
		return jni.Byte(int8(n))
	case jni.TypeChar:
		return jni.Char(uint16(n))
	case jni.TypeShort:
		return jni.Short(int16(n))
	case jni.TypeInt:
		return jni.Int(int32(n))
	case jni.TypeLong:
		return jni.Long(n)
	}
	panic(fmt.Sprintf("sim: cannot convert %T to %v", v, t))
}

func zero(t jni.Type) jni.Value {
	switch t {
	case jni.TypeObject:
		return jni.Object(0)
	case jni.TypeVoid:
		return jni.Void()
	case jni.TypeDouble:
		return jni.Double(0)
	}
	return jni.FromBits(t, 0)
}
