package jvm

import (
	"fmt"
	"sync"

	"github.com/wippyai/pte-bridge/jni"
)

// Method is a resolved method with the result type of its descriptor.
type Method struct {
	ID  jni.MethodID
	Ret jni.Type
}

// Field is a resolved field with the type of its descriptor.
type Field struct {
	ID   jni.FieldID
	Type jni.Type
}

type memberKey struct {
	class, name, sig string
	static           bool
}

// lookups caches classes as global references and member IDs per
// runtime. IDs stay valid while their class is loaded, which the cached
// global reference guarantees.
type lookups struct {
	classes map[string]jni.Ref
	methods map[memberKey]Method
	fields  map[memberKey]Field
	mu      sync.RWMutex
}

func newLookups() *lookups {
	return &lookups{
		classes: make(map[string]jni.Ref),
		methods: make(map[memberKey]Method),
		fields:  make(map[memberKey]Field),
	}
}

// Class returns a global reference to the named class. A missing class
// panics.
func (r *Runtime) Class(env jni.Env, name string) jni.Ref {
	l := r.lookups
	l.mu.RLock()
	c, ok := l.classes[name]
	l.mu.RUnlock()
	if ok {
		return c
	}

	local := env.FindClass(name)
	if local == 0 {
		env.ExceptionClear()
		panic(fmt.Sprintf("jvm: couldn't find class %s", name))
	}
	global := env.NewGlobalRef(local)
	env.DeleteLocalRef(local)

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.classes[name]; ok {
		env.DeleteGlobalRef(global)
		return c
	}
	l.classes[name] = global
	return global
}

func (r *Runtime) method(env jni.Env, k memberKey) Method {
	l := r.lookups
	l.mu.RLock()
	m, ok := l.methods[k]
	l.mu.RUnlock()
	if ok {
		return m
	}

	_, ret, err := jni.MethodType(k.sig)
	if err != nil {
		panic(fmt.Sprintf("jvm: method %s.%s: %v", k.class, k.name, err))
	}
	cls := r.Class(env, k.class)
	var id jni.MethodID
	if k.static {
		id = env.GetStaticMethodID(cls, k.name, k.sig)
	} else {
		id = env.GetMethodID(cls, k.name, k.sig)
	}
	if id == 0 {
		env.ExceptionClear()
		panic(fmt.Sprintf("jvm: couldn't get method %q with signature %s in %s", k.name, k.sig, k.class))
	}
	m = Method{ID: id, Ret: ret}

	l.mu.Lock()
	l.methods[k] = m
	l.mu.Unlock()
	return m
}

func (r *Runtime) field(env jni.Env, k memberKey) Field {
	l := r.lookups
	l.mu.RLock()
	f, ok := l.fields[k]
	l.mu.RUnlock()
	if ok {
		return f
	}

	typ, err := jni.FieldType(k.sig)
	if err != nil {
		panic(fmt.Sprintf("jvm: field %s.%s: %v", k.class, k.name, err))
	}
	cls := r.Class(env, k.class)
	var id jni.FieldID
	if k.static {
		id = env.GetStaticFieldID(cls, k.name, k.sig)
	} else {
		id = env.GetFieldID(cls, k.name, k.sig)
	}
	if id == 0 {
		env.ExceptionClear()
		panic(fmt.Sprintf("jvm: couldn't get field %q with signature %s in %s", k.name, k.sig, k.class))
	}
	f = Field{ID: id, Type: typ}

	l.mu.Lock()
	l.fields[k] = f
	l.mu.Unlock()
	return f
}

// Method resolves an instance method of class.
func (r *Runtime) Method(env jni.Env, class, name, sig string) Method {
	return r.method(env, memberKey{class: class, name: name, sig: sig})
}

// StaticMethod resolves a static method of class.
func (r *Runtime) StaticMethod(env jni.Env, class, name, sig string) Method {
	return r.method(env, memberKey{class: class, name: name, sig: sig, static: true})
}

// Field resolves an instance field of class.
func (r *Runtime) Field(env jni.Env, class, name, sig string) Field {
	return r.field(env, memberKey{class: class, name: name, sig: sig})
}

// StaticField resolves a static field of class.
func (r *Runtime) StaticField(env jni.Env, class, name, sig string) Field {
	return r.field(env, memberKey{class: class, name: name, sig: sig, static: true})
}

// Invoke calls an instance method declared on class. Check for pending
// exceptions afterwards when the method may throw.
func (r *Runtime) Invoke(env jni.Env, obj jni.Ref, class, name, sig string, args ...jni.Value) jni.Value {
	m := r.Method(env, class, name, sig)
	return env.CallMethod(obj, m.ID, m.Ret, args...)
}

// InvokeStatic calls a static method of class.
func (r *Runtime) InvokeStatic(env jni.Env, class, name, sig string, args ...jni.Value) jni.Value {
	m := r.StaticMethod(env, class, name, sig)
	return env.CallStaticMethod(r.Class(env, class), m.ID, m.Ret, args...)
}

// GetField reads an instance field declared on class.
func (r *Runtime) GetField(env jni.Env, obj jni.Ref, class, name, sig string) jni.Value {
	f := r.Field(env, class, name, sig)
	return env.GetField(obj, f.ID, f.Type)
}

// GetStaticField reads a static field of class.
func (r *Runtime) GetStaticField(env jni.Env, class, name, sig string) jni.Value {
	f := r.StaticField(env, class, name, sig)
	return env.GetStaticField(r.Class(env, class), f.ID, f.Type)
}

// NewObject constructs class with the constructor of descriptor sig.
func (r *Runtime) NewObject(env jni.Env, class, sig string, args ...jni.Value) jni.Ref {
	m := r.Method(env, class, "<init>", sig)
	return env.NewObject(r.Class(env, class), m.ID, args...)
}

// EnumConstant returns the named constant of an enum class as a local.
func (r *Runtime) EnumConstant(env jni.Env, class, name string) jni.Ref {
	return r.GetStaticField(env, class, name, jni.ClassSig(class)).Ref()
}

// releaseLookups drops the cached class references.
func (r *Runtime) releaseLookups(env jni.Env) {
	l := r.lookups
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, c := range l.classes {
		env.DeleteGlobalRef(c)
		delete(l.classes, name)
	}
	clear(l.methods)
	clear(l.fields)
}
