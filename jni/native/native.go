//go:build jni && cgo

package native

// #cgo linux CFLAGS: -I/usr/lib/jvm/default-java/include -I/usr/lib/jvm/default-java/include/linux
// #cgo linux LDFLAGS: -L/usr/lib/jvm/default-java/lib/server -ljvm
// #include "bridge.h"
import "C"

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"github.com/wippyai/pte-bridge/jni"
)

// Launcher boots a JVM from the libjvm linked into the binary.
type Launcher struct{}

var _ jni.Launcher = Launcher{}

// Launch creates the VM. The calling thread becomes attached.
func (Launcher) Launch(args jni.InitArgs) (jni.VM, jni.Env, error) {
	opts := make([]*C.char, len(args.Options))
	for i, o := range args.Options {
		opts[i] = C.CString(o)
	}
	defer func() {
		for _, p := range opts {
			C.free(unsafe.Pointer(p))
		}
	}()

	var (
		vm   *C.JavaVM
		env  *C.JNIEnv
		argv **C.char
	)
	if len(opts) > 0 {
		// Go memory holding C pointers may be passed to C.
		argv = &opts[0]
	}
	ignore := C.jboolean(C.JNI_FALSE)
	if args.IgnoreUnrecognized {
		ignore = C.JNI_TRUE
	}
	if r := C.pte_create_vm(&vm, &env, argv, C.int(len(opts)), C.jint(args.Version), ignore); r != C.JNI_OK {
		return nil, nil, fmt.Errorf("JNI_CreateJavaVM: %s", status(r))
	}
	return &VM{vm: vm, version: C.jint(args.Version)}, &Env{env: env}, nil
}

func status(r C.jint) string {
	switch r {
	case C.JNI_ERR:
		return "unknown error"
	case C.JNI_EDETACHED:
		return "thread detached"
	case C.JNI_EVERSION:
		return "version error"
	case C.JNI_ENOMEM:
		return "not enough memory"
	case C.JNI_EEXIST:
		return "VM already created"
	case C.JNI_EINVAL:
		return "invalid arguments"
	}
	return fmt.Sprintf("status %d", int(r))
}

// VM is a live JavaVM.
type VM struct {
	vm      *C.JavaVM
	version C.jint
}

var _ jni.VM = (*VM)(nil)

func (v *VM) GetEnv() (jni.Env, bool) {
	var env *C.JNIEnv
	if C.pte_get_env(v.vm, &env, v.version) != C.JNI_OK {
		return nil, false
	}
	return &Env{env: env}, true
}

func (v *VM) AttachCurrentThread(name string) (jni.Env, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var env *C.JNIEnv
	if r := C.pte_attach(v.vm, &env, cname, v.version); r != C.JNI_OK {
		return nil, fmt.Errorf("AttachCurrentThread: %s", status(r))
	}
	return &Env{env: env}, nil
}

func (v *VM) DetachCurrentThread() error {
	if r := C.pte_detach(v.vm); r != C.JNI_OK {
		return fmt.Errorf("DetachCurrentThread: %s", status(r))
	}
	return nil
}

func (v *VM) Destroy() error {
	if r := C.pte_destroy(v.vm); r != C.JNI_OK {
		return fmt.Errorf("DestroyJavaVM: %s", status(r))
	}
	return nil
}

// Env wraps a JNIEnv pointer. It is only valid on the thread it came from.
type Env struct {
	env *C.JNIEnv
}

var _ jni.Env = (*Env)(nil)

func obj(r jni.Ref) C.jobject {
	return C.jobject(unsafe.Pointer(uintptr(r)))
}

func ref(o C.jobject) jni.Ref {
	return jni.Ref(uintptr(unsafe.Pointer(o)))
}

func (e *Env) FindClass(name string) jni.Ref {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return ref(C.jobject(C.pte_find_class(e.env, cname)))
}

func (e *Env) GetObjectClass(o jni.Ref) jni.Ref {
	return ref(C.jobject(C.pte_object_class(e.env, obj(o))))
}

func (e *Env) IsInstanceOf(o, class jni.Ref) bool {
	return C.pte_instance_of(e.env, obj(o), C.jclass(obj(class))) == C.JNI_TRUE
}

func (e *Env) IsSameObject(a, b jni.Ref) bool {
	return C.pte_same(e.env, obj(a), obj(b)) == C.JNI_TRUE
}

func (e *Env) GetMethodID(class jni.Ref, name, sig string) jni.MethodID {
	cname, csig := C.CString(name), C.CString(sig)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(csig))
	return jni.MethodID(uintptr(unsafe.Pointer(C.pte_method(e.env, C.jclass(obj(class)), cname, csig))))
}

func (e *Env) GetStaticMethodID(class jni.Ref, name, sig string) jni.MethodID {
	cname, csig := C.CString(name), C.CString(sig)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(csig))
	return jni.MethodID(uintptr(unsafe.Pointer(C.pte_static_method(e.env, C.jclass(obj(class)), cname, csig))))
}

func (e *Env) GetFieldID(class jni.Ref, name, sig string) jni.FieldID {
	cname, csig := C.CString(name), C.CString(sig)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(csig))
	return jni.FieldID(uintptr(unsafe.Pointer(C.pte_field(e.env, C.jclass(obj(class)), cname, csig))))
}

func (e *Env) GetStaticFieldID(class jni.Ref, name, sig string) jni.FieldID {
	cname, csig := C.CString(name), C.CString(sig)
	defer C.free(unsafe.Pointer(cname))
	defer C.free(unsafe.Pointer(csig))
	return jni.FieldID(uintptr(unsafe.Pointer(C.pte_static_field(e.env, C.jclass(obj(class)), cname, csig))))
}

func methodID(m jni.MethodID) C.jmethodID {
	return C.jmethodID(unsafe.Pointer(uintptr(m)))
}

func fieldID(f jni.FieldID) C.jfieldID {
	return C.jfieldID(unsafe.Pointer(uintptr(f)))
}

// jvalues packs args into a C jvalue array. The array lives in Go memory
// and holds no Go pointers.
func jvalues(args []jni.Value) *C.jvalue {
	if len(args) == 0 {
		return nil
	}
	out := make([]C.jvalue, len(args))
	for i, a := range args {
		slot := (*uint64)(unsafe.Pointer(&out[i]))
		if a.Type() == jni.TypeObject {
			*slot = uint64(a.Ref())
		} else {
			*slot = a.Bits()
		}
	}
	return &out[0]
}

func value(v C.jvalue, t jni.Type) jni.Value {
	bits := *(*uint64)(unsafe.Pointer(&v))
	switch t {
	case jni.TypeObject:
		return jni.Object(jni.Ref(uintptr(bits)))
	case jni.TypeBoolean, jni.TypeByte:
		bits &= 0xff
	case jni.TypeChar, jni.TypeShort:
		bits &= 0xffff
	case jni.TypeInt, jni.TypeFloat:
		bits &= 0xffffffff
	}
	return jni.FromBits(t, bits)
}

func (e *Env) NewObject(class jni.Ref, ctor jni.MethodID, args ...jni.Value) jni.Ref {
	return ref(C.pte_new_object(e.env, C.jclass(obj(class)), methodID(ctor), jvalues(args)))
}

func (e *Env) CallMethod(o jni.Ref, m jni.MethodID, ret jni.Type, args ...jni.Value) jni.Value {
	v := C.pte_call(e.env, obj(o), methodID(m), C.char(ret), jvalues(args))
	if ret == jni.TypeVoid {
		return jni.Void()
	}
	return value(v, ret)
}

func (e *Env) CallStaticMethod(class jni.Ref, m jni.MethodID, ret jni.Type, args ...jni.Value) jni.Value {
	v := C.pte_call_static(e.env, C.jclass(obj(class)), methodID(m), C.char(ret), jvalues(args))
	if ret == jni.TypeVoid {
		return jni.Void()
	}
	return value(v, ret)
}

func (e *Env) GetField(o jni.Ref, f jni.FieldID, typ jni.Type) jni.Value {
	return value(C.pte_get_field(e.env, obj(o), fieldID(f), C.char(typ)), typ)
}

func (e *Env) GetStaticField(class jni.Ref, f jni.FieldID, typ jni.Type) jni.Value {
	return value(C.pte_get_static_field(e.env, C.jclass(obj(class)), fieldID(f), C.char(typ)), typ)
}

func (e *Env) NewString(s string) jni.Ref {
	u := utf16.Encode([]rune(s))
	var p *C.jchar
	if len(u) > 0 {
		p = (*C.jchar)(unsafe.Pointer(&u[0]))
	}
	return ref(C.jobject(C.pte_new_string(e.env, p, C.jsize(len(u)))))
}

// GetStringUTF copies the UTF-16 contents into a Go string. No pointer
// into foreign memory survives the call.
func (e *Env) GetStringUTF(str jni.Ref) string {
	s := C.jstring(obj(str))
	n := int(C.pte_string_length(e.env, s))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n)
	C.pte_string_region(e.env, s, C.jsize(n), (*C.jchar)(unsafe.Pointer(&buf[0])))
	return string(utf16.Decode(buf))
}

func (e *Env) NewByteArray(b []byte) jni.Ref {
	var p *C.jbyte
	if len(b) > 0 {
		p = (*C.jbyte)(unsafe.Pointer(&b[0]))
	}
	return ref(C.jobject(C.pte_new_bytes(e.env, p, C.jsize(len(b)))))
}

func (e *Env) NewObjectArray(length int, elem jni.Ref, init jni.Ref) jni.Ref {
	return ref(C.jobject(C.pte_new_array(e.env, C.jsize(length), C.jclass(obj(elem)), obj(init))))
}

func (e *Env) GetArrayLength(arr jni.Ref) int {
	return int(C.pte_array_length(e.env, C.jarray(obj(arr))))
}

func (e *Env) GetObjectArrayElement(arr jni.Ref, i int) jni.Ref {
	return ref(C.pte_array_get(e.env, C.jobjectArray(obj(arr)), C.jsize(i)))
}

func (e *Env) SetObjectArrayElement(arr jni.Ref, i int, v jni.Ref) {
	C.pte_array_set(e.env, C.jobjectArray(obj(arr)), C.jsize(i), obj(v))
}

func (e *Env) NewGlobalRef(o jni.Ref) jni.Ref {
	return ref(C.pte_new_global(e.env, obj(o)))
}

func (e *Env) DeleteGlobalRef(o jni.Ref) {
	C.pte_delete_global(e.env, obj(o))
}

func (e *Env) DeleteLocalRef(o jni.Ref) {
	C.pte_delete_local(e.env, obj(o))
}

func (e *Env) PushLocalFrame(capacity int) error {
	if r := C.pte_push_frame(e.env, C.jint(capacity)); r < 0 {
		return fmt.Errorf("PushLocalFrame(%d): %s", capacity, status(r))
	}
	return nil
}

func (e *Env) PopLocalFrame(survivor jni.Ref) jni.Ref {
	return ref(C.pte_pop_frame(e.env, obj(survivor)))
}

func (e *Env) ExceptionOccurred() jni.Ref {
	return ref(C.jobject(C.pte_exception(e.env)))
}

func (e *Env) ExceptionClear() {
	C.pte_exception_clear(e.env)
}
