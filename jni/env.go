package jni

// Version21 is the invocation interface version requested at boot.
const Version21 int32 = 0x00150000

// Env is the per-thread call interface. An Env must only be used on the
// OS thread it was obtained on.
//
// Lookups that fail return a zero ID or null Ref and leave an exception
// pending, matching the underlying interface.
type Env interface {
	FindClass(name string) Ref
	GetObjectClass(obj Ref) Ref
	IsInstanceOf(obj, class Ref) bool
	IsSameObject(a, b Ref) bool

	GetMethodID(class Ref, name, sig string) MethodID
	GetStaticMethodID(class Ref, name, sig string) MethodID
	GetFieldID(class Ref, name, sig string) FieldID
	GetStaticFieldID(class Ref, name, sig string) FieldID

	NewObject(class Ref, ctor MethodID, args ...Value) Ref
	// CallMethod invokes a virtual method. ret selects the call variant.
	CallMethod(obj Ref, m MethodID, ret Type, args ...Value) Value
	CallStaticMethod(class Ref, m MethodID, ret Type, args ...Value) Value
	GetField(obj Ref, f FieldID, typ Type) Value
	GetStaticField(class Ref, f FieldID, typ Type) Value

	NewString(s string) Ref
	// GetStringUTF copies the string contents and releases the foreign chars.
	GetStringUTF(str Ref) string
	NewByteArray(b []byte) Ref
	NewObjectArray(length int, elem Ref, init Ref) Ref
	GetArrayLength(arr Ref) int
	GetObjectArrayElement(arr Ref, i int) Ref
	SetObjectArrayElement(arr Ref, i int, v Ref)

	NewGlobalRef(obj Ref) Ref
	DeleteGlobalRef(obj Ref)
	DeleteLocalRef(obj Ref)
	PushLocalFrame(capacity int) error
	// PopLocalFrame frees the current frame. A non-null survivor is
	// re-created in the enclosing frame and returned.
	PopLocalFrame(survivor Ref) Ref

	ExceptionOccurred() Ref
	ExceptionClear()
}

// VM is a booted virtual machine.
type VM interface {
	// GetEnv returns the calling thread's Env, or false if it is not attached.
	GetEnv() (Env, bool)
	AttachCurrentThread(name string) (Env, error)
	DetachCurrentThread() error
	Destroy() error
}

// InitArgs are the boot arguments of a VM.
type InitArgs struct {
	Options            []string
	Version            int32
	IgnoreUnrecognized bool
}

// Launcher boots a VM. The calling thread becomes the VM's primary
// thread and is attached for the lifetime of the VM.
type Launcher interface {
	Launch(args InitArgs) (VM, Env, error)
}
