package sim

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wippyai/pte-bridge/jni"
)

// Method is the Go body of a Java method. It returns the call result
// as a value local to c.Env, or the zero Value for void methods.
type Method func(c *Call) jni.Value

type memberKey struct {
	name string
	sig  string
}

type staticField struct {
	value any
	sig   string
}

// Class is a Java class or interface hosted by the VM.
type Class struct {
	vm         *VM
	Super      *Class
	object     *Object
	methods    map[memberKey]Method
	statics    map[memberKey]Method
	fields     map[string]string
	staticVals map[string]*staticField
	Name       string
	Interfaces []*Class
	constants  []*Object
	iface      bool
}

// Object is an instance on the simulated heap. Field values are held as
// Go values: bool, int8, uint16 (char), int16, int32, int64, float32,
// float64, *Object or nil.
type Object struct {
	Class  *Class
	Native any
	fields map[string]any
	mu     sync.Mutex
	hash   int32
}

// Get returns the value of an instance field.
func (o *Object) Get(name string) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fields[name]
}

// Set assigns an instance field.
func (o *Object) Set(name string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fields == nil {
		o.fields = make(map[string]any)
	}
	o.fields[name] = v
}

// Update runs fn with the object's lock held.
func (o *Object) Update(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}

// Hash returns the identity hash of o.
func (o *Object) Hash() int32 { return o.hash }

// String returns the contents of a java.lang.String object.
func (o *Object) String() string {
	if o == nil {
		return "null"
	}
	if s, ok := o.Native.(string); ok {
		return s
	}
	return o.Class.Name + "@" + strconv.FormatInt(int64(o.hash), 16)
}

// Method registers an instance method or constructor ("<init>").
func (c *Class) Method(name, sig string, fn Method) *Class {
	c.methods[memberKey{name, sig}] = fn
	return c
}

// Abstract declares an instance method without a body.
func (c *Class) Abstract(name, sig string) *Class {
	c.methods[memberKey{name, sig}] = nil
	return c
}

// Static registers a static method.
func (c *Class) Static(name, sig string, fn Method) *Class {
	c.statics[memberKey{name, sig}] = fn
	return c
}

// Field declares an instance field.
func (c *Class) Field(name, sig string) *Class {
	c.fields[name] = sig
	return c
}

// StaticField declares a static field with its value.
func (c *Class) StaticField(name, sig string, v any) *Class {
	c.staticVals[name] = &staticField{value: v, sig: sig}
	return c
}

// New allocates an instance with the given field values without running
// a constructor.
func (c *Class) New(fields map[string]any) *Object {
	o := c.vm.alloc(c)
	if len(fields) > 0 {
		o.fields = fields
	}
	return o
}

// Constant returns the enum constant called name, or nil.
func (c *Class) Constant(name string) *Object {
	for _, k := range c.constants {
		if k.Get("name").(*Object).String() == name {
			return k
		}
	}
	return nil
}

// Constants returns the enum constants in ordinal order.
func (c *Class) Constants() []*Object {
	return c.constants
}

// IsSubclassOf reports whether c is other or inherits from it.
func (c *Class) IsSubclassOf(other *Class) bool {
	if c == nil || other == nil {
		return false
	}
	if c == other {
		return true
	}
	for _, i := range c.Interfaces {
		if i.IsSubclassOf(other) {
			return true
		}
	}
	return c.Super.IsSubclassOf(other)
}

// SimpleName returns the class name without its package.
func (c *Class) SimpleName() string {
	return c.Name[strings.LastIndexByte(c.Name, '/')+1:]
}

// findMethod searches c, its superclasses and interfaces. With impl set
// only methods that have a body match.
func (c *Class) findMethod(k memberKey, impl bool) (Method, *Class, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if fn, ok := cls.methods[k]; ok && (fn != nil || !impl) {
			return fn, cls, true
		}
	}
	for cls := c; cls != nil; cls = cls.Super {
		for _, i := range cls.Interfaces {
			if fn, decl, ok := i.findMethod(k, impl); ok {
				return fn, decl, true
			}
		}
	}
	return nil, nil, false
}

func (c *Class) findStatic(k memberKey) (Method, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if fn, ok := cls.statics[k]; ok {
			return fn, true
		}
	}
	return nil, false
}

func (c *Class) findField(name string) (string, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if sig, ok := cls.fields[name]; ok {
			return sig, true
		}
	}
	return "", false
}

func (c *Class) findStaticField(name string) (*staticField, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if f, ok := cls.staticVals[name]; ok {
			return f, true
		}
	}
	for _, i := range c.Interfaces {
		if f, ok := i.findStaticField(name); ok {
			return f, true
		}
	}
	return nil, false
}
