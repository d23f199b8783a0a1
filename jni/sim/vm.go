package sim

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/refs"
)

const (
	kindLocal refs.Kind = iota + 1
	kindGlobal
)

// Ref encoding: the low two bits tag the table, the rest is the handle.
const (
	tagLocal  = 1
	tagGlobal = 2
)

var (
	ErrNotAttached  = errors.New("sim: thread not attached")
	ErrDestroyed    = errors.New("sim: vm destroyed")
	ErrAttachDenied = errors.New("sim: attach refused")
	ErrDetachDenied = errors.New("sim: detach refused")
)

type methodEntry struct {
	class  *Class
	name   string
	sig    string
	ret    jni.Type
	static bool
}

type fieldEntry struct {
	class  *Class
	name   string
	sig    string
	static bool
}

// VM is an in-process Java virtual machine whose classes are written in Go.
// It implements jni.VM and keeps one Env per attached OS thread.
type VM struct {
	classes  map[string]*Class
	threads  map[int]*Env
	methods  []methodEntry
	fields   []fieldEntry
	methodIx map[string]jni.MethodID
	fieldIx  map[string]jni.FieldID
	globals  *refs.Table
	stats    *stats
	mu       sync.RWMutex
	arrayMu  sync.Mutex

	globalCount refs.Counter
	nextHash    atomic.Int32
	overflows   atomic.Int64
	maxFrames   int
	failAttach  atomic.Bool
	failDetach  atomic.Bool
	destroyed   atomic.Bool
}

// Option configures a VM.
type Option func(*VM)

// WithMaxFrames limits the local frame depth per thread. Pushing beyond
// the limit fails like an out-of-memory condition.
func WithMaxFrames(n int) Option {
	return func(vm *VM) { vm.maxFrames = n }
}

// New creates a VM with the java.lang and java.util base classes.
func New(opts ...Option) *VM {
	vm := &VM{
		classes:  make(map[string]*Class),
		threads:  make(map[int]*Env),
		methodIx: make(map[string]jni.MethodID),
		fieldIx:  make(map[string]jni.FieldID),
		globals:  refs.NewTable(),
		stats:    newStats(),
	}
	vm.globals.Subscribe(&vm.globalCount)
	for _, opt := range opts {
		opt(vm)
	}
	registerBuiltins(vm)
	return vm
}

// DefineClass registers a class. An empty super means java/lang/Object.
func (vm *VM) DefineClass(name, super string, interfaces ...string) *Class {
	c := vm.newClass(name)
	if name != "java/lang/Object" {
		if super == "" {
			super = "java/lang/Object"
		}
		c.Super = vm.MustClass(super)
	}
	for _, i := range interfaces {
		c.Interfaces = append(c.Interfaces, vm.MustClass(i))
	}
	return c
}

// DefineInterface registers an interface type.
func (vm *VM) DefineInterface(name string, supers ...string) *Class {
	c := vm.newClass(name)
	c.iface = true
	for _, i := range supers {
		c.Interfaces = append(c.Interfaces, vm.MustClass(i))
	}
	return c
}

// DefineEnum registers an enum class with the given constants. Each
// constant is reachable as a static field of the enum's own type.
func (vm *VM) DefineEnum(name string, constants ...string) *Class {
	c := vm.DefineClass(name, "java/lang/Enum")
	sig := jni.ClassSig(name)
	values := make([]*Object, 0, len(constants))
	for i, k := range constants {
		o := c.New(map[string]any{
			"name":    vm.String(k),
			"ordinal": int32(i),
		})
		values = append(values, o)
		c.StaticField(k, sig, o)
	}
	c.constants = values
	c.Static("values", "()"+jni.ArraySig(sig), func(call *Call) jni.Value {
		return call.Return(vm.NewArray(c, values...))
	})
	return c
}

func (vm *VM) newClass(name string) *Class {
	c := &Class{
		vm:         vm,
		Name:       name,
		methods:    make(map[memberKey]Method),
		statics:    make(map[memberKey]Method),
		fields:     make(map[string]string),
		staticVals: make(map[string]*staticField),
	}
	vm.mu.Lock()
	vm.classes[name] = c
	vm.mu.Unlock()
	return c
}

// classObject returns the java.lang.Class instance describing c.
func (c *Class) classObject() *Object {
	c.vm.mu.Lock()
	defer c.vm.mu.Unlock()
	if c.object == nil {
		c.object = c.vm.alloc(c.vm.classes["java/lang/Class"])
		c.object.Native = c
	}
	return c.object
}

// Class returns a registered class.
func (vm *VM) Class(name string) (*Class, bool) {
	if strings.HasPrefix(name, "[") {
		return vm.arrayClass(name), true
	}
	return vm.lookupClass(name)
}

// MustClass returns a registered class or panics.
func (vm *VM) MustClass(name string) *Class {
	c, ok := vm.Class(name)
	if !ok {
		panic(fmt.Sprintf("sim: class %s not defined", name))
	}
	return c
}

func (vm *VM) lookupClass(name string) (*Class, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	c, ok := vm.classes[name]
	return c, ok
}

func (vm *VM) arrayClass(name string) *Class {
	vm.arrayMu.Lock()
	defer vm.arrayMu.Unlock()
	if c, ok := vm.lookupClass(name); ok {
		return c
	}
	return vm.DefineClass(name, "")
}

func (vm *VM) alloc(c *Class) *Object {
	return &Object{Class: c, hash: vm.nextHash.Add(0x3c6ef35f)}
}

func (vm *VM) classOf(o *Object) *Class {
	if c, ok := o.Native.(*Class); ok && o.Class.Name == "java/lang/Class" {
		return c
	}
	return nil
}

// GetEnv returns the calling thread's Env.
func (vm *VM) GetEnv() (jni.Env, bool) {
	if env := vm.CurrentEnv(); env != nil {
		return env, true
	}
	return nil, false
}

// CurrentEnv returns the calling thread's Env, or nil.
func (vm *VM) CurrentEnv() *Env {
	if vm.destroyed.Load() {
		return nil
	}
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.threads[unix.Gettid()]
}

// AttachCurrentThread attaches the calling OS thread. Attaching an
// attached thread returns its existing Env.
func (vm *VM) AttachCurrentThread(name string) (jni.Env, error) {
	if vm.destroyed.Load() {
		return nil, ErrDestroyed
	}
	if vm.failAttach.Load() {
		return nil, ErrAttachDenied
	}
	tid := unix.Gettid()
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if env, ok := vm.threads[tid]; ok {
		return env, nil
	}
	env := newEnv(vm, tid, name)
	vm.threads[tid] = env
	return env, nil
}

// DetachCurrentThread detaches the calling OS thread and frees its locals.
func (vm *VM) DetachCurrentThread() error {
	if vm.failDetach.Load() {
		return ErrDetachDenied
	}
	tid := unix.Gettid()
	vm.mu.Lock()
	env, ok := vm.threads[tid]
	delete(vm.threads, tid)
	vm.mu.Unlock()
	if !ok {
		return ErrNotAttached
	}
	return env.locals.Close()
}

// Destroy tears the VM down. Further attach attempts fail.
func (vm *VM) Destroy() error {
	if !vm.destroyed.CompareAndSwap(false, true) {
		return ErrDestroyed
	}
	vm.mu.Lock()
	threads := vm.threads
	vm.threads = make(map[int]*Env)
	vm.mu.Unlock()
	for _, env := range threads {
		env.locals.Close()
	}
	return vm.globals.Close()
}

// Destroyed reports whether Destroy ran.
func (vm *VM) Destroyed() bool { return vm.destroyed.Load() }

// Threads returns the names of the attached threads.
func (vm *VM) Threads() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	names := make([]string, 0, len(vm.threads))
	for _, env := range vm.threads {
		names = append(names, env.name)
	}
	return names
}

// FailAttach makes subsequent attach attempts fail.
func (vm *VM) FailAttach(fail bool) { vm.failAttach.Store(fail) }

// FailDetach makes subsequent detach attempts fail.
func (vm *VM) FailDetach(fail bool) { vm.failDetach.Store(fail) }

// LiveGlobals returns the number of live global references.
func (vm *VM) LiveGlobals() int64 { return vm.globalCount.Live(kindGlobal) }

// Overflows returns how many local references were created beyond
// their frame's declared capacity.
func (vm *VM) Overflows() int64 { return vm.overflows.Load() }

// Calls returns how often a method was invoked, keyed "Class.method"
// with the simple class name used at lookup.
func (vm *VM) Calls(key string) int { return vm.stats.get(&vm.stats.calls, key) }

// FieldReads returns how often a field was read, keyed "Class.field".
func (vm *VM) FieldReads(key string) int { return vm.stats.get(&vm.stats.reads, key) }

// ResetStats clears call and field counters.
func (vm *VM) ResetStats() { vm.stats.reset() }

func (vm *VM) methodID(c *Class, name, sig string, static bool) (jni.MethodID, bool) {
	k := memberKey{name, sig}
	var found bool
	if static {
		_, found = c.findStatic(k)
	} else {
		_, _, found = c.findMethod(k, false)
	}
	if !found {
		return 0, false
	}
	_, ret, err := jni.MethodType(sig)
	if err != nil {
		return 0, false
	}
	key := fmt.Sprintf("%s.%s%s/%t", c.Name, name, sig, static)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if id, ok := vm.methodIx[key]; ok {
		return id, true
	}
	vm.methods = append(vm.methods, methodEntry{class: c, name: name, sig: sig, ret: ret, static: static})
	id := jni.MethodID(len(vm.methods))
	vm.methodIx[key] = id
	return id, true
}

func (vm *VM) fieldID(c *Class, name, sig string, static bool) (jni.FieldID, bool) {
	var got string
	if static {
		f, ok := c.findStaticField(name)
		if !ok {
			return 0, false
		}
		got = f.sig
	} else {
		s, ok := c.findField(name)
		if !ok {
			return 0, false
		}
		got = s
	}
	if got != sig {
		return 0, false
	}
	key := fmt.Sprintf("%s.%s:%s/%t", c.Name, name, sig, static)
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if id, ok := vm.fieldIx[key]; ok {
		return id, true
	}
	vm.fields = append(vm.fields, fieldEntry{class: c, name: name, sig: sig, static: static})
	id := jni.FieldID(len(vm.fields))
	vm.fieldIx[key] = id
	return id, true
}

func (vm *VM) method(id jni.MethodID) methodEntry {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if id == 0 || int(id) > len(vm.methods) {
		panic(fmt.Sprintf("sim: invalid method id %d", id))
	}
	return vm.methods[id-1]
}

func (vm *VM) field(id jni.FieldID) fieldEntry {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	if id == 0 || int(id) > len(vm.fields) {
		panic(fmt.Sprintf("sim: invalid field id %d", id))
	}
	return vm.fields[id-1]
}

type stats struct {
	calls map[string]int
	reads map[string]int
	mu    sync.Mutex
}

func newStats() *stats {
	return &stats{calls: make(map[string]int), reads: make(map[string]int)}
}

func (s *stats) inc(m *map[string]int, key string) {
	s.mu.Lock()
	(*m)[key]++
	s.mu.Unlock()
}

func (s *stats) get(m *map[string]int, key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (*m)[key]
}

func (s *stats) reset() {
	s.mu.Lock()
	s.calls = make(map[string]int)
	s.reads = make(map[string]int)
	s.mu.Unlock()
}
