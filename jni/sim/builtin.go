package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/wippyai/pte-bridge/jni"
)

const (
	sigObject = "Ljava/lang/Object;"
	sigString = "Ljava/lang/String;"
)

// javaHash is String.hashCode.
func javaHash(s string) int32 {
	var h int32
	for _, r := range []rune(s) {
		if r > 0xffff {
			r1, r2 := (r-0x10000)>>10+0xd800, (r-0x10000)&0x3ff+0xdc00
			h = 31*h + r1
			h = 31*h + r2
			continue
		}
		h = 31*h + r
	}
	return h
}

func registerBuiltins(vm *VM) {
	object := vm.DefineClass("java/lang/Object", "")
	vm.DefineClass("java/lang/Class", "").
		Method("getName", "()"+sigString, func(c *Call) jni.Value {
			cls := c.This.Native.(*Class)
			return c.Return(vm.String(strings.ReplaceAll(cls.Name, "/", ".")))
		})

	object.
		Method("<init>", "()V", func(*Call) jni.Value { return jni.Void() }).
		Method("equals", "("+sigObject+")Z", func(c *Call) jni.Value {
			return jni.Bool(c.This == c.Object(0))
		}).
		Method("hashCode", "()I", func(c *Call) jni.Value {
			return jni.Int(c.This.hash)
		}).
		Method("toString", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(vm.String(c.This.String()))
		}).
		Method("getClass", "()Ljava/lang/Class;", func(c *Call) jni.Value {
			return c.Return(c.This.Class.classObject())
		})

	vm.DefineInterface("java/lang/CharSequence").
		Abstract("length", "()I").
		Abstract("toString", "()"+sigString)
	vm.DefineInterface("java/lang/Comparable")
	vm.DefineClass("java/lang/String", "", "java/lang/CharSequence", "java/lang/Comparable").
		Method("equals", "("+sigObject+")Z", func(c *Call) jni.Value {
			other := c.Object(0)
			if other == nil {
				return jni.Bool(false)
			}
			s, ok := other.Native.(string)
			return jni.Bool(ok && s == c.This.Native.(string))
		}).
		Method("hashCode", "()I", func(c *Call) jni.Value {
			return jni.Int(javaHash(c.This.Native.(string)))
		}).
		Method("length", "()I", func(c *Call) jni.Value {
			return jni.Int(int32(len([]rune(c.This.Native.(string)))))
		}).
		Method("toString", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(c.This)
		})

	registerThrowables(vm)
	registerBoxes(vm)

	vm.DefineClass("java/lang/Enum", "", "java/lang/Comparable").
		Field("name", sigString).
		Field("ordinal", "I").
		Method("name", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(c.This.Get("name").(*Object))
		}).
		Method("ordinal", "()I", func(c *Call) jni.Value {
			return jni.Int(c.This.Get("ordinal").(int32))
		}).
		Method("toString", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(c.This.Get("name").(*Object))
		})

	registerCollections(vm)

	vm.DefineClass("java/util/Date", "").
		Method("<init>", "(J)V", func(c *Call) jni.Value {
			c.This.Native = c.Args[0].Long()
			return jni.Void()
		}).
		Method("getTime", "()J", func(c *Call) jni.Value {
			return jni.Long(c.This.Native.(int64))
		}).
		Method("equals", "("+sigObject+")Z", func(c *Call) jni.Value {
			other := c.Object(0)
			if other == nil {
				return jni.Bool(false)
			}
			ms, ok := other.Native.(int64)
			return jni.Bool(ok && other.Class == c.This.Class && ms == c.This.Native.(int64))
		}).
		Method("hashCode", "()I", func(c *Call) jni.Value {
			ms := c.This.Native.(int64)
			return jni.Int(int32(ms) ^ int32(ms>>32))
		})

	vm.DefineClass("java/util/Currency", "").
		Field("currencyCode", sigString).
		Field("symbol", sigString).
		Method("getCurrencyCode", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(c.This.Get("currencyCode").(*Object))
		}).
		Method("getSymbol", "()"+sigString, func(c *Call) jni.Value {
			return c.Return(c.This.Get("symbol").(*Object))
		})
}

func registerThrowables(vm *VM) {
	vm.DefineClass("java/lang/Throwable", "").
		Field("detailMessage", sigString).
		Method("<init>", "()V", func(*Call) jni.Value { return jni.Void() }).
		Method("<init>", "("+sigString+")V", func(c *Call) jni.Value {
			c.This.Set("detailMessage", c.Object(0))
			return jni.Void()
		}).
		Method("getMessage", "()"+sigString, func(c *Call) jni.Value {
			msg, _ := c.This.Get("detailMessage").(*Object)
			return c.Return(msg)
		})

	for _, pair := range [][2]string{
		{"java/lang/Exception", "java/lang/Throwable"},
		{"java/lang/Error", "java/lang/Throwable"},
		{"java/lang/RuntimeException", "java/lang/Exception"},
		{"java/lang/IllegalStateException", "java/lang/RuntimeException"},
		{"java/lang/IllegalArgumentException", "java/lang/RuntimeException"},
		{"java/lang/NullPointerException", "java/lang/RuntimeException"},
		{"java/lang/IndexOutOfBoundsException", "java/lang/RuntimeException"},
		{"java/lang/ArrayIndexOutOfBoundsException", "java/lang/IndexOutOfBoundsException"},
		{"java/lang/UnsupportedOperationException", "java/lang/RuntimeException"},
		{"java/lang/LinkageError", "java/lang/Error"},
		{"java/lang/NoClassDefFoundError", "java/lang/LinkageError"},
		{"java/lang/IncompatibleClassChangeError", "java/lang/LinkageError"},
		{"java/lang/NoSuchMethodError", "java/lang/IncompatibleClassChangeError"},
		{"java/lang/NoSuchFieldError", "java/lang/IncompatibleClassChangeError"},
		{"java/lang/AbstractMethodError", "java/lang/IncompatibleClassChangeError"},
		{"java/io/IOException", "java/lang/Exception"},
		{"java/net/SocketTimeoutException", "java/io/IOException"},
		{"java/net/UnknownHostException", "java/io/IOException"},
	} {
		vm.DefineClass(pair[0], pair[1])
	}
}

func registerBoxes(vm *VM) {
	vm.DefineClass("java/lang/Number", "")
	box := func(name, prim string, t jni.Type) {
		var value func(v jni.Value) any
		if t == jni.TypeInt {
			value = func(v jni.Value) any { return v.Int() }
		} else {
			value = func(v jni.Value) any { return v.Long() }
		}
		getter := map[jni.Type]string{jni.TypeInt: "intValue", jni.TypeLong: "longValue"}[t]
		cls := vm.DefineClass(name, "java/lang/Number", "java/lang/Comparable")
		cls.
			Method("<init>", "("+prim+")V", func(c *Call) jni.Value {
				c.This.Native = value(c.Args[0])
				return jni.Void()
			}).
			Method(getter, "()"+prim, func(c *Call) jni.Value {
				return c.Env.toValue(c.This.Native, t)
			}).
			Method("equals", "("+sigObject+")Z", func(c *Call) jni.Value {
				other := c.Object(0)
				return jni.Bool(other != nil && other.Class == c.This.Class && other.Native == c.This.Native)
			}).
			Method("hashCode", "()I", func(c *Call) jni.Value {
				switch n := c.This.Native.(type) {
				case int32:
					return jni.Int(n)
				case int64:
					return jni.Int(int32(n) ^ int32(n>>32))
				}
				return jni.Int(0)
			}).
			Static("valueOf", "("+prim+")"+jni.ClassSig(name), func(c *Call) jni.Value {
				o := vm.alloc(cls)
				o.Native = value(c.Args[0])
				return c.Return(o)
			})
	}
	box("java/lang/Integer", "I", jni.TypeInt)
	box("java/lang/Long", "J", jni.TypeLong)
}

func registerCollections(vm *VM) {
	const (
		sigCollection = "Ljava/util/Collection;"
		sigArray      = "[Ljava/lang/Object;"
	)

	vm.DefineInterface("java/lang/Iterable")
	vm.DefineInterface("java/util/Collection", "java/lang/Iterable").
		Abstract("size", "()I").
		Abstract("isEmpty", "()Z").
		Abstract("toArray", "()"+sigArray).
		Abstract("add", "("+sigObject+")Z").
		Abstract("addAll", "("+sigCollection+")Z").
		Abstract("contains", "("+sigObject+")Z")
	vm.DefineInterface("java/util/List", "java/util/Collection").
		Abstract("get", "(I)"+sigObject).
		Abstract("addAll", "(I"+sigCollection+")Z")
	vm.DefineInterface("java/util/Set", "java/util/Collection")

	items := func(o *Object) []*Object {
		var out []*Object
		o.Update(func() { out = append(out, o.Native.([]*Object)...) })
		return out
	}
	sizeOf := func(c *Call) jni.Value {
		var n int
		c.This.Update(func() { n = len(c.This.Native.([]*Object)) })
		return jni.Int(int32(n))
	}
	collection := func(c *Call) ([]*Object, bool) {
		arg := c.Object(0)
		if arg == nil {
			return nil, false
		}
		src, ok := arg.Native.([]*Object)
		if !ok {
			return nil, false
		}
		if arg == c.This {
			return append([]*Object(nil), src...), true
		}
		return items(arg), true
	}
	common := func(cls *Class) {
		cls.
			Method("<init>", "()V", func(c *Call) jni.Value {
				c.This.Native = []*Object{}
				return jni.Void()
			}).
			Method("size", "()I", sizeOf).
			Method("isEmpty", "()Z", func(c *Call) jni.Value {
				return jni.Bool(sizeOf(c).Int() == 0)
			}).
			Method("toArray", "()"+sigArray, func(c *Call) jni.Value {
				return c.Return(vm.NewArray(vm.MustClass("java/lang/Object"), items(c.This)...))
			}).
			Method("contains", "("+sigObject+")Z", func(c *Call) jni.Value {
				needle := c.Object(0)
				for _, it := range items(c.This) {
					if it == needle {
						return jni.Bool(true)
					}
				}
				return jni.Bool(false)
			})
	}

	list := vm.DefineClass("java/util/ArrayList", "", "java/util/List")
	common(list)
	list.
		Method("get", "(I)"+sigObject, func(c *Call) jni.Value {
			idx := int(c.Args[0].Int())
			var (
				it *Object
				n  int
			)
			c.This.Update(func() {
				s := c.This.Native.([]*Object)
				n = len(s)
				if idx >= 0 && idx < n {
					it = s[idx]
				}
			})
			if idx < 0 || idx >= n {
				return c.Throw("java/lang/IndexOutOfBoundsException", fmt.Sprintf("Index %d out of bounds for length %d", idx, n))
			}
			return c.Return(it)
		}).
		Method("add", "("+sigObject+")Z", func(c *Call) jni.Value {
			it := c.Object(0)
			c.This.Update(func() { c.This.Native = append(c.This.Native.([]*Object), it) })
			return jni.Bool(true)
		}).
		Method("addAll", "("+sigCollection+")Z", func(c *Call) jni.Value {
			src, ok := collection(c)
			if !ok {
				return c.Throw("java/lang/NullPointerException", "addAll of null")
			}
			c.This.Update(func() { c.This.Native = append(c.This.Native.([]*Object), src...) })
			return jni.Bool(len(src) > 0)
		}).
		Method("addAll", "(I"+sigCollection+")Z", func(c *Call) jni.Value {
			idx := int(c.Args[0].Int())
			arg := c.Object(1)
			if arg == nil {
				return c.Throw("java/lang/NullPointerException", "addAll of null")
			}
			src := items(arg)
			var bad bool
			c.This.Update(func() {
				s := c.This.Native.([]*Object)
				if idx < 0 || idx > len(s) {
					bad = true
					return
				}
				out := make([]*Object, 0, len(s)+len(src))
				out = append(out, s[:idx]...)
				out = append(out, src...)
				out = append(out, s[idx:]...)
				c.This.Native = out
			})
			if bad {
				return c.Throw("java/lang/IndexOutOfBoundsException", fmt.Sprintf("Index: %d", idx))
			}
			return jni.Bool(len(src) > 0)
		})

	set := vm.DefineClass("java/util/HashSet", "", "java/util/Set")
	common(set)
	set.
		Method("add", "("+sigObject+")Z", func(c *Call) jni.Value {
			it := c.Object(0)
			added := true
			c.This.Update(func() {
				s := c.This.Native.([]*Object)
				for _, have := range s {
					if have == it {
						added = false
						return
					}
				}
				c.This.Native = append(s, it)
			})
			return jni.Bool(added)
		}).
		Method("addAll", "("+sigCollection+")Z", func(c *Call) jni.Value {
			src, ok := collection(c)
			if !ok {
				return c.Throw("java/lang/NullPointerException", "addAll of null")
			}
			changed := false
			c.This.Update(func() {
				s := c.This.Native.([]*Object)
			next:
				for _, it := range src {
					for _, have := range s {
						if have == it {
							continue next
						}
					}
					s = append(s, it)
					changed = true
				}
				c.This.Native = s
			})
			return jni.Bool(changed)
		})
}

// String allocates a java.lang.String.
func (vm *VM) String(s string) *Object {
	o := vm.alloc(vm.MustClass("java/lang/String"))
	o.Native = s
	return o
}

// NewArray allocates an array of elem holding items.
func (vm *VM) NewArray(elem *Class, items ...*Object) *Object {
	o := vm.alloc(vm.arrayClass(jni.ArraySig(jni.ClassSig(elem.Name))))
	o.Native = append([]*Object{}, items...)
	return o
}

// NewBytes allocates a byte[] holding a copy of b.
func (vm *VM) NewBytes(b []byte) *Object {
	o := vm.alloc(vm.arrayClass("[B"))
	o.Native = append([]byte{}, b...)
	return o
}

// NewList allocates a java.util.ArrayList.
func (vm *VM) NewList(items ...*Object) *Object {
	o := vm.alloc(vm.MustClass("java/util/ArrayList"))
	o.Native = append([]*Object{}, items...)
	return o
}

// NewSet allocates a java.util.HashSet. Membership is by identity.
func (vm *VM) NewSet(items ...*Object) *Object {
	o := vm.alloc(vm.MustClass("java/util/HashSet"))
	var s []*Object
next:
	for _, it := range items {
		for _, have := range s {
			if have == it {
				continue next
			}
		}
		s = append(s, it)
	}
	if s == nil {
		s = []*Object{}
	}
	o.Native = s
	return o
}

// Items returns a snapshot of a list, set or object array.
func Items(o *Object) []*Object {
	if o == nil {
		return nil
	}
	var out []*Object
	o.Update(func() { out = append(out, o.Native.([]*Object)...) })
	return out
}

// Bytes returns the contents of a byte[].
func Bytes(o *Object) []byte {
	if o == nil {
		return nil
	}
	return o.Native.([]byte)
}

// Date allocates a java.util.Date.
func (vm *VM) Date(t time.Time) *Object {
	o := vm.alloc(vm.MustClass("java/util/Date"))
	o.Native = t.UnixMilli()
	return o
}

// Millis returns the epoch milliseconds of a java.util.Date.
func Millis(o *Object) int64 {
	return o.Native.(int64)
}

// Integer allocates a java.lang.Integer.
func (vm *VM) Integer(v int32) *Object {
	o := vm.alloc(vm.MustClass("java/lang/Integer"))
	o.Native = v
	return o
}

// Long allocates a java.lang.Long.
func (vm *VM) Long(v int64) *Object {
	o := vm.alloc(vm.MustClass("java/lang/Long"))
	o.Native = v
	return o
}

// Currency allocates a java.util.Currency.
func (vm *VM) Currency(code, symbol string) *Object {
	return vm.MustClass("java/util/Currency").New(map[string]any{
		"currencyCode": vm.String(code),
		"symbol":       vm.String(symbol),
	})
}

// NewThrowable allocates an exception of class with a message.
func (vm *VM) NewThrowable(class, msg string) *Object {
	c, ok := vm.Class(class)
	if !ok {
		c = vm.MustClass("java/lang/RuntimeException")
		msg = class + ": " + msg
	}
	return c.New(map[string]any{"detailMessage": vm.String(msg)})
}
