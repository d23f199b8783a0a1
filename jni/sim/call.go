package sim

import (
	"github.com/wippyai/pte-bridge/jni"
)

// Call carries the receiver and arguments of a method invocation.
type Call struct {
	Env   *Env
	This  *Object
	Class *Class
	Args  []jni.Value
	ret   jni.Type
}

// VM returns the VM executing the call.
func (c *Call) VM() *VM { return c.Env.vm }

// Object resolves the i-th argument.
func (c *Call) Object(i int) *Object {
	return c.Env.Resolve(c.Args[i].Ref())
}

// String returns the i-th argument as a Go string, false when null.
func (c *Call) String(i int) (string, bool) {
	o := c.Object(i)
	if o == nil {
		return "", false
	}
	s, ok := o.Native.(string)
	return s, ok
}

// Return hands o back to the caller as a local reference.
func (c *Call) Return(o *Object) jni.Value {
	return jni.Object(c.Env.Local(o))
}

// Throw raises an exception of class and returns the zero result.
func (c *Call) Throw(class, msg string) jni.Value {
	c.Env.Throw(class, msg)
	return zero(c.ret)
}
