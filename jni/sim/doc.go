// Package sim is an in-process virtual machine implementing jni.Env and
// jni.VM with classes written in Go.
//
// Classes are registered with DefineClass, DefineInterface and DefineEnum
// and given Go method bodies:
//
//	vm := sim.New()
//	vm.DefineClass("demo/Greeter", "").
//		Method("greet", "()Ljava/lang/String;", func(c *sim.Call) jni.Value {
//			return c.Return(c.VM().String("hello"))
//		})
//
// Each attached OS thread gets its own Env with a local reference table
// and a stack of local frames. References are handles into refs tables,
// so stale references and references used on the wrong thread panic
// instead of corrupting memory. Exceptions stay pending until cleared.
//
// The VM counts method calls, field reads, live locals per thread and
// live globals. Tests use the counters to assert caching and reference
// hygiene of code written against jni.Env.
package sim
