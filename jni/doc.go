// Package jni describes the invocation interface of an embedded Java
// virtual machine in Go terms.
//
// A Launcher boots a VM. A VM hands out one Env per attached OS thread.
// Everything else goes through Env: class and member lookup, calls, field
// reads, strings, arrays, local frames, global references and pending
// exceptions. Object handles are Ref values and the zero Ref is null.
//
// Two implementations exist. The native package wraps a real libjvm
// through cgo and is built with the jni tag. The sim package runs
// Go-hosted classes in process and backs the tests and the demo mode of
// the command line tool.
//
// Method and field descriptors use the standard JVM syntax. MethodType and
// FieldType parse them so callers can select the right call variant:
//
//	params, ret, err := jni.MethodType("(Ljava/lang/String;I)Ljava/util/List;")
//	// params = [TypeObject TypeInt], ret = TypeObject
package jni
