package jvm

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/sim"
)

func TestCheckException(t *testing.T) {
	tests := []struct {
		name  string
		class string
		msg   string
		kind  errors.Kind
		want  string
	}{
		{"io", "java/io/IOException", "connection reset", errors.KindIOException, "java.io.IOException"},
		{"io subclass", "java/net/SocketTimeoutException", "timed out", errors.KindIOException, "java.net.SocketTimeoutException"},
		{"runtime", "java/lang/IllegalStateException", "not ready", errors.KindUnhandledException, "java.lang.IllegalStateException"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := boot(t, nil)
			env := f.env()
			env.Throw(tt.class, tt.msg)

			err := f.rt.CheckException()
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("CheckException = %v", err)
			}
			if e.Kind != tt.kind || e.Domain != errors.DomainJava {
				t.Errorf("kind = %s/%s, want java/%s", e.Domain, e.Kind, tt.kind)
			}
			if e.Detail != tt.msg || e.Class != tt.want {
				t.Errorf("detail %q class %q", e.Detail, e.Class)
			}
			if env.Pending() != nil {
				t.Error("exception still pending")
			}
			if env.LiveLocals() != 0 {
				t.Errorf("leaked %d locals", env.LiveLocals())
			}
		})
	}
}

func TestCheckException_None(t *testing.T) {
	f := boot(t, nil)
	if err := f.rt.CheckException(); err != nil {
		t.Errorf("CheckException = %v", err)
	}
}

func TestCheckException_MessageThrows(t *testing.T) {
	f := boot(t, func(vm *sim.VM) {
		vm.DefineClass("demo/BrokenException", "java/lang/RuntimeException").
			Method("getMessage", "()Ljava/lang/String;", func(c *sim.Call) jni.Value {
				return c.Throw("java/lang/IllegalStateException", "no message")
			})
	})
	env := f.env()
	env.Throw("demo/BrokenException", "lost")

	err := f.rt.CheckException()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("CheckException = %v", err)
	}
	if e.Kind != errors.KindUnhandledException || e.Class != "demo.BrokenException" || e.Detail != "" {
		t.Errorf("err = %+v", e)
	}
	if env.Pending() != nil {
		t.Error("nested exception left pending")
	}
	if f.logs.FilterMessage("exception while reading exception").Len() != 1 {
		t.Error("nested exception not logged")
	}
}
