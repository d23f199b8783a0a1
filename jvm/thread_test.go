package jvm

import (
	stderrors "errors"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/pte-bridge/errors"
)

func TestAttachThread_Worker(t *testing.T) {
	f := boot(t, nil)

	var (
		attached, detached int
		name               string
	)
	onThread(func() {
		if f.rt.Env() != nil {
			t.Error("fresh thread should not be attached")
		}
		g, err := f.rt.AttachThread("worker-1")
		if err != nil {
			t.Errorf("AttachThread: %v", err)
			return
		}
		attached = len(f.vm.Threads())
		name = g.Env().(interface{ Name() string }).Name()
		g.Ref()
		g.Unref()
		g.Ping()
		if f.rt.Env() == nil {
			t.Error("thread detached while still referenced")
		}
		g.Unref()
		detached = len(f.vm.Threads())
	})

	if attached != 2 || detached != 1 {
		t.Errorf("threads: %d while attached, %d after, want 2 and 1", attached, detached)
	}
	if name != "worker-1" {
		t.Errorf("thread name = %q", name)
	}
}

func TestAttachThread_PrimaryIsNotDetached(t *testing.T) {
	f := boot(t, nil)

	g, err := f.rt.AttachThread("again")
	if err != nil {
		t.Fatal(err)
	}
	g.Unref()
	if f.rt.Env() == nil {
		t.Error("guard detached a thread it did not attach")
	}
}

func TestAttachThread_Failure(t *testing.T) {
	f := boot(t, nil)
	f.vm.FailAttach(true)
	defer f.vm.FailAttach(false)

	var err error
	onThread(func() {
		_, err = f.rt.AttachThread("doomed")
	})
	if !stderrors.Is(err, errors.JvmThreading(nil)) {
		t.Errorf("AttachThread = %v, want jvm-threading", err)
	}
}

func TestThreadGuard_DetachFailureIsLogged(t *testing.T) {
	f := boot(t, nil)

	onThread(func() {
		g, err := f.rt.AttachThread("sticky")
		if err != nil {
			t.Error(err)
			return
		}
		f.vm.FailDetach(true)
		g.Unref()
		f.vm.FailDetach(false)
	})

	entries := f.logs.FilterMessage("unable to detach thread").All()
	if len(entries) != 1 {
		t.Fatalf("got %d detach log entries, want 1", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v, want error", entries[0].Level)
	}
}
