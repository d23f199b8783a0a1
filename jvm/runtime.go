package jvm

import (
	"context"
	"os"
	goruntime "runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/pte-bridge/errors"
	"github.com/wippyai/pte-bridge/jni"
)

// live is set while a Runtime exists. The VM cannot be created twice in
// one process, so a second New is refused.
var live atomic.Bool

// Runtime owns the embedded VM. It is reference counted; dropping the
// last reference destroys the VM.
type Runtime struct {
	vm      jni.VM
	archive *os.File
	logger  *zap.Logger
	lookups *lookups
	options []string
	primary int
	refs    atomic.Int32
}

// New boots the VM through launcher. The calling goroutine is locked to
// its OS thread, which becomes the primary thread and stays attached
// until the runtime is destroyed.
func New(ctx context.Context, launcher jni.Launcher, opts ...Option) (*Runtime, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.JvmInitFailed("boot cancelled", err)
	}
	if !live.CompareAndSwap(false, true) {
		return nil, errors.JvmInitFailed("a runtime is already live in this process", nil)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = Logger()
	}
	log = log.Named("jvm")

	r := &Runtime{logger: log, lookups: newLookups()}

	var classPath string
	switch {
	case cfg.archive != nil:
		f, err := exposeArchive(cfg.archive)
		if err != nil {
			live.Store(false)
			return nil, errors.JvmInitFailed("expose boot archive", err)
		}
		r.archive = f
		classPath = archivePath(f)
	case cfg.classPath != "":
		classPath = cfg.classPath
	default:
		live.Store(false)
		return nil, errors.JvmInitFailed("no boot archive or class path configured", nil)
	}

	debug, set := os.LookupEnv(DebugEnv)
	if cfg.debug != nil {
		debug, set = *cfg.debug, true
	}
	r.options = append([]string{"-Djava.class.path=" + classPath},
		debugOptions(debug, set, cfg.stdinTTY, cfg.helpOut)...)
	r.options = append(r.options, cfg.extra...)

	goruntime.LockOSThread()
	vm, _, err := launcher.Launch(jni.InitArgs{
		Version:            jni.Version21,
		Options:            r.options,
		IgnoreUnrecognized: true,
	})
	if err != nil {
		goruntime.UnlockOSThread()
		r.closeArchive()
		live.Store(false)
		return nil, errors.JvmInitFailed("create Java VM", err)
	}
	r.vm = vm
	r.primary = unix.Gettid()
	r.refs.Store(1)

	log.Info("runtime created", zap.Strings("options", r.options))
	return r, nil
}

// Ref takes a reference.
func (r *Runtime) Ref() *Runtime {
	r.refs.Add(1)
	return r
}

// Unref drops a reference. The last one destroys the VM and releases
// the boot archive. Destruction is final for the process.
func (r *Runtime) Unref() {
	n := r.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		panic("jvm: runtime unref below zero")
	}
	if env := r.Env(); env != nil {
		r.releaseLookups(env)
	}
	if err := r.vm.Destroy(); err != nil {
		r.logger.Error("destroy VM", zap.Error(err))
	}
	r.closeArchive()
	if unix.Gettid() == r.primary {
		goruntime.UnlockOSThread()
	}
	r.logger.Info("runtime destroyed")
	live.Store(false)
}

func (r *Runtime) closeArchive() {
	if r.archive != nil {
		r.archive.Close()
		r.archive = nil
	}
}

// Env returns the calling thread's interface, or nil if the thread is
// not attached.
func (r *Runtime) Env() jni.Env {
	env, ok := r.vm.GetEnv()
	if !ok {
		return nil
	}
	return env
}

// mustEnv returns the calling thread's interface or panics.
func (r *Runtime) mustEnv() jni.Env {
	env := r.Env()
	if env == nil {
		panic(errors.New(errors.DomainJava, errors.KindJvmThreading).
			Detail("thread %d is not attached", unix.Gettid()).
			Build())
	}
	return env
}

// Options returns the VM options the runtime booted with.
func (r *Runtime) Options() []string {
	return append([]string(nil), r.options...)
}

// VM returns the underlying virtual machine.
func (r *Runtime) VM() jni.VM { return r.vm }

// Logger returns the runtime's logger.
func (r *Runtime) Logger() *zap.Logger { return r.logger }

// Live reports whether a runtime currently exists in the process.
func Live() bool { return live.Load() }
