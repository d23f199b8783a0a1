package sim

import (
	"github.com/wippyai/pte-bridge/jni"
)

// Launcher boots a fresh VM per Launch and runs setup on it before the
// primary thread is attached.
type Launcher struct {
	setup func(*VM)
	opts  []Option
	args  jni.InitArgs
	vm    *VM

	// Err, when set, is returned by Launch instead of booting.
	Err error
}

var _ jni.Launcher = (*Launcher)(nil)

// NewLauncher returns a launcher. setup may be nil.
func NewLauncher(setup func(*VM), opts ...Option) *Launcher {
	return &Launcher{setup: setup, opts: opts}
}

// Launch creates the VM and attaches the calling thread as "main".
func (l *Launcher) Launch(args jni.InitArgs) (jni.VM, jni.Env, error) {
	l.args = args
	if l.Err != nil {
		return nil, nil, l.Err
	}
	vm := New(l.opts...)
	if l.setup != nil {
		l.setup(vm)
	}
	env, err := vm.AttachCurrentThread("main")
	if err != nil {
		return nil, nil, err
	}
	l.vm = vm
	return vm, env, nil
}

// Args returns the arguments of the last Launch.
func (l *Launcher) Args() jni.InitArgs { return l.args }

// VM returns the VM created by the last successful Launch.
func (l *Launcher) VM() *VM { return l.vm }
