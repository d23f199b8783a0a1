// Package ptesim simulates the public transport enabler library on the
// in-process VM of package sim. It serves a small fixed Berlin network so
// the bridge, the command and their tests run without a JVM.
package ptesim

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jni/sim"
	"github.com/wippyai/pte-bridge/jvm"
)

// Base is the default time of queries that pass no time: Monday,
// 2024-03-04 08:00 in Berlin.
var Base = time.Date(2024, 3, 4, 8, 0, 0, 0, time.FixedZone("CET", 3600))

type config struct {
	logger    *zap.Logger
	now       time.Time
	maxFrames int
	jvmOpts   []jvm.Option
}

// Option configures Start and Boot.
type Option func(*config)

// WithLogger sets the logger of the runtime.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithNow sets the time used by queries without a time.
func WithNow(t time.Time) Option {
	return func(c *config) { c.now = t }
}

// WithMaxFrames limits the local frame depth of the VM.
func WithMaxFrames(n int) Option {
	return func(c *config) { c.maxFrames = n }
}

// WithJVMOptions appends runtime options.
func WithJVMOptions(opts ...jvm.Option) Option {
	return func(c *config) { c.jvmOpts = append(c.jvmOpts, opts...) }
}

// Start creates a runtime over a fresh simulated library. The calling
// goroutine becomes the main thread of the runtime.
func Start(ctx context.Context, opts ...Option) (*jvm.Runtime, *Network, error) {
	cfg := config{logger: zap.NewNop(), now: Base}
	for _, o := range opts {
		o(&cfg)
	}

	var network *Network
	var simOpts []sim.Option
	if cfg.maxFrames > 0 {
		simOpts = append(simOpts, sim.WithMaxFrames(cfg.maxFrames))
	}
	l := sim.NewLauncher(func(vm *sim.VM) {
		defineDTOs(vm)
		network = newNetwork(vm, cfg.now)
		network.defineProviders()
	}, simOpts...)

	jvmOpts := append([]jvm.Option{
		jvm.WithClassPath("/dev/null"),
		jvm.WithDebug(""),
		jvm.WithLogger(cfg.logger),
	}, cfg.jvmOpts...)
	rt, err := jvm.New(ctx, l, jvmOpts...)
	if err != nil {
		return nil, nil, err
	}
	if network == nil {
		rt.Unref()
		return nil, nil, fmt.Errorf("ptesim: launcher did not set up the library")
	}
	return rt, network, nil
}

// Boot is Start for tests: it fails t on error and drops the runtime
// when the test ends. With a nil t it panics on error instead.
func Boot(t testing.TB, opts ...Option) (*jvm.Runtime, *Network) {
	if t != nil {
		t.Helper()
	}
	rt, n, err := Start(context.Background(), opts...)
	if err != nil {
		if t == nil {
			panic(err)
		}
		t.Fatalf("ptesim: %v", err)
	}
	if t != nil {
		t.Cleanup(rt.Unref)
	}
	return rt, n
}
