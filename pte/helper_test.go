package pte_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/pte-bridge/internal/ptesim"
	"github.com/wippyai/pte-bridge/jni/sim"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/providers"
	"github.com/wippyai/pte-bridge/pte"
)

const (
	alexanderplatz = "900100003"
	zoo            = "900023201"
	gesundbrunnen  = "900007102"
)

type fixture struct {
	rt       *jvm.Runtime
	net      *ptesim.Network
	vm       *sim.VM
	provider *pte.Provider
	logs     *observer.ObservedLogs
}

// setup boots the simulated library and creates a provider. The runtime
// belongs to the calling goroutine, so tests keep their calls on it
// instead of spreading them over subtests.
func setup(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := pte.Logger()
	pte.SetLogger(zap.New(core))
	t.Cleanup(func() { pte.SetLogger(prev) })

	rt, net := ptesim.Boot(t)
	p, err := providers.New(rt, "vrr", nil)
	if err != nil {
		t.Fatalf("providers.New: %v", err)
	}
	t.Cleanup(p.Release)
	return &fixture{rt: rt, net: net, vm: net.VM(), provider: p, logs: logs}
}

// station resolves a station by name through suggestLocations. The
// caller owns the result.
func (f *fixture) station(t *testing.T, name string) *pte.Location {
	t.Helper()
	list, err := f.provider.SuggestLocations(name, pte.LocationsStation, 1)
	if err != nil {
		t.Fatalf("suggest %q: %v", name, err)
	}
	defer list.Release()
	loc, ok := list.Item(0)
	if !ok {
		t.Fatalf("no station matches %q", name)
	}
	return &pte.Location{Object: loc.Retain()}
}

// env returns the simulated interface of the calling thread.
func (f *fixture) env() *sim.Env {
	return f.vm.CurrentEnv()
}

func at(hour, minute int) time.Time {
	b := ptesim.Base
	return time.Date(b.Year(), b.Month(), b.Day(), hour, minute, 0, 0, b.Location())
}
