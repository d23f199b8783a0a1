package main

import (
	"context"
	"embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/internal/ptesim"
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/providers"
)

// defaultProvider needs no credentials.
const defaultProvider = "vrr"

// dist holds the library archive when the build placed one at
// dist/pte.jar.
//
//go:embed dist
var dist embed.FS

// nativeLauncher is set by the jni build.
var nativeLauncher func() jni.Launcher

func bootArchive() []byte {
	jar, err := dist.ReadFile("dist/pte.jar")
	if err != nil {
		return nil
	}
	return jar
}

// boot starts the runtime of backend on the calling goroutine.
func boot(ctx context.Context, backend string, cfg *providers.Config, log *zap.Logger) (*jvm.Runtime, error) {
	switch backend {
	case "sim":
		rt, _, err := ptesim.Start(ctx, ptesim.WithLogger(log))
		return rt, err
	case "native":
		if nativeLauncher == nil {
			return nil, fmt.Errorf("native backend not built in, rebuild with -tags jni")
		}
		return jvm.New(ctx, nativeLauncher(), nativeOptions(cfg, log)...)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func nativeOptions(cfg *providers.Config, log *zap.Logger) []jvm.Option {
	opts := []jvm.Option{jvm.WithLogger(log)}
	if jar := bootArchive(); jar != nil {
		opts = append(opts, jvm.WithBootArchive(jar))
	} else if cfg.Runtime.ClassPath != "" {
		opts = append(opts, jvm.WithClassPath(cfg.Runtime.ClassPath))
	}
	if cfg.Runtime.Debug != "" {
		opts = append(opts, jvm.WithDebug(cfg.Runtime.Debug))
	}
	if len(cfg.Runtime.Options) > 0 {
		opts = append(opts, jvm.WithOptions(cfg.Runtime.Options...))
	}
	return opts
}
