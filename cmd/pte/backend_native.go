//go:build jni && cgo

package main

import (
	"github.com/wippyai/pte-bridge/jni"
	"github.com/wippyai/pte-bridge/jni/native"
)

func init() {
	nativeLauncher = func() jni.Launcher { return native.Launcher{} }
}
