package jvm

import (
	"fmt"
	"io"
	"strings"
)

const debugUsage = `Supported PTE_DEBUG values:
  gdb                Register GDB as error handler
  xgdb               Force the GDB error handler into xterm
  verbose            Write verbose JNI output
  interpreter        Disable JIT compilation for JVM code
  help               Print this help

Multiple values can be given by separating them by comma.
`

const (
	onErrorXterm = "-XX:OnError=xterm -e gdb -p %p"
	onErrorGDB   = "-XX:OnError=gdb -p %p"
	onErrorKill  = "-XX:OnError=kill -9 %p"
)

// debugTokens holds the comma-separated tokens of a debug value.
type debugTokens []string

func parseDebug(value string) debugTokens {
	return strings.Split(value, ",")
}

// has reports whether any token starts with name, ignoring case.
func (d debugTokens) has(name string) bool {
	for _, t := range d {
		if len(t) >= len(name) && strings.EqualFold(t[:len(name)], name) {
			return true
		}
	}
	return false
}

// debugOptions turns a debug value into VM options. set is false when
// the variable is absent.
func debugOptions(value string, set bool, stdinTTY func() bool, help io.Writer) []string {
	if !set {
		return []string{onErrorKill}
	}
	tokens := parseDebug(value)
	if tokens.has("help") && help != nil {
		fmt.Fprint(help, debugUsage)
	}

	var opts []string
	xgdb, gdb := tokens.has("xgdb"), tokens.has("gdb")
	switch {
	case xgdb || (gdb && !stdinTTY()):
		opts = append(opts, onErrorXterm)
	case gdb:
		opts = append(opts, onErrorGDB)
	default:
		opts = append(opts, onErrorKill)
	}
	if tokens.has("interpreter") {
		opts = append(opts, "-Xint")
	}
	if tokens.has("verbose") {
		opts = append(opts, "-verbose:jni")
	}
	return opts
}
