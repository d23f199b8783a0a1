package jvm

import (
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// DebugEnv names the environment variable holding debug tokens.
const DebugEnv = "PTE_DEBUG"

type config struct {
	archive   []byte
	classPath string
	debug     *string
	extra     []string
	logger    *zap.Logger
	stdinTTY  func() bool
	helpOut   io.Writer
}

func defaultConfig() config {
	return config{
		stdinTTY: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		helpOut:  os.Stdout,
	}
}

// Option configures a Runtime.
type Option func(*config)

// WithBootArchive supplies the class archive. It is exposed to the VM
// through an anonymous memory file.
func WithBootArchive(jar []byte) Option {
	return func(c *config) { c.archive = jar }
}

// WithClassPath sets a class path on disk. It is ignored when a boot
// archive is given.
func WithClassPath(path string) Option {
	return func(c *config) { c.classPath = path }
}

// WithDebug sets the debug tokens, overriding the environment.
func WithDebug(tokens string) Option {
	return func(c *config) { c.debug = &tokens }
}

// WithOptions appends raw VM options.
func WithOptions(opts ...string) Option {
	return func(c *config) { c.extra = append(c.extra, opts...) }
}

// WithLogger sets the runtime's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStdinTTY replaces the terminal probe used by the gdb debug token.
func WithStdinTTY(probe func() bool) Option {
	return func(c *config) { c.stdinTTY = probe }
}

// WithHelpOutput redirects the debug usage text.
func WithHelpOutput(w io.Writer) Option {
	return func(c *config) { c.helpOut = w }
}
