package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/providers"
	"github.com/wippyai/pte-bridge/pte"
	"github.com/wippyai/pte-bridge/task"
)

const usage = `Usage: pte [flags] <command> [args]

Commands:
  providers                      list the provider catalog
  suggest <text>                 suggest locations
  departures <station-id>        departures of a station
  nearby <lat> <lon>             locations near a coordinate
  trips <from-id> <to-id>        trips between two stations
  batch <text>...                run suggestions concurrently
  shell                          interactive command line
  tui                            interactive terminal UI

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the global flags.
type options struct {
	config   string
	provider string
	backend  string
	format   string
	max      int
	verbose  bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("pte", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.config, "config", providers.DefaultPath(), "Path to the configuration file")
	fs.StringVar(&opts.provider, "provider", "", "Provider id (overrides the configuration)")
	fs.StringVar(&opts.backend, "backend", "sim", "Library backend: sim or native")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json or yaml")
	fs.IntVar(&opts.max, "max", 0, "Maximum number of results (overrides the configuration)")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	if err := execute(context.Background(), opts, fs.Args(), stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, opts options, args []string, stdout io.Writer) error {
	out, err := newPrinter(stdout, opts.format)
	if err != nil {
		return err
	}
	cfg, err := providers.LoadConfig(opts.config)
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.max > 0 {
		cfg.UI.MaxResults = opts.max
	}
	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}

	cmd, rest := args[0], args[1:]
	if cmd == "providers" {
		return listProviders(out)
	}
	if _, ok := commands[cmd]; !ok && cmd != "shell" && cmd != "tui" {
		return fmt.Errorf("unknown command %q", cmd)
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	rt, err := boot(ctx, opts.backend, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Unref()

	p, err := providers.New(rt, cfg.Provider, cfg)
	if err != nil {
		return err
	}
	defer p.Release()

	a := &app{
		rt:       rt,
		provider: p,
		pool:     task.NewPool(int64(cfg.UI.Workers)),
		out:      out,
		max:      cfg.UI.MaxResults,
		log:      log,
	}
	switch cmd {
	case "shell":
		return a.shell(ctx)
	case "tui":
		return a.tui(ctx)
	}
	return a.dispatch(ctx, cmd, rest)
}

// newLogger returns a development logger when verbose is set and a no-op
// logger otherwise, and installs it into the bridge packages.
func newLogger(verbose bool) (*zap.Logger, error) {
	log := zap.NewNop()
	if verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}
	jvm.SetLogger(log)
	task.SetLogger(log.Named("task"))
	pte.SetLogger(log.Named("pte"))
	return log, nil
}

// app holds what the commands share.
type app struct {
	rt       *jvm.Runtime
	provider *pte.Provider
	pool     *task.Pool
	out      *printer
	max      int
	log      *zap.Logger
}

// dispatch runs one command with its arguments.
func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	c, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	run := c(a, fs)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return run(ctx, positional)
}

// parseInterspersed parses flags that may follow positional arguments.
// Arguments that parse as numbers are positional even with a leading
// minus, so negative coordinates work.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for len(args) > 0 {
		if _, err := strconv.ParseFloat(args[0], 64); err == nil {
			positional = append(positional, args[0])
			args = args[1:]
			continue
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
	return positional, nil
}
