package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

const shellHelp = `Commands:
  suggest [-types t] <text>
  departures [-equivs] [-at HH:MM] <station-id>
  nearby [-types t] [-distance m] <lat> <lon>
  trips [-via id] [-at HH:MM] [-arrive] [-products p] [-earlier] [-later] <from-id> <to-id>
  batch [-types t] <text>...
  providers
  help
  quit`

// historyPath returns $XDG_STATE_HOME/pte/history, falling back to
// ~/.local/state.
func historyPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "pte", "history")
}

// shell runs a line editing loop on the calling thread.
func (a *app) shell(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completeCommand)

	hist := historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(hist), 0o755); err != nil {
				return
			}
			if f, err := os.Create(hist); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(a.out.w, "pte shell, provider %s. Type help for commands.\n", a.provider.ID())
	for {
		line, err := ln.Prompt(a.provider.ID() + "> ")
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.out.w)
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ln.AppendHistory(line)

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(a.out.w, shellHelp)
			continue
		case "providers":
			err = listProviders(a.out)
		default:
			err = a.dispatch(ctx, fields[0], fields[1:])
		}
		if err != nil {
			fmt.Fprintf(a.out.w, "error: %v\n", err)
		}
	}
}

func completeCommand(line string) []string {
	names := []string{"providers", "help", "quit"}
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(n, line) {
			out = append(out, n)
		}
	}
	return out
}
