package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/illarion/envedit/internal/config"
	"github.com/illarion/envedit/internal/diff"
	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/git"
	"github.com/illarion/envedit/internal/history"
	"github.com/illarion/envedit/internal/prompt"
)

// Env is the resolved setup shared by all commands
type Env struct {
	Path       string // Env file being edited
	ConfigPath string
	Config     config.Config
	Log        *slog.Logger
}

// HandleError reports err and exits with status 1. Handles are closed
// before it is called: withStore and withHistory return first.
func HandleError(err error) {
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'envedit set KEY VALUE' to create the file\n")
	case errors.Is(err, dotenv.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'envedit print' to list keys\n")
	case errors.Is(err, dotenv.ErrAlreadyEnabled):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, history.ErrNoHistory):
		fmt.Fprintf(os.Stderr, "Error: no history for this file\n")
		fmt.Fprintf(os.Stderr, "Snapshots are recorded by set, delete, enable and disable\n")
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Error: interrupted\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

// stderr receives warnings that do not fail a command
var stderr io.Writer = os.Stderr

// openStore opens the env file, creating it when create is set
func openStore(env *Env, create bool) (*dotenv.Store, error) {
	open := dotenv.Open
	if create {
		open = dotenv.Create
	}
	store, err := open(env.Path)
	if err != nil {
		return nil, err
	}
	store.SetLogger(env.Log)
	return store, nil
}

// withStore runs fn with the env file open and closes it before returning
func withStore(env *Env, create bool, fn func(*dotenv.Store) error) error {
	store, err := openStore(env, create)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// openHistory opens and initializes the snapshot journal
func openHistory(env *Env) (*history.History, error) {
	h, err := history.Open(env.Config.History.Path)
	if err != nil {
		return nil, err
	}
	if err := h.Initialize(); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// withHistory runs fn with the journal open and the history key of the
// env file, closing the journal before returning
func withHistory(env *Env, fn func(h *history.History, file string) error) error {
	file, err := history.FileKey(env.Path)
	if err != nil {
		return err
	}
	h, err := openHistory(env)
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(h, file)
}

// recordSnapshot stores before as the state preceding op and prunes old
// snapshots. Failures only warn: the edit itself already succeeded.
func recordSnapshot(env *Env, op, key string, before []byte) {
	if !env.Config.History.Enabled {
		return
	}

	err := withHistory(env, func(h *history.History, file string) error {
		snap := history.NewSnapshot(file, op, key, before)
		if err := h.Record(snap); err != nil {
			return err
		}
		env.Log.Debug("recorded snapshot", "file", file, "seq", snap.Seq, "op", snap.Summary())

		if keep := env.Config.History.Keep; keep > 0 {
			removed, err := h.Prune(file, keep)
			if err != nil {
				fmt.Fprintf(stderr, "warning: history prune failed: %s\n", err)
				return nil
			}
			if removed > 0 {
				env.Log.Debug("pruned snapshots", "file", file, "removed", removed)
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(stderr, "warning: history not recorded: %s\n", err)
	}
}

// warnGit prints a warning for every git problem of the env file
func warnGit(path string) {
	for _, w := range git.Check(path).Warnings() {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
}

// mutate runs edit against the env file. With dryRun the edit runs on a
// detached copy and only the resulting diff is printed. Otherwise the
// pre-edit content is recorded in history when the edit changed anything.
func mutate(ctx context.Context, env *Env, op, key string, create, dryRun bool, edit func(*dotenv.Store) error) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if dryRun {
		before, err := os.ReadFile(env.Path)
		if err != nil && !(create && errors.Is(err, os.ErrNotExist)) {
			return false, err
		}
		preview := dotenv.Load(append([]byte(nil), before...))
		preview.SetLogger(env.Log)
		if err := edit(preview); err != nil {
			return false, err
		}
		printDiff(env.Path, before, preview.Bytes())
		return false, nil
	}

	var before, after []byte
	err := withStore(env, create, func(store *dotenv.Store) error {
		before = store.Bytes()
		if err := edit(store); err != nil {
			return err
		}
		after = store.Bytes()
		return nil
	})
	if err != nil {
		return false, err
	}

	if bytes.Equal(before, after) {
		env.Log.Debug("no change", "op", op, "key", key)
		return false, nil
	}
	recordSnapshot(env, op, key, before)
	warnGit(env.Path)
	env.Log.Info("edited env file", "op", op, "key", key, "path", env.Path)
	return true, nil
}

// printDiff prints a unified diff, coloured on a terminal, followed by
// the number of changed lines
func printDiff(name string, before, after []byte) {
	out := diff.Unified(name, before, after)
	if out == "" {
		fmt.Println("No changes")
		return
	}
	if prompt.IsTerminal(os.Stdout) {
		out = diff.Colorize(out)
	}
	fmt.Print(out)
	fmt.Println(changeSummary(before, after))
}

// changeSummary formats the inserted and deleted line counts as "+N -M"
func changeSummary(before, after []byte) string {
	added, removed := diff.Stats(diff.Lines(before, after))
	return fmt.Sprintf("+%d -%d", added, removed)
}
