package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/git"
	"github.com/illarion/envedit/internal/history"
)

// Status shows the state of the env file and its history
func Status(_ context.Context, env *Env) {
	// Check if the env file exists
	if _, err := os.Stat(env.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("No %s file found\n", env.Path)
			fmt.Println("Run 'envedit set KEY VALUE' to create one")
		} else {
			HandleError(err)
		}
		return
	}

	var size, total, disabled int
	err := withStore(env, false, func(store *dotenv.Store) error {
		size = store.Len()
		for _, e := range store.Entries() {
			total++
			off, err := store.Disabled(e.Key)
			if err != nil {
				return err
			}
			if off {
				disabled++
			}
		}
		return nil
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("File: %s (%s)\n", env.Path, formatSize(int64(size)))
	fmt.Printf("Keys: %d (%d enabled, %d disabled)\n", total, total-disabled, disabled)

	fmt.Println()
	printHistoryStatus(os.Stdout, env)

	fmt.Print(git.Format(git.Check(env.Path)))
}

// printHistoryStatus reports the snapshots of the env file. It never
// creates the journal.
func printHistoryStatus(w io.Writer, env *Env) {
	if !env.Config.History.Enabled {
		fmt.Fprintln(w, "History: disabled")
		return
	}

	if _, err := os.Stat(env.Config.History.Path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(w, "History: none")
		return
	}

	err := withHistory(env, func(h *history.History, file string) error {
		snaps, err := h.List(file)
		if err != nil {
			return err
		}
		modified, err := h.GetModified()
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "History: %d snapshot(s) in %s\n", len(snaps), h.Path())
		if len(snaps) > 0 {
			last := snaps[0]
			fmt.Fprintf(w, "  last: #%d %s at %s\n", last.Seq, last.Summary(), last.Time.Format(timeFormat))
		}
		fmt.Fprintf(w, "  journal changed: %s\n", modified.Format(timeFormat))
		return nil
	})
	if err != nil {
		fmt.Fprintf(w, "History: unavailable (%s)\n", err)
	}
}
