package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envedit/internal/history"
)

// Diff compares the latest history snapshot with the current env file
func Diff(_ context.Context, env *Env) {
	current, err := os.ReadFile(env.Path)
	if err != nil {
		HandleError(err)
	}

	var snap *history.Snapshot
	err = withHistory(env, func(h *history.History, file string) error {
		var err error
		snap, err = h.Latest(file)
		return err
	})
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Changes since #%d (%s, %s):\n", snap.Seq, snap.Summary(), snap.Time.Format(timeFormat))
	printDiff(env.Path, snap.Data, current)
}
