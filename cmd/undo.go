package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/history"
)

// Undo restores the env file to its latest snapshot and drops that
// snapshot from history
func Undo(ctx context.Context, env *Env, dryRun bool) {
	snap, err := undo(ctx, env, dryRun)
	if err != nil {
		HandleError(err)
	}
	if dryRun {
		return
	}

	env.Log.Info("restored snapshot", "path", env.Path, "seq", snap.Seq)
	fmt.Printf("Undid %s (#%d, %s)\n", snap.Summary(), snap.Seq, snap.Time.Format(timeFormat))
}

func undo(ctx context.Context, env *Env, dryRun bool) (*history.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *history.Snapshot
	err := withHistory(env, func(h *history.History, file string) error {
		var err error
		snap, err = h.Latest(file)
		if err != nil {
			return err
		}

		return withStore(env, true, func(store *dotenv.Store) error {
			if dryRun {
				printDiff(env.Path, store.Bytes(), snap.Data)
				return nil
			}
			if err := store.Restore(snap.Data); err != nil {
				return err
			}
			return h.Drop(file, snap.Seq)
		})
	})
	return snap, err
}
