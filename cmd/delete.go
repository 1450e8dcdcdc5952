package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/prompt"
)

// Delete removes a key's line from the env file. On a terminal the user
// confirms first unless force is set.
func Delete(ctx context.Context, env *Env, key string, force, dryRun bool) {
	if !force && !dryRun && prompt.IsTerminal(os.Stdin) {
		ok, err := prompt.Confirm(fmt.Sprintf("Delete %s from %s?", key, env.Path))
		if err != nil {
			HandleError(err)
		}
		if !ok {
			fmt.Println("Aborted")
			return
		}
	}

	_, err := mutate(ctx, env, "delete", key, false, dryRun, func(s *dotenv.Store) error {
		return s.Delete(key)
	})
	if err != nil {
		HandleError(err)
	}
	if !dryRun {
		fmt.Println("Key deleted successfully")
	}
}
