package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/envedit/internal/dotenv"
)

// Toggle disables (comments out) or enables (uncomments) a key
func Toggle(ctx context.Context, env *Env, key string, st dotenv.State, dryRun bool) {
	_, err := mutate(ctx, env, st.String(), key, false, dryRun, func(s *dotenv.Store) error {
		return s.Toggle(key, st)
	})
	if err != nil {
		HandleError(err)
	}
	if dryRun {
		return
	}

	if st == dotenv.Enable {
		fmt.Println("Key enabled successfully")
	} else {
		fmt.Println("Key disabled successfully")
	}
}
