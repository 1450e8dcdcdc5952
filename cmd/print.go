package cmd

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/illarion/envedit/internal/dotenv"
)

// Print lists every key of the env file in file order
func Print(_ context.Context, env *Env) {
	err := withStore(env, false, func(store *dotenv.Store) error {
		entries := store.Entries()
		if len(entries) == 0 {
			fmt.Printf("No keys in %s\n", env.Path)
			return nil
		}

		for _, e := range entries {
			value := store.Value(e)
			shown := string(value)
			if !utf8.Valid(value) {
				shown = "<invalid utf-8>"
			}

			disabled, err := store.Disabled(e.Key)
			if err != nil {
				return err
			}
			if disabled {
				fmt.Printf("%s = %s (disabled)\n", e.Key, shown)
			} else {
				fmt.Printf("%s = %s\n", e.Key, shown)
			}
		}
		return nil
	})
	if err != nil {
		HandleError(err)
	}
}

// Get prints the value of key
func Get(_ context.Context, env *Env, key string) {
	var value string
	err := withStore(env, false, func(store *dotenv.Store) error {
		var err error
		value, err = store.Get(key)
		return err
	})
	if err != nil {
		HandleError(err)
	}
	fmt.Println(value)
}
