package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envedit/internal/config"
)

// ConfigShow prints the effective configuration as TOML
func ConfigShow(_ context.Context, env *Env) {
	out, err := config.Marshal(env.Config)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("# %s\n", env.ConfigPath)
	fmt.Print(out)
}

// ConfigInit writes the default configuration unless a file exists
func ConfigInit(_ context.Context, env *Env) {
	if _, err := os.Stat(env.ConfigPath); err == nil {
		fmt.Fprintf(os.Stderr, "Error: %s already exists\n", env.ConfigPath)
		fmt.Fprintf(os.Stderr, "Use 'envedit config' to see current settings\n")
		os.Exit(1)
	}

	if err := config.Save(env.ConfigPath, config.Default()); err != nil {
		HandleError(err)
	}
	fmt.Printf("Wrote %s\n", env.ConfigPath)
}
