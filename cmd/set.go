package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/prompt"
)

// SetOptions holds the arguments of the set command
type SetOptions struct {
	Key          string
	Value        string
	HasValue     bool // Value given on the command line
	Descriptions []string
	Secret       bool // Read the value without echo
	DryRun       bool
}

// Set updates or creates a key. The file is created when missing.
func Set(ctx context.Context, env *Env, opts SetOptions) {
	value, err := readValue(opts)
	if err != nil {
		HandleError(err)
	}

	_, statErr := os.Stat(env.Path)
	created := false
	changed, err := mutate(ctx, env, "set", opts.Key, true, opts.DryRun, func(s *dotenv.Store) error {
		_, found := s.Lookup(opts.Key)
		created = !found
		return s.Set(opts.Key, value, opts.Descriptions...)
	})
	if err != nil {
		HandleError(err)
	}
	if opts.DryRun {
		return
	}

	switch {
	case os.IsNotExist(statErr):
		fmt.Printf("Created %s\n", env.Path)
		fmt.Println("Key created successfully")
	case created:
		fmt.Println("Key created successfully")
	case changed:
		fmt.Println("Key updated successfully")
	default:
		fmt.Println("Key unchanged")
	}
}

// readValue returns the value from the command line, the terminal or stdin
func readValue(opts SetOptions) ([]byte, error) {
	if opts.HasValue && !opts.Secret {
		return []byte(opts.Value), nil
	}
	if opts.HasValue {
		return nil, fmt.Errorf("--secret reads the value from the terminal; do not pass VALUE")
	}

	if prompt.IsTerminal(os.Stdin) {
		if !opts.Secret {
			return nil, fmt.Errorf("missing value for %s (pass VALUE or use --secret)", opts.Key)
		}
		return prompt.ReadSecretConfirm(fmt.Sprintf("Value for %s: ", opts.Key))
	}

	// Piped input: first line is the value
	line, err := prompt.ReadLine(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read value from stdin: %w", err)
	}
	return []byte(line), nil
}
