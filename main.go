package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/illarion/envedit/cmd"
	"github.com/illarion/envedit/internal/config"
	"github.com/illarion/envedit/internal/dotenv"
	"github.com/illarion/envedit/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	global := pflag.NewFlagSet("envedit", pflag.ExitOnError)
	global.SetInterspersed(false)
	path := global.StringP("path", "p", "", "Env file to edit (default .env)")
	verbose := global.BoolP("verbose", "v", false, "Log debug output")
	noHistory := global.Bool("no-history", false, "Do not record snapshots")
	global.Usage = printUsage
	if err := global.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	args := global.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	// Commands without env file setup
	switch args[0] {
	case "help":
		if len(args) < 2 {
			printUsage()
			return
		}
		printCommandHelp(args[1])
		return
	case "completion":
		runCompletion(args[1:])
		return
	}

	env := setup(*path, *verbose, *noHistory)

	switch args[0] {
	case "print", "ls":
		runPrint(ctx, env, args[0], args[1:])
	case "get":
		runGet(ctx, env, args[1:])
	case "set":
		runSet(ctx, env, args[1:])
	case "delete", "rm":
		runDelete(ctx, env, args[0], args[1:])
	case "enable":
		runToggle(ctx, env, "enable", dotenv.Enable, args[1:])
	case "disable":
		runToggle(ctx, env, "disable", dotenv.Disable, args[1:])
	case "diff":
		runDiff(ctx, env, args[1:])
	case "status":
		runStatus(ctx, env, args[1:])
	case "history":
		runHistory(ctx, env, args[1:])
	case "undo":
		runUndo(ctx, env, args[1:])
	case "config":
		runConfig(ctx, env, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// setup loads configuration, applies global flags and installs the logger
func setup(path string, verbose, noHistory bool) *cmd.Env {
	log := logger.Init()

	configPath := config.DefaultPath()
	conf, err := config.Load(configPath)
	if err != nil {
		cmd.HandleError(err)
	}

	level, err := logger.ParseLevel(conf.Log.Level)
	if err != nil {
		log.Warn("ignoring log level", "err", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger.SetLevel(level)

	if path != "" {
		conf.File = path
	}
	if noHistory {
		conf.History.Enabled = false
	}

	log.Debug("configuration loaded", "config", configPath, "file", conf.File, "history", conf.History.Enabled)
	return &cmd.Env{
		Path:       conf.File,
		ConfigPath: configPath,
		Config:     conf,
		Log:        log,
	}
}

// newFlagSet creates a command FlagSet whose usage prints the command help
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.Usage = func() { printCommandHelp(name) }
	return fs
}

func parse(fs *pflag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runPrint(ctx context.Context, env *cmd.Env, name string, args []string) {
	fs := newFlagSet(name)
	parse(fs, args)

	cmd.Print(ctx, env)
}

func runGet(ctx context.Context, env *cmd.Env, args []string) {
	fs := newFlagSet("get")
	parse(fs, args)
	requireArgs(fs, 1, "envedit get KEY")

	cmd.Get(ctx, env, fs.Arg(0))
}

func runSet(ctx context.Context, env *cmd.Env, args []string) {
	fs, opts := setFlags()
	parse(fs, args)
	requireArgs(fs, 1, "envedit set KEY [VALUE] [-d TEXT]... [--secret] [--dry-run]")

	cmd.Set(ctx, env, opts(fs))
}

// setFlags defines the set flags; the returned func builds the options
// once the arguments are parsed. A VALUE starting with '-' follows "--".
func setFlags() (*pflag.FlagSet, func(*pflag.FlagSet) cmd.SetOptions) {
	fs := newFlagSet("set")
	descriptions := fs.StringArrayP("description", "d", nil, "Description comment line (repeatable)")
	secret := fs.Bool("secret", false, "Read the value without echo")
	dryRun := fs.Bool("dry-run", false, "Show the diff without writing")

	return fs, func(fs *pflag.FlagSet) cmd.SetOptions {
		return cmd.SetOptions{
			Key:          fs.Arg(0),
			Value:        fs.Arg(1),
			HasValue:     fs.NArg() > 1,
			Descriptions: *descriptions,
			Secret:       *secret,
			DryRun:       *dryRun,
		}
	}
}

func runDelete(ctx context.Context, env *cmd.Env, name string, args []string) {
	fs := newFlagSet(name)
	force := fs.BoolP("force", "f", false, "Delete without confirmation")
	dryRun := fs.Bool("dry-run", false, "Show the diff without writing")
	parse(fs, args)
	requireArgs(fs, 1, "envedit delete KEY [-f|--force] [--dry-run]")

	cmd.Delete(ctx, env, fs.Arg(0), *force, *dryRun)
}

func runToggle(ctx context.Context, env *cmd.Env, name string, st dotenv.State, args []string) {
	fs := newFlagSet(name)
	dryRun := fs.Bool("dry-run", false, "Show the diff without writing")
	parse(fs, args)
	requireArgs(fs, 1, "envedit "+name+" KEY [--dry-run]")

	cmd.Toggle(ctx, env, fs.Arg(0), st, *dryRun)
}

func runDiff(ctx context.Context, env *cmd.Env, args []string) {
	fs := newFlagSet("diff")
	parse(fs, args)

	cmd.Diff(ctx, env)
}

func runStatus(ctx context.Context, env *cmd.Env, args []string) {
	fs := newFlagSet("status")
	parse(fs, args)

	cmd.Status(ctx, env)
}

func runHistory(ctx context.Context, env *cmd.Env, args []string) {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		fs := newFlagSet("history")
		all := fs.BoolP("all", "a", false, "List every file with history")
		parse(fs, args)
		if *all {
			cmd.HistoryListAll(ctx, env)
			return
		}
		cmd.HistoryList(ctx, env)
	case "show":
		fs := newFlagSet("history")
		parse(fs, args)
		requireArgs(fs, 1, "envedit history show SEQ")
		seq, err := strconv.ParseUint(fs.Arg(0), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid snapshot number %q\n", fs.Arg(0))
			os.Exit(1)
		}
		cmd.HistoryShow(ctx, env, seq)
	case "prune":
		fs := newFlagSet("history")
		keep := fs.Int("keep", env.Config.History.Keep, "Snapshots to keep")
		parse(fs, args)
		if *keep < 0 {
			fmt.Fprintf(os.Stderr, "Error: --keep must not be negative\n")
			os.Exit(1)
		}
		cmd.HistoryPrune(ctx, env, *keep)
	case "compact":
		fs := newFlagSet("history")
		parse(fs, args)
		cmd.HistoryCompact(ctx, env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown history command: %s\n", sub)
		printCommandHelp("history")
		os.Exit(1)
	}
}

func runUndo(ctx context.Context, env *cmd.Env, args []string) {
	fs := newFlagSet("undo")
	dryRun := fs.Bool("dry-run", false, "Show the diff without writing")
	parse(fs, args)

	cmd.Undo(ctx, env, *dryRun)
}

func runConfig(ctx context.Context, env *cmd.Env, args []string) {
	fs := newFlagSet("config")
	parse(fs, args)

	switch fs.Arg(0) {
	case "", "show":
		cmd.ConfigShow(ctx, env)
	case "init":
		cmd.ConfigInit(ctx, env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", fs.Arg(0))
		printCommandHelp("config")
		os.Exit(1)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: envedit completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

// requireArgs exits with usage when fewer than n positional arguments remain
func requireArgs(fs *pflag.FlagSet, n int, usage string) {
	if fs.NArg() < n {
		fmt.Fprintf(os.Stderr, "Error: missing arguments\n")
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}
