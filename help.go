package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Println("envedit - Edit .env files in place")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  envedit [-p|--path FILE] [-v|--verbose] [--no-history] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  print, ls      Print all keys and values")
	fmt.Println("  get            Print the value of a key")
	fmt.Println("  set            Update or create a key")
	fmt.Println("  delete, rm     Delete a key")
	fmt.Println("  enable         Uncomment a key")
	fmt.Println("  disable        Comment out a key")
	fmt.Println("  diff           Show changes since the latest snapshot")
	fmt.Println("  status         Show file, history and git status")
	fmt.Println("  history        List, show, prune or compact snapshots")
	fmt.Println("  undo           Restore the latest snapshot")
	fmt.Println("  config         Show or initialize the configuration")
	fmt.Println("  completion     Generate shell completions")
	fmt.Println("  help           Show help for a command")
	fmt.Println()
	fmt.Println("Global flags:")
	fmt.Println("  -p, --path FILE   Env file to edit (default .env)")
	fmt.Println("  -v, --verbose     Log debug output")
	fmt.Println("  --no-history      Do not record snapshots")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  envedit set DB_HOST localhost           # Update or add DB_HOST")
	fmt.Println("  envedit disable DEBUG                   # Comment out DEBUG")
	fmt.Println("  envedit -p prod.env get API_URL         # Read from another file")
	fmt.Println("  envedit undo                            # Revert the last edit")
	fmt.Println()
	fmt.Println("Use 'envedit help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "print", "ls":
		fmt.Println("envedit print")
		fmt.Println()
		fmt.Println("Prints every key as 'KEY = value' in file order.")
		fmt.Println("Values that are not valid UTF-8 print as <invalid utf-8>.")
		fmt.Println("Commented-out keys are marked (disabled).")
		fmt.Println()
		fmt.Println("Alias: ls")
	case "get":
		fmt.Println("envedit get KEY")
		fmt.Println()
		fmt.Println("Prints the raw value of KEY.")
		fmt.Println("Disabled keys are found too.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  export DB_HOST=\"$(envedit get DB_HOST)\"")
	case "set":
		fmt.Println("envedit set KEY [VALUE] [-d|--description TEXT]... [--secret] [--dry-run]")
		fmt.Println()
		fmt.Println("Replaces the value of KEY in place, or appends KEY=VALUE when the")
		fmt.Println("key does not exist. The file is created if missing.")
		fmt.Println("Descriptions become '# TEXT' comment lines directly above the key,")
		fmt.Println("replacing the comment block already there.")
		fmt.Println("Without VALUE the value is read from stdin when it is not a terminal.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -d, --description TEXT   Description comment line (repeatable)")
		fmt.Println("  --secret                 Read the value from the terminal without echo")
		fmt.Println("  --dry-run                Show the diff without writing")
		fmt.Println()
		fmt.Println("Use -- before a VALUE that starts with '-'.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  envedit set PORT 8080")
		fmt.Println("  envedit set OFFSET -- -1")
		fmt.Println("  envedit set PORT 8080 -d \"HTTP listen port\"")
		fmt.Println("  envedit set API_TOKEN --secret")
		fmt.Println("  echo s3cret | envedit set API_TOKEN")
	case "delete", "rm":
		fmt.Println("envedit delete KEY [-f|--force] [--dry-run]")
		fmt.Println()
		fmt.Println("Removes the line declaring KEY together with its line break.")
		fmt.Println("Asks for confirmation on a terminal.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -f, --force   Delete without confirmation")
		fmt.Println("  --dry-run     Show the diff without writing")
		fmt.Println()
		fmt.Println("Alias: rm")
	case "enable":
		fmt.Println("envedit enable KEY [--dry-run]")
		fmt.Println()
		fmt.Println("Removes one leading '#' from the line of KEY.")
		fmt.Println("Fails if the line does not start with '#'.")
	case "disable":
		fmt.Println("envedit disable KEY [--dry-run]")
		fmt.Println()
		fmt.Println("Inserts '#' at the start of the line of KEY.")
		fmt.Println("Disabling twice nests the comment; enable twice to undo it.")
	case "diff":
		fmt.Println("envedit diff")
		fmt.Println()
		fmt.Println("Shows the unified diff between the latest history snapshot and")
		fmt.Println("the current file: the last edit plus any change made outside envedit.")
	case "status":
		fmt.Println("envedit status")
		fmt.Println()
		fmt.Println("Shows status including:")
		fmt.Println("  - File path and size")
		fmt.Println("  - Key counts (enabled and disabled)")
		fmt.Println("  - History depth and last operation")
		fmt.Println("  - Whether the file is tracked or ignored by git")
	case "history":
		fmt.Println("envedit history [list [-a|--all] | show SEQ | prune [--keep N] | compact]")
		fmt.Println()
		fmt.Println("Every edit records the previous file content as a snapshot.")
		fmt.Println()
		fmt.Println("Subcommands:")
		fmt.Println("  list           List snapshots, newest first, with +added -removed lines (default)")
		fmt.Println("  list --all     List every file that has snapshots")
		fmt.Println("  show SEQ       Show a snapshot and the change that followed it")
		fmt.Println("  prune          Keep only the newest N snapshots (default history.keep)")
		fmt.Println("  compact        Compact the history database to reclaim disk space")
	case "undo":
		fmt.Println("envedit undo [--dry-run]")
		fmt.Println()
		fmt.Println("Restores the file to its latest snapshot and removes that snapshot.")
		fmt.Println("Repeat to step further back.")
	case "config":
		fmt.Println("envedit config [show | init]")
		fmt.Println()
		fmt.Println("show prints the effective configuration as TOML (default).")
		fmt.Println("init writes the default configuration file.")
		fmt.Println()
		fmt.Println("Environment overrides:")
		fmt.Println("  ENVEDIT_FILE, ENVEDIT_HISTORY, ENVEDIT_HISTORY_PATH, ENVEDIT_LOG_LEVEL")
	case "completion":
		fmt.Println("envedit completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(envedit completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(envedit completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  envedit completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
