package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_envedit() {
    local cur prev words cword
    _init_completion || return

    local commands="print ls get set delete rm enable disable diff status history undo config help completion"

    if [[ "$prev" == "-p" || "$prev" == "--path" ]]; then
        _filedir
        return
    fi

    local i cmd=""
    for ((i = 1; i < cword; i++)); do
        case "${words[i]}" in
            -p|--path) ((i++)) ;;
            -*) ;;
            *) cmd="${words[i]}"; break ;;
        esac
    done

    if [[ -z "$cmd" ]]; then
        if [[ "$cur" == -* ]]; then
            COMPREPLY=($(compgen -W "-p --path -v --verbose --no-history" -- "$cur"))
        else
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        fi
        return
    fi

    case "$cmd" in
        get|delete|rm|enable|disable)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-f --force --dry-run" -- "$cur"))
            else
                # Complete with keys from the env file
                local keys
                keys=$(envedit print 2>/dev/null | sed 's/ = .*//')
                COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            fi
            ;;
        set)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-d --description --secret --dry-run" -- "$cur"))
            else
                local keys
                keys=$(envedit print 2>/dev/null | sed 's/ = .*//')
                COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            fi
            ;;
        history)
            if [[ "$prev" == "list" ]]; then
                COMPREPLY=($(compgen -W "--all" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "list show prune compact" -- "$cur"))
            fi
            ;;
        undo)
            COMPREPLY=($(compgen -W "--dry-run" -- "$cur"))
            ;;
        config)
            COMPREPLY=($(compgen -W "show init" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _envedit envedit
`

const zshCompletion = `#compdef envedit

_envedit() {
    local -a commands
    commands=(
        'print:Print all keys and values'
        'ls:Print all keys and values'
        'get:Print the value of a key'
        'set:Update or create a key'
        'delete:Delete a key'
        'rm:Delete a key'
        'enable:Uncomment a key'
        'disable:Comment out a key'
        'diff:Show changes since the latest snapshot'
        'status:Show file, history and git status'
        'history:List, show, prune or compact snapshots'
        'undo:Restore the latest snapshot'
        'config:Show or initialize the configuration'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '(-p --path)'{-p,--path}'[Env file to edit]:file:_files' \
        '(-v --verbose)'{-v,--verbose}'[Log debug output]' \
        '--no-history[Do not record snapshots]' \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'envedit commands' commands
            ;;
        args)
            case "${words[2]}" in
                get)
                    _arguments '1:key:_envedit_keys'
                    ;;
                enable|disable)
                    _arguments '--dry-run[Show the diff only]' '*:key:_envedit_keys'
                    ;;
                delete|rm)
                    _arguments \
                        '(-f --force)'{-f,--force}'[Delete without confirmation]' \
                        '--dry-run[Show the diff only]' \
                        '*:key:_envedit_keys'
                    ;;
                set)
                    _arguments \
                        '*'{-d,--description}'[Description comment line]:text:' \
                        '--secret[Read the value without echo]' \
                        '--dry-run[Show the diff only]' \
                        '1:key:_envedit_keys' \
                        '2:value:'
                    ;;
                history)
                    _values 'subcommand' list show prune compact
                    ;;
                undo)
                    _arguments '--dry-run[Show the diff only]'
                    ;;
                config)
                    _values 'subcommand' show init
                    ;;
                help)
                    _describe -t commands 'envedit commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_envedit_keys() {
    local -a keys
    keys=(${(f)"$(envedit print 2>/dev/null | sed 's/ = .*//')"})
    _describe -t keys 'keys' keys
}

_envedit "$@"
`

const fishCompletion = `# envedit fish completions

set -l commands print ls get set delete rm enable disable diff status history undo config help completion

complete -c envedit -f

# Global flags
complete -c envedit -s p -l path -r -F -d 'Env file to edit'
complete -c envedit -s v -l verbose -d 'Log debug output'
complete -c envedit -l no-history -d 'Do not record snapshots'

# Commands
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a print -d 'Print all keys'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a ls -d 'Print all keys'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a get -d 'Print a value'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a set -d 'Update or create a key'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a delete -d 'Delete a key'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Delete a key'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a enable -d 'Uncomment a key'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a disable -d 'Comment out a key'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Changes since last snapshot'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show status'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a history -d 'Manage snapshots'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a undo -d 'Restore latest snapshot'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a config -d 'Show configuration'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c envedit -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# Keys for key commands
complete -c envedit -n "__fish_seen_subcommand_from get set delete rm enable disable" -a "(envedit print 2>/dev/null | sed 's/ = .*//')"

# set flags
complete -c envedit -n "__fish_seen_subcommand_from set" -s d -l description -r -d 'Description comment line'
complete -c envedit -n "__fish_seen_subcommand_from set" -l secret -d 'Read the value without echo'

# delete flags
complete -c envedit -n "__fish_seen_subcommand_from delete rm" -s f -l force -d 'Delete without confirmation'

# dry-run
complete -c envedit -n "__fish_seen_subcommand_from set delete rm enable disable undo" -l dry-run -d 'Show the diff only'

# history subcommands
complete -c envedit -n "__fish_seen_subcommand_from history" -a "list show prune compact"

# config subcommands
complete -c envedit -n "__fish_seen_subcommand_from config" -a "show init"

# help completions
complete -c envedit -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c envedit -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
