package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/envcachego/internal/meta"
)

const bashCompletionScript = `# bash completion for envcache
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_envcache()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "envelope env key ls show completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
    local keyed="--cache-dir --window -k --param -p --compress --on-corrupt"

    case "$cmd" in
        envelope|env)
            local opts="$common $keyed --log-to --log-file"
            ;;
        key|show)
            local opts="$common $keyed"
            ;;
        ls)
            local opts="$common --cache-dir"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --on-corrupt)
            COMPREPLY=( $(compgen -W "fail recompute" -- "$cur") )
            return 0
            ;;
        --log-to)
            COMPREPLY=( $(compgen -W "terminal file both" -- "$cur") )
            return 0
            ;;
        --cache-dir)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Sources are files or directories.
    COMPREPLY=( $(compgen -f -- "$cur") )
    return 0
}

complete -F _envcache envcache
`

const zshCompletionScript = `#compdef envcache

_envcache() {
  local -a cmds
  cmds=(
    'envelope:compute or load cached amplitude envelopes'
    'env:compute or load cached amplitude envelopes'
    'key:show derived cache keys'
    'ls:list cache entries'
    'show:show a cached envelope without computing'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a keyed
  keyed=(
  '--cache-dir[cache directory]:dir:_directories'
  '(-k --window)'{-k,--window}'[pooling window]:k'
  '*'{-p,--param}'[extra key parameter]:name=value'
  '--compress[zstd compress entries]'
  '--on-corrupt[corrupt entry policy]:policy:(fail recompute)'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'envcache commands' cmds
    return
  fi

  case $words[2] in
    envelope|env)
      _arguments -C \
        $common \
        $keyed \
        '--log-to[run log destination]:dest:(terminal file both)' \
        '--log-file[run log file]:file:_files' \
        '*:source:_files'
      ;;
    key|show)
      _arguments -C \
        $common \
        $keyed \
        '*:source:_files'
      ;;
    ls)
      _arguments -C \
        $common \
        '--cache-dir[cache directory]:dir:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:source:_files'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _envcache envcache
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	if shell == "" {
		// Try to detect from SHELL.
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		return errors.New("usage: envcache completion [bash|zsh]")
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "envcache completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
