package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/amirbrooks/taskline/internal/config"
	"github.com/amirbrooks/taskline/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitInternal = 10
)

type GlobalFlags struct {
	Root string
	User string
}

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitUsage
	}

	if len(rest) == 0 {
		printHelp()
		return ExitUsage
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	cfg, err := config.Load(gf.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "taskline:", err)
		return ExitInternal
	}
	st := store.New(cfg.DBPath())

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "interactive":
		return runInteractive(st, cfg, gf.User, os.Stdin, os.Stdout)
	}

	user := strings.TrimSpace(gf.User)
	if user == "" {
		fmt.Fprintln(os.Stderr, "Please provide --user or run the 'interactive' command.")
		return ExitUsage
	}

	db := st.Load()

	switch cmd {
	case "add":
		return cmdAdd(st, db, user, cmdArgs)
	case "ls", "list":
		return cmdList(db, user, cmdArgs)
	case "rm", "remove":
		return cmdRemove(st, db, user, cmdArgs)
	case "done":
		return cmdDone(st, db, user, cmdArgs)
	case "clear":
		return cmdClear(st, db, user)
	case "select":
		return cmdSelect(st, db, user, cmdArgs)
	case "current":
		return cmdCurrent(db, user)
	case "unselect":
		return cmdUnselect(st, db, user)
	case "recommend":
		return cmdRecommend(st, db, user, cmdArgs)
	case "promote":
		return cmdPromote(st, db, user, cmdArgs)
	case "demote":
		return cmdDemote(st, db, user, cmdArgs)
	case "priorities":
		return cmdPriorities(db, user)
	case "generate":
		return cmdGenerate(st, db, cfg, user, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		return ExitUsage
	}
}

func printHelp() {
	fmt.Print(`taskline — per-user to-do lists with a current-task pointer

Usage:
  taskline [global flags] <command> [args]

Global flags:
  --root <path>    Store root (default: ~/.taskline or TASKLINE_ROOT)
  --user <name>    Target username (required for all commands but 'interactive')

Commands:
  add "<text>" [--category <c>] [--priority]
  list [--category <c>]
  remove <index>
  done <index>
  clear
  select <index>
  current
  unselect
  recommend [--style type|dispersed]
  promote <index>
  demote <index>
  priorities
  generate "<text>" [--ai]
  interactive
  help

Indexes are 1-based positions in the task list.
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow globals anywhere by scanning and stripping them.
	gf := GlobalFlags{}

	out := make([]string, 0, len(args))
	skip := 0

	for i := 0; i < len(args); i++ {
		if skip > 0 {
			skip--
			continue
		}
		a := args[i]
		switch a {
		case "--root":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--root requires a value")
			}
			gf.Root = args[i+1]
			skip = 1
		case "--user", "-u":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--user requires a value")
			}
			gf.User = args[i+1]
			skip = 1
		default:
			out = append(out, a)
		}
	}
	return gf, out, nil
}

func reorderFlags(args []string, takesValue map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags []string
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			if i+1 < len(args) {
				rest = append(rest, args[i+1:]...)
			}
			break
		}
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			if takesValue[a] && !strings.Contains(a, "=") {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}
