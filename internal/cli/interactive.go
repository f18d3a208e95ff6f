package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/amirbrooks/taskline/internal/config"
	"github.com/amirbrooks/taskline/internal/store"
)

const interactiveHelp = "Commands: add <text>, list [category], remove <n>, done <n>, clear, " +
	"select <n>, current, unselect, recommend [type|dispersed], promote <n>, demote <n>, " +
	"priorities, generate <text>, quit"

// runInteractive is a read-line loop over the same command set. The database
// is loaded once and kept in memory for the session; every mutating
// operation still persists immediately.
func runInteractive(st *store.Store, cfg *config.Config, user string, in io.Reader, out io.Writer) int {
	scanner := bufio.NewScanner(in)

	user = strings.TrimSpace(user)
	if user == "" {
		fmt.Fprint(out, "Username: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return ExitOK
		}
		user = strings.TrimSpace(scanner.Text())
		if user == "" {
			fmt.Fprintln(out, "Username required.")
			return ExitUsage
		}
	}

	db := st.Load()
	fmt.Fprintf(out, "Interactive mode for user '%s'. Type 'help' for commands.\n", user)
	printOpenPriorities(out, db, user)

	for {
		fmt.Fprintf(out, "%s> ", user)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return ExitOK
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		action, arg := splitCommand(line)

		switch action {
		case "q", "quit", "exit":
			return ExitOK
		case "h", "help":
			fmt.Fprintln(out, interactiveHelp)
		case "add":
			interactiveAdd(st, db, user, arg, scanner, out)
		case "list", "ls":
			interactiveList(db, user, arg, out)
		case "remove", "rm":
			interactiveIndexOp(out, user, arg, "remove", func(i int) (*store.Task, error) {
				return st.RemoveTask(db, user, i)
			}, "Removed: %s\n")
		case "done":
			interactiveIndexOp(out, user, arg, "done", func(i int) (*store.Task, error) {
				return st.MarkDone(db, user, i)
			}, "Marked done: %s\n")
		case "clear":
			if err := st.ClearTasks(db, user); err != nil {
				reportOpError(out, user, err)
				continue
			}
			fmt.Fprintf(out, "Cleared tasks for '%s'.\n", user)
		case "select":
			interactiveIndexOp(out, user, arg, "select", func(i int) (*store.Task, error) {
				return st.SelectTask(db, user, i)
			}, "Selected: %s\n")
		case "current":
			task, err := store.CurrentTask(db, user)
			if err != nil {
				reportOpError(out, user, err)
				continue
			}
			fmt.Fprintf(out, "Current task: %s\n", formatTaskInline(*task))
		case "unselect":
			if err := st.UnselectCurrent(db, user); err != nil {
				reportOpError(out, user, err)
				continue
			}
			fmt.Fprintln(out, "Cleared current task.")
		case "recommend":
			interactiveRecommend(st, db, user, arg, out)
		case "promote":
			interactiveIndexOp(out, user, arg, "promote", func(i int) (*store.Task, error) {
				return st.PromoteTask(db, user, i)
			}, "Promoted task: %s\n")
		case "demote":
			interactiveIndexOp(out, user, arg, "demote", func(i int) (*store.Task, error) {
				return st.DemoteTask(db, user, i)
			}, "Demoted task: %s\n")
		case "priorities":
			interactivePriorities(db, user, out)
		case "generate":
			interactiveGenerate(st, db, cfg, user, arg, scanner, out)
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help'.")
		}
	}
}

// printOpenPriorities shows the user's not-done priority tasks on entry.
func printOpenPriorities(out io.Writer, db store.Database, user string) {
	entries, current, err := store.ListPriorities(db, user)
	if err != nil {
		return
	}
	var open []store.ListedTask
	for _, e := range entries {
		if !e.Task.Done {
			open = append(open, e)
		}
	}
	if len(open) == 0 {
		return
	}
	fmt.Fprintln(out, "Priority tasks:")
	for _, e := range open {
		fmt.Fprintln(out, formatTaskLine(e, current))
	}
}

func interactiveAdd(st *store.Store, db store.Database, user, arg string, scanner *bufio.Scanner, out io.Writer) {
	if arg == "" {
		fmt.Fprintln(out, "Usage: add <task text>")
		return
	}
	category := promptLine(scanner, out, "Category (optional): ")
	priority := promptYesNo(scanner, out, "Priority? [y/N]: ")
	if _, err := st.AddTask(db, user, store.AddTaskInput{Text: arg, Category: category, Priority: priority}); err != nil {
		reportOpError(out, user, err)
		return
	}
	fmt.Fprintln(out, "Added.")
}

func interactiveList(db store.Database, user, arg string, out io.Writer) {
	entries, current, err := store.ListTasks(db, user, store.ListFilter{Category: arg})
	if err != nil {
		reportOpError(out, user, err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No matching tasks.")
		return
	}
	for _, e := range entries {
		fmt.Fprintln(out, formatTaskLine(e, current))
	}
}

func interactivePriorities(db store.Database, user string, out io.Writer) {
	entries, current, err := store.ListPriorities(db, user)
	if err != nil {
		reportOpError(out, user, err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintf(out, "No priority tasks for user '%s'.\n", user)
		return
	}
	for _, e := range entries {
		fmt.Fprintln(out, formatTaskLine(e, current))
	}
}

func interactiveRecommend(st *store.Store, db store.Database, user, arg string, out io.Writer) {
	style := store.StyleType
	if arg != "" {
		if arg != store.StyleType && arg != store.StyleDispersed {
			fmt.Fprintln(out, "Usage: recommend [type|dispersed]")
			return
		}
		style = arg
	}
	task, err := st.Recommend(db, user, style)
	if err != nil {
		reportOpError(out, user, err)
		return
	}
	fmt.Fprintf(out, "Recommended: %s\n", formatTaskInline(*task))
}

func interactiveGenerate(st *store.Store, db store.Database, cfg *config.Config, user, arg string, scanner *bufio.Scanner, out io.Writer) {
	if arg == "" {
		fmt.Fprintln(out, "Usage: generate <prompt text>")
		return
	}
	useAI := promptYesNo(scanner, out, "Use AI? [y/N]: ")
	items, err := generateItems(cfg, arg, useAI)
	if err != nil {
		fmt.Fprintln(out, "No AI available.")
		return
	}
	added, err := addGenerated(st, db, user, items)
	if err != nil {
		reportOpError(out, user, err)
		return
	}
	fmt.Fprintf(out, "Generated and added %d tasks.\n", added)
}

func interactiveIndexOp(out io.Writer, user, arg, name string, op func(int) (*store.Task, error), okFormat string) {
	if arg == "" || !isDigits(arg) {
		fmt.Fprintf(out, "Usage: %s <index>\n", name)
		return
	}
	index := 0
	fmt.Sscanf(arg, "%d", &index)
	task, err := op(index)
	if err != nil {
		reportOpError(out, user, err)
		return
	}
	fmt.Fprintf(out, okFormat, task.Text)
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	action := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return action, arg
}

func promptLine(scanner *bufio.Scanner, out io.Writer, prompt string) string {
	fmt.Fprint(out, prompt)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func promptYesNo(scanner *bufio.Scanner, out io.Writer, prompt string) bool {
	answer := strings.ToLower(promptLine(scanner, out, prompt))
	return answer == "y" || answer == "yes"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
