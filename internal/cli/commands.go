package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amirbrooks/taskline/internal/ai"
	"github.com/amirbrooks/taskline/internal/config"
	"github.com/amirbrooks/taskline/internal/store"
)

func cmdAdd(st *store.Store, db store.Database, user string, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--category": true,
		"--priority": false,
	})
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	category := fs.String("category", "", "Optional category for the task")
	priority := fs.Bool("priority", false, "Flag the task as priority")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taskline add \"<text>\" [--category <c>] [--priority]")
		return ExitUsage
	}
	text := strings.Join(rest, " ")
	if _, err := st.AddTask(db, user, store.AddTaskInput{Text: text, Category: *category, Priority: *priority}); err != nil {
		return reportTaskError("add", user, err)
	}
	fmt.Println("Added.")
	return ExitOK
}

func cmdList(db store.Database, user string, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--category": true,
	})
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	category := fs.String("category", "", "Only tasks in this category")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	entries, current, err := store.ListTasks(db, user, store.ListFilter{Category: *category})
	if err != nil {
		return reportTaskError("list", user, err)
	}
	if len(entries) == 0 {
		fmt.Println("No matching tasks.")
		return ExitOK
	}
	for _, e := range entries {
		fmt.Println(formatTaskLine(e, current))
	}
	return ExitOK
}

func cmdRemove(st *store.Store, db store.Database, user string, args []string) int {
	index, ok := parseIndex(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: taskline remove <index>")
		return ExitUsage
	}
	removed, err := st.RemoveTask(db, user, index)
	if err != nil {
		return reportTaskError("remove", user, err)
	}
	fmt.Printf("Removed: %s\n", removed.Text)
	return ExitOK
}

func cmdDone(st *store.Store, db store.Database, user string, args []string) int {
	index, ok := parseIndex(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: taskline done <index>")
		return ExitUsage
	}
	task, err := st.MarkDone(db, user, index)
	if err != nil {
		return reportTaskError("done", user, err)
	}
	fmt.Printf("Marked done: %s\n", task.Text)
	return ExitOK
}

func cmdClear(st *store.Store, db store.Database, user string) int {
	if err := st.ClearTasks(db, user); err != nil {
		return reportTaskError("clear", user, err)
	}
	fmt.Printf("Cleared tasks for '%s'.\n", user)
	return ExitOK
}

func cmdSelect(st *store.Store, db store.Database, user string, args []string) int {
	index, ok := parseIndex(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: taskline select <index>")
		return ExitUsage
	}
	task, err := st.SelectTask(db, user, index)
	if err != nil {
		return reportTaskError("select", user, err)
	}
	fmt.Printf("Selected: %s\n", task.Text)
	return ExitOK
}

func cmdCurrent(db store.Database, user string) int {
	task, err := store.CurrentTask(db, user)
	if err != nil {
		return reportTaskError("current", user, err)
	}
	fmt.Printf("Current task: %s\n", formatTaskInline(*task))
	return ExitOK
}

func cmdUnselect(st *store.Store, db store.Database, user string) int {
	if err := st.UnselectCurrent(db, user); err != nil {
		return reportTaskError("unselect", user, err)
	}
	fmt.Println("Cleared current task.")
	return ExitOK
}

func cmdRecommend(st *store.Store, db store.Database, user string, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--style": true,
	})
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	style := fs.String("style", store.StyleType, "Recommendation style (type|dispersed)")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if *style != store.StyleType && *style != store.StyleDispersed {
		fmt.Fprintln(os.Stderr, "recommend: invalid --style (use type|dispersed)")
		return ExitUsage
	}
	task, err := st.Recommend(db, user, *style)
	if err != nil {
		return reportTaskError("recommend", user, err)
	}
	fmt.Printf("Recommended: %s\n", formatTaskInline(*task))
	return ExitOK
}

func cmdPromote(st *store.Store, db store.Database, user string, args []string) int {
	index, ok := parseIndex(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: taskline promote <index>")
		return ExitUsage
	}
	task, err := st.PromoteTask(db, user, index)
	if err != nil {
		return reportTaskError("promote", user, err)
	}
	fmt.Printf("Promoted task: %s\n", task.Text)
	return ExitOK
}

func cmdDemote(st *store.Store, db store.Database, user string, args []string) int {
	index, ok := parseIndex(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: taskline demote <index>")
		return ExitUsage
	}
	task, err := st.DemoteTask(db, user, index)
	if err != nil {
		return reportTaskError("demote", user, err)
	}
	fmt.Printf("Demoted task: %s\n", task.Text)
	return ExitOK
}

func cmdPriorities(db store.Database, user string) int {
	entries, current, err := store.ListPriorities(db, user)
	if err != nil {
		return reportTaskError("priorities", user, err)
	}
	if len(entries) == 0 {
		fmt.Printf("No priority tasks for user '%s'.\n", user)
		return ExitOK
	}
	for _, e := range entries {
		fmt.Println(formatTaskLine(e, current))
	}
	return ExitOK
}

func cmdGenerate(st *store.Store, db store.Database, cfg *config.Config, user string, args []string) int {
	args = reorderFlags(args, map[string]bool{
		"--ai": false,
	})
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	useAI := fs.Bool("ai", false, "Generate via the configured AI provider")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: taskline generate \"<text>\" [--ai]")
		return ExitUsage
	}
	prompt := strings.Join(rest, " ")

	items, err := generateItems(cfg, prompt, *useAI)
	if err != nil {
		// AI failure never falls back to the local splitter.
		fmt.Println("No AI available.")
		return ExitOK
	}
	added, err := addGenerated(st, db, user, items)
	if err != nil {
		return reportTaskError("generate", user, err)
	}
	fmt.Printf("Generated and added %d tasks.\n", added)
	return ExitOK
}

// generateItems produces task items either from the configured provider or
// from the local splitter.
func generateItems(cfg *config.Config, prompt string, useAI bool) ([]ai.Item, error) {
	if useAI {
		client := ai.NewClient(cfg.APIKey())
		client.BaseURL = cfg.AI.BaseURL
		client.Model = cfg.AI.Model
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout())
		defer cancel()
		return client.Generate(ctx, prompt)
	}
	parts := ai.SplitPrompt(prompt)
	items := make([]ai.Item, 0, len(parts))
	for _, p := range parts {
		items = append(items, ai.Item{Text: p})
	}
	return items, nil
}

func addGenerated(st *store.Store, db store.Database, user string, items []ai.Item) (int, error) {
	added := 0
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		in := store.AddTaskInput{Text: item.Text, Category: item.Category, Priority: item.Priority}
		if _, err := st.AddTask(db, user, in); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func parseIndex(args []string) (int, bool) {
	if len(args) != 1 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// reportTaskError prints reportable conditions to stdout and keeps the exit
// status zero; anything else is a real failure.
func reportTaskError(cmd, user string, err error) int {
	if isReportable(err) {
		reportOpError(os.Stdout, user, err)
		return ExitOK
	}
	fmt.Fprintln(os.Stderr, cmd+":", err)
	return ExitInternal
}

func isReportable(err error) bool {
	return errors.Is(err, store.ErrNoTasks) ||
		errors.Is(err, store.ErrInvalid) ||
		errors.Is(err, store.ErrNoCurrent) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrNoCandidates)
}

func reportOpError(out io.Writer, user string, err error) {
	switch {
	case errors.Is(err, store.ErrNoTasks):
		fmt.Fprintf(out, "No tasks for user '%s'.\n", user)
	case errors.Is(err, store.ErrInvalid):
		fmt.Fprintln(out, "Index out of range.")
	case errors.Is(err, store.ErrNoCurrent):
		fmt.Fprintln(out, "No current task set.")
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(out, "Current task not found.")
	case errors.Is(err, store.ErrNoCandidates):
		fmt.Fprintln(out, "No recommendation found.")
	default:
		fmt.Fprintln(out, "Error:", err)
	}
}
