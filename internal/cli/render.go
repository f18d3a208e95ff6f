package cli

import (
	"fmt"

	"github.com/amirbrooks/taskline/internal/store"
)

// formatTaskLine renders one listing line: current marker, 1-based index,
// done box, priority mark, category tag, text, creation time.
func formatTaskLine(e store.ListedTask, currentID string) string {
	marker := "  "
	if currentID != "" && e.Task.ID == currentID {
		marker = "* "
	}
	return fmt.Sprintf("%s%d. %s", marker, e.Index, formatTaskInline(e.Task))
}

func formatTaskInline(t store.Task) string {
	status := " "
	if t.Done {
		status = "x"
	}
	pri := ""
	if t.Priority {
		pri = "(!) "
	}
	cat := ""
	if t.Category != "" {
		cat = "[" + t.Category + "] "
	}
	return fmt.Sprintf("[%s] %s%s%s (added %s)", status, pri, cat, t.Text, t.CreatedAt)
}
