package ai

import "strings"

// SplitPrompt breaks a free-text prompt into task texts without calling any
// provider: on newlines if present, else commas, else semicolons, else the
// whole non-empty prompt is a single item.
func SplitPrompt(prompt string) []string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil
	}
	var parts []string
	switch {
	case strings.Contains(prompt, "\n"):
		parts = strings.Split(prompt, "\n")
	case strings.Contains(prompt, ","):
		parts = strings.Split(prompt, ",")
	case strings.Contains(prompt, ";"):
		parts = strings.Split(prompt, ";")
	default:
		parts = []string{prompt}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
