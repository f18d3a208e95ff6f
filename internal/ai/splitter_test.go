package ai

import (
	"reflect"
	"testing"
)

func TestSplitPrompt(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"empty", "", nil},
		{"whitespace only", "   \n  ", nil},
		{"single item", "buy milk", []string{"buy milk"}},
		{"newlines win", "a, b\nc; d", []string{"a, b", "c; d"}},
		{"commas next", "a, b; c", []string{"a", "b; c"}},
		{"semicolons last", "a; b", []string{"a", "b"}},
		{"trims and drops empties", " a ,, b , ", []string{"a", "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitPrompt(tc.prompt)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("SplitPrompt(%q) = %#v, want %#v", tc.prompt, got, tc.want)
			}
		})
	}
}
