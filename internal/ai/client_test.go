package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionResponse(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestParseItemsRawArray(t *testing.T) {
	items, err := ParseItems(`[{"text": "buy milk", "category": "home", "priority": true}, {"text": "call mom"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Text != "buy milk" || items[0].Category != "home" || !items[0].Priority {
		t.Fatalf("first item mismatch: %+v", items[0])
	}
	if items[1].Text != "call mom" || items[1].Category != "" || items[1].Priority {
		t.Fatalf("second item mismatch: %+v", items[1])
	}
}

func TestParseItemsRecoversEmbeddedArray(t *testing.T) {
	content := "Here are your tasks:\n```json\n[{\"text\": \"buy milk\"}]\n```\nEnjoy!"
	items, err := ParseItems(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 || items[0].Text != "buy milk" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestParseItemsRejectsBadShape(t *testing.T) {
	for _, content := range []string{
		`{"text": "not an array"}`,
		`[{"category": "home"}]`,
		`[{"text": 42}]`,
		`[{"text": "ok", "priority": "yes"}]`,
		"no json at all",
	} {
		if _, err := ParseItems(content); err == nil {
			t.Errorf("ParseItems(%q): expected error", content)
		}
	}
}

func TestParseItemsDropsEmptyText(t *testing.T) {
	items, err := ParseItems(`[{"text": "  "}, {"text": "keep"}]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(items) != 1 || items[0].Text != "keep" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestGenerate(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionResponse(t, `[{"text": "buy milk", "priority": true}]`)))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.BaseURL = srv.URL
	items, err := c.Generate(context.Background(), "shopping")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 || items[0].Text != "buy milk" || !items[0].Priority {
		t.Fatalf("unexpected items: %+v", items)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "shopping" {
		t.Fatalf("unexpected request messages: %+v", gotReq.Messages)
	}
}

func TestGenerateNoAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Generate(context.Background(), "anything"); err == nil {
		t.Fatal("expected error with no API key")
	}
}

func TestGenerateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.BaseURL = srv.URL
	_, err := c.Generate(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Fatalf("expected provider error message, got %v", err)
	}
}

func TestGenerateNoUsableItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionResponse(t, `[]`)))
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.BaseURL = srv.URL
	if _, err := c.Generate(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for empty item array")
	}
}
