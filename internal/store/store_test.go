package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "tasks_db.json"))
}

func writeDB(t *testing.T, s *Store, content string) {
	t.Helper()
	if err := os.WriteFile(s.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("write db: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	db := s.Load()
	if len(db) != 0 {
		t.Fatalf("expected empty database, got %d records", len(db))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	s := newTestStore(t)
	writeDB(t, s, "not a json")
	db := s.Load()
	if len(db) != 0 {
		t.Fatalf("expected empty database for malformed content, got %d records", len(db))
	}
}

func TestLoadUnrecognizedRecordShape(t *testing.T) {
	s := newTestStore(t)
	writeDB(t, s, `{"liz": "nope"}`)
	db := s.Load()
	if len(db) != 0 {
		t.Fatalf("expected empty database for unrecognized record shape, got %d records", len(db))
	}
}

func TestLoadMigratesLegacyArray(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Format(time.RFC3339)
	writeDB(t, s, `{"liz": [{"text": "oldtask", "created_at": "`+now+`", "done": false}]}`)

	db := s.Load()
	rec, ok := db["liz"]
	if !ok || rec == nil {
		t.Fatal("expected record for liz")
	}
	if rec.Current != "" {
		t.Fatalf("expected empty current, got %q", rec.Current)
	}
	if len(rec.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(rec.Tasks))
	}
	task := rec.Tasks[0]
	if task.Text != "oldtask" || task.CreatedAt != now || task.Done {
		t.Fatalf("task fields not preserved: %+v", task)
	}
	if task.ID == "" {
		t.Fatal("expected a minted ID on legacy task")
	}
}

func TestLoadMigratesLegacyCurrentPointer(t *testing.T) {
	s := newTestStore(t)
	created := "2023-04-01T10:00:00Z"
	writeDB(t, s, `{"liz": {"tasks": [
		{"text": "a", "created_at": "2023-04-01T09:00:00Z", "done": false},
		{"text": "b", "created_at": "`+created+`", "done": false}
	], "current": "`+created+`"}}`)

	db := s.Load()
	rec := db["liz"]
	if rec == nil {
		t.Fatal("expected record for liz")
	}
	if rec.Current == "" || rec.Current == created {
		t.Fatalf("expected current remapped to a task ID, got %q", rec.Current)
	}
	if rec.Current != rec.Tasks[1].ID {
		t.Fatalf("current %q does not match task b ID %q", rec.Current, rec.Tasks[1].ID)
	}
}

func TestLoadRecordMissingCurrent(t *testing.T) {
	s := newTestStore(t)
	writeDB(t, s, `{"liz": {"tasks": []}}`)
	db := s.Load()
	rec := db["liz"]
	if rec == nil {
		t.Fatal("expected record for liz")
	}
	if rec.Current != "" {
		t.Fatalf("expected empty current, got %q", rec.Current)
	}
}

func TestSaveWritesCurrentShape(t *testing.T) {
	s := newTestStore(t)
	db := Database{}
	if _, err := s.AddTask(db, "bob", AddTaskInput{Text: "Buy milk", Category: "home", Priority: true}); err != nil {
		t.Fatalf("add: %v", err)
	}

	b, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatalf("read db: %v", err)
	}
	var raw map[string]struct {
		Tasks   []Task `json:"tasks"`
		Current string `json:"current"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("persisted document is not valid JSON: %v", err)
	}
	rec, ok := raw["bob"]
	if !ok {
		t.Fatal("expected bob in persisted document")
	}
	if len(rec.Tasks) != 1 {
		t.Fatalf("expected 1 persisted task, got %d", len(rec.Tasks))
	}
	task := rec.Tasks[0]
	if task.Text != "Buy milk" || task.Done || task.Category != "home" || !task.Priority {
		t.Fatalf("persisted task mismatch: %+v", task)
	}
	if task.ID == "" || task.CreatedAt == "" {
		t.Fatalf("persisted task missing identity fields: %+v", task)
	}
}

func TestAddThenLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	db := Database{}
	added, err := s.AddTask(db, "bob", AddTaskInput{Text: "Buy milk", Category: "home", Priority: true})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	loaded := s.Load()
	rec := loaded["bob"]
	if rec == nil || len(rec.Tasks) != 1 {
		t.Fatalf("expected bob with 1 task after reload, got %+v", rec)
	}
	got := rec.Tasks[0]
	if got.ID != added.ID || got.Text != "Buy milk" || got.Done || got.Category != "home" || !got.Priority {
		t.Fatalf("reloaded task mismatch: %+v", got)
	}
}

func TestEnsureUserRecordCreates(t *testing.T) {
	db := Database{}
	rec := EnsureUserRecord(db, "alice")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if db["alice"] != rec {
		t.Fatal("record not installed in database")
	}
	again := EnsureUserRecord(db, "alice")
	if again != rec {
		t.Fatal("EnsureUserRecord is not idempotent")
	}
}
