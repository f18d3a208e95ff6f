package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid")
	ErrNoTasks      = errors.New("no tasks")
	ErrNoCurrent    = errors.New("no current task")
	ErrNoCandidates = errors.New("no candidates")

	timeNow  = func() time.Time { return time.Now().UTC() }
	randIntn = mrand.Intn
)

// Task is a single to-do item. ID is the stable identifier; CreatedAt is
// display metadata and never changes after creation.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Done      bool   `json:"done"`
	Category  string `json:"category"`
	Priority  bool   `json:"priority"`
}

// Record holds one user's ordered tasks plus the ID of the selected task
// ("" when none is selected).
type Record struct {
	Tasks   []Task `json:"tasks"`
	Current string `json:"current"`
}

// Database maps usernames to their records.
type Database map[string]*Record

// Store reads and writes the whole database as one JSON document at Path.
type Store struct {
	Path string
}

func New(path string) *Store {
	return &Store{Path: path}
}

// Load reads the database from disk. A missing file yields an empty
// database. So does content that fails to parse: corrupt state is treated
// as empty and never surfaced to the caller.
func (s *Store) Load() Database {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return Database{}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return Database{}
	}
	db := Database{}
	for user, blob := range raw {
		rec, ok := upcastRecord(blob)
		if !ok {
			return Database{}
		}
		db[user] = rec
	}
	return db
}

// Save serializes the entire database and rewrites the document in full.
// Every mutating operation calls this synchronously.
func (s *Store) Save(db Database) error {
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.Path, b, 0o644)
}

// upcastRecord accepts both the current record shape and the legacy shape
// where a user mapped directly to a task array. Legacy data is upgraded in
// memory and written back in the current shape on the next save.
func upcastRecord(blob json.RawMessage) (*Record, bool) {
	var rec Record
	if err := json.Unmarshal(blob, &rec); err == nil {
		ensureTaskIDs(&rec)
		return &rec, true
	}
	var tasks []Task
	if err := json.Unmarshal(blob, &tasks); err == nil {
		rec := Record{Tasks: tasks, Current: ""}
		ensureTaskIDs(&rec)
		return &rec, true
	}
	return nil, false
}

// ensureTaskIDs mints IDs for tasks written before IDs existed. A legacy
// current pointer held the selected task's created_at; remap it to the
// minted ID so the selection survives the upcast.
func ensureTaskIDs(rec *Record) {
	for i := range rec.Tasks {
		if rec.Tasks[i].ID != "" {
			continue
		}
		rec.Tasks[i].ID = newTaskID()
		if rec.Current != "" && rec.Current == rec.Tasks[i].CreatedAt {
			rec.Current = rec.Tasks[i].ID
		}
	}
}

// EnsureUserRecord returns the record for user, creating an empty one if
// absent. Idempotent.
func EnsureUserRecord(db Database, user string) *Record {
	rec, ok := db[user]
	if !ok || rec == nil {
		rec = &Record{Tasks: []Task{}}
		db[user] = rec
	}
	return rec
}

func newTaskID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("tsk_%d", timeNow().UnixNano())
	}
	return "tsk_" + strings.ToUpper(id.String())
}

func taskByID(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}
	return nil
}
