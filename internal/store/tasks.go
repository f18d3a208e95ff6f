package store

import (
	"fmt"
	"time"
)

type AddTaskInput struct {
	Text     string
	Category string
	Priority bool
}

type ListFilter struct {
	Category string
}

// AddTask appends a new task to the user's record and persists. Empty text
// is accepted as-is; validation at this boundary is an open gap.
func (s *Store) AddTask(db Database, user string, in AddTaskInput) (*Task, error) {
	rec := EnsureUserRecord(db, user)
	task := Task{
		ID:        newTaskID(),
		Text:      in.Text,
		CreatedAt: timeNow().Format(time.RFC3339),
		Category:  in.Category,
		Priority:  in.Priority,
	}
	rec.Tasks = append(rec.Tasks, task)
	if err := s.Save(db); err != nil {
		return nil, err
	}
	added := rec.Tasks[len(rec.Tasks)-1]
	return &added, nil
}

// RemoveTask deletes the task at the 1-based index. Removing the selected
// task clears the current pointer; removing any other task leaves it alone.
func (s *Store) RemoveTask(db Database, user string, index int) (*Task, error) {
	rec, task, err := taskAt(db, user, index)
	if err != nil {
		return nil, err
	}
	removed := *task
	rec.Tasks = append(rec.Tasks[:index-1], rec.Tasks[index:]...)
	if rec.Current == removed.ID {
		rec.Current = ""
	}
	if err := s.Save(db); err != nil {
		return nil, err
	}
	return &removed, nil
}

// MarkDone sets done on the task at the 1-based index.
func (s *Store) MarkDone(db Database, user string, index int) (*Task, error) {
	_, task, err := taskAt(db, user, index)
	if err != nil {
		return nil, err
	}
	task.Done = true
	if err := s.Save(db); err != nil {
		return nil, err
	}
	done := *task
	return &done, nil
}

// ClearTasks empties the user's task list and resets the current pointer.
// The record itself persists as an empty shell.
func (s *Store) ClearTasks(db Database, user string) error {
	rec, ok := db[user]
	if !ok || rec == nil {
		return nil
	}
	rec.Tasks = []Task{}
	rec.Current = ""
	return s.Save(db)
}

// SelectTask marks the task at the 1-based index as current. Done-ness is
// not checked.
func (s *Store) SelectTask(db Database, user string, index int) (*Task, error) {
	rec, task, err := taskAt(db, user, index)
	if err != nil {
		return nil, err
	}
	rec.Current = task.ID
	if err := s.Save(db); err != nil {
		return nil, err
	}
	selected := *task
	return &selected, nil
}

// UnselectCurrent resets the current pointer.
func (s *Store) UnselectCurrent(db Database, user string) error {
	rec, ok := db[user]
	if !ok || rec == nil {
		return ErrNoTasks
	}
	rec.Current = ""
	return s.Save(db)
}

// PromoteTask flags the task at the 1-based index as a priority task.
func (s *Store) PromoteTask(db Database, user string, index int) (*Task, error) {
	return s.setPriority(db, user, index, true)
}

// DemoteTask clears the priority flag on the task at the 1-based index.
func (s *Store) DemoteTask(db Database, user string, index int) (*Task, error) {
	return s.setPriority(db, user, index, false)
}

func (s *Store) setPriority(db Database, user string, index int, priority bool) (*Task, error) {
	_, task, err := taskAt(db, user, index)
	if err != nil {
		return nil, err
	}
	task.Priority = priority
	if err := s.Save(db); err != nil {
		return nil, err
	}
	updated := *task
	return &updated, nil
}

// CurrentTask resolves the user's current pointer. A pointer left dangling
// by external edits reports ErrNotFound; it is never auto-cleared here.
func CurrentTask(db Database, user string) (*Task, error) {
	rec, ok := db[user]
	if !ok || rec == nil {
		return nil, ErrNoTasks
	}
	if rec.Current == "" {
		return nil, ErrNoCurrent
	}
	task := taskByID(rec.Tasks, rec.Current)
	if task == nil {
		return nil, ErrNotFound
	}
	found := *task
	return &found, nil
}

// ListedTask pairs a task with its 1-based position in the full sequence,
// so filtered listings still show indices that remove/done/select accept.
type ListedTask struct {
	Index int
	Task  Task
}

// ListTasks returns the user's tasks in order, optionally restricted to an
// exact category, along with the current task ID for rendering.
func ListTasks(db Database, user string, f ListFilter) ([]ListedTask, string, error) {
	rec, ok := db[user]
	if !ok || rec == nil || len(rec.Tasks) == 0 {
		return nil, "", ErrNoTasks
	}
	var out []ListedTask
	for i, t := range rec.Tasks {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		out = append(out, ListedTask{Index: i + 1, Task: t})
	}
	return out, rec.Current, nil
}

// ListPriorities returns the user's priority-flagged tasks in order.
func ListPriorities(db Database, user string) ([]ListedTask, string, error) {
	rec, ok := db[user]
	if !ok || rec == nil || len(rec.Tasks) == 0 {
		return nil, "", ErrNoTasks
	}
	var out []ListedTask
	for i, t := range rec.Tasks {
		if t.Priority {
			out = append(out, ListedTask{Index: i + 1, Task: t})
		}
	}
	return out, rec.Current, nil
}

func taskAt(db Database, user string, index int) (*Record, *Task, error) {
	rec, ok := db[user]
	if !ok || rec == nil || len(rec.Tasks) == 0 {
		return nil, nil, ErrNoTasks
	}
	if index < 1 || index > len(rec.Tasks) {
		return nil, nil, fmt.Errorf("%w: index %d out of range", ErrInvalid, index)
	}
	return rec, &rec.Tasks[index-1], nil
}
