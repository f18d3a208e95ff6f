package store

import "fmt"

// Recommendation styles. "type" keeps the user on the current task's
// category; "dispersed" pushes toward a different one.
const (
	StyleType      = "type"
	StyleDispersed = "dispersed"
)

// Recommend picks a not-done task uniformly at random and makes it the
// user's current task. Priority tasks always win over style-based
// candidates. Only the current pointer is ever mutated; done and priority
// flags are left untouched.
func (s *Store) Recommend(db Database, user, style string) (*Task, error) {
	if style != StyleType && style != StyleDispersed {
		return nil, fmt.Errorf("%w: style %q", ErrInvalid, style)
	}
	rec, ok := db[user]
	if !ok || rec == nil || len(rec.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	if rec.Current == "" {
		candidates := preferPriority(notDone(rec.Tasks, ""))
		return s.pick(db, rec, candidates)
	}

	current := taskByID(rec.Tasks, rec.Current)
	if current == nil {
		return nil, ErrNotFound
	}

	candidates := notDone(rec.Tasks, rec.Current)
	if priority := priorityOnly(candidates); len(priority) > 0 {
		candidates = priority
	} else {
		sameCategory := style == StyleType
		var styled []Task
		for _, t := range candidates {
			if (t.Category == current.Category) == sameCategory {
				styled = append(styled, t)
			}
		}
		candidates = styled
	}
	return s.pick(db, rec, candidates)
}

func (s *Store) pick(db Database, rec *Record, candidates []Task) (*Task, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	chosen := candidates[randIntn(len(candidates))]
	rec.Current = chosen.ID
	if err := s.Save(db); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// notDone returns the not-done tasks, excluding the task with excludeID
// when non-empty.
func notDone(tasks []Task, excludeID string) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Done {
			continue
		}
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		out = append(out, t)
	}
	return out
}

func priorityOnly(tasks []Task) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Priority {
			out = append(out, t)
		}
	}
	return out
}

func preferPriority(tasks []Task) []Task {
	if priority := priorityOnly(tasks); len(priority) > 0 {
		return priority
	}
	return tasks
}
