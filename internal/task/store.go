package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store owns a task file. Every operation performs a full
// load-mutate-save cycle; no state is held between calls.
type Store struct {
	// Path is the location of the task file.
	Path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads and parses the task file. A missing or empty file yields an
// empty list. A file that exists but does not hold a valid task list
// yields a *CorruptDataError.
func (s *Store) Load() ([]Task, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &CorruptDataError{Path: s.Path, Err: err}
	}

	result := validateMinimal(tasks)
	if !result.Valid {
		return nil, &CorruptDataError{Path: s.Path, Err: result.Errors[0]}
	}

	return tasks, nil
}

// Save writes the full task list back, overwriting the file. The write
// goes to a temp file in the same directory followed by a rename, so a
// crash mid-write leaves the previous content intact.
func (s *Store) Save(tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp task file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close task file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod task file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename task file: %w", err)
	}

	return nil
}

// Add appends a new task with status todo and returns its id.
func (s *Store) Add(description string) (int, error) {
	if strings.TrimSpace(description) == "" {
		return 0, fmt.Errorf("task description cannot be empty")
	}

	tasks, err := s.Load()
	if err != nil {
		return 0, err
	}

	id := NextID(tasks)
	tasks = append(tasks, Task{
		ID:          id,
		Description: description,
		Status:      StatusTodo,
		CreatedAt:   time.Now().UTC(),
	})

	if err := s.Save(tasks); err != nil {
		return 0, err
	}
	return id, nil
}

// Update replaces the description of the task with the given id.
func (s *Store) Update(id int, description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("task description cannot be empty")
	}
	return s.mutate(id, func(t *Task) {
		t.Description = description
	})
}

// Delete removes the task with the given id.
func (s *Store) Delete(id int) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}

	i := Find(tasks, id)
	if i < 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	tasks = append(tasks[:i], tasks[i+1:]...)

	return s.Save(tasks)
}

// SetStatus sets the status of the task with the given id.
func (s *Store) SetStatus(id int, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	return s.mutate(id, func(t *Task) {
		t.Status = status
	})
}

// List returns tasks matching the optional status filter, in original
// insertion order. An empty filter returns all tasks.
func (s *Store) List(filter Status) ([]Task, error) {
	tasks, err := s.Load()
	if err != nil {
		return nil, err
	}
	return Filter(tasks, filter), nil
}

// mutate applies fn to the task with the given id, bumps updatedAt, and
// persists the result.
func (s *Store) mutate(id int, fn func(*Task)) error {
	tasks, err := s.Load()
	if err != nil {
		return err
	}

	i := Find(tasks, id)
	if i < 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	fn(&tasks[i])
	now := time.Now().UTC()
	tasks[i].UpdatedAt = &now

	return s.Save(tasks)
}
