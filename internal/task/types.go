// Package task owns the persisted task list and its on-disk JSON contract.
package task

import (
	"errors"
	"fmt"
	"time"
)

// Status represents a task status.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses returns all valid statuses in display order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus parses a status string. It returns an error for anything
// outside the todo|in-progress|done enum.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusTodo, StatusInProgress, StatusDone:
		return Status(s), nil
	default:
		return "", fmt.Errorf("invalid status %q, must be one of: todo, in-progress, done", s)
	}
}

// Task represents a single tracked unit of work.
//
// The JSON field names and the RFC 3339 UTC timestamp format are a stable
// contract: files written by one version must load in any other.
// UpdatedAt is null until the first mutation.
type Task struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// ErrNotFound is returned when an operation targets an id that is not in
// the store.
var ErrNotFound = errors.New("task not found")

// CorruptDataError is returned when the task file exists but its content
// is not a valid task list.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt task file %s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *CorruptDataError) Unwrap() error {
	return e.Err
}

// NextID computes the id for the next task: max(existing ids)+1, or 1 for
// an empty list.
func NextID(tasks []Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// Find returns the index of the task with the given id, or -1.
func Find(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Filter returns the tasks matching status, in original order. An empty
// status returns the input unchanged.
func Filter(tasks []Task, status Status) []Task {
	if status == "" {
		return tasks
	}
	var matched []Task
	for _, t := range tasks {
		if t.Status == status {
			matched = append(matched, t)
		}
	}
	return matched
}
