package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for Task.
const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 2000
)

// TaskStatus represents where a task is in its lifecycle.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchive    TaskStatus = "archive"
)

// taskTransitions is the single source of truth for status changes.
// A status absent from the map, or mapped to nothing, is terminal.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusTodo:       {TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchive},
	TaskStatusInProgress: {TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchive},
	TaskStatusDone:       {TaskStatusArchive},
	TaskStatusArchive:    {},
}

// TaskStatuses returns every accepted status in lifecycle order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchive}
}

// ParseTaskStatus converts s into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// IsValid reports whether s is one of the accepted statuses.
func (s TaskStatus) IsValid() bool {
	_, ok := taskTransitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable from s.
func (s TaskStatus) AllowedTransitions() []TaskStatus {
	next := taskTransitions[s]
	out := make([]TaskStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo reports whether the table allows moving from s to next.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Task is a unit of work with a status and at most one assignee.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AssigneeID  *uuid.UUID `json:"assignee"`
	IsDeleted   bool       `json:"isDeleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTask creates a new todo Task with a fresh ID.
// Returns an error if validation fails.
func NewTask(title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      TaskStatusTodo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required")
	}

	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required")
	}

	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return NewValidationError("title", fmt.Sprintf("must be at most %d characters", MaxTaskTitleLength))
	}

	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return NewValidationError(
			"description",
			fmt.Sprintf("must be at most %d characters", MaxTaskDescriptionLength),
		)
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	return nil
}

// IsAssignedTo reports whether userID currently holds the task.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// TransitionTo moves the task to next if the transition table allows it.
// An allowed move to the current status leaves the task untouched.
func (t *Task) TransitionTo(next TaskStatus) error {
	if t.IsDeleted {
		return ErrTaskDeleted
	}

	if !next.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	if !t.Status.CanTransitionTo(next) {
		return &TransitionError{From: t.Status, To: next}
	}

	if t.Status == next {
		return nil
	}
	t.Status = next
	t.touch()
	return nil
}

// AssignTo sets userID as the task's assignee.
func (t *Task) AssignTo(userID uuid.UUID) error {
	if t.IsDeleted {
		return ErrTaskDeleted
	}

	if userID == uuid.Nil {
		return NewValidationError("userId", "is required")
	}

	id := userID
	t.AssigneeID = &id
	t.touch()
	return nil
}

// Unassign clears the assignee.
func (t *Task) Unassign() {
	t.AssigneeID = nil
	t.touch()
}

// MarkDeleted soft-deletes the task. It returns false if it was already deleted.
func (t *Task) MarkDeleted() bool {
	if t.IsDeleted {
		return false
	}
	t.IsDeleted = true
	t.touch()
	return true
}

func (t *Task) touch() {
	t.UpdatedAt = time.Now().UTC()
}
