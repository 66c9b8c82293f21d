package service

import (
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Paging limits for ListUsers.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskDetails is a task with its assignee populated.
// Assignee is nil when the task is unassigned.
type TaskDetails struct {
	Task     *domain.Task
	Assignee *domain.User
}

// UserDetails is a user with its task references populated, in link order.
type UserDetails struct {
	User  *domain.User
	Tasks []*domain.Task
}

// UserPage is one page of ListUsers.
type UserPage struct {
	Users []*UserDetails
	Page  int
	Limit int
	Total int
}

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	// Status is optional and defaults to todo.
	Status string
	// Assignee is optional.
	Assignee *uuid.UUID
}

// CreateUserInput holds the fields accepted when creating a user.
type CreateUserInput struct {
	Name string
	// Tasks are assigned to the new user in the given order.
	Tasks []uuid.UUID
}

// UserRef identifies a user either by ID or by name. ID wins when both are set.
type UserRef struct {
	ID   string
	Name string
}

// ListUsersInput holds the paging and filter parameters for ListUsers.
// Zero Page and Limit take the defaults.
type ListUsersInput struct {
	Name  string
	Page  int
	Limit int
}

// ReconcileReport counts the links a reconciliation run changed.
type ReconcileReport struct {
	StaleRemoved    int64
	MissingRestored int64
}
