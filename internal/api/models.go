package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/jobs"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// CreateTaskRequest defines the payload for POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Status      string `json:"status"      validate:"omitempty,oneof=todo in-progress done archive"`
	Assignee    string `json:"assignee"    validate:"omitempty,uuid"`
}

// CreateUserRequest defines the payload for POST /users.
type CreateUserRequest struct {
	Name  string   `json:"name"  validate:"required,max=100"`
	Tasks []string `json:"tasks" validate:"omitempty,dive,uuid"`
}

// UserIDRequest defines the payload for the assign and unassign endpoints.
type UserIDRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

// UpdateStatusRequest defines the payload for PUT /tasks/status/{taskId}.
type UpdateStatusRequest struct {
	NewStatus string `json:"newStatus" validate:"required"`
}

// UserSummary is a user as embedded in a task response.
type UserSummary struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Tasks     []uuid.UUID `json:"tasks"`
	IsDeleted bool        `json:"isDeleted"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// TaskResponse is a task with its assignee populated.
type TaskResponse struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Assignee    *UserSummary `json:"assignee"`
	IsDeleted   bool         `json:"isDeleted"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// UserResponse is a user with its tasks populated. Tasks carry only the
// assignee's id.
type UserResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Tasks     []*domain.Task `json:"tasks"`
	IsDeleted bool           `json:"isDeleted"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// JobResponse describes a queued background job.
type JobResponse struct {
	ID     uuid.UUID   `json:"id"`
	Type   string      `json:"type"`
	Status jobs.Status `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func userSummary(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	tasks := u.Tasks
	if tasks == nil {
		tasks = []uuid.UUID{}
	}
	return &UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Tasks:     tasks,
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func taskToResponse(d *service.TaskDetails) *TaskResponse {
	t := d.Task
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Assignee:    userSummary(d.Assignee),
		IsDeleted:   t.IsDeleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(details []*service.TaskDetails) []*TaskResponse {
	out := make([]*TaskResponse, len(details))
	for i, d := range details {
		out[i] = taskToResponse(d)
	}
	return out
}

func userToResponse(d *service.UserDetails) *UserResponse {
	u := d.User
	tasks := d.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Tasks:     tasks,
		IsDeleted: u.IsDeleted,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func userPageToResponse(p *service.UserPage) *UserListResponse {
	users := make([]*UserResponse, len(p.Users))
	for i, d := range p.Users {
		users[i] = userToResponse(d)
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (p.Total + p.Limit - 1) / p.Limit
	}
	return &UserListResponse{
		Users:      users,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: totalPages,
	}
}
