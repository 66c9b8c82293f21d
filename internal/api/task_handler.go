package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, tasksToResponse(details), "Get Task List Successfully")
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.Assignee != "" {
		id, err := uuid.Parse(req.Assignee)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("assignee", "must be a valid UUID"), "")
			return
		}
		input.Assignee = &id
	}

	details, err := h.tasks.CreateTask(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", details.Task.ID.String()))
	shared.RespondWithData(w, r, http.StatusCreated, taskToResponse(details), "Create Task Successfully")
}

// GetTask handles GET /tasks/{taskId}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "taskId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, taskToResponse(details), "Task Found")
}

// FindTasksOfUser handles GET /tasks/user?userName=...|userId=...
func (h *TaskHandler) FindTasksOfUser(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := service.UserRef{ID: q.Get("userId"), Name: q.Get("userName")}

	ids, err := h.tasks.FindTasksOfUser(r.Context(), ref)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find tasks of user")
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	shared.RespondWithData(w, r, http.StatusOK, ids, "Get Tasks Of User Successfully")
}

// AssignTask handles PUT /tasks/assign/{taskId}
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	taskID, userID, ok := h.taskAndUser(w, r)
	if !ok {
		return
	}

	details, err := h.tasks.AssignTask(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, taskToResponse(details), "Assign Task Successfully")
}

// UnassignTask handles PUT /tasks/unassign/{taskId}
func (h *TaskHandler) UnassignTask(w http.ResponseWriter, r *http.Request) {
	taskID, userID, ok := h.taskAndUser(w, r)
	if !ok {
		return
	}

	details, err := h.tasks.UnassignTask(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to unassign task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, taskToResponse(details), "Unassign Task Successfully")
}

// UpdateTaskStatus handles PUT /tasks/status/{taskId}
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "taskId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.tasks.UpdateTaskStatus(r.Context(), taskID, req.NewStatus)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, taskToResponse(details), "Update Task Status Successfully")
}

// DeleteTask handles DELETE /tasks/{taskId}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := getPathUUID(r, "taskId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.tasks.DeleteTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, taskToResponse(details), "Delete Task Successfully")
}

// taskAndUser reads the taskId path parameter and the userId body field,
// writing the error response itself when either is invalid.
func (h *TaskHandler) taskAndUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	taskID, err := getPathUUID(r, "taskId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	var req UserIDRequest
	if !decodeAndValidate(w, r, &req) {
		return uuid.Nil, uuid.Nil, false
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("userId", "must be a valid UUID"), "")
		return uuid.Nil, uuid.Nil, false
	}
	return taskID, userID, true
}

// decodeAndValidate decodes the JSON body into req and runs struct validation.
// It writes a 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}
