package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// ListUsers handles GET /users?page=&limit=&name=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := parseIntQuery("page", q.Get("page"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := parseIntQuery("limit", q.Get("limit"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.users.ListUsers(r.Context(), service.ListUsersInput{
		Name:  q.Get("name"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, userPageToResponse(result), "Get User List Successfully")
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	taskIDs, err := parseUUIDs("tasks", req.Tasks)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.users.CreateUser(r.Context(), service.CreateUserInput{Name: req.Name, Tasks: taskIDs})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, userToResponse(details), "Create User Successfully")
}

// FindUserByName handles GET /users/{name}
func (h *UserHandler) FindUserByName(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindUserByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to find user")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, userSummary(user), "User Found")
}
