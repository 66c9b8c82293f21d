package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnvelope mirrors shared.Envelope with a raw data field.
type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		StatusCode   int    `json:"statusCode"`
		Message      string `json:"message"`
		ReasonPhrase string `json:"reasonPhrase"`
		TraceID      string `json:"traceId"`
	} `json:"error"`
}

// newTestRouter mounts the handlers on the same paths the server uses.
func newTestRouter(tasks *mockTaskService, users *mockUserService, runner *mockRunner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Trace(discardLogger()))

	if tasks != nil {
		th := NewTaskHandler(tasks, discardLogger())
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", th.ListTasks)
			r.Post("/", th.CreateTask)
			r.Get("/user", th.FindTasksOfUser)
			r.Put("/assign/{taskId}", th.AssignTask)
			r.Put("/unassign/{taskId}", th.UnassignTask)
			r.Put("/status/{taskId}", th.UpdateTaskStatus)
			r.Get("/{taskId}", th.GetTask)
			r.Delete("/{taskId}", th.DeleteTask)
		})
	}
	if users != nil {
		uh := NewUserHandler(users, discardLogger())
		r.Route("/users", func(r chi.Router) {
			r.Get("/", uh.ListUsers)
			r.Post("/", uh.CreateUser)
			r.Get("/{name}", uh.FindUserByName)
		})
	}
	if runner != nil {
		ah := NewAdminHandler(runner, mockReconciler{}, discardLogger())
		r.Post("/admin/reconcile", ah.Reconcile)
		r.Get("/admin/jobs/{jobId}", ah.GetJob)
	}
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}
