package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	adminHandler := api.NewAdminHandler(app.jobRunner, app.reconcileService, app.logger)
	healthHandler := api.NewHealthHandler(app.backend.pinger, app.logger)

	r.Get("/health", healthHandler.Health)

	r.Group(func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/user", taskHandler.FindTasksOfUser)
			r.Put("/assign/{taskId}", taskHandler.AssignTask)
			r.Put("/unassign/{taskId}", taskHandler.UnassignTask)
			r.Put("/status/{taskId}", taskHandler.UpdateTaskStatus)
			r.Get("/{taskId}", taskHandler.GetTask)
			r.Delete("/{taskId}", taskHandler.DeleteTask)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Get("/{name}", userHandler.FindUserByName)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reconcile", adminHandler.Reconcile)
			r.Get("/jobs/{jobId}", adminHandler.GetJob)
		})
	})

	return r
}
