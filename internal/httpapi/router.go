package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/taskflow/core/internal/service"
)

// NewRouter assembles the full HTTP surface of spec §6.1 under /api/v1,
// plus an unversioned /health.
func NewRouter(tasks *service.TaskService, users *service.UserService, allowedOrigins []string) http.Handler {
	taskHandlers := NewTaskHandlers(tasks)
	userHandlers := NewUserHandlers(users)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Logger)

	r.Get("/health", Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandlers.Create)
			r.Get("/", userHandlers.List)
			r.Get("/email/{email}", userHandlers.GetByEmail)
			r.Get("/{id}", userHandlers.Get)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandlers.Create)
			r.Get("/", taskHandlers.List)
			r.Get("/{id}", taskHandlers.Get)
			r.Put("/{id}", taskHandlers.Update)
			r.Patch("/{id}/status", taskHandlers.UpdateStatus)
			r.Patch("/{id}/assignee", taskHandlers.UpdateAssignee)
			r.Delete("/{id}", taskHandlers.Delete)
		})
	})

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "If-Match", "X-Correlation-ID"},
		ExposedHeaders:   []string{"ETag", "X-Correlation-ID"},
		AllowCredentials: true,
	})

	return corsMiddleware.Handler(r)
}
