package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskbrief/taskbrief/internal/api"
	apiMiddleware "github.com/taskbrief/taskbrief/internal/api/middleware"
	"github.com/taskbrief/taskbrief/internal/api/shared"
	"github.com/taskbrief/taskbrief/internal/service"
)

// buildRouter configures the application router with all routes and
// middleware. The db handle is used by the health endpoint; it may be nil
// in tests, in which case health reports only process liveness.
func buildRouter(taskService service.TaskService, db *sql.DB, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(taskService, logger)

	r.Route("/api/v1", taskHandler.RegisterRoutes)

	r.Get("/health", healthHandler(db))

	return r
}

// healthResponse is the health endpoint payload
type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
}

// healthHandler reports process liveness and, when a database handle is
// available, storage reachability. An unreachable database degrades the
// status but still answers 200 so load balancers keep routing while
// storage recovers.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := healthResponse{Status: "ok", Service: "taskbrief"}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				response.Status = "degraded"
				response.Database = "unreachable"
			} else {
				response.Database = "ok"
			}
		}

		shared.RespondWithJSON(w, r, http.StatusOK, response)
	}
}
