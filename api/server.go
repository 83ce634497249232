/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests from the analyst front end

ROUTE GROUPS:
  /api/health            Liveness
  /api/simulate          Simulation (and /api/calculate alias)
  /api/compare           Side-by-side model comparison
  /api/parameters/*      Form defaults
  /api/simulations/*     Run history
  /api/scenarios/*       Preset scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", nil)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Simulation routes
		r.Post("/simulate", h.Simulate)
		r.Post("/calculate", h.Simulate)
		r.Post("/compare", h.Compare)
		r.Get("/parameters/defaults", h.GetDefaults)

		// Run history routes
		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Delete("/", h.ResetRuns)
			r.Get("/{id}", h.GetRun)
			r.Delete("/{id}", h.DeleteRun)
			r.Get("/{id}/cohorts", h.GetRunCohorts)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{id}/simulate", h.SimulateScenario)
		})
	})

	return r
}
