/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

ROUTE GROUPS:
  /api/update-requests/*   Profile update review
  /api/holiday-requests/*  Holiday change review
  /api/employees/*         Profiles and submissions
  /api/holidays            Holiday calendar
  /api/scenarios/*         Demo scenarios

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

// NewRouter creates a new router with all routes configured. An empty
// allowedOrigins list allows any origin.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/update-requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingUpdateRequests)
			r.Get("/{id}", h.GetUpdateRequest)
			r.Post("/{id}/approve", h.ApproveUpdateRequest)
			r.Post("/{id}/reject", h.RejectUpdateRequest)
		})

		r.Route("/holiday-requests", func(r chi.Router) {
			r.Get("/pending", h.ListPendingHolidayRequests)
			r.Post("/{id}/approve", h.ApproveHolidayRequest)
			r.Post("/{id}/reject", h.RejectHolidayRequest)
		})

		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.SaveProfile)
			r.Post("/update-requests", h.SubmitUpdateRequest)
			r.Post("/holiday-requests", h.SubmitHolidayRequest)
		})

		r.Get("/holidays", h.ListHolidays)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
