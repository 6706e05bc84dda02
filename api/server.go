/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for frontend
  5. AuthContext: Caller identity headers

ROUTE GROUPS:
  /api/login          Authentication
  /api/bases          Base catalog
  /api/assets         Asset catalog
  /api/dashboard      Balance sheet / global stock view
  /api/purchases      Record purchases
  /api/transfers      Record transfers
  /api/assignments    Record assignments and expenditures
  /api/history        Enriched transaction history
  /api/reset          Database reset (dev only)

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Identity middleware
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
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Role", "X-Base-ID", "X-User-ID"},
		AllowCredentials: true,
	}))
	r.Use(AuthContext)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Get("/bases", h.ListBases)
		r.Get("/assets", h.ListAssets)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/history", h.History)

		r.Post("/purchases", h.CreatePurchase)
		r.Post("/transfers", h.CreateTransfer)
		r.Post("/assignments", h.CreateAssignment)

		// Dev/demo helper: wipe and reseed
		r.Post("/reset", h.Reset)
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
