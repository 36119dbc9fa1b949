package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/barbaarintasan/bsa-bridge/internal/config"
	"github.com/barbaarintasan/bsa-bridge/internal/handlers"
	"github.com/barbaarintasan/bsa-bridge/internal/middleware"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler, cfg *config.Config) {
	// Local registration and login (login runs the legacy-credential stage)
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)

	// API-key-protected surface: inbound sync from the app + admin tools
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAPIKey(cfg.SyncAPIKey))
		pr.Post("/bsa/v1/sync-user", h.SyncUserFromApp)
		pr.Post("/api/admin/import", h.ImportUsers)
		pr.Get("/api/admin/sync-events", h.GetSyncEvents)
	})
}
