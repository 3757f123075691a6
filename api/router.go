package api

import (
	"log/slog"
	"wish-wall/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures the HTTP router used by phones, the wall
// display and the moderator page.
func NewRouter(log *slog.Logger, issuer *auth.Issuer, h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(Metrics)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(log))
	r.Use(chimw.Recoverer)

	// Guests scan the QR code from any origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)

	r.Post("/api/session", h.CreateSession)

	r.Group(func(r chi.Router) {
		r.Use(issuer.RequireSession)

		r.Get("/api/links", h.Links)
		r.Get("/api/view", h.View)

		r.Post("/api/wishes", h.Submit)
		r.Post("/api/wishes/{id}/approve", h.Approve)
		r.Post("/api/wishes/{id}/reject", h.Reject)
		r.Delete("/api/wishes", h.ClearAll)

		r.Get("/api/queue", h.Queue)
		r.Get("/api/queue/stream", h.QueueStream)
		r.Get("/api/wall", h.Wall)
		r.Get("/api/wall/stream", h.WallStream)
	})

	return r
}
