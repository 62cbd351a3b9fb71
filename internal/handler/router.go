package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the optional pieces of the HTTP surface.
type RouterConfig struct {
	Logger *slog.Logger
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// Ping backs GET /ready when set.
	Ping           func(context.Context) error
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter builds the chi router with the global middleware stack and the
// reservation API mounted under /api/rent.
func NewRouter(h *ReservationHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(Logger(cfg.Logger))
	}
	r.Use(CORS)

	r.Get("/health", HealthCheck)
	r.Get("/ready", ReadyCheck(cfg.Ping))
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Route("/api/rent", func(r chi.Router) {
		r.Use(limiter.Middleware)

		r.Post("/reservations", h.CreateReservation)
		r.Patch("/reservations/{id}/status", h.TransitionStatus)

		r.Route("/tenants/{tenantID}/reservations", func(r chi.Router) {
			r.Get("/", h.ListForTenant)
			r.Get("/{id}", h.GetForTenant)
			r.Patch("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.DeleteReservation)
		})

		r.Route("/owners/{ownerID}", func(r chi.Router) {
			r.Get("/properties/{propertyID}/reservations", h.ListForOwner)
			r.Get("/reservations/{id}", h.GetForOwner)
		})
	})

	return r
}
