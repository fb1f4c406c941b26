package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/good-yellow-bee/breachwatch/internal/api/auth"
	"github.com/good-yellow-bee/breachwatch/internal/api/middleware"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	jwtService := auth.NewJWTService(s.config.JWTSecret, s.config.TokenTTL)

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)
	ownerLimiter := middleware.NewRateLimiter(s.config.RateLimitPerOwner)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	// API v1 routes (all protected; tokens are minted out-of-band with
	// breachctl, there is no login endpoint)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ipLimiter))
		r.Use(middleware.JWTAuth(jwtService))
		r.Use(middleware.RateLimitByOwner(ownerLimiter))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", s.handleListAddresses)
			r.Post("/", s.handleCreateAddress)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAddress)
				r.Delete("/", s.handleDeleteAddress)
				r.Get("/snapshot", s.handleGetSnapshot)
				r.Post("/check", s.handleCheckAddress)
			})
		})

		r.Route("/batch", func(r chi.Router) {
			r.Post("/", s.handleTriggerBatch)
			r.Get("/", s.handleBatchStatus)
		})

		r.Get("/events", s.handleListEvents)
	})

	// Health endpoints (public, no rate limit)
	r.Get("/healthz", s.healthHandler.Health)
	r.Get("/livez", s.healthHandler.Live)
	r.Get("/readyz", s.healthHandler.Ready)

	return r
}
