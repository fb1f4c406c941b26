// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/breachwatch/internal/api/health"
	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/monitor"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address           string
	JWTSecret         []byte
	TokenTTL          time.Duration
	RateLimitPerIP    int // unauthenticated requests per minute per IP
	RateLimitPerOwner int // authenticated requests per minute per owner
	RequestTimeout    time.Duration
	Verbose           bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 30
	}
	if c.RateLimitPerOwner == 0 {
		c.RateLimitPerOwner = 100
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// BatchControl exposes the background batch scheduler to the API.
type BatchControl interface {
	// TriggerNow requests an immediate batch run. It returns false when a
	// run is already in progress.
	TriggerNow() bool
	// LastSummary returns the most recent completed batch summary, or nil
	// when no batch has run yet.
	LastSummary() *models.BatchSummary
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	storage       storage.Storage
	checker       *monitor.Checker
	batch         BatchControl
	server        *http.Server
	healthHandler *health.Handler
}

// New creates a new API server. batch may be nil when the scheduler is
// disabled; the batch endpoints then return 404.
func New(cfg *Config, store storage.Storage, checker *monitor.Checker, batch BatchControl) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if checker == nil {
		return nil, fmt.Errorf("checker is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT secret is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		storage:       store,
		checker:       checker,
		batch:         batch,
		healthHandler: health.NewHandler(),
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("[api] HTTP API listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("[api] shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
