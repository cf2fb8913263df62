package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// UIEventSource hands out the toasts and navigation requests queued for the shell
type UIEventSource interface {
	Drain() domain.UIEvents
}

// Server is the local agent API consumed by the console shell
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	instanceID string
	logger     *slog.Logger

	// Services
	session  driving.SessionService
	accounts driving.AccountService
	events   UIEventSource

	// Infrastructure
	store Pinger // Session store health check (optional)
}

// Config holds server configuration
type Config struct {
	Addr           string
	Version        string
	InstanceID     string
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:7070",
		Version:        "dev",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	session driving.SessionService,
	accounts driving.AccountService,
	events UIEventSource,
	store Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:     http.NewServeMux(),
		version:    cfg.Version,
		instanceID: cfg.InstanceID,
		logger:     logger,
		session:    session,
		accounts:   accounts,
		events:     events,
		store:      store,
	}

	s.setupRoutes()

	handler := NewRecoveryMiddleware(logger).Handler(
		NewRequestIDMiddleware().Handler(
			NewLoggingMiddleware(logger).Handler(
				NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router))))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Account flows
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	s.router.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.router.HandleFunc("POST /api/v1/auth/verify-email", s.handleVerifyEmail)
	s.router.HandleFunc("POST /api/v1/auth/resend-otp", s.handleResendOTP)
	s.router.HandleFunc("POST /api/v1/auth/forgot-password", s.handleForgotPassword)
	s.router.HandleFunc("POST /api/v1/auth/reset-password", s.handleResetPassword)

	// Session lifecycle
	s.router.HandleFunc("GET /api/v1/session", s.handleGetSession)
	s.router.HandleFunc("POST /api/v1/session/check", s.handleCheckSession)
	s.router.HandleFunc("POST /api/v1/session/activity", s.handleActivity)
	s.router.HandleFunc("POST /api/v1/session/visibility", s.handleVisibility)
	s.router.HandleFunc("GET /api/v1/session/pending-email", s.handleGetPendingEmail)
	s.router.HandleFunc("PUT /api/v1/session/pending-email", s.handleSetPendingEmail)
	s.router.HandleFunc("DELETE /api/v1/session/pending-email", s.handleClearPendingEmail)

	// Shell outbox
	s.router.HandleFunc("GET /api/v1/ui/events", s.handleUIEvents)
}

// Handler exposes the wrapped router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting agent API", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down agent API")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("agent API stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
