package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"prediction_relay/backend/go/internal/config"
	"prediction_relay/backend/go/pkg/httpmiddleware"
	"prediction_relay/backend/go/pkg/ratelimiter"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Middleware defines a function to wrap an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server wraps http.Server and applies the relay's transport middleware around the
// application handler.
type Server struct {
	httpServer *http.Server
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithReadTimeout bounds how long reading a request may take.
func WithReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.httpServer.ReadTimeout = d
		s.httpServer.ReadHeaderTimeout = d
	}
}

// NewServer wraps handler with the middleware enabled in cfg.
func NewServer(cfg config.ServerConfig, handler http.Handler, opts ...ServerOption) (*Server, error) {
	middlewares := []Middleware{httpmiddleware.MaxBody(maxRequestBody)}

	if cfg.RateLimiter.Enabled {
		if cfg.RateLimiter.Rate <= 0 {
			return nil, fmt.Errorf("rate limiter rate must be positive, got %v", cfg.RateLimiter.Rate)
		}
		limiter := ratelimiter.NewTokenBucket(cfg.RateLimiter.Rate, cfg.RateLimiter.Capacity)
		middlewares = append(middlewares, httpmiddleware.RateLimit(limiter))
	}

	// outermost first
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = ":4000"
	}
	return srv, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
