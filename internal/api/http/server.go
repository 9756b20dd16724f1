// Package httpapi exposes the engine over a local HTTP surface: JSON
// snapshots and an SSE stream for the external rendering widget, plus the
// collaborator endpoints (refresh, paywall ack, entitlement updates).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steppet/steppet-engine/internal/logger"
)

// NewRouter wires the surface routes.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/events", h.StreamEvents)
		r.Post("/refresh", h.Refresh)
		r.Post("/paywall/ack", h.AcknowledgePaywall)
		r.Post("/entitlement", h.SetEntitlement)
		r.Post("/onboarding/complete", h.CompleteOnboarding)
	})

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Server wraps the HTTP listener with blocking Start and graceful Stop.
type Server struct {
	srv    *http.Server
	logger *logger.Logger
}

func NewServer(addr string, router chi.Router, logger *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Address() string {
	return s.srv.Addr
}

// Start blocks serving until Stop or a listener failure.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop drains in-flight requests within the ctx deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
