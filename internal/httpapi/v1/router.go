// Package v1 wires the HTTP surface of the accounting configuration service.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arnaudGHB/glconfig/internal/audit"
	"github.com/arnaudGHB/glconfig/internal/lock"
	"github.com/arnaudGHB/glconfig/internal/service/configure"
	"github.com/arnaudGHB/glconfig/internal/service/provision"
)

// Server wires handlers and middleware using Chi.
type Server struct {
	svc      configure.Service
	branches BranchReader
	store    Store
	log      *slog.Logger
	rt       *chi.Mux
}

// New constructs the HTTP server with routes and middleware. The locker
// guards ledger-account provisioning; the sink receives audit events.
func New(store Store, locker lock.Locker, sink audit.Sink, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)

	prov := provision.New(store, store, locker)
	s := &Server{
		svc:      configure.New(store, store, prov, sink),
		branches: store,
		store:    store,
		rt:       r,
		log:      logger,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches per-route
// middleware.
func (s *Server) routes() {
	// Product accounting configuration (v1)
	s.rt.With(s.resolveBranch(), s.validateConfigure()).Post("/v1/products/{id}/accounting", s.postConfigure)
	s.rt.With(s.resolveBranch(), s.validateUpdate()).Put("/v1/products/{id}/accounting", s.putUpdate)
	// Rubrique catalogue (v1)
	s.rt.Get("/v1/rubriques", s.listRubriques)
	// Health + metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
