// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hellomouse/hellomouse-apps-api/internal/board"
	"github.com/hellomouse/hellomouse-apps-api/internal/files"
	"github.com/hellomouse/hellomouse-apps-api/internal/jobqueue"
	"github.com/hellomouse/hellomouse-apps-api/internal/link"
	"github.com/hellomouse/hellomouse-apps-api/internal/music"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/config"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/middleware"
	"github.com/hellomouse/hellomouse-apps-api/internal/users/account"
	"github.com/hellomouse/hellomouse-apps-api/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here and mount its routes in [NewServer].
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles login/logout.
	Auth *auth.Handler

	// Account handles `/v1/user_settings` and the `/v1/users*` directory
	// lookups.
	Account *account.Handler

	// Board handles boards, pins, pin history, favorites, and tags.
	Board *board.Handler

	// Link handles the per-user URL list (`/v1/link`).
	Link *link.Handler

	// Music handles playlists, playlist permissions, user-playlist
	// membership, and song metadata/enqueue.
	Music *music.Handler

	// Files handles multipart ingest, download, deletion, and the
	// profile-picture pipeline.
	Files *files.Handler

	// Site handles job submission and status polling.
	Site *jobqueue.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	rte := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	rte.Use(middleware.RequestID())
	rte.Use(middleware.StructuredLogger(log))
	rte.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	rte.Use(middleware.RateLimit(ctx, cfg.RequestQuota,
		time.Duration(cfg.RequestQuotaReplenishMs)*time.Millisecond))
	rte.Use(middleware.PanicRecovery(log))
	rte.Use(middleware.Authenticate(verifier))
	rte.Use(middleware.CORS(cfg))
	rte.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	rte.Get("/health", h.Liveness)
	rte.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under the versioned prefix
	// (`/v1/...`).
	rte.Route("/v1", func(api chi.Router) {
		h.Auth.RegisterRoutes(api)
		h.Account.RegisterRoutes(api)
		api.Mount("/board", h.Board.Routes())
		api.Mount("/link", h.Link.Routes())
		api.Mount("/music", h.Music.Routes())
		api.Mount("/files", h.Files.Routes())
		api.Mount("/site", h.Site.Routes())
	})

	return &Server{
		router: rte,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           rte,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
