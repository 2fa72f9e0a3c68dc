// Copyright (c) 2026 Corkboard. All rights reserved.

// Package api assembles the HTTP surface of the accounts service.
//
// It owns the router, the middleware chain, and the server lifecycle.
// Handlers are injected fully constructed; no wiring happens here beyond
// attaching them to routes.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corkboard/corkboard/internal/platform/config"
	"github.com/corkboard/corkboard/internal/platform/constants"
	"github.com/corkboard/corkboard/internal/platform/middleware"
)

// Handlers groups the injected HTTP handlers attached to the router.
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
	GraphQL   http.Handler
}

// Server wraps the standard http.Server with lifecycle helpers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the router, applies the middleware chain, and returns a
// configured server that is not yet listening.
func NewServer(cfg *config.Config, logger *slog.Logger, handlers Handlers) *Server {
	router := chi.NewRouter()

	// Order matters: the request id must exist before the logger derives
	// from it, and recovery must wrap everything below it.
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.CORS(cfg))

	router.Get("/healthz", handlers.Liveness)
	router.Get("/readyz", handlers.Readiness)
	router.Handle("/graphql", handlers.GraphQL)

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}

	return &Server{httpServer: httpServer, logger: logger}
}

// ListenAndServe starts accepting connections. Blocks until the server stops.
func (server *Server) ListenAndServe() error {
	server.logger.Info("http_server_listening", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests within the given timeout.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}
