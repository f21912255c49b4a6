// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package httpapi is the HTTP transport for the quest board: session
// endpoints, quest CRUD, crew switchboard, and journey ledger.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/questboard/questboard/internal/auth"
	"github.com/questboard/questboard/internal/observability"
)

// ServerConfig carries the listener settings the HTTP server needs.
type ServerConfig struct {
	Port           int
	BodyLimitMB    int
	TimeoutSeconds int
}

// Server is the public HTTP API server.
type Server struct {
	cfg        ServerConfig
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer assembles the route table and middlewares around the given
// handlers. secrets drives the per-role authorization middlewares.
func NewServer(cfg ServerConfig, authHandler *AuthHandler, questHandler *QuestHandler, secrets auth.Secrets, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	// Registration and authentication, per role.
	mux.HandleFunc("POST /adventurers", authHandler.Register(auth.RoleAdventurer))
	mux.HandleFunc("POST /guild-commanders", authHandler.Register(auth.RoleGuildCommander))
	mux.HandleFunc("POST /authentication/adventurers/login", authHandler.Login(auth.RoleAdventurer))
	mux.HandleFunc("POST /authentication/adventurers/refresh-token", authHandler.Refresh(auth.RoleAdventurer))
	mux.HandleFunc("POST /authentication/guild-commanders/login", authHandler.Login(auth.RoleGuildCommander))
	mux.HandleFunc("POST /authentication/guild-commanders/refresh-token", authHandler.Refresh(auth.RoleGuildCommander))

	// Quest viewing is public.
	mux.HandleFunc("GET /quest-viewing/board-checking", questHandler.BoardChecking)
	mux.HandleFunc("GET /quest-viewing/{quest_id}", questHandler.ViewDetails)

	// Quest ops and journey ledger require a guild commander session.
	commanderOnly := RequireRole(auth.RoleGuildCommander, secrets)
	mux.Handle("POST /quest-ops", commanderOnly(http.HandlerFunc(questHandler.Add)))
	mux.Handle("PATCH /quest-ops/{quest_id}", commanderOnly(http.HandlerFunc(questHandler.Edit)))
	mux.Handle("DELETE /quest-ops/{quest_id}", commanderOnly(http.HandlerFunc(questHandler.Remove)))
	mux.Handle("PATCH /journey-ledger/in-journey/{quest_id}", commanderOnly(http.HandlerFunc(questHandler.InJourney)))
	mux.Handle("PATCH /journey-ledger/to-completed/{quest_id}", commanderOnly(http.HandlerFunc(questHandler.ToCompleted)))
	mux.Handle("PATCH /journey-ledger/to-failed/{quest_id}", commanderOnly(http.HandlerFunc(questHandler.ToFailed)))

	// Crew switchboard requires an adventurer session.
	adventurerOnly := RequireRole(auth.RoleAdventurer, secrets)
	mux.Handle("POST /crew-switchboard/join/{quest_id}", adventurerOnly(http.HandlerFunc(questHandler.Join)))
	mux.Handle("DELETE /crew-switchboard/leave/{quest_id}", adventurerOnly(http.HandlerFunc(questHandler.Leave)))

	mux.HandleFunc("GET /health-check", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "OK")
	})

	handler := chain(mux,
		RequestID(),
		AccessLog(logger, metrics),
		bodyLimit(cfg.BodyLimitMB),
	)

	return &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Handler returns the fully wrapped route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// bodyLimit caps request body size at limitMB megabytes.
func bodyLimit(limitMB int) Middleware {
	limit := int64(limitMB) * 1024 * 1024
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Start begins serving. It returns an error channel that receives any
// serve failure and is closed on graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("http server already running")
	}

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", addr).Wrap(err)
	}
	s.listener = listener

	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second
	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("http server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("http server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server, letting in-flight requests
// finish until the context expires.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_http_server").Wrap(err)
		}
	}

	s.logger.Info("http server stopped")
	return nil
}

// Addr returns the listen address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
