// Package server exposes the task execution core over a small HTTP JSON
// API. The server has no execution logic of its own: every tool request
// is handed to the executor, and the task control operations read through
// the reporter. Protocol framing is deliberately thin so that a tool
// failure surfaces as a structured failed result, never as a dropped
// connection.
package server

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/dddabtc/winremote-mcp/internal/config"
	"github.com/dddabtc/winremote-mcp/internal/logging"
	"github.com/dddabtc/winremote-mcp/internal/taskgate"
	"github.com/dddabtc/winremote-mcp/internal/tools"
)

// Server serves the winremote HTTP API.
type Server struct {
	cfg      *config.Config
	log      *logging.Logger
	exec     *taskgate.Executor
	reporter *taskgate.Reporter
	tools    *tools.Registry
	version  string

	allowlist []netip.Prefix
	http      *http.Server
}

// New creates a Server. The allowlist is parsed from configuration here
// so that a bad entry fails startup instead of silently admitting
// everyone.
func New(cfg *config.Config, log *logging.Logger, exec *taskgate.Executor, reporter *taskgate.Reporter, reg *tools.Registry, version string) (*Server, error) {
	allowlist, err := cfg.Security.ParseAllowlist()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		log:       log.WithComponent("server"),
		exec:      exec,
		reporter:  reporter,
		tools:     reg,
		version:   version,
		allowlist: allowlist,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/tools", s.handleTools)
	mux.HandleFunc("POST /v1/tasks", s.handleSubmit)
	mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /v1/tasks/{id}/cancel", s.handleCancelTask)

	s.http = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.withAllowlist(s.withAuth(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the server's HTTP handler including middleware.
// Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run starts the listener and blocks until ctx is cancelled, then shuts
// down gracefully. In-flight tool operations get a grace period to reach
// a terminal state before the listener is torn down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.http.Addr, "version", s.version)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
